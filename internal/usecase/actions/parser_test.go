package actions

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	usecaseErrors "github.com/johnquangdev/peopleops/internal/usecase/errors"
)

const validResponse = `{"summary":"Falamos do PDI.","actions":[{"text":"Enviar plano","assignee":"collaborator","due_date_hint":"sexta","category":"development","confidence":0.9}]}`

func TestParseModelResponse(t *testing.T) {
	cases := []struct {
		name    string
		content string
		method  ParseMethod
	}{
		{"plain", validResponse, ParseMethodDirect},
		{"json fence", "```json\n" + validResponse + "\n```", ParseMethodDirect},
		{"bare fence", "```\n" + validResponse + "\n```", ParseMethodDirect},
		{"surrounding prose", "Here is the result:\n" + validResponse + "\nLet me know!", ParseMethodRegex},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			res, err := ParseModelResponse(tc.content)
			require.NoError(t, err)
			assert.Equal(t, tc.method, res.Method)
			assert.Equal(t, "Falamos do PDI.", res.Response.Summary)
			require.Len(t, res.Response.Actions, 1)
			a := res.Response.Actions[0]
			assert.Equal(t, "Enviar plano", a.Text)
			require.NotNil(t, a.DueDateHint)
			assert.Equal(t, "sexta", *a.DueDateHint)
			assert.Equal(t, 0.9, a.Confidence)
		})
	}
}

func TestParseModelResponse_EmptyActionsIsNotFailure(t *testing.T) {
	res, err := ParseModelResponse(`{"summary":"Conversa rápida.","actions":[]}`)
	require.NoError(t, err)
	assert.Empty(t, res.Response.Actions)
}

func TestParseModelResponse_Unparsable(t *testing.T) {
	for _, content := range []string{
		"I could not find any action items.",
		"null",
		"{not json at all}",
		"",
	} {
		_, err := ParseModelResponse(content)
		require.Error(t, err, content)

		var perr *ParseError
		require.True(t, errors.As(err, &perr), content)
		assert.Equal(t, content, perr.Raw)
		assert.ErrorIs(t, err, usecaseErrors.ErrUnparsableResponse)
	}
}

func TestBuildTranscript(t *testing.T) {
	t.Run("sentences preferred", func(t *testing.T) {
		text, source := BuildTranscript(meetingWith("ignored transcript", "ignored"), sentencesOf(
			"Ana", "Oi",
			"", "Tudo bem?",
			"Bruno", "   ",
		))
		assert.Equal(t, SourceSentences, source)
		assert.Equal(t, "Ana: Oi\nUnknown: Tudo bem?", text)
	})
	t.Run("transcript fallback", func(t *testing.T) {
		text, source := BuildTranscript(meetingWith(" full text ", "sum"), nil)
		assert.Equal(t, SourceTranscript, source)
		assert.Equal(t, "full text", text)
	})
	t.Run("summary fallback", func(t *testing.T) {
		text, source := BuildTranscript(meetingWith("", "sum"), nil)
		assert.Equal(t, SourceSummary, source)
		assert.Equal(t, "sum", text)
	})
}

func TestTruncate(t *testing.T) {
	out, truncated := Truncate("ação", 10)
	assert.False(t, truncated)
	assert.Equal(t, "ação", out)

	out, truncated = Truncate("açãoaçãoação", 4)
	assert.True(t, truncated)
	assert.Equal(t, "ação"+TruncationMarker, out)
}
