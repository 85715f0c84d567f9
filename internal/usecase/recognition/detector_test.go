package recognition

import (
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"
)

func TestDetect_PortuguesePraiseTargetsParticipant(t *testing.T) {
	people := []Participant{
		{Name: "João Souza", Email: "joao@x.com"},
		{Name: "Maria Silva", Email: "maria@x.com"},
	}

	mentions := Detect("Parabéns Maria pelo excelente trabalho", people, 0.7)

	require.Len(t, mentions, 1)
	m := mentions[0]
	assert.Equal(t, "parabens", m.Label)
	assert.Equal(t, 0.95, m.Confidence)
	assert.Equal(t, 0, m.Position)
	require.NotNil(t, m.Target)
	assert.Equal(t, "maria@x.com", m.Target.Email)
}

func TestDetect_EmptyText(t *testing.T) {
	assert.Equal(t, []Mention{}, Detect("", nil, 0))
	assert.Equal(t, []Mention{}, Detect("   \n", nil, 0))
}

func TestDetect_MinConfidenceSkipsWeakRules(t *testing.T) {
	text := "A apresentação foi incrível."

	assert.Empty(t, Detect(text, nil, 0.7))

	mentions := Detect(text, nil, 0.5)
	require.Len(t, mentions, 1)
	assert.Equal(t, "superlative_pt", mentions[0].Label)
}

func TestDetectWithRules_DedupKeepsHigherConfidence(t *testing.T) {
	rules := []Rule{
		{Pattern: regexp.MustCompile(`(?i)nice work`), Label: "low", Confidence: 0.85},
		{Pattern: regexp.MustCompile(`(?i)congrats`), Label: "high", Confidence: 0.95},
	}

	mentions := DetectWithRules("nice work, congrats to the team", nil, 0, rules)

	require.Len(t, mentions, 1)
	assert.Equal(t, "high", mentions[0].Label)
	assert.Equal(t, 11, mentions[0].Position)
}

func TestDetectWithRules_DistantMatchesKept(t *testing.T) {
	rules := []Rule{{Pattern: regexp.MustCompile(`(?i)kudos`), Label: "kudos", Confidence: 0.9}}
	text := "kudos" + strings.Repeat(" filler", 10) + " kudos"

	mentions := DetectWithRules(text, nil, 0, rules)

	require.Len(t, mentions, 2)
	assert.Less(t, mentions[0].Position, mentions[1].Position)
}

func TestDetect_ContextEllipses(t *testing.T) {
	prefix := strings.Repeat("a", 80)
	suffix := strings.Repeat("b", 80)

	mentions := Detect(prefix+" great job "+suffix, nil, 0.7)
	require.Len(t, mentions, 1)
	ctx := mentions[0].Context
	assert.True(t, strings.HasPrefix(ctx, "..."))
	assert.True(t, strings.HasSuffix(ctx, "..."))
	assert.Contains(t, ctx, "great job")

	short := Detect("great job", nil, 0.7)
	require.Len(t, short, 1)
	assert.Equal(t, "great job", short[0].Context)
}

func TestDetect_PositionIsRuneOffset(t *testing.T) {
	// "ã" is two bytes but one rune
	mentions := Detect("reunião: kudos", nil, 0.7)
	require.Len(t, mentions, 1)
	assert.Equal(t, 9, mentions[0].Position)
}

func TestFindTarget(t *testing.T) {
	people := []Participant{
		{Name: "Al Costa", Email: "al@x.com"},
		{Name: "Ana Paula Lima", Email: "ana@x.com"},
		{Name: "Paula Reis", Email: "paula@x.com"},
	}

	t.Run("full name wins over earlier first name", func(t *testing.T) {
		got := findTarget("obrigado paula reis e ana", people)
		require.NotNil(t, got)
		assert.Equal(t, "paula@x.com", got.Email)
	})
	t.Run("first name fallback", func(t *testing.T) {
		got := findTarget("valeu Ana!", people)
		require.NotNil(t, got)
		assert.Equal(t, "ana@x.com", got.Email)
	})
	t.Run("short first names ignored", func(t *testing.T) {
		assert.Nil(t, findTarget("also a great talk", people[:1]))
	})
	t.Run("no participants", func(t *testing.T) {
		assert.Nil(t, findTarget("great job maria", nil))
	})
}

func TestDetect_Properties(t *testing.T) {
	words := []string{"parabéns", "great job", "kudos", "incrível", "reunião", "plano", "o", "time", "maria", "well done", "ok"}

	rapid.Check(t, func(t *rapid.T) {
		parts := rapid.SliceOfN(rapid.SampledFrom(words), 0, 40).Draw(t, "words")
		minConf := rapid.Float64Range(0, 1).Draw(t, "minConf")
		text := strings.Join(parts, " ")

		mentions := Detect(text, []Participant{{Name: "Maria", Email: "m@x.com"}}, minConf)

		for i, m := range mentions {
			if m.Confidence < minConf {
				t.Fatalf("mention %q below min confidence %f", m.Text, minConf)
			}
			if i > 0 {
				gap := m.Position - mentions[i-1].Position
				if gap < DedupDistance {
					t.Fatalf("mentions %d and %d only %d runes apart", i-1, i, gap)
				}
			}
		}
	})
}
