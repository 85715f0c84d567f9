package actions

import (
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/johnquangdev/peopleops/internal/domain/entities"
	usecaseErrors "github.com/johnquangdev/peopleops/internal/usecase/errors"
	"github.com/johnquangdev/peopleops/internal/testhelpers"
)

func meetingWith(transcript, summary string) *entities.Meeting {
	return &entities.Meeting{ID: uuid.New(), Transcript: transcript, Summary: summary}
}

func sentencesOf(pairs ...string) []*entities.MeetingSentence {
	var out []*entities.MeetingSentence
	for i := 0; i+1 < len(pairs); i += 2 {
		out = append(out, &entities.MeetingSentence{Index: i / 2, SpeakerName: pairs[i], Text: pairs[i+1]})
	}
	return out
}

type fixture struct {
	store    *testhelpers.Store
	llm      *testhelpers.FakeLLM
	svc      *service
	tenant   *entities.Tenant
	leader   *entities.User
	collab   *entities.User
	oneOnOne *entities.OneOnOne
	meeting  *entities.Meeting
	now      time.Time
}

func newFixture(t *testing.T, transcript string) *fixture {
	t.Helper()
	store := testhelpers.NewStore()
	tenant := store.AddTenant("x.com")
	leader := store.AddUser(tenant.ID, "lead@x.com", "Lia Leader")
	collab := store.AddUser(tenant.ID, "bob@x.com", "Bob Souza")
	now := time.Date(2026, 3, 13, 15, 0, 0, 0, time.UTC)

	meeting := store.AddMeeting(&entities.Meeting{
		TenantID:   tenant.ID,
		ExternalID: "ff-1",
		Title:      "1:1 Lia / Bob",
		Transcript: transcript,
		Status:     entities.MeetingStatusLinked,
	})
	o := store.AddOneOnOne(tenant.ID, leader.ID, collab.ID, now.Add(-time.Hour), entities.OneOnOneStatusCompleted)
	store.OneOnOnes[o.ID].MeetingID = &meeting.ID

	llm := &testhelpers.FakeLLM{}
	svc := NewService(
		store.OneOnOneRepo(),
		store.MeetingRepo(),
		store.SentenceRepo(),
		store.ActionRepo(),
		store.ProcessingLogRepo(),
		llm,
		Options{},
		nil,
		zap.NewNop(),
	).(*service)
	svc.now = func() time.Time { return now }

	return &fixture{store: store, llm: llm, svc: svc, tenant: tenant, leader: leader, collab: collab, oneOnOne: o, meeting: meeting, now: now}
}

func (f *fixture) input() ExtractInput {
	return ExtractInput{TenantID: f.tenant.ID, OneOnOneID: f.oneOnOne.ID}
}

var longTranscript = strings.Repeat("Bob: vou revisar o documento de arquitetura até sexta. ", 3)

func TestExtract_PersistsActionsAndDiscardsLowConfidence(t *testing.T) {
	f := newFixture(t, longTranscript)
	f.llm.Content = "```json\n" + `{
		"summary": "Revisão de arquitetura e feedback.",
		"actions": [
			{"text": "Revisar documento de arquitetura", "assignee": "collaborator", "due_date_hint": "sexta", "category": "task", "confidence": 0.9},
			{"text": "Dar feedback sobre a apresentação", "assignee": "Leader", "due_date_hint": null, "category": "feedback", "confidence": 0.8},
			{"text": "Talvez ler um livro", "assignee": "collaborator", "due_date_hint": "", "category": "development", "confidence": 0.4},
			{"text": "   ", "assignee": "leader", "confidence": 0.95}
		]
	}` + "\n```"

	res, err := f.svc.Extract(context.Background(), f.input())
	require.NoError(t, err)

	assert.Equal(t, 2, res.ActionsExtracted)
	assert.Equal(t, 2, res.ActionsDiscarded)
	assert.Equal(t, ParseMethodDirect, res.ParseMethod)
	assert.Equal(t, SourceTranscript, res.TranscriptSource)
	assert.False(t, res.Truncated)

	actions, err := f.store.ActionRepo().ListByOneOnOneID(context.Background(), f.oneOnOne.ID)
	require.NoError(t, err)
	require.Len(t, actions, 2)

	review, feedback := actions[0], actions[1]
	assert.Equal(t, f.collab.ID, review.AssigneeID)
	require.NotNil(t, review.DueDate)
	assert.Equal(t, time.Date(2026, 3, 20, 0, 0, 0, 0, time.UTC), *review.DueDate)
	assert.Equal(t, entities.ActionCategoryTask, review.Category)
	assert.Equal(t, entities.ActionSourceAIExtracted, review.Source)

	assert.Equal(t, f.leader.ID, feedback.AssigneeID)
	assert.Nil(t, feedback.DueDate)
	assert.Equal(t, entities.ActionCategoryFeedback, feedback.Category)

	o := f.store.OneOnOnes[f.oneOnOne.ID]
	require.NotNil(t, o.ProcessedAt)
	require.NotNil(t, o.TranscriptSummary)
	assert.Equal(t, "Revisão de arquitetura e feedback.", *o.TranscriptSummary)
	assert.Equal(t, entities.MeetingStatusProcessed, f.store.Meetings[f.meeting.ID].Status)

	logs := f.store.ProcessingLogList()
	require.Len(t, logs, 1)
	assert.Equal(t, entities.ProcessingStatusCompleted, logs[0].Status)
	assert.Equal(t, 2, logs[0].ActionsExtracted)
	assert.Equal(t, 120, logs[0].PromptTokens)
	assert.NotNil(t, logs[0].FinishedAt)

	require.Equal(t, 1, f.llm.Calls())
	assert.Contains(t, f.llm.Requests[0].Prompt, "Lia Leader")
	assert.Contains(t, f.llm.Requests[0].Prompt, "Bob Souza")
	assert.True(t, f.llm.Requests[0].JSONMode)
}

func TestExtract_ReplacesPreviousAIActionsButKeepsManualAndCompleted(t *testing.T) {
	f := newFixture(t, longTranscript)
	f.store.Actions = []*entities.OneOnOneAction{
		{ID: uuid.New(), OneOnOneID: f.oneOnOne.ID, Text: "old ai", Source: entities.ActionSourceAIExtracted},
		{ID: uuid.New(), OneOnOneID: f.oneOnOne.ID, Text: "done ai", Source: entities.ActionSourceAIExtracted, Completed: true},
		{ID: uuid.New(), OneOnOneID: f.oneOnOne.ID, Text: "manual", Source: entities.ActionSourceManual},
	}
	f.llm.Content = `{"summary":"s","actions":[{"text":"new ai","assignee":"collaborator","confidence":0.7}]}`

	_, err := f.svc.Extract(context.Background(), f.input())
	require.NoError(t, err)

	actions, err := f.store.ActionRepo().ListByOneOnOneID(context.Background(), f.oneOnOne.ID)
	require.NoError(t, err)
	var texts []string
	for _, a := range actions {
		texts = append(texts, a.Text)
	}
	assert.ElementsMatch(t, []string{"done ai", "manual", "new ai"}, texts)
}

func TestExtract_ModelErrorLeavesErrorLog(t *testing.T) {
	f := newFixture(t, longTranscript)
	f.llm.Err = errors.New("status code: 503")

	_, err := f.svc.Extract(context.Background(), f.input())
	require.Error(t, err)
	assert.ErrorIs(t, err, usecaseErrors.ErrModelCallFailed)

	logs := f.store.ProcessingLogList()
	require.Len(t, logs, 1)
	assert.Equal(t, entities.ProcessingStatusError, logs[0].Status)
	require.NotNil(t, logs[0].ErrorMessage)
	assert.Contains(t, *logs[0].ErrorMessage, "503")
	assert.Nil(t, f.store.OneOnOnes[f.oneOnOne.ID].ProcessedAt)
}

func TestExtract_UnparsableResponse(t *testing.T) {
	f := newFixture(t, longTranscript)
	f.llm.Content = "Sorry, I can't help with that."

	_, err := f.svc.Extract(context.Background(), f.input())
	assert.ErrorIs(t, err, usecaseErrors.ErrUnparsableResponse)

	logs := f.store.ProcessingLogList()
	require.Len(t, logs, 1)
	assert.Equal(t, entities.ProcessingStatusError, logs[0].Status)
}

func TestExtract_TranscriptTooShort(t *testing.T) {
	f := newFixture(t, "Oi, tudo bem?")

	_, err := f.svc.Extract(context.Background(), f.input())
	assert.ErrorIs(t, err, usecaseErrors.ErrTranscriptTooShort)
	assert.Zero(t, f.llm.Calls())

	logs := f.store.ProcessingLogList()
	require.Len(t, logs, 1)
	assert.Equal(t, entities.ProcessingStatusError, logs[0].Status)
	require.NotNil(t, logs[0].MeetingID)
	assert.Equal(t, f.meeting.ID, *logs[0].MeetingID)
	assert.Equal(t, "Oi, tudo bem?", logs[0].RawInput)
	require.NotNil(t, logs[0].ErrorMessage)
	assert.Contains(t, *logs[0].ErrorMessage, usecaseErrors.ErrTranscriptTooShort.Error())
	assert.NotNil(t, logs[0].FinishedAt)
}

func TestExtract_NotFoundAndNotLinked(t *testing.T) {
	f := newFixture(t, longTranscript)

	_, err := f.svc.Extract(context.Background(), ExtractInput{TenantID: f.tenant.ID, OneOnOneID: uuid.New()})
	assert.ErrorIs(t, err, usecaseErrors.ErrOneOnOneNotFound)

	_, err = f.svc.Extract(context.Background(), ExtractInput{TenantID: uuid.New(), OneOnOneID: f.oneOnOne.ID})
	assert.ErrorIs(t, err, usecaseErrors.ErrOneOnOneNotFound)
	assert.Empty(t, f.store.ProcessingLogList())

	f.store.OneOnOnes[f.oneOnOne.ID].MeetingID = nil
	_, err = f.svc.Extract(context.Background(), f.input())
	assert.ErrorIs(t, err, usecaseErrors.ErrMeetingNotLinked)

	missing := uuid.New()
	in := f.input()
	in.MeetingID = &missing
	_, err = f.svc.Extract(context.Background(), in)
	assert.ErrorIs(t, err, usecaseErrors.ErrMeetingNotFound)

	logs := f.store.ProcessingLogList()
	require.Len(t, logs, 2)
	for _, l := range logs {
		assert.Equal(t, entities.ProcessingStatusError, l.Status)
		assert.Equal(t, f.oneOnOne.ID, l.OneOnOneID)
	}
	assert.Zero(t, f.llm.Calls())
}

func TestExtract_MeetingOverride(t *testing.T) {
	f := newFixture(t, "")
	other := f.store.AddMeeting(&entities.Meeting{TenantID: f.tenant.ID, ExternalID: "ff-2", Transcript: longTranscript})
	f.llm.Content = `{"summary":"ok","actions":[]}`

	in := f.input()
	in.MeetingID = &other.ID
	res, err := f.svc.Extract(context.Background(), in)
	require.NoError(t, err)
	assert.Equal(t, other.ID, res.MeetingID)
	assert.Zero(t, res.ActionsExtracted)
}

func TestExtract_ConcurrentRunRejected(t *testing.T) {
	f := newFixture(t, longTranscript)
	f.store.ProcessingLogs[uuid.New()] = &entities.TranscriptProcessingLog{
		OneOnOneID: f.oneOnOne.ID,
		Status:     entities.ProcessingStatusProcessing,
		StartedAt:  f.now.Add(-2 * time.Minute),
	}

	_, err := f.svc.Extract(context.Background(), f.input())
	assert.ErrorIs(t, err, usecaseErrors.ErrExtractionInProgress)
	assert.Zero(t, f.llm.Calls())

	var statuses []entities.ProcessingStatus
	for _, l := range f.store.ProcessingLogList() {
		statuses = append(statuses, l.Status)
	}
	assert.ElementsMatch(t, []entities.ProcessingStatus{entities.ProcessingStatusProcessing, entities.ProcessingStatusError}, statuses)
}

func TestExtract_ModelCancelledStillClosesLog(t *testing.T) {
	f := newFixture(t, longTranscript)
	ctx, cancel := context.WithCancel(context.Background())
	f.llm.Err = context.Canceled
	f.llm.OnCall = cancel

	_, err := f.svc.Extract(ctx, f.input())
	assert.ErrorIs(t, err, usecaseErrors.ErrModelCallFailed)

	logs := f.store.ProcessingLogList()
	require.Len(t, logs, 1)
	assert.Equal(t, entities.ProcessingStatusError, logs[0].Status)
	assert.NotNil(t, logs[0].FinishedAt)
}

func TestExtract_StaleRunDoesNotBlock(t *testing.T) {
	f := newFixture(t, longTranscript)
	f.store.ProcessingLogs[uuid.New()] = &entities.TranscriptProcessingLog{
		OneOnOneID: f.oneOnOne.ID,
		Status:     entities.ProcessingStatusProcessing,
		StartedAt:  f.now.Add(-time.Hour),
	}
	f.llm.Content = `{"summary":"ok","actions":[]}`

	_, err := f.svc.Extract(context.Background(), f.input())
	require.NoError(t, err)
}

func TestExtract_TruncatesLongTranscript(t *testing.T) {
	f := newFixture(t, strings.Repeat("palavra ", 5000))
	f.svc.opts.TranscriptBudget = 1000
	f.llm.Content = `{"summary":"ok","actions":[]}`

	res, err := f.svc.Extract(context.Background(), f.input())
	require.NoError(t, err)
	assert.True(t, res.Truncated)
	assert.Contains(t, f.llm.Requests[0].Prompt, TruncationMarker)
}
