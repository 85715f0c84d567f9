package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/johnquangdev/peopleops/internal/domain/entities"
	"github.com/johnquangdev/peopleops/internal/testhelpers"
	usecaseErrors "github.com/johnquangdev/peopleops/internal/usecase/errors"
	"github.com/johnquangdev/peopleops/internal/usecase/oneonone"
	"github.com/johnquangdev/peopleops/internal/usecase/recognition"
)

type ingestFixture struct {
	store      *testhelpers.Store
	dispatcher *testhelpers.FakeDispatcher
	archiver   *testhelpers.FakeArchiver
	svc        Service
	tenant     *entities.Tenant
}

var now = time.Date(2026, 3, 13, 15, 0, 0, 0, time.UTC)

func newIngestFixture(t *testing.T) *ingestFixture {
	t.Helper()
	store := testhelpers.NewStore()
	tenant := store.AddTenant("x.com")
	dispatcher := &testhelpers.FakeDispatcher{}
	archiver := &testhelpers.FakeArchiver{}
	logger := zap.NewNop()

	recorder := recognition.NewRecorder(store.UserRepo(), store.RecognitionRepo(), logger)
	linker := oneonone.NewLinker(store.UserRepo(), store.OneOnOneRepo(), store.MeetingRepo(), dispatcher, nil, logger)
	svc := NewService(
		store.TenantRepo(),
		store.MeetingRepo(),
		store.ParticipantRepo(),
		store.SentenceRepo(),
		store.SyncLogRepo(),
		recorder,
		linker,
		archiver,
		nil,
		logger,
	)
	svc.(*service).now = func() time.Time { return now }

	return &ingestFixture{store: store, dispatcher: dispatcher, archiver: archiver, svc: svc, tenant: tenant}
}

func (f *ingestFixture) notification() NotificationInput {
	at := now.Add(-30 * time.Minute)
	return NotificationInput{
		TenantID:        f.tenant.ID,
		ExternalID:      "ff-123",
		Title:           "1:1 Ana / Bob",
		OccurredAt:      &at,
		DurationMinutes: 30,
		Participants: []ParticipantInput{
			{Email: "Ana@X.com", DisplayName: "Ana Lima"},
			{Email: "bob@x.com"},
			{Email: "bob@x.com", DisplayName: "Bob again"},
			{DisplayName: "no email"},
		},
		Summary:    "Parabéns Bob pela entrega do projeto.",
		RawPayload: []byte(`{"fireflies_id":"ff-123"}`),
	}
}

func TestIngest_EndToEnd(t *testing.T) {
	f := newIngestFixture(t)
	ana := f.store.AddUser(f.tenant.ID, "ana@x.com", "Ana Lima")
	bob := f.store.AddUser(f.tenant.ID, "bob@x.com", "Bob Souza")
	o := f.store.AddOneOnOne(f.tenant.ID, ana.ID, bob.ID, now.Add(-time.Hour), entities.OneOnOneStatusScheduled)

	res, err := f.svc.Ingest(context.Background(), f.notification())
	require.NoError(t, err)

	assert.Equal(t, ActionCreated, res.Action)
	assert.Equal(t, 1, res.PraisesDetected)
	require.NotNil(t, res.LinkedOneOnOne)
	assert.Equal(t, o.ID, *res.LinkedOneOnOne)

	meeting := f.store.Meetings[res.MeetingID]
	require.NotNil(t, meeting)
	assert.Equal(t, "one_on_one", meeting.Category)
	assert.Equal(t, entities.MeetingStatusLinked, meeting.Status)
	assert.Equal(t, entities.MeetingSourceFireflies, meeting.Source)

	participants, err := f.store.ParticipantRepo().FindByMeetingID(context.Background(), res.MeetingID)
	require.NoError(t, err)
	require.Len(t, participants, 2)
	for _, p := range participants {
		assert.True(t, p.IsInternal)
		if p.Email == "bob@x.com" {
			assert.Equal(t, "bob", p.DisplayName)
		}
	}

	recs := f.store.RecognitionsFor(res.MeetingID)
	require.Len(t, recs, 1)
	require.NotNil(t, recs[0].RecipientID)
	assert.Equal(t, bob.ID, *recs[0].RecipientID)

	require.Len(t, f.dispatcher.Calls(), 1)
	assert.Len(t, f.archiver.Keys, 1)

	logs := f.store.SyncLogList()
	require.Len(t, logs, 1)
	assert.Equal(t, entities.SyncStatusSuccess, logs[0].Status)
	assert.Equal(t, "created", logs[0].Action)
	assert.Equal(t, 1, logs[0].PraisesDetected)
	require.NotNil(t, logs[0].LinkedOneOnOneID)
	assert.Equal(t, o.ID, *logs[0].LinkedOneOnOneID)
	assert.NotNil(t, logs[0].FinishedAt)
}

func TestIngest_RedeliveryUpdatesSameRow(t *testing.T) {
	f := newIngestFixture(t)
	f.store.AddUser(f.tenant.ID, "bob@x.com", "Bob Souza")

	first, err := f.svc.Ingest(context.Background(), f.notification())
	require.NoError(t, err)

	again := f.notification()
	again.Title = "Renamed"
	second, err := f.svc.Ingest(context.Background(), again)
	require.NoError(t, err)

	assert.Equal(t, ActionCreated, first.Action)
	assert.Equal(t, ActionUpdated, second.Action)
	assert.Equal(t, first.MeetingID, second.MeetingID)
	assert.Equal(t, 1, f.store.MeetingCount())
	assert.Equal(t, "Renamed", f.store.Meetings[first.MeetingID].Title)
	assert.Len(t, f.store.RecognitionsFor(first.MeetingID), 1)
	assert.Len(t, f.store.SyncLogList(), 2)
}

func TestIngest_Defaults(t *testing.T) {
	f := newIngestFixture(t)

	res, err := f.svc.Ingest(context.Background(), NotificationInput{TenantID: f.tenant.ID, ExternalID: "  bare  "})
	require.NoError(t, err)

	m := f.store.Meetings[res.MeetingID]
	assert.Equal(t, "bare", m.ExternalID)
	assert.Equal(t, entities.DefaultMeetingTitle, m.Title)
	assert.Equal(t, now, m.OccurredAt)
	assert.Equal(t, DefaultCategory, m.Category)
	assert.Zero(t, res.PraisesDetected)
	assert.Nil(t, res.LinkedOneOnOne)
}

func TestIngest_Rejections(t *testing.T) {
	f := newIngestFixture(t)

	_, err := f.svc.Ingest(context.Background(), NotificationInput{TenantID: f.tenant.ID, ExternalID: " "})
	assert.ErrorIs(t, err, usecaseErrors.ErrMeetingIDRequired)

	_, err = f.svc.Ingest(context.Background(), NotificationInput{TenantID: uuid.New(), ExternalID: "x"})
	assert.ErrorIs(t, err, usecaseErrors.ErrTenantNotFound)

	f.store.Tenants[f.tenant.ID].IsActive = false
	_, err = f.svc.Ingest(context.Background(), NotificationInput{TenantID: f.tenant.ID, ExternalID: "x"})
	assert.ErrorIs(t, err, usecaseErrors.ErrTenantInactive)

	assert.Zero(t, f.store.MeetingCount())
	assert.Empty(t, f.store.SyncLogList())
}

func TestIngest_RecognitionFailureIsIsolated(t *testing.T) {
	f := newIngestFixture(t)
	ana := f.store.AddUser(f.tenant.ID, "ana@x.com", "Ana Lima")
	bob := f.store.AddUser(f.tenant.ID, "bob@x.com", "Bob Souza")
	o := f.store.AddOneOnOne(f.tenant.ID, ana.ID, bob.ID, now, entities.OneOnOneStatusScheduled)
	f.store.Errors["recognitions.CreateBatch"] = errors.New("disk full")

	res, err := f.svc.Ingest(context.Background(), f.notification())
	require.NoError(t, err)
	assert.Zero(t, res.PraisesDetected)
	require.NotNil(t, res.LinkedOneOnOne)
	assert.Equal(t, o.ID, *res.LinkedOneOnOne)

	logs := f.store.SyncLogList()
	require.Len(t, logs, 1)
	assert.Equal(t, entities.SyncStatusSuccess, logs[0].Status)

	var details map[string]map[string]string
	require.NoError(t, json.Unmarshal(logs[0].Details, &details))
	assert.Contains(t, details["stage_errors"]["recognition"], "disk full")
}

func TestIngest_ArchiveFailureIsIsolated(t *testing.T) {
	f := newIngestFixture(t)
	f.archiver.Err = errors.New("bucket gone")

	res, err := f.svc.Ingest(context.Background(), f.notification())
	require.NoError(t, err)
	assert.Equal(t, ActionCreated, res.Action)
}

func TestIngest_UpsertFailureIsReturnedAndAudited(t *testing.T) {
	f := newIngestFixture(t)
	f.store.Errors["meetings.Upsert"] = errors.New("connection refused")

	_, err := f.svc.Ingest(context.Background(), f.notification())
	require.Error(t, err)

	logs := f.store.SyncLogList()
	require.Len(t, logs, 1)
	assert.Equal(t, entities.SyncStatusError, logs[0].Status)
	require.NotNil(t, logs[0].ErrorMessage)
	assert.Contains(t, *logs[0].ErrorMessage, "connection refused")
}

func TestIngest_SentencesStored(t *testing.T) {
	f := newIngestFixture(t)
	in := f.notification()
	in.Sentences = []SentenceInput{
		{Index: 0, SpeakerName: "Ana", Text: "Oi Bob"},
		{Index: 1, SpeakerName: "Bob", Text: "  "},
		{Index: 2, SpeakerName: "Bob", Text: "Oi Ana"},
	}

	res, err := f.svc.Ingest(context.Background(), in)
	require.NoError(t, err)

	sentences, err := f.store.SentenceRepo().ListByMeetingID(context.Background(), res.MeetingID)
	require.NoError(t, err)
	require.Len(t, sentences, 2)
	assert.Equal(t, 2, sentences[1].Index)
}

func TestIngest_TenantLookupFailureIsAudited(t *testing.T) {
	f := newIngestFixture(t)
	f.store.Errors["tenants.FindByID"] = errors.New("db down")

	_, err := f.svc.Ingest(context.Background(), f.notification())
	require.Error(t, err)
	assert.NotErrorIs(t, err, usecaseErrors.ErrTenantNotFound)
	assert.Zero(t, f.store.MeetingCount())

	logs := f.store.SyncLogList()
	require.Len(t, logs, 1)
	assert.Equal(t, entities.SyncStatusError, logs[0].Status)
	assert.Equal(t, f.tenant.ID, logs[0].TenantID)
	assert.Equal(t, "ff-123", logs[0].ExternalID)
	require.NotNil(t, logs[0].ErrorMessage)
	assert.Contains(t, *logs[0].ErrorMessage, "db down")
	assert.NotNil(t, logs[0].FinishedAt)
}
