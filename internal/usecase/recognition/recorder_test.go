package recognition

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/johnquangdev/peopleops/internal/domain/entities"
	"github.com/johnquangdev/peopleops/internal/testhelpers"
)

func newMeeting(tenantID uuid.UUID, transcript string) *entities.Meeting {
	return &entities.Meeting{ID: uuid.New(), TenantID: tenantID, ExternalID: "ext-1", Transcript: transcript}
}

func TestRecorder_RecordsResolvedAndUnresolvedTargets(t *testing.T) {
	store := testhelpers.NewStore()
	tenant := store.AddTenant("x.com")
	maria := store.AddUser(tenant.ID, "maria@x.com", "Maria Silva")
	rec := NewRecorder(store.UserRepo(), store.RecognitionRepo(), zap.NewNop())

	meeting := newMeeting(tenant.ID, "Parabéns Maria pelo projeto. "+
		"Depois falamos de orçamento, prazos e outras coisas da semana. "+
		"Kudos ao time de infraestrutura!")
	participants := []*entities.MeetingParticipant{
		{MeetingID: meeting.ID, Email: "MARIA@x.com", DisplayName: "Maria Silva"},
		{MeetingID: meeting.ID, Email: "guest@partner.com", DisplayName: "Guest"},
	}

	n, err := rec.Record(context.Background(), meeting, participants)
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	rows := store.RecognitionsFor(meeting.ID)
	require.Len(t, rows, 2)

	byLabel := map[string]*entities.Recognition{}
	for _, r := range rows {
		byLabel[r.PatternLabel] = r
		assert.False(t, r.Reviewed)
		assert.Equal(t, entities.RecognitionValueAuto, r.Value)
		assert.Equal(t, entities.RecognitionPointsAuto, r.Points)
		assert.Equal(t, entities.RecognitionSourceAuto, r.Source)
	}

	praise := byLabel["parabens"]
	require.NotNil(t, praise)
	require.NotNil(t, praise.RecipientID)
	assert.Equal(t, maria.ID, *praise.RecipientID)
	require.NotNil(t, praise.TargetEmail)
	assert.Equal(t, "maria@x.com", *praise.TargetEmail)

	kudos := byLabel["kudos"]
	require.NotNil(t, kudos)
	assert.Nil(t, kudos.RecipientID)
}

func TestRecorder_SecondRunDoesNotDuplicate(t *testing.T) {
	store := testhelpers.NewStore()
	tenant := store.AddTenant("x.com")
	rec := NewRecorder(store.UserRepo(), store.RecognitionRepo(), nil)
	meeting := newMeeting(tenant.ID, "Great job everyone")

	first, err := rec.Record(context.Background(), meeting, nil)
	require.NoError(t, err)
	second, err := rec.Record(context.Background(), meeting, nil)
	require.NoError(t, err)

	assert.Equal(t, 1, first)
	assert.Equal(t, 1, second)
	assert.Len(t, store.RecognitionsFor(meeting.ID), 1)
}

func TestRecorder_NoTextNoRows(t *testing.T) {
	store := testhelpers.NewStore()
	rec := NewRecorder(store.UserRepo(), store.RecognitionRepo(), nil)

	n, err := rec.Record(context.Background(), newMeeting(uuid.New(), ""), nil)
	require.NoError(t, err)
	assert.Zero(t, n)
}

func TestRecorder_ResolutionFailureFailsStage(t *testing.T) {
	store := testhelpers.NewStore()
	tenant := store.AddTenant("x.com")
	store.Errors["users.FindByEmails"] = errors.New("connection reset")
	rec := NewRecorder(store.UserRepo(), store.RecognitionRepo(), nil)

	meeting := newMeeting(tenant.ID, "Parabéns Maria")
	participants := []*entities.MeetingParticipant{{Email: "maria@x.com", DisplayName: "Maria"}}

	_, err := rec.Record(context.Background(), meeting, participants)
	require.Error(t, err)
	assert.Empty(t, store.RecognitionsFor(meeting.ID))
}
