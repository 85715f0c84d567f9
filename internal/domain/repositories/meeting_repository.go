package repositories

import (
	"context"

	"github.com/google/uuid"
	"github.com/johnquangdev/peopleops/internal/domain/entities"
)

// MeetingRepository defines the interface for meeting data access
type MeetingRepository interface {
	// FindByID finds a meeting by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*entities.Meeting, error)

	// FindByExternalID finds a meeting by its provider id. Returns nil, nil when absent.
	FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (*entities.Meeting, error)

	// Upsert creates the meeting or updates the existing (tenant, external id) row.
	// created reports whether a new row was inserted. meeting.ID is set on return.
	Upsert(ctx context.Context, meeting *entities.Meeting) (created bool, err error)

	// UpdateStatus sets the enrichment status of a meeting
	UpdateStatus(ctx context.Context, id uuid.UUID, status entities.MeetingStatus) error
}

// ParticipantRepository defines the interface for meeting participant data access
type ParticipantRepository interface {
	// InsertMissing adds participants not yet recorded for the meeting; existing rows are left untouched
	InsertMissing(ctx context.Context, participants []*entities.MeetingParticipant) error

	// FindByMeetingID lists participants of a meeting
	FindByMeetingID(ctx context.Context, meetingID uuid.UUID) ([]*entities.MeetingParticipant, error)
}

// SentenceRepository defines the interface for transcript sentence data access
type SentenceRepository interface {
	// ReplaceForMeeting swaps the stored sentences of a meeting for the given ones
	ReplaceForMeeting(ctx context.Context, meetingID uuid.UUID, sentences []*entities.MeetingSentence) error

	// ListByMeetingID returns sentences ordered by index
	ListByMeetingID(ctx context.Context, meetingID uuid.UUID) ([]*entities.MeetingSentence, error)
}

// RecognitionRepository defines the interface for recognition data access
type RecognitionRepository interface {
	// CreateBatch inserts recognitions in one statement
	CreateBatch(ctx context.Context, recognitions []*entities.Recognition) error

	// CountByMeetingID counts recognitions already recorded for a meeting
	CountByMeetingID(ctx context.Context, meetingID uuid.UUID) (int64, error)
}
