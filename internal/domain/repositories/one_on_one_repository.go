package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/johnquangdev/peopleops/internal/domain/entities"
)

// LinkCandidateQuery narrows the one-on-ones a meeting may be attached to
type LinkCandidateQuery struct {
	TenantID uuid.UUID
	UserIDs  []uuid.UUID
	From     time.Time
	To       time.Time
	Limit    int
}

// OneOnOneRepository defines the interface for one-on-one data access
type OneOnOneRepository interface {
	// FindByID finds a one-on-one by ID within a tenant
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*entities.OneOnOne, error)

	// FindByMeetingID returns the one-on-one already linked to the meeting, or nil, nil
	FindByMeetingID(ctx context.Context, tenantID, meetingID uuid.UUID) (*entities.OneOnOne, error)

	// FindLinkCandidates lists unlinked scheduled or completed one-on-ones whose
	// leader or collaborator is among UserIDs, ordered by scheduled time
	FindLinkCandidates(ctx context.Context, q LinkCandidateQuery) ([]*entities.OneOnOne, error)

	// LinkMeeting attaches the meeting if the one-on-one is still unlinked,
	// marks it completed and copies the summary. Reports whether the link was made.
	LinkMeeting(ctx context.Context, id, meetingID uuid.UUID, summary *string, at time.Time) (bool, error)

	// MarkProcessed stamps processed_at after actions are extracted and stores the summary when given
	MarkProcessed(ctx context.Context, id uuid.UUID, summary *string, at time.Time) error
}

// ActionRepository defines the interface for one-on-one action data access
type ActionRepository interface {
	// ReplaceAIExtracted removes uncompleted AI-extracted actions of the one-on-one
	// and inserts the given ones in a single transaction
	ReplaceAIExtracted(ctx context.Context, oneOnOneID uuid.UUID, actions []*entities.OneOnOneAction) error

	// ListByOneOnOneID lists actions of a one-on-one
	ListByOneOnOneID(ctx context.Context, oneOnOneID uuid.UUID) ([]*entities.OneOnOneAction, error)
}
