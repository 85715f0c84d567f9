package repositories

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/johnquangdev/peopleops/internal/domain/entities"
)

// SyncLogRepository defines the interface for ingestion audit data access
type SyncLogRepository interface {
	// Create records a started ingestion
	Create(ctx context.Context, entry *entities.SyncLogEntry) error

	// Finish writes the terminal state of an entry
	Finish(ctx context.Context, entry *entities.SyncLogEntry) error
}

// ProcessingLogRepository defines the interface for extraction audit data access
type ProcessingLogRepository interface {
	// Create records a processing run
	Create(ctx context.Context, log *entities.TranscriptProcessingLog) error

	// Complete marks a run completed with model output and token usage
	Complete(ctx context.Context, log *entities.TranscriptProcessingLog) error

	// Fail marks a run errored with a message
	Fail(ctx context.Context, id uuid.UUID, message string, at time.Time) error

	// FindActive returns a processing run for the one-on-one started after since, or nil, nil
	FindActive(ctx context.Context, oneOnOneID uuid.UUID, since time.Time) (*entities.TranscriptProcessingLog, error)
}
