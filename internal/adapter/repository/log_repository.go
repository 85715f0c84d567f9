package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/peopleops/internal/domain/entities"
)

// SyncLogRepository implements the sync log repository interface using GORM
type SyncLogRepository struct {
	db *gorm.DB
}

// NewSyncLogRepository creates a new sync log repository
func NewSyncLogRepository(db *gorm.DB) *SyncLogRepository {
	return &SyncLogRepository{db: db}
}

// Create records a started ingestion
func (r *SyncLogRepository) Create(ctx context.Context, entry *entities.SyncLogEntry) error {
	if entry == nil {
		return errors.New("sync log entry cannot be nil")
	}
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		return fmt.Errorf("failed to create sync log: %w", err)
	}
	return nil
}

// Finish writes the terminal state of an entry
func (r *SyncLogRepository) Finish(ctx context.Context, entry *entities.SyncLogEntry) error {
	if err := r.db.WithContext(ctx).
		Model(&entities.SyncLogEntry{}).
		Where("id = ?", entry.ID).
		Updates(map[string]interface{}{
			"status":               entry.Status,
			"external_id":          entry.ExternalID,
			"meeting_id":           entry.MeetingID,
			"action":               entry.Action,
			"praises_detected":     entry.PraisesDetected,
			"linked_one_on_one_id": entry.LinkedOneOnOneID,
			"error_message":        entry.ErrorMessage,
			"details":              entry.Details,
			"finished_at":          entry.FinishedAt,
		}).Error; err != nil {
		return fmt.Errorf("failed to finish sync log: %w", err)
	}
	return nil
}

// ProcessingLogRepository implements the processing log repository interface using GORM
type ProcessingLogRepository struct {
	db *gorm.DB
}

// NewProcessingLogRepository creates a new processing log repository
func NewProcessingLogRepository(db *gorm.DB) *ProcessingLogRepository {
	return &ProcessingLogRepository{db: db}
}

// Create records a processing run
func (r *ProcessingLogRepository) Create(ctx context.Context, log *entities.TranscriptProcessingLog) error {
	if log == nil {
		return errors.New("processing log cannot be nil")
	}
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	if err := r.db.WithContext(ctx).Create(log).Error; err != nil {
		return fmt.Errorf("failed to create processing log: %w", err)
	}
	return nil
}

// Complete marks a run completed
func (r *ProcessingLogRepository) Complete(ctx context.Context, log *entities.TranscriptProcessingLog) error {
	if err := r.db.WithContext(ctx).
		Model(&entities.TranscriptProcessingLog{}).
		Where("id = ?", log.ID).
		Updates(map[string]interface{}{
			"status":            entities.ProcessingStatusCompleted,
			"model_output":      log.ModelOutput,
			"model":             log.Model,
			"prompt_tokens":     log.PromptTokens,
			"completion_tokens": log.CompletionTokens,
			"actions_extracted": log.ActionsExtracted,
			"finished_at":       log.FinishedAt,
		}).Error; err != nil {
		return fmt.Errorf("failed to complete processing log: %w", err)
	}
	return nil
}

// Fail marks a run errored
func (r *ProcessingLogRepository) Fail(ctx context.Context, id uuid.UUID, message string, at time.Time) error {
	if err := r.db.WithContext(ctx).
		Model(&entities.TranscriptProcessingLog{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"status":        entities.ProcessingStatusError,
			"error_message": message,
			"finished_at":   at,
		}).Error; err != nil {
		return fmt.Errorf("failed to mark processing log failed: %w", err)
	}
	return nil
}

// FindActive returns the newest in-flight run started after since
func (r *ProcessingLogRepository) FindActive(ctx context.Context, oneOnOneID uuid.UUID, since time.Time) (*entities.TranscriptProcessingLog, error) {
	var log entities.TranscriptProcessingLog
	if err := r.db.WithContext(ctx).
		Where("one_on_one_id = ? AND status = ? AND started_at > ?", oneOnOneID, entities.ProcessingStatusProcessing, since).
		Order("started_at DESC").
		First(&log).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find active processing log: %w", err)
	}
	return &log, nil
}
