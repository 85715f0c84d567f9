package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/johnquangdev/peopleops/internal/domain/entities"
	"github.com/johnquangdev/peopleops/internal/domain/repositories"
)

// OneOnOneRepository implements the one-on-one repository interface using GORM
type OneOnOneRepository struct {
	db *gorm.DB
}

// NewOneOnOneRepository creates a new one-on-one repository
func NewOneOnOneRepository(db *gorm.DB) *OneOnOneRepository {
	return &OneOnOneRepository{db: db}
}

// FindByID finds a one-on-one by ID with both participants preloaded
func (r *OneOnOneRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*entities.OneOnOne, error) {
	var o entities.OneOnOne
	if err := r.db.WithContext(ctx).
		Preload("Leader").
		Preload("Collaborator").
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrOneOnOneNotFound
		}
		return nil, fmt.Errorf("failed to find one-on-one by ID: %w", err)
	}
	return &o, nil
}

// FindByMeetingID returns the one-on-one linked to a meeting
func (r *OneOnOneRepository) FindByMeetingID(ctx context.Context, tenantID, meetingID uuid.UUID) (*entities.OneOnOne, error) {
	var o entities.OneOnOne
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND meeting_id = ?", tenantID, meetingID).
		First(&o).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find one-on-one by meeting: %w", err)
	}
	return &o, nil
}

// FindLinkCandidates lists unlinked one-on-ones in the time window involving any of the users
func (r *OneOnOneRepository) FindLinkCandidates(ctx context.Context, q repositories.LinkCandidateQuery) ([]*entities.OneOnOne, error) {
	if len(q.UserIDs) == 0 {
		return nil, nil
	}
	var candidates []*entities.OneOnOne
	query := r.db.WithContext(ctx).
		Where("tenant_id = ?", q.TenantID).
		Where("status IN ?", []entities.OneOnOneStatus{entities.OneOnOneStatusScheduled, entities.OneOnOneStatusCompleted}).
		Where("meeting_id IS NULL").
		Where("scheduled_at BETWEEN ? AND ?", q.From, q.To).
		Where("leader_id IN ? OR collaborator_id IN ?", q.UserIDs, q.UserIDs).
		Order("scheduled_at ASC")
	if q.Limit > 0 {
		query = query.Limit(q.Limit)
	}
	if err := query.Find(&candidates).Error; err != nil {
		return nil, fmt.Errorf("failed to find link candidates: %w", err)
	}
	return candidates, nil
}

// LinkMeeting attaches the meeting only while meeting_id is still NULL
func (r *OneOnOneRepository) LinkMeeting(ctx context.Context, id, meetingID uuid.UUID, summary *string, at time.Time) (bool, error) {
	updates := map[string]interface{}{
		"meeting_id":   meetingID,
		"status":       entities.OneOnOneStatusCompleted,
		"completed_at": at,
		"updated_at":   at,
	}
	if summary != nil {
		updates["transcript_summary"] = *summary
	}
	result := r.db.WithContext(ctx).
		Model(&entities.OneOnOne{}).
		Where("id = ? AND meeting_id IS NULL", id).
		Updates(updates)
	if result.Error != nil {
		return false, fmt.Errorf("failed to link meeting: %w", result.Error)
	}
	return result.RowsAffected == 1, nil
}

// MarkProcessed stamps processed_at and replaces the transcript summary when one is given
func (r *OneOnOneRepository) MarkProcessed(ctx context.Context, id uuid.UUID, summary *string, at time.Time) error {
	updates := map[string]interface{}{
		"processed_at": at,
		"updated_at":   at,
	}
	if summary != nil {
		updates["transcript_summary"] = *summary
	}
	if err := r.db.WithContext(ctx).
		Model(&entities.OneOnOne{}).
		Where("id = ?", id).
		Updates(updates).Error; err != nil {
		return fmt.Errorf("failed to mark one-on-one processed: %w", err)
	}
	return nil
}

// ActionRepository implements the action repository interface using GORM
type ActionRepository struct {
	db *gorm.DB
}

// NewActionRepository creates a new action repository
func NewActionRepository(db *gorm.DB) *ActionRepository {
	return &ActionRepository{db: db}
}

// ReplaceAIExtracted swaps uncompleted AI-extracted actions for a new set.
// Manual and completed actions are kept.
func (r *ActionRepository) ReplaceAIExtracted(ctx context.Context, oneOnOneID uuid.UUID, actions []*entities.OneOnOneAction) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("one_on_one_id = ? AND source = ? AND completed = ?", oneOnOneID, entities.ActionSourceAIExtracted, false).
			Delete(&entities.OneOnOneAction{}).Error; err != nil {
			return fmt.Errorf("failed to delete previous actions: %w", err)
		}
		if len(actions) == 0 {
			return nil
		}
		for _, a := range actions {
			if a.ID == uuid.Nil {
				a.ID = uuid.New()
			}
		}
		if err := tx.Create(&actions).Error; err != nil {
			return fmt.Errorf("failed to insert actions: %w", err)
		}
		return nil
	})
}

// ListByOneOnOneID lists actions of a one-on-one
func (r *ActionRepository) ListByOneOnOneID(ctx context.Context, oneOnOneID uuid.UUID) ([]*entities.OneOnOneAction, error) {
	var actions []*entities.OneOnOneAction
	if err := r.db.WithContext(ctx).
		Where("one_on_one_id = ?", oneOnOneID).
		Order("created_at ASC").
		Find(&actions).Error; err != nil {
		return nil, fmt.Errorf("failed to list actions: %w", err)
	}
	return actions, nil
}
