package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/johnquangdev/peopleops/internal/domain/entities"
)

// MeetingRepository implements the meeting repository interface using GORM
type MeetingRepository struct {
	db *gorm.DB
}

// NewMeetingRepository creates a new meeting repository
func NewMeetingRepository(db *gorm.DB) *MeetingRepository {
	return &MeetingRepository{db: db}
}

// meetingUpdateColumns are overwritten when a notification is redelivered
var meetingUpdateColumns = []string{
	"title", "occurred_at", "duration_minutes", "summary", "transcript", "notes",
	"transcript_url", "audio_url", "organizer_email", "host_email", "category",
	"synced_at", "updated_at",
}

// FindByID finds a meeting by ID
func (r *MeetingRepository) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*entities.Meeting, error) {
	var meeting entities.Meeting
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND id = ?", tenantID, id).
		First(&meeting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, entities.ErrMeetingNotFound
		}
		return nil, fmt.Errorf("failed to find meeting by ID: %w", err)
	}
	return &meeting, nil
}

// FindByExternalID finds a meeting by its provider id
func (r *MeetingRepository) FindByExternalID(ctx context.Context, tenantID uuid.UUID, externalID string) (*entities.Meeting, error) {
	var meeting entities.Meeting
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND external_id = ?", tenantID, externalID).
		First(&meeting).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to find meeting by external ID: %w", err)
	}
	return &meeting, nil
}

// Upsert inserts the meeting, falling back to an update of the existing row
// when another delivery of the same notification won the insert.
func (r *MeetingRepository) Upsert(ctx context.Context, meeting *entities.Meeting) (bool, error) {
	existing, err := r.FindByExternalID(ctx, meeting.TenantID, meeting.ExternalID)
	if err != nil {
		return false, err
	}

	if existing == nil {
		if meeting.ID == uuid.Nil {
			meeting.ID = uuid.New()
		}
		result := r.db.WithContext(ctx).
			Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "tenant_id"}, {Name: "external_id"}},
				DoNothing: true,
			}).
			Create(meeting)
		if result.Error != nil {
			return false, fmt.Errorf("failed to create meeting: %w", result.Error)
		}
		if result.RowsAffected == 1 {
			return true, nil
		}

		existing, err = r.FindByExternalID(ctx, meeting.TenantID, meeting.ExternalID)
		if err != nil {
			return false, err
		}
		if existing == nil {
			return false, fmt.Errorf("meeting %s vanished after insert conflict", meeting.ExternalID)
		}
	}

	meeting.ID = existing.ID
	meeting.Status = existing.Status
	meeting.CreatedAt = existing.CreatedAt
	if err := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", existing.ID).
		Select(meetingUpdateColumns).
		Updates(meeting).Error; err != nil {
		return false, fmt.Errorf("failed to update meeting: %w", err)
	}
	return false, nil
}

// UpdateStatus sets the enrichment status of a meeting
func (r *MeetingRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status entities.MeetingStatus) error {
	if err := r.db.WithContext(ctx).
		Model(&entities.Meeting{}).
		Where("id = ?", id).
		Update("status", status).Error; err != nil {
		return fmt.Errorf("failed to update meeting status: %w", err)
	}
	return nil
}

// ParticipantRepository implements the participant repository interface using GORM
type ParticipantRepository struct {
	db *gorm.DB
}

// NewParticipantRepository creates a new participant repository
func NewParticipantRepository(db *gorm.DB) *ParticipantRepository {
	return &ParticipantRepository{db: db}
}

// InsertMissing inserts participants, skipping (meeting_id, email) pairs already present
func (r *ParticipantRepository) InsertMissing(ctx context.Context, participants []*entities.MeetingParticipant) error {
	if len(participants) == 0 {
		return nil
	}
	for _, p := range participants {
		if p.ID == uuid.Nil {
			p.ID = uuid.New()
		}
	}
	if err := r.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "meeting_id"}, {Name: "email"}},
			DoNothing: true,
		}).
		Create(&participants).Error; err != nil {
		return fmt.Errorf("failed to insert participants: %w", err)
	}
	return nil
}

// FindByMeetingID lists participants of a meeting
func (r *ParticipantRepository) FindByMeetingID(ctx context.Context, meetingID uuid.UUID) ([]*entities.MeetingParticipant, error) {
	var participants []*entities.MeetingParticipant
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("created_at ASC").
		Find(&participants).Error; err != nil {
		return nil, fmt.Errorf("failed to list participants: %w", err)
	}
	return participants, nil
}

// SentenceRepository implements the sentence repository interface using GORM
type SentenceRepository struct {
	db *gorm.DB
}

// NewSentenceRepository creates a new sentence repository
func NewSentenceRepository(db *gorm.DB) *SentenceRepository {
	return &SentenceRepository{db: db}
}

// ReplaceForMeeting deletes existing sentences and inserts the new set atomically
func (r *SentenceRepository) ReplaceForMeeting(ctx context.Context, meetingID uuid.UUID, sentences []*entities.MeetingSentence) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("meeting_id = ?", meetingID).Delete(&entities.MeetingSentence{}).Error; err != nil {
			return fmt.Errorf("failed to delete sentences: %w", err)
		}
		if len(sentences) == 0 {
			return nil
		}
		for _, s := range sentences {
			s.MeetingID = meetingID
			if s.ID == uuid.Nil {
				s.ID = uuid.New()
			}
		}
		if err := tx.CreateInBatches(sentences, 200).Error; err != nil {
			return fmt.Errorf("failed to insert sentences: %w", err)
		}
		return nil
	})
}

// ListByMeetingID returns sentences ordered by index
func (r *SentenceRepository) ListByMeetingID(ctx context.Context, meetingID uuid.UUID) ([]*entities.MeetingSentence, error) {
	var sentences []*entities.MeetingSentence
	if err := r.db.WithContext(ctx).
		Where("meeting_id = ?", meetingID).
		Order("sentence_index ASC").
		Find(&sentences).Error; err != nil {
		return nil, fmt.Errorf("failed to list sentences: %w", err)
	}
	return sentences, nil
}

// RecognitionRepository implements the recognition repository interface using GORM
type RecognitionRepository struct {
	db *gorm.DB
}

// NewRecognitionRepository creates a new recognition repository
func NewRecognitionRepository(db *gorm.DB) *RecognitionRepository {
	return &RecognitionRepository{db: db}
}

// CreateBatch inserts recognitions in one statement
func (r *RecognitionRepository) CreateBatch(ctx context.Context, recognitions []*entities.Recognition) error {
	if len(recognitions) == 0 {
		return nil
	}
	if err := r.db.WithContext(ctx).Create(&recognitions).Error; err != nil {
		return fmt.Errorf("failed to create recognitions: %w", err)
	}
	return nil
}

// CountByMeetingID counts recognitions already recorded for a meeting
func (r *RecognitionRepository) CountByMeetingID(ctx context.Context, meetingID uuid.UUID) (int64, error) {
	var count int64
	if err := r.db.WithContext(ctx).
		Model(&entities.Recognition{}).
		Where("meeting_id = ?", meetingID).
		Count(&count).Error; err != nil {
		return 0, fmt.Errorf("failed to count recognitions: %w", err)
	}
	return count, nil
}
