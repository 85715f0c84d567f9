package recognition

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/peopleops/internal/domain/entities"
	"github.com/johnquangdev/peopleops/internal/domain/repositories"
)

// RecorderMinConfidence is the threshold used when scanning ingested meetings
const RecorderMinConfidence = 0.7

// Recorder turns praise detected in a meeting into unreviewed recognition rows
type Recorder interface {
	Record(ctx context.Context, meeting *entities.Meeting, participants []*entities.MeetingParticipant) (int, error)
}

type recorder struct {
	userRepo        repositories.UserRepository
	recognitionRepo repositories.RecognitionRepository
	logger          *zap.Logger
}

// NewRecorder constructs a recognition recorder
func NewRecorder(
	userRepo repositories.UserRepository,
	recognitionRepo repositories.RecognitionRepository,
	logger *zap.Logger,
) Recorder {
	return &recorder{
		userRepo:        userRepo,
		recognitionRepo: recognitionRepo,
		logger:          logger,
	}
}

// Record scans the meeting text and persists one recognition per retained mention.
// A meeting that already has recognitions is not scanned again.
func (r *recorder) Record(ctx context.Context, meeting *entities.Meeting, participants []*entities.MeetingParticipant) (int, error) {
	text := meeting.EnrichmentText()
	if text == "" {
		return 0, nil
	}

	existing, err := r.recognitionRepo.CountByMeetingID(ctx, meeting.ID)
	if err != nil {
		return 0, fmt.Errorf("failed to count recognitions: %w", err)
	}
	if existing > 0 {
		if r.logger != nil {
			r.logger.Debug("recognitions_already_recorded",
				zap.String("meeting_id", meeting.ID.String()),
				zap.Int64("count", existing),
			)
		}
		return int(existing), nil
	}

	people := make([]Participant, 0, len(participants))
	for _, p := range participants {
		people = append(people, Participant{Name: p.DisplayName, Email: p.Email})
	}

	mentions := Detect(text, people, RecorderMinConfidence)
	if len(mentions) == 0 {
		return 0, nil
	}

	recipients, err := r.resolveRecipients(ctx, meeting.TenantID, mentions)
	if err != nil {
		return 0, err
	}

	rows := make([]*entities.Recognition, 0, len(mentions))
	for _, m := range mentions {
		row := &entities.Recognition{
			ID:           uuid.New(),
			TenantID:     meeting.TenantID,
			MeetingID:    meeting.ID,
			MentionText:  m.Text,
			Context:      m.Context,
			PatternLabel: m.Label,
			Confidence:   m.Confidence,
			Value:        entities.RecognitionValueAuto,
			Points:       entities.RecognitionPointsAuto,
			Reviewed:     false,
			Source:       entities.RecognitionSourceAuto,
		}
		if m.Target != nil {
			name, email := m.Target.Name, entities.NormalizeEmail(m.Target.Email)
			row.TargetName = &name
			if email != "" {
				row.TargetEmail = &email
				if id, ok := recipients[email]; ok {
					row.RecipientID = &id
				}
			}
		}
		rows = append(rows, row)
	}

	if err := r.recognitionRepo.CreateBatch(ctx, rows); err != nil {
		return 0, fmt.Errorf("failed to store recognitions: %w", err)
	}

	if r.logger != nil {
		r.logger.Info("recognitions_recorded",
			zap.String("meeting_id", meeting.ID.String()),
			zap.Int("count", len(rows)),
		)
	}
	return len(rows), nil
}

func (r *recorder) resolveRecipients(ctx context.Context, tenantID uuid.UUID, mentions []Mention) (map[string]uuid.UUID, error) {
	var emails []string
	for _, m := range mentions {
		if m.Target != nil && m.Target.Email != "" {
			emails = append(emails, m.Target.Email)
		}
	}
	out := make(map[string]uuid.UUID, len(emails))
	if len(emails) == 0 {
		return out, nil
	}

	users, err := r.userRepo.FindByEmails(ctx, tenantID, emails)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve recognition targets: %w", err)
	}
	for _, u := range users {
		out[entities.NormalizeEmail(u.Email)] = u.ID
	}
	return out, nil
}
