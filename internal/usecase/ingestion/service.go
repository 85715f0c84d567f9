package ingestion

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/johnquangdev/peopleops/internal/domain/entities"
	"github.com/johnquangdev/peopleops/internal/domain/repositories"
	usecaseErrors "github.com/johnquangdev/peopleops/internal/usecase/errors"
	"github.com/johnquangdev/peopleops/internal/usecase/oneonone"
	"github.com/johnquangdev/peopleops/internal/usecase/recognition"
	"github.com/johnquangdev/peopleops/pkg/metrics"
)

// Action reports whether ingestion inserted or updated the meeting
type Action string

const (
	ActionCreated Action = "created"
	ActionUpdated Action = "updated"
)

// PayloadArchiver stores the raw notification body
type PayloadArchiver interface {
	ArchivePayload(ctx context.Context, tenantID uuid.UUID, externalID string, body []byte) (string, error)
}

// ParticipantInput is one attendee from the notification
type ParticipantInput struct {
	Email       string
	DisplayName string
}

// SentenceInput is one transcript sentence from the notification
type SentenceInput struct {
	Index       int
	SpeakerName string
	Text        string
	StartTime   float64
	EndTime     float64
}

// NotificationInput is a validated "transcript ready" notification
type NotificationInput struct {
	TenantID        uuid.UUID
	ExternalID      string
	Title           string
	OccurredAt      *time.Time
	DurationMinutes int
	Participants    []ParticipantInput
	Summary         string
	Transcript      string
	Notes           string
	TranscriptURL   *string
	AudioURL        *string
	OrganizerEmail  *string
	HostEmail       *string
	Sentences       []SentenceInput
	RawPayload      []byte
}

// Result is returned to the notification sender
type Result struct {
	MeetingID       uuid.UUID
	Action          Action
	PraisesDetected int
	LinkedOneOnOne  *uuid.UUID
}

// Service defines meeting ingestion methods
type Service interface {
	Ingest(ctx context.Context, input NotificationInput) (*Result, error)
}

type service struct {
	tenantRepo      repositories.TenantRepository
	meetingRepo     repositories.MeetingRepository
	participantRepo repositories.ParticipantRepository
	sentenceRepo    repositories.SentenceRepository
	syncLogRepo     repositories.SyncLogRepository
	recorder        recognition.Recorder
	linker          oneonone.Linker
	archiver        PayloadArchiver
	metrics         *metrics.Metrics
	logger          *zap.Logger
	now             func() time.Time
}

// NewService constructs the ingestion gateway. archiver may be nil.
func NewService(
	tenantRepo repositories.TenantRepository,
	meetingRepo repositories.MeetingRepository,
	participantRepo repositories.ParticipantRepository,
	sentenceRepo repositories.SentenceRepository,
	syncLogRepo repositories.SyncLogRepository,
	recorder recognition.Recorder,
	linker oneonone.Linker,
	archiver PayloadArchiver,
	m *metrics.Metrics,
	logger *zap.Logger,
) Service {
	return &service{
		tenantRepo:      tenantRepo,
		meetingRepo:     meetingRepo,
		participantRepo: participantRepo,
		sentenceRepo:    sentenceRepo,
		syncLogRepo:     syncLogRepo,
		recorder:        recorder,
		linker:          linker,
		archiver:        archiver,
		metrics:         m,
		logger:          logger,
		now:             time.Now,
	}
}

// Ingest upserts the meeting and runs each enrichment stage in isolation.
// Only failures of the meeting write itself are returned.
func (s *service) Ingest(ctx context.Context, input NotificationInput) (*Result, error) {
	externalID := strings.TrimSpace(input.ExternalID)
	if externalID == "" {
		return nil, usecaseErrors.ErrMeetingIDRequired
	}

	tenant, err := s.tenantRepo.FindByID(ctx, input.TenantID)
	if err != nil {
		if errors.Is(err, entities.ErrTenantNotFound) {
			return nil, fmt.Errorf("%w: %s", usecaseErrors.ErrTenantNotFound, input.TenantID)
		}
		s.logWarn("tenant_lookup_failed", err, zap.String("tenant_id", input.TenantID.String()), zap.String("external_id", externalID))
		s.auditLookupFailure(ctx, input.TenantID, externalID, err)
		s.metrics.RecordIngestion("error")
		return nil, fmt.Errorf("failed to load tenant: %w", err)
	}
	if !tenant.IsActive {
		return nil, fmt.Errorf("%w: %s", usecaseErrors.ErrTenantInactive, input.TenantID)
	}

	entry := &entities.SyncLogEntry{
		ID:         uuid.New(),
		TenantID:   tenant.ID,
		Source:     entities.MeetingSourceFireflies,
		ExternalID: externalID,
		Status:     entities.SyncStatusStarted,
		StartedAt:  s.now(),
	}
	if err := s.syncLogRepo.Create(ctx, entry); err != nil {
		// Audit is best-effort; keep going without it
		s.logWarn("sync_log_create_failed", err, zap.String("external_id", externalID))
		entry = nil
	}

	meeting := s.buildMeeting(tenant, externalID, input)
	created, err := s.meetingRepo.Upsert(ctx, meeting)
	if err != nil {
		s.finishLog(ctx, entry, nil, err, nil)
		s.metrics.RecordIngestion("error")
		return nil, fmt.Errorf("failed to upsert meeting: %w", err)
	}

	result := &Result{MeetingID: meeting.ID, Action: ActionUpdated}
	if created {
		result.Action = ActionCreated
	}
	stages := map[string]string{}

	participants := buildParticipants(tenant, meeting.ID, input.Participants)
	if err := s.participantRepo.InsertMissing(ctx, participants); err != nil {
		stages["participants"] = err.Error()
		s.logWarn("participants_upsert_failed", err, zap.String("meeting_id", meeting.ID.String()))
	}

	if len(input.Sentences) > 0 {
		if err := s.sentenceRepo.ReplaceForMeeting(ctx, meeting.ID, buildSentences(input.Sentences)); err != nil {
			stages["sentences"] = err.Error()
			s.logWarn("sentences_store_failed", err, zap.String("meeting_id", meeting.ID.String()))
		}
	}

	if s.archiver != nil && len(input.RawPayload) > 0 {
		if key, err := s.archiver.ArchivePayload(ctx, tenant.ID, externalID, input.RawPayload); err != nil {
			stages["archive"] = err.Error()
			s.logWarn("payload_archive_failed", err, zap.String("meeting_id", meeting.ID.String()))
		} else if s.logger != nil {
			s.logger.Debug("payload_archived", zap.String("key", key))
		}
	}

	if s.recorder != nil {
		praises, err := s.recorder.Record(ctx, meeting, participants)
		if err != nil {
			stages["recognition"] = err.Error()
			s.logWarn("recognition_stage_failed", err, zap.String("meeting_id", meeting.ID.String()))
			praises = 0
		}
		result.PraisesDetected = praises
		s.metrics.RecordPraises(praises)
	}

	if s.linker != nil {
		link, err := s.linker.Link(ctx, meeting, participants)
		if err != nil {
			stages["auto_link"] = err.Error()
			s.logWarn("auto_link_stage_failed", err, zap.String("meeting_id", meeting.ID.String()))
			s.metrics.RecordAutoLink("error")
		} else if link != nil {
			id := link.OneOnOneID
			result.LinkedOneOnOne = &id
		}
	}

	s.finishLog(ctx, entry, result, nil, stages)
	s.metrics.RecordIngestion(string(result.Action))

	if s.logger != nil {
		s.logger.Info("meeting_ingested",
			zap.String("tenant_id", tenant.ID.String()),
			zap.String("external_id", externalID),
			zap.String("meeting_id", meeting.ID.String()),
			zap.String("action", string(result.Action)),
			zap.Int("praises_detected", result.PraisesDetected),
			zap.Bool("linked", result.LinkedOneOnOne != nil),
		)
	}
	return result, nil
}

func (s *service) buildMeeting(tenant *entities.Tenant, externalID string, input NotificationInput) *entities.Meeting {
	now := s.now()
	title := strings.TrimSpace(input.Title)
	if title == "" {
		title = entities.DefaultMeetingTitle
	}
	occurredAt := now
	if input.OccurredAt != nil && !input.OccurredAt.IsZero() {
		occurredAt = *input.OccurredAt
	}
	duration := input.DurationMinutes
	if duration < 0 {
		duration = 0
	}

	return &entities.Meeting{
		TenantID:        tenant.ID,
		ExternalID:      externalID,
		Title:           title,
		OccurredAt:      occurredAt,
		DurationMinutes: duration,
		Summary:         input.Summary,
		Transcript:      input.Transcript,
		Notes:           input.Notes,
		TranscriptURL:   input.TranscriptURL,
		AudioURL:        input.AudioURL,
		OrganizerEmail:  normalizeOptionalEmail(input.OrganizerEmail),
		HostEmail:       normalizeOptionalEmail(input.HostEmail),
		Category:        Categorize(title),
		Status:          entities.MeetingStatusSynced,
		Source:          entities.MeetingSourceFireflies,
		SyncedAt:        now,
	}
}

// buildParticipants drops entries without an email and collapses duplicates
func buildParticipants(tenant *entities.Tenant, meetingID uuid.UUID, in []ParticipantInput) []*entities.MeetingParticipant {
	seen := make(map[string]struct{}, len(in))
	out := make([]*entities.MeetingParticipant, 0, len(in))
	for _, p := range in {
		email := entities.NormalizeEmail(p.Email)
		if email == "" || !strings.Contains(email, "@") {
			continue
		}
		if _, dup := seen[email]; dup {
			continue
		}
		seen[email] = struct{}{}

		name := strings.TrimSpace(p.DisplayName)
		if name == "" {
			name = email[:strings.Index(email, "@")]
		}
		out = append(out, &entities.MeetingParticipant{
			MeetingID:   meetingID,
			Email:       email,
			DisplayName: name,
			IsInternal:  tenant.IsInternalEmail(email),
		})
	}
	return out
}

func buildSentences(in []SentenceInput) []*entities.MeetingSentence {
	out := make([]*entities.MeetingSentence, 0, len(in))
	for i, s := range in {
		text := strings.TrimSpace(s.Text)
		if text == "" {
			continue
		}
		idx := s.Index
		if idx == 0 && i > 0 {
			idx = i
		}
		out = append(out, &entities.MeetingSentence{
			Index:       idx,
			SpeakerName: strings.TrimSpace(s.SpeakerName),
			Text:        text,
			StartTime:   s.StartTime,
			EndTime:     s.EndTime,
		})
	}
	return out
}

// auditLookupFailure records an attempt that failed before the tenant was loaded
func (s *service) auditLookupFailure(ctx context.Context, tenantID uuid.UUID, externalID string, failure error) {
	if tenantID == uuid.Nil {
		return
	}
	now := s.now()
	msg := failure.Error()
	entry := &entities.SyncLogEntry{
		ID:           uuid.New(),
		TenantID:     tenantID,
		Source:       entities.MeetingSourceFireflies,
		ExternalID:   externalID,
		Status:       entities.SyncStatusError,
		ErrorMessage: &msg,
		StartedAt:    now,
		FinishedAt:   &now,
	}
	if err := s.syncLogRepo.Create(context.WithoutCancel(ctx), entry); err != nil {
		s.logWarn("sync_log_create_failed", err, zap.String("external_id", externalID))
	}
}

// finishLog writes the terminal audit state; failures here are only logged
func (s *service) finishLog(ctx context.Context, entry *entities.SyncLogEntry, result *Result, failure error, stages map[string]string) {
	if entry == nil {
		return
	}
	finished := s.now()
	entry.FinishedAt = &finished

	if failure != nil {
		msg := failure.Error()
		entry.Status = entities.SyncStatusError
		entry.ErrorMessage = &msg
	} else {
		entry.Status = entities.SyncStatusSuccess
	}
	if result != nil {
		id := result.MeetingID
		entry.MeetingID = &id
		entry.Action = string(result.Action)
		entry.PraisesDetected = result.PraisesDetected
		entry.LinkedOneOnOneID = result.LinkedOneOnOne
	}
	if len(stages) > 0 {
		if raw, err := json.Marshal(map[string]interface{}{"stage_errors": stages}); err == nil {
			entry.Details = datatypes.JSON(raw)
		}
	}

	if err := s.syncLogRepo.Finish(context.WithoutCancel(ctx), entry); err != nil {
		s.logWarn("sync_log_finish_failed", err, zap.String("sync_log_id", entry.ID.String()))
	}
}

func (s *service) logWarn(msg string, err error, fields ...zap.Field) {
	if s.logger == nil {
		return
	}
	s.logger.Warn(msg, append(fields, zap.Error(err))...)
}

func normalizeOptionalEmail(e *string) *string {
	if e == nil {
		return nil
	}
	n := entities.NormalizeEmail(*e)
	if n == "" {
		return nil
	}
	return &n
}
