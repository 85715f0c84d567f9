package actions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/datatypes"

	"github.com/johnquangdev/peopleops/internal/domain/entities"
	"github.com/johnquangdev/peopleops/internal/domain/repositories"
	"github.com/johnquangdev/peopleops/internal/usecase/duedate"
	usecaseErrors "github.com/johnquangdev/peopleops/internal/usecase/errors"
	pkgai "github.com/johnquangdev/peopleops/pkg/ai"
	"github.com/johnquangdev/peopleops/pkg/metrics"
)

// Defaults applied when Options leaves a field zero
const (
	DefaultMinTranscript    = 50
	DefaultTranscriptBudget = 15000
	DefaultMinConfidence    = 0.5
	DefaultStaleAfter       = 10 * time.Minute
)

// Options tunes extraction limits
type Options struct {
	MinTranscript    int
	TranscriptBudget int
	MinConfidence    float64
	StaleAfter       time.Duration
}

func (o Options) withDefaults() Options {
	if o.MinTranscript <= 0 {
		o.MinTranscript = DefaultMinTranscript
	}
	if o.TranscriptBudget <= 0 {
		o.TranscriptBudget = DefaultTranscriptBudget
	}
	if o.MinConfidence <= 0 {
		o.MinConfidence = DefaultMinConfidence
	}
	if o.StaleAfter <= 0 {
		o.StaleAfter = DefaultStaleAfter
	}
	return o
}

// ExtractInput identifies the one-on-one to process
type ExtractInput struct {
	TenantID   uuid.UUID
	OneOnOneID uuid.UUID
	// MeetingID overrides the linked meeting when set
	MeetingID *uuid.UUID
}

// ExtractResult summarises a successful extraction
type ExtractResult struct {
	OneOnOneID       uuid.UUID
	MeetingID        uuid.UUID
	ProcessingLogID  uuid.UUID
	Summary          string
	ActionsExtracted int
	ActionsDiscarded int
	ParseMethod      ParseMethod
	TranscriptSource string
	Truncated        bool
}

// Service defines transcript action extraction methods
type Service interface {
	Extract(ctx context.Context, input ExtractInput) (*ExtractResult, error)
}

type service struct {
	oneOnOneRepo   repositories.OneOnOneRepository
	meetingRepo    repositories.MeetingRepository
	sentenceRepo   repositories.SentenceRepository
	actionRepo     repositories.ActionRepository
	processingRepo repositories.ProcessingLogRepository
	llm            pkgai.ChatCompleter
	opts           Options
	metrics        *metrics.Metrics
	logger         *zap.Logger
	now            func() time.Time
}

// NewService constructs the transcript action extractor
func NewService(
	oneOnOneRepo repositories.OneOnOneRepository,
	meetingRepo repositories.MeetingRepository,
	sentenceRepo repositories.SentenceRepository,
	actionRepo repositories.ActionRepository,
	processingRepo repositories.ProcessingLogRepository,
	llm pkgai.ChatCompleter,
	opts Options,
	m *metrics.Metrics,
	logger *zap.Logger,
) Service {
	return &service{
		oneOnOneRepo:   oneOnOneRepo,
		meetingRepo:    meetingRepo,
		sentenceRepo:   sentenceRepo,
		actionRepo:     actionRepo,
		processingRepo: processingRepo,
		llm:            llm,
		opts:           opts.withDefaults(),
		metrics:        m,
		logger:         logger,
		now:            time.Now,
	}
}

// Extract runs one extraction. Once the one-on-one is known every attempt leaves
// a processing log row in completed or error state, rejections included.
func (s *service) Extract(ctx context.Context, input ExtractInput) (*ExtractResult, error) {
	o, err := s.oneOnOneRepo.FindByID(ctx, input.TenantID, input.OneOnOneID)
	if err != nil {
		if errors.Is(err, entities.ErrOneOnOneNotFound) {
			return nil, fmt.Errorf("%w: %s", usecaseErrors.ErrOneOnOneNotFound, input.OneOnOneID)
		}
		return nil, err
	}

	meetingID := o.MeetingID
	if input.MeetingID != nil {
		meetingID = input.MeetingID
	}
	if meetingID == nil {
		return nil, s.reject(ctx, o, nil, "", usecaseErrors.ErrMeetingNotLinked)
	}

	meeting, err := s.meetingRepo.FindByID(ctx, input.TenantID, *meetingID)
	if err != nil {
		if errors.Is(err, entities.ErrMeetingNotFound) {
			return nil, s.reject(ctx, o, meetingID, "", fmt.Errorf("%w: %s", usecaseErrors.ErrMeetingNotFound, *meetingID))
		}
		return nil, err
	}

	sentences, err := s.sentenceRepo.ListByMeetingID(ctx, meeting.ID)
	if err != nil {
		return nil, err
	}
	transcript, source := BuildTranscript(meeting, sentences)
	if utf8.RuneCountInString(transcript) < s.opts.MinTranscript {
		return nil, s.reject(ctx, o, &meeting.ID, transcript, usecaseErrors.ErrTranscriptTooShort)
	}
	transcript, truncated := Truncate(transcript, s.opts.TranscriptBudget)

	active, err := s.processingRepo.FindActive(ctx, o.ID, s.now().Add(-s.opts.StaleAfter))
	if err != nil {
		return nil, err
	}
	if active != nil {
		cause := fmt.Errorf("%w: started at %s", usecaseErrors.ErrExtractionInProgress, active.StartedAt.Format(time.RFC3339))
		return nil, s.reject(ctx, o, &meeting.ID, transcript, cause)
	}

	plog := &entities.TranscriptProcessingLog{
		ID:         uuid.New(),
		TenantID:   input.TenantID,
		OneOnOneID: o.ID,
		MeetingID:  &meeting.ID,
		Status:     entities.ProcessingStatusProcessing,
		RawInput:   entities.CapRawInput(transcript),
		Model:      s.llm.Model(),
		StartedAt:  s.now(),
	}
	if err := s.processingRepo.Create(ctx, plog); err != nil {
		return nil, err
	}

	completion, err := s.llm.Complete(ctx, pkgai.CompletionRequest{
		System:   systemPrompt,
		Prompt:   BuildPrompt(displayName(o.Leader, "Leader"), displayName(o.Collaborator, "Collaborator"), transcript),
		JSONMode: true,
	})
	if err != nil {
		s.fail(ctx, plog, err)
		return nil, fmt.Errorf("%w: %v", usecaseErrors.ErrModelCallFailed, err)
	}
	s.metrics.ObserveModelDuration(completion.Duration.Seconds())

	parsed, err := ParseModelResponse(completion.Content)
	if err != nil {
		s.fail(ctx, plog, err)
		return nil, err
	}

	now := s.now()
	rows, discarded := s.buildActions(o, parsed.Response.Actions, now)

	if err := s.actionRepo.ReplaceAIExtracted(ctx, o.ID, rows); err != nil {
		s.fail(ctx, plog, err)
		return nil, err
	}

	var summary *string
	if sum := strings.TrimSpace(parsed.Response.Summary); sum != "" {
		summary = &sum
	}
	if err := s.oneOnOneRepo.MarkProcessed(ctx, o.ID, summary, now); err != nil {
		s.fail(ctx, plog, err)
		return nil, err
	}
	if err := s.meetingRepo.UpdateStatus(ctx, meeting.ID, entities.MeetingStatusProcessed); err != nil && s.logger != nil {
		s.logger.Warn("meeting_status_update_failed", zap.String("meeting_id", meeting.ID.String()), zap.Error(err))
	}

	output, _ := json.Marshal(parsed.Response)
	finished := s.now()
	plog.Status = entities.ProcessingStatusCompleted
	plog.ModelOutput = datatypes.JSON(output)
	plog.Model = completion.Model
	plog.PromptTokens = completion.PromptTokens
	plog.CompletionTokens = completion.CompletionTokens
	plog.ActionsExtracted = len(rows)
	plog.FinishedAt = &finished
	if err := s.processingRepo.Complete(context.WithoutCancel(ctx), plog); err != nil && s.logger != nil {
		s.logger.Warn("processing_log_complete_failed", zap.String("log_id", plog.ID.String()), zap.Error(err))
	}

	s.metrics.RecordExtraction("completed", len(rows))
	if s.logger != nil {
		s.logger.Info("actions_extracted",
			zap.String("one_on_one_id", o.ID.String()),
			zap.String("meeting_id", meeting.ID.String()),
			zap.String("transcript_source", source),
			zap.Bool("truncated", truncated),
			zap.String("parse_method", string(parsed.Method)),
			zap.Int("actions", len(rows)),
			zap.Int("discarded", discarded),
		)
	}

	return &ExtractResult{
		OneOnOneID:       o.ID,
		MeetingID:        meeting.ID,
		ProcessingLogID:  plog.ID,
		Summary:          parsed.Response.Summary,
		ActionsExtracted: len(rows),
		ActionsDiscarded: discarded,
		ParseMethod:      parsed.Method,
		TranscriptSource: source,
		Truncated:        truncated,
	}, nil
}

// buildActions drops low-confidence or empty items and resolves assignee and due date
func (s *service) buildActions(o *entities.OneOnOne, raw []RawAction, now time.Time) ([]*entities.OneOnOneAction, int) {
	rows := make([]*entities.OneOnOneAction, 0, len(raw))
	discarded := 0
	for _, a := range raw {
		text := strings.TrimSpace(a.Text)
		if text == "" || a.Confidence < s.opts.MinConfidence {
			discarded++
			continue
		}

		assignee := o.CollaboratorID
		if strings.EqualFold(strings.TrimSpace(a.Assignee), "leader") {
			assignee = o.LeaderID
		}

		hint := a.DueDateHint
		if hint != nil && strings.TrimSpace(*hint) == "" {
			hint = nil
		}
		due, rule := duedate.ResolveDetailed(hint, now)
		if rule == duedate.RuleFallback && s.logger != nil {
			s.logger.Info("due_date_hint_unrecognised",
				zap.String("one_on_one_id", o.ID.String()),
				zap.String("hint", *hint),
			)
		}

		confidence := a.Confidence
		rows = append(rows, &entities.OneOnOneAction{
			ID:         uuid.New(),
			TenantID:   o.TenantID,
			OneOnOneID: o.ID,
			Text:       text,
			AssigneeID: assignee,
			DueDate:    due,
			Source:     entities.ActionSourceAIExtracted,
			Confidence: &confidence,
			Category:   entities.ParseActionCategory(strings.ToLower(strings.TrimSpace(a.Category))),
		})
	}
	return rows, discarded
}

func (s *service) fail(ctx context.Context, plog *entities.TranscriptProcessingLog, cause error) {
	s.metrics.RecordExtraction("error", 0)
	if s.logger != nil {
		s.logger.Error("action_extraction_failed",
			zap.String("one_on_one_id", plog.OneOnOneID.String()),
			zap.String("log_id", plog.ID.String()),
			zap.Error(cause),
		)
	}
	if err := s.processingRepo.Fail(context.WithoutCancel(ctx), plog.ID, cause.Error(), s.now()); err != nil && s.logger != nil {
		s.logger.Warn("processing_log_fail_failed", zap.String("log_id", plog.ID.String()), zap.Error(err))
	}
}

// reject records an attempt that never reached the model and returns cause
func (s *service) reject(ctx context.Context, o *entities.OneOnOne, meetingID *uuid.UUID, transcript string, cause error) error {
	s.metrics.RecordExtraction("rejected", 0)
	now := s.now()
	msg := cause.Error()
	plog := &entities.TranscriptProcessingLog{
		ID:           uuid.New(),
		TenantID:     o.TenantID,
		OneOnOneID:   o.ID,
		MeetingID:    meetingID,
		Status:       entities.ProcessingStatusError,
		RawInput:     entities.CapRawInput(transcript),
		ErrorMessage: &msg,
		StartedAt:    now,
		FinishedAt:   &now,
	}
	if err := s.processingRepo.Create(context.WithoutCancel(ctx), plog); err != nil && s.logger != nil {
		s.logger.Warn("processing_log_create_failed", zap.String("one_on_one_id", o.ID.String()), zap.Error(err))
	}
	if s.logger != nil {
		s.logger.Info("action_extraction_rejected",
			zap.String("one_on_one_id", o.ID.String()),
			zap.String("reason", msg),
		)
	}
	return cause
}

func displayName(u *entities.User, fallback string) string {
	if u == nil || strings.TrimSpace(u.Name) == "" {
		return fallback
	}
	return u.Name
}
