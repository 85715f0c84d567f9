package oneonone

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/johnquangdev/peopleops/internal/domain/entities"
	"github.com/johnquangdev/peopleops/internal/domain/repositories"
	"github.com/johnquangdev/peopleops/pkg/metrics"
)

const (
	// MinParticipants and MaxParticipants bound meetings considered for linking
	MinParticipants = 2
	MaxParticipants = 4
	// LinkWindow is how far from the meeting time a one-on-one may be scheduled
	LinkWindow = 48 * time.Hour
	// MaxCandidates caps the candidate query
	MaxCandidates = 10
)

// Dispatcher hands an extraction request off without waiting for it
type Dispatcher interface {
	Dispatch(tenantID, oneOnOneID, meetingID uuid.UUID)
}

// LinkResult describes the one-on-one a meeting ended up attached to
type LinkResult struct {
	OneOnOneID uuid.UUID
	// Existing is true when the meeting was already linked before this call
	Existing bool
}

// Linker attaches freshly ingested meetings to scheduled one-on-ones
type Linker interface {
	Link(ctx context.Context, meeting *entities.Meeting, participants []*entities.MeetingParticipant) (*LinkResult, error)
}

type linker struct {
	userRepo     repositories.UserRepository
	oneOnOneRepo repositories.OneOnOneRepository
	meetingRepo  repositories.MeetingRepository
	dispatcher   Dispatcher
	metrics      *metrics.Metrics
	logger       *zap.Logger
	now          func() time.Time
}

// NewLinker constructs a session auto-linker. dispatcher may be nil, in which
// case links are made without triggering extraction.
func NewLinker(
	userRepo repositories.UserRepository,
	oneOnOneRepo repositories.OneOnOneRepository,
	meetingRepo repositories.MeetingRepository,
	dispatcher Dispatcher,
	m *metrics.Metrics,
	logger *zap.Logger,
) Linker {
	return &linker{
		userRepo:     userRepo,
		oneOnOneRepo: oneOnOneRepo,
		meetingRepo:  meetingRepo,
		dispatcher:   dispatcher,
		metrics:      m,
		logger:       logger,
		now:          time.Now,
	}
}

// Link returns nil, nil when the meeting does not look like a one-on-one or no candidate qualifies
func (l *linker) Link(ctx context.Context, meeting *entities.Meeting, participants []*entities.MeetingParticipant) (*LinkResult, error) {
	if len(participants) < MinParticipants || len(participants) > MaxParticipants {
		return nil, nil
	}

	linked, err := l.oneOnOneRepo.FindByMeetingID(ctx, meeting.TenantID, meeting.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing link: %w", err)
	}
	if linked != nil {
		l.metrics.RecordAutoLink("existing")
		return &LinkResult{OneOnOneID: linked.ID, Existing: true}, nil
	}

	emails := make([]string, 0, len(participants))
	for _, p := range participants {
		emails = append(emails, p.Email)
	}
	users, err := l.userRepo.FindByEmails(ctx, meeting.TenantID, emails)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve participants: %w", err)
	}
	resolved := make(map[uuid.UUID]struct{}, len(users))
	ids := make([]uuid.UUID, 0, len(users))
	for _, u := range users {
		if _, dup := resolved[u.ID]; dup {
			continue
		}
		resolved[u.ID] = struct{}{}
		ids = append(ids, u.ID)
	}
	if len(ids) < 2 {
		l.metrics.RecordAutoLink("none")
		return nil, nil
	}

	candidates, err := l.oneOnOneRepo.FindLinkCandidates(ctx, repositories.LinkCandidateQuery{
		TenantID: meeting.TenantID,
		UserIDs:  ids,
		From:     meeting.OccurredAt.Add(-LinkWindow),
		To:       meeting.OccurredAt.Add(LinkWindow),
		Limit:    MaxCandidates,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to find link candidates: %w", err)
	}

	best := SelectCandidate(candidates, resolved)
	if best == nil {
		l.metrics.RecordAutoLink("none")
		return nil, nil
	}

	var summary *string
	if s := strings.TrimSpace(meeting.Summary); s != "" {
		summary = &s
	}
	ok, err := l.oneOnOneRepo.LinkMeeting(ctx, best.ID, meeting.ID, summary, l.now())
	if err != nil {
		return nil, err
	}
	if !ok {
		// Another delivery linked it first
		if l.logger != nil {
			l.logger.Info("auto_link_lost_race",
				zap.String("one_on_one_id", best.ID.String()),
				zap.String("meeting_id", meeting.ID.String()),
			)
		}
		l.metrics.RecordAutoLink("none")
		return nil, nil
	}

	if err := l.meetingRepo.UpdateStatus(ctx, meeting.ID, entities.MeetingStatusLinked); err != nil && l.logger != nil {
		l.logger.Warn("meeting_status_update_failed", zap.String("meeting_id", meeting.ID.String()), zap.Error(err))
	}

	if l.logger != nil {
		l.logger.Info("meeting_auto_linked",
			zap.String("one_on_one_id", best.ID.String()),
			zap.String("meeting_id", meeting.ID.String()),
		)
	}
	l.metrics.RecordAutoLink("linked")

	if l.dispatcher != nil {
		l.dispatcher.Dispatch(meeting.TenantID, best.ID, meeting.ID)
	}
	return &LinkResult{OneOnOneID: best.ID}, nil
}

// SelectCandidate picks the first candidate with both sides present among the
// resolved users, else the first with either side. Candidate order is preserved.
func SelectCandidate(candidates []*entities.OneOnOne, resolved map[uuid.UUID]struct{}) *entities.OneOnOne {
	var partial *entities.OneOnOne
	for _, c := range candidates {
		_, hasLeader := resolved[c.LeaderID]
		_, hasCollaborator := resolved[c.CollaboratorID]
		if hasLeader && hasCollaborator {
			return c
		}
		if partial == nil && (hasLeader || hasCollaborator) {
			partial = c
		}
	}
	return partial
}
