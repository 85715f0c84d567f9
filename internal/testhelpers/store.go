// Package testhelpers provides in-memory repositories and fakes for use case tests.
package testhelpers

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/johnquangdev/peopleops/internal/domain/entities"
	"github.com/johnquangdev/peopleops/internal/domain/repositories"
)

// Store is an in-memory stand-in for the Postgres schema. Set Errors[op] to
// make the named repository operation fail, e.g. Errors["recognitions.CreateBatch"].
type Store struct {
	mu sync.Mutex

	Tenants        map[uuid.UUID]*entities.Tenant
	Users          map[uuid.UUID]*entities.User
	Meetings       map[uuid.UUID]*entities.Meeting
	Participants   []*entities.MeetingParticipant
	Sentences      map[uuid.UUID][]*entities.MeetingSentence
	Recognitions   []*entities.Recognition
	OneOnOnes      map[uuid.UUID]*entities.OneOnOne
	Actions        []*entities.OneOnOneAction
	SyncLogs       map[uuid.UUID]*entities.SyncLogEntry
	ProcessingLogs map[uuid.UUID]*entities.TranscriptProcessingLog

	Errors map[string]error
}

// NewStore creates an empty store
func NewStore() *Store {
	return &Store{
		Tenants:        make(map[uuid.UUID]*entities.Tenant),
		Users:          make(map[uuid.UUID]*entities.User),
		Meetings:       make(map[uuid.UUID]*entities.Meeting),
		Sentences:      make(map[uuid.UUID][]*entities.MeetingSentence),
		OneOnOnes:      make(map[uuid.UUID]*entities.OneOnOne),
		SyncLogs:       make(map[uuid.UUID]*entities.SyncLogEntry),
		ProcessingLogs: make(map[uuid.UUID]*entities.TranscriptProcessingLog),
		Errors:         make(map[string]error),
	}
}

func (s *Store) fail(op string) error {
	return s.Errors[op]
}

// AddTenant inserts an active tenant owning domain
func (s *Store) AddTenant(domain string) *entities.Tenant {
	s.mu.Lock()
	defer s.mu.Unlock()
	t := &entities.Tenant{ID: uuid.New(), Name: domain, Slug: domain, EmailDomains: domain, IsActive: true}
	s.Tenants[t.ID] = t
	return t
}

// AddUser inserts an active user
func (s *Store) AddUser(tenantID uuid.UUID, email, name string) *entities.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	u := entities.NewUser(tenantID, email, name)
	s.Users[u.ID] = u
	return u
}

// AddOneOnOne inserts a one-on-one in the given status
func (s *Store) AddOneOnOne(tenantID, leaderID, collaboratorID uuid.UUID, at time.Time, status entities.OneOnOneStatus) *entities.OneOnOne {
	s.mu.Lock()
	defer s.mu.Unlock()
	o := &entities.OneOnOne{
		ID:             uuid.New(),
		TenantID:       tenantID,
		LeaderID:       leaderID,
		CollaboratorID: collaboratorID,
		ScheduledAt:    at,
		Status:         status,
	}
	s.OneOnOnes[o.ID] = o
	return o
}

// AddMeeting inserts a meeting as-is
func (s *Store) AddMeeting(m *entities.Meeting) *entities.Meeting {
	s.mu.Lock()
	defer s.mu.Unlock()
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	cp := *m
	s.Meetings[m.ID] = &cp
	return m
}

// MeetingCount returns the number of stored meetings
func (s *Store) MeetingCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Meetings)
}

// RecognitionsFor returns the recognitions recorded for a meeting
func (s *Store) RecognitionsFor(meetingID uuid.UUID) []*entities.Recognition {
	s.mu.Lock()
	defer s.mu.Unlock()
	var out []*entities.Recognition
	for _, r := range s.Recognitions {
		if r.MeetingID == meetingID {
			out = append(out, r)
		}
	}
	return out
}

// SyncLogList returns sync log entries ordered by start time
func (s *Store) SyncLogList() []*entities.SyncLogEntry {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entities.SyncLogEntry, 0, len(s.SyncLogs))
	for _, e := range s.SyncLogs {
		cp := *e
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out
}

// ProcessingLogList returns processing logs ordered by start time
func (s *Store) ProcessingLogList() []*entities.TranscriptProcessingLog {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]*entities.TranscriptProcessingLog, 0, len(s.ProcessingLogs))
	for _, l := range s.ProcessingLogs {
		cp := *l
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].StartedAt.Before(out[j].StartedAt) })
	return out
}

// Repository accessors

func (s *Store) TenantRepo() repositories.TenantRepository { return tenantRepo{s} }
func (s *Store) UserRepo() repositories.UserRepository { return userRepo{s} }
func (s *Store) MeetingRepo() repositories.MeetingRepository { return meetingRepo{s} }
func (s *Store) ParticipantRepo() repositories.ParticipantRepository { return participantRepo{s} }
func (s *Store) SentenceRepo() repositories.SentenceRepository { return sentenceRepo{s} }
func (s *Store) RecognitionRepo() repositories.RecognitionRepository { return recognitionRepo{s} }
func (s *Store) OneOnOneRepo() repositories.OneOnOneRepository { return oneOnOneRepo{s} }
func (s *Store) ActionRepo() repositories.ActionRepository { return actionRepo{s} }
func (s *Store) SyncLogRepo() repositories.SyncLogRepository { return syncLogRepo{s} }
func (s *Store) ProcessingLogRepo() repositories.ProcessingLogRepository {
	return processingLogRepo{s}
}

type tenantRepo struct{ s *Store }

func (r tenantRepo) FindByID(_ context.Context, id uuid.UUID) (*entities.Tenant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("tenants.FindByID"); err != nil {
		return nil, err
	}
	t, ok := r.s.Tenants[id]
	if !ok {
		return nil, entities.ErrTenantNotFound
	}
	cp := *t
	return &cp, nil
}

type userRepo struct{ s *Store }

func (r userRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	u, ok := r.s.Users[id]
	if !ok || u.TenantID != tenantID {
		return nil, entities.ErrUserNotFound
	}
	cp := *u
	return &cp, nil
}

func (r userRepo) FindByEmail(_ context.Context, tenantID uuid.UUID, email string) (*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, u := range r.s.Users {
		if u.TenantID == tenantID && u.IsActive && strings.EqualFold(u.Email, email) {
			cp := *u
			return &cp, nil
		}
	}
	return nil, entities.ErrUserNotFound
}

func (r userRepo) FindByEmails(_ context.Context, tenantID uuid.UUID, emails []string) ([]*entities.User, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("users.FindByEmails"); err != nil {
		return nil, err
	}
	want := make(map[string]struct{}, len(emails))
	for _, e := range emails {
		want[entities.NormalizeEmail(e)] = struct{}{}
	}
	var out []*entities.User
	for _, u := range r.s.Users {
		if u.TenantID != tenantID || !u.IsActive {
			continue
		}
		if _, ok := want[entities.NormalizeEmail(u.Email)]; ok {
			cp := *u
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

type meetingRepo struct{ s *Store }

func (r meetingRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*entities.Meeting, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	m, ok := r.s.Meetings[id]
	if !ok || m.TenantID != tenantID {
		return nil, entities.ErrMeetingNotFound
	}
	cp := *m
	return &cp, nil
}

func (r meetingRepo) FindByExternalID(_ context.Context, tenantID uuid.UUID, externalID string) (*entities.Meeting, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	return r.findByExternalID(tenantID, externalID), nil
}

func (r meetingRepo) findByExternalID(tenantID uuid.UUID, externalID string) *entities.Meeting {
	for _, m := range r.s.Meetings {
		if m.TenantID == tenantID && m.ExternalID == externalID {
			cp := *m
			return &cp
		}
	}
	return nil
}

func (r meetingRepo) Upsert(_ context.Context, meeting *entities.Meeting) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("meetings.Upsert"); err != nil {
		return false, err
	}

	existing := r.findByExternalID(meeting.TenantID, meeting.ExternalID)
	if existing == nil {
		if meeting.ID == uuid.Nil {
			meeting.ID = uuid.New()
		}
		cp := *meeting
		r.s.Meetings[meeting.ID] = &cp
		return true, nil
	}

	meeting.ID = existing.ID
	meeting.Status = existing.Status
	meeting.CreatedAt = existing.CreatedAt
	cp := *meeting
	r.s.Meetings[existing.ID] = &cp
	return false, nil
}

func (r meetingRepo) UpdateStatus(_ context.Context, id uuid.UUID, status entities.MeetingStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if m, ok := r.s.Meetings[id]; ok {
		m.Status = status
	}
	return nil
}

type participantRepo struct{ s *Store }

func (r participantRepo) InsertMissing(_ context.Context, participants []*entities.MeetingParticipant) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("participants.InsertMissing"); err != nil {
		return err
	}
	for _, p := range participants {
		dup := false
		for _, e := range r.s.Participants {
			if e.MeetingID == p.MeetingID && e.Email == p.Email {
				dup = true
				break
			}
		}
		if !dup {
			cp := *p
			r.s.Participants = append(r.s.Participants, &cp)
		}
	}
	return nil
}

func (r participantRepo) FindByMeetingID(_ context.Context, meetingID uuid.UUID) ([]*entities.MeetingParticipant, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entities.MeetingParticipant
	for _, p := range r.s.Participants {
		if p.MeetingID == meetingID {
			cp := *p
			out = append(out, &cp)
		}
	}
	return out, nil
}

type sentenceRepo struct{ s *Store }

func (r sentenceRepo) ReplaceForMeeting(_ context.Context, meetingID uuid.UUID, sentences []*entities.MeetingSentence) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := make([]*entities.MeetingSentence, 0, len(sentences))
	for _, s := range sentences {
		cp := *s
		cp.MeetingID = meetingID
		out = append(out, &cp)
	}
	r.s.Sentences[meetingID] = out
	return nil
}

func (r sentenceRepo) ListByMeetingID(_ context.Context, meetingID uuid.UUID) ([]*entities.MeetingSentence, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	out := append([]*entities.MeetingSentence(nil), r.s.Sentences[meetingID]...)
	sort.SliceStable(out, func(i, j int) bool { return out[i].Index < out[j].Index })
	return out, nil
}

type recognitionRepo struct{ s *Store }

func (r recognitionRepo) CreateBatch(_ context.Context, recognitions []*entities.Recognition) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("recognitions.CreateBatch"); err != nil {
		return err
	}
	for _, rec := range recognitions {
		cp := *rec
		r.s.Recognitions = append(r.s.Recognitions, &cp)
	}
	return nil
}

func (r recognitionRepo) CountByMeetingID(_ context.Context, meetingID uuid.UUID) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var n int64
	for _, rec := range r.s.Recognitions {
		if rec.MeetingID == meetingID {
			n++
		}
	}
	return n, nil
}

type oneOnOneRepo struct{ s *Store }

func (r oneOnOneRepo) FindByID(_ context.Context, tenantID, id uuid.UUID) (*entities.OneOnOne, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.OneOnOnes[id]
	if !ok || o.TenantID != tenantID {
		return nil, entities.ErrOneOnOneNotFound
	}
	cp := *o
	if u, ok := r.s.Users[o.LeaderID]; ok {
		leader := *u
		cp.Leader = &leader
	}
	if u, ok := r.s.Users[o.CollaboratorID]; ok {
		collaborator := *u
		cp.Collaborator = &collaborator
	}
	return &cp, nil
}

func (r oneOnOneRepo) FindByMeetingID(_ context.Context, tenantID, meetingID uuid.UUID) (*entities.OneOnOne, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, o := range r.s.OneOnOnes {
		if o.TenantID == tenantID && o.MeetingID != nil && *o.MeetingID == meetingID {
			cp := *o
			return &cp, nil
		}
	}
	return nil, nil
}

func (r oneOnOneRepo) FindLinkCandidates(_ context.Context, q repositories.LinkCandidateQuery) ([]*entities.OneOnOne, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("oneOnOnes.FindLinkCandidates"); err != nil {
		return nil, err
	}
	users := make(map[uuid.UUID]struct{}, len(q.UserIDs))
	for _, id := range q.UserIDs {
		users[id] = struct{}{}
	}
	var out []*entities.OneOnOne
	for _, o := range r.s.OneOnOnes {
		if o.TenantID != q.TenantID || o.MeetingID != nil || !o.Status.IsLinkable() {
			continue
		}
		if o.ScheduledAt.Before(q.From) || o.ScheduledAt.After(q.To) {
			continue
		}
		_, leader := users[o.LeaderID]
		_, collaborator := users[o.CollaboratorID]
		if !leader && !collaborator {
			continue
		}
		cp := *o
		out = append(out, &cp)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].ScheduledAt.Before(out[j].ScheduledAt) })
	if q.Limit > 0 && len(out) > q.Limit {
		out = out[:q.Limit]
	}
	return out, nil
}

func (r oneOnOneRepo) LinkMeeting(_ context.Context, id, meetingID uuid.UUID, summary *string, at time.Time) (bool, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.OneOnOnes[id]
	if !ok || o.MeetingID != nil {
		return false, nil
	}
	mid := meetingID
	o.MeetingID = &mid
	o.Status = entities.OneOnOneStatusCompleted
	o.CompletedAt = &at
	if summary != nil {
		sum := *summary
		o.TranscriptSummary = &sum
	}
	return true, nil
}

func (r oneOnOneRepo) MarkProcessed(_ context.Context, id uuid.UUID, summary *string, at time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	o, ok := r.s.OneOnOnes[id]
	if !ok {
		return entities.ErrOneOnOneNotFound
	}
	o.ProcessedAt = &at
	if summary != nil {
		sum := *summary
		o.TranscriptSummary = &sum
	}
	return nil
}

type actionRepo struct{ s *Store }

func (r actionRepo) ReplaceAIExtracted(_ context.Context, oneOnOneID uuid.UUID, actions []*entities.OneOnOneAction) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if err := r.s.fail("actions.ReplaceAIExtracted"); err != nil {
		return err
	}
	kept := r.s.Actions[:0]
	for _, a := range r.s.Actions {
		if a.OneOnOneID == oneOnOneID && a.Source == entities.ActionSourceAIExtracted && !a.Completed {
			continue
		}
		kept = append(kept, a)
	}
	r.s.Actions = kept
	for _, a := range actions {
		cp := *a
		r.s.Actions = append(r.s.Actions, &cp)
	}
	return nil
}

func (r actionRepo) ListByOneOnOneID(_ context.Context, oneOnOneID uuid.UUID) ([]*entities.OneOnOneAction, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	var out []*entities.OneOnOneAction
	for _, a := range r.s.Actions {
		if a.OneOnOneID == oneOnOneID {
			cp := *a
			out = append(out, &cp)
		}
	}
	return out, nil
}

type syncLogRepo struct{ s *Store }

func (r syncLogRepo) Create(_ context.Context, entry *entities.SyncLogEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if entry.ID == uuid.Nil {
		entry.ID = uuid.New()
	}
	cp := *entry
	r.s.SyncLogs[entry.ID] = &cp
	return nil
}

func (r syncLogRepo) Finish(_ context.Context, entry *entities.SyncLogEntry) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *entry
	r.s.SyncLogs[entry.ID] = &cp
	return nil
}

type processingLogRepo struct{ s *Store }

func (r processingLogRepo) Create(ctx context.Context, log *entities.TranscriptProcessingLog) error {
	// gorm aborts writes on a cancelled context
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if log.ID == uuid.Nil {
		log.ID = uuid.New()
	}
	cp := *log
	r.s.ProcessingLogs[log.ID] = &cp
	return nil
}

func (r processingLogRepo) Complete(ctx context.Context, log *entities.TranscriptProcessingLog) error {
	// gorm aborts writes on a cancelled context
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	cp := *log
	r.s.ProcessingLogs[log.ID] = &cp
	return nil
}

func (r processingLogRepo) Fail(ctx context.Context, id uuid.UUID, message string, at time.Time) error {
	// gorm aborts writes on a cancelled context
	if err := ctx.Err(); err != nil {
		return err
	}
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	if l, ok := r.s.ProcessingLogs[id]; ok {
		l.Status = entities.ProcessingStatusError
		msg := message
		l.ErrorMessage = &msg
		l.FinishedAt = &at
	}
	return nil
}

func (r processingLogRepo) FindActive(_ context.Context, oneOnOneID uuid.UUID, since time.Time) (*entities.TranscriptProcessingLog, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()
	for _, l := range r.s.ProcessingLogs {
		if l.OneOnOneID == oneOnOneID && l.Status == entities.ProcessingStatusProcessing && l.StartedAt.After(since) {
			cp := *l
			return &cp, nil
		}
	}
	return nil, nil
}
