package testhelpers

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"

	pkgai "github.com/johnquangdev/peopleops/pkg/ai"
)

// FakeLLM returns a canned completion and records every request.
// Delay makes Complete wait, honouring ctx, before answering.
type FakeLLM struct {
	mu       sync.Mutex
	Content  string
	Err      error
	Delay    time.Duration
	OnCall   func()
	Requests []pkgai.CompletionRequest
}

// Complete implements pkgai.ChatCompleter
func (f *FakeLLM) Complete(ctx context.Context, req pkgai.CompletionRequest) (*pkgai.CompletionResult, error) {
	f.mu.Lock()
	f.Requests = append(f.Requests, req)
	content, failure, delay, hook := f.Content, f.Err, f.Delay, f.OnCall
	f.mu.Unlock()

	if hook != nil {
		hook()
	}
	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if failure != nil {
		return nil, failure
	}
	return &pkgai.CompletionResult{
		Content:          content,
		Model:            f.Model(),
		PromptTokens:     120,
		CompletionTokens: 40,
		Duration:         delay,
	}, nil
}

// Model implements pkgai.ChatCompleter
func (f *FakeLLM) Model() string { return "fake-model" }

// Calls returns how many completions were requested
func (f *FakeLLM) Calls() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.Requests)
}

// Dispatch is one recorded extraction trigger
type Dispatch struct {
	TenantID   uuid.UUID
	OneOnOneID uuid.UUID
	MeetingID  uuid.UUID
}

// FakeDispatcher records extraction triggers instead of sending them
type FakeDispatcher struct {
	mu    sync.Mutex
	calls []Dispatch
}

// Dispatch implements oneonone.Dispatcher
func (f *FakeDispatcher) Dispatch(tenantID, oneOnOneID, meetingID uuid.UUID) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, Dispatch{TenantID: tenantID, OneOnOneID: oneOnOneID, MeetingID: meetingID})
}

// Calls returns the recorded triggers
func (f *FakeDispatcher) Calls() []Dispatch {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]Dispatch(nil), f.calls...)
}

// FakeArchiver records archived payload keys
type FakeArchiver struct {
	mu   sync.Mutex
	Err  error
	Keys []string
}

// ArchivePayload implements ingestion.PayloadArchiver
func (f *FakeArchiver) ArchivePayload(_ context.Context, tenantID uuid.UUID, externalID string, _ []byte) (string, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.Err != nil {
		return "", f.Err
	}
	key := tenantID.String() + "/" + externalID
	f.Keys = append(f.Keys, key)
	return key, nil
}
