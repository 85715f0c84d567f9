package ai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/johnquangdev/peopleops/pkg/config"
)

func chatResponse(content string) map[string]interface{} {
	return map[string]interface{}{
		"id":     "chatcmpl-1",
		"object": "chat.completion",
		"model":  "llama-test",
		"choices": []map[string]interface{}{
			{"index": 0, "message": map[string]string{"role": "assistant", "content": content}, "finish_reason": "stop"},
		},
		"usage": map[string]int{"prompt_tokens": 120, "completion_tokens": 40, "total_tokens": 160},
	}
}

func newTestClient(t *testing.T, handler http.HandlerFunc) *GroqClient {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)

	c := NewGroqClient(config.LLMConfig{
		APIKey:     "test-key",
		BaseURL:    srv.URL + "/v1",
		Model:      "llama-test",
		MaxTokens:  2000,
		Timeout:    5 * time.Second,
		MaxRetries: 2,
	}, nil)
	c.retryDelay = 10 * time.Millisecond
	return c
}

func TestComplete_Success(t *testing.T) {
	var body map[string]interface{}
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(chatResponse(`{"summary":"ok","actions":[]}`))
	})

	res, err := c.Complete(context.Background(), CompletionRequest{System: "sys", Prompt: "hello"})
	require.NoError(t, err)
	assert.Equal(t, `{"summary":"ok","actions":[]}`, res.Content)
	assert.Equal(t, 120, res.PromptTokens)
	assert.Equal(t, 40, res.CompletionTokens)
	assert.Equal(t, "llama-test", res.Model)
	assert.EqualValues(t, 2000, body["max_tokens"])
}

func TestComplete_RetriesTransientFailure(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusServiceUnavailable)
			_, _ = w.Write([]byte(`{"error":{"message":"overloaded","type":"server_error"}}`))
			return
		}
		_ = json.NewEncoder(w).Encode(chatResponse("done"))
	})

	res, err := c.Complete(context.Background(), CompletionRequest{Prompt: "hello"})
	require.NoError(t, err)
	assert.Equal(t, "done", res.Content)
	assert.EqualValues(t, 2, atomic.LoadInt32(&calls))
}

func TestComplete_DoesNotRetryClientError(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusUnauthorized)
		_, _ = w.Write([]byte(`{"error":{"message":"invalid api key","type":"invalid_request_error"}}`))
	})

	_, err := c.Complete(context.Background(), CompletionRequest{Prompt: "hello"})
	require.Error(t, err)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}

func TestComplete_StopsWhenCallerDeadlinePasses(t *testing.T) {
	var calls int32
	c := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		select {
		case <-r.Context().Done():
		case <-time.After(time.Second):
		}
	})

	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	_, err := c.Complete(ctx, CompletionRequest{Prompt: "hello"})
	require.Error(t, err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
	assert.EqualValues(t, 1, atomic.LoadInt32(&calls))
}
