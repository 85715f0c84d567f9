package ai

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	backoff "github.com/cenkalti/backoff/v4"
	"github.com/sashabaranov/go-openai"
	"go.uber.org/zap"

	"github.com/johnquangdev/peopleops/pkg/config"
	"github.com/johnquangdev/peopleops/pkg/jobcontext"
)

// ErrEmptyResponse is returned when the model answers without any choice
var ErrEmptyResponse = errors.New("empty response from language model")

// CompletionRequest is a single-turn chat request
type CompletionRequest struct {
	System string
	Prompt string
	// JSONMode asks the endpoint for a JSON object response when supported
	JSONMode bool
}

// CompletionResult carries the assistant content and token usage
type CompletionResult struct {
	Content          string
	Model            string
	PromptTokens     int
	CompletionTokens int
	Duration         time.Duration
}

// ChatCompleter is the language-model dependency of the action extractor
type ChatCompleter interface {
	Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error)
	Model() string
}

// GroqClient talks to Groq (or any OpenAI-compatible endpoint) for transcript analysis
type GroqClient struct {
	client      *openai.Client
	model       string
	maxTokens   int
	temperature float32
	timeout     time.Duration
	maxRetries  uint64
	retryDelay  time.Duration
	logger      *zap.Logger
}

// NewGroqClient creates a client from the LLM config section
func NewGroqClient(cfg config.LLMConfig, logger *zap.Logger) *GroqClient {
	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimSuffix(cfg.BaseURL, "/")
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 60 * time.Second
	}

	return &GroqClient{
		client:      openai.NewClientWithConfig(clientConfig),
		model:       cfg.Model,
		maxTokens:   cfg.MaxTokens,
		temperature: cfg.Temperature,
		timeout:     timeout,
		maxRetries:  cfg.MaxRetries,
		retryDelay:  time.Second,
		logger:      logger,
	}
}

// Model returns the configured model name
func (g *GroqClient) Model() string {
	return g.model
}

// Complete sends one chat completion bounded by the configured timeout.
// Transient failures (network, 429, 5xx) are retried with exponential backoff.
func (g *GroqClient) Complete(ctx context.Context, req CompletionRequest) (*CompletionResult, error) {
	messages := make([]openai.ChatCompletionMessage, 0, 2)
	if req.System != "" {
		messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleSystem, Content: req.System})
	}
	messages = append(messages, openai.ChatCompletionMessage{Role: openai.ChatMessageRoleUser, Content: req.Prompt})

	chatReq := openai.ChatCompletionRequest{
		Model:       g.model,
		Messages:    messages,
		MaxTokens:   g.maxTokens,
		Temperature: g.temperature,
	}
	if req.JSONMode {
		chatReq.ResponseFormat = &openai.ChatCompletionResponseFormat{Type: openai.ChatCompletionResponseFormatTypeJSONObject}
	}

	ctx, cancel := context.WithTimeout(ctx, g.timeout)
	defer cancel()

	start := time.Now()
	var resp openai.ChatCompletionResponse
	call := func() error {
		var err error
		resp, err = g.client.CreateChatCompletion(ctx, chatReq)
		if err == nil {
			return nil
		}
		if jobcontext.IsRetryableError(err) && ctx.Err() == nil {
			if g.logger != nil {
				g.logger.Warn("llm_call_retrying", zap.String("model", g.model), zap.Error(err))
			}
			return err
		}
		return backoff.Permanent(err)
	}

	bo := backoff.NewExponentialBackOff()
	bo.InitialInterval = g.retryDelay
	bo.MaxInterval = 8 * g.retryDelay
	bo.MaxElapsedTime = g.timeout

	if err := backoff.Retry(call, backoff.WithContext(backoff.WithMaxRetries(bo, g.maxRetries), ctx)); err != nil {
		if g.logger != nil {
			g.logger.Error("llm_call_failed",
				zap.String("model", g.model),
				zap.Duration("elapsed", time.Since(start)),
				zap.Error(err),
			)
		}
		return nil, fmt.Errorf("chat completion: %w", err)
	}

	if len(resp.Choices) == 0 {
		return nil, ErrEmptyResponse
	}

	result := &CompletionResult{
		Content:          resp.Choices[0].Message.Content,
		Model:            resp.Model,
		PromptTokens:     resp.Usage.PromptTokens,
		CompletionTokens: resp.Usage.CompletionTokens,
		Duration:         time.Since(start),
	}
	if result.Model == "" {
		result.Model = g.model
	}

	if g.logger != nil {
		g.logger.Info("llm_call_completed",
			zap.String("model", result.Model),
			zap.Int("prompt_tokens", result.PromptTokens),
			zap.Int("completion_tokens", result.CompletionTokens),
			zap.Duration("elapsed", result.Duration),
		)
	}
	return result, nil
}
