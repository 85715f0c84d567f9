package actions

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"

	usecaseErrors "github.com/johnquangdev/peopleops/internal/usecase/errors"
)

// ParseMethod records which step of the recovery chain produced a result
type ParseMethod string

const (
	ParseMethodDirect ParseMethod = "direct"
	ParseMethodRegex  ParseMethod = "regex_fallback"
)

var (
	jsonObjectRe = regexp.MustCompile(`(?s)\{.*\}`)
	errNotObject = errors.New("response is not a JSON object")
)

// RawAction is one action item as returned by the model
type RawAction struct {
	Text        string  `json:"text"`
	Assignee    string  `json:"assignee"`
	DueDateHint *string `json:"due_date_hint"`
	Category    string  `json:"category"`
	Confidence  float64 `json:"confidence"`
}

// ModelResponse is the schema the model is asked to answer with
type ModelResponse struct {
	Summary string      `json:"summary"`
	Actions []RawAction `json:"actions"`
}

// ParseResult is a successfully parsed model response. An empty Actions slice
// means the model found nothing, not that parsing failed.
type ParseResult struct {
	Response ModelResponse
	Method   ParseMethod
}

// ParseError reports a response that no recovery step could read
type ParseError struct {
	Raw string
	Err error
}

func (e *ParseError) Error() string {
	return fmt.Sprintf("unparsable model response: %v", e.Err)
}

// Unwrap exposes both the sentinel and the decoder error
func (e *ParseError) Unwrap() []error {
	return []error{usecaseErrors.ErrUnparsableResponse, e.Err}
}

// ParseModelResponse strips code fences and parses strictly, falling back to the
// first {...} span of the content.
func ParseModelResponse(content string) (*ParseResult, error) {
	cleaned := extractJSON(content)

	var resp ModelResponse
	err := errNotObject
	if strings.HasPrefix(cleaned, "{") {
		err = json.Unmarshal([]byte(cleaned), &resp)
	}
	if err == nil {
		return &ParseResult{Response: resp, Method: ParseMethodDirect}, nil
	}

	candidate := jsonObjectRe.FindString(content)
	if candidate == "" {
		return nil, &ParseError{Raw: content, Err: err}
	}
	var relaxed ModelResponse
	if rerr := json.Unmarshal([]byte(candidate), &relaxed); rerr != nil {
		return nil, &ParseError{Raw: content, Err: rerr}
	}
	return &ParseResult{Response: relaxed, Method: ParseMethodRegex}, nil
}

// extractJSON extracts JSON content from markdown code blocks or plain text
func extractJSON(content string) string {
	content = strings.TrimSpace(content)

	// Check if wrapped in markdown code block
	if strings.HasPrefix(content, "```json") {
		content = strings.TrimPrefix(content, "```json")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	} else if strings.HasPrefix(content, "```") {
		content = strings.TrimPrefix(content, "```")
		if idx := strings.LastIndex(content, "```"); idx != -1 {
			content = content[:idx]
		}
	}

	return strings.TrimSpace(content)
}
