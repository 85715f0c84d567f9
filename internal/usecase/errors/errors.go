package errors

import "errors"

// Common errors
var (
	ErrInvalidInput  = errors.New("invalid input")
	ErrUnauthorized  = errors.New("unauthorized")
	ErrNotFound      = errors.New("resource not found")
	ErrInternalError = errors.New("internal server error")
)

// Tenant errors
var (
	ErrTenantNotFound = errors.New("tenant not found")
	ErrTenantInactive = errors.New("tenant is not active")
)

// Meeting ingestion errors
var (
	ErrMeetingIDRequired  = errors.New("provider meeting id is required")
	ErrInvalidMeetingDate = errors.New("meeting date is not a valid ISO-8601 timestamp")
)

// One-on-one / extraction errors
var (
	ErrOneOnOneNotFound     = errors.New("one-on-one not found")
	ErrMeetingNotLinked     = errors.New("one-on-one has no linked meeting")
	ErrMeetingNotFound      = errors.New("meeting not found")
	ErrTranscriptTooShort   = errors.New("transcript is empty or too short")
	ErrExtractionInProgress = errors.New("extraction already in progress")
	ErrModelCallFailed      = errors.New("language model call failed")
	ErrUnparsableResponse   = errors.New("language model response is not valid JSON")
)
