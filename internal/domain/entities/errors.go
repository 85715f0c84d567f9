package entities

import "errors"

// Domain errors
var (
	// Tenant errors
	ErrTenantNotFound = errors.New("tenant not found")

	// User errors
	ErrUserNotFound = errors.New("user not found")
	ErrInvalidEmail = errors.New("invalid email")
	ErrInvalidRole  = errors.New("invalid role")

	// Meeting errors
	ErrMeetingNotFound = errors.New("meeting not found")

	// One-on-one errors
	ErrOneOnOneNotFound      = errors.New("one-on-one not found")
	ErrOneOnOneAlreadyLinked = errors.New("one-on-one already linked to a meeting")

	// Processing log errors
	ErrProcessingLogNotFound = errors.New("processing log not found")
)
