package entities

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// SyncStatus is the outcome of one webhook ingestion
type SyncStatus string

const (
	SyncStatusStarted SyncStatus = "started"
	SyncStatusSuccess SyncStatus = "success"
	SyncStatusError   SyncStatus = "error"
)

// SyncLogEntry records one ingestion attempt. It is created when the request is
// accepted and receives exactly one terminal write.
type SyncLogEntry struct {
	ID               uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID         uuid.UUID      `json:"tenant_id" gorm:"type:uuid;not null;index"`
	Source           string         `json:"source" gorm:"type:varchar(50);not null"`
	ExternalID       string         `json:"external_id" gorm:"type:varchar(255)"`
	Status           SyncStatus     `json:"status" gorm:"type:varchar(20);not null"`
	MeetingID        *uuid.UUID     `json:"meeting_id,omitempty" gorm:"type:uuid"`
	Action           string         `json:"action,omitempty" gorm:"type:varchar(20)"`
	PraisesDetected  int            `json:"praises_detected" gorm:"default:0;not null"`
	LinkedOneOnOneID *uuid.UUID     `json:"linked_one_on_one_id,omitempty" gorm:"type:uuid"`
	ErrorMessage     *string        `json:"error_message,omitempty" gorm:"type:text"`
	Details          datatypes.JSON `json:"details,omitempty" gorm:"type:jsonb"`
	StartedAt        time.Time      `json:"started_at" gorm:"not null"`
	FinishedAt       *time.Time     `json:"finished_at,omitempty"`
}

// TableName specifies the table name for GORM
func (SyncLogEntry) TableName() string {
	return "sync_logs"
}

// ProcessingStatus is the state of one transcript extraction attempt
type ProcessingStatus string

const (
	ProcessingStatusProcessing ProcessingStatus = "processing"
	ProcessingStatusCompleted  ProcessingStatus = "completed"
	ProcessingStatusError      ProcessingStatus = "error"
)

// RawInputCap bounds how much transcript text is kept on a processing log
const RawInputCap = 20000

// TranscriptProcessingLog audits a single action-extraction run
type TranscriptProcessingLog struct {
	ID               uuid.UUID        `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID         uuid.UUID        `json:"tenant_id" gorm:"type:uuid;not null;index"`
	OneOnOneID       uuid.UUID        `json:"one_on_one_id" gorm:"type:uuid;not null;index"`
	MeetingID        *uuid.UUID       `json:"meeting_id,omitempty" gorm:"type:uuid"`
	Status           ProcessingStatus `json:"status" gorm:"type:varchar(20);not null"`
	RawInput         string           `json:"raw_input" gorm:"type:text"`
	ModelOutput      datatypes.JSON   `json:"model_output,omitempty" gorm:"type:jsonb"`
	Model            string           `json:"model" gorm:"type:varchar(100)"`
	PromptTokens     int              `json:"prompt_tokens" gorm:"default:0"`
	CompletionTokens int              `json:"completion_tokens" gorm:"default:0"`
	ActionsExtracted int              `json:"actions_extracted" gorm:"default:0"`
	ErrorMessage     *string          `json:"error_message,omitempty" gorm:"type:text"`
	StartedAt        time.Time        `json:"started_at" gorm:"not null;index"`
	FinishedAt       *time.Time       `json:"finished_at,omitempty"`
}

// TableName specifies the table name for GORM
func (TranscriptProcessingLog) TableName() string {
	return "transcript_processing_logs"
}

// CapRawInput truncates text to RawInputCap runes
func CapRawInput(text string) string {
	r := []rune(text)
	if len(r) <= RawInputCap {
		return text
	}
	return string(r[:RawInputCap])
}
