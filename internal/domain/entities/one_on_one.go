package entities

import (
	"time"

	"github.com/google/uuid"
)

// OneOnOneStatus represents the lifecycle of a scheduled one-on-one
type OneOnOneStatus string

const (
	OneOnOneStatusScheduled OneOnOneStatus = "scheduled"
	OneOnOneStatusCompleted OneOnOneStatus = "completed"
	OneOnOneStatusCancelled OneOnOneStatus = "cancelled"
	OneOnOneStatusNoShow    OneOnOneStatus = "no_show"
)

// IsLinkable reports whether a meeting may still be attached to a one-on-one in this status
func (s OneOnOneStatus) IsLinkable() bool {
	return s == OneOnOneStatusScheduled || s == OneOnOneStatusCompleted
}

// OneOnOne is a leader/collaborator session. Once MeetingID is set it is never
// overwritten by the automatic linker.
type OneOnOne struct {
	ID                uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID          uuid.UUID      `json:"tenant_id" gorm:"type:uuid;not null;index"`
	LeaderID          uuid.UUID      `json:"leader_id" gorm:"type:uuid;not null;index"`
	CollaboratorID    uuid.UUID      `json:"collaborator_id" gorm:"type:uuid;not null;index"`
	ScheduledAt       time.Time      `json:"scheduled_at" gorm:"not null;index"`
	Status            OneOnOneStatus `json:"status" gorm:"type:varchar(20);not null;default:'scheduled'"`
	MeetingID         *uuid.UUID     `json:"meeting_id,omitempty" gorm:"type:uuid;index"`
	TranscriptSummary *string        `json:"transcript_summary,omitempty" gorm:"type:text"`
	ProcessedAt       *time.Time     `json:"processed_at,omitempty"`
	CompletedAt       *time.Time     `json:"completed_at,omitempty"`
	CreatedAt         time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt         time.Time      `json:"updated_at" gorm:"autoUpdateTime"`

	// Relationships
	Leader       *User `json:"leader,omitempty" gorm:"foreignKey:LeaderID"`
	Collaborator *User `json:"collaborator,omitempty" gorm:"foreignKey:CollaboratorID"`
}

// TableName specifies the table name for GORM
func (OneOnOne) TableName() string {
	return "one_on_ones"
}

// Involves reports whether the user is either side of the one-on-one
func (o *OneOnOne) Involves(userID uuid.UUID) bool {
	return o.LeaderID == userID || o.CollaboratorID == userID
}

// ActionSource tells where an action item came from
type ActionSource string

const (
	ActionSourceAIExtracted ActionSource = "ai_extracted"
	ActionSourceManual      ActionSource = "manual"
)

// ActionCategory classifies extracted action items
type ActionCategory string

const (
	ActionCategoryTask        ActionCategory = "task"
	ActionCategoryDevelopment ActionCategory = "development"
	ActionCategoryFeedback    ActionCategory = "feedback"
	ActionCategoryFollowUp    ActionCategory = "follow_up"
	ActionCategoryProcess     ActionCategory = "process"
	ActionCategoryOther       ActionCategory = "other"
)

// ParseActionCategory maps free text onto a known category, defaulting to other
func ParseActionCategory(s string) ActionCategory {
	switch c := ActionCategory(s); c {
	case ActionCategoryTask, ActionCategoryDevelopment, ActionCategoryFeedback,
		ActionCategoryFollowUp, ActionCategoryProcess:
		return c
	}
	return ActionCategoryOther
}

// OneOnOneAction is an action item attached to a one-on-one
type OneOnOneAction struct {
	ID         uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID   uuid.UUID      `json:"tenant_id" gorm:"type:uuid;not null;index"`
	OneOnOneID uuid.UUID      `json:"one_on_one_id" gorm:"type:uuid;not null;index"`
	Text       string         `json:"text" gorm:"type:text;not null"`
	AssigneeID uuid.UUID      `json:"assignee_id" gorm:"type:uuid;not null"`
	DueDate    *time.Time     `json:"due_date,omitempty" gorm:"type:date"`
	Completed  bool           `json:"completed" gorm:"default:false;not null"`
	Source     ActionSource   `json:"source" gorm:"type:varchar(20);not null"`
	Confidence *float64       `json:"confidence,omitempty"`
	Category   ActionCategory `json:"category" gorm:"type:varchar(30);not null;default:'other'"`
	CreatedAt  time.Time      `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt  time.Time      `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (OneOnOneAction) TableName() string {
	return "one_on_one_actions"
}
