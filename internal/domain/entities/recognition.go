package entities

import (
	"time"

	"github.com/google/uuid"
)

// Recognition values and scoring applied to automatically detected praise
const (
	RecognitionValueAuto  = "recognition"
	RecognitionPointsAuto = 10
	RecognitionSourceAuto = "meeting_auto"
)

// Recognition is a candidate peer-praise event awaiting human review.
// Auto-created rows always start with Reviewed=false.
type Recognition struct {
	ID           uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID     uuid.UUID  `json:"tenant_id" gorm:"type:uuid;not null;index"`
	MeetingID    uuid.UUID  `json:"meeting_id" gorm:"type:uuid;not null;index"`
	RecipientID  *uuid.UUID `json:"recipient_id,omitempty" gorm:"type:uuid;index"`
	TargetName   *string    `json:"target_name,omitempty" gorm:"type:varchar(255)"`
	TargetEmail  *string    `json:"target_email,omitempty" gorm:"type:varchar(255)"`
	MentionText  string     `json:"mention_text" gorm:"type:text;not null"`
	Context      string     `json:"context" gorm:"type:text;not null"`
	PatternLabel string     `json:"pattern_label" gorm:"type:varchar(100)"`
	Confidence   float64    `json:"confidence" gorm:"not null"`
	Value        string     `json:"value" gorm:"type:varchar(50);not null"`
	Points       int        `json:"points" gorm:"not null"`
	Reviewed     bool       `json:"reviewed" gorm:"default:false;not null"`
	Source       string     `json:"source" gorm:"type:varchar(50);not null"`
	CreatedAt    time.Time  `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (Recognition) TableName() string {
	return "recognitions"
}
