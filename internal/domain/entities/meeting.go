package entities

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// MeetingStatus represents where a meeting is in the enrichment pipeline
type MeetingStatus string

const (
	MeetingStatusSynced    MeetingStatus = "synced"    // Persisted from a notification
	MeetingStatusLinked    MeetingStatus = "linked"    // Attached to a one-on-one
	MeetingStatusProcessed MeetingStatus = "processed" // Actions extracted
)

// MeetingSourceFireflies tags meetings delivered by the notetaker webhook
const MeetingSourceFireflies = "fireflies"

// DefaultMeetingTitle is used when a notification carries no title
const DefaultMeetingTitle = "Reunião sem título"

// Meeting is a tenant-scoped record keyed by the provider-assigned external id.
// (tenant_id, external_id) is unique.
type Meeting struct {
	ID              uuid.UUID     `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	TenantID        uuid.UUID     `json:"tenant_id" gorm:"type:uuid;not null;uniqueIndex:idx_meetings_tenant_external"`
	ExternalID      string        `json:"external_id" gorm:"type:varchar(255);not null;uniqueIndex:idx_meetings_tenant_external"`
	Title           string        `json:"title" gorm:"type:varchar(500);not null"`
	OccurredAt      time.Time     `json:"occurred_at" gorm:"not null;index"`
	DurationMinutes int           `json:"duration_minutes" gorm:"default:0;not null"`
	Summary         string        `json:"summary,omitempty" gorm:"type:text"`
	Transcript      string        `json:"transcript,omitempty" gorm:"type:text"`
	Notes           string        `json:"notes,omitempty" gorm:"type:text"`
	TranscriptURL   *string       `json:"transcript_url,omitempty" gorm:"type:text"`
	AudioURL        *string       `json:"audio_url,omitempty" gorm:"type:text"`
	OrganizerEmail  *string       `json:"organizer_email,omitempty" gorm:"type:varchar(255)"`
	HostEmail       *string       `json:"host_email,omitempty" gorm:"type:varchar(255)"`
	Category        string        `json:"category" gorm:"type:varchar(50);not null;default:'general'"`
	Status          MeetingStatus `json:"status" gorm:"type:varchar(20);not null;default:'synced'"`
	Source          string        `json:"source" gorm:"type:varchar(50);not null"`
	SyncedAt        time.Time     `json:"synced_at" gorm:"not null"`
	CreatedAt       time.Time     `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time     `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for GORM
func (Meeting) TableName() string {
	return "meetings"
}

// EnrichmentText joins summary, transcript and notes into the text scanned for praise
func (m *Meeting) EnrichmentText() string {
	parts := make([]string, 0, 3)
	for _, p := range []string{m.Summary, m.Transcript, m.Notes} {
		if s := strings.TrimSpace(p); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, "\n\n")
}

// MeetingParticipant is one attendee of a meeting. Unique per (meeting_id, email)
// and never mutated after creation.
type MeetingParticipant struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	MeetingID   uuid.UUID `json:"meeting_id" gorm:"type:uuid;not null;uniqueIndex:idx_meeting_participants_meeting_email"`
	Email       string    `json:"email" gorm:"type:varchar(255);not null;uniqueIndex:idx_meeting_participants_meeting_email"`
	DisplayName string    `json:"display_name" gorm:"type:varchar(255)"`
	IsInternal  bool      `json:"is_internal" gorm:"default:false;not null"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (MeetingParticipant) TableName() string {
	return "meeting_participants"
}

// MeetingSentence is one ordered speaker turn of a meeting transcript
type MeetingSentence struct {
	ID          uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	MeetingID   uuid.UUID `json:"meeting_id" gorm:"type:uuid;not null;index"`
	Index       int       `json:"index" gorm:"column:sentence_index;not null"`
	SpeakerName string    `json:"speaker_name" gorm:"type:varchar(255)"`
	Text        string    `json:"text" gorm:"type:text;not null"`
	StartTime   float64   `json:"start_time" gorm:"default:0"`
	EndTime     float64   `json:"end_time" gorm:"default:0"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
}

// TableName specifies the table name for GORM
func (MeetingSentence) TableName() string {
	return "meeting_sentences"
}
