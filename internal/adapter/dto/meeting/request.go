package meeting

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// NotificationRequest is the "transcript ready" webhook body. Only the meeting id
// is required; it may arrive as fireflies_id, meeting_id or id.
type NotificationRequest struct {
	FirefliesID    string            `json:"fireflies_id,omitempty"`
	MeetingID      string            `json:"meeting_id,omitempty"`
	ID             string            `json:"id,omitempty"`
	Title          string            `json:"title,omitempty"`
	Date           json.RawMessage   `json:"date,omitempty"`
	Duration       *float64          `json:"duration,omitempty"`
	Participants   []ParticipantRef  `json:"participants,omitempty"`
	Summary        string            `json:"summary,omitempty"`
	Transcript     string            `json:"transcript,omitempty"`
	Notes          string            `json:"notes,omitempty"`
	TranscriptURL  *string           `json:"transcript_url,omitempty"`
	AudioURL       *string           `json:"audio_url,omitempty"`
	OrganizerEmail *string           `json:"organizer_email,omitempty"`
	HostEmail      *string           `json:"host_email,omitempty"`
	Sentences      []SentenceRequest `json:"sentences,omitempty"`
}

// ExternalID returns the first non-empty provider id
func (r *NotificationRequest) ExternalID() string {
	for _, id := range []string{r.FirefliesID, r.MeetingID, r.ID} {
		if s := strings.TrimSpace(id); s != "" {
			return s
		}
	}
	return ""
}

// DurationMinutes rounds the optional duration to whole minutes
func (r *NotificationRequest) DurationMinutes() int {
	if r.Duration == nil || *r.Duration < 0 {
		return 0
	}
	return int(*r.Duration + 0.5)
}

var dateLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02T15:04:05",
	"2006-01-02 15:04:05",
	"2006-01-02",
}

// OccurredAt parses the optional date. Strings are ISO-8601; numbers are epoch milliseconds.
// Returns nil, nil when no date was sent.
func (r *NotificationRequest) OccurredAt() (*time.Time, error) {
	raw := bytes.TrimSpace(r.Date)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return nil, nil
	}

	var ms float64
	if err := json.Unmarshal(raw, &ms); err == nil {
		t := time.UnixMilli(int64(ms)).UTC()
		return &t, nil
	}

	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return nil, fmt.Errorf("date must be a string or number")
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return nil, nil
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return &t, nil
		}
	}
	return nil, fmt.Errorf("date %q is not ISO-8601", s)
}

// ParticipantRef accepts either {"email": ..., "displayName": ...} or a plain email string
type ParticipantRef struct {
	Email       string `json:"email"`
	DisplayName string `json:"displayName,omitempty"`
}

// UnmarshalJSON implements json.Unmarshaler
func (p *ParticipantRef) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		p.Email = strings.TrimSpace(s)
		return nil
	}

	var obj struct {
		Email          string `json:"email"`
		DisplayName    string `json:"displayName"`
		DisplayNameAlt string `json:"display_name"`
		Name           string `json:"name"`
	}
	if err := json.Unmarshal(data, &obj); err != nil {
		return err
	}
	p.Email = strings.TrimSpace(obj.Email)
	for _, n := range []string{obj.DisplayName, obj.DisplayNameAlt, obj.Name} {
		if n = strings.TrimSpace(n); n != "" {
			p.DisplayName = n
			break
		}
	}
	return nil
}

// SentenceRequest is one speaker turn of the transcript
type SentenceRequest struct {
	Index       int     `json:"index"`
	SpeakerName string  `json:"speaker_name"`
	Text        string  `json:"text"`
	StartTime   float64 `json:"start_time"`
	EndTime     float64 `json:"end_time"`
}

// ExtractActionsRequest asks for action extraction on a one-on-one
type ExtractActionsRequest struct {
	OneOnOneID string `json:"one_on_one_id" validate:"required,uuid"`
	TenantID   string `json:"tenant_id,omitempty" validate:"omitempty,uuid"`
	MeetingID  string `json:"meeting_id,omitempty" validate:"omitempty,uuid"`
}
