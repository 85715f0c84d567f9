package actions

import (
	"strings"
	"unicode/utf8"

	"github.com/johnquangdev/peopleops/internal/domain/entities"
)

// TruncationMarker is appended when a transcript exceeds the budget
const TruncationMarker = "\n\n[... transcript truncated ...]"

// Transcript sources, in order of preference
const (
	SourceSentences  = "sentences"
	SourceTranscript = "transcript"
	SourceSummary    = "summary"
)

// BuildTranscript renders speaker sentences as "Speaker: text" lines, falling
// back to the meeting transcript and then its summary.
func BuildTranscript(meeting *entities.Meeting, sentences []*entities.MeetingSentence) (string, string) {
	if len(sentences) > 0 {
		var b strings.Builder
		for _, s := range sentences {
			text := strings.TrimSpace(s.Text)
			if text == "" {
				continue
			}
			speaker := strings.TrimSpace(s.SpeakerName)
			if speaker == "" {
				speaker = "Unknown"
			}
			b.WriteString(speaker)
			b.WriteString(": ")
			b.WriteString(text)
			b.WriteByte('\n')
		}
		if out := strings.TrimSpace(b.String()); out != "" {
			return out, SourceSentences
		}
	}
	if t := strings.TrimSpace(meeting.Transcript); t != "" {
		return t, SourceTranscript
	}
	return strings.TrimSpace(meeting.Summary), SourceSummary
}

// Truncate cuts text to budget runes and appends TruncationMarker
func Truncate(text string, budget int) (string, bool) {
	if budget <= 0 || utf8.RuneCountInString(text) <= budget {
		return text, false
	}
	r := []rune(text)
	return string(r[:budget]) + TruncationMarker, true
}
