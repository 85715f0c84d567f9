package recognition

import (
	"sort"
	"strings"
	"unicode/utf8"
)

const (
	// ContextRadius is how many runes around a match are kept as context
	ContextRadius = 60
	// DedupDistance is how close two matches must be to count as one mention
	DedupDistance = 30
	// MinFirstNameLength guards first-name matching against short false positives
	MinFirstNameLength = 3

	ellipsis = "..."
)

// Participant is a person who may be the target of praise
type Participant struct {
	Name  string
	Email string
}

// Mention is one detected praise phrase
type Mention struct {
	Text       string
	Label      string
	Confidence float64
	// Position is the rune offset of the match in the scanned text
	Position int
	Context  string
	Target   *Participant
}

// Detect scans text with DefaultRules
func Detect(text string, participants []Participant, minConfidence float64) []Mention {
	return DetectWithRules(text, participants, minConfidence, DefaultRules)
}

// DetectWithRules scans text for every rule match at or above minConfidence,
// sorted by position and deduplicated.
func DetectWithRules(text string, participants []Participant, minConfidence float64, rules []Rule) []Mention {
	if strings.TrimSpace(text) == "" {
		return []Mention{}
	}
	runes := []rune(text)

	var found []Mention
	for _, r := range rules {
		if r.Confidence < minConfidence {
			continue
		}
		for _, loc := range r.Pattern.FindAllStringIndex(text, -1) {
			start := utf8.RuneCountInString(text[:loc[0]])
			end := start + utf8.RuneCountInString(text[loc[0]:loc[1]])
			ctx := contextWindow(runes, start, end)
			found = append(found, Mention{
				Text:       text[loc[0]:loc[1]],
				Label:      r.Label,
				Confidence: r.Confidence,
				Position:   start,
				Context:    ctx,
				Target:     findTarget(ctx, participants),
			})
		}
	}

	sort.SliceStable(found, func(i, j int) bool {
		return found[i].Position < found[j].Position
	})
	return dedup(found)
}

func contextWindow(runes []rune, start, end int) string {
	from := start - ContextRadius
	if from < 0 {
		from = 0
	}
	to := end + ContextRadius
	if to > len(runes) {
		to = len(runes)
	}

	var b strings.Builder
	if from > 0 {
		b.WriteString(ellipsis)
	}
	b.WriteString(strings.TrimSpace(string(runes[from:to])))
	if to < len(runes) {
		b.WriteString(ellipsis)
	}
	return b.String()
}

// findTarget tries full names across all participants before falling back to first names
func findTarget(ctx string, participants []Participant) *Participant {
	if len(participants) == 0 {
		return nil
	}
	lower := strings.ToLower(ctx)

	for i := range participants {
		name := strings.ToLower(strings.TrimSpace(participants[i].Name))
		if name != "" && strings.Contains(lower, name) {
			return &participants[i]
		}
	}
	for i := range participants {
		fields := strings.Fields(strings.ToLower(participants[i].Name))
		if len(fields) == 0 {
			continue
		}
		first := fields[0]
		if utf8.RuneCountInString(first) >= MinFirstNameLength && strings.Contains(lower, first) {
			return &participants[i]
		}
	}
	return nil
}

// dedup collapses position-sorted mentions closer than DedupDistance,
// keeping the strictly higher confidence one.
func dedup(sorted []Mention) []Mention {
	out := make([]Mention, 0, len(sorted))
	for _, m := range sorted {
		if n := len(out); n > 0 && m.Position-out[n-1].Position < DedupDistance {
			if m.Confidence > out[n-1].Confidence {
				out[n-1] = m
			}
			continue
		}
		out = append(out, m)
	}
	return out
}
