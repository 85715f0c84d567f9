package ingestion

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestCategorize(t *testing.T) {
	cases := map[string]string{
		"1:1 Ana / Bob":           "one_on_one",
		"One-on-One with Maria":   "one_on_one",
		"Daily Standup":           "daily",
		"Sprint 42 Retro":         "retrospective",
		"Planejamento trimestral": "planning",
		"Design Review":           "review",
		"Entrevista - Backend":    "interview",
		"All Hands Q1":            "all_hands",
		"Feedback semestral":      "feedback",
		"Onboarding: new hires":   "onboarding",
		"Reunião sem título":      DefaultCategory,
		"":                        DefaultCategory,
	}
	for title, want := range cases {
		assert.Equal(t, want, Categorize(title), title)
	}
}
