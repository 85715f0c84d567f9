package ingestion

import "strings"

type categoryRule struct {
	keywords []string
	category string
}

// categoryRules is evaluated in order against the lower-cased title; first match wins
var categoryRules = []categoryRule{
	{[]string{"1:1", "1-1", "1x1", "one-on-one", "one on one", "1on1"}, "one_on_one"},
	{[]string{"daily", "standup", "stand-up"}, "daily"},
	{[]string{"retro"}, "retrospective"},
	{[]string{"planning", "sprint", "planejamento"}, "planning"},
	{[]string{"review", "revisão"}, "review"},
	{[]string{"entrevista", "interview"}, "interview"},
	{[]string{"all hands", "all-hands", "town hall"}, "all_hands"},
	{[]string{"feedback"}, "feedback"},
	{[]string{"onboarding"}, "onboarding"},
}

// DefaultCategory is assigned when no rule matches
const DefaultCategory = "general"

// Categorize derives a meeting category from its title
func Categorize(title string) string {
	t := strings.ToLower(title)
	for _, r := range categoryRules {
		for _, k := range r.keywords {
			if strings.Contains(t, k) {
				return r.category
			}
		}
	}
	return DefaultCategory
}
