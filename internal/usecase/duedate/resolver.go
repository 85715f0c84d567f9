// Package duedate maps free-text deadline phrases onto calendar dates.
package duedate

import (
	"regexp"
	"strconv"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"
)

// Rule names which step of the cascade produced a date
type Rule string

const (
	RuleToday    Rule = "today"
	RuleTomorrow Rule = "tomorrow"
	RuleOffset   Rule = "offset"
	RuleWeekday  Rule = "weekday"
	RuleExplicit Rule = "explicit"
	RuleFallback Rule = "fallback"
)

// FallbackDays is applied when no rule recognises the phrase
const FallbackDays = 7

var (
	todayRe     = regexp.MustCompile(`(?i)\b(hoje|today|eod)\b|fim do dia|end of (the )?day`)
	tomorrowRe  = regexp.MustCompile(`(?i)amanh[ãa]|\btomorrow\b`)
	nextWeekRe  = regexp.MustCompile(`(?i)pr[óo]xima semana|semana que vem|\bnext week\b`)
	nextMonthRe = regexp.MustCompile(`(?i)pr[óo]ximo m[êe]s|m[êe]s que vem|\bnext month\b`)
	explicitRe  = regexp.MustCompile(`\b(\d{1,2})/(\d{1,2})(?:/(\d{2,4}))?\b`)
)

type weekdayPattern struct {
	re  *regexp.Regexp
	day time.Weekday
	// pt patterns double as ordinals ("segunda versão") and need the next word checked
	pt bool
}

func enWeekday(name string, day time.Weekday) weekdayPattern {
	return weekdayPattern{re: regexp.MustCompile(`(?i)\b` + name + `\b`), day: day}
}

// \b is ASCII-only in RE2, so Portuguese boundaries are checked by hand
func ptWeekday(stem string, day time.Weekday) weekdayPattern {
	return weekdayPattern{re: regexp.MustCompile(`(?i)(?:^|[^\p{L}])(` + stem + `)(-feira)?`), day: day, pt: true}
}

var weekdays = []weekdayPattern{
	ptWeekday(`segunda`, time.Monday), enWeekday(`monday`, time.Monday),
	ptWeekday(`ter[çc]a`, time.Tuesday), enWeekday(`tuesday`, time.Tuesday),
	ptWeekday(`quarta`, time.Wednesday), enWeekday(`wednesday`, time.Wednesday),
	ptWeekday(`quinta`, time.Thursday), enWeekday(`thursday`, time.Thursday),
	ptWeekday(`sexta`, time.Friday), enWeekday(`friday`, time.Friday),
	ptWeekday(`s[áa]bado`, time.Saturday), enWeekday(`saturday`, time.Saturday),
	ptWeekday(`domingo`, time.Sunday), enWeekday(`sunday`, time.Sunday),
}

// weekdayFollowers may follow a Portuguese weekday without turning it into an ordinal
var weekdayFollowers = map[string]struct{}{
	"de": {}, "da": {}, "do": {}, "a": {}, "à": {}, "às": {}, "ao": {}, "no": {}, "na": {},
	"pela": {}, "pelo": {}, "que": {}, "e": {}, "ou": {}, "até": {}, "cedo": {},
	"manhã": {}, "tarde": {}, "noite": {}, "feira": {}, "agora": {},
}

func (w weekdayPattern) matches(h string) bool {
	if !w.pt {
		return w.re.MatchString(h)
	}
	for _, m := range w.re.FindAllStringSubmatchIndex(h, -1) {
		end := m[1]
		if m[4] >= 0 {
			// explicit "-feira"
			return true
		}
		rest := h[end:]
		if r, _ := utf8.DecodeRuneInString(rest); unicode.IsLetter(r) {
			continue // "quartas", "sextante"
		}
		if isOrdinalUse(rest) {
			continue
		}
		return true
	}
	return false
}

// isOrdinalUse reports whether the text right after a weekday stem reads as a
// noun the stem qualifies, as in "segunda versão"
func isOrdinalUse(rest string) bool {
	if r, _ := utf8.DecodeRuneInString(rest); !unicode.IsSpace(r) {
		return false
	}
	next := strings.TrimLeftFunc(rest, unicode.IsSpace)
	word := next
	if i := strings.IndexFunc(next, func(r rune) bool { return !unicode.IsLetter(r) }); i >= 0 {
		word = next[:i]
	}
	if word == "" {
		return false
	}
	_, ok := weekdayFollowers[strings.ToLower(word)]
	return !ok
}

// Resolve returns the date a hint refers to, relative to now. A nil hint yields nil;
// any other hint always yields a date.
func Resolve(hint *string, now time.Time) *time.Time {
	d, _ := ResolveDetailed(hint, now)
	return d
}

// ResolveDetailed is Resolve plus the cascade rule that fired
func ResolveDetailed(hint *string, now time.Time) (*time.Time, Rule) {
	if hint == nil {
		return nil, ""
	}
	h := strings.TrimSpace(*hint)
	today := midnight(now)

	switch {
	case tomorrowRe.MatchString(h):
		return datePtr(today.AddDate(0, 0, 1)), RuleTomorrow
	case todayRe.MatchString(h):
		return datePtr(today), RuleToday
	case nextWeekRe.MatchString(h):
		return datePtr(today.AddDate(0, 0, 7)), RuleOffset
	case nextMonthRe.MatchString(h):
		return datePtr(today.AddDate(0, 0, 30)), RuleOffset
	}

	for _, w := range weekdays {
		if w.matches(h) {
			ahead := (int(w.day) - int(today.Weekday()) + 7) % 7
			if ahead == 0 {
				ahead = 7
			}
			return datePtr(today.AddDate(0, 0, ahead)), RuleWeekday
		}
	}

	if d, ok := explicitDate(h, today); ok {
		return datePtr(d), RuleExplicit
	}

	return datePtr(today.AddDate(0, 0, FallbackDays)), RuleFallback
}

// explicitDate parses day/month[/year]; out-of-range parts fall through to the fallback
func explicitDate(h string, today time.Time) (time.Time, bool) {
	m := explicitRe.FindStringSubmatch(h)
	if m == nil {
		return time.Time{}, false
	}
	day, _ := strconv.Atoi(m[1])
	month, _ := strconv.Atoi(m[2])
	year := today.Year()
	if m[3] != "" {
		year, _ = strconv.Atoi(m[3])
		if len(m[3]) == 2 {
			year += 2000
		} else if len(m[3]) == 3 {
			return time.Time{}, false
		}
	}
	if month < 1 || month > 12 || day < 1 {
		return time.Time{}, false
	}
	d := time.Date(year, time.Month(month), day, 0, 0, 0, 0, today.Location())
	// time.Date normalises 31/02 into March; reject instead
	if d.Day() != day || int(d.Month()) != month {
		return time.Time{}, false
	}
	return d, true
}

func midnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

func datePtr(t time.Time) *time.Time {
	return &t
}
