package recognition

import "regexp"

// Rule is one entry of the praise rule table
type Rule struct {
	Pattern    *regexp.Regexp
	Label      string
	Confidence float64
}

func rule(expr, label string, confidence float64) Rule {
	return Rule{Pattern: regexp.MustCompile(`(?i)` + expr), Label: label, Confidence: confidence}
}

// DefaultRules is the ordered praise rule table. Idiomatic phrases come first;
// generic superlatives sit at the bottom with lower confidence.
// Order matters: on equal confidence the earlier rule wins dedup.
var DefaultRules = []Rule{
	// Portuguese
	rule(`parab[ée]ns`, "parabens", 0.95),
	rule(`excelente trabalho`, "excelente_trabalho", 0.9),
	rule(`[óo]timo trabalho`, "otimo_trabalho", 0.9),
	rule(`mandou (muito )?bem`, "mandou_bem", 0.9),
	rule(`arrasou`, "arrasou", 0.85),
	rule(`obrigad[oa] (pel[oa]|por)`, "obrigado_por", 0.85),
	rule(`agrade[çc]o (a|ao|à|pel[oa])`, "agradeco", 0.8),
	rule(`destaque (para|pra)`, "destaque_para", 0.8),

	// English
	rule(`congrat(s|ulations)`, "congratulations", 0.95),
	rule(`great job`, "great_job", 0.9),
	rule(`well done`, "well_done", 0.9),
	rule(`kudos`, "kudos", 0.9),
	rule(`(good|nice) (job|work)`, "good_job", 0.85),
	rule(`shout[- ]?out`, "shout_out", 0.85),
	rule(`thank(s| you) (for|to)`, "thank_you_for", 0.8),

	// Generic superlatives
	rule(`incr[íi]vel`, "superlative_pt", 0.65),
	rule(`fant[áa]stic[oa]`, "superlative_pt", 0.65),
	rule(`sensacional`, "superlative_pt", 0.65),
	rule(`excelente`, "superlative_pt", 0.6),
	rule(`outstanding|brilliant`, "superlative_en", 0.7),
	rule(`amazing|awesome|fantastic`, "superlative_en", 0.65),
}
