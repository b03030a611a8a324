package responder

import (
	"strings"

	"github.com/Jacobbrewer1/ticketeer/pkg/entities"
)

// Terms splits a keyword group into its lower-cased, trimmed, non-empty terms.
func Terms(group string) []string {
	parts := strings.Split(group, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.ToLower(strings.TrimSpace(p))
		if p != "" {
			out = append(out, p)
		}
	}
	return out
}

// NormalizeGroup rewrites a user supplied keyword list into the stored group form, e.g. "Role,  RANK" -> "role, rank".
func NormalizeGroup(group string) string {
	return strings.Join(Terms(group), ", ")
}

// Match finds the rule whose terms appear in text. The rule with the longest matching term wins;
// rules with equally long matches are decided by their position in the list.
func Match(rules entities.KeywordRules, text string) (entities.KeywordRule, bool) {
	text = strings.ToLower(text)

	best := -1
	bestLen := 0
	for i, rule := range rules {
		for _, term := range Terms(rule.Keywords) {
			if len(term) > bestLen && strings.Contains(text, term) {
				best = i
				bestLen = len(term)
			}
		}
	}

	if best < 0 {
		return entities.KeywordRule{}, false
	}
	return rules[best], true
}
