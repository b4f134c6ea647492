package engine

import (
	"fmt"
	"strings"

	"gatewright-hq/gatewright/pkg/textnorm"
)

// highRiskPhrases is the fixed vocabulary that marks a request as high-risk
// phrasing regardless of which rule matched. Compared on stemmed tokens.
var highRiskPhrases = []string{
	"break in", "breaking in", "lockpick", "lockpicking", "pick the lock",
	"steal", "stealing", "theft", "rob", "robbing", "burglary", "shoplift",
}

// Explain produces one human-readable explanation per match, parallel to the
// matcher's precedence. Every explanation names the triggering evidence; the
// generic fallback is used only when no specific evidence exists.
func Explain(request string, matches []Match) []string {
	if len(matches) == 0 {
		return nil
	}

	highRisk := containsHighRiskPhrase(request)

	out := make([]string, 0, len(matches))
	for _, m := range matches {
		a := m.Anchor
		header := fmt.Sprintf("Anchor L%d (%s): %q", a.Level, a.Scope, a.Statement)

		var why string
		switch {
		case m.Rule == RuleNegationInversion:
			why = "triggered by semantic inversion: the request and the anchor match after removing 'not', but exactly one of them is negated"

		case highRisk:
			why = "triggered by high-risk phrasing in the request"

		case m.Rule == RuleSemantic:
			why = fmt.Sprintf("triggered by semantic similarity (score %.2f)", m.Score)

		case m.Rule == RuleMonetaryTrigger:
			why = "triggered by high-value refund language under a payment-scoped anchor"

		case len(m.SharedBigrams) > 0:
			why = fmt.Sprintf("triggered by shared phrasing: %s", strings.Join(m.SharedBigrams, ", "))

		case len(m.SharedTokens) > 0:
			why = fmt.Sprintf("triggered by keyword overlap: %s", strings.Join(m.SharedTokens, ", "))

		default:
			why = "triggered by the current matching rules (no specific evidence extracted)"
		}

		out = append(out, header+" - "+why)
	}
	return out
}

// containsHighRiskPhrase checks the request for the high-risk vocabulary,
// comparing stemmed token sequences so surface variants still match.
func containsHighRiskPhrase(request string) bool {
	reqTokens := stemAll(textnorm.Normalize(request))
	reqJoined := " " + strings.Join(reqTokens, " ") + " "

	for _, phrase := range highRiskPhrases {
		p := stemAll(phrase)
		if len(p) == 0 {
			continue
		}
		if strings.Contains(reqJoined, " "+strings.Join(p, " ")+" ") {
			return true
		}
	}
	return false
}

// stemAll stems every whitespace token without applying the stoplist, so
// phrases like "break in" survive intact.
func stemAll(s string) []string {
	fields := strings.Fields(textnorm.Normalize(s))
	out := make([]string, len(fields))
	for i, f := range fields {
		out[i] = textnorm.Stem(f)
	}
	return out
}
