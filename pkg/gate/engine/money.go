package engine

import (
	"regexp"
	"strconv"
	"strings"
	"sync"

	"gatewright-hq/gatewright/pkg/textnorm"
)

// amountPattern matches a currency amount: digits with optional thousands
// separators and an optional decimal part. The currency symbol is matched
// separately so the symbol set stays configurable.
var amountPattern = regexp.MustCompile(`([0-9][0-9,]*(?:\.[0-9]+)?)`)

var (
	symbolPatternMu    sync.Mutex
	symbolPatternCache = map[string]*regexp.Regexp{}
)

// Triggered reports whether the request carries refund intent together with
// a currency amount above the threshold. Symbol matching is locale-naive by
// design; the symbol set is configuration.
func (c *MoneyConfig) Triggered(request string) bool {
	norm := textnorm.Normalize(request)

	if !c.hasRefundIntent(norm) {
		return false
	}

	re := c.symbolPattern()
	if re == nil {
		return false
	}
	for _, groups := range re.FindAllStringSubmatch(norm, -1) {
		raw := strings.ReplaceAll(groups[1], ",", "")
		amount, err := strconv.ParseFloat(raw, 64)
		if err != nil {
			continue
		}
		if amount > c.Threshold {
			return true
		}
	}
	return false
}

// hasRefundIntent checks the normalized request for any configured refund
// word, compared on stemmed forms so "refunding" still arms the trigger.
func (c *MoneyConfig) hasRefundIntent(norm string) bool {
	intent := make(map[string]bool, len(c.RefundWords))
	for _, w := range c.RefundWords {
		intent[textnorm.Stem(textnorm.Normalize(w))] = true
	}
	for _, tok := range textnorm.Tokenize(norm) {
		if intent[tok] {
			return true
		}
	}
	return false
}

// symbolPattern compiles (and caches) the amount regexp for the configured
// symbol set: symbol, optional space, amount.
func (c *MoneyConfig) symbolPattern() *regexp.Regexp {
	if len(c.CurrencySymbols) == 0 {
		return nil
	}
	key := strings.Join(c.CurrencySymbols, "")

	symbolPatternMu.Lock()
	defer symbolPatternMu.Unlock()
	if re, ok := symbolPatternCache[key]; ok {
		return re
	}

	quoted := make([]string, len(c.CurrencySymbols))
	for i, s := range c.CurrencySymbols {
		quoted[i] = regexp.QuoteMeta(s)
	}
	re := regexp.MustCompile(`(?:` + strings.Join(quoted, "|") + `)\s*` + amountPattern.String())
	symbolPatternCache[key] = re
	return re
}
