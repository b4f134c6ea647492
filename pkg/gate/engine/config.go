package engine

// Matcher backends selectable via configuration.
const (
	BackendLexical  = "lexical"
	BackendSemantic = "semantic"
)

// Config contains configuration for the conflict matcher.
type Config struct {
	// Backend selects the matcher backend: "lexical" (default) or
	// "semantic". The semantic backend requires a SemanticScorer and falls
	// back to lexical when it yields no matches.
	Backend string

	// Threshold is the minimum similarity score for the semantic backend.
	// Default: 0.60
	Threshold float64

	// Money configures the monetary domain trigger.
	Money MoneyConfig
}

// MoneyConfig configures the monetary domain trigger: high-value refund
// language always flags the anchors scoped to the payment namespaces,
// regardless of lexical overlap. The threshold and symbol set are policy,
// not constants; deployments with other locales override them.
type MoneyConfig struct {
	// Threshold is the amount above which the trigger fires.
	// Default: 100
	Threshold float64

	// CurrencySymbols are the symbols recognized in front of amounts.
	// Default: £, $, €
	CurrencySymbols []string

	// RefundWords are the intent words that arm the trigger.
	// Default: refund, chargeback, reimburse, repay
	RefundWords []string

	// Scopes are the anchor scopes flagged when the trigger fires.
	// Default: payments, payments.refunds
	Scopes []string
}

// DefaultConfig returns the default matcher configuration.
func DefaultConfig() *Config {
	return &Config{
		Backend:   BackendLexical,
		Threshold: 0.60,
		Money: MoneyConfig{
			Threshold:       100,
			CurrencySymbols: []string{"£", "$", "€"},
			RefundWords:     []string{"refund", "chargeback", "reimburse", "repay"},
			Scopes:          []string{"payments", "payments.refunds"},
		},
	}
}
