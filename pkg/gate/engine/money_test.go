package engine

import "testing"

func TestMoneyTriggered(t *testing.T) {
	cfg := DefaultConfig().Money

	tests := []struct {
		name    string
		request string
		want    bool
	}{
		{"refund above threshold", "Refund £10000 to the customer", true},
		{"refund at threshold", "refund £100 to the customer", false},
		{"refund below threshold", "refund £5 for postage", false},
		{"amount with thousands separators", "refund £1,500.50 to account", true},
		{"inflected intent word", "we are refunding $250 today", true},
		{"chargeback intent", "raise a chargeback for €300", true},
		{"amount without symbol", "refund 10000 to the customer", false},
		{"symbol without refund intent", "transfer £10000 to savings", false},
		{"space between symbol and amount", "refund € 750 immediately", true},
		{"no money talk at all", "archive last week's reports", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := cfg.Triggered(tt.request); got != tt.want {
				t.Errorf("Triggered(%q) = %v, want %v", tt.request, got, tt.want)
			}
		})
	}
}

func TestMoneyTriggeredCustomConfig(t *testing.T) {
	cfg := MoneyConfig{
		Threshold:       1000,
		CurrencySymbols: []string{"¥"},
		RefundWords:     []string{"refund"},
	}

	if cfg.Triggered("refund £5000 to the customer") {
		t.Error("fired on a symbol outside the configured set")
	}
	if !cfg.Triggered("refund ¥5000 to the customer") {
		t.Error("did not fire on the configured symbol")
	}
	if cfg.Triggered("refund ¥1000 to the customer") {
		t.Error("fired at the threshold; the trigger is strictly above")
	}
}

func TestMoneyTriggeredNoSymbols(t *testing.T) {
	cfg := MoneyConfig{Threshold: 100, RefundWords: []string{"refund"}}
	if cfg.Triggered("refund £10000") {
		t.Error("fired with an empty symbol set")
	}
}
