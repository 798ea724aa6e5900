package tokens

import (
	"strings"
	"testing"

	"github.com/Danservfinn/cogkit/tier"
)

func TestEstimatingCounter(t *testing.T) {
	c := NewEstimatingCounter()

	tests := []struct {
		name     string
		text     string
		expected int
	}{
		{"empty", "", 0},
		{"four chars", "abcd", 1},
		{"eight chars", "abcdefgh", 2},
		{"rounds up", "abcdef", 2}, // 6/4 = 1.5 -> 2
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := c.Count(tt.text); got != tt.expected {
				t.Errorf("Count(%q) = %d, want %d", tt.text, got, tt.expected)
			}
		})
	}
}

func TestCounterRatioGuard(t *testing.T) {
	c := NewEstimatingCounterWithRatio(-1)
	if c.CharsPerToken != DefaultCharsPerToken {
		t.Errorf("ratio = %v, want default %v", c.CharsPerToken, DefaultCharsPerToken)
	}
}

func TestFitsInLimit(t *testing.T) {
	c := NewEstimatingCounter()
	if !c.FitsInLimit("abcd", 1) {
		t.Error("4 chars should fit in 1 token")
	}
	if c.FitsInLimit("abcdefgh", 1) {
		t.Error("8 chars should not fit in 1 token")
	}
}

func TestFitsTier(t *testing.T) {
	table := tier.DefaultTable()

	if !FitsTier(table, tier.TierPremium, 1000) {
		t.Error("1k tokens should fit premium")
	}
	// Reflex has an 8k window with 1k reserved for output.
	if FitsTier(table, tier.TierReflex, 8000) {
		t.Error("8k tokens should not fit reflex")
	}
	if FitsTier(table, tier.Tier(99), 10) {
		t.Error("invalid tier never fits")
	}
}

func TestEstimateConvenience(t *testing.T) {
	text := strings.Repeat("a", 400)
	if got := Estimate(text); got != 100 {
		t.Errorf("Estimate(400 chars) = %d, want 100", got)
	}
}
