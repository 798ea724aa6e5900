package tokens

import (
	"unicode/utf8"

	"github.com/Danservfinn/cogkit/tier"
)

// DefaultCharsPerToken is the default character-to-token ratio.
// Approximately 4 characters equals 1 token for English text.
const DefaultCharsPerToken = 4.0

// Counter estimates token counts for text.
type Counter interface {
	// Count estimates the number of tokens in the given text.
	Count(text string) int

	// FitsInLimit returns true if the text fits within the token limit.
	FitsInLimit(text string, limit int) bool
}

// EstimatingCounter uses a character-to-token ratio for estimation.
// Routing decisions only need order-of-magnitude sizing (is this prompt
// anywhere near the context window), so an estimate is sufficient and
// avoids a tokenizer dependency per backend.
type EstimatingCounter struct {
	// CharsPerToken is the average characters per token.
	// Default is 4, which works well for English text.
	CharsPerToken float64
}

// NewEstimatingCounter creates a token counter with default settings.
func NewEstimatingCounter() *EstimatingCounter {
	return &EstimatingCounter{CharsPerToken: DefaultCharsPerToken}
}

// NewEstimatingCounterWithRatio creates a token counter with a custom ratio.
// If charsPerToken is <= 0, the default ratio (4.0) is used.
func NewEstimatingCounterWithRatio(charsPerToken float64) *EstimatingCounter {
	if charsPerToken <= 0 {
		charsPerToken = DefaultCharsPerToken
	}
	return &EstimatingCounter{CharsPerToken: charsPerToken}
}

// Count estimates the number of tokens in the given text.
// Actual token counts vary by backend tokenizer.
func (c *EstimatingCounter) Count(text string) int {
	runeCount := utf8.RuneCountInString(text)
	return int(float64(runeCount)/c.CharsPerToken + 0.5)
}

// FitsInLimit returns true if the text fits within the token limit.
func (c *EstimatingCounter) FitsInLimit(text string, limit int) bool {
	return c.Count(text) <= limit
}

// Estimate is a convenience function using the default estimator.
func Estimate(text string) int {
	return NewEstimatingCounter().Count(text)
}

// FitsTier reports whether a prompt of the given estimated size fits the
// tier's context window, leaving room for the tier's maximum output.
func FitsTier(table *tier.Table, t tier.Tier, promptTokens int) bool {
	cfg, ok := table.Get(t)
	if !ok {
		return false
	}
	return promptTokens+cfg.MaxOutputTokens <= cfg.MaxContextTokens
}
