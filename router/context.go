package router

import (
	"time"

	"github.com/Danservfinn/cogkit/escalate"
	"github.com/Danservfinn/cogkit/tier"
)

// Context is the per-request routing context. It is immutable per attempt:
// each escalation constructs a fresh Context via WithRetry rather than
// mutating in place.
type Context struct {
	// TaskType classifies the request ("think", "reason", ...).
	TaskType string `json:"task_type"`

	// Prompt is the request text.
	Prompt string `json:"prompt"`

	// SystemPrompt sets the system message, if any.
	SystemPrompt string `json:"system_prompt,omitempty"`

	// MaxTokens limits the response length.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls response randomness.
	Temperature float64 `json:"temperature,omitempty"`

	// MinQuality is the minimum acceptable quality score; responses
	// scoring below it on the default tier trigger a re-route.
	MinQuality float64 `json:"min_quality,omitempty"`

	// SafetyCritical marks tasks where a wrong answer is dangerous.
	SafetyCritical bool `json:"safety_critical,omitempty"`

	// Critical marks irreversible decisions.
	Critical bool `json:"critical,omitempty"`

	// RequiresValidation requests cross-validation by a stronger model.
	RequiresValidation bool `json:"requires_validation,omitempty"`

	// RetryCount is how many re-routes have already happened.
	RetryCount int `json:"retry_count,omitempty"`

	// PreviousQuality is the quality score of the prior attempt;
	// HasPreviousQuality marks it present.
	PreviousQuality    float64 `json:"previous_quality,omitempty"`
	HasPreviousQuality bool    `json:"has_previous_quality,omitempty"`

	// ForcedTier pins the request to a specific tier; Forced marks it set.
	ForcedTier tier.Tier `json:"forced_tier,omitempty"`
	Forced     bool      `json:"forced,omitempty"`

	// BudgetLimit is an optional per-request cost ceiling overriding the
	// router's configured budget. 0 means no override.
	BudgetLimit float64 `json:"budget_limit,omitempty"`
}

// WithRetry returns a copy of the context for a re-route attempt, carrying
// the measured quality of the failed attempt.
func (c Context) WithRetry(quality float64) Context {
	c.RetryCount++
	c.PreviousQuality = quality
	c.HasPreviousQuality = true
	return c
}

// signals converts the context into escalation-policy inputs.
func (c Context) signals(estimatedTokens int) escalate.Signals {
	return escalate.Signals{
		ForcedTier:         c.ForcedTier,
		Forced:             c.Forced,
		SafetyCritical:     c.SafetyCritical,
		PreviousQuality:    c.PreviousQuality,
		HasQuality:         c.HasPreviousQuality,
		RetryCount:         c.RetryCount,
		Critical:           c.Critical,
		RequiresValidation: c.RequiresValidation,
		EstimatedTokens:    estimatedTokens,
	}
}

// Decision is the router's tier verdict for one attempt.
type Decision struct {
	// Tier is the tier to execute on.
	Tier tier.Tier `json:"tier"`

	// Trigger names the escalation rule behind the choice.
	Trigger escalate.Trigger `json:"trigger"`

	// Reason is a human-readable explanation. Budget downgrades are
	// detectable only here, by their budget-constraint reason.
	Reason string `json:"reason"`

	// Confidence is the policy's confidence, 0..1.
	Confidence float64 `json:"confidence"`

	// Escalated reports whether the decision leaves the default tier.
	Escalated bool `json:"escalated"`

	// BudgetDenied reports an escalation that was indicated but denied
	// for budget reasons.
	BudgetDenied bool `json:"budget_denied"`
}

// Result is the outcome of one routed call.
type Result struct {
	// Success reports whether the call produced a response.
	Success bool `json:"success"`

	// Tier is the tier that served the request.
	Tier tier.Tier `json:"tier"`

	// Provider is the provider that served it, when known.
	Provider string `json:"provider,omitempty"`

	// Text is the response text.
	Text string `json:"text,omitempty"`

	// Quality is the evaluator's score; HasQuality marks it present.
	Quality    float64 `json:"quality,omitempty"`
	HasQuality bool    `json:"has_quality,omitempty"`

	// Cost is the actual USD cost computed from token counts.
	Cost float64 `json:"cost"`

	// Latency is the call duration.
	Latency time.Duration `json:"latency"`

	// Escalated reports whether this result came from an escalated
	// re-route.
	Escalated bool `json:"escalated"`

	// Err is set when the call failed.
	Err error `json:"-"`
}
