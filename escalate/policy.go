package escalate

import (
	"fmt"

	"github.com/Danservfinn/cogkit/tier"
)

// Trigger identifies which rule caused an escalation decision.
type Trigger string

// Escalation triggers, in rule-priority order.
const (
	// TriggerUserRequested fires when the caller forced a specific tier.
	TriggerUserRequested Trigger = "user_requested"

	// TriggerSafetyValidation fires for safety-critical tasks.
	TriggerSafetyValidation Trigger = "safety_validation"

	// TriggerQualityFailure fires when quality stayed below threshold
	// after enough retries.
	TriggerQualityFailure Trigger = "quality_failure"

	// TriggerCrossValidation fires for critical decisions that require
	// validation by a stronger model.
	TriggerCrossValidation Trigger = "cross_validation"

	// TriggerContextSize fires when the estimated context exceeds the
	// default tier's practical limit.
	TriggerContextSize Trigger = "context_size"

	// TriggerNone means no escalation.
	TriggerNone Trigger = "none"
)

// Decision is the policy's verdict for one request.
type Decision struct {
	// ShouldEscalate reports whether the request should leave the
	// default tier.
	ShouldEscalate bool `json:"should_escalate"`

	// Trigger names the first rule that matched.
	Trigger Trigger `json:"trigger"`

	// TargetTier is the tier to escalate to (or stay on).
	TargetTier tier.Tier `json:"target_tier"`

	// Reason is a human-readable explanation.
	Reason string `json:"reason"`

	// Confidence is the policy's confidence in the verdict, 0..1.
	Confidence float64 `json:"confidence"`
}

// Signals carries the per-request quality/criticality inputs the policy
// evaluates. Zero values mean "signal absent".
type Signals struct {
	// ForcedTier is a user-requested tier; Forced marks it present.
	ForcedTier tier.Tier
	Forced     bool

	// SafetyCritical marks tasks where a wrong answer is dangerous.
	SafetyCritical bool

	// PreviousQuality is the quality score from the prior attempt;
	// HasQuality marks it present.
	PreviousQuality float64
	HasQuality      bool

	// RetryCount is how many attempts have already been made.
	RetryCount int

	// Critical marks irreversible/critical decisions.
	Critical bool

	// RequiresValidation requests cross-validation by a stronger model.
	RequiresValidation bool

	// EstimatedTokens is the estimated context size of the request.
	EstimatedTokens int
}

// Default policy thresholds.
const (
	DefaultQualityThreshold         = 0.7
	DefaultMaxRetriesBeforeEscalate = 2
	DefaultContextTokenLimit        = 120000
)

// Settings configures a Policy.
type Settings struct {
	// QualityThreshold is the minimum acceptable quality score.
	QualityThreshold float64

	// MaxRetriesBeforeEscalate is how many low-quality retries are
	// tolerated before escalating.
	MaxRetriesBeforeEscalate int

	// ContextTokenLimit is the estimated-token count above which
	// requests escalate for context size.
	ContextTokenLimit int
}

func (s Settings) withDefaults() Settings {
	if s.QualityThreshold <= 0 {
		s.QualityThreshold = DefaultQualityThreshold
	}
	if s.MaxRetriesBeforeEscalate <= 0 {
		s.MaxRetriesBeforeEscalate = DefaultMaxRetriesBeforeEscalate
	}
	if s.ContextTokenLimit <= 0 {
		s.ContextTokenLimit = DefaultContextTokenLimit
	}
	return s
}

// Policy decides whether a request should escalate from the default tier,
// applying a fixed ordered rule list where the first match wins. Evaluate
// is pure; side effects live in RecordEscalation.
type Policy struct {
	settings Settings
	log      *Log
}

// NewPolicy creates a Policy with the given settings. Zero-valued settings
// fields use package defaults.
func NewPolicy(settings Settings) *Policy {
	return &Policy{
		settings: settings.withDefaults(),
		log:      NewLog(DefaultLogLimit),
	}
}

// Evaluate applies the rule list to the given signals.
//
// Rule order: user-forced tier, safety-critical, quality-failed-after-
// retries, cross-validation, context-too-large, then no escalation.
func (p *Policy) Evaluate(taskType string, sig Signals) Decision {
	if sig.Forced {
		return Decision{
			ShouldEscalate: sig.ForcedTier != tier.TierDefault,
			Trigger:        TriggerUserRequested,
			TargetTier:     sig.ForcedTier,
			Reason:         fmt.Sprintf("user requested %s tier", sig.ForcedTier),
			Confidence:     1.0,
		}
	}

	if sig.SafetyCritical {
		return Decision{
			ShouldEscalate: true,
			Trigger:        TriggerSafetyValidation,
			TargetTier:     tier.TierPremium,
			Reason:         fmt.Sprintf("safety-critical %s task requires premium validation", taskType),
			Confidence:     0.95,
		}
	}

	if sig.HasQuality &&
		sig.PreviousQuality < p.settings.QualityThreshold &&
		sig.RetryCount >= p.settings.MaxRetriesBeforeEscalate {
		return Decision{
			ShouldEscalate: true,
			Trigger:        TriggerQualityFailure,
			TargetTier:     tier.TierPremium,
			Reason: fmt.Sprintf("quality %.2f below threshold %.2f after %d retries",
				sig.PreviousQuality, p.settings.QualityThreshold, sig.RetryCount),
			Confidence: 0.85,
		}
	}

	if sig.Critical && sig.RequiresValidation {
		return Decision{
			ShouldEscalate: true,
			Trigger:        TriggerCrossValidation,
			TargetTier:     tier.TierPremium,
			Reason:         "critical decision requires cross-validation",
			Confidence:     0.9,
		}
	}

	if sig.EstimatedTokens > p.settings.ContextTokenLimit {
		return Decision{
			ShouldEscalate: true,
			Trigger:        TriggerContextSize,
			TargetTier:     tier.TierPremium,
			Reason: fmt.Sprintf("estimated context %d tokens exceeds %d limit",
				sig.EstimatedTokens, p.settings.ContextTokenLimit),
			Confidence: 1.0,
		}
	}

	return Decision{
		Trigger:    TriggerNone,
		TargetTier: tier.TierDefault,
		Reason:     "no escalation signal; staying on free default tier",
		Confidence: 0.9,
	}
}

// RecordEscalation logs an escalation that actually occurred.
// See Log.Record for the side effects.
func (p *Policy) RecordEscalation(rec Record) Record {
	return p.log.Record(rec)
}

// Stats returns the policy's escalation statistics.
func (p *Policy) Stats() LogStats {
	return p.log.Stats()
}
