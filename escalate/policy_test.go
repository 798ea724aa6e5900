package escalate

import (
	"fmt"
	"testing"

	"github.com/Danservfinn/cogkit/tier"
)

func TestEvaluate_RuleOrder(t *testing.T) {
	p := NewPolicy(Settings{})

	tests := []struct {
		name        string
		sig         Signals
		escalate    bool
		trigger     Trigger
		target      tier.Tier
		confidence  float64
	}{
		{
			name:       "user forced tier wins over everything",
			sig:        Signals{Forced: true, ForcedTier: tier.TierExtended, SafetyCritical: true},
			escalate:   true,
			trigger:    TriggerUserRequested,
			target:     tier.TierExtended,
			confidence: 1.0,
		},
		{
			name:       "user forced default is not an escalation",
			sig:        Signals{Forced: true, ForcedTier: tier.TierDefault},
			escalate:   false,
			trigger:    TriggerUserRequested,
			target:     tier.TierDefault,
			confidence: 1.0,
		},
		{
			name:       "safety critical",
			sig:        Signals{SafetyCritical: true},
			escalate:   true,
			trigger:    TriggerSafetyValidation,
			target:     tier.TierPremium,
			confidence: 0.95,
		},
		{
			name: "safety critical regardless of other fields",
			sig: Signals{
				SafetyCritical:  true,
				PreviousQuality: 0.99,
				HasQuality:      true,
				EstimatedTokens: 5,
			},
			escalate:   true,
			trigger:    TriggerSafetyValidation,
			target:     tier.TierPremium,
			confidence: 0.95,
		},
		{
			name: "quality failure after enough retries",
			sig: Signals{
				PreviousQuality: 0.4,
				HasQuality:      true,
				RetryCount:      2,
			},
			escalate: true,
			trigger:  TriggerQualityFailure,
			target:   tier.TierPremium,
		},
		{
			name: "low quality but too few retries",
			sig: Signals{
				PreviousQuality: 0.4,
				HasQuality:      true,
				RetryCount:      1,
			},
			escalate: false,
			trigger:  TriggerNone,
			target:   tier.TierDefault,
		},
		{
			name:     "cross validation",
			sig:      Signals{Critical: true, RequiresValidation: true},
			escalate: true,
			trigger:  TriggerCrossValidation,
			target:   tier.TierPremium,
		},
		{
			name:     "critical without validation request stays",
			sig:      Signals{Critical: true},
			escalate: false,
			trigger:  TriggerNone,
			target:   tier.TierDefault,
		},
		{
			name:       "context too large",
			sig:        Signals{EstimatedTokens: 150000},
			escalate:   true,
			trigger:    TriggerContextSize,
			target:     tier.TierPremium,
			confidence: 1.0,
		},
		{
			name:       "default: no escalation",
			sig:        Signals{},
			escalate:   false,
			trigger:    TriggerNone,
			target:     tier.TierDefault,
			confidence: 0.9,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := p.Evaluate("test-task", tt.sig)
			if got.ShouldEscalate != tt.escalate {
				t.Errorf("ShouldEscalate = %v, want %v", got.ShouldEscalate, tt.escalate)
			}
			if got.Trigger != tt.trigger {
				t.Errorf("Trigger = %s, want %s", got.Trigger, tt.trigger)
			}
			if got.TargetTier != tt.target {
				t.Errorf("TargetTier = %s, want %s", got.TargetTier, tt.target)
			}
			if tt.confidence > 0 && got.Confidence != tt.confidence {
				t.Errorf("Confidence = %v, want %v", got.Confidence, tt.confidence)
			}
			if got.Reason == "" {
				t.Error("Reason should never be empty")
			}
		})
	}
}

func TestEvaluate_CustomThresholds(t *testing.T) {
	p := NewPolicy(Settings{
		QualityThreshold:         0.9,
		MaxRetriesBeforeEscalate: 1,
		ContextTokenLimit:        1000,
	})

	got := p.Evaluate("t", Signals{PreviousQuality: 0.85, HasQuality: true, RetryCount: 1})
	if !got.ShouldEscalate || got.Trigger != TriggerQualityFailure {
		t.Errorf("custom quality threshold not applied: %+v", got)
	}

	got = p.Evaluate("t", Signals{EstimatedTokens: 1500})
	if !got.ShouldEscalate || got.Trigger != TriggerContextSize {
		t.Errorf("custom context limit not applied: %+v", got)
	}
}

func TestLog_TrainingCandidateFlag(t *testing.T) {
	l := NewLog(DefaultLogLimit)
	hash := HashTask("the same recurring task")

	for i := 1; i <= TrainingCandidateThreshold+1; i++ {
		rec := l.Record(Record{
			Trigger:  TriggerQualityFailure,
			FromTier: tier.TierDefault,
			ToTier:   tier.TierPremium,
			TaskHash: hash,
			Cost:     0.01,
		})

		flagged := i >= TrainingCandidateThreshold
		if rec.ShouldTrainCustom != flagged {
			t.Errorf("record %d: ShouldTrainCustom = %v, want %v", i, rec.ShouldTrainCustom, flagged)
		}
	}

	stats := l.Stats()
	if stats.TrainingCandidates[hash] != TrainingCandidateThreshold+1 {
		t.Errorf("candidate count = %d, want %d", stats.TrainingCandidates[hash], TrainingCandidateThreshold+1)
	}
}

func TestLog_BoundedHistoryAndTotals(t *testing.T) {
	l := NewLog(10)

	for i := 0; i < 25; i++ {
		l.Record(Record{
			Trigger:  TriggerSafetyValidation,
			FromTier: tier.TierDefault,
			ToTier:   tier.TierPremium,
			TaskHash: HashTask(fmt.Sprintf("task-%d", i)),
			Cost:     0.1,
		})
	}

	stats := l.Stats()
	if stats.Total != 25 {
		t.Errorf("total = %d, want 25", stats.Total)
	}
	if got := stats.TotalCost; got < 2.49 || got > 2.51 {
		t.Errorf("total cost = %v, want ~2.5", got)
	}
	if stats.ByTrigger[TriggerSafetyValidation] != 25 {
		t.Errorf("trigger count = %d, want 25", stats.ByTrigger[TriggerSafetyValidation])
	}
	if len(stats.Recent) != 10 {
		t.Errorf("recent = %d entries, want history bounded at 10", len(stats.Recent))
	}
	if len(stats.TrainingCandidates) != 0 {
		t.Errorf("unique hashes should not be training candidates: %v", stats.TrainingCandidates)
	}
}

func TestHashTask_Stable(t *testing.T) {
	if HashTask("abc") != HashTask("abc") {
		t.Error("hash must be deterministic")
	}
	if HashTask("abc") == HashTask("abd") {
		t.Error("different content should hash differently")
	}
	if len(HashTask("abc")) != 16 {
		t.Errorf("hash length = %d, want 16", len(HashTask("abc")))
	}
}
