package router

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/Danservfinn/cogkit/escalate"
	"github.com/Danservfinn/cogkit/provider"
	"github.com/Danservfinn/cogkit/tier"
)

// recordingCall is a CallFunc stub that records each tier it was invoked on.
type recordingCall struct {
	mu    sync.Mutex
	tiers []tier.Tier
	text  string
	err   error
}

func (c *recordingCall) fn(ctx context.Context, t tier.Tier, rc Context) (*provider.Response, error) {
	c.mu.Lock()
	c.tiers = append(c.tiers, t)
	c.mu.Unlock()
	if c.err != nil {
		return nil, c.err
	}
	return &provider.Response{
		Text:     c.text,
		Provider: "stub",
		Usage:    provider.TokenUsage{InputTokens: 100, OutputTokens: 200},
	}, nil
}

func newTestRouter(t *testing.T, call CallFunc, opts ...Option) *Router {
	t.Helper()
	r, err := New(tier.DefaultTable(), escalate.NewPolicy(escalate.Settings{}), call, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return r
}

func TestNew_RequiresCallFunc(t *testing.T) {
	if _, err := New(tier.DefaultTable(), escalate.NewPolicy(escalate.Settings{}), nil); err == nil {
		t.Fatal("expected error for nil call function")
	}
	if _, err := New(nil, escalate.NewPolicy(escalate.Settings{}), (&recordingCall{}).fn); err == nil {
		t.Fatal("expected error for nil table")
	}
	if _, err := New(tier.DefaultTable(), nil, (&recordingCall{}).fn); err == nil {
		t.Fatal("expected error for nil policy")
	}
}

func TestDecideTier_Default(t *testing.T) {
	r := newTestRouter(t, (&recordingCall{}).fn)

	dec := r.DecideTier(Context{TaskType: "chat", Prompt: "hello"})
	if dec.Tier != tier.TierDefault {
		t.Errorf("tier = %s, want default", dec.Tier)
	}
	if dec.Trigger != escalate.TriggerNone {
		t.Errorf("trigger = %s, want none", dec.Trigger)
	}
	if dec.Escalated || dec.BudgetDenied {
		t.Errorf("unexpected flags in %+v", dec)
	}
}

func TestDecideTier_BudgetDeniesEscalation(t *testing.T) {
	r := newTestRouter(t, (&recordingCall{}).fn, WithBudgetLimit(0.01))

	// Safety escalation to premium would cost well over a cent.
	dec := r.DecideTier(Context{
		TaskType:       "review",
		Prompt:         "check this",
		MaxTokens:      1000,
		SafetyCritical: true,
	})
	if dec.Tier != tier.TierDefault {
		t.Errorf("tier = %s, want downgrade to default", dec.Tier)
	}
	if !dec.BudgetDenied {
		t.Error("BudgetDenied not set")
	}
	if dec.Trigger != escalate.TriggerSafetyValidation {
		t.Errorf("trigger = %s, want the original escalation trigger", dec.Trigger)
	}
	if dec.Reason == "" || dec.Reason == "safety-critical review task requires premium validation" {
		t.Errorf("reason should mention the budget constraint, got %q", dec.Reason)
	}

	if got := r.Stats().DeniedByBudget; got != 1 {
		t.Errorf("DeniedByBudget = %d, want 1", got)
	}
}

func TestDecideTier_BudgetAllowsWhenAffordable(t *testing.T) {
	r := newTestRouter(t, (&recordingCall{}).fn, WithBudgetLimit(100))

	dec := r.DecideTier(Context{
		TaskType:       "review",
		Prompt:         "check this",
		MaxTokens:      1000,
		SafetyCritical: true,
	})
	if dec.Tier != tier.TierPremium || !dec.Escalated || dec.BudgetDenied {
		t.Errorf("unexpected decision %+v", dec)
	}
}

func TestDecideTier_ForcedTierBypassesBudget(t *testing.T) {
	r := newTestRouter(t, (&recordingCall{}).fn, WithBudgetLimit(0.0001))

	dec := r.DecideTier(Context{
		TaskType:   "deep",
		Prompt:     "think hard",
		ForcedTier: tier.TierExtended,
		Forced:     true,
	})
	if dec.Tier != tier.TierExtended {
		t.Errorf("tier = %s, want forced extended", dec.Tier)
	}
	if dec.BudgetDenied {
		t.Error("forced tier must not be budget-denied")
	}
	if dec.Trigger != escalate.TriggerUserRequested {
		t.Errorf("trigger = %s", dec.Trigger)
	}
}

func TestRoute_SingleCallWhenQualityGood(t *testing.T) {
	call := &recordingCall{text: "fine answer"}
	r := newTestRouter(t, call.fn, WithEvaluator(
		EvaluatorFunc(func(text string, rc Context) (float64, error) { return 0.95, nil }),
	))

	res := r.Route(context.Background(), Context{TaskType: "chat", Prompt: "hi", MinQuality: 0.8})
	if !res.Success {
		t.Fatalf("Route failed: %v", res.Err)
	}
	if len(call.tiers) != 1 {
		t.Errorf("calls = %d, want 1", len(call.tiers))
	}
	if res.Tier != tier.TierDefault || res.Escalated {
		t.Errorf("unexpected result %+v", res)
	}
	if !res.HasQuality || res.Quality != 0.95 {
		t.Errorf("quality = %v (has=%v)", res.Quality, res.HasQuality)
	}
	if res.Cost != 0 {
		t.Errorf("cost = %v, want 0 on the free default tier", res.Cost)
	}
}

func TestRoute_RerouteBoundWithHopelessEvaluator(t *testing.T) {
	call := &recordingCall{text: "meh"}
	r := newTestRouter(t, call.fn, WithEvaluator(
		EvaluatorFunc(func(text string, rc Context) (float64, error) { return 0.0, nil }),
	))

	res := r.Route(context.Background(), Context{TaskType: "chat", Prompt: "hi", MinQuality: 0.8})
	if !res.Success {
		t.Fatalf("Route failed: %v", res.Err)
	}

	// Initial call plus at most MaxReroutes re-routes.
	if len(call.tiers) != 1+MaxReroutes {
		t.Fatalf("calls = %d, want %d", len(call.tiers), 1+MaxReroutes)
	}
	// The first re-route stays on the default tier; with enough retries
	// behind it the policy escalates the last attempt.
	want := []tier.Tier{tier.TierDefault, tier.TierDefault, tier.TierPremium}
	for i, w := range want {
		if call.tiers[i] != w {
			t.Errorf("call %d on %s, want %s", i, call.tiers[i], w)
		}
	}
	if res.Tier != tier.TierPremium {
		t.Errorf("final tier = %s, want premium", res.Tier)
	}
	if !res.Escalated {
		t.Error("result should be marked escalated")
	}

	stats := r.Stats()
	if stats.Requests != 3 {
		t.Errorf("requests = %d, want 3", stats.Requests)
	}
	if stats.Escalations != 1 {
		t.Errorf("escalations = %d, want 1", stats.Escalations)
	}
	if stats.UsageByTier[tier.TierDefault] != 2 || stats.UsageByTier[tier.TierPremium] != 1 {
		t.Errorf("usage by tier = %v", stats.UsageByTier)
	}
	if stats.CostTotal <= 0 {
		t.Error("the premium attempt should have accrued cost")
	}
}

func TestRoute_EscalationRecordedInPolicy(t *testing.T) {
	policy := escalate.NewPolicy(escalate.Settings{})
	call := &recordingCall{text: "meh"}
	r, err := New(tier.DefaultTable(), policy, call.fn, WithEvaluator(
		EvaluatorFunc(func(text string, rc Context) (float64, error) { return 0.1, nil }),
	))
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	r.Route(context.Background(), Context{TaskType: "gen", Prompt: "do it", MinQuality: 0.9})

	stats := policy.Stats()
	if stats.Total != 1 {
		t.Fatalf("policy recorded %d escalations, want 1", stats.Total)
	}
	rec := stats.Recent[0]
	if rec.Trigger != escalate.TriggerQualityFailure {
		t.Errorf("trigger = %s", rec.Trigger)
	}
	if rec.FromTier != tier.TierDefault || rec.ToTier != tier.TierPremium {
		t.Errorf("tiers %s -> %s", rec.FromTier, rec.ToTier)
	}
	if rec.TaskHash != escalate.HashTask("do it") {
		t.Errorf("task hash = %q", rec.TaskHash)
	}
}

func TestRoute_EvaluatorErrorSkipsReroute(t *testing.T) {
	call := &recordingCall{text: "answer"}
	r := newTestRouter(t, call.fn, WithEvaluator(
		EvaluatorFunc(func(text string, rc Context) (float64, error) {
			return 0, errors.New("scorer offline")
		}),
	))

	res := r.Route(context.Background(), Context{TaskType: "chat", Prompt: "hi", MinQuality: 0.8})
	if !res.Success {
		t.Fatalf("Route failed: %v", res.Err)
	}
	if len(call.tiers) != 1 {
		t.Errorf("calls = %d, want 1 (no score, no re-route)", len(call.tiers))
	}
	if res.HasQuality {
		t.Error("HasQuality should be false when the evaluator errors")
	}
}

func TestRoute_NoEvaluatorNoReroute(t *testing.T) {
	call := &recordingCall{text: "answer"}
	r := newTestRouter(t, call.fn)

	res := r.Route(context.Background(), Context{TaskType: "chat", Prompt: "hi", MinQuality: 0.99})
	if len(call.tiers) != 1 {
		t.Errorf("calls = %d, want 1", len(call.tiers))
	}
	if res.HasQuality {
		t.Error("no evaluator, no quality score")
	}
}

func TestRoute_BackendErrorSurfacesInResult(t *testing.T) {
	call := &recordingCall{err: errors.New("backend down")}
	r := newTestRouter(t, call.fn)

	res := r.Route(context.Background(), Context{TaskType: "chat", Prompt: "hi"})
	if res.Success {
		t.Fatal("expected failure")
	}
	if res.Err == nil || res.Err.Error() != "backend down" {
		t.Errorf("err = %v", res.Err)
	}
	if len(call.tiers) != 1 {
		t.Errorf("calls = %d, want 1 (errors do not re-route)", len(call.tiers))
	}
}

func TestWithRetry_IncrementsAndCarriesQuality(t *testing.T) {
	rc := Context{TaskType: "chat", Prompt: "hi"}
	next := rc.WithRetry(0.3)
	if next.RetryCount != 1 {
		t.Errorf("retry = %d, want 1", next.RetryCount)
	}
	if !next.HasPreviousQuality || next.PreviousQuality != 0.3 {
		t.Errorf("previous quality not carried: %+v", next)
	}
	if rc.RetryCount != 0 {
		t.Error("WithRetry must not mutate the receiver")
	}
}

func TestStats_HistoryBounded(t *testing.T) {
	call := &recordingCall{text: "ok"}
	r := newTestRouter(t, call.fn, WithHistoryLimit(5))

	for i := 0; i < 12; i++ {
		r.Route(context.Background(), Context{TaskType: "chat", Prompt: "hi"})
	}

	stats := r.Stats()
	if stats.Requests != 12 {
		t.Errorf("requests = %d, want 12", stats.Requests)
	}
	if len(stats.RecentHistory) != 5 {
		t.Errorf("history = %d entries, want bounded at 5", len(stats.RecentHistory))
	}
}
