package router

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/Danservfinn/cogkit/escalate"
	"github.com/Danservfinn/cogkit/provider"
	"github.com/Danservfinn/cogkit/tier"
	"github.com/Danservfinn/cogkit/tokens"
)

// MaxReroutes bounds quality-triggered re-routing. Route loops at most
// this many extra attempts regardless of any other retry configuration.
const MaxReroutes = 2

// DefaultHistoryLimit bounds the retained routing history.
const DefaultHistoryLimit = 100

// CallFunc invokes the bound backend for a tier. The cognition package's
// TierProvider supplies one; any function with this shape works.
type CallFunc func(ctx context.Context, t tier.Tier, rc Context) (*provider.Response, error)

// Evaluator scores response quality. Scores are 0..1-ish, higher is
// better; the exact heuristic is the caller's business. A scoring error is
// treated as "no score available", never as a routing failure.
type Evaluator interface {
	Score(responseText string, rc Context) (float64, error)
}

// EvaluatorFunc adapts a plain function to Evaluator.
type EvaluatorFunc func(responseText string, rc Context) (float64, error)

// Score implements Evaluator.
func (f EvaluatorFunc) Score(responseText string, rc Context) (float64, error) {
	return f(responseText, rc)
}

// Router orchestrates one logical request: tier decision, backend call,
// quality evaluation, and bounded quality-triggered escalation. It is safe
// for concurrent use.
type Router struct {
	table   *tier.Table
	policy  *escalate.Policy
	call    CallFunc
	eval    Evaluator
	counter tokens.Counter

	budgetLimit  float64
	historyLimit int

	mu              sync.Mutex
	costTotal       float64
	requests        int64
	usageByTier     map[tier.Tier]int64
	deniedByBudget  int64
	escalations     int64
	history         []HistoryEntry
}

// Option configures a Router.
type Option func(*Router)

// WithEvaluator sets the quality evaluator. Without one, quality-triggered
// escalation is disabled and only the static policy rules apply.
func WithEvaluator(e Evaluator) Option {
	return func(r *Router) { r.eval = e }
}

// WithBudgetLimit caps total spend; escalations that would exceed the
// remaining budget are downgraded to the default tier.
func WithBudgetLimit(limit float64) Option {
	return func(r *Router) { r.budgetLimit = limit }
}

// WithTokenCounter overrides the token estimator used for sizing.
func WithTokenCounter(c tokens.Counter) Option {
	return func(r *Router) { r.counter = c }
}

// WithHistoryLimit overrides the bounded history length.
func WithHistoryLimit(n int) Option {
	return func(r *Router) {
		if n > 0 {
			r.historyLimit = n
		}
	}
}

// New creates a Router. The call function is required: routing without a
// bound backend is a programmer error and fails construction rather than
// surfacing per request.
func New(table *tier.Table, policy *escalate.Policy, call CallFunc, opts ...Option) (*Router, error) {
	if table == nil {
		return nil, errors.New("router: tier table is required")
	}
	if policy == nil {
		return nil, errors.New("router: escalation policy is required")
	}
	if call == nil {
		return nil, errors.New("router: no LLM call function bound")
	}
	r := &Router{
		table:        table,
		policy:       policy,
		call:         call,
		counter:      tokens.NewEstimatingCounter(),
		historyLimit: DefaultHistoryLimit,
		usageByTier:  make(map[tier.Tier]int64),
	}
	for _, opt := range opts {
		opt(r)
	}
	return r, nil
}

// DecideTier picks the tier for one attempt. A user-forced tier is honored
// first; otherwise the escalation policy's verdict applies, downgraded back
// to the default tier when the escalated call's estimated cost would exceed
// the remaining budget. Budget downgrades carry a "budget constraint"
// reason and are counted as evaluated-but-denied.
func (r *Router) DecideTier(rc Context) Decision {
	estTokens := r.counter.Count(rc.Prompt) + r.counter.Count(rc.SystemPrompt)
	verdict := r.policy.Evaluate(rc.TaskType, rc.signals(estTokens))

	if !verdict.ShouldEscalate {
		return Decision{
			Tier:       verdict.TargetTier,
			Trigger:    verdict.Trigger,
			Reason:     verdict.Reason,
			Confidence: verdict.Confidence,
		}
	}

	// User-forced tiers bypass the budget guard: the caller asked for it.
	if verdict.Trigger != escalate.TriggerUserRequested {
		if denied, reason := r.budgetDenies(verdict.TargetTier, estTokens, rc); denied {
			r.mu.Lock()
			r.deniedByBudget++
			r.mu.Unlock()
			return Decision{
				Tier:         tier.TierDefault,
				Trigger:      verdict.Trigger,
				Reason:       reason,
				Confidence:   verdict.Confidence,
				BudgetDenied: true,
			}
		}
	}

	return Decision{
		Tier:       verdict.TargetTier,
		Trigger:    verdict.Trigger,
		Reason:     verdict.Reason,
		Confidence: verdict.Confidence,
		Escalated:  verdict.TargetTier != tier.TierDefault,
	}
}

// budgetDenies checks the escalated call's estimated cost against the
// remaining budget.
func (r *Router) budgetDenies(target tier.Tier, estTokens int, rc Context) (bool, string) {
	limit := r.budgetLimit
	if rc.BudgetLimit > 0 {
		limit = rc.BudgetLimit
	}
	if limit <= 0 {
		return false, ""
	}

	maxOut := rc.MaxTokens
	if maxOut == 0 {
		if cfg, ok := r.table.Get(target); ok {
			maxOut = cfg.MaxOutputTokens
		}
	}
	estCost, ok := r.table.EstimateCost(target, estTokens, maxOut)
	if !ok {
		return false, ""
	}

	r.mu.Lock()
	remaining := limit - r.costTotal
	r.mu.Unlock()

	if estCost > remaining {
		return true, fmt.Sprintf(
			"budget constraint: escalation to %s would cost %.4f with %.4f remaining",
			target, estCost, remaining)
	}
	return false, ""
}

// Route executes one logical request. The loop re-routes to a higher tier
// when quality falls below the context's threshold on the default tier,
// bounded by MaxReroutes. Exactly one Result is always returned; backend
// errors surface in Result.Err, never as a Route error.
func (r *Router) Route(ctx context.Context, rc Context) Result {
	firstTier := tier.Tier(-1)

	for {
		dec := r.DecideTier(rc)
		if firstTier < 0 {
			firstTier = dec.Tier
		}

		res := r.attempt(ctx, dec, rc)
		r.account(rc, dec, res)

		if r.shouldReroute(res, rc) {
			slog.Debug("re-routing after quality failure",
				slog.String("task", rc.TaskType),
				slog.Float64("quality", res.Quality),
				slog.Int("retry", rc.RetryCount+1))
			rc = rc.WithRetry(res.Quality)
			continue
		}

		// A re-route that landed on a higher tier and succeeded is a
		// quality-pattern escalation worth logging.
		if rc.RetryCount > 0 && res.Success && res.Tier != tier.TierDefault {
			res.Escalated = true
			r.mu.Lock()
			r.escalations++
			r.mu.Unlock()
			r.policy.RecordEscalation(escalate.Record{
				Trigger:  escalate.TriggerQualityFailure,
				FromTier: firstTier,
				ToTier:   res.Tier,
				TaskType: rc.TaskType,
				TaskHash: escalate.HashTask(rc.Prompt),
				Cost:     res.Cost,
				Outcome:  "success",
			})
		}
		return res
	}
}

// shouldReroute applies the quality-escalation guard: default tier only,
// measurable quality below the threshold, and re-routes remaining.
func (r *Router) shouldReroute(res Result, rc Context) bool {
	if !res.Success || !res.HasQuality {
		return false
	}
	if res.Tier != tier.TierDefault {
		return false
	}
	if rc.MinQuality <= 0 || res.Quality >= rc.MinQuality {
		return false
	}
	return rc.RetryCount < MaxReroutes
}

// attempt performs one backend call on the decided tier and scores it.
func (r *Router) attempt(ctx context.Context, dec Decision, rc Context) Result {
	start := time.Now()
	resp, err := r.call(ctx, dec.Tier, rc)
	latency := time.Since(start)

	res := Result{Tier: dec.Tier, Latency: latency}
	if err != nil {
		res.Err = err
		return res
	}
	res.Success = true
	res.Text = resp.Text
	res.Provider = resp.Provider
	if resp.Latency > 0 {
		res.Latency = resp.Latency
	}
	if cost, ok := r.table.EstimateCost(dec.Tier, resp.Usage.InputTokens, resp.Usage.OutputTokens); ok {
		res.Cost = cost
	}

	if r.eval != nil {
		score, evalErr := r.eval.Score(resp.Text, rc)
		if evalErr != nil {
			// No score available; quality escalation is simply skipped.
			slog.Warn("quality evaluation failed",
				slog.String("task", rc.TaskType),
				slog.Any("error", evalErr))
		} else {
			res.Quality = score
			res.HasQuality = true
		}
	}
	return res
}

// HistoryEntry is one bounded routing-history sample.
type HistoryEntry struct {
	Time      time.Time `json:"time"`
	TaskType  string    `json:"task_type"`
	Tier      tier.Tier `json:"tier"`
	Success   bool      `json:"success"`
	Quality   float64   `json:"quality,omitempty"`
	Cost      float64   `json:"cost"`
	Retry     int       `json:"retry,omitempty"`
	Reason    string    `json:"reason,omitempty"`
}

// account updates running totals and the bounded history for one attempt.
func (r *Router) account(rc Context, dec Decision, res Result) {
	r.mu.Lock()
	defer r.mu.Unlock()

	r.requests++
	r.costTotal += res.Cost
	r.usageByTier[res.Tier]++

	r.history = append(r.history, HistoryEntry{
		Time:     time.Now(),
		TaskType: rc.TaskType,
		Tier:     res.Tier,
		Success:  res.Success,
		Quality:  res.Quality,
		Cost:     res.Cost,
		Retry:    rc.RetryCount,
		Reason:   dec.Reason,
	})
	if len(r.history) > r.historyLimit {
		r.history = r.history[len(r.history)-r.historyLimit:]
	}
}

// Stats is a read-only snapshot of router counters.
type Stats struct {
	Requests        int64               `json:"requests"`
	CostTotal       float64             `json:"cost_total"`
	UsageByTier     map[tier.Tier]int64 `json:"usage_by_tier"`
	Escalations     int64               `json:"escalations"`
	DeniedByBudget  int64               `json:"denied_by_budget"`
	RecentHistory   []HistoryEntry      `json:"recent_history"`
}

// Stats returns a snapshot of the router's counters and recent history
// (bounded to the last 20 entries).
func (r *Router) Stats() Stats {
	r.mu.Lock()
	defer r.mu.Unlock()

	const recentLimit = 20
	recent := r.history
	if len(recent) > recentLimit {
		recent = recent[len(recent)-recentLimit:]
	}
	usage := make(map[tier.Tier]int64, len(r.usageByTier))
	for k, v := range r.usageByTier {
		usage[k] = v
	}
	return Stats{
		Requests:       r.requests,
		CostTotal:      r.costTotal,
		UsageByTier:    usage,
		Escalations:    r.escalations,
		DeniedByBudget: r.deniedByBudget,
		RecentHistory:  append([]HistoryEntry(nil), recent...),
	}
}

// CostTotal returns the accumulated USD cost across all routed calls.
func (r *Router) CostTotal() float64 {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.costTotal
}
