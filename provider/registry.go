package provider

import (
	"log/slog"
	"sort"
	"sync"
	"time"
)

// Auto-demotion thresholds over the rolling error rate.
const (
	degradedErrorRate    = 0.5
	unavailableErrorRate = 0.9
)

// Registered is a read-only snapshot of one provider's registration and
// live state, as returned from Registry queries.
type Registered struct {
	Config    Config
	Health    Health
	Tags      []string
	Requests  int64
	Successes int64
}

// entry is the registry's mutable record for one provider.
type entry struct {
	config    Config
	health    Health
	tags      []string
	requests  int64
	successes int64
}

// Registry holds provider registrations and their live health state.
// It is safe for concurrent use and is intended to be a process-wide
// singleton owned by the composition root and passed by reference.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]*entry
	order     []string // registration order, for stable stats output
}

// NewRegistry creates an empty provider registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]*entry)}
}

// Register adds or replaces a provider registration. Registration is an
// idempotent upsert: re-registering an ID replaces its config and tags and
// resets health to unknown with zeroed counters.
func (r *Registry) Register(cfg Config, tags ...string) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	if _, exists := r.providers[cfg.ID]; !exists {
		r.order = append(r.order, cfg.ID)
	}
	r.providers[cfg.ID] = &entry{
		config: cfg,
		health: Health{Status: StatusUnknown},
		tags:   append([]string(nil), tags...),
	}
	slog.Debug("provider registered",
		slog.String("provider", cfg.ID),
		slog.String("type", string(cfg.Type)),
		slog.Int("priority", cfg.Priority))
	return nil
}

// Filter narrows candidate selection in AvailableProviders.
// Zero values match everything.
type Filter struct {
	// Capability requires a capability tag ("streaming", "vision", ...).
	Capability string

	// MinContextTokens requires at least this large a context window.
	MinContextTokens int

	// Model requires the provider to serve the named model.
	Model string
}

// AvailableProviders returns providers that are not unavailable and match
// the filter, sorted ascending by priority. The returned snapshots are
// copies; mutating them does not affect the registry.
func (r *Registry) AvailableProviders(f Filter) []Registered {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var out []Registered
	for _, id := range r.order {
		e := r.providers[id]
		if !e.health.Usable() {
			continue
		}
		if !e.config.Capabilities.Has(f.Capability) {
			continue
		}
		if f.MinContextTokens > 0 && e.config.Capabilities.MaxContextTokens < f.MinContextTokens {
			continue
		}
		if f.Model != "" && !e.config.Capabilities.SupportsModel(f.Model) {
			continue
		}
		out = append(out, e.snapshot())
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Config.Priority < out[j].Config.Priority
	})
	return out
}

// Get returns a snapshot of one provider. ok is false for unknown IDs.
func (r *Registry) Get(id string) (Registered, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.providers[id]
	if !ok {
		return Registered{}, false
	}
	return e.snapshot(), true
}

// UpdateHealth overwrites a provider's health snapshot. Unknown IDs are a
// warned no-op, never an error: a silently skipped provider costs less than
// crashing the router.
func (r *Registry) UpdateHealth(id string, status Status, latency time.Duration, errMsg string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.providers[id]
	if !ok {
		slog.Warn("health update for unknown provider", slog.String("provider", id))
		return
	}
	e.health.Status = status
	e.health.LastCheck = time.Now()
	if latency > 0 {
		e.health.Latency = latency
	}
	if errMsg != "" {
		e.health.LastError = errMsg
	}
}

// RecordRequest records one call outcome, recomputes the rolling error
// rate, and auto-demotes health when the rate crosses the degraded (>0.5)
// or unavailable (>0.9) thresholds. Explicit UpdateHealth calls can
// override the auto-assigned status at any time. Unknown IDs are a warned
// no-op.
func (r *Registry) RecordRequest(id string, success bool, latency time.Duration) {
	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.providers[id]
	if !ok {
		slog.Warn("request record for unknown provider", slog.String("provider", id))
		return
	}

	e.requests++
	if success {
		e.successes++
	}
	e.health.ErrorRate = 1 - float64(e.successes)/float64(e.requests)
	e.health.LastCheck = time.Now()
	if latency > 0 {
		e.health.Latency = latency
	}

	switch {
	case e.health.ErrorRate > unavailableErrorRate:
		e.health.Status = StatusUnavailable
	case e.health.ErrorRate > degradedErrorRate:
		e.health.Status = StatusDegraded
	case e.health.Status == StatusUnknown && success:
		e.health.Status = StatusAvailable
	}
}

// EstimateCost computes the USD cost of a call against the provider's cost
// table. ok is false for unknown IDs.
func (r *Registry) EstimateCost(id string, inputTokens, outputTokens int) (float64, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	e, ok := r.providers[id]
	if !ok {
		slog.Warn("cost estimate for unknown provider", slog.String("provider", id))
		return 0, false
	}
	return e.config.Costs.Cost(inputTokens, outputTokens), true
}

// Cheapest returns the matching available provider with the lowest cost for
// a nominal 1k-input/1k-output call. ok is false when nothing matches.
func (r *Registry) Cheapest(f Filter) (Registered, bool) {
	candidates := r.AvailableProviders(f)
	if len(candidates) == 0 {
		return Registered{}, false
	}
	best := candidates[0]
	bestCost := best.Config.Costs.Cost(1000, 1000)
	for _, c := range candidates[1:] {
		if cost := c.Config.Costs.Cost(1000, 1000); cost < bestCost {
			best, bestCost = c, cost
		}
	}
	return best, true
}

// Fastest returns the matching available provider with the lowest observed
// latency. Providers with no observed latency sort last. ok is false when
// nothing matches.
func (r *Registry) Fastest(f Filter) (Registered, bool) {
	candidates := r.AvailableProviders(f)
	if len(candidates) == 0 {
		return Registered{}, false
	}
	best := candidates[0]
	for _, c := range candidates[1:] {
		if latencyRank(c.Health.Latency) < latencyRank(best.Health.Latency) {
			best = c
		}
	}
	return best, true
}

func latencyRank(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Duration(1<<63 - 1)
	}
	return d
}

// ProviderStats summarizes one provider for telemetry.
type ProviderStats struct {
	ID        string        `json:"id"`
	Status    Status        `json:"status"`
	Requests  int64         `json:"requests"`
	Successes int64         `json:"successes"`
	ErrorRate float64       `json:"error_rate"`
	Latency   time.Duration `json:"latency"`
	LastError string        `json:"last_error,omitempty"`
}

// Stats returns a read-only snapshot of every registration, in
// registration order.
func (r *Registry) Stats() []ProviderStats {
	r.mu.RLock()
	defer r.mu.RUnlock()

	out := make([]ProviderStats, 0, len(r.order))
	for _, id := range r.order {
		e := r.providers[id]
		out = append(out, ProviderStats{
			ID:        id,
			Status:    e.health.Status,
			Requests:  e.requests,
			Successes: e.successes,
			ErrorRate: e.health.ErrorRate,
			Latency:   e.health.Latency,
			LastError: e.health.LastError,
		})
	}
	return out
}

func (e *entry) snapshot() Registered {
	return Registered{
		Config:    e.config,
		Health:    e.health,
		Tags:      append([]string(nil), e.tags...),
		Requests:  e.requests,
		Successes: e.successes,
	}
}
