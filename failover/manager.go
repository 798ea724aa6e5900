package failover

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/Danservfinn/cogkit/breaker"
	"github.com/Danservfinn/cogkit/provider"
)

// Default retry/backoff bounds.
const (
	DefaultMaxRetries = 3
	DefaultBaseDelay  = time.Second
	DefaultMaxDelay   = 30 * time.Second
)

// Settings configures a Manager's retry and backoff behavior.
type Settings struct {
	// MaxRetries is the number of full passes over the candidate list.
	MaxRetries int

	// BaseDelay is the first inter-round backoff delay.
	BaseDelay time.Duration

	// MaxDelay caps the exponential backoff.
	MaxDelay time.Duration
}

func (s Settings) withDefaults() Settings {
	if s.MaxRetries <= 0 {
		s.MaxRetries = DefaultMaxRetries
	}
	if s.BaseDelay <= 0 {
		s.BaseDelay = DefaultBaseDelay
	}
	if s.MaxDelay <= 0 {
		s.MaxDelay = DefaultMaxDelay
	}
	return s
}

// Work is the unit of work executed against a selected provider.
// Returning an error marks the attempt failed and moves on to the next
// candidate; the error never propagates to Execute's caller directly.
type Work func(ctx context.Context, p provider.Registered) (*provider.Response, error)

// Result is the outcome of one Execute call. Exactly one of a success or
// failure result is always produced; work errors are captured, never
// re-raised.
type Result struct {
	// Success reports whether any attempt succeeded.
	Success bool `json:"success"`

	// ProviderID is the provider that served the successful attempt.
	ProviderID string `json:"provider_id,omitempty"`

	// Response is the successful work output.
	Response *provider.Response `json:"response,omitempty"`

	// Err is the last attempt's error when all attempts failed.
	Err error `json:"-"`

	// Path lists provider IDs in the order they were attempted.
	Path []string `json:"path"`

	// Attempts is the total number of provider invocations made.
	Attempts int `json:"attempts"`

	// Elapsed is the wall time spent inside Execute.
	Elapsed time.Duration `json:"elapsed"`
}

// Manager executes work against an ordered candidate list of providers,
// retrying across providers within a round and across bounded rounds with
// exponential backoff. Outcomes are recorded back into the registry and
// the per-provider circuit breakers.
type Manager struct {
	registry *Registry
	settings Settings
	strategy Strategy
}

// Registry bundles the provider registry with its breaker set so both are
// owned by the composition root and injected together.
type Registry struct {
	Providers *provider.Registry
	Breakers  *breaker.Set
}

// NewManager creates a Manager. A nil strategy defaults to Priority.
func NewManager(reg *Registry, strategy Strategy, settings Settings) *Manager {
	if strategy == nil {
		strategy = Priority{}
	}
	return &Manager{
		registry: reg,
		settings: settings.withDefaults(),
		strategy: strategy,
	}
}

// Execute runs work against candidates matching the filter, in strategy
// order, for up to MaxRetries rounds with exponential backoff between
// rounds. Providers whose breaker is open are skipped. The returned Result
// always carries the full attempted path; work errors are captured in
// Result.Err, never raised.
func (m *Manager) Execute(ctx context.Context, work Work, f provider.Filter) Result {
	start := time.Now()

	candidates := m.strategy.Order(m.eligible(f))
	if len(candidates) == 0 {
		return Result{
			Err:     fmt.Errorf("%w: filter %+v", provider.ErrNoProviders, f),
			Elapsed: time.Since(start),
		}
	}

	res := Result{}
	var lastErr error

	for round := 0; round < m.settings.MaxRetries; round++ {
		for _, cand := range candidates {
			if !m.registry.Breakers.For(cand.Config.ID).Allow() {
				slog.Debug("skipping provider with open breaker",
					slog.String("provider", cand.Config.ID))
				continue
			}

			res.Path = append(res.Path, cand.Config.ID)
			res.Attempts++

			attemptStart := time.Now()
			resp, err := work(ctx, cand)
			latency := time.Since(attemptStart)

			if err == nil {
				m.recordSuccess(cand.Config.ID, latency)
				res.Success = true
				res.ProviderID = cand.Config.ID
				res.Response = resp
				res.Elapsed = time.Since(start)
				return res
			}

			lastErr = err
			m.recordFailure(cand.Config.ID, latency, err)
			slog.Warn("provider attempt failed",
				slog.String("provider", cand.Config.ID),
				slog.Int("round", round),
				slog.Any("error", err))
		}

		// Back off between rounds, not after the last one.
		if round < m.settings.MaxRetries-1 {
			if err := m.backoff(ctx, round); err != nil {
				lastErr = err
				break
			}
		}
	}

	res.Err = lastErr
	if res.Err == nil {
		// Every candidate was skipped by its breaker on every round.
		res.Err = fmt.Errorf("%w: all breakers open", provider.ErrNoProviders)
	}
	res.Elapsed = time.Since(start)
	return res
}

// eligible returns available providers whose breaker currently allows
// requests.
func (m *Manager) eligible(f provider.Filter) []provider.Registered {
	available := m.registry.Providers.AvailableProviders(f)
	out := make([]provider.Registered, 0, len(available))
	for _, p := range available {
		if m.registry.Breakers.For(p.Config.ID).Allow() {
			out = append(out, p)
		}
	}
	return out
}

func (m *Manager) recordSuccess(id string, latency time.Duration) {
	m.registry.Breakers.For(id).RecordSuccess()
	m.registry.Providers.RecordRequest(id, true, latency)
}

func (m *Manager) recordFailure(id string, latency time.Duration, err error) {
	m.registry.Breakers.For(id).RecordFailure()
	m.registry.Providers.RecordRequest(id, false, latency)
	m.registry.Providers.UpdateHealth(id, provider.StatusDegraded, latency, err.Error())
}

// backoff sleeps min(BaseDelay * 2^round, MaxDelay), honoring context
// cancellation.
func (m *Manager) backoff(ctx context.Context, round int) error {
	delay := m.settings.BaseDelay << uint(round)
	if delay > m.settings.MaxDelay || delay <= 0 {
		delay = m.settings.MaxDelay
	}

	timer := time.NewTimer(delay)
	defer timer.Stop()

	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// Stats reports the manager's configuration for telemetry.
type Stats struct {
	Strategy   string        `json:"strategy"`
	MaxRetries int           `json:"max_retries"`
	BaseDelay  time.Duration `json:"base_delay"`
	MaxDelay   time.Duration `json:"max_delay"`
}

// Stats returns the manager's static configuration.
func (m *Manager) Stats() Stats {
	return Stats{
		Strategy:   m.strategy.Name(),
		MaxRetries: m.settings.MaxRetries,
		BaseDelay:  m.settings.BaseDelay,
		MaxDelay:   m.settings.MaxDelay,
	}
}
