package breaker

import (
	"sync"
	"time"
)

// State is a circuit breaker's gating state.
type State string

// Circuit breaker states.
const (
	// StateClosed allows all requests (the healthy default).
	StateClosed State = "closed"

	// StateOpen rejects all requests until the reset timeout elapses.
	StateOpen State = "open"

	// StateHalfOpen allows probe requests while recovery is confirmed.
	StateHalfOpen State = "half_open"
)

// Default thresholds.
const (
	DefaultFailureThreshold = 5
	DefaultSuccessThreshold = 3
	DefaultResetTimeout     = 60 * time.Second
)

// Settings configures a Breaker's thresholds.
type Settings struct {
	// FailureThreshold is the consecutive-failure count that trips the
	// breaker from closed to open.
	FailureThreshold int

	// SuccessThreshold is the consecutive-success count (while half-open)
	// required to close the breaker again.
	SuccessThreshold int

	// ResetTimeout is how long an open breaker waits after the last
	// failure before allowing a half-open probe.
	ResetTimeout time.Duration
}

// withDefaults fills zero fields with the package defaults.
func (s Settings) withDefaults() Settings {
	if s.FailureThreshold <= 0 {
		s.FailureThreshold = DefaultFailureThreshold
	}
	if s.SuccessThreshold <= 0 {
		s.SuccessThreshold = DefaultSuccessThreshold
	}
	if s.ResetTimeout <= 0 {
		s.ResetTimeout = DefaultResetTimeout
	}
	return s
}

// Breaker is a per-provider failure-gating state machine. It is safe for
// concurrent use.
//
// Transitions:
//   - closed -> open: consecutive failures reach FailureThreshold
//   - open -> half-open: Allow() observes ResetTimeout elapsed since the
//     last failure (a lazy pull transition, no background timer)
//   - half-open -> closed: SuccessThreshold consecutive successes
//   - half-open -> open: any single failure
type Breaker struct {
	mu sync.Mutex

	settings    Settings
	state       State
	failures    int
	successes   int // consecutive successes, meaningful only while half-open
	lastFailure time.Time

	now func() time.Time // injected clock for tests
}

// New creates a closed Breaker with the given settings.
// Zero-valued settings fields use package defaults.
func New(settings Settings) *Breaker {
	return &Breaker{
		settings: settings.withDefaults(),
		state:    StateClosed,
		now:      time.Now,
	}
}

// Allow reports whether a request may currently be attempted. An open
// breaker transitions to half-open here once the reset timeout has elapsed
// since the last failure.
func (b *Breaker) Allow() bool {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch b.state {
	case StateClosed, StateHalfOpen:
		return true
	case StateOpen:
		if b.now().Sub(b.lastFailure) >= b.settings.ResetTimeout {
			b.state = StateHalfOpen
			b.successes = 0
			return true
		}
		return false
	default:
		return false
	}
}

// RecordSuccess records a successful call. The failure streak is reset
// unconditionally; while half-open, enough consecutive successes close
// the breaker.
func (b *Breaker) RecordSuccess() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.failures = 0
	b.successes++

	if b.state == StateHalfOpen && b.successes >= b.settings.SuccessThreshold {
		b.state = StateClosed
		b.successes = 0
	}
}

// RecordFailure records a failed call. A half-open breaker reopens
// immediately; a closed breaker opens once the failure streak reaches
// the threshold.
func (b *Breaker) RecordFailure() {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.successes = 0
	b.failures++
	b.lastFailure = b.now()

	switch b.state {
	case StateHalfOpen:
		b.state = StateOpen
	case StateClosed:
		if b.failures >= b.settings.FailureThreshold {
			b.state = StateOpen
		}
	}
}

// State returns the current state without side effects.
func (b *Breaker) State() State {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.state
}

// Stats is a read-only snapshot of breaker state.
type Stats struct {
	State       State     `json:"state"`
	Failures    int       `json:"failures"`
	Successes   int       `json:"successes"`
	LastFailure time.Time `json:"last_failure"`
}

// Stats returns a snapshot of the breaker's counters and state.
func (b *Breaker) Stats() Stats {
	b.mu.Lock()
	defer b.mu.Unlock()
	return Stats{
		State:       b.state,
		Failures:    b.failures,
		Successes:   b.successes,
		LastFailure: b.lastFailure,
	}
}

// Set holds one breaker per provider ID, created on demand with shared
// settings. It is safe for concurrent use.
type Set struct {
	mu       sync.Mutex
	settings Settings
	breakers map[string]*Breaker
}

// NewSet creates a breaker set with shared settings.
func NewSet(settings Settings) *Set {
	return &Set{
		settings: settings.withDefaults(),
		breakers: make(map[string]*Breaker),
	}
}

// For returns the breaker for a provider ID, creating it closed on first use.
func (s *Set) For(id string) *Breaker {
	s.mu.Lock()
	defer s.mu.Unlock()

	b, ok := s.breakers[id]
	if !ok {
		b = New(s.settings)
		s.breakers[id] = b
	}
	return b
}

// Stats returns a snapshot of every breaker keyed by provider ID.
func (s *Set) Stats() map[string]Stats {
	s.mu.Lock()
	defer s.mu.Unlock()

	out := make(map[string]Stats, len(s.breakers))
	for id, b := range s.breakers {
		out[id] = b.Stats()
	}
	return out
}
