package provider

import "time"

// Status is a provider's live availability state.
type Status string

// Provider health statuses.
const (
	StatusAvailable   Status = "available"
	StatusDegraded    Status = "degraded"
	StatusUnavailable Status = "unavailable"
	StatusRateLimited Status = "rate_limited"
	StatusUnknown     Status = "unknown"
)

// Health is a mutable per-provider health snapshot, updated after every
// call attempt. It is never created independently of a registration.
type Health struct {
	// Status is the current availability state.
	Status Status `json:"status"`

	// LastCheck is when the snapshot was last updated.
	LastCheck time.Time `json:"last_check"`

	// Latency is the most recently observed call latency.
	Latency time.Duration `json:"latency"`

	// ErrorRate is the rolling error rate: 1 - successes/total.
	ErrorRate float64 `json:"error_rate"`

	// LastError is the most recent error message, if any.
	LastError string `json:"last_error,omitempty"`
}

// Usable reports whether the provider may receive traffic.
// Degraded and rate-limited providers remain usable; only unavailable
// providers are filtered from candidate lists.
func (h Health) Usable() bool {
	return h.Status != StatusUnavailable
}
