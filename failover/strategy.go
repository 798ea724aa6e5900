package failover

import (
	"math/rand"
	"sort"
	"sync"
	"time"

	"github.com/Danservfinn/cogkit/provider"
)

// Strategy orders candidate providers for a failover pass.
// Implementations must not mutate the input slice.
type Strategy interface {
	// Name identifies the strategy for logging and stats.
	Name() string

	// Order returns the candidates in attempt order.
	Order(candidates []provider.Registered) []provider.Registered
}

// Priority orders candidates ascending by configured priority.
// This is the default strategy; AvailableProviders already returns
// priority order, so it preserves the input.
type Priority struct{}

// Name implements Strategy.
func (Priority) Name() string { return "priority" }

// Order implements Strategy.
func (Priority) Order(candidates []provider.Registered) []provider.Registered {
	out := append([]provider.Registered(nil), candidates...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Config.Priority < out[j].Config.Priority
	})
	return out
}

// RoundRobin rotates the starting candidate across manager calls, not
// within a single call, giving long-run fairness across distinct requests.
type RoundRobin struct {
	mu    sync.Mutex
	calls int
}

// NewRoundRobin creates a round-robin strategy.
func NewRoundRobin() *RoundRobin { return &RoundRobin{} }

// Name implements Strategy.
func (*RoundRobin) Name() string { return "round_robin" }

// Order implements Strategy.
func (s *RoundRobin) Order(candidates []provider.Registered) []provider.Registered {
	s.mu.Lock()
	start := s.calls
	s.calls++
	s.mu.Unlock()

	n := len(candidates)
	if n == 0 {
		return nil
	}
	out := make([]provider.Registered, 0, n)
	for i := 0; i < n; i++ {
		out = append(out, candidates[(start+i)%n])
	}
	return out
}

// Cheapest orders candidates ascending by cost for a nominal
// 1k-input/1k-output call.
type Cheapest struct{}

// Name implements Strategy.
func (Cheapest) Name() string { return "cheapest" }

// Order implements Strategy.
func (Cheapest) Order(candidates []provider.Registered) []provider.Registered {
	out := append([]provider.Registered(nil), candidates...)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Config.Costs.Cost(1000, 1000) < out[j].Config.Costs.Cost(1000, 1000)
	})
	return out
}

// Fastest orders candidates ascending by last observed latency.
// Candidates with no observed latency sort last.
type Fastest struct{}

// Name implements Strategy.
func (Fastest) Name() string { return "fastest" }

// Order implements Strategy.
func (Fastest) Order(candidates []provider.Registered) []provider.Registered {
	out := append([]provider.Registered(nil), candidates...)
	sort.SliceStable(out, func(i, j int) bool {
		return latencyRank(out[i].Health.Latency) < latencyRank(out[j].Health.Latency)
	})
	return out
}

func latencyRank(d time.Duration) time.Duration {
	if d <= 0 {
		return time.Duration(1<<63 - 1)
	}
	return d
}

// Random shuffles candidates uniformly.
type Random struct {
	mu  sync.Mutex
	rng *rand.Rand
}

// NewRandom creates a random strategy seeded from the current time.
func NewRandom() *Random {
	return &Random{rng: rand.New(rand.NewSource(time.Now().UnixNano()))}
}

// Name implements Strategy.
func (*Random) Name() string { return "random" }

// Order implements Strategy.
func (s *Random) Order(candidates []provider.Registered) []provider.Registered {
	out := append([]provider.Registered(nil), candidates...)
	s.mu.Lock()
	s.rng.Shuffle(len(out), func(i, j int) {
		out[i], out[j] = out[j], out[i]
	})
	s.mu.Unlock()
	return out
}
