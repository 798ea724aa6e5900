// Package breaker implements per-provider circuit breakers.
//
// A breaker gates whether a known-failing provider may receive traffic.
// The state machine is the classic closed/open/half-open design: repeated
// failures trip the breaker open, a reset timeout admits half-open probes,
// and consecutive probe successes close it again. The open-to-half-open
// transition happens lazily inside Allow rather than on a background timer.
package breaker
