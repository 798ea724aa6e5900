// Package failover executes a unit of work against an ordered list of
// backend providers, retrying across providers and across bounded rounds
// with exponential backoff.
//
// Candidate order comes from a pluggable Strategy (priority, round-robin,
// cheapest, fastest, random) applied to the provider registry's available
// set, gated per attempt by each provider's circuit breaker. Failover is
// strictly sequential: one logical request never fans out to multiple
// providers in parallel, trading latency for avoiding duplicate paid calls.
//
// Execute never raises work errors to its caller; every outcome is a
// Result carrying the success flag, the winning provider or last error,
// and the full attempted-provider path.
package failover
