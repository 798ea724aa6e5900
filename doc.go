// Package cogkit provides cognitive tiering and failover for LLM backends.
//
// cogkit is a library, not a service: it decides, per LLM call, which
// backend tier to use (free default, paid escalation, extended reasoning),
// tracks provider health, and fails over between providers with circuit
// breakers and retry/backoff. Each subpackage can be used independently:
//
//   - tier: ordered cost/capability tiers and the per-tier config table
//   - provider: provider registry with live health and cost tracking
//   - breaker: per-provider circuit breakers
//   - failover: sequential multi-provider execution with backoff
//   - escalate: tier escalation policy and escalation history
//   - router: per-request orchestration with quality-driven re-routing
//   - cognition: think/reason/create/evaluate facade and tier bindings
//   - config: YAML/TOML configuration with hot reload
//   - tokens: token estimation for sizing decisions
//   - prompt: operation prompt template rendering
//
// # Quick Start
//
//	table := tier.DefaultTable()
//	registry := provider.NewRegistry()
//	registry.Register(provider.Config{ID: "primary", Priority: 10})
//
//	breakers := breaker.NewSet(breaker.Settings{})
//	manager := failover.NewManager(
//	    &failover.Registry{Providers: registry, Breakers: breakers},
//	    failover.Priority{}, failover.Settings{})
//
//	tp := cognition.NewTierProvider(table)
//	tp.Bind(tier.TierDefault, myClient)
//	tp.UseFailover(manager)
//
//	policy := escalate.NewPolicy(escalate.Settings{})
//	r, err := router.New(table, policy, tp.LLMCallFunc())
//	if err != nil {
//	    log.Fatal(err)
//	}
//
//	api := cognition.NewAPI(r)
//	result := api.Think(ctx, "what changed in the last deploy?")
//
// # Design Philosophy
//
//   - All shared state (registry, breakers, router counters) is owned by
//     the composition root and passed by reference; no ambient globals.
//   - Provider failures are data, not exceptions: failover and routing
//     return structured results with success/error fields.
//   - Read paths never fail hard on unknown IDs; they log and return
//     zero values, favoring availability over strictness.
package cogkit
