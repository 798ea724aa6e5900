// Package router orchestrates a single logical LLM request across tiers.
//
// For each request the router decides a tier (honoring user-forced tiers,
// the escalation policy's verdict, and a budget guard that downgrades
// unaffordable escalations back to the default tier), invokes the bound
// backend for that tier, optionally scores the response through a
// pluggable quality evaluator, and re-routes to a higher tier when quality
// falls short. Re-routing is an explicit loop bounded by MaxReroutes, so
// termination is structural rather than depending on a buried guard.
//
// Backend and evaluation failures never escape Route as errors; callers
// receive a Result with Success, Err, cost, and quality fields.
package router
