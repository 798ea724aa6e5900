// Package cognition is the high-level facade over the routing core.
//
// The API exposes operation-shaped calls (Think, Reason, Create,
// Evaluate), each building a task-appropriate prompt and routing context
// before delegating to the router. Reason requests cross-validation with a
// higher quality bar, Create runs hotter, and Evaluate is marked critical
// and asks the model for a structured score it then parses.
//
// The TierProvider half binds abstract tiers to concrete backend clients.
// A tier with no bound client falls back to the default tier rather than
// failing the request; provider credentials are resolved from the
// environment at call time so a missing key fails one call, not the
// process.
package cognition
