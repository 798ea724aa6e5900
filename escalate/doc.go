// Package escalate decides when a request should move from the free
// default tier to a higher-cost tier, and logs the escalations that occur.
//
// The policy is a fixed, ordered rule list where the first match wins:
// user-forced tier, safety-critical, quality-failed-after-retries,
// cross-validation, context-too-large, and finally no escalation.
// Evaluate is a pure function over the request's signals; side effects
// (bounded history, cost totals, task-hash frequency counting) live in
// the Log. Task hashes that recur often enough are flagged as candidates
// for future specialization, a signal exposed through stats and consumed
// by nothing in this core.
package escalate
