// Package tokens estimates token counts for routing-time sizing decisions.
//
// The escalation policy uses these estimates to detect prompts too large for
// the default tier's context window, and the registry uses them for cost
// estimation. Estimates are heuristic (~4 chars/token); exact counts are the
// backend tokenizer's business.
package tokens
