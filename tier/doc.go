// Package tier defines the ordered cost/capability tiers that requests are
// routed across, and the immutable per-tier configuration table.
//
// The tier ladder is: reflex < default < premium < extended < custom.
// Escalation moves a request up the ladder; the config table binds each tier
// to a backend identifier, pricing, and token limits. Tables are exhaustive
// by construction: NewTable rejects any mapping that leaves a tier unbound.
package tier
