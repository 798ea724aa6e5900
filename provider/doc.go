// Package provider defines backend provider configuration, live health
// tracking, and the registry the failover layer selects candidates from.
//
// A Provider is a concrete backend endpoint (cloud API, local inference
// server, or self-hosted deployment) capable of serving one or more routing
// tiers. The Registry holds each provider's static configuration alongside
// mutable health state (status, latency, rolling error rate) updated after
// every call attempt.
//
// # Usage
//
// Register providers at startup, then query candidates per request:
//
//	reg := provider.NewRegistry()
//	reg.Register(provider.Config{
//	    ID:            "openrouter-free",
//	    Type:          provider.TypeCloudAPI,
//	    Endpoint:      "https://openrouter.ai/api/v1",
//	    CredentialEnv: "OPENROUTER_API_KEY",
//	    Priority:      10,
//	})
//
//	candidates := reg.AvailableProviders(provider.Filter{Capability: "streaming"})
//
// Read paths never fail hard: lookups against unknown provider IDs log a
// warning and return zero values, favoring availability over strictness.
package provider
