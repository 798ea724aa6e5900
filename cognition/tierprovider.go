package cognition

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/Danservfinn/cogkit/failover"
	"github.com/Danservfinn/cogkit/provider"
	"github.com/Danservfinn/cogkit/router"
	"github.com/Danservfinn/cogkit/tier"
)

// TierProvider binds each routing tier to a concrete backend client and
// adapts the binding to the call signature the router expects. It is safe
// for concurrent use.
//
// When a failover manager is attached, calls for a tier run through it:
// the manager picks a live registered provider and the work function
// resolves that provider's client (falling back to the tier's own client)
// with credential resolution at call time.
type TierProvider struct {
	table *tier.Table

	mu        sync.RWMutex
	byTier    map[tier.Tier]provider.Client
	byBackend map[string]provider.Client

	manager *failover.Manager
}

// NewTierProvider creates an empty TierProvider over the given tier table.
func NewTierProvider(table *tier.Table) *TierProvider {
	return &TierProvider{
		table:     table,
		byTier:    make(map[tier.Tier]provider.Client),
		byBackend: make(map[string]provider.Client),
	}
}

// Bind attaches a client to a tier, replacing any previous binding.
func (tp *TierProvider) Bind(t tier.Tier, c provider.Client) {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	tp.byTier[t] = c
}

// BindProvider attaches a client to a registered provider ID, used when
// calls run through the failover manager.
func (tp *TierProvider) BindProvider(id string, c provider.Client) {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	tp.byBackend[id] = c
}

// UseFailover routes tier calls through the given failover manager.
func (tp *TierProvider) UseFailover(m *failover.Manager) {
	tp.mu.Lock()
	defer tp.mu.Unlock()
	tp.manager = m
}

// resolve returns the client bound to a tier, falling back to the default
// tier's client when the requested tier has none. ok is false when neither
// is bound.
func (tp *TierProvider) resolve(t tier.Tier) (provider.Client, tier.Tier, bool) {
	tp.mu.RLock()
	defer tp.mu.RUnlock()

	if c, ok := tp.byTier[t]; ok {
		return c, t, true
	}
	if c, ok := tp.byTier[tier.TierDefault]; ok && t != tier.TierDefault {
		slog.Warn("tier has no bound client, falling back to default",
			slog.String("tier", t.String()))
		return c, tier.TierDefault, true
	}
	return nil, t, false
}

// LLMCallFunc returns the adapter the router invokes per attempt.
// Failures (no bound client, missing credentials, exhausted failover) are
// returned as errors for the router to fold into a failure result, never
// panics.
func (tp *TierProvider) LLMCallFunc() router.CallFunc {
	return func(ctx context.Context, t tier.Tier, rc router.Context) (*provider.Response, error) {
		client, boundTier, ok := tp.resolve(t)
		if !ok {
			return nil, fmt.Errorf("no client bound for tier %s and no default fallback", t)
		}

		req := tp.buildRequest(boundTier, rc)

		tp.mu.RLock()
		manager := tp.manager
		tp.mu.RUnlock()

		if manager == nil {
			return client.Complete(ctx, req)
		}

		res := manager.Execute(ctx, func(ctx context.Context, p provider.Registered) (*provider.Response, error) {
			if err := checkCredentials(p.Config); err != nil {
				return nil, err
			}
			c := client
			tp.mu.RLock()
			if bound, ok := tp.byBackend[p.Config.ID]; ok {
				c = bound
			}
			tp.mu.RUnlock()

			resp, err := c.Complete(ctx, req)
			if err != nil {
				return nil, err
			}
			if resp.Provider == "" {
				resp.Provider = p.Config.ID
			}
			return resp, nil
		}, provider.Filter{})

		if !res.Success {
			return nil, fmt.Errorf("all providers failed for tier %s (path %v): %w",
				boundTier, res.Path, res.Err)
		}
		return res.Response, nil
	}
}

// buildRequest maps a routing context onto the provider request shape,
// filling the model from the tier's backend binding.
func (tp *TierProvider) buildRequest(t tier.Tier, rc router.Context) provider.Request {
	req := provider.Request{
		Prompt:       rc.Prompt,
		SystemPrompt: rc.SystemPrompt,
		MaxTokens:    rc.MaxTokens,
		Temperature:  rc.Temperature,
	}
	if cfg, ok := tp.table.Get(t); ok {
		req.Model = cfg.Backend
		if req.MaxTokens == 0 {
			req.MaxTokens = cfg.MaxOutputTokens
		}
	}
	return req
}

// checkCredentials resolves the provider's credential environment variable
// at call time. A missing credential fails this call only, not the process.
func checkCredentials(cfg provider.Config) error {
	if cfg.CredentialEnv == "" {
		return nil
	}
	if os.Getenv(cfg.CredentialEnv) == "" {
		return provider.NewError(cfg.ID, "complete",
			fmt.Errorf("%w: environment variable %s is unset",
				provider.ErrCredentialsNotFound, cfg.CredentialEnv), false)
	}
	return nil
}
