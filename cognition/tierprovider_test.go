package cognition

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Danservfinn/cogkit/breaker"
	"github.com/Danservfinn/cogkit/failover"
	"github.com/Danservfinn/cogkit/provider"
	"github.com/Danservfinn/cogkit/router"
	"github.com/Danservfinn/cogkit/tier"
)

// echoClient returns a fixed response and records the last request.
type echoClient struct {
	name string
	last provider.Request
	err  error
}

func (c *echoClient) Complete(ctx context.Context, req provider.Request) (*provider.Response, error) {
	c.last = req
	if c.err != nil {
		return nil, c.err
	}
	return &provider.Response{Text: "from " + c.name}, nil
}

func TestLLMCallFunc_DirectBinding(t *testing.T) {
	tp := NewTierProvider(tier.DefaultTable())
	premium := &echoClient{name: "premium"}
	tp.Bind(tier.TierPremium, premium)

	resp, err := tp.LLMCallFunc()(context.Background(), tier.TierPremium, router.Context{
		Prompt:       "hello",
		SystemPrompt: "be brief",
		Temperature:  0.3,
	})
	require.NoError(t, err)
	assert.Equal(t, "from premium", resp.Text)

	assert.Equal(t, "hello", premium.last.Prompt)
	assert.Equal(t, "be brief", premium.last.SystemPrompt)
	assert.Equal(t, "cloud-frontier", premium.last.Model)
	// Unset MaxTokens falls back to the tier's output ceiling.
	assert.Equal(t, 8192, premium.last.MaxTokens)
}

func TestLLMCallFunc_ExplicitMaxTokensKept(t *testing.T) {
	tp := NewTierProvider(tier.DefaultTable())
	c := &echoClient{name: "default"}
	tp.Bind(tier.TierDefault, c)

	_, err := tp.LLMCallFunc()(context.Background(), tier.TierDefault, router.Context{
		Prompt:    "hi",
		MaxTokens: 123,
	})
	require.NoError(t, err)
	assert.Equal(t, 123, c.last.MaxTokens)
}

func TestLLMCallFunc_DefaultFallback(t *testing.T) {
	tp := NewTierProvider(tier.DefaultTable())
	def := &echoClient{name: "default"}
	tp.Bind(tier.TierDefault, def)

	resp, err := tp.LLMCallFunc()(context.Background(), tier.TierExtended, router.Context{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "from default", resp.Text)
	// The request is built against the tier that actually serves it.
	assert.Equal(t, "local-large", def.last.Model)
}

func TestLLMCallFunc_NoBinding(t *testing.T) {
	tp := NewTierProvider(tier.DefaultTable())

	_, err := tp.LLMCallFunc()(context.Background(), tier.TierPremium, router.Context{Prompt: "hi"})
	require.Error(t, err)
}

func newFailoverManager(t *testing.T, reg *provider.Registry) *failover.Manager {
	t.Helper()
	return failover.NewManager(&failover.Registry{
		Providers: reg,
		Breakers:  breaker.NewSet(breaker.Settings{}),
	}, failover.Priority{}, failover.Settings{
		MaxRetries: 1,
		BaseDelay:  time.Millisecond,
	})
}

func TestLLMCallFunc_FailoverSkipsProviderWithoutCredentials(t *testing.T) {
	t.Setenv("COGKIT_TEST_MISSING_KEY", "")

	reg := provider.NewRegistry()
	require.NoError(t, reg.Register(provider.Config{
		ID:            "cloud",
		Type:          provider.TypeCloudAPI,
		CredentialEnv: "COGKIT_TEST_MISSING_KEY",
		Priority:      1,
	}))
	require.NoError(t, reg.Register(provider.Config{
		ID:       "local",
		Type:     provider.TypeLocal,
		Priority: 2,
	}))

	tp := NewTierProvider(tier.DefaultTable())
	tp.Bind(tier.TierDefault, &echoClient{name: "default"})
	tp.BindProvider("local", &echoClient{name: "local"})
	tp.UseFailover(newFailoverManager(t, reg))

	resp, err := tp.LLMCallFunc()(context.Background(), tier.TierDefault, router.Context{Prompt: "hi"})
	require.NoError(t, err)
	assert.Equal(t, "from local", resp.Text)
	assert.Equal(t, "local", resp.Provider)
}

func TestLLMCallFunc_FailoverExhausted(t *testing.T) {
	t.Setenv("COGKIT_TEST_MISSING_KEY", "")

	reg := provider.NewRegistry()
	require.NoError(t, reg.Register(provider.Config{
		ID:            "cloud",
		Type:          provider.TypeCloudAPI,
		CredentialEnv: "COGKIT_TEST_MISSING_KEY",
	}))

	tp := NewTierProvider(tier.DefaultTable())
	tp.Bind(tier.TierDefault, &echoClient{name: "default"})
	tp.UseFailover(newFailoverManager(t, reg))

	_, err := tp.LLMCallFunc()(context.Background(), tier.TierDefault, router.Context{Prompt: "hi"})
	require.Error(t, err)
	assert.ErrorIs(t, err, provider.ErrCredentialsNotFound)
}

func TestLLMCallFunc_FailoverClientError(t *testing.T) {
	reg := provider.NewRegistry()
	require.NoError(t, reg.Register(provider.Config{ID: "local", Type: provider.TypeLocal}))

	tp := NewTierProvider(tier.DefaultTable())
	tp.Bind(tier.TierDefault, &echoClient{name: "default", err: errors.New("connection refused")})
	tp.UseFailover(newFailoverManager(t, reg))

	_, err := tp.LLMCallFunc()(context.Background(), tier.TierDefault, router.Context{Prompt: "hi"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "connection refused")
}

func TestCheckCredentials(t *testing.T) {
	t.Run("no credential configured", func(t *testing.T) {
		assert.NoError(t, checkCredentials(provider.Config{ID: "p"}))
	})

	t.Run("credential present", func(t *testing.T) {
		t.Setenv("COGKIT_TEST_KEY", "sk-something")
		assert.NoError(t, checkCredentials(provider.Config{ID: "p", CredentialEnv: "COGKIT_TEST_KEY"}))
	})

	t.Run("credential missing", func(t *testing.T) {
		t.Setenv("COGKIT_TEST_KEY", "")
		err := checkCredentials(provider.Config{ID: "p", CredentialEnv: "COGKIT_TEST_KEY"})
		assert.ErrorIs(t, err, provider.ErrCredentialsNotFound)
	})
}
