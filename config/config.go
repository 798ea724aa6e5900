package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"gopkg.in/yaml.v3"

	"github.com/Danservfinn/cogkit/breaker"
	"github.com/Danservfinn/cogkit/escalate"
	"github.com/Danservfinn/cogkit/failover"
	"github.com/Danservfinn/cogkit/provider"
	"github.com/Danservfinn/cogkit/tier"
)

// File is the on-disk configuration for the routing core: the tier table,
// provider registrations, and failover/breaker/policy settings.
type File struct {
	// Tiers maps tier names ("reflex", "default", ...) to their configs.
	// Missing tiers fall back to the built-in defaults.
	Tiers map[string]tier.Config `json:"tiers" yaml:"tiers" toml:"tiers"`

	// Providers lists backend provider registrations.
	Providers []ProviderEntry `json:"providers" yaml:"providers" toml:"providers"`

	// Failover configures retry and backoff.
	Failover FailoverSettings `json:"failover" yaml:"failover" toml:"failover"`

	// Breaker configures circuit breaker thresholds.
	Breaker BreakerSettings `json:"breaker" yaml:"breaker" toml:"breaker"`

	// Policy configures escalation thresholds.
	Policy PolicySettings `json:"policy" yaml:"policy" toml:"policy"`

	// BudgetLimitUSD caps total routed spend. 0 means unlimited.
	BudgetLimitUSD float64 `json:"budget_limit_usd" yaml:"budget_limit_usd" toml:"budget_limit_usd"`
}

// ProviderEntry pairs a provider config with its registration tags.
type ProviderEntry struct {
	provider.Config `yaml:",inline"`

	// Tags label the registration (e.g. which tiers it serves).
	Tags []string `json:"tags" yaml:"tags" toml:"tags"`
}

// FailoverSettings mirrors failover.Settings with config-friendly types.
type FailoverSettings struct {
	// Strategy selects candidate ordering:
	// priority, round_robin, cheapest, fastest, random.
	Strategy string `json:"strategy" yaml:"strategy" toml:"strategy"`

	MaxRetries    int     `json:"max_retries" yaml:"max_retries" toml:"max_retries"`
	BaseDelaySecs float64 `json:"base_delay_secs" yaml:"base_delay_secs" toml:"base_delay_secs"`
	MaxDelaySecs  float64 `json:"max_delay_secs" yaml:"max_delay_secs" toml:"max_delay_secs"`
}

// BreakerSettings mirrors breaker.Settings with config-friendly types.
type BreakerSettings struct {
	FailureThreshold int     `json:"failure_threshold" yaml:"failure_threshold" toml:"failure_threshold"`
	SuccessThreshold int     `json:"success_threshold" yaml:"success_threshold" toml:"success_threshold"`
	ResetTimeoutSecs float64 `json:"reset_timeout_secs" yaml:"reset_timeout_secs" toml:"reset_timeout_secs"`
}

// PolicySettings mirrors escalate.Settings.
type PolicySettings struct {
	QualityThreshold         float64 `json:"quality_threshold" yaml:"quality_threshold" toml:"quality_threshold"`
	MaxRetriesBeforeEscalate int     `json:"max_retries_before_escalate" yaml:"max_retries_before_escalate" toml:"max_retries_before_escalate"`
	ContextTokenLimit        int     `json:"context_token_limit" yaml:"context_token_limit" toml:"context_token_limit"`
}

// Load reads a config file, picking the format from the extension
// (.yaml/.yml or .toml), and applies COGKIT_ environment overrides.
func Load(path string) (*File, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var f File
	switch ext := filepath.Ext(path); ext {
	case ".yaml", ".yml":
		if err := yaml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse yaml config: %w", err)
		}
	case ".toml":
		if err := toml.Unmarshal(data, &f); err != nil {
			return nil, fmt.Errorf("parse toml config: %w", err)
		}
	default:
		return nil, fmt.Errorf("unsupported config extension %q", ext)
	}

	f.loadFromEnv()
	if err := f.Validate(); err != nil {
		return nil, err
	}
	return &f, nil
}

// loadFromEnv applies COGKIT_-prefixed environment overrides.
// Overrides take precedence over file values.
//
// Supported variables:
//   - COGKIT_BUDGET_LIMIT_USD
//   - COGKIT_FAILOVER_STRATEGY
//   - COGKIT_MAX_RETRIES
func (f *File) loadFromEnv() {
	if v := os.Getenv("COGKIT_BUDGET_LIMIT_USD"); v != "" {
		if n, err := strconv.ParseFloat(v, 64); err == nil {
			f.BudgetLimitUSD = n
		}
	}
	if v := os.Getenv("COGKIT_FAILOVER_STRATEGY"); v != "" {
		f.Failover.Strategy = v
	}
	if v := os.Getenv("COGKIT_MAX_RETRIES"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			f.Failover.MaxRetries = n
		}
	}
}

// Validate checks the configuration is usable.
func (f *File) Validate() error {
	for name := range f.Tiers {
		if _, err := tier.ParseTier(name); err != nil {
			return fmt.Errorf("config: %w", err)
		}
	}
	for _, p := range f.Providers {
		if err := p.Config.Validate(); err != nil {
			return fmt.Errorf("config provider %q: %w", p.ID, err)
		}
	}
	switch f.Failover.Strategy {
	case "", "priority", "round_robin", "cheapest", "fastest", "random":
	default:
		return fmt.Errorf("config: unknown failover strategy %q", f.Failover.Strategy)
	}
	if f.BudgetLimitUSD < 0 {
		return fmt.Errorf("config: budget_limit_usd must be >= 0")
	}
	return nil
}

// TierTable builds the tier table, overlaying file entries onto the
// built-in defaults.
func (f *File) TierTable() (*tier.Table, error) {
	base := map[tier.Tier]tier.Config{}
	def := tier.DefaultTable()
	for _, t := range tier.All {
		cfg, _ := def.Get(t)
		base[t] = cfg
	}
	for name, cfg := range f.Tiers {
		t, err := tier.ParseTier(name)
		if err != nil {
			return nil, err
		}
		base[t] = cfg
	}
	return tier.NewTable(base)
}

// Apply registers every provider entry into the registry.
// Registration is an idempotent upsert, so re-applying after a config
// reload replaces existing entries in place.
func (f *File) Apply(reg *provider.Registry) error {
	for _, p := range f.Providers {
		if err := reg.Register(p.Config, p.Tags...); err != nil {
			return err
		}
	}
	return nil
}

// FailoverSettings converts to the failover package's settings type.
func (f *File) FailoverSettings() failover.Settings {
	return failover.Settings{
		MaxRetries: f.Failover.MaxRetries,
		BaseDelay:  secs(f.Failover.BaseDelaySecs),
		MaxDelay:   secs(f.Failover.MaxDelaySecs),
	}
}

// Strategy builds the configured failover strategy.
// Unset defaults to priority ordering.
func (f *File) Strategy() failover.Strategy {
	switch f.Failover.Strategy {
	case "round_robin":
		return failover.NewRoundRobin()
	case "cheapest":
		return failover.Cheapest{}
	case "fastest":
		return failover.Fastest{}
	case "random":
		return failover.NewRandom()
	default:
		return failover.Priority{}
	}
}

// BreakerSettings converts to the breaker package's settings type.
func (f *File) BreakerSettings() breaker.Settings {
	return breaker.Settings{
		FailureThreshold: f.Breaker.FailureThreshold,
		SuccessThreshold: f.Breaker.SuccessThreshold,
		ResetTimeout:     secs(f.Breaker.ResetTimeoutSecs),
	}
}

// PolicySettings converts to the escalate package's settings type.
func (f *File) PolicySettings() escalate.Settings {
	return escalate.Settings{
		QualityThreshold:         f.Policy.QualityThreshold,
		MaxRetriesBeforeEscalate: f.Policy.MaxRetriesBeforeEscalate,
		ContextTokenLimit:        f.Policy.ContextTokenLimit,
	}
}

func secs(s float64) time.Duration {
	return time.Duration(s * float64(time.Second))
}
