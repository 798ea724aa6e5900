package tier

// Config describes one tier's backend binding, pricing, and limits.
// Configs are immutable after table construction.
type Config struct {
	// DisplayName is the human-readable tier name.
	DisplayName string `json:"display_name" yaml:"display_name" toml:"display_name"`

	// Backend identifies the backend model or endpoint serving this tier.
	Backend string `json:"backend" yaml:"backend" toml:"backend"`

	// CostPer1KInput is the USD cost per 1000 input tokens.
	CostPer1KInput float64 `json:"cost_per_1k_input" yaml:"cost_per_1k_input" toml:"cost_per_1k_input"`

	// CostPer1KOutput is the USD cost per 1000 output tokens.
	CostPer1KOutput float64 `json:"cost_per_1k_output" yaml:"cost_per_1k_output" toml:"cost_per_1k_output"`

	// MaxContextTokens is the context window size.
	MaxContextTokens int `json:"max_context_tokens" yaml:"max_context_tokens" toml:"max_context_tokens"`

	// MaxOutputTokens limits generated output length.
	MaxOutputTokens int `json:"max_output_tokens" yaml:"max_output_tokens" toml:"max_output_tokens"`

	// Capabilities tags what this tier can do (e.g. "reasoning", "vision").
	Capabilities []string `json:"capabilities" yaml:"capabilities" toml:"capabilities"`

	// Free marks tiers that incur no cost.
	Free bool `json:"free" yaml:"free" toml:"free"`

	// Default marks the tier requests start on.
	Default bool `json:"default" yaml:"default" toml:"default"`
}

// HasCapability reports whether the tier carries the given capability tag.
func (c Config) HasCapability(tag string) bool {
	for _, t := range c.Capabilities {
		if t == tag {
			return true
		}
	}
	return false
}

// EstimateCost computes the USD cost of a call at this tier.
func (c Config) EstimateCost(inputTokens, outputTokens int) float64 {
	if c.Free {
		return 0
	}
	return float64(inputTokens)/1000*c.CostPer1KInput +
		float64(outputTokens)/1000*c.CostPer1KOutput
}

// Table maps every tier to its Config. Construction fails unless the
// mapping is exhaustive, so an unknown tier can never fall through silently.
type Table struct {
	configs map[Tier]Config
}

// NewTable builds a Table from the given mapping.
// Every tier in All must be present.
func NewTable(configs map[Tier]Config) (*Table, error) {
	for _, t := range All {
		if _, ok := configs[t]; !ok {
			return nil, &MissingTierError{Tier: t}
		}
	}
	copied := make(map[Tier]Config, len(configs))
	for t, c := range configs {
		copied[t] = c
	}
	return &Table{configs: copied}, nil
}

// MustNewTable builds a Table, panicking if the mapping is not exhaustive.
// Use only with static literals (e.g. DefaultTable construction).
func MustNewTable(configs map[Tier]Config) *Table {
	tbl, err := NewTable(configs)
	if err != nil {
		panic(err)
	}
	return tbl
}

// Get returns the config for a tier. ok is false for invalid tiers.
func (tb *Table) Get(t Tier) (Config, bool) {
	c, ok := tb.configs[t]
	return c, ok
}

// DefaultTier returns the tier marked Default, or TierDefault if none is.
func (tb *Table) DefaultTier() Tier {
	for _, t := range All {
		if tb.configs[t].Default {
			return t
		}
	}
	return TierDefault
}

// EstimateCost computes call cost at the given tier.
// ok is false for invalid tiers.
func (tb *Table) EstimateCost(t Tier, inputTokens, outputTokens int) (float64, bool) {
	c, ok := tb.configs[t]
	if !ok {
		return 0, false
	}
	return c.EstimateCost(inputTokens, outputTokens), true
}

// MissingTierError indicates a Table mapping left a tier unbound.
type MissingTierError struct {
	Tier Tier
}

func (e *MissingTierError) Error() string {
	return "tier table missing config for tier " + e.Tier.String()
}

// DefaultTable returns the built-in tier table.
// Pricing mirrors typical free-local / paid-cloud splits; callers with real
// deployments should load their own table via the config package.
func DefaultTable() *Table {
	return MustNewTable(map[Tier]Config{
		TierReflex: {
			DisplayName:      "Reflex",
			Backend:          "local-small",
			MaxContextTokens: 8192,
			MaxOutputTokens:  1024,
			Capabilities:     []string{"completion"},
			Free:             true,
		},
		TierDefault: {
			DisplayName:      "Default",
			Backend:          "local-large",
			MaxContextTokens: 32768,
			MaxOutputTokens:  4096,
			Capabilities:     []string{"completion", "chat"},
			Free:             true,
			Default:          true,
		},
		TierPremium: {
			DisplayName:      "Premium",
			Backend:          "cloud-frontier",
			CostPer1KInput:   0.003,
			CostPer1KOutput:  0.015,
			MaxContextTokens: 200000,
			MaxOutputTokens:  8192,
			Capabilities:     []string{"completion", "chat", "reasoning", "vision"},
		},
		TierExtended: {
			DisplayName:      "Extended",
			Backend:          "cloud-frontier-thinking",
			CostPer1KInput:   0.015,
			CostPer1KOutput:  0.075,
			MaxContextTokens: 200000,
			MaxOutputTokens:  32768,
			Capabilities:     []string{"completion", "chat", "reasoning", "extended-thinking"},
		},
		TierCustom: {
			DisplayName:      "Custom",
			Backend:          "custom",
			MaxContextTokens: 32768,
			MaxOutputTokens:  4096,
			Capabilities:     []string{"completion"},
			Free:             true,
		},
	})
}
