package provider

import "fmt"

// Type classifies how a provider is hosted.
type Type string

// Provider hosting types.
const (
	TypeCloudAPI   Type = "cloud_api"
	TypeLocal      Type = "local"
	TypeSelfHosted Type = "self_hosted"
)

// Capabilities describes what a provider's backend supports.
type Capabilities struct {
	// MaxContextTokens is the largest context window across the
	// provider's models.
	MaxContextTokens int `json:"max_context_tokens" yaml:"max_context_tokens" toml:"max_context_tokens"`

	// Streaming indicates support for streamed responses.
	Streaming bool `json:"streaming" yaml:"streaming" toml:"streaming"`

	// FunctionCalling indicates support for tool/function calling.
	FunctionCalling bool `json:"function_calling" yaml:"function_calling" toml:"function_calling"`

	// Vision indicates support for image inputs.
	Vision bool `json:"vision" yaml:"vision" toml:"vision"`

	// Embeddings indicates support for embedding generation.
	Embeddings bool `json:"embeddings" yaml:"embeddings" toml:"embeddings"`

	// Models lists the model names the provider serves.
	Models []string `json:"models" yaml:"models" toml:"models"`
}

// SupportsModel reports whether the provider serves the named model.
// An empty model list means the provider accepts any model name.
func (c Capabilities) SupportsModel(model string) bool {
	if len(c.Models) == 0 {
		return true
	}
	for _, m := range c.Models {
		if m == model {
			return true
		}
	}
	return false
}

// Has reports whether the named capability tag is supported.
// Recognized tags: "streaming", "function_calling", "vision", "embeddings".
func (c Capabilities) Has(capability string) bool {
	switch capability {
	case "":
		return true
	case "streaming":
		return c.Streaming
	case "function_calling":
		return c.FunctionCalling
	case "vision":
		return c.Vision
	case "embeddings":
		return c.Embeddings
	default:
		return false
	}
}

// CostTable holds per-1k-token pricing for a provider.
type CostTable struct {
	InputPer1K  float64 `json:"input_per_1k" yaml:"input_per_1k" toml:"input_per_1k"`
	OutputPer1K float64 `json:"output_per_1k" yaml:"output_per_1k" toml:"output_per_1k"`
}

// Cost computes the USD cost for the given token counts.
func (ct CostTable) Cost(inputTokens, outputTokens int) float64 {
	return float64(inputTokens)/1000*ct.InputPer1K +
		float64(outputTokens)/1000*ct.OutputPer1K
}

// RateLimit holds optional provider-side rate limits.
// Zero values mean unlimited.
type RateLimit struct {
	RequestsPerMinute int `json:"requests_per_minute" yaml:"requests_per_minute" toml:"requests_per_minute"`
	TokensPerMinute   int `json:"tokens_per_minute" yaml:"tokens_per_minute" toml:"tokens_per_minute"`
}

// Config holds the static registration for one backend provider.
type Config struct {
	// ID uniquely identifies the provider within the registry.
	ID string `json:"id" yaml:"id" toml:"id"`

	// Type classifies the hosting model.
	Type Type `json:"type" yaml:"type" toml:"type"`

	// Endpoint is the base URL for the provider's API.
	Endpoint string `json:"endpoint" yaml:"endpoint" toml:"endpoint"`

	// CredentialEnv names the environment variable holding the API
	// credential. The raw secret never appears in configuration.
	CredentialEnv string `json:"credential_env" yaml:"credential_env" toml:"credential_env"`

	// Capabilities describes what the provider supports.
	Capabilities Capabilities `json:"capabilities" yaml:"capabilities" toml:"capabilities"`

	// Priority orders providers within a candidate list; lower is preferred.
	Priority int `json:"priority" yaml:"priority" toml:"priority"`

	// Costs is the provider's pricing table.
	Costs CostTable `json:"costs" yaml:"costs" toml:"costs"`

	// Limits holds optional rate limits.
	Limits RateLimit `json:"limits" yaml:"limits" toml:"limits"`
}

// Validate checks the configuration is usable.
func (c Config) Validate() error {
	if c.ID == "" {
		return fmt.Errorf("provider id is required")
	}
	switch c.Type {
	case TypeCloudAPI, TypeLocal, TypeSelfHosted, "":
	default:
		return fmt.Errorf("unknown provider type %q", c.Type)
	}
	if c.Priority < 0 {
		return fmt.Errorf("priority must be >= 0, got %d", c.Priority)
	}
	return nil
}
