package provider

import (
	"context"
	"time"
)

// Request is the provider-agnostic completion request passed to a bound
// backend client.
type Request struct {
	// Prompt is the user prompt text.
	Prompt string `json:"prompt"`

	// SystemPrompt sets the system message, if any.
	SystemPrompt string `json:"system_prompt,omitempty"`

	// Model names the model to use (provider-specific). Empty lets the
	// provider pick its default.
	Model string `json:"model,omitempty"`

	// MaxTokens limits the response length. 0 uses the provider default.
	MaxTokens int `json:"max_tokens,omitempty"`

	// Temperature controls randomness (0.0 deterministic, 1.0 creative).
	Temperature float64 `json:"temperature,omitempty"`

	// Metadata holds caller-specific values passed through to the client.
	Metadata map[string]any `json:"metadata,omitempty"`
}

// Response is the output of a completion call.
type Response struct {
	// Text is the model's response text.
	Text string `json:"text"`

	// Model is the model that actually served the request.
	Model string `json:"model,omitempty"`

	// Provider is the ID of the provider that served the request.
	Provider string `json:"provider,omitempty"`

	// Usage tracks token consumption for this request.
	Usage TokenUsage `json:"usage"`

	// Latency is the time taken for the completion.
	Latency time.Duration `json:"latency"`

	// Raw holds provider-specific response data.
	Raw map[string]any `json:"raw,omitempty"`
}

// TokenUsage tracks token consumption.
type TokenUsage struct {
	InputTokens  int `json:"input_tokens"`
	OutputTokens int `json:"output_tokens"`
}

// Total returns the combined token count.
func (u TokenUsage) Total() int {
	return u.InputTokens + u.OutputTokens
}

// Add combines token usage from another TokenUsage.
func (u *TokenUsage) Add(other TokenUsage) {
	u.InputTokens += other.InputTokens
	u.OutputTokens += other.OutputTokens
}

// Client is the bound backend callable a provider registration resolves to.
// The wire protocol to the actual vendor is the client's business; this
// core only sees the Request/Response boundary. Implementations must be
// safe for concurrent use and should honor context cancellation.
type Client interface {
	// Complete sends a request and returns the full response.
	Complete(ctx context.Context, req Request) (*Response, error)
}

// ClientFunc adapts a plain function to the Client interface.
type ClientFunc func(ctx context.Context, req Request) (*Response, error)

// Complete implements Client.
func (f ClientFunc) Complete(ctx context.Context, req Request) (*Response, error) {
	return f(ctx, req)
}
