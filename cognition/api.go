package cognition

import (
	"context"
	"log/slog"
	"strings"

	"github.com/Danservfinn/cogkit/prompt"
	"github.com/Danservfinn/cogkit/router"
)

// API is the unified cognition facade. Each operation builds a
// task-appropriate prompt and routing context and delegates to the router.
type API struct {
	router *router.Router
	engine *prompt.Engine
}

// NewAPI creates the facade over a configured router.
func NewAPI(r *router.Router) *API {
	return &API{
		router: r,
		engine: prompt.NewEngine(),
	}
}

// Think runs an open-ended reflection over a topic on the default tier.
func (a *API) Think(ctx context.Context, topic string) router.Result {
	text := a.render(thinkTemplate, map[string]any{"topic": topic})
	return a.router.Route(ctx, router.Context{
		TaskType:    "think",
		Prompt:      text,
		Temperature: 0.7,
		MinQuality:  0.6,
	})
}

// Reason runs a careful reasoning chain. Reasoning requests require
// cross-validation and carry a higher quality threshold.
func (a *API) Reason(ctx context.Context, question string, premises []string) router.Result {
	joined := strings.Join(premises, "\n")
	if joined == "" {
		joined = "(none)"
	}
	text := a.render(reasonTemplate, map[string]any{
		"question": question,
		"premises": joined,
	})
	return a.router.Route(ctx, router.Context{
		TaskType:           "reason",
		Prompt:             text,
		Temperature:        0.2,
		MinQuality:         0.8,
		RequiresValidation: true,
	})
}

// Create runs a generative request with a higher temperature.
func (a *API) Create(ctx context.Context, brief string) router.Result {
	text := a.render(createTemplate, map[string]any{"brief": brief})
	return a.router.Route(ctx, router.Context{
		TaskType:    "create",
		Prompt:      text,
		Temperature: 0.9,
		MinQuality:  0.5,
	})
}

// Evaluation is the structured verdict parsed from an evaluate response.
type Evaluation struct {
	// Score is the 0..1 quality score, higher is better.
	Score float64 `json:"score"`

	// Explanation justifies the score.
	Explanation string `json:"explanation"`

	// Structured reports whether the response parsed cleanly; when false,
	// Explanation holds the raw response text and Score is zero.
	Structured bool `json:"structured"`
}

// Evaluate scores a subject against criteria. Evaluation is a critical
// operation: it asks for a structured score and explanation and is routed
// with the critical flag set.
func (a *API) Evaluate(ctx context.Context, subject, criteria string) (Evaluation, router.Result) {
	text := a.render(evaluateTemplate, map[string]any{
		"subject":  subject,
		"criteria": criteria,
	})
	res := a.router.Route(ctx, router.Context{
		TaskType:    "evaluate",
		Prompt:      text,
		Temperature: 0.1,
		MinQuality:  0.7,
		Critical:    true,
	})
	if !res.Success {
		return Evaluation{}, res
	}
	return ParseEvaluation(res.Text), res
}

// render executes a template, falling back to the raw template text when
// rendering fails. Prompt templates are static, so failures here are
// programmer errors worth logging but not worth failing a request over.
func (a *API) render(tmpl string, vars map[string]any) string {
	out, err := a.engine.Render(tmpl, vars)
	if err != nil {
		slog.Warn("prompt render failed, using raw template", slog.Any("error", err))
		return tmpl
	}
	return out
}
