package prompt

import (
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"text/template"
)

// Sentinel errors for prompt rendering.
var (
	// ErrEmpty is returned when the template string is empty.
	ErrEmpty = errors.New("prompt template is empty")

	// ErrParse is returned when the template fails to parse.
	ErrParse = errors.New("prompt template parse error")

	// ErrExecute is returned when template execution fails.
	ErrExecute = errors.New("prompt template execution error")
)

// Engine renders operation prompt templates with {{variable}} substitution.
type Engine struct {
	funcs template.FuncMap
}

// NewEngine creates an engine with the default helper functions.
func NewEngine() *Engine {
	return &Engine{
		funcs: template.FuncMap{
			"upper": strings.ToUpper,
			"lower": strings.ToLower,
			"trim":  strings.TrimSpace,
			"json":  toJSON,
		},
	}
}

// varPattern matches bare {{variable}} references.
var varPattern = regexp.MustCompile(`\{\{([a-zA-Z_]\w*)\}\}`)

// keywords are Go template reserved words left untouched by conversion.
var keywords = map[string]bool{
	"if": true, "else": true, "end": true, "range": true, "with": true,
}

// convert rewrites {{variable}} to Go template {{.variable}} syntax.
func convert(tmpl string) string {
	return varPattern.ReplaceAllStringFunc(tmpl, func(match string) string {
		name := match[2 : len(match)-2]
		if keywords[name] {
			return match
		}
		return "{{." + name + "}}"
	})
}

// Render executes the template with the given variables.
func (e *Engine) Render(templateStr string, variables map[string]any) (string, error) {
	if templateStr == "" {
		return "", ErrEmpty
	}

	tmpl, parseErr := template.New("prompt").Funcs(e.funcs).Parse(convert(templateStr))
	if parseErr != nil {
		return "", fmt.Errorf("%w: %w", ErrParse, parseErr)
	}

	var buf strings.Builder
	if execErr := tmpl.Execute(&buf, variables); execErr != nil {
		return "", fmt.Errorf("%w: %w", ErrExecute, execErr)
	}
	return buf.String(), nil
}

// toJSON converts a value to a pretty-printed JSON string.
func toJSON(v any) string {
	b, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return fmt.Sprintf("%v", v)
	}
	return string(b)
}
