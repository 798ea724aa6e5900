package prompt

import (
	"errors"
	"strings"
	"testing"
)

func TestRender(t *testing.T) {
	e := NewEngine()

	tests := []struct {
		name string
		tmpl string
		vars map[string]any
		want string
	}{
		{
			name: "simple substitution",
			tmpl: "Hello {{name}}!",
			vars: map[string]any{"name": "world"},
			want: "Hello world!",
		},
		{
			name: "multiple variables",
			tmpl: "{{greeting}}, {{name}}.",
			vars: map[string]any{"greeting": "Hi", "name": "there"},
			want: "Hi, there.",
		},
		{
			name: "no variables",
			tmpl: "static text",
			vars: nil,
			want: "static text",
		},
		{
			name: "missing variable renders empty via go template semantics",
			tmpl: "x={{missing}}",
			vars: map[string]any{},
			want: "x=<no value>",
		},
		{
			name: "upper helper",
			tmpl: "{{upper .name}}",
			vars: map[string]any{"name": "loud"},
			want: "LOUD",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := e.Render(tt.tmpl, tt.vars)
			if err != nil {
				t.Fatalf("Render: %v", err)
			}
			if got != tt.want {
				t.Errorf("Render = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRender_Errors(t *testing.T) {
	e := NewEngine()

	if _, err := e.Render("", nil); !errors.Is(err, ErrEmpty) {
		t.Errorf("empty template: err = %v, want ErrEmpty", err)
	}
	if _, err := e.Render("{{upper", nil); !errors.Is(err, ErrParse) {
		t.Errorf("unclosed action: err = %v, want ErrParse", err)
	}
}

func TestRender_JSONHelper(t *testing.T) {
	e := NewEngine()

	got, err := e.Render("{{json .data}}", map[string]any{
		"data": map[string]any{"score": 0.5},
	})
	if err != nil {
		t.Fatalf("Render: %v", err)
	}
	if !strings.Contains(got, "\"score\": 0.5") {
		t.Errorf("json helper output = %q", got)
	}
}
