package cognition

import (
	"encoding/json"
	"regexp"
	"strings"

	"gopkg.in/yaml.v3"
)

// fencedBlock matches ```lang ... ``` code fences.
var fencedBlock = regexp.MustCompile("(?s)```([a-zA-Z]*)\\n(.*?)```")

// ParseEvaluation extracts a structured score+explanation from an evaluate
// response. It tries, in order: fenced JSON blocks, inline JSON objects,
// and fenced YAML blocks. Responses that don't parse come back with
// Structured=false and the raw text as the explanation.
func ParseEvaluation(response string) Evaluation {
	for _, candidate := range structuredCandidates(response) {
		if ev, ok := parseCandidate(candidate.content, candidate.yaml); ok {
			return ev
		}
	}
	return Evaluation{Explanation: strings.TrimSpace(response)}
}

type candidate struct {
	content string
	yaml    bool
}

// structuredCandidates collects the plausible structured payloads in a
// response, fenced blocks first, then inline JSON objects.
func structuredCandidates(response string) []candidate {
	var out []candidate

	for _, m := range fencedBlock.FindAllStringSubmatch(response, -1) {
		lang, content := strings.ToLower(m[1]), m[2]
		switch lang {
		case "json", "":
			out = append(out, candidate{content: content})
		case "yaml", "yml":
			out = append(out, candidate{content: content, yaml: true})
		}
	}

	// Inline JSON: the first {...} spanning the remaining text.
	stripped := fencedBlock.ReplaceAllString(response, "")
	if start := strings.Index(stripped, "{"); start >= 0 {
		if end := strings.LastIndex(stripped, "}"); end > start {
			out = append(out, candidate{content: stripped[start : end+1]})
		}
	}
	return out
}

// parseCandidate attempts to decode one payload into an Evaluation.
func parseCandidate(content string, asYAML bool) (Evaluation, bool) {
	var data map[string]any
	if asYAML {
		if err := yaml.Unmarshal([]byte(content), &data); err != nil {
			return Evaluation{}, false
		}
	} else {
		if err := json.Unmarshal([]byte(strings.TrimSpace(content)), &data); err != nil {
			return Evaluation{}, false
		}
	}

	score, ok := numberField(data, "score")
	if !ok {
		return Evaluation{}, false
	}
	if score < 0 {
		score = 0
	}
	if score > 1 {
		score = 1
	}

	explanation, _ := data["explanation"].(string)
	return Evaluation{
		Score:       score,
		Explanation: explanation,
		Structured:  true,
	}, true
}

// numberField reads a numeric field that may decode as float64 or int.
func numberField(data map[string]any, key string) (float64, bool) {
	switch v := data[key].(type) {
	case float64:
		return v, true
	case int:
		return float64(v), true
	default:
		return 0, false
	}
}
