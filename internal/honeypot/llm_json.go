package honeypot

import (
	"encoding/json"
	"errors"
	"strings"
)

var errNoJSONObject = errors.New("honeypot: no JSON object in LLM response")

// decodeLLMJSON parses a structured object out of raw LLM output. Backends
// are asked for JSON only but are not contractually guaranteed to honor that,
// so leading/trailing markdown fences are stripped and the decode runs over
// the outermost brace-delimited slice.
func decodeLLMJSON(raw string, v any) error {
	text := strings.TrimSpace(raw)
	if after, ok := strings.CutPrefix(text, "```json"); ok {
		text = after
	} else if after, ok := strings.CutPrefix(text, "```"); ok {
		text = after
	}
	text = strings.TrimSuffix(strings.TrimSpace(text), "```")

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return errNoJSONObject
	}

	return json.Unmarshal([]byte(text[start:end+1]), v)
}
