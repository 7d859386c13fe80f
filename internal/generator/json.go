package generator

import (
	"encoding/json"
	"strings"
)

// decodeJSON unmarshals a model response into v. It strips markdown code
// fences first; if the whole body still fails to parse, it retries on
// the outermost {...} or [...] span, since models sometimes wrap JSON in
// prose. Returns a FormatError when nothing parseable is found.
func decodeJSON(body string, v any) error {
	cleaned := stripCodeFences(body)

	if err := json.Unmarshal([]byte(cleaned), v); err == nil {
		return nil
	}

	if span, ok := extractJSONSpan(cleaned); ok {
		if err := json.Unmarshal([]byte(span), v); err != nil {
			return &FormatError{Detail: "embedded JSON did not parse", Err: err}
		}
		return nil
	}

	return &FormatError{Detail: "no JSON object found in response"}
}

func stripCodeFences(s string) string {
	s = strings.TrimSpace(s)
	if strings.HasPrefix(s, "```json") {
		s = strings.TrimPrefix(s, "```json")
		s = strings.TrimSpace(s)
	} else if strings.HasPrefix(s, "```") {
		s = strings.TrimPrefix(s, "```")
		s = strings.TrimSpace(s)
	}
	if strings.HasSuffix(s, "```") {
		s = strings.TrimSuffix(s, "```")
		s = strings.TrimSpace(s)
	}
	return s
}

// extractJSONSpan returns the substring from the first { or [ to the
// matching last } or ].
func extractJSONSpan(s string) (string, bool) {
	objStart := strings.Index(s, "{")
	arrStart := strings.Index(s, "[")

	start := objStart
	closer := "}"
	if start == -1 || (arrStart != -1 && arrStart < start) {
		start = arrStart
		closer = "]"
	}
	if start == -1 {
		return "", false
	}

	end := strings.LastIndex(s, closer)
	if end <= start {
		return "", false
	}
	return s[start : end+1], true
}
