// Package jsonext recovers a JSON object from free-form LLM output.
//
// Model replies are asked to be "strictly JSON" but routinely arrive wrapped in
// prose, markdown fences, or with small syntax defects. Extract takes the widest
// brace span and, when strict parsing fails, applies a short fixed sequence of
// textual repairs matching the failure modes seen in practice. It is deliberately
// not a general lenient-JSON parser.
package jsonext

import (
	"encoding/json"
	"fmt"
	"regexp"
	"strings"
)

const diagnosticLimit = 500

// ExtractionError means no parseable JSON object could be recovered from the
// model's reply. Snippet holds the head of the last string we tried to parse.
type ExtractionError struct {
	Reason  string
	Snippet string
}

func (e *ExtractionError) Error() string {
	return fmt.Sprintf("json extraction failed: %s (attempted: %s)", e.Reason, e.Snippet)
}

var (
	trailingCommaRe = regexp.MustCompile(`,\s*([}\]])`)

	// An "explanation" value the model split with unescaped inner quotes:
	//   "explanation": "он был "упрям" в этом"
	// The middle fragment must be free of structural characters so the match
	// cannot run past the real end of the value.
	brokenExplanationRe = regexp.MustCompile(`("explanation"\s*:\s*)"([^"]*)"([^":,{}\[\]]+)"([^"]*)"`)
)

// Extract locates the JSON object embedded in raw and parses it.
func Extract(raw string) (json.RawMessage, error) {
	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start == -1 || end == -1 || end < start {
		return nil, &ExtractionError{Reason: "no JSON object found", Snippet: snippet(raw)}
	}

	candidate := raw[start : end+1]
	if msg, ok := tryParse(candidate); ok {
		return msg, nil
	}

	for _, repair := range []func(string) string{stripTrailingCommas, mergeBrokenExplanations} {
		candidate = repair(candidate)
		if msg, ok := tryParse(candidate); ok {
			return msg, nil
		}
	}

	return nil, &ExtractionError{Reason: "invalid JSON after repairs", Snippet: snippet(candidate)}
}

func tryParse(s string) (json.RawMessage, bool) {
	if !json.Valid([]byte(s)) {
		return nil, false
	}
	return json.RawMessage(s), true
}

func stripTrailingCommas(s string) string {
	return trailingCommaRe.ReplaceAllString(s, "$1")
}

func mergeBrokenExplanations(s string) string {
	return brokenExplanationRe.ReplaceAllString(s, `$1"$2$3$4"`)
}

func snippet(s string) string {
	if len(s) > diagnosticLimit {
		return s[:diagnosticLimit]
	}
	return s
}
