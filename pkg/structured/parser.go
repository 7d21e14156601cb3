// Package structured extracts JSON values from free-form model output.
package structured

import (
	"encoding/json"
	"regexp"
)

// spanPattern is greedy and crosses newlines: it takes the first opening
// brace or bracket and runs to the last matching closer of the same kind.
var spanPattern = regexp.MustCompile(`(?s)\{.*\}|\[.*\]`)

// Parse returns the JSON value held by text. The whole string is tried
// first, then the first brace- or bracket-delimited span. A false result is
// a normal outcome and callers are expected to branch on it.
func Parse(text string) (any, bool) {
	var out any
	if err := json.Unmarshal([]byte(text), &out); err == nil {
		return out, true
	}

	span, ok := Span(text)
	if !ok {
		return nil, false
	}
	if err := json.Unmarshal([]byte(span), &out); err != nil {
		return nil, false
	}
	return out, true
}

// Decode is Parse for a typed destination.
func Decode[T any](text string) (T, bool) {
	var out T
	if err := json.Unmarshal([]byte(text), &out); err == nil {
		return out, true
	}

	span, ok := Span(text)
	if !ok {
		var zero T
		return zero, false
	}

	out = *new(T)
	if err := json.Unmarshal([]byte(span), &out); err != nil {
		var zero T
		return zero, false
	}
	return out, true
}

// Span returns the candidate JSON span inside text without validating it.
func Span(text string) (string, bool) {
	loc := spanPattern.FindStringIndex(text)
	if loc == nil {
		return "", false
	}
	return text[loc[0]:loc[1]], true
}
