// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package parse recovers structured JSON values from free-form model output.
// Model responses wrap JSON in prose, code fences, and comments; the
// extractor tries progressively looser strategies and never reports an
// error, only found/not-found. Truncated or malformed input fails closed.
package parse

import (
	"encoding/json"
	"regexp"
	"strings"
)

// Shape constrains what top-level JSON value Extract may look for during
// the raw delimiter scan.
type Shape int

const (
	// ShapeAny accepts either an object or an array.
	ShapeAny Shape = iota

	// ShapeObject looks for a top-level JSON object.
	ShapeObject

	// ShapeArray looks for a top-level JSON array.
	ShapeArray
)

// fencePatterns match code-fenced blocks, with and without a language tag,
// tried most-specific first.
var fencePatterns = []*regexp.Regexp{
	regexp.MustCompile("(?is)```json\\s*\\n(.*?)\\n```"),
	regexp.MustCompile("(?is)```\\s*\\n(.*?)\\n```"),
	regexp.MustCompile("(?is)```json(.*?)```"),
	regexp.MustCompile("(?is)```(.*?)```"),
}

// Extract recovers a JSON value from text. It tries three strategies in
// order: fenced-block extraction, raw delimiter scan, and line-filtered
// reconstruction. Each strategy strips // comments before parsing. The
// second return value reports whether any strategy produced a value.
func Extract(text string, shape Shape) (any, bool) {
	if strings.TrimSpace(text) == "" {
		return nil, false
	}

	if v, ok := extractFenced(text); ok {
		return v, true
	}
	if v, ok := extractRaw(text, shape); ok {
		return v, true
	}
	if v, ok := extractLines(text); ok {
		return v, true
	}
	return nil, false
}

// extractFenced parses the first code-fenced block that yields valid JSON.
func extractFenced(text string) (any, bool) {
	for _, pat := range fencePatterns {
		m := pat.FindStringSubmatch(text)
		if m == nil {
			continue
		}
		if v, ok := tryParse(strings.TrimSpace(m[1])); ok {
			return v, true
		}
	}
	return nil, false
}

// extractRaw scans for the outermost delimiter pair allowed by shape:
// first-[ to last-] for arrays, first-{ to last-} for objects. Arrays are
// tried before objects when both are allowed.
func extractRaw(text string, shape Shape) (any, bool) {
	if shape == ShapeArray || shape == ShapeAny {
		if v, ok := tryDelimited(text, '[', ']'); ok {
			return v, true
		}
	}
	if shape == ShapeObject || shape == ShapeAny {
		if v, ok := tryDelimited(text, '{', '}'); ok {
			return v, true
		}
	}
	return nil, false
}

func tryDelimited(text string, open, close byte) (any, bool) {
	start := strings.IndexByte(text, open)
	if start == -1 {
		return nil, false
	}
	end := strings.LastIndexByte(text, close)
	if end <= start {
		return nil, false
	}
	return tryParse(text[start : end+1])
}

// extractLines reconstructs a JSON span line by line: capture begins at the
// first line starting with { or [ and ends at the first subsequent line
// ending with } or ].
func extractLines(text string) (any, bool) {
	var captured []string
	capturing := false

	for _, line := range strings.Split(strings.TrimSpace(text), "\n") {
		trimmed := strings.TrimSpace(line)

		switch {
		case !capturing && (strings.HasPrefix(trimmed, "{") || strings.HasPrefix(trimmed, "[")):
			capturing = true
			captured = append(captured, line)
		case capturing && (strings.HasSuffix(trimmed, "}") || strings.HasSuffix(trimmed, "]")):
			captured = append(captured, line)
			return tryParse(strings.Join(captured, "\n"))
		case capturing:
			captured = append(captured, line)
		}
	}

	if len(captured) > 0 {
		return tryParse(strings.Join(captured, "\n"))
	}
	return nil, false
}

// tryParse strips comments and attempts a JSON parse. A failed parse is
// reported as not-found, never an error.
func tryParse(s string) (any, bool) {
	cleaned := stripComments(s)
	var v any
	if err := json.Unmarshal([]byte(cleaned), &v); err != nil {
		return nil, false
	}
	return v, true
}

// stripComments removes //-style line comments that are not inside a quoted
// string, respecting backslash escapes. Blank lines are dropped.
func stripComments(s string) string {
	lines := strings.Split(s, "\n")
	cleaned := make([]string, 0, len(lines))

	for _, line := range lines {
		inString := false
		escaped := false
		commentStart := -1

		for i := 0; i < len(line); i++ {
			c := line[i]
			if escaped {
				escaped = false
				continue
			}
			if c == '\\' {
				escaped = true
				continue
			}
			if c == '"' {
				inString = !inString
			}
			if !inString && c == '/' && i+1 < len(line) && line[i+1] == '/' {
				commentStart = i
				break
			}
		}

		if commentStart >= 0 {
			line = strings.TrimRight(line[:commentStart], " \t")
		}
		if strings.TrimSpace(line) != "" {
			cleaned = append(cleaned, line)
		}
	}

	return strings.Join(cleaned, "\n")
}
