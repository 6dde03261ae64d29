// Package metrics derives size features from chat text without retaining it.
package metrics

import (
	"strings"
	"unicode/utf8"
)

// Features holds basic size counts for one piece of text.
type Features struct {
	Bytes int `json:"bytes"`
	Runes int `json:"runes"`
	Words int `json:"words"`
	Lines int `json:"lines"`
}

// CountFeatures computes byte, rune, word and line counts for s.
func CountFeatures(s string) Features {
	return Features{
		Bytes: len(s),
		Runes: utf8.RuneCountInString(s),
		Words: len(strings.Fields(s)),
		Lines: countLines(s),
	}
}

// Fields flattens f for a telemetry event payload.
func (f Features) Fields() map[string]any {
	return map[string]any{
		"bytes": f.Bytes,
		"runes": f.Runes,
		"words": f.Words,
		"lines": f.Lines,
	}
}

// countLines returns 0 for empty strings; otherwise 1 plus the number of '\n' runes.
func countLines(s string) int {
	if s == "" {
		return 0
	}
	return 1 + strings.Count(s, "\n")
}
