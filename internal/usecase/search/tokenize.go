package search

import (
	"strings"
	"unicode/utf8"
)

// tokenize splits text on whitespace and both comma variants. CJK queries
// here come pre-segmented (users type space-separated terms), so no real
// word segmentation is attempted.
func tokenize(text string) []string {
	return strings.FieldsFunc(text, func(r rune) bool {
		return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == ',' || r == '，'
	})
}

// significantTokens drops single-rune tokens, which are too ambiguous to
// treat as keywords.
func significantTokens(text string) []string {
	tokens := tokenize(text)
	out := tokens[:0]
	for _, t := range tokens {
		if utf8.RuneCountInString(t) > 1 {
			out = append(out, t)
		}
	}
	return out
}
