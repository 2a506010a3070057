package analysis

import (
	"cmp"
	"slices"
	"strings"
	"unicode"
	"unicode/utf8"
)

// ExtractKeywords returns up to max distinct whitespace-separated tokens of
// text longer than minLength runes, longest first. Tokens of equal length
// keep their first-occurrence order. Punctuation is not stripped.
func ExtractKeywords(text string, minLength, max int) []string {
	seen := make(map[string]struct{})
	candidates := []string{}

	for _, word := range strings.FieldsFunc(text, isSpace) {
		if utf8.RuneCountInString(word) <= minLength {
			continue
		}
		if _, ok := seen[word]; ok {
			continue
		}
		seen[word] = struct{}{}
		candidates = append(candidates, word)
	}

	slices.SortStableFunc(candidates, func(a, b string) int {
		return cmp.Compare(utf8.RuneCountInString(b), utf8.RuneCountInString(a))
	})

	if max >= 0 && len(candidates) > max {
		candidates = candidates[:max]
	}
	return candidates
}

// isSpace also treats the ASCII information separators as whitespace
func isSpace(r rune) bool {
	return unicode.IsSpace(r) || (r >= 0x1c && r <= 0x1f)
}
