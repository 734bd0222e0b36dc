// Package normalize derives the canonical text forms stored alongside each
// expense: the merchant key used for mapping lookups and the folded search
// text used for substring and similarity search.
package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// foldTransform decomposes to NFD, strips combining marks, and recomposes,
// so "Café" folds to "Cafe" before any further processing. Chained
// transformers carry buffers, so each caller builds its own.
func foldTransform() transform.Transformer {
	return transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
}

// Key reduces a raw merchant name to its canonical lookup key: lowercase
// with everything outside [a-z0-9] removed. The result is stable for any
// casing, spacing, or punctuation variant of the same name, and applying
// Key to its own output returns it unchanged.
func Key(raw string) string {
	lower := strings.ToLower(stripMarks(raw))
	var b strings.Builder
	b.Grow(len(lower))
	for _, r := range lower {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// SearchText builds the folded haystack persisted with each expense. Name
// and description are accent-folded, lowercased, and joined with single
// spaces; runs of whitespace collapse so the output is stable regardless of
// input spacing.
func SearchText(name, description string) string {
	joined := name
	if description != "" {
		joined = name + " " + description
	}
	folded := strings.ToLower(stripMarks(joined))
	return strings.Join(strings.Fields(folded), " ")
}

func stripMarks(s string) string {
	folded, _, err := transform.String(foldTransform(), s)
	if err != nil {
		return s
	}
	return folded
}
