// Package similarity scores how close two normalized merchant keys are.
// The mapping resolver uses it to fall back from exact key lookups to
// near-miss matches caused by typos or truncation.
package similarity

// Scorer computes a similarity score in [0, 1] for two normalized keys.
// 1 means identical, 0 means nothing in common. Implementations must be
// symmetric and safe for concurrent use.
type Scorer interface {
	Score(a, b string) float64
}

// TrigramScorer scores strings by Jaccard similarity over padded character
// trigrams. Padding with a sentinel rune weights the start and end of the
// key, so "starbucks" and "starbucks1234" still score high while short
// unrelated keys score near zero.
type TrigramScorer struct{}

// NewTrigramScorer returns the default scorer used in production.
func NewTrigramScorer() *TrigramScorer {
	return &TrigramScorer{}
}

const pad = '\x01'

// Score implements Scorer.
func (s *TrigramScorer) Score(a, b string) float64 {
	if a == b {
		if a == "" {
			return 0
		}
		return 1
	}
	if a == "" || b == "" {
		return 0
	}

	setA := trigrams(a)
	setB := trigrams(b)

	intersection := 0
	for g := range setA {
		if _, ok := setB[g]; ok {
			intersection++
		}
	}
	union := len(setA) + len(setB) - intersection
	if union == 0 {
		return 0
	}
	return float64(intersection) / float64(union)
}

// trigrams returns the set of character trigrams of s padded with two
// sentinel runes on each side, so every rune of s appears in three grams.
func trigrams(s string) map[string]struct{} {
	runes := make([]rune, 0, len(s)+4)
	runes = append(runes, pad, pad)
	runes = append(runes, []rune(s)...)
	runes = append(runes, pad, pad)

	set := make(map[string]struct{}, len(runes))
	for i := 0; i+3 <= len(runes); i++ {
		set[string(runes[i:i+3])] = struct{}{}
	}
	return set
}
