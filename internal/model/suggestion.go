package model

import (
	"fmt"
	"sort"
)

// Suggestion is one ranked category proposal from the categorization
// provider. It is transient: suggestions are returned to the caller for
// display but never persisted.
type Suggestion struct {
	CategoryKey  string
	CategoryName string
	CategoryID   int64
	Confidence   float64
}

// Validate ensures the suggestion carries a known category and a sane score.
func (s *Suggestion) Validate() error {
	if s.CategoryID == 0 {
		return fmt.Errorf("suggestion category is required")
	}
	if s.Confidence < 0.0 || s.Confidence > 1.0 {
		return fmt.Errorf("confidence must be between 0.0 and 1.0, got %.2f", s.Confidence)
	}
	return nil
}

// Suggestions is a ranked list of category proposals.
type Suggestions []Suggestion

// Len implements sort.Interface.
func (s Suggestions) Len() int { return len(s) }

// Less implements sort.Interface - higher confidence first.
func (s Suggestions) Less(i, j int) bool {
	if s[i].Confidence != s[j].Confidence {
		return s[i].Confidence > s[j].Confidence
	}
	// Equal scores fall back to the key for a stable order
	return s[i].CategoryKey < s[j].CategoryKey
}

// Swap implements sort.Interface.
func (s Suggestions) Swap(i, j int) { s[i], s[j] = s[j], s[i] }

// Sort orders the suggestions by confidence descending.
func (s Suggestions) Sort() { sort.Sort(s) }

// Top returns the highest-confidence suggestion, or nil if empty.
func (s Suggestions) Top() *Suggestion {
	if len(s) == 0 {
		return nil
	}
	s.Sort()
	return &s[0]
}

// TopN returns the n highest-confidence suggestions.
func (s Suggestions) TopN(n int) Suggestions {
	if n <= 0 {
		return Suggestions{}
	}
	s.Sort()
	if n > len(s) {
		n = len(s)
	}
	out := make(Suggestions, n)
	copy(out, s[:n])
	return out
}

// Validate ensures every suggestion is valid and no category repeats.
func (s Suggestions) Validate() error {
	seen := make(map[int64]bool, len(s))
	for i := range s {
		if err := s[i].Validate(); err != nil {
			return fmt.Errorf("invalid suggestion at index %d: %w", i, err)
		}
		if seen[s[i].CategoryID] {
			return fmt.Errorf("duplicate category %d in suggestions", s[i].CategoryID)
		}
		seen[s[i].CategoryID] = true
	}
	return nil
}
