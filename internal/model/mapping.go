package model

import (
	"fmt"
	"strings"
	"time"
)

// MerchantMapping is a per-user override from a normalized merchant key to a
// category. At most one mapping exists per (user, key) pair; the key is
// immutable once created and corrections change only the category reference.
type MerchantMapping struct {
	UpdatedAt   time.Time
	ID          string
	UserID      string
	MerchantKey string
	CategoryID  int64
}

// Validate checks the mapping invariants before persistence.
func (m *MerchantMapping) Validate() error {
	if strings.TrimSpace(m.UserID) == "" {
		return fmt.Errorf("%w: missing user id", ErrInvalidMapping)
	}
	if strings.TrimSpace(m.MerchantKey) == "" {
		return fmt.Errorf("%w: missing merchant key", ErrInvalidMapping)
	}
	if m.CategoryID == 0 {
		return fmt.Errorf("%w: missing category", ErrInvalidMapping)
	}
	return nil
}

// MatchKind says which resolver stage produced a match.
type MatchKind string

// Match kinds.
const (
	MatchExact MatchKind = "exact"
	MatchFuzzy MatchKind = "fuzzy"
)

// MappingMatch is the result of resolving a raw merchant label against a
// user's mappings. Confidence is 1.0 for exact matches and the similarity
// score (>= 0.8) for fuzzy ones.
type MappingMatch struct {
	NormalizedKey string
	Kind          MatchKind
	CategoryID    int64
	Confidence    float64
}
