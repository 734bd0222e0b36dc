// Package mapping resolves raw merchant names to spending categories
// through a user's stored overrides, first by exact normalized key, then by
// similarity against every key the user owns.
package mapping

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/aleksanderujek/oro/internal/model"
	"github.com/aleksanderujek/oro/internal/normalize"
	"github.com/aleksanderujek/oro/internal/service"
	"github.com/aleksanderujek/oro/internal/similarity"
)

// FuzzyThreshold is the minimum similarity score for a fuzzy match. Scores
// below it are treated as no match at all.
const FuzzyThreshold = 0.8

// ErrResolutionFailed reports a lookup or scoring failure in either stage.
// It is distinct from "no match" so callers can decide whether to retry or
// fall through to provider categorization anyway.
var ErrResolutionFailed = errors.New("merchant resolution failed")

// Resolver looks up per-user merchant overrides.
type Resolver struct {
	storage service.Storage
	scorer  similarity.Scorer
}

// NewResolver creates a resolver backed by the given store and scorer.
func NewResolver(storage service.Storage, scorer similarity.Scorer) *Resolver {
	return &Resolver{
		storage: storage,
		scorer:  scorer,
	}
}

// Resolve returns the user's override match for a raw merchant name, or nil
// when neither stage finds one. An exact key hit always wins with
// confidence 1.0; otherwise the best similarity score at or above
// FuzzyThreshold wins with that score as its confidence. Ties between
// equally scored keys are broken arbitrarily.
func (r *Resolver) Resolve(ctx context.Context, userID, rawName string) (*model.MappingMatch, error) {
	key := normalize.Key(rawName)
	if key == "" {
		// Nothing survives normalization, so no key can ever match.
		return nil, nil
	}

	mapping, err := r.storage.GetMapping(ctx, userID, key)
	if err != nil && !errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: exact lookup for %q: %v", ErrResolutionFailed, key, err)
	}
	if mapping != nil {
		return &model.MappingMatch{
			NormalizedKey: key,
			Kind:          model.MatchExact,
			CategoryID:    mapping.CategoryID,
			Confidence:    1.0,
		}, nil
	}

	mappings, err := r.storage.ListMappings(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%w: fuzzy scan for %q: %v", ErrResolutionFailed, key, err)
	}

	var (
		best      *model.MerchantMapping
		bestScore float64
	)
	for i := range mappings {
		score := r.scorer.Score(key, mappings[i].MerchantKey)
		if score > bestScore {
			bestScore = score
			best = &mappings[i]
		}
	}

	if best == nil || bestScore < FuzzyThreshold {
		return nil, nil
	}

	return &model.MappingMatch{
		NormalizedKey: key,
		Kind:          model.MatchFuzzy,
		CategoryID:    best.CategoryID,
		Confidence:    bestScore,
	}, nil
}
