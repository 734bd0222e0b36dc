// Package query turns caller-facing expense filters into store queries
// with opaque keyset pagination.
package query

import (
	"errors"
	"fmt"
	"time"

	"github.com/aleksanderujek/oro/internal/model"
)

// Named relative windows accepted by list queries. They are resolved
// against the owner's profile timezone at query time.
const (
	WindowThisMonth = "this-month"
	WindowLastMonth = "last-month"
	WindowLast7Days = "last-7-days"
)

// Pagination and filter bounds.
const (
	DefaultLimit       = 50
	MaxLimit           = 50
	MaxCategoryFilters = 20
)

// ErrInvalidParams reports a filter combination the engine refuses to run.
// The store is never consulted for invalid parameters.
var ErrInvalidParams = errors.New("invalid list parameters")

// Params is the caller-facing filter set for listing expenses.
//
// A named Window and an explicit From/To range are mutually exclusive.
// All explicit bounds are half-open: [From, To). Soft-deleted rows stay
// hidden unless IncludeDeleted is set.
type Params struct {
	From           *time.Time
	To             *time.Time
	Window         string
	Search         string
	Cursor         string
	Account        model.AccountTag
	CategoryIDs    []int64
	Limit          int
	IncludeDeleted bool
}

// normalized validates the parameters and fills defaults. The zero limit
// selects DefaultLimit; anything else outside [1, MaxLimit] is rejected.
func (p Params) normalized() (Params, error) {
	out := p

	if out.Limit == 0 {
		out.Limit = DefaultLimit
	}
	if out.Limit < 1 || out.Limit > MaxLimit {
		return Params{}, fmt.Errorf("%w: limit must be between 1 and %d", ErrInvalidParams, MaxLimit)
	}

	if out.Window != "" {
		switch out.Window {
		case WindowThisMonth, WindowLastMonth, WindowLast7Days:
		default:
			return Params{}, fmt.Errorf("%w: unknown window %q", ErrInvalidParams, out.Window)
		}
		if out.From != nil || out.To != nil {
			return Params{}, fmt.Errorf("%w: a named window and an explicit range are mutually exclusive", ErrInvalidParams)
		}
	}

	if out.From != nil && out.To != nil && !out.To.After(*out.From) {
		return Params{}, fmt.Errorf("%w: from must precede to", ErrInvalidParams)
	}

	if !out.Account.Valid() {
		return Params{}, fmt.Errorf("%w: unknown account %q", ErrInvalidParams, out.Account)
	}

	out.CategoryIDs = dedupIDs(out.CategoryIDs)
	for _, id := range out.CategoryIDs {
		if id <= 0 {
			return Params{}, fmt.Errorf("%w: category ids must be positive", ErrInvalidParams)
		}
	}
	if len(out.CategoryIDs) > MaxCategoryFilters {
		return Params{}, fmt.Errorf("%w: at most %d category filters", ErrInvalidParams, MaxCategoryFilters)
	}

	return out, nil
}

// dedupIDs removes repeated ids while preserving first-seen order.
func dedupIDs(ids []int64) []int64 {
	if len(ids) == 0 {
		return nil
	}
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		out = append(out, id)
	}
	return out
}
