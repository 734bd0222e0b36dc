package query

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/aleksanderujek/oro/internal/cursor"
	"github.com/aleksanderujek/oro/internal/model"
	"github.com/aleksanderujek/oro/internal/normalize"
	"github.com/aleksanderujek/oro/internal/period"
	"github.com/aleksanderujek/oro/internal/service"
	"github.com/aleksanderujek/oro/internal/storage"
)

// Engine executes validated list queries against the store.
type Engine struct {
	storage service.Storage
	now     func() time.Time
}

// New creates a query engine backed by the given store.
func New(storage service.Storage) *Engine {
	return &Engine{
		storage: storage,
		now:     time.Now,
	}
}

// Page is one slice of a list result. NextCursor is set only when more
// rows exist past the end of Items.
type Page struct {
	NextCursor string
	Items      []model.Expense
	HasMore    bool
}

// List returns one page of the user's expenses matching the params,
// newest first. Search terms are folded the same way stored search text
// is, and full-text search degrades to substring matching when the store
// has no text index.
func (e *Engine) List(ctx context.Context, userID string, params Params) (*Page, error) {
	p, err := params.normalized()
	if err != nil {
		return nil, err
	}

	filter := service.ExpenseFilter{
		Account:        p.Account,
		CategoryIDs:    p.CategoryIDs,
		Limit:          p.Limit + 1,
		IncludeDeleted: p.IncludeDeleted,
	}

	if p.Window != "" {
		loc, locErr := e.userLocation(ctx, userID)
		if locErr != nil {
			return nil, locErr
		}
		window := resolveWindow(p.Window, e.now(), loc)
		filter.From = &window.From
		filter.To = &window.To
	} else {
		filter.From = p.From
		filter.To = p.To
	}

	if p.Cursor != "" {
		pos, curErr := cursor.Decode(p.Cursor)
		if curErr != nil {
			return nil, curErr
		}
		filter.After = &pos
	}

	if p.Search != "" {
		filter.Search = normalize.SearchText(p.Search, "")
		filter.SearchMode = service.SearchFullText
	}

	items, err := e.storage.ListExpenses(ctx, userID, filter)
	if errors.Is(err, storage.ErrTextSearchUnavailable) {
		slog.Debug("full-text search unavailable, retrying with substring match")
		filter.SearchMode = service.SearchSubstring
		items, err = e.storage.ListExpenses(ctx, userID, filter)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to list expenses: %w", err)
	}

	page := &Page{Items: items}
	if len(items) > p.Limit {
		page.Items = items[:p.Limit]
		page.HasMore = true
		last := page.Items[p.Limit-1]
		page.NextCursor = cursor.Encode(last.OccurredAt, last.ID)
	}

	return page, nil
}

// userLocation resolves the owner's profile timezone. A missing profile
// means UTC; a stored timezone that no longer loads is logged and treated
// as UTC rather than failing the query.
func (e *Engine) userLocation(ctx context.Context, userID string) (*time.Location, error) {
	profile, err := e.storage.GetProfile(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	tz := ""
	if profile != nil {
		tz = profile.Timezone
	}

	loc, err := period.LoadLocation(tz)
	if err != nil {
		slog.Warn("stored timezone does not load, using UTC",
			"timezone", tz,
			"error", err)
		return time.UTC, nil
	}
	return loc, nil
}

func resolveWindow(name string, now time.Time, loc *time.Location) period.Window {
	switch name {
	case WindowThisMonth:
		return period.ThisMonth(now, loc)
	case WindowLastMonth:
		return period.LastMonth(now, loc)
	default:
		return period.Last7Days(now, loc)
	}
}
