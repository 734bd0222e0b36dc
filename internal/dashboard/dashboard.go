// Package dashboard aggregates the expense ledger into monthly analytics:
// totals, month-over-month movement, a per-day series, and category shares.
// All bucketing happens on the user's local calendar even though rows are
// stored as UTC instants.
package dashboard

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sort"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/aleksanderujek/oro/internal/model"
	"github.com/aleksanderujek/oro/internal/period"
	"github.com/aleksanderujek/oro/internal/service"
)

// MaxCategoryFilters bounds the category filter, matching the list query.
const MaxCategoryFilters = 20

// ErrInvalidRequest reports a request the aggregator refuses to run. The
// store is never consulted for invalid requests.
var ErrInvalidRequest = errors.New("invalid dashboard request")

// Request narrows the aggregation. The zero value means "the user's
// current month, all accounts, all categories".
type Request struct {
	// Month selects an explicit target month as YYYY-MM. Empty picks the
	// month containing now in the user's timezone.
	Month       string
	Account     model.AccountTag
	CategoryIDs []int64
}

// Aggregator computes dashboard snapshots from the store.
type Aggregator struct {
	storage service.Storage
	now     func() time.Time
}

// New creates an aggregator backed by the given store.
func New(storage service.Storage) *Aggregator {
	return &Aggregator{
		storage: storage,
		now:     time.Now,
	}
}

// Aggregate builds the snapshot for one calendar month in the user's
// timezone. The target and preceding month windows plus the category table
// are fetched concurrently; everything else is computed in memory.
func (a *Aggregator) Aggregate(ctx context.Context, userID string, req Request) (*model.DashboardSnapshot, error) {
	req, err := req.normalized()
	if err != nil {
		return nil, err
	}

	loc, tz := a.userLocation(ctx, userID)

	var month period.Month
	if req.Month != "" {
		month, err = period.ParseMonth(req.Month)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidRequest, err)
		}
	} else {
		month = period.MonthOf(a.now(), loc)
	}

	current := month.Bounds(loc)
	previous := month.Prev().Bounds(loc)
	filter := service.WindowFilter{
		Account:     req.Account,
		CategoryIDs: req.CategoryIDs,
	}

	var (
		currentRows  []model.Expense
		previousRows []model.Expense
		categories   model.Categories
	)
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		rows, fetchErr := a.storage.GetExpensesInWindow(gctx, userID, current, filter)
		if fetchErr != nil {
			return fmt.Errorf("failed to fetch current month: %w", fetchErr)
		}
		currentRows = rows
		return nil
	})
	g.Go(func() error {
		rows, fetchErr := a.storage.GetExpensesInWindow(gctx, userID, previous, filter)
		if fetchErr != nil {
			return fmt.Errorf("failed to fetch previous month: %w", fetchErr)
		}
		previousRows = rows
		return nil
	})
	g.Go(func() error {
		cats, fetchErr := a.storage.GetCategories(gctx)
		if fetchErr != nil {
			return fmt.Errorf("failed to fetch categories: %w", fetchErr)
		}
		categories = model.Categories(cats)
		return nil
	})
	if err := g.Wait(); err != nil {
		return nil, err
	}

	currentTotal := sumAmounts(currentRows)
	previousTotal := sumAmounts(previousRows)

	snapshot := &model.DashboardSnapshot{
		Month:    month.String(),
		Timezone: tz,
		Total:    currentTotal,
		MonthOverMonth: model.MonthOverMonth{
			Current:  currentTotal,
			Previous: previousTotal,
			Delta:    model.RoundAmount(currentTotal - previousTotal),
			Percent:  momPercent(currentTotal, previousTotal),
		},
		Daily:         dailySeries(currentRows, month, loc),
		TopCategories: categoryShares(currentRows, currentTotal, categories),
	}

	slog.Debug("dashboard aggregated",
		"user_id", userID,
		"month", snapshot.Month,
		"timezone", tz,
		"rows", len(currentRows))

	return snapshot, nil
}

// normalized validates the request and dedups the category filter.
func (r Request) normalized() (Request, error) {
	if !r.Account.Valid() {
		return Request{}, fmt.Errorf("%w: unknown account %q", ErrInvalidRequest, r.Account)
	}

	if len(r.CategoryIDs) > 0 {
		seen := make(map[int64]bool, len(r.CategoryIDs))
		ids := make([]int64, 0, len(r.CategoryIDs))
		for _, id := range r.CategoryIDs {
			if id <= 0 {
				return Request{}, fmt.Errorf("%w: category ids must be positive", ErrInvalidRequest)
			}
			if seen[id] {
				continue
			}
			seen[id] = true
			ids = append(ids, id)
		}
		if len(ids) > MaxCategoryFilters {
			return Request{}, fmt.Errorf("%w: at most %d category filters", ErrInvalidRequest, MaxCategoryFilters)
		}
		r.CategoryIDs = ids
	}

	return r, nil
}

// userLocation loads the profile timezone, defaulting to UTC when the user
// has no profile, no stored timezone, or a stored name that does not load.
func (a *Aggregator) userLocation(ctx context.Context, userID string) (*time.Location, string) {
	profile, err := a.storage.GetProfile(ctx, userID)
	if err != nil {
		slog.Warn("failed to load profile for dashboard, using UTC",
			"user_id", userID,
			"error", err)
		return time.UTC, "UTC"
	}

	tz := ""
	if profile != nil {
		tz = profile.Timezone
	}
	if tz == "" {
		return time.UTC, "UTC"
	}

	loc, err := period.LoadLocation(tz)
	if err != nil {
		slog.Warn("stored timezone does not load, using UTC",
			"timezone", tz,
			"error", err)
		return time.UTC, "UTC"
	}
	return loc, tz
}

func sumAmounts(rows []model.Expense) float64 {
	var total float64
	for i := range rows {
		total += rows[i].Amount
	}
	return model.RoundAmount(total)
}

// momPercent computes the month-over-month percentage with the explicit
// zero-division guard: a previous month of zero reads as 100% growth when
// anything was spent this month and 0% otherwise.
func momPercent(current, previous float64) float64 {
	if previous == 0 {
		if current > 0 {
			return 100
		}
		return 0
	}
	return (current - previous) / previous * 100
}

// dailySeries buckets the month's rows by local calendar day. Every day of
// the month gets an entry, zero spend included.
func dailySeries(rows []model.Expense, month period.Month, loc *time.Location) []model.DailyTotal {
	days := month.Days()
	totals := make([]float64, days)
	for i := range rows {
		day := period.DayOf(rows[i].OccurredAt, loc)
		if day < 1 || day > days {
			// Window and month disagree only if the store returned rows
			// outside the requested bounds.
			slog.Warn("expense outside month window", "expense_id", rows[i].ID, "day", day)
			continue
		}
		totals[day-1] += rows[i].Amount
	}

	series := make([]model.DailyTotal, days)
	for i := range series {
		series[i] = model.DailyTotal{Day: i + 1, Total: model.RoundAmount(totals[i])}
	}
	return series
}

// categoryShares totals the month by category and derives each category's
// percentage of the whole, largest first.
func categoryShares(rows []model.Expense, currentTotal float64, categories model.Categories) []model.CategoryShare {
	totals := make(map[int64]float64)
	for i := range rows {
		totals[rows[i].CategoryID] += rows[i].Amount
	}

	shares := make([]model.CategoryShare, 0, len(totals))
	for id, total := range totals {
		total = model.RoundAmount(total)
		if total == 0 {
			continue
		}
		share := model.CategoryShare{Total: total}
		if cat := categories.ByID(id); cat != nil {
			share.CategoryKey = cat.Key
			share.CategoryName = cat.Name
		} else {
			slog.Warn("expense references unknown category", "category_id", id)
		}
		if currentTotal > 0 {
			share.Percent = total / currentTotal * 100
		}
		shares = append(shares, share)
	}

	sort.Slice(shares, func(i, j int) bool {
		if shares[i].Total != shares[j].Total {
			return shares[i].Total > shares[j].Total
		}
		return shares[i].CategoryKey < shares[j].CategoryKey
	})
	return shares
}
