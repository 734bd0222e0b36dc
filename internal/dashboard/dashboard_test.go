package dashboard

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksanderujek/oro/internal/model"
	"github.com/aleksanderujek/oro/internal/testutil"
)

func newTestAggregator(t *testing.T) (*Aggregator, *testutil.TestDB) {
	t.Helper()
	db := testutil.SetupTestDB(t)
	return New(db.Storage), db
}

func seedExpense(t *testing.T, db *testutil.TestDB, userID string, occurredAt time.Time, amount float64, categoryID int64, account model.AccountTag) *model.Expense {
	t.Helper()
	e := &model.Expense{
		ID:         uuid.New().String(),
		UserID:     userID,
		Name:       "Expense",
		Amount:     amount,
		OccurredAt: occurredAt,
		CategoryID: categoryID,
		Account:    account,
	}
	require.NoError(t, db.Storage.CreateExpense(context.Background(), e))
	return e
}

func TestAggregateMonthOverMonth(t *testing.T) {
	tests := []struct {
		name        string
		current     float64
		previous    float64
		wantDelta   float64
		wantPercent float64
	}{
		{name: "growth from zero", current: 500, previous: 0, wantDelta: 500, wantPercent: 100},
		{name: "nothing either month", current: 0, previous: 0, wantDelta: 0, wantPercent: 0},
		{name: "ten percent up", current: 1100, previous: 1000, wantDelta: 100, wantPercent: 10},
		{name: "spend dropped", current: 600, previous: 800, wantDelta: -200, wantPercent: -25},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			agg, db := newTestAggregator(t)
			ctx := context.Background()
			cat := db.MustCategory("groceries")

			if tt.current > 0 {
				seedExpense(t, db, "user-1", time.Date(2026, 3, 12, 10, 0, 0, 0, time.UTC), tt.current, cat.ID, "")
			}
			if tt.previous > 0 {
				seedExpense(t, db, "user-1", time.Date(2026, 2, 12, 10, 0, 0, 0, time.UTC), tt.previous, cat.ID, "")
			}

			snap, err := agg.Aggregate(ctx, "user-1", Request{Month: "2026-03"})
			require.NoError(t, err)

			assert.InDelta(t, tt.current, snap.Total, 0.001)
			assert.InDelta(t, tt.current, snap.MonthOverMonth.Current, 0.001)
			assert.InDelta(t, tt.previous, snap.MonthOverMonth.Previous, 0.001)
			assert.InDelta(t, tt.wantDelta, snap.MonthOverMonth.Delta, 0.001)
			assert.InDelta(t, tt.wantPercent, snap.MonthOverMonth.Percent, 0.001)
		})
	}
}

func TestAggregateDailySeriesCoversWholeMonth(t *testing.T) {
	agg, db := newTestAggregator(t)
	ctx := context.Background()
	cat := db.MustCategory("dining")

	seedExpense(t, db, "user-1", time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC), 10, cat.ID, "")
	seedExpense(t, db, "user-1", time.Date(2026, 3, 1, 20, 0, 0, 0, time.UTC), 5, cat.ID, "")
	seedExpense(t, db, "user-1", time.Date(2026, 3, 31, 12, 0, 0, 0, time.UTC), 7.5, cat.ID, "")

	snap, err := agg.Aggregate(ctx, "user-1", Request{Month: "2026-03"})
	require.NoError(t, err)

	require.Len(t, snap.Daily, 31)
	assert.Equal(t, 1, snap.Daily[0].Day)
	assert.InDelta(t, 15, snap.Daily[0].Total, 0.001)
	assert.Equal(t, 31, snap.Daily[30].Day)
	assert.InDelta(t, 7.5, snap.Daily[30].Total, 0.001)

	// Every other day is present with zero spend.
	for i := 1; i < 30; i++ {
		assert.Equal(t, i+1, snap.Daily[i].Day)
		assert.Zero(t, snap.Daily[i].Total, "day %d", i+1)
	}
}

func TestAggregateFebruaryLengths(t *testing.T) {
	agg, _ := newTestAggregator(t)
	ctx := context.Background()

	snap, err := agg.Aggregate(ctx, "user-1", Request{Month: "2026-02"})
	require.NoError(t, err)
	assert.Len(t, snap.Daily, 28)

	snap, err = agg.Aggregate(ctx, "user-1", Request{Month: "2028-02"})
	require.NoError(t, err)
	assert.Len(t, snap.Daily, 29)
}

func TestAggregateCategoryShares(t *testing.T) {
	agg, db := newTestAggregator(t)
	ctx := context.Background()
	groceries := db.MustCategory("groceries")
	dining := db.MustCategory("dining")
	coffee := db.MustCategory("coffee")

	seedExpense(t, db, "user-1", time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC), 300, groceries.ID, "")
	seedExpense(t, db, "user-1", time.Date(2026, 3, 10, 10, 0, 0, 0, time.UTC), 150, dining.ID, "")
	seedExpense(t, db, "user-1", time.Date(2026, 3, 15, 10, 0, 0, 0, time.UTC), 50, coffee.ID, "")

	snap, err := agg.Aggregate(ctx, "user-1", Request{Month: "2026-03"})
	require.NoError(t, err)

	require.Len(t, snap.TopCategories, 3)
	assert.Equal(t, "groceries", snap.TopCategories[0].CategoryKey)
	assert.Equal(t, "Groceries", snap.TopCategories[0].CategoryName)
	assert.InDelta(t, 300, snap.TopCategories[0].Total, 0.001)
	assert.InDelta(t, 60, snap.TopCategories[0].Percent, 0.001)
	assert.Equal(t, "dining", snap.TopCategories[1].CategoryKey)
	assert.InDelta(t, 30, snap.TopCategories[1].Percent, 0.001)
	assert.Equal(t, "coffee", snap.TopCategories[2].CategoryKey)
	assert.InDelta(t, 10, snap.TopCategories[2].Percent, 0.001)

	var percentSum float64
	for _, share := range snap.TopCategories {
		percentSum += share.Percent
	}
	assert.InDelta(t, 100, percentSum, 0.0001)
}

func TestAggregateBucketsByLocalCalendar(t *testing.T) {
	agg, db := newTestAggregator(t)
	ctx := context.Background()
	cat := db.MustCategory("dining")

	require.NoError(t, db.Storage.SaveProfile(ctx, &model.Profile{
		UserID:   "user-1",
		Timezone: "America/New_York",
	}))

	// 04:30 UTC on March 1st is the evening of February 28th in New York;
	// 03:00 UTC on March 15th is still March 14th local.
	seedExpense(t, db, "user-1", time.Date(2026, 3, 1, 4, 30, 0, 0, time.UTC), 40, cat.ID, "")
	seedExpense(t, db, "user-1", time.Date(2026, 3, 15, 3, 0, 0, 0, time.UTC), 25, cat.ID, "")

	snap, err := agg.Aggregate(ctx, "user-1", Request{Month: "2026-03"})
	require.NoError(t, err)

	assert.Equal(t, "America/New_York", snap.Timezone)
	assert.InDelta(t, 25, snap.Total, 0.001)
	assert.InDelta(t, 25, snap.Daily[13].Total, 0.001, "expected spend on March 14 local")
	assert.Zero(t, snap.Daily[14].Total)

	// The February snapshot picks up the late-night row instead.
	feb, err := agg.Aggregate(ctx, "user-1", Request{Month: "2026-02"})
	require.NoError(t, err)
	assert.InDelta(t, 40, feb.Total, 0.001)
	assert.InDelta(t, 40, feb.Daily[27].Total, 0.001, "expected spend on February 28 local")
}

func TestAggregateDefaultsToCurrentMonthInProfileTimezone(t *testing.T) {
	agg, db := newTestAggregator(t)
	ctx := context.Background()
	cat := db.MustCategory("dining")

	require.NoError(t, db.Storage.SaveProfile(ctx, &model.Profile{
		UserID:   "user-1",
		Timezone: "Pacific/Auckland",
	}))
	seedExpense(t, db, "user-1", time.Date(2026, 3, 31, 23, 0, 0, 0, time.UTC), 12, cat.ID, "")

	// 23:00 UTC on March 31st is already April 1st in Auckland, so with a
	// pinned "now" at the same instant the current month is April.
	agg.now = func() time.Time { return time.Date(2026, 3, 31, 23, 0, 0, 0, time.UTC) }

	snap, err := agg.Aggregate(ctx, "user-1", Request{})
	require.NoError(t, err)
	assert.Equal(t, "2026-04", snap.Month)
	assert.InDelta(t, 12, snap.Total, 0.001)
}

func TestAggregateFilters(t *testing.T) {
	agg, db := newTestAggregator(t)
	ctx := context.Background()
	groceries := db.MustCategory("groceries")
	dining := db.MustCategory("dining")

	seedExpense(t, db, "user-1", time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC), 100, groceries.ID, model.AccountCard)
	seedExpense(t, db, "user-1", time.Date(2026, 3, 6, 10, 0, 0, 0, time.UTC), 60, dining.ID, model.AccountCash)
	seedExpense(t, db, "user-2", time.Date(2026, 3, 7, 10, 0, 0, 0, time.UTC), 999, groceries.ID, model.AccountCard)

	byAccount, err := agg.Aggregate(ctx, "user-1", Request{Month: "2026-03", Account: model.AccountCard})
	require.NoError(t, err)
	assert.InDelta(t, 100, byAccount.Total, 0.001)

	byCategory, err := agg.Aggregate(ctx, "user-1", Request{Month: "2026-03", CategoryIDs: []int64{dining.ID}})
	require.NoError(t, err)
	assert.InDelta(t, 60, byCategory.Total, 0.001)
	require.Len(t, byCategory.TopCategories, 1)
	assert.Equal(t, "dining", byCategory.TopCategories[0].CategoryKey)
}

func TestAggregateExcludesSoftDeleted(t *testing.T) {
	agg, db := newTestAggregator(t)
	ctx := context.Background()
	cat := db.MustCategory("dining")

	seedExpense(t, db, "user-1", time.Date(2026, 3, 5, 10, 0, 0, 0, time.UTC), 100, cat.ID, "")
	gone := seedExpense(t, db, "user-1", time.Date(2026, 3, 6, 10, 0, 0, 0, time.UTC), 50, cat.ID, "")
	deletedAt := time.Date(2026, 3, 7, 8, 0, 0, 0, time.UTC)
	gone.DeletedAt = &deletedAt
	require.NoError(t, db.Storage.UpdateExpense(ctx, gone))

	snap, err := agg.Aggregate(ctx, "user-1", Request{Month: "2026-03"})
	require.NoError(t, err)
	assert.InDelta(t, 100, snap.Total, 0.001)
}

func TestAggregateRejectsInvalidRequests(t *testing.T) {
	agg, _ := newTestAggregator(t)
	ctx := context.Background()

	_, err := agg.Aggregate(ctx, "user-1", Request{Month: "March 2026"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = agg.Aggregate(ctx, "user-1", Request{Account: "cheque"})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	_, err = agg.Aggregate(ctx, "user-1", Request{CategoryIDs: []int64{0}})
	assert.ErrorIs(t, err, ErrInvalidRequest)

	many := make([]int64, MaxCategoryFilters+1)
	for i := range many {
		many[i] = int64(i + 1)
	}
	_, err = agg.Aggregate(ctx, "user-1", Request{CategoryIDs: many})
	assert.ErrorIs(t, err, ErrInvalidRequest)
}

func TestAggregateEmptyMonth(t *testing.T) {
	agg, _ := newTestAggregator(t)

	snap, err := agg.Aggregate(context.Background(), "user-1", Request{Month: "2026-03"})
	require.NoError(t, err)
	assert.Zero(t, snap.Total)
	assert.Empty(t, snap.TopCategories)
	assert.Len(t, snap.Daily, 31)
}
