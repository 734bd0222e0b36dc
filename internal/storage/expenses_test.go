package storage

import (
	"context"
	"errors"
	"sort"
	"testing"
	"time"

	"github.com/aleksanderujek/oro/internal/common"
	"github.com/aleksanderujek/oro/internal/cursor"
	"github.com/aleksanderujek/oro/internal/model"
	"github.com/aleksanderujek/oro/internal/period"
	"github.com/aleksanderujek/oro/internal/service"
)

func TestExpenseCreateAndGet(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cat := testCategory(t, store, "coffee")
	expense := testExpense("user-1", time.Date(2026, 3, 15, 9, 30, 0, 0, time.UTC), "The Coffee Shop!!", 4.567, cat.ID)
	expense.Description = "Morning latte"

	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("Failed to create expense: %v", err)
	}

	got, err := store.GetExpense(ctx, "user-1", expense.ID)
	if err != nil {
		t.Fatalf("Failed to get expense: %v", err)
	}

	// Derived fields are computed at write time.
	if got.MerchantKey != "thecoffeeshop" {
		t.Errorf("Expected merchant key 'thecoffeeshop', got %q", got.MerchantKey)
	}
	if got.SearchText != "the coffee shop!! morning latte" {
		t.Errorf("Unexpected search text %q", got.SearchText)
	}
	if got.Amount != 4.57 {
		t.Errorf("Expected amount rounded to 4.57, got %v", got.Amount)
	}
	if !got.OccurredAt.Equal(expense.OccurredAt) {
		t.Errorf("Occurrence time changed: got %v, want %v", got.OccurredAt, expense.OccurredAt)
	}
	if got.CreatedAt.IsZero() || got.UpdatedAt.IsZero() {
		t.Error("Timestamps not set on create")
	}
	if got.Deleted() {
		t.Error("New expense must not be deleted")
	}
}

func TestExpenseCreateDuplicate(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cat := testCategory(t, store, "coffee")
	expense := testExpense("user-1", time.Now().UTC(), "Coffee", 3, cat.ID)

	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("Failed to create expense: %v", err)
	}
	err := store.CreateExpense(ctx, expense)
	if !errors.Is(err, common.ErrDuplicateEntry) {
		t.Errorf("Expected ErrDuplicateEntry, got %v", err)
	}
}

func TestExpenseGetScopedToUser(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cat := testCategory(t, store, "coffee")
	expense := testExpense("user-1", time.Now().UTC(), "Coffee", 3, cat.ID)
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("Failed to create expense: %v", err)
	}

	_, err := store.GetExpense(ctx, "user-2", expense.ID)
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound for foreign user, got %v", err)
	}
}

func TestExpenseUpdateRecomputesDerivedFields(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cat := testCategory(t, store, "groceries")
	expense := testExpense("user-1", time.Now().UTC(), "Old Name", 10, cat.ID)
	if err := store.CreateExpense(ctx, expense); err != nil {
		t.Fatalf("Failed to create expense: %v", err)
	}

	expense.Name = "Trader Joe's #55"
	expense.Description = "weekly run"
	if err := store.UpdateExpense(ctx, expense); err != nil {
		t.Fatalf("Failed to update expense: %v", err)
	}

	got, err := store.GetExpense(ctx, "user-1", expense.ID)
	if err != nil {
		t.Fatalf("Failed to get expense: %v", err)
	}
	if got.MerchantKey != "traderjoes55" {
		t.Errorf("Derived merchant key not recomputed: %q", got.MerchantKey)
	}
	if got.SearchText != "trader joe's #55 weekly run" {
		t.Errorf("Derived search text not recomputed: %q", got.SearchText)
	}
}

func TestExpenseUpdateMissing(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	cat := testCategory(t, store, "groceries")
	expense := testExpense("user-1", time.Now().UTC(), "Nothing", 10, cat.ID)

	err := store.UpdateExpense(context.Background(), expense)
	if !errors.Is(err, common.ErrNotFound) {
		t.Errorf("Expected ErrNotFound, got %v", err)
	}
}

func TestExpenseSoftDeleteFiltering(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cat := testCategory(t, store, "dining")
	keep := testExpense("user-1", time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC), "Keep", 10, cat.ID)
	gone := testExpense("user-1", time.Date(2026, 3, 11, 12, 0, 0, 0, time.UTC), "Gone", 20, cat.ID)
	for _, e := range []*model.Expense{keep, gone} {
		if err := store.CreateExpense(ctx, e); err != nil {
			t.Fatalf("Failed to create expense: %v", err)
		}
	}

	deletedAt := time.Date(2026, 3, 12, 8, 0, 0, 0, time.UTC)
	gone.DeletedAt = &deletedAt
	if err := store.UpdateExpense(ctx, gone); err != nil {
		t.Fatalf("Failed to soft delete: %v", err)
	}

	visible, err := store.ListExpenses(ctx, "user-1", service.ExpenseFilter{})
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(visible) != 1 || visible[0].ID != keep.ID {
		t.Errorf("Expected only the kept expense, got %d rows", len(visible))
	}

	all, err := store.ListExpenses(ctx, "user-1", service.ExpenseFilter{IncludeDeleted: true})
	if err != nil {
		t.Fatalf("Failed to list with deleted: %v", err)
	}
	if len(all) != 2 {
		t.Errorf("Expected 2 rows including deleted, got %d", len(all))
	}
	for _, e := range all {
		if e.ID == gone.ID && !e.Deleted() {
			t.Error("Soft-deleted row lost its deletion marker")
		}
	}
}

func TestExpenseListOrdering(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cat := testCategory(t, store, "dining")
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)

	// Three distinct timestamps plus two sharing one instant.
	times := []time.Time{
		base.AddDate(0, 0, 2),
		base.AddDate(0, 0, 1),
		base.AddDate(0, 0, 1),
		base,
	}
	for i, ts := range times {
		e := testExpense("user-1", ts, "Meal", float64(i+1), cat.ID)
		if err := store.CreateExpense(ctx, e); err != nil {
			t.Fatalf("Failed to create expense: %v", err)
		}
	}

	got, err := store.ListExpenses(ctx, "user-1", service.ExpenseFilter{})
	if err != nil {
		t.Fatalf("Failed to list: %v", err)
	}
	if len(got) != 4 {
		t.Fatalf("Expected 4 rows, got %d", len(got))
	}

	for i := 1; i < len(got); i++ {
		prev, cur := got[i-1], got[i]
		if cur.OccurredAt.After(prev.OccurredAt) {
			t.Errorf("Rows out of time order at index %d", i)
		}
		if cur.OccurredAt.Equal(prev.OccurredAt) && cur.ID > prev.ID {
			t.Errorf("Tie on timestamp not broken by id descending at index %d", i)
		}
	}
}

func TestExpenseListKeysetPagination(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cat := testCategory(t, store, "dining")
	base := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	for i := 0; i < 3; i++ {
		e := testExpense("user-1", base.AddDate(0, 0, i), "Meal", float64(i+1), cat.ID)
		if err := store.CreateExpense(ctx, e); err != nil {
			t.Fatalf("Failed to create expense: %v", err)
		}
	}

	page1, err := store.ListExpenses(ctx, "user-1", service.ExpenseFilter{Limit: 2})
	if err != nil {
		t.Fatalf("Failed to list page 1: %v", err)
	}
	if len(page1) != 2 {
		t.Fatalf("Expected 2 rows on page 1, got %d", len(page1))
	}

	last := page1[len(page1)-1]
	page2, err := store.ListExpenses(ctx, "user-1", service.ExpenseFilter{
		Limit: 2,
		After: &cursor.Position{OccurredAt: last.OccurredAt, ID: last.ID},
	})
	if err != nil {
		t.Fatalf("Failed to list page 2: %v", err)
	}
	if len(page2) != 1 {
		t.Fatalf("Expected 1 row on page 2, got %d", len(page2))
	}

	// The boundary row must not repeat and nothing may be skipped.
	seen := map[string]bool{}
	for _, e := range append(page1, page2...) {
		if seen[e.ID] {
			t.Errorf("Row %s returned twice across pages", e.ID)
		}
		seen[e.ID] = true
	}
	if len(seen) != 3 {
		t.Errorf("Expected 3 distinct rows across pages, got %d", len(seen))
	}
}

func TestExpenseListFilters(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	coffee := testCategory(t, store, "coffee")
	groceries := testCategory(t, store, "groceries")
	base := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	cardCoffee := testExpense("user-1", base, "Latte", 4, coffee.ID)
	cardCoffee.Account = model.AccountCard
	cashShop := testExpense("user-1", base.AddDate(0, 0, 1), "Market", 30, groceries.ID)
	cashShop.Account = model.AccountCash
	other := testExpense("user-2", base, "Latte", 4, coffee.ID)
	for _, e := range []*model.Expense{cardCoffee, cashShop, other} {
		if err := store.CreateExpense(ctx, e); err != nil {
			t.Fatalf("Failed to create expense: %v", err)
		}
	}

	byAccount, err := store.ListExpenses(ctx, "user-1", service.ExpenseFilter{Account: model.AccountCard})
	if err != nil {
		t.Fatalf("Failed to filter by account: %v", err)
	}
	if len(byAccount) != 1 || byAccount[0].ID != cardCoffee.ID {
		t.Errorf("Account filter returned wrong rows: %d", len(byAccount))
	}

	byCategory, err := store.ListExpenses(ctx, "user-1", service.ExpenseFilter{CategoryIDs: []int64{groceries.ID}})
	if err != nil {
		t.Fatalf("Failed to filter by category: %v", err)
	}
	if len(byCategory) != 1 || byCategory[0].ID != cashShop.ID {
		t.Errorf("Category filter returned wrong rows: %d", len(byCategory))
	}

	from := base.AddDate(0, 0, 1)
	byTime, err := store.ListExpenses(ctx, "user-1", service.ExpenseFilter{From: &from})
	if err != nil {
		t.Fatalf("Failed to filter by time: %v", err)
	}
	if len(byTime) != 1 || byTime[0].ID != cashShop.ID {
		t.Errorf("Time filter returned wrong rows: %d", len(byTime))
	}
}

func TestExpenseSearchSubstring(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cat := testCategory(t, store, "coffee")
	latte := testExpense("user-1", time.Now().UTC(), "Café Latte", 4, cat.ID)
	bagel := testExpense("user-1", time.Now().UTC().Add(time.Hour), "Bagel", 3, cat.ID)
	for _, e := range []*model.Expense{latte, bagel} {
		if err := store.CreateExpense(ctx, e); err != nil {
			t.Fatalf("Failed to create expense: %v", err)
		}
	}

	// The stored search text is accent-folded, so a folded term matches.
	got, err := store.ListExpenses(ctx, "user-1", service.ExpenseFilter{
		Search:     "cafe",
		SearchMode: service.SearchSubstring,
	})
	if err != nil {
		t.Fatalf("Failed to search: %v", err)
	}
	if len(got) != 1 || got[0].ID != latte.ID {
		t.Errorf("Substring search returned wrong rows: %d", len(got))
	}

	// LIKE wildcards in the term must match literally, not as wildcards.
	got, err = store.ListExpenses(ctx, "user-1", service.ExpenseFilter{
		Search:     "100%",
		SearchMode: service.SearchSubstring,
	})
	if err != nil {
		t.Fatalf("Failed to search with wildcard char: %v", err)
	}
	if len(got) != 0 {
		t.Errorf("Wildcard characters leaked into LIKE pattern: %d rows", len(got))
	}
}

func TestExpenseSearchFullTextAvailability(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cat := testCategory(t, store, "coffee")
	latte := testExpense("user-1", time.Now().UTC(), "Morning Latte", 4, cat.ID)
	if err := store.CreateExpense(ctx, latte); err != nil {
		t.Fatalf("Failed to create expense: %v", err)
	}

	got, err := store.ListExpenses(ctx, "user-1", service.ExpenseFilter{
		Search:     "latte",
		SearchMode: service.SearchFullText,
	})

	if !store.ftsAvailable {
		if !errors.Is(err, ErrTextSearchUnavailable) {
			t.Fatalf("Expected ErrTextSearchUnavailable without the index, got %v", err)
		}
		return
	}

	if err != nil {
		t.Fatalf("Full-text search failed: %v", err)
	}
	if len(got) != 1 || got[0].ID != latte.ID {
		t.Errorf("Full-text search returned wrong rows: %d", len(got))
	}
}

func TestGetExpensesInWindow(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cat := testCategory(t, store, "dining")
	window := period.Month{Year: 2026, Month: time.March}.Bounds(time.UTC)

	inside := testExpense("user-1", time.Date(2026, 3, 15, 12, 0, 0, 0, time.UTC), "In", 10, cat.ID)
	boundary := testExpense("user-1", window.To, "Boundary", 20, cat.ID)
	before := testExpense("user-1", time.Date(2026, 2, 28, 23, 0, 0, 0, time.UTC), "Before", 30, cat.ID)
	deleted := testExpense("user-1", time.Date(2026, 3, 20, 12, 0, 0, 0, time.UTC), "Deleted", 40, cat.ID)
	for _, e := range []*model.Expense{inside, boundary, before, deleted} {
		if err := store.CreateExpense(ctx, e); err != nil {
			t.Fatalf("Failed to create expense: %v", err)
		}
	}
	deletedAt := time.Now().UTC()
	deleted.DeletedAt = &deletedAt
	if err := store.UpdateExpense(ctx, deleted); err != nil {
		t.Fatalf("Failed to soft delete: %v", err)
	}

	got, err := store.GetExpensesInWindow(ctx, "user-1", window, service.WindowFilter{})
	if err != nil {
		t.Fatalf("Failed to get window: %v", err)
	}
	if len(got) != 1 || got[0].ID != inside.ID {
		t.Errorf("Window fetch returned wrong rows: %d", len(got))
	}
}

func TestGetExpensesInWindowInvalidRange(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()

	now := time.Now().UTC()
	_, err := store.GetExpensesInWindow(context.Background(), "user-1", period.Window{From: now, To: now.Add(-time.Hour)}, service.WindowFilter{})
	if !errors.Is(err, ErrInvalidDateRange) {
		t.Errorf("Expected ErrInvalidDateRange, got %v", err)
	}
}

func TestCountAndScanExpenses(t *testing.T) {
	store, cleanup := createTestStorage(t)
	defer cleanup()
	ctx := context.Background()

	cat := testCategory(t, store, "other")
	var ids []string
	for i := 0; i < 5; i++ {
		e := testExpense("user-1", time.Now().UTC(), "Row", 1, cat.ID)
		if err := store.CreateExpense(ctx, e); err != nil {
			t.Fatalf("Failed to create expense: %v", err)
		}
		ids = append(ids, e.ID)
	}
	sort.Strings(ids)

	count, err := store.CountExpenses(ctx)
	if err != nil {
		t.Fatalf("Failed to count: %v", err)
	}
	if count != 5 {
		t.Errorf("Expected count 5, got %d", count)
	}

	var scanned []string
	after := ""
	for {
		batch, err := store.ScanExpenses(ctx, after, 2)
		if err != nil {
			t.Fatalf("Failed to scan: %v", err)
		}
		if len(batch) == 0 {
			break
		}
		for _, e := range batch {
			scanned = append(scanned, e.ID)
		}
		after = batch[len(batch)-1].ID
	}

	if len(scanned) != 5 {
		t.Fatalf("Scan visited %d rows, want 5", len(scanned))
	}
	for i, id := range ids {
		if scanned[i] != id {
			t.Errorf("Scan order mismatch at %d: got %s, want %s", i, scanned[i], id)
		}
	}
}
