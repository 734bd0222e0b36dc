// Package testutil provides shared test fixtures for the oro project.
package testutil

import (
	"context"
	"testing"

	"github.com/aleksanderujek/oro/internal/model"
	"github.com/aleksanderujek/oro/internal/storage"
)

// TestDB wraps an in-memory migrated database with the seeded categories.
type TestDB struct {
	Storage    *storage.SQLiteStorage
	t          *testing.T
	Categories model.Categories
}

// SetupTestDB creates a new in-memory test database. Migrations run
// automatically, which also seeds the category table, and the database is
// closed when the test finishes.
func SetupTestDB(t *testing.T) *TestDB {
	t.Helper()

	store, err := storage.NewSQLiteStorage(":memory:")
	if err != nil {
		t.Fatalf("failed to create test database: %v", err)
	}

	ctx := context.Background()
	if err := store.Migrate(ctx); err != nil {
		t.Fatalf("failed to run migrations: %v", err)
	}

	cats, err := store.GetCategories(ctx)
	if err != nil {
		t.Fatalf("failed to load seeded categories: %v", err)
	}

	t.Cleanup(func() {
		_ = store.Close()
	})

	return &TestDB{
		Storage:    store,
		Categories: model.Categories(cats),
		t:          t,
	}
}

// MustCategory returns the seeded category with the given key or fails the
// test.
func (db *TestDB) MustCategory(key string) model.Category {
	db.t.Helper()
	cat := db.Categories.ByKey(key)
	if cat == nil {
		db.t.Fatalf("category %q not seeded", key)
	}
	return *cat
}
