package storage

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"strings"
)

// ExpectedSchemaVersion is the latest schema version that the application expects.
// If the database cannot be migrated to this version, it's a fatal error.
const ExpectedSchemaVersion = 3

// Migration represents a database schema migration.
type Migration struct {
	Up          func(*sql.Tx) error
	Description string
	Version     int
}

var migrations = []Migration{
	{
		Version:     1,
		Description: "Initial schema",
		Up: func(tx *sql.Tx) error {
			queries := []string{
				`CREATE TABLE IF NOT EXISTS categories (
					id INTEGER PRIMARY KEY AUTOINCREMENT,
					key TEXT UNIQUE NOT NULL,
					name TEXT NOT NULL,
					sort_order INTEGER NOT NULL DEFAULT 0
				)`,

				`CREATE TABLE IF NOT EXISTS profiles (
					user_id TEXT PRIMARY KEY,
					timezone TEXT NOT NULL DEFAULT '',
					default_account TEXT NOT NULL DEFAULT '',
					updated_at DATETIME NOT NULL
				)`,

				`CREATE TABLE IF NOT EXISTS expenses (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					amount REAL NOT NULL,
					name TEXT NOT NULL,
					description TEXT NOT NULL DEFAULT '',
					occurred_at DATETIME NOT NULL,
					account TEXT NOT NULL DEFAULT '',
					category_id INTEGER NOT NULL,
					merchant_key TEXT NOT NULL,
					search_text TEXT NOT NULL,
					deleted_at DATETIME,
					created_at DATETIME NOT NULL,
					updated_at DATETIME NOT NULL,
					FOREIGN KEY (category_id) REFERENCES categories(id)
				)`,
				`CREATE INDEX idx_expenses_user_occurred ON expenses(user_id, occurred_at DESC, id DESC)`,
				`CREATE INDEX idx_expenses_user_category ON expenses(user_id, category_id)`,
				`CREATE INDEX idx_expenses_user_merchant ON expenses(user_id, merchant_key)`,

				`CREATE TABLE IF NOT EXISTS merchant_mappings (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					merchant_key TEXT NOT NULL,
					category_id INTEGER NOT NULL,
					updated_at DATETIME NOT NULL,
					UNIQUE(user_id, merchant_key),
					FOREIGN KEY (category_id) REFERENCES categories(id)
				)`,

				`CREATE TABLE IF NOT EXISTS categorization_events (
					id TEXT PRIMARY KEY,
					user_id TEXT NOT NULL,
					merchant_key TEXT NOT NULL DEFAULT '',
					provider TEXT NOT NULL DEFAULT '',
					confidence REAL,
					latency_ms INTEGER NOT NULL DEFAULT 0,
					timed_out INTEGER NOT NULL DEFAULT 0,
					error_code TEXT NOT NULL DEFAULT '',
					created_at DATETIME NOT NULL
				)`,
				`CREATE INDEX idx_events_user_created ON categorization_events(user_id, created_at DESC)`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
	{
		Version:     2,
		Description: "Seed default categories",
		Up: func(tx *sql.Tx) error {
			seed := []struct {
				key  string
				name string
			}{
				{"uncategorized", "Uncategorized"},
				{"groceries", "Groceries"},
				{"dining", "Dining Out"},
				{"coffee", "Coffee"},
				{"transport", "Transport"},
				{"housing", "Housing"},
				{"utilities", "Utilities"},
				{"subscriptions", "Subscriptions"},
				{"entertainment", "Entertainment"},
				{"health", "Health"},
				{"shopping", "Shopping"},
				{"travel", "Travel"},
				{"education", "Education"},
				{"other", "Other"},
			}

			for i, cat := range seed {
				_, err := tx.Exec(`
					INSERT INTO categories (key, name, sort_order)
					VALUES (?, ?, ?)
					ON CONFLICT(key) DO NOTHING
				`, cat.key, cat.name, i)
				if err != nil {
					return fmt.Errorf("failed to seed category %s: %w", cat.key, err)
				}
			}
			return nil
		},
	},
	{
		Version:     3,
		Description: "Full-text index over expense search text",
		Up: func(tx *sql.Tx) error {
			// Requires the sqlite_fts5 build tag. Without it the index is
			// skipped and free-text search degrades to substring matching.
			queries := []string{
				`CREATE VIRTUAL TABLE expenses_fts USING fts5(
					search_text,
					content='expenses',
					content_rowid='rowid'
				)`,
				`CREATE TRIGGER expenses_fts_insert AFTER INSERT ON expenses BEGIN
					INSERT INTO expenses_fts(rowid, search_text) VALUES (new.rowid, new.search_text);
				END`,
				`CREATE TRIGGER expenses_fts_delete AFTER DELETE ON expenses BEGIN
					INSERT INTO expenses_fts(expenses_fts, rowid, search_text) VALUES ('delete', old.rowid, old.search_text);
				END`,
				`CREATE TRIGGER expenses_fts_update AFTER UPDATE OF search_text ON expenses BEGIN
					INSERT INTO expenses_fts(expenses_fts, rowid, search_text) VALUES ('delete', old.rowid, old.search_text);
					INSERT INTO expenses_fts(rowid, search_text) VALUES (new.rowid, new.search_text);
				END`,
				`INSERT INTO expenses_fts(rowid, search_text) SELECT rowid, search_text FROM expenses`,
			}

			for _, query := range queries {
				if _, err := tx.Exec(query); err != nil {
					if strings.Contains(err.Error(), "fts5") {
						slog.Warn("FTS5 unavailable, free-text search will use substring matching", "error", err)
						return nil
					}
					return fmt.Errorf("failed to execute query: %w", err)
				}
			}
			return nil
		},
	},
}

// Migrate applies all pending database migrations.
func (s *SQLiteStorage) Migrate(ctx context.Context) error {
	if err := validateContext(ctx); err != nil {
		return err
	}

	// Get current version
	var currentVersion int
	err := s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&currentVersion)
	if err != nil {
		return fmt.Errorf("failed to get schema version: %w", err)
	}

	for _, migration := range migrations {
		if migration.Version <= currentVersion {
			continue
		}

		tx, txErr := s.db.BeginTx(ctx, nil)
		if txErr != nil {
			return fmt.Errorf("failed to begin transaction: %w", txErr)
		}

		if upErr := migration.Up(tx); upErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("migration %d failed: %w", migration.Version, upErr)
		}

		if _, execErr := tx.Exec(fmt.Sprintf("PRAGMA user_version = %d", migration.Version)); execErr != nil {
			_ = tx.Rollback()
			return fmt.Errorf("failed to update schema version: %w", execErr)
		}

		if commitErr := tx.Commit(); commitErr != nil {
			return fmt.Errorf("failed to commit migration %d: %w", migration.Version, commitErr)
		}

		slog.Info("Applied migration",
			"version", migration.Version,
			"description", migration.Description)
	}

	// Verify we're at the expected schema version
	var finalVersion int
	err = s.db.QueryRowContext(ctx, "PRAGMA user_version").Scan(&finalVersion)
	if err != nil {
		return fmt.Errorf("failed to verify final schema version: %w", err)
	}

	if finalVersion != ExpectedSchemaVersion {
		return fmt.Errorf("database schema version mismatch: expected %d, got %d", ExpectedSchemaVersion, finalVersion)
	}

	s.ftsAvailable, err = s.detectTextSearch(ctx)
	if err != nil {
		return fmt.Errorf("failed to detect text search support: %w", err)
	}

	return nil
}

// detectTextSearch reports whether the full-text index exists.
func (s *SQLiteStorage) detectTextSearch(ctx context.Context) (bool, error) {
	var count int
	err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*) FROM sqlite_master WHERE type = 'table' AND name = 'expenses_fts'
	`).Scan(&count)
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
