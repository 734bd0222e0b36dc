package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aleksanderujek/oro/internal/model"
)

// GetProfile returns a user's profile, or nil when the user has not stored
// one yet. Callers fall back to UTC and no default account.
func (s *SQLiteStorage) GetProfile(ctx context.Context, userID string) (*model.Profile, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	return s.getProfileTx(ctx, s.db, userID)
}

func (s *SQLiteStorage) getProfileTx(ctx context.Context, q queryable, userID string) (*model.Profile, error) {
	var (
		profile model.Profile
		account string
	)
	err := q.QueryRowContext(ctx, `
		SELECT user_id, timezone, default_account, updated_at
		FROM profiles
		WHERE user_id = ?
	`, userID).Scan(&profile.UserID, &profile.Timezone, &account, &profile.UpdatedAt)

	if err == sql.ErrNoRows {
		return nil, nil // Profile not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query profile: %w", err)
	}

	profile.DefaultAccount = model.AccountTag(account)
	return &profile, nil
}

// SaveProfile creates or updates a user's profile.
func (s *SQLiteStorage) SaveProfile(ctx context.Context, profile *model.Profile) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateProfile(profile); err != nil {
		return err
	}
	return s.saveProfileTx(ctx, s.db, profile)
}

func (s *SQLiteStorage) saveProfileTx(ctx context.Context, q queryable, profile *model.Profile) error {
	if profile.UpdatedAt.IsZero() {
		profile.UpdatedAt = time.Now().UTC()
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO profiles (user_id, timezone, default_account, updated_at)
		VALUES (?, ?, ?, ?)
		ON CONFLICT(user_id) DO UPDATE SET
			timezone = excluded.timezone,
			default_account = excluded.default_account,
			updated_at = excluded.updated_at
	`, profile.UserID, profile.Timezone, string(profile.DefaultAccount), profile.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to save profile: %w", err)
	}
	return nil
}
