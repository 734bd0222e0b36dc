package storage

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/aleksanderujek/oro/internal/common"
	"github.com/aleksanderujek/oro/internal/model"
)

// GetMapping retrieves the mapping for an exact (user, merchant key) pair.
func (s *SQLiteStorage) GetMapping(ctx context.Context, userID, merchantKey string) (*model.MerchantMapping, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(merchantKey, "merchantKey"); err != nil {
		return nil, err
	}
	return s.getMappingTx(ctx, s.db, userID, merchantKey)
}

func (s *SQLiteStorage) getMappingTx(ctx context.Context, q queryable, userID, merchantKey string) (*model.MerchantMapping, error) {
	var mapping model.MerchantMapping

	err := q.QueryRowContext(ctx, `
		SELECT id, user_id, merchant_key, category_id, updated_at
		FROM merchant_mappings
		WHERE user_id = ? AND merchant_key = ?
	`, userID, merchantKey).Scan(
		&mapping.ID,
		&mapping.UserID,
		&mapping.MerchantKey,
		&mapping.CategoryID,
		&mapping.UpdatedAt,
	)

	if err == sql.ErrNoRows {
		return nil, sql.ErrNoRows // Not an error, just not found
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get mapping: %w", err)
	}

	return &mapping, nil
}

// ListMappings returns every mapping owned by the user. The fuzzy stage of
// merchant resolution scans this list on every uncached categorization, so
// results are cached briefly per user.
func (s *SQLiteStorage) ListMappings(ctx context.Context, userID string) ([]model.MerchantMapping, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}

	if mappings, ok := s.getCachedMappings(userID); ok {
		return mappings, nil
	}

	mappings, err := s.listMappingsTx(ctx, s.db, userID)
	if err != nil {
		return nil, err
	}

	s.cacheMappings(userID, mappings)
	return mappings, nil
}

func (s *SQLiteStorage) listMappingsTx(ctx context.Context, q queryable, userID string) ([]model.MerchantMapping, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, user_id, merchant_key, category_id, updated_at
		FROM merchant_mappings
		WHERE user_id = ?
		ORDER BY merchant_key
	`, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to query mappings: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var mappings []model.MerchantMapping
	for rows.Next() {
		var mapping model.MerchantMapping
		err := rows.Scan(
			&mapping.ID,
			&mapping.UserID,
			&mapping.MerchantKey,
			&mapping.CategoryID,
			&mapping.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan mapping: %w", err)
		}
		mappings = append(mappings, mapping)
	}

	return mappings, rows.Err()
}

// SaveMapping creates or updates the mapping for (user, merchant key). The
// upsert is a single atomic statement, so concurrent corrections can never
// produce two rows for the same key. The key itself is immutable; conflicts
// only move the category.
func (s *SQLiteStorage) SaveMapping(ctx context.Context, mapping *model.MerchantMapping) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateMapping(mapping); err != nil {
		return err
	}

	if err := s.saveMappingTx(ctx, s.db, mapping); err != nil {
		return err
	}

	s.invalidateMappingCache(mapping.UserID)
	return nil
}

func (s *SQLiteStorage) saveMappingTx(ctx context.Context, q queryable, mapping *model.MerchantMapping) error {
	if mapping.UpdatedAt.IsZero() {
		mapping.UpdatedAt = time.Now().UTC()
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO merchant_mappings (id, user_id, merchant_key, category_id, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(user_id, merchant_key) DO UPDATE SET
			category_id = excluded.category_id,
			updated_at = excluded.updated_at
	`, mapping.ID, mapping.UserID, mapping.MerchantKey, mapping.CategoryID, mapping.UpdatedAt)

	if err != nil {
		return fmt.Errorf("failed to save mapping: %w", err)
	}
	return nil
}

// DeleteMapping removes a user's mapping so future lookups fall through to
// provider categorization.
func (s *SQLiteStorage) DeleteMapping(ctx context.Context, userID, merchantKey string) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateString(userID, "userID"); err != nil {
		return err
	}
	if err := validateString(merchantKey, "merchantKey"); err != nil {
		return err
	}

	if err := s.deleteMappingTx(ctx, s.db, userID, merchantKey); err != nil {
		return err
	}

	s.invalidateMappingCache(userID)
	return nil
}

func (s *SQLiteStorage) deleteMappingTx(ctx context.Context, q queryable, userID, merchantKey string) error {
	result, err := q.ExecContext(ctx, `
		DELETE FROM merchant_mappings WHERE user_id = ? AND merchant_key = ?
	`, userID, merchantKey)
	if err != nil {
		return fmt.Errorf("failed to delete mapping: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return common.ErrNotFound
	}
	return nil
}

// getCachedMappings retrieves a user's mappings from the cache.
func (s *SQLiteStorage) getCachedMappings(userID string) ([]model.MerchantMapping, bool) {
	s.cacheMutex.RLock()

	if time.Now().After(s.cacheExpiry) {
		// Cache expired, needs to be cleared
		s.cacheMutex.RUnlock()
		s.cacheMutex.Lock()
		defer s.cacheMutex.Unlock()

		// Double-check after acquiring write lock
		if time.Now().After(s.cacheExpiry) {
			s.mappingCache = make(map[string][]model.MerchantMapping)
		}
		return nil, false
	}

	mappings, ok := s.mappingCache[userID]
	s.cacheMutex.RUnlock()
	return mappings, ok
}

// cacheMappings stores a user's mapping list in the cache.
func (s *SQLiteStorage) cacheMappings(userID string, mappings []model.MerchantMapping) {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()

	if len(s.mappingCache) == 0 {
		// Set cache expiry on first entry
		s.cacheExpiry = time.Now().Add(5 * time.Minute)
	}
	s.mappingCache[userID] = mappings
}

// invalidateMappingCache drops the cached list for one user after a write.
func (s *SQLiteStorage) invalidateMappingCache(userID string) {
	s.cacheMutex.Lock()
	defer s.cacheMutex.Unlock()
	delete(s.mappingCache, userID)
}
