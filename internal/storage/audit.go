package storage

import (
	"context"
	"fmt"
	"time"

	"github.com/aleksanderujek/oro/internal/model"
)

// SaveCategorizationEvent records one provider invocation in the audit
// trail. Writes here are best-effort from the caller's point of view, but
// the store itself treats them like any other insert.
func (s *SQLiteStorage) SaveCategorizationEvent(ctx context.Context, event *model.CategorizationEvent) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateEvent(event); err != nil {
		return err
	}
	return s.saveCategorizationEventTx(ctx, s.db, event)
}

func (s *SQLiteStorage) saveCategorizationEventTx(ctx context.Context, q queryable, event *model.CategorizationEvent) error {
	if event.CreatedAt.IsZero() {
		event.CreatedAt = time.Now().UTC()
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO categorization_events (id, user_id, merchant_key, provider, confidence, latency_ms, timed_out, error_code, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		event.ID,
		event.UserID,
		event.MerchantKey,
		event.Provider,
		event.Confidence,
		event.Latency.Milliseconds(),
		event.TimedOut,
		event.ErrorCode,
		event.CreatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to save categorization event: %w", err)
	}
	return nil
}

// ListCategorizationEvents returns a user's most recent provider
// invocations, newest first.
func (s *SQLiteStorage) ListCategorizationEvents(ctx context.Context, userID string, limit int) ([]model.CategorizationEvent, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	return s.listCategorizationEventsTx(ctx, s.db, userID, limit)
}

func (s *SQLiteStorage) listCategorizationEventsTx(ctx context.Context, q queryable, userID string, limit int) ([]model.CategorizationEvent, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, user_id, merchant_key, provider, confidence, latency_ms, timed_out, error_code, created_at
		FROM categorization_events
		WHERE user_id = ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?
	`, userID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to query categorization events: %w", err)
	}
	defer func() { _ = rows.Close() }()

	var events []model.CategorizationEvent
	for rows.Next() {
		var (
			event     model.CategorizationEvent
			latencyMS int64
		)
		err := rows.Scan(
			&event.ID,
			&event.UserID,
			&event.MerchantKey,
			&event.Provider,
			&event.Confidence,
			&latencyMS,
			&event.TimedOut,
			&event.ErrorCode,
			&event.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan categorization event: %w", err)
		}
		event.Latency = time.Duration(latencyMS) * time.Millisecond
		events = append(events, event)
	}

	return events, rows.Err()
}
