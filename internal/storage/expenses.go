package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/aleksanderujek/oro/internal/common"
	"github.com/aleksanderujek/oro/internal/model"
	"github.com/aleksanderujek/oro/internal/period"
	"github.com/aleksanderujek/oro/internal/service"
)

// ErrTextSearchUnavailable reports that the full-text index is not present
// in this database. Callers should retry with substring matching.
var ErrTextSearchUnavailable = errors.New("text search unavailable")

const expenseColumns = `id, user_id, amount, name, description, occurred_at, account, category_id, merchant_key, search_text, deleted_at, created_at, updated_at`

// CreateExpense inserts a new expense. Derived fields are recomputed and
// the amount is rounded to two decimals before the row is written, so the
// stored row can never drift from its source fields.
func (s *SQLiteStorage) CreateExpense(ctx context.Context, expense *model.Expense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateExpense(expense); err != nil {
		return err
	}
	return s.createExpenseTx(ctx, s.db, expense)
}

func (s *SQLiteStorage) createExpenseTx(ctx context.Context, q queryable, expense *model.Expense) error {
	expense.Rederive()
	expense.Amount = model.RoundAmount(expense.Amount)

	now := time.Now().UTC()
	if expense.CreatedAt.IsZero() {
		expense.CreatedAt = now
	}
	if expense.UpdatedAt.IsZero() {
		expense.UpdatedAt = now
	}

	_, err := q.ExecContext(ctx, `
		INSERT INTO expenses (`+expenseColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		expense.ID,
		expense.UserID,
		expense.Amount,
		expense.Name,
		expense.Description,
		expense.OccurredAt.UTC(),
		string(expense.Account),
		expense.CategoryID,
		expense.MerchantKey,
		expense.SearchText,
		nullTime(expense.DeletedAt),
		expense.CreatedAt,
		expense.UpdatedAt,
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return fmt.Errorf("%w: expense %s", common.ErrDuplicateEntry, expense.ID)
		}
		return fmt.Errorf("failed to create expense: %w", err)
	}
	return nil
}

// GetExpense retrieves a single expense owned by the user.
func (s *SQLiteStorage) GetExpense(ctx context.Context, userID, id string) (*model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	if err := validateString(id, "id"); err != nil {
		return nil, err
	}
	return s.getExpenseTx(ctx, s.db, userID, id)
}

func (s *SQLiteStorage) getExpenseTx(ctx context.Context, q queryable, userID, id string) (*model.Expense, error) {
	row := q.QueryRowContext(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
		WHERE user_id = ? AND id = ?
	`, userID, id)

	expense, err := scanExpenseRow(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: expense %s", common.ErrNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get expense: %w", err)
	}
	return expense, nil
}

// UpdateExpense rewrites an expense row. Derived fields are recomputed and
// updated_at is bumped on every call.
func (s *SQLiteStorage) UpdateExpense(ctx context.Context, expense *model.Expense) error {
	if err := validateContext(ctx); err != nil {
		return err
	}
	if err := validateExpense(expense); err != nil {
		return err
	}
	return s.updateExpenseTx(ctx, s.db, expense)
}

func (s *SQLiteStorage) updateExpenseTx(ctx context.Context, q queryable, expense *model.Expense) error {
	expense.Rederive()
	expense.Amount = model.RoundAmount(expense.Amount)
	expense.UpdatedAt = time.Now().UTC()

	result, err := q.ExecContext(ctx, `
		UPDATE expenses
		SET amount = ?, name = ?, description = ?, occurred_at = ?, account = ?,
			category_id = ?, merchant_key = ?, search_text = ?, deleted_at = ?, updated_at = ?
		WHERE user_id = ? AND id = ?
	`,
		expense.Amount,
		expense.Name,
		expense.Description,
		expense.OccurredAt.UTC(),
		string(expense.Account),
		expense.CategoryID,
		expense.MerchantKey,
		expense.SearchText,
		nullTime(expense.DeletedAt),
		expense.UpdatedAt,
		expense.UserID,
		expense.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update expense: %w", err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if rowsAffected == 0 {
		return fmt.Errorf("%w: expense %s", common.ErrNotFound, expense.ID)
	}
	return nil
}

// ListExpenses returns expenses matching the filter in descending
// (occurred_at, id) order. When the filter carries a keyset position, rows
// at or before that position are excluded.
func (s *SQLiteStorage) ListExpenses(ctx context.Context, userID string, filter service.ExpenseFilter) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	return s.listExpensesTx(ctx, s.db, userID, filter)
}

func (s *SQLiteStorage) listExpensesTx(ctx context.Context, q queryable, userID string, filter service.ExpenseFilter) ([]model.Expense, error) {
	var sb strings.Builder
	sb.WriteString(`SELECT ` + expenseColumns + ` FROM expenses WHERE user_id = ?`)
	args := []any{userID}

	if !filter.IncludeDeleted {
		sb.WriteString(` AND deleted_at IS NULL`)
	}
	if filter.From != nil {
		sb.WriteString(` AND occurred_at >= ?`)
		args = append(args, filter.From.UTC())
	}
	if filter.To != nil {
		sb.WriteString(` AND occurred_at < ?`)
		args = append(args, filter.To.UTC())
	}
	if filter.Account != "" {
		sb.WriteString(` AND account = ?`)
		args = append(args, string(filter.Account))
	}
	if len(filter.CategoryIDs) > 0 {
		sb.WriteString(` AND category_id IN (` + placeholders(len(filter.CategoryIDs)) + `)`)
		for _, id := range filter.CategoryIDs {
			args = append(args, id)
		}
	}
	if filter.Search != "" {
		switch filter.SearchMode {
		case service.SearchFullText:
			if !s.ftsAvailable {
				return nil, ErrTextSearchUnavailable
			}
			sb.WriteString(` AND rowid IN (SELECT rowid FROM expenses_fts WHERE expenses_fts MATCH ?)`)
			args = append(args, ftsQuery(filter.Search))
		case service.SearchSubstring:
			sb.WriteString(` AND search_text LIKE ? ESCAPE '\'`)
			args = append(args, "%"+escapeLike(filter.Search)+"%")
		}
	}
	if filter.After != nil {
		after := filter.After.OccurredAt.UTC()
		sb.WriteString(` AND (occurred_at < ? OR (occurred_at = ? AND id < ?))`)
		args = append(args, after, after, filter.After.ID)
	}

	sb.WriteString(` ORDER BY occurred_at DESC, id DESC`)
	if filter.Limit > 0 {
		sb.WriteString(` LIMIT ?`)
		args = append(args, filter.Limit)
	}

	rows, err := q.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanExpenses(rows)
}

// GetExpensesInWindow returns non-deleted expenses inside the UTC window,
// ordered by occurrence time ascending. The dashboard aggregates these rows
// in application code.
func (s *SQLiteStorage) GetExpensesInWindow(ctx context.Context, userID string, window period.Window, filter service.WindowFilter) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if err := validateString(userID, "userID"); err != nil {
		return nil, err
	}
	return s.getExpensesInWindowTx(ctx, s.db, userID, window, filter)
}

func (s *SQLiteStorage) getExpensesInWindowTx(ctx context.Context, q queryable, userID string, window period.Window, filter service.WindowFilter) ([]model.Expense, error) {
	if !window.To.After(window.From) {
		return nil, fmt.Errorf("%w: %v to %v", ErrInvalidDateRange, window.From, window.To)
	}

	var sb strings.Builder
	sb.WriteString(`SELECT ` + expenseColumns + ` FROM expenses
		WHERE user_id = ? AND deleted_at IS NULL AND occurred_at >= ? AND occurred_at < ?`)
	args := []any{userID, window.From.UTC(), window.To.UTC()}

	if filter.Account != "" {
		sb.WriteString(` AND account = ?`)
		args = append(args, string(filter.Account))
	}
	if len(filter.CategoryIDs) > 0 {
		sb.WriteString(` AND category_id IN (` + placeholders(len(filter.CategoryIDs)) + `)`)
		for _, id := range filter.CategoryIDs {
			args = append(args, id)
		}
	}
	sb.WriteString(` ORDER BY occurred_at ASC, id ASC`)

	rows, err := q.QueryContext(ctx, sb.String(), args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query expenses in window: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanExpenses(rows)
}

// CountExpenses returns the total number of expense rows across all users,
// including soft-deleted ones.
func (s *SQLiteStorage) CountExpenses(ctx context.Context) (int64, error) {
	if err := validateContext(ctx); err != nil {
		return 0, err
	}
	return s.countExpensesTx(ctx, s.db)
}

func (s *SQLiteStorage) countExpensesTx(ctx context.Context, q queryable) (int64, error) {
	var count int64
	err := q.QueryRowContext(ctx, `SELECT COUNT(*) FROM expenses`).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count expenses: %w", err)
	}
	return count, nil
}

// ScanExpenses pages through every expense row in id order, including
// soft-deleted ones. Pass the last id of the previous page to resume.
func (s *SQLiteStorage) ScanExpenses(ctx context.Context, afterID string, limit int) ([]model.Expense, error) {
	if err := validateContext(ctx); err != nil {
		return nil, err
	}
	if limit <= 0 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidLimit, limit)
	}
	return s.scanExpensesTx(ctx, s.db, afterID, limit)
}

func (s *SQLiteStorage) scanExpensesTx(ctx context.Context, q queryable, afterID string, limit int) ([]model.Expense, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT `+expenseColumns+`
		FROM expenses
		WHERE id > ?
		ORDER BY id ASC
		LIMIT ?
	`, afterID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to scan expenses: %w", err)
	}
	defer func() { _ = rows.Close() }()

	return scanExpenses(rows)
}

func scanExpenses(rows *sql.Rows) ([]model.Expense, error) {
	var expenses []model.Expense
	for rows.Next() {
		var (
			expense   model.Expense
			account   string
			deletedAt sql.NullTime
		)
		err := rows.Scan(
			&expense.ID,
			&expense.UserID,
			&expense.Amount,
			&expense.Name,
			&expense.Description,
			&expense.OccurredAt,
			&account,
			&expense.CategoryID,
			&expense.MerchantKey,
			&expense.SearchText,
			&deletedAt,
			&expense.CreatedAt,
			&expense.UpdatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan expense: %w", err)
		}
		expense.Account = model.AccountTag(account)
		if deletedAt.Valid {
			t := deletedAt.Time
			expense.DeletedAt = &t
		}
		expenses = append(expenses, expense)
	}
	return expenses, rows.Err()
}

func scanExpenseRow(row *sql.Row) (*model.Expense, error) {
	var (
		expense   model.Expense
		account   string
		deletedAt sql.NullTime
	)
	err := row.Scan(
		&expense.ID,
		&expense.UserID,
		&expense.Amount,
		&expense.Name,
		&expense.Description,
		&expense.OccurredAt,
		&account,
		&expense.CategoryID,
		&expense.MerchantKey,
		&expense.SearchText,
		&deletedAt,
		&expense.CreatedAt,
		&expense.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	expense.Account = model.AccountTag(account)
	if deletedAt.Valid {
		t := deletedAt.Time
		expense.DeletedAt = &t
	}
	return &expense, nil
}

func nullTime(t *time.Time) sql.NullTime {
	if t == nil {
		return sql.NullTime{}
	}
	return sql.NullTime{Time: t.UTC(), Valid: true}
}

func placeholders(n int) string {
	return strings.TrimSuffix(strings.Repeat("?,", n), ",")
}

// escapeLike escapes LIKE wildcards so a search term matches literally.
func escapeLike(s string) string {
	s = strings.ReplaceAll(s, `\`, `\\`)
	s = strings.ReplaceAll(s, `%`, `\%`)
	s = strings.ReplaceAll(s, `_`, `\_`)
	return s
}

// ftsQuery converts a folded search term into an FTS5 prefix query, one
// quoted prefix phrase per token.
func ftsQuery(term string) string {
	fields := strings.Fields(term)
	quoted := make([]string, 0, len(fields))
	for _, f := range fields {
		quoted = append(quoted, `"`+strings.ReplaceAll(f, `"`, `""`)+`"*`)
	}
	return strings.Join(quoted, " ")
}
