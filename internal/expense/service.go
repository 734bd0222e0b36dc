// Package expense implements the expense lifecycle: creation through
// categorization, edits, explicit category correction, soft delete, and
// time-bounded restore.
package expense

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aleksanderujek/oro/internal/common"
	"github.com/aleksanderujek/oro/internal/engine"
	"github.com/aleksanderujek/oro/internal/model"
	"github.com/aleksanderujek/oro/internal/service"
)

// ErrDeleted reports an edit against a soft-deleted expense. The row must
// be restored before it can change again.
var ErrDeleted = errors.New("expense is deleted")

// Service coordinates expense writes: every create funnels through the
// categorization engine and every persisted row gets its derived fields
// recomputed by the store.
type Service struct {
	storage service.Storage
	engine  *engine.Engine
	now     func() time.Time
}

// NewService creates the expense lifecycle service.
func NewService(storage service.Storage, eng *engine.Engine) *Service {
	return &Service{
		storage: storage,
		engine:  eng,
		now:     time.Now,
	}
}

// CreateInput is the caller-supplied shape of a new expense. CategoryID
// zero means "let categorization decide"; a non-zero id is an explicit
// pick that skips the engine entirely.
type CreateInput struct {
	OccurredAt  time.Time
	Name        string
	Description string
	Account     model.AccountTag
	CategoryID  int64
	Amount      float64
}

// Create validates the input, resolves the account against the profile
// default, categorizes the draft, and persists the expense. The returned
// outcome is nil when the caller picked the category explicitly.
func (s *Service) Create(ctx context.Context, userID string, input CreateInput) (*model.Expense, *model.CategorizationOutcome, error) {
	draft := model.ExpenseDraft{
		Name:        input.Name,
		Description: input.Description,
		Amount:      input.Amount,
		OccurredAt:  input.OccurredAt,
		Account:     input.Account,
	}
	if err := draft.Validate(); err != nil {
		return nil, nil, err
	}

	account, err := s.resolveAccount(ctx, userID, input.Account)
	if err != nil {
		return nil, nil, err
	}
	draft.Account = account

	var (
		categoryID int64
		outcome    *model.CategorizationOutcome
	)
	if input.CategoryID != 0 {
		category, catErr := s.storage.GetCategoryByID(ctx, input.CategoryID)
		if catErr != nil {
			return nil, nil, fmt.Errorf("failed to load category: %w", catErr)
		}
		if category == nil {
			return nil, nil, fmt.Errorf("%w: category %d", common.ErrNotFound, input.CategoryID)
		}
		categoryID = category.ID
	} else {
		outcome, err = s.engine.Categorize(ctx, userID, draft)
		if err != nil {
			return nil, nil, err
		}
		if outcome.Applied() {
			categoryID = outcome.Category.ID
		} else {
			categoryID, err = s.uncategorizedID(ctx)
			if err != nil {
				return nil, nil, err
			}
		}
	}

	exp := &model.Expense{
		ID:          uuid.New().String(),
		UserID:      userID,
		Name:        draft.Name,
		Description: draft.Description,
		Amount:      draft.Amount,
		OccurredAt:  draft.OccurredAt.UTC(),
		Account:     draft.Account,
		CategoryID:  categoryID,
	}
	if err := s.storage.CreateExpense(ctx, exp); err != nil {
		return nil, nil, err
	}

	slog.Info("expense created",
		"expense_id", exp.ID,
		"user_id", userID,
		"category_id", categoryID)

	return exp, outcome, nil
}

// UpdateInput carries a partial edit. Nil fields stay unchanged. A
// category change through Update is an ordinary edit; Correct is the
// explicit action that also teaches the mapping layer.
type UpdateInput struct {
	Name        *string
	Description *string
	Amount      *float64
	OccurredAt  *time.Time
	Account     *model.AccountTag
	CategoryID  *int64
}

// Update applies a partial edit to a live expense. The store recomputes
// the derived merchant key and search text from the new field values.
func (s *Service) Update(ctx context.Context, userID, id string, input UpdateInput) (*model.Expense, error) {
	exp, err := s.storage.GetExpense(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if exp.Deleted() {
		return nil, fmt.Errorf("%w: expense %s", ErrDeleted, id)
	}

	if input.Name != nil {
		exp.Name = *input.Name
	}
	if input.Description != nil {
		exp.Description = *input.Description
	}
	if input.Amount != nil {
		exp.Amount = *input.Amount
	}
	if input.OccurredAt != nil {
		exp.OccurredAt = input.OccurredAt.UTC()
	}
	if input.Account != nil {
		exp.Account = *input.Account
	}
	if input.CategoryID != nil {
		category, catErr := s.storage.GetCategoryByID(ctx, *input.CategoryID)
		if catErr != nil {
			return nil, fmt.Errorf("failed to load category: %w", catErr)
		}
		if category == nil {
			return nil, fmt.Errorf("%w: category %d", common.ErrNotFound, *input.CategoryID)
		}
		exp.CategoryID = category.ID
	}

	draft := model.ExpenseDraft{
		Name:        exp.Name,
		Description: exp.Description,
		Amount:      exp.Amount,
		OccurredAt:  exp.OccurredAt,
		Account:     exp.Account,
	}
	if err := draft.Validate(); err != nil {
		return nil, err
	}

	if err := s.storage.UpdateExpense(ctx, exp); err != nil {
		return nil, err
	}
	return exp, nil
}

// Correct records the user's explicit category choice for an expense and
// teaches the mapping layer, so future drafts with the same merchant
// resolve without the provider. Re-applying the same correction is a
// no-op state-wise.
func (s *Service) Correct(ctx context.Context, userID, id string, categoryID int64) (*model.Expense, error) {
	exp, err := s.storage.GetExpense(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if exp.Deleted() {
		return nil, fmt.Errorf("%w: expense %s", ErrDeleted, id)
	}

	category, err := s.storage.GetCategoryByID(ctx, categoryID)
	if err != nil {
		return nil, fmt.Errorf("failed to load category: %w", err)
	}
	if category == nil {
		return nil, fmt.Errorf("%w: category %d", common.ErrNotFound, categoryID)
	}

	exp.CategoryID = category.ID
	if err := s.storage.UpdateExpense(ctx, exp); err != nil {
		return nil, err
	}

	if err := s.engine.Learn(ctx, userID, exp.Name, category.ID); err != nil {
		// The correction itself stuck; a failed mapping upsert only means
		// the next occurrence goes through the provider again.
		slog.Warn("failed to learn merchant mapping from correction",
			"expense_id", id,
			"error", err)
	}

	slog.Info("expense category corrected",
		"expense_id", id,
		"user_id", userID,
		"category", category.Key)

	return exp, nil
}

// Delete soft-deletes an expense. Deleting an already-deleted expense is a
// no-op, preserving the original deletion time and its restore window.
func (s *Service) Delete(ctx context.Context, userID, id string) error {
	exp, err := s.storage.GetExpense(ctx, userID, id)
	if err != nil {
		return err
	}
	if exp.Deleted() {
		return nil
	}

	deletedAt := s.now().UTC()
	exp.DeletedAt = &deletedAt
	if err := s.storage.UpdateExpense(ctx, exp); err != nil {
		return err
	}

	slog.Info("expense soft-deleted", "expense_id", id, "user_id", userID)
	return nil
}

// Restore clears the soft-delete marker while the restore window is open.
// Restoring a live expense is a caller contract violation and fails with
// ErrNotDeleted; past the window the row is owed to the purge process and
// restore fails with ErrRestoreExpired.
func (s *Service) Restore(ctx context.Context, userID, id string) (*model.Expense, error) {
	exp, err := s.storage.GetExpense(ctx, userID, id)
	if err != nil {
		return nil, err
	}
	if !exp.Deleted() {
		return nil, fmt.Errorf("%w: expense %s", model.ErrNotDeleted, id)
	}
	if !exp.Restorable(s.now()) {
		return nil, fmt.Errorf("%w: expense %s", model.ErrRestoreExpired, id)
	}

	exp.DeletedAt = nil
	if err := s.storage.UpdateExpense(ctx, exp); err != nil {
		return nil, err
	}

	slog.Info("expense restored", "expense_id", id, "user_id", userID)
	return exp, nil
}

// Get returns one expense owned by the user, soft-deleted or not.
func (s *Service) Get(ctx context.Context, userID, id string) (*model.Expense, error) {
	return s.storage.GetExpense(ctx, userID, id)
}

// resolveAccount applies the two-step account decision: an explicit tag
// wins and becomes the stored default when it differs, otherwise the
// profile default applies. The profile write is the only side effect and
// happens here, not inside the decision.
func (s *Service) resolveAccount(ctx context.Context, userID string, explicit model.AccountTag) (model.AccountTag, error) {
	profile, err := s.storage.GetProfile(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("failed to load profile: %w", err)
	}

	var stored model.AccountTag
	if profile != nil {
		stored = profile.DefaultAccount
	}

	account, persistDefault := model.ResolveAccount(explicit, stored)
	if persistDefault {
		if profile == nil {
			profile = &model.Profile{UserID: userID}
		}
		profile.DefaultAccount = account
		profile.UpdatedAt = s.now().UTC()
		if err := s.storage.SaveProfile(ctx, profile); err != nil {
			// The default is a convenience; the expense itself still
			// carries the right account.
			slog.Warn("failed to persist default account",
				"user_id", userID,
				"error", err)
		}
	}

	return account, nil
}

func (s *Service) uncategorizedID(ctx context.Context) (int64, error) {
	category, err := s.storage.GetCategoryByKey(ctx, model.UncategorizedKey)
	if err != nil {
		return 0, fmt.Errorf("failed to load default category: %w", err)
	}
	if category == nil {
		return 0, fmt.Errorf("%w: category %q must be seeded", common.ErrNotFound, model.UncategorizedKey)
	}
	return category.ID, nil
}
