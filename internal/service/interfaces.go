// Package service defines the interfaces for all application services.
package service

import (
	"context"
	"time"

	"github.com/aleksanderujek/oro/internal/cursor"
	"github.com/aleksanderujek/oro/internal/model"
	"github.com/aleksanderujek/oro/internal/period"
)

// SearchMode selects how the store matches a free-text search term.
type SearchMode int

const (
	// SearchFullText matches against the text-search index.
	SearchFullText SearchMode = iota
	// SearchSubstring matches by substring containment over the stored
	// search text. The query engine falls back to this when the index is
	// unavailable.
	SearchSubstring
)

// ExpenseFilter describes a filtered, keyset-paginated expense read. From
// and To bound occurred_at as a half-open [From, To) interval; After is the
// exclusive resume position of a previous page.
type ExpenseFilter struct {
	From           *time.Time
	To             *time.Time
	After          *cursor.Position
	Search         string
	CategoryIDs    []int64
	Account        model.AccountTag
	SearchMode     SearchMode
	Limit          int
	IncludeDeleted bool
}

// WindowFilter narrows a dashboard aggregation window by account and
// category. Soft-deleted rows are always excluded.
type WindowFilter struct {
	CategoryIDs []int64
	Account     model.AccountTag
}

// Storage defines the contract for our persistence layer.
type Storage interface {
	// Expense operations
	CreateExpense(ctx context.Context, expense *model.Expense) error
	GetExpense(ctx context.Context, userID, id string) (*model.Expense, error)
	UpdateExpense(ctx context.Context, expense *model.Expense) error
	ListExpenses(ctx context.Context, userID string, filter ExpenseFilter) ([]model.Expense, error)
	GetExpensesInWindow(ctx context.Context, userID string, window period.Window, filter WindowFilter) ([]model.Expense, error)
	CountExpenses(ctx context.Context) (int64, error)
	ScanExpenses(ctx context.Context, afterID string, limit int) ([]model.Expense, error)

	// Merchant mapping operations
	GetMapping(ctx context.Context, userID, merchantKey string) (*model.MerchantMapping, error)
	ListMappings(ctx context.Context, userID string) ([]model.MerchantMapping, error)
	SaveMapping(ctx context.Context, mapping *model.MerchantMapping) error
	DeleteMapping(ctx context.Context, userID, merchantKey string) error

	// Category operations
	GetCategories(ctx context.Context) ([]model.Category, error)
	GetCategoryByID(ctx context.Context, id int64) (*model.Category, error)
	GetCategoryByKey(ctx context.Context, key string) (*model.Category, error)

	// Profile operations
	GetProfile(ctx context.Context, userID string) (*model.Profile, error)
	SaveProfile(ctx context.Context, profile *model.Profile) error

	// Categorization audit trail
	SaveCategorizationEvent(ctx context.Context, event *model.CategorizationEvent) error
	ListCategorizationEvents(ctx context.Context, userID string, limit int) ([]model.CategorizationEvent, error)

	// Database management
	Migrate(ctx context.Context) error
	BeginTx(ctx context.Context) (Transaction, error)
	Close() error
}

// Transaction represents a database transaction.
type Transaction interface {
	Commit() error
	Rollback() error
	// Include all Storage methods for use within transaction
	Storage
}

// RetryOptions configures retry behavior for operations.
type RetryOptions struct {
	MaxAttempts  int
	InitialDelay time.Duration
	MaxDelay     time.Duration
	Multiplier   float64
}
