// Package model defines the core domain models used throughout the application.
package model

import (
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/aleksanderujek/oro/internal/normalize"
)

// Field limits for expense records.
const (
	MaxNameLength        = 64
	MaxDescriptionLength = 200
)

// RestoreWindow is how long a soft-deleted expense may still be restored.
// Past this window an external purge process removes the row for good.
const RestoreWindow = 7 * 24 * time.Hour

// AccountTag identifies which account an expense was paid from.
type AccountTag string

// Known account tags.
const (
	AccountCash    AccountTag = "cash"
	AccountCard    AccountTag = "card"
	AccountBank    AccountTag = "bank"
	AccountSavings AccountTag = "savings"
)

// Valid reports whether the tag is a member of the known set.
// The empty tag is valid: the account field is optional.
func (a AccountTag) Valid() bool {
	switch a {
	case "", AccountCash, AccountCard, AccountBank, AccountSavings:
		return true
	default:
		return false
	}
}

// ParseAccountTag converts user input into an AccountTag.
func ParseAccountTag(s string) (AccountTag, error) {
	tag := AccountTag(strings.ToLower(strings.TrimSpace(s)))
	if !tag.Valid() {
		return "", fmt.Errorf("%w: account %q", ErrInvalidAccount, s)
	}
	return tag, nil
}

// Expense is a single spending record owned by one user.
//
// MerchantKey and SearchText are derived columns: they are recomputed from
// Name and Description by Rederive on every write so they can never drift
// from their source fields.
type Expense struct {
	OccurredAt  time.Time
	CreatedAt   time.Time
	UpdatedAt   time.Time
	DeletedAt   *time.Time
	ID          string
	UserID      string
	Name        string
	Description string
	MerchantKey string
	SearchText  string
	Account     AccountTag
	CategoryID  int64
	Amount      float64
}

// Deleted reports whether the expense is soft-deleted.
// Invariant: Deleted() == (DeletedAt != nil).
func (e *Expense) Deleted() bool {
	return e.DeletedAt != nil
}

// Restorable reports whether a soft-deleted expense is still inside the
// restore window at the given instant.
func (e *Expense) Restorable(now time.Time) bool {
	if e.DeletedAt == nil {
		return false
	}
	return now.Sub(*e.DeletedAt) <= RestoreWindow
}

// Rederive recomputes the derived columns from their source fields.
// Call on every insert and update; never persist an expense without it.
func (e *Expense) Rederive() {
	e.MerchantKey = normalize.Key(e.Name)
	e.SearchText = normalize.SearchText(e.Name, e.Description)
}

// RoundAmount canonicalizes a currency magnitude to two decimal places.
func RoundAmount(amount float64) float64 {
	return math.Round(amount*100) / 100
}

// ExpenseDraft is the caller-supplied shape of an expense before
// categorization and persistence.
type ExpenseDraft struct {
	OccurredAt  time.Time
	Name        string
	Description string
	Account     AccountTag
	Amount      float64
}

// Validate checks the draft against the data-model constraints.
func (d *ExpenseDraft) Validate() error {
	if strings.TrimSpace(d.Name) == "" {
		return fmt.Errorf("%w: name is required", ErrInvalidDraft)
	}
	if len(d.Name) > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d characters", ErrInvalidDraft, MaxNameLength)
	}
	if len(d.Description) > MaxDescriptionLength {
		return fmt.Errorf("%w: description exceeds %d characters", ErrInvalidDraft, MaxDescriptionLength)
	}
	if d.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidDraft)
	}
	if d.OccurredAt.IsZero() {
		return fmt.Errorf("%w: occurred_at is required", ErrInvalidDraft)
	}
	if !d.Account.Valid() {
		return fmt.Errorf("%w: unknown account %q", ErrInvalidDraft, d.Account)
	}
	return nil
}
