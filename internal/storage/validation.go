// Package storage provides the data persistence layer for the oro application.
package storage

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aleksanderujek/oro/internal/model"
)

// Validation errors.
var (
	ErrNilContext       = errors.New("context cannot be nil")
	ErrEmptyString      = errors.New("string parameter cannot be empty")
	ErrNilParameter     = errors.New("parameter cannot be nil")
	ErrInvalidDateRange = errors.New("start date must be before end date")
	ErrInvalidExpense   = errors.New("invalid expense")
	ErrInvalidMapping   = errors.New("invalid merchant mapping")
	ErrInvalidProfile   = errors.New("invalid profile")
	ErrInvalidEvent     = errors.New("invalid categorization event")
	ErrInvalidLimit     = errors.New("limit must be positive")
)

// validateContext ensures the context is not nil.
func validateContext(ctx context.Context) error {
	if ctx == nil {
		return ErrNilContext
	}
	return nil
}

// validateString ensures a string parameter is not empty.
func validateString(s string, paramName string) error {
	if strings.TrimSpace(s) == "" {
		return fmt.Errorf("%w: %s", ErrEmptyString, paramName)
	}
	return nil
}

// validateExpense validates an expense before it is written.
func validateExpense(expense *model.Expense) error {
	if expense == nil {
		return fmt.Errorf("%w: expense", ErrNilParameter)
	}
	if expense.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidExpense)
	}
	if expense.UserID == "" {
		return fmt.Errorf("%w: missing user ID", ErrInvalidExpense)
	}
	if expense.Name == "" {
		return fmt.Errorf("%w: missing name", ErrInvalidExpense)
	}
	if expense.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidExpense)
	}
	if expense.OccurredAt.IsZero() {
		return fmt.Errorf("%w: missing occurrence time", ErrInvalidExpense)
	}
	if expense.CategoryID == 0 {
		return fmt.Errorf("%w: missing category", ErrInvalidExpense)
	}
	if !expense.Account.Valid() {
		return fmt.Errorf("%w: unknown account %q", ErrInvalidExpense, expense.Account)
	}
	return nil
}

// validateMapping validates a merchant mapping before it is written.
func validateMapping(mapping *model.MerchantMapping) error {
	if mapping == nil {
		return fmt.Errorf("%w: mapping", ErrNilParameter)
	}
	if mapping.UserID == "" {
		return fmt.Errorf("%w: missing user ID", ErrInvalidMapping)
	}
	if mapping.MerchantKey == "" {
		return fmt.Errorf("%w: missing merchant key", ErrInvalidMapping)
	}
	if mapping.CategoryID == 0 {
		return fmt.Errorf("%w: missing category", ErrInvalidMapping)
	}
	return nil
}

// validateProfile validates a profile before it is written.
func validateProfile(profile *model.Profile) error {
	if profile == nil {
		return fmt.Errorf("%w: profile", ErrNilParameter)
	}
	if profile.UserID == "" {
		return fmt.Errorf("%w: missing user ID", ErrInvalidProfile)
	}
	if !profile.DefaultAccount.Valid() {
		return fmt.Errorf("%w: unknown account %q", ErrInvalidProfile, profile.DefaultAccount)
	}
	return nil
}

// validateEvent validates a categorization event before it is written.
func validateEvent(event *model.CategorizationEvent) error {
	if event == nil {
		return fmt.Errorf("%w: event", ErrNilParameter)
	}
	if event.ID == "" {
		return fmt.Errorf("%w: missing ID", ErrInvalidEvent)
	}
	if event.UserID == "" {
		return fmt.Errorf("%w: missing user ID", ErrInvalidEvent)
	}
	if event.Confidence != nil && (*event.Confidence < 0 || *event.Confidence > 1) {
		return fmt.Errorf("%w: confidence must be between 0 and 1", ErrInvalidEvent)
	}
	return nil
}
