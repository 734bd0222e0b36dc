package model

import "errors"

// Validation errors for the domain models.
var (
	ErrInvalidDraft   = errors.New("invalid expense draft")
	ErrInvalidAccount = errors.New("invalid account tag")
	ErrInvalidMapping = errors.New("invalid merchant mapping")
	ErrNotDeleted     = errors.New("expense is not deleted")
	ErrRestoreExpired = errors.New("restore window has elapsed")
)
