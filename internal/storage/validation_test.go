package storage

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/aleksanderujek/oro/internal/model"
)

func TestValidateContext(t *testing.T) {
	tests := []struct {
		ctx     context.Context
		name    string
		wantErr error
	}{
		{
			name: "valid context",
			ctx:  context.Background(),
		},
		{
			name:    "nil context",
			ctx:     nil,
			wantErr: ErrNilContext,
		},
		{
			name: "canceled context still valid",
			ctx: func() context.Context {
				ctx, cancel := context.WithCancel(context.Background())
				cancel()
				return ctx
			}(),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := validateContext(tt.ctx)
			if tt.wantErr == nil {
				if err != nil {
					t.Errorf("Unexpected error: %v", err)
				}
				return
			}
			if !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}
}

func TestValidateString(t *testing.T) {
	if err := validateString("  ", "userID"); !errors.Is(err, ErrEmptyString) {
		t.Errorf("Expected ErrEmptyString for whitespace, got %v", err)
	}
	if err := validateString("user-1", "userID"); err != nil {
		t.Errorf("Unexpected error: %v", err)
	}
}

func TestValidateExpense(t *testing.T) {
	valid := func() *model.Expense {
		return &model.Expense{
			ID:         "exp-1",
			UserID:     "user-1",
			Name:       "Grocery Run",
			Amount:     12.50,
			OccurredAt: time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
			CategoryID: 1,
			Account:    model.AccountCard,
		}
	}
	if err := validateExpense(valid()); err != nil {
		t.Fatalf("Valid expense rejected: %v", err)
	}

	tests := []struct {
		name    string
		mutate  func(e *model.Expense)
		wantErr error
	}{
		{"missing ID", func(e *model.Expense) { e.ID = "" }, ErrInvalidExpense},
		{"missing user", func(e *model.Expense) { e.UserID = "" }, ErrInvalidExpense},
		{"missing name", func(e *model.Expense) { e.Name = "" }, ErrInvalidExpense},
		{"zero amount", func(e *model.Expense) { e.Amount = 0 }, ErrInvalidExpense},
		{"missing occurrence", func(e *model.Expense) { e.OccurredAt = time.Time{} }, ErrInvalidExpense},
		{"missing category", func(e *model.Expense) { e.CategoryID = 0 }, ErrInvalidExpense},
		{"unknown account", func(e *model.Expense) { e.Account = "cheque" }, ErrInvalidExpense},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			expense := valid()
			tt.mutate(expense)
			if err := validateExpense(expense); !errors.Is(err, tt.wantErr) {
				t.Errorf("Expected %v, got %v", tt.wantErr, err)
			}
		})
	}

	if err := validateExpense(nil); !errors.Is(err, ErrNilParameter) {
		t.Errorf("Expected ErrNilParameter for nil expense, got %v", err)
	}
}

func TestValidateMapping(t *testing.T) {
	valid := model.MerchantMapping{
		ID:          "map-1",
		UserID:      "user-1",
		MerchantKey: "bluebottlecoffee",
		CategoryID:  2,
	}
	if err := validateMapping(&valid); err != nil {
		t.Fatalf("Valid mapping rejected: %v", err)
	}

	tests := []struct {
		name   string
		mutate func(m *model.MerchantMapping)
	}{
		{"missing user", func(m *model.MerchantMapping) { m.UserID = "" }},
		{"missing merchant key", func(m *model.MerchantMapping) { m.MerchantKey = "" }},
		{"missing category", func(m *model.MerchantMapping) { m.CategoryID = 0 }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mapping := valid
			tt.mutate(&mapping)
			if err := validateMapping(&mapping); !errors.Is(err, ErrInvalidMapping) {
				t.Errorf("Expected ErrInvalidMapping, got %v", err)
			}
		})
	}

	if err := validateMapping(nil); !errors.Is(err, ErrNilParameter) {
		t.Errorf("Expected ErrNilParameter for nil mapping, got %v", err)
	}
}

func TestValidateProfile(t *testing.T) {
	if err := validateProfile(&model.Profile{UserID: "user-1", Timezone: "UTC"}); err != nil {
		t.Fatalf("Valid profile rejected: %v", err)
	}
	// The default account is optional.
	if err := validateProfile(&model.Profile{UserID: "user-1"}); err != nil {
		t.Fatalf("Profile without default account rejected: %v", err)
	}

	if err := validateProfile(&model.Profile{}); !errors.Is(err, ErrInvalidProfile) {
		t.Errorf("Expected ErrInvalidProfile for missing user, got %v", err)
	}
	if err := validateProfile(&model.Profile{UserID: "user-1", DefaultAccount: "cheque"}); !errors.Is(err, ErrInvalidProfile) {
		t.Errorf("Expected ErrInvalidProfile for unknown account, got %v", err)
	}
	if err := validateProfile(nil); !errors.Is(err, ErrNilParameter) {
		t.Errorf("Expected ErrNilParameter for nil profile, got %v", err)
	}
}

func TestValidateEvent(t *testing.T) {
	confidence := 0.82
	valid := model.CategorizationEvent{
		ID:         "evt-1",
		UserID:     "user-1",
		Confidence: &confidence,
	}
	if err := validateEvent(&valid); err != nil {
		t.Fatalf("Valid event rejected: %v", err)
	}

	// Confidence is optional; mapped outcomes record none.
	noConfidence := valid
	noConfidence.Confidence = nil
	if err := validateEvent(&noConfidence); err != nil {
		t.Fatalf("Event without confidence rejected: %v", err)
	}

	for _, c := range []float64{-0.1, 1.1} {
		bad := valid
		bad.Confidence = &c
		if err := validateEvent(&bad); !errors.Is(err, ErrInvalidEvent) {
			t.Errorf("Expected ErrInvalidEvent for confidence %v, got %v", c, err)
		}
	}

	if err := validateEvent(&model.CategorizationEvent{UserID: "user-1"}); !errors.Is(err, ErrInvalidEvent) {
		t.Error("Expected ErrInvalidEvent for missing ID")
	}
	if err := validateEvent(nil); !errors.Is(err, ErrNilParameter) {
		t.Errorf("Expected ErrNilParameter for nil event, got %v", err)
	}
}
