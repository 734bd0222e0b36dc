package model

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpenseDraftValidate(t *testing.T) {
	occurred := time.Date(2026, 3, 14, 9, 30, 0, 0, time.UTC)

	valid := ExpenseDraft{
		OccurredAt: occurred,
		Name:       "Blue Bottle Coffee",
		Account:    AccountCard,
		Amount:     4.50,
	}
	require.NoError(t, valid.Validate())

	tests := []struct {
		name    string
		mutate  func(d *ExpenseDraft)
		wantMsg string
	}{
		{
			name:    "blank name",
			mutate:  func(d *ExpenseDraft) { d.Name = "   " },
			wantMsg: "name is required",
		},
		{
			name:    "name too long",
			mutate:  func(d *ExpenseDraft) { d.Name = strings.Repeat("x", MaxNameLength+1) },
			wantMsg: "name exceeds 64 characters",
		},
		{
			name:    "description too long",
			mutate:  func(d *ExpenseDraft) { d.Description = strings.Repeat("x", MaxDescriptionLength+1) },
			wantMsg: "description exceeds 200 characters",
		},
		{
			name:    "zero amount",
			mutate:  func(d *ExpenseDraft) { d.Amount = 0 },
			wantMsg: "amount must be positive",
		},
		{
			name:    "negative amount",
			mutate:  func(d *ExpenseDraft) { d.Amount = -12.50 },
			wantMsg: "amount must be positive",
		},
		{
			name:    "missing occurred_at",
			mutate:  func(d *ExpenseDraft) { d.OccurredAt = time.Time{} },
			wantMsg: "occurred_at is required",
		},
		{
			name:    "unknown account",
			mutate:  func(d *ExpenseDraft) { d.Account = "cheque" },
			wantMsg: `unknown account "cheque"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			draft := valid
			tt.mutate(&draft)

			err := draft.Validate()
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrInvalidDraft)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestAccountTagValid(t *testing.T) {
	for _, tag := range []AccountTag{"", AccountCash, AccountCard, AccountBank, AccountSavings} {
		assert.True(t, tag.Valid(), "tag %q", tag)
	}
	assert.False(t, AccountTag("cheque").Valid())
	assert.False(t, AccountTag("Card").Valid(), "tags are stored lowercase")
}

func TestParseAccountTag(t *testing.T) {
	tag, err := ParseAccountTag("  CARD ")
	require.NoError(t, err)
	assert.Equal(t, AccountCard, tag)

	tag, err = ParseAccountTag("")
	require.NoError(t, err)
	assert.Equal(t, AccountTag(""), tag, "account is optional")

	_, err = ParseAccountTag("cheque")
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrInvalidAccount)
	assert.Contains(t, err.Error(), `account "cheque"`)
}

func TestExpenseDeletedAndRestorable(t *testing.T) {
	now := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	live := Expense{Name: "Grocery Run"}
	assert.False(t, live.Deleted())
	assert.False(t, live.Restorable(now), "a live expense has nothing to restore")

	deletedAt := now
	gone := Expense{Name: "Grocery Run", DeletedAt: &deletedAt}
	assert.True(t, gone.Deleted())
	assert.True(t, gone.Restorable(now))
	assert.True(t, gone.Restorable(now.Add(RestoreWindow)), "window is inclusive at the boundary")
	assert.False(t, gone.Restorable(now.Add(RestoreWindow+time.Second)))
}

func TestRederive(t *testing.T) {
	e := Expense{
		Name:        "Café Río #22",
		Description: "  Weekly   BEANS ",
	}
	e.Rederive()

	assert.Equal(t, "caferio22", e.MerchantKey)
	assert.Equal(t, "cafe rio #22 weekly beans", e.SearchText)

	e.Description = ""
	e.Rederive()
	assert.Equal(t, "cafe rio #22", e.SearchText, "no trailing separator without a description")
}

func TestRoundAmount(t *testing.T) {
	tests := []struct {
		in   float64
		want float64
	}{
		{45.678, 45.68},
		{45.674, 45.67},
		{0.005, 0.01},
		{19.999, 20.00},
		{12, 12},
	}

	for _, tt := range tests {
		assert.InDelta(t, tt.want, RoundAmount(tt.in), 1e-9, "RoundAmount(%v)", tt.in)
	}
}
