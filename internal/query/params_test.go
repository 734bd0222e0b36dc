package query

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aleksanderujek/oro/internal/model"
)

func TestParamsNormalizedDefaults(t *testing.T) {
	p, err := Params{}.normalized()
	require.NoError(t, err)
	assert.Equal(t, DefaultLimit, p.Limit)
	assert.Nil(t, p.CategoryIDs)
}

func TestParamsNormalizedLimitBounds(t *testing.T) {
	tests := []struct {
		name    string
		limit   int
		wantErr bool
	}{
		{name: "zero selects default", limit: 0, wantErr: false},
		{name: "one", limit: 1, wantErr: false},
		{name: "max", limit: MaxLimit, wantErr: false},
		{name: "above max", limit: MaxLimit + 1, wantErr: true},
		{name: "negative", limit: -1, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Params{Limit: tt.limit}.normalized()
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidParams)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestParamsNormalizedWindows(t *testing.T) {
	for _, window := range []string{WindowThisMonth, WindowLastMonth, WindowLast7Days} {
		_, err := Params{Window: window}.normalized()
		assert.NoError(t, err, "window %q", window)
	}

	_, err := Params{Window: "next-month"}.normalized()
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestParamsNormalizedWindowExcludesExplicitRange(t *testing.T) {
	from := time.Date(2026, 3, 1, 0, 0, 0, 0, time.UTC)

	_, err := Params{Window: WindowThisMonth, From: &from}.normalized()
	assert.ErrorIs(t, err, ErrInvalidParams)

	to := from.AddDate(0, 1, 0)
	_, err = Params{Window: WindowLast7Days, To: &to}.normalized()
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestParamsNormalizedRangeOrder(t *testing.T) {
	from := time.Date(2026, 3, 10, 0, 0, 0, 0, time.UTC)
	to := from.AddDate(0, 0, -1)

	_, err := Params{From: &from, To: &to}.normalized()
	assert.ErrorIs(t, err, ErrInvalidParams)

	// Equal bounds describe an empty range and are rejected too
	_, err = Params{From: &from, To: &from}.normalized()
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestParamsNormalizedCategoryDedup(t *testing.T) {
	p, err := Params{CategoryIDs: []int64{3, 1, 3, 2, 1}}.normalized()
	require.NoError(t, err)
	assert.Equal(t, []int64{3, 1, 2}, p.CategoryIDs)
}

func TestParamsNormalizedCategoryBounds(t *testing.T) {
	many := make([]int64, MaxCategoryFilters+1)
	for i := range many {
		many[i] = int64(i + 1)
	}
	_, err := Params{CategoryIDs: many}.normalized()
	assert.ErrorIs(t, err, ErrInvalidParams)

	// Duplicates collapse below the cap before the bound is checked
	withDupes := append([]int64{}, many[:MaxCategoryFilters]...)
	withDupes = append(withDupes, many[:5]...)
	p, err := Params{CategoryIDs: withDupes}.normalized()
	require.NoError(t, err)
	assert.Len(t, p.CategoryIDs, MaxCategoryFilters)

	_, err = Params{CategoryIDs: []int64{0}}.normalized()
	assert.ErrorIs(t, err, ErrInvalidParams)

	_, err = Params{CategoryIDs: []int64{-4}}.normalized()
	assert.ErrorIs(t, err, ErrInvalidParams)
}

func TestParamsNormalizedAccount(t *testing.T) {
	_, err := Params{Account: model.AccountCard}.normalized()
	assert.NoError(t, err)

	_, err = Params{Account: "cheque"}.normalized()
	assert.ErrorIs(t, err, ErrInvalidParams)
}
