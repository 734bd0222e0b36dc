package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func rankedSuggestions() Suggestions {
	return Suggestions{
		{CategoryID: 3, CategoryKey: "shopping", Confidence: 0.40},
		{CategoryID: 1, CategoryKey: "coffee", Confidence: 0.90},
		{CategoryID: 2, CategoryKey: "dining", Confidence: 0.90},
	}
}

func TestSuggestionsSort(t *testing.T) {
	s := rankedSuggestions()
	s.Sort()

	// Confidence descending, ties broken by key so the order is stable.
	assert.Equal(t, "coffee", s[0].CategoryKey)
	assert.Equal(t, "dining", s[1].CategoryKey)
	assert.Equal(t, "shopping", s[2].CategoryKey)
}

func TestSuggestionsTop(t *testing.T) {
	top := rankedSuggestions().Top()
	require.NotNil(t, top)
	assert.Equal(t, "coffee", top.CategoryKey)

	assert.Nil(t, Suggestions{}.Top())
}

func TestSuggestionsTopN(t *testing.T) {
	s := rankedSuggestions()

	two := s.TopN(2)
	require.Len(t, two, 2)
	assert.Equal(t, "coffee", two[0].CategoryKey)
	assert.Equal(t, "dining", two[1].CategoryKey)

	assert.Len(t, s.TopN(10), 3, "n past the end returns everything")
	assert.Empty(t, s.TopN(0))
	assert.Empty(t, s.TopN(-1))
}

func TestSuggestionValidate(t *testing.T) {
	good := Suggestion{CategoryID: 1, CategoryKey: "coffee", Confidence: 0.75}
	require.NoError(t, good.Validate())

	missing := Suggestion{Confidence: 0.75}
	err := missing.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "suggestion category is required")

	for _, confidence := range []float64{-0.01, 1.01} {
		bad := Suggestion{CategoryID: 1, Confidence: confidence}
		err := bad.Validate()
		require.Error(t, err, "confidence %v", confidence)
		assert.Contains(t, err.Error(), "confidence must be between 0.0 and 1.0")
	}
}

func TestSuggestionsValidateRejectsDuplicates(t *testing.T) {
	s := Suggestions{
		{CategoryID: 1, CategoryKey: "coffee", Confidence: 0.90},
		{CategoryID: 1, CategoryKey: "coffee", Confidence: 0.40},
	}

	err := s.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "duplicate category 1 in suggestions")

	require.NoError(t, rankedSuggestions().Validate())
}
