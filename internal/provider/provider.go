// Package provider supplies the categorization providers that rank
// spending categories for an expense draft. It supports OpenAI and Gemini
// plus a deterministic mock for tests and offline development.
package provider

import (
	"context"

	"github.com/aleksanderujek/oro/internal/model"
)

// Provider ranks the known categories for a single expense draft.
//
// Implementations return at least one valid suggestion or an error; they do
// not enforce the categorization deadline themselves. The orchestrator races
// Suggest against its deadline and abandons the call when time runs out.
type Provider interface {
	// Suggest returns ranked category proposals for the draft, highest
	// confidence first. Every returned suggestion references one of the
	// given categories.
	Suggest(ctx context.Context, draft model.ExpenseDraft, categories model.Categories) (model.Suggestions, error)

	// Name identifies the provider in audit records.
	Name() string
}

// Config holds configuration for constructing a provider.
type Config struct {
	// Provider selects the implementation: "openai", "gemini" or "mock".
	Provider string

	// APIKey authenticates against the provider's API. Gemini falls back
	// to the GEMINI_API_KEY environment variable when empty.
	APIKey string

	// Model overrides the provider's default model name.
	Model string

	// Temperature controls sampling randomness. Zero selects the default.
	Temperature float64

	// MaxTokens caps the completion length. Zero selects the default.
	MaxTokens int
}
