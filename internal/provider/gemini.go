package provider

import (
	"context"
	"fmt"

	"google.golang.org/genai"

	"github.com/aleksanderujek/oro/internal/model"
)

// defaultGeminiModel is the Gemini model used when none is configured.
const defaultGeminiModel = "gemini-2.5-flash"

// geminiProvider implements the Provider interface for the Gemini API.
type geminiProvider struct {
	apiKey string
	model  string
}

// newGeminiProvider creates a new Gemini API provider. When no API key is
// configured the genai client falls back to the GEMINI_API_KEY environment
// variable.
func newGeminiProvider(cfg Config) (Provider, error) {
	modelName := cfg.Model
	if modelName == "" {
		modelName = defaultGeminiModel
	}

	return &geminiProvider{
		apiKey: cfg.APIKey,
		model:  modelName,
	}, nil
}

// Name identifies the provider in audit records.
func (p *geminiProvider) Name() string { return "gemini" }

// Suggest sends a ranking request to Gemini.
func (p *geminiProvider) Suggest(ctx context.Context, draft model.ExpenseDraft, categories model.Categories) (model.Suggestions, error) {
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:      p.apiKey,
		HTTPOptions: genai.HTTPOptions{APIVersion: "v1"},
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	prompt := buildSuggestPrompt(draft, categories)

	contents := []*genai.Content{
		{
			Role: "user",
			Parts: []*genai.Part{
				{Text: prompt},
			},
		},
	}

	resp, err := client.Models.GenerateContent(ctx, p.model, contents, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to generate content: %w", err)
	}

	rawText := resp.Text()
	if rawText == "" {
		return nil, fmt.Errorf("empty response from model")
	}

	return parseSuggestions(rawText, categories)
}
