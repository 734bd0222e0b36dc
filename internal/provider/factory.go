package provider

import (
	"fmt"
	"strings"
)

// New creates a categorization provider based on the provided configuration.
func New(cfg Config) (Provider, error) {
	switch strings.ToLower(cfg.Provider) {
	case "openai":
		return newOpenAIProvider(cfg)
	case "gemini":
		return newGeminiProvider(cfg)
	case "mock":
		return NewMock(), nil
	default:
		return nil, fmt.Errorf("unsupported categorization provider: %s", cfg.Provider)
	}
}
