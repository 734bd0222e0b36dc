package provider

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/aleksanderujek/oro/internal/model"
)

// cleanMarkdownWrapper strips code fences a model may wrap around its JSON
// despite instructions.
func cleanMarkdownWrapper(content string) string {
	s := strings.TrimSpace(content)

	// Handle ```json ... ``` or ``` ... ``` wrappers.
	if strings.HasPrefix(s, "```") {
		// Drop the first line (``` or ```json).
		if idx := strings.Index(s, "\n"); idx != -1 {
			s = s[idx+1:]
		} else {
			return s
		}
		s = strings.TrimSpace(s)

		// Remove trailing ``` if present.
		if idx := strings.LastIndex(s, "```"); idx != -1 {
			s = s[:idx]
		}
		s = strings.TrimSpace(s)
	}

	// Extra safety: if there is still junk around the JSON object, keep
	// only from the first '{' to the last '}'.
	if start := strings.Index(s, "{"); start != -1 {
		if end := strings.LastIndex(s, "}"); end != -1 && end > start {
			s = strings.TrimSpace(s[start : end+1])
		}
	}

	return s
}

// parseSuggestions extracts ranked category suggestions from an LLM
// response, resolving category keys against the known set.
//
// Models occasionally answer with display names instead of keys, quote
// confidences as percentages larger than one, or repeat a category;
// parseSuggestions recovers from all three. Entries naming a category
// outside the known set are skipped.
func parseSuggestions(content string, categories model.Categories) (model.Suggestions, error) {
	var payload struct {
		Suggestions []struct {
			Category   string  `json:"category"`
			Confidence float64 `json:"confidence"`
		} `json:"suggestions"`
	}

	content = cleanMarkdownWrapper(content)

	if err := json.Unmarshal([]byte(content), &payload); err != nil {
		return nil, fmt.Errorf("failed to parse JSON response: %w", err)
	}

	if len(payload.Suggestions) == 0 {
		return nil, fmt.Errorf("no suggestions in response")
	}

	seen := make(map[int64]bool, len(payload.Suggestions))
	suggestions := make(model.Suggestions, 0, len(payload.Suggestions))
	for _, entry := range payload.Suggestions {
		cat := resolveCategory(entry.Category, categories)
		if cat == nil {
			continue
		}
		if seen[cat.ID] {
			continue
		}
		seen[cat.ID] = true

		confidence := entry.Confidence
		// Recover from percentage-style scores (e.g. 85 instead of 0.85)
		if confidence >= 2.0 {
			confidence /= 100.0
		}
		if confidence < 0.0 {
			confidence = 0.0
		} else if confidence > 1.0 {
			confidence = 1.0
		}

		suggestions = append(suggestions, model.Suggestion{
			CategoryID:   cat.ID,
			CategoryKey:  cat.Key,
			CategoryName: cat.Name,
			Confidence:   confidence,
		})
	}

	if len(suggestions) == 0 {
		return nil, fmt.Errorf("no valid categories in response")
	}

	suggestions.Sort()
	if len(suggestions) > maxSuggestions {
		suggestions = suggestions[:maxSuggestions]
	}

	return suggestions, nil
}

// resolveCategory matches a response value to a known category, first by
// key and then by display name.
func resolveCategory(raw string, categories model.Categories) *model.Category {
	value := strings.ToLower(strings.TrimSpace(raw))
	if value == "" {
		return nil
	}

	if cat := categories.ByKey(value); cat != nil {
		return cat
	}

	for i := range categories {
		if strings.ToLower(categories[i].Name) == value {
			return &categories[i]
		}
	}

	return nil
}
