package provider

import (
	"fmt"

	"github.com/aleksanderujek/oro/internal/model"
)

// maxSuggestions caps how many ranked proposals a provider may return.
const maxSuggestions = 3

// buildSuggestPrompt creates the ranking prompt shared by all providers.
func buildSuggestPrompt(draft model.ExpenseDraft, categories model.Categories) string {
	// Build expense details, handling optional fields
	expenseDetails := fmt.Sprintf("Name: %s\nAmount: %.2f\nDate: %s",
		draft.Name,
		draft.Amount,
		draft.OccurredAt.Format("2006-01-02"))

	if draft.Description != "" {
		expenseDetails += fmt.Sprintf("\nDescription: %s", draft.Description)
	}

	if draft.Account != "" {
		expenseDetails += fmt.Sprintf("\nAccount: %s", draft.Account)
	}

	// Build category list keyed by the stable identifiers the response
	// must use
	categoryList := ""
	for _, cat := range categories {
		categoryList += fmt.Sprintf("- %s: %s\n", cat.Key, cat.Name)
	}

	return fmt.Sprintf(`You are a personal spending categorizer. Rank the categories below by how likely this expense belongs to each one.

Expense Details:
%s

Categories (refer to them by key, the part before the colon):
%s
Instructions:
1. Consider only what the expense IS, not why it might have occurred.
2. Return at most %d categories, best first, each with a confidence between 0.0 and 1.0.
3. Only include categories from the list above, identified by their key.
4. Respond with ONLY a valid JSON object in this exact shape:

{"suggestions":[{"category":"<key>","confidence":0.0}]}`,
		expenseDetails,
		categoryList,
		maxSuggestions)
}
