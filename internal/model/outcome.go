package model

import "time"

// OutcomeStatus is the terminal state of one categorization attempt.
type OutcomeStatus string

// Categorization outcome states.
const (
	// OutcomeMapped means a user mapping resolved the merchant; the
	// provider was never called.
	OutcomeMapped OutcomeStatus = "MAPPED"
	// OutcomeAutoApplied means the provider answered in time with enough
	// confidence for its top suggestion to be applied automatically.
	OutcomeAutoApplied OutcomeStatus = "AUTO_APPLIED"
	// OutcomeSuggested means the provider answered in time but below the
	// auto-apply threshold; the caller picks from the suggestions.
	OutcomeSuggested OutcomeStatus = "SUGGESTED"
	// OutcomeTimedOut means the provider missed the deadline or failed;
	// the caller decides the category, typically leaving "uncategorized".
	OutcomeTimedOut OutcomeStatus = "TIMED_OUT"
)

// CategorizationOutcome is what the orchestrator hands back for a draft.
//
// Category is set for Mapped and AutoApplied outcomes. Suggestions carries
// up to three ranked proposals for AutoApplied and Suggested outcomes.
// TimedOut is true only when the provider actually missed the deadline;
// provider errors terminate in the same degraded state with TimedOut false
// and the distinction kept in the audit trail.
type CategorizationOutcome struct {
	Category      *Category
	NormalizedKey string
	ProviderID    string
	Status        OutcomeStatus
	MatchKind     MatchKind
	Suggestions   Suggestions
	Confidence    float64
	Latency       time.Duration
	TimedOut      bool
}

// Applied reports whether the outcome carries a category to persist.
func (o *CategorizationOutcome) Applied() bool {
	return o.Status == OutcomeMapped || o.Status == OutcomeAutoApplied
}
