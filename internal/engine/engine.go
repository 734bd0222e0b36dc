// Package engine orchestrates expense categorization: merchant mappings
// first, then a categorization provider raced against a hard deadline.
package engine

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/aleksanderujek/oro/internal/common"
	"github.com/aleksanderujek/oro/internal/mapping"
	"github.com/aleksanderujek/oro/internal/model"
	"github.com/aleksanderujek/oro/internal/normalize"
	"github.com/aleksanderujek/oro/internal/provider"
	"github.com/aleksanderujek/oro/internal/service"
)

// DefaultDeadline bounds how long a categorization attempt may wait for
// the provider before the expense is stored uncategorized.
const DefaultDeadline = 400 * time.Millisecond

// AutoApplyThreshold is the minimum top-suggestion confidence at which the
// engine applies a category without asking the user.
const AutoApplyThreshold = 0.75

// maxSuggestions caps how many proposals an outcome carries.
const maxSuggestions = 3

// Engine coordinates the mapping resolver and the categorization provider.
type Engine struct {
	storage  service.Storage
	resolver *mapping.Resolver
	provider provider.Provider
	deadline time.Duration
}

// Config holds configuration options for the categorization engine.
type Config struct {
	Deadline time.Duration
}

// DefaultConfig returns the default configuration.
func DefaultConfig() Config {
	return Config{
		Deadline: DefaultDeadline,
	}
}

// New creates a new categorization engine with the given dependencies.
func New(storage service.Storage, resolver *mapping.Resolver, p provider.Provider) *Engine {
	return NewWithConfig(storage, resolver, p, DefaultConfig())
}

// NewWithConfig creates a new categorization engine with custom configuration.
func NewWithConfig(storage service.Storage, resolver *mapping.Resolver, p provider.Provider, config Config) *Engine {
	deadline := config.Deadline
	if deadline <= 0 {
		deadline = DefaultDeadline
	}
	return &Engine{
		storage:  storage,
		resolver: resolver,
		provider: p,
		deadline: deadline,
	}
}

// Categorize produces a categorization outcome for the draft. A mapping hit
// short-circuits the provider entirely; otherwise the provider is invoked
// under the engine deadline and the outcome reflects how that went. An
// audit event is written for every provider invocation.
func (e *Engine) Categorize(ctx context.Context, userID string, draft model.ExpenseDraft) (*model.CategorizationOutcome, error) {
	merchantKey := normalize.Key(draft.Name)

	match, err := e.resolver.Resolve(ctx, userID, draft.Name)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve merchant: %w", err)
	}

	if match != nil {
		category, catErr := e.storage.GetCategoryByID(ctx, match.CategoryID)
		if catErr != nil {
			return nil, fmt.Errorf("failed to load mapped category: %w", catErr)
		}
		if category != nil {
			slog.Debug("merchant mapping applied",
				"merchant_key", match.NormalizedKey,
				"match_kind", match.Kind,
				"category", category.Key)
			return &model.CategorizationOutcome{
				Category:      category,
				NormalizedKey: match.NormalizedKey,
				Status:        model.OutcomeMapped,
				MatchKind:     match.Kind,
				Confidence:    match.Confidence,
			}, nil
		}
		slog.Warn("merchant mapping references unknown category",
			"merchant_key", match.NormalizedKey,
			"category_id", match.CategoryID)
	}

	categories, err := e.storage.GetCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to load categories: %w", err)
	}
	if len(categories) == 0 {
		return nil, fmt.Errorf("no categories found in database - please run migrations first")
	}

	return e.suggest(ctx, userID, merchantKey, draft, categories)
}

type suggestResult struct {
	err         error
	suggestions model.Suggestions
}

// suggest races the provider against the engine deadline and folds the
// result into an outcome.
func (e *Engine) suggest(ctx context.Context, userID, merchantKey string, draft model.ExpenseDraft, categories model.Categories) (*model.CategorizationOutcome, error) {
	providerCtx, cancel := context.WithTimeout(ctx, e.deadline)
	defer cancel()

	start := time.Now()
	resultCh := make(chan suggestResult, 1)
	go func() {
		suggestions, err := e.provider.Suggest(providerCtx, draft, categories)
		resultCh <- suggestResult{suggestions: suggestions, err: err}
	}()

	var result suggestResult
	select {
	case result = <-resultCh:
	case <-providerCtx.Done():
		result = suggestResult{err: providerCtx.Err()}
	}
	latency := time.Since(start)

	if result.err != nil {
		if ctx.Err() != nil {
			// The caller went away; there is nobody to answer to.
			return nil, ctx.Err()
		}

		if errors.Is(result.err, context.DeadlineExceeded) {
			slog.Warn("categorization provider missed deadline",
				"provider", e.provider.Name(),
				"merchant_key", merchantKey,
				"deadline", e.deadline)
			e.audit(ctx, userID, merchantKey, nil, latency, true, model.AuditErrorTimeout)
			return e.degradedOutcome(merchantKey, latency, true), nil
		}

		slog.Warn("categorization provider failed",
			"provider", e.provider.Name(),
			"merchant_key", merchantKey,
			"error", result.err)
		e.audit(ctx, userID, merchantKey, nil, latency, false, model.AuditErrorProvider)
		return e.degradedOutcome(merchantKey, latency, false), nil
	}

	suggestions := result.suggestions
	if err := suggestions.Validate(); err != nil {
		slog.Warn("categorization provider returned invalid suggestions",
			"provider", e.provider.Name(),
			"merchant_key", merchantKey,
			"error", err)
		e.audit(ctx, userID, merchantKey, nil, latency, false, model.AuditErrorProvider)
		return e.degradedOutcome(merchantKey, latency, false), nil
	}

	suggestions = suggestions.TopN(maxSuggestions)
	top := suggestions.Top()
	if top == nil {
		e.audit(ctx, userID, merchantKey, nil, latency, false, model.AuditErrorProvider)
		return e.degradedOutcome(merchantKey, latency, false), nil
	}

	outcome := &model.CategorizationOutcome{
		NormalizedKey: merchantKey,
		ProviderID:    e.provider.Name(),
		Status:        model.OutcomeSuggested,
		Suggestions:   suggestions,
		Confidence:    top.Confidence,
		Latency:       latency,
	}

	if top.Confidence >= AutoApplyThreshold {
		category := categories.ByID(top.CategoryID)
		if category == nil {
			slog.Warn("top suggestion references unknown category",
				"provider", e.provider.Name(),
				"category_id", top.CategoryID)
			e.audit(ctx, userID, merchantKey, nil, latency, false, model.AuditErrorProvider)
			return e.degradedOutcome(merchantKey, latency, false), nil
		}
		outcome.Status = model.OutcomeAutoApplied
		outcome.Category = category
	}

	e.audit(ctx, userID, merchantKey, &top.Confidence, latency, false, model.AuditErrorNone)

	slog.Debug("categorization provider answered",
		"provider", e.provider.Name(),
		"merchant_key", merchantKey,
		"status", outcome.Status,
		"confidence", top.Confidence,
		"latency_ms", latency.Milliseconds())

	return outcome, nil
}

// degradedOutcome is the terminal state when the provider could not help:
// no category, no suggestions, and the caller falls back to uncategorized.
func (e *Engine) degradedOutcome(merchantKey string, latency time.Duration, timedOut bool) *model.CategorizationOutcome {
	return &model.CategorizationOutcome{
		NormalizedKey: merchantKey,
		ProviderID:    e.provider.Name(),
		Status:        model.OutcomeTimedOut,
		Suggestions:   model.Suggestions{},
		Latency:       latency,
		TimedOut:      timedOut,
	}
}

// audit records a provider invocation. Failures are logged, never surfaced:
// the outcome already happened and the audit trail is advisory.
func (e *Engine) audit(ctx context.Context, userID, merchantKey string, confidence *float64, latency time.Duration, timedOut bool, errorCode string) {
	event := &model.CategorizationEvent{
		ID:          uuid.New().String(),
		UserID:      userID,
		MerchantKey: merchantKey,
		Provider:    e.provider.Name(),
		Confidence:  confidence,
		Latency:     latency,
		TimedOut:    timedOut,
		ErrorCode:   errorCode,
		CreatedAt:   time.Now().UTC(),
	}

	if err := e.storage.SaveCategorizationEvent(ctx, event); err != nil {
		slog.Warn("failed to save categorization event",
			"merchant_key", merchantKey,
			"error", err)
	}
}

// Learn upserts the merchant mapping for a corrected expense so the next
// draft with the same merchant resolves without the provider. Labels that
// normalize to nothing are ignored.
func (e *Engine) Learn(ctx context.Context, userID, merchantLabel string, categoryID int64) error {
	key := normalize.Key(merchantLabel)
	if key == "" {
		return nil
	}

	category, err := e.storage.GetCategoryByID(ctx, categoryID)
	if err != nil {
		return fmt.Errorf("failed to load category: %w", err)
	}
	if category == nil {
		return fmt.Errorf("%w: category %d", common.ErrNotFound, categoryID)
	}

	m := &model.MerchantMapping{
		ID:          uuid.New().String(),
		UserID:      userID,
		MerchantKey: key,
		CategoryID:  categoryID,
		UpdatedAt:   time.Now().UTC(),
	}
	if err := e.storage.SaveMapping(ctx, m); err != nil {
		return fmt.Errorf("failed to save merchant mapping: %w", err)
	}

	slog.Info("merchant mapping learned",
		"merchant_key", key,
		"category", category.Key)
	return nil
}
