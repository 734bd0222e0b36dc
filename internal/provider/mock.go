package provider

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/aleksanderujek/oro/internal/model"
)

// Mock is a deterministic Provider for tests and offline development.
// It ranks categories by merchant-name keywords and records every call
// for verification.
type Mock struct {
	err         error
	suggestions model.Suggestions
	calls       []MockCall
	delay       time.Duration
	mu          sync.Mutex
}

// MockCall records details of a single suggestion request.
type MockCall struct {
	Err         error
	Draft       model.ExpenseDraft
	Suggestions model.Suggestions
}

// NewMock creates a new mock provider.
func NewMock() *Mock {
	return &Mock{
		calls: make([]MockCall, 0),
	}
}

// Name identifies the provider in audit records.
func (m *Mock) Name() string { return "mock" }

// SetDelay makes every Suggest call block for d before answering.
func (m *Mock) SetDelay(d time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.delay = d
}

// SetError makes every Suggest call fail with err.
func (m *Mock) SetError(err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
}

// SetSuggestions pins the response returned by every Suggest call,
// bypassing the keyword heuristics.
func (m *Mock) SetSuggestions(s model.Suggestions) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.suggestions = s
}

// Suggest provides deterministic category suggestions based on the
// expense name.
func (m *Mock) Suggest(ctx context.Context, draft model.ExpenseDraft, categories model.Categories) (model.Suggestions, error) {
	m.mu.Lock()
	delay := m.delay
	pinnedErr := m.err
	pinned := m.suggestions
	m.mu.Unlock()

	if delay > 0 {
		select {
		case <-time.After(delay):
		case <-ctx.Done():
			m.record(draft, nil, ctx.Err())
			return nil, ctx.Err()
		}
	}

	if pinnedErr != nil {
		m.record(draft, nil, pinnedErr)
		return nil, pinnedErr
	}

	if pinned != nil {
		out := make(model.Suggestions, len(pinned))
		copy(out, pinned)
		m.record(draft, out, nil)
		return out, nil
	}

	suggestions := m.rank(draft, categories)
	if len(suggestions) == 0 {
		err := fmt.Errorf("no known categories to rank")
		m.record(draft, nil, err)
		return nil, err
	}

	m.record(draft, suggestions, nil)
	return suggestions, nil
}

// rank maps merchant-name keywords onto the known category set.
func (m *Mock) rank(draft model.ExpenseDraft, categories model.Categories) model.Suggestions {
	nameLower := strings.ToLower(draft.Name)

	type pick struct {
		key        string
		confidence float64
	}

	var picks []pick
	switch {
	case strings.Contains(nameLower, "starbucks") || strings.Contains(nameLower, "coffee") || strings.Contains(nameLower, "espresso"):
		picks = []pick{{"coffee", 0.92}, {"dining", 0.40}}
	case strings.Contains(nameLower, "grocery") || strings.Contains(nameLower, "market") || strings.Contains(nameLower, "foods"):
		picks = []pick{{"groceries", 0.95}}
	case strings.Contains(nameLower, "restaurant") || strings.Contains(nameLower, "pizza") || strings.Contains(nameLower, "grill"):
		picks = []pick{{"dining", 0.88}, {"entertainment", 0.30}}
	case strings.Contains(nameLower, "uber") || strings.Contains(nameLower, "taxi") || strings.Contains(nameLower, "transit") || strings.Contains(nameLower, "fuel"):
		picks = []pick{{"transport", 0.90}}
	case strings.Contains(nameLower, "netflix") || strings.Contains(nameLower, "spotify") || strings.Contains(nameLower, "hulu"):
		picks = []pick{{"subscriptions", 0.95}, {"entertainment", 0.60}}
	case strings.Contains(nameLower, "pharmacy") || strings.Contains(nameLower, "clinic") || strings.Contains(nameLower, "dental"):
		picks = []pick{{"health", 0.90}}
	case strings.Contains(nameLower, "rent") || strings.Contains(nameLower, "landlord"):
		picks = []pick{{"housing", 0.97}}
	case strings.Contains(nameLower, "cinema") || strings.Contains(nameLower, "theater") || strings.Contains(nameLower, "concert"):
		picks = []pick{{"entertainment", 0.89}}
	default:
		// Amount-based fallback with deliberately middling confidence
		if draft.Amount < 100 {
			picks = []pick{{"shopping", 0.65}, {"other", 0.45}}
		} else {
			picks = []pick{{"other", 0.55}, {"shopping", 0.40}}
		}
	}

	suggestions := make(model.Suggestions, 0, len(picks))
	for _, p := range picks {
		cat := categories.ByKey(p.key)
		if cat == nil {
			continue
		}
		suggestions = append(suggestions, model.Suggestion{
			CategoryID:   cat.ID,
			CategoryKey:  cat.Key,
			CategoryName: cat.Name,
			Confidence:   p.confidence,
		})
	}

	return suggestions
}

func (m *Mock) record(draft model.ExpenseDraft, suggestions model.Suggestions, err error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = append(m.calls, MockCall{
		Draft:       draft,
		Suggestions: suggestions,
		Err:         err,
	})
}

// GetCalls returns all recorded calls for verification in tests.
func (m *Mock) GetCalls() []MockCall {
	m.mu.Lock()
	defer m.mu.Unlock()

	calls := make([]MockCall, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// CallCount returns the number of times Suggest was called.
func (m *Mock) CallCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.calls)
}

// Reset clears all recorded calls.
func (m *Mock) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls = make([]MockCall, 0)
}
