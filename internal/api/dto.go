package api

import (
	"time"

	"github.com/aleksanderujek/oro/internal/model"
)

// Request models

type createExpenseRequest struct {
	Name        string    `json:"name" binding:"required"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount" binding:"required,gt=0"`
	OccurredAt  time.Time `json:"occurredAt" binding:"required"`
	Account     string    `json:"account"`
	CategoryID  int64     `json:"categoryId"`
}

type updateExpenseRequest struct {
	Name        *string    `json:"name"`
	Description *string    `json:"description"`
	Amount      *float64   `json:"amount"`
	OccurredAt  *time.Time `json:"occurredAt"`
	Account     *string    `json:"account"`
	CategoryID  *int64     `json:"categoryId"`
}

type correctExpenseRequest struct {
	CategoryID int64 `json:"categoryId" binding:"required"`
}

type categorizeRequest struct {
	Name        string    `json:"name" binding:"required"`
	Description string    `json:"description"`
	Amount      float64   `json:"amount" binding:"required,gt=0"`
	OccurredAt  time.Time `json:"occurredAt"`
	Account     string    `json:"account"`
}

type resolveMerchantRequest struct {
	Name string `json:"name" binding:"required"`
}

type saveMappingRequest struct {
	Merchant   string `json:"merchant" binding:"required"`
	CategoryID int64  `json:"categoryId" binding:"required"`
}

type profileRequest struct {
	Timezone       string `json:"timezone"`
	DefaultAccount string `json:"defaultAccount"`
}

// Response models

type expenseResponse struct {
	ID          string     `json:"id"`
	Name        string     `json:"name"`
	Description string     `json:"description,omitempty"`
	Amount      float64    `json:"amount"`
	OccurredAt  time.Time  `json:"occurredAt"`
	Account     string     `json:"account,omitempty"`
	CategoryID  int64      `json:"categoryId"`
	MerchantKey string     `json:"merchantKey"`
	Deleted     bool       `json:"deleted"`
	DeletedAt   *time.Time `json:"deletedAt,omitempty"`
	CreatedAt   time.Time  `json:"createdAt"`
	UpdatedAt   time.Time  `json:"updatedAt"`
}

func toExpenseResponse(exp *model.Expense) expenseResponse {
	return expenseResponse{
		ID:          exp.ID,
		Name:        exp.Name,
		Description: exp.Description,
		Amount:      exp.Amount,
		OccurredAt:  exp.OccurredAt,
		Account:     string(exp.Account),
		CategoryID:  exp.CategoryID,
		MerchantKey: exp.MerchantKey,
		Deleted:     exp.Deleted(),
		DeletedAt:   exp.DeletedAt,
		CreatedAt:   exp.CreatedAt,
		UpdatedAt:   exp.UpdatedAt,
	}
}

type createExpenseResponse struct {
	Expense        expenseResponse     `json:"expense"`
	Categorization *categorizeResponse `json:"categorization,omitempty"`
}

type listExpensesResponse struct {
	Items      []expenseResponse `json:"items"`
	NextCursor string            `json:"nextCursor,omitempty"`
	HasMore    bool              `json:"hasMore"`
}

type suggestionResponse struct {
	CategoryID   int64   `json:"categoryId"`
	CategoryKey  string  `json:"categoryKey"`
	CategoryName string  `json:"categoryName"`
	Confidence   float64 `json:"confidence"`
}

type categorizeResponse struct {
	Status                string               `json:"status"`
	AutoAppliedCategoryID *int64               `json:"autoAppliedCategoryId,omitempty"`
	Confidence            float64              `json:"confidence"`
	Suggestions           []suggestionResponse `json:"suggestions"`
	TimedOut              bool                 `json:"timedOut"`
	LatencyMS             int64                `json:"latencyMs"`
	ProviderID            string               `json:"providerId,omitempty"`
}

func toCategorizeResponse(outcome *model.CategorizationOutcome) *categorizeResponse {
	resp := &categorizeResponse{
		Status:      string(outcome.Status),
		Confidence:  outcome.Confidence,
		Suggestions: make([]suggestionResponse, 0, len(outcome.Suggestions)),
		TimedOut:    outcome.TimedOut,
		LatencyMS:   outcome.Latency.Milliseconds(),
		ProviderID:  outcome.ProviderID,
	}
	if outcome.Applied() && outcome.Category != nil {
		id := outcome.Category.ID
		resp.AutoAppliedCategoryID = &id
	}
	for _, s := range outcome.Suggestions {
		resp.Suggestions = append(resp.Suggestions, suggestionResponse{
			CategoryID:   s.CategoryID,
			CategoryKey:  s.CategoryKey,
			CategoryName: s.CategoryName,
			Confidence:   s.Confidence,
		})
	}
	return resp
}

type merchantMatchResponse struct {
	CategoryID    int64   `json:"categoryId"`
	Confidence    float64 `json:"confidence"`
	MatchType     string  `json:"matchType"`
	NormalizedKey string  `json:"normalizedKey"`
}

type resolveMerchantResponse struct {
	Match *merchantMatchResponse `json:"match"`
}

type categoryResponse struct {
	ID        int64  `json:"id"`
	Key       string `json:"key"`
	Name      string `json:"name"`
	SortOrder int    `json:"sortOrder"`
}

type mappingResponse struct {
	ID          string    `json:"id"`
	MerchantKey string    `json:"merchantKey"`
	CategoryID  int64     `json:"categoryId"`
	UpdatedAt   time.Time `json:"updatedAt"`
}

type profileResponse struct {
	Timezone       string `json:"timezone"`
	DefaultAccount string `json:"defaultAccount,omitempty"`
}

// ErrorResponse is the uniform error body for every non-2xx response.
type ErrorResponse struct {
	Status  string `json:"status"`
	Code    string `json:"code"`
	Message string `json:"message"`
}
