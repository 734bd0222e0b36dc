package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aleksanderujek/oro/internal/model"
)

// categorize previews how a draft would be categorized without persisting
// an expense. The provider invocation is still audited like any other.
func (h *Handler) categorize(c *gin.Context) {
	var req categorizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	account, err := model.ParseAccountTag(req.Account)
	if err != nil {
		respondError(c, err)
		return
	}

	occurredAt := req.OccurredAt
	if occurredAt.IsZero() {
		occurredAt = time.Now().UTC()
	}

	draft := model.ExpenseDraft{
		Name:        req.Name,
		Description: req.Description,
		Amount:      req.Amount,
		OccurredAt:  occurredAt,
		Account:     account,
	}
	if err := draft.Validate(); err != nil {
		respondError(c, err)
		return
	}

	outcome, err := h.engine.Categorize(c.Request.Context(), userID(c), draft)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toCategorizeResponse(outcome))
}

func (h *Handler) resolveMerchant(c *gin.Context) {
	var req resolveMerchantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	match, err := h.resolver.Resolve(c.Request.Context(), userID(c), req.Name)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := resolveMerchantResponse{}
	if match != nil {
		resp.Match = &merchantMatchResponse{
			CategoryID:    match.CategoryID,
			Confidence:    match.Confidence,
			MatchType:     string(match.Kind),
			NormalizedKey: match.NormalizedKey,
		}
	}
	c.JSON(http.StatusOK, resp)
}
