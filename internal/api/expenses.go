package api

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aleksanderujek/oro/internal/expense"
	"github.com/aleksanderujek/oro/internal/model"
	"github.com/aleksanderujek/oro/internal/query"
)

func (h *Handler) createExpense(c *gin.Context) {
	var req createExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	account, err := model.ParseAccountTag(req.Account)
	if err != nil {
		respondError(c, err)
		return
	}

	exp, outcome, err := h.expenses.Create(c.Request.Context(), userID(c), expense.CreateInput{
		Name:        req.Name,
		Description: req.Description,
		Amount:      req.Amount,
		OccurredAt:  req.OccurredAt,
		Account:     account,
		CategoryID:  req.CategoryID,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	resp := createExpenseResponse{Expense: toExpenseResponse(exp)}
	if outcome != nil {
		resp.Categorization = toCategorizeResponse(outcome)
	}
	c.JSON(http.StatusCreated, resp)
}

func (h *Handler) getExpense(c *gin.Context) {
	exp, err := h.expenses.Get(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toExpenseResponse(exp))
}

func (h *Handler) updateExpense(c *gin.Context) {
	var req updateExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	input := expense.UpdateInput{
		Name:        req.Name,
		Description: req.Description,
		Amount:      req.Amount,
		OccurredAt:  req.OccurredAt,
		CategoryID:  req.CategoryID,
	}
	if req.Account != nil {
		account, err := model.ParseAccountTag(*req.Account)
		if err != nil {
			respondError(c, err)
			return
		}
		input.Account = &account
	}

	exp, err := h.expenses.Update(c.Request.Context(), userID(c), c.Param("id"), input)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toExpenseResponse(exp))
}

func (h *Handler) deleteExpense(c *gin.Context) {
	if err := h.expenses.Delete(c.Request.Context(), userID(c), c.Param("id")); err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) restoreExpense(c *gin.Context) {
	exp, err := h.expenses.Restore(c.Request.Context(), userID(c), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toExpenseResponse(exp))
}

func (h *Handler) correctExpense(c *gin.Context) {
	var req correctExpenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	exp, err := h.expenses.Correct(c.Request.Context(), userID(c), c.Param("id"), req.CategoryID)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, toExpenseResponse(exp))
}

func (h *Handler) listExpenses(c *gin.Context) {
	params, err := listParamsFromQuery(c)
	if err != nil {
		badRequest(c, err.Error())
		return
	}

	page, err := h.queries.List(c.Request.Context(), userID(c), params)
	if err != nil {
		respondError(c, err)
		return
	}

	resp := listExpensesResponse{
		Items:      make([]expenseResponse, 0, len(page.Items)),
		NextCursor: page.NextCursor,
		HasMore:    page.HasMore,
	}
	for i := range page.Items {
		resp.Items = append(resp.Items, toExpenseResponse(&page.Items[i]))
	}
	c.JSON(http.StatusOK, resp)
}

// listParamsFromQuery translates URL query values into engine parameters.
// Only shape problems are rejected here; semantic validation (window names,
// limit bounds, category count) belongs to the query engine.
func listParamsFromQuery(c *gin.Context) (query.Params, error) {
	params := query.Params{
		Window:  c.Query("window"),
		Search:  c.Query("search"),
		Cursor:  c.Query("cursor"),
		Account: model.AccountTag(c.Query("account")),
	}

	if v := c.Query("from"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return query.Params{}, &queryParamError{"from", "must be an RFC 3339 timestamp"}
		}
		params.From = &t
	}
	if v := c.Query("to"); v != "" {
		t, err := time.Parse(time.RFC3339, v)
		if err != nil {
			return query.Params{}, &queryParamError{"to", "must be an RFC 3339 timestamp"}
		}
		params.To = &t
	}

	if v := c.Query("categoryIds"); v != "" {
		for _, part := range strings.Split(v, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				return query.Params{}, &queryParamError{"categoryIds", "must be a comma-separated list of ids"}
			}
			params.CategoryIDs = append(params.CategoryIDs, id)
		}
	}

	if v := c.Query("limit"); v != "" {
		limit, err := strconv.Atoi(v)
		if err != nil {
			return query.Params{}, &queryParamError{"limit", "must be an integer"}
		}
		params.Limit = limit
	}

	if v := c.Query("includeDeleted"); v != "" {
		include, err := strconv.ParseBool(v)
		if err != nil {
			return query.Params{}, &queryParamError{"includeDeleted", "must be a boolean"}
		}
		params.IncludeDeleted = include
	}

	return params, nil
}

type queryParamError struct {
	param  string
	reason string
}

func (e *queryParamError) Error() string {
	return "invalid query parameter " + e.param + ": " + e.reason
}
