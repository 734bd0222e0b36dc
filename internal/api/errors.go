package api

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aleksanderujek/oro/internal/common"
	"github.com/aleksanderujek/oro/internal/cursor"
	"github.com/aleksanderujek/oro/internal/dashboard"
	"github.com/aleksanderujek/oro/internal/expense"
	"github.com/aleksanderujek/oro/internal/model"
	"github.com/aleksanderujek/oro/internal/query"
)

// Error codes returned in ErrorResponse.Code.
const (
	codeInvalidRequest = "INVALID_REQUEST"
	codeInvalidDraft   = "INVALID_DRAFT"
	codeInvalidFilter  = "INVALID_FILTER"
	codeInvalidCursor  = "INVALID_CURSOR"
	codeNotFound       = "NOT_FOUND"
	codeDeleted        = "EXPENSE_DELETED"
	codeNotDeleted     = "NOT_DELETED"
	codeRestoreExpired = "RESTORE_EXPIRED"
	codeUnauthorized   = "UNAUTHORIZED"
	codeInternal       = "INTERNAL_ERROR"
)

// respondError maps a domain error onto a status code and discriminated
// error body. Anything unrecognized is a store or programming failure and
// turns into a generic 500 with the detail kept out of the response.
func respondError(c *gin.Context, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidDraft), errors.Is(err, model.ErrInvalidAccount):
		abortError(c, http.StatusBadRequest, codeInvalidDraft, err.Error())
	case errors.Is(err, cursor.ErrInvalidCursor):
		abortError(c, http.StatusBadRequest, codeInvalidCursor, err.Error())
	case errors.Is(err, query.ErrInvalidParams):
		abortError(c, http.StatusBadRequest, codeInvalidFilter, err.Error())
	case errors.Is(err, dashboard.ErrInvalidRequest), errors.Is(err, model.ErrInvalidMapping):
		abortError(c, http.StatusBadRequest, codeInvalidRequest, err.Error())
	case errors.Is(err, common.ErrNotFound):
		abortError(c, http.StatusNotFound, codeNotFound, "resource not found")
	case errors.Is(err, expense.ErrDeleted):
		abortError(c, http.StatusConflict, codeDeleted, "expense is deleted; restore it before editing")
	case errors.Is(err, model.ErrNotDeleted):
		abortError(c, http.StatusConflict, codeNotDeleted, "expense is not deleted")
	case errors.Is(err, model.ErrRestoreExpired):
		abortError(c, http.StatusGone, codeRestoreExpired, "restore window has elapsed")
	default:
		slog.Error("request failed",
			"method", c.Request.Method,
			"path", c.FullPath(),
			"error", err)
		abortError(c, http.StatusInternalServerError, codeInternal, "an internal error occurred")
	}
}

// abortError writes the error body and stops the handler chain.
func abortError(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, ErrorResponse{
		Status:  "error",
		Code:    code,
		Message: message,
	})
}

// badRequest is a shorthand for request-shape failures caught before any
// domain call (JSON binding, query parsing).
func badRequest(c *gin.Context, message string) {
	abortError(c, http.StatusBadRequest, codeInvalidRequest, message)
}
