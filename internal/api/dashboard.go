package api

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/aleksanderujek/oro/internal/dashboard"
	"github.com/aleksanderujek/oro/internal/model"
)

func (h *Handler) getDashboard(c *gin.Context) {
	req := dashboard.Request{
		Month:   c.Query("month"),
		Account: model.AccountTag(c.Query("account")),
	}

	if v := c.Query("categoryIds"); v != "" {
		for _, part := range strings.Split(v, ",") {
			id, err := strconv.ParseInt(strings.TrimSpace(part), 10, 64)
			if err != nil {
				badRequest(c, "invalid query parameter categoryIds: must be a comma-separated list of ids")
				return
			}
			req.CategoryIDs = append(req.CategoryIDs, id)
		}
	}

	snapshot, err := h.dashboard.Aggregate(c.Request.Context(), userID(c), req)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, snapshot)
}
