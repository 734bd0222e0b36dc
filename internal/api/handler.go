// Package api exposes the expense tracker over HTTP as a JSON API.
//
// All routes live under /api/v1 and require a Bearer JWT; the middleware
// resolves the user from the token's subject claim, so every handler works
// strictly within one user's data. Auth issuance itself is external.
package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/aleksanderujek/oro/internal/dashboard"
	"github.com/aleksanderujek/oro/internal/engine"
	"github.com/aleksanderujek/oro/internal/expense"
	"github.com/aleksanderujek/oro/internal/mapping"
	"github.com/aleksanderujek/oro/internal/query"
	"github.com/aleksanderujek/oro/internal/service"
)

// Handler carries the services the HTTP routes delegate to.
type Handler struct {
	storage   service.Storage
	expenses  *expense.Service
	queries   *query.Engine
	dashboard *dashboard.Aggregator
	engine    *engine.Engine
	resolver  *mapping.Resolver
}

// NewHandler creates the API handler over the given services.
func NewHandler(
	storage service.Storage,
	expenses *expense.Service,
	queries *query.Engine,
	aggregator *dashboard.Aggregator,
	eng *engine.Engine,
	resolver *mapping.Resolver,
) *Handler {
	return &Handler{
		storage:   storage,
		expenses:  expenses,
		queries:   queries,
		dashboard: aggregator,
		engine:    eng,
		resolver:  resolver,
	}
}

// NewRouter assembles the full gin engine: logging, recovery, the JWT
// secret injection, and all routes. Tests and the serve command share this
// assembly so they exercise the same stack.
func NewRouter(handler *Handler, jwtSecret []byte) *gin.Engine {
	router := gin.New()
	router.Use(RequestLogger())
	router.Use(gin.Recovery())

	router.Use(func(c *gin.Context) {
		c.Set("jwtSecret", jwtSecret)
		c.Next()
	})

	handler.SetupRoutes(router)
	return router
}

// SetupRoutes registers every route on the router.
func (h *Handler) SetupRoutes(router *gin.Engine) {
	router.GET("/healthz", h.healthz)

	v1 := router.Group("/api/v1")
	v1.Use(AuthMiddleware())
	{
		v1.POST("/expenses", h.createExpense)
		v1.GET("/expenses", h.listExpenses)
		v1.GET("/expenses/:id", h.getExpense)
		v1.PATCH("/expenses/:id", h.updateExpense)
		v1.DELETE("/expenses/:id", h.deleteExpense)
		v1.POST("/expenses/:id/restore", h.restoreExpense)
		v1.POST("/expenses/:id/correct", h.correctExpense)

		v1.POST("/categorize", h.categorize)
		v1.POST("/merchants/resolve", h.resolveMerchant)

		v1.GET("/dashboard", h.getDashboard)

		v1.GET("/categories", h.listCategories)

		v1.GET("/mappings", h.listMappings)
		v1.PUT("/mappings", h.saveMapping)
		v1.DELETE("/mappings/:merchantKey", h.deleteMapping)

		v1.GET("/profile", h.getProfile)
		v1.PUT("/profile", h.saveProfile)
	}
}

func (h *Handler) healthz(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}
