package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/aleksanderujek/oro/internal/model"
	"github.com/aleksanderujek/oro/internal/normalize"
)

func (h *Handler) listCategories(c *gin.Context) {
	categories, err := h.storage.GetCategories(c.Request.Context())
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]categoryResponse, 0, len(categories))
	for _, category := range categories {
		resp = append(resp, categoryResponse{
			ID:        category.ID,
			Key:       category.Key,
			Name:      category.Name,
			SortOrder: category.SortOrder,
		})
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) listMappings(c *gin.Context) {
	mappings, err := h.storage.ListMappings(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := make([]mappingResponse, 0, len(mappings))
	for _, m := range mappings {
		resp = append(resp, mappingResponse{
			ID:          m.ID,
			MerchantKey: m.MerchantKey,
			CategoryID:  m.CategoryID,
			UpdatedAt:   m.UpdatedAt,
		})
	}
	c.JSON(http.StatusOK, resp)
}

// saveMapping upserts a merchant override through the same learning path
// the correction flow uses, so both write identical rows.
func (h *Handler) saveMapping(c *gin.Context) {
	var req saveMappingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	key := normalize.Key(req.Merchant)
	if key == "" {
		badRequest(c, "merchant name has no normalizable characters")
		return
	}

	if err := h.engine.Learn(c.Request.Context(), userID(c), req.Merchant, req.CategoryID); err != nil {
		respondError(c, err)
		return
	}

	m, err := h.storage.GetMapping(c.Request.Context(), userID(c), key)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, mappingResponse{
		ID:          m.ID,
		MerchantKey: m.MerchantKey,
		CategoryID:  m.CategoryID,
		UpdatedAt:   m.UpdatedAt,
	})
}

func (h *Handler) deleteMapping(c *gin.Context) {
	err := h.storage.DeleteMapping(c.Request.Context(), userID(c), c.Param("merchantKey"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) getProfile(c *gin.Context) {
	profile, err := h.storage.GetProfile(c.Request.Context(), userID(c))
	if err != nil {
		respondError(c, err)
		return
	}

	resp := profileResponse{Timezone: "UTC"}
	if profile != nil {
		if profile.Timezone != "" {
			resp.Timezone = profile.Timezone
		}
		resp.DefaultAccount = string(profile.DefaultAccount)
	}
	c.JSON(http.StatusOK, resp)
}

func (h *Handler) saveProfile(c *gin.Context) {
	var req profileRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, "invalid request body: "+err.Error())
		return
	}

	if req.Timezone != "" {
		if _, err := time.LoadLocation(req.Timezone); err != nil {
			badRequest(c, "unknown IANA timezone: "+req.Timezone)
			return
		}
	}

	account, err := model.ParseAccountTag(req.DefaultAccount)
	if err != nil {
		respondError(c, err)
		return
	}

	profile := &model.Profile{
		UserID:         userID(c),
		Timezone:       req.Timezone,
		DefaultAccount: account,
		UpdatedAt:      time.Now().UTC(),
	}
	if err := h.storage.SaveProfile(c.Request.Context(), profile); err != nil {
		respondError(c, err)
		return
	}

	resp := profileResponse{Timezone: "UTC", DefaultAccount: string(profile.DefaultAccount)}
	if profile.Timezone != "" {
		resp.Timezone = profile.Timezone
	}
	c.JSON(http.StatusOK, resp)
}
