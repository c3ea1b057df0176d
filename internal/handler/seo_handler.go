package handler

import (
	"net/http"
	"strings"

	"github.com/ampvending/amp-backend/internal/model"
	"github.com/ampvending/amp-backend/internal/response"
	"github.com/ampvending/amp-backend/internal/service"
	"github.com/gin-gonic/gin"
)

type SEOHandler struct {
	seoService *service.SEOService
}

func NewSEOHandler(seoService *service.SEOService) *SEOHandler {
	return &SEOHandler{seoService: seoService}
}

// ListSettings godoc
// GET /api/v1/admin/seo
func (h *SEOHandler) ListSettings(c *gin.Context) {
	settings, page, err := h.seoService.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"settings": settings}, page)
}

// GetSetting godoc
// GET /api/v1/admin/seo/:id
func (h *SEOHandler) GetSetting(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	s, err := h.seoService.GetByID(c.Request.Context(), id)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"setting": s})
}

// CreateSetting godoc
// POST /api/v1/admin/seo
func (h *SEOHandler) CreateSetting(c *gin.Context) {
	var req model.CreateSEOSettingRequest
	if !bind(c, &req) {
		return
	}
	s, err := h.seoService.Create(c.Request.Context(), actor(c), req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusCreated, gin.H{"setting": s})
}

// UpdateSetting godoc
// PATCH /api/v1/admin/seo/:id
func (h *SEOHandler) UpdateSetting(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	var req model.UpdateSEOSettingRequest
	if !bind(c, &req) {
		return
	}
	s, err := h.seoService.Update(c.Request.Context(), actor(c), id, req)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"setting": s})
}

// DeleteSetting godoc
// DELETE /api/v1/admin/seo/:id
func (h *SEOHandler) DeleteSetting(c *gin.Context) {
	id, ok := pathID(c, "id")
	if !ok {
		return
	}
	if err := h.seoService.Delete(c.Request.Context(), actor(c), id); err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"id": id})
}

// GetPublicSetting godoc
// GET /api/v1/public/seo?path=/machines
func (h *SEOHandler) GetPublicSetting(c *gin.Context) {
	path := strings.TrimSpace(c.Query("path"))
	if path == "" || !strings.HasPrefix(path, "/") {
		response.FailWithDetails(c, http.StatusBadRequest, response.ErrValidation,
			[]response.Detail{{Field: "path", Message: "path must start with /"}})
		return
	}
	s, err := h.seoService.GetByPath(c.Request.Context(), path)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, s)
}
