package handler

import (
	"net/http"

	"github.com/ampvending/amp-backend/internal/model"
	"github.com/ampvending/amp-backend/internal/response"
	"github.com/ampvending/amp-backend/internal/service"
	"github.com/gin-gonic/gin"
)

type BusinessInfoHandler struct {
	infoService *service.BusinessInfoService
}

func NewBusinessInfoHandler(infoService *service.BusinessInfoService) *BusinessInfoHandler {
	return &BusinessInfoHandler{infoService: infoService}
}

// GetBusinessInfo godoc
// GET /api/v1/admin/business-info
func (h *BusinessInfoHandler) GetBusinessInfo(c *gin.Context) {
	info, err := h.infoService.GetAll(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"entries": info, "keys": model.BusinessInfoKeys})
}

// UpdateBusinessInfo godoc
// PUT /api/v1/admin/business-info
func (h *BusinessInfoHandler) UpdateBusinessInfo(c *gin.Context) {
	var req model.UpdateBusinessInfoRequest
	if !bind(c, &req) {
		return
	}
	info, err := h.infoService.Update(c.Request.Context(), actor(c), req.Entries)
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, gin.H{"entries": info})
}

// GetPublicBusinessInfo godoc
// GET /api/v1/public/business-info
func (h *BusinessInfoHandler) GetPublicBusinessInfo(c *gin.Context) {
	info, err := h.infoService.GetAll(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	response.Success(c, http.StatusOK, info)
}
