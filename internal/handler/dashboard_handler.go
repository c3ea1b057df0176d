package handler

import (
	"net/http"

	"github.com/ampvending/amp-backend/internal/response"
	"github.com/ampvending/amp-backend/internal/service"
	"github.com/gin-gonic/gin"
)

// DashboardHandler handles admin dashboard endpoints.
type DashboardHandler struct {
	dashboardService *service.DashboardService
	activityService  *service.ActivityService
}

// NewDashboardHandler creates a new DashboardHandler.
func NewDashboardHandler(dashboardService *service.DashboardService, activityService *service.ActivityService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService, activityService: activityService}
}

// GetDashboardData godoc
// GET /api/v1/admin/dashboard
// Returns catalog counts, leads by status, recent leads and the 30-day email outcome.
func (h *DashboardHandler) GetDashboardData(c *gin.Context) {
	data, err := h.dashboardService.GetSummary(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}

	response.Success(c, http.StatusOK, data)
}

// ListActivity godoc
// GET /api/v1/admin/activity
// Lists the audit trail with filters: admin_id, action, resource_type, date_from, date_to, limit, offset.
func (h *DashboardHandler) ListActivity(c *gin.Context) {
	entries, page, err := h.activityService.List(c.Request.Context(), c.Request.URL.Query())
	if err != nil {
		fail(c, err)
		return
	}
	response.SuccessWithPagination(c, http.StatusOK, gin.H{"activity": entries}, page)
}
