package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/One-Window-Operations-OwO/owo-internet/backend/internal/service"
	"github.com/One-Window-Operations-OwO/owo-internet/backend/pkg/response"
)

// DashboardHandler counters endpoint.
type DashboardHandler struct {
	dashboardSvc service.DashboardService
}

// NewDashboardHandler creates a DashboardHandler.
func NewDashboardHandler(dashboardSvc service.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardSvc: dashboardSvc}
}

// GetDashboard returns global counters for admins and own counters otherwise.
// GET /api/dashboard
func (h *DashboardHandler) GetDashboard(c *gin.Context) {
	userID, ok := MustGetUserID(c)
	if !ok {
		return
	}

	resp, err := h.dashboardSvc.Get(c.Request.Context(), userID, IsAdmin(c))
	if err != nil {
		response.InternalError(c)
		return
	}
	response.OK(c, resp)
}
