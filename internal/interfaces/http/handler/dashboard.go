package handler

import (
	"github.com/gin-gonic/gin"
	reportapp "github.com/jossiefancies/storefront/internal/application/report"
)

// DashboardHandler serves the admin dashboard
type DashboardHandler struct {
	BaseHandler
	dashboardService *reportapp.DashboardService
}

// NewDashboardHandler creates a new DashboardHandler
func NewDashboardHandler(dashboardService *reportapp.DashboardService) *DashboardHandler {
	return &DashboardHandler{dashboardService: dashboardService}
}

// Dashboard godoc
// @Summary      Dashboard landing data
// @Description  Analytics, inventory alerts and the most recent orders
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} APIResponse[reportapp.DashboardResponse]
// @Security     BearerAuth
// @Router       /admin/dashboard/ [get]
func (h *DashboardHandler) Dashboard(c *gin.Context) {
	data, err := h.dashboardService.Dashboard(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, data)
}

// Analytics godoc
// @Summary      Order analytics
// @Tags         dashboard
// @Produce      json
// @Success      200 {object} APIResponse[report.OrderAnalytics]
// @Security     BearerAuth
// @Router       /admin/dashboard/analytics [get]
func (h *DashboardHandler) Analytics(c *gin.Context) {
	analytics, err := h.dashboardService.Analytics(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, analytics)
}
