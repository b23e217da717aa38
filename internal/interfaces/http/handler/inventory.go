package handler

import (
	"github.com/gin-gonic/gin"
	inventoryapp "github.com/jossiefancies/storefront/internal/application/inventory"
	"github.com/jossiefancies/storefront/internal/interfaces/http/middleware"
)

// InventoryHandler handles stock movements, stock history and alerts
type InventoryHandler struct {
	BaseHandler
	inventoryService *inventoryapp.InventoryService
	pageSize         int
}

// NewInventoryHandler creates a new InventoryHandler
func NewInventoryHandler(inventoryService *inventoryapp.InventoryService, pageSize int) *InventoryHandler {
	return &InventoryHandler{
		inventoryService: inventoryService,
		pageSize:         pageSize,
	}
}

// History godoc
// @Summary      List stock history
// @Tags         inventory
// @Produce      json
// @Param        product          query string false "Product ID"
// @Param        transaction_type query string false "sale, restock, adjustment or return"
// @Param        order            query string false "Order ID"
// @Param        page             query int    false "Page number"
// @Param        page_size        query int    false "Page size"
// @Success      200 {object} ListResponse[inventoryapp.StockHistoryResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock-history/ [get]
func (h *InventoryHandler) History(c *gin.Context) {
	filter := inventoryapp.HistoryListFilter{TransactionType: c.Query("transaction_type")}
	var err error
	if filter.ProductID, err = optionalUUIDQuery(c, "product"); err != nil {
		h.BadRequest(c, "Invalid product ID")
		return
	}
	if filter.OrderID, err = optionalUUIDQuery(c, "order"); err != nil {
		h.BadRequest(c, "Invalid order ID")
		return
	}
	filter.Page, filter.PageSize = pageParams(c, h.pageSize)

	result, err := h.inventoryService.History(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, result)
}

// HistoryEntry godoc
// @Summary      Get a stock history row
// @Tags         inventory
// @Produce      json
// @Param        id path string true "History ID"
// @Success      200 {object} APIResponse[inventoryapp.StockHistoryResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /stock-history/{id}/ [get]
func (h *InventoryHandler) HistoryEntry(c *gin.Context) {
	id, ok := h.uuidParam(c, "id")
	if !ok {
		return
	}
	entry, err := h.inventoryService.HistoryByID(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, entry)
}

// Restock godoc
// @Summary      Restock a product
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.RestockRequest true "Restock"
// @Success      200 {object} APIResponse[inventoryapp.StockMovementResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/inventory/restock [post]
func (h *InventoryHandler) Restock(c *gin.Context) {
	var req inventoryapp.RestockRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.inventoryService.Restock(c.Request.Context(), req, middleware.GetJWTUserUUID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Adjust godoc
// @Summary      Set a product's counted stock
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.AdjustRequest true "Adjustment"
// @Success      200 {object} APIResponse[inventoryapp.StockMovementResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/inventory/adjust [post]
func (h *InventoryHandler) Adjust(c *gin.Context) {
	var req inventoryapp.AdjustRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.inventoryService.Adjust(c.Request.Context(), req, middleware.GetJWTUserUUID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// Return godoc
// @Summary      Return units to stock
// @Tags         inventory
// @Accept       json
// @Produce      json
// @Param        request body inventoryapp.ReturnRequest true "Return"
// @Success      200 {object} APIResponse[inventoryapp.StockMovementResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /admin/inventory/return [post]
func (h *InventoryHandler) Return(c *gin.Context) {
	var req inventoryapp.ReturnRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	result, err := h.inventoryService.Return(c.Request.Context(), req, middleware.GetJWTUserUUID(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, result)
}

// LowStock godoc
// @Summary      Low stock products
// @Tags         inventory
// @Produce      json
// @Success      200 {object} APIResponse[[]inventoryapp.LowStockProductResponse]
// @Security     BearerAuth
// @Router       /admin/inventory/low-stock [get]
func (h *InventoryHandler) LowStock(c *gin.Context) {
	products, err := h.inventoryService.LowStock(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, products)
}

// Alerts godoc
// @Summary      Inventory alert counts
// @Tags         inventory
// @Produce      json
// @Success      200 {object} APIResponse[inventoryapp.AlertsResponse]
// @Security     BearerAuth
// @Router       /admin/inventory/alerts [get]
func (h *InventoryHandler) Alerts(c *gin.Context) {
	alerts, err := h.inventoryService.Alerts(c.Request.Context())
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, alerts)
}
