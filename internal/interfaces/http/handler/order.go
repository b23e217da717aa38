package handler

import (
	"time"

	"github.com/gin-gonic/gin"
	tradeapp "github.com/jossiefancies/storefront/internal/application/trade"
)

const dateLayout = "2006-01-02"

// OrderHandler handles checkout and the admin order endpoints
type OrderHandler struct {
	BaseHandler
	orderService *tradeapp.OrderService
	location     *time.Location
	pageSize     int
}

// NewOrderHandler creates a new OrderHandler. Date filters are read as
// calendar days in loc.
func NewOrderHandler(orderService *tradeapp.OrderService, loc *time.Location, pageSize int) *OrderHandler {
	if loc == nil {
		loc = time.UTC
	}
	return &OrderHandler{
		orderService: orderService,
		location:     loc,
		pageSize:     pageSize,
	}
}

// Place godoc
// @Summary      Place an order
// @Description  Turns the cart into an order and returns the WhatsApp confirmation link
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        request body tradeapp.PlaceOrderRequest true "Checkout form"
// @Success      201 {object} APIResponse[tradeapp.PlacedOrderResponse]
// @Failure      400 {object} ErrorResponse
// @Router       /orders/ [post]
func (h *OrderHandler) Place(c *gin.Context) {
	var req tradeapp.PlaceOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	order, err := h.orderService.PlaceOrder(c.Request.Context(), cartOwner(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, order)
}

// List godoc
// @Summary      List orders
// @Tags         orders
// @Produce      json
// @Param        status    query string false "Order status"
// @Param        search    query string false "Email, name or phone"
// @Param        date_from query string false "First day (YYYY-MM-DD)"
// @Param        date_to   query string false "Last day (YYYY-MM-DD)"
// @Param        page      query int    false "Page number"
// @Param        page_size query int    false "Page size"
// @Success      200 {object} ListResponse[tradeapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/ [get]
func (h *OrderHandler) List(c *gin.Context) {
	filter := tradeapp.OrderListFilter{
		Status: c.Query("status"),
		Search: c.Query("search"),
	}
	filter.Page, filter.PageSize = pageParams(c, h.pageSize)

	if raw := c.Query("date_from"); raw != "" {
		from, err := time.ParseInLocation(dateLayout, raw, h.location)
		if err != nil {
			h.BadRequest(c, "date_from must be YYYY-MM-DD")
			return
		}
		filter.DateFrom = &from
	}
	if raw := c.Query("date_to"); raw != "" {
		to, err := time.ParseInLocation(dateLayout, raw, h.location)
		if err != nil {
			h.BadRequest(c, "date_to must be YYYY-MM-DD")
			return
		}
		// inclusive of the whole day
		to = to.AddDate(0, 0, 1)
		filter.DateTo = &to
	}

	result, err := h.orderService.List(c.Request.Context(), filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	Paginated(&h.BaseHandler, c, result)
}

// Get godoc
// @Summary      Get order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order id or public order_id"
// @Success      200 {object} APIResponse[tradeapp.OrderResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/ [get]
func (h *OrderHandler) Get(c *gin.Context) {
	order, err := h.orderService.Get(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Update godoc
// @Summary      Update order
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id      path string true "Order id or public order_id"
// @Param        request body tradeapp.UpdateOrderRequest true "Changed fields"
// @Success      200 {object} APIResponse[tradeapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/ [put]
func (h *OrderHandler) Update(c *gin.Context) {
	var req tradeapp.UpdateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	order, err := h.orderService.Update(c.Request.Context(), c.Param("id"), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// UpdateStatus godoc
// @Summary      Change order status
// @Tags         orders
// @Accept       json
// @Produce      json
// @Param        id      path string true "Order id or public order_id"
// @Param        request body tradeapp.UpdateOrderStatusRequest true "New status"
// @Success      200 {object} APIResponse[tradeapp.OrderResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/update_status/ [patch]
func (h *OrderHandler) UpdateStatus(c *gin.Context) {
	var req tradeapp.UpdateOrderStatusRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	order, err := h.orderService.UpdateStatus(c.Request.Context(), c.Param("id"), req.Status)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, order)
}

// Delete godoc
// @Summary      Delete order
// @Tags         orders
// @Param        id path string true "Order id or public order_id"
// @Success      204
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/ [delete]
func (h *OrderHandler) Delete(c *gin.Context) {
	if err := h.orderService.Delete(c.Request.Context(), c.Param("id")); err != nil {
		h.HandleError(c, err)
		return
	}
	h.NoContent(c)
}

// WhatsApp godoc
// @Summary      WhatsApp links for an order
// @Tags         orders
// @Produce      json
// @Param        id path string true "Order id or public order_id"
// @Success      200 {object} APIResponse[tradeapp.WhatsAppLinksResponse]
// @Failure      404 {object} ErrorResponse
// @Security     BearerAuth
// @Router       /orders/{id}/whatsapp/ [get]
func (h *OrderHandler) WhatsApp(c *gin.Context) {
	links, err := h.orderService.WhatsAppLinks(c.Request.Context(), c.Param("id"))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, links)
}
