package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"
	tradeapp "github.com/jossiefancies/storefront/internal/application/trade"
)

// CartHandler handles the shopper's cart. The cart belongs to the bearer
// token's user when present, otherwise to the session cookie.
type CartHandler struct {
	BaseHandler
	cartService *tradeapp.CartService
}

// NewCartHandler creates a new CartHandler
func NewCartHandler(cartService *tradeapp.CartService) *CartHandler {
	return &CartHandler{cartService: cartService}
}

// Get godoc
// @Summary      Get cart
// @Tags         cart
// @Produce      json
// @Success      200 {object} APIResponse[tradeapp.CartResponse]
// @Router       /cart/ [get]
func (h *CartHandler) Get(c *gin.Context) {
	cart, err := h.cartService.GetCart(c.Request.Context(), cartOwner(c))
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Success(c, cart)
}

// AddItem godoc
// @Summary      Add a product to the cart
// @Description  Quantities of an existing line are merged
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body tradeapp.AddCartItemRequest true "Product and quantity (default 1)"
// @Success      201 {object} APIResponse[tradeapp.CartItemResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /cart/add_item/ [post]
func (h *CartHandler) AddItem(c *gin.Context) {
	var req tradeapp.AddCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	item, err := h.cartService.AddItem(c.Request.Context(), cartOwner(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	h.Created(c, item)
}

// UpdateItem godoc
// @Summary      Change a cart line's quantity
// @Description  A quantity of zero or less removes the line
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body tradeapp.UpdateCartItemRequest true "Product and quantity"
// @Success      200 {object} APIResponse[tradeapp.CartItemResponse]
// @Failure      400 {object} ErrorResponse
// @Failure      404 {object} ErrorResponse
// @Router       /cart/update_item/ [put]
func (h *CartHandler) UpdateItem(c *gin.Context) {
	var req tradeapp.UpdateCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	item, removed, err := h.cartService.UpdateItem(c.Request.Context(), cartOwner(c), req)
	if err != nil {
		h.HandleError(c, err)
		return
	}
	if removed {
		h.Message(c, http.StatusOK, "Item removed from cart")
		return
	}
	h.Success(c, item)
}

// RemoveItem godoc
// @Summary      Remove a product from the cart
// @Tags         cart
// @Accept       json
// @Produce      json
// @Param        request body tradeapp.RemoveCartItemRequest true "Product"
// @Success      200 {object} MessageResponse
// @Failure      404 {object} ErrorResponse
// @Router       /cart/remove_item/ [delete]
func (h *CartHandler) RemoveItem(c *gin.Context) {
	var req tradeapp.RemoveCartItemRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BindError(c, err)
		return
	}
	if err := h.cartService.RemoveItem(c.Request.Context(), cartOwner(c), req.ProductID); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, http.StatusOK, "Item removed from cart")
}

// Clear godoc
// @Summary      Empty the cart
// @Tags         cart
// @Produce      json
// @Success      200 {object} MessageResponse
// @Router       /cart/clear/ [delete]
func (h *CartHandler) Clear(c *gin.Context) {
	if err := h.cartService.Clear(c.Request.Context(), cartOwner(c)); err != nil {
		h.HandleError(c, err)
		return
	}
	h.Message(c, http.StatusOK, "Cart cleared")
}
