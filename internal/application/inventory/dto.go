package inventory

import (
	"time"

	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/domain/catalog"
	"github.com/jossiefancies/storefront/internal/domain/inventory"
	"github.com/jossiefancies/storefront/internal/domain/report"
	"github.com/shopspring/decimal"
)

// RestockRequest adds received units to a product
type RestockRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	Quantity  int       `json:"quantity" binding:"required,gt=0"`
	Reason    string    `json:"reason" binding:"max=200"`
}

// AdjustRequest overwrites a product's counted stock
type AdjustRequest struct {
	ProductID uuid.UUID `json:"product_id" binding:"required"`
	NewStock  *int      `json:"new_stock" binding:"required,gte=0"`
	Reason    string    `json:"reason" binding:"max=200"`
}

// ReturnRequest puts units returned by a customer back into stock.
// OrderID accepts either the order's primary id or its public order_id.
type ReturnRequest struct {
	ProductID uuid.UUID  `json:"product_id" binding:"required"`
	Quantity  int        `json:"quantity" binding:"required,gt=0"`
	OrderID   *uuid.UUID `json:"order_id"`
	Reason    string     `json:"reason" binding:"max=200"`
}

// HistoryListFilter represents filter options for the stock history list
type HistoryListFilter struct {
	ProductID       *uuid.UUID
	TransactionType string
	OrderID         *uuid.UUID
	Page            int
	PageSize        int
}

// StockHistoryResponse represents a stock history row in API responses
type StockHistoryResponse struct {
	ID              uuid.UUID  `json:"id"`
	ProductID       uuid.UUID  `json:"product"`
	ProductName     string     `json:"product_name"`
	TransactionType string     `json:"transaction_type"`
	QuantityChange  int        `json:"quantity_change"`
	PreviousStock   int        `json:"previous_stock"`
	NewStock        int        `json:"new_stock"`
	Reason          string     `json:"reason"`
	UserName        string     `json:"user_name"`
	OrderID         *uuid.UUID `json:"order,omitempty"`
	CreatedAt       time.Time  `json:"created_at"`
}

// StockMovementResponse is returned by restock, adjust and return
type StockMovementResponse struct {
	ProductID     uuid.UUID            `json:"product_id"`
	SKU           string               `json:"sku"`
	PreviousStock int                  `json:"previous_stock"`
	NewStock      int                  `json:"new_stock"`
	StockStatus   string               `json:"stock_status"`
	History       StockHistoryResponse `json:"history"`
}

// LowStockProductResponse is one row of the low stock report
type LowStockProductResponse struct {
	ID                uuid.UUID       `json:"id"`
	Name              string          `json:"name"`
	SKU               string          `json:"sku"`
	Slug              string          `json:"slug"`
	CategoryName      string          `json:"category_name"`
	Price             decimal.Decimal `json:"price"`
	StockQuantity     int             `json:"stock_quantity"`
	LowStockThreshold int             `json:"low_stock_threshold"`
	StockStatus       string          `json:"stock_status"`
}

// AlertsResponse is the inventory alert summary
type AlertsResponse = report.InventoryAlerts

// ToStockHistoryResponse converts a history row to its response
func ToStockHistoryResponse(h *inventory.StockHistory) StockHistoryResponse {
	return StockHistoryResponse{
		ID:              h.ID,
		ProductID:       h.ProductID,
		ProductName:     h.ProductName(),
		TransactionType: h.TransactionType.String(),
		QuantityChange:  h.QuantityChange,
		PreviousStock:   h.PreviousStock,
		NewStock:        h.NewStock,
		Reason:          h.Reason,
		UserName:        h.UserName(),
		OrderID:         h.OrderID,
		CreatedAt:       h.CreatedAt,
	}
}

// ToStockHistoryResponses converts a slice of history rows
func ToStockHistoryResponses(rows []inventory.StockHistory) []StockHistoryResponse {
	responses := make([]StockHistoryResponse, len(rows))
	for i := range rows {
		responses[i] = ToStockHistoryResponse(&rows[i])
	}
	return responses
}

// ToLowStockProductResponses converts products to low stock rows
func ToLowStockProductResponses(products []catalog.Product) []LowStockProductResponse {
	responses := make([]LowStockProductResponse, len(products))
	for i := range products {
		p := &products[i]
		responses[i] = LowStockProductResponse{
			ID:                p.ID,
			Name:              p.Name,
			SKU:               p.SKU,
			Slug:              p.Slug,
			CategoryName:      p.CategoryName(),
			Price:             p.Price,
			StockQuantity:     p.StockQuantity,
			LowStockThreshold: p.LowStockThreshold,
			StockStatus:       string(p.StockStatus()),
		}
	}
	return responses
}
