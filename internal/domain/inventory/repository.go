package inventory

import (
	"context"

	"github.com/google/uuid"
)

// HistoryQuery narrows a stock history listing
type HistoryQuery struct {
	ProductID       *uuid.UUID
	OrderID         *uuid.UUID
	TransactionType TransactionType
	Page            int
	PageSize        int
}

// StockHistoryRepository defines the interface for stock history persistence
type StockHistoryRepository interface {
	// FindByID finds a history row with its product and user
	FindByID(ctx context.Context, id uuid.UUID) (*StockHistory, error)

	// List returns one page of history rows, newest first, and the total count
	List(ctx context.Context, q HistoryQuery) ([]StockHistory, int64, error)

	// Create appends a history row
	Create(ctx context.Context, h *StockHistory) error
}
