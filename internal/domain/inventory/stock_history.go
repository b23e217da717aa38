package inventory

import (
	"fmt"

	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/domain/catalog"
	"github.com/jossiefancies/storefront/internal/domain/identity"
	"github.com/jossiefancies/storefront/internal/domain/shared"
)

// TransactionType represents the cause of a stock movement
type TransactionType string

const (
	// TransactionTypeSale is stock leaving with a customer order
	TransactionTypeSale TransactionType = "sale"
	// TransactionTypeRestock is stock received from a supplier
	TransactionTypeRestock TransactionType = "restock"
	// TransactionTypeAdjustment is a manual correction of the counted stock
	TransactionTypeAdjustment TransactionType = "adjustment"
	// TransactionTypeReturn is stock coming back from a customer
	TransactionTypeReturn TransactionType = "return"
)

// String returns the string representation of TransactionType
func (t TransactionType) String() string {
	return string(t)
}

// IsValid returns true if the transaction type is valid
func (t TransactionType) IsValid() bool {
	switch t {
	case TransactionTypeSale, TransactionTypeRestock, TransactionTypeAdjustment, TransactionTypeReturn:
		return true
	}
	return false
}

// StockHistory is an append-only record of one stock movement
type StockHistory struct {
	shared.BaseEntity
	ProductID       uuid.UUID        `gorm:"type:uuid;not null;index"`
	Product         *catalog.Product `gorm:"foreignKey:ProductID"`
	TransactionType TransactionType  `gorm:"type:varchar(20);not null;index"`
	QuantityChange  int              `gorm:"not null"`
	PreviousStock   int              `gorm:"not null"`
	NewStock        int              `gorm:"not null"`
	Reason          string           `gorm:"type:varchar(200)"`
	UserID          *uuid.UUID       `gorm:"type:uuid;index"`
	User            *identity.User   `gorm:"foreignKey:UserID"`
	OrderID         *uuid.UUID       `gorm:"type:uuid;index"`
}

// TableName returns the table name for GORM
func (StockHistory) TableName() string {
	return "stock_history"
}

// NewStockHistory records a movement from previous to current stock
func NewStockHistory(
	productID uuid.UUID,
	txType TransactionType,
	change, previous, current int,
	reason string,
	userID, orderID *uuid.UUID,
) (*StockHistory, error) {
	if productID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_PRODUCT", "Product is required")
	}
	if !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", fmt.Sprintf("Invalid transaction type: %s", txType))
	}
	return &StockHistory{
		BaseEntity:      shared.NewBaseEntity(),
		ProductID:       productID,
		TransactionType: txType,
		QuantityChange:  change,
		PreviousStock:   previous,
		NewStock:        current,
		Reason:          reason,
		UserID:          userID,
		OrderID:         orderID,
	}, nil
}

// ProductName returns the loaded product's name or ""
func (h *StockHistory) ProductName() string {
	if h.Product == nil {
		return ""
	}
	return h.Product.Name
}

// UserName returns the acting user's username or ""
func (h *StockHistory) UserName() string {
	if h.User == nil {
		return ""
	}
	return h.User.Username
}
