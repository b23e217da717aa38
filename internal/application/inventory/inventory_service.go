package inventory

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/jossiefancies/storefront/internal/domain/catalog"
	"github.com/jossiefancies/storefront/internal/domain/inventory"
	"github.com/jossiefancies/storefront/internal/domain/report"
	"github.com/jossiefancies/storefront/internal/domain/shared"
	"github.com/jossiefancies/storefront/internal/domain/trade"
	"github.com/jossiefancies/storefront/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/attribute"
	"go.uber.org/zap"
)

// Default reasons recorded when the admin leaves the reason empty
const (
	DefaultRestockReason    = "Restock"
	DefaultAdjustmentReason = "Manual stock adjustment"
	DefaultReturnReason     = "Customer return"
)

var (
	// ErrProductNotFound is returned when a stock movement targets an unknown product
	ErrProductNotFound = shared.NewDomainError("NOT_FOUND", "Product not found")
	// ErrHistoryNotFound is returned when a stock history row does not exist
	ErrHistoryNotFound = shared.NewDomainError("NOT_FOUND", "Stock history not found")
	// ErrOrderNotFound is returned when a return references an unknown order
	ErrOrderNotFound = shared.NewDomainError("NOT_FOUND", "Order not found")
)

// InventoryService handles stock movements, the stock audit trail and alerts
type InventoryService struct {
	scope       TransactionScope
	productRepo catalog.ProductRepository
	historyRepo inventory.StockHistoryRepository
	orderRepo   trade.OrderRepository
	logger      *zap.Logger
}

// NewInventoryService creates a new InventoryService
func NewInventoryService(
	scope TransactionScope,
	productRepo catalog.ProductRepository,
	historyRepo inventory.StockHistoryRepository,
	orderRepo trade.OrderRepository,
	logger *zap.Logger,
) *InventoryService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &InventoryService{
		scope:       scope,
		productRepo: productRepo,
		historyRepo: historyRepo,
		orderRepo:   orderRepo,
		logger:      logger,
	}
}

// Restock increases a product's stock and records a restock movement
func (s *InventoryService) Restock(ctx context.Context, req RestockRequest, userID *uuid.UUID) (*StockMovementResponse, error) {
	if req.Quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be greater than zero")
	}
	return s.move(ctx, req.ProductID, inventory.TransactionTypeRestock, reasonOr(req.Reason, DefaultRestockReason), userID, nil,
		func(p *catalog.Product) (int, int, error) {
			return p.IncreaseStock(req.Quantity)
		})
}

// Adjust overwrites a product's stock; the recorded change is new - previous
func (s *InventoryService) Adjust(ctx context.Context, req AdjustRequest, userID *uuid.UUID) (*StockMovementResponse, error) {
	if req.NewStock == nil || *req.NewStock < 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Stock cannot be negative")
	}
	return s.move(ctx, req.ProductID, inventory.TransactionTypeAdjustment, reasonOr(req.Reason, DefaultAdjustmentReason), userID, nil,
		func(p *catalog.Product) (int, int, error) {
			return p.SetStock(*req.NewStock)
		})
}

// Return puts units returned by a customer back into stock
func (s *InventoryService) Return(ctx context.Context, req ReturnRequest, userID *uuid.UUID) (*StockMovementResponse, error) {
	if req.Quantity <= 0 {
		return nil, shared.NewDomainError("INVALID_QUANTITY", "Quantity must be greater than zero")
	}

	var orderPK *uuid.UUID
	if req.OrderID != nil {
		order, err := s.resolveOrder(ctx, *req.OrderID)
		if err != nil {
			return nil, err
		}
		orderPK = &order.ID
	}

	return s.move(ctx, req.ProductID, inventory.TransactionTypeReturn, reasonOr(req.Reason, DefaultReturnReason), userID, orderPK,
		func(p *catalog.Product) (int, int, error) {
			return p.IncreaseStock(req.Quantity)
		})
}

// move locks the product, applies change and appends the history row in one transaction
func (s *InventoryService) move(
	ctx context.Context,
	productID uuid.UUID,
	txType inventory.TransactionType,
	reason string,
	userID, orderID *uuid.UUID,
	change func(p *catalog.Product) (previous, current int, err error),
) (_ *StockMovementResponse, err error) {
	ctx, span := telemetry.StartServiceSpan(ctx, "InventoryService", "Move",
		attribute.String(telemetry.SpanAttrProductID, productID.String()),
		attribute.String(telemetry.SpanAttrTransactionType, txType.String()))
	defer func() { telemetry.EndSpan(span, err) }()

	var resp StockMovementResponse

	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		product, err := repos.LockProduct(ctx, productID)
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return ErrProductNotFound
			}
			return err
		}

		previous, current, err := change(product)
		if err != nil {
			return err
		}
		if err := repos.UpdateStock(ctx, product); err != nil {
			return err
		}

		h, err := inventory.NewStockHistory(product.ID, txType, current-previous, previous, current, reason, userID, orderID)
		if err != nil {
			return err
		}
		if err := repos.HistoryRepo().Create(ctx, h); err != nil {
			return err
		}
		h.Product = product

		resp = StockMovementResponse{
			ProductID:     product.ID,
			SKU:           product.SKU,
			PreviousStock: previous,
			NewStock:      current,
			StockStatus:   string(product.StockStatus()),
			History:       ToStockHistoryResponse(h),
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("stock updated",
		zap.String("sku", resp.SKU),
		zap.String("transaction_type", txType.String()),
		zap.Int("previous_stock", resp.PreviousStock),
		zap.Int("new_stock", resp.NewStock))
	return &resp, nil
}

// LowStock lists active products at or below their threshold
func (s *InventoryService) LowStock(ctx context.Context) ([]LowStockProductResponse, error) {
	products, err := s.productRepo.FindLowStock(ctx)
	if err != nil {
		return nil, err
	}
	return ToLowStockProductResponses(products), nil
}

// Alerts returns the inventory alert counts
func (s *InventoryService) Alerts(ctx context.Context) (*AlertsResponse, error) {
	lowStock, err := s.productRepo.CountLowStock(ctx)
	if err != nil {
		return nil, err
	}
	outOfStock, err := s.productRepo.CountOutOfStock(ctx)
	if err != nil {
		return nil, err
	}
	alerts := report.NewInventoryAlerts(lowStock, outOfStock)
	return &alerts, nil
}

// History returns a page of stock history, newest first
func (s *InventoryService) History(ctx context.Context, filter HistoryListFilter) (*shared.Paginated[StockHistoryResponse], error) {
	txType := inventory.TransactionType(filter.TransactionType)
	if txType != "" && !txType.IsValid() {
		return nil, shared.NewDomainError("INVALID_TRANSACTION_TYPE", "Invalid transaction type")
	}
	rows, total, err := s.historyRepo.List(ctx, inventory.HistoryQuery{
		ProductID:       filter.ProductID,
		OrderID:         filter.OrderID,
		TransactionType: txType,
		Page:            filter.Page,
		PageSize:        filter.PageSize,
	})
	if err != nil {
		return nil, err
	}
	result := shared.NewPaginated(ToStockHistoryResponses(rows), total, filter.Page, filter.PageSize)
	return &result, nil
}

// HistoryByID returns a single stock history row
func (s *InventoryService) HistoryByID(ctx context.Context, id uuid.UUID) (*StockHistoryResponse, error) {
	h, err := s.historyRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrHistoryNotFound
		}
		return nil, err
	}
	resp := ToStockHistoryResponse(h)
	return &resp, nil
}

// AlertScanTask logs the alert counts and every out-of-stock SKU.
// It is run periodically by the cron runner.
func (s *InventoryService) AlertScanTask(ctx context.Context) error {
	alerts, err := s.Alerts(ctx)
	if err != nil {
		return err
	}
	s.logger.Info("inventory alert scan",
		zap.Int64("low_stock_count", alerts.LowStockCount),
		zap.Int64("out_of_stock_count", alerts.OutOfStockCount),
		zap.Int64("total_alerts", alerts.TotalAlerts))
	if alerts.OutOfStockCount == 0 {
		return nil
	}

	products, err := s.productRepo.FindLowStock(ctx)
	if err != nil {
		return err
	}
	for i := range products {
		if products[i].StockQuantity == 0 {
			s.logger.Warn("product out of stock",
				zap.String("sku", products[i].SKU),
				zap.String("name", products[i].Name))
		}
	}
	return nil
}

func (s *InventoryService) resolveOrder(ctx context.Context, id uuid.UUID) (*trade.Order, error) {
	order, err := s.orderRepo.FindByID(ctx, id)
	if errors.Is(err, shared.ErrNotFound) {
		order, err = s.orderRepo.FindByOrderID(ctx, id)
	}
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return order, nil
}

func reasonOr(reason, fallback string) string {
	if reason == "" {
		return fallback
	}
	return reason
}
