package report

import (
	"context"
	"time"

	tradeapp "github.com/jossiefancies/storefront/internal/application/trade"
	"github.com/jossiefancies/storefront/internal/domain/catalog"
	"github.com/jossiefancies/storefront/internal/domain/report"
	"github.com/jossiefancies/storefront/internal/domain/trade"
	"go.uber.org/zap"
)

// RecentOrdersLimit is the number of orders shown on the dashboard landing page
const RecentOrdersLimit = 5

// DashboardResponse is the admin dashboard landing payload
type DashboardResponse struct {
	Analytics       *report.OrderAnalytics   `json:"analytics"`
	InventoryAlerts report.InventoryAlerts   `json:"inventory_alerts"`
	RecentOrders    []tradeapp.OrderResponse `json:"recent_orders"`
}

// DashboardService serves the admin dashboard read models
type DashboardService struct {
	dashboardRepo report.DashboardRepository
	productRepo   catalog.ProductRepository
	orderRepo     trade.OrderRepository
	location      *time.Location
	now           func() time.Time
	logger        *zap.Logger
}

// NewDashboardService creates a new DashboardService. Calendar periods are
// computed in loc; a nil loc means UTC.
func NewDashboardService(
	dashboardRepo report.DashboardRepository,
	productRepo catalog.ProductRepository,
	orderRepo trade.OrderRepository,
	loc *time.Location,
	logger *zap.Logger,
) *DashboardService {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &DashboardService{
		dashboardRepo: dashboardRepo,
		productRepo:   productRepo,
		orderRepo:     orderRepo,
		location:      loc,
		now:           time.Now,
		logger:        logger,
	}
}

// Analytics returns order counts and revenue for today, the trailing week and
// the trailing month
func (s *DashboardService) Analytics(ctx context.Context) (*report.OrderAnalytics, error) {
	window := report.NewAnalyticsWindow(s.now(), s.location)
	analytics, err := s.dashboardRepo.GetOrderAnalytics(ctx, window)
	if err != nil {
		s.logger.Error("failed to load order analytics", zap.Error(err))
		return nil, err
	}
	return analytics, nil
}

// InventoryAlerts returns the low and out of stock counts
func (s *DashboardService) InventoryAlerts(ctx context.Context) (report.InventoryAlerts, error) {
	lowStock, err := s.productRepo.CountLowStock(ctx)
	if err != nil {
		return report.InventoryAlerts{}, err
	}
	outOfStock, err := s.productRepo.CountOutOfStock(ctx)
	if err != nil {
		return report.InventoryAlerts{}, err
	}
	return report.NewInventoryAlerts(lowStock, outOfStock), nil
}

// Dashboard returns analytics, inventory alerts and the most recent orders
func (s *DashboardService) Dashboard(ctx context.Context) (*DashboardResponse, error) {
	analytics, err := s.Analytics(ctx)
	if err != nil {
		return nil, err
	}
	alerts, err := s.InventoryAlerts(ctx)
	if err != nil {
		return nil, err
	}
	orders, err := s.orderRepo.FindRecent(ctx, RecentOrdersLimit)
	if err != nil {
		return nil, err
	}
	return &DashboardResponse{
		Analytics:       analytics,
		InventoryAlerts: alerts,
		RecentOrders:    tradeapp.ToOrderResponses(orders),
	}, nil
}
