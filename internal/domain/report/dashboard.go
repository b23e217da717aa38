package report

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// StatusCount is the number of orders in one status
type StatusCount struct {
	Status string `json:"status"`
	Count  int64  `json:"count"`
}

// OrderAnalytics is a read model of order volume and revenue for the dashboard
type OrderAnalytics struct {
	TotalOrders      int64           `json:"total_orders"`
	TotalRevenue     decimal.Decimal `json:"total_revenue"`
	OrdersToday      int64           `json:"orders_today"`
	OrdersThisWeek   int64           `json:"orders_this_week"`
	OrdersThisMonth  int64           `json:"orders_this_month"`
	RevenueThisMonth decimal.Decimal `json:"revenue_this_month"`
	PendingOrders    int64           `json:"pending_orders"`
	ConfirmedOrders  int64           `json:"confirmed_orders"`
	StatusBreakdown  []StatusCount   `json:"status_breakdown"`
}

// InventoryAlerts summarises products needing attention
type InventoryAlerts struct {
	LowStockCount   int64 `json:"low_stock_count"`
	OutOfStockCount int64 `json:"out_of_stock_count"`
	// TotalAlerts counts out-of-stock products in both buckets.
	TotalAlerts int64 `json:"total_alerts"`
}

// NewInventoryAlerts builds the alert summary from the two counts
func NewInventoryAlerts(lowStock, outOfStock int64) InventoryAlerts {
	return InventoryAlerts{
		LowStockCount:   lowStock,
		OutOfStockCount: outOfStock,
		TotalAlerts:     lowStock + outOfStock,
	}
}

// AnalyticsWindow holds the period boundaries used by order analytics
type AnalyticsWindow struct {
	TodayStart    time.Time
	TomorrowStart time.Time
	WeekStart     time.Time
	MonthStart    time.Time
}

// NewAnalyticsWindow computes the calendar boundaries for now in loc.
// Week and month are the trailing 7 and 30 days from today's date.
func NewAnalyticsWindow(now time.Time, loc *time.Location) AnalyticsWindow {
	if loc == nil {
		loc = time.UTC
	}
	local := now.In(loc)
	today := time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, loc)
	return AnalyticsWindow{
		TodayStart:    today,
		TomorrowStart: today.AddDate(0, 0, 1),
		WeekStart:     today.AddDate(0, 0, -7),
		MonthStart:    today.AddDate(0, 0, -30),
	}
}

// DashboardRepository defines the read queries behind the admin dashboard
type DashboardRepository interface {
	// GetOrderAnalytics aggregates orders over the given window
	GetOrderAnalytics(ctx context.Context, window AnalyticsWindow) (*OrderAnalytics, error)
}
