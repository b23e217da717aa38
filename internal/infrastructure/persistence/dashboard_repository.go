package persistence

import (
	"context"

	"github.com/jossiefancies/storefront/internal/domain/report"
	"github.com/jossiefancies/storefront/internal/domain/trade"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// GormDashboardRepository implements report.DashboardRepository using GORM
type GormDashboardRepository struct {
	db *gorm.DB
}

// NewGormDashboardRepository creates a new GormDashboardRepository
func NewGormDashboardRepository(db *gorm.DB) *GormDashboardRepository {
	return &GormDashboardRepository{db: db}
}

type orderTotalsRow struct {
	Count   int64
	Revenue decimal.NullDecimal
}

// GetOrderAnalytics aggregates orders over the given window
func (r *GormDashboardRepository) GetOrderAnalytics(ctx context.Context, window report.AnalyticsWindow) (*report.OrderAnalytics, error) {
	db := r.db.WithContext(ctx)
	analytics := &report.OrderAnalytics{
		StatusBreakdown: []report.StatusCount{},
	}

	all, err := r.totals(db, nil)
	if err != nil {
		return nil, err
	}
	analytics.TotalOrders = all.Count
	analytics.TotalRevenue = revenueOrZero(all.Revenue)

	month, err := r.totals(db, func(q *gorm.DB) *gorm.DB {
		return q.Where("created_at >= ?", window.MonthStart)
	})
	if err != nil {
		return nil, err
	}
	analytics.OrdersThisMonth = month.Count
	analytics.RevenueThisMonth = revenueOrZero(month.Revenue)

	if err := db.Model(&trade.Order{}).
		Where("created_at >= ? AND created_at < ?", window.TodayStart, window.TomorrowStart).
		Count(&analytics.OrdersToday).Error; err != nil {
		return nil, err
	}
	if err := db.Model(&trade.Order{}).
		Where("created_at >= ?", window.WeekStart).
		Count(&analytics.OrdersThisWeek).Error; err != nil {
		return nil, err
	}

	if err := db.Model(&trade.Order{}).
		Select("status, COUNT(*) AS count").
		Group("status").
		Order("status ASC").
		Scan(&analytics.StatusBreakdown).Error; err != nil {
		return nil, err
	}
	if analytics.StatusBreakdown == nil {
		analytics.StatusBreakdown = []report.StatusCount{}
	}
	for _, sc := range analytics.StatusBreakdown {
		switch trade.OrderStatus(sc.Status) {
		case trade.OrderStatusPending:
			analytics.PendingOrders = sc.Count
		case trade.OrderStatusConfirmed:
			analytics.ConfirmedOrders = sc.Count
		}
	}

	return analytics, nil
}

func (r *GormDashboardRepository) totals(db *gorm.DB, scope func(*gorm.DB) *gorm.DB) (orderTotalsRow, error) {
	var row orderTotalsRow
	q := db.Model(&trade.Order{}).Select("COUNT(*) AS count, SUM(total_amount) AS revenue")
	if scope != nil {
		q = q.Scopes(scope)
	}
	err := q.Scan(&row).Error
	return row, err
}

func revenueOrZero(v decimal.NullDecimal) decimal.Decimal {
	if !v.Valid {
		return decimal.Zero
	}
	return v.Decimal
}

var _ report.DashboardRepository = (*GormDashboardRepository)(nil)
