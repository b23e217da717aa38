package telemetry

import (
	"context"

	"github.com/shopspring/decimal"
	"go.opentelemetry.io/otel/metric"
)

// OrderMetrics counts placed orders, their value and the units sold
type OrderMetrics struct {
	placed metric.Int64Counter
	amount metric.Int64Counter
	units  metric.Int64Counter
}

func NewOrderMetrics(meter metric.Meter) (*OrderMetrics, error) {
	placed, err := meter.Int64Counter("storefront_order_placed_total",
		metric.WithDescription("Orders placed at checkout"),
		metric.WithUnit("{order}"))
	if err != nil {
		return nil, err
	}
	// cents keep the counter integral
	amount, err := meter.Int64Counter("storefront_order_amount_total",
		metric.WithDescription("Value of placed orders including shipping, in cents"),
		metric.WithUnit("{cent}"))
	if err != nil {
		return nil, err
	}
	units, err := meter.Int64Counter("storefront_order_units_total",
		metric.WithDescription("Product units sold through placed orders"),
		metric.WithUnit("{unit}"))
	if err != nil {
		return nil, err
	}
	return &OrderMetrics{placed: placed, amount: amount, units: units}, nil
}

// RecordOrderPlaced counts one order worth total (in KES) holding items units
func (m *OrderMetrics) RecordOrderPlaced(ctx context.Context, total decimal.Decimal, items int) {
	currency := metric.WithAttributes(AttrCurrency.String("KES"))
	m.placed.Add(ctx, 1)
	m.amount.Add(ctx, total.Shift(2).Round(0).IntPart(), currency)
	m.units.Add(ctx, int64(items))
}
