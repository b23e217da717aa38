package telemetry_test

import (
	"context"
	"database/sql"
	"testing"
	"time"

	"github.com/jossiefancies/storefront/internal/infrastructure/telemetry"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.uber.org/zap/zaptest"
)

func newManualMeterProvider(t *testing.T) (*telemetry.MeterProvider, *sdkmetric.ManualReader) {
	t.Helper()

	reader := sdkmetric.NewManualReader()
	mp, err := telemetry.NewMeterProvider(context.Background(), telemetry.MetricsConfig{
		Enabled:     true,
		ServiceName: "storefront-test",
		Environment: "test",
		Reader:      reader,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = mp.Shutdown(context.Background()) })
	return mp, reader
}

func collect(t *testing.T, reader *sdkmetric.ManualReader) metricdata.ResourceMetrics {
	t.Helper()

	var rm metricdata.ResourceMetrics
	require.NoError(t, reader.Collect(context.Background(), &rm))
	return rm
}

func sumOf(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Sum[int64] {
	t.Helper()

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				sum, ok := m.Data.(metricdata.Sum[int64])
				require.True(t, ok, "%s is not an int64 sum", name)
				return sum
			}
		}
	}
	t.Fatalf("metric %s not collected", name)
	return metricdata.Sum[int64]{}
}

func gaugeOf(t *testing.T, rm metricdata.ResourceMetrics, name string) metricdata.Gauge[int64] {
	t.Helper()

	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == name {
				gauge, ok := m.Data.(metricdata.Gauge[int64])
				require.True(t, ok, "%s is not an int64 gauge", name)
				return gauge
			}
		}
	}
	t.Fatalf("metric %s not collected", name)
	return metricdata.Gauge[int64]{}
}

func total(sum metricdata.Sum[int64]) int64 {
	var n int64
	for _, dp := range sum.DataPoints {
		n += dp.Value
	}
	return n
}

func TestNewMeterProvider_Disabled(t *testing.T) {
	ctx := context.Background()

	mp, err := telemetry.NewMeterProvider(ctx, telemetry.MetricsConfig{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		ExportInterval:    time.Minute,
		ServiceName:       "storefront-test",
	}, zaptest.NewLogger(t))
	require.NoError(t, err)

	assert.False(t, mp.IsEnabled())
	assert.NotNil(t, mp.Meter("test"))
	assert.NoError(t, mp.ForceFlush(ctx))
	assert.NoError(t, mp.Shutdown(ctx))
}

func TestOrderMetrics_RecordOrderPlaced(t *testing.T) {
	mp, reader := newManualMeterProvider(t)
	require.True(t, mp.IsEnabled())

	orders, err := telemetry.NewOrderMetrics(mp.Meter(telemetry.InstrumentationName))
	require.NoError(t, err)

	ctx := context.Background()
	orders.RecordOrderPlaced(ctx, decimal.RequireFromString("2700.00"), 3)
	orders.RecordOrderPlaced(ctx, decimal.RequireFromString("450.55"), 1)

	rm := collect(t, reader)
	assert.Equal(t, int64(2), total(sumOf(t, rm, "storefront_order_placed_total")))
	assert.Equal(t, int64(4), total(sumOf(t, rm, "storefront_order_units_total")))

	amount := sumOf(t, rm, "storefront_order_amount_total")
	require.Len(t, amount.DataPoints, 1)
	assert.Equal(t, int64(315055), amount.DataPoints[0].Value)
	currency, ok := amount.DataPoints[0].Attributes.Value(telemetry.AttrCurrency)
	require.True(t, ok)
	assert.Equal(t, "KES", currency.AsString())
}

func TestRegisterPoolMetrics(t *testing.T) {
	mp, reader := newManualMeterProvider(t)

	stats := sql.DBStats{MaxOpenConnections: 25, OpenConnections: 4, InUse: 3, Idle: 1, WaitCount: 7}
	reg, err := telemetry.RegisterPoolMetrics(mp.Meter(telemetry.InstrumentationName), func() sql.DBStats {
		return stats
	})
	require.NoError(t, err)

	rm := collect(t, reader)
	byState := map[string]int64{}
	for _, dp := range gaugeOf(t, rm, "db_pool_connections").DataPoints {
		state, _ := dp.Attributes.Value(telemetry.AttrDBPoolState)
		byState[state.AsString()] = dp.Value
	}
	assert.Equal(t, map[string]int64{"idle": 1, "in_use": 3, "open": 4}, byState)
	assert.Equal(t, int64(25), gaugeOf(t, rm, "db_pool_connections_max").DataPoints[0].Value)
	assert.Equal(t, int64(7), total(sumOf(t, rm, "db_pool_wait_total")))

	require.NoError(t, reg.Unregister())
	stats.WaitCount = 9
	rm = collect(t, reader)
	for _, sm := range rm.ScopeMetrics {
		for _, m := range sm.Metrics {
			if m.Name == "db_pool_wait_total" {
				for _, dp := range m.Data.(metricdata.Sum[int64]).DataPoints {
					assert.Equal(t, int64(7), dp.Value)
				}
			}
		}
	}
}
