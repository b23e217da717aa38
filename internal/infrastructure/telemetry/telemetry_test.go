package telemetry_test

import (
	"context"
	"errors"
	"testing"

	"github.com/jossiefancies/storefront/internal/infrastructure/telemetry"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"
	"go.uber.org/zap/zaptest"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

func TestNewTracerProvider_Disabled(t *testing.T) {
	logger := zaptest.NewLogger(t)
	ctx := context.Background()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:           false,
		CollectorEndpoint: "localhost:14317",
		SamplingRatio:     1.0,
		ServiceName:       "storefront-test",
	}, logger)
	require.NoError(t, err)

	assert.False(t, tp.IsEnabled())
	assert.NotNil(t, tp.Tracer("test"))
	assert.NoError(t, tp.Shutdown(ctx))
}

func TestRegisterDBTracing(t *testing.T) {
	logger := zaptest.NewLogger(t)
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	assert.NoError(t, telemetry.RegisterDBTracing(db, false, "", logger))
	assert.NoError(t, telemetry.RegisterDBTracing(db, true, "sqlite", logger))
	assert.NoError(t, db.Exec("SELECT 1").Error)
}

func TestServiceSpan(t *testing.T) {
	ctx, span := telemetry.StartServiceSpan(context.Background(), "OrderService", "PlaceOrder",
		attribute.String("cart.id", "c-1"))
	require.NotNil(t, ctx)
	assert.NotPanics(t, func() { telemetry.EndSpan(span, errors.New("boom")) })

	_, span = telemetry.StartServiceSpan(context.Background(), "OrderService", "PlaceOrder")
	assert.NotPanics(t, func() { telemetry.EndSpan(span, nil) })
}

func TestNewTracerProvider_ExportsServiceSpans(t *testing.T) {
	ctx := context.Background()
	exporter := tracetest.NewInMemoryExporter()

	tp, err := telemetry.NewTracerProvider(ctx, telemetry.Config{
		Enabled:        true,
		SamplingRatio:  1.0,
		ServiceName:    "storefront-test",
		ServiceVersion: "1.2.3",
		Environment:    "test",
		Exporter:       exporter,
	}, zaptest.NewLogger(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = tp.Shutdown(context.Background()) })
	assert.True(t, tp.IsEnabled())

	_, span := telemetry.StartServiceSpan(ctx, "OrderService", "PlaceOrder",
		attribute.String(telemetry.SpanAttrOrderID, "9b1f"))
	telemetry.EndSpan(span, errors.New("Cart is empty."))
	require.NoError(t, tp.ForceFlush(ctx))

	spans := exporter.GetSpans()
	require.Len(t, spans, 1)
	assert.Equal(t, "OrderService.PlaceOrder", spans[0].Name)
	assert.Equal(t, codes.Error, spans[0].Status.Code)
	assert.Contains(t, spans[0].Attributes, attribute.String(telemetry.SpanAttrOrderID, "9b1f"))

	var version string
	for _, kv := range spans[0].Resource.Attributes() {
		if kv.Key == "service.version" {
			version = kv.Value.AsString()
		}
	}
	assert.Equal(t, "1.2.3", version)
}
