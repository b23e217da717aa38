package telemetry

import (
	"context"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
)

// InstrumentationName is the tracer name used by application services
const InstrumentationName = "github.com/jossiefancies/storefront"

// Span attribute keys for storefront operations
const (
	SpanAttrOrderID         = "storefront.order_id"
	SpanAttrProductID       = "storefront.product_id"
	SpanAttrItemCount       = "storefront.item_count"
	SpanAttrTransactionType = "storefront.stock.transaction_type"
	SpanAttrAuthenticated   = "storefront.customer.authenticated"
)

// StartServiceSpan starts an internal span named "<service>.<method>"
func StartServiceSpan(ctx context.Context, service, method string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	return otel.Tracer(InstrumentationName).Start(ctx, service+"."+method,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attrs...),
	)
}

// EndSpan records err on the span, if any, and ends it
func EndSpan(span trace.Span, err error) {
	if err != nil {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	} else {
		span.SetStatus(codes.Ok, "")
	}
	span.End()
}
