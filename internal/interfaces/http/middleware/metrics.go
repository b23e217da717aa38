package middleware

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/jossiefancies/storefront/internal/infrastructure/telemetry"
	"go.opentelemetry.io/otel/metric"
)

type httpInstruments struct {
	requests     metric.Int64Counter
	duration     metric.Float64Histogram
	requestSize  metric.Int64Histogram
	responseSize metric.Int64Histogram
	active       metric.Int64UpDownCounter
}

func newHTTPInstruments(meter metric.Meter) (*httpInstruments, error) {
	var (
		in  httpInstruments
		err error
	)
	if in.requests, err = meter.Int64Counter("http_server_request_total",
		metric.WithDescription("HTTP requests served"),
		metric.WithUnit("{request}")); err != nil {
		return nil, err
	}
	if in.duration, err = meter.Float64Histogram("http_server_request_duration_seconds",
		metric.WithDescription("HTTP request latency"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(telemetry.HTTPDurationBuckets...)); err != nil {
		return nil, err
	}
	if in.requestSize, err = meter.Int64Histogram("http_server_request_size_bytes",
		metric.WithDescription("HTTP request body size"),
		metric.WithUnit("By")); err != nil {
		return nil, err
	}
	if in.responseSize, err = meter.Int64Histogram("http_server_response_size_bytes",
		metric.WithDescription("HTTP response body size"),
		metric.WithUnit("By")); err != nil {
		return nil, err
	}
	if in.active, err = meter.Int64UpDownCounter("http_server_active_requests",
		metric.WithDescription("HTTP requests in flight"),
		metric.WithUnit("{request}")); err != nil {
		return nil, err
	}
	return &in, nil
}

// HTTPMetrics records request count, latency and body sizes per route
// template. Requests to skipPaths are not measured. If the instruments
// cannot be created the middleware only calls the next handler.
func HTTPMetrics(meter metric.Meter, skipPaths ...string) gin.HandlerFunc {
	in, err := newHTTPInstruments(meter)
	if err != nil {
		return func(c *gin.Context) { c.Next() }
	}
	skip := make(map[string]bool, len(skipPaths))
	for _, p := range skipPaths {
		skip[p] = true
	}

	return func(c *gin.Context) {
		if skip[c.Request.URL.Path] {
			c.Next()
			return
		}
		ctx := c.Request.Context()
		start := time.Now()
		in.active.Add(ctx, 1)
		defer in.active.Add(ctx, -1)

		c.Next()

		route := c.FullPath()
		if route == "" {
			route = "unmatched"
		}
		base := metric.WithAttributes(
			telemetry.AttrHTTPMethod.String(c.Request.Method),
			telemetry.AttrHTTPRoute.String(route),
		)
		in.requests.Add(ctx, 1, metric.WithAttributes(
			telemetry.AttrHTTPMethod.String(c.Request.Method),
			telemetry.AttrHTTPRoute.String(route),
			telemetry.AttrHTTPStatusCode.Int(c.Writer.Status()),
		))
		in.duration.Record(ctx, time.Since(start).Seconds(), base)
		if n := c.Request.ContentLength; n > 0 {
			in.requestSize.Record(ctx, n, base)
		}
		if n := c.Writer.Size(); n > 0 {
			in.responseSize.Record(ctx, int64(n), base)
		}
	}
}
