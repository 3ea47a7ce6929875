package observability

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	otelprometheus "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/zap"
)

// MetricsConfig holds metrics configuration
type MetricsConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	ServiceName    string `mapstructure:"service_name"`
	PrometheusPath string `mapstructure:"prometheus_path"`
}

// DefaultMetricsConfig returns default metrics configuration
func DefaultMetricsConfig() *MetricsConfig {
	return &MetricsConfig{
		Enabled:        true,
		ServiceName:    "oc-provider-backend",
		PrometheusPath: "/metrics",
	}
}

// MetricsProvider manages OpenTelemetry metrics exported through Prometheus.
// A disabled provider accepts every Record call and drops it.
type MetricsProvider struct {
	config        *MetricsConfig
	meterProvider *sdkmetric.MeterProvider
	meter         metric.Meter
	logger        *zap.Logger
	registry      *prometheus.Registry
	handler       http.Handler

	httpRequestsTotal   metric.Int64Counter
	httpRequestDuration metric.Float64Histogram
	documentOpsTotal    metric.Int64Counter
	documentOpDuration  metric.Float64Histogram
	gatewayCallsTotal   metric.Int64Counter
	gatewayCallDuration metric.Float64Histogram
	circuitTransitions  metric.Int64Counter
	cacheHits           metric.Int64Counter
	cacheMisses         metric.Int64Counter
	rateLimited         metric.Int64Counter
}

// NewMetricsProvider creates a new metrics provider
func NewMetricsProvider(config *MetricsConfig, logger *zap.Logger) (*MetricsProvider, error) {
	if !config.Enabled {
		return &MetricsProvider{
			config: config,
			meter:  otel.Meter(config.ServiceName),
			logger: logger,
		}, nil
	}

	// Each provider owns its registry so repeated construction never
	// collides on the global Prometheus registerer.
	registry := prometheus.NewRegistry()
	exporter, err := otelprometheus.New(
		otelprometheus.WithRegisterer(registry),
	)
	if err != nil {
		return nil, err
	}

	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(meterProvider)

	mp := &MetricsProvider{
		config:        config,
		meterProvider: meterProvider,
		meter:         meterProvider.Meter(config.ServiceName),
		logger:        logger,
		registry:      registry,
		handler:       promhttp.HandlerFor(registry, promhttp.HandlerOpts{}),
	}

	if err := mp.initMetrics(); err != nil {
		return nil, err
	}

	logger.Info("OpenTelemetry metrics initialized",
		zap.String("service", config.ServiceName),
		zap.String("prometheus_path", config.PrometheusPath),
	)
	return mp, nil
}

func (mp *MetricsProvider) initMetrics() error {
	var err error

	if mp.httpRequestsTotal, err = mp.meter.Int64Counter(
		"http_requests_total",
		metric.WithDescription("Total number of HTTP requests"),
	); err != nil {
		return err
	}
	if mp.httpRequestDuration, err = mp.meter.Float64Histogram(
		"http_request_duration_seconds",
		metric.WithDescription("HTTP request duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return err
	}

	if mp.documentOpsTotal, err = mp.meter.Int64Counter(
		"document_operations_total",
		metric.WithDescription("Document use case invocations by operation and outcome"),
	); err != nil {
		return err
	}
	if mp.documentOpDuration, err = mp.meter.Float64Histogram(
		"document_operation_duration_seconds",
		metric.WithDescription("Document use case duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return err
	}

	if mp.gatewayCallsTotal, err = mp.meter.Int64Counter(
		"client_gateway_requests_total",
		metric.WithDescription("Calls to the client backend by outcome"),
	); err != nil {
		return err
	}
	if mp.gatewayCallDuration, err = mp.meter.Float64Histogram(
		"client_gateway_request_duration_seconds",
		metric.WithDescription("Client backend call duration in seconds"),
		metric.WithUnit("s"),
	); err != nil {
		return err
	}
	if mp.circuitTransitions, err = mp.meter.Int64Counter(
		"circuit_breaker_transitions_total",
		metric.WithDescription("Circuit breaker state transitions"),
	); err != nil {
		return err
	}

	if mp.cacheHits, err = mp.meter.Int64Counter(
		"cache_hits_total",
		metric.WithDescription("Total number of cache hits"),
	); err != nil {
		return err
	}
	if mp.cacheMisses, err = mp.meter.Int64Counter(
		"cache_misses_total",
		metric.WithDescription("Total number of cache misses"),
	); err != nil {
		return err
	}

	mp.rateLimited, err = mp.meter.Int64Counter(
		"rate_limited_requests_total",
		metric.WithDescription("Requests rejected by the rate limiter"),
	)
	return err
}

func outcome(success bool) string {
	if success {
		return "ok"
	}
	return "error"
}

// RecordHTTPRequest records an HTTP request metric
func (mp *MetricsProvider) RecordHTTPRequest(ctx context.Context, method, route string, statusCode int, duration time.Duration) {
	if mp.httpRequestsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		AttrHTTPMethod.String(method),
		AttrHTTPRoute.String(route),
		AttrHTTPStatusCode.Int(statusCode),
	)
	mp.httpRequestsTotal.Add(ctx, 1, attrs)
	mp.httpRequestDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordDocumentOperation records a document use case outcome
func (mp *MetricsProvider) RecordDocumentOperation(ctx context.Context, operation string, success bool, duration time.Duration) {
	if mp.documentOpsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		AttrDocumentOperation.String(operation),
		AttrOutcome.String(outcome(success)),
	)
	mp.documentOpsTotal.Add(ctx, 1, attrs)
	mp.documentOpDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordGatewayCall records one attempt against the client backend.
// statusCode is 0 when no response was received.
func (mp *MetricsProvider) RecordGatewayCall(ctx context.Context, result string, statusCode int, duration time.Duration) {
	if mp.gatewayCallsTotal == nil {
		return
	}
	attrs := metric.WithAttributes(
		AttrOutcome.String(result),
		AttrHTTPStatusCode.Int(statusCode),
	)
	mp.gatewayCallsTotal.Add(ctx, 1, attrs)
	mp.gatewayCallDuration.Record(ctx, duration.Seconds(), attrs)
}

// RecordCircuitTransition records a circuit breaker state change
func (mp *MetricsProvider) RecordCircuitTransition(name, from, to string) {
	if mp.circuitTransitions == nil {
		return
	}
	mp.circuitTransitions.Add(context.Background(), 1, metric.WithAttributes(
		AttrCircuitName.String(name),
		AttrCircuitFrom.String(from),
		AttrCircuitTo.String(to),
	))
}

// RecordCacheHit records a cache hit
func (mp *MetricsProvider) RecordCacheHit(ctx context.Context, cacheName string) {
	if mp.cacheHits == nil {
		return
	}
	mp.cacheHits.Add(ctx, 1, metric.WithAttributes(AttrCacheName.String(cacheName)))
}

// RecordCacheMiss records a cache miss
func (mp *MetricsProvider) RecordCacheMiss(ctx context.Context, cacheName string) {
	if mp.cacheMisses == nil {
		return
	}
	mp.cacheMisses.Add(ctx, 1, metric.WithAttributes(AttrCacheName.String(cacheName)))
}

// RecordRateLimited records a request rejected by the rate limiter
func (mp *MetricsProvider) RecordRateLimited(ctx context.Context, route string) {
	if mp.rateLimited == nil {
		return
	}
	mp.rateLimited.Add(ctx, 1, metric.WithAttributes(AttrHTTPRoute.String(route)))
}

// Enabled reports whether metrics are exported
func (mp *MetricsProvider) Enabled() bool {
	return mp.config.Enabled
}

// Path returns the scrape path
func (mp *MetricsProvider) Path() string {
	return mp.config.PrometheusPath
}

// Handler returns an HTTP handler for Prometheus metrics
func (mp *MetricsProvider) Handler() http.Handler {
	if mp.handler != nil {
		return mp.handler
	}
	return http.NotFoundHandler()
}

// Meter returns the meter for creating custom metrics
func (mp *MetricsProvider) Meter() metric.Meter {
	return mp.meter
}

// Shutdown gracefully shuts down the metrics provider
func (mp *MetricsProvider) Shutdown(ctx context.Context) error {
	if mp.meterProvider != nil {
		return mp.meterProvider.Shutdown(ctx)
	}
	return nil
}
