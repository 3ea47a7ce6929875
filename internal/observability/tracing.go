package observability

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace"
	"go.uber.org/zap"

	apperrors "github.com/julienreichel/oc-provider-backend/pkg/errors"
)

// instrumentationName scopes the spans emitted by this service
const instrumentationName = "github.com/julienreichel/oc-provider-backend"

// Exporter kinds accepted in TracingConfig.ExporterType
const (
	ExporterStdout   = "stdout"
	ExporterOTLPGRPC = "otlp-grpc"
	ExporterOTLPHTTP = "otlp-http"
)

// TracingConfig holds OpenTelemetry tracing configuration
type TracingConfig struct {
	Enabled        bool    `mapstructure:"enabled"`
	ServiceName    string  `mapstructure:"service_name"`
	ServiceVersion string  `mapstructure:"service_version"`
	Environment    string  `mapstructure:"environment"`
	ExporterType   string  `mapstructure:"exporter_type"`
	OTLPEndpoint   string  `mapstructure:"otlp_endpoint"`
	OTLPInsecure   bool    `mapstructure:"otlp_insecure"`
	SamplingRate   float64 `mapstructure:"sampling_rate"`
	PropagatorType string  `mapstructure:"propagator_type"`
}

// DefaultTracingConfig returns default tracing configuration
func DefaultTracingConfig() *TracingConfig {
	return &TracingConfig{
		Enabled:        false,
		ServiceName:    "oc-provider-backend",
		ServiceVersion: "1.0.0",
		Environment:    "development",
		ExporterType:   ExporterStdout,
		OTLPEndpoint:   "localhost:4317",
		OTLPInsecure:   true,
		SamplingRate:   1.0,
		PropagatorType: "tracecontext",
	}
}

// TracingProvider owns the SDK tracer provider installed as the global one.
// When tracing is disabled the global no-op provider stays in place and
// every span helper in this package degrades to a no-op.
type TracingProvider struct {
	sdk *sdktrace.TracerProvider
}

// NewTracingProvider installs the global tracer provider and propagator
func NewTracingProvider(cfg *TracingConfig, logger *zap.Logger) (*TracingProvider, error) {
	if !cfg.Enabled {
		return &TracingProvider{}, nil
	}

	propagator, err := newPropagator(cfg.PropagatorType)
	if err != nil {
		return nil, err
	}

	ctx := context.Background()
	res, err := newResource(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	exporter, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create exporter: %w", err)
	}

	sdk := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(newSampler(cfg.SamplingRate)),
	)
	otel.SetTracerProvider(sdk)
	otel.SetTextMapPropagator(propagator)

	logger.Info("OpenTelemetry tracing initialized",
		zap.String("service", cfg.ServiceName),
		zap.String("exporter", cfg.ExporterType),
		zap.Float64("sampling_rate", cfg.SamplingRate),
	)
	return &TracingProvider{sdk: sdk}, nil
}

// Enabled reports whether an SDK provider was installed
func (tp *TracingProvider) Enabled() bool {
	return tp != nil && tp.sdk != nil
}

// Shutdown flushes pending spans and stops the exporter
func (tp *TracingProvider) Shutdown(ctx context.Context) error {
	if !tp.Enabled() {
		return nil
	}
	return tp.sdk.Shutdown(ctx)
}

// newResource describes this process. The attributes are schemaless so they
// merge with whatever semconv version the SDK detectors are built against.
func newResource(ctx context.Context, cfg *TracingConfig) (*resource.Resource, error) {
	return resource.New(ctx,
		resource.WithFromEnv(),
		resource.WithTelemetrySDK(),
		resource.WithAttributes(
			attribute.String("service.name", cfg.ServiceName),
			attribute.String("service.version", cfg.ServiceVersion),
			attribute.String("deployment.environment", cfg.Environment),
		),
	)
}

// newExporter falls back to stdout for unknown exporter kinds
func newExporter(ctx context.Context, cfg *TracingConfig) (sdktrace.SpanExporter, error) {
	switch cfg.ExporterType {
	case ExporterOTLPGRPC:
		opts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint)}
		if cfg.OTLPInsecure {
			opts = append(opts, otlptracegrpc.WithInsecure())
		}
		return otlptrace.New(ctx, otlptracegrpc.NewClient(opts...))
	case ExporterOTLPHTTP:
		opts := []otlptracehttp.Option{otlptracehttp.WithEndpoint(cfg.OTLPEndpoint)}
		if cfg.OTLPInsecure {
			opts = append(opts, otlptracehttp.WithInsecure())
		}
		return otlptrace.New(ctx, otlptracehttp.NewClient(opts...))
	default:
		return stdouttrace.New(stdouttrace.WithWriter(os.Stdout))
	}
}

// newSampler honours the parent decision so a trace is never half-recorded
func newSampler(rate float64) sdktrace.Sampler {
	switch {
	case rate >= 1:
		return sdktrace.ParentBased(sdktrace.AlwaysSample())
	case rate <= 0:
		return sdktrace.ParentBased(sdktrace.NeverSample())
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(rate))
	}
}

func newPropagator(kind string) (propagation.TextMapPropagator, error) {
	switch kind {
	case "", "tracecontext":
		return propagation.NewCompositeTextMapPropagator(
			propagation.TraceContext{},
			propagation.Baggage{},
		), nil
	default:
		return nil, fmt.Errorf("unsupported propagator type %q", kind)
	}
}

// StartOperationSpan opens an internal span around one document service
// operation.
func StartOperationSpan(ctx context.Context, op string) (context.Context, trace.Span) {
	return otel.Tracer(instrumentationName).Start(ctx, "document."+op,
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(AttrDocumentOperation.String(op)),
	)
}

// StartClientSpan opens a client span for an outgoing HTTP call
func StartClientSpan(ctx context.Context, name, method, url string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	attrs = append(attrs, AttrHTTPMethod.String(method), AttrHTTPURL.String(url))
	return otel.Tracer(instrumentationName).Start(ctx, name,
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(attrs...),
	)
}

// EndSpan records err on span, sets the matching status and ends it.
// Client-side application errors (4xx) leave the span status unset.
func EndSpan(span trace.Span, err error) {
	defer span.End()
	if err == nil {
		span.SetStatus(codes.Ok, "")
		return
	}

	span.RecordError(err)
	var appErr *apperrors.AppError
	if errors.As(err, &appErr) {
		span.SetAttributes(AttrErrorCode.String(appErr.Code))
		if appErr.Status < http.StatusInternalServerError {
			return
		}
		span.SetStatus(codes.Error, appErr.Message)
		return
	}
	span.SetStatus(codes.Error, err.Error())
}

// AddSpanAttributes annotates the span carried by ctx, if any
func AddSpanAttributes(ctx context.Context, attrs ...attribute.KeyValue) {
	trace.SpanFromContext(ctx).SetAttributes(attrs...)
}

// InjectHeaders writes the trace context of ctx into outgoing request headers
func InjectHeaders(ctx context.Context, header http.Header) {
	otel.GetTextMapPropagator().Inject(ctx, propagation.HeaderCarrier(header))
}

// Span and metric attribute keys
var (
	AttrHTTPMethod        = attribute.Key("http.method")
	AttrHTTPURL           = attribute.Key("http.url")
	AttrHTTPStatusCode    = attribute.Key("http.status_code")
	AttrHTTPRoute         = attribute.Key("http.route")
	AttrDocumentID        = attribute.Key("document.id")
	AttrDocumentOperation = attribute.Key("document.operation")
	AttrErrorCode         = attribute.Key("error.code")
	AttrOutcome           = attribute.Key("outcome")
	AttrCacheName         = attribute.Key("cache.name")
	AttrCircuitName       = attribute.Key("circuit_breaker.name")
	AttrCircuitFrom       = attribute.Key("circuit_breaker.from")
	AttrCircuitTo         = attribute.Key("circuit_breaker.to")
)
