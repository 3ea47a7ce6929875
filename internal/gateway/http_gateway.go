// Package gateway delivers finalized documents to the external client backend.
package gateway

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/julienreichel/oc-provider-backend/internal/domain/service"
	"github.com/julienreichel/oc-provider-backend/internal/observability"
	"github.com/julienreichel/oc-provider-backend/internal/resilience"
	apperrors "github.com/julienreichel/oc-provider-backend/pkg/errors"
)

const (
	msgNotConfigured   = "Client backend URL is not configured"
	msgInvalidResponse = "Client backend returned an invalid response"
	msgSendFailed      = "Failed to send document to client backend"

	breakerName     = "client-backend"
	maxResponseBody = 1 << 20
)

// CallRecorder observes gateway traffic
type CallRecorder interface {
	RecordGatewayCall(ctx context.Context, result string, statusCode int, duration time.Duration)
	RecordCircuitTransition(name, from, to string)
}

type nopCallRecorder struct{}

func (nopCallRecorder) RecordGatewayCall(context.Context, string, int, time.Duration) {}
func (nopCallRecorder) RecordCircuitTransition(string, string, string)               {}

// upstreamError is a failed attempt. status is 0 when no response arrived.
type upstreamError struct {
	status int
	err    error
}

func (e *upstreamError) Error() string {
	if e.status == 0 {
		return fmt.Sprintf("client backend unreachable: %v", e.err)
	}
	return fmt.Sprintf("client backend responded %d", e.status)
}

func (e *upstreamError) Unwrap() error {
	return e.err
}

// HTTPClientGateway posts documents to {base_url}/v1/documents and expects
// {"accessCode": "..."} back.
type HTTPClientGateway struct {
	endpoint  string
	configErr error
	client    *http.Client
	breaker   *resilience.CircuitBreaker
	retrier   *resilience.Retrier
	recorder  CallRecorder
	logger    *zap.Logger
}

// NewHTTPClientGateway creates the HTTP gateway. A missing or malformed base
// URL is reported on every SendDocument call rather than at construction.
func NewHTTPClientGateway(cfg Config, recorder CallRecorder, logger *zap.Logger) *HTTPClientGateway {
	if recorder == nil {
		recorder = nopCallRecorder{}
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	logger = logger.With(zap.String("component", "client_gateway"))

	g := &HTTPClientGateway{
		client:   &http.Client{Timeout: timeout},
		retrier:  resilience.NewRetrier(cfg.Retry),
		recorder: recorder,
		logger:   logger,
	}
	g.endpoint, g.configErr = resolveEndpoint(cfg.BaseURL)

	g.retrier.Retryable = isRetryable
	if cfg.CircuitBreaker.Enabled {
		g.breaker = resilience.NewCircuitBreaker(breakerName, cfg.CircuitBreaker, logger)
		g.breaker.IsFailure = isUpstreamFailure
		g.breaker.OnStateChange = func(name string, from, to resilience.State) {
			recorder.RecordCircuitTransition(name, from.String(), to.String())
		}
	}
	return g
}

func resolveEndpoint(baseURL string) (string, error) {
	baseURL = strings.TrimSpace(baseURL)
	if baseURL == "" {
		return "", errors.New("base url is empty")
	}
	base, err := url.Parse(baseURL)
	if err != nil {
		return "", fmt.Errorf("invalid base url: %w", err)
	}
	if (base.Scheme != "http" && base.Scheme != "https") || base.Host == "" {
		return "", fmt.Errorf("invalid base url %q", baseURL)
	}
	return base.ResolveReference(&url.URL{Path: DocumentsPath}).String(), nil
}

// Endpoint returns the resolved documents endpoint, empty when unconfigured
func (g *HTTPClientGateway) Endpoint() string {
	return g.endpoint
}

// SendDocument implements service.ClientGateway
func (g *HTTPClientGateway) SendDocument(ctx context.Context, payload service.ClientDocumentPayload) (result *service.ClientDocumentResult, err error) {
	if g.configErr != nil {
		return nil, apperrors.ExternalService(msgNotConfigured, http.StatusInternalServerError, g.configErr)
	}

	ctx, span := observability.StartClientSpan(ctx, "client_gateway.send_document", http.MethodPost, g.endpoint,
		observability.AttrDocumentID.String(payload.ID),
	)
	defer func() { observability.EndSpan(span, err) }()

	body, err := json.Marshal(payload)
	if err != nil {
		return nil, apperrors.ExternalService(msgSendFailed, http.StatusBadGateway, err)
	}

	raw, err := resilience.RetryWithResult(ctx, g.retrier, func(ctx context.Context) (json.RawMessage, error) {
		var out json.RawMessage
		call := func(ctx context.Context) error {
			var callErr error
			out, callErr = g.post(ctx, body)
			return callErr
		}
		if g.breaker == nil {
			return out, call(ctx)
		}
		return out, g.breaker.Execute(ctx, call)
	})
	if err != nil {
		appErr := g.classify(err)
		g.logger.Warn("Client backend call failed",
			zap.String("document_id", payload.ID),
			zap.Int("status", appErr.Status),
			zap.Error(err),
		)
		return nil, appErr
	}

	accessCode, ok := parseAccessCode(raw)
	if !ok {
		g.logger.Warn("Client backend returned an invalid response", zap.String("document_id", payload.ID))
		return nil, apperrors.ExternalService(msgInvalidResponse, http.StatusBadGateway, nil)
	}

	return &service.ClientDocumentResult{AccessCode: accessCode}, nil
}

// post performs one attempt and returns the raw 2xx body
func (g *HTTPClientGateway) post(ctx context.Context, body []byte) (json.RawMessage, error) {
	start := time.Now()

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, g.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, &upstreamError{err: err}
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")
	observability.InjectHeaders(ctx, req.Header)

	resp, err := g.client.Do(req)
	if err != nil {
		g.recorder.RecordGatewayCall(ctx, "network_error", 0, time.Since(start))
		return nil, &upstreamError{err: err}
	}
	defer resp.Body.Close()

	data, readErr := io.ReadAll(io.LimitReader(resp.Body, maxResponseBody))
	observability.AddSpanAttributes(ctx, observability.AttrHTTPStatusCode.Int(resp.StatusCode))
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		g.recorder.RecordGatewayCall(ctx, "upstream_error", resp.StatusCode, time.Since(start))
		return nil, &upstreamError{status: resp.StatusCode}
	}
	if readErr != nil {
		g.recorder.RecordGatewayCall(ctx, "network_error", resp.StatusCode, time.Since(start))
		return nil, &upstreamError{err: readErr}
	}

	g.recorder.RecordGatewayCall(ctx, "ok", resp.StatusCode, time.Since(start))
	return data, nil
}

// classify maps a failed call to the status handed to the presentation layer:
// upstream 5xx becomes 500, anything else 502.
func (g *HTTPClientGateway) classify(err error) *apperrors.AppError {
	var upErr *upstreamError
	if errors.As(err, &upErr) && upErr.status >= 500 {
		return apperrors.ExternalService(msgSendFailed, http.StatusInternalServerError, err)
	}
	return apperrors.ExternalService(msgSendFailed, http.StatusBadGateway, err)
}

func parseAccessCode(raw json.RawMessage) (string, bool) {
	var body struct {
		AccessCode any `json:"accessCode"`
	}
	if err := json.Unmarshal(raw, &body); err != nil {
		return "", false
	}
	code, ok := body.AccessCode.(string)
	if !ok || strings.TrimSpace(code) == "" {
		return "", false
	}
	return strings.TrimSpace(code), true
}

// isUpstreamFailure counts unreachable backends and 5xx answers against the breaker
func isUpstreamFailure(err error) bool {
	var upErr *upstreamError
	if !errors.As(err, &upErr) {
		return false
	}
	return upErr.status == 0 || upErr.status >= 500
}

// isRetryable retries only when the backend cannot have processed the
// document: no response at all, or an explicit 503.
func isRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	var upErr *upstreamError
	if !errors.As(err, &upErr) {
		return false
	}
	return upErr.status == 0 || upErr.status == http.StatusServiceUnavailable
}
