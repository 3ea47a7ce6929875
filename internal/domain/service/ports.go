package service

import (
	"context"
	"time"
)

// Clock supplies the current time
type Clock interface {
	Now() time.Time
}

// IDGenerator supplies unique document identifiers
type IDGenerator interface {
	Generate() string
}

// ClientDocumentPayload is what the client backend receives for a document
type ClientDocumentPayload struct {
	ID      string `json:"id"`
	Title   string `json:"title"`
	Content string `json:"content"`
}

// ClientDocumentResult is the client backend's answer to a transfer
type ClientDocumentResult struct {
	AccessCode string `json:"accessCode"`
}

// ClientGateway delivers finalized documents to the external client backend.
// Failures are reported as EXTERNAL_SERVICE_ERROR application errors
// carrying the upstream status classification.
type ClientGateway interface {
	SendDocument(ctx context.Context, payload ClientDocumentPayload) (*ClientDocumentResult, error)
}

// OperationRecorder receives the outcome of each document use case
type OperationRecorder interface {
	RecordDocumentOperation(ctx context.Context, operation string, success bool, duration time.Duration)
}

// NopRecorder discards every observation
type NopRecorder struct{}

func (NopRecorder) RecordDocumentOperation(context.Context, string, bool, time.Duration) {}
