package response

import (
	"time"
)

// ErrorResponse is the body of every non-2xx API response
type ErrorResponse struct {
	StatusCode int       `json:"statusCode"`
	Error      string    `json:"error"`
	Message    string    `json:"message"`
	Timestamp  time.Time `json:"timestamp"`
}

// NewError creates an error response stamped with the current UTC time
func NewError(status int, code, message string) ErrorResponse {
	return ErrorResponse{
		StatusCode: status,
		Error:      code,
		Message:    message,
		Timestamp:  time.Now().UTC(),
	}
}

// CursorPage wraps a list response with an opaque continuation token
type CursorPage[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
}

// NewCursorPage creates a page, never serializing items as null
func NewCursorPage[T any](items []T, nextCursor string) CursorPage[T] {
	if items == nil {
		items = []T{}
	}
	return CursorPage[T]{Items: items, NextCursor: nextCursor}
}

// HealthResponse is returned by the liveness probe
type HealthResponse struct {
	Status    string    `json:"status"`
	Timestamp time.Time `json:"timestamp"`
}

// ReadinessResponse is returned by the readiness probe
type ReadinessResponse struct {
	Status    string    `json:"status"`
	Database  string    `json:"database"`
	Message   string    `json:"message,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
