package errors

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	tests := []struct {
		name     string
		appErr   *AppError
		expected string
	}{
		{
			name: "error without wrapped error",
			appErr: &AppError{
				Code:    CodeNotFound,
				Message: "Document not found",
			},
			expected: "Document not found",
		},
		{
			name: "error with wrapped error",
			appErr: &AppError{
				Code:    CodeInternalError,
				Message: "internal error",
				Err:     errors.New("database connection failed"),
			},
			expected: "internal error: database connection failed",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.appErr.Error(); got != tt.expected {
				t.Errorf("AppError.Error() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAppError_Unwrap(t *testing.T) {
	originalErr := errors.New("original error")
	appErr := &AppError{
		Code:    CodeInternalError,
		Message: "wrapped error",
		Err:     originalErr,
	}

	if unwrapped := appErr.Unwrap(); unwrapped != originalErr {
		t.Errorf("AppError.Unwrap() = %v, want %v", unwrapped, originalErr)
	}

	appErrNoWrap := &AppError{Code: CodeBadRequest, Message: "no wrap"}
	if unwrapped := appErrNoWrap.Unwrap(); unwrapped != nil {
		t.Errorf("AppError.Unwrap() = %v, want nil", unwrapped)
	}
}

func TestConstructors(t *testing.T) {
	tests := []struct {
		name    string
		err     *AppError
		code    string
		status  int
		message string
	}{
		{"invalid document state", InvalidDocumentState("Title cannot be empty"), CodeInvalidDocumentState, http.StatusBadRequest, "Title cannot be empty"},
		{"not found", NotFound("Document with id x not found"), CodeNotFound, http.StatusNotFound, "Document with id x not found"},
		{"external service 500", ExternalService("upstream down", http.StatusInternalServerError, nil), CodeExternalService, http.StatusInternalServerError, "upstream down"},
		{"external service 502", ExternalService("bad answer", http.StatusBadGateway, nil), CodeExternalService, http.StatusBadGateway, "bad answer"},
		{"access code expired", AccessCodeExpired("expired"), CodeAccessCodeExpired, http.StatusGone, "expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.code {
				t.Errorf("Code = %v, want %v", tt.err.Code, tt.code)
			}
			if tt.err.Status != tt.status {
				t.Errorf("Status = %v, want %v", tt.err.Status, tt.status)
			}
			if tt.err.Message != tt.message {
				t.Errorf("Message = %v, want %v", tt.err.Message, tt.message)
			}
		})
	}
}

func TestExternalService_KeepsCause(t *testing.T) {
	cause := errors.New("connection refused")
	err := ExternalService("Failed to send document to client backend", http.StatusBadGateway, cause)

	if !errors.Is(err, cause) {
		t.Error("ExternalService() should wrap its cause")
	}
}

func TestWrap(t *testing.T) {
	originalErr := errors.New("connection timeout")
	wrapped := Wrap(originalErr, ErrInternalError)

	if wrapped.Code != ErrInternalError.Code {
		t.Errorf("Wrap() Code = %v, want %v", wrapped.Code, ErrInternalError.Code)
	}
	if wrapped.Err != originalErr {
		t.Errorf("Wrap() Err = %v, want %v", wrapped.Err, originalErr)
	}
	if wrapped.Status != ErrInternalError.Status {
		t.Errorf("Wrap() Status = %v, want %v", wrapped.Status, ErrInternalError.Status)
	}
}

func TestAppError_WithMessage(t *testing.T) {
	original := ErrNotFound
	customMessage := "Document with id 123 not found"

	withMsg := original.WithMessage(customMessage)

	if withMsg.Message != customMessage {
		t.Errorf("WithMessage() Message = %v, want %v", withMsg.Message, customMessage)
	}
	if withMsg.Code != original.Code {
		t.Errorf("WithMessage() Code = %v, want %v", withMsg.Code, original.Code)
	}
	if original.Message == customMessage {
		t.Error("Original error was modified")
	}
}

func TestAppError_WithError(t *testing.T) {
	original := ErrInvalidDocumentState
	wrappedErr := errors.New("bad cursor")

	withErr := original.WithError(wrappedErr)

	if withErr.Err != wrappedErr {
		t.Errorf("WithError() Err = %v, want %v", withErr.Err, wrappedErr)
	}
	if original.Err != nil {
		t.Error("Original error was modified")
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		target   *AppError
		expected bool
	}{
		{"same error", ErrNotFound, ErrNotFound, true},
		{"constructor with same code", InvalidDocumentState("x"), ErrInvalidDocumentState, true},
		{"wrapped error with same code", Wrap(errors.New("original"), ErrNotFound), ErrNotFound, true},
		{"different error codes", ErrBadRequest, ErrNotFound, false},
		{"non-AppError", errors.New("plain error"), ErrNotFound, false},
		{"nil error", nil, ErrNotFound, false},
		{"wrapped in fmt.Errorf", fmt.Errorf("wrapped: %w", ExternalService("x", 502, nil)), ErrExternalService, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.target); got != tt.expected {
				t.Errorf("Is() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestAs(t *testing.T) {
	appErr, ok := As(fmt.Errorf("ctx: %w", NotFound("gone")))
	if !ok {
		t.Fatal("As() should find wrapped AppError")
	}
	if appErr.Message != "gone" {
		t.Errorf("As() Message = %v, want gone", appErr.Message)
	}

	if _, ok := As(errors.New("plain")); ok {
		t.Error("As() should not match a plain error")
	}
}

func TestGetStatus(t *testing.T) {
	tests := []struct {
		name     string
		err      error
		expected int
	}{
		{"invalid document state", ErrInvalidDocumentState, http.StatusBadRequest},
		{"not found", ErrNotFound, http.StatusNotFound},
		{"access code expired", ErrAccessCodeExpired, http.StatusGone},
		{"external service with upstream classification", ExternalService("x", http.StatusInternalServerError, nil), http.StatusInternalServerError},
		{"service unavailable", ErrServiceUnavailable, http.StatusServiceUnavailable},
		{"too many requests", ErrTooManyRequests, http.StatusTooManyRequests},
		{"wrapped AppError", fmt.Errorf("wrapped: %w", ErrNotFound), http.StatusNotFound},
		{"plain error", errors.New("plain error"), http.StatusInternalServerError},
		{"nil error", nil, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := GetStatus(tt.err); got != tt.expected {
				t.Errorf("GetStatus() = %v, want %v", got, tt.expected)
			}
		})
	}
}

func TestErrorCodes(t *testing.T) {
	codes := map[string]string{
		CodeInvalidDocumentState: "INVALID_DOCUMENT_STATE",
		CodeNotFound:             "NOT_FOUND",
		CodeExternalService:      "EXTERNAL_SERVICE_ERROR",
		CodeAccessCodeExpired:    "ACCESS_CODE_EXPIRED",
		CodeInternalError:        "INTERNAL_SERVER_ERROR",
	}

	for got, want := range codes {
		if got != want {
			t.Errorf("code = %v, want %v", got, want)
		}
	}
}

func BenchmarkIs(b *testing.B) {
	err := Wrap(errors.New("test"), ErrNotFound)
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		Is(err, ErrNotFound)
	}
}
