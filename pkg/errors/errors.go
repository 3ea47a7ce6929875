package errors

import (
	"errors"
	"fmt"
	"net/http"
)

// AppError represents an application error with HTTP status
type AppError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
	Status  int    `json:"-"`
	Err     error  `json:"-"`
}

func (e *AppError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Err)
	}
	return e.Message
}

func (e *AppError) Unwrap() error {
	return e.Err
}

// Error codes
const (
	CodeInvalidDocumentState = "INVALID_DOCUMENT_STATE"
	CodeNotFound             = "NOT_FOUND"
	CodeExternalService      = "EXTERNAL_SERVICE_ERROR"
	CodeAccessCodeExpired    = "ACCESS_CODE_EXPIRED"
	CodeBadRequest           = "BAD_REQUEST"
	CodeInternalError        = "INTERNAL_SERVER_ERROR"
	CodeServiceUnavailable   = "SERVICE_UNAVAILABLE"
	CodeTooManyRequests      = "TOO_MANY_REQUESTS"
)

// Common application errors
var (
	ErrInvalidDocumentState = &AppError{Code: CodeInvalidDocumentState, Message: "invalid document state", Status: http.StatusBadRequest}
	ErrNotFound             = &AppError{Code: CodeNotFound, Message: "resource not found", Status: http.StatusNotFound}
	ErrExternalService      = &AppError{Code: CodeExternalService, Message: "external service error", Status: http.StatusBadGateway}
	ErrAccessCodeExpired    = &AppError{Code: CodeAccessCodeExpired, Message: "access code expired", Status: http.StatusGone}
	ErrBadRequest           = &AppError{Code: CodeBadRequest, Message: "bad request", Status: http.StatusBadRequest}
	ErrInternalError        = &AppError{Code: CodeInternalError, Message: "internal server error", Status: http.StatusInternalServerError}
	ErrServiceUnavailable   = &AppError{Code: CodeServiceUnavailable, Message: "service unavailable", Status: http.StatusServiceUnavailable}
	ErrTooManyRequests      = &AppError{Code: CodeTooManyRequests, Message: "Too many requests", Status: http.StatusTooManyRequests}
)

// New creates a new AppError
func New(code string, message string, status int) *AppError {
	return &AppError{
		Code:    code,
		Message: message,
		Status:  status,
	}
}

// Wrap wraps an error with an AppError
func Wrap(err error, appErr *AppError) *AppError {
	return &AppError{
		Code:    appErr.Code,
		Message: appErr.Message,
		Status:  appErr.Status,
		Err:     err,
	}
}

// InvalidDocumentState reports a violated document invariant or business rule.
func InvalidDocumentState(message string) *AppError {
	return ErrInvalidDocumentState.WithMessage(message)
}

// NotFound reports a missing resource.
func NotFound(message string) *AppError {
	return ErrNotFound.WithMessage(message)
}

// ExternalService reports a failed call to an upstream dependency. status is
// the classification handed to the presentation layer.
func ExternalService(message string, status int, cause error) *AppError {
	return &AppError{
		Code:    CodeExternalService,
		Message: message,
		Status:  status,
		Err:     cause,
	}
}

// AccessCodeExpired reports an access code that is no longer valid.
func AccessCodeExpired(message string) *AppError {
	return ErrAccessCodeExpired.WithMessage(message)
}

// WithMessage returns a new AppError with a custom message
func (e *AppError) WithMessage(message string) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: message,
		Status:  e.Status,
		Err:     e.Err,
	}
}

// WithError returns a new AppError with a wrapped error
func (e *AppError) WithError(err error) *AppError {
	return &AppError{
		Code:    e.Code,
		Message: e.Message,
		Status:  e.Status,
		Err:     err,
	}
}

// Is checks if the error is a specific AppError
func Is(err error, target *AppError) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == target.Code
	}
	return false
}

// As extracts the first AppError in the chain.
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// GetStatus returns the HTTP status from an error
func GetStatus(err error) int {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Status
	}
	return http.StatusInternalServerError
}
