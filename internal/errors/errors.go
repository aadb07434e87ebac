// Package errors provides the structured error type shared by the service and
// HTTP layers. Services return *AppError values so that handlers can render a
// stable code and message without ever exposing the wrapped internal cause.
package errors

import "net/http"

// AppError represents a structured application error with an error code,
// human-readable message, HTTP status code, and optional internal error.
type AppError struct {
	Code       string `json:"code"`
	Message    string `json:"message"`
	StatusCode int    `json:"-"`
	Internal   error  `json:"-"`
}

// Error implements the error interface.
func (e *AppError) Error() string { return e.Message }

// Unwrap returns the internal error for use with errors.Is/As.
func (e *AppError) Unwrap() error { return e.Internal }

// Is reports whether target carries the same code, so that a wrapped or
// re-messaged copy still matches its sentinel.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// Wrap creates a new AppError with the same code/message/status but wraps an internal error.
func Wrap(sentinel *AppError, internal error) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    sentinel.Message,
		StatusCode: sentinel.StatusCode,
		Internal:   internal,
	}
}

// WithMessage creates a new AppError with a custom message.
func WithMessage(sentinel *AppError, message string) *AppError {
	return &AppError{
		Code:       sentinel.Code,
		Message:    message,
		StatusCode: sentinel.StatusCode,
		Internal:   sentinel.Internal,
	}
}

// Authentication & authorization errors.
var (
	ErrUnauthorized = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidToken = &AppError{Code: "INVALID_TOKEN", Message: "Invalid or expired token", StatusCode: http.StatusUnauthorized}
	ErrForbidden    = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// Expense errors.
var (
	ErrExpenseNotFound = &AppError{Code: "EXPENSE_NOT_FOUND", Message: "Expense not found", StatusCode: http.StatusNotFound}
	ErrInvalidCategory = &AppError{Code: "INVALID_CATEGORY", Message: "Unknown expense category", StatusCode: http.StatusBadRequest}
	ErrInvalidDate     = &AppError{Code: "INVALID_DATE", Message: "Date must be a calendar date in YYYY-MM-DD format", StatusCode: http.StatusBadRequest}
	ErrInvalidAmount   = &AppError{Code: "INVALID_AMOUNT", Message: "Amount must be a non-negative number", StatusCode: http.StatusBadRequest}
)

// Export and import errors.
var (
	ErrExportFailed  = &AppError{Code: "EXPORT_FAILED", Message: "Failed to build the export file", StatusCode: http.StatusInternalServerError}
	ErrInvalidImport = &AppError{Code: "INVALID_IMPORT", Message: "Import file is not a valid expense report", StatusCode: http.StatusBadRequest}
)
