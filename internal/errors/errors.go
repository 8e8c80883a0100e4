// Package errors provides custom error types for the expensedesk API.
// All service-layer errors should use AppError to ensure consistent,
// secure error responses that never leak internal details to clients.
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
	ErrUnauthorized       = &AppError{Code: "UNAUTHORIZED", Message: "Authentication required", StatusCode: http.StatusUnauthorized}
	ErrInvalidCredentials = &AppError{Code: "INVALID_CREDENTIALS", Message: "Invalid username or password", StatusCode: http.StatusUnauthorized}
	ErrForbidden          = &AppError{Code: "FORBIDDEN", Message: "Access denied", StatusCode: http.StatusForbidden}
	ErrAdminRequired      = &AppError{Code: "ADMIN_REQUIRED", Message: "Administrator role required", StatusCode: http.StatusForbidden}
)

// General errors.
var (
	ErrInvalidInput   = &AppError{Code: "INVALID_INPUT", Message: "Invalid input", StatusCode: http.StatusBadRequest}
	ErrNotFound       = &AppError{Code: "NOT_FOUND", Message: "Resource not found", StatusCode: http.StatusNotFound}
	ErrInternalServer = &AppError{Code: "INTERNAL_ERROR", Message: "An internal error occurred", StatusCode: http.StatusInternalServerError}
)

// User errors.
var (
	ErrUserNotFound  = &AppError{Code: "USER_NOT_FOUND", Message: "User not found", StatusCode: http.StatusNotFound}
	ErrDuplicateUser = &AppError{Code: "DUPLICATE_USER", Message: "A user with this username or email already exists", StatusCode: http.StatusConflict}
	ErrOwnRoleChange = &AppError{Code: "OWN_ROLE_CHANGE", Message: "Administrators cannot change their own role", StatusCode: http.StatusBadRequest}
	ErrInvalidRole   = &AppError{Code: "INVALID_ROLE", Message: "Role must be admin or user", StatusCode: http.StatusBadRequest}
)

// Report errors.
var (
	ErrReportNotFound   = &AppError{Code: "REPORT_NOT_FOUND", Message: "Report not found", StatusCode: http.StatusNotFound}
	ErrReportNotPending = &AppError{Code: "REPORT_NOT_PENDING", Message: "Only pending reports can be updated", StatusCode: http.StatusConflict}
	ErrReasonRequired   = &AppError{Code: "REASON_REQUIRED", Message: "A rejection reason is required", StatusCode: http.StatusBadRequest}
	ErrInvalidStatus    = &AppError{Code: "INVALID_STATUS", Message: "Unsupported report status", StatusCode: http.StatusBadRequest}
	ErrBadReportAccess  = &AppError{Code: "BAD_REPORT_ACCESS", Message: "Report does not belong to this user", StatusCode: http.StatusForbidden}
)
