package motoadmin

import (
	"errors"
	"fmt"
	"net/http"
)

// Common errors
var (
	// ErrInvalidConfig is returned when the client configuration is invalid
	ErrInvalidConfig = errors.New("invalid configuration")

	// ErrUnauthorized is returned when the API rejects the bearer token
	ErrUnauthorized = errors.New("unauthorized")

	// ErrForbidden is returned when the token is valid but lacks permission
	ErrForbidden = errors.New("forbidden")

	// ErrNotAdmin is returned by Login when the account is not an admin
	ErrNotAdmin = errors.New("Access Denied! Only admins can log in.")

	// ErrNotFound is returned when the API reports a missing resource
	ErrNotFound = errors.New("not found")

	// ErrUnavailable is returned when the API cannot be reached or the
	// circuit breaker is open
	ErrUnavailable = errors.New("rental API unavailable")

	// ErrInvalidResponse is returned when the API answers with an unexpected body
	ErrInvalidResponse = errors.New("invalid API response")
)

// Default user-facing messages per operation, used when the API error body
// carries no message.
const (
	msgLoginFailed        = "Login failed! Please try again."
	msgAddMotorcycle      = "Failed to add motorcycle"
	msgUpdateMotorcycle   = "Failed to update motorcycle"
	msgDeleteMotorcycle   = "Failed to delete motorcycle"
	msgVerifyUser         = "Failed to verify user"
	msgReturnMotorcycle   = "Failed to return motorcycle"
	msgListMotorcycles    = "Failed to load motorcycles"
	msgListUsers          = "Failed to load users"
	msgListRentals        = "Failed to load rental data"
	msgGetDashboardStats  = "Failed to load dashboard statistics"
	msgUnexpectedResponse = "An unexpected error occurred. Please try again."
)

// APIError represents a failed call to the rental API with additional context
type APIError struct {
	Op         string // Operation that failed
	StatusCode int    // HTTP status, zero when the request never completed
	Message    string // Message suitable for display
	Err        error  // Underlying error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s (status=%d): %s", e.Op, e.StatusCode, e.Message)
	}
	if e.Err != nil {
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Op, e.Message)
}

// Unwrap returns the underlying error. Status codes the console reacts to
// are exposed as sentinels so callers can use errors.Is.
func (e *APIError) Unwrap() []error {
	errs := make([]error, 0, 2)
	if e.Err != nil {
		errs = append(errs, e.Err)
	}
	switch e.StatusCode {
	case http.StatusUnauthorized:
		errs = append(errs, ErrUnauthorized)
	case http.StatusForbidden:
		errs = append(errs, ErrForbidden)
	case http.StatusNotFound:
		errs = append(errs, ErrNotFound)
	}
	return errs
}

// NewAPIError creates a new APIError
func NewAPIError(op string, status int, message string, err error) *APIError {
	return &APIError{
		Op:         op,
		StatusCode: status,
		Message:    message,
		Err:        err,
	}
}

// UserMessage returns the text to show an admin for err.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}
	var apiErr *APIError
	if errors.As(err, &apiErr) && apiErr.Message != "" {
		return apiErr.Message
	}
	var valErr *ValidationError
	if errors.As(err, &valErr) {
		return valErr.Message
	}
	if errors.Is(err, ErrNotAdmin) {
		return ErrNotAdmin.Error()
	}
	return msgUnexpectedResponse
}

// IsAuthError reports whether err means the stored token is no longer usable.
func IsAuthError(err error) bool {
	return errors.Is(err, ErrUnauthorized) || errors.Is(err, ErrForbidden)
}

// ValidationError reports a form field rejected before any API call.
type ValidationError struct {
	Field   string
	Message string
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Message)
}
