package core

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// ErrorType represents the category of a client or exchange error.
type ErrorType int

// Error type constants categorize errors for programmatic handling.
const (
	// ErrorTypeUnknown indicates an unclassified error.
	ErrorTypeUnknown ErrorType = iota
	// ErrorTypeNetwork indicates a network connectivity issue.
	ErrorTypeNetwork
	// ErrorTypeValidation indicates invalid caller-supplied parameters,
	// detected before any request was built.
	ErrorTypeValidation
	// ErrorTypeBadRequest indicates the server rejected the request parameters.
	ErrorTypeBadRequest
	// ErrorTypeAuthentication indicates invalid or expired credentials.
	ErrorTypeAuthentication
	// ErrorTypeNotFound indicates the requested resource does not exist.
	ErrorTypeNotFound
	// ErrorTypeRateLimit indicates the server-side rate limit was exceeded.
	ErrorTypeRateLimit
	// ErrorTypeServerError indicates a server-side error.
	ErrorTypeServerError
	// ErrorTypeDataIntegrity indicates a response field could not be coerced
	// to its declared type, a schema mismatch between client and server.
	ErrorTypeDataIntegrity
)

// String returns the string representation of the error type.
func (t ErrorType) String() string {
	if t < ErrorTypeUnknown || t > ErrorTypeDataIntegrity {
		return fmt.Sprintf("ErrorType(%d)", int(t))
	}
	return [...]string{
		"UNKNOWN",
		"NETWORK",
		"VALIDATION",
		"BAD_REQUEST",
		"AUTHENTICATION",
		"NOT_FOUND",
		"RATE_LIMIT",
		"SERVER_ERROR",
		"DATA_INTEGRITY",
	}[t]
}

// Sentinel errors for common conditions.
var (
	// ErrNoCredentials is returned when no API credentials are configured.
	ErrNoCredentials = errors.New("no credentials configured")
	// ErrClientClosed is returned when attempting to use a closed client.
	ErrClientClosed = errors.New("client is closed")
)

// APIError is the structured error envelope for a failed call.
// For transport failures it carries the HTTP status code merged with the
// server-supplied error code and message; for validation and data-integrity
// failures the status code is zero.
type APIError struct {
	// Type categorizes the error.
	Type ErrorType `json:"type"`
	// StatusCode is the HTTP status code, when the failure came from the server.
	StatusCode int `json:"statusCode"`
	// Code is the exchange-specific error code (e.g. "InvalidMarketId").
	Code string `json:"code,omitempty"`
	// Message is the human-readable error description.
	Message string `json:"message"`
	// Path is the request path that produced the error, when applicable.
	Path string `json:"path,omitempty"`
	// Timestamp is when the error was observed.
	Timestamp time.Time `json:"timestamp"`
}

// Error implements the error interface for APIError.
func (e *APIError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("btcmarkets: %s (%d/%s): %s", e.Type, e.StatusCode, e.Code, e.Message)
	}
	if e.StatusCode != 0 {
		return fmt.Sprintf("btcmarkets: %s (%d): %s", e.Type, e.StatusCode, e.Message)
	}
	return fmt.Sprintf("btcmarkets: %s: %s", e.Type, e.Message)
}

// NewAPIError creates an APIError with the given details.
// The timestamp is set to the current time.
func NewAPIError(errorType ErrorType, statusCode int, message string) *APIError {
	return &APIError{
		Type:       errorType,
		StatusCode: statusCode,
		Message:    message,
		Timestamp:  time.Now(),
	}
}

// NewValidationError creates an APIError for caller input that failed
// validation before request construction.
func NewValidationError(message string) *APIError {
	return NewAPIError(ErrorTypeValidation, 0, message)
}

// NewDataIntegrityError creates an APIError for a response value that could
// not be coerced to its declared numeric or temporal type.
func NewDataIntegrityError(field string, cause error) *APIError {
	e := NewAPIError(ErrorTypeDataIntegrity, 0, fmt.Sprintf("field %q: %v", field, cause))
	return e
}

// MapStatusCode classifies an HTTP status code into an ErrorType.
func MapStatusCode(statusCode int) ErrorType {
	switch {
	case statusCode >= http.StatusInternalServerError:
		return ErrorTypeServerError
	case statusCode == http.StatusTooManyRequests:
		return ErrorTypeRateLimit
	case statusCode == http.StatusUnauthorized || statusCode == http.StatusForbidden:
		return ErrorTypeAuthentication
	case statusCode == http.StatusNotFound:
		return ErrorTypeNotFound
	case statusCode == http.StatusBadRequest:
		return ErrorTypeBadRequest
	default:
		return ErrorTypeUnknown
	}
}

// IsAuthenticationError returns true if the error is an authentication failure.
func IsAuthenticationError(err error) bool {
	return hasType(err, ErrorTypeAuthentication)
}

// IsRateLimitError returns true if the error is a rate limit violation.
func IsRateLimitError(err error) bool {
	return hasType(err, ErrorTypeRateLimit)
}

// IsValidationError returns true if the error came from caller input validation.
func IsValidationError(err error) bool {
	return hasType(err, ErrorTypeValidation)
}

// IsDataIntegrityError returns true if the error indicates a response field
// that failed numeric or temporal coercion.
func IsDataIntegrityError(err error) bool {
	return hasType(err, ErrorTypeDataIntegrity)
}

func hasType(err error, t ErrorType) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Type == t
	}
	return false
}
