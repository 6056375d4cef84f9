package hawkbit

import (
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"os"
	"syscall"
)

// ErrorType represents the category of a management-API error
type ErrorType int

const (
	// ErrTypeNetwork indicates a network-level error (connection refused, timeout, etc.)
	ErrTypeNetwork ErrorType = iota
	// ErrTypeAuth indicates an authentication failure (invalid credentials)
	ErrTypeAuth
	// ErrTypeHTTP indicates an HTTP-level error (unexpected status code)
	ErrTypeHTTP
	// ErrTypeParse indicates a parsing error (malformed JSON response)
	ErrTypeParse
	// ErrTypeTimeout indicates a request timeout
	ErrTypeTimeout
	// ErrTypeConnectionRefused indicates the server refused the connection
	ErrTypeConnectionRefused
	// ErrTypeDNS indicates a DNS resolution failure
	ErrTypeDNS
)

// String returns a human-readable name for the error type
func (et ErrorType) String() string {
	switch et {
	case ErrTypeNetwork:
		return "Network Error"
	case ErrTypeAuth:
		return "Authentication Error"
	case ErrTypeHTTP:
		return "HTTP Error"
	case ErrTypeParse:
		return "Parse Error"
	case ErrTypeTimeout:
		return "Timeout"
	case ErrTypeConnectionRefused:
		return "Connection Refused"
	case ErrTypeDNS:
		return "DNS Error"
	default:
		return fmt.Sprintf("ErrorType(%d)", et)
	}
}

// APIError represents an error that occurred while talking to the
// management API.
type APIError struct {
	Type       ErrorType // Category of error
	Message    string    // Human-readable error message
	StatusCode int       // HTTP status code (if applicable)
	Err        error     // Underlying error (if any)
	Retryable  bool      // Whether the error is transient and worth retrying
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %s (caused by: %v)", e.Type, e.Message, e.Err)
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the underlying error for error chain inspection
func (e *APIError) Unwrap() error {
	return e.Err
}

// classifyNetworkError analyzes a transport error and returns a more
// specific error type.
func classifyNetworkError(err error) *APIError {
	if err == nil {
		return nil
	}

	if os.IsTimeout(err) {
		return &APIError{
			Type:      ErrTypeTimeout,
			Message:   "request timed out",
			Err:       err,
			Retryable: true,
		}
	}

	var dnsErr *net.DNSError
	if errors.As(err, &dnsErr) {
		return &APIError{
			Type:      ErrTypeDNS,
			Message:   fmt.Sprintf("DNS resolution failed for %s", dnsErr.Name),
			Err:       err,
			Retryable: false,
		}
	}

	var opErr *net.OpError
	if errors.As(err, &opErr) {
		if errors.Is(opErr.Err, syscall.ECONNREFUSED) {
			return &APIError{
				Type:      ErrTypeConnectionRefused,
				Message:   "server refused connection",
				Err:       err,
				Retryable: true,
			}
		}
		if errors.Is(opErr.Err, syscall.ECONNRESET) {
			return &APIError{
				Type:      ErrTypeNetwork,
				Message:   "connection reset",
				Err:       err,
				Retryable: true,
			}
		}
	}

	var urlErr *url.Error
	if errors.As(err, &urlErr) {
		// Recursively classify the underlying error
		return classifyNetworkError(urlErr.Err)
	}

	return &APIError{
		Type:      ErrTypeNetwork,
		Message:   "network error occurred",
		Err:       err,
		Retryable: true,
	}
}

// NewNetworkError creates a network-level error with automatic classification
func NewNetworkError(message string, err error) *APIError {
	classified := classifyNetworkError(err)
	if classified != nil {
		classified.Message = message
		return classified
	}
	return &APIError{
		Type:      ErrTypeNetwork,
		Message:   message,
		Err:       err,
		Retryable: true,
	}
}

// NewAuthError creates an authentication error
func NewAuthError(message string) *APIError {
	return &APIError{
		Type:       ErrTypeAuth,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
		Retryable:  false,
	}
}

// NewHTTPError creates an HTTP-level error. Server-side errors (5xx) and
// throttling responses are marked retryable.
func NewHTTPError(statusCode int, message string) *APIError {
	retryable := statusCode >= 500 ||
		statusCode == http.StatusRequestTimeout ||
		statusCode == http.StatusTooManyRequests
	return &APIError{
		Type:       ErrTypeHTTP,
		Message:    message,
		StatusCode: statusCode,
		Retryable:  retryable,
	}
}

// NewParseError creates a parsing error
func NewParseError(message string, err error) *APIError {
	return &APIError{
		Type:      ErrTypeParse,
		Message:   message,
		Err:       err,
		Retryable: false,
	}
}

// IsRetryable checks if an error should be retried
func IsRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Retryable
	}
	// Unknown errors are not retryable by default
	return false
}

// IsAuthError checks if an error is an authentication error
func IsAuthError(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Type == ErrTypeAuth
	}
	return false
}

// IsConflict checks if an error is an HTTP 409 response. The target-filter
// upsert uses this to detect an existing filter by name.
func IsConflict(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Type == ErrTypeHTTP && apiErr.StatusCode == http.StatusConflict
	}
	return false
}

// IsNotFound checks if an error is an HTTP 404 response
func IsNotFound(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.Type == ErrTypeHTTP && apiErr.StatusCode == http.StatusNotFound
	}
	return false
}

// StatusCode returns the HTTP status code carried by an error, or 0 when
// the error is not an APIError or has no status.
func StatusCode(err error) int {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode
	}
	return 0
}
