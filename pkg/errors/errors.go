package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
)

// ErrorType represents different types of application errors
type ErrorType string

const (
	ErrorTypeValidation     ErrorType = "validation"
	ErrorTypeAuthentication ErrorType = "authentication"
	ErrorTypeAuthorization  ErrorType = "authorization"
	ErrorTypeNotFound       ErrorType = "not_found"
	ErrorTypeConflict       ErrorType = "conflict"
	ErrorTypeInternal       ErrorType = "internal"
	ErrorTypeUnknownCommand ErrorType = "unknown_command"

	// Messaging upstream failures
	ErrorTypeRateLimited     ErrorType = "rate_limited"
	ErrorTypeQuotaExhausted  ErrorType = "quota_exhausted"
	ErrorTypeUpstreamTimeout ErrorType = "upstream_timeout"
	ErrorTypeUpstreamClient  ErrorType = "upstream_client"
	ErrorTypeUpstreamServer  ErrorType = "upstream_server"
)

// codes are the stable machine-readable values returned in the JSON envelope
var codes = map[ErrorType]string{
	ErrorTypeValidation:      "VALIDATION_ERROR",
	ErrorTypeAuthentication:  "UNAUTHORIZED",
	ErrorTypeAuthorization:   "FORBIDDEN",
	ErrorTypeNotFound:        "NOT_FOUND",
	ErrorTypeConflict:        "CONFLICT",
	ErrorTypeInternal:        "INTERNAL_ERROR",
	ErrorTypeUnknownCommand:  "UNKNOWN_COMMAND",
	ErrorTypeRateLimited:     "LINE_RATE_LIMITED",
	ErrorTypeQuotaExhausted:  "LINE_QUOTA_EXHAUSTED",
	ErrorTypeUpstreamTimeout: "TIMEOUT",
	ErrorTypeUpstreamClient:  "LINE_API_ERROR",
	ErrorTypeUpstreamServer:  "LINE_API_ERROR",
}

// AppError represents a structured application error
type AppError struct {
	Type       ErrorType              `json:"type"`
	Message    string                 `json:"message"`
	StatusCode int                    `json:"status_code"`
	Internal   error                  `json:"-"`
	Details    map[string]interface{} `json:"details,omitempty"`
}

// Error implements the error interface
func (e *AppError) Error() string {
	if e.Internal != nil {
		return fmt.Sprintf("%s: %s (%s)", e.Type, e.Message, e.Internal.Error())
	}
	return fmt.Sprintf("%s: %s", e.Type, e.Message)
}

// Unwrap returns the wrapped error
func (e *AppError) Unwrap() error {
	return e.Internal
}

// Code returns the envelope code for the error type
func (e *AppError) Code() string {
	if code, ok := codes[e.Type]; ok {
		return code
	}
	return codes[ErrorTypeInternal]
}

// As extracts an *AppError from an error chain
func As(err error) (*AppError, bool) {
	var appErr *AppError
	if stderrors.As(err, &appErr) {
		return appErr, true
	}
	return nil, false
}

// IsType reports whether err carries an *AppError of the given type
func IsType(err error, t ErrorType) bool {
	appErr, ok := As(err)
	return ok && appErr.Type == t
}

// FromError converts any error into an *AppError, defaulting to internal
func FromError(err error) *AppError {
	if appErr, ok := As(err); ok {
		return appErr
	}
	return NewInternalError("Internal server error", err)
}

// NewValidationError creates a new validation error
func NewValidationError(message string, details map[string]interface{}) *AppError {
	return &AppError{
		Type:       ErrorTypeValidation,
		Message:    message,
		StatusCode: http.StatusBadRequest,
		Details:    details,
	}
}

// NewAuthenticationError creates a new authentication error
func NewAuthenticationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeAuthentication,
		Message:    message,
		StatusCode: http.StatusUnauthorized,
	}
}

// NewAuthorizationError creates a new authorization error
func NewAuthorizationError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeAuthorization,
		Message:    message,
		StatusCode: http.StatusForbidden,
	}
}

// NewNotFoundError creates a new not found error
func NewNotFoundError(message string) *AppError {
	return &AppError{
		Type:       ErrorTypeNotFound,
		Message:    message,
		StatusCode: http.StatusNotFound,
	}
}

// NewConflictError creates a new duplicate-record error
func NewConflictError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeConflict,
		Message:    message,
		StatusCode: http.StatusConflict,
		Internal:   internal,
	}
}

// NewInternalError creates a new internal server error
func NewInternalError(message string, internal error) *AppError {
	return &AppError{
		Type:       ErrorTypeInternal,
		Message:    message,
		StatusCode: http.StatusInternalServerError,
		Internal:   internal,
	}
}

// NewUnknownCommandError is returned when a text does not match any command
func NewUnknownCommandError(text string) *AppError {
	return &AppError{
		Type:       ErrorTypeUnknownCommand,
		Message:    "Unrecognized command",
		StatusCode: http.StatusBadRequest,
		Details:    map[string]interface{}{"text": text},
	}
}

// NewUpstreamError creates an error for a failed messaging API call.
// Timeouts map to 504, everything else to 502.
func NewUpstreamError(t ErrorType, message string, internal error) *AppError {
	status := http.StatusBadGateway
	if t == ErrorTypeUpstreamTimeout {
		status = http.StatusGatewayTimeout
	}
	return &AppError{
		Type:       t,
		Message:    message,
		StatusCode: status,
		Internal:   internal,
	}
}

// ErrorResponse represents the JSON error response
type ErrorResponse struct {
	Success   bool                   `json:"success"`
	Error     ErrorType              `json:"error"`
	Code      string                 `json:"code"`
	Message   string                 `json:"message"`
	Details   map[string]interface{} `json:"details,omitempty"`
	RequestID string                 `json:"request_id,omitempty"`
	Timestamp string                 `json:"timestamp"`
}
