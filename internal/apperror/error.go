// Package apperror provides structured, coded errors for the swap engine.
// The orchestrator recovers per-vendor errors by code; only NO_ROUTE_FOUND
// reaches the caller.
package apperror

import (
	"errors"
	"fmt"
	"net/http"
	"runtime"
	"strings"
	"time"
)

// AppError implements the error interface and carries the vendor context the
// orchestrator needs to log and discard a failed adapter invocation.
type AppError struct {
	Code       Code      `json:"code"`
	Message    string    `json:"message"`
	StatusCode int       `json:"statusCode"`
	Context    string    `json:"context,omitempty"`
	Vendor     string    `json:"vendor,omitempty"`
	HTTPStatus int       `json:"httpStatus,omitempty"`
	Raw        string    `json:"raw,omitempty"`
	Attempted  []string  `json:"attempted,omitempty"`
	Timestamp  time.Time `json:"timestamp"`
	cause      error
	stack      []uintptr
}

// Error implements the error interface
func (e *AppError) Error() string {
	var sb strings.Builder
	sb.WriteString(string(e.Code))
	sb.WriteString(": ")
	sb.WriteString(e.Message)
	if e.Vendor != "" {
		fmt.Fprintf(&sb, " (vendor: %s)", e.Vendor)
	}
	if e.Context != "" {
		fmt.Fprintf(&sb, " (context: %s)", e.Context)
	}
	if len(e.Attempted) > 0 {
		fmt.Fprintf(&sb, " (attempted: %s)", strings.Join(e.Attempted, ", "))
	}
	return sb.String()
}

// Unwrap implements the errors.Unwrap interface
func (e *AppError) Unwrap() error {
	return e.cause
}

// Is implements errors.Is; two AppErrors match when their codes match.
func (e *AppError) Is(target error) bool {
	t, ok := target.(*AppError)
	if !ok {
		return false
	}
	return e.Code == t.Code
}

// ToLog serializes the error for structured logging.
func (e *AppError) ToLog() []interface{} {
	kv := []interface{}{
		"code", string(e.Code),
		"message", e.Message,
	}
	if e.Vendor != "" {
		kv = append(kv, "vendor", e.Vendor)
	}
	if e.HTTPStatus != 0 {
		kv = append(kv, "httpStatus", e.HTTPStatus)
	}
	if e.Context != "" {
		kv = append(kv, "context", e.Context)
	}
	if e.cause != nil {
		kv = append(kv, "cause", e.cause.Error())
	}
	return kv
}

// FormatStack formats the captured stack trace for error-level logs.
func (e *AppError) FormatStack() string {
	var sb strings.Builder
	frames := runtime.CallersFrames(e.stack)
	for {
		frame, more := frames.Next()
		if !strings.Contains(frame.File, "runtime/") {
			fmt.Fprintf(&sb, "\n\t%s:%d %s", frame.File, frame.Line, frame.Function)
		}
		if !more {
			break
		}
	}
	return sb.String()
}

func captureStack() []uintptr {
	const depth = 32
	var pcs [depth]uintptr
	n := runtime.Callers(3, pcs[:])
	return pcs[:n]
}

// New creates a new AppError with the given code and options
func New(code Code, opts ...Option) *AppError {
	err := &AppError{
		Code:       code,
		Message:    messages[code],
		StatusCode: defaultStatusCode(code),
		Timestamp:  time.Now(),
		stack:      captureStack(),
	}
	for _, opt := range opts {
		opt(err)
	}
	if err.Message == "" {
		err.Message = string(code)
	}
	return err
}

// Option is a functional option for AppError
type Option func(*AppError)

// WithMessage sets a custom message
func WithMessage(message string) Option {
	return func(e *AppError) {
		e.Message = message
	}
}

// WithContext adds context information
func WithContext(context string) Option {
	return func(e *AppError) {
		e.Context = context
	}
}

// WithVendor tags the error with the vendor (aggregator id) it came from.
func WithVendor(vendor string) Option {
	return func(e *AppError) {
		e.Vendor = vendor
	}
}

// WithHTTPStatus records the vendor's HTTP status code.
func WithHTTPStatus(status int) Option {
	return func(e *AppError) {
		e.HTTPStatus = status
	}
}

// WithRaw preserves the raw vendor response body (truncated by the caller).
func WithRaw(raw string) Option {
	return func(e *AppError) {
		e.Raw = raw
	}
}

// WithAttempted records which aggregators were tried before the failure.
func WithAttempted(ids []string) Option {
	return func(e *AppError) {
		e.Attempted = append([]string(nil), ids...)
	}
}

// WithCause wraps an underlying error
func WithCause(cause error) Option {
	return func(e *AppError) {
		e.cause = cause
	}
}

// Validation creates a validation error, raised before any network call.
func Validation(code Code, context string) *AppError {
	return New(code, WithContext(context))
}

// Quote creates a vendor quote failure carrying status and raw body.
func Quote(code Code, vendor string, httpStatus int, raw string, cause error) *AppError {
	return New(code,
		WithVendor(vendor),
		WithHTTPStatus(httpStatus),
		WithRaw(raw),
		WithCause(cause),
	)
}

// NoRoute creates the terminal all-adapters-failed error.
func NoRoute(attempted []string) *AppError {
	return New(CodeNoRouteFound, WithAttempted(attempted))
}

// Internal creates an internal error wrapping a cause.
func Internal(code Code, context string, cause error) *AppError {
	return New(code, WithContext(context), WithCause(cause))
}

// Wrap wraps a standard error into AppError, preserving an existing one.
func Wrap(err error, code Code, context string) *AppError {
	if err == nil {
		return nil
	}
	var appErr *AppError
	if errors.As(err, &appErr) {
		if context != "" && appErr.Context == "" {
			appErr.Context = context
		}
		return appErr
	}
	return Internal(code, context, err)
}

// IsCode reports whether err carries the given code.
func IsCode(err error, code Code) bool {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code == code
	}
	return false
}

// GetCode extracts the error code from an error
func GetCode(err error) Code {
	var appErr *AppError
	if errors.As(err, &appErr) {
		return appErr.Code
	}
	return CodeUnknownError
}

// IsValidation reports whether err was raised by request validation.
func IsValidation(err error) bool {
	switch GetCode(err) {
	case CodeZeroInputAmount, CodeMissingPayer, CodeInvalidSlippage,
		CodeChainNotSupported, CodeValidationError, CodeRequiredField,
		CodeInvalidInput:
		return true
	}
	return false
}

// defaultStatusCode maps codes to HTTP-ish status classes for logs.
func defaultStatusCode(code Code) int {
	switch {
	case strings.Contains(string(code), "NOT_FOUND"),
		code == CodeNoRouteFound:
		return http.StatusNotFound
	case strings.Contains(string(code), "INVALID"),
		strings.Contains(string(code), "MISSING"),
		strings.Contains(string(code), "ZERO"):
		return http.StatusBadRequest
	case strings.Contains(string(code), "TIMEOUT"),
		strings.Contains(string(code), "UNAVAILABLE"),
		code == CodeCircuitOpen:
		return http.StatusServiceUnavailable
	case code == CodeRateLimitExceeded:
		return http.StatusTooManyRequests
	default:
		return http.StatusInternalServerError
	}
}
