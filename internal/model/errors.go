package model

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/http"
)

// ValidationError reports bad caller input. It is never retried and is not
// degraded into a "failed" result by the pipeline stages that detect it.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return "validation error: " + e.Message
	}
	return fmt.Sprintf("validation error: %s: %s", e.Field, e.Message)
}

// ConfigurationError reports missing or invalid configuration, detected
// before any network activity.
type ConfigurationError struct {
	Message string
}

func (e *ConfigurationError) Error() string {
	return "configuration error: " + e.Message
}

// ErrorKind classifies a failed call to an external provider.
type ErrorKind string

const (
	KindUnauthorized      ErrorKind = "unauthorized"
	KindRateLimited       ErrorKind = "rate_limited"
	KindServerError       ErrorKind = "server_error"
	KindBadStatus         ErrorKind = "bad_status"
	KindTimeout           ErrorKind = "timeout"
	KindConnectionFailed  ErrorKind = "connection_failed"
	KindMalformedResponse ErrorKind = "malformed_response"
)

// APIError is the tagged failure returned by the search and model clients.
// Callers switch on Kind instead of parsing messages.
type APIError struct {
	Service    string // "brave", "openrouter", "anthropic"
	Kind       ErrorKind
	StatusCode int // only set for HTTP status failures
	Message    string
	Err        error
}

func (e *APIError) Error() string {
	msg := fmt.Sprintf("%s: %s", e.Service, e.Kind)
	if e.StatusCode != 0 {
		msg += fmt.Sprintf(" (HTTP %d)", e.StatusCode)
	}
	if e.Message != "" {
		msg += ": " + e.Message
	}
	return msg
}

func (e *APIError) Unwrap() error { return e.Err }

// Transient reports whether retrying the same call may succeed.
func (e *APIError) Transient() bool {
	switch e.Kind {
	case KindTimeout, KindConnectionFailed, KindRateLimited, KindServerError:
		return true
	default:
		return false
	}
}

// DataProcessing reports whether the provider answered but the payload had
// the wrong shape.
func (e *APIError) DataProcessing() bool {
	return e.Kind == KindMalformedResponse
}

// IsTransient unwraps err looking for a transient APIError.
func IsTransient(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.Transient()
}

// IsValidation reports whether err carries a ValidationError.
func IsValidation(err error) bool {
	var vErr *ValidationError
	return errors.As(err, &vErr)
}

// KindForStatus maps a non-2xx HTTP status to an ErrorKind.
func KindForStatus(code int) ErrorKind {
	switch {
	case code == http.StatusUnauthorized:
		return KindUnauthorized
	case code == http.StatusTooManyRequests:
		return KindRateLimited
	case code >= 500:
		return KindServerError
	default:
		return KindBadStatus
	}
}

// NewStatusError builds the APIError for an HTTP status failure.
func NewStatusError(service string, code int, message string) *APIError {
	return &APIError{
		Service:    service,
		Kind:       KindForStatus(code),
		StatusCode: code,
		Message:    message,
	}
}

// NewTransportError classifies a failure that happened before any HTTP
// status was received.
func NewTransportError(service string, err error) *APIError {
	kind := KindConnectionFailed
	var netErr net.Error
	if errors.Is(err, context.DeadlineExceeded) || (errors.As(err, &netErr) && netErr.Timeout()) {
		kind = KindTimeout
	}
	return &APIError{
		Service: service,
		Kind:    kind,
		Message: err.Error(),
		Err:     err,
	}
}

// NewMalformedError reports a response whose body or shape was unusable.
func NewMalformedError(service, message string, err error) *APIError {
	return &APIError{
		Service: service,
		Kind:    KindMalformedResponse,
		Message: message,
		Err:     err,
	}
}
