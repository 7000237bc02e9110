// Package apierr defines the typed error taxonomy shared by the pipeline,
// the LLM substrate, and the HTTP layer, plus the translation to HTTP
// status codes and the gin middleware that renders the structured error
// body.
package apierr

import (
	"errors"
	"fmt"
	"net/http"
	"time"
)

// Kind identifies a taxonomy member independent of its message, so callers
// can branch with errors.As without string matching.
type Kind string

const (
	KindNotFound               Kind = "not_found"
	KindValidation             Kind = "validation_error"
	KindVersionConflict        Kind = "version_conflict"
	KindConflict               Kind = "conflict"
	KindUnauthorized           Kind = "unauthorized"
	KindForbidden              Kind = "forbidden"
	KindRateLimited            Kind = "rate_limited"
	KindTimeout                Kind = "timeout"
	KindNetworkFailure         Kind = "network_failure"
	KindServiceUnavailable     Kind = "service_unavailable"
	KindUpstreamFailure        Kind = "upstream_failure"
	KindSchemaValidationFailed Kind = "schema_validation_failure"
	KindBudgetExceeded         Kind = "budget_exceeded"
	KindCancelled              Kind = "cancelled"
	KindInternal               Kind = "internal"
)

// Error is the taxonomy's single concrete type. It carries a Kind for
// dispatch, a Retryable flag mirroring the teacher's EngagementError
// distinction, and optional structured Details for validation/schema
// failures.
type Error struct {
	Kind      Kind
	Message   string
	Retryable bool
	Details   []Detail

	// RetryAfter is set for KindRateLimited.
	RetryAfter time.Duration

	// Expected/Actual are set for KindVersionConflict.
	Expected int
	Actual   int

	// Service names the upstream for KindUpstreamFailure/KindServiceUnavailable.
	Service string

	Err error
}

// Detail is one field-level validation or schema failure.
type Detail struct {
	Field   string `json:"field,omitempty"`
	Message string `json:"message"`
	Code    string `json:"code,omitempty"`
}

func (e *Error) Error() string {
	if e.Message != "" {
		return e.Message
	}
	if e.Err != nil {
		return e.Err.Error()
	}
	return string(e.Kind)
}

func (e *Error) Unwrap() error {
	return e.Err
}

// HTTPStatus maps the taxonomy to a status code for the HTTP layer.
func (e *Error) HTTPStatus() int {
	switch e.Kind {
	case KindNotFound:
		return http.StatusNotFound
	case KindValidation, KindSchemaValidationFailed:
		return http.StatusUnprocessableEntity
	case KindVersionConflict, KindConflict:
		return http.StatusConflict
	case KindUnauthorized:
		return http.StatusUnauthorized
	case KindForbidden:
		return http.StatusForbidden
	case KindRateLimited:
		return http.StatusTooManyRequests
	case KindTimeout:
		return http.StatusGatewayTimeout
	case KindNetworkFailure, KindUpstreamFailure:
		return http.StatusBadGateway
	case KindServiceUnavailable, KindBudgetExceeded:
		return http.StatusServiceUnavailable
	case KindCancelled:
		return 499 // nginx's client-closed-request convention
	default:
		return http.StatusInternalServerError
	}
}

func NotFound(resource, id string) *Error {
	return &Error{Kind: KindNotFound, Message: fmt.Sprintf("%s %q not found", resource, id)}
}

func Validation(details ...Detail) *Error {
	return &Error{Kind: KindValidation, Message: "validation failed", Details: details}
}

func VersionConflict(expected, actual int) *Error {
	return &Error{
		Kind:     KindVersionConflict,
		Message:  fmt.Sprintf("version conflict: expected %d, got %d", expected, actual),
		Expected: expected,
		Actual:   actual,
	}
}

func RateLimited(retryAfter time.Duration) *Error {
	return &Error{Kind: KindRateLimited, Message: "rate limited", Retryable: true, RetryAfter: retryAfter}
}

func Timeout(cause error) *Error {
	return &Error{Kind: KindTimeout, Message: "operation timed out", Retryable: true, Err: cause}
}

func NetworkFailure(cause error) *Error {
	return &Error{Kind: KindNetworkFailure, Message: "network failure", Retryable: true, Err: cause}
}

func ServiceUnavailable(service string) *Error {
	return &Error{Kind: KindServiceUnavailable, Message: fmt.Sprintf("%s unavailable", service), Retryable: true, Service: service}
}

func UpstreamFailure(service string, cause error) *Error {
	return &Error{Kind: KindUpstreamFailure, Message: fmt.Sprintf("%s request failed", service), Retryable: true, Service: service, Err: cause}
}

func SchemaValidationFailure(details ...Detail) *Error {
	return &Error{Kind: KindSchemaValidationFailed, Message: "schema validation failed", Details: details}
}

func BudgetExceeded(message string) *Error {
	return &Error{Kind: KindBudgetExceeded, Message: message}
}

func Cancelled() *Error {
	return &Error{Kind: KindCancelled, Message: "request cancelled"}
}

func Internal(cause error) *Error {
	return &Error{Kind: KindInternal, Message: "internal error", Err: cause}
}

// IsRetryable reports whether err (or any error in its chain) is a
// retryable *Error. Non-taxonomy errors default to true, mirroring the
// teacher's IsRetryable treatment of unrecognized errors as transient.
func IsRetryable(err error) bool {
	if err == nil {
		return false
	}
	var apiErr *Error
	if errors.As(err, &apiErr) {
		return apiErr.Retryable
	}
	return true
}
