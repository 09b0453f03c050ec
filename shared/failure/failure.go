package failure

import (
	"errors"
	"net/http"
)

// Kind is the machine-readable category of a business failure. Callers branch
// on it; Message and Details are for humans and UIs.
type Kind string

const (
	KindValidationFailed Kind = "validation_failed"
	KindConflict         Kind = "conflict"
	KindPolicyViolation  Kind = "policy_violation"
	KindUnavailable      Kind = "unavailable"
)

// Failure is a wrapper for error messages and codes using standard HTTP response codes.
// Expected business rejections (validation, conflict, policy) are returned as
// Failure values, never panics.
type Failure struct {
	Code    int    `json:"code"`
	Kind    Kind   `json:"kind,omitempty"`
	Message string `json:"message"`
	Details any    `json:"details,omitempty"`
}

var InvalidPageParam = &Failure{Code: http.StatusBadRequest, Message: "invalid page parameter"}
var InvalidLimitParam = &Failure{Code: http.StatusBadRequest, Message: "invalid limit parameter"}
var ForbiddenError = &Failure{Code: http.StatusForbidden, Message: "You don't have the required permissions"}

// Error returns the failure message.
func (e *Failure) Error() string {
	return e.Message
}

// BadRequest returns a new Failure with code for bad requests.
func BadRequest(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusBadRequest,
			Message: err.Error(),
		}
	}

	return nil
}

// BadRequestFromString returns a new Failure with code for bad requests with message set from string.
func BadRequestFromString(msg string) error {
	return &Failure{
		Code:    http.StatusBadRequest,
		Message: msg,
	}
}

// Unauthorized returns a new Failure with code for unauthorized requests.
func Unauthorized(msg string) error {
	return &Failure{
		Code:    http.StatusUnauthorized,
		Message: msg,
	}
}

// InternalError returns a new Failure with code for internal error and message derived from an error interface.
func InternalError(err error) error {
	if err != nil {
		return &Failure{
			Code:    http.StatusInternalServerError,
			Message: err.Error(),
		}
	}

	return nil
}

// NotFound returns a new Failure with code for entity not found.
func NotFound(entityName string) error {
	return &Failure{
		Code:    http.StatusNotFound,
		Message: entityName,
	}
}

// Forbidden returns a new Failure with code for forbidden requests.
func Forbidden(msg string) error {
	return &Failure{
		Code:    http.StatusForbidden,
		Message: msg,
	}
}

// ValidationFailed signals that one or more business rules were violated.
// Details carries the full rule-by-rule breakdown so the caller can adjust
// the request; it is never just the first violation.
func ValidationFailed(msg string, details any) error {
	return &Failure{
		Code:    http.StatusUnprocessableEntity,
		Kind:    KindValidationFailed,
		Message: msg,
		Details: details,
	}
}

// Conflict signals that the requested interval was claimed by a concurrent
// write between read and insert. Recoverable by refetching availability.
func Conflict(message string) error {
	return &Failure{
		Code:    http.StatusConflict,
		Kind:    KindConflict,
		Message: message,
	}
}

// PolicyViolation signals a cancellation or reschedule inside the minimum
// notice window. Recoverable only via an explicit admin override.
func PolicyViolation(msg string) error {
	return &Failure{
		Code:    http.StatusForbidden,
		Kind:    KindPolicyViolation,
		Message: msg,
	}
}

// Unavailable signals that a collaborator (store, directory) failed or timed
// out. Retryable; create retries must reuse the same idempotency key.
func Unavailable(msg string) error {
	return &Failure{
		Code:    http.StatusServiceUnavailable,
		Kind:    KindUnavailable,
		Message: msg,
	}
}

// GetCode returns the error code of an error interface.
func GetCode(err error) int {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Code
	}

	return http.StatusInternalServerError
}

// GetKind returns the failure kind, or empty when the error carries none.
func GetKind(err error) Kind {
	var fail *Failure
	if errors.As(err, &fail) {
		return fail.Kind
	}

	return ""
}

// IsKind reports whether err is a Failure of the given kind.
func IsKind(err error, kind Kind) bool {
	return GetKind(err) == kind
}
