// Package apierror defines the API error taxonomy: a closed set of error
// codes, their HTTP status mapping, and the structured error type that every
// failure surfaced to a client is expressed as.
package apierror

import (
	"errors"
	"fmt"
	"time"
)

// Code identifies a failure category. The set is closed; Status is total
// over it.
type Code string

// Authentication codes (401).
const (
	CodeAuthRequired     Code = "AUTH_REQUIRED"
	CodeAuthInvalidToken Code = "AUTH_INVALID_TOKEN"
	CodeAuthExpiredToken Code = "AUTH_EXPIRED_TOKEN"
)

// Authorization codes (403).
const (
	CodeForbidden      Code = "FORBIDDEN"
	CodeTenantMismatch Code = "TENANT_MISMATCH"
)

// Resource codes.
const (
	CodeNotFound  Code = "NOT_FOUND" // 404
	CodeConflict  Code = "CONFLICT"  // 409
	CodeDuplicate Code = "DUPLICATE" // 409
)

// Input codes (400).
const (
	CodeValidationError Code = "VALIDATION_ERROR"
	CodeInvalidInput    Code = "INVALID_INPUT"
)

// Rate limiting (429).
const CodeRateLimitExceeded Code = "RATE_LIMIT_EXCEEDED"

// Business-rule codes (422).
const (
	CodeEnrollmentClosed       Code = "ENROLLMENT_CLOSED"
	CodeCapacityExceeded       Code = "CAPACITY_EXCEEDED"
	CodeInvalidStateTransition Code = "INVALID_STATE_TRANSITION"
	CodeBusinessRuleViolation  Code = "BUSINESS_RULE_VIOLATION"
)

// Server codes (5xx).
const (
	CodeInternalError      Code = "INTERNAL_ERROR"      // 500
	CodeDatabaseError      Code = "DATABASE_ERROR"      // 500
	CodeServiceUnavailable Code = "SERVICE_UNAVAILABLE" // 503
)

// Codes lists every defined code, in taxonomy order. Used by tests to check
// totality of the status mapping.
var Codes = []Code{
	CodeAuthRequired, CodeAuthInvalidToken, CodeAuthExpiredToken,
	CodeForbidden, CodeTenantMismatch,
	CodeNotFound, CodeConflict, CodeDuplicate,
	CodeValidationError, CodeInvalidInput,
	CodeRateLimitExceeded,
	CodeEnrollmentClosed, CodeCapacityExceeded, CodeInvalidStateTransition, CodeBusinessRuleViolation,
	CodeInternalError, CodeDatabaseError, CodeServiceUnavailable,
}

// Status maps a code to its HTTP status. The switch is exhaustive over the
// defined codes; anything else is treated as an internal error.
func Status(c Code) int {
	switch c {
	case CodeAuthRequired, CodeAuthInvalidToken, CodeAuthExpiredToken:
		return 401
	case CodeForbidden, CodeTenantMismatch:
		return 403
	case CodeNotFound:
		return 404
	case CodeConflict, CodeDuplicate:
		return 409
	case CodeValidationError, CodeInvalidInput:
		return 400
	case CodeRateLimitExceeded:
		return 429
	case CodeEnrollmentClosed, CodeCapacityExceeded, CodeInvalidStateTransition, CodeBusinessRuleViolation:
		return 422
	case CodeServiceUnavailable:
		return 503
	case CodeInternalError, CodeDatabaseError:
		return 500
	}
	return 500
}

// Detail is one field-level failure attached to an error.
type Detail struct {
	Field      string `json:"field"`
	Constraint string `json:"constraint"`
}

// Error is the structured API error. It is constructed at the point of
// failure and caught once at the handler boundary; the cause is kept for
// server-side logging and never serialized to the client.
type Error struct {
	Code      Code      `json:"code"`
	Message   string    `json:"message"`
	Details   []Detail  `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`

	status int
	cause  error
}

// New creates an Error with the status derived from the code.
func New(code Code, message string) *Error {
	return &Error{
		Code:      code,
		Message:   message,
		Timestamp: time.Now().UTC(),
		status:    Status(code),
	}
}

// Wrap creates an Error with an underlying cause attached.
func Wrap(code Code, message string, cause error) *Error {
	e := New(code, message)
	e.cause = cause
	return e
}

// WithDetails returns e with the given details attached. Order is preserved.
func (e *Error) WithDetails(details ...Detail) *Error {
	e.Details = append(e.Details, details...)
	return e
}

// Status returns the HTTP status derived from the error's code.
func (e *Error) Status() int { return e.status }

// Error implements the error interface.
func (e *Error) Error() string {
	if e.cause != nil {
		return fmt.Sprintf("%s: %s: %v", e.Code, e.Message, e.cause)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// Unwrap exposes the wrapped cause to errors.Is/As.
func (e *Error) Unwrap() error { return e.cause }

// Envelope is the serialized error half of a response.
type Envelope struct {
	Error EnvelopeBody `json:"error"`
}

// EnvelopeBody is the client-visible error payload. Cause and status are
// deliberately absent.
type EnvelopeBody struct {
	Code      Code      `json:"code"`
	Message   string    `json:"message"`
	Details   []Detail  `json:"details,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// ToEnvelope returns the response-envelope form of the error.
func (e *Error) ToEnvelope() Envelope {
	return Envelope{Error: EnvelopeBody{
		Code:      e.Code,
		Message:   e.Message,
		Details:   e.Details,
		Timestamp: e.Timestamp,
	}}
}

// ---------------------------------------------------------------------------
// Factories
// ---------------------------------------------------------------------------

// NotFound reports a missing resource. The message names the id only when
// one is given.
func NotFound(resource, id string) *Error {
	if id == "" {
		return New(CodeNotFound, resource+" not found")
	}
	return New(CodeNotFound, fmt.Sprintf("%s %q not found", resource, id))
}

// Unauthorized reports a missing or unusable credential.
func Unauthorized(message string) *Error {
	if message == "" {
		message = "authentication required"
	}
	return New(CodeAuthRequired, message)
}

// Forbidden reports an authorization failure.
func Forbidden(message string) *Error {
	if message == "" {
		message = "insufficient permissions"
	}
	return New(CodeForbidden, message)
}

// Conflict reports a duplicate or concurrent-modification failure.
func Conflict(message string, details ...Detail) *Error {
	return New(CodeConflict, message).WithDetails(details...)
}

// Internal wraps an unexpected failure. The cause is logged, never sent.
func Internal(message string, cause error) *Error {
	if message == "" {
		message = "internal server error"
	}
	return Wrap(CodeInternalError, message, cause)
}

// RateLimited reports a rate-limit denial with the retry hint in details.
func RateLimited(retryAfterSeconds int) *Error {
	return New(CodeRateLimitExceeded, "rate limit exceeded").WithDetails(Detail{
		Field:      "retryAfter",
		Constraint: fmt.Sprintf("retry after %d seconds", retryAfterSeconds),
	})
}

// Validation aggregates field-level failures into one error. Always one
// error covering every failing field, never one error per field.
func Validation(details []Detail) *Error {
	return New(CodeValidationError, "validation failed").WithDetails(details...)
}

// ---------------------------------------------------------------------------
// Guards
// ---------------------------------------------------------------------------

// IsError reports whether err is (or wraps) an *Error, returning it if so.
func IsError(err error) (*Error, bool) {
	var e *Error
	if err == nil {
		return nil, false
	}
	if errors.As(err, &e) {
		return e, true
	}
	return nil, false
}

// IsErrorEnvelope reports whether a decoded JSON value has the error
// envelope shape. Useful before re-serializing an error from an external
// call.
func IsErrorEnvelope(v map[string]any) bool {
	inner, ok := v["error"].(map[string]any)
	if !ok {
		return false
	}
	_, hasCode := inner["code"].(string)
	_, hasMessage := inner["message"].(string)
	return hasCode && hasMessage
}
