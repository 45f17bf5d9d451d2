// Package apierror provides standardized error response structures for the API
// plus the typed domain errors raised by the service layer. All errors returned
// to clients go through this package to ensure consistency and to prevent
// leaking internal details (stack traces, DB errors, etc.).
package apierror

import (
	"errors"
	"fmt"
	"net/http"
)

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
type APIError struct {
	Detail string `json:"detail"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// ValidationFields wraps multiple field errors.
type ValidationFields struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidationFields(fields map[string]string) *ValidationFields {
	return &ValidationFields{Detail: "validation failed", Fields: fields}
}

// ─── Domain error taxonomy ───────────────────────────────────────────────────
// Services return these; handlers translate them to HTTP statuses via Status().
// Anything outside the taxonomy is treated as an opaque internal error.

var ErrNotFound = errors.New("resource not found")

// ErrForbidden is returned when the acting user lacks the required capability.
var ErrForbidden = errors.New("insufficient permissions")

// ValidationError carries a field-level validation failure.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field != "" {
		return fmt.Sprintf("%s: %s", e.Field, e.Reason)
	}
	return e.Reason
}

func NewValidation(field, reason string) *ValidationError {
	return &ValidationError{Field: field, Reason: reason}
}

// OverlapError signals a temporal conflict among active price rows. The
// message cites the conflicting range so the caller can resolve it.
type OverlapError struct {
	ConflictStart string
	ConflictEnd   string // "unbounded" when the conflicting row is open-ended
}

func (e *OverlapError) Error() string {
	return fmt.Sprintf("price validity period overlaps an existing price history (%s to %s)",
		e.ConflictStart, e.ConflictEnd)
}

// DuplicateKeyError signals a uniqueness violation.
type DuplicateKeyError struct {
	Detail string
}

func (e *DuplicateKeyError) Error() string { return e.Detail }

// DependencyExistsError signals a blocked deletion due to referencing rows.
type DependencyExistsError struct {
	Detail string
}

func (e *DependencyExistsError) Error() string { return e.Detail }

// Status maps a domain error to its HTTP status code.
func Status(err error) int {
	var (
		ve  *ValidationError
		ove *OverlapError
		dke *DuplicateKeyError
		dee *DependencyExistsError
	)
	switch {
	case errors.Is(err, ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, ErrForbidden):
		return http.StatusForbidden
	case errors.As(err, &ve):
		return http.StatusUnprocessableEntity
	case errors.As(err, &ove), errors.As(err, &dke), errors.As(err, &dee):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

// Safe returns a client-facing message for err. Internal errors collapse to a
// generic detail so storage-layer failures are never exposed.
func Safe(err error) string {
	if Status(err) == http.StatusInternalServerError {
		return "internal server error"
	}
	return err.Error()
}
