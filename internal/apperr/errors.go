// Package apperr defines the errors that are surfaced to API callers.
package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"sort"
	"strings"
)

// NonFieldKey is the key used for messages not attributable to one input field.
const NonFieldKey = "non_field_errors"

// ValidationError collects field and non-field messages for malformed input.
type ValidationError struct {
	Fields   map[string][]string
	NonField []string
}

// NewValidation returns an empty ValidationError ready to collect messages.
func NewValidation() *ValidationError {
	return &ValidationError{Fields: map[string][]string{}}
}

// Field returns a ValidationError holding a single field message.
func Field(field, message string) *ValidationError {
	return NewValidation().Add(field, message)
}

// NonFieldError returns a ValidationError holding a single non-field message.
func NonFieldError(message string) *ValidationError {
	return NewValidation().AddNonField(message)
}

func (e *ValidationError) Add(field, message string) *ValidationError {
	e.Fields[field] = append(e.Fields[field], message)
	return e
}

func (e *ValidationError) AddNonField(message string) *ValidationError {
	e.NonField = append(e.NonField, message)
	return e
}

// Empty reports whether no message has been collected.
func (e *ValidationError) Empty() bool {
	return len(e.Fields) == 0 && len(e.NonField) == 0
}

// OrNil returns nil when no message was collected, so callers can return it directly.
func (e *ValidationError) OrNil() error {
	if e == nil || e.Empty() {
		return nil
	}
	return e
}

// Body renders the messages in the shape returned to clients.
func (e *ValidationError) Body() map[string][]string {
	body := make(map[string][]string, len(e.Fields)+1)
	for k, v := range e.Fields {
		body[k] = v
	}
	if len(e.NonField) > 0 {
		body[NonFieldKey] = e.NonField
	}
	return body
}

func (e *ValidationError) Error() string {
	keys := make([]string, 0, len(e.Fields))
	for k := range e.Fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	parts := make([]string, 0, len(keys)+len(e.NonField))
	for _, k := range keys {
		parts = append(parts, fmt.Sprintf("%s: %s", k, strings.Join(e.Fields[k], "; ")))
	}
	parts = append(parts, e.NonField...)
	return "validation failed: " + strings.Join(parts, ", ")
}

// ConflictError reports a uniqueness violation. It is shown as a non-field message.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// Conflict returns a ConflictError with the given message.
func Conflict(message string) *ConflictError {
	return &ConflictError{Message: message}
}

// ProtectedError reports a delete blocked by records that still reference the target.
type ProtectedError struct {
	Message string
}

func (e *ProtectedError) Error() string { return e.Message }

// Protected returns a ProtectedError with the given message.
func Protected(message string) *ProtectedError {
	return &ProtectedError{Message: message}
}

// ForbiddenError reports an authenticated caller without the right to act.
// The message is deliberately generic.
type ForbiddenError struct {
	Message string
}

func (e *ForbiddenError) Error() string { return e.Message }

// Forbidden returns the generic ForbiddenError.
func Forbidden() *ForbiddenError {
	return &ForbiddenError{Message: "You are not authorized."}
}

// NotFoundError reports a missing record.
type NotFoundError struct {
	Resource string
}

func (e *NotFoundError) Error() string {
	if e.Resource == "" {
		return "Not found."
	}
	return e.Resource + " not found."
}

// NotFound returns a NotFoundError for the named resource.
func NotFound(resource string) *NotFoundError {
	return &NotFoundError{Resource: resource}
}

// UnauthenticatedError reports a missing or invalid credential.
type UnauthenticatedError struct {
	Message string
}

func (e *UnauthenticatedError) Error() string { return e.Message }

// Unauthenticated returns an UnauthenticatedError with the given message.
func Unauthenticated(message string) *UnauthenticatedError {
	return &UnauthenticatedError{Message: message}
}

// HTTPStatus maps err onto the status code returned to the client.
// Errors outside the taxonomy map to 500.
func HTTPStatus(err error) int {
	var (
		validation *ValidationError
		conflict   *ConflictError
		protected  *ProtectedError
		forbidden  *ForbiddenError
		notFound   *NotFoundError
		unauth     *UnauthenticatedError
	)
	switch {
	case err == nil:
		return http.StatusOK
	case errors.As(err, &validation), errors.As(err, &conflict), errors.As(err, &protected):
		return http.StatusBadRequest
	case errors.As(err, &unauth):
		return http.StatusUnauthorized
	case errors.As(err, &forbidden):
		return http.StatusForbidden
	case errors.As(err, &notFound):
		return http.StatusNotFound
	default:
		return http.StatusInternalServerError
	}
}

// IsExpected reports whether err belongs to the taxonomy surfaced to callers.
func IsExpected(err error) bool {
	return HTTPStatus(err) != http.StatusInternalServerError
}
