// Package apperr holds the closed set of error types returned by the catalog.
// Callers classify failures with errors.As, never by inspecting messages.
package apperr

import (
	"errors"
	"fmt"
)

// ValidationError reports missing or malformed input. No side effects were performed.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// NotFoundError reports that a referenced resource does not exist.
type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	if e.ID == "" {
		return e.Resource + " not found"
	}
	return fmt.Sprintf("%s %s not found", e.Resource, e.ID)
}

// ConflictError reports a uniqueness violation on Field.
type ConflictError struct {
	Resource string
	Field    string
	Value    string
}

func (e *ConflictError) Error() string {
	if e.Value == "" {
		return fmt.Sprintf("%s with this %s already exists", e.Resource, e.Field)
	}
	return fmt.Sprintf("%s with %s %q already exists", e.Resource, e.Field, e.Value)
}

// UpstreamError wraps a fault of an external dependency (store, broker, object store, ...).
type UpstreamError struct {
	Dependency string
	Op         string
	Err        error
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("%s: failed to %s: %v", e.Dependency, e.Op, e.Err)
}

func (e *UpstreamError) Unwrap() error {
	return e.Err
}

// Validation builds a *ValidationError.
func Validation(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// NotFound builds a *NotFoundError.
func NotFound(resource string, id any) error {
	return &NotFoundError{Resource: resource, ID: fmt.Sprint(id)}
}

// Conflict builds a *ConflictError.
func Conflict(resource, field, value string) error {
	return &ConflictError{Resource: resource, Field: field, Value: value}
}

// Upstream wraps err as an *UpstreamError. A nil err yields nil.
func Upstream(dependency, op string, err error) error {
	if err == nil {
		return nil
	}
	return &UpstreamError{Dependency: dependency, Op: op, Err: err}
}

// IsNotFound reports whether err is, or wraps, a *NotFoundError.
func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

// IsConflictOn reports whether err is a *ConflictError on the given field.
func IsConflictOn(err error, field string) bool {
	var target *ConflictError
	return errors.As(err, &target) && target.Field == field
}
