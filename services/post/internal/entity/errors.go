package entity

import (
	"errors"
	"fmt"
)

// ValidationError is malformed or rule-violating input.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Message
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Message)
}

func NewValidationError(field, format string, args ...interface{}) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// RangeError is a numeric input outside its allowed bound.
type RangeError struct {
	Field  string
	Limit  float64
	Actual float64
}

func (e *RangeError) Error() string {
	return fmt.Sprintf("%s out of range: %.3f exceeds %.3f", e.Field, e.Actual, e.Limit)
}

type NotFoundError struct {
	Resource string
	ID       string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Resource, e.ID)
}

// ForbiddenError means the actor does not own the resource.
type ForbiddenError struct {
	Resource string
	ID       string
}

func (e *ForbiddenError) Error() string {
	return fmt.Sprintf("forbidden: %s %s is not owned by the requester", e.Resource, e.ID)
}

// InternalError wraps failures of the backing store, cache or a broken internal
// assumption.
type InternalError struct {
	Op  string
	Err error
}

func (e *InternalError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s: internal error", e.Op)
	}
	return fmt.Sprintf("%s: %v", e.Op, e.Err)
}

func (e *InternalError) Unwrap() error {
	return e.Err
}

func NewInternalError(op string, err error) *InternalError {
	return &InternalError{Op: op, Err: err}
}

func IsValidationError(err error) bool {
	var target *ValidationError
	return errors.As(err, &target)
}

func IsRangeError(err error) bool {
	var target *RangeError
	return errors.As(err, &target)
}

func IsNotFound(err error) bool {
	var target *NotFoundError
	return errors.As(err, &target)
}

func IsForbidden(err error) bool {
	var target *ForbiddenError
	return errors.As(err, &target)
}

func IsInternal(err error) bool {
	var target *InternalError
	return errors.As(err, &target)
}

// IsDomainError reports whether err is one of the caller-facing kinds that must be
// propagated unchanged.
func IsDomainError(err error) bool {
	return IsValidationError(err) || IsRangeError(err) || IsNotFound(err) || IsForbidden(err) || IsInternal(err)
}
