// Package domain defines the error taxonomy shared by the catalog, engine,
// and transport layers. Errors are categorized, not store-specific: raw
// SQLSTATE codes never cross a package boundary.
package domain

import (
	"errors"
	"fmt"
)

// NotFoundError indicates a table or row was not found.
type NotFoundError struct {
	Message string
}

func (e *NotFoundError) Error() string { return e.Message }

// ValidationError indicates invalid caller input: a missing search
// criterion, an unknown search field, or an empty create payload.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// ConflictError indicates a uniqueness violation reported by the backing
// store.
type ConflictError struct {
	Message string
}

func (e *ConflictError) Error() string { return e.Message }

// ReferentialError indicates a foreign-key violation reported by the backing
// store.
type ReferentialError struct {
	Message string
}

func (e *ReferentialError) Error() string { return e.Message }

// TransientError indicates lost connectivity to the backing store. Callers
// may retry; the engine never retries internally.
type TransientError struct {
	Message string
}

func (e *TransientError) Error() string { return e.Message }

// SchemaError indicates a catalog introspection inconsistency, such as a
// table that exists but reports zero columns.
type SchemaError struct {
	Message string
}

func (e *SchemaError) Error() string { return e.Message }

// AccessDeniedError indicates the principal lacks the role an operation
// requires.
type AccessDeniedError struct {
	Message string
}

func (e *AccessDeniedError) Error() string { return e.Message }

// ErrNotFound creates a NotFoundError with a formatted message.
func ErrNotFound(format string, args ...interface{}) *NotFoundError {
	return &NotFoundError{Message: fmt.Sprintf(format, args...)}
}

// ErrValidation creates a ValidationError with a formatted message.
func ErrValidation(format string, args ...interface{}) *ValidationError {
	return &ValidationError{Message: fmt.Sprintf(format, args...)}
}

// ErrConflict creates a ConflictError with a formatted message.
func ErrConflict(format string, args ...interface{}) *ConflictError {
	return &ConflictError{Message: fmt.Sprintf(format, args...)}
}

// ErrReferential creates a ReferentialError with a formatted message.
func ErrReferential(format string, args ...interface{}) *ReferentialError {
	return &ReferentialError{Message: fmt.Sprintf(format, args...)}
}

// ErrTransient creates a TransientError with a formatted message.
func ErrTransient(format string, args ...interface{}) *TransientError {
	return &TransientError{Message: fmt.Sprintf(format, args...)}
}

// ErrSchema creates a SchemaError with a formatted message.
func ErrSchema(format string, args ...interface{}) *SchemaError {
	return &SchemaError{Message: fmt.Sprintf(format, args...)}
}

// ErrAccessDenied creates an AccessDeniedError with a formatted message.
func ErrAccessDenied(format string, args ...interface{}) *AccessDeniedError {
	return &AccessDeniedError{Message: fmt.Sprintf(format, args...)}
}

// IsNotFound reports whether err is a NotFoundError.
func IsNotFound(err error) bool {
	var e *NotFoundError
	return errors.As(err, &e)
}

// IsValidation reports whether err is a ValidationError.
func IsValidation(err error) bool {
	var e *ValidationError
	return errors.As(err, &e)
}

// IsConflict reports whether err is a ConflictError.
func IsConflict(err error) bool {
	var e *ConflictError
	return errors.As(err, &e)
}

// IsReferential reports whether err is a ReferentialError.
func IsReferential(err error) bool {
	var e *ReferentialError
	return errors.As(err, &e)
}

// IsTransient reports whether err is a TransientError.
func IsTransient(err error) bool {
	var e *TransientError
	return errors.As(err, &e)
}

// IsSchema reports whether err is a SchemaError.
func IsSchema(err error) bool {
	var e *SchemaError
	return errors.As(err, &e)
}

// IsAccessDenied reports whether err is an AccessDeniedError.
func IsAccessDenied(err error) bool {
	var e *AccessDeniedError
	return errors.As(err, &e)
}
