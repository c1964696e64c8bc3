// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"errors"
	"fmt"
)

// Base domain errors that can be used for error checking with errors.Is().
var (
	// Entity errors
	ErrNotFound      = errors.New("entity not found")
	ErrAlreadyExists = errors.New("entity already exists")

	// Validation errors
	ErrValidation      = errors.New("validation error")
	ErrInvalidID       = errors.New("invalid ID")
	ErrInvalidInput    = errors.New("invalid input")
	ErrEmptyValue      = errors.New("value cannot be empty")
	ErrValueOutOfRange = errors.New("value out of range")

	// Relation rule errors
	ErrSelfRelationForbidden = errors.New("self relation forbidden")

	// Authorization errors
	ErrUnauthorized = errors.New("unauthorized")

	// Backend errors
	ErrStoreUnavailable = errors.New("store unavailable")
	ErrTimeout          = errors.New("operation timeout")
)

// DomainError represents a domain-specific error with context.
type DomainError struct {
	Domain  string // e.g., "relation", "content", "feed"
	Op      string // Operation that failed, e.g., "Toggle", "Query"
	Kind    error  // Base error type for errors.Is() checking
	Message string // Human-readable message
	Err     error  // Underlying error (optional)
}

// Error implements the error interface.
func (e *DomainError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s.%s: %s: %v", e.Domain, e.Op, e.Message, e.Err)
	}
	return fmt.Sprintf("%s.%s: %s", e.Domain, e.Op, e.Message)
}

// Unwrap returns the underlying error for errors.Unwrap().
func (e *DomainError) Unwrap() error {
	if e.Err != nil {
		return e.Err
	}
	return e.Kind
}

// Is implements errors.Is() matching.
func (e *DomainError) Is(target error) bool {
	if e.Kind != nil && errors.Is(e.Kind, target) {
		return true
	}
	if e.Err != nil && errors.Is(e.Err, target) {
		return true
	}
	return false
}

// NewDomainError creates a new domain error.
func NewDomainError(domain, op string, kind error, message string) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
	}
}

// WrapError wraps an existing error with domain context.
func WrapError(domain, op string, kind error, message string, err error) *DomainError {
	return &DomainError{
		Domain:  domain,
		Op:      op,
		Kind:    kind,
		Message: message,
		Err:     err,
	}
}

// Relation domain errors
var (
	ErrUnknownRelationKind = NewDomainError("relation", "Validate", ErrInvalidInput, "unknown relation kind")
	ErrMissingActor        = NewDomainError("relation", "Toggle", ErrUnauthorized, "an authenticated actor is required")
	ErrInvalidActor        = NewDomainError("relation", "Validate", ErrInvalidID, "actor id is malformed")
	ErrInvalidTarget       = NewDomainError("relation", "Validate", ErrInvalidID, "target id is malformed")
	ErrTargetNotFound      = NewDomainError("relation", "Toggle", ErrNotFound, "target does not exist")
	ErrSelfSubscription    = NewDomainError("relation", "Toggle", ErrSelfRelationForbidden, "cannot subscribe to own channel")
)

// Feed domain errors
var (
	ErrUnknownContentKind = NewDomainError("feed", "Validate", ErrInvalidInput, "unknown content kind")
	ErrInvalidPagination  = NewDomainError("feed", "Validate", ErrValueOutOfRange, "page and limit must be at least 1")
	ErrInvalidSortField   = NewDomainError("feed", "Validate", ErrValidation, "sort field is not allowed")
	ErrInvalidDirection   = NewDomainError("feed", "Validate", ErrValidation, "sort direction must be asc or desc")
	ErrMissingFilter      = NewDomainError("feed", "Validate", ErrValidation, "required filter is missing")
)

// Content domain errors
var (
	ErrContentNotFound = NewDomainError("content", "Find", ErrNotFound, "content not found")
)

// IsNotFound checks if the error is a "not found" error.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

// IsValidation checks if the error is a validation error.
func IsValidation(err error) bool {
	return errors.Is(err, ErrValidation) ||
		errors.Is(err, ErrInvalidID) ||
		errors.Is(err, ErrInvalidInput) ||
		errors.Is(err, ErrEmptyValue) ||
		errors.Is(err, ErrValueOutOfRange) ||
		errors.Is(err, ErrSelfRelationForbidden)
}

// IsUnauthorized checks if the error requires an authenticated actor.
func IsUnauthorized(err error) bool {
	return errors.Is(err, ErrUnauthorized)
}

// IsStoreUnavailable checks if the error came from a failing backend.
func IsStoreUnavailable(err error) bool {
	return errors.Is(err, ErrStoreUnavailable) || errors.Is(err, ErrTimeout)
}

// StoreError wraps a backend failure so it matches ErrStoreUnavailable.
// Errors that are already domain errors keep their kind.
func StoreError(domain, op string, err error) error {
	if err == nil {
		return nil
	}
	var de *DomainError
	if errors.As(err, &de) {
		return err
	}
	return WrapError(domain, op, ErrStoreUnavailable, "backend failure", err)
}
