package domain

import (
	"fmt"
)

// Error codes for the engine's failure taxonomy. Only validation errors cross
// the engine boundary as hard failures; everything else degrades locally.
const (
	ErrCodeValidation        = "VALIDATION_ERROR"
	ErrCodeSourceUnavailable = "SOURCE_UNAVAILABLE"
	ErrCodeNotFound          = "NOT_FOUND"
	ErrCodeCache             = "CACHE_ERROR"
)

// Validation failure reasons for malformed caller input.
const (
	ReasonTooFewDrugs  = "TooFewDrugs"
	ReasonTooManyDrugs = "TooManyDrugs"
	ReasonBadPhenotype = "UnknownPhenotype"
)

// ValidationError represents malformed caller input. It is the only error kind
// surfaced to the caller as a hard (4xx) failure, and is never retried.
type ValidationError struct {
	Reason  string `json:"reason"`
	Message string `json:"message"`
}

// Error implements the error interface
func (e *ValidationError) Error() string {
	return fmt.Sprintf("%s: %s", e.Reason, e.Message)
}

// NewValidationError creates a new ValidationError
func NewValidationError(reason, message string) *ValidationError {
	return &ValidationError{Reason: reason, Message: message}
}

// SourceUnavailableError means a single source adapter failed or timed out.
// It is logged and excluded from the pair's merge; the overall check continues
// with reduced source coverage.
type SourceUnavailableError struct {
	Source string
	Err    error
}

// Error implements the error interface
func (e *SourceUnavailableError) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("source %s unavailable", e.Source)
	}
	return fmt.Sprintf("source %s unavailable: %v", e.Source, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *SourceUnavailableError) Unwrap() error {
	return e.Err
}

// NewSourceUnavailableError creates a new SourceUnavailableError
func NewSourceUnavailableError(source string, err error) *SourceUnavailableError {
	return &SourceUnavailableError{Source: source, Err: err}
}

// NotFoundError means requested reference data (drug, therapeutic class,
// equivalence baseline) is absent. Treated as "no data", never as a failure:
// downstream components degrade to empty or neutral results.
type NotFoundError struct {
	Kind string
	Key  string
}

// Error implements the error interface
func (e *NotFoundError) Error() string {
	return fmt.Sprintf("%s not found: %s", e.Kind, e.Key)
}

// NewNotFoundError creates a new NotFoundError
func NewNotFoundError(kind, key string) *NotFoundError {
	return &NotFoundError{Kind: kind, Key: key}
}

// CacheError means a cache read or write failed. It is logged and bypassed in
// favor of live computation; it never reaches the caller.
type CacheError struct {
	Op  string
	Err error
}

// Error implements the error interface
func (e *CacheError) Error() string {
	return fmt.Sprintf("cache %s failed: %v", e.Op, e.Err)
}

// Unwrap exposes the underlying cause for errors.Is/As chains.
func (e *CacheError) Unwrap() error {
	return e.Err
}

// NewCacheError creates a new CacheError
func NewCacheError(op string, err error) *CacheError {
	return &CacheError{Op: op, Err: err}
}
