package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrInvalidInput signals a request rejected before any processing.
	ErrInvalidInput = errors.New("invalid input")
	// ErrSummarizerUnavailable signals a summarizer without credentials or endpoint.
	ErrSummarizerUnavailable = errors.New("summarizer unavailable")
	// ErrSummarizerProviderError signals a failed or malformed remote completion.
	ErrSummarizerProviderError = errors.New("summarizer provider error")
	// ErrSummaryQuotaExceeded signals an exhausted completion token budget.
	ErrSummaryQuotaExceeded = errors.New("summary quota exceeded")
	// ErrPipelinePanic signals a recovered panic inside the clustering pipeline.
	ErrPipelinePanic = errors.New("pipeline panic")
)

// ValidationError wraps ErrInvalidInput with the offending field.
type ValidationError struct {
	Field  string
	Reason string
}

func (e *ValidationError) Error() string {
	if e.Field == "" {
		return e.Reason
	}
	return fmt.Sprintf("%s: %s", e.Field, e.Reason)
}

func (e *ValidationError) Unwrap() error { return ErrInvalidInput }

// NewValidationError creates a validation error for a request field.
func NewValidationError(field, reason string) error {
	return &ValidationError{Field: field, Reason: reason}
}

// IsExternal reports whether err comes from the remote summarization tier.
func IsExternal(err error) bool {
	return errors.Is(err, ErrSummarizerUnavailable) ||
		errors.Is(err, ErrSummarizerProviderError) ||
		errors.Is(err, ErrSummaryQuotaExceeded)
}
