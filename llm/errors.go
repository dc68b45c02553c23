package llm

import (
	"errors"
	"fmt"
)

// Common errors for LLM services.
var (
	// ErrNoMessages is returned when the conversation is empty.
	ErrNoMessages = errors.New("no messages to complete")

	// ErrRateLimited is returned when the provider rate limits requests.
	ErrRateLimited = errors.New("rate limited by provider")
)

// GenerationError represents an upstream failure during completion.
type GenerationError struct {
	// Provider is the LLM provider name.
	Provider string

	// Code is the provider-specific error code or HTTP status.
	Code string

	// Message is a human-readable error message.
	Message string

	// Cause is the underlying error, if any.
	Cause error

	// Retryable indicates whether a retry (or fallback) could succeed.
	Retryable bool
}

// NewGenerationError creates a new GenerationError.
func NewGenerationError(provider, code, message string, cause error, retryable bool) *GenerationError {
	return &GenerationError{
		Provider:  provider,
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: retryable,
	}
}

// Error implements the error interface.
func (e *GenerationError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s generation error [%s]: %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("%s generation error: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error.
func (e *GenerationError) Unwrap() error {
	return e.Cause
}
