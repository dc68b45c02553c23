package embeddings

import (
	"context"
	"errors"
	"fmt"
	"math"
)

// Common errors for embedding services.
var (
	// ErrNoTexts is returned when the input batch is empty.
	ErrNoTexts = errors.New("no texts to embed")

	// ErrRateLimited is returned when the provider rate limits requests.
	ErrRateLimited = errors.New("rate limited by provider")
)

// Service generates text embeddings.
type Service interface {
	// Name returns the provider identifier (for logging and error reporting).
	Name() string

	// Embed generates one vector per input text, in the same order.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the dimensionality of the vectors produced.
	Dimensions() int
}

// EmbeddingError represents an upstream failure during embedding.
type EmbeddingError struct {
	// Provider is the embedding provider name.
	Provider string

	// Code is the provider-specific error code or HTTP status.
	Code string

	// Message is a human-readable error message.
	Message string

	// Cause is the underlying error, if any.
	Cause error

	// Retryable indicates whether a retry could succeed.
	Retryable bool
}

// NewEmbeddingError creates a new EmbeddingError.
func NewEmbeddingError(provider, code, message string, cause error, retryable bool) *EmbeddingError {
	return &EmbeddingError{
		Provider:  provider,
		Code:      code,
		Message:   message,
		Cause:     cause,
		Retryable: retryable,
	}
}

// Error implements the error interface.
func (e *EmbeddingError) Error() string {
	if e.Code != "" {
		return fmt.Sprintf("%s embedding error [%s]: %s", e.Provider, e.Code, e.Message)
	}
	return fmt.Sprintf("%s embedding error: %s", e.Provider, e.Message)
}

// Unwrap returns the underlying error.
func (e *EmbeddingError) Unwrap() error {
	return e.Cause
}

// CosineSimilarity computes the cosine similarity between two vectors.
// Returns 0 for mismatched lengths or zero vectors.
func CosineSimilarity(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return 0
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return dot / (math.Sqrt(normA) * math.Sqrt(normB))
}
