package audio

import (
	"errors"
	"fmt"
)

// Common errors for audio conversion.
var (
	// ErrOddPCMLength is returned when 16-bit PCM input is not sample-aligned.
	ErrOddPCMLength = errors.New("pcm data length is not a multiple of sample size")

	// ErrInvalidRate is returned for zero or negative sample rates.
	ErrInvalidRate = errors.New("invalid sample rate")

	// ErrNotWAV is returned when container data has no valid WAV header.
	ErrNotWAV = errors.New("data is not a valid WAV container")

	// ErrRateRequired is returned when raw PCM is supplied without its rate.
	ErrRateRequired = errors.New("source sample rate required for raw pcm input")
)

// FormatError reports malformed or corrupt audio at a conversion boundary.
// It is fatal to the pipeline invocation that triggered it, never to the call.
type FormatError struct {
	// Op is the conversion step that failed (e.g. "decode-base64", "unwrap-wav").
	Op string

	// Cause is the underlying error.
	Cause error
}

// Error implements the error interface.
func (e *FormatError) Error() string {
	return fmt.Sprintf("audio %s: %v", e.Op, e.Cause)
}

// Unwrap returns the underlying error.
func (e *FormatError) Unwrap() error {
	return e.Cause
}

func newFormatError(op string, cause error) *FormatError {
	return &FormatError{Op: op, Cause: cause}
}
