package pipeline

import (
	"errors"
	"fmt"
)

// ErrEmptyTranscript is returned (wrapped in *Error) when STT succeeds but
// produces no usable text — an empty utterance cannot drive the rest of
// the pipeline.
var ErrEmptyTranscript = errors.New("transcript is empty")

// Error is an invocation-level pipeline failure. It is fatal to the single
// invocation that raised it, never to the call: the session layer converts
// it into a spoken apology and keeps the call alive.
type Error struct {
	// Stage names the pipeline stage that failed.
	Stage string

	// Message is a human-readable description.
	Message string

	// Cause is the underlying error (typically a family-specific provider
	// error or an audio format error).
	Cause error
}

func newError(stage, message string, cause error) *Error {
	return &Error{Stage: stage, Message: message, Cause: cause}
}

// Error implements the error interface.
func (e *Error) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("pipeline failed at %s: %s: %v", e.Stage, e.Message, e.Cause)
	}
	return fmt.Sprintf("pipeline failed at %s: %s", e.Stage, e.Message)
}

// Unwrap returns the underlying error.
func (e *Error) Unwrap() error {
	return e.Cause
}
