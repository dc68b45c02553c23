package stt

import (
	"context"
	"sync"
	"time"
)

// MockService is a Service implementation for tests. It returns a canned
// transcription (or an injected error) and counts calls.
type MockService struct {
	mu    sync.Mutex
	name  string
	text  string
	err   error
	calls int
}

// NewMock creates a mock STT service returning the given text.
func NewMock(text string) *MockService {
	return &MockService{name: "mock", text: text}
}

// FailWith makes every subsequent Transcribe call return err.
func (m *MockService) FailWith(err error) *MockService {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Calls returns how many times Transcribe was invoked.
func (m *MockService) Calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.calls
}

// Name returns the provider identifier.
func (m *MockService) Name() string {
	return m.name
}

// Transcribe returns the canned transcription.
func (m *MockService) Transcribe(
	_ context.Context, audio []byte, _ TranscriptionConfig,
) (*Transcription, error) {
	if len(audio) == 0 {
		return nil, ErrEmptyAudio
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.calls++

	if m.err != nil {
		return nil, m.err
	}
	return &Transcription{
		Text:          m.text,
		Language:      "en",
		AudioDuration: 2 * time.Second,
	}, nil
}
