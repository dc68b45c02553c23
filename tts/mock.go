package tts

import (
	"context"
	"sync"
)

// MockService is a Service implementation for tests. It returns canned
// audio (or an injected error) and records the texts it was asked to speak.
type MockService struct {
	mu    sync.Mutex
	name  string
	audio []byte
	err   error
	texts []string
}

// NewMock creates a mock TTS service returning the given PCM bytes at the
// recognition sample rate.
func NewMock(audio []byte) *MockService {
	return &MockService{name: "mock", audio: audio}
}

// FailWith makes every subsequent Synthesize call return err.
func (m *MockService) FailWith(err error) *MockService {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Texts returns the texts passed to Synthesize, in order.
func (m *MockService) Texts() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	texts := make([]string, len(m.texts))
	copy(texts, m.texts)
	return texts
}

// Name returns the provider identifier.
func (m *MockService) Name() string {
	return m.name
}

// Synthesize returns the canned audio.
func (m *MockService) Synthesize(
	_ context.Context, text string, _ SynthesisConfig,
) (*Synthesis, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.texts = append(m.texts, text)

	if m.err != nil {
		return nil, m.err
	}
	return &Synthesis{
		Audio:      m.audio,
		Format:     FormatPCM,
		SampleRate: 16000,
	}, nil
}
