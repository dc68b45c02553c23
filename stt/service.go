package stt

import (
	"context"
	"time"
)

const (
	// DefaultSampleRate is the preferred input rate for Whisper-family models.
	DefaultSampleRate = 16000

	// Common audio formats.
	FormatWAV = "wav"
	FormatMP3 = "mp3"
)

// Transcription is the result of one speech-to-text call.
type Transcription struct {
	// Text is the recognized utterance.
	Text string

	// Language is the detected (or hinted) language code, e.g. "en".
	Language string

	// AudioDuration is the length of the transcribed audio as reported by
	// the provider; zero when the provider does not report it.
	AudioDuration time.Duration
}

// Service transcribes audio to text.
// This interface abstracts different STT providers, enabling the pipeline
// to use any backend interchangeably and to fall back between them.
type Service interface {
	// Name returns the provider identifier (for logging and error reporting).
	Name() string

	// Transcribe converts audio to text.
	Transcribe(ctx context.Context, audio []byte, config TranscriptionConfig) (*Transcription, error)
}

// TranscriptionConfig configures a speech-to-text request.
type TranscriptionConfig struct {
	// Format is the audio container format ("wav", "mp3").
	// Default: "wav" — the pipeline always hands over WAV-wrapped PCM.
	Format string

	// SampleRate is the audio sample rate in Hz. Default: 16000.
	SampleRate int

	// Language is an optional hint (e.g., "en", "es"); improves accuracy.
	Language string

	// Model overrides the service's default model.
	Model string
}

// DefaultTranscriptionConfig returns the configuration the pipeline uses
// for telephony audio.
func DefaultTranscriptionConfig() TranscriptionConfig {
	return TranscriptionConfig{
		Format:     FormatWAV,
		SampleRate: DefaultSampleRate,
	}
}
