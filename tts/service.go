package tts

import "context"

// Audio format identifiers for synthesis output.
const (
	// FormatWAV is PCM inside a WAV container.
	FormatWAV = "wav"
	// FormatPCM is raw 16-bit little-endian PCM.
	FormatPCM = "pcm"
)

// Synthesis is the result of one text-to-speech call.
type Synthesis struct {
	// Audio is the synthesized audio data.
	Audio []byte

	// Format is the actual output framing (FormatWAV or FormatPCM).
	Format string

	// SampleRate is the actual output rate in Hz. For FormatWAV callers
	// may prefer the rate carried in the container; both agree.
	SampleRate int
}

// Service converts text to speech audio.
// This interface abstracts different TTS providers, enabling the pipeline
// to use any backend interchangeably and to fall back between them.
type Service interface {
	// Name returns the provider identifier (for logging and error reporting).
	Name() string

	// Synthesize converts text to audio.
	Synthesize(ctx context.Context, text string, config SynthesisConfig) (*Synthesis, error)
}

// SynthesisConfig configures a text-to-speech request.
type SynthesisConfig struct {
	// Voice is the provider-specific voice identifier.
	// Empty selects the provider's default voice.
	Voice string

	// Model overrides the service's default model.
	Model string

	// Stability controls voice consistency (0..1, ElevenLabs only).
	Stability float64

	// SimilarityBoost controls voice similarity (0..1, ElevenLabs only).
	SimilarityBoost float64

	// Speed is the speech rate multiplier (OpenAI only; 0 means default).
	Speed float64
}

// DefaultSynthesisConfig returns the voice settings used when a tenant has
// not customized them.
func DefaultSynthesisConfig() SynthesisConfig {
	return SynthesisConfig{
		Stability:       0.5,
		SimilarityBoost: 0.75,
	}
}
