package gateway

import (
	"context"

	"golang.org/x/time/rate"

	"github.com/AltairaLabs/CallKit/embeddings"
	"github.com/AltairaLabs/CallKit/llm"
	"github.com/AltairaLabs/CallKit/stt"
	"github.com/AltairaLabs/CallKit/tts"
)

// wait blocks until the limiter grants a slot, or the context expires.
// A nil limiter means limiting is disabled.
func wait(ctx context.Context, limiter *rate.Limiter) error {
	if limiter == nil {
		return nil
	}
	return limiter.Wait(ctx)
}

type rateLimitedSTT struct {
	inner   stt.Service
	limiter *rate.Limiter
}

func (s *rateLimitedSTT) Name() string { return s.inner.Name() }

func (s *rateLimitedSTT) Transcribe(
	ctx context.Context, audio []byte, config stt.TranscriptionConfig,
) (*stt.Transcription, error) {
	if err := wait(ctx, s.limiter); err != nil {
		return nil, err
	}
	return s.inner.Transcribe(ctx, audio, config)
}

type rateLimitedLLM struct {
	inner   llm.Service
	limiter *rate.Limiter
}

func (s *rateLimitedLLM) Name() string { return s.inner.Name() }

func (s *rateLimitedLLM) Generate(
	ctx context.Context, messages []llm.Message, config llm.GenerationConfig,
) (*llm.Generation, error) {
	if err := wait(ctx, s.limiter); err != nil {
		return nil, err
	}
	return s.inner.Generate(ctx, messages, config)
}

type rateLimitedTTS struct {
	inner   tts.Service
	limiter *rate.Limiter
}

func (s *rateLimitedTTS) Name() string { return s.inner.Name() }

func (s *rateLimitedTTS) Synthesize(
	ctx context.Context, text string, config tts.SynthesisConfig,
) (*tts.Synthesis, error) {
	if err := wait(ctx, s.limiter); err != nil {
		return nil, err
	}
	return s.inner.Synthesize(ctx, text, config)
}

type rateLimitedEmbeddings struct {
	inner   embeddings.Service
	limiter *rate.Limiter
}

func (s *rateLimitedEmbeddings) Name() string { return s.inner.Name() }

func (s *rateLimitedEmbeddings) Dimensions() int { return s.inner.Dimensions() }

func (s *rateLimitedEmbeddings) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if err := wait(ctx, s.limiter); err != nil {
		return nil, err
	}
	return s.inner.Embed(ctx, texts)
}
