package gateway

import (
	"errors"
	"fmt"
	"sort"
	"sync"

	"golang.org/x/time/rate"

	"github.com/AltairaLabs/CallKit/embeddings"
	"github.com/AltairaLabs/CallKit/llm"
	"github.com/AltairaLabs/CallKit/stt"
	"github.com/AltairaLabs/CallKit/tts"
)

// Family identifies a capability family.
type Family string

// Capability families served by the gateway.
const (
	FamilySTT        Family = "stt"
	FamilyLLM        Family = "llm"
	FamilyTTS        Family = "tts"
	FamilyEmbeddings Family = "embeddings"
)

// Common errors.
var (
	// ErrProviderNotFound is returned when a provider name is not
	// registered for the requested family.
	ErrProviderNotFound = errors.New("provider not registered")

	// ErrCredentialMissing is returned when no API credential is supplied.
	ErrCredentialMissing = errors.New("credential missing")
)

// Factory functions build a provider handle from a credential and an
// optional model override (empty string keeps the provider default).
type (
	STTFactory       func(credential, model string) stt.Service
	LLMFactory       func(credential, model string) llm.Service
	TTSFactory       func(credential, model string) tts.Service
	EmbeddingFactory func(credential, model string) embeddings.Service
)

// Gateway creates provider handles by (family, name), applying per-provider
// rate limits. Safe for concurrent use.
type Gateway struct {
	mu sync.RWMutex

	sttFactories map[string]STTFactory
	llmFactories map[string]LLMFactory
	ttsFactories map[string]TTSFactory
	embFactories map[string]EmbeddingFactory

	// limiters are shared per (family, provider) across all handles,
	// so every call to the same upstream counts against one budget.
	limiters map[string]*rate.Limiter
	limit    rate.Limit
	burst    int
}

// Option configures a Gateway.
type Option func(*Gateway)

// WithRateLimit sets the default per-provider request rate and burst.
func WithRateLimit(limit rate.Limit, burst int) Option {
	return func(g *Gateway) {
		g.limit = limit
		g.burst = burst
	}
}

// WithoutRateLimits disables rate limiting entirely (tests, local dev).
func WithoutRateLimits() Option {
	return func(g *Gateway) {
		g.limit = rate.Inf
		g.burst = 0
	}
}

// Defaults chosen to sit under the free-tier quotas of the slowest
// registered upstream.
const (
	defaultRateLimit = rate.Limit(10)
	defaultBurst     = 5
)

// New creates a Gateway with the built-in providers registered:
// stt(groq, openai), llm(groq, openai), tts(elevenlabs, openai),
// embeddings(openai).
func New(opts ...Option) *Gateway {
	g := &Gateway{
		sttFactories: map[string]STTFactory{
			"groq": func(credential, model string) stt.Service {
				if model != "" {
					return stt.NewGroq(credential, stt.WithGroqModel(model))
				}
				return stt.NewGroq(credential)
			},
			"openai": func(credential, model string) stt.Service {
				if model != "" {
					return stt.NewOpenAI(credential, stt.WithOpenAIModel(model))
				}
				return stt.NewOpenAI(credential)
			},
		},
		llmFactories: map[string]LLMFactory{
			"groq": func(credential, model string) llm.Service {
				if model != "" {
					return llm.NewGroq(credential, llm.WithGroqModel(model))
				}
				return llm.NewGroq(credential)
			},
			"openai": func(credential, model string) llm.Service {
				if model != "" {
					return llm.NewOpenAI(credential, llm.WithOpenAIModel(model))
				}
				return llm.NewOpenAI(credential)
			},
		},
		ttsFactories: map[string]TTSFactory{
			"elevenlabs": func(credential, model string) tts.Service {
				if model != "" {
					return tts.NewElevenLabs(credential, tts.WithElevenLabsModel(model))
				}
				return tts.NewElevenLabs(credential)
			},
			"openai": func(credential, model string) tts.Service {
				if model != "" {
					return tts.NewOpenAI(credential, tts.WithOpenAIModel(model))
				}
				return tts.NewOpenAI(credential)
			},
		},
		embFactories: map[string]EmbeddingFactory{
			"openai": func(credential, model string) embeddings.Service {
				if model != "" {
					return embeddings.NewOpenAI(credential,
						embeddings.WithOpenAIModel(model))
				}
				return embeddings.NewOpenAI(credential)
			},
		},
		limiters: make(map[string]*rate.Limiter),
		limit:    defaultRateLimit,
		burst:    defaultBurst,
	}
	for _, opt := range opts {
		opt(g)
	}
	return g
}

// RegisterSTT adds (or replaces) an STT provider factory.
func (g *Gateway) RegisterSTT(name string, factory STTFactory) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.sttFactories[name] = factory
}

// RegisterLLM adds (or replaces) an LLM provider factory.
func (g *Gateway) RegisterLLM(name string, factory LLMFactory) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.llmFactories[name] = factory
}

// RegisterTTS adds (or replaces) a TTS provider factory.
func (g *Gateway) RegisterTTS(name string, factory TTSFactory) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.ttsFactories[name] = factory
}

// RegisterEmbeddings adds (or replaces) an embedding provider factory.
func (g *Gateway) RegisterEmbeddings(name string, factory EmbeddingFactory) {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.embFactories[name] = factory
}

// Providers returns the sorted provider names registered for a family.
// Configuration validation uses this to reject unknown names at load time.
func (g *Gateway) Providers(family Family) []string {
	g.mu.RLock()
	defer g.mu.RUnlock()

	var names []string
	switch family {
	case FamilySTT:
		for name := range g.sttFactories {
			names = append(names, name)
		}
	case FamilyLLM:
		for name := range g.llmFactories {
			names = append(names, name)
		}
	case FamilyTTS:
		for name := range g.ttsFactories {
			names = append(names, name)
		}
	case FamilyEmbeddings:
		for name := range g.embFactories {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names
}

// STT creates a speech-to-text handle.
func (g *Gateway) STT(provider, credential, model string) (stt.Service, error) {
	if credential == "" {
		return nil, fmt.Errorf("%w: stt provider %q", ErrCredentialMissing, provider)
	}
	g.mu.RLock()
	factory, ok := g.sttFactories[provider]
	g.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: stt provider %q", ErrProviderNotFound, provider)
	}
	return &rateLimitedSTT{
		inner:   factory(credential, model),
		limiter: g.limiter(FamilySTT, provider),
	}, nil
}

// LLM creates a chat-completion handle.
func (g *Gateway) LLM(provider, credential, model string) (llm.Service, error) {
	if credential == "" {
		return nil, fmt.Errorf("%w: llm provider %q", ErrCredentialMissing, provider)
	}
	g.mu.RLock()
	factory, ok := g.llmFactories[provider]
	g.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: llm provider %q", ErrProviderNotFound, provider)
	}
	return &rateLimitedLLM{
		inner:   factory(credential, model),
		limiter: g.limiter(FamilyLLM, provider),
	}, nil
}

// TTS creates a text-to-speech handle.
func (g *Gateway) TTS(provider, credential, model string) (tts.Service, error) {
	if credential == "" {
		return nil, fmt.Errorf("%w: tts provider %q", ErrCredentialMissing, provider)
	}
	g.mu.RLock()
	factory, ok := g.ttsFactories[provider]
	g.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: tts provider %q", ErrProviderNotFound, provider)
	}
	return &rateLimitedTTS{
		inner:   factory(credential, model),
		limiter: g.limiter(FamilyTTS, provider),
	}, nil
}

// Embeddings creates an embedding handle.
func (g *Gateway) Embeddings(provider, credential, model string) (embeddings.Service, error) {
	if credential == "" {
		return nil, fmt.Errorf("%w: embeddings provider %q", ErrCredentialMissing, provider)
	}
	g.mu.RLock()
	factory, ok := g.embFactories[provider]
	g.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: embeddings provider %q", ErrProviderNotFound, provider)
	}
	return &rateLimitedEmbeddings{
		inner:   factory(credential, model),
		limiter: g.limiter(FamilyEmbeddings, provider),
	}, nil
}

// limiter returns the shared limiter for a (family, provider) pair,
// creating it on first use. Returns nil when limiting is disabled.
func (g *Gateway) limiter(family Family, provider string) *rate.Limiter {
	if g.limit == rate.Inf {
		return nil
	}
	key := string(family) + "/" + provider

	g.mu.Lock()
	defer g.mu.Unlock()
	if l, ok := g.limiters[key]; ok {
		return l
	}
	l := rate.NewLimiter(g.limit, g.burst)
	g.limiters[key] = l
	return l
}
