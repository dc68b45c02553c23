package pipeline

import (
	"errors"
	"fmt"
	"sync"

	"github.com/AltairaLabs/CallKit/config"
	"github.com/AltairaLabs/CallKit/gateway"
	"github.com/AltairaLabs/CallKit/llm"
	"github.com/AltairaLabs/CallKit/logger"
	"github.com/AltairaLabs/CallKit/stt"
	"github.com/AltairaLabs/CallKit/tts"
)

// Services bundles the provider handles resolved for one invocation.
// Fallback fields are nil when the tenant configured no fallback (or its
// credential is missing).
type Services struct {
	STT         stt.Service
	STTFallback stt.Service
	LLM         llm.Service
	LLMFallback llm.Service
	TTS         tts.Service
	TTSFallback tts.Service
}

// Resolver turns a tenant's configuration into provider handles.
type Resolver interface {
	Resolve(cfg *config.AgentConfig) (*Services, error)
}

// GatewayResolver resolves providers through the gateway, looking up API
// credentials by (family, provider). A missing credential for a primary
// provider is an error; for a fallback it just disables the fallback.
//
// Handles are cached per (provider, model, credential) so repeated
// invocations reuse the same underlying HTTP client and its connection
// pool. The credential is part of the key, so a rotated key yields a
// fresh handle.
type GatewayResolver struct {
	Gateway     *gateway.Gateway
	Credentials *config.Credentials

	mu         sync.Mutex
	sttHandles map[handleKey]stt.Service
	llmHandles map[handleKey]llm.Service
	ttsHandles map[handleKey]tts.Service
}

type handleKey struct {
	provider   string
	model      string
	credential string
}

// Resolve builds the provider handles for a tenant.
func (r *GatewayResolver) Resolve(cfg *config.AgentConfig) (*Services, error) {
	svcs := &Services{}

	credential, err := r.Credentials.Lookup("stt", cfg.STT.Provider)
	if err != nil {
		return nil, fmt.Errorf("stt: %w", err)
	}
	if svcs.STT, err = r.sttHandle(cfg.STT.Provider, credential, cfg.STT.Model); err != nil {
		return nil, err
	}
	svcs.STTFallback = r.fallbackSTT(cfg.STT)

	credential, err = r.Credentials.Lookup("llm", cfg.LLM.Provider)
	if err != nil {
		return nil, fmt.Errorf("llm: %w", err)
	}
	if svcs.LLM, err = r.llmHandle(cfg.LLM.Provider, credential, cfg.LLM.Model); err != nil {
		return nil, err
	}
	svcs.LLMFallback = r.fallbackLLM(cfg.LLM)

	credential, err = r.Credentials.Lookup("tts", cfg.TTS.Provider)
	if err != nil {
		return nil, fmt.Errorf("tts: %w", err)
	}
	if svcs.TTS, err = r.ttsHandle(cfg.TTS.Provider, credential, cfg.TTS.Model); err != nil {
		return nil, err
	}
	svcs.TTSFallback = r.fallbackTTS(cfg.TTS)

	return svcs, nil
}

func (r *GatewayResolver) sttHandle(provider, credential, model string) (stt.Service, error) {
	key := handleKey{provider, model, credential}

	r.mu.Lock()
	defer r.mu.Unlock()
	if svc, ok := r.sttHandles[key]; ok {
		return svc, nil
	}
	svc, err := r.Gateway.STT(provider, credential, model)
	if err != nil {
		return nil, err
	}
	if r.sttHandles == nil {
		r.sttHandles = make(map[handleKey]stt.Service)
	}
	r.sttHandles[key] = svc
	return svc, nil
}

func (r *GatewayResolver) llmHandle(provider, credential, model string) (llm.Service, error) {
	key := handleKey{provider, model, credential}

	r.mu.Lock()
	defer r.mu.Unlock()
	if svc, ok := r.llmHandles[key]; ok {
		return svc, nil
	}
	svc, err := r.Gateway.LLM(provider, credential, model)
	if err != nil {
		return nil, err
	}
	if r.llmHandles == nil {
		r.llmHandles = make(map[handleKey]llm.Service)
	}
	r.llmHandles[key] = svc
	return svc, nil
}

func (r *GatewayResolver) ttsHandle(provider, credential, model string) (tts.Service, error) {
	key := handleKey{provider, model, credential}

	r.mu.Lock()
	defer r.mu.Unlock()
	if svc, ok := r.ttsHandles[key]; ok {
		return svc, nil
	}
	svc, err := r.Gateway.TTS(provider, credential, model)
	if err != nil {
		return nil, err
	}
	if r.ttsHandles == nil {
		r.ttsHandles = make(map[handleKey]tts.Service)
	}
	r.ttsHandles[key] = svc
	return svc, nil
}

func (r *GatewayResolver) fallbackSTT(choice config.ProviderChoice) stt.Service {
	if choice.Fallback == "" {
		return nil
	}
	credential, err := r.Credentials.Lookup("stt", choice.Fallback)
	if err != nil {
		r.warnFallback("stt", choice.Fallback, err)
		return nil
	}
	svc, err := r.sttHandle(choice.Fallback, credential, "")
	if err != nil {
		r.warnFallback("stt", choice.Fallback, err)
		return nil
	}
	return svc
}

func (r *GatewayResolver) fallbackLLM(choice config.ProviderChoice) llm.Service {
	if choice.Fallback == "" {
		return nil
	}
	credential, err := r.Credentials.Lookup("llm", choice.Fallback)
	if err != nil {
		r.warnFallback("llm", choice.Fallback, err)
		return nil
	}
	svc, err := r.llmHandle(choice.Fallback, credential, "")
	if err != nil {
		r.warnFallback("llm", choice.Fallback, err)
		return nil
	}
	return svc
}

func (r *GatewayResolver) fallbackTTS(choice config.ProviderChoice) tts.Service {
	if choice.Fallback == "" {
		return nil
	}
	credential, err := r.Credentials.Lookup("tts", choice.Fallback)
	if err != nil {
		r.warnFallback("tts", choice.Fallback, err)
		return nil
	}
	svc, err := r.ttsHandle(choice.Fallback, credential, "")
	if err != nil {
		r.warnFallback("tts", choice.Fallback, err)
		return nil
	}
	return svc
}

func (r *GatewayResolver) warnFallback(family, provider string, err error) {
	if errors.Is(err, config.ErrCredentialNotFound) {
		logger.Warn("fallback provider disabled, no credential",
			"family", family, "provider", provider)
		return
	}
	logger.Warn("fallback provider disabled",
		"family", family, "provider", provider, "error", err)
}

// StaticResolver returns a fixed Services bundle; for tests.
type StaticResolver struct {
	Services *Services
	Err      error
}

// Resolve returns the fixed bundle.
func (r *StaticResolver) Resolve(_ *config.AgentConfig) (*Services, error) {
	if r.Err != nil {
		return nil, r.Err
	}
	return r.Services, nil
}
