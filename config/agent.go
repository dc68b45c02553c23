package config

import (
	"errors"
	"fmt"
)

// Validation errors.
var (
	// ErrUnknownProvider is returned when a provider name is outside the
	// legal set for its capability family.
	ErrUnknownProvider = errors.New("unknown provider")

	// ErrOutOfRange is returned when a numeric parameter is outside its
	// legal range.
	ErrOutOfRange = errors.New("parameter out of range")
)

// Legal provider names per capability family. Tenant configuration naming
// anything else is rejected at load time.
var (
	STTProviders        = []string{"groq", "openai"}
	LLMProviders        = []string{"groq", "openai"}
	TTSProviders        = []string{"elevenlabs", "openai"}
	EmbeddingsProviders = []string{"openai"}
)

// Defaults applied by Normalize.
const (
	DefaultSTTProvider        = "groq"
	DefaultSTTModel           = "whisper-large-v3"
	DefaultLLMProvider        = "groq"
	DefaultLLMModel           = "llama-3.3-70b-versatile"
	DefaultTTSProvider        = "elevenlabs"
	DefaultTTSVoice           = "21m00Tcm4TlvDq8ikWAM"
	DefaultEmbeddingsProvider = "openai"
	DefaultEmbeddingsModel    = "text-embedding-3-small"

	DefaultTemperature = 0.7
	DefaultMaxTokens   = 150
	DefaultTopP        = 1.0
	DefaultHistoryCap  = 10
	DefaultTopK        = 3

	// DefaultSilenceTimeout is how long the caller may stay silent before
	// the agent prompts again.
	DefaultSilenceTimeout = 2.0
)

// ProviderChoice selects a primary provider, an optional model override,
// and an optional fallback provider for one capability family.
type ProviderChoice struct {
	Provider string `json:"provider" yaml:"provider"`
	Model    string `json:"model,omitempty" yaml:"model,omitempty"`
	Fallback string `json:"fallback,omitempty" yaml:"fallback,omitempty"`
}

// AgentConfig is one tenant's voice-agent configuration.
type AgentConfig struct {
	TenantID string `json:"tenant_id" yaml:"tenant_id"`
	Name     string `json:"name,omitempty" yaml:"name,omitempty"`

	// SystemPrompt steers the LLM; Greeting, when non-empty, is spoken as
	// soon as the call starts.
	SystemPrompt string `json:"system_prompt" yaml:"system_prompt"`
	Greeting     string `json:"greeting,omitempty" yaml:"greeting,omitempty"`

	STT        ProviderChoice `json:"stt" yaml:"stt"`
	LLM        ProviderChoice `json:"llm" yaml:"llm"`
	TTS        ProviderChoice `json:"tts" yaml:"tts"`
	Embeddings ProviderChoice `json:"embeddings" yaml:"embeddings"`

	// Voice is the TTS voice identifier.
	Voice string `json:"voice,omitempty" yaml:"voice,omitempty"`

	// Generation parameters. Temperature is a pointer so an explicit 0
	// (deterministic sampling) survives normalization; nil means unset.
	Temperature *float64 `json:"temperature,omitempty" yaml:"temperature,omitempty"`
	MaxTokens   int      `json:"max_tokens,omitempty" yaml:"max_tokens,omitempty"`
	TopP        float64  `json:"top_p,omitempty" yaml:"top_p,omitempty"`

	// HistoryCap bounds the conversation history.
	HistoryCap int `json:"history_cap,omitempty" yaml:"history_cap,omitempty"`

	// Knowledge retrieval.
	RetrievalEnabled bool `json:"retrieval_enabled,omitempty" yaml:"retrieval_enabled,omitempty"`
	RetrievalTopK    int  `json:"retrieval_top_k,omitempty" yaml:"retrieval_top_k,omitempty"`

	// Barge-in and silence handling.
	EnableInterruption bool    `json:"enable_interruption,omitempty" yaml:"enable_interruption,omitempty"`
	SilenceTimeout     float64 `json:"silence_timeout,omitempty" yaml:"silence_timeout,omitempty"`
}

// DefaultAgentConfig returns a configuration with all defaults applied,
// suitable as a starting point for a new tenant.
func DefaultAgentConfig(tenantID string) *AgentConfig {
	c := &AgentConfig{TenantID: tenantID, EnableInterruption: true}
	c.Normalize()
	return c
}

// Normalize fills zero-valued fields with defaults. Call before Validate.
func (c *AgentConfig) Normalize() {
	if c.STT.Provider == "" {
		c.STT.Provider = DefaultSTTProvider
	}
	if c.STT.Model == "" {
		c.STT.Model = DefaultSTTModel
	}
	if c.LLM.Provider == "" {
		c.LLM.Provider = DefaultLLMProvider
	}
	if c.LLM.Model == "" {
		c.LLM.Model = DefaultLLMModel
	}
	if c.TTS.Provider == "" {
		c.TTS.Provider = DefaultTTSProvider
	}
	if c.Embeddings.Provider == "" {
		c.Embeddings.Provider = DefaultEmbeddingsProvider
	}
	if c.Embeddings.Model == "" {
		c.Embeddings.Model = DefaultEmbeddingsModel
	}
	if c.Voice == "" {
		c.Voice = DefaultTTSVoice
	}
	if c.Temperature == nil {
		t := DefaultTemperature
		c.Temperature = &t
	}
	if c.MaxTokens == 0 {
		c.MaxTokens = DefaultMaxTokens
	}
	if c.TopP == 0 {
		c.TopP = DefaultTopP
	}
	if c.HistoryCap == 0 {
		c.HistoryCap = DefaultHistoryCap
	}
	if c.RetrievalTopK == 0 {
		c.RetrievalTopK = DefaultTopK
	}
	if c.SilenceTimeout == 0 {
		c.SilenceTimeout = DefaultSilenceTimeout
	}
}

// Validate checks provider names against their legal sets and numeric
// parameters against their ranges.
func (c *AgentConfig) Validate() error {
	if c.TenantID == "" {
		return fmt.Errorf("%w: tenant_id is required", ErrOutOfRange)
	}

	if err := validateChoice("stt", c.STT, STTProviders); err != nil {
		return err
	}
	if err := validateChoice("llm", c.LLM, LLMProviders); err != nil {
		return err
	}
	if err := validateChoice("tts", c.TTS, TTSProviders); err != nil {
		return err
	}
	if err := validateChoice("embeddings", c.Embeddings, EmbeddingsProviders); err != nil {
		return err
	}

	if c.Temperature != nil && (*c.Temperature < 0 || *c.Temperature > 2) {
		return fmt.Errorf("%w: temperature %v not in [0, 2]", ErrOutOfRange, *c.Temperature)
	}
	if c.MaxTokens < 1 {
		return fmt.Errorf("%w: max_tokens %d must be positive", ErrOutOfRange, c.MaxTokens)
	}
	if c.TopP <= 0 || c.TopP > 1 {
		return fmt.Errorf("%w: top_p %v not in (0, 1]", ErrOutOfRange, c.TopP)
	}
	if c.HistoryCap < 1 {
		return fmt.Errorf("%w: history_cap %d must be positive", ErrOutOfRange, c.HistoryCap)
	}
	if c.RetrievalTopK < 1 {
		return fmt.Errorf("%w: retrieval_top_k %d must be positive", ErrOutOfRange, c.RetrievalTopK)
	}
	if c.SilenceTimeout < 0.5 || c.SilenceTimeout > 10 {
		return fmt.Errorf("%w: silence_timeout %v not in [0.5, 10]", ErrOutOfRange, c.SilenceTimeout)
	}
	return nil
}

func validateChoice(family string, choice ProviderChoice, legal []string) error {
	if !contains(legal, choice.Provider) {
		return fmt.Errorf("%w: %s provider %q (legal: %v)",
			ErrUnknownProvider, family, choice.Provider, legal)
	}
	if choice.Fallback != "" && !contains(legal, choice.Fallback) {
		return fmt.Errorf("%w: %s fallback provider %q (legal: %v)",
			ErrUnknownProvider, family, choice.Fallback, legal)
	}
	return nil
}

func contains(list []string, s string) bool {
	for _, item := range list {
		if item == s {
			return true
		}
	}
	return false
}
