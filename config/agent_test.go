package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultAgentConfig(t *testing.T) {
	c := DefaultAgentConfig("tenant-1")

	assert.Equal(t, "tenant-1", c.TenantID)
	assert.Equal(t, DefaultSTTProvider, c.STT.Provider)
	assert.Equal(t, DefaultSTTModel, c.STT.Model)
	assert.Equal(t, DefaultLLMProvider, c.LLM.Provider)
	assert.Equal(t, DefaultLLMModel, c.LLM.Model)
	assert.Equal(t, DefaultTTSProvider, c.TTS.Provider)
	assert.Equal(t, DefaultTTSVoice, c.Voice)
	require.NotNil(t, c.Temperature)
	assert.Equal(t, DefaultTemperature, *c.Temperature)
	assert.Equal(t, DefaultMaxTokens, c.MaxTokens)
	assert.Equal(t, DefaultTopP, c.TopP)
	assert.Equal(t, DefaultHistoryCap, c.HistoryCap)
	assert.Equal(t, DefaultTopK, c.RetrievalTopK)
	assert.True(t, c.EnableInterruption)
	assert.Equal(t, DefaultSilenceTimeout, c.SilenceTimeout)
}

func TestAgentConfig_Validate_Defaults(t *testing.T) {
	c := DefaultAgentConfig("tenant-1")
	assert.NoError(t, c.Validate())
}

func TestAgentConfig_Validate_UnknownProvider(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AgentConfig)
	}{
		{"stt", func(c *AgentConfig) { c.STT.Provider = "whisperfarm" }},
		{"llm", func(c *AgentConfig) { c.LLM.Provider = "anthropic" }},
		{"tts", func(c *AgentConfig) { c.TTS.Provider = "polly" }},
		{"embeddings", func(c *AgentConfig) { c.Embeddings.Provider = "groq" }},
		{"stt fallback", func(c *AgentConfig) { c.STT.Fallback = "bogus" }},
		{"llm fallback", func(c *AgentConfig) { c.LLM.Fallback = "bogus" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultAgentConfig("tenant-1")
			tt.mutate(c)
			assert.ErrorIs(t, c.Validate(), ErrUnknownProvider)
		})
	}
}

func TestAgentConfig_Validate_Ranges(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*AgentConfig)
	}{
		{"temperature too high", func(c *AgentConfig) { c.Temperature = floatPtr(2.5) }},
		{"temperature negative", func(c *AgentConfig) { c.Temperature = floatPtr(-0.1) }},
		{"max_tokens zero", func(c *AgentConfig) { c.MaxTokens = -1 }},
		{"top_p too high", func(c *AgentConfig) { c.TopP = 1.5 }},
		{"top_p negative", func(c *AgentConfig) { c.TopP = -0.5 }},
		{"history_cap negative", func(c *AgentConfig) { c.HistoryCap = -2 }},
		{"top_k negative", func(c *AgentConfig) { c.RetrievalTopK = -1 }},
		{"silence_timeout too short", func(c *AgentConfig) { c.SilenceTimeout = 0.1 }},
		{"silence_timeout too long", func(c *AgentConfig) { c.SilenceTimeout = 30 }},
		{"missing tenant", func(c *AgentConfig) { c.TenantID = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := DefaultAgentConfig("tenant-1")
			tt.mutate(c)
			assert.Error(t, c.Validate())
		})
	}
}

func TestAgentConfig_Validate_FallbackAllowed(t *testing.T) {
	c := DefaultAgentConfig("tenant-1")
	c.STT.Fallback = "openai"
	c.LLM.Fallback = "openai"
	c.TTS.Fallback = "openai"
	require.NoError(t, c.Validate())
}

func TestAgentConfig_Normalize_KeepsExplicitValues(t *testing.T) {
	c := &AgentConfig{
		TenantID:    "tenant-1",
		STT:         ProviderChoice{Provider: "openai", Model: "whisper-1"},
		Temperature: floatPtr(1.2),
	}
	c.Normalize()

	assert.Equal(t, "openai", c.STT.Provider)
	assert.Equal(t, "whisper-1", c.STT.Model)
	assert.Equal(t, 1.2, *c.Temperature)
	assert.Equal(t, DefaultLLMProvider, c.LLM.Provider)
}

func TestAgentConfig_Normalize_KeepsZeroTemperature(t *testing.T) {
	c := &AgentConfig{TenantID: "tenant-1", Temperature: floatPtr(0)}
	c.Normalize()

	require.NotNil(t, c.Temperature)
	assert.Equal(t, 0.0, *c.Temperature)
	assert.NoError(t, c.Validate())
}

func floatPtr(v float64) *float64 {
	return &v
}
