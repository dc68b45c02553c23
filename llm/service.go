package llm

import "context"

// Message roles in a chat conversation.
const (
	RoleSystem    = "system"
	RoleUser      = "user"
	RoleAssistant = "assistant"
)

// Default generation parameters for voice agents. Responses are kept short
// because they are spoken aloud; long completions make calls feel sluggish.
const (
	DefaultTemperature = 0.7
	DefaultMaxTokens   = 150
	DefaultTopP        = 1.0
)

// Message is a single turn in a chat conversation.
type Message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

// Generation is the result of one chat-completion call.
type Generation struct {
	// Text is the assistant's reply. May be empty when the model returns
	// an empty completion; callers decide how to handle that.
	Text string

	// FinishReason reports why generation stopped ("stop", "length", ...).
	FinishReason string

	// Model is the model that produced the completion, as reported by the
	// provider. Falls back to the requested model when the response omits it.
	Model string

	// Token accounting as reported by the provider.
	PromptTokens     int
	CompletionTokens int
	TotalTokens      int
}

// Service generates chat completions.
// This interface abstracts different LLM providers, enabling the pipeline
// to use any backend interchangeably and to fall back between them.
type Service interface {
	// Name returns the provider identifier (for logging and error reporting).
	Name() string

	// Generate produces a completion for the given conversation.
	Generate(ctx context.Context, messages []Message, config GenerationConfig) (*Generation, error)
}

// GenerationConfig configures a chat-completion request.
type GenerationConfig struct {
	// Model overrides the service's default model.
	Model string

	// Temperature controls randomness, in [0, 2]. A pointer so that 0
	// (deterministic sampling) is distinguishable from unset; nil means
	// DefaultTemperature.
	Temperature *float64

	// MaxTokens caps the completion length.
	MaxTokens int

	// TopP is the nucleus-sampling parameter.
	TopP float64
}

// DefaultGenerationConfig returns the parameters the pipeline uses for
// spoken responses.
func DefaultGenerationConfig() GenerationConfig {
	return GenerationConfig{
		Temperature: Temperature(DefaultTemperature),
		MaxTokens:   DefaultMaxTokens,
		TopP:        DefaultTopP,
	}
}

// Temperature returns a pointer to v, for use in GenerationConfig.
func Temperature(v float64) *float64 {
	return &v
}
