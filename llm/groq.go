package llm

import (
	"context"
	"net/http"
)

const (
	groqBaseURL = "https://api.groq.com/openai/v1"

	// ModelLlama33_70B is Groq's hosted Llama 3.3 70B, the default for
	// voice agents.
	ModelLlama33_70B = "llama-3.3-70b-versatile"
	// ModelLlama31_8B is a smaller, faster option.
	ModelLlama31_8B = "llama-3.1-8b-instant"
)

// GroqService implements chat completion using Groq's API.
type GroqService struct {
	apiKey  string
	baseURL string
	client  *http.Client
	model   string
}

// GroqOption configures the Groq LLM service.
type GroqOption func(*GroqService)

// WithGroqBaseURL sets a custom base URL (for testing or proxies).
func WithGroqBaseURL(url string) GroqOption {
	return func(s *GroqService) {
		s.baseURL = url
	}
}

// WithGroqClient sets a custom HTTP client.
func WithGroqClient(client *http.Client) GroqOption {
	return func(s *GroqService) {
		s.client = client
	}
}

// WithGroqModel sets the chat model to use.
func WithGroqModel(model string) GroqOption {
	return func(s *GroqService) {
		s.model = model
	}
}

// NewGroq creates a Groq chat-completion service.
func NewGroq(apiKey string, opts ...GroqOption) *GroqService {
	s := &GroqService{
		apiKey:  apiKey,
		baseURL: groqBaseURL,
		client:  &http.Client{Timeout: defaultTimeout},
		model:   ModelLlama33_70B,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the provider identifier.
func (s *GroqService) Name() string {
	return "groq"
}

// Generate produces a completion using Groq's chat-completions API.
func (s *GroqService) Generate(
	ctx context.Context, messages []Message, config GenerationConfig,
) (*Generation, error) {
	return completeChat(ctx, s.client, "groq", s.baseURL, s.apiKey, messages, config, s.model)
}
