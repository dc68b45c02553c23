package llm

import (
	"context"
	"net/http"
)

const (
	openAIBaseURL = "https://api.openai.com/v1"

	// ModelGPT4oMini balances cost and quality for fallback traffic.
	ModelGPT4oMini = "gpt-4o-mini"
	// ModelGPT4o is the larger option for agents that need it.
	ModelGPT4o = "gpt-4o"
)

// OpenAIService implements chat completion using OpenAI's API.
type OpenAIService struct {
	apiKey  string
	baseURL string
	client  *http.Client
	model   string
}

// OpenAIOption configures the OpenAI LLM service.
type OpenAIOption func(*OpenAIService)

// WithOpenAIBaseURL sets a custom base URL (for testing or proxies).
func WithOpenAIBaseURL(url string) OpenAIOption {
	return func(s *OpenAIService) {
		s.baseURL = url
	}
}

// WithOpenAIClient sets a custom HTTP client.
func WithOpenAIClient(client *http.Client) OpenAIOption {
	return func(s *OpenAIService) {
		s.client = client
	}
}

// WithOpenAIModel sets the chat model to use.
func WithOpenAIModel(model string) OpenAIOption {
	return func(s *OpenAIService) {
		s.model = model
	}
}

// NewOpenAI creates an OpenAI chat-completion service.
func NewOpenAI(apiKey string, opts ...OpenAIOption) *OpenAIService {
	s := &OpenAIService{
		apiKey:  apiKey,
		baseURL: openAIBaseURL,
		client:  &http.Client{Timeout: defaultTimeout},
		model:   ModelGPT4oMini,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the provider identifier.
func (s *OpenAIService) Name() string {
	return "openai"
}

// Generate produces a completion using OpenAI's chat-completions API.
func (s *OpenAIService) Generate(
	ctx context.Context, messages []Message, config GenerationConfig,
) (*Generation, error) {
	return completeChat(ctx, s.client, "openai", s.baseURL, s.apiKey, messages, config, s.model)
}
