package embeddings

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	openAIBaseURL            = "https://api.openai.com/v1"
	openAIEmbeddingsEndpoint = "/embeddings"

	// ModelTextEmbedding3Small is the default embedding model (1536 dims).
	ModelTextEmbedding3Small = "text-embedding-3-small"
	// ModelTextEmbedding3Large produces 3072-dim vectors.
	ModelTextEmbedding3Large = "text-embedding-3-large"

	defaultDimensions = 1536
	largeDimensions   = 3072

	defaultOpenAITimeout = 30 * time.Second

	openAIServerErrorThreshold = 500
)

// OpenAIService implements embeddings using OpenAI's API.
type OpenAIService struct {
	apiKey     string
	baseURL    string
	client     *http.Client
	model      string
	dimensions int
}

// OpenAIOption configures the OpenAI embedding service.
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

// WithOpenAIModel sets the embedding model.
func WithOpenAIModel(model string) OpenAIOption {
	return func(s *OpenAIService) {
		s.model = model
		if model == ModelTextEmbedding3Large {
			s.dimensions = largeDimensions
		}
	}
}

// WithOpenAIDimensions overrides the reported vector dimensionality, for
// models whose size the service does not know.
func WithOpenAIDimensions(dimensions int) OpenAIOption {
	return func(s *OpenAIService) {
		s.dimensions = dimensions
	}
}

// NewOpenAI creates an OpenAI embedding service.
func NewOpenAI(apiKey string, opts ...OpenAIOption) *OpenAIService {
	s := &OpenAIService{
		apiKey:     apiKey,
		baseURL:    openAIBaseURL,
		client:     &http.Client{Timeout: defaultOpenAITimeout},
		model:      ModelTextEmbedding3Small,
		dimensions: defaultDimensions,
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

// Dimensions returns the vector dimensionality of the configured model.
func (s *OpenAIService) Dimensions() int {
	return s.dimensions
}

type openAIEmbeddingRequest struct {
	Model string   `json:"model"`
	Input []string `json:"input"`
}

type openAIEmbeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float32 `json:"embedding"`
	} `json:"data"`
	Model string `json:"model"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

// Embed generates one vector per input text, preserving input order.
func (s *OpenAIService) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	if len(texts) == 0 {
		return nil, ErrNoTexts
	}

	reqBody := openAIEmbeddingRequest{
		Model: s.model,
		Input: texts,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, s.baseURL+openAIEmbeddingsEndpoint, bytes.NewReader(bodyBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, NewEmbeddingError("openai", "", "request failed", err, true)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, s.handleError(resp.StatusCode, body)
	}

	var result openAIEmbeddingResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(result.Data) != len(texts) {
		return nil, NewEmbeddingError("openai", "",
			fmt.Sprintf("expected %d embeddings, got %d", len(texts), len(result.Data)),
			nil, false)
	}

	// The API documents order preservation but also carries an index per
	// vector; honor the index so a reordered response cannot corrupt results.
	vectors := make([][]float32, len(texts))
	for _, item := range result.Data {
		if item.Index < 0 || item.Index >= len(vectors) {
			return nil, NewEmbeddingError("openai", "",
				fmt.Sprintf("embedding index %d out of range", item.Index), nil, false)
		}
		vectors[item.Index] = item.Embedding
	}
	return vectors, nil
}

// handleError processes an error response from OpenAI.
func (s *OpenAIService) handleError(statusCode int, body []byte) error {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Code    string `json:"code"`
		} `json:"error"`
	}

	message := string(body)
	code := fmt.Sprintf("%d", statusCode)
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Error.Message != "" {
		message = errResp.Error.Message
		if errResp.Error.Code != "" {
			code = errResp.Error.Code
		}
	}

	retryable := statusCode == http.StatusTooManyRequests ||
		statusCode >= openAIServerErrorThreshold

	var cause error
	if statusCode == http.StatusTooManyRequests {
		cause = ErrRateLimited
	}

	return NewEmbeddingError("openai", code, message, cause, retryable)
}
