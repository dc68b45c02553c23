package llm

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
	chatCompletionsEndpoint = "/chat/completions"

	serverErrorThreshold = 500

	defaultTimeout = 60 * time.Second
)

// OpenAI-compatible chat-completions wire format, shared by Groq and OpenAI.
type chatRequest struct {
	Model       string    `json:"model"`
	Messages    []Message `json:"messages"`
	Temperature float64   `json:"temperature"`
	MaxTokens   int       `json:"max_tokens"`
	TopP        float64   `json:"top_p"`
}

type chatResponse struct {
	ID      string       `json:"id"`
	Model   string       `json:"model"`
	Choices []chatChoice `json:"choices"`
	Usage   chatUsage    `json:"usage"`
}

type chatChoice struct {
	Index        int     `json:"index"`
	Message      Message `json:"message"`
	FinishReason string  `json:"finish_reason"`
}

type chatUsage struct {
	PromptTokens     int `json:"prompt_tokens"`
	CompletionTokens int `json:"completion_tokens"`
	TotalTokens      int `json:"total_tokens"`
}

// completeChat sends one chat-completions request and decodes the first
// choice. Both providers speak the same dialect, so all the HTTP plumbing
// lives here and the provider types only supply endpoint and defaults.
func completeChat(
	ctx context.Context,
	client *http.Client,
	provider, baseURL, apiKey string,
	messages []Message,
	config GenerationConfig,
	defaultModel string,
) (*Generation, error) {
	if len(messages) == 0 {
		return nil, ErrNoMessages
	}

	model := config.Model
	if model == "" {
		model = defaultModel
	}
	// Temperature 0 is a valid request (deterministic sampling), so only a
	// nil pointer falls back to the default.
	temperature := DefaultTemperature
	if config.Temperature != nil {
		temperature = *config.Temperature
	}
	maxTokens := config.MaxTokens
	if maxTokens == 0 {
		maxTokens = DefaultMaxTokens
	}
	topP := config.TopP
	if topP == 0 {
		topP = DefaultTopP
	}

	reqBody := chatRequest{
		Model:       model,
		Messages:    messages,
		Temperature: temperature,
		MaxTokens:   maxTokens,
		TopP:        topP,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, baseURL+chatCompletionsEndpoint, bytes.NewReader(bodyBytes),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := client.Do(req)
	if err != nil {
		return nil, NewGenerationError(provider, "", "request failed", err, true)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, handleChatError(provider, resp.StatusCode, body)
	}

	var result chatResponse
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}
	if len(result.Choices) == 0 {
		return nil, NewGenerationError(provider, "", "response contained no choices", nil, false)
	}

	respModel := result.Model
	if respModel == "" {
		respModel = model
	}

	choice := result.Choices[0]
	return &Generation{
		Text:             choice.Message.Content,
		FinishReason:     choice.FinishReason,
		Model:            respModel,
		PromptTokens:     result.Usage.PromptTokens,
		CompletionTokens: result.Usage.CompletionTokens,
		TotalTokens:      result.Usage.TotalTokens,
	}, nil
}

// handleChatError processes an error response from an OpenAI-compatible
// chat-completions endpoint.
func handleChatError(provider string, statusCode int, body []byte) error {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    string `json:"code"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
		return NewGenerationError(
			provider,
			fmt.Sprintf("%d", statusCode),
			string(body),
			nil,
			statusCode >= serverErrorThreshold,
		)
	}

	retryable := statusCode == http.StatusTooManyRequests ||
		statusCode >= serverErrorThreshold

	var cause error
	if statusCode == http.StatusTooManyRequests {
		cause = ErrRateLimited
	}

	return NewGenerationError(
		provider,
		errResp.Error.Code,
		errResp.Error.Message,
		cause,
		retryable,
	)
}
