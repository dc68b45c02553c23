package stt

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"
)

const (
	groqBaseURL            = "https://api.groq.com/openai/v1"
	groqTranscribeEndpoint = "/audio/transcriptions"

	// ModelWhisperLargeV3 is Groq's hosted Whisper large-v3 model.
	ModelWhisperLargeV3 = "whisper-large-v3"
	// ModelWhisperLargeV3Turbo trades some accuracy for lower latency.
	ModelWhisperLargeV3Turbo = "whisper-large-v3-turbo"

	defaultGroqTimeout = 30 * time.Second

	groqServerErrorThreshold = 500
)

// GroqService implements STT using Groq's hosted Whisper API.
// Groq's inference speed makes it the preferred primary for real-time calls.
type GroqService struct {
	apiKey  string
	baseURL string
	client  *http.Client
	model   string
}

// GroqOption configures the Groq STT service.
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

// WithGroqModel sets the STT model to use.
func WithGroqModel(model string) GroqOption {
	return func(s *GroqService) {
		s.model = model
	}
}

// NewGroq creates a Groq STT service using hosted Whisper.
func NewGroq(apiKey string, opts ...GroqOption) *GroqService {
	s := &GroqService{
		apiKey:  apiKey,
		baseURL: groqBaseURL,
		client:  &http.Client{Timeout: defaultGroqTimeout},
		model:   ModelWhisperLargeV3,
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

// Transcribe converts audio to text using Groq's Whisper API.
func (s *GroqService) Transcribe(
	ctx context.Context, audio []byte, config TranscriptionConfig,
) (*Transcription, error) {
	if len(audio) == 0 {
		return nil, ErrEmptyAudio
	}

	format := config.Format
	if format == "" {
		format = FormatWAV
	}
	model := config.Model
	if model == "" {
		model = s.model
	}

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreateFormFile("file", "audio."+format)
	if err != nil {
		return nil, fmt.Errorf("failed to create form file: %w", err)
	}
	if _, err := part.Write(audio); err != nil {
		return nil, fmt.Errorf("failed to write audio data: %w", err)
	}
	if err := writer.WriteField("model", model); err != nil {
		return nil, fmt.Errorf("failed to write model field: %w", err)
	}
	// verbose_json carries detected language and audio duration.
	if err := writer.WriteField("response_format", "verbose_json"); err != nil {
		return nil, fmt.Errorf("failed to write response_format field: %w", err)
	}
	if config.Language != "" {
		if err := writer.WriteField("language", config.Language); err != nil {
			return nil, fmt.Errorf("failed to write language field: %w", err)
		}
	}
	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	req, err := http.NewRequestWithContext(
		ctx, http.MethodPost, s.baseURL+groqTranscribeEndpoint, &buf,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+s.apiKey)
	req.Header.Set("Content-Type", writer.FormDataContentType())

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, NewTranscriptionError("groq", "", "request failed", err, true)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response: %w", err)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, handleWhisperError("groq", resp.StatusCode, body, groqServerErrorThreshold)
	}

	var result struct {
		Text     string  `json:"text"`
		Language string  `json:"language"`
		Duration float64 `json:"duration"`
	}
	if err := json.Unmarshal(body, &result); err != nil {
		return nil, fmt.Errorf("failed to parse response: %w", err)
	}

	language := result.Language
	if language == "" {
		language = config.Language
	}

	return &Transcription{
		Text:          result.Text,
		Language:      language,
		AudioDuration: time.Duration(result.Duration * float64(time.Second)),
	}, nil
}

// handleWhisperError processes an error response from an OpenAI-compatible
// transcription endpoint.
func handleWhisperError(provider string, statusCode int, body []byte, serverErrorThreshold int) error {
	var errResp struct {
		Error struct {
			Message string `json:"message"`
			Type    string `json:"type"`
			Code    string `json:"code"`
		} `json:"error"`
	}

	if err := json.Unmarshal(body, &errResp); err != nil || errResp.Error.Message == "" {
		return NewTranscriptionError(
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

	return NewTranscriptionError(
		provider,
		errResp.Error.Code,
		errResp.Error.Message,
		cause,
		retryable,
	)
}
