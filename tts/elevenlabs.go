package tts

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
	elevenLabsBaseURL = "https://api.elevenlabs.io/v1"

	// ElevenLabsModelTurbo is the low-latency model preferred for live calls.
	ElevenLabsModelTurbo = "eleven_turbo_v2_5"
	// ElevenLabsModelMultilingual is the higher-quality multilingual model.
	ElevenLabsModelMultilingual = "eleven_multilingual_v2"

	// ElevenLabsDefaultVoice is the platform default voice (Rachel).
	ElevenLabsDefaultVoice = "21m00Tcm4TlvDq8ikWAM"

	defaultElevenLabsTimeout = 30 * time.Second

	elevenLabsServerErrorThreshold = 500

	// elevenLabsOutputFormat requests raw PCM at 16 kHz; one resample away
	// from the telephony leg and headerless, so no container parsing.
	elevenLabsOutputFormat = "pcm_16000"
	elevenLabsSampleRate   = 16000
)

// ElevenLabsService implements TTS using ElevenLabs' API.
type ElevenLabsService struct {
	apiKey  string
	baseURL string
	client  *http.Client
	model   string
}

// ElevenLabsOption configures the ElevenLabs TTS service.
type ElevenLabsOption func(*ElevenLabsService)

// WithElevenLabsBaseURL sets a custom base URL (for testing or proxies).
func WithElevenLabsBaseURL(url string) ElevenLabsOption {
	return func(s *ElevenLabsService) {
		s.baseURL = url
	}
}

// WithElevenLabsClient sets a custom HTTP client.
func WithElevenLabsClient(client *http.Client) ElevenLabsOption {
	return func(s *ElevenLabsService) {
		s.client = client
	}
}

// WithElevenLabsModel sets the TTS model.
func WithElevenLabsModel(model string) ElevenLabsOption {
	return func(s *ElevenLabsService) {
		s.model = model
	}
}

// NewElevenLabs creates an ElevenLabs TTS service.
func NewElevenLabs(apiKey string, opts ...ElevenLabsOption) *ElevenLabsService {
	s := &ElevenLabsService{
		apiKey:  apiKey,
		baseURL: elevenLabsBaseURL,
		client:  &http.Client{Timeout: defaultElevenLabsTimeout},
		model:   ElevenLabsModelTurbo,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Name returns the provider identifier.
func (s *ElevenLabsService) Name() string {
	return "elevenlabs"
}

type elevenLabsRequest struct {
	Text          string                   `json:"text"`
	ModelID       string                   `json:"model_id,omitempty"`
	VoiceSettings *elevenLabsVoiceSettings `json:"voice_settings,omitempty"`
}

type elevenLabsVoiceSettings struct {
	Stability       float64 `json:"stability"`
	SimilarityBoost float64 `json:"similarity_boost"`
}

// Synthesize converts text to 16 kHz PCM using ElevenLabs' TTS API.
func (s *ElevenLabsService) Synthesize(
	ctx context.Context, text string, config SynthesisConfig,
) (*Synthesis, error) {
	if text == "" {
		return nil, ErrEmptyText
	}

	voice := config.Voice
	if voice == "" {
		voice = ElevenLabsDefaultVoice
	}
	model := config.Model
	if model == "" {
		model = s.model
	}

	settings := &elevenLabsVoiceSettings{
		Stability:       config.Stability,
		SimilarityBoost: config.SimilarityBoost,
	}
	if settings.Stability == 0 && settings.SimilarityBoost == 0 {
		defaults := DefaultSynthesisConfig()
		settings.Stability = defaults.Stability
		settings.SimilarityBoost = defaults.SimilarityBoost
	}

	reqBody := elevenLabsRequest{
		Text:          text,
		ModelID:       model,
		VoiceSettings: settings,
	}
	bodyBytes, err := json.Marshal(reqBody)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/text-to-speech/%s?output_format=%s",
		s.baseURL, voice, elevenLabsOutputFormat)
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(bodyBytes))
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("xi-api-key", s.apiKey)
	req.Header.Set("Content-Type", "application/json")

	resp, err := s.client.Do(req)
	if err != nil {
		return nil, NewSynthesisError("elevenlabs", "", "request failed", err, true)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		body, _ := io.ReadAll(resp.Body)
		return nil, s.handleError(resp.StatusCode, body)
	}

	audioData, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read audio response: %w", err)
	}

	return &Synthesis{
		Audio:      audioData,
		Format:     FormatPCM,
		SampleRate: elevenLabsSampleRate,
	}, nil
}

// handleError processes an error response from ElevenLabs.
func (s *ElevenLabsService) handleError(statusCode int, body []byte) error {
	var errResp struct {
		Detail struct {
			Status  string `json:"status"`
			Message string `json:"message"`
		} `json:"detail"`
	}

	message := string(body)
	code := fmt.Sprintf("%d", statusCode)
	if err := json.Unmarshal(body, &errResp); err == nil && errResp.Detail.Message != "" {
		message = errResp.Detail.Message
		if errResp.Detail.Status != "" {
			code = errResp.Detail.Status
		}
	}

	retryable := statusCode == http.StatusTooManyRequests ||
		statusCode >= elevenLabsServerErrorThreshold

	var cause error
	if statusCode == http.StatusTooManyRequests {
		cause = ErrRateLimited
	}

	return NewSynthesisError("elevenlabs", code, message, cause, retryable)
}
