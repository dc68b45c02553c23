package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestNewOpenAI(t *testing.T) {
	service := NewOpenAI("test-key")
	if service == nil {
		t.Fatal("NewOpenAI() returned nil")
	}
	if service.apiKey != "test-key" {
		t.Errorf("apiKey = %v, want test-key", service.apiKey)
	}
	if service.model != ModelTTS1 {
		t.Errorf("model = %v, want %v", service.model, ModelTTS1)
	}
}

func TestNewOpenAI_WithOptions(t *testing.T) {
	customClient := &http.Client{}
	service := NewOpenAI("test-key",
		WithOpenAIBaseURL("https://custom.api.com"),
		WithOpenAIClient(customClient),
		WithOpenAIModel(ModelTTS1HD),
	)

	if service.baseURL != "https://custom.api.com" {
		t.Errorf("baseURL = %v, want https://custom.api.com", service.baseURL)
	}
	if service.client != customClient {
		t.Error("client was not set correctly")
	}
	if service.model != ModelTTS1HD {
		t.Errorf("model = %v, want %v", service.model, ModelTTS1HD)
	}
}

func TestOpenAI_Synthesize_Success(t *testing.T) {
	fakeAudio := bytes.Repeat([]byte{0xAB}, 512)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if r.URL.Path != openAITTSEndpoint {
			t.Errorf("path = %s, want %s", r.URL.Path, openAITTSEndpoint)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}

		var req openAIRequest
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatalf("invalid request body: %v", err)
		}
		if req.Input != "Hello caller" {
			t.Errorf("input = %q", req.Input)
		}
		if req.Voice != VoiceAlloy {
			t.Errorf("voice = %q, want %q", req.Voice, VoiceAlloy)
		}
		if req.ResponseFormat != FormatWAV {
			t.Errorf("response_format = %q, want %q", req.ResponseFormat, FormatWAV)
		}
		if req.Model != ModelTTS1 {
			t.Errorf("model = %q, want %q", req.Model, ModelTTS1)
		}

		w.Write(fakeAudio)
	}))
	defer server.Close()

	service := NewOpenAI("test-key", WithOpenAIBaseURL(server.URL))
	result, err := service.Synthesize(context.Background(), "Hello caller", DefaultSynthesisConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !bytes.Equal(result.Audio, fakeAudio) {
		t.Error("audio bytes not returned verbatim")
	}
	if result.Format != FormatWAV {
		t.Errorf("format = %q, want wav", result.Format)
	}
	if result.SampleRate != openAISampleRate {
		t.Errorf("sample rate = %d, want %d", result.SampleRate, openAISampleRate)
	}
}

func TestOpenAI_Synthesize_EmptyText(t *testing.T) {
	service := NewOpenAI("test-key")
	_, err := service.Synthesize(context.Background(), "", DefaultSynthesisConfig())
	if !errors.Is(err, ErrEmptyText) {
		t.Errorf("expected ErrEmptyText, got %v", err)
	}
}

func TestOpenAI_Synthesize_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "invalid voice", "code": "invalid_value"},
		})
	}))
	defer server.Close()

	service := NewOpenAI("test-key", WithOpenAIBaseURL(server.URL))
	_, err := service.Synthesize(context.Background(), "hi", DefaultSynthesisConfig())

	var se *SynthesisError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SynthesisError, got %T", err)
	}
	if se.Code != "invalid_value" {
		t.Errorf("code = %q, want invalid_value", se.Code)
	}
	if se.Retryable {
		t.Error("client error should not be retryable")
	}
}

func TestOpenAI_Synthesize_ServerError_Retryable(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusServiceUnavailable)
		w.Write([]byte("upstream overloaded"))
	}))
	defer server.Close()

	service := NewOpenAI("test-key", WithOpenAIBaseURL(server.URL))
	_, err := service.Synthesize(context.Background(), "hi", DefaultSynthesisConfig())

	var se *SynthesisError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SynthesisError, got %T", err)
	}
	if !se.Retryable {
		t.Error("5xx should be retryable")
	}
}

func TestOpenAI_Synthesize_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "rate limit exceeded"},
		})
	}))
	defer server.Close()

	service := NewOpenAI("test-key", WithOpenAIBaseURL(server.URL))
	_, err := service.Synthesize(context.Background(), "hi", DefaultSynthesisConfig())
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited in chain, got %v", err)
	}
}
