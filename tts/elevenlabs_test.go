package tts

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestNewElevenLabs(t *testing.T) {
	service := NewElevenLabs("test-key")
	if service == nil {
		t.Fatal("NewElevenLabs() returned nil")
	}
	if service.apiKey != "test-key" {
		t.Errorf("apiKey = %v, want test-key", service.apiKey)
	}
	if service.model != ElevenLabsModelTurbo {
		t.Errorf("model = %v, want %v", service.model, ElevenLabsModelTurbo)
	}
}

func TestNewElevenLabs_WithOptions(t *testing.T) {
	customClient := &http.Client{}
	service := NewElevenLabs("test-key",
		WithElevenLabsBaseURL("https://custom.api.com"),
		WithElevenLabsClient(customClient),
		WithElevenLabsModel(ElevenLabsModelMultilingual),
	)

	if service.baseURL != "https://custom.api.com" {
		t.Errorf("baseURL = %v, want https://custom.api.com", service.baseURL)
	}
	if service.client != customClient {
		t.Error("client was not set correctly")
	}
	if service.model != ElevenLabsModelMultilingual {
		t.Errorf("model = %v, want %v", service.model, ElevenLabsModelMultilingual)
	}
}

func TestElevenLabs_Synthesize_Success(t *testing.T) {
	fakeAudio := bytes.Repeat([]byte{0x01, 0x02}, 800)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST, got %s", r.Method)
		}
		if !strings.Contains(r.URL.Path, "/text-to-speech/"+ElevenLabsDefaultVoice) {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if r.URL.Query().Get("output_format") != elevenLabsOutputFormat {
			t.Errorf("output_format = %q, want %q",
				r.URL.Query().Get("output_format"), elevenLabsOutputFormat)
		}
		if key := r.Header.Get("xi-api-key"); key != "test-key" {
			t.Errorf("xi-api-key = %q", key)
		}

		var req elevenLabsRequest
		body, _ := io.ReadAll(r.Body)
		if err := json.Unmarshal(body, &req); err != nil {
			t.Fatalf("invalid request body: %v", err)
		}
		if req.Text != "Hello caller" {
			t.Errorf("text = %q", req.Text)
		}
		if req.VoiceSettings == nil || req.VoiceSettings.Stability != 0.5 {
			t.Errorf("default voice settings not applied: %+v", req.VoiceSettings)
		}

		w.Write(fakeAudio)
	}))
	defer server.Close()

	service := NewElevenLabs("test-key", WithElevenLabsBaseURL(server.URL))
	result, err := service.Synthesize(context.Background(), "Hello caller", DefaultSynthesisConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if !bytes.Equal(result.Audio, fakeAudio) {
		t.Error("audio bytes not returned verbatim")
	}
	if result.Format != FormatPCM {
		t.Errorf("format = %q, want pcm", result.Format)
	}
	if result.SampleRate != elevenLabsSampleRate {
		t.Errorf("sample rate = %d, want %d", result.SampleRate, elevenLabsSampleRate)
	}
}

func TestElevenLabs_Synthesize_EmptyText(t *testing.T) {
	service := NewElevenLabs("test-key")
	_, err := service.Synthesize(context.Background(), "", DefaultSynthesisConfig())
	if !errors.Is(err, ErrEmptyText) {
		t.Errorf("expected ErrEmptyText, got %v", err)
	}
}

func TestElevenLabs_Synthesize_APIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"detail": map[string]string{"status": "invalid_api_key", "message": "bad key"},
		})
	}))
	defer server.Close()

	service := NewElevenLabs("bad-key", WithElevenLabsBaseURL(server.URL))
	_, err := service.Synthesize(context.Background(), "hi", DefaultSynthesisConfig())

	var se *SynthesisError
	if !errors.As(err, &se) {
		t.Fatalf("expected *SynthesisError, got %T", err)
	}
	if se.Code != "invalid_api_key" {
		t.Errorf("code = %q, want invalid_api_key", se.Code)
	}
	if se.Retryable {
		t.Error("auth error should not be retryable")
	}
}

func TestElevenLabs_Synthesize_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"detail": map[string]string{"message": "too many requests"},
		})
	}))
	defer server.Close()

	service := NewElevenLabs("test-key", WithElevenLabsBaseURL(server.URL))
	_, err := service.Synthesize(context.Background(), "hi", DefaultSynthesisConfig())
	if !errors.Is(err, ErrRateLimited) {
		t.Errorf("expected ErrRateLimited in chain, got %v", err)
	}
}

func TestElevenLabs_Synthesize_CustomVoice(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.URL.Path, "/text-to-speech/custom-voice-id") {
			t.Errorf("custom voice not in path: %s", r.URL.Path)
		}
		w.Write([]byte{0x00})
	}))
	defer server.Close()

	service := NewElevenLabs("test-key", WithElevenLabsBaseURL(server.URL))
	config := DefaultSynthesisConfig()
	config.Voice = "custom-voice-id"

	if _, err := service.Synthesize(context.Background(), "hi", config); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}
