package stt_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/AltairaLabs/CallKit/audio"
	"github.com/AltairaLabs/CallKit/stt"
)

// testWAV returns a short WAV-wrapped PCM clip.
func testWAV() []byte {
	return audio.WrapWAV(make([]byte, 3200), 16000, 16, 1)
}

func TestNewGroq(t *testing.T) {
	service := stt.NewGroq("test-api-key")
	if service == nil {
		t.Fatal("NewGroq returned nil")
	}
	if service.Name() != "groq" {
		t.Errorf("Name() = %q, want %q", service.Name(), "groq")
	}
}

func TestGroqService_Transcribe_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("expected POST request, got %s", r.Method)
		}
		if !strings.HasSuffix(r.URL.Path, "/audio/transcriptions") {
			t.Errorf("unexpected path: %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-api-key" {
			t.Errorf("missing or invalid Authorization header: %s", auth)
		}
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("request is not multipart: %v", err)
		}
		if model := r.FormValue("model"); model != stt.ModelWhisperLargeV3 {
			t.Errorf("model = %q, want %q", model, stt.ModelWhisperLargeV3)
		}
		if rf := r.FormValue("response_format"); rf != "verbose_json" {
			t.Errorf("response_format = %q, want verbose_json", rf)
		}

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"text":     "What are your hours?",
			"language": "en",
			"duration": 2.0,
		})
	}))
	defer server.Close()

	service := stt.NewGroq("test-api-key", stt.WithGroqBaseURL(server.URL))

	result, err := service.Transcribe(context.Background(), testWAV(), stt.DefaultTranscriptionConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text != "What are your hours?" {
		t.Errorf("text = %q", result.Text)
	}
	if result.Language != "en" {
		t.Errorf("language = %q, want en", result.Language)
	}
	if result.AudioDuration != 2*time.Second {
		t.Errorf("duration = %v, want 2s", result.AudioDuration)
	}
}

func TestGroqService_Transcribe_EmptyAudio(t *testing.T) {
	service := stt.NewGroq("test-api-key")
	_, err := service.Transcribe(context.Background(), nil, stt.DefaultTranscriptionConfig())
	if !errors.Is(err, stt.ErrEmptyAudio) {
		t.Errorf("expected ErrEmptyAudio, got %v", err)
	}
}

func TestGroqService_Transcribe_ServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "internal error", "code": "server_error"},
		})
	}))
	defer server.Close()

	service := stt.NewGroq("test-api-key", stt.WithGroqBaseURL(server.URL))
	_, err := service.Transcribe(context.Background(), testWAV(), stt.DefaultTranscriptionConfig())

	var te *stt.TranscriptionError
	if !errors.As(err, &te) {
		t.Fatalf("expected *TranscriptionError, got %T", err)
	}
	if te.Provider != "groq" {
		t.Errorf("provider = %q, want groq", te.Provider)
	}
	if !te.Retryable {
		t.Error("5xx error should be retryable")
	}
}

func TestGroqService_Transcribe_RateLimited(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "rate limit exceeded"},
		})
	}))
	defer server.Close()

	service := stt.NewGroq("test-api-key", stt.WithGroqBaseURL(server.URL))
	_, err := service.Transcribe(context.Background(), testWAV(), stt.DefaultTranscriptionConfig())
	if !errors.Is(err, stt.ErrRateLimited) {
		t.Errorf("expected ErrRateLimited in chain, got %v", err)
	}
}

func TestGroqService_Transcribe_LanguageHint(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if err := r.ParseMultipartForm(1 << 20); err != nil {
			t.Fatalf("request is not multipart: %v", err)
		}
		if lang := r.FormValue("language"); lang != "es" {
			t.Errorf("language = %q, want es", lang)
		}
		json.NewEncoder(w).Encode(map[string]any{"text": "hola"})
	}))
	defer server.Close()

	service := stt.NewGroq("test-api-key", stt.WithGroqBaseURL(server.URL))
	config := stt.DefaultTranscriptionConfig()
	config.Language = "es"

	result, err := service.Transcribe(context.Background(), testWAV(), config)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	// Hint is echoed back when the provider omits detected language.
	if result.Language != "es" {
		t.Errorf("language = %q, want es", result.Language)
	}
}
