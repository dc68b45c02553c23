package llm_test

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/AltairaLabs/CallKit/llm"
)

func TestOpenAI_Generate_Success(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/chat/completions" {
			t.Errorf("path = %s", r.URL.Path)
		}
		if auth := r.Header.Get("Authorization"); auth != "Bearer test-key" {
			t.Errorf("Authorization = %q", auth)
		}

		var req struct {
			Model string `json:"model"`
		}
		body, _ := io.ReadAll(r.Body)
		json.Unmarshal(body, &req)
		if req.Model != llm.ModelGPT4oMini {
			t.Errorf("model = %q, want %q", req.Model, llm.ModelGPT4oMini)
		}

		json.NewEncoder(w).Encode(chatFixture("Certainly.", "stop"))
	}))
	defer server.Close()

	service := llm.NewOpenAI("test-key", llm.WithOpenAIBaseURL(server.URL))
	messages := []llm.Message{{Role: llm.RoleUser, Content: "Can you help me?"}}

	result, err := service.Generate(context.Background(), messages, llm.DefaultGenerationConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Text != "Certainly." {
		t.Errorf("text = %q", result.Text)
	}
}

func TestOpenAI_Generate_AuthError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]string{"message": "invalid api key", "code": "invalid_api_key"},
		})
	}))
	defer server.Close()

	service := llm.NewOpenAI("bad-key", llm.WithOpenAIBaseURL(server.URL))
	messages := []llm.Message{{Role: llm.RoleUser, Content: "hi"}}
	_, err := service.Generate(context.Background(), messages, llm.DefaultGenerationConfig())

	var ge *llm.GenerationError
	if !errors.As(err, &ge) {
		t.Fatalf("expected *GenerationError, got %T", err)
	}
	if ge.Code != "invalid_api_key" {
		t.Errorf("code = %q", ge.Code)
	}
	if ge.Retryable {
		t.Error("auth error should not be retryable")
	}
	if ge.Provider != "openai" {
		t.Errorf("provider = %q", ge.Provider)
	}
}

func TestMock_Generate(t *testing.T) {
	mock := llm.NewMock("first", "second")
	messages := []llm.Message{{Role: llm.RoleUser, Content: "hello"}}

	r1, err := mock.Generate(context.Background(), messages, llm.DefaultGenerationConfig())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if r1.Text != "first" {
		t.Errorf("text = %q, want first", r1.Text)
	}

	r2, _ := mock.Generate(context.Background(), messages, llm.DefaultGenerationConfig())
	if r2.Text != "second" {
		t.Errorf("text = %q, want second", r2.Text)
	}

	r3, _ := mock.Generate(context.Background(), messages, llm.DefaultGenerationConfig())
	if r3.Text != "first" {
		t.Errorf("text = %q, want first (wrap around)", r3.Text)
	}

	if calls := mock.Calls(); len(calls) != 3 {
		t.Errorf("recorded calls = %d, want 3", len(calls))
	}
}

func TestMock_Generate_FailWith(t *testing.T) {
	wantErr := errors.New("boom")
	mock := llm.NewMock("unused").FailWith(wantErr)
	messages := []llm.Message{{Role: llm.RoleUser, Content: "hi"}}

	_, err := mock.Generate(context.Background(), messages, llm.DefaultGenerationConfig())
	if !errors.Is(err, wantErr) {
		t.Errorf("expected injected error, got %v", err)
	}
}
