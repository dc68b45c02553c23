package prometheus

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestRecordStage(t *testing.T) {
	// Reset metrics for test isolation
	stageDuration.Reset()
	stageResultsTotal.Reset()

	RecordStage("stt", StatusSuccess, 0.5)
	RecordStage("stt", StatusSuccess, 0.8)
	RecordStage("llm", StatusError, 1.2)

	count := testutil.CollectAndCount(stageDuration)
	if count == 0 {
		t.Error("Expected non-zero histogram observations")
	}

	successCount := testutil.ToFloat64(stageResultsTotal.WithLabelValues("stt", StatusSuccess))
	errorCount := testutil.ToFloat64(stageResultsTotal.WithLabelValues("llm", StatusError))
	if successCount != 2 {
		t.Errorf("Expected 2 stt successes, got %f", successCount)
	}
	if errorCount != 1 {
		t.Errorf("Expected 1 llm error, got %f", errorCount)
	}
}

func TestRecordInvocationStartEnd(t *testing.T) {
	invocationsActive.Set(0)
	invocationDuration.Reset()

	RecordInvocationStart()
	if active := testutil.ToFloat64(invocationsActive); active != 1 {
		t.Errorf("Expected 1 active invocation, got %f", active)
	}

	RecordInvocationStart()
	if active := testutil.ToFloat64(invocationsActive); active != 2 {
		t.Errorf("Expected 2 active invocations, got %f", active)
	}

	RecordInvocationEnd(StatusSuccess, 2.0)
	RecordInvocationEnd(StatusError, 1.0)
	if active := testutil.ToFloat64(invocationsActive); active != 0 {
		t.Errorf("Expected 0 active invocations after end, got %f", active)
	}
}

func TestRecordProviderRequest(t *testing.T) {
	providerRequestDuration.Reset()
	providerRequestsTotal.Reset()

	RecordProviderRequest("stt", "groq", StatusSuccess, 0.4)
	RecordProviderRequest("stt", "groq", StatusError, 0.1)
	RecordProviderRequest("tts", "elevenlabs", StatusSuccess, 0.9)

	groqSuccess := testutil.ToFloat64(
		providerRequestsTotal.WithLabelValues("stt", "groq", StatusSuccess))
	if groqSuccess != 1 {
		t.Errorf("Expected 1 groq stt success, got %f", groqSuccess)
	}
}

func TestRecordProviderFallback(t *testing.T) {
	providerFallbacksTotal.Reset()

	RecordProviderFallback("llm")
	RecordProviderFallback("llm")

	count := testutil.ToFloat64(providerFallbacksTotal.WithLabelValues("llm"))
	if count != 2 {
		t.Errorf("Expected 2 llm fallbacks, got %f", count)
	}
}

func TestRecordProviderTokens(t *testing.T) {
	providerTokensTotal.Reset()

	RecordProviderTokens("groq", "llama-3.3-70b-versatile", 100, 30)
	RecordProviderTokens("groq", "llama-3.3-70b-versatile", 0, 0) // no-op

	input := testutil.ToFloat64(
		providerTokensTotal.WithLabelValues("groq", "llama-3.3-70b-versatile", "input"))
	output := testutil.ToFloat64(
		providerTokensTotal.WithLabelValues("groq", "llama-3.3-70b-versatile", "output"))
	if input != 100 {
		t.Errorf("Expected 100 input tokens, got %f", input)
	}
	if output != 30 {
		t.Errorf("Expected 30 output tokens, got %f", output)
	}
}

func TestRecordSessionLifecycle(t *testing.T) {
	sessionsActive.Set(0)
	sessionEventsTotal.Reset()

	RecordSessionStart()
	if active := testutil.ToFloat64(sessionsActive); active != 1 {
		t.Errorf("Expected 1 active session, got %f", active)
	}

	RecordSessionEvent("start")
	RecordSessionEvent("media")
	RecordSessionEvent("media")
	RecordSessionEvent("stop")

	mediaCount := testutil.ToFloat64(sessionEventsTotal.WithLabelValues("media"))
	if mediaCount != 2 {
		t.Errorf("Expected 2 media events, got %f", mediaCount)
	}

	RecordSessionEnd(95.0)
	if active := testutil.ToFloat64(sessionsActive); active != 0 {
		t.Errorf("Expected 0 active sessions after end, got %f", active)
	}
}

func TestRecordAudioSegment(t *testing.T) {
	before := testutil.ToFloat64(audioSegmentsTotal)
	RecordAudioSegment()
	RecordAudioSegment()
	after := testutil.ToFloat64(audioSegmentsTotal)
	if after-before != 2 {
		t.Errorf("Expected counter to advance by 2, got %f", after-before)
	}
}

func TestExporter_Handler(t *testing.T) {
	exporter := NewExporter(":0")

	RecordStage("stt", StatusSuccess, 0.1)

	server := httptest.NewServer(exporter.Handler())
	defer server.Close()

	resp, err := http.Get(server.URL)
	if err != nil {
		t.Fatalf("failed to fetch metrics: %v", err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("failed to read metrics body: %v", err)
	}
	if !strings.Contains(string(body), "callkit_stage_duration_seconds") {
		t.Error("Expected callkit_stage_duration_seconds in exposition")
	}
}

func TestExporter_StartShutdown(t *testing.T) {
	exporter := NewExporter("127.0.0.1:0")
	if err := exporter.Start(); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	addr := exporter.Addr()

	// Start returns with the port bound; the exposition is reachable.
	resp, err := http.Get("http://" + addr + "/metrics")
	if err != nil {
		t.Fatalf("failed to fetch metrics: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("metrics endpoint returned %d", resp.StatusCode)
	}

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := exporter.Shutdown(ctx); err != nil {
		t.Fatalf("shutdown failed: %v", err)
	}

	if _, err := http.Get("http://" + addr + "/metrics"); err == nil {
		t.Fatal("exporter still serving after shutdown")
	}
}

func TestExporter_CustomRegistry(t *testing.T) {
	registry := prometheus.NewRegistry()
	exporter := NewExporterWithRegistry(":0", registry)

	if exporter.Registry() != registry {
		t.Error("Expected custom registry to be used")
	}
}
