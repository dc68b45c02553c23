// Package prometheus provides Prometheus metrics for CallKit's voice
// pipeline and call sessions.
package prometheus

import (
	"github.com/prometheus/client_golang/prometheus"
)

const namespace = "callkit"

// Status constants for metric labels.
const (
	StatusSuccess = "success"
	StatusError   = "error"
)

var (
	// stageDuration is a histogram of pipeline stage duration in seconds.
	stageDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "stage_duration_seconds",
			Help:      "Histogram of pipeline stage duration in seconds",
			Buckets:   prometheus.DefBuckets, // .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10
		},
		[]string{"stage"},
	)

	// stageResultsTotal counts stage completions by outcome.
	stageResultsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "stage_results_total",
			Help:      "Total stage completions by outcome",
		},
		[]string{"stage", "status"}, // status: success, error
	)

	// invocationsActive is a gauge of pipeline invocations in flight.
	invocationsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "invocations_active",
			Help:      "Number of pipeline invocations currently in flight",
		},
	)

	// invocationDuration is a histogram of full-invocation duration.
	// An invocation is one STT->retrieval->LLM->TTS run for one audio
	// segment; anything past a few seconds is audible dead air.
	invocationDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "invocation_duration_seconds",
			Help:      "Histogram of full pipeline invocation duration in seconds",
			Buckets:   []float64{.25, .5, 1, 2, 3, 5, 8, 13, 21},
		},
		[]string{"status"}, // status: success, error
	)

	// providerRequestDuration is a histogram of AI provider call duration.
	providerRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "provider_request_duration_seconds",
			Help:      "Duration of AI provider API calls in seconds",
			Buckets:   []float64{.1, .25, .5, 1, 2.5, 5, 10, 30},
		},
		[]string{"family", "provider"},
	)

	// providerRequestsTotal counts provider API calls.
	providerRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_requests_total",
			Help:      "Total number of provider API calls",
		},
		[]string{"family", "provider", "status"}, // status: success, error
	)

	// providerFallbacksTotal counts stage-level fallback attempts.
	providerFallbacksTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_fallbacks_total",
			Help:      "Total fallback attempts after a primary provider failure",
		},
		[]string{"family"},
	)

	// providerTokensTotal counts tokens consumed by LLM calls.
	providerTokensTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "provider_tokens_total",
			Help:      "Total tokens consumed by LLM calls",
		},
		[]string{"provider", "model", "type"}, // type: input, output
	)

	// sessionsActive is a gauge of live call sessions.
	sessionsActive = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "sessions_active",
			Help:      "Number of currently active call sessions",
		},
	)

	// sessionEventsTotal counts inbound telephony events by type.
	sessionEventsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "session_events_total",
			Help:      "Total inbound telephony events by type",
		},
		[]string{"event"},
	)

	// audioSegmentsTotal counts audio segments fed to the pipeline.
	audioSegmentsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "audio_segments_total",
			Help:      "Total accumulated audio segments processed",
		},
	)

	// callDuration is a histogram of completed call duration.
	callDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "call_duration_seconds",
			Help:      "Histogram of completed call duration in seconds",
			Buckets:   []float64{10, 30, 60, 120, 300, 600, 1200, 3600},
		},
	)

	// allMetrics is a list of all metrics for registration.
	allMetrics = []prometheus.Collector{
		stageDuration,
		stageResultsTotal,
		invocationsActive,
		invocationDuration,
		providerRequestDuration,
		providerRequestsTotal,
		providerFallbacksTotal,
		providerTokensTotal,
		sessionsActive,
		sessionEventsTotal,
		audioSegmentsTotal,
		callDuration,
	}
)

// RecordStage records one stage completion.
func RecordStage(stage, status string, durationSeconds float64) {
	stageDuration.WithLabelValues(stage).Observe(durationSeconds)
	stageResultsTotal.WithLabelValues(stage, status).Inc()
}

// RecordInvocationStart records a pipeline invocation start.
func RecordInvocationStart() {
	invocationsActive.Inc()
}

// RecordInvocationEnd records a pipeline invocation completion.
func RecordInvocationEnd(status string, durationSeconds float64) {
	invocationsActive.Dec()
	invocationDuration.WithLabelValues(status).Observe(durationSeconds)
}

// RecordProviderRequest records one AI provider API call.
func RecordProviderRequest(family, provider, status string, durationSeconds float64) {
	providerRequestDuration.WithLabelValues(family, provider).Observe(durationSeconds)
	providerRequestsTotal.WithLabelValues(family, provider, status).Inc()
}

// RecordProviderFallback records a fallback attempt for a family.
func RecordProviderFallback(family string) {
	providerFallbacksTotal.WithLabelValues(family).Inc()
}

// RecordProviderTokens records LLM token consumption.
func RecordProviderTokens(provider, model string, inputTokens, outputTokens int) {
	if inputTokens > 0 {
		providerTokensTotal.WithLabelValues(provider, model, "input").Add(float64(inputTokens))
	}
	if outputTokens > 0 {
		providerTokensTotal.WithLabelValues(provider, model, "output").Add(float64(outputTokens))
	}
}

// RecordSessionStart records a call session opening.
func RecordSessionStart() {
	sessionsActive.Inc()
}

// RecordSessionEnd records a call session closing with its duration.
func RecordSessionEnd(durationSeconds float64) {
	sessionsActive.Dec()
	if durationSeconds > 0 {
		callDuration.Observe(durationSeconds)
	}
}

// RecordSessionEvent records one inbound telephony event.
func RecordSessionEvent(event string) {
	sessionEventsTotal.WithLabelValues(event).Inc()
}

// RecordAudioSegment records one accumulated segment handed to the pipeline.
func RecordAudioSegment() {
	audioSegmentsTotal.Inc()
}
