package pipeline

import (
	"context"
	"fmt"
	"strings"
	"time"

	"golang.org/x/sync/semaphore"

	"github.com/AltairaLabs/CallKit/audio"
	"github.com/AltairaLabs/CallKit/config"
	"github.com/AltairaLabs/CallKit/conversation"
	"github.com/AltairaLabs/CallKit/llm"
	"github.com/AltairaLabs/CallKit/logger"
	"github.com/AltairaLabs/CallKit/metrics/prometheus"
	"github.com/AltairaLabs/CallKit/store"
	"github.com/AltairaLabs/CallKit/stt"
	"github.com/AltairaLabs/CallKit/tts"
)

// ClarificationPhrase is spoken when the LLM returns an empty completion;
// the call must never go silent.
const ClarificationPhrase = "I'm sorry, I didn't understand that. Could you please repeat?"

// DefaultStageTimeout bounds each provider call. Expiry is treated like
// any other provider failure, so the fallback still gets its one attempt.
const DefaultStageTimeout = 10 * time.Second

// DefaultMaxConcurrentInvocations caps invocations in flight across all
// calls, protecting provider rate limits under load.
const DefaultMaxConcurrentInvocations = 100

// Request is one pipeline invocation: a drained audio segment plus the
// call's identity and conversation.
type Request struct {
	// CallID identifies the call, for logging.
	CallID string

	// TenantID selects the agent configuration.
	TenantID string

	// Segment is the accumulated raw mu-law audio (already base64-decoded).
	Segment []byte

	// Conversation is the call's bounded history; the orchestrator appends
	// the recognized user turn and the generated assistant turn.
	Conversation *conversation.State
}

// Result is a completed invocation.
type Result struct {
	// Transcript is the recognized caller utterance.
	Transcript string

	// ResponseText is the agent's reply, exactly as synthesized.
	ResponseText string

	// OutboundPayload is base64 mu-law audio ready for the telephony leg.
	OutboundPayload string

	// RetrievalDegraded is true when retrieval was enabled but failed or
	// matched nothing; the invocation proceeded without grounding.
	RetrievalDegraded bool

	// StageLatency holds per-stage wall-clock durations keyed by stage
	// name; TotalLatency is their sum.
	StageLatency map[string]time.Duration
	TotalLatency time.Duration
}

// Orchestrator runs the STT -> retrieval -> LLM -> TTS sequence for one
// audio segment at a time. Safe for concurrent use across calls.
type Orchestrator struct {
	configs       store.AgentConfigStore
	resolver      Resolver
	searcher      store.KnowledgeSearcher
	stageTimeout  time.Duration
	maxConcurrent int
	semaphore     *semaphore.Weighted
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithSearcher sets the knowledge-retrieval collaborator. Without one,
// retrieval degrades to an empty context even when a tenant enables it.
func WithSearcher(searcher store.KnowledgeSearcher) Option {
	return func(o *Orchestrator) {
		o.searcher = searcher
	}
}

// WithStageTimeout bounds each provider call.
func WithStageTimeout(timeout time.Duration) Option {
	return func(o *Orchestrator) {
		o.stageTimeout = timeout
	}
}

// WithMaxConcurrentInvocations caps invocations in flight.
func WithMaxConcurrentInvocations(n int) Option {
	return func(o *Orchestrator) {
		o.maxConcurrent = n
	}
}

// NewOrchestrator creates a pipeline orchestrator.
func NewOrchestrator(configs store.AgentConfigStore, resolver Resolver, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		configs:       configs,
		resolver:      resolver,
		stageTimeout:  DefaultStageTimeout,
		maxConcurrent: DefaultMaxConcurrentInvocations,
	}
	for _, opt := range opts {
		opt(o)
	}
	o.semaphore = semaphore.NewWeighted(int64(o.maxConcurrent))
	return o
}

// Run executes one invocation. On error the returned *Error names the
// failed stage; the caller keeps the session alive and apologizes.
func (o *Orchestrator) Run(ctx context.Context, req Request) (*Result, error) {
	if err := o.semaphore.Acquire(ctx, 1); err != nil {
		return nil, fmt.Errorf("failed to acquire invocation slot: %w", err)
	}
	defer o.semaphore.Release(1)

	start := time.Now()
	prometheus.RecordInvocationStart()

	result, err := o.run(ctx, req)

	total := time.Since(start)
	if err != nil {
		prometheus.RecordInvocationEnd(prometheus.StatusError, total.Seconds())
		return nil, err
	}
	result.TotalLatency = total
	prometheus.RecordInvocationEnd(prometheus.StatusSuccess, total.Seconds())
	return result, nil
}

func (o *Orchestrator) run(ctx context.Context, req Request) (*Result, error) {
	result := &Result{
		StageLatency: make(map[string]time.Duration),
	}

	// Stage: loading_config. No tenant config means no provider selection,
	// so this failure is fatal to the invocation.
	stageStart := time.Now()
	cfg, err := o.configs.Get(ctx, req.TenantID)
	var svcs *Services
	if err == nil {
		svcs, err = o.resolver.Resolve(cfg)
	}
	o.finishStage(result, StageLoadingConfig, stageStart, err)
	if err != nil {
		return nil, newError(StageLoadingConfig, "failed to load agent config", err)
	}

	// Stage: converting_audio_in.
	stageStart = time.Now()
	wav, err := audio.MulawToRecognition(req.Segment, audio.SampleRateRecognition)
	o.finishStage(result, StageConvertingAudioIn, stageStart, err)
	if err != nil {
		return nil, newError(StageConvertingAudioIn, "failed to convert inbound audio", err)
	}

	// Stage: transcribing.
	stageStart = time.Now()
	transcript, err := o.transcribe(ctx, svcs, wav)
	o.finishStage(result, StageTranscribing, stageStart, err)
	if err != nil {
		return nil, err
	}
	result.Transcript = transcript

	req.Conversation.AddTurn(llm.RoleUser, transcript)

	// Stage: retrieving. Never fails the invocation.
	stageStart = time.Now()
	ragContext, degraded := o.retrieve(ctx, cfg, transcript, req.TenantID)
	o.finishStage(result, StageRetrieving, stageStart, nil)
	result.RetrievalDegraded = degraded

	// Stage: prompting.
	stageStart = time.Now()
	systemPrompt := cfg.SystemPrompt
	if ragContext != "" {
		systemPrompt = systemPrompt + "\n\n" + ragContext
	}
	messages := req.Conversation.AsPromptMessages(systemPrompt)
	o.finishStage(result, StagePrompting, stageStart, nil)

	// Stage: generating.
	stageStart = time.Now()
	responseText, err := o.generate(ctx, svcs, cfg, messages)
	o.finishStage(result, StageGenerating, stageStart, err)
	if err != nil {
		return nil, err
	}
	result.ResponseText = responseText

	req.Conversation.AddTurn(llm.RoleAssistant, responseText)

	// Stage: synthesizing.
	stageStart = time.Now()
	synthesis, err := o.synthesize(ctx, svcs, cfg, responseText)
	o.finishStage(result, StageSynthesizing, stageStart, err)
	if err != nil {
		return nil, err
	}

	// Stage: converting_audio_out.
	stageStart = time.Now()
	payload, err := convertOutbound(synthesis)
	o.finishStage(result, StageConvertingAudioOut, stageStart, err)
	if err != nil {
		return nil, newError(StageConvertingAudioOut, "failed to convert outbound audio", err)
	}
	result.OutboundPayload = payload

	logger.InfoContext(ctx, "invocation complete",
		"call_id", req.CallID,
		"tenant_id", req.TenantID,
		"transcript_len", len(result.Transcript),
		"response_len", len(result.ResponseText))
	return result, nil
}

// transcribe runs STT with the fallback-once policy, then rejects empty
// transcripts.
func (o *Orchestrator) transcribe(ctx context.Context, svcs *Services, wav []byte) (string, error) {
	transcription, err := o.callSTT(ctx, svcs.STT, wav)
	if err != nil && svcs.STTFallback != nil {
		prometheus.RecordProviderFallback("stt")
		logger.Warn("stt primary failed, trying fallback",
			"primary", svcs.STT.Name(), "fallback", svcs.STTFallback.Name(), "error", err)
		transcription, err = o.callSTT(ctx, svcs.STTFallback, wav)
	}
	if err != nil {
		return "", newError(StageTranscribing, "speech recognition failed", err)
	}

	text := strings.TrimSpace(transcription.Text)
	if text == "" {
		return "", newError(StageTranscribing, "no speech recognized", ErrEmptyTranscript)
	}
	return text, nil
}

func (o *Orchestrator) callSTT(ctx context.Context, svc stt.Service, wav []byte) (*stt.Transcription, error) {
	ctx, cancel := context.WithTimeout(ctx, o.stageTimeout)
	defer cancel()

	start := time.Now()
	transcription, err := svc.Transcribe(ctx, wav, stt.DefaultTranscriptionConfig())
	o.recordProviderCall("stt", svc.Name(), start, err)
	return transcription, err
}

// retrieve queries the knowledge base, degrading to an empty context on
// any failure. The second return reports whether retrieval was enabled
// but produced nothing.
func (o *Orchestrator) retrieve(ctx context.Context, cfg *config.AgentConfig, query, tenantID string) (string, bool) {
	if !cfg.RetrievalEnabled {
		return "", false
	}
	if o.searcher == nil {
		return "", true
	}

	ctx, cancel := context.WithTimeout(ctx, o.stageTimeout)
	defer cancel()

	results, err := o.searcher.Search(ctx, query, tenantID, cfg.RetrievalTopK)
	if err != nil {
		logger.Warn("knowledge retrieval failed, continuing without context",
			"tenant_id", tenantID, "error", err)
		return "", true
	}

	ragContext := buildRAGContext(results)
	return ragContext, ragContext == ""
}

// generate runs the LLM with the fallback-once policy, substituting a
// clarification phrase for empty completions.
func (o *Orchestrator) generate(ctx context.Context, svcs *Services, cfg *config.AgentConfig, messages []llm.Message) (string, error) {
	genConfig := llm.GenerationConfig{
		Temperature: cfg.Temperature,
		MaxTokens:   cfg.MaxTokens,
		TopP:        cfg.TopP,
	}

	generation, err := o.callLLM(ctx, svcs.LLM, messages, genConfig)
	if err != nil && svcs.LLMFallback != nil {
		prometheus.RecordProviderFallback("llm")
		logger.Warn("llm primary failed, trying fallback",
			"primary", svcs.LLM.Name(), "fallback", svcs.LLMFallback.Name(), "error", err)
		generation, err = o.callLLM(ctx, svcs.LLMFallback, messages, genConfig)
	}
	if err != nil {
		return "", newError(StageGenerating, "response generation failed", err)
	}

	text := strings.TrimSpace(generation.Text)
	if text == "" {
		return ClarificationPhrase, nil
	}
	return text, nil
}

func (o *Orchestrator) callLLM(ctx context.Context, svc llm.Service, messages []llm.Message, genConfig llm.GenerationConfig) (*llm.Generation, error) {
	ctx, cancel := context.WithTimeout(ctx, o.stageTimeout)
	defer cancel()

	start := time.Now()
	generation, err := svc.Generate(ctx, messages, genConfig)
	o.recordProviderCall("llm", svc.Name(), start, err)
	if err == nil {
		// The handle binds the model; the response reports which one
		// actually served the request.
		prometheus.RecordProviderTokens(svc.Name(), generation.Model,
			generation.PromptTokens, generation.CompletionTokens)
	}
	return generation, err
}

// synthesize runs TTS with the fallback-once policy.
func (o *Orchestrator) synthesize(ctx context.Context, svcs *Services, cfg *config.AgentConfig, text string) (*tts.Synthesis, error) {
	synthConfig := tts.DefaultSynthesisConfig()
	synthConfig.Voice = cfg.Voice

	synthesis, err := o.callTTS(ctx, svcs.TTS, text, synthConfig)
	if err != nil && svcs.TTSFallback != nil {
		prometheus.RecordProviderFallback("tts")
		logger.Warn("tts primary failed, trying fallback",
			"primary", svcs.TTS.Name(), "fallback", svcs.TTSFallback.Name(), "error", err)
		// The fallback provider has its own voice catalog; use its default.
		fallbackConfig := tts.DefaultSynthesisConfig()
		synthesis, err = o.callTTS(ctx, svcs.TTSFallback, text, fallbackConfig)
	}
	if err != nil {
		return nil, newError(StageSynthesizing, "speech synthesis failed", err)
	}
	return synthesis, nil
}

func (o *Orchestrator) callTTS(ctx context.Context, svc tts.Service, text string, synthConfig tts.SynthesisConfig) (*tts.Synthesis, error) {
	ctx, cancel := context.WithTimeout(ctx, o.stageTimeout)
	defer cancel()

	start := time.Now()
	synthesis, err := svc.Synthesize(ctx, text, synthConfig)
	o.recordProviderCall("tts", svc.Name(), start, err)
	return synthesis, err
}

func convertOutbound(synthesis *tts.Synthesis) (string, error) {
	switch synthesis.Format {
	case tts.FormatWAV:
		return audio.SynthesisToOutbound(synthesis.Audio, audio.SourceWAV, 0)
	default:
		return audio.SynthesisToOutbound(synthesis.Audio, audio.SourcePCM, synthesis.SampleRate)
	}
}

func (o *Orchestrator) finishStage(result *Result, stage string, start time.Time, err error) {
	elapsed := time.Since(start)
	result.StageLatency[stage] = elapsed

	status := prometheus.StatusSuccess
	if err != nil {
		status = prometheus.StatusError
	}
	prometheus.RecordStage(stage, status, elapsed.Seconds())
}

func (o *Orchestrator) recordProviderCall(family, provider string, start time.Time, err error) {
	elapsed := time.Since(start)
	status := prometheus.StatusSuccess
	if err != nil {
		status = prometheus.StatusError
		logger.ProviderError(family, provider, err)
	} else {
		logger.ProviderCall(family, provider, "", "duration", elapsed)
	}
	prometheus.RecordProviderRequest(family, provider, status, elapsed.Seconds())
}
