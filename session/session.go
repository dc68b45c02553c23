package session

import (
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/AltairaLabs/CallKit/audio"
	"github.com/AltairaLabs/CallKit/config"
	"github.com/AltairaLabs/CallKit/conversation"
	"github.com/AltairaLabs/CallKit/llm"
	"github.com/AltairaLabs/CallKit/logger"
	"github.com/AltairaLabs/CallKit/metrics/prometheus"
	"github.com/AltairaLabs/CallKit/pipeline"
	"github.com/AltairaLabs/CallKit/store"
	"github.com/AltairaLabs/CallKit/tts"
)

// Spoken apology phrases. The caller always hears something — a real
// response, a greeting, or one of these — never silence.
const (
	// ApologyPipeline is spoken when a single pipeline run fails; the
	// call continues.
	ApologyPipeline = "I'm sorry, I didn't catch that. Could you please repeat?"

	// ApologyUnknownCall is spoken when the stream cannot be matched to
	// a call record; the session ends.
	ApologyUnknownCall = "Sorry, we couldn't process your call. Please try again."

	// ApologyStartFailure is spoken when session setup fails after the
	// call was matched; the session ends.
	ApologyStartFailure = "Sorry, we're experiencing technical difficulties."
)

// ErrSessionEnded tells the transport loop the session is done and the
// connection should close. It is a signal, not a failure.
var ErrSessionEnded = errors.New("session ended")

// State is a session's lifecycle phase.
type State string

// Session states.
const (
	StateIdle    State = "idle"
	StateActive  State = "active"
	StateClosing State = "closing"
	StateClosed  State = "closed"
)

// Manager wires sessions to their collaborators: the call-record store for
// tenant resolution and persistence, the config store, the provider
// resolver, the pipeline orchestrator, and the registry of live sessions.
type Manager struct {
	calls         store.CallStore
	configs       store.AgentConfigStore
	resolver      pipeline.Resolver
	orchestrator  *pipeline.Orchestrator
	registry      *Registry
	segmentTarget time.Duration

	// fallbackTTS, when set, speaks start-failure apologies for calls
	// that never resolved to a tenant (and so have no configured voice).
	fallbackTTS tts.Service
}

// ManagerOption configures a Manager.
type ManagerOption func(*Manager)

// WithSegmentTarget sets how much audio accumulates before a pipeline run.
func WithSegmentTarget(target time.Duration) ManagerOption {
	return func(m *Manager) {
		m.segmentTarget = target
	}
}

// WithFallbackTTS sets the service used to apologize on calls that failed
// before a tenant voice was resolved. Without it those sessions end silently.
func WithFallbackTTS(svc tts.Service) ManagerOption {
	return func(m *Manager) {
		m.fallbackTTS = svc
	}
}

// NewManager creates a session manager.
func NewManager(
	calls store.CallStore,
	configs store.AgentConfigStore,
	resolver pipeline.Resolver,
	orchestrator *pipeline.Orchestrator,
	registry *Registry,
	opts ...ManagerOption,
) *Manager {
	m := &Manager{
		calls:         calls,
		configs:       configs,
		resolver:      resolver,
		orchestrator:  orchestrator,
		registry:      registry,
		segmentTarget: audio.DefaultSegmentTarget,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Registry returns the live-session registry.
func (m *Manager) Registry() *Registry {
	return m.registry
}

// NewSession creates an idle session bound to an outbound sink. The session
// becomes active when its start event resolves a tenant.
func (m *Manager) NewSession(sink Sink) *Session {
	return &Session{
		manager: m,
		sink:    sink,
		state:   StateIdle,
	}
}

// Session is one call's state machine. All methods are called from the
// single goroutine reading that call's event stream.
type Session struct {
	manager *Manager
	sink    Sink

	state     State
	callID    string
	streamSID string
	tenantID  string

	cfg         *config.AgentConfig
	ttsPrimary  tts.Service
	ttsFallback tts.Service

	conv        *conversation.State
	accumulator *audio.Accumulator

	startedAt time.Time

	// Counters logged at cleanup.
	framesReceived    int
	segmentsProcessed int
}

// CallID returns the call identifier (empty before the start event).
func (s *Session) CallID() string {
	return s.callID
}

// State returns the session's lifecycle phase.
func (s *Session) State() State {
	return s.state
}

// HandleEvent processes one inbound stream event. It returns
// ErrSessionEnded (possibly wrapped around a cause) when the transport
// loop should close the connection; any other error is internal and the
// call continues.
func (s *Session) HandleEvent(ctx context.Context, evt Event) error {
	prometheus.RecordSessionEvent(evt.Event)

	switch evt.Event {
	case EventConnected:
		logger.Debug("stream connected")
		return nil
	case EventStart:
		return s.handleStart(ctx, evt)
	case EventMedia:
		s.handleMedia(ctx, evt)
		return nil
	case EventMark:
		// Marks acknowledge playback; a dropped mark is tolerated.
		return nil
	case EventStop:
		s.handleStop(ctx)
		return ErrSessionEnded
	default:
		// Unrecognized event types are a forward-compatible no-op.
		logger.Debug("ignoring unrecognized stream event", "event", evt.Event)
		return nil
	}
}

func (s *Session) handleStart(ctx context.Context, evt Event) error {
	if evt.Start == nil || evt.Start.CallSID == "" {
		logger.Error("start event missing call identifier")
		return fmt.Errorf("%w: malformed start event", ErrSessionEnded)
	}
	s.callID = evt.Start.CallSID
	s.streamSID = evt.Start.StreamSID
	if s.streamSID == "" {
		s.streamSID = evt.StreamSID
	}

	record, err := s.manager.calls.FindByCallID(ctx, s.callID)
	if err != nil {
		logger.CallEvent(s.callID, "rejected", "reason", "call not found")
		s.speakFallback(ctx, ApologyUnknownCall)
		return fmt.Errorf("%w: %w", ErrSessionEnded, err)
	}
	s.tenantID = record.TenantID

	cfg, err := s.manager.configs.Get(ctx, s.tenantID)
	if err != nil {
		logger.CallEvent(s.callID, "rejected", "reason", "agent config not found",
			"tenant_id", s.tenantID)
		s.speakFallback(ctx, ApologyStartFailure)
		return fmt.Errorf("%w: %w", ErrSessionEnded, err)
	}
	s.cfg = cfg

	svcs, err := s.manager.resolver.Resolve(cfg)
	if err != nil {
		logger.CallEvent(s.callID, "rejected", "reason", "provider resolution failed",
			"error", err)
		s.speakFallback(ctx, ApologyStartFailure)
		return fmt.Errorf("%w: %w", ErrSessionEnded, err)
	}
	s.ttsPrimary = svcs.TTS
	s.ttsFallback = svcs.TTSFallback

	if err := s.manager.calls.UpdateStatus(ctx, s.callID, store.StatusInProgress, 0, nil); err != nil {
		logger.Warn("failed to mark call in progress", "call_id", s.callID, "error", err)
	}

	s.conv = conversation.New(cfg.HistoryCap)
	s.accumulator = audio.NewAccumulator(s.manager.segmentTarget)
	s.startedAt = time.Now()
	s.state = StateActive
	s.manager.registry.Add(s)
	prometheus.RecordSessionStart()
	logger.CallEvent(s.callID, "started", "tenant_id", s.tenantID, "stream_sid", s.streamSID)

	// Greet without waiting for caller audio; the greeting is part of the
	// conversation the LLM sees.
	if cfg.Greeting != "" {
		if err := s.speak(ctx, cfg.Greeting); err == nil {
			s.conv.AddTurn(llm.RoleAssistant, cfg.Greeting)
		} else {
			logger.Error("failed to speak greeting", "call_id", s.callID, "error", err)
		}
	}
	return nil
}

func (s *Session) handleMedia(ctx context.Context, evt Event) {
	if s.state != StateActive || evt.Media == nil {
		return
	}

	frame, err := base64.StdEncoding.DecodeString(evt.Media.Payload)
	if err != nil {
		logger.Warn("dropping malformed media frame", "call_id", s.callID, "error", err)
		return
	}
	s.framesReceived++
	s.accumulator.Append(frame, audio.Duration(frame, audio.SampleRateTelephony, 1, 1))

	if !s.accumulator.Ready() {
		return
	}
	segment := s.accumulator.Drain()
	s.segmentsProcessed++
	prometheus.RecordAudioSegment()

	result, err := s.manager.orchestrator.Run(ctx, pipeline.Request{
		CallID:       s.callID,
		TenantID:     s.tenantID,
		Segment:      segment,
		Conversation: s.conv,
	})
	if err != nil {
		// One bad turn must not end the call: apologize and keep going.
		logger.Error("pipeline invocation failed", "call_id", s.callID, "error", err)
		if err := s.speak(ctx, ApologyPipeline); err != nil {
			logger.Error("failed to speak apology", "call_id", s.callID, "error", err)
		}
		return
	}

	s.sendAudio(result.OutboundPayload)
}

func (s *Session) handleStop(ctx context.Context) {
	if s.state != StateActive {
		s.state = StateClosed
		return
	}
	s.state = StateClosing

	// Flush whatever audio remains through one final best-effort run so
	// the transcript captures the caller's last words. The caller has hung
	// up; failures are logged, and nothing is played back.
	if s.accumulator.Len() > 0 {
		segment := s.accumulator.Drain()
		s.segmentsProcessed++
		if _, err := s.manager.orchestrator.Run(ctx, pipeline.Request{
			CallID:       s.callID,
			TenantID:     s.tenantID,
			Segment:      segment,
			Conversation: s.conv,
		}); err != nil {
			logger.Warn("final segment flush failed", "call_id", s.callID, "error", err)
		}
	}

	duration := time.Since(s.startedAt)
	if err := s.manager.calls.UpdateStatus(ctx, s.callID, store.StatusCompleted,
		duration, s.conv.Transcript()); err != nil {
		logger.Error("failed to persist final call state", "call_id", s.callID, "error", err)
	}

	s.manager.registry.Remove(s.callID)
	prometheus.RecordSessionEnd(duration.Seconds())
	logger.CallEvent(s.callID, "completed",
		"duration", duration,
		"frames_received", s.framesReceived,
		"segments_processed", s.segmentsProcessed)
	s.state = StateClosed
}

// speak synthesizes text with the tenant's voice (fallback-once) and sends
// it to the caller.
func (s *Session) speak(ctx context.Context, text string) error {
	synthConfig := tts.DefaultSynthesisConfig()
	if s.cfg != nil {
		synthConfig.Voice = s.cfg.Voice
	}

	synthesis, err := s.ttsPrimary.Synthesize(ctx, text, synthConfig)
	if err != nil && s.ttsFallback != nil {
		prometheus.RecordProviderFallback("tts")
		synthesis, err = s.ttsFallback.Synthesize(ctx, text, tts.DefaultSynthesisConfig())
	}
	if err != nil {
		return err
	}

	payload, err := synthesisPayload(synthesis)
	if err != nil {
		return err
	}
	s.sendAudio(payload)
	return nil
}

// speakFallback apologizes through the manager's fallback voice, for
// sessions that failed before a tenant voice existed. Best effort.
func (s *Session) speakFallback(ctx context.Context, text string) {
	svc := s.ttsPrimary
	if svc == nil {
		svc = s.manager.fallbackTTS
	}
	if svc == nil {
		return
	}

	synthesis, err := svc.Synthesize(ctx, text, tts.DefaultSynthesisConfig())
	if err != nil {
		logger.Warn("failed to synthesize apology", "call_id", s.callID, "error", err)
		return
	}
	payload, err := synthesisPayload(synthesis)
	if err != nil {
		logger.Warn("failed to convert apology audio", "call_id", s.callID, "error", err)
		return
	}
	s.sendAudio(payload)
}

// sendAudio emits one media frame followed by a mark, so the transport can
// report when playback finished.
func (s *Session) sendAudio(payload string) {
	if payload == "" {
		return
	}
	if err := s.sink.Send(OutboundFrame{
		Event:     EventMedia,
		StreamSID: s.streamSID,
		Media:     &MediaPayload{Payload: payload},
	}); err != nil {
		logger.Error("failed to send media frame", "call_id", s.callID, "error", err)
		return
	}
	if err := s.sink.Send(OutboundFrame{
		Event:     EventMark,
		StreamSID: s.streamSID,
		Mark:      &MarkPayload{Name: uuid.NewString()},
	}); err != nil {
		logger.Error("failed to send mark frame", "call_id", s.callID, "error", err)
	}
}

func synthesisPayload(synthesis *tts.Synthesis) (string, error) {
	if synthesis.Format == tts.FormatWAV {
		return audio.SynthesisToOutbound(synthesis.Audio, audio.SourceWAV, 0)
	}
	return audio.SynthesisToOutbound(synthesis.Audio, audio.SourcePCM, synthesis.SampleRate)
}
