// Package conversation tracks the bounded turn history of one call.
// One State belongs to one call session and is touched only by that
// session's event-processing path, so it needs no internal locking.
package conversation

import (
	"time"

	"github.com/AltairaLabs/CallKit/llm"
)

// DefaultHistoryCap bounds how many turns are kept. Old turns are evicted
// first; ten turns is enough context for a phone conversation without
// letting the prompt grow unbounded.
const DefaultHistoryCap = 10

// Turn is one utterance in the conversation.
type Turn struct {
	// Role is "user" or "assistant".
	Role string

	// Content is the utterance text.
	Content string

	// At is when the turn was recorded.
	At time.Time
}

// State is the bounded conversation history for one call.
type State struct {
	turns        []Turn
	cap          int
	lastActivity time.Time
	now          func() time.Time
}

// New creates a conversation state with the given history cap.
// A cap of zero or less uses DefaultHistoryCap.
func New(historyCap int) *State {
	if historyCap <= 0 {
		historyCap = DefaultHistoryCap
	}
	return &State{
		cap: historyCap,
		now: time.Now,
	}
}

// AddTurn appends an utterance, evicting the oldest turn when the history
// exceeds its cap.
func (s *State) AddTurn(role, content string) {
	now := s.now()
	s.turns = append(s.turns, Turn{Role: role, Content: content, At: now})
	if len(s.turns) > s.cap {
		s.turns = s.turns[len(s.turns)-s.cap:]
	}
	s.lastActivity = now
}

// Len returns the number of stored turns.
func (s *State) Len() int {
	return len(s.turns)
}

// LastActivity returns when the most recent turn was recorded; zero before
// the first turn.
func (s *State) LastActivity() time.Time {
	return s.lastActivity
}

// AsPromptMessages builds the LLM conversation: the system prompt followed
// by all stored turns in insertion order. Read-only.
func (s *State) AsPromptMessages(systemPrompt string) []llm.Message {
	messages := make([]llm.Message, 0, len(s.turns)+1)
	messages = append(messages, llm.Message{
		Role:    llm.RoleSystem,
		Content: systemPrompt,
	})
	for _, turn := range s.turns {
		messages = append(messages, llm.Message{
			Role:    turn.Role,
			Content: turn.Content,
		})
	}
	return messages
}

// Transcript returns a copy of all stored turns, used to hand off the
// final transcript when the call ends.
func (s *State) Transcript() []Turn {
	transcript := make([]Turn, len(s.turns))
	copy(transcript, s.turns)
	return transcript
}
