package llm

import (
	"context"
	"sync"
)

// MockService is a Service implementation for testing and development.
// It returns canned responses without making any API calls and records
// the conversations it receives.
type MockService struct {
	mu        sync.Mutex
	name      string
	responses []string
	next      int
	err       error
	calls     [][]Message
}

// NewMock creates a mock LLM service that cycles through the given
// responses. With no responses it returns an empty completion.
func NewMock(responses ...string) *MockService {
	return &MockService{
		name:      "mock",
		responses: responses,
	}
}

// FailWith makes every subsequent Generate call return err.
func (m *MockService) FailWith(err error) *MockService {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.err = err
	return m
}

// Name returns the provider identifier.
func (m *MockService) Name() string {
	return m.name
}

// Calls returns the conversations passed to Generate, in order.
func (m *MockService) Calls() [][]Message {
	m.mu.Lock()
	defer m.mu.Unlock()
	calls := make([][]Message, len(m.calls))
	copy(calls, m.calls)
	return calls
}

// Generate returns the next canned response.
func (m *MockService) Generate(
	_ context.Context, messages []Message, config GenerationConfig,
) (*Generation, error) {
	if len(messages) == 0 {
		return nil, ErrNoMessages
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	recorded := make([]Message, len(messages))
	copy(recorded, messages)
	m.calls = append(m.calls, recorded)

	if m.err != nil {
		return nil, m.err
	}

	var text string
	if len(m.responses) > 0 {
		text = m.responses[m.next%len(m.responses)]
		m.next++
	}

	// Rough token accounting: ~4 chars per token.
	promptTokens := 0
	for _, msg := range messages {
		promptTokens += len(msg.Content) / 4
	}
	completionTokens := len(text) / 4

	model := config.Model
	if model == "" {
		model = "mock-model"
	}

	return &Generation{
		Text:             text,
		FinishReason:     "stop",
		Model:            model,
		PromptTokens:     promptTokens,
		CompletionTokens: completionTokens,
		TotalTokens:      promptTokens + completionTokens,
	}, nil
}
