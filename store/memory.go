package store

import (
	"context"
	"sync"
	"time"

	"github.com/AltairaLabs/CallKit/config"
	"github.com/AltairaLabs/CallKit/conversation"
)

// MemoryCallStore is an in-memory CallStore for tests and single-process
// deployments. Safe for concurrent use.
type MemoryCallStore struct {
	mu    sync.RWMutex
	calls map[string]*CallRecord
}

// NewMemoryCallStore creates an empty in-memory call store.
func NewMemoryCallStore() *MemoryCallStore {
	return &MemoryCallStore{
		calls: make(map[string]*CallRecord),
	}
}

// FindByCallID looks up a call by identifier.
func (s *MemoryCallStore) FindByCallID(_ context.Context, callID string) (*CallRecord, error) {
	if callID == "" {
		return nil, ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	record, ok := s.calls[callID]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *record
	return &clone, nil
}

// Create registers a new call record.
func (s *MemoryCallStore) Create(_ context.Context, record *CallRecord) error {
	if record == nil || record.CallID == "" {
		return ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	clone := *record
	if clone.Status == "" {
		clone.Status = StatusPending
	}
	s.calls[record.CallID] = &clone
	return nil
}

// UpdateStatus transitions a call's status.
func (s *MemoryCallStore) UpdateStatus(
	_ context.Context, callID, status string,
	duration time.Duration, transcript []conversation.Turn,
) error {
	if callID == "" {
		return ErrInvalidID
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	record, ok := s.calls[callID]
	if !ok {
		return ErrNotFound
	}
	record.Status = status
	if duration > 0 {
		record.Duration = duration
	}
	if transcript != nil {
		record.Transcript = transcript
	}
	return nil
}

// MemoryAgentConfigStore is an in-memory AgentConfigStore.
// Safe for concurrent use.
type MemoryAgentConfigStore struct {
	mu      sync.RWMutex
	configs map[string]*config.AgentConfig
}

// NewMemoryAgentConfigStore creates an empty in-memory config store.
func NewMemoryAgentConfigStore() *MemoryAgentConfigStore {
	return &MemoryAgentConfigStore{
		configs: make(map[string]*config.AgentConfig),
	}
}

// Put stores a tenant's configuration.
func (s *MemoryAgentConfigStore) Put(cfg *config.AgentConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.configs[cfg.TenantID] = cfg
}

// Get returns the tenant's configuration.
func (s *MemoryAgentConfigStore) Get(_ context.Context, tenantID string) (*config.AgentConfig, error) {
	if tenantID == "" {
		return nil, ErrInvalidID
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	cfg, ok := s.configs[tenantID]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *cfg
	return &clone, nil
}

// StaticSearcher returns fixed results for every query; for tests and for
// tenants without a knowledge base.
type StaticSearcher struct {
	Results []SearchResult
	Err     error
}

// Search returns the configured results (or error) regardless of query.
func (s *StaticSearcher) Search(_ context.Context, _, _ string, topK int) ([]SearchResult, error) {
	if s.Err != nil {
		return nil, s.Err
	}
	if topK > 0 && len(s.Results) > topK {
		return s.Results[:topK], nil
	}
	return s.Results, nil
}
