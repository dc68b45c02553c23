package store

import (
	"context"
	"errors"
	"time"

	"github.com/AltairaLabs/CallKit/config"
	"github.com/AltairaLabs/CallKit/conversation"
)

// Common errors.
var (
	// ErrNotFound is returned when a record does not exist.
	ErrNotFound = errors.New("not found")

	// ErrInvalidID is returned when an empty identifier is supplied.
	ErrInvalidID = errors.New("invalid id")
)

// Call statuses.
const (
	StatusPending    = "pending"
	StatusInProgress = "in_progress"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// CallRecord is one phone call known to the platform.
type CallRecord struct {
	// CallID is the telephony-assigned call identifier.
	CallID string `json:"call_id"`

	// TenantID identifies which tenant's agent answers this call.
	TenantID string `json:"tenant_id"`

	// From and To are E.164-style phone numbers.
	From string `json:"from,omitempty"`
	To   string `json:"to,omitempty"`

	Status    string    `json:"status"`
	StartedAt time.Time `json:"started_at,omitempty"`

	// Duration and Transcript are filled when the call completes.
	Duration   time.Duration       `json:"duration,omitempty"`
	Transcript []conversation.Turn `json:"transcript,omitempty"`
}

// CallStore persists call records.
type CallStore interface {
	// FindByCallID looks up a call; returns ErrNotFound when absent.
	FindByCallID(ctx context.Context, callID string) (*CallRecord, error)

	// Create registers a new call record.
	Create(ctx context.Context, record *CallRecord) error

	// UpdateStatus transitions a call's status; duration and transcript
	// may be zero/nil for intermediate transitions.
	UpdateStatus(ctx context.Context, callID, status string,
		duration time.Duration, transcript []conversation.Turn) error
}

// AgentConfigStore retrieves per-tenant agent configuration.
type AgentConfigStore interface {
	// Get returns the tenant's configuration; ErrNotFound when the tenant
	// has none (fatal to a session start).
	Get(ctx context.Context, tenantID string) (*config.AgentConfig, error)
}

// SearchResult is one knowledge-base match.
type SearchResult struct {
	Title string  `json:"title,omitempty"`
	Text  string  `json:"text"`
	Score float64 `json:"score"`
}

// KnowledgeSearcher retrieves knowledge-base passages relevant to a query.
// The pipeline treats any failure as an empty result.
type KnowledgeSearcher interface {
	Search(ctx context.Context, query, tenantID string, topK int) ([]SearchResult, error)
}
