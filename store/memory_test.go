package store

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/AltairaLabs/CallKit/config"
	"github.com/AltairaLabs/CallKit/conversation"
	"github.com/AltairaLabs/CallKit/llm"
)

func TestMemoryCallStore_CreateAndFind(t *testing.T) {
	s := NewMemoryCallStore()
	ctx := context.Background()

	err := s.Create(ctx, &CallRecord{
		CallID:   "CA123",
		TenantID: "tenant-1",
		From:     "+15550100",
		To:       "+15550199",
	})
	require.NoError(t, err)

	record, err := s.FindByCallID(ctx, "CA123")
	require.NoError(t, err)
	assert.Equal(t, "tenant-1", record.TenantID)
	assert.Equal(t, StatusPending, record.Status)
}

func TestMemoryCallStore_NotFound(t *testing.T) {
	s := NewMemoryCallStore()
	_, err := s.FindByCallID(context.Background(), "CA404")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCallStore_InvalidID(t *testing.T) {
	s := NewMemoryCallStore()
	_, err := s.FindByCallID(context.Background(), "")
	assert.ErrorIs(t, err, ErrInvalidID)

	assert.ErrorIs(t, s.Create(context.Background(), &CallRecord{}), ErrInvalidID)
}

func TestMemoryCallStore_UpdateStatus(t *testing.T) {
	s := NewMemoryCallStore()
	ctx := context.Background()

	require.NoError(t, s.Create(ctx, &CallRecord{CallID: "CA123", TenantID: "tenant-1"}))

	transcript := []conversation.Turn{
		{Role: llm.RoleUser, Content: "What are your hours?"},
		{Role: llm.RoleAssistant, Content: "We're open Monday to Friday, 9 to 5."},
	}
	err := s.UpdateStatus(ctx, "CA123", StatusCompleted, 95*time.Second, transcript)
	require.NoError(t, err)

	record, err := s.FindByCallID(ctx, "CA123")
	require.NoError(t, err)
	assert.Equal(t, StatusCompleted, record.Status)
	assert.Equal(t, 95*time.Second, record.Duration)
	assert.Len(t, record.Transcript, 2)
}

func TestMemoryCallStore_UpdateStatus_NotFound(t *testing.T) {
	s := NewMemoryCallStore()
	err := s.UpdateStatus(context.Background(), "CA404", StatusFailed, 0, nil)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestMemoryCallStore_FindReturnsCopy(t *testing.T) {
	s := NewMemoryCallStore()
	ctx := context.Background()
	require.NoError(t, s.Create(ctx, &CallRecord{CallID: "CA123", TenantID: "tenant-1"}))

	record, err := s.FindByCallID(ctx, "CA123")
	require.NoError(t, err)
	record.TenantID = "mutated"

	again, err := s.FindByCallID(ctx, "CA123")
	require.NoError(t, err)
	assert.Equal(t, "tenant-1", again.TenantID)
}

func TestMemoryAgentConfigStore(t *testing.T) {
	s := NewMemoryAgentConfigStore()
	ctx := context.Background()

	_, err := s.Get(ctx, "tenant-1")
	assert.ErrorIs(t, err, ErrNotFound)

	s.Put(config.DefaultAgentConfig("tenant-1"))

	cfg, err := s.Get(ctx, "tenant-1")
	require.NoError(t, err)
	assert.Equal(t, "tenant-1", cfg.TenantID)
}

func TestStaticSearcher(t *testing.T) {
	searcher := &StaticSearcher{
		Results: []SearchResult{
			{Title: "Hours", Text: "Mon-Fri 9-5", Score: 0.9},
			{Title: "Location", Text: "123 Main St", Score: 0.7},
			{Title: "Parking", Text: "Lot B", Score: 0.6},
		},
	}

	results, err := searcher.Search(context.Background(), "hours", "tenant-1", 2)
	require.NoError(t, err)
	assert.Len(t, results, 2)
	assert.Equal(t, "Mon-Fri 9-5", results[0].Text)
}

func TestStaticSearcher_Error(t *testing.T) {
	searcher := &StaticSearcher{Err: errors.New("index offline")}
	_, err := searcher.Search(context.Background(), "anything", "tenant-1", 3)
	assert.Error(t, err)
}
