package store

import (
	"context"
	"fmt"
	"sort"
	"sync"

	"github.com/AltairaLabs/CallKit/embeddings"
)

// Document is one knowledge-base passage owned by a tenant.
type Document struct {
	Title string
	Text  string
}

// EmbeddingSearcher is an in-memory KnowledgeSearcher ranking documents by
// cosine similarity against a tenant's embedded corpus. It is the reference
// implementation for tests and single-process deployments; a hosted vector
// index plugs in behind the same interface.
type EmbeddingSearcher struct {
	embedder embeddings.Service

	mu      sync.RWMutex
	tenants map[string][]embeddedDocument
}

type embeddedDocument struct {
	doc    Document
	vector []float32
}

// NewEmbeddingSearcher creates a searcher using the given embedding service
// for both indexing and queries.
func NewEmbeddingSearcher(embedder embeddings.Service) *EmbeddingSearcher {
	return &EmbeddingSearcher{
		embedder: embedder,
		tenants:  make(map[string][]embeddedDocument),
	}
}

// Index embeds and stores documents for a tenant, appending to whatever is
// already indexed.
func (s *EmbeddingSearcher) Index(ctx context.Context, tenantID string, docs []Document) error {
	if len(docs) == 0 {
		return nil
	}

	texts := make([]string, len(docs))
	for i, doc := range docs {
		texts[i] = doc.Text
	}
	vectors, err := s.embedder.Embed(ctx, texts)
	if err != nil {
		return fmt.Errorf("failed to embed documents: %w", err)
	}
	if len(vectors) != len(docs) {
		return fmt.Errorf("embedding count mismatch: %d vectors for %d documents",
			len(vectors), len(docs))
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	for i, doc := range docs {
		s.tenants[tenantID] = append(s.tenants[tenantID], embeddedDocument{
			doc:    doc,
			vector: vectors[i],
		})
	}
	return nil
}

// Search embeds the query and returns the tenant's topK most similar
// documents, highest score first. A tenant with no corpus gets an empty
// result, not an error.
func (s *EmbeddingSearcher) Search(
	ctx context.Context, query, tenantID string, topK int,
) ([]SearchResult, error) {
	s.mu.RLock()
	corpus := s.tenants[tenantID]
	s.mu.RUnlock()
	if len(corpus) == 0 || topK < 1 {
		return nil, nil
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil {
		return nil, fmt.Errorf("failed to embed query: %w", err)
	}
	queryVector := vectors[0]

	results := make([]SearchResult, 0, len(corpus))
	for _, entry := range corpus {
		results = append(results, SearchResult{
			Title: entry.doc.Title,
			Text:  entry.doc.Text,
			Score: embeddings.CosineSimilarity(queryVector, entry.vector),
		})
	}
	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score > results[j].Score
	})
	if len(results) > topK {
		results = results[:topK]
	}
	return results, nil
}
