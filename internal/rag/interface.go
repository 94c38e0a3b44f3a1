// Package rag implements the retrieval half of a retrieval-augmented
// generation pipeline: query embedding, concurrent multi-index vector
// search, score-based fusion, and context assembly. Concrete search
// backends (Qdrant, etc.) satisfy the interfaces defined here so the
// pipeline never depends on a specific store.
package rag

import (
	"context"
)

// Passage is a unit of retrieved knowledge: one scored chunk of a source
// document, as returned by a search index.
type Passage struct {
	// Content is the raw text of the chunk.
	Content string

	// Score is the similarity score assigned by the index (0.0–1.0,
	// higher is more relevant).
	Score float32

	// Source identifies the index the passage came from.
	Source string

	// Metadata holds arbitrary key-value pairs (title, URI, page, etc.).
	Metadata map[string]string
}

// Embedder converts text into dense vector embeddings.
// Implementations must be safe to call from multiple goroutines.
type Embedder interface {
	// Embed converts a batch of texts into their corresponding embeddings.
	// The returned slice is parallel to the input slice.
	Embed(ctx context.Context, texts []string) ([][]float32, error)
}

// SearchIndex is a single queryable vector index. The fusion engine
// fans a query embedding out to every configured index concurrently.
// Implementations must be safe to call from multiple goroutines.
type SearchIndex interface {
	// Name returns a stable identifier for this index, used as the
	// Source on returned passages and in logs.
	Name() string

	// Search returns the top-k most similar passages for the given
	// query embedding, ordered by descending score.
	Search(ctx context.Context, queryEmbedding []float32, topK int) ([]Passage, error)
}
