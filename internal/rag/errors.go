package rag

import "errors"

// Sentinel errors returned by the fusion engine. Callers classify
// failures with [errors.Is] to choose an HTTP status or exit code.
var (
	// ErrValidation indicates the query was empty or otherwise unusable
	// before any backend was contacted.
	ErrValidation = errors.New("rag: invalid query")

	// ErrEmbedding indicates the embedding backend failed, so no search
	// could be attempted.
	ErrEmbedding = errors.New("rag: embedding failed")

	// ErrRetrieval indicates every configured search index failed.
	// Partial failures are tolerated and logged, not returned.
	ErrRetrieval = errors.New("rag: all search indexes failed")
)
