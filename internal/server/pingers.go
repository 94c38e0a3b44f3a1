package server

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"

	"github.com/praewptr/rag-search/internal/rag"
)

// QdrantPinger probes a Qdrant instance using its native HealthCheck
// RPC. It satisfies the Pinger interface and is used by GET /api/ready.
type QdrantPinger struct {
	// client is the Qdrant gRPC client to probe.
	client *qdrant.Client
}

// NewQdrantPinger constructs a QdrantPinger for the given Qdrant client.
func NewQdrantPinger(client *qdrant.Client) *QdrantPinger {
	return &QdrantPinger{client: client}
}

// Name returns the dependency label used in readiness responses.
func (p *QdrantPinger) Name() string { return "qdrant" }

// Ping calls the Qdrant HealthCheck RPC.
func (p *QdrantPinger) Ping(ctx context.Context) error {
	if _, err := p.client.HealthCheck(ctx); err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// IndexPinger probes one search index: it verifies the backing Qdrant
// collection exists, not just that the server answers. One IndexPinger
// per configured index surfaces a missing collection in /api/ready
// before the first question fails.
type IndexPinger struct {
	index *rag.QdrantIndex
}

// NewIndexPinger constructs an IndexPinger for the given index.
func NewIndexPinger(index *rag.QdrantIndex) *IndexPinger {
	return &IndexPinger{index: index}
}

// Name returns the index label prefixed for readiness responses.
func (p *IndexPinger) Name() string { return "index:" + p.index.Name() }

// Ping checks that the collection behind the index exists.
func (p *IndexPinger) Ping(ctx context.Context) error {
	return p.index.Ping(ctx)
}
