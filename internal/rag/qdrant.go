package rag

import (
	"context"
	"fmt"

	"github.com/qdrant/go-client/qdrant"
)

// QdrantConfig holds connection parameters shared by all Qdrant-backed
// indexes.
type QdrantConfig struct {
	// Host is the Qdrant server hostname (default: localhost).
	Host string

	// Port is the Qdrant gRPC port (default: 6334).
	Port int

	// APIKey is the optional Qdrant API key for authenticated clusters.
	APIKey string

	// UseTLS enables TLS for the gRPC connection.
	UseTLS bool
}

// QdrantIndex implements SearchIndex over one Qdrant collection.
// Several indexes typically share a single gRPC client.
type QdrantIndex struct {
	client *qdrant.Client

	// collection is the Qdrant collection this index queries.
	collection string

	// label is the name reported by Name() and stamped on passages.
	// Defaults to the collection name.
	label string

	// contentField is the payload field holding passage text
	// (default: "content").
	contentField string
}

// NewQdrantClient creates the shared gRPC client for Qdrant-backed
// indexes. The caller owns the client and should Close it on shutdown.
func NewQdrantClient(cfg *QdrantConfig) (*qdrant.Client, error) {
	if cfg.Host == "" {
		cfg.Host = "localhost"
	}
	if cfg.Port == 0 {
		cfg.Port = 6334
	}

	client, err := qdrant.NewClient(&qdrant.Config{
		Host:   cfg.Host,
		Port:   cfg.Port,
		APIKey: cfg.APIKey,
		UseTLS: cfg.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: failed to create client: %w", err)
	}
	return client, nil
}

// NewQdrantIndex wraps one collection of the given client as a
// SearchIndex. label and contentField may be empty to use defaults.
func NewQdrantIndex(client *qdrant.Client, collection, label, contentField string) (*QdrantIndex, error) {
	if client == nil {
		return nil, fmt.Errorf("qdrant: client must not be nil")
	}
	if collection == "" {
		return nil, fmt.Errorf("qdrant: collection name must not be empty")
	}
	if label == "" {
		label = collection
	}
	if contentField == "" {
		contentField = "content"
	}
	return &QdrantIndex{
		client:       client,
		collection:   collection,
		label:        label,
		contentField: contentField,
	}, nil
}

// Name returns the index label.
func (q *QdrantIndex) Name() string { return q.label }

// Search performs a cosine similarity query against the collection and
// returns the top-k passages ordered by descending score.
func (q *QdrantIndex) Search(ctx context.Context, queryEmbedding []float32, topK int) ([]Passage, error) {
	limit := uint64(topK)
	results, err := q.client.Query(ctx, &qdrant.QueryPoints{
		CollectionName: q.collection,
		Query:          qdrant.NewQuery(queryEmbedding...),
		Limit:          &limit,
		WithPayload:    qdrant.NewWithPayload(true),
	})
	if err != nil {
		return nil, fmt.Errorf("qdrant: search in %q failed: %w", q.collection, err)
	}

	passages := make([]Passage, 0, len(results))
	for _, r := range results {
		p := Passage{
			Score:    r.Score,
			Source:   q.label,
			Metadata: make(map[string]string),
		}
		if payload := r.Payload; payload != nil {
			if v, ok := payload[q.contentField]; ok {
				p.Content = v.GetStringValue()
			}
			for k, v := range payload {
				if k == q.contentField {
					continue
				}
				if s := v.GetStringValue(); s != "" {
					p.Metadata[k] = s
				}
			}
		}
		passages = append(passages, p)
	}
	return passages, nil
}

// Ping verifies the collection is reachable, for readiness probes.
func (q *QdrantIndex) Ping(ctx context.Context) error {
	exists, err := q.client.CollectionExists(ctx, q.collection)
	if err != nil {
		return fmt.Errorf("qdrant: ping %q: %w", q.collection, err)
	}
	if !exists {
		return fmt.Errorf("qdrant: collection %q does not exist", q.collection)
	}
	return nil
}
