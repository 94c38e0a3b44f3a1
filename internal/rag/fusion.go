package rag

import (
	"context"
	"crypto/sha256"
	"fmt"
	"sort"
	"strings"
	"sync"

	"github.com/praewptr/rag-search/internal/logging"
)

// FusionConfig holds tuning parameters for the fusion engine.
type FusionConfig struct {
	// TopK is the number of candidates requested from each index
	// (default: 3).
	TopK int

	// MinScore is the minimum similarity score a passage must reach to
	// survive fusion (default: 0.5).
	MinScore float32

	// MaxPassages is the cap on fused passages after sorting and
	// filtering (default: 3).
	MaxPassages int

	// Dimensions, when non-zero, is the expected embedding vector
	// length. Mismatching embedder output is rejected before any index
	// is queried.
	Dimensions int

	// MaxContextTokens bounds the assembled context string
	// (default: budget.DefaultMaxContextTokens).
	MaxContextTokens int

	// DedupByContent drops passages whose content hash was already seen
	// in a higher-ranked passage. Off by default: overlapping corpora
	// are rare enough that duplicates are usually a signal.
	DedupByContent bool
}

// Fusion embeds a query once, fans it out to every configured search
// index concurrently, and merges the results into a single ranked,
// thresholded passage list. Safe for concurrent use.
type Fusion struct {
	embedder Embedder
	indexes  []SearchIndex
	cfg      FusionConfig
}

// NewFusion constructs a Fusion engine over the given embedder and
// indexes. Config zero values are replaced with defaults.
func NewFusion(embedder Embedder, indexes []SearchIndex, cfg FusionConfig) (*Fusion, error) {
	if embedder == nil {
		return nil, fmt.Errorf("rag: embedder must not be nil")
	}
	if len(indexes) == 0 {
		return nil, fmt.Errorf("rag: at least one search index is required")
	}
	if cfg.TopK <= 0 {
		cfg.TopK = 3
	}
	if cfg.MinScore == 0 {
		cfg.MinScore = 0.5
	}
	if cfg.MaxPassages <= 0 {
		cfg.MaxPassages = 3
	}
	return &Fusion{embedder: embedder, indexes: indexes, cfg: cfg}, nil
}

// Embed validates the question and converts it to a query vector.
// An empty or whitespace-only question returns ErrValidation without
// touching the embedding backend.
func (f *Fusion) Embed(ctx context.Context, question string) ([]float32, error) {
	if strings.TrimSpace(question) == "" {
		return nil, fmt.Errorf("%w: question is empty", ErrValidation)
	}

	vecs, err := f.embedder.Embed(ctx, []string{question})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrEmbedding, err)
	}
	if len(vecs) == 0 || len(vecs[0]) == 0 {
		return nil, fmt.Errorf("%w: embedder returned no vector", ErrEmbedding)
	}
	if f.cfg.Dimensions > 0 && len(vecs[0]) != f.cfg.Dimensions {
		return nil, fmt.Errorf("%w: embedder returned %d dimensions, want %d",
			ErrEmbedding, len(vecs[0]), f.cfg.Dimensions)
	}
	return vecs[0], nil
}

// Search fans the query vector out to every index concurrently and
// fuses the results: sort by raw score descending, drop passages below
// MinScore, truncate to MaxPassages. A failing index contributes zero
// results and a log line; only when every index fails is ErrRetrieval
// returned. An empty fused list is a normal outcome.
func (f *Fusion) Search(ctx context.Context, queryEmbedding []float32) ([]Passage, error) {
	return f.SearchK(ctx, queryEmbedding, f.cfg.TopK)
}

// SearchK is Search with a per-call candidate count. topK values below 1
// fall back to the configured default.
func (f *Fusion) SearchK(ctx context.Context, queryEmbedding []float32, topK int) ([]Passage, error) {
	log := logging.FromContext(ctx)

	if topK < 1 {
		topK = f.cfg.TopK
	}

	var (
		mu       sync.Mutex
		wg       sync.WaitGroup
		fused    []Passage
		failures int
	)

	for _, idx := range f.indexes {
		wg.Add(1)
		go func(idx SearchIndex) {
			defer wg.Done()

			passages, err := idx.Search(ctx, queryEmbedding, topK)
			mu.Lock()
			defer mu.Unlock()
			if err != nil {
				failures++
				log.Warn("index search failed", "index", idx.Name(), "error", err)
				return
			}
			for _, p := range passages {
				if p.Source == "" {
					p.Source = idx.Name()
				}
				fused = append(fused, p)
			}
		}(idx)
	}
	wg.Wait()

	if failures == len(f.indexes) {
		return nil, fmt.Errorf("%w: %d of %d indexes errored", ErrRetrieval, failures, len(f.indexes))
	}

	sort.SliceStable(fused, func(i, j int) bool {
		return fused[i].Score > fused[j].Score
	})

	out := make([]Passage, 0, f.cfg.MaxPassages)
	seen := make(map[[32]byte]bool)
	for _, p := range fused {
		if p.Score < f.cfg.MinScore {
			break
		}
		if f.cfg.DedupByContent {
			h := sha256.Sum256([]byte(p.Content))
			if seen[h] {
				continue
			}
			seen[h] = true
		}
		out = append(out, p)
		if len(out) == f.cfg.MaxPassages {
			break
		}
	}
	return out, nil
}

// Assemble renders fused passages into the prompt context string.
func (f *Fusion) Assemble(passages []Passage) string {
	return AssembleContext(passages, f.cfg.MaxContextTokens)
}

// Retrieve runs the full embed → search → fuse sequence for a question
// and returns the surviving passages. Convenience for callers that do
// not need the intermediate vector.
func (f *Fusion) Retrieve(ctx context.Context, question string) ([]Passage, error) {
	vec, err := f.Embed(ctx, question)
	if err != nil {
		return nil, err
	}
	return f.Search(ctx, vec)
}
