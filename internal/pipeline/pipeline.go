// Package pipeline orchestrates one question through the answering
// flow: semantic FAQ cache gate, retrieval fusion, answer synthesis,
// and cache write-back. The cache is a best-effort optimization — its
// failures are logged and swallowed, never returned to the caller.
package pipeline

import (
	"context"
	"time"

	"github.com/praewptr/rag-search/internal/faqcache"
	"github.com/praewptr/rag-search/internal/logging"
	"github.com/praewptr/rag-search/internal/rag"
	"github.com/praewptr/rag-search/internal/synth"
)

// Result is the outcome of one answered question.
type Result struct {
	// Answer is the final answer text. Empty when NoAnswer is true.
	Answer string

	// Sources lists the distinct index labels that contributed
	// passages, in ranked order. Empty on cache hits.
	Sources []string

	// CacheHit reports that the answer came from the FAQ cache and no
	// retrieval or generation ran.
	CacheHit bool

	// NoAnswer reports that retrieval found nothing usable or the model
	// declined to answer from the context.
	NoAnswer bool
}

// Pipeline wires the cache gate in front of fusion and synthesis.
// Safe for concurrent use.
type Pipeline struct {
	fusion *rag.Fusion
	synth  *synth.Synthesizer

	// cache may be nil, which disables the gate entirely.
	cache faqcache.Store
}

// New constructs a Pipeline. cache may be nil to run without the FAQ
// cache gate.
func New(fusion *rag.Fusion, synthesizer *synth.Synthesizer, cache faqcache.Store) *Pipeline {
	return &Pipeline{fusion: fusion, synth: synthesizer, cache: cache}
}

// Ask runs the full flow for one question.
//
// The question is embedded exactly once; the same vector serves the
// cache lookup and the index fan-out. Error taxonomy: rag.ErrValidation
// for unusable input, rag.ErrEmbedding, rag.ErrRetrieval when every
// index fails, synth.ErrGeneration when the model call fails. A NoAnswer
// outcome is a Result, not an error.
func (p *Pipeline) Ask(ctx context.Context, question string) (Result, error) {
	log := logging.FromContext(ctx)

	vec, err := p.fusion.Embed(ctx, question)
	if err != nil {
		return Result{}, err
	}

	if p.cache != nil {
		if m := p.lookup(ctx, question, vec); m != nil {
			log.Info("faq cache hit",
				"matched", m.Question,
				"similarity", m.Similarity,
			)
			return Result{Answer: m.Answer, CacheHit: true}, nil
		}
	}

	passages, err := p.fusion.Search(ctx, vec)
	if err != nil {
		return Result{}, err
	}

	res, err := p.synth.Answer(ctx, question, p.fusion.Assemble(passages))
	if err != nil {
		return Result{}, err
	}
	if res.NoAnswer {
		return Result{NoAnswer: true}, nil
	}

	p.writeBack(ctx, question, res.Text, vec)

	return Result{Answer: res.Text, Sources: sourceLabels(passages)}, nil
}

// Search runs retrieval only and returns the fused passages. Used by
// the search surface, which exposes ranked excerpts without synthesis.
// topK overrides the configured per-index candidate count; values below
// 1 keep the default.
func (p *Pipeline) Search(ctx context.Context, query string, topK int) ([]rag.Passage, error) {
	vec, err := p.fusion.Embed(ctx, query)
	if err != nil {
		return nil, err
	}
	return p.fusion.SearchK(ctx, vec, topK)
}

// lookup consults the cache gate. Any cache error degrades to a miss.
func (p *Pipeline) lookup(ctx context.Context, question string, vec []float32) *faqcache.Match {
	m, err := p.cache.Nearest(ctx, vec)
	if err != nil {
		logging.FromContext(ctx).Warn("faq cache lookup failed, treating as miss", "error", err)
		return nil
	}
	if m == nil || !faqcache.Accepts(m.Similarity, question, m.Question) {
		return nil
	}
	return m
}

// writeBack persists a freshly synthesized answer. Skipped when the
// cache is disabled or the request context is already cancelled (a
// half-delivered answer must not seed the cache). Failures are logged
// and discarded; duplicates are ignored by the store.
func (p *Pipeline) writeBack(ctx context.Context, question, answer string, vec []float32) {
	if p.cache == nil || ctx.Err() != nil {
		return
	}

	start := time.Now()
	inserted, err := p.cache.Insert(ctx, faqcache.Entry{
		Question:  question,
		Answer:    answer,
		Embedding: vec,
	})
	log := logging.FromContext(ctx)
	if err != nil {
		log.Warn("faq cache write failed", "error", err)
		return
	}
	if inserted {
		log.Debug("faq cache write", "duration", time.Since(start))
	}
}

// sourceLabels returns the distinct Source labels of passages in ranked
// order.
func sourceLabels(passages []rag.Passage) []string {
	var labels []string
	seen := make(map[string]bool)
	for _, p := range passages {
		if p.Source == "" || seen[p.Source] {
			continue
		}
		seen[p.Source] = true
		labels = append(labels, p.Source)
	}
	return labels
}
