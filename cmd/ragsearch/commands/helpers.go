package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/praewptr/rag-search/internal/config"
	"github.com/praewptr/rag-search/internal/embedder"
	"github.com/praewptr/rag-search/internal/faqcache"
	"github.com/praewptr/rag-search/internal/llm"
	"github.com/praewptr/rag-search/internal/pipeline"
	"github.com/praewptr/rag-search/internal/rag"
	"github.com/praewptr/rag-search/internal/server"
	"github.com/praewptr/rag-search/internal/synth"
)

// deps bundles the wired pipeline with everything a command needs to
// run it and tear it down.
type deps struct {
	pipeline *pipeline.Pipeline
	pingers  []server.Pinger
	close    func()
}

// buildDeps wires the full answering pipeline from the environment:
// embedder, Qdrant client and indexes, fusion, LLM generator,
// synthesizer, and the local FAQ cache. The returned close function
// releases the Qdrant connection and the cache database.
func buildDeps(ctx context.Context, log *slog.Logger) (*deps, error) {
	if err := embedder.Validate(log); err != nil {
		return nil, err
	}

	emb, err := embedder.NewFromEnv(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise embedder: %w", err)
	}
	log.Info("embedder initialised", slog.String("backend", embedder.ResolveBackend()))

	gen, err := llm.NewFromEnv(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to initialise model provider: %w", err)
	}

	specs, err := config.IndexesFromEnv()
	if err != nil {
		return nil, err
	}

	qcfg := qdrantConfigFromEnv()
	client, err := rag.NewQdrantClient(qcfg)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to Qdrant at %s:%d: %w", qcfg.Host, qcfg.Port, err)
	}

	indexes := make([]rag.SearchIndex, 0, len(specs))
	pingers := []server.Pinger{server.NewQdrantPinger(client)}
	for _, spec := range specs {
		idx, idxErr := rag.NewQdrantIndex(client, spec.Collection, spec.Label, spec.ContentField)
		if idxErr != nil {
			_ = client.Close()
			return nil, fmt.Errorf("index %q: %w", spec.Collection, idxErr)
		}
		indexes = append(indexes, idx)
		pingers = append(pingers, server.NewIndexPinger(idx))
		log.Info("search index registered",
			slog.String("collection", spec.Collection),
			slog.String("label", idx.Name()),
		)
	}

	fusion, err := rag.NewFusion(emb, indexes, fusionConfigFromEnv())
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	synthesizer, err := synth.New(gen)
	if err != nil {
		_ = client.Close()
		return nil, err
	}

	cache, closeCache := openCache(log)

	d := &deps{
		pipeline: pipeline.New(fusion, synthesizer, cache),
		pingers:  pingers,
		close: func() {
			closeCache()
			_ = client.Close()
		},
	}
	return d, nil
}

// qdrantConfigFromEnv reads the QDRANT_* connection settings.
func qdrantConfigFromEnv() *rag.QdrantConfig {
	return &rag.QdrantConfig{
		Host:   getEnvOrDefault("QDRANT_HOST", "localhost"),
		Port:   getEnvInt("QDRANT_PORT", 6334),
		APIKey: os.Getenv("QDRANT_API_KEY"),
		UseTLS: os.Getenv("QDRANT_TLS") == "true",
	}
}

// fusionConfigFromEnv reads the RETRIEVAL_* tuning knobs. Zero values
// fall through to the fusion defaults.
func fusionConfigFromEnv() rag.FusionConfig {
	return rag.FusionConfig{
		TopK:             getEnvInt("RETRIEVAL_TOP_K", 0),
		MinScore:         getEnvFloat32("RETRIEVAL_MIN_SCORE", 0),
		MaxPassages:      getEnvInt("RETRIEVAL_MAX_PASSAGES", 0),
		MaxContextTokens: getEnvInt("RETRIEVAL_MAX_CONTEXT_TOKENS", 0),
		Dimensions:       embedder.DefaultDimensions(embedder.ResolveBackend()),
		DedupByContent:   os.Getenv("RETRIEVAL_DEDUP") == "true",
	}
}

// openCache opens the local FAQ answer cache. FAQ_CACHE_DB overrides
// the default path (~/.ragsearch/faq.db); set to "disabled" to run
// without caching. Open failures disable the cache rather than abort,
// since answering works without it.
func openCache(log *slog.Logger) (faqcache.Store, func()) {
	noop := func() {}

	dbPath := os.Getenv("FAQ_CACHE_DB")
	if dbPath == "disabled" {
		log.Info("faq cache disabled via FAQ_CACHE_DB=disabled")
		return nil, noop
	}
	if dbPath == "" {
		var err error
		dbPath, err = faqcache.DefaultDBPath()
		if err != nil {
			log.Warn("faq cache: could not resolve default DB path, disabling", slog.Any("error", err))
			return nil, noop
		}
	}

	store, err := faqcache.Open(dbPath)
	if err != nil {
		log.Warn("faq cache: failed to open store, disabling", slog.Any("error", err))
		return nil, noop
	}
	log.Info("faq cache opened", slog.String("path", dbPath))
	return store, func() { _ = store.Close() }
}

func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func getEnvFloat32(key string, fallback float32) float32 {
	if v := os.Getenv(key); v != "" {
		if f, err := strconv.ParseFloat(v, 32); err == nil {
			return float32(f)
		}
	}
	return fallback
}
