package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/praewptr/rag-search/internal/embedder"
	"github.com/praewptr/rag-search/internal/faqcache"
	"github.com/praewptr/rag-search/internal/logging"
)

// NewFaqCmd constructs the `ragsearch faq` command group for managing
// the local FAQ answer cache directly.
func NewFaqCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "faq",
		Short: "Manage the local FAQ answer cache",
		Long: `Inspect and seed the FAQ cache that short-circuits retrieval for
questions that have already been answered. Entries are keyed by exact
question text and matched at ask time by embedding similarity.

The cache lives at ~/.ragsearch/faq.db unless FAQ_CACHE_DB overrides it.`,
	}

	cmd.AddCommand(newFaqAddCmd(), newFaqListCmd())
	return cmd
}

// newFaqAddCmd constructs `ragsearch faq add`, which embeds a question
// and stores it with a curated answer.
func newFaqAddCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "add [question] [answer]",
		Short: "Seed the cache with a question and its curated answer",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			question, answer := args[0], args[1]

			if err := embedder.Validate(log); err != nil {
				return fmt.Errorf("faq add: %w", err)
			}
			emb, err := embedder.NewFromEnv(ctx)
			if err != nil {
				return fmt.Errorf("faq add: failed to initialise embedder: %w", err)
			}

			vecs, err := emb.Embed(ctx, []string{question})
			if err != nil {
				return fmt.Errorf("faq add: failed to embed question: %w", err)
			}

			store, err := openCacheStrict()
			if err != nil {
				return fmt.Errorf("faq add: %w", err)
			}
			defer func() { _ = store.Close() }()

			inserted, err := store.Insert(ctx, faqcache.Entry{
				Question:  question,
				Answer:    answer,
				Embedding: vecs[0],
			})
			if err != nil {
				return fmt.Errorf("faq add: %w", err)
			}
			if !inserted {
				fmt.Println("Question already cached; existing answer kept.")
				return nil
			}
			fmt.Println("Cached.")
			return nil
		},
	}
}

// newFaqListCmd constructs `ragsearch faq list`, which prints every
// cached entry newest-first.
func newFaqListCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List cached questions and answers, newest first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			store, err := openCacheStrict()
			if err != nil {
				return fmt.Errorf("faq list: %w", err)
			}
			defer func() { _ = store.Close() }()

			entries, err := store.List(cmd.Context())
			if err != nil {
				return fmt.Errorf("faq list: %w", err)
			}
			if len(entries) == 0 {
				fmt.Println("FAQ cache is empty.")
				return nil
			}

			for _, e := range entries {
				fmt.Printf("[%s] Q: %s\n", e.CreatedAt.Format("2006-01-02"), e.Question)
				fmt.Printf("           A: %s\n", e.Answer)
			}
			return nil
		},
	}
}

// openCacheStrict opens the FAQ cache and fails hard, unlike the
// best-effort openCache used by the answering path. Direct cache
// administration should not silently run against nothing.
func openCacheStrict() (faqcache.Store, error) {
	dbPath := os.Getenv("FAQ_CACHE_DB")
	if dbPath == "disabled" {
		return nil, fmt.Errorf("faq cache is disabled via FAQ_CACHE_DB=disabled")
	}
	if dbPath == "" {
		var err error
		dbPath, err = faqcache.DefaultDBPath()
		if err != nil {
			return nil, fmt.Errorf("could not resolve cache path: %w", err)
		}
	}
	store, err := faqcache.Open(dbPath)
	if err != nil {
		return nil, fmt.Errorf("could not open cache at %s: %w", dbPath, err)
	}
	return store, nil
}
