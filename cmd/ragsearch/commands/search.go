package commands

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/praewptr/rag-search/internal/logging"
)

// snippetLen caps passage content in search output so a single hit
// never floods the terminal.
const snippetLen = 240

// NewSearchCmd constructs the `ragsearch search` command, which prints
// the fused retrieval results for a query without invoking the LLM.
func NewSearchCmd() *cobra.Command {
	var topK int

	cmd := &cobra.Command{
		Use:   "search [query]",
		Short: "Show the ranked passages retrieval would feed to the model",
		Long: `Run the retrieval half of the pipeline only: embed the query, search
every configured index, and print the fused passages in rank order.
Useful for tuning RETRIEVAL_MIN_SCORE and inspecting what the model
would actually see.

Examples:
  ragsearch search "annual plan refund"
  ragsearch search --config ./ragsearch.yaml "password reset"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			d, err := buildDeps(ctx, log)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}
			defer d.close()

			query := strings.Join(args, " ")

			passages, err := d.pipeline.Search(ctx, query, topK)
			if err != nil {
				return fmt.Errorf("search: %w", err)
			}

			if len(passages) == 0 {
				fmt.Println("No passages above the score threshold.")
				return nil
			}

			for i, p := range passages {
				fmt.Printf("%d. [%s] score=%.3f\n", i+1, p.Source, p.Score)
				fmt.Printf("   %s\n", snippet(p.Content))
			}
			return nil
		},
	}

	cmd.Flags().IntVarP(&topK, "top-k", "k", 0, "Candidates requested per index (0 = default)")

	return cmd
}

// snippet collapses content to a single trimmed line of at most
// snippetLen characters.
func snippet(content string) string {
	s := strings.Join(strings.Fields(content), " ")
	// Cut on a rune boundary so multi-byte scripts are not mangled.
	if r := []rune(s); len(r) > snippetLen {
		s = string(r[:snippetLen]) + "…"
	}
	return s
}
