package commands

import (
	"fmt"
	"strings"

	"github.com/cloudwego/eino/callbacks"
	"github.com/spf13/cobra"

	"github.com/praewptr/rag-search/internal/logging"
	"github.com/praewptr/rag-search/internal/synth"
	"github.com/praewptr/rag-search/internal/tracing"
)

// NewAskCmd constructs the `ragsearch ask` command, which answers a
// single question from the indexed documents and prints the result.
func NewAskCmd() *cobra.Command {
	var showSources bool

	cmd := &cobra.Command{
		Use:   "ask [question]",
		Short: "Ask a question answered from your indexed documents",
		Long: `Ask a natural language question. The answer is grounded strictly in the
configured Qdrant indexes; when the documents do not contain enough
information, ragsearch says so instead of guessing.

Examples:
  ragsearch ask "what is the refund policy for annual plans?"
  ragsearch ask --sources "how do I reset my API token?"
  ragsearch ask "ขั้นตอนการคืนสินค้าเป็นอย่างไร"`,
		Args: cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			// Langfuse tracing is opt-in and a no-op when keys are absent.
			if handler, flush, ok := tracing.SetupFromEnv(); ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
			}

			d, err := buildDeps(ctx, log)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}
			defer d.close()

			question := strings.Join(args, " ")

			res, err := d.pipeline.Ask(ctx, question)
			if err != nil {
				return fmt.Errorf("ask: %w", err)
			}

			if res.NoAnswer {
				fmt.Println(synth.InsufficientInfoMessage(question))
				return nil
			}

			fmt.Println(res.Answer)

			if res.CacheHit {
				fmt.Println("\n(answered from FAQ cache)")
			}
			if showSources && len(res.Sources) > 0 {
				fmt.Println("\nSources:")
				for _, s := range res.Sources {
					fmt.Printf("  - %s\n", s)
				}
			}
			return nil
		},
	}

	cmd.Flags().BoolVar(&showSources, "sources", false, "Print the index labels the answer was drawn from")

	return cmd
}
