// Package commands defines all Cobra CLI commands for the ragsearch binary.
package commands

import (
	"github.com/spf13/cobra"

	"github.com/praewptr/rag-search/internal/audit"
	"github.com/praewptr/rag-search/internal/config"
	"github.com/praewptr/rag-search/internal/logging"
)

// configPath holds the --config flag value for YAML config file override.
var configPath string

// loadedConfigPath stores the resolved config file path for audit logging.
var loadedConfigPath string

// NewRootCmd constructs the root Cobra command that all subcommands attach to.
func NewRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "ragsearch",
		Short: "ragsearch — grounded question answering over your document indexes",
		Long: `ragsearch answers natural language questions using only the content of
your Qdrant document collections. Questions are embedded once, searched
across every configured index concurrently, and answered by an LLM that
is restricted to the retrieved excerpts. Answered questions are cached
locally so repeat questions skip retrieval entirely.

Model and embedding providers are selected via the MODEL_PROVIDER and
EMBEDDING_PROVIDER environment variables or a YAML config file
(~/.ragsearch/config.yaml). Indexes are configured via SEARCH_INDEXES.
See 'ragsearch --help' for available commands.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			log := logging.New()

			// Load YAML config (env vars always override YAML values).
			path, err := config.Load(configPath, log)
			if err != nil {
				return err
			}
			loadedConfigPath = path

			// Emit structured audit log for every command invocation.
			audit.LogCommandStart(log, cmd.Name(), loadedConfigPath)

			return nil
		},
	}

	root.PersistentFlags().StringVar(&configPath, "config", "", "Path to YAML config file (default: ~/.ragsearch/config.yaml)")

	root.AddCommand(
		NewAskCmd(),
		NewSearchCmd(),
		NewFaqCmd(),
		NewServeCmd(),
		NewVersionCmd(),
	)

	return root
}
