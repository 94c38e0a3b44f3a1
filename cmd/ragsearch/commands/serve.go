package commands

import (
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/cloudwego/eino/callbacks"
	"github.com/spf13/cobra"

	"github.com/praewptr/rag-search/internal/logging"
	"github.com/praewptr/rag-search/internal/server"
	"github.com/praewptr/rag-search/internal/tracing"
)

// NewServeCmd constructs the `ragsearch serve` command, which starts
// the HTTP API server.
func NewServeCmd() *cobra.Command {
	var host string
	var port int

	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the ragsearch HTTP API server",
		Long: `Start the HTTP server exposing the answering pipeline as a REST API:

  POST /api/ask      answer a question from the indexes
  POST /api/search   return fused passages without invoking the LLM
  GET  /api/health   liveness
  GET  /api/ready    readiness (probes Qdrant and every index)
  GET  /metrics      Prometheus metrics

Set RAGSEARCH_API_KEY to require a Bearer token on /api/* routes.

Examples:
  ragsearch serve
  ragsearch serve --port 9090
  MODEL_PROVIDER=azure ragsearch serve`,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			log := logging.New()
			ctx = logging.WithLogger(ctx, log)

			log.Info("serve starting",
				slog.String("provider", os.Getenv("MODEL_PROVIDER")),
				slog.String("indexes", os.Getenv("SEARCH_INDEXES")),
			)

			// Langfuse tracing is opt-in and a no-op when keys are absent.
			handler, flush, ok := tracing.SetupFromEnv()
			if ok {
				callbacks.AppendGlobalHandlers(handler)
				defer flush()
				log.Info("langfuse tracing enabled")
			} else {
				log.Info("langfuse tracing disabled", slog.String("reason", "LANGFUSE_PUBLIC_KEY not set"))
			}

			d, err := buildDeps(ctx, log)
			if err != nil {
				return fmt.Errorf("serve: %w", err)
			}
			defer d.close()

			if !cmd.Flags().Changed("host") {
				host = getEnvOrDefault("SERVER_HOST", host)
			}
			if !cmd.Flags().Changed("port") {
				port = getEnvInt("SERVER_PORT", port)
			}

			srv, err := server.New(d.pipeline, &server.Config{
				Host:    host,
				Port:    port,
				Logger:  log,
				Pingers: d.pingers,
				APIKey:  os.Getenv("RAGSEARCH_API_KEY"),
			})
			if err != nil {
				return fmt.Errorf("serve: failed to create server: %w", err)
			}

			return srv.Start(ctx)
		},
	}

	cmd.Flags().StringVar(&host, "host", "127.0.0.1", "Host address to bind to")
	cmd.Flags().IntVarP(&port, "port", "p", 8080, "TCP port to listen on")

	return cmd
}
