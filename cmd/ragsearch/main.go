// Command ragsearch is the entry point for the RAG search service.
// It answers questions grounded in Qdrant-indexed document collections,
// either as a one-shot CLI query or as a long-running HTTP server.
package main

import (
	"fmt"
	"os"

	"github.com/praewptr/rag-search/cmd/ragsearch/commands"
)

func main() {
	if err := commands.NewRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
