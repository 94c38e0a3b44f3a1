// Package version holds build-time version information for the
// ragsearch binary. The variables are populated at build time:
//
//	go build -ldflags="-X github.com/praewptr/rag-search/internal/version.Version=v0.3.0 \
//	                    -X github.com/praewptr/rag-search/internal/version.Commit=abc1234 \
//	                    -X github.com/praewptr/rag-search/internal/version.BuildDate=2026-01-01"
//
// Without ldflags (e.g. `go run`) the values fall back to readable
// defaults so the binary is always usable.
package version

import "fmt"

// Version is the semantic version of the binary. Defaults to "dev" for
// local builds.
var Version = "dev"

// Commit is the short git SHA the binary was built from.
var Commit = "unknown"

// BuildDate is the UTC date the binary was built (RFC3339).
var BuildDate = "unknown"

// String renders the full version line shown by `ragsearch version`.
func String() string {
	return fmt.Sprintf("ragsearch %s (commit %s, built %s)", Version, Commit, BuildDate)
}
