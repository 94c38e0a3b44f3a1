package config

import (
	"fmt"
	"os"
	"strings"
)

// IndexSpec describes one searchable Qdrant collection.
type IndexSpec struct {
	// Collection is the Qdrant collection name.
	Collection string
	// Label is the human-facing index name used in logs and result
	// sources. Defaults to the collection name.
	Label string
	// ContentField is the payload field holding passage text.
	// Defaults to "content".
	ContentField string
}

// ParseIndexes parses a SEARCH_INDEXES value: a comma-separated list of
// "collection[:label[:content_field]]" entries. Whitespace around
// entries is ignored; empty entries are rejected.
func ParseIndexes(spec string) ([]IndexSpec, error) {
	var specs []IndexSpec
	for _, entry := range strings.Split(spec, ",") {
		entry = strings.TrimSpace(entry)
		if entry == "" {
			continue
		}
		parts := strings.SplitN(entry, ":", 3)
		s := IndexSpec{Collection: strings.TrimSpace(parts[0])}
		if s.Collection == "" {
			return nil, fmt.Errorf("config: index entry %q has no collection name", entry)
		}
		if len(parts) > 1 {
			s.Label = strings.TrimSpace(parts[1])
		}
		if len(parts) > 2 {
			s.ContentField = strings.TrimSpace(parts[2])
		}
		specs = append(specs, s)
	}
	if len(specs) == 0 {
		return nil, fmt.Errorf("config: SEARCH_INDEXES defines no indexes")
	}
	return specs, nil
}

// IndexesFromEnv reads SEARCH_INDEXES and parses it. A clear error names
// the variable when it is missing, so misconfigured deployments fail at
// startup rather than on the first question.
func IndexesFromEnv() ([]IndexSpec, error) {
	spec := os.Getenv("SEARCH_INDEXES")
	if spec == "" {
		return nil, fmt.Errorf("config: SEARCH_INDEXES is required (comma-separated Qdrant collections)")
	}
	return ParseIndexes(spec)
}
