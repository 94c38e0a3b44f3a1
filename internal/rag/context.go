package rag

import (
	"fmt"
	"regexp"
	"strings"

	"github.com/praewptr/rag-search/internal/budget"
)

// loneNewline matches a single newline that is not part of a paragraph
// break. Ingestion pipelines hard-wrap extracted text; feeding those
// wraps to the model verbatim degrades answers, so they are flattened
// to spaces while real paragraph breaks are preserved.
var loneNewline = regexp.MustCompile(`([^\n])\n([^\n])`)

// newlineRun matches runs of three or more newlines left over from
// aggressive chunking.
var newlineRun = regexp.MustCompile(`\n{3,}`)

// NormalizeLineBreaks collapses lone newlines inside passage text to
// spaces and squeezes runs of three or more newlines down to a single
// paragraph break. Double newlines pass through unchanged.
func NormalizeLineBreaks(s string) string {
	s = strings.ReplaceAll(s, "\r\n", "\n")
	// Regexp matches cannot overlap, so "a\nb\nc" needs two passes.
	for {
		out := loneNewline.ReplaceAllString(s, "$1 $2")
		if out == s {
			break
		}
		s = out
	}
	return newlineRun.ReplaceAllString(s, "\n\n")
}

// AssembleContext renders fused passages into a single prompt context
// string: one numbered excerpt block per passage, in ranked order, with
// normalized line breaks. Passages that overflow maxTokens are dropped
// lowest-ranked first. An empty input yields an empty string.
func AssembleContext(passages []Passage, maxTokens int) string {
	if len(passages) == 0 {
		return ""
	}

	sections := make([]string, 0, len(passages))
	for i, p := range passages {
		text := strings.TrimSpace(NormalizeLineBreaks(p.Content))
		if text == "" {
			continue
		}
		sections = append(sections, fmt.Sprintf("[Excerpt %d]\n%s", i+1, text))
	}
	if len(sections) == 0 {
		return ""
	}

	keep := budget.FitSections(sections, maxTokens)
	return strings.Join(sections[:keep], "\n\n")
}
