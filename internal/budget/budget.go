// Package budget provides token budget estimation for assembled retrieval
// context. Because the pipeline supports multiple LLM backends with different
// tokenizers, this package uses a conservative character-based heuristic:
// 1 token ≈ 4 characters (English prose and code). This deliberately
// under-estimates token counts to leave headroom for model-specific overhead.
package budget

const (
	// charsPerToken is the conservative character-to-token ratio used for
	// estimation. 4 chars/token is standard for English and code; using 3
	// would be more aggressive but risks overflowing context windows.
	charsPerToken = 4

	// DefaultMaxContextTokens is the default input context budget in tokens.
	// Conservative enough to fit within 8k-context models while leaving
	// room for the question, prompt scaffolding, and the answer.
	DefaultMaxContextTokens = 6000
)

// Estimate returns a rough token count for s using the character heuristic.
func Estimate(s string) int {
	n := len(s) / charsPerToken
	if n == 0 && len(s) > 0 {
		return 1
	}
	return n
}

// FitSections returns how many leading sections fit within maxTokens,
// charging a small per-section overhead for delimiters. Sections are
// assumed to be ordered by descending importance, so callers drop the
// tail. At least one section is always admitted when any exist, so a
// single oversized passage degrades to a long prompt rather than an
// empty one.
func FitSections(sections []string, maxTokens int) int {
	if maxTokens <= 0 {
		maxTokens = DefaultMaxContextTokens
	}

	total := 0
	for i, s := range sections {
		total += 4 + Estimate(s)
		if total > maxTokens && i > 0 {
			return i
		}
	}
	return len(sections)
}
