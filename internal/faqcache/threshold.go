package faqcache

import "strings"

// Word-count buckets for the similarity threshold. Short questions have
// little lexical signal, so near-identical phrasing is required before
// a cached answer may stand in; long questions tolerate more drift.
const (
	thresholdShort   = 0.95 // 0–5 words
	thresholdMedium  = 0.90 // 6–15 words
	thresholdLong    = 0.85 // 16+ words
	thresholdDefault = 0.92 // unclassifiable input
)

// bucketThreshold returns the similarity threshold for one question
// based on its word count.
func bucketThreshold(question string) float32 {
	words := len(strings.Fields(question))
	switch {
	case words == 0:
		return thresholdDefault
	case words <= 5:
		return thresholdShort
	case words <= 15:
		return thresholdMedium
	default:
		return thresholdLong
	}
}

// Threshold returns the effective similarity threshold for accepting a
// cached answer: the mean of the incoming question's bucket and the
// matched question's bucket. Averaging keeps a short cached question
// from being served for a long paraphrase too eagerly, and vice versa.
func Threshold(question, matched string) float32 {
	return (bucketThreshold(question) + bucketThreshold(matched)) / 2
}

// Accepts reports whether a match at the given similarity qualifies as
// a cache hit for the question pair.
func Accepts(similarity float32, question, matched string) bool {
	return similarity >= Threshold(question, matched)
}
