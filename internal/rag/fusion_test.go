package rag

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// fakeEmbedder returns a fixed vector and counts calls.
type fakeEmbedder struct {
	vec   []float32
	err   error
	calls int
}

func (f *fakeEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = f.vec
	}
	return out, nil
}

// fakeIndex returns canned passages or a canned error.
type fakeIndex struct {
	name     string
	passages []Passage
	err      error
	calls    int
	lastTopK int
}

func (f *fakeIndex) Name() string { return f.name }

func (f *fakeIndex) Search(_ context.Context, _ []float32, topK int) ([]Passage, error) {
	f.calls++
	f.lastTopK = topK
	if f.err != nil {
		return nil, f.err
	}
	return f.passages, nil
}

func newTestFusion(t *testing.T, emb *fakeEmbedder, indexes []SearchIndex, cfg FusionConfig) *Fusion {
	t.Helper()
	f, err := NewFusion(emb, indexes, cfg)
	if err != nil {
		t.Fatalf("new fusion: %v", err)
	}
	return f
}

func Test_Fusion_EmptyQuestionRejectedBeforeEmbedding(t *testing.T) {
	t.Parallel()
	emb := &fakeEmbedder{vec: []float32{1, 0}}
	f := newTestFusion(t, emb, []SearchIndex{&fakeIndex{name: "a"}}, FusionConfig{})

	for _, q := range []string{"", "   ", "\n\t"} {
		if _, err := f.Embed(context.Background(), q); !errors.Is(err, ErrValidation) {
			t.Errorf("question %q: want ErrValidation, got %v", q, err)
		}
	}
	if emb.calls != 0 {
		t.Errorf("embedder called %d times for invalid questions, want 0", emb.calls)
	}
}

func Test_Fusion_EmbedFailureWrapped(t *testing.T) {
	t.Parallel()
	emb := &fakeEmbedder{err: fmt.Errorf("connection refused")}
	f := newTestFusion(t, emb, []SearchIndex{&fakeIndex{name: "a"}}, FusionConfig{})

	_, err := f.Embed(context.Background(), "what is rag?")
	if !errors.Is(err, ErrEmbedding) {
		t.Fatalf("want ErrEmbedding, got %v", err)
	}
}

func Test_Fusion_DimensionMismatchRejected(t *testing.T) {
	t.Parallel()
	emb := &fakeEmbedder{vec: []float32{1, 0, 0}}
	f := newTestFusion(t, emb, []SearchIndex{&fakeIndex{name: "a"}}, FusionConfig{Dimensions: 4})

	_, err := f.Embed(context.Background(), "what is rag?")
	if !errors.Is(err, ErrEmbedding) {
		t.Fatalf("want ErrEmbedding for dimension mismatch, got %v", err)
	}
}

func Test_Fusion_TopKOverride(t *testing.T) {
	t.Parallel()
	emb := &fakeEmbedder{vec: []float32{1, 0}}
	idx := &fakeIndex{name: "docs"}
	f := newTestFusion(t, emb, []SearchIndex{idx}, FusionConfig{TopK: 3})

	if _, err := f.SearchK(context.Background(), []float32{1, 0}, 9); err != nil {
		t.Fatalf("search: %v", err)
	}
	if idx.lastTopK != 9 {
		t.Errorf("want topK 9 forwarded, got %d", idx.lastTopK)
	}

	// Zero falls back to the configured default.
	if _, err := f.SearchK(context.Background(), []float32{1, 0}, 0); err != nil {
		t.Fatalf("search: %v", err)
	}
	if idx.lastTopK != 3 {
		t.Errorf("want default topK 3, got %d", idx.lastTopK)
	}
}

func Test_Fusion_RanksFiltersAndTruncates(t *testing.T) {
	t.Parallel()
	emb := &fakeEmbedder{vec: []float32{1, 0}}
	docs := &fakeIndex{name: "docs", passages: []Passage{
		{Content: "high", Score: 0.9},
		{Content: "low", Score: 0.3},
	}}
	faq := &fakeIndex{name: "faq", passages: []Passage{
		{Content: "mid-high", Score: 0.7},
		{Content: "mid", Score: 0.6},
	}}
	f := newTestFusion(t, emb, []SearchIndex{docs, faq}, FusionConfig{MaxPassages: 3})

	got, err := f.Retrieve(context.Background(), "what is rag?")
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}

	want := []struct {
		content string
		score   float32
		source  string
	}{
		{"high", 0.9, "docs"},
		{"mid-high", 0.7, "faq"},
		{"mid", 0.6, "faq"},
	}
	if len(got) != len(want) {
		t.Fatalf("want %d passages, got %d: %+v", len(want), len(got), got)
	}
	for i, w := range want {
		if got[i].Content != w.content || got[i].Score != w.score || got[i].Source != w.source {
			t.Errorf("passage[%d]: want %+v, got %+v", i, w, got[i])
		}
	}
}

func Test_Fusion_PartialIndexFailureTolerated(t *testing.T) {
	t.Parallel()
	emb := &fakeEmbedder{vec: []float32{1, 0}}
	healthy := &fakeIndex{name: "docs", passages: []Passage{{Content: "ok", Score: 0.8}}}
	broken := &fakeIndex{name: "faq", err: fmt.Errorf("grpc unavailable")}
	f := newTestFusion(t, emb, []SearchIndex{healthy, broken}, FusionConfig{})

	got, err := f.Retrieve(context.Background(), "what is rag?")
	if err != nil {
		t.Fatalf("partial failure should not error, got %v", err)
	}
	if len(got) != 1 || got[0].Content != "ok" {
		t.Fatalf("want the healthy index's passage, got %+v", got)
	}
}

func Test_Fusion_AllIndexesFailedReturnsErrRetrieval(t *testing.T) {
	t.Parallel()
	emb := &fakeEmbedder{vec: []float32{1, 0}}
	a := &fakeIndex{name: "a", err: fmt.Errorf("down")}
	b := &fakeIndex{name: "b", err: fmt.Errorf("also down")}
	f := newTestFusion(t, emb, []SearchIndex{a, b}, FusionConfig{})

	_, err := f.Retrieve(context.Background(), "what is rag?")
	if !errors.Is(err, ErrRetrieval) {
		t.Fatalf("want ErrRetrieval, got %v", err)
	}
}

func Test_Fusion_EmptyResultIsNotAnError(t *testing.T) {
	t.Parallel()
	emb := &fakeEmbedder{vec: []float32{1, 0}}
	idx := &fakeIndex{name: "docs", passages: []Passage{{Content: "weak", Score: 0.2}}}
	f := newTestFusion(t, emb, []SearchIndex{idx}, FusionConfig{})

	got, err := f.Retrieve(context.Background(), "what is rag?")
	if err != nil {
		t.Fatalf("below-threshold results should not error, got %v", err)
	}
	if len(got) != 0 {
		t.Fatalf("want no passages above threshold, got %+v", got)
	}
}

func Test_Fusion_DedupByContent(t *testing.T) {
	t.Parallel()
	emb := &fakeEmbedder{vec: []float32{1, 0}}
	a := &fakeIndex{name: "a", passages: []Passage{{Content: "same text", Score: 0.9}}}
	b := &fakeIndex{name: "b", passages: []Passage{{Content: "same text", Score: 0.8}}}

	// Default: both copies survive.
	f := newTestFusion(t, emb, []SearchIndex{a, b}, FusionConfig{})
	got, err := f.Retrieve(context.Background(), "q")
	if err != nil {
		t.Fatalf("retrieve: %v", err)
	}
	if len(got) != 2 {
		t.Fatalf("without dedup want 2 passages, got %d", len(got))
	}

	// With dedup: only the higher-ranked copy survives.
	f = newTestFusion(t, emb, []SearchIndex{a, b}, FusionConfig{DedupByContent: true})
	got, err = f.Retrieve(context.Background(), "q")
	if err != nil {
		t.Fatalf("retrieve with dedup: %v", err)
	}
	if len(got) != 1 || got[0].Source != "a" {
		t.Fatalf("with dedup want only the higher-ranked copy, got %+v", got)
	}
}

func Test_NormalizeLineBreaks(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"lone newline flattened", "wrapped\nline", "wrapped line"},
		{"paragraph break preserved", "para one\n\npara two", "para one\n\npara two"},
		{"consecutive lone newlines", "a\nb\nc", "a b c"},
		{"crlf treated as newline", "wrapped\r\nline", "wrapped line"},
		{"newline runs squeezed", "a\n\n\n\nb", "a\n\nb"},
		{"mixed", "a\nb\n\nc\nd", "a b\n\nc d"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := NormalizeLineBreaks(tt.in); got != tt.want {
				t.Errorf("NormalizeLineBreaks(%q) = %q, want %q", tt.in, got, tt.want)
			}
		})
	}
}

func Test_AssembleContext(t *testing.T) {
	t.Parallel()

	passages := []Passage{
		{Content: "First passage\nwith a wrap.", Score: 0.9},
		{Content: "Second passage.", Score: 0.7},
	}
	got := AssembleContext(passages, 0)

	if !strings.Contains(got, "[Excerpt 1]\nFirst passage with a wrap.") {
		t.Errorf("excerpt 1 missing or unnormalized:\n%s", got)
	}
	if !strings.Contains(got, "[Excerpt 2]\nSecond passage.") {
		t.Errorf("excerpt 2 missing:\n%s", got)
	}
	if strings.Index(got, "[Excerpt 1]") > strings.Index(got, "[Excerpt 2]") {
		t.Errorf("excerpts out of ranked order:\n%s", got)
	}

	if AssembleContext(nil, 0) != "" {
		t.Error("empty passage list should assemble to empty string")
	}
}

func Test_AssembleContext_BudgetDropsTail(t *testing.T) {
	t.Parallel()

	passages := []Passage{
		{Content: strings.Repeat("a", 400), Score: 0.9},
		{Content: strings.Repeat("b", 400), Score: 0.8},
	}
	// 110 tokens fits the first section (~104) but not both.
	got := AssembleContext(passages, 110)

	if !strings.Contains(got, "[Excerpt 1]") {
		t.Errorf("highest-ranked excerpt must survive trimming:\n%s", got)
	}
	if strings.Contains(got, "[Excerpt 2]") {
		t.Errorf("over-budget excerpt should be dropped:\n%s", got)
	}
}
