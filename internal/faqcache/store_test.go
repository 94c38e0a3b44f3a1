package faqcache

import (
	"context"
	"math"
	"testing"
)

// openTestStore opens an in-memory SQLiteStore for use in tests.
func openTestStore(t *testing.T) *SQLiteStore {
	t.Helper()
	s, err := Open(":memory:")
	if err != nil {
		t.Fatalf("open in-memory store: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func Test_Store_InsertAndNearest(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	ok, err := s.Insert(ctx, Entry{Question: "what is rag?", Answer: "retrieval augmented generation", Embedding: []float32{1, 0, 0}})
	if err != nil {
		t.Fatalf("insert: %v", err)
	}
	if !ok {
		t.Fatal("first insert should report true")
	}
	if _, err := s.Insert(ctx, Entry{Question: "what is qdrant?", Answer: "a vector database", Embedding: []float32{0, 1, 0}}); err != nil {
		t.Fatalf("insert second: %v", err)
	}

	m, err := s.Nearest(ctx, []float32{0.9, 0.1, 0})
	if err != nil {
		t.Fatalf("nearest: %v", err)
	}
	if m == nil {
		t.Fatal("want a match, got nil")
	}
	if m.Question != "what is rag?" {
		t.Errorf("want nearest to be the rag entry, got %q (sim %.3f)", m.Question, m.Similarity)
	}
	if m.Similarity <= 0.9 {
		t.Errorf("similarity too low: %.3f", m.Similarity)
	}
}

func Test_Store_DuplicateQuestionIgnored(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	e := Entry{Question: "what is rag?", Answer: "first answer", Embedding: []float32{1, 0}}
	if ok, err := s.Insert(ctx, e); err != nil || !ok {
		t.Fatalf("first insert: ok=%v err=%v", ok, err)
	}

	e.Answer = "second answer"
	ok, err := s.Insert(ctx, e)
	if err != nil {
		t.Fatalf("duplicate insert: %v", err)
	}
	if ok {
		t.Error("duplicate insert should report false")
	}

	m, err := s.Nearest(ctx, []float32{1, 0})
	if err != nil {
		t.Fatalf("nearest: %v", err)
	}
	if m.Answer != "first answer" {
		t.Errorf("first cached answer must win, got %q", m.Answer)
	}
}

func Test_Store_EmptyCacheReturnsNil(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)

	m, err := s.Nearest(context.Background(), []float32{1, 0})
	if err != nil {
		t.Fatalf("nearest on empty cache: %v", err)
	}
	if m != nil {
		t.Errorf("want nil match on empty cache, got %+v", m)
	}
}

func Test_Store_EmbeddingRoundTrip(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	vec := []float32{0.1, -2.5, 3.75, 0}
	if _, err := s.Insert(ctx, Entry{Question: "q", Answer: "a", Embedding: vec}); err != nil {
		t.Fatalf("insert: %v", err)
	}

	m, err := s.Nearest(ctx, vec)
	if err != nil {
		t.Fatalf("nearest: %v", err)
	}
	if len(m.Embedding) != len(vec) {
		t.Fatalf("want %d dims back, got %d", len(vec), len(m.Embedding))
	}
	for i := range vec {
		if m.Embedding[i] != vec[i] {
			t.Errorf("dim %d: want %v, got %v", i, vec[i], m.Embedding[i])
		}
	}
	if m.Similarity < 0.999 {
		t.Errorf("self-similarity should be ~1.0, got %.4f", m.Similarity)
	}
}

func Test_Store_ListNewestFirst(t *testing.T) {
	t.Parallel()
	s := openTestStore(t)
	ctx := context.Background()

	for _, q := range []string{"a?", "b?", "c?"} {
		if _, err := s.Insert(ctx, Entry{Question: q, Answer: "ans", Embedding: []float32{1}}); err != nil {
			t.Fatalf("insert %q: %v", q, err)
		}
	}

	entries, err := s.List(ctx)
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(entries) != 3 {
		t.Fatalf("want 3 entries, got %d", len(entries))
	}
	for _, e := range entries {
		if e.Answer != "ans" {
			t.Errorf("entry %q: answer not loaded", e.Question)
		}
	}
}

func Test_Cosine(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name string
		a, b []float32
		want float32
	}{
		{"identical", []float32{1, 2, 3}, []float32{1, 2, 3}, 1},
		{"orthogonal", []float32{1, 0}, []float32{0, 1}, 0},
		{"opposite", []float32{1, 0}, []float32{-1, 0}, -1},
		{"length mismatch", []float32{1, 0}, []float32{1, 0, 0}, 0},
		{"zero vector", []float32{0, 0}, []float32{1, 0}, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Cosine(tt.a, tt.b)
			if math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("Cosine(%v, %v) = %v, want %v", tt.a, tt.b, got, tt.want)
			}
		})
	}
}

func Test_Threshold_Buckets(t *testing.T) {
	t.Parallel()

	// 3, 10, and 21 words: one question per threshold bucket.
	short := "what is rag?"
	medium := "how does the retrieval fusion engine rank passages from indexes?"
	long := "can you explain in detail how the fallback cache gate decides whether a previously answered question is similar enough to reuse?"

	tests := []struct {
		name     string
		q, match string
		want     float32
	}{
		{"short vs short", short, short, 0.95},
		{"medium vs medium", medium, medium, 0.90},
		{"long vs long", long, long, 0.85},
		{"short vs long averaged", short, long, 0.90},
		{"empty falls back to default", "", "", thresholdDefault},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			got := Threshold(tt.q, tt.match)
			if math.Abs(float64(got-tt.want)) > 1e-6 {
				t.Errorf("Threshold = %v, want %v", got, tt.want)
			}
		})
	}

	// The acceptance check from the gate's perspective.
	if !Accepts(0.96, medium, medium) {
		t.Error("0.96 should clear the 0.90 medium threshold")
	}
	if Accepts(0.93, short, short) {
		t.Error("0.93 must not clear the 0.95 short threshold")
	}
}
