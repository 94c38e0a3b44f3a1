package synth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"testing"
)

// fakeGenerator returns a canned completion and counts calls.
type fakeGenerator struct {
	reply string
	err   error
	calls int
}

func (f *fakeGenerator) Complete(_ context.Context, _, _ string) (string, error) {
	f.calls++
	if f.err != nil {
		return "", f.err
	}
	return f.reply, nil
}

func newTestSynthesizer(t *testing.T, gen *fakeGenerator) *Synthesizer {
	t.Helper()
	s, err := New(gen)
	if err != nil {
		t.Fatalf("new synthesizer: %v", err)
	}
	return s
}

func Test_Synthesizer_EmptyContextSkipsModel(t *testing.T) {
	t.Parallel()
	gen := &fakeGenerator{reply: "should never be used"}
	s := newTestSynthesizer(t, gen)

	for _, ctxText := range []string{"", "   ", "\n\n"} {
		res, err := s.Answer(context.Background(), "what is rag?", ctxText)
		if err != nil {
			t.Fatalf("context %q: %v", ctxText, err)
		}
		if !res.NoAnswer {
			t.Errorf("context %q: want NoAnswer", ctxText)
		}
	}
	if gen.calls != 0 {
		t.Errorf("model called %d times for empty context, want 0", gen.calls)
	}
}

func Test_Synthesizer_SentinelBecomesNoAnswer(t *testing.T) {
	t.Parallel()
	tests := []struct {
		name  string
		reply string
	}{
		{"bare sentinel", "NO_ANSWER_FOUND"},
		{"sentinel with padding", "  NO_ANSWER_FOUND.  "},
		{"sentinel embedded in prose", "Based on the excerpts: NO_ANSWER_FOUND"},
		{"blank completion", "   "},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			s := newTestSynthesizer(t, &fakeGenerator{reply: tt.reply})
			res, err := s.Answer(context.Background(), "q", "[Excerpt 1]\nsome context")
			if err != nil {
				t.Fatalf("answer: %v", err)
			}
			if !res.NoAnswer {
				t.Errorf("reply %q: want NoAnswer", tt.reply)
			}
			if res.Text != "" {
				t.Errorf("reply %q: NoAnswer result must carry no text, got %q", tt.reply, res.Text)
			}
		})
	}
}

func Test_Synthesizer_StripsCitationsFromAnswer(t *testing.T) {
	t.Parallel()
	s := newTestSynthesizer(t, &fakeGenerator{reply: "The answer is X [doc1]. See also [doc23]."})

	res, err := s.Answer(context.Background(), "q", "[Excerpt 1]\nctx")
	if err != nil {
		t.Fatalf("answer: %v", err)
	}
	if res.NoAnswer {
		t.Fatal("unexpected NoAnswer")
	}
	if strings.Contains(res.Text, "[doc") {
		t.Errorf("citations not stripped: %q", res.Text)
	}
}

func Test_Synthesizer_ModelFailureIsErrGeneration(t *testing.T) {
	t.Parallel()
	s := newTestSynthesizer(t, &fakeGenerator{err: fmt.Errorf("401 unauthorized")})

	_, err := s.Answer(context.Background(), "q", "[Excerpt 1]\nctx")
	if !errors.Is(err, ErrGeneration) {
		t.Fatalf("want ErrGeneration, got %v", err)
	}
}

func Test_StripCitations(t *testing.T) {
	t.Parallel()
	tests := []struct {
		in   string
		want string
	}{
		{"The answer is X [doc1]. See also [doc23].", "The answer is X . See also ."},
		{"no markers here", "no markers here"},
		{"[doc1][doc2][doc3]", ""},
		{"keep [docs] and [documentation]", "keep [docs] and [documentation]"},
	}
	for _, tt := range tests {
		if got := StripCitations(tt.in); got != tt.want {
			t.Errorf("StripCitations(%q) = %q, want %q", tt.in, got, tt.want)
		}
		// Idempotence: a second pass changes nothing.
		if got := StripCitations(StripCitations(tt.in)); got != tt.want {
			t.Errorf("StripCitations not idempotent for %q", tt.in)
		}
	}
}

func Test_InsufficientInfoMessage_LanguageSelection(t *testing.T) {
	t.Parallel()

	if msg := InsufficientInfoMessage("What is RAG?"); msg != noAnswerMessageEN {
		t.Errorf("english question: got %q", msg)
	}
	if msg := InsufficientInfoMessage("RAG คืออะไร"); msg != noAnswerMessageTH {
		t.Errorf("thai question: got %q", msg)
	}
	// Mixed-script questions lean Thai.
	if msg := InsufficientInfoMessage("อธิบาย vector search"); msg != noAnswerMessageTH {
		t.Errorf("mixed question: got %q", msg)
	}
}
