// Package synth turns a question and its retrieved context into a
// grounded answer. The model is instructed to answer strictly from the
// supplied excerpts and to emit a fixed sentinel when they are
// insufficient; the sentinel is converted into a typed NoAnswer result
// so callers never see it.
package synth

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/praewptr/rag-search/internal/llm"
)

// NoAnswerSentinel is the literal token the model emits when the
// provided context cannot answer the question.
const NoAnswerSentinel = "NO_ANSWER_FOUND"

// ErrGeneration indicates the model call itself failed (transport,
// auth, quota). It is never conflated with a NoAnswer outcome.
var ErrGeneration = errors.New("synth: answer generation failed")

// systemPrompt constrains the model to the retrieved excerpts. The
// sentinel instruction must stay in sync with NoAnswerSentinel.
const systemPrompt = `You are a question answering assistant working over retrieved document excerpts.

Rules:
- Answer using ONLY the information in the provided excerpts. Do not use outside knowledge.
- Answer in the same language as the question.
- Be concise and factual. Do not speculate.
- If the excerpts do not contain enough information to answer, reply with exactly: ` + NoAnswerSentinel

// Result is the outcome of one synthesis call. When NoAnswer is true
// the Text field is empty; callers render a canned message themselves.
type Result struct {
	// Text is the cleaned answer (citations stripped).
	Text string

	// NoAnswer reports that the context could not answer the question.
	NoAnswer bool
}

// Synthesizer generates grounded answers through an llm.Generator.
// Safe for concurrent use.
type Synthesizer struct {
	gen llm.Generator
}

// New constructs a Synthesizer over the given generator.
func New(gen llm.Generator) (*Synthesizer, error) {
	if gen == nil {
		return nil, fmt.Errorf("synth: generator must not be nil")
	}
	return &Synthesizer{gen: gen}, nil
}

// Answer produces a grounded answer for question from contextText.
// An empty context short-circuits to NoAnswer without calling the model.
// A failing model call returns ErrGeneration; a sentinel or blank
// completion returns NoAnswer.
func (s *Synthesizer) Answer(ctx context.Context, question, contextText string) (Result, error) {
	if strings.TrimSpace(contextText) == "" {
		return Result{NoAnswer: true}, nil
	}

	user := fmt.Sprintf("Excerpts:\n\n%s\n\nQuestion: %s", contextText, question)

	raw, err := s.gen.Complete(ctx, systemPrompt, user)
	if err != nil {
		return Result{}, fmt.Errorf("%w: %v", ErrGeneration, err)
	}

	if strings.Contains(raw, NoAnswerSentinel) {
		return Result{NoAnswer: true}, nil
	}

	text := strings.TrimSpace(StripCitations(raw))
	if text == "" {
		return Result{NoAnswer: true}, nil
	}
	return Result{Text: text}, nil
}
