package synth

import "regexp"

// citationMarker matches inline citation tags some Azure-style RAG
// prompts teach the model to emit, e.g. "[doc1]", "[doc23]". They are
// meaningless to end users once passages are re-ranked.
var citationMarker = regexp.MustCompile(`\[doc\d+\]`)

// StripCitations removes [docN] citation markers from text. Idempotent.
func StripCitations(text string) string {
	return citationMarker.ReplaceAllString(text, "")
}

// HasThai reports whether s contains at least one character in the Thai
// Unicode block (U+0E00–U+0E7F).
func HasThai(s string) bool {
	for _, r := range s {
		if r >= 0x0E00 && r <= 0x0E7F {
			return true
		}
	}
	return false
}

// Canned insufficient-information messages, selected by question language.
const (
	noAnswerMessageEN = "I don't have sufficient information in the documents to answer this question."
	noAnswerMessageTH = "ขออภัย ไม่มีข้อมูลเพียงพอในเอกสารสำหรับคำถามนี้"
)

// InsufficientInfoMessage returns the canned "no answer" message in the
// language of the question: Thai when the question contains Thai
// characters, English otherwise. Presentation layers call this; the
// pipeline itself only carries the typed NoAnswer result.
func InsufficientInfoMessage(question string) string {
	if HasThai(question) {
		return noAnswerMessageTH
	}
	return noAnswerMessageEN
}
