package server

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/praewptr/rag-search/internal/logging"
	"github.com/praewptr/rag-search/internal/rag"
	"github.com/praewptr/rag-search/internal/synth"
)

// askRequest is the JSON body for POST /api/ask.
type askRequest struct {
	// Question is the user's natural language question.
	Question string `json:"question"`
}

// askResponse is the JSON response for POST /api/ask.
type askResponse struct {
	// Answer is the answer text. On NoAnswer it carries the canned
	// insufficient-information message in the question's language.
	Answer string `json:"answer"`
	// Sources lists the index labels that contributed passages.
	Sources []string `json:"sources,omitempty"`
	// CacheHit is true when the answer came from the FAQ cache.
	CacheHit bool `json:"cacheHit"`
	// NoAnswer is true when the corpus could not answer the question.
	NoAnswer bool `json:"noAnswer"`
}

// maxSearchTopK caps the per-request candidate count a client may ask
// for.
const maxSearchTopK = 20

// searchRequest is the JSON body for POST /api/search.
type searchRequest struct {
	// Query is the search text.
	Query string `json:"query"`
	// TopK optionally overrides the per-index candidate count for this
	// request. Zero or absent keeps the server default.
	TopK int `json:"topK"`
}

// searchPassage is one ranked result in a search response.
type searchPassage struct {
	// Content is the passage text.
	Content string `json:"content"`
	// Score is the similarity score from the index.
	Score float32 `json:"score"`
	// Source is the index label the passage came from.
	Source string `json:"source"`
}

// searchResponse is the JSON response for POST /api/search.
type searchResponse struct {
	// Passages is the fused, ranked result list.
	Passages []searchPassage `json:"passages"`
}

// handleAsk handles POST /api/ask: run the full pipeline and return the
// answer. Outcome classification drives both the HTTP status and the
// metrics label: validation errors are the client's fault (400),
// pipeline errors are upstream failures (502), NoAnswer is a successful
// 200 with the canned message.
func (s *Server) handleAsk(w http.ResponseWriter, r *http.Request) {
	start := time.Now()

	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		s.finishAsk(w, start, outcomeInvalid, http.StatusBadRequest, "invalid request body", nil)
		return
	}
	if strings.TrimSpace(req.Question) == "" {
		s.finishAsk(w, start, outcomeInvalid, http.StatusBadRequest, "question is required", nil)
		return
	}

	res, err := s.pipeline.Ask(r.Context(), req.Question)
	if err != nil {
		log := logging.FromContext(r.Context())
		switch {
		case errors.Is(err, rag.ErrValidation):
			s.finishAsk(w, start, outcomeInvalid, http.StatusBadRequest, "question is required", nil)
		case errors.Is(err, rag.ErrEmbedding), errors.Is(err, rag.ErrRetrieval), errors.Is(err, synth.ErrGeneration):
			log.Error("ask failed", "error", err)
			s.finishAsk(w, start, outcomeError, http.StatusBadGateway, "processing failed", nil)
		default:
			log.Error("ask failed", "error", err)
			s.finishAsk(w, start, outcomeError, http.StatusInternalServerError, "internal error", nil)
		}
		return
	}

	resp := askResponse{
		Answer:   res.Answer,
		Sources:  res.Sources,
		CacheHit: res.CacheHit,
		NoAnswer: res.NoAnswer,
	}
	outcome := outcomeOK
	switch {
	case res.CacheHit:
		outcome = outcomeCacheHit
	case res.NoAnswer:
		outcome = outcomeNoAnswer
		resp.Answer = synth.InsufficientInfoMessage(req.Question)
	}
	s.finishAsk(w, start, outcome, http.StatusOK, "", &resp)
}

// finishAsk records metrics for one /api/ask request and writes either
// an error message or the JSON response.
func (s *Server) finishAsk(w http.ResponseWriter, start time.Time, outcome string, status int, errMsg string, resp *askResponse) {
	s.metrics.askRequestsTotal.WithLabelValues(outcome).Inc()
	s.metrics.askDurationSeconds.WithLabelValues(outcome).Observe(time.Since(start).Seconds())

	if resp == nil {
		http.Error(w, errMsg, status)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(resp)
}

// handleSearch handles POST /api/search: retrieval only, no synthesis.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	var req searchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if strings.TrimSpace(req.Query) == "" {
		http.Error(w, "query is required", http.StatusBadRequest)
		return
	}

	topK := req.TopK
	if topK < 0 || topK > maxSearchTopK {
		http.Error(w, "topK out of range", http.StatusBadRequest)
		return
	}

	passages, err := s.pipeline.Search(r.Context(), req.Query, topK)
	if err != nil {
		if errors.Is(err, rag.ErrValidation) {
			http.Error(w, "query is required", http.StatusBadRequest)
			return
		}
		logging.FromContext(r.Context()).Error("search failed", "error", err)
		http.Error(w, "processing failed", http.StatusBadGateway)
		return
	}

	resp := searchResponse{Passages: make([]searchPassage, 0, len(passages))}
	for _, p := range passages {
		resp.Passages = append(resp.Passages, searchPassage{
			Content: p.Content,
			Score:   p.Score,
			Source:  p.Source,
		})
	}

	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

// handleHealth handles GET /api/health for liveness checks.
func (s *Server) handleHealth(w http.ResponseWriter, _ *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(map[string]string{"status": "ok"})
}
