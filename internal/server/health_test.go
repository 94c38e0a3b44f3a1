package server

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
)

// fakePinger implements Pinger with a canned result.
type fakePinger struct {
	name string
	err  error
}

func (f *fakePinger) Name() string               { return f.name }
func (f *fakePinger) Ping(context.Context) error { return f.err }

func newReadyTestServer(pingers ...Pinger) *Server {
	return &Server{
		cfg:     &Config{Port: 8080},
		log:     slog.Default(),
		pingers: pingers,
		metrics: newServerMetrics(prometheus.NewRegistry()),
	}
}

func getReady(t *testing.T, s *Server) (*httptest.ResponseRecorder, readyResponse) {
	t.Helper()
	req := httptest.NewRequest(http.MethodGet, "/api/ready", nil)
	w := httptest.NewRecorder()
	s.handleReady(w, req)

	var resp readyResponse
	if err := json.NewDecoder(w.Body).Decode(&resp); err != nil {
		t.Fatalf("decode ready response: %v", err)
	}
	return w, resp
}

func TestHandleReady_AllHealthy(t *testing.T) {
	t.Parallel()

	s := newReadyTestServer(
		&fakePinger{name: "qdrant"},
		&fakePinger{name: "index:kb-docs"},
	)

	w, resp := getReady(t, s)
	if w.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", w.Code)
	}
	if !resp.Ready {
		t.Error("expected ready=true")
	}
	if len(resp.Checks) != 2 {
		t.Errorf("want 2 checks, got %d", len(resp.Checks))
	}
}

func TestHandleReady_OneFailing(t *testing.T) {
	t.Parallel()

	s := newReadyTestServer(
		&fakePinger{name: "qdrant"},
		&fakePinger{name: "index:kb-faq", err: fmt.Errorf("collection missing")},
	)

	w, resp := getReady(t, s)
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", w.Code)
	}
	if resp.Ready {
		t.Error("expected ready=false")
	}

	var failing *readyCheck
	for i := range resp.Checks {
		if !resp.Checks[i].OK {
			failing = &resp.Checks[i]
		}
	}
	if failing == nil {
		t.Fatal("expected a failing check")
	}
	if failing.Name != "index:kb-faq" || failing.Error == "" {
		t.Errorf("unexpected failing check: %+v", failing)
	}
}

func TestHandleReady_NoPingersIsHealthy(t *testing.T) {
	t.Parallel()

	s := newReadyTestServer()
	w, resp := getReady(t, s)
	if w.Code != http.StatusOK || !resp.Ready {
		t.Errorf("no pingers should report ready, got %d / %+v", w.Code, resp)
	}
}
