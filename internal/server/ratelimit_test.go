package server

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func Test_RateLimiter_AllowsWithinBurst(t *testing.T) {
	t.Parallel()

	rl, stop := newRateLimiter(1, 3, slog.Default())
	defer stop()
	h := rl.middleware(okHandler)

	for i := range 3 {
		req := httptest.NewRequest(http.MethodPost, "/api/ask", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		h.ServeHTTP(w, req)
		if w.Code != http.StatusOK {
			t.Fatalf("request %d within burst: expected 200, got %d", i, w.Code)
		}
	}
}

func Test_RateLimiter_RejectsBeyondBurst(t *testing.T) {
	t.Parallel()

	rl, stop := newRateLimiter(1, 2, slog.Default())
	defer stop()
	h := rl.middleware(okHandler)

	var last *httptest.ResponseRecorder
	for range 3 {
		req := httptest.NewRequest(http.MethodPost, "/api/ask", nil)
		req.RemoteAddr = "10.0.0.2:1234"
		last = httptest.NewRecorder()
		h.ServeHTTP(last, req)
	}

	if last.Code != http.StatusTooManyRequests {
		t.Errorf("expected 429 after burst exhausted, got %d", last.Code)
	}
	if last.Header().Get("Retry-After") == "" {
		t.Error("expected Retry-After header on 429")
	}
}

func Test_RateLimiter_PerIPIsolation(t *testing.T) {
	t.Parallel()

	rl, stop := newRateLimiter(1, 1, slog.Default())
	defer stop()
	h := rl.middleware(okHandler)

	// Exhaust the first IP's budget.
	req := httptest.NewRequest(http.MethodPost, "/api/ask", nil)
	req.RemoteAddr = "10.0.0.3:1234"
	h.ServeHTTP(httptest.NewRecorder(), req)

	// A different IP still has its own budget.
	req2 := httptest.NewRequest(http.MethodPost, "/api/ask", nil)
	req2.RemoteAddr = "10.0.0.4:1234"
	w := httptest.NewRecorder()
	h.ServeHTTP(w, req2)

	if w.Code != http.StatusOK {
		t.Errorf("second IP should not be limited, got %d", w.Code)
	}
}

func Test_RateLimiter_Eviction(t *testing.T) {
	t.Parallel()

	rl, stop := newRateLimiter(1, 1, slog.Default())
	defer stop()

	rl.getLimiter("10.0.0.5")
	rl.mu.Lock()
	rl.limiters["10.0.0.5"].lastSeen = time.Now().Add(-10 * time.Minute)
	rl.mu.Unlock()

	rl.evict()

	rl.mu.Lock()
	_, exists := rl.limiters["10.0.0.5"]
	rl.mu.Unlock()
	if exists {
		t.Error("stale limiter entry should have been evicted")
	}
}

func Test_ClientIP(t *testing.T) {
	t.Parallel()
	tests := []struct {
		addr string
		want string
	}{
		{"10.0.0.1:1234", "10.0.0.1"},
		{"[::1]:1234", "[::1]"},
		{"noport", "noport"},
	}
	for _, tt := range tests {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.RemoteAddr = tt.addr
		if got := clientIP(req); got != tt.want {
			t.Errorf("clientIP(%q) = %q, want %q", tt.addr, got, tt.want)
		}
	}
}
