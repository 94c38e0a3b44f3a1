// Package server implements the HTTP server that exposes the question
// answering pipeline as a REST API: POST /api/ask for full answers,
// POST /api/search for retrieval-only results, plus health, readiness,
// and Prometheus metrics endpoints.
// The server is started by the `ragsearch serve` CLI command.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/praewptr/rag-search/internal/logging"
	"github.com/praewptr/rag-search/internal/pipeline"
	"github.com/praewptr/rag-search/internal/rag"
)

// Config holds the HTTP server configuration.
type Config struct {
	// Host is the address to bind to (default: 127.0.0.1).
	Host string
	// Port is the TCP port to listen on (default: 8080).
	Port int
	// ReadTimeout is the maximum duration for reading the request.
	ReadTimeout time.Duration
	// WriteTimeout is the maximum duration for writing the response.
	WriteTimeout time.Duration
	// ShutdownTimeout is the maximum duration for a graceful shutdown.
	ShutdownTimeout time.Duration
	// Logger is the structured logger used by the server and its
	// handlers. If nil, [logging.New] is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by
	// GET /api/ready. If empty, /api/ready returns 200 with no checks.
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on
	// rate-limited endpoints (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to
	// 20 if zero.
	RateBurst int
	// APIKey is the Bearer token required on all protected /api/*
	// routes. If empty, authentication is disabled (development mode).
	APIKey string
	// Registry is the Prometheus registry to register metrics into.
	// If nil a new registry (with Go runtime collectors) is created.
	Registry *prometheus.Registry
}

// answerer is the interface the handlers call into. *pipeline.Pipeline
// satisfies it; tests inject a fake.
type answerer interface {
	Ask(ctx context.Context, question string) (pipeline.Result, error)
	Search(ctx context.Context, query string, topK int) ([]rag.Passage, error)
}

// Server is the HTTP server that wraps the answering pipeline.
type Server struct {
	pipeline   answerer
	cfg        *Config
	httpServer *http.Server
	log        *slog.Logger
	pingers    []Pinger
	metrics    *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on
	// shutdown.
	stopRL func()
}

// New constructs a Server from the provided pipeline and config.
func New(p answerer, cfg *Config) (*Server, error) {
	if p == nil {
		return nil, fmt.Errorf("server: pipeline must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 8080
	}
	if cfg.ReadTimeout == 0 {
		cfg.ReadTimeout = 30 * time.Second
	}
	if cfg.WriteTimeout == 0 {
		// Generation can take a while on slow local models.
		cfg.WriteTimeout = 2 * time.Minute
	}
	if cfg.ShutdownTimeout == 0 {
		cfg.ShutdownTimeout = 10 * time.Second
	}
	if cfg.RateLimit == 0 {
		cfg.RateLimit = defaultRateLimit
	}
	if cfg.RateBurst == 0 {
		cfg.RateBurst = defaultRateBurst
	}
	log := cfg.Logger
	if log == nil {
		log = logging.New()
	}
	registry := cfg.Registry
	if registry == nil {
		registry = prometheus.NewRegistry()
		registry.MustRegister(
			collectors.NewGoCollector(),
			collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		)
	}

	s := &Server{
		pipeline: p,
		cfg:      cfg,
		log:      log,
		pingers:  cfg.Pingers,
		metrics:  newServerMetrics(registry),
	}

	rl, stopRL := newRateLimiter(cfg.RateLimit, cfg.RateBurst, log)
	s.stopRL = stopRL

	if cfg.APIKey == "" {
		log.Warn("server: RAGSEARCH_API_KEY not set — API authentication is disabled")
	}

	protected := func(name string, h http.HandlerFunc) http.Handler {
		return s.observe(name, rl.middleware(authMiddleware(cfg.APIKey, h)))
	}

	mux := http.NewServeMux()
	mux.Handle("POST /api/ask", protected("ask", s.handleAsk))
	mux.Handle("POST /api/search", protected("search", s.handleSearch))
	mux.Handle("GET /api/health", s.observe("health", http.HandlerFunc(s.handleHealth)))
	mux.Handle("GET /api/ready", s.observe("ready", http.HandlerFunc(s.handleReady)))
	mux.Handle("GET /metrics", s.observe("metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      mux,
		ReadTimeout:  cfg.ReadTimeout,
		WriteTimeout: cfg.WriteTimeout,
	}

	return s, nil
}

// Start begins listening and serving HTTP requests. It blocks until the
// context is cancelled, then performs a graceful shutdown.
func (s *Server) Start(ctx context.Context) error {
	defer s.stopRL()

	errCh := make(chan error, 1)

	go func() {
		s.log.Info("server listening", slog.String("addr", "http://"+s.httpServer.Addr))
		if err := s.httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			errCh <- err
		}
	}()

	select {
	case err := <-errCh:
		return fmt.Errorf("server: listen error: %w", err)
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.cfg.ShutdownTimeout)
		defer cancel()
		if err := s.httpServer.Shutdown(shutdownCtx); err != nil {
			return fmt.Errorf("server: graceful shutdown failed: %w", err)
		}
		return nil
	}
}
