// Package server implements the HTTP server that exposes the campus
// assistant via a small JSON API.
// The server is started by the `copilot serve` CLI command.
package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/campuscopilot/copilot-go/internal/knowledge"
	"github.com/campuscopilot/copilot-go/internal/logging"
)

// defaultSearchK is the number of chunks returned by GET /api/search when
// the request does not specify a limit.
const defaultSearchK = 5

// maxSearchK caps the per-request search limit so one query cannot pull the
// whole index.
const maxSearchK = 20

// New constructs a Server from the provided resolver, index, and config.
func New(res resolver, idx indexer, cfg *Config) (*Server, error) {
	if res == nil {
		return nil, fmt.Errorf("server: resolver must not be nil")
	}
	if idx == nil {
		return nil, fmt.Errorf("server: knowledge index must not be nil")
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
		// WriteTimeout must cover a full generative turn, including the
		// chat-model deadline.
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
	if cfg.Logger == nil {
		cfg.Logger = logging.New()
	}
	if cfg.MetricsRegistry == nil {
		reg := prometheus.NewRegistry()
		cfg.MetricsRegistry = reg
		cfg.MetricsGatherer = reg
	}

	s := &Server{
		resolver: res,
		index:    idx,
		cfg:      cfg,
		log:      cfg.Logger,
		pingers:  cfg.Pingers,
		metrics:  newServerMetrics(cfg.MetricsRegistry),
	}

	if cfg.APIKey == "" {
		s.log.Warn("API key not set, authentication disabled")
	}

	rl, stopRL := newRateLimiter(cfg.RateLimit, cfg.RateBurst, s.log)
	s.stopRL = stopRL

	// Protected routes carry auth and per-IP rate limiting; probes and
	// metrics stay open for orchestration.
	protected := func(h http.HandlerFunc) http.Handler {
		return authMiddleware(cfg.APIKey, rl.middleware(h))
	}

	mux := http.NewServeMux()
	mux.Handle("POST /api/chat", protected(s.handleChat))
	mux.Handle("POST /api/ingest", protected(s.handleIngest))
	mux.Handle("GET /api/search", protected(s.handleSearch))
	mux.HandleFunc("GET /api/health", s.handleHealth)
	mux.HandleFunc("GET /api/ready", s.handleReady)
	mux.Handle("GET /metrics", promhttp.HandlerFor(cfg.MetricsGatherer, promhttp.HandlerOpts{}))

	s.httpServer = &http.Server{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Handler:      requestLogger(s.log, s.instrument(mux)),
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
		s.log.Info("copilot server listening", slog.String("addr", s.httpServer.Addr))
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

// handleChat handles POST /api/chat. It resolves the query through the
// assistant pipeline and returns the answer with its resolution stage.
func (s *Server) handleChat(w http.ResponseWriter, r *http.Request) {
	var req chatRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Message == "" {
		http.Error(w, "message is required", http.StatusBadRequest)
		return
	}
	if req.SessionID == "" {
		req.SessionID = uuid.NewString()
	}

	start := time.Now()
	res := s.resolver.Resolve(r.Context(), req.SessionID, req.Message)
	elapsed := time.Since(start)

	stage := string(res.Stage)
	s.metrics.queriesTotal.WithLabelValues(stage).Inc()
	s.metrics.queryDurationSeconds.WithLabelValues(stage).Observe(elapsed.Seconds())

	writeJSON(w, http.StatusOK, chatResponse{
		SessionID: req.SessionID,
		Answer:    res.Answer,
		Stage:     stage,
		Sources:   res.Sources,
	})
}

// handleIngest handles POST /api/ingest. It indexes raw document text into
// the knowledge store's vector tier.
func (s *Server) handleIngest(w http.ResponseWriter, r *http.Request) {
	var req ingestRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if req.Content == "" {
		http.Error(w, "content is required", http.StatusBadRequest)
		return
	}
	if req.Source == "" {
		req.Source = "api"
	}

	chunks, err := s.index.AddText(r.Context(), req.Content, req.Source)
	if err != nil {
		if errors.Is(err, knowledge.ErrNotReady) {
			http.Error(w, "knowledge store not ready", http.StatusServiceUnavailable)
			return
		}
		logging.FromContext(r.Context()).Error("ingest failed",
			slog.String("source", req.Source),
			slog.Any("error", err),
		)
		http.Error(w, "ingest failed", http.StatusInternalServerError)
		return
	}

	s.metrics.ingestChunksTotal.Add(float64(chunks))

	writeJSON(w, http.StatusOK, ingestResponse{Source: req.Source, Chunks: chunks})
}

// handleSearch handles GET /api/search?q=...&k=N over the vector index.
func (s *Server) handleSearch(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query().Get("q")
	if query == "" {
		http.Error(w, "q is required", http.StatusBadRequest)
		return
	}

	k := defaultSearchK
	if raw := r.URL.Query().Get("k"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			http.Error(w, "k must be a positive integer", http.StatusBadRequest)
			return
		}
		k = min(n, maxSearchK)
	}

	results, err := s.index.Search(r.Context(), query, k)
	if err != nil {
		logging.FromContext(r.Context()).Error("search failed", slog.Any("error", err))
		http.Error(w, "search failed", http.StatusInternalServerError)
		return
	}

	resp := searchResponse{Query: query, Results: []searchHit{}}
	for _, res := range results {
		resp.Results = append(resp.Results, searchHit{
			Content: res.Content,
			Score:   res.Score,
			Source:  res.Metadata["source"],
		})
	}

	writeJSON(w, http.StatusOK, resp)
}

// handleHealth handles GET /api/health for liveness checks.
func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// writeJSON encodes v as the response body with the given status code.
func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Default().Error("response encode error", slog.Any("error", err))
	}
}
