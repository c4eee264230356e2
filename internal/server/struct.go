package server

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/campuscopilot/copilot-go/internal/copilot"
	"github.com/campuscopilot/copilot-go/internal/rag"
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
	// Logger is the structured logger used by the server and its handlers.
	// If nil, [logging.New] is used.
	Logger *slog.Logger
	// Pingers is the ordered list of dependency probes run by GET /api/ready.
	// If empty, /api/ready returns 200 with no checks (liveness-only mode).
	Pingers []Pinger
	// RateLimit is the sustained request rate allowed per IP on rate-limited
	// endpoints (requests/second). Defaults to 10 if zero.
	RateLimit float64
	// RateBurst is the maximum instantaneous burst per IP. Defaults to 20 if zero.
	RateBurst int
	// APIKey is the Bearer token required on all protected /api/* routes.
	// If empty, authentication is disabled (development mode).
	APIKey string
	// MetricsRegistry receives the server's Prometheus metric registrations.
	// If nil, a fresh registry is created.
	MetricsRegistry prometheus.Registerer
	// MetricsGatherer backs the GET /metrics endpoint. Tests inject the same
	// isolated registry for both fields.
	MetricsGatherer prometheus.Gatherer
}

// resolver is the interface handleChat calls to answer a query.
// *copilot.Copilot satisfies it; tests inject a fake.
type resolver interface {
	// Resolve answers query for the given session and reports the pipeline
	// stage that produced the answer.
	Resolve(ctx context.Context, sessionID, query string) copilot.Result
}

// indexer is the interface the ingest and search handlers call.
// *knowledge.Store satisfies it; tests inject a fake.
type indexer interface {
	// AddText chunks, embeds, and indexes raw text under a source label,
	// returning the number of chunks indexed.
	AddText(ctx context.Context, text, source string) (int, error)
	// Search returns the k nearest indexed chunks for a query.
	Search(ctx context.Context, query string, k int) ([]rag.SearchResult, error)
}

// searchHit is one retrieved chunk returned by GET /api/search.
type searchHit struct {
	// Content is the chunk text.
	Content string `json:"content"`
	// Score is the cosine distance of the chunk from the query; lower
	// means a closer match.
	Score float64 `json:"score"`
	// Source is the document the chunk came from, when known.
	Source string `json:"source,omitempty"`
}

// Server is the HTTP server that exposes the campus assistant.
type Server struct {
	// resolver answers /api/chat queries; set to the copilot in production,
	// overridden by a fake in tests.
	resolver resolver
	// index backs /api/ingest and /api/search.
	index indexer
	// cfg holds the resolved server configuration.
	cfg *Config
	// httpServer is the underlying net/http server.
	httpServer *http.Server
	// log is the structured logger for this server instance.
	log *slog.Logger
	// pingers is the ordered list of dependency probes for GET /api/ready.
	pingers []Pinger
	// metrics holds all Prometheus metrics owned by this server instance.
	metrics *serverMetrics
	// stopRL stops the rate limiter's background eviction goroutine on shutdown.
	stopRL func()
}

// chatRequest is the JSON body for POST /api/chat.
type chatRequest struct {
	// SessionID groups turns into one conversation. Generated when absent.
	SessionID string `json:"sessionId"`
	// Message is the student's natural language query.
	Message string `json:"message"`
}

// chatResponse is the JSON response for POST /api/chat.
type chatResponse struct {
	// SessionID echoes the request session, or the generated one.
	SessionID string `json:"sessionId"`
	// Answer is the resolved reply text.
	Answer string `json:"answer"`
	// Stage names the pipeline tier that produced the answer.
	Stage string `json:"stage"`
	// Sources lists contributing documents for knowledge answers.
	Sources []string `json:"sources,omitempty"`
}

// ingestRequest is the JSON body for POST /api/ingest.
type ingestRequest struct {
	// Content is the raw document text to index.
	Content string `json:"content"`
	// Source labels where the text came from (e.g. "handbook.txt").
	Source string `json:"source"`
}

// ingestResponse is the JSON response for POST /api/ingest.
type ingestResponse struct {
	// Source echoes the request source label.
	Source string `json:"source"`
	// Chunks is the number of chunks indexed.
	Chunks int `json:"chunks"`
}

// searchResponse is the JSON response for GET /api/search.
type searchResponse struct {
	// Query echoes the search query.
	Query string `json:"query"`
	// Results holds the retrieved chunks, best match first.
	Results []searchHit `json:"results"`
}
