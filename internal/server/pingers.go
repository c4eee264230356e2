package server

import (
	"context"
	"fmt"
	"net/http"
	"strings"

	"github.com/qdrant/go-client/qdrant"

	"github.com/campuscopilot/copilot-go/internal/knowledge"
)

// OllamaPinger probes an Ollama host over its HTTP API. It satisfies the
// Pinger interface and is used by GET /api/ready. The probe hits the model
// listing endpoint, which is cheap and does not consume tokens.
type OllamaPinger struct {
	// host is the Ollama base URL (e.g. "http://localhost:11434").
	host string
	// client is the HTTP client used for probes.
	client *http.Client
}

// NewOllamaPinger constructs an OllamaPinger for the given base URL.
func NewOllamaPinger(host string) *OllamaPinger {
	return &OllamaPinger{host: strings.TrimRight(host, "/"), client: http.DefaultClient}
}

// Name returns the backend label used in readiness responses.
func (p *OllamaPinger) Name() string { return "ollama" }

// Ping issues a GET against the Ollama model listing endpoint.
// Returns nil if the host responds with 200, a descriptive error otherwise.
func (p *OllamaPinger) Ping(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.host+"/api/tags", nil)
	if err != nil {
		return fmt.Errorf("build probe request: %w", err)
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("probe failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("probe returned status %d", resp.StatusCode)
	}
	return nil
}

// QdrantPinger probes a Qdrant instance using its native HealthCheck RPC.
// It satisfies the Pinger interface and is used by GET /api/ready.
type QdrantPinger struct {
	// client is the Qdrant gRPC client to probe.
	client *qdrant.Client
}

// NewQdrantPinger constructs a QdrantPinger for the given Qdrant client.
func NewQdrantPinger(client *qdrant.Client) *QdrantPinger {
	return &QdrantPinger{client: client}
}

// Name returns the dependency label used in readiness responses.
func (p *QdrantPinger) Name() string { return "qdrant" }

// Ping calls the Qdrant HealthCheck RPC.
// Returns nil if Qdrant is reachable, or a descriptive error otherwise.
func (p *QdrantPinger) Ping(ctx context.Context) error {
	_, err := p.client.HealthCheck(ctx)
	if err != nil {
		return fmt.Errorf("health check failed: %w", err)
	}
	return nil
}

// KnowledgePinger reports whether the knowledge store finished its one-time
// initialization. A store that never initialized keeps /api/ready at 503 so
// orchestrators hold traffic until seeding completes.
type KnowledgePinger struct {
	store *knowledge.Store
}

// NewKnowledgePinger constructs a KnowledgePinger for the given store.
func NewKnowledgePinger(store *knowledge.Store) *KnowledgePinger {
	return &KnowledgePinger{store: store}
}

// Name returns the dependency label used in readiness responses.
func (p *KnowledgePinger) Name() string { return "knowledge" }

// Ping reports the store's readiness state. It never blocks.
func (p *KnowledgePinger) Ping(ctx context.Context) error {
	if !p.store.Ready() {
		return fmt.Errorf("store not initialized")
	}
	return nil
}
