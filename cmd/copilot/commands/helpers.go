package commands

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/cloudwego/eino/components/model"

	"github.com/campuscopilot/copilot-go/internal/campus"
	"github.com/campuscopilot/copilot-go/internal/copilot"
	"github.com/campuscopilot/copilot-go/internal/embedder"
	"github.com/campuscopilot/copilot-go/internal/faq"
	"github.com/campuscopilot/copilot-go/internal/ingestion"
	"github.com/campuscopilot/copilot-go/internal/knowledge"
	"github.com/campuscopilot/copilot-go/internal/rag"
	"github.com/campuscopilot/copilot-go/internal/store"
)

// loadCampus resolves the campus snapshot for this invocation.
// CAMPUS_CONTEXT_FILE points at a JSON snapshot; unset falls back to the
// built-in demo institution.
func loadCampus(log *slog.Logger) (*campus.Context, error) {
	path := os.Getenv("CAMPUS_CONTEXT_FILE")
	if path == "" {
		return campus.Default(), nil
	}
	c, err := campus.LoadFile(path)
	if err != nil {
		return nil, err
	}
	log.Info("campus context loaded", slog.String("path", path), slog.String("campus", c.Name))
	return c, nil
}

// buildVectorStore constructs the vector index selected by VECTOR_STORE
// (memory or qdrant, default memory). The returned close function releases
// the backing connection when there is one.
func buildVectorStore(ctx context.Context, log *slog.Logger) (rag.VectorStore, func(), error) {
	backend := getEnvOrDefault("VECTOR_STORE", "memory")

	switch backend {
	case "memory":
		// The memory store pushes write serialization onto the caller; the
		// server ingests and searches concurrently, so lock it here.
		return rag.NewSyncStore(rag.NewMemoryStore()), func() {}, nil

	case "qdrant":
		host := getEnvOrDefault("QDRANT_HOST", "localhost")
		port := getEnvInt("QDRANT_PORT", 6334)
		collection := getEnvOrDefault("QDRANT_COLLECTION", "copilot-docs")
		embBackend := getEnvOrDefault("EMBEDDING_PROVIDER", "prompt")
		vectorSize := uint64(embedder.DefaultDimensions(embBackend)) //nolint:gosec // dimensions are bounded

		qs, err := rag.NewQdrantStore(ctx, &rag.QdrantConfig{
			Host:       host,
			Port:       port,
			Collection: collection,
			VectorSize: vectorSize,
			APIKey:     os.Getenv("QDRANT_API_KEY"),
			UseTLS:     os.Getenv("QDRANT_TLS") == "true",
		})
		if err != nil {
			return nil, nil, fmt.Errorf("connect to Qdrant at %s:%d: %w", host, port, err)
		}
		log.Info("qdrant store ready",
			slog.String("host", host),
			slog.Int("port", port),
			slog.String("collection", collection),
		)
		return qs, func() { _ = qs.Close() }, nil

	default:
		return nil, nil, fmt.Errorf("unknown vector store backend %q (valid: memory, qdrant)", backend)
	}
}

// buildKnowledge wires the embedder and vector index into an initialized
// knowledge store. Chunking parameters come from CHUNK_SIZE/CHUNK_OVERLAP.
func buildKnowledge(ctx context.Context, emb rag.Embedder, idx rag.VectorStore) (*knowledge.Store, error) {
	ks, err := knowledge.NewStore(emb, idx, &ingestion.Config{
		ChunkSize:    getEnvInt("CHUNK_SIZE", 0),
		ChunkOverlap: getEnvInt("CHUNK_OVERLAP", -1),
	})
	if err != nil {
		return nil, err
	}
	if err := ks.Initialize(ctx); err != nil {
		return nil, err
	}
	return ks, nil
}

// assistantStack bundles the wired resolver pipeline. close releases the
// vector store connection when there is one.
type assistantStack struct {
	copilot   *copilot.Copilot
	knowledge *knowledge.Store
	index     rag.VectorStore
	close     func()
}

// buildCopilot assembles the full resolver pipeline around an optional chat
// model. A nil chatModel keeps the FAQ and knowledge tiers working; only the
// generative stage degrades to the apology.
func buildCopilot(ctx context.Context, log *slog.Logger, chatModel model.BaseChatModel, history store.ConversationStore) (*assistantStack, error) {
	c, err := loadCampus(log)
	if err != nil {
		return nil, err
	}

	emb, err := embedder.NewFromEnv(chatModel)
	if err != nil {
		return nil, err
	}

	idx, closeIdx, err := buildVectorStore(ctx, log)
	if err != nil {
		return nil, err
	}

	ks, err := buildKnowledge(ctx, emb, idx)
	if err != nil {
		closeIdx()
		return nil, err
	}

	cop, err := copilot.New(c, faq.NewDefaultMatcher(c), ks, chatModel, &copilot.Options{
		History:           history,
		GenerationTimeout: generationTimeout(log),
	})
	if err != nil {
		closeIdx()
		return nil, err
	}

	return &assistantStack{copilot: cop, knowledge: ks, index: idx, close: closeIdx}, nil
}

// generationTimeout parses GENERATION_TIMEOUT as a Go duration. Zero means
// the resolver's default applies.
func generationTimeout(log *slog.Logger) time.Duration {
	raw := os.Getenv("GENERATION_TIMEOUT")
	if raw == "" {
		return 0
	}
	d, err := time.ParseDuration(raw)
	if err != nil || d <= 0 {
		log.Warn("invalid GENERATION_TIMEOUT, using default", slog.String("value", raw))
		return 0
	}
	return d
}

// openHistory opens the conversation history store. COPILOT_HISTORY_DB
// overrides the default path (~/.copilot/history.db); "disabled" turns
// history off. Failures degrade to no history rather than aborting.
func openHistory(log *slog.Logger) (store.ConversationStore, func()) {
	dbPath := os.Getenv("COPILOT_HISTORY_DB")
	if dbPath == "disabled" {
		log.Info("history: disabled via COPILOT_HISTORY_DB=disabled")
		return nil, func() {}
	}
	if dbPath == "" {
		var err error
		dbPath, err = store.DefaultDBPath()
		if err != nil {
			log.Warn("history: could not resolve default DB path, disabling", slog.Any("error", err))
			return nil, func() {}
		}
	}
	hs, err := store.Open(dbPath)
	if err != nil {
		log.Warn("history: failed to open store, disabling", slog.Any("error", err))
		return nil, func() {}
	}
	log.Info("history: store opened", slog.String("path", dbPath))
	return hs, func() { _ = hs.Close() }
}

// getEnvOrDefault returns the value of the named environment variable, or
// fallback if the variable is unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the named environment variable parsed as an int, or
// fallback if unset or unparsable.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}
