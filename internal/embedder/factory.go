package embedder

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"

	"github.com/cloudwego/eino/components/model"

	"github.com/campuscopilot/copilot-go/internal/rag"
)

// Default embedding models and dimensions per backend.
const (
	defaultOllamaModel = "nomic-embed-text"

	// defaultPromptDimensions matches the vector size the knowledge base was
	// designed around. Override with EMBEDDING_DIMENSIONS.
	defaultPromptDimensions = 384
	// defaultOllamaDimensions is the output dimension of nomic-embed-text.
	// Other Ollama models may differ — override with EMBEDDING_DIMENSIONS.
	defaultOllamaDimensions = 768
)

// DefaultDimensions returns the default embedding vector size for the given
// backend name. Callers that pre-configure a vector store (e.g. Qdrant
// collection creation) should use this rather than hardcoding a value.
// EMBEDDING_DIMENSIONS always takes precedence when set.
func DefaultDimensions(backend string) int {
	if v := getEnvInt("EMBEDDING_DIMENSIONS", 0); v > 0 {
		return v
	}
	switch backend {
	case "ollama":
		return defaultOllamaDimensions
	default:
		return defaultPromptDimensions
	}
}

// NewFromEnv constructs a rag.Embedder from environment variables.
//
//	EMBEDDING_PROVIDER   = prompt | ollama   (default: prompt)
//	EMBEDDING_MODEL      = embedding model for the ollama backend
//	EMBEDDING_ENDPOINT   = ollama base URL (falls back to OLLAMA_HOST)
//	EMBEDDING_DIMENSIONS = vector size override
//
// The prompt backend piggybacks on chatModel, which must therefore be
// non-nil for it; the ollama backend ignores chatModel entirely.
func NewFromEnv(chatModel model.BaseChatModel) (rag.Embedder, error) {
	backend := getEnvOrDefault("EMBEDDING_PROVIDER", "prompt")

	switch backend {
	case "prompt":
		if chatModel == nil {
			return nil, fmt.Errorf("embedder: prompt backend requires a chat model")
		}
		return NewPromptEmbedder(chatModel, DefaultDimensions(backend)), nil

	case "ollama":
		host := os.Getenv("EMBEDDING_ENDPOINT")
		if host == "" {
			host = getEnvOrDefault("OLLAMA_HOST", "http://localhost:11434")
		}
		return NewOllamaEmbedder(&OllamaConfig{
			Host:       host,
			Model:      getEnvOrDefault("EMBEDDING_MODEL", defaultOllamaModel),
			Dimensions: DefaultDimensions(backend),
		}), nil

	default:
		return nil, fmt.Errorf("embedder: unknown backend %q — valid values: prompt, ollama", backend)
	}
}

// ValidateForRAG performs a pre-flight sanity check of the embedding
// configuration and logs what retrieval quality to expect. It returns an
// error only for configurations that cannot work at all.
func ValidateForRAG(log *slog.Logger) error {
	backend := getEnvOrDefault("EMBEDDING_PROVIDER", "prompt")
	dims := DefaultDimensions(backend)
	if dims <= 0 {
		return fmt.Errorf("embedder: EMBEDDING_DIMENSIONS must be positive, got %d", dims)
	}

	if backend == "prompt" {
		// Chat models are not embedding models. The prompt backend works, but
		// any malformed reply silently becomes a random vector, which makes
		// nearest-neighbour rankings for that text meaningless.
		log.Warn("embedder: prompt backend in use — malformed model replies degrade to random vectors",
			slog.Int("dimensions", dims),
		)
	}

	return nil
}

// getEnvOrDefault returns the value of the named environment variable, or
// fallback if the variable is unset or empty.
func getEnvOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

// getEnvInt returns the integer value of the named environment variable, or
// fallback if the variable is unset, empty, or not parseable.
func getEnvInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return fallback
}
