// Package embedder provides the embedding backends used by the knowledge
// engine. The default backend asks the configured chat model for a vector
// through a plain prompt; a native Ollama /api/embed client is available for
// deployments that run a real embedding model.
package embedder

import (
	"context"
	"log/slog"
	"math/rand"
	"strconv"
	"strings"
	"sync/atomic"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"

	"github.com/campuscopilot/copilot-go/internal/logging"
)

// embedInstruction is the fixed system instruction sent with every
// prompt-based embedding request. The model is expected to answer with
// nothing but comma-separated numbers.
const embedInstruction = "Generate a dense vector representation of the following text. " +
	"Return only the comma-separated numbers, nothing else."

// PromptEmbedder derives embeddings by prompting a generative chat model and
// parsing its free-text reply as a comma-separated float vector.
//
// Failure semantics: any transport error, non-numeric reply, or dimension
// mismatch is caught here and replaced by a uniformly-random vector of the
// configured dimension. This keeps ingestion and query paths non-blocking on
// an unreliable external dependency, at the cost of near-random rankings for
// the degraded texts. Every degradation is logged at WARN and counted, so
// the condition is observable; it is never surfaced as an error.
type PromptEmbedder struct {
	// chatModel is the generative backend the vector is requested from.
	chatModel model.BaseChatModel

	// dims is the fixed output vector size.
	dims int

	// degraded counts texts that fell back to a random vector.
	degraded atomic.Int64
}

// NewPromptEmbedder constructs a PromptEmbedder over the given chat model.
// dims defaults to 384 when zero or negative.
func NewPromptEmbedder(chatModel model.BaseChatModel, dims int) *PromptEmbedder {
	if dims <= 0 {
		dims = 384
	}
	return &PromptEmbedder{chatModel: chatModel, dims: dims}
}

// Embed converts each text into an embedding. The returned slice is parallel
// to the input. The error return is always nil — per-text failures degrade
// to random vectors instead (see the type comment).
func (e *PromptEmbedder) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	log := logging.FromContext(ctx)

	vectors := make([][]float32, len(texts))
	for i, text := range texts {
		vec, err := e.embedOne(ctx, text)
		if err != nil {
			log.Warn("embedder: degraded to random vector",
				slog.Int("text_chars", len(text)),
				slog.Any("error", err),
			)
			e.degraded.Add(1)
			vec = e.randomVector()
		}
		vectors[i] = vec
	}
	return vectors, nil
}

// embedOne requests and parses a single vector.
func (e *PromptEmbedder) embedOne(ctx context.Context, text string) ([]float32, error) {
	msgs := []*schema.Message{
		schema.SystemMessage(embedInstruction),
		schema.UserMessage(text),
	}

	resp, err := e.chatModel.Generate(ctx, msgs)
	if err != nil {
		return nil, err
	}
	if resp == nil || strings.TrimSpace(resp.Content) == "" {
		return nil, errEmptyResponse
	}

	return parseVector(resp.Content, e.dims)
}

// randomVector returns a vector with each component drawn independently and
// uniformly from [0, 1).
func (e *PromptEmbedder) randomVector() []float32 {
	vec := make([]float32, e.dims)
	for i := range vec {
		vec[i] = rand.Float32()
	}
	return vec
}

// Dimensions returns the fixed output vector size.
func (e *PromptEmbedder) Dimensions() int { return e.dims }

// DegradedCount reports how many texts have fallen back to a random vector
// since construction. Exposed for telemetry and tests.
func (e *PromptEmbedder) DegradedCount() int64 { return e.degraded.Load() }

// errEmptyResponse marks a model reply with no content.
var errEmptyResponse = parseError("empty model response")

// parseError is a lightweight error string for vector parse failures.
type parseError string

func (e parseError) Error() string { return string(e) }

// parseVector splits a comma-separated numeric reply into a float32 vector
// and checks it against the expected dimension.
func parseVector(content string, dims int) ([]float32, error) {
	parts := strings.Split(strings.TrimSpace(content), ",")
	if len(parts) != dims {
		return nil, parseError("expected " + strconv.Itoa(dims) + " components, got " + strconv.Itoa(len(parts)))
	}

	vec := make([]float32, len(parts))
	for i, p := range parts {
		f, err := strconv.ParseFloat(strings.TrimSpace(p), 32)
		if err != nil {
			return nil, parseError("component " + strconv.Itoa(i) + ": " + err.Error())
		}
		vec[i] = float32(f)
	}
	return vec, nil
}
