package ingestion

import (
	"context"
	"fmt"
	"strconv"

	"github.com/google/uuid"

	"github.com/campuscopilot/copilot-go/internal/rag"
)

// Config holds the configuration for the ingestion pipeline.
type Config struct {
	// ChunkSize is the maximum number of characters per document chunk.
	// Defaults to 1000 if zero.
	ChunkSize int

	// ChunkOverlap is the number of characters to overlap between consecutive
	// chunks. Defaults to 200 if negative or unset via NewChunker's rules.
	ChunkOverlap int
}

// Pipeline orchestrates the read → chunk → embed → store flow for campus
// documents. It is not safe for concurrent use — callers serialize ingestion.
type Pipeline struct {
	// embedder converts text chunks into dense vector embeddings.
	embedder rag.Embedder

	// store receives the embedded chunks.
	store rag.VectorStore

	// chunker splits document text into overlapping chunks.
	chunker *Chunker
}

// NewPipeline constructs a Pipeline from the provided dependencies and config.
func NewPipeline(embedder rag.Embedder, store rag.VectorStore, cfg *Config) (*Pipeline, error) {
	if embedder == nil {
		return nil, fmt.Errorf("ingestion: embedder must not be nil")
	}
	if store == nil {
		return nil, fmt.Errorf("ingestion: store must not be nil")
	}
	if cfg == nil {
		cfg = &Config{}
	}

	return &Pipeline{
		embedder: embedder,
		store:    store,
		chunker:  NewChunker(cfg.ChunkSize, cfg.ChunkOverlap),
	}, nil
}

// IngestFile reads, chunks, embeds, and stores a single document file.
// Progress is reported via the optional progress callback. Returns the
// number of chunks stored.
func (p *Pipeline) IngestFile(ctx context.Context, path string, progress func(msg string)) (int, error) {
	if progress == nil {
		progress = func(string) {}
	}

	content, source, err := ReadFile(path)
	if err != nil {
		return 0, err
	}
	progress(fmt.Sprintf("read %s (%d chars)", source, len(content)))

	n, err := p.IngestText(ctx, content, source)
	if err != nil {
		return 0, fmt.Errorf("ingestion: %s: %w", source, err)
	}
	progress(fmt.Sprintf("ingested %d chunks from %s", n, source))
	return n, nil
}

// IngestText chunks and embeds pre-flattened text and adds the resulting
// documents to the store under the given source label. Returns the number
// of chunks stored.
func (p *Pipeline) IngestText(ctx context.Context, text, source string) (int, error) {
	chunks := p.chunker.Split(text, source)
	if len(chunks) == 0 {
		return 0, nil
	}

	texts := make([]string, len(chunks))
	for i, c := range chunks {
		texts[i] = c.Content
	}

	embeddings, err := p.embedder.Embed(ctx, texts)
	if err != nil {
		return 0, fmt.Errorf("embedding failed: %w", err)
	}
	if len(embeddings) != len(chunks) {
		return 0, fmt.Errorf("expected %d embeddings, got %d", len(chunks), len(embeddings))
	}

	category := InferCategory(source)
	docs := make([]rag.Document, 0, len(chunks))
	for i, c := range chunks {
		docs = append(docs, rag.Document{
			ID:      uuid.NewString(),
			Content: c.Content,
			Metadata: map[string]string{
				"source":       c.Metadata.Source,
				"category":     category,
				"chunk_index":  strconv.Itoa(c.Metadata.ChunkIndex),
				"total_chunks": strconv.Itoa(c.Metadata.TotalChunks),
			},
			Embedding: embeddings[i],
		})
	}

	if err := p.store.Add(ctx, docs); err != nil {
		return 0, fmt.Errorf("store add failed: %w", err)
	}
	return len(docs), nil
}
