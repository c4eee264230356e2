// Package rag defines the retrieval components of the knowledge engine:
// embedding, vector storage, and similarity search. Concrete stores
// (in-memory, Qdrant) satisfy these interfaces so the knowledge store never
// depends on a specific backend.
package rag

import "context"

// Document is one indexed unit of knowledge. Documents are immutable after
// insertion and live for the process lifetime; the only removal operation a
// store offers is Clear.
type Document struct {
	// ID uniquely identifies the document within a store.
	ID string

	// Content is the raw chunk text.
	Content string

	// Metadata holds arbitrary key-value pairs. The "source" key names the
	// origin file and is surfaced to users alongside answers.
	Metadata map[string]string

	// Embedding is the document's dense vector. All documents in one store
	// share a fixed dimension.
	Embedding []float32
}

// SearchResult is one similarity-search hit. Score is the cosine distance
// between the query and the document (0 = identical direction, 2 = opposite),
// so results order ascending by Score. The score is informational; no caller
// thresholds on it.
type SearchResult struct {
	ID       string
	Content  string
	Metadata map[string]string
	Score    float64
}

// VectorStore stores embedded documents and answers k-nearest-neighbour
// queries by cosine distance. Implementations are not required to be safe for
// concurrent mutation — callers serialize writes (see MemoryStore).
type VectorStore interface {
	// Add appends documents to the store. Existing documents are never
	// mutated; IDs are assumed unique (the ingestion pipeline generates them).
	Add(ctx context.Context, docs []Document) error

	// Search returns up to k documents ordered ascending by cosine distance
	// from the query vector.
	Search(ctx context.Context, query []float32, k int) ([]SearchResult, error)

	// Clear removes every document. There is no per-document delete.
	Clear(ctx context.Context) error

	// Count returns the number of stored documents.
	Count(ctx context.Context) (int, error)

	// Close releases any resources held by the store.
	Close() error
}

// Embedder converts text into dense vector embeddings of a fixed dimension.
type Embedder interface {
	// Embed converts a batch of texts into their corresponding embeddings.
	// The returned slice is parallel to the input slice.
	Embed(ctx context.Context, texts []string) ([][]float32, error)

	// Dimensions returns the fixed output vector size.
	Dimensions() int
}
