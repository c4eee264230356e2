package rag

import (
	"context"
	"math"
	"sort"
)

// maxDistance is the largest possible cosine distance. Zero-norm and
// mismatched-length vectors are assigned this value so they sort last
// instead of producing NaN, which would corrupt the sort order.
const maxDistance = 2.0

// MemoryStore is a linear-scan, in-memory VectorStore. It holds every
// document in a flat slice and computes the cosine distance against each one
// at query time.
//
// This is an explicit scale ceiling, not an oversight: the expected corpus is
// hundreds of chunks, where a brute-force scan beats the constant factors of
// a tree or graph index. Do not reuse it for larger corpora — use the Qdrant
// store instead.
//
// Reads are unsynchronized with writes. Concurrent Add/Clear calls must be
// serialized by the caller; once ingestion has finished, concurrent Search
// calls are safe because documents are never mutated in place.
type MemoryStore struct {
	docs []Document
}

// NewMemoryStore constructs an empty MemoryStore.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

// Add appends documents to the store. O(1) per document.
func (s *MemoryStore) Add(_ context.Context, docs []Document) error {
	s.docs = append(s.docs, docs...)
	return nil
}

// Search scans every stored document, scores it by cosine distance from the
// query vector, and returns the k nearest in ascending score order. The sort
// is stable so equidistant documents keep their insertion order.
func (s *MemoryStore) Search(_ context.Context, query []float32, k int) ([]SearchResult, error) {
	if k <= 0 || len(s.docs) == 0 {
		return nil, nil
	}

	results := make([]SearchResult, 0, len(s.docs))
	for _, doc := range s.docs {
		results = append(results, SearchResult{
			ID:       doc.ID,
			Content:  doc.Content,
			Metadata: doc.Metadata,
			Score:    CosineDistance(query, doc.Embedding),
		})
	}

	sort.SliceStable(results, func(i, j int) bool {
		return results[i].Score < results[j].Score
	})

	if len(results) > k {
		results = results[:k]
	}
	return results, nil
}

// Clear removes every document.
func (s *MemoryStore) Clear(_ context.Context) error {
	s.docs = nil
	return nil
}

// Count returns the number of stored documents.
func (s *MemoryStore) Count(_ context.Context) (int, error) {
	return len(s.docs), nil
}

// Close is a no-op for the in-memory store.
func (s *MemoryStore) Close() error { return nil }

// CosineDistance returns 1 - cos(a, b), in [0, 2]. It is symmetric and zero
// for any non-zero vector against itself. Vectors of different lengths or
// with zero norm score maxDistance — returning NaN here would poison the
// search ordering.
func CosineDistance(a, b []float32) float64 {
	if len(a) != len(b) || len(a) == 0 {
		return maxDistance
	}

	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}

	if normA == 0 || normB == 0 {
		return maxDistance
	}

	return 1 - dot/(math.Sqrt(normA)*math.Sqrt(normB))
}
