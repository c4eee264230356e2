// Package knowledge orchestrates the retrieval stack behind the assistant:
// a vector index for ingested documents, a keyword-matched entry list, and
// a fixed fallback pool. It owns the one-shot readiness lifecycle the
// resolver and the server gate on.
package knowledge

import (
	"context"
	"errors"
	"fmt"
	"math/rand/v2"
	"strings"
	"sync"
	"sync/atomic"

	"github.com/campuscopilot/copilot-go/internal/ingestion"
	"github.com/campuscopilot/copilot-go/internal/logging"
	"github.com/campuscopilot/copilot-go/internal/rag"
)

// ErrNotReady is returned by operations that require a successfully
// initialized store.
var ErrNotReady = errors.New("knowledge: store not ready")

// searchK is how many vector hits Query and Lookup consider.
const searchK = 3

// Entry is one curated knowledge item matched by keyword substring.
// Response must be non-empty; AddEntries does not validate.
type Entry struct {
	ID       string            `json:"id,omitempty"`
	Response string            `json:"response"`
	Keywords []string          `json:"keywords,omitempty"`
	Category string            `json:"category,omitempty"`
	Source   string            `json:"source,omitempty"`
	Metadata map[string]string `json:"metadata,omitempty"`
}

// Result is a resolved answer with the de-duplicated document sources that
// produced it. Sources is empty for keyword and fallback answers.
type Result struct {
	Answer  string
	Sources []string
}

// Store is the knowledge orchestrator. The entry list is unsynchronized:
// AddEntries and AddDocument belong to the setup or ingestion path, and
// callers running them concurrently with queries must serialize externally.
type Store struct {
	embedder rag.Embedder
	index    rag.VectorStore
	pipeline *ingestion.Pipeline
	entries  []Entry

	initOnce sync.Once
	ready    atomic.Bool
	readyCh  chan struct{}
}

// NewStore builds an uninitialized Store over the given embedder and vector
// index. Call Initialize before serving queries.
func NewStore(embedder rag.Embedder, index rag.VectorStore, cfg *ingestion.Config) (*Store, error) {
	pipeline, err := ingestion.NewPipeline(embedder, index, cfg)
	if err != nil {
		return nil, fmt.Errorf("knowledge: %w", err)
	}
	return &Store{
		embedder: embedder,
		index:    index,
		pipeline: pipeline,
		readyCh:  make(chan struct{}),
	}, nil
}

// Initialize seeds the default campus entries, verifies the vector index is
// reachable, and opens the readiness gate. It runs at most once: a failed
// first attempt leaves the store permanently unready, and later calls
// return the same outcome without retrying.
func (s *Store) Initialize(ctx context.Context) (err error) {
	called := false
	s.initOnce.Do(func() {
		called = true
		log := logging.FromContext(ctx)
		log.Info("initializing knowledge store")

		if _, err = s.index.Count(ctx); err != nil {
			err = fmt.Errorf("knowledge: vector index unavailable: %w", err)
			log.Error("knowledge store initialization failed", "error", err)
			return
		}

		s.AddEntries(DefaultEntries())
		s.ready.Store(true)
		close(s.readyCh)
		log.Info("knowledge store ready", "entries", len(s.entries))
	})
	if !called && !s.ready.Load() {
		return ErrNotReady
	}
	return err
}

// Ready reports whether Initialize has completed successfully.
func (s *Store) Ready() bool { return s.ready.Load() }

// WaitReady blocks until the store is ready or the context ends.
func (s *Store) WaitReady(ctx context.Context) error {
	select {
	case <-s.readyCh:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("knowledge: waiting for readiness: %w", ctx.Err())
	}
}

// AddEntries appends curated entries to the keyword tier.
func (s *Store) AddEntries(entries []Entry) {
	s.entries = append(s.entries, entries...)
}

// AddDocument reads, chunks, embeds, and indexes one file.
func (s *Store) AddDocument(ctx context.Context, path string) error {
	if !s.ready.Load() {
		return ErrNotReady
	}
	chunks, err := s.pipeline.IngestFile(ctx, path, nil)
	if err != nil {
		return fmt.Errorf("knowledge: add document %s: %w", path, err)
	}
	logging.FromContext(ctx).Info("document indexed", "path", path, "chunks", chunks)
	return nil
}

// AddText chunks, embeds, and indexes raw text under the given source
// label. It returns the number of chunks indexed.
func (s *Store) AddText(ctx context.Context, text, source string) (int, error) {
	if !s.ready.Load() {
		return 0, ErrNotReady
	}
	chunks, err := s.pipeline.IngestText(ctx, text, source)
	if err != nil {
		return 0, fmt.Errorf("knowledge: add text from %s: %w", source, err)
	}
	logging.FromContext(ctx).Info("text indexed", "source", source, "chunks", chunks)
	return chunks, nil
}

// Query resolves a question through three tiers: vector search over
// ingested documents, keyword entries, and finally a random pick from the
// fallback pool. It only fails when the store is unready; retrieval errors
// degrade to the next tier.
func (s *Store) Query(ctx context.Context, query string) (Result, error) {
	if !s.ready.Load() {
		return Result{}, ErrNotReady
	}
	if res, ok := s.Lookup(ctx, query); ok {
		return res, nil
	}
	return Result{Answer: fallbackPool[rand.IntN(len(fallbackPool))]}, nil
}

// Lookup runs the vector and keyword tiers and reports an explicit miss
// instead of falling back, so the resolver can continue to its generative
// stage. An unready store is a miss.
func (s *Store) Lookup(ctx context.Context, query string) (Result, bool) {
	if !s.ready.Load() {
		return Result{}, false
	}

	if results, _ := s.Search(ctx, query, searchK); len(results) > 0 {
		return Result{
			Answer:  results[0].Content,
			Sources: collectSources(results),
		}, true
	}

	lowered := strings.ToLower(query)
	for _, e := range s.entries {
		for _, kw := range e.Keywords {
			if kw != "" && strings.Contains(lowered, strings.ToLower(kw)) {
				return Result{Answer: e.Response}, true
			}
		}
	}
	return Result{}, false
}

// Search embeds the query and returns the k nearest indexed chunks. It
// never fails: an unready store, an embedding problem, or an index error
// all degrade to an empty result with a warning.
func (s *Store) Search(ctx context.Context, query string, k int) ([]rag.SearchResult, error) {
	log := logging.FromContext(ctx)
	if !s.ready.Load() {
		log.Warn("knowledge search on unready store")
		return nil, nil
	}

	vectors, err := s.embedder.Embed(ctx, []string{query})
	if err != nil || len(vectors) == 0 {
		log.Warn("knowledge search: query embedding failed", "error", err)
		return nil, nil
	}

	results, err := s.index.Search(ctx, vectors[0], k)
	if err != nil {
		log.Warn("knowledge search: index search failed", "error", err)
		return nil, nil
	}
	return results, nil
}

// collectSources de-duplicates the source metadata of the hits, keeping
// first-seen order.
func collectSources(results []rag.SearchResult) []string {
	var sources []string
	seen := make(map[string]struct{}, len(results))
	for _, r := range results {
		src := r.Metadata["source"]
		if src == "" {
			continue
		}
		if _, dup := seen[src]; dup {
			continue
		}
		seen[src] = struct{}{}
		sources = append(sources, src)
	}
	return sources
}

// fallbackPool is returned verbatim when every tier misses.
var fallbackPool = []string{
	"I'm sorry, I don't have enough information to answer that question.",
	"I'm not sure about that. Could you provide more details?",
	"I don't have the answer to that question in my knowledge base.",
	"I'm still learning. I don't have information about that yet.",
	"That's a good question. I don't have that information at the moment.",
}
