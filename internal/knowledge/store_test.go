package knowledge

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/campuscopilot/copilot-go/internal/rag"
)

// stubEmbedder returns the same vector for every input, so any indexed
// document is a perfect match for any query.
type stubEmbedder struct {
	dims int
}

func (e *stubEmbedder) Embed(_ context.Context, texts []string) ([][]float32, error) {
	out := make([][]float32, len(texts))
	for i := range texts {
		v := make([]float32, e.dims)
		v[0] = 1
		out[i] = v
	}
	return out, nil
}

func (e *stubEmbedder) Dimensions() int { return e.dims }

// failStore errors on every operation.
type failStore struct{}

var errStore = errors.New("index offline")

func (failStore) Add(context.Context, []rag.Document) error { return errStore }
func (failStore) Search(context.Context, []float32, int) ([]rag.SearchResult, error) {
	return nil, errStore
}
func (failStore) Clear(context.Context) error        { return errStore }
func (failStore) Count(context.Context) (int, error) { return 0, errStore }
func (failStore) Close() error                       { return nil }

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := NewStore(&stubEmbedder{dims: 4}, rag.NewMemoryStore(), nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	return s
}

func newReadyStore(t *testing.T) *Store {
	t.Helper()
	s := newTestStore(t)
	if err := s.Initialize(context.Background()); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	return s
}

func TestStore_UnreadyOperations(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	if _, err := s.Query(ctx, "library hours"); !errors.Is(err, ErrNotReady) {
		t.Fatalf("Query on unready store: err = %v, want ErrNotReady", err)
	}
	if err := s.AddDocument(ctx, "somefile.txt"); !errors.Is(err, ErrNotReady) {
		t.Fatalf("AddDocument on unready store: err = %v, want ErrNotReady", err)
	}
	if results, err := s.Search(ctx, "library", 3); err != nil || len(results) != 0 {
		t.Fatalf("Search on unready store = %v, %v; want empty, nil", results, err)
	}
	if _, ok := s.Lookup(ctx, "library hours"); ok {
		t.Fatal("Lookup on unready store must miss")
	}
	if s.Ready() {
		t.Fatal("store must not report ready before Initialize")
	}
}

func TestStore_Initialize(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx := context.Background()

	if err := s.Initialize(ctx); err != nil {
		t.Fatalf("Initialize: %v", err)
	}
	if !s.Ready() {
		t.Fatal("store must be ready after Initialize")
	}
	if err := s.WaitReady(ctx); err != nil {
		t.Fatalf("WaitReady after Initialize: %v", err)
	}
	// A second call is a no-op on a ready store.
	if err := s.Initialize(ctx); err != nil {
		t.Fatalf("repeated Initialize: %v", err)
	}
}

func TestStore_InitializeFailureIsPermanent(t *testing.T) {
	t.Parallel()

	s, err := NewStore(&stubEmbedder{dims: 4}, failStore{}, nil)
	if err != nil {
		t.Fatalf("NewStore: %v", err)
	}
	ctx := context.Background()

	if err := s.Initialize(ctx); !errors.Is(err, errStore) {
		t.Fatalf("Initialize with offline index: err = %v, want wrapped index error", err)
	}
	if s.Ready() {
		t.Fatal("failed initialization must not mark the store ready")
	}
	if err := s.Initialize(ctx); !errors.Is(err, ErrNotReady) {
		t.Fatalf("second Initialize after failure: err = %v, want ErrNotReady", err)
	}
}

func TestStore_WaitReadyHonorsContext(t *testing.T) {
	t.Parallel()

	s := newTestStore(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if err := s.WaitReady(ctx); !errors.Is(err, context.Canceled) {
		t.Fatalf("WaitReady on canceled context: err = %v", err)
	}
}

func TestQuery_VectorTierBeatsKeywords(t *testing.T) {
	t.Parallel()

	s := newReadyStore(t)
	ctx := context.Background()

	path := filepath.Join(t.TempDir(), "library_notice.txt")
	content := "The library annex stays open until midnight during finals week."
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := s.AddDocument(ctx, path); err != nil {
		t.Fatalf("AddDocument: %v", err)
	}

	// "library" also matches a default keyword entry, but the indexed
	// document must win.
	res, err := s.Query(ctx, "when is the library open")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if res.Answer != content {
		t.Fatalf("answer = %q, want the indexed chunk", res.Answer)
	}
	if len(res.Sources) != 1 || res.Sources[0] != "library_notice.txt" {
		t.Fatalf("sources = %v, want [library_notice.txt]", res.Sources)
	}
}

func TestQuery_KeywordTier(t *testing.T) {
	t.Parallel()

	s := newReadyStore(t)
	res, err := s.Query(context.Background(), "When is the LIBRARY open on weekends?")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if !strings.Contains(res.Answer, "University Library") {
		t.Fatalf("answer = %q, want the library entry", res.Answer)
	}
	if len(res.Sources) != 0 {
		t.Fatalf("keyword answers carry no sources, got %v", res.Sources)
	}
}

func TestQuery_CustomEntries(t *testing.T) {
	t.Parallel()

	s := newReadyStore(t)
	s.AddEntries([]Entry{{
		ID:       "kb-wifi",
		Keywords: []string{"wifi", "wireless"},
		Response: "Connect to CampusNet with your student credentials.",
	}})

	res, err := s.Query(context.Background(), "how do I get on the wifi")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	if res.Answer != "Connect to CampusNet with your student credentials." {
		t.Fatalf("answer = %q", res.Answer)
	}
}

func TestQuery_FallbackPool(t *testing.T) {
	t.Parallel()

	s := newReadyStore(t)
	res, err := s.Query(context.Background(), "zzz unmatchable gibberish")
	if err != nil {
		t.Fatalf("Query: %v", err)
	}
	found := false
	for _, fb := range fallbackPool {
		if res.Answer == fb {
			found = true
			break
		}
	}
	if !found {
		t.Fatalf("answer %q is not from the fallback pool", res.Answer)
	}
	if len(res.Sources) != 0 {
		t.Fatalf("fallback answers carry no sources, got %v", res.Sources)
	}
}

func TestLookup_MissesInsteadOfFallingBack(t *testing.T) {
	t.Parallel()

	s := newReadyStore(t)
	if res, ok := s.Lookup(context.Background(), "zzz unmatchable gibberish"); ok {
		t.Fatalf("Lookup must miss, got %q", res.Answer)
	}
}

func TestLookup_DeduplicatesSources(t *testing.T) {
	t.Parallel()

	s := newReadyStore(t)
	ctx := context.Background()

	dir := t.TempDir()
	for _, name := range []string{"handbook.txt", "handbook2.txt"} {
		path := filepath.Join(dir, name)
		if err := os.WriteFile(path, []byte("Hostel curfew is 10 PM on weekdays."), 0o644); err != nil {
			t.Fatal(err)
		}
		if err := s.AddDocument(ctx, path); err != nil {
			t.Fatalf("AddDocument(%s): %v", name, err)
		}
	}
	// Index one source twice.
	path := filepath.Join(dir, "handbook.txt")
	if err := s.AddDocument(ctx, path); err != nil {
		t.Fatal(err)
	}

	res, ok := s.Lookup(ctx, "what is the hostel curfew")
	if !ok {
		t.Fatal("Lookup missed an indexed document")
	}
	seen := make(map[string]int)
	for _, src := range res.Sources {
		seen[src]++
	}
	if seen["handbook.txt"] != 1 {
		t.Fatalf("sources = %v, want handbook.txt exactly once", res.Sources)
	}
}

func TestSearch_DegradesOnIndexError(t *testing.T) {
	t.Parallel()

	s, err := NewStore(&stubEmbedder{dims: 4}, failStore{}, nil)
	if err != nil {
		t.Fatal(err)
	}
	// Force readiness so the index error path is the one exercised.
	s.ready.Store(true)

	results, err := s.Search(context.Background(), "library", 3)
	if err != nil || len(results) != 0 {
		t.Fatalf("Search with failing index = %v, %v; want empty, nil", results, err)
	}
}
