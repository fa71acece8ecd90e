package retrieval

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/AdhiDevX369-work/doc-rag/internal/domain"
	"github.com/AdhiDevX369-work/doc-rag/internal/domain/chunk"
	"github.com/AdhiDevX369-work/doc-rag/internal/domain/scope"
)

// --- Mocks ---

type mockEmbedder struct {
	vec    []float32
	err    error
	called int
}

func (m *mockEmbedder) Embed(_ context.Context, _ string) (domain.EmbeddingResult, error) {
	m.called++
	if m.err != nil {
		return domain.EmbeddingResult{}, m.err
	}
	return domain.EmbeddingResult{Embedding: m.vec}, nil
}

type searchCall struct {
	collection string
	tocOnly    bool
}

type mockSearcher struct {
	mu    sync.Mutex
	hits  map[string][]chunk.Hit
	errs  map[string]error
	calls []searchCall
	block chan struct{} // when set, Search waits for ctx
}

func (m *mockSearcher) Search(ctx context.Context, collection string, _ []float32, _ int, tocOnly bool) ([]chunk.Hit, error) {
	m.mu.Lock()
	m.calls = append(m.calls, searchCall{collection: collection, tocOnly: tocOnly})
	m.mu.Unlock()

	if m.block != nil {
		select {
		case <-m.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	if err := m.errs[collection]; err != nil {
		return nil, err
	}
	return m.hits[collection], nil
}

func (m *mockSearcher) callsFor(collection string, tocOnly bool) int {
	m.mu.Lock()
	defer m.mu.Unlock()
	n := 0
	for _, c := range m.calls {
		if c.collection == collection && c.tocOnly == tocOnly {
			n++
		}
	}
	return n
}

func makeHit(t *testing.T, id, book string, score float64, toc bool) chunk.Hit {
	t.Helper()
	c, err := chunk.New(id, book, "text for "+id, 10, "Intro", toc, nil)
	if err != nil {
		t.Fatalf("chunk.New: %v", err)
	}
	return chunk.NewHit(c, score, book, 0)
}

func makeScope(t *testing.T, books ...string) scope.Selector {
	t.Helper()
	sel, err := scope.Books(books)
	if err != nil {
		t.Fatalf("scope.Books: %v", err)
	}
	return sel
}

// --- Tests ---

func TestRetrieve_FanOut(t *testing.T) {
	searcher := &mockSearcher{hits: map[string][]chunk.Hit{
		"book-a": {makeHit(t, "a1", "book-a", 0.9, false)},
		"book-b": {makeHit(t, "b1", "book-b", 0.8, false)},
	}}
	svc := New(&mockEmbedder{vec: []float32{0.1}}, searcher, 4, time.Second)

	hits, err := svc.Retrieve(context.Background(), "query", makeScope(t, "book-a", "book-b"), false)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(hits) != 2 {
		t.Fatalf("expected 2 hits, got %d", len(hits))
	}
	// Sorted collection order, book-a first.
	if hits[0].Chunk().Book() != "book-a" || hits[1].Chunk().Book() != "book-b" {
		t.Errorf("hits out of collection order: %s, %s", hits[0].Chunk().Book(), hits[1].Chunk().Book())
	}
}

func TestRetrieve_EmbedsOnce(t *testing.T) {
	emb := &mockEmbedder{vec: []float32{0.1}}
	searcher := &mockSearcher{hits: map[string][]chunk.Hit{}}
	svc := New(emb, searcher, 4, time.Second)

	if _, err := svc.Retrieve(context.Background(), "query", makeScope(t, "a", "b", "c"), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if emb.called != 1 {
		t.Errorf("embedder called %d times, want 1", emb.called)
	}
}

func TestRetrieve_EmbedFailure(t *testing.T) {
	svc := New(&mockEmbedder{err: errors.New("provider down")}, &mockSearcher{}, 4, time.Second)

	_, err := svc.Retrieve(context.Background(), "query", makeScope(t, "book-a"), false)
	if !errors.Is(err, domain.ErrRetrievalUnavailable) {
		t.Errorf("error = %v, want ErrRetrievalUnavailable", err)
	}
}

func TestRetrieve_PartialFailure(t *testing.T) {
	searcher := &mockSearcher{
		hits: map[string][]chunk.Hit{"book-a": {makeHit(t, "a1", "book-a", 0.9, false)}},
		errs: map[string]error{"book-b": errors.New("index gone")},
	}
	svc := New(&mockEmbedder{vec: []float32{0.1}}, searcher, 4, time.Second)

	hits, err := svc.Retrieve(context.Background(), "query", makeScope(t, "book-a", "book-b"), false)
	if err != nil {
		t.Fatalf("partial failure should not fail the query: %v", err)
	}
	if len(hits) != 1 || hits[0].Chunk().Book() != "book-a" {
		t.Errorf("expected only book-a hits, got %d", len(hits))
	}
}

func TestRetrieve_AllCollectionsFail(t *testing.T) {
	searcher := &mockSearcher{errs: map[string]error{
		"book-a": errors.New("down"),
		"book-b": errors.New("down"),
	}}
	svc := New(&mockEmbedder{vec: []float32{0.1}}, searcher, 4, time.Second)

	_, err := svc.Retrieve(context.Background(), "query", makeScope(t, "book-a", "book-b"), false)
	if !errors.Is(err, domain.ErrRetrievalUnavailable) {
		t.Errorf("error = %v, want ErrRetrievalUnavailable", err)
	}
}

func TestRetrieve_TOCBias(t *testing.T) {
	toc := makeHit(t, "toc1", "book-a", 0.7, true)
	prose := makeHit(t, "p1", "book-a", 0.9, false)
	searcher := &mockSearcher{hits: map[string][]chunk.Hit{"book-a": {prose, toc}}}
	svc := New(&mockEmbedder{vec: []float32{0.1}}, searcher, 4, time.Second)

	hits, err := svc.Retrieve(context.Background(), "query", makeScope(t, "book-a"), true)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if searcher.callsFor("book-a", true) != 1 {
		t.Error("expected a TOC-only search when biased")
	}
	if searcher.callsFor("book-a", false) != 1 {
		t.Error("expected the plain search alongside the TOC search")
	}
	// Both searches returned the same two chunks; the merge keeps each once.
	if len(hits) != 2 {
		t.Errorf("expected 2 distinct hits, got %d", len(hits))
	}
}

func TestRetrieve_NoTOCSearchWithoutBias(t *testing.T) {
	searcher := &mockSearcher{hits: map[string][]chunk.Hit{}}
	svc := New(&mockEmbedder{vec: []float32{0.1}}, searcher, 4, time.Second)

	if _, err := svc.Retrieve(context.Background(), "query", makeScope(t, "book-a"), false); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if searcher.callsFor("book-a", true) != 0 {
		t.Error("unexpected TOC-only search without bias")
	}
}

func TestRetrieve_Cancellation(t *testing.T) {
	searcher := &mockSearcher{block: make(chan struct{})}
	svc := New(&mockEmbedder{vec: []float32{0.1}}, searcher, 4, time.Minute)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := svc.Retrieve(ctx, "query", makeScope(t, "book-a", "book-b"), false)
		done <- err
	}()

	cancel()
	select {
	case err := <-done:
		if !errors.Is(err, context.Canceled) {
			t.Errorf("error = %v, want context.Canceled", err)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("Retrieve did not return after cancellation")
	}
}

func TestRetrieve_PerCollectionTimeout(t *testing.T) {
	searcher := &mockSearcher{
		block: make(chan struct{}),
		hits:  map[string][]chunk.Hit{},
	}
	svc := New(&mockEmbedder{vec: []float32{0.1}}, searcher, 4, 20*time.Millisecond)

	start := time.Now()
	_, err := svc.Retrieve(context.Background(), "query", makeScope(t, "book-a"), false)
	if !errors.Is(err, domain.ErrRetrievalUnavailable) {
		t.Errorf("error = %v, want ErrRetrievalUnavailable", err)
	}
	if time.Since(start) > time.Second {
		t.Error("timeout did not bound the search")
	}
}
