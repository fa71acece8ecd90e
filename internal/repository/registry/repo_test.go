package registry

import (
	"context"
	"errors"
	"testing"

	"github.com/AdhiDevX369-work/doc-rag/internal/domain"
	"github.com/AdhiDevX369-work/doc-rag/internal/domain/book"
)

// --- Mocks ---

type mockStore struct {
	existing map[string]bool
	counts   map[string]int
	err      error
}

func (m *mockStore) IndexExists(_ context.Context, index string) (bool, error) {
	if m.err != nil {
		return false, m.err
	}
	return m.existing[index], nil
}

func (m *mockStore) IndexCount(_ context.Context, index string) (int, error) {
	n, ok := m.counts[index]
	if !ok {
		return 0, errors.New("index not found")
	}
	return n, nil
}

func testBooks(t *testing.T) []book.Book {
	t.Helper()
	alpha, err := book.New("ml-basics", "ML Basics", "Ada Author", "Acme", []string{"ml basics"})
	if err != nil {
		t.Fatal(err)
	}
	beta, err := book.New("ai-engineering", "AI Engineering", "Bea Builder", "Acme", []string{"ai engineering"})
	if err != nil {
		t.Fatal(err)
	}
	return []book.Book{alpha, beta}
}

// --- Tests ---

func TestNew_RejectsEmptyCatalog(t *testing.T) {
	if _, err := New(&mockStore{}, nil); err == nil {
		t.Error("New() with no books succeeded")
	}
}

func TestNew_RejectsDuplicateIDs(t *testing.T) {
	books := testBooks(t)
	if _, err := New(&mockStore{}, append(books, books[0])); err == nil {
		t.Error("New() with duplicate id succeeded")
	}
}

func TestAll_SortedByID(t *testing.T) {
	repo, err := New(&mockStore{}, testBooks(t))
	if err != nil {
		t.Fatal(err)
	}

	all := repo.All()
	if len(all) != 2 {
		t.Fatalf("len(All()) = %d", len(all))
	}
	if all[0].ID() != "ai-engineering" || all[1].ID() != "ml-basics" {
		t.Errorf("All() order = %q, %q", all[0].ID(), all[1].ID())
	}
}

func TestGet(t *testing.T) {
	repo, err := New(&mockStore{}, testBooks(t))
	if err != nil {
		t.Fatal(err)
	}

	b, err := repo.Get("ml-basics")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if b.Title() != "ML Basics" {
		t.Errorf("Title() = %q", b.Title())
	}

	if _, err := repo.Get("unknown"); !errors.Is(err, domain.ErrBookNotFound) {
		t.Errorf("Get(unknown) error = %v, want ErrBookNotFound", err)
	}
}

func TestCollections(t *testing.T) {
	repo, err := New(&mockStore{}, testBooks(t))
	if err != nil {
		t.Fatal(err)
	}

	colls := repo.Collections()
	if len(colls) != 2 || colls[0] != "ai-engineering" || colls[1] != "ml-basics" {
		t.Errorf("Collections() = %v", colls)
	}
}

func TestMatchBook(t *testing.T) {
	repo, err := New(&mockStore{}, testBooks(t))
	if err != nil {
		t.Fatal(err)
	}

	b, ok := repo.MatchBook("tell me about ai engineering practices")
	if !ok || b.ID() != "ai-engineering" {
		t.Errorf("MatchBook() = %v/%v", b.ID(), ok)
	}

	if _, ok := repo.MatchBook("completely unrelated topic"); ok {
		t.Error("MatchBook() matched unrelated text")
	}
}

func TestIndexName(t *testing.T) {
	if got := IndexName("ml-basics"); got != "docrag:ml-basics:idx" {
		t.Errorf("IndexName() = %q", got)
	}
}

func TestAvailable(t *testing.T) {
	store := &mockStore{existing: map[string]bool{"docrag:ml-basics:idx": true}}
	repo, err := New(store, testBooks(t))
	if err != nil {
		t.Fatal(err)
	}

	live, err := repo.Available(context.Background())
	if err != nil {
		t.Fatalf("Available() error = %v", err)
	}
	if len(live) != 1 || live[0] != "ml-basics" {
		t.Errorf("Available() = %v", live)
	}
}

func TestAvailable_StoreError(t *testing.T) {
	store := &mockStore{err: errors.New("connection refused")}
	repo, err := New(store, testBooks(t))
	if err != nil {
		t.Fatal(err)
	}

	if _, err := repo.Available(context.Background()); !errors.Is(err, store.err) {
		t.Errorf("Available() error = %v, want wrapped store error", err)
	}
}

func TestChunkCount_SkipsMissingIndexes(t *testing.T) {
	store := &mockStore{counts: map[string]int{"docrag:ml-basics:idx": 120}}
	repo, err := New(store, testBooks(t))
	if err != nil {
		t.Fatal(err)
	}

	n, err := repo.ChunkCount(context.Background())
	if err != nil {
		t.Fatalf("ChunkCount() error = %v", err)
	}
	if n != 120 {
		t.Errorf("ChunkCount() = %d, want 120", n)
	}
}
