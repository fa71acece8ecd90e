// Package registry exposes the set of per-book vector collections and their
// identifying metadata. The catalog comes from configuration; the store is
// only consulted for index availability and size.
package registry

import (
	"context"
	"fmt"
	"sort"

	"github.com/AdhiDevX369-work/doc-rag/internal/domain"
	"github.com/AdhiDevX369-work/doc-rag/internal/domain/book"
)

// store is the consumer interface for registry operations (ISP).
type store interface {
	IndexExists(ctx context.Context, index string) (bool, error)
	IndexCount(ctx context.Context, index string) (int, error)
}

// Repo is the collection registry.
type Repo struct {
	store store
	books []book.Book
	byID  map[string]book.Book
}

// New creates a registry over the given catalog. Books are kept sorted by
// identifier so every enumeration is deterministic.
func New(s store, books []book.Book) (*Repo, error) {
	if len(books) == 0 {
		return nil, fmt.Errorf("at least one book is required")
	}

	byID := make(map[string]book.Book, len(books))
	sorted := make([]book.Book, len(books))
	copy(sorted, books)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i].ID() < sorted[j].ID() })

	for _, b := range sorted {
		if _, dup := byID[b.ID()]; dup {
			return nil, fmt.Errorf("duplicate book id %q", b.ID())
		}
		byID[b.ID()] = b
	}

	return &Repo{store: s, books: sorted, byID: byID}, nil
}

// All returns every book in the catalog, sorted by identifier.
func (r *Repo) All() []book.Book {
	out := make([]book.Book, len(r.books))
	copy(out, r.books)
	return out
}

// Get returns a book by identifier.
func (r *Repo) Get(id string) (book.Book, error) {
	b, ok := r.byID[id]
	if !ok {
		return book.Book{}, fmt.Errorf("%w: %s", domain.ErrBookNotFound, id)
	}
	return b, nil
}

// Collections returns every collection identifier, sorted.
func (r *Repo) Collections() []string {
	out := make([]string, len(r.books))
	for i, b := range r.books {
		out[i] = b.ID()
	}
	return out
}

// MatchBook returns the first book (in identifier order) whose signal patterns
// occur in the query text.
func (r *Repo) MatchBook(text string) (book.Book, bool) {
	for _, b := range r.books {
		if b.MatchesQuery(text) {
			return b, true
		}
	}
	return book.Book{}, false
}

// IndexName returns the FT index name for a collection.
func IndexName(collection string) string {
	return domain.KeyPrefix + collection + ":idx"
}

// Available reports which collections have a live index.
func (r *Repo) Available(ctx context.Context) ([]string, error) {
	var out []string
	for _, b := range r.books {
		ok, err := r.store.IndexExists(ctx, IndexName(b.ID()))
		if err != nil {
			return nil, fmt.Errorf("index exists %s: %w", b.ID(), err)
		}
		if ok {
			out = append(out, b.ID())
		}
	}
	return out, nil
}

// ChunkCount returns the total number of chunks across all live collections.
func (r *Repo) ChunkCount(ctx context.Context) (int, error) {
	total := 0
	for _, b := range r.books {
		n, err := r.store.IndexCount(ctx, IndexName(b.ID()))
		if err != nil {
			continue // missing index contributes zero
		}
		total += n
	}
	return total, nil
}
