package intent

import "github.com/AdhiDevX369-work/doc-rag/internal/domain/book"

// BookCatalog resolves book signals and enumerates collections.
type BookCatalog interface {
	// MatchBook returns the first book (in identifier order) whose signal
	// patterns occur in the query text.
	MatchBook(text string) (book.Book, bool)

	// Get returns a book by identifier.
	Get(id string) (book.Book, error)

	// Collections returns every collection identifier, sorted.
	Collections() []string
}
