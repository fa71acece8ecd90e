package assemble

import "github.com/AdhiDevX369-work/doc-rag/internal/domain/book"

// BookReader resolves catalog metadata for provenance lines.
type BookReader interface {
	Get(id string) (book.Book, error)
}
