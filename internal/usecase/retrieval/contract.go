package retrieval

import (
	"context"

	"github.com/AdhiDevX369-work/doc-rag/internal/domain"
	"github.com/AdhiDevX369-work/doc-rag/internal/domain/chunk"
)

// SearchRepository runs a KNN search against one book collection.
type SearchRepository interface {
	Search(ctx context.Context, collection string, vector []float32, k int, tocOnly bool) ([]chunk.Hit, error)
}

// Embedder turns the query text into a vector.
type Embedder interface {
	Embed(ctx context.Context, text string) (domain.EmbeddingResult, error)
}
