package pipeline

import (
	"context"

	"github.com/AdhiDevX369-work/doc-rag/internal/domain"
	"github.com/AdhiDevX369-work/doc-rag/internal/domain/chunk"
	domintent "github.com/AdhiDevX369-work/doc-rag/internal/domain/intent"
	"github.com/AdhiDevX369-work/doc-rag/internal/domain/payload"
	"github.com/AdhiDevX369-work/doc-rag/internal/domain/scope"
	"github.com/AdhiDevX369-work/doc-rag/internal/domain/session"
	"github.com/AdhiDevX369-work/doc-rag/internal/usecase/intent"
)

// Classifier resolves a query's intent and scope against the conversation
// state without mutating it.
type Classifier interface {
	Classify(q domain.Query, state *session.State) (intent.Classification, error)
}

// Retriever fans the query out across the collections in scope.
type Retriever interface {
	Retrieve(ctx context.Context, query string, sel scope.Selector, tocBias bool) ([]chunk.Hit, error)
}

// Deduper collapses duplicate hits.
type Deduper interface {
	Dedupe(hits []chunk.Hit, preferTOC bool) []chunk.Hit
}

// Reranker reorders hits and trims to the context budget. The second return
// reports whether the result fell back to coarse order.
type Reranker interface {
	Rerank(ctx context.Context, query string, hits []chunk.Hit, tocBias bool) ([]chunk.Hit, bool)
}

// Assembler builds the final payload and owns all conversation state writes.
type Assembler interface {
	Assemble(hits []chunk.Hit, in domintent.Intent, sel scope.Selector, state *session.State) payload.Payload
}
