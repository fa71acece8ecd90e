package domain

import (
	"errors"
	"fmt"
)

var (
	// ErrBookNotFound signals an unknown book identifier.
	ErrBookNotFound = errors.New("book not found")
	// ErrCollectionUnavailable signals a single collection search failure.
	// Per-collection failures are absorbed by the retrieval orchestrator.
	ErrCollectionUnavailable = errors.New("collection unavailable")
	// ErrRetrievalUnavailable signals that every collection in scope failed.
	// This is the only retrieval failure surfaced to the caller.
	ErrRetrievalUnavailable = errors.New("retrieval unavailable")
	// ErrRerankUnavailable signals a reranking provider failure.
	// Absorbed by the reranker, which degrades to coarse ordering.
	ErrRerankUnavailable = errors.New("rerank unavailable")
	// ErrEmbeddingProviderError signals an embedding provider failure.
	ErrEmbeddingProviderError = errors.New("embedding provider error")
	// ErrGenerationProviderError signals a generation provider failure.
	ErrGenerationProviderError = errors.New("generation provider error")
	// ErrSessionNotFound signals an expired or unknown session.
	ErrSessionNotFound = errors.New("session not found")
	// ErrEmptyScope signals a scope selector that resolves to no collections.
	ErrEmptyScope = errors.New("scope resolves to no collections")
)

// CollectionError wraps ErrCollectionUnavailable with the failing collection name.
type CollectionError struct {
	Collection string
	Err        error
}

func (e *CollectionError) Error() string {
	return fmt.Sprintf("collection %s: %v", e.Collection, e.Err)
}

func (e *CollectionError) Unwrap() error { return ErrCollectionUnavailable }

// NewCollectionError creates a per-collection failure.
func NewCollectionError(collection string, err error) error {
	return &CollectionError{Collection: collection, Err: err}
}
