// Package db defines the storage contract the repositories build on. The
// vector collections themselves are populated by the ingestion pipeline; this
// service only searches and reads them.
package db

import (
	"context"
	"time"
)

// Chunk field names inside the per-book hash documents, as written by ingestion.
const (
	FieldContent = "__content"
	FieldVector  = "__vector"
	FieldPage    = "page"
	FieldSection = "section"
	FieldTOC     = "is_toc"
)

// FieldVectorScore is the score field FT.SEARCH returns for KNN queries.
const FieldVectorScore = "__vector_score"

// KNNQuery is the input for a vector similarity search against one collection.
type KNNQuery struct {
	IndexName    string
	Vector       []float32
	K            int
	TOCOnly      bool // restrict to table-of-contents chunks
	ReturnFields []string
}

// SearchResult is the output of a search operation.
type SearchResult struct {
	Total   int
	Entries []SearchEntry
}

// SearchEntry is a single document hit from a search.
type SearchEntry struct {
	Key    string
	Score  float64
	Fields map[string]string
}

// Store is the full storage contract.
type Store interface {
	// SearchKNN runs a vector similarity search on one index. Results are
	// ordered by ascending distance (descending similarity).
	SearchKNN(ctx context.Context, q *KNNQuery) (*SearchResult, error)

	// IndexExists reports whether an FT index is present.
	IndexExists(ctx context.Context, index string) (bool, error)

	// IndexCount returns the number of documents in an index.
	IndexCount(ctx context.Context, index string) (int, error)

	// Get retrieves a value by key. Returns ErrKeyNotFound when absent.
	Get(ctx context.Context, key string) ([]byte, error)

	// SetWithTTL stores a value with an expiration.
	SetWithTTL(ctx context.Context, key string, value []byte, ttl time.Duration) error

	// IncrBy atomically increments a counter key.
	IncrBy(ctx context.Context, key string, val int64) (int64, error)

	// Ping checks connectivity.
	Ping(ctx context.Context) error

	// WaitForReady polls until the store responds or the timeout expires.
	WaitForReady(ctx context.Context, timeout time.Duration) error

	// Close shuts down the client.
	Close()
}
