package health

import "context"

// StorePinger checks the vector store connection.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// EmbeddingChecker checks embedding provider availability.
type EmbeddingChecker interface {
	HealthCheck(ctx context.Context) error
}

// CollectionChecker reports which book collections have a searchable index.
type CollectionChecker interface {
	Collections() []string
	Available(ctx context.Context) ([]string, error)
}
