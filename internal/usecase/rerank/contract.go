package rerank

import "context"

// Scorer judges how relevant a passage is to a query, in [0, 1].
type Scorer interface {
	Score(ctx context.Context, query, passage string) (float64, error)
}
