// Package search translates per-collection similarity searches into FT.SEARCH
// KNN queries and parses the hits back into domain chunks.
package search

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/AdhiDevX369-work/doc-rag/internal/db"
	"github.com/AdhiDevX369-work/doc-rag/internal/domain"
	"github.com/AdhiDevX369-work/doc-rag/internal/domain/chunk"
	"github.com/AdhiDevX369-work/doc-rag/internal/repository/registry"
)

// store is the consumer interface for search operations (ISP).
type store interface {
	SearchKNN(ctx context.Context, q *db.KNNQuery) (*db.SearchResult, error)
}

// Repo implements the retrieval orchestrator's per-collection search contract.
type Repo struct {
	store store
}

// New creates a search repository.
func New(s store) *Repo {
	return &Repo{store: s}
}

// Search runs a KNN search against one book collection and returns hits in
// descending similarity order, each stamped with the collection and its rank.
// tocOnly restricts the search to table-of-contents chunks.
func (r *Repo) Search(
	ctx context.Context, collection string,
	vector []float32, k int, tocOnly bool,
) ([]chunk.Hit, error) {
	q := &db.KNNQuery{
		IndexName: registry.IndexName(collection),
		Vector:    vector,
		K:         k,
		TOCOnly:   tocOnly,
		ReturnFields: []string{
			db.FieldContent, db.FieldPage, db.FieldSection, db.FieldTOC, db.FieldVectorScore,
		},
	}

	sr, err := r.store.SearchKNN(ctx, q)
	if err != nil {
		return nil, fmt.Errorf("search knn %s: %w", collection, err)
	}

	return parseHits(sr, collection)
}

func parseHits(sr *db.SearchResult, collection string) ([]chunk.Hit, error) {
	if sr == nil || sr.Total == 0 {
		return nil, nil
	}

	prefix := domain.KeyPrefix + collection + ":"
	hits := make([]chunk.Hit, 0, len(sr.Entries))

	for _, entry := range sr.Entries {
		id := strings.TrimPrefix(entry.Key, prefix)

		page := 0
		if p, err := strconv.Atoi(entry.Fields[db.FieldPage]); err == nil {
			page = p
		}
		toc := entry.Fields[db.FieldTOC] == "true" || entry.Fields[db.FieldTOC] == "1"

		c, err := chunk.New(
			id, collection, entry.Fields[db.FieldContent],
			page, entry.Fields[db.FieldSection], toc, nil,
		)
		if err != nil {
			// Malformed document in the index; skip rather than fail the collection.
			continue
		}

		hits = append(hits, chunk.NewHit(c, entry.Score, collection, len(hits)))
	}

	return hits, nil
}
