// Package retrieval fans a query out across the collections in scope and
// gathers the raw KNN hits. Per-collection failures are absorbed so a single
// unhealthy index degrades results instead of failing the query.
package retrieval

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AdhiDevX369-work/doc-rag/internal/domain"
	"github.com/AdhiDevX369-work/doc-rag/internal/domain/chunk"
	"github.com/AdhiDevX369-work/doc-rag/internal/domain/scope"
	"github.com/AdhiDevX369-work/doc-rag/internal/logger"
	"github.com/AdhiDevX369-work/doc-rag/internal/metrics"
)

// Service embeds the query once and searches every collection in scope
// concurrently.
type Service struct {
	embedder Embedder
	searcher SearchRepository

	perCollectionK    int
	collectionTimeout time.Duration
}

// New creates a retrieval service. perCollectionK bounds the hits requested
// from each collection; collectionTimeout bounds each individual search.
func New(embedder Embedder, searcher SearchRepository, perCollectionK int, collectionTimeout time.Duration) *Service {
	return &Service{
		embedder:          embedder,
		searcher:          searcher,
		perCollectionK:    perCollectionK,
		collectionTimeout: collectionTimeout,
	}
}

// Retrieve searches all collections in sel for the query text. When tocBias
// is set, each collection additionally gets a search restricted to
// table-of-contents chunks so structural questions surface outline material
// even when prose chunks dominate the vector neighborhood.
//
// Hits are returned grouped by collection in sorted collection order. The
// call fails only when the query cannot be embedded or when every collection
// search fails; partial failures are logged and counted.
func (s *Service) Retrieve(ctx context.Context, query string, sel scope.Selector, tocBias bool) ([]chunk.Hit, error) {
	start := time.Now()
	log := logger.FromContext(ctx)

	emb, err := s.embedder.Embed(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("embed query: %w: %w", domain.ErrRetrievalUnavailable, err)
	}

	collections := sel.Collections()
	perColl := make([][]chunk.Hit, len(collections))
	errs := make([]error, len(collections))

	g, gctx := errgroup.WithContext(ctx)
	for i, coll := range collections {
		g.Go(func() error {
			perColl[i], errs[i] = s.searchCollection(gctx, coll, emb.Embedding, tocBias)
			return nil
		})
	}
	_ = g.Wait()

	if err := ctx.Err(); err != nil {
		return nil, err
	}

	var hits []chunk.Hit
	failed := 0
	for i, coll := range collections {
		if errs[i] != nil {
			failed++
			metrics.CollectionFailuresTotal.WithLabelValues(coll).Inc()
			log.Warn("collection search failed",
				zap.String("collection", coll),
				zap.Error(errs[i]))
			continue
		}
		hits = append(hits, perColl[i]...)
	}

	if failed == len(collections) {
		return nil, fmt.Errorf("all %d collections failed: %w", failed, domain.ErrRetrievalUnavailable)
	}

	metrics.RetrievalDuration.Observe(time.Since(start).Seconds())
	return hits, nil
}

// searchCollection runs the plain KNN search for one collection, plus a
// TOC-only search when biased, merged without duplicates.
func (s *Service) searchCollection(ctx context.Context, collection string, vector []float32, tocBias bool) ([]chunk.Hit, error) {
	cctx, cancel := context.WithTimeout(ctx, s.collectionTimeout)
	defer cancel()

	hits, err := s.searcher.Search(cctx, collection, vector, s.perCollectionK, false)
	if err != nil {
		return nil, domain.NewCollectionError(collection, err)
	}

	if !tocBias {
		return hits, nil
	}

	tocHits, err := s.searcher.Search(cctx, collection, vector, s.perCollectionK, true)
	if err != nil {
		// The plain search succeeded; keep what we have.
		if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
			return nil, domain.NewCollectionError(collection, err)
		}
		return hits, nil
	}
	return mergeHits(tocHits, hits), nil
}

// mergeHits concatenates primary then secondary, dropping secondary hits whose
// chunk already appeared in primary, and keeps score order within the result.
func mergeHits(primary, secondary []chunk.Hit) []chunk.Hit {
	seen := make(map[string]struct{}, len(primary))
	out := make([]chunk.Hit, 0, len(primary)+len(secondary))
	for _, h := range primary {
		seen[h.Chunk().Book()+"/"+h.Chunk().ID()] = struct{}{}
		out = append(out, h)
	}
	for _, h := range secondary {
		key := h.Chunk().Book() + "/" + h.Chunk().ID()
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, h)
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Score() > out[j].Score() })
	return out
}
