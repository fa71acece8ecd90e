// Package rerank reorders deduplicated hits with a relevance judge and trims
// to the context budget. The reranker is strictly best-effort: when it is
// absent or any score fails, the coarse vector order stands.
package rerank

import (
	"context"
	"sort"
	"time"

	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/AdhiDevX369-work/doc-rag/internal/domain/chunk"
	"github.com/AdhiDevX369-work/doc-rag/internal/logger"
	"github.com/AdhiDevX369-work/doc-rag/internal/metrics"
)

// scoreConcurrency caps in-flight judge calls per query.
const scoreConcurrency = 4

// Service reorders hits by judged relevance.
type Service struct {
	scorer   Scorer
	topK     int
	tocBoost float64
	timeout  time.Duration
}

// New creates a reranker. scorer may be nil, in which case every call falls
// back to coarse ordering. tocBoost multiplies the judged score of
// table-of-contents chunks when the query is structural.
func New(scorer Scorer, topK int, tocBoost float64, timeout time.Duration) *Service {
	return &Service{scorer: scorer, topK: topK, tocBoost: tocBoost, timeout: timeout}
}

// Rerank returns at most topK hits in final order, and whether the result is
// degraded (coarse order because the judge was unavailable). Ordering is by
// judged score descending, then coarse score descending, then chunk ID, so
// equal inputs always produce equal output.
func (s *Service) Rerank(ctx context.Context, query string, hits []chunk.Hit, tocBias bool) ([]chunk.Hit, bool) {
	if len(hits) == 0 {
		return hits, false
	}
	if s.scorer == nil {
		return s.coarse(hits), true
	}

	sctx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	scores := make([]float64, len(hits))
	g, gctx := errgroup.WithContext(sctx)
	g.SetLimit(scoreConcurrency)
	for i, h := range hits {
		g.Go(func() error {
			sc, err := s.scorer.Score(gctx, query, h.Chunk().Text())
			if err != nil {
				return err
			}
			scores[i] = sc
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		metrics.RerankFallbacksTotal.Inc()
		logger.FromContext(ctx).Warn("rerank failed, keeping coarse order", zap.Error(err))
		return s.coarse(hits), true
	}

	if tocBias {
		for i, h := range hits {
			if h.Chunk().IsTOC() {
				scores[i] *= s.tocBoost
			}
		}
	}

	order := make([]int, len(hits))
	for i := range order {
		order[i] = i
	}
	sort.Slice(order, func(a, b int) bool {
		i, j := order[a], order[b]
		if scores[i] != scores[j] {
			return scores[i] > scores[j]
		}
		if hits[i].Score() != hits[j].Score() {
			return hits[i].Score() > hits[j].Score()
		}
		return hits[i].Chunk().ID() < hits[j].Chunk().ID()
	})

	out := make([]chunk.Hit, 0, min(s.topK, len(hits)))
	for _, i := range order[:min(s.topK, len(hits))] {
		out = append(out, hits[i].WithScore(scores[i]))
	}
	return out, false
}

// coarse sorts by vector score descending with the chunk ID as tiebreaker and
// truncates to topK.
func (s *Service) coarse(hits []chunk.Hit) []chunk.Hit {
	out := make([]chunk.Hit, len(hits))
	copy(out, hits)
	sort.Slice(out, func(i, j int) bool {
		if out[i].Score() != out[j].Score() {
			return out[i].Score() > out[j].Score()
		}
		return out[i].Chunk().ID() < out[j].Chunk().ID()
	})
	if len(out) > s.topK {
		out = out[:s.topK]
	}
	return out
}
