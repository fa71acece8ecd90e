// Package pipeline runs one question through the full retrieval sequence:
// classify, retrieve, dedupe, rerank, assemble.
package pipeline

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/AdhiDevX369-work/doc-rag/internal/domain"
	"github.com/AdhiDevX369-work/doc-rag/internal/domain/payload"
	"github.com/AdhiDevX369-work/doc-rag/internal/domain/session"
	"github.com/AdhiDevX369-work/doc-rag/internal/logger"
	"github.com/AdhiDevX369-work/doc-rag/internal/metrics"
)

// Result is the outcome of one turn.
type Result struct {
	Payload payload.Payload
	// Degraded is set when the reranker was unavailable and the coarse
	// vector order was used instead.
	Degraded bool
}

// Service wires the pipeline stages together.
type Service struct {
	classifier Classifier
	retriever  Retriever
	deduper    Deduper
	reranker   Reranker
	assembler  Assembler
}

// New creates the pipeline from its stages.
func New(c Classifier, r Retriever, d Deduper, rr Reranker, a Assembler) *Service {
	return &Service{classifier: c, retriever: r, deduper: d, reranker: rr, assembler: a}
}

// Ask answers one turn for the given session state. Turns within one session
// run strictly one at a time; concurrent calls queue on the state. The state
// is only modified after retrieval succeeds, so a failed turn leaves the
// conversation exactly as it was.
func (s *Service) Ask(ctx context.Context, q domain.Query, state *session.State) (Result, error) {
	state.BeginTurn()
	defer state.EndTurn()

	log := logger.FromContext(ctx)

	cls, err := s.classifier.Classify(q, state)
	if err != nil {
		metrics.QueriesTotal.WithLabelValues("unknown", "error").Inc()
		return Result{}, fmt.Errorf("classify: %w", err)
	}
	log.Debug("query classified",
		zap.String("intent", string(cls.Intent)),
		zap.Strings("scope", cls.Scope.Collections()),
		zap.Bool("toc_bias", cls.TOCBias))

	hits, err := s.retriever.Retrieve(ctx, q.Text(), cls.Scope, cls.TOCBias)
	if err != nil {
		metrics.QueriesTotal.WithLabelValues(string(cls.Intent), "error").Inc()
		return Result{}, fmt.Errorf("retrieve: %w", err)
	}

	hits = s.deduper.Dedupe(hits, cls.TOCBias)
	hits, degraded := s.reranker.Rerank(ctx, q.Text(), hits, cls.TOCBias)

	pl := s.assembler.Assemble(hits, cls.Intent, cls.Scope, state)

	status := "ok"
	if pl.IsEmpty() {
		status = "empty"
	}
	metrics.QueriesTotal.WithLabelValues(string(cls.Intent), status).Inc()

	return Result{Payload: pl, Degraded: degraded}, nil
}
