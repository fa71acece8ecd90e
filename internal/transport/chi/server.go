// Package chi exposes the question answering pipeline over HTTP.
package chi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/AdhiDevX369-work/doc-rag/internal/domain"
	"github.com/AdhiDevX369-work/doc-rag/internal/domain/book"
	"github.com/AdhiDevX369-work/doc-rag/internal/domain/session"
	"github.com/AdhiDevX369-work/doc-rag/internal/repository/feedback"
	"github.com/AdhiDevX369-work/doc-rag/internal/repository/qcache"
	generateuc "github.com/AdhiDevX369-work/doc-rag/internal/usecase/generate"
	healthuc "github.com/AdhiDevX369-work/doc-rag/internal/usecase/health"
	pipelineuc "github.com/AdhiDevX369-work/doc-rag/internal/usecase/pipeline"
)

// SessionHeader carries the session identifier. A request without one (or
// with an expired one) gets a fresh session; the response always echoes the
// effective identifier back.
const SessionHeader = "X-Session-ID"

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// catalog is the book metadata the API surfaces.
type catalog interface {
	All() []book.Book
	ChunkCount(ctx context.Context) (int, error)
}

// Server hosts the question answering API.
type Server struct {
	pipeline      *pipelineuc.Service
	generator     *generateuc.Service
	sessions      *session.Manager
	cache         *qcache.Cache
	feedback      *feedback.Repo
	catalog       catalog
	health        *healthuc.Service
	logger        *zap.Logger
	errorHandlers []errorHandler
}

// NewServer creates the API server. cache may be nil when answer caching is
// disabled.
func NewServer(
	pipeline *pipelineuc.Service,
	generator *generateuc.Service,
	sessions *session.Manager,
	cache *qcache.Cache,
	fb *feedback.Repo,
	cat catalog,
	health *healthuc.Service,
	logger *zap.Logger,
) *Server {
	s := &Server{
		pipeline:  pipeline,
		generator: generator,
		sessions:  sessions,
		cache:     cache,
		feedback:  fb,
		catalog:   cat,
		health:    health,
		logger:    logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrBookNotFound, http.StatusNotFound, "book_not_found"),
		sentinelHandler(domain.ErrSessionNotFound, http.StatusNotFound, "session_not_found"),
		sentinelHandler(domain.ErrRetrievalUnavailable, http.StatusServiceUnavailable, "retrieval_unavailable"),
		sentinelHandler(domain.ErrEmbeddingProviderError, http.StatusBadGateway, "embedding_provider_error"),
		sentinelHandler(domain.ErrGenerationProviderError, http.StatusBadGateway, "generation_provider_error"),
	}
	return s
}

// Routes mounts all handlers on a router.
func (s *Server) Routes(r chi.Router) {
	r.Post("/v1/ask", s.Ask)
	r.Get("/v1/books", s.ListBooks)
	r.Get("/v1/stats", s.Stats)
	r.Post("/v1/feedback", s.Feedback)
	r.Post("/v1/sessions/reset", s.ResetSession)
	r.Get("/health", s.HealthCheck)
	r.Get("/metrics", s.Metrics)
}

type askRequest struct {
	Question string `json:"question"`
	Book     string `json:"book,omitempty"`
}

type sourceResponse struct {
	Source string  `json:"source"`
	Score  float64 `json:"score"`
}

type askResponse struct {
	Answer    string           `json:"answer"`
	Intent    string           `json:"intent,omitempty"`
	Books     []string         `json:"books,omitempty"`
	Sources   []sourceResponse `json:"sources,omitempty"`
	Degraded  bool             `json:"degraded,omitempty"`
	Cached    bool             `json:"cached,omitempty"`
	SessionID string           `json:"session_id"`
}

// Ask handles POST /v1/ask.
func (s *Server) Ask(w http.ResponseWriter, r *http.Request) {
	var req askRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}

	q, err := domain.NewQuery(req.Question, req.Book)
	if err != nil {
		writeError(w, http.StatusBadRequest, "validation_failed", err.Error())
		return
	}

	id, state := s.session(r)
	w.Header().Set(SessionHeader, id)

	// The cache key uses the book context as it stood before this turn, so a
	// followup about a different book cannot collide with an earlier answer.
	cacheBook := req.Book
	if cacheBook == "" {
		cacheBook = state.LastBook()
	}

	if s.cache != nil {
		if entry, ok := s.cache.Get(r.Context(), q.Text(), cacheBook); ok {
			writeJSON(w, http.StatusOK, askResponse{
				Answer:    entry.Answer,
				Sources:   cachedSources(entry),
				Cached:    true,
				SessionID: id,
			})
			return
		}
	}

	result, err := s.pipeline.Ask(r.Context(), q, state)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	answer, err := s.generator.Answer(r.Context(), q.Text(), result.Payload)
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	sources := make([]sourceResponse, 0, len(result.Payload.Passages()))
	for _, p := range result.Payload.Passages() {
		sources = append(sources, sourceResponse{Source: p.Source(), Score: p.Score()})
	}

	if s.cache != nil && !result.Payload.IsEmpty() && answer != generateuc.UnreliableAnswer {
		entry := qcache.Entry{Answer: answer}
		for _, src := range sources {
			entry.Sources = append(entry.Sources, qcache.Source{Source: src.Source, Score: src.Score})
		}
		s.cache.Put(r.Context(), q.Text(), cacheBook, entry)
	}

	writeJSON(w, http.StatusOK, askResponse{
		Answer:    answer,
		Intent:    string(result.Payload.Intent()),
		Books:     result.Payload.Books(),
		Sources:   sources,
		Degraded:  result.Degraded,
		SessionID: id,
	})
}

type bookResponse struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Author    string `json:"author"`
	Publisher string `json:"publisher,omitempty"`
}

// ListBooks handles GET /v1/books.
func (s *Server) ListBooks(w http.ResponseWriter, r *http.Request) {
	books := s.catalog.All()
	items := make([]bookResponse, len(books))
	for i, b := range books {
		items[i] = bookResponse{ID: b.ID(), Title: b.Title(), Author: b.Author(), Publisher: b.Publisher()}
	}
	writeJSON(w, http.StatusOK, map[string]any{"books": items})
}

// Stats handles GET /v1/stats.
func (s *Server) Stats(w http.ResponseWriter, r *http.Request) {
	stats, err := s.feedback.Stats(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	chunks, err := s.catalog.ChunkCount(r.Context())
	if err != nil {
		chunks = 0
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"books":           len(s.catalog.All()),
		"chunks":          chunks,
		"active_sessions": s.sessions.Len(),
		"feedback": map[string]any{
			"positive":     stats.Positive,
			"negative":     stats.Negative,
			"total":        stats.Total,
			"satisfaction": stats.Satisfaction,
		},
	})
}

type feedbackRequest struct {
	Positive bool `json:"positive"`
}

// Feedback handles POST /v1/feedback.
func (s *Server) Feedback(w http.ResponseWriter, r *http.Request) {
	var req feedbackRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "bad_request", "Invalid request body: "+err.Error())
		return
	}
	if err := s.feedback.Record(r.Context(), req.Positive); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// ResetSession handles POST /v1/sessions/reset. The session keeps its
// identifier but forgets the conversation.
func (s *Server) ResetSession(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSpace(r.Header.Get(SessionHeader))
	if id == "" {
		writeError(w, http.StatusBadRequest, "validation_failed", "session header is required")
		return
	}
	if err := s.sessions.Reset(id); err != nil {
		s.handleDomainError(w, err)
		return
	}
	w.Header().Set(SessionHeader, id)
	w.WriteHeader(http.StatusNoContent)
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}
	writeJSON(w, httpStatus, map[string]any{
		"status": report.Status,
		"checks": report.Checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// session resolves the request's session, creating one when the header is
// absent or stale.
func (s *Server) session(r *http.Request) (string, *session.State) {
	if id := strings.TrimSpace(r.Header.Get(SessionHeader)); id != "" {
		if state, err := s.sessions.Get(id); err == nil {
			return id, state
		}
	}
	return s.sessions.Create()
}

func cachedSources(e qcache.Entry) []sourceResponse {
	out := make([]sourceResponse, len(e.Sources))
	for i, src := range e.Sources {
		out[i] = sourceResponse{Source: src.Source, Score: src.Score}
	}
	return out
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code, message string) {
	writeJSON(w, status, map[string]string{
		"code":    code,
		"message": message,
	})
}

// safeDomainMessage returns a sentinel error message for the client without
// exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrBookNotFound,
		domain.ErrSessionNotFound,
		domain.ErrRetrievalUnavailable,
		domain.ErrEmbeddingProviderError,
		domain.ErrGenerationProviderError,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code string) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, "internal_error", "internal error")
}
