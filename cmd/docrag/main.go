package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/AdhiDevX369-work/doc-rag/internal/config"
	dbRedis "github.com/AdhiDevX369-work/doc-rag/internal/db/redis"
	"github.com/AdhiDevX369-work/doc-rag/internal/domain"
	"github.com/AdhiDevX369-work/doc-rag/internal/domain/book"
	"github.com/AdhiDevX369-work/doc-rag/internal/domain/session"
	logpkg "github.com/AdhiDevX369-work/doc-rag/internal/logger"
	"github.com/AdhiDevX369-work/doc-rag/internal/metrics"
	feedbackrepo "github.com/AdhiDevX369-work/doc-rag/internal/repository/feedback"
	"github.com/AdhiDevX369-work/doc-rag/internal/repository/qcache"
	registryrepo "github.com/AdhiDevX369-work/doc-rag/internal/repository/registry"
	searchrepo "github.com/AdhiDevX369-work/doc-rag/internal/repository/search"
	chiTransport "github.com/AdhiDevX369-work/doc-rag/internal/transport/chi"
	openaiTransport "github.com/AdhiDevX369-work/doc-rag/internal/transport/openai"
	assembleuc "github.com/AdhiDevX369-work/doc-rag/internal/usecase/assemble"
	dedupeuc "github.com/AdhiDevX369-work/doc-rag/internal/usecase/dedupe"
	generateuc "github.com/AdhiDevX369-work/doc-rag/internal/usecase/generate"
	healthuc "github.com/AdhiDevX369-work/doc-rag/internal/usecase/health"
	intentuc "github.com/AdhiDevX369-work/doc-rag/internal/usecase/intent"
	pipelineuc "github.com/AdhiDevX369-work/doc-rag/internal/usecase/pipeline"
	rerankuc "github.com/AdhiDevX369-work/doc-rag/internal/usecase/rerank"
	retrievaluc "github.com/AdhiDevX369-work/doc-rag/internal/usecase/retrieval"
	"github.com/AdhiDevX369-work/doc-rag/internal/version"
)

// sessionSweepInterval is how often idle sessions are reaped.
const sessionSweepInterval = 5 * time.Minute

func main() {
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.New(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting docrag API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.Int("books", len(cfg.Books)),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Username: cfg.Database.Username,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create vector store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Vector store not ready", zap.Error(err))
	}
	logger.Info("Connected to vector store")

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()

	books := make([]book.Book, 0, len(cfg.Books))
	for _, bc := range cfg.Books {
		b, err := book.New(bc.ID, bc.Title, bc.Author, bc.Publisher, bc.Signals)
		if err != nil {
			logger.Fatal("Invalid book config", zap.String("id", bc.ID), zap.Error(err))
		}
		books = append(books, b)
	}

	registry, err := registryrepo.New(store, books)
	if err != nil {
		logger.Fatal("Failed to build book registry", zap.Error(err))
	}
	if live, err := registry.Available(ctx); err == nil {
		logger.Info("Book collections", zap.Strings("available", live))
	}

	embedder := buildEmbedder(cfg.Embedding, logger)

	var scorer rerankuc.Scorer
	if cfg.RerankEnabled() {
		scorer = openaiTransport.NewReranker(&openaiTransport.RerankerConfig{
			APIKey:  cfg.Rerank.APIKey,
			BaseURL: cfg.Rerank.BaseURL,
			Model:   cfg.Rerank.Model,
			Logger:  logger,
		})
		logger.Info("Reranker enabled", zap.String("model", cfg.Rerank.Model))
	}

	generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:      cfg.Generation.APIKey,
		BaseURL:     cfg.Generation.BaseURL,
		Model:       cfg.Generation.Model,
		MaxTokens:   cfg.Generation.MaxTokens,
		Temperature: cfg.Generation.Temperature,
		Logger:      logger,
	})

	// Pipeline stages, wired here and nowhere else
	classifier := intentuc.New(registry)
	retriever := retrievaluc.New(
		embedder,
		searchrepo.New(store),
		cfg.Retrieval.PerCollectionK,
		time.Duration(cfg.Retrieval.CollectionTimeoutSec)*time.Second,
	)
	deduper := dedupeuc.New(cfg.Retrieval.DedupThreshold)
	reranker := rerankuc.New(
		scorer,
		cfg.Retrieval.TopK,
		cfg.Retrieval.TOCBoost,
		time.Duration(cfg.Rerank.TimeoutSec)*time.Second,
	)
	assembler := assembleuc.New(registry)

	pipeline := pipelineuc.New(classifier, retriever, deduper, reranker, assembler)
	genSvc := generateuc.New(generator, registry)
	healthSvc := healthuc.New(store, embeddingHealthChecker(embedder), registry)

	sessions := session.NewManager(time.Duration(cfg.Session.IdleTTLMin) * time.Minute)

	var cache *qcache.Cache
	if cfg.CacheEnabled() {
		cache = qcache.New(store, time.Duration(cfg.Cache.TTLHours)*time.Hour, metrics.AnswerCacheTotal, logger)
	}

	server := chiTransport.NewServer(
		pipeline, genSvc, sessions, cache, feedbackrepo.New(store), registry, healthSvc, logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Routes(r)

	// Reap idle sessions in the background.
	sweepDone := make(chan struct{})
	go func() {
		ticker := time.NewTicker(sessionSweepInterval)
		defer ticker.Stop()
		for {
			select {
			case <-ticker.C:
				if n := sessions.Sweep(); n > 0 {
					logger.Debug("swept idle sessions", zap.Int("count", n))
				}
			case <-sweepDone:
				return
			}
		}
	}()

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-quit
	logger.Info("Received shutdown signal")
	close(sweepDone)

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildEmbedder assembles the embedder chain: OpenAI -> Instruction prefix.
func buildEmbedder(cfg config.ProviderConfig, logger *zap.Logger) domain.Embedder {
	base := openaiTransport.NewEmbedder(&openaiTransport.EmbedderConfig{
		APIKey:     cfg.APIKey,
		BaseURL:    cfg.BaseURL,
		Model:      cfg.Model,
		Dimensions: cfg.Dimensions,
		Logger:     logger,
	})
	if cfg.QueryInstruction != "" {
		return domain.NewInstructionEmbedder(base, cfg.QueryInstruction)
	}
	return base
}

// embeddingHealthChecker adapts an embedder to the health check contract.
// Decorators like the instruction prefix do not expose HealthCheck, so the
// chain is probed for it.
func embeddingHealthChecker(e domain.Embedder) healthuc.EmbeddingChecker {
	if hc, ok := e.(domain.HealthChecker); ok {
		return hc
	}
	type unwrapper interface{ Unwrap() domain.Embedder }
	if uw, ok := e.(unwrapper); ok {
		return embeddingHealthChecker(uw.Unwrap())
	}
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain
// text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(map[string]string{
						"code":    "internal_error",
						"message": "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates
// X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
