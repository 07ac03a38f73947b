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

	"github.com/lexrag-io/lexrag/internal/config"
	"github.com/lexrag-io/lexrag/internal/db"
	dbRedis "github.com/lexrag-io/lexrag/internal/db/redis"
	"github.com/lexrag-io/lexrag/internal/domain"
	logpkg "github.com/lexrag-io/lexrag/internal/logger"
	"github.com/lexrag-io/lexrag/internal/metrics"
	documentrepo "github.com/lexrag-io/lexrag/internal/repository/document"
	"github.com/lexrag-io/lexrag/internal/repository/embcache"
	searchrepo "github.com/lexrag-io/lexrag/internal/repository/search"
	chiTransport "github.com/lexrag-io/lexrag/internal/transport/chi"
	openaiTransport "github.com/lexrag-io/lexrag/internal/transport/openai"
	answeruc "github.com/lexrag-io/lexrag/internal/usecase/answer"
	askuc "github.com/lexrag-io/lexrag/internal/usecase/ask"
	healthuc "github.com/lexrag-io/lexrag/internal/usecase/health"
	ingestuc "github.com/lexrag-io/lexrag/internal/usecase/ingest"
	retrieveuc "github.com/lexrag-io/lexrag/internal/usecase/retrieve"
	"github.com/lexrag-io/lexrag/internal/usecase/route"
	"github.com/lexrag-io/lexrag/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()
	cfg := config.MustLoad(env)

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting lexrag API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Database.Addrs,
		Password: cfg.Database.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create database store", zap.Error(err))
	}
	defer store.Close()

	// Wait for database to be ready
	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Database not ready", zap.Error(err))
	}
	logger.Info("Connected to database")

	// Register pipeline metrics explicitly (no init())
	metrics.RegisterPipelineMetrics()

	embedder := buildEmbedder(&cfg, store, logger)
	generator := openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:      cfg.Provider.APIKey,
		BaseURL:     cfg.Provider.BaseURL,
		Model:       cfg.Generation.Model,
		Temperature: cfg.Generation.Temperature,
		MaxTokens:   cfg.Generation.MaxTokens,
		Provider:    cfg.Provider.Name,
		Timeout:     time.Duration(cfg.Provider.TimeoutSec) * time.Second,
		Logger:      logger,
	})
	logger.Info("Providers created",
		zap.String("provider", cfg.Provider.Name),
		zap.String("embedding_model", cfg.Embedding.Model),
		zap.String("generation_model", cfg.Generation.Model),
	)

	// Create repositories
	docRepo := documentrepo.New(store, cfg.Embedding.Dimensions).
		WithHNSW(documentrepo.HNSWConfig{
			M:           cfg.Retrieval.HNSWM,
			EFConstruct: cfg.Retrieval.HNSWEFConstruct,
		})
	searchRepo := searchrepo.New(store)

	for _, coll := range domain.Collections() {
		if err := docRepo.EnsureCollection(ctx, coll); err != nil {
			logger.Fatal("Failed to ensure collection",
				zap.String("collection", coll), zap.Error(err))
		}
	}

	// Create use case services
	retrieveSvc := retrieveuc.New(searchRepo, embedder, cfg.Retrieval.MinScore).
		WithRetry(uint64(cfg.Retrieval.RetryAttempts)).
		WithMaxQueryChars(cfg.Embedding.MaxQueryChars)
	answerSvc := answeruc.New(generator).
		WithRetry(uint64(cfg.Retrieval.RetryAttempts))
	askSvc := askuc.New(retrieveSvc, answerSvc, route.New(),
		cfg.Retrieval.DefaultK, cfg.Retrieval.MaxK)
	ingestSvc := ingestuc.New(docRepo, embedder, ingestuc.Options{
		ChunkSize:    cfg.Ingest.ChunkSize,
		ChunkOverlap: cfg.Ingest.ChunkOverlap,
		MaxBatchSize: cfg.Ingest.MaxBatchSize,
	}).WithRetry(uint64(cfg.Retrieval.RetryAttempts))
	healthSvc := healthuc.New(store, newProviderHealthChecker(embedder))

	// Create chi server
	server := chiTransport.NewServer(askSvc, ingestSvc, docRepo, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Register(r)

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	// Graceful shutdown
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

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached
func buildEmbedder(cfg *config.Config, store db.Store, logger *zap.Logger) *embcache.CachedEmbedder {
	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     cfg.Provider.APIKey,
		BaseURL:    cfg.Provider.BaseURL,
		Model:      cfg.Embedding.Model,
		Dimensions: cfg.Embedding.Dimensions,
		Provider:   cfg.Provider.Name,
		Timeout:    time.Duration(cfg.Provider.TimeoutSec) * time.Second,
		Logger:     logger,
	})

	return embcache.New(base, store, cfg.Embedding.Model, metrics.EmbeddingCacheTotal, logger)
}

// providerHealthChecker wraps domain.Embedder to implement health.ProviderChecker.
type providerHealthChecker struct {
	embedder domain.Embedder
}

func newProviderHealthChecker(embedder domain.Embedder) *providerHealthChecker {
	return &providerHealthChecker{embedder: embedder}
}

func (h *providerHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("provider health check: %w", err)
		}
	}
	return nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
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

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			// Set X-Request-ID in response header
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line — one line per request
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
