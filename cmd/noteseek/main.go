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

	"github.com/sydlabs/noteseek/internal/config"
	"github.com/sydlabs/noteseek/internal/db"
	dbRedis "github.com/sydlabs/noteseek/internal/db/redis"
	"github.com/sydlabs/noteseek/internal/domain"
	"github.com/sydlabs/noteseek/internal/domain/keyword"
	logpkg "github.com/sydlabs/noteseek/internal/logger"
	"github.com/sydlabs/noteseek/internal/metrics"
	collectionrepo "github.com/sydlabs/noteseek/internal/repository/collection"
	"github.com/sydlabs/noteseek/internal/repository/embcache"
	noterepo "github.com/sydlabs/noteseek/internal/repository/note"
	usagerepo "github.com/sydlabs/noteseek/internal/repository/usage"
	vectorrepo "github.com/sydlabs/noteseek/internal/repository/vector"
	chiTransport "github.com/sydlabs/noteseek/internal/transport/chi"
	openaiTransport "github.com/sydlabs/noteseek/internal/transport/openai"
	collectionuc "github.com/sydlabs/noteseek/internal/usecase/collection"
	embeddinguc "github.com/sydlabs/noteseek/internal/usecase/embedding"
	healthuc "github.com/sydlabs/noteseek/internal/usecase/health"
	noteuc "github.com/sydlabs/noteseek/internal/usecase/note"
	searchuc "github.com/sydlabs/noteseek/internal/usecase/search"
	usageuc "github.com/sydlabs/noteseek/internal/usecase/usage"
	"github.com/sydlabs/noteseek/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting noteseek API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("db_addrs", cfg.Database.Addrs),
		zap.String("collection", cfg.Search.Collection),
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

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterGenerationMetrics()

	// Usage accounting — daily token counters in Redis
	usageStore := usagerepo.New(store, time.Duration(cfg.Usage.RetentionHours)*time.Hour)
	usageSvc := usageuc.New(usageStore, logger)

	// Build embedder chains — composition root
	docEmbedder := buildEmbedder(cfg.Embedding, cfg.Embedding.DocumentInstruction, store, usageSvc, logger)
	queryEmbedder := buildEmbedder(cfg.Embedding, cfg.Embedding.QueryInstruction, store, usageSvc, logger)
	logger.Info("Embedders created",
		zap.String("provider", cfg.Embedding.Provider),
		zap.String("model", cfg.Embedding.Model),
		zap.Int("dimensions", cfg.Embedding.Dimensions),
	)

	// Summary generator with usage tracking
	generator := usageuc.NewTrackedGenerator(openaiTransport.NewGenerator(&openaiTransport.GeneratorConfig{
		APIKey:      cfg.Generation.APIKey,
		BaseURL:     cfg.Generation.BaseURL,
		Model:       cfg.Generation.Model,
		Temperature: cfg.Generation.Temperature,
		MaxTokens:   cfg.Generation.MaxTokens,
		Provider:    cfg.Generation.Provider,
		Logger:      logger,
	}), usageSvc)

	// Keyword catalog — built-in vocabulary plus config overrides
	catalog := keyword.NewWithDefaults()
	for seed, terms := range cfg.Keywords.Expansions {
		catalog.SetExpansions(seed, terms)
	}
	for theme, terms := range cfg.Keywords.Themes {
		catalog.SetThemeTerms(theme, terms)
	}

	// Repositories over the shared store
	collection := cfg.Search.Collection
	collRepo := collectionrepo.New(store).WithHNSW(collectionrepo.HNSWConfig{
		M:           cfg.Index.HNSWM,
		EFConstruct: cfg.Index.HNSWEFConstruct,
	})
	noteRepo := noterepo.New(store, collection)
	vectorRepo := vectorrepo.New(store, collection)

	// Use case services
	collSvc := collectionuc.New(collRepo, noteRepo)
	noteSvc := noteuc.New(noteRepo, docEmbedder, cfg.Embedding.Dimensions).
		WithPagination(cfg.Index.DefaultPageSize, cfg.Index.MaxPageSize)
	searchSvc := searchuc.New(vectorRepo, queryEmbedder, catalog, generator, logger)
	healthSvc := healthuc.New(store, newEmbeddingHealthChecker(docEmbedder))

	// The notes collection must exist before any write or search hits it.
	created, err := collSvc.Ensure(ctx, collection, cfg.Embedding.Dimensions)
	if err != nil {
		logger.Fatal("Failed to ensure collection", zap.Error(err))
	}
	logger.Info("Collection ready",
		zap.String("name", collection),
		zap.Bool("created", created),
	)

	server := chiTransport.NewServer(
		searchSvc, noteSvc, collSvc, usageSvc, healthSvc, catalog, collection, logger,
	)

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

// embeddingHealthChecker wraps domain.Embedder to implement health.EmbeddingChecker.
type embeddingHealthChecker struct {
	embedder domain.Embedder
}

func newEmbeddingHealthChecker(embedder domain.Embedder) *embeddingHealthChecker {
	return &embeddingHealthChecker{embedder: embedder}
}

func (h *embeddingHealthChecker) HealthCheck(ctx context.Context) error {
	if hc, ok := h.embedder.(domain.HealthChecker); ok {
		if err := hc.HealthCheck(ctx); err != nil {
			return fmt.Errorf("embedding health check: %w", err)
		}
	}
	return nil
}

// buildEmbedder assembles the decorator chain: OpenAI -> Cached -> Instrumented -> Instruction
func buildEmbedder(
	embCfg config.EmbeddingConfig,
	instruction string,
	store db.Store,
	usage embeddinguc.UsageRecorder,
	logger *zap.Logger,
) noteuc.Embedder {
	// Base provider (with transport metrics built-in)
	base := openaiTransport.NewEmbedder(&openaiTransport.Config{
		APIKey:     embCfg.APIKey,
		BaseURL:    embCfg.BaseURL,
		Model:      embCfg.Model,
		Dimensions: embCfg.Dimensions,
		Provider:   embCfg.Provider,
		Logger:     logger,
	})

	// Cached
	var embedder noteuc.Embedder = base
	if store != nil {
		ttl := time.Duration(embCfg.CacheTTLHours) * time.Hour
		embedder = embcache.New(base, store, embCfg.Model, ttl, metrics.EmbeddingCacheTotal, logger)
	}

	// Instrumented (usage accounting + metrics)
	embedder = embeddinguc.NewInstrumentedEmbedder(
		embedder, embCfg.Provider, embCfg.Model, usage, logger,
	)

	// Instruction prefix sits outside the cache so hits key on instruction+text
	if instruction != "" {
		return domain.NewInstructionEmbedder(embedder, instruction)
	}

	return embedder
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
