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
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/lagunalab/cartodex/internal/config"
	"github.com/lagunalab/cartodex/internal/domain"
	logpkg "github.com/lagunalab/cartodex/internal/logger"
	"github.com/lagunalab/cartodex/internal/metrics"
	"github.com/lagunalab/cartodex/internal/repository/embcache"
	"github.com/lagunalab/cartodex/internal/store"
	qdrantStore "github.com/lagunalab/cartodex/internal/store/qdrant"
	chiTransport "github.com/lagunalab/cartodex/internal/transport/chi"
	openaiEmb "github.com/lagunalab/cartodex/internal/transport/openai"
	embeddinguc "github.com/lagunalab/cartodex/internal/usecase/embedding"
	healthuc "github.com/lagunalab/cartodex/internal/usecase/health"
	heatmapuc "github.com/lagunalab/cartodex/internal/usecase/heatmap"
	searchuc "github.com/lagunalab/cartodex/internal/usecase/search"
	"github.com/lagunalab/cartodex/internal/version"
)

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

	logger.Info("Starting cartodex API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("qdrant_addr", cfg.Qdrant.Addr),
		zap.String("map_collection", cfg.Qdrant.MapCollection),
		zap.String("doc_collection", cfg.Qdrant.DocCollection),
	)

	vectorStore, err := qdrantStore.New(store.Config{
		Addr:   cfg.Qdrant.Addr,
		APIKey: cfg.Qdrant.APIKey,
	})
	if err != nil {
		logger.Fatal("Failed to create vector store", zap.Error(err))
	}
	defer func() { _ = vectorStore.Close() }()

	readyCtx, cancelReady := context.WithTimeout(
		context.Background(), time.Duration(cfg.Qdrant.ReadinessTimeout)*time.Second,
	)
	if err := vectorStore.Ping(readyCtx); err != nil {
		cancelReady()
		logger.Fatal("Vector store not ready", zap.Error(err))
	}
	cancelReady()
	logger.Info("Connected to vector store")

	metrics.RegisterSearchMetrics()

	// Optional Redis cache for query embeddings.
	var cache *redis.Client
	if cfg.Cache.Addr != "" {
		cache = redis.NewClient(&redis.Options{
			Addr:     cfg.Cache.Addr,
			Password: cfg.Cache.Password,
			DB:       cfg.Cache.DB,
		})
		logger.Info("Embedding cache enabled", zap.String("addr", cfg.Cache.Addr))
	}
	cacheTTL := time.Duration(cfg.Cache.TTLSec) * time.Second

	// Encoder chains -- composition root. Two independent vector spaces,
	// never sharing cache namespaces.
	textBase := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.Text.APIKey,
		BaseURL:    cfg.Embedding.Text.BaseURL,
		Model:      cfg.Embedding.Text.Model,
		Dimensions: cfg.Embedding.Text.Dimensions,
		Provider:   "text",
		Logger:     logger,
	})
	visionBase := openaiEmb.NewEmbedder(&openaiEmb.Config{
		APIKey:     cfg.Embedding.Vision.APIKey,
		BaseURL:    cfg.Embedding.Vision.BaseURL,
		Model:      cfg.Embedding.Vision.Model,
		Dimensions: cfg.Embedding.Vision.Dimensions,
		Provider:   "vision",
		Logger:     logger,
	})

	textEmb := buildEmbedder(textBase, "text", cfg.Embedding.Text.Model, cache, cacheTTL, logger)
	visionEmb := buildEmbedder(visionBase, "vision", cfg.Embedding.Vision.Model, cache, cacheTTL, logger)

	logger.Info("Encoders created",
		zap.String("text_model", cfg.Embedding.Text.Model),
		zap.String("vision_model", cfg.Embedding.Vision.Model),
	)

	searchSvc := searchuc.New(vectorStore, textEmb, visionEmb, visionBase, searchuc.Params{
		DocCollection:    cfg.Qdrant.DocCollection,
		MapCollection:    cfg.Qdrant.MapCollection,
		DocMinScore:      cfg.Search.DocMinScore,
		MapMinScore:      cfg.Search.MapMinScore,
		DocImageMinScore: cfg.Search.DocImageMinScore,
		MapImageMinScore: cfg.Search.MapImageMinScore,
		OverfetchFactor:  cfg.Search.OverfetchFactor,
		Timeout:          time.Duration(cfg.Search.TimeoutSec) * time.Second,
		HNSWEf:           cfg.Search.HNSWEf,
	}, logger)

	heatmapSvc := heatmapuc.New(vectorStore, textEmb, visionEmb, heatmapuc.Params{
		DocCollection:   cfg.Qdrant.DocCollection,
		MapCollection:   cfg.Qdrant.MapCollection,
		DocMinScore:     cfg.Heatmap.DocMinScore,
		MapMinScore:     cfg.Heatmap.MapMinScore,
		MapBoost:        cfg.Heatmap.MapBoost,
		MaxPoints:       cfg.Heatmap.MaxPoints,
		MaxBinaryPoints: cfg.Heatmap.MaxBinary,
		Timeout:         time.Duration(cfg.Heatmap.TimeoutSec) * time.Second,
	}, logger)

	healthSvc := healthuc.New(vectorStore, textBase, visionBase)

	server := chiTransport.NewServer(searchSvc, heatmapSvc, healthSvc, *cfg.Search.RelativeThreshold, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	server.Routes(r)

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

// buildEmbedder assembles the decorator chain: base -> cached -> instrumented.
func buildEmbedder(
	base domain.Embedder,
	provider, model string,
	cache *redis.Client,
	cacheTTL time.Duration,
	logger *zap.Logger,
) domain.Embedder {
	embedder := base
	if cache != nil {
		embedder = embcache.New(base, cache, provider, cacheTTL, metrics.EmbeddingCacheTotal, logger)
	}
	return embeddinguc.NewInstrumentedEmbedder(embedder, provider, model, logger)
}

// jsonRecoverer is a recovery middleware that returns the JSON error envelope
// instead of a plain text stacktrace.
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
						"detail": "internal error",
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

			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWith(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line -- one line per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
