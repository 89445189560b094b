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

	"github.com/crestline-labs/paperdesk/internal/config"
	dbRedis "github.com/crestline-labs/paperdesk/internal/db/redis"
	"github.com/crestline-labs/paperdesk/internal/domain"
	logpkg "github.com/crestline-labs/paperdesk/internal/logger"
	"github.com/crestline-labs/paperdesk/internal/metrics"
	"github.com/crestline-labs/paperdesk/internal/pdfproc"
	"github.com/crestline-labs/paperdesk/internal/repository/embcache"
	"github.com/crestline-labs/paperdesk/internal/repository/history"
	"github.com/crestline-labs/paperdesk/internal/repository/searchcache"
	"github.com/crestline-labs/paperdesk/internal/scholar"
	"github.com/crestline-labs/paperdesk/internal/topics"
	chiTransport "github.com/crestline-labs/paperdesk/internal/transport/chi"
	openaiEmb "github.com/crestline-labs/paperdesk/internal/transport/openai"
	healthuc "github.com/crestline-labs/paperdesk/internal/usecase/health"
	searchuc "github.com/crestline-labs/paperdesk/internal/usecase/search"
	statsuc "github.com/crestline-labs/paperdesk/internal/usecase/stats"
	topicsuc "github.com/crestline-labs/paperdesk/internal/usecase/topics"
	uploaduc "github.com/crestline-labs/paperdesk/internal/usecase/upload"
	"github.com/crestline-labs/paperdesk/internal/version"
	"github.com/crestline-labs/paperdesk/web"
)

func main() {
	// Load configuration based on ENV
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

	logger.Info("Starting paperdesk API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("cache_addrs", cfg.Cache.Addrs),
	)

	// Cache store
	store, err := dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Cache.Addrs,
		Password: cfg.Cache.Password,
	})
	if err != nil {
		logger.Fatal("Failed to create cache store", zap.Error(err))
	}
	defer store.Close()

	ctx := context.Background()
	if err := store.WaitForReady(ctx, time.Duration(cfg.Cache.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Cache store not ready", zap.Error(err))
	}
	logger.Info("Connected to cache store")

	// History store
	historyDB, err := history.NewDB(ctx, cfg.Postgres.DSN)
	if err != nil {
		logger.Fatal("Failed to connect to history store", zap.Error(err))
	}
	defer historyDB.Close()

	if err := historyDB.InitSchema(ctx); err != nil {
		logger.Fatal("Failed to initialize history schema", zap.Error(err))
	}
	logger.Info("Connected to history store")

	// Register application metrics explicitly (no init())
	metrics.RegisterAppMetrics()

	// Topic generator — optional embedding clustering strategy
	generator := topics.New(logger)
	var embeddingChecker healthuc.EmbeddingChecker
	if cfg.Topics.Strategy == "embedding" {
		base := openaiEmb.NewEmbedder(&openaiEmb.Config{
			APIKey:     cfg.Embedding.APIKey,
			BaseURL:    cfg.Embedding.BaseURL,
			Model:      cfg.Embedding.Model,
			Dimensions: cfg.Embedding.Dimensions,
			Provider:   "openai",
			Logger:     logger,
		})
		var embedder domain.Embedder = embcache.New(base, store, metrics.EmbeddingCacheTotal, logger)
		generator = generator.WithClusterer(topics.EmbeddingClusterer{Embedder: embedder})
		embeddingChecker = base
		logger.Info("Embedding clustering enabled",
			zap.String("model", cfg.Embedding.Model),
			zap.Int("dimensions", cfg.Embedding.Dimensions),
		)
	}

	// Scholar client and PDF processor
	scholarClient := scholar.NewClient(&scholar.Config{
		BaseURL:       cfg.Scholar.BaseURL,
		MaxRetries:    cfg.Scholar.MaxRetries,
		MinDelay:      time.Duration(cfg.Scholar.MinDelayMs) * time.Millisecond,
		MaxDelay:      time.Duration(cfg.Scholar.MaxDelayMs) * time.Millisecond,
		Timeout:       time.Duration(cfg.Scholar.TimeoutSec) * time.Second,
		MaxResultsCap: cfg.Scholar.MaxResultsCap,
		Logger:        logger,
	})
	processor := pdfproc.New(logger)

	// Repositories
	searchCache := searchcache.New(store, time.Duration(cfg.Cache.SearchTTLHours)*time.Hour, logger)
	searchRepo := history.NewSearchRepo(historyDB)
	topicRepo := history.NewTopicRepo(historyDB)
	uploadRepo := history.NewUploadRepo(historyDB)
	statsRepo := history.NewStatsRepo(historyDB)

	// Use case services
	searchSvc := searchuc.New(scholarClient, searchCache, searchRepo, logger)
	topicsSvc := topicsuc.New(generator, topicRepo, cfg.Topics.Strategy, logger)
	uploadSvc := uploaduc.New(processor, scholarClient, uploadRepo, cfg.Upload.Dir, cfg.Upload.MaxSizeBytes, logger)
	statsSvc := statsuc.New(statsRepo)
	healthSvc := healthuc.New(store, historyDB, embeddingChecker)

	server := chiTransport.NewServer(
		searchSvc, topicsSvc, uploadSvc, statsSvc, healthSvc,
		cfg.Upload.MaxSizeBytes, logger,
	)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
	r.Use(metrics.Middleware())
	server.Routes(r)
	r.Handle("/*", web.Handler())

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
					_ = json.NewEncoder(w).Encode(map[string]any{
						"success": false,
						"error":   "internal error",
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
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.WithContext(r.Context(), reqLogger)

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
