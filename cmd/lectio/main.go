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
	"github.com/go-chi/cors"
	"go.uber.org/zap"

	"github.com/kailas-cloud/lectio/internal/config"
	"github.com/kailas-cloud/lectio/internal/db"
	"github.com/kailas-cloud/lectio/internal/db/postgres"
	dbRedis "github.com/kailas-cloud/lectio/internal/db/redis"
	"github.com/kailas-cloud/lectio/internal/domain"
	logpkg "github.com/kailas-cloud/lectio/internal/logger"
	"github.com/kailas-cloud/lectio/internal/metrics"
	bookmarkrepo "github.com/kailas-cloud/lectio/internal/repository/bookmark"
	"github.com/kailas-cloud/lectio/internal/repository/counter"
	"github.com/kailas-cloud/lectio/internal/repository/explcache"
	verserepo "github.com/kailas-cloud/lectio/internal/repository/verse"
	chiTransport "github.com/kailas-cloud/lectio/internal/transport/chi"
	openaiExp "github.com/kailas-cloud/lectio/internal/transport/openai"
	bibleuc "github.com/kailas-cloud/lectio/internal/usecase/bible"
	bookmarkuc "github.com/kailas-cloud/lectio/internal/usecase/bookmark"
	explainuc "github.com/kailas-cloud/lectio/internal/usecase/explain"
	healthuc "github.com/kailas-cloud/lectio/internal/usecase/health"
	quotauc "github.com/kailas-cloud/lectio/internal/usecase/quota"
	"github.com/kailas-cloud/lectio/internal/version"
)

func main() {
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

	logger.Info("Starting lectio API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Strings("redis_addrs", cfg.Redis.Addrs),
		zap.String("quota_store", cfg.Quota.Store),
		zap.Bool("ai_enabled", cfg.AI.Enabled()),
		zap.Bool("auth_enabled", cfg.Auth.Enabled()),
	)

	ctx := context.Background()

	var store db.Store
	store, err = dbRedis.NewStore(dbRedis.Config{
		Addrs:    cfg.Redis.Addrs,
		Username: cfg.Redis.Username,
		Password: cfg.Redis.Password,
		DB:       cfg.Redis.DB,
	})
	if err != nil {
		logger.Fatal("Failed to create redis store", zap.Error(err))
	}
	defer store.Close()

	if err := store.WaitForReady(ctx, time.Duration(cfg.Redis.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Redis not ready", zap.Error(err))
	}
	logger.Info("Connected to redis")

	if cfg.Postgres.DSN == "" {
		logger.Fatal("postgres.dsn is required to serve scripture and bookmarks")
	}
	pool, err := postgres.NewPool(ctx, postgres.Config{DSN: cfg.Postgres.DSN, MaxConns: cfg.Postgres.MaxConns})
	if err != nil {
		logger.Fatal("Failed to create postgres pool", zap.Error(err))
	}
	defer pool.Close()

	if err := pool.WaitForReady(ctx, time.Duration(cfg.Postgres.ReadinessTimeout)*time.Second); err != nil {
		logger.Fatal("Postgres not ready", zap.Error(err))
	}
	if cfg.Postgres.Migrate {
		if err := pool.Migrate(ctx); err != nil {
			logger.Fatal("Postgres migration failed", zap.Error(err))
		}
		logger.Info("Postgres schema applied")
	}
	logger.Info("Connected to postgres")

	metrics.RegisterAIMetrics()

	// Repositories
	bibleCfg := domain.BibleConfig{
		DefaultTranslation: cfg.Bible.DefaultTranslation,
		Translations:       cfg.Bible.Translations,
		MaxSearchLimit:     cfg.Bible.MaxSearchLimit,
	}
	bibleSvc := bibleuc.New(verserepo.New(pool), bibleCfg)
	bookmarkSvc := bookmarkuc.New(bookmarkrepo.New(pool), time.Now)

	// Explain chain: quota limiter + OpenAI -> cache
	var explainSvc chiTransport.ExplainService
	var aiChecker healthuc.AIChecker
	if cfg.AI.Enabled() && cfg.Quota.Limit() > 0 {
		limiter := buildLimiter(cfg, store, pool, logger)
		explainer := buildExplainer(cfg, store, logger)
		explainSvc = explainuc.New(limiter, bibleSvc, explainer)
		aiChecker = explainer
		logger.Info("AI explanations enabled",
			zap.String("provider", cfg.AI.Provider),
			zap.String("model", cfg.AI.Model),
			zap.Int("daily_limit", cfg.Quota.Limit()),
			zap.String("timezone", cfg.Quota.Timezone),
		)
	} else {
		logger.Warn("AI explanations disabled: ai.api_key is empty or quota.daily_limit is 0")
	}

	healthSvc := healthuc.New(store, pool, aiChecker)

	server := chiTransport.NewServer(bibleSvc, explainSvc, bookmarkSvc, healthSvc, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	if len(cfg.HTTP.CORSOrigins) > 0 {
		r.Use(cors.Handler(cors.Options{
			AllowedOrigins:   cfg.HTTP.CORSOrigins,
			AllowedMethods:   []string{"GET", "POST", "PATCH", "DELETE", "OPTIONS"},
			AllowedHeaders:   []string{"Authorization", "Content-Type", chiTransport.UserIDHeader},
			ExposedHeaders:   []string{"X-Request-ID", "X-AI-Tokens", "X-AI-Cached"},
			AllowCredentials: false,
			MaxAge:           300,
		}))
	}
	r.Use(chiTransport.AuthMiddleware(chiTransport.AuthConfig{
		APIKeys:   cfg.Auth.APIKeys,
		JWTSecret: cfg.Auth.JWTSecret,
		JWTIssuer: cfg.Auth.JWTIssuer,
	}))
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

// buildLimiter picks the counter store and applies admin and timezone settings.
func buildLimiter(cfg config.Config, store db.Store, pool *postgres.Pool, logger *zap.Logger) *quotauc.Limiter {
	var counters quotauc.CounterStore
	switch cfg.Quota.Store {
	case config.QuotaStorePostgres:
		counters = counter.NewPostgres(pool)
	default:
		counters = counter.NewRedis(store, time.Duration(cfg.Quota.CounterTTLHours)*time.Hour)
	}

	return quotauc.New(counters, cfg.Quota.Limit(), logger,
		quotauc.WithAdmins(cfg.Quota.AdminUsers, cfg.Quota.AdminDailyLimit),
		quotauc.WithLocation(cfg.Quota.Location()),
	)
}

// aiExplainer is the explainer chain as the composition root sees it.
type aiExplainer interface {
	domain.Explainer
	domain.HealthChecker
}

// buildExplainer assembles the decorator chain: OpenAI -> Cached.
func buildExplainer(cfg config.Config, store db.Store, logger *zap.Logger) aiExplainer {
	base := openaiExp.NewExplainer(&openaiExp.Config{
		APIKey:      cfg.AI.APIKey,
		BaseURL:     cfg.AI.BaseURL,
		Model:       cfg.AI.Model,
		MaxTokens:   cfg.AI.MaxTokens,
		Temperature: cfg.AI.Temperature,
		Provider:    cfg.AI.Provider,
		Timeout:     time.Duration(cfg.AI.TimeoutSec) * time.Second,
		Logger:      logger,
	})

	if cfg.AI.CacheTTLSec <= 0 {
		return base
	}
	return explcache.New(base, store, base.Model(),
		time.Duration(cfg.AI.CacheTTLSec)*time.Second, metrics.ExplanationCacheTotal, logger)
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
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.CodeInternalError,
						Message: "internal error",
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
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			req := r.WithContext(ctx)
			next.ServeHTTP(ww, req)

			fields := []zap.Field{
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			}
			if tokens := ww.Header().Get("X-AI-Tokens"); tokens != "" {
				fields = append(fields, zap.String("ai_tokens", tokens))
			}
			reqLogger.Info("http_request", fields...)
		})
	}
}
