package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/vecluster/internal/config"
	"github.com/kailas-cloud/vecluster/internal/db"
	dbRedis "github.com/kailas-cloud/vecluster/internal/db/redis"
	"github.com/kailas-cloud/vecluster/internal/domain"
	logpkg "github.com/kailas-cloud/vecluster/internal/logger"
	"github.com/kailas-cloud/vecluster/internal/metrics"
	budgetrepo "github.com/kailas-cloud/vecluster/internal/repository/budget"
	chiTransport "github.com/kailas-cloud/vecluster/internal/transport/chi"
	openaiSum "github.com/kailas-cloud/vecluster/internal/transport/openai"
	clusteruc "github.com/kailas-cloud/vecluster/internal/usecase/cluster"
	healthuc "github.com/kailas-cloud/vecluster/internal/usecase/health"
	summaryuc "github.com/kailas-cloud/vecluster/internal/usecase/summary"
	usageuc "github.com/kailas-cloud/vecluster/internal/usecase/usage"
	"github.com/kailas-cloud/vecluster/internal/version"
)

func main() {
	if len(os.Args) > 1 && (os.Args[1] == "-version" || os.Args[1] == "--version") {
		fmt.Println(version.String())
		return
	}

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

	logger.Info("Starting vecluster API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("built", version.Date),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Bool("remote_summaries", cfg.Summary.APIKey != ""),
	)

	ctx := context.Background()

	// The store only persists budget counters; the API runs without it.
	var store db.Store
	if cfg.Database.Enabled() {
		redisStore, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:    cfg.Database.Addrs,
			Password: cfg.Database.Password,
		})
		if err != nil {
			logger.Fatal("Failed to create database store", zap.Error(err))
		}
		defer redisStore.Close()

		if err := redisStore.WaitForReady(ctx, time.Duration(cfg.Database.ReadinessTimeout)*time.Second); err != nil {
			logger.Fatal("Database not ready", zap.Error(err))
		}
		store = redisStore
		logger.Info("Connected to database", zap.Strings("db_addrs", cfg.Database.Addrs))
	}

	metrics.RegisterPipelineMetrics()

	var budget *summaryuc.BudgetTracker
	if cfg.Summary.Budget.Enabled() {
		action := summaryuc.BudgetActionWarn
		if cfg.Summary.Budget.Action == string(summaryuc.BudgetActionReject) {
			action = summaryuc.BudgetActionReject
		}
		budget = summaryuc.NewBudgetTracker(
			cfg.Summary.Provider,
			cfg.Summary.Budget.DailyTokenLimit,
			cfg.Summary.Budget.MonthlyTokenLimit,
			action, logger,
		).WithKeyPrefix(cfg.Storage.KeyPrefix)
		if store != nil {
			budget.WithStore(ctx, budgetrepo.New(store, budgetrepo.DefaultDailyTTL, budgetrepo.DefaultMonthlyTTL))
		}
	}

	// Pass nil interfaces, not typed nil pointers, when the budget is off.
	var budgetChecker summaryuc.BudgetChecker
	var budgetReader usageuc.BudgetReader
	if budget != nil {
		budgetChecker = budget
		budgetReader = budget
	}

	remote := openaiSum.NewSummarizer(&openaiSum.Config{
		APIKey:      cfg.Summary.APIKey,
		BaseURL:     cfg.Summary.BaseURL,
		Model:       cfg.Summary.Model,
		MaxTokens:   cfg.Summary.MaxTokens,
		Temperature: *cfg.Summary.Temperature,
		Provider:    cfg.Summary.Provider,
		Logger:      logger,
	})
	summarizer := buildSummarizer(cfg.Summary, remote, budgetChecker, logger)
	logger.Info("Summarizer chain created",
		zap.String("provider", cfg.Summary.Provider),
		zap.String("model", cfg.Summary.Model),
		zap.Bool("configured", remote.Configured()),
	)

	clusterSvc := clusteruc.New(summarizer, logger).
		WithVocabularySize(cfg.Clustering.VocabularySize).
		WithMaxIterations(cfg.Clustering.MaxIterations).
		WithSummaryConcurrency(cfg.Summary.MaxConcurrency)
	usageSvc := usageuc.New(budgetReader)

	var pinger healthuc.DBPinger
	if store != nil {
		pinger = store
	}
	healthSvc := healthuc.New(pinger, remote)

	server := chiTransport.NewServer(clusterSvc, usageSvc, healthSvc, logger).
		WithMaxDocuments(cfg.Clustering.MaxDocuments)

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

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
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

// buildSummarizer assembles the chain: OpenAI -> Instrumented -> Fallback(rule-based).
// Without an API key every cluster is labeled by the rule-based tier.
func buildSummarizer(
	cfg config.SummaryConfig,
	remote *openaiSum.Summarizer,
	budget summaryuc.BudgetChecker,
	logger *zap.Logger,
) domain.Summarizer {
	var primary domain.Summarizer
	if remote.Configured() {
		primary = summaryuc.NewInstrumentedSummarizer(
			remote, cfg.Provider, cfg.Model,
			time.Duration(cfg.TimeoutSec)*time.Second,
			budget, logger,
		)
	}
	return summaryuc.NewFallbackSummarizer(primary, summaryuc.NewRuleBasedSummarizer(), logger)
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.String("path", r.URL.Path),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorCodeInternalError,
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
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Summary headers are set by the clusters handler before the body.
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.Int64("content_length", r.ContentLength),
				zap.String("summary_tokens", ww.Header().Get("X-Summary-Tokens")),
				zap.String("summary_fallbacks", ww.Header().Get("X-Summary-Fallbacks")),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
