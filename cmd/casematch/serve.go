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
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/kailas-cloud/casematch/internal/config"
	logpkg "github.com/kailas-cloud/casematch/internal/logger"
	"github.com/kailas-cloud/casematch/internal/metrics"
	recordrepo "github.com/kailas-cloud/casematch/internal/repository/record"
	chiTransport "github.com/kailas-cloud/casematch/internal/transport/chi"
	"github.com/kailas-cloud/casematch/internal/version"
	healthuc "github.com/kailas-cloud/casematch/internal/usecase/health"
	matchuc "github.com/kailas-cloud/casematch/internal/usecase/match"
	"github.com/kailas-cloud/casematch/internal/usecase/retrieval"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API server",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, logger, err := bootstrap()
		if err != nil {
			return err
		}
		defer func() { _ = logger.Sync() }()
		return serve(cmd.Context(), cfg, logger)
	},
}

func serve(ctx context.Context, cfg config.Config, logger *zap.Logger) error {
	logger.Info("Starting casematch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", flagEnv),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.String("db_driver", cfg.Database.Driver),
		zap.Strings("db_addrs", cfg.Database.Addrs),
	)

	store, err := openStore(ctx, cfg.Database, logger)
	if err != nil {
		return err
	}
	defer store.Close()

	records, err := recordrepo.Open(ctx, cfg.Records.DSN)
	if err != nil {
		return fmt.Errorf("open case records: %w", err)
	}
	defer func() { _ = records.Close() }()

	// Register metrics explicitly (no init())
	metrics.RegisterEmbeddingMetrics()
	metrics.RegisterRetrievalMetrics()
	metrics.RegisterHTTPMetrics()

	textClient, textEmbedder := buildEmbedder(cfg, store, logger)
	faceClient, faceEmbedder := buildFaceEmbedder(cfg, logger)

	spaces := newSpaceRepo(store, cfg.Spaces)
	searcher := retrieval.NewDualSearcher(spaces, logger).
		WithSpaceTimeout(time.Duration(cfg.Retrieval.SpaceTimeoutMS) * time.Millisecond)
	retrievalSvc := retrieval.New(searcher, spaces.Dimensions())

	opts := matchuc.Options{
		WeightFace:   cfg.Retrieval.WeightFace,
		WeightText:   cfg.Retrieval.WeightText,
		TopN:         cfg.Retrieval.TopN,
		MaxTopN:      cfg.Retrieval.MaxTopN,
		PoolLimit:    cfg.Retrieval.PoolLimit,
		MaxPoolLimit: cfg.Retrieval.MaxPoolLimit,
	}
	queryEmbedder := withInstruction(textEmbedder, cfg.Embedding.QueryInstruction)
	matchSvc := matchuc.New(retrievalSvc, records, queryEmbedder, faceEmbedder, opts, logger).WithVectors(spaces)

	// Pass nil interfaces, not typed nil pointers, for disabled providers.
	var textCheck, faceCheck healthuc.EmbeddingChecker
	if textClient != nil {
		textCheck = newEmbeddingHealthChecker(textClient)
	}
	if faceClient != nil {
		faceCheck = faceClient
	}
	healthSvc := healthuc.New(store, records, textCheck, faceCheck)

	server := chiTransport.NewServer(retrievalSvc, matchSvc, records, spaces, healthSvc, opts, logger).
		WithMaxBodyBytes(cfg.HTTP.MaxBodyBytes)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys))
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

	serveErr := make(chan error, 1)
	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			serveErr <- err
		}
	}()

	select {
	case <-quit:
		logger.Info("Received shutdown signal")
	case err := <-serveErr:
		return fmt.Errorf("http server: %w", err)
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
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

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())
			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
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
