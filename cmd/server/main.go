package main

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"doccheck/internal/app"
	consistencyHandler "doccheck/internal/consistency/handler"
	jwttoken "doccheck/internal/jwt_token"
	"doccheck/internal/platform/buildinfo"
	"doccheck/internal/platform/config"
	"doccheck/internal/platform/httpserver"
	"doccheck/internal/platform/logger"
	"doccheck/internal/platform/metrics"
	"doccheck/internal/textextract"
	httptransport "doccheck/internal/transport/http"
	"doccheck/pkg/platform/audit/publisher"
	"doccheck/pkg/platform/audit/store/memory"
	"doccheck/pkg/platform/middleware/auth"
)

// main wires high-level dependencies, exposes the HTTP router, and keeps the
// server lifecycle small. Business logic lives in internal packages.
func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.FromEnv()
	if err != nil {
		return err
	}
	log := logger.New(cfg.LogLevel, cfg.LogFormat)
	slog.SetDefault(log)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pipeline, err := app.Build(ctx, cfg, log, prometheus.DefaultRegisterer)
	if err != nil {
		return fmt.Errorf("build validation pipeline: %w", err)
	}
	defer pipeline.Close()

	if err := os.MkdirAll(cfg.UploadRoot, 0o750); err != nil {
		return fmt.Errorf("prepare upload directory: %w", err)
	}

	extractor := textextract.New(
		textextract.WithTesseract(cfg.TesseractPath),
		textextract.WithLogger(log),
	)

	handlerOpts := []consistencyHandler.Option{consistencyHandler.WithVersion(buildinfo.Resolve())}
	if pipeline.Embedding != nil {
		handlerOpts = append(handlerOpts, consistencyHandler.WithEmbeddingStatus(pipeline.Embedding))
	}
	if cfg.AuditCapacity > 0 {
		trail := publisher.NewPublisher(memory.NewInMemoryStore(cfg.AuditCapacity),
			publisher.WithAsyncBuffer(256),
			publisher.WithLogger(log),
		)
		defer trail.Close()
		handlerOpts = append(handlerOpts, consistencyHandler.WithAuditTrail(trail))
	}
	handler := consistencyHandler.New(pipeline.Evaluator, extractor, cfg.UploadRoot, log, handlerOpts...)

	var validator auth.JWTValidator
	if cfg.Auth.Enabled() {
		tokens := jwttoken.NewJWTService(cfg.Auth.SigningKey, cfg.Auth.Issuer, cfg.Auth.Audience)
		validator = jwttoken.NewJWTServiceAdapter(tokens)
	} else {
		log.Warn("service token auth disabled; set SERVICE_JWT_KEY to require bearer tokens")
	}

	router := httptransport.NewRouter(httptransport.RouterConfig{
		Handler:        handler,
		Logger:         log,
		Metrics:        metrics.New(),
		TokenValidator: validator,
		AdminToken:     cfg.AdminToken,
		RequestTimeout: cfg.RequestTimeout,
		RateLimiter:    pipeline.RateLimiter,
	})

	srv := httpserver.New(cfg.Addr, router)
	errCh := make(chan error, 1)
	go func() {
		log.Info("starting document validator",
			"addr", cfg.Addr,
			"version", buildinfo.Resolve(),
			"semantic_descriptions", pipeline.Evaluator.SemanticEnabled(),
		)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server error: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	log.Info("shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}
