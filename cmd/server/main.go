package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/rs/zerolog"

	"github.com/ahmedbilal-7191/sre-bootcamp/internal/config"
	"github.com/ahmedbilal-7191/sre-bootcamp/internal/database"
	"github.com/ahmedbilal-7191/sre-bootcamp/internal/handler"
	"github.com/ahmedbilal-7191/sre-bootcamp/internal/logger"
	"github.com/ahmedbilal-7191/sre-bootcamp/internal/metrics"
	"github.com/ahmedbilal-7191/sre-bootcamp/internal/repository"
	"github.com/ahmedbilal-7191/sre-bootcamp/internal/router"
	"github.com/ahmedbilal-7191/sre-bootcamp/internal/service"
)

func main() {
	cfg := config.Load()

	log := logger.Setup(cfg.LogLevel, cfg.LogFormat)
	log.Info().
		Str("port", cfg.ServerPort).
		Str("mode", cfg.GinMode).
		Str("log_level", cfg.LogLevel).
		Msg("Starting student API")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	pool, err := database.NewPostgresPool(ctx, cfg, log)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to PostgreSQL")
	}
	defer pool.Close()

	// Metrics live on an explicit registry created once here and injected
	// downward, never reached as ambient globals.
	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)
	httpMetrics := metrics.New(registry)

	studentRepo := repository.NewStudentRepository(pool)
	studentService := service.NewStudentService(studentRepo, log)
	studentHandler := handler.NewStudentHandler(studentService)

	r := router.SetupRouter(studentHandler, httpMetrics, registry, log, cfg)

	srv := &http.Server{
		Addr:    ":" + cfg.ServerPort,
		Handler: r,
	}

	go func() {
		log.Info().Str("addr", srv.Addr).Msg("Server listening")
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server error")
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	sig := <-quit

	log.Info().Str("signal", sig.String()).Msg("Shutting down gracefully...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("HTTP server shutdown error")
	}

	log.Info().Msg("Shutdown complete")
}

// init sets zerolog global defaults before main runs.
func init() {
	zerolog.TimeFieldFormat = time.RFC3339
}
