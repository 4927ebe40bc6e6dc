package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/jonboulle/clockwork"

	"github.com/couchcryptid/bom-hazard-etl/internal/adapter/bom"
	httpadapter "github.com/couchcryptid/bom-hazard-etl/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/bom-hazard-etl/internal/adapter/kafka"
	"github.com/couchcryptid/bom-hazard-etl/internal/config"
	"github.com/couchcryptid/bom-hazard-etl/internal/domain"
	"github.com/couchcryptid/bom-hazard-etl/internal/observability"
	"github.com/couchcryptid/bom-hazard-etl/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	client := bom.NewClient(cfg.ObservationsURL, cfg.ForecastsURL, cfg.FetchTimeout, logger)

	// Sink publishing is feature-flagged via KAFKA_SINK_TOPIC.
	var publisher pipeline.Publisher
	var writer *kafkaadapter.Writer
	if cfg.SinkEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("kafka sink enabled", "topic", cfg.KafkaSinkTopic, "brokers", cfg.KafkaBrokers)
	} else {
		logger.Info("kafka sink disabled")
	}

	refresher := pipeline.New(
		client,
		publisher,
		domain.DefaultRiskConfig(),
		cfg.ObsRefreshInterval,
		cfg.ForecastRefreshInterval,
		logger,
		metrics,
		clockwork.NewRealClock(),
	)

	srv := httpadapter.NewServer(cfg.HTTPAddr, refresher, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	// Start HTTP server.
	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
		}
	}()

	// Start refresh loops.
	go func() {
		if err := refresher.Run(ctx); err != nil {
			logger.Error("refresher error", "error", err)
		}
	}()

	<-ctx.Done()
	logger.Info("shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.ShutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("http server shutdown error", "error", err)
	}
	if writer != nil {
		if err := writer.Close(); err != nil {
			logger.Error("kafka writer close error", "error", err)
		}
	}

	logger.Info("shutdown complete")
}
