package main

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"github.com/couchcryptid/covid-br-dashboard/internal/adapter/brasilio"
	httpadapter "github.com/couchcryptid/covid-br-dashboard/internal/adapter/http"
	kafkaadapter "github.com/couchcryptid/covid-br-dashboard/internal/adapter/kafka"
	"github.com/couchcryptid/covid-br-dashboard/internal/config"
	"github.com/couchcryptid/covid-br-dashboard/internal/dashboard"
	"github.com/couchcryptid/covid-br-dashboard/internal/observability"
	"github.com/couchcryptid/covid-br-dashboard/internal/pipeline"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	logger := observability.NewLogger(cfg)
	metrics := observability.NewMetrics()

	settings, err := dashboard.LoadSettings(cfg.DashboardConfig)
	if err != nil {
		logger.Error("failed to load dashboard settings", "error", err)
		os.Exit(1)
	}

	client := brasilio.NewClient(cfg.BrasilIOURL, cfg.BrasilIOToken, cfg.FetchTimeout, metrics, logger)
	if cfg.BrasilIOToken == "" {
		logger.Warn("BRASILIO_TOKEN is not set, requests may be rejected")
	}

	// Snapshot publishing is feature-flagged via KAFKA_BROKERS.
	var (
		publisher pipeline.Publisher
		writer    *kafkaadapter.Writer
	)
	if cfg.KafkaEnabled {
		writer = kafkaadapter.NewWriter(cfg, logger)
		publisher = writer
		logger.Info("snapshot publishing enabled", "brokers", cfg.KafkaBrokers, "topic", cfg.KafkaTopic)
	} else {
		logger.Info("snapshot publishing disabled")
	}

	p := pipeline.New(client, publisher, logger, metrics, cfg.TopN)
	srv := httpadapter.NewServer(cfg.HTTPAddr, p, settings, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	go func() {
		if err := srv.Start(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("http server error", "error", err)
			stop()
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
