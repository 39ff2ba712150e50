package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"adscout/internal/app"
	"adscout/pkg/config"
	"adscout/pkg/logger"
	"adscout/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		fmt.Printf("Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log := logger.New(cfg.Logging.Level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	a, err := app.New(ctx, cfg, log, metrics.New())
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize application")
	}
	defer func() {
		if err := a.Close(); err != nil {
			log.WithError(err).Error("Failed to close application")
		}
	}()

	if err := a.Serve(ctx, prometheus.DefaultGatherer); err != nil {
		log.WithError(err).Error("Server exited with error")
		stop()
		os.Exit(1)
	}
}
