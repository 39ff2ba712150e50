package app

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"time"

	"adscout/internal/delivery"
	"adscout/internal/domain"
	"adscout/internal/infrastructure"
	"adscout/internal/usecase"
	"adscout/pkg/config"
	"adscout/pkg/database"
	"adscout/pkg/logger"
	"adscout/pkg/metrics"

	"github.com/prometheus/client_golang/prometheus"
)

const shutdownTimeout = 30 * time.Second

// App holds the services shared by the HTTP server and the CLI.
type App struct {
	Config      *config.Config
	Logger      *logger.Logger
	Metrics     *metrics.Metrics
	Search      *usecase.SearchService
	Collections *usecase.CollectionService
	// Creative is nil unless an assistant API key is configured.
	Creative *usecase.CreativeService

	db        *sql.DB
	assistant *infrastructure.GeminiAssistant
}

// New opens the store and builds every client and service from cfg.
func New(ctx context.Context, cfg *config.Config, log *logger.Logger, m *metrics.Metrics) (*App, error) {
	db, err := database.Open(ctx, cfg.Storage.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	apify := infrastructure.NewApifyClient(infrastructure.ApifyClientConfig{
		BaseURL:            cfg.External.ApifyBaseURL,
		ActorID:            cfg.External.ApifyActorID,
		Token:              cfg.External.ApifyToken,
		Timeout:            cfg.Search.RequestTimeout,
		RateLimitPerSecond: cfg.Search.RateLimitPerSecond,
		RateLimitBurst:     cfg.Search.RateLimitBurst,
	}, log, m)

	repo := infrastructure.NewCollectionRepository(db, log)

	a := &App{
		Config:      cfg,
		Logger:      log,
		Metrics:     m,
		Search:      usecase.NewSearchService(apify, log, m, cfg.Search.WorkerPoolSize, cfg.Search.DefaultCountry),
		Collections: usecase.NewCollectionService(repo, log, m),
		db:          db,
	}

	if cfg.External.GeminiAPIKey == "" {
		log.Warn("GEMINI_API_KEY not set, creative endpoints disabled")
		return a, nil
	}

	a.assistant, err = infrastructure.NewGeminiAssistant(ctx, cfg.External.GeminiAPIKey, cfg.External.GeminiModel, log, m)
	if err != nil {
		_ = db.Close()
		return nil, err
	}

	var generator domain.ImageGenerator
	if cfg.External.ImageAPIKey != "" {
		generator = infrastructure.NewImageGenerator(
			cfg.External.ImageAPIURL,
			cfg.External.ImageAPIKey,
			cfg.External.ImageModel,
			cfg.Search.RequestTimeout,
			log,
			m,
		)
	} else {
		log.Warn("IMAGE_API_KEY not set, image generation disabled")
	}

	a.Creative = usecase.NewCreativeService(
		repo,
		a.assistant,
		generator,
		infrastructure.NewHTTPImageFetcher(cfg.Search.RequestTimeout, m),
		infrastructure.NewFileImageStore(cfg.Storage.ImageDir),
		log,
		m,
		usecase.CreativeConfig{
			DownloadConcurrency: cfg.Creative.DownloadConcurrency,
			MaxImages:           cfg.Creative.MaxImages,
			ImageSize:           cfg.Creative.ImageSize,
		},
	)

	return a, nil
}

// Close releases the store and the assistant client.
func (a *App) Close() error {
	var errs []error
	if a.assistant != nil {
		errs = append(errs, a.assistant.Close())
	}
	errs = append(errs, a.db.Close())
	return errors.Join(errs...)
}

// Handler returns the HTTP API. Metrics are served from gatherer.
func (a *App) Handler(gatherer prometheus.Gatherer) http.Handler {
	handlers := delivery.NewHTTPHandlers(a.Search, a.Collections, a.Creative, a.Logger)
	return delivery.NewHTTPRouter(handlers, a.Logger, a.Metrics, gatherer, a.Config.Server.RequestTimeout).SetupRoutes()
}

// Serve runs the HTTP API until ctx is cancelled, then drains in-flight
// requests for up to shutdownTimeout.
func (a *App) Serve(ctx context.Context, gatherer prometheus.Gatherer) error {
	srv := &http.Server{
		Addr:              ":" + a.Config.Server.Port,
		Handler:           a.Handler(gatherer),
		ReadHeaderTimeout: 10 * time.Second,
		IdleTimeout:       60 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		a.Logger.WithField("addr", srv.Addr).Info("Starting server")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
		close(errCh)
	}()

	select {
	case err := <-errCh:
		if err != nil {
			return fmt.Errorf("server failed: %w", err)
		}
		return nil
	case <-ctx.Done():
	}

	a.Logger.Info("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server shutdown failed: %w", err)
	}

	a.Logger.Info("Server stopped")
	return nil
}
