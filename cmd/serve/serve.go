// Package serve implements the serve command, which runs the GardenKeep
// HTTP server.
package serve

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/spf13/cobra"

	api "github.com/gardenkeep/gardenkeep-go/internal/api/v2"
	"github.com/gardenkeep/gardenkeep-go/internal/catalog"
	"github.com/gardenkeep/gardenkeep-go/internal/conf"
	"github.com/gardenkeep/gardenkeep-go/internal/datastore"
	"github.com/gardenkeep/gardenkeep-go/internal/gardenai"
	"github.com/gardenkeep/gardenkeep-go/internal/identify"
	"github.com/gardenkeep/gardenkeep-go/internal/logging"
	"github.com/gardenkeep/gardenkeep-go/internal/observability/metrics"
)

// Command creates the serve command.
func Command(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Run the GardenKeep HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			return runServer(cmd.Context(), settings)
		},
	}
}

func runServer(ctx context.Context, settings *conf.Settings) error {
	log := logging.ForService("server")

	store := datastore.New(settings)
	if err := store.Open(); err != nil {
		return fmt.Errorf("failed to open datastore: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("failed to close datastore", "error", err)
		}
	}()

	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector())
	identifyMetrics, err := metrics.NewIdentifyMetrics(registry)
	if err != nil {
		return fmt.Errorf("failed to register metrics: %w", err)
	}

	catalogConfig := catalog.DefaultConfig()
	catalogConfig.APIKey = settings.Catalog.APIKey
	if settings.Catalog.Endpoint != "" {
		catalogConfig.BaseURL = settings.Catalog.Endpoint
	}
	if settings.Catalog.Timeout > 0 {
		catalogConfig.Timeout = settings.Catalog.Timeout
	}
	if settings.Catalog.CacheTTL > 0 {
		catalogConfig.CacheTTL = settings.Catalog.CacheTTL
	}
	catalogClient := catalog.NewClient(catalogConfig)
	if !catalogClient.Available() {
		log.Warn("catalog API key not configured, identification will skip the catalog stage")
	}

	aiClient, err := buildAIClient(ctx, settings)
	if err != nil {
		return err
	}

	pipeline := identify.New(catalogClient, aiClient, identifyMetrics)

	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())
	e.GET("/metrics", echo.WrapHandler(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	controller := api.New(e, store, settings, pipeline)
	defer controller.Shutdown()

	addr := fmt.Sprintf("%s:%d", settings.Server.Host, settings.Server.Port)
	errChan := make(chan error, 1)
	go func() {
		if err := e.Start(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errChan <- err
		}
	}()
	log.Info("server started", "addr", addr)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, os.Interrupt, syscall.SIGTERM)

	select {
	case err := <-errChan:
		return fmt.Errorf("server error: %w", err)
	case sig := <-quit:
		log.Info("shutting down", "signal", sig.String())
	case <-ctx.Done():
		log.Info("shutting down", "reason", "context cancelled")
	}

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("graceful shutdown failed: %w", err)
	}
	return nil
}

// buildAIClient wires the configured LLM provider into the AI client.
func buildAIClient(ctx context.Context, settings *conf.Settings) (*gardenai.Client, error) {
	if settings.AI.APIKey == "" {
		return nil, fmt.Errorf("AI API key is required (set GARDENKEEP_AI_APIKEY or ai.apikey)")
	}

	switch settings.AI.Provider {
	case "", "gemini":
		provider, err := gardenai.NewGeminiProvider(ctx, settings.AI.APIKey, settings.AI.Model)
		if err != nil {
			return nil, fmt.Errorf("failed to create AI provider: %w", err)
		}
		return gardenai.NewClient(provider), nil
	default:
		return nil, fmt.Errorf("unsupported AI provider: %s", settings.AI.Provider)
	}
}
