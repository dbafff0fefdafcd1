package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/kisanbazaar/kisan-bazaar/internal/advisory"
	"github.com/kisanbazaar/kisan-bazaar/internal/analytics"
	"github.com/kisanbazaar/kisan-bazaar/internal/catalog"
	"github.com/kisanbazaar/kisan-bazaar/internal/config"
	"github.com/kisanbazaar/kisan-bazaar/internal/forum"
	"github.com/kisanbazaar/kisan-bazaar/internal/notifier"
	"github.com/kisanbazaar/kisan-bazaar/internal/server"
	"github.com/kisanbazaar/kisan-bazaar/internal/session"
	"github.com/kisanbazaar/kisan-bazaar/internal/storage"
	"github.com/kisanbazaar/kisan-bazaar/internal/validator"
	"github.com/kisanbazaar/kisan-bazaar/internal/weather"
)

func main() {
	slog.Info("Starting Kisan Bazaar server...")
	cfg, err := config.Load()
	if err != nil {
		slog.Error("Critical error loading configuration", "error", err)
		os.Exit(1)
	}

	ctx := context.Background()
	store, err := storage.OpenSQLite(cfg.DBPath)
	if err != nil {
		slog.Error("Critical error opening the store", "error", err, "path", cfg.DBPath)
		os.Exit(1)
	}
	defer store.Close()

	v := validator.New()
	cat := catalog.New(store, v, cfg.SeedDemoData)
	history := analytics.NewHistory(store, analytics.DefaultRand())
	board := forum.NewService(store, v, cfg.SeedDemoData)
	sessions := session.NewManager(store)

	gemini, err := advisory.NewGemini(ctx, cfg.GeminiAPIKey, cfg.GeminiModel)
	if err != nil {
		slog.Error("Critical error initializing the Gemini client", "error", err)
		os.Exit(1)
	}
	engine := advisory.NewEngine(gemini)

	var fetcher weather.Fetcher
	if cfg.WeatherAPIURL != "" {
		fetcher = weather.NewHTTPFetcher(cfg.WeatherAPIURL, cfg.WeatherTimeout)
	}
	wx := weather.NewProvider(fetcher)

	srv := server.New(cat, history, engine, wx, board, sessions)

	httpServer := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      srv.Routes(),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	alertCtx, stopAlerts := context.WithCancel(ctx)
	defer stopAlerts()
	if cfg.AlertWebhookURL != "" {
		go runAlertLoop(alertCtx, cfg.AlertInterval, cat, engine, wx, notifier.New(cfg.AlertWebhookURL))
	}

	// Graceful shutdown on SIGTERM/SIGINT
	go func() {
		sigCh := make(chan os.Signal, 1)
		signal.Notify(sigCh, syscall.SIGTERM, syscall.SIGINT)
		sig := <-sigCh
		slog.Info("Received signal, shutting down gracefully...", "signal", sig)
		stopAlerts()

		shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			slog.Error("HTTP server shutdown error", "error", err)
		}
	}()

	slog.Info("Listening on port", "port", cfg.Port)
	if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		slog.Error("Failed to listen and serve", "error", err)
		os.Exit(1)
	}
	slog.Info("Server stopped.")
}

// runAlertLoop periodically regenerates advice and pushes the high-priority
// items to the alert webhook.
func runAlertLoop(
	ctx context.Context,
	interval time.Duration,
	cat *catalog.Service,
	engine *advisory.Engine,
	wx *weather.Provider,
	alerts *notifier.Client,
) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}

		runCtx, cancel := context.WithTimeout(ctx, time.Minute)
		records, err := cat.List(runCtx)
		if err != nil {
			slog.Error("Alert loop failed to load the catalog", "error", err)
			cancel()
			continue
		}
		items := engine.Advise(runCtx, records, wx.ConditionsSummary(runCtx))
		if err := alerts.SendAdvisories(runCtx, items); err != nil {
			slog.Error("Failed to send advisory alerts", "error", err)
		}
		cancel()
	}
}
