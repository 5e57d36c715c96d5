/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the retail insights server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load .env and environment, then parse command-line flags
  2. Build analysis options from the profile and PROMO_MODE
  3. Open the snapshot source (CSV file or SQLite store)
  4. Load the first snapshot, seeding a scenario into an empty store
  5. Configure the HTTP router and start the refresher
  6. Start server with graceful shutdown

COMMAND-LINE FLAGS (override the environment):
  -port       HTTP server port (PORT, default 8080)
  -db         SQLite database path (DB_PATH, default retail.db)
              Use ":memory:" for an in-memory database
  -csv        Read this CSV export instead of the database (CSV_PATH)
  -scenario   Scenario seeded into an empty database (SCENARIO)
  -profile    JSON analysis profile (PROFILE_PATH)
  -promo-mode longitudinal or cross_sectional (PROMO_MODE)
  -refresh    Snapshot reload interval, 0 disables (REFRESH_INTERVAL)

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop the refresher
  2. Stop accepting new connections
  3. Wait for active requests to complete (30s timeout)
  4. Close database connection

EXAMPLES:
  # Demo on an in-memory database
  ./server -db=":memory:" -scenario=bidco-promo

  # Serve a CSV export, reloading every 15 minutes
  ./server -csv=./data/sales.csv -refresh=15m

SEE ALSO:
  - config/config.go: Environment variables
  - api/server.go: Router configuration
  - insight/service.go: Snapshot and operations
*/
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/warp/retail-insights/api"
	"github.com/warp/retail-insights/config"
	"github.com/warp/retail-insights/factory"
	"github.com/warp/retail-insights/insight"
	"github.com/warp/retail-insights/retail"
	"github.com/warp/retail-insights/store/csvfile"
	"github.com/warp/retail-insights/store/sqlite"
)

func main() {
	if err := run(); err != nil {
		slog.Error("server failed", "error", err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	// Flags
	port := flag.Int("port", cfg.Server.Port, "HTTP server port")
	dbPath := flag.String("db", cfg.Data.DBPath, "SQLite database path")
	csvPath := flag.String("csv", cfg.Data.CSVPath, "CSV export to read instead of the database")
	scenario := flag.String("scenario", cfg.Data.Scenario, "scenario seeded into an empty database")
	profile := flag.String("profile", cfg.Analysis.ProfilePath, "JSON analysis profile")
	promoMode := flag.String("promo-mode", cfg.Analysis.PromoMode, "promo detection mode")
	refresh := flag.Duration("refresh", cfg.Data.RefreshInterval, "snapshot reload interval (0 disables)")
	flag.Parse()
	cfg.Analysis.PromoMode = *promoMode

	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)

	// Analysis options
	opts, err := factory.LoadProfile(*profile)
	if err != nil {
		return err
	}
	if opts, err = cfg.Apply(opts); err != nil {
		return err
	}

	// Snapshot source
	var (
		source insight.Source
		store  *sqlite.Store
	)
	if *csvPath != "" {
		source = csvfile.Source{Path: *csvPath, Logger: logger}
	} else {
		store, err = sqlite.New(*dbPath)
		if err != nil {
			return fmt.Errorf("failed to initialize database: %w", err)
		}
		defer store.Close()
		source = store
	}

	svc, err := insight.New(source, opts, logger)
	if err != nil {
		return err
	}
	handler := api.NewHandler(svc, store)
	handler.AllowedOrigins = cfg.Server.AllowedOrigins

	ctx := context.Background()
	table, err := svc.Reload(ctx)
	switch {
	case err == nil:
		handler.Metrics.Snapshot(table)
	case errors.Is(err, retail.ErrEmptyTable) && store != nil && *scenario != "":
		logger.Info("empty database, seeding scenario", "scenario", *scenario)
		if err := handler.SeedScenario(ctx, *scenario); err != nil {
			return fmt.Errorf("failed to seed scenario: %w", err)
		}
	default:
		logger.Warn("no snapshot loaded", "error", err)
	}

	refresher := insight.NewRefresher(svc, *refresh)
	refresher.OnReload = func(err error) {
		handler.Metrics.Reloaded(err)
		if t, snapErr := svc.Snapshot(); err == nil && snapErr == nil {
			handler.Metrics.Snapshot(t)
		}
	}
	refresher.Start()
	defer refresher.Stop()

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", *port),
		Handler:      api.NewRouter(handler),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	serverErr := make(chan error, 1)
	go func() {
		logger.Info("server starting",
			"addr", fmt.Sprintf("http://localhost:%d", *port),
			"promo_mode", opts.Promo.Mode,
		)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-serverErr:
		return err
	case <-quit:
	}

	logger.Info("shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}

	logger.Info("server stopped")
	return nil
}
