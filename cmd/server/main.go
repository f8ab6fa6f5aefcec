/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the leave tracker server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env + environment)
  2. Build the zap logger
  3. Open the request store (memory or sqlite)
  4. Create ledger and request service
  5. Rebuild balances from approved requests already in the store
  6. Create metrics and seed the demo team when SEED_DEMO is set
  7. Configure HTTP router and start the server

CONFIGURATION:
  See config/config.go for every variable. The most common:
    PORT=8080  STORE_DRIVER=memory|sqlite  DB_PATH=:memory:
    OVERDRAW_POLICY=allow|block  PERIOD_TYPE=calendar_year|fiscal_year

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close database connection
  4. Exit

SEE ALSO:
  - api/server.go: Router configuration
  - api/handlers.go: HTTP handlers
  - timeoff/request.go: RequestService
*/
package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/warp/leave-tracker/api"
	"github.com/warp/leave-tracker/config"
	"github.com/warp/leave-tracker/generic"
	"github.com/warp/leave-tracker/logging"
	"github.com/warp/leave-tracker/store/memory"
	"github.com/warp/leave-tracker/store/sqlite"
	"github.com/warp/leave-tracker/timeoff"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}

	logger, err := logging.New(cfg)
	if err != nil {
		log.Fatalf("Failed to build logger: %v", err)
	}
	defer logger.Sync()

	// Initialize store
	var (
		repo     timeoff.Repository
		holidays timeoff.HolidayStore
	)
	switch cfg.Store.Driver {
	case config.DriverSQLite:
		store, err := sqlite.New(cfg.Store.DBPath, sqlite.WithLogger(logger.Named("sqlite")))
		if err != nil {
			logger.Fatal("failed to initialize database", zap.Error(err))
		}
		defer store.Close()
		repo, holidays = store, store
	default:
		repo, holidays = memory.New(), memory.NewHolidays()
	}

	directory := timeoff.NewStaticDirectory()
	ledger := timeoff.NewBalanceLedger(cfg.Leave.Periods, generic.Today)
	service := timeoff.NewRequestService(timeoff.RequestServiceConfig{
		Repository:     repo,
		Ledger:         ledger,
		Holidays:       holidays,
		Directory:      directory,
		Overdraw:       cfg.Leave.Overdraw,
		IncludePending: cfg.Leave.IncludePending,
		Logger:         logger.Named("timeoff"),
	})

	if _, err := service.Rebuild(context.Background()); err != nil {
		logger.Fatal("failed to rebuild leave balances", zap.Error(err))
	}

	metrics := api.NewMetrics()
	defer metrics.Observe(service)()

	if cfg.SeedDemo {
		seeded, err := api.SeedDemo(context.Background(), api.DemoSeed{
			Service:   service,
			Directory: directory,
			Holidays:  holidays,
			Today:     generic.Today(),
		})
		if err != nil {
			logger.Fatal("failed to seed demo data", zap.Error(err))
		}
		logger.Info("demo data loaded",
			zap.Int("employees", len(api.DemoTeam)),
			zap.Int("requests", len(seeded)))
	}

	handler := &api.Handler{
		Service:   service,
		Directory: directory,
		Holidays:  holidays,
		Locale:    cfg.Leave.Locale,
		Logger:    logger,
	}
	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins: cfg.CORS.AllowedOrigins,
		Metrics:        metrics,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		logger.Info("server starting",
			zap.Int("port", cfg.Port),
			zap.String("env", cfg.Env),
			zap.String("store", cfg.Store.Driver),
			zap.String("overdraw", string(cfg.Leave.Overdraw)),
			zap.String("period", string(cfg.Leave.Periods.Type)))
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("server failed", zap.Error(err))
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	logger.Info("shutting down server")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		logger.Error("server forced to shutdown", zap.Error(err))
		return
	}

	logger.Info("server stopped")
}
