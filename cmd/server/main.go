/*
main.go - Application entry point

PURPOSE:
  Initializes and starts the leave quota tracker server.
  Handles configuration, dependency injection, and graceful shutdown.

STARTUP SEQUENCE:
  1. Load configuration (.env, environment, flags)
  2. Build the logger
  3. Open the store selected by -store
  4. Create API handler with dependencies
  5. Configure HTTP router
  6. Start server with graceful shutdown

STORES:
  sqlite   SQLite database at -db (":memory:" works too)
  json     Single JSON document at -db, rewritten on every change
  memory   Nothing persisted

GRACEFUL SHUTDOWN:
  On SIGINT/SIGTERM:
  1. Stop accepting new connections
  2. Wait for active requests to complete (30s timeout)
  3. Close the store
  4. Exit

EXAMPLES:
  # Run with file database
  ./server -db="./data/leave.db"

  # Keep the data in a JSON file
  ./server -store=json -db="./data/data.json"

  # Demo mode with scenario loaders
  ./server -store=memory -dev

SEE ALSO:
  - config/config.go: Settings and defaults
  - api/server.go: Router configuration
  - store/sqlite/sqlite.go, store/jsonfile/jsonfile.go: Store implementations
*/
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/sirupsen/logrus"
	"github.com/warp/leave-quota/api"
	"github.com/warp/leave-quota/config"
	"github.com/warp/leave-quota/leave"
	"github.com/warp/leave-quota/store/jsonfile"
	"github.com/warp/leave-quota/store/sqlite"
)

func main() {
	cfg, err := config.Load(os.Args[1:])
	if err != nil {
		logrus.Fatalf("Failed to load configuration: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		logrus.Fatalf("Invalid configuration: %v", err)
	}
	log := cfg.NewLogger()

	// Initialize store
	store, err := openStore(cfg)
	if err != nil {
		log.WithError(err).Fatal("Failed to initialize store")
	}

	// Initialize handler
	handler := api.NewHandler(store, log)
	handler.ExportDir = cfg.ExportDir

	// Create router
	router := api.NewRouter(handler, api.RouterOptions{
		AllowedOrigins:  cfg.CORSOrigins,
		EnableDevRoutes: cfg.EnableDevRoutes,
		EnableMetrics:   cfg.EnableMetrics,
		StaticDir:       cfg.StaticDir,
	})

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf(":%d", cfg.Port),
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in goroutine
	go func() {
		log.WithFields(logrus.Fields{
			"port":  cfg.Port,
			"store": cfg.StoreBackend,
			"db":    cfg.DBPath,
			"dev":   cfg.EnableDevRoutes,
		}).Infof("Server starting on http://localhost:%d", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.WithError(err).Fatal("Server failed")
		}
	}()

	// Wait for interrupt signal
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.WithError(err).Error("Server forced to shutdown")
	}
	if err := store.Close(); err != nil {
		log.WithError(err).Error("Failed to close store")
	}

	log.Info("Server stopped")
}

func openStore(cfg config.Config) (leave.Store, error) {
	switch cfg.StoreBackend {
	case config.BackendJSON:
		return jsonfile.New(cfg.DBPath)
	case config.BackendMemory:
		return jsonfile.NewMemory(), nil
	default:
		return sqlite.New(cfg.DBPath)
	}
}
