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
	"strings"
	"syscall"
	"time"

	"github.com/CTAG07/Curricula/pkg/catalog"
	"github.com/CTAG07/Curricula/pkg/generate"
	"github.com/CTAG07/Curricula/pkg/render"
)

var (
	Version   = "dev"
	Commit    = "none"
	BuildDate = "unknown"
)

func newLogger(level string) *slog.Logger {
	var logLevel slog.Level
	switch strings.ToLower(level) {
	case "debug":
		logLevel = slog.LevelDebug
	case "info":
		logLevel = slog.LevelInfo
	case "warn":
		logLevel = slog.LevelWarn
	case "error":
		logLevel = slog.LevelError
	default:
		logLevel = slog.LevelInfo
	}
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: logLevel}))
}

func main() {
	configPath := flag.String("config", "./config.json", "path to the configuration file")
	serve := flag.Bool("serve", false, "host the management API instead of running a one-shot generation pass")
	flag.Parse()

	baseLogger := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelInfo}))

	if !*serve {
		if err := runOnce(*configPath); err != nil {
			baseLogger.Error("Generation pass failed", "error", err)
			os.Exit(1)
		}
		return
	}

	actionChan := make(chan string, 1)

	go func() {
		osSignalChan := make(chan os.Signal, 1)
		signal.Notify(osSignalChan, syscall.SIGINT, syscall.SIGTERM)
		<-osSignalChan // Wait for a signal
		baseLogger.Info("OS signal received, initiating shutdown.")
		actionChan <- actionShutdown
	}()

	for {
		action, err := runServe(*configPath, actionChan)
		if err != nil {
			baseLogger.Error("An error occurred during server run, shutting down.", "error", err)
			break
		}

		if action == actionRestart {
			baseLogger.Info("--- Server Restarting ---")
			continue
		} else {
			break
		}
	}

	baseLogger.Info("Curricula has shut down.")
}

// runOnce performs a single generation pass: resolve the catalog, render
// and write every entry whose directory exists, record the run, print a
// summary. A nonzero exit means at least one entry failed; skipped entries
// are not failures.
func runOnce(configPath string) error {
	cm, err := NewConfigManager(configPath)
	if err != nil {
		return fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg := cm.Get()

	logger := newLogger(cfg.Server.LogLevel)
	cm.SetLogger(logger)

	if err = os.MkdirAll(cfg.Server.DataDir, 0755); err != nil {
		return fmt.Errorf("failed to create data dir: %w", err)
	}

	db, err := initDB(cfg.Server.DatabasePath)
	if err != nil {
		return fmt.Errorf("failed to initialize database: %w", err)
	}
	defer func() {
		if err := db.Close(); err != nil {
			logger.Error("Failed to close database", "error", err)
		}
	}()

	if err = catalog.SetupSchema(db); err != nil {
		return fmt.Errorf("failed to setup catalog schema: %w", err)
	}
	if err = setupRunsSchema(db); err != nil {
		return fmt.Errorf("failed to setup runs schema: %w", err)
	}

	ctx := context.Background()
	store := catalog.NewStore(db)

	entries, err := resolveCatalog(ctx, store, cfg.Server.CatalogPath, logger)
	if err != nil {
		return fmt.Errorf("failed to resolve catalog: %w", err)
	}

	renderer, err := render.New(logger, cfg.Server.DataDir)
	if err != nil {
		return fmt.Errorf("failed to create renderer: %w", err)
	}

	gen := generate.New(logger, renderer, cfg.Generator)
	runsAPI := NewRunsAPI(db, gen, store, cfg.Server.CatalogPath, logger)

	summary, runErr := gen.Run(ctx, entries)
	if err = runsAPI.RecordRun(ctx, summary); err != nil {
		logger.Warn("Failed to record generation run", "run_id", summary.RunID, "error", err)
	}

	fmt.Printf("All exercise files generated: %d written, %d skipped, %d failed.\n",
		summary.Written, summary.Skipped, summary.Failed)
	return runErr
}

// runServe hosts the management API, and returns whenever the server is
// shut down or restarted.
func runServe(configPath string, actionChan chan string) (string, error) {
	cm, err := NewConfigManager(configPath)
	if err != nil {
		return "", fmt.Errorf("failed to load configuration: %w", err)
	}
	cfg := cm.Get()

	logger := newLogger(cfg.Server.LogLevel)
	cm.SetLogger(logger)
	logger.Info("Starting server cycle...")

	if err = os.MkdirAll(cfg.Server.DataDir, 0755); err != nil {
		return "", fmt.Errorf("failed to create data dir: %w", err)
	}

	db, err := initDB(cfg.Server.DatabasePath)
	if err != nil {
		return "", fmt.Errorf("failed to initialize database: %w", err)
	}

	if err = catalog.SetupSchema(db); err != nil {
		logger.Error("Failed to setup catalog schema", "error", err)
	}
	if err = setupAuthSchema(db); err != nil {
		logger.Error("Failed to setup auth schema", "error", err)
	}
	if err = setupRunsSchema(db); err != nil {
		logger.Error("Failed to setup runs schema", "error", err)
	}

	server, err := NewServer(cm, logger, db, actionChan)
	if err != nil {
		_ = db.Close()
		return "", fmt.Errorf("failed to create server object: %w", err)
	}

	watchCtx, cancelWatch := context.WithCancel(context.Background())
	defer cancelWatch()
	if cfg.Server.WatchTemplates {
		if err = watchTemplates(watchCtx, server.renderer, logger); err != nil {
			logger.Error("Failed to start template watcher", "error", err)
		}
	}

	apiHttpServer := &http.Server{Addr: cfg.Server.ApiAddr, Handler: server.apiMux}

	go func() {
		logger.Info("Starting management API server", "address", apiHttpServer.Addr)
		if err := apiHttpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("Api server failed", "error", err)
		}
	}()

	action := <-actionChan // Block here until API or OS signal sends an action.

	logger.Info("Stopping server for " + action + "...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err = apiHttpServer.Shutdown(ctx); err != nil {
		logger.Error("Api server shutdown failed", "error", err)
	}
	logger.Info("HTTP server stopped.")

	logger.Info("Closing database connection.")
	if err = db.Close(); err != nil {
		logger.Error("Failed to close database", "error", err)
	}

	return action, nil
}
