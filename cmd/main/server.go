package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"os"

	"github.com/CTAG07/Curricula/pkg/catalog"
	"github.com/CTAG07/Curricula/pkg/generate"
	"github.com/CTAG07/Curricula/pkg/render"
)

// Server wires the renderer, generator, store, and API handlers together
// for serve mode.
type Server struct {
	cm          *ConfigManager
	db          *sql.DB
	logger      *slog.Logger
	renderer    *render.Renderer
	store       *catalog.Store
	gen         *generate.Generator
	authAPI     *AuthAPI
	catalogAPI  *CatalogAPI
	templateAPI *TemplateAPI
	runsAPI     *RunsAPI
	serverAPI   *ServerAPI
	apiMux      *http.ServeMux
}

// NewServer assembles the full application and registers all API routes.
func NewServer(cm *ConfigManager, logger *slog.Logger, db *sql.DB, actionChan chan string) (*Server, error) {
	cfg := cm.Get()

	renderer, err := render.New(logger, cfg.Server.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to create renderer: %w", err)
	}

	store := catalog.NewStore(db)
	gen := generate.New(logger, renderer, cfg.Generator)

	authAPI := NewAuthAPI(db, logger)
	catalogAPI := NewCatalogAPI(store, cfg.Server.CatalogPath, logger)
	templateAPI := NewTemplateAPI(renderer, store, logger)
	runsAPI := NewRunsAPI(db, gen, store, cfg.Server.CatalogPath, logger)
	serverAPI := NewServerAPI(cm, actionChan, logger)

	server := &Server{
		cm:          cm,
		db:          db,
		logger:      logger,
		renderer:    renderer,
		store:       store,
		gen:         gen,
		authAPI:     authAPI,
		catalogAPI:  catalogAPI,
		templateAPI: templateAPI,
		runsAPI:     runsAPI,
		serverAPI:   serverAPI,
		apiMux:      http.NewServeMux(),
	}

	apiMux := http.NewServeMux()
	server.authAPI.RegisterRoutes(apiMux)
	server.catalogAPI.RegisterRoutes(apiMux)
	server.templateAPI.RegisterRoutes(apiMux)
	server.runsAPI.RegisterRoutes(apiMux)
	server.serverAPI.RegisterRoutes(apiMux)

	// Make sure api functions must pass through authentication first
	authedAPI := server.authAPI.Authenticate(apiMux)
	server.apiMux.Handle("/api/", authedAPI)

	return server, nil
}

// resolveCatalog produces the entries a generation pass operates on. The
// HCL catalog file, when present, is imported into the store first so file
// edits and API edits end up in the same place; an empty store is seeded
// with the built-in defaults.
func resolveCatalog(ctx context.Context, store *catalog.Store, catalogPath string, logger *slog.Logger) ([]catalog.Entry, error) {
	if catalogPath != "" {
		if _, err := os.Stat(catalogPath); err == nil {
			entries, err := catalog.LoadFile(catalogPath)
			if err != nil {
				return nil, err
			}
			if err = store.Import(ctx, entries); err != nil {
				return nil, err
			}
			logger.Debug("Imported catalog file", "file", catalogPath, "entries", len(entries))
		} else if !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to stat catalog file %s: %w", catalogPath, err)
		}
	}

	n, err := store.Count(ctx)
	if err != nil {
		return nil, err
	}
	if n == 0 {
		logger.Info("Catalog store is empty, seeding built-in defaults")
		if err = store.Import(ctx, catalog.DefaultEntries()); err != nil {
			return nil, err
		}
	}

	return store.List(ctx)
}
