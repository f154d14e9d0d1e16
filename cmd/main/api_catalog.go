package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"strings"

	"github.com/CTAG07/Curricula/pkg/catalog"
)

// CatalogAPI holds the dependencies for the catalog API handlers.
type CatalogAPI struct {
	store       *catalog.Store
	catalogPath string
	logger      *slog.Logger
}

// NewCatalogAPI creates a new instance of the CatalogAPI.
func NewCatalogAPI(store *catalog.Store, catalogPath string, logger *slog.Logger) *CatalogAPI {
	return &CatalogAPI{
		store:       store,
		catalogPath: catalogPath,
		logger:      logger,
	}
}

// RegisterRoutes sets up the routing for all /api/catalog endpoints.
func (c *CatalogAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/catalog", c.handleEntries)
	mux.HandleFunc("/api/catalog/import", c.handleImport)
	mux.HandleFunc("/api/catalog/", c.handleEntryByID)
}

// handleEntries lists the catalog or appends a new entry to it.
func (c *CatalogAPI) handleEntries(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		if !hasScope(r, "catalog:read") {
			respondWithError(w, http.StatusForbidden, "Forbidden: requires 'catalog:read' scope")
			return
		}
		entries, err := c.store.List(r.Context())
		if err != nil {
			c.logger.Error("Failed to list catalog entries", "error", err)
			respondWithError(w, http.StatusInternalServerError, "Database query failed")
			return
		}
		respondWithJSON(w, http.StatusOK, entries)

	case http.MethodPost:
		if !hasScope(r, "catalog:write") {
			respondWithError(w, http.StatusForbidden, "Forbidden: requires 'catalog:write' scope")
			return
		}
		var e catalog.Entry
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
			return
		}
		if err := c.store.Upsert(r.Context(), e); err != nil {
			c.logger.Error("Failed to save catalog entry", "id", e.ID, "error", err)
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Failed to save entry: %v", err))
			return
		}
		respondWithJSON(w, http.StatusCreated, e)

	default:
		w.Header().Set("Allow", "GET, POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

// handleImport re-reads the HCL catalog file and merges it into the store.
func (c *CatalogAPI) handleImport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		w.Header().Set("Allow", "POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !hasScope(r, "catalog:write") {
		respondWithError(w, http.StatusForbidden, "Forbidden: requires 'catalog:write' scope")
		return
	}

	if _, err := os.Stat(c.catalogPath); os.IsNotExist(err) {
		respondWithError(w, http.StatusNotFound, fmt.Sprintf("Catalog file %s does not exist", c.catalogPath))
		return
	}

	entries, err := catalog.LoadFile(c.catalogPath)
	if err != nil {
		respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Failed to load catalog file: %v", err))
		return
	}
	if err = c.store.Import(r.Context(), entries); err != nil {
		c.logger.Error("Failed to import catalog entries", "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to import entries: %v", err))
		return
	}

	c.logger.Info("Catalog imported via API", "file", c.catalogPath, "entries", len(entries))
	respondWithJSON(w, http.StatusOK, map[string]any{"imported": len(entries)})
}

// handleEntryByID manages a single catalog entry.
func (c *CatalogAPI) handleEntryByID(w http.ResponseWriter, r *http.Request) {
	id := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/catalog/"), "/")
	if id == "" || strings.Contains(id, "/") {
		respondWithError(w, http.StatusNotFound, "Not Found")
		return
	}

	switch r.Method {
	case http.MethodGet:
		if !hasScope(r, "catalog:read") {
			respondWithError(w, http.StatusForbidden, "Forbidden: requires 'catalog:read' scope")
			return
		}
		e, err := c.store.Get(r.Context(), id)
		if errors.Is(err, catalog.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Entry not found")
			return
		}
		if err != nil {
			c.logger.Error("Failed to query catalog entry", "id", id, "error", err)
			respondWithError(w, http.StatusInternalServerError, "Database query failed")
			return
		}
		respondWithJSON(w, http.StatusOK, e)

	case http.MethodPut:
		if !hasScope(r, "catalog:write") {
			respondWithError(w, http.StatusForbidden, "Forbidden: requires 'catalog:write' scope")
			return
		}
		var e catalog.Entry
		if err := json.NewDecoder(r.Body).Decode(&e); err != nil {
			respondWithError(w, http.StatusBadRequest, "Invalid JSON request body")
			return
		}
		// The URL, not the body, names the entry being updated.
		e.ID = id
		if err := c.store.Upsert(r.Context(), e); err != nil {
			c.logger.Error("Failed to update catalog entry", "id", id, "error", err)
			respondWithError(w, http.StatusBadRequest, fmt.Sprintf("Failed to update entry: %v", err))
			return
		}
		respondWithJSON(w, http.StatusOK, e)

	case http.MethodDelete:
		if !hasScope(r, "catalog:write") {
			respondWithError(w, http.StatusForbidden, "Forbidden: requires 'catalog:write' scope")
			return
		}
		err := c.store.Delete(r.Context(), id)
		if errors.Is(err, catalog.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Entry not found")
			return
		}
		if err != nil {
			c.logger.Error("Failed to delete catalog entry", "id", id, "error", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to delete entry")
			return
		}
		w.WriteHeader(http.StatusNoContent)

	default:
		w.Header().Set("Allow", "GET, PUT, DELETE")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}
