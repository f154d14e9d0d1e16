package main

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/CTAG07/Curricula/pkg/catalog"
	"github.com/CTAG07/Curricula/pkg/generate"
)

const runsSchema = `
CREATE TABLE IF NOT EXISTS generation_runs (
    run_id    TEXT     PRIMARY KEY,
    started   DATETIME NOT NULL,
    finished  DATETIME NOT NULL,
    written   INTEGER  NOT NULL,
    skipped   INTEGER  NOT NULL,
    failed    INTEGER  NOT NULL
);
CREATE TABLE IF NOT EXISTS generation_results (
    run_id     TEXT NOT NULL,
    problem_id TEXT NOT NULL,
    status     TEXT NOT NULL,
    path       TEXT NOT NULL DEFAULT '',
    error      TEXT NOT NULL DEFAULT '',
    PRIMARY KEY (run_id, problem_id)
);
`

// RunInfo is the structure returned when listing generation runs.
type RunInfo struct {
	RunID    string    `json:"run_id"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	Written  int       `json:"written"`
	Skipped  int       `json:"skipped"`
	Failed   int       `json:"failed"`
}

// RunsAPI holds the dependencies for the run history and trigger handlers.
type RunsAPI struct {
	db          *sql.DB
	gen         *generate.Generator
	store       *catalog.Store
	catalogPath string
	logger      *slog.Logger
}

func setupRunsSchema(db *sql.DB) error {
	_, err := db.Exec(runsSchema)
	return err
}

// NewRunsAPI creates a new instance of the RunsAPI.
func NewRunsAPI(db *sql.DB, gen *generate.Generator, store *catalog.Store, catalogPath string, logger *slog.Logger) *RunsAPI {
	return &RunsAPI{
		db:          db,
		gen:         gen,
		store:       store,
		catalogPath: catalogPath,
		logger:      logger,
	}
}

// RegisterRoutes sets up the routing for all /api/runs endpoints.
func (s *RunsAPI) RegisterRoutes(mux *http.ServeMux) {
	mux.HandleFunc("/api/runs", s.handleRuns)
	mux.HandleFunc("/api/runs/", s.handleRunByID)
}

// RecordRun persists a pass summary and its per-entry results in a single
// transaction.
func (s *RunsAPI) RecordRun(ctx context.Context, summary *generate.Summary) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("could not begin run record transaction: %w", err)
	}
	defer func(tx *sql.Tx) {
		_ = tx.Rollback()
	}(tx)

	_, err = tx.ExecContext(ctx, `
        INSERT INTO generation_runs (run_id, started, finished, written, skipped, failed)
        VALUES (?, ?, ?, ?, ?, ?)
    `, summary.RunID, summary.Started, summary.Finished, summary.Written, summary.Skipped, summary.Failed)
	if err != nil {
		return fmt.Errorf("failed to insert generation run: %w", err)
	}

	for _, res := range summary.Results {
		_, err = tx.ExecContext(ctx, `
            INSERT INTO generation_results (run_id, problem_id, status, path, error)
            VALUES (?, ?, ?, ?, ?)
        `, summary.RunID, res.Entry.ID, string(res.Status), res.Path, res.Err)
		if err != nil {
			return fmt.Errorf("failed to insert generation result for entry %q: %w", res.Entry.ID, err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit run record: %w", err)
	}
	return nil
}

// handleRuns lists past runs or triggers a new generation pass.
func (s *RunsAPI) handleRuns(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		s.listRuns(w, r)
	case http.MethodPost:
		s.triggerRun(w, r)
	default:
		w.Header().Set("Allow", "GET, POST")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
	}
}

func (s *RunsAPI) listRuns(w http.ResponseWriter, r *http.Request) {
	if !hasScope(r, "runs:read") {
		respondWithError(w, http.StatusForbidden, "Forbidden: requires 'runs:read' scope")
		return
	}

	rows, err := s.db.QueryContext(r.Context(), `
        SELECT run_id, started, finished, written, skipped, failed
        FROM generation_runs ORDER BY started DESC LIMIT 100
    `)
	if err != nil {
		s.logger.Error("Failed to query generation runs", "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Database error: %v", err))
		return
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var runs []RunInfo
	for rows.Next() {
		var run RunInfo
		if err = rows.Scan(&run.RunID, &run.Started, &run.Finished, &run.Written, &run.Skipped, &run.Failed); err != nil {
			s.logger.Error("Failed to scan generation run", "error", err)
			respondWithError(w, http.StatusInternalServerError, "Failed to process database results")
			return
		}
		runs = append(runs, run)
	}
	respondWithJSON(w, http.StatusOK, runs)
}

// triggerRun resolves the catalog, runs one generation pass, and records
// it. The summary is returned even when some entries failed; per-entry
// errors are inside it.
func (s *RunsAPI) triggerRun(w http.ResponseWriter, r *http.Request) {
	if !hasScope(r, "runs:write") {
		respondWithError(w, http.StatusForbidden, "Forbidden: requires 'runs:write' scope")
		return
	}

	entries, err := resolveCatalog(r.Context(), s.store, s.catalogPath, s.logger)
	if err != nil {
		s.logger.Error("Failed to resolve catalog for run", "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Failed to resolve catalog: %v", err))
		return
	}

	summary, runErr := s.gen.Run(r.Context(), entries)
	if runErr != nil {
		s.logger.Warn("Generation pass finished with failures", "run_id", summary.RunID, "error", runErr)
	}
	if err = s.RecordRun(r.Context(), summary); err != nil {
		s.logger.Error("Failed to record generation run", "run_id", summary.RunID, "error", err)
	}

	respondWithJSON(w, http.StatusOK, summary)
}

// handleRunByID returns one run and its per-entry results.
func (s *RunsAPI) handleRunByID(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		w.Header().Set("Allow", "GET")
		respondWithError(w, http.StatusMethodNotAllowed, "Method not allowed")
		return
	}
	if !hasScope(r, "runs:read") {
		respondWithError(w, http.StatusForbidden, "Forbidden: requires 'runs:read' scope")
		return
	}

	runID := strings.TrimSuffix(strings.TrimPrefix(r.URL.Path, "/api/runs/"), "/")
	if runID == "" {
		respondWithError(w, http.StatusNotFound, "Not Found")
		return
	}

	var run RunInfo
	err := s.db.QueryRowContext(r.Context(), `
        SELECT run_id, started, finished, written, skipped, failed
        FROM generation_runs WHERE run_id = ?
    `, runID).Scan(&run.RunID, &run.Started, &run.Finished, &run.Written, &run.Skipped, &run.Failed)
	if err != nil {
		respondWithError(w, http.StatusNotFound, "Run not found")
		return
	}

	rows, err := s.db.QueryContext(r.Context(), `
        SELECT problem_id, status, path, error FROM generation_results WHERE run_id = ?
    `, runID)
	if err != nil {
		s.logger.Error("Failed to query run results", "run_id", runID, "error", err)
		respondWithError(w, http.StatusInternalServerError, fmt.Sprintf("Database error: %v", err))
		return
	}
	defer func(rows *sql.Rows) {
		_ = rows.Close()
	}(rows)

	var results []map[string]any
	for rows.Next() {
		var problemID, status, path, errMsg string
		if err = rows.Scan(&problemID, &status, &path, &errMsg); err != nil {
			s.logger.Error("Failed to scan run result", "run_id", runID, "error", err)
			continue
		}
		results = append(results, map[string]any{
			"problem_id": problemID,
			"status":     status,
			"path":       path,
			"error":      errMsg,
		})
	}

	respondWithJSON(w, http.StatusOK, map[string]any{
		"run":     run,
		"results": results,
	})
}
