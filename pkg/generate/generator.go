package generate

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/hashicorp/go-multierror"
	"github.com/natefinch/atomic"

	"github.com/CTAG07/Curricula/pkg/catalog"
	"github.com/CTAG07/Curricula/pkg/render"
)

// Status classifies the outcome for a single catalog entry.
type Status string

const (
	StatusWritten Status = "written"
	StatusSkipped Status = "skipped"
	StatusFailed  Status = "failed"
)

// Result records the outcome for one catalog entry in one pass.
type Result struct {
	Entry  catalog.Entry `json:"entry"`
	Status Status        `json:"status"`
	Path   string        `json:"path,omitempty"`
	Err    string        `json:"error,omitempty"`
}

// Summary describes one full generation pass.
type Summary struct {
	RunID    string    `json:"run_id"`
	Started  time.Time `json:"started"`
	Finished time.Time `json:"finished"`
	Written  int       `json:"written"`
	Skipped  int       `json:"skipped"`
	Failed   int       `json:"failed"`
	Results  []Result  `json:"results"`
}

// Generator renders and persists one document per catalog entry.
type Generator struct {
	logger   *slog.Logger
	renderer *render.Renderer
	config   *Config
}

// New creates a Generator. The renderer supplies the template for each
// entry; the config supplies the output layout.
func New(logger *slog.Logger, renderer *render.Renderer, config *Config) *Generator {
	return &Generator{
		logger:   logger,
		renderer: renderer,
		config:   config,
	}
}

// Run performs a single generation pass over entries, in catalog order,
// one entry at a time. A failed entry does not stop the pass; failures are
// aggregated into the returned error. The Summary is returned even when
// the error is non-nil. Context cancellation stops the pass between
// entries and surfaces as a failure in the aggregate error.
func (g *Generator) Run(ctx context.Context, entries []catalog.Entry) (*Summary, error) {
	summary := &Summary{
		RunID:   uuid.NewString(),
		Started: time.Now().UTC(),
	}

	var errs *multierror.Error
	for _, e := range entries {
		if err := ctx.Err(); err != nil {
			errs = multierror.Append(errs, fmt.Errorf("generation pass interrupted: %w", err))
			break
		}

		res := g.generateOne(e)
		summary.Results = append(summary.Results, res)
		switch res.Status {
		case StatusWritten:
			summary.Written++
		case StatusSkipped:
			summary.Skipped++
		case StatusFailed:
			summary.Failed++
			errs = multierror.Append(errs, fmt.Errorf("entry %s: %s", e.ID, res.Err))
		}
	}

	summary.Finished = time.Now().UTC()
	g.logger.Info("Generation pass complete",
		"run_id", summary.RunID,
		"written", summary.Written,
		"skipped", summary.Skipped,
		"failed", summary.Failed)
	return summary, errs.ErrorOrNil()
}

// generateOne handles a single entry: existence check, render, write.
func (g *Generator) generateOne(e catalog.Entry) Result {
	dir := filepath.Join(g.config.OutputRoot, e.DirName())

	info, err := os.Stat(dir)
	if os.IsNotExist(err) {
		g.logger.Debug("Target directory absent, skipping entry", "id", e.ID, "dir", dir)
		return Result{Entry: e, Status: StatusSkipped}
	}
	if err != nil {
		return Result{Entry: e, Status: StatusFailed, Err: err.Error()}
	}
	if !info.IsDir() {
		return Result{Entry: e, Status: StatusFailed, Err: fmt.Sprintf("%s exists but is not a directory", dir)}
	}

	content := g.renderer.RenderEntry(e)
	path := filepath.Join(dir, g.config.OutputFilename)
	if err := atomic.WriteFile(path, strings.NewReader(content)); err != nil {
		g.logger.Error("Failed to write exercise file", "id", e.ID, "path", path, "error", err)
		return Result{Entry: e, Status: StatusFailed, Err: err.Error()}
	}

	g.logger.Debug("Wrote exercise file", "id", e.ID, "path", path)
	return Result{Entry: e, Status: StatusWritten, Path: path}
}
