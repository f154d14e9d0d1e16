package generate

import (
	"context"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CTAG07/Curricula/pkg/catalog"
	"github.com/CTAG07/Curricula/pkg/render"
)

// setupTestGenerator creates a Generator writing into a fresh temp output
// root and returns it with that root.
func setupTestGenerator(tb testing.TB) (*Generator, string) {
	tb.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	renderer, err := render.New(logger, tb.TempDir())
	if err != nil {
		tb.Fatalf("failed to create renderer: %v", err)
	}

	outputRoot := tb.TempDir()
	config := DefaultConfig()
	config.OutputRoot = outputRoot
	return New(logger, renderer, config), outputRoot
}

func mkProblemDir(tb testing.TB, root string, e catalog.Entry) string {
	tb.Helper()
	dir := filepath.Join(root, e.DirName())
	if err := os.Mkdir(dir, 0755); err != nil {
		tb.Fatalf("failed to create problem dir: %v", err)
	}
	return dir
}

func TestGenerator_WritesExistingDirs(t *testing.T) {
	gen, root := setupTestGenerator(t)
	e := catalog.Entry{ID: "11", Title: "Conditional Logic", Focus: "Dynamic resource creation patterns"}
	dir := mkProblemDir(t, root, e)

	summary, err := gen.Run(context.Background(), []catalog.Entry{e})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Written != 1 || summary.Skipped != 0 || summary.Failed != 0 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if summary.RunID == "" {
		t.Error("summary has no run id")
	}

	content, err := os.ReadFile(filepath.Join(dir, "HANDS-ON-EXERCISES.md"))
	if err != nil {
		t.Fatalf("expected output file was not written: %v", err)
	}
	text := string(content)
	if !strings.Contains(text, "Problem 11: Conditional Logic - Hands-On Exercises") {
		t.Error("rendered file is missing the expected header")
	}
	for _, token := range []string{render.TokenNum, render.TokenTitle, render.TokenFocus} {
		if strings.Contains(text, token) {
			t.Errorf("rendered file still contains token %q", token)
		}
	}
}

func TestGenerator_SkipsMissingDirs(t *testing.T) {
	gen, root := setupTestGenerator(t)
	e := catalog.Entry{ID: "99", Title: "Nonexistent", Focus: "n/a"}

	summary, err := gen.Run(context.Background(), []catalog.Entry{e})
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if summary.Skipped != 1 || summary.Written != 0 || summary.Failed != 0 {
		t.Errorf("unexpected summary: %+v", summary)
	}

	// The skip must not create anything.
	if _, err := os.Stat(filepath.Join(root, "Problem-99-Nonexistent")); !os.IsNotExist(err) {
		t.Error("skipped entry produced a directory")
	}
}

func TestGenerator_Idempotent(t *testing.T) {
	gen, root := setupTestGenerator(t)
	e := catalog.Entry{ID: "12", Title: "Locals Functions", Focus: "Data transformation"}
	dir := mkProblemDir(t, root, e)
	path := filepath.Join(dir, "HANDS-ON-EXERCISES.md")

	if _, err := gen.Run(context.Background(), []catalog.Entry{e}); err != nil {
		t.Fatalf("first Run failed: %v", err)
	}
	first, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read first output: %v", err)
	}

	if _, err = gen.Run(context.Background(), []catalog.Entry{e}); err != nil {
		t.Fatalf("second Run failed: %v", err)
	}
	second, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("failed to read second output: %v", err)
	}

	if string(first) != string(second) {
		t.Error("second run did not produce byte-identical output")
	}
}

func TestGenerator_FailureDoesNotStopPass(t *testing.T) {
	gen, root := setupTestGenerator(t)
	bad := catalog.Entry{ID: "1", Title: "Broken", Focus: "f"}
	good := catalog.Entry{ID: "2", Title: "Fine", Focus: "f"}

	// The target "directory" for the bad entry is a regular file.
	if err := os.WriteFile(filepath.Join(root, bad.DirName()), []byte("in the way"), 0644); err != nil {
		t.Fatalf("failed to plant blocking file: %v", err)
	}
	mkProblemDir(t, root, good)

	summary, err := gen.Run(context.Background(), []catalog.Entry{bad, good})
	if err == nil {
		t.Fatal("expected an aggregate error for the failed entry")
	}
	if summary.Failed != 1 || summary.Written != 1 {
		t.Errorf("unexpected summary: %+v", summary)
	}
	if !strings.Contains(err.Error(), "not a directory") {
		t.Errorf("unexpected aggregate error: %v", err)
	}

	// The entry after the failure must still have been written.
	if _, statErr := os.Stat(filepath.Join(root, good.DirName(), "HANDS-ON-EXERCISES.md")); statErr != nil {
		t.Errorf("entry after the failed one was not written: %v", statErr)
	}
}

func TestGenerator_ContextCancellation(t *testing.T) {
	gen, root := setupTestGenerator(t)
	e := catalog.Entry{ID: "11", Title: "Conditional Logic", Focus: "f"}
	mkProblemDir(t, root, e)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	summary, err := gen.Run(ctx, []catalog.Entry{e})
	if err == nil {
		t.Fatal("expected an error from a cancelled context")
	}
	if summary.Written != 0 {
		t.Errorf("cancelled run still wrote files: %+v", summary)
	}
}

func TestGenerator_ResultsInCatalogOrder(t *testing.T) {
	gen, root := setupTestGenerator(t)
	entries := []catalog.Entry{
		{ID: "20", Title: "Capstone Project", Focus: "f"},
		{ID: "11", Title: "Conditional Logic", Focus: "f"},
		{ID: "15", Title: "Workspaces", Focus: "f"},
	}
	mkProblemDir(t, root, entries[1])

	summary, err := gen.Run(context.Background(), entries)
	if err != nil {
		t.Fatalf("Run failed: %v", err)
	}
	if len(summary.Results) != 3 {
		t.Fatalf("expected 3 results, got %d", len(summary.Results))
	}
	for i, e := range entries {
		if summary.Results[i].Entry.ID != e.ID {
			t.Errorf("result %d: got id %q, want %q", i, summary.Results[i].Entry.ID, e.ID)
		}
	}
	if summary.Results[0].Status != StatusSkipped ||
		summary.Results[1].Status != StatusWritten ||
		summary.Results[2].Status != StatusSkipped {
		t.Errorf("unexpected statuses: %+v", summary.Results)
	}
}
