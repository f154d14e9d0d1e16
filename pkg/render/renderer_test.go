package render

import (
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/CTAG07/Curricula/pkg/catalog"
)

// setupTestRenderer creates a Renderer for a single test's scope, rooted
// at a fresh temp data dir, and returns it with its template dir.
func setupTestRenderer(tb testing.TB) (*Renderer, string) {
	tb.Helper()

	dataDir := tb.TempDir()
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	r, err := New(logger, dataDir)
	if err != nil {
		tb.Fatalf("New failed: %v", err)
	}
	return r, filepath.Join(dataDir, "templates")
}

func TestRender(t *testing.T) {
	e := catalog.Entry{ID: "11", Title: "Conditional Logic", Focus: "Dynamic resource creation patterns"}

	got := Render("Problem PROBLEM_NUM: PROBLEM_TITLE - Hands-On Exercises\nPROBLEM_FOCUS\n", e)
	want := "Problem 11: Conditional Logic - Hands-On Exercises\nDynamic resource creation patterns\n"
	if got != want {
		t.Errorf("Render = %q, want %q", got, want)
	}

	// Every occurrence is replaced, not just the first.
	got = Render("PROBLEM_NUM and again PROBLEM_NUM", e)
	if got != "11 and again 11" {
		t.Errorf("repeated token: got %q", got)
	}

	// Tokens are case-sensitive.
	got = Render("problem_num PROBLEM_num", e)
	if got != "problem_num PROBLEM_num" {
		t.Errorf("case-sensitivity violated: got %q", got)
	}
}

func TestRender_NonRecursive(t *testing.T) {
	// A substituted value containing a token string must not be expanded
	// again: replacement is a single pass.
	e := catalog.Entry{ID: "11", Title: "PROBLEM_FOCUS", Focus: "should not appear"}
	got := Render("PROBLEM_TITLE", e)
	if got != "PROBLEM_FOCUS" {
		t.Errorf("recursive expansion detected: got %q", got)
	}
}

func TestRender_DefaultTemplate(t *testing.T) {
	e := catalog.Entry{ID: "11", Title: "Conditional Logic", Focus: "Dynamic resource creation patterns"}
	got := Render(DefaultTemplate, e)

	if !strings.Contains(got, "Problem 11: Conditional Logic - Hands-On Exercises") {
		t.Error("rendered default template is missing the expected header")
	}
	for _, token := range []string{TokenNum, TokenTitle, TokenFocus} {
		if strings.Contains(got, token) {
			t.Errorf("rendered output still contains token %q", token)
		}
	}
}

func TestRenderer_Overrides(t *testing.T) {
	r, templateDir := setupTestRenderer(t)
	e11 := catalog.Entry{ID: "11", Title: "Conditional Logic", Focus: "f"}
	e12 := catalog.Entry{ID: "12", Title: "Locals Functions", Focus: "f"}

	override := "Custom doc for PROBLEM_TITLE\n"
	path := filepath.Join(templateDir, "problem-11.tmpl.md")
	if err := os.WriteFile(path, []byte(override), 0644); err != nil {
		t.Fatalf("failed to write override template: %v", err)
	}
	if err := r.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	if got := r.RenderEntry(e11); got != "Custom doc for Conditional Logic\n" {
		t.Errorf("override not applied: got %q", got)
	}
	// Entries without an override still use the default.
	if got := r.RenderEntry(e12); !strings.Contains(got, "Problem 12: Locals Functions") {
		t.Errorf("default template not used for entry without override: got %q", got)
	}

	names := r.TemplateNames()
	if len(names) != 1 || names[0] != "problem-11.tmpl.md" {
		t.Errorf("TemplateNames = %v", names)
	}

	// Removing the file and refreshing restores the default.
	if err := os.Remove(path); err != nil {
		t.Fatalf("failed to remove override: %v", err)
	}
	if err := r.Refresh(); err != nil {
		t.Fatalf("Refresh after remove failed: %v", err)
	}
	if got := r.RenderEntry(e11); !strings.Contains(got, "Problem 11: Conditional Logic") {
		t.Errorf("default not restored after override removal: got %q", got)
	}
}

func TestRenderer_DefaultOverrideFile(t *testing.T) {
	r, templateDir := setupTestRenderer(t)

	path := filepath.Join(templateDir, "default.tmpl.md")
	if err := os.WriteFile(path, []byte("Replaced default: PROBLEM_NUM\n"), 0644); err != nil {
		t.Fatalf("failed to write default template: %v", err)
	}
	if err := r.Refresh(); err != nil {
		t.Fatalf("Refresh failed: %v", err)
	}

	got := r.RenderEntry(catalog.Entry{ID: "15", Title: "Workspaces"})
	if got != "Replaced default: 15\n" {
		t.Errorf("default.tmpl.md not applied: got %q", got)
	}
}

func BenchmarkRenderEntry(b *testing.B) {
	r, _ := setupTestRenderer(b)
	e := catalog.Entry{ID: "11", Title: "Conditional Logic", Focus: "Dynamic resource creation patterns"}
	b.ReportAllocs()
	b.ResetTimer()
	for i := 0; i < b.N; i++ {
		_ = r.RenderEntry(e)
	}
}
