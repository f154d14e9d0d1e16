package catalog

import (
	"os"
	"path/filepath"
	"testing"
)

// writeCatalogFile writes content to a catalog.hcl in a temp dir and
// returns the file path.
func writeCatalogFile(tb testing.TB, content string) string {
	tb.Helper()
	path := filepath.Join(tb.TempDir(), "catalog.hcl")
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		tb.Fatalf("failed to write catalog file: %v", err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeCatalogFile(t, `
problem "11" {
  title = "Conditional Logic"
  focus = "Dynamic resource creation patterns"
}

problem "12" {
  title = "Locals Functions"
}
`)

	entries, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].ID != "11" || entries[0].Title != "Conditional Logic" {
		t.Errorf("unexpected first entry: %+v", entries[0])
	}
	if entries[0].Focus != "Dynamic resource creation patterns" {
		t.Errorf("unexpected focus: %q", entries[0].Focus)
	}
	// focus is optional and defaults to empty.
	if entries[1].Focus != "" {
		t.Errorf("expected empty focus for entry 12, got %q", entries[1].Focus)
	}
}

func TestLoadFile_Variables(t *testing.T) {
	path := writeCatalogFile(t, `
variables = {
  track = "Terraform"
}

problem "11" {
  title = "Conditional Logic"
  focus = "Resource creation patterns in ${var.track}"
}
`)

	entries, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected 1 entry, got %d", len(entries))
	}
	want := "Resource creation patterns in Terraform"
	if entries[0].Focus != want {
		t.Errorf("variable interpolation failed: got %q, want %q", entries[0].Focus, want)
	}
}

func TestLoadFile_PreservesOrder(t *testing.T) {
	path := writeCatalogFile(t, `
problem "20" {
  title = "Capstone Project"
}
problem "11" {
  title = "Conditional Logic"
}
problem "15" {
  title = "Workspaces"
}
`)

	entries, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile failed: %v", err)
	}
	wantOrder := []string{"20", "11", "15"}
	for i, id := range wantOrder {
		if entries[i].ID != id {
			t.Errorf("entry %d: got id %q, want %q", i, entries[i].ID, id)
		}
	}
}

func TestLoadFile_Errors(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "missing.hcl")); err == nil {
		t.Error("expected an error for a missing file")
	}

	bad := writeCatalogFile(t, `problem "11" { title = `)
	if _, err := LoadFile(bad); err == nil {
		t.Error("expected an error for malformed HCL")
	}

	dup := writeCatalogFile(t, `
problem "11" {
  title = "A"
}
problem "11" {
  title = "B"
}
`)
	if _, err := LoadFile(dup); err == nil {
		t.Error("expected an error for duplicate problem ids")
	}

	unknownVar := writeCatalogFile(t, `
problem "11" {
  title = "A"
  focus = "${var.missing}"
}
`)
	if _, err := LoadFile(unknownVar); err == nil {
		t.Error("expected an error for an undefined variable reference")
	}
}
