package catalog

import (
	"fmt"
	"strings"
)

// Entry describes a single problem in the curriculum catalog.
type Entry struct {
	// ID uniquely names the problem within the catalog, e.g. "11".
	ID string `json:"id"`

	// Title is the short human-readable name, e.g. "Conditional Logic".
	// It is also used to derive the output directory name.
	Title string `json:"title"`

	// Focus is a one-line description substituted into the exercise
	// template but not otherwise interpreted.
	Focus string `json:"focus"`
}

// DirName returns the directory a generated document belongs in:
// "Problem-<id>-<title>" with every space in the title replaced by a
// single hyphen. No other characters are altered.
func (e Entry) DirName() string {
	return "Problem-" + e.ID + "-" + strings.ReplaceAll(e.Title, " ", "-")
}

// Validate checks that every entry has an ID and a title and that no two
// entries share an ID.
func Validate(entries []Entry) error {
	seen := make(map[string]struct{}, len(entries))
	for i, e := range entries {
		if e.ID == "" {
			return fmt.Errorf("catalog entry at position %d has an empty id", i)
		}
		if e.Title == "" {
			return fmt.Errorf("catalog entry %q has an empty title", e.ID)
		}
		if _, dup := seen[e.ID]; dup {
			return fmt.Errorf("duplicate catalog entry id %q", e.ID)
		}
		seen[e.ID] = struct{}{}
	}
	return nil
}

// DefaultEntries returns the built-in problem table, used to seed the store
// when no catalog file exists and the store is empty.
func DefaultEntries() []Entry {
	return []Entry{
		{ID: "11", Title: "Conditional Logic", Focus: "Dynamic resource creation patterns with count and for_each"},
		{ID: "12", Title: "Locals Functions", Focus: "Data transformation with locals and built-in functions"},
		{ID: "13", Title: "Data Sources", Focus: "Querying existing infrastructure and provider data"},
		{ID: "14", Title: "Module Composition", Focus: "Reusable modules with clean input and output contracts"},
		{ID: "15", Title: "Workspaces", Focus: "Environment isolation with workspace-aware configuration"},
		{ID: "16", Title: "Provisioners", Focus: "Bootstrap actions, their failure modes, and their alternatives"},
		{ID: "17", Title: "State Management", Focus: "Remote backends, locking, and state surgery"},
		{ID: "18", Title: "Resource Import", Focus: "Bringing existing infrastructure under management"},
		{ID: "19", Title: "Security Practices", Focus: "Secrets handling and least-privilege provider auth"},
		{ID: "20", Title: "Capstone Project", Focus: "An end-to-end deployment combining the full toolchain"},
	}
}
