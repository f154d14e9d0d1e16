package render

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/CTAG07/Curricula/pkg/catalog"
)

// Render substitutes the three placeholder tokens into tmpl using the given
// entry. The replacement is a single pass over the template: values are not
// re-scanned for tokens and anything that is not a token is left untouched.
func Render(tmpl string, e catalog.Entry) string {
	return strings.NewReplacer(
		TokenNum, e.ID,
		TokenTitle, e.Title,
		TokenFocus, e.Focus,
	).Replace(tmpl)
}

// Renderer holds the active template set: the default template plus any
// per-problem overrides loaded from the templates directory.
// All methods are concurrent-safe.
type Renderer struct {
	logger      *slog.Logger
	templateDir string
	mu          sync.RWMutex
	defaultTmpl string
	overrides   map[string]string
}

// New creates a Renderer rooted at <dataDir>/templates and performs an
// initial Refresh. The directory is created if it does not exist so that
// overrides can be dropped in (or written through the API) later.
func New(logger *slog.Logger, dataDir string) (*Renderer, error) {
	templateDir := filepath.Join(dataDir, "templates")
	if err := os.MkdirAll(templateDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create template dir: %w", err)
	}

	r := &Renderer{
		logger:      logger,
		templateDir: templateDir,
	}
	if err := r.Refresh(); err != nil {
		return nil, err
	}

	logger.Info("Renderer initialized", "template_dir", templateDir)
	return r, nil
}

// Refresh reloads the template set from the filesystem. A file named
// default.tmpl.md replaces the built-in default template; a file named
// problem-<id>.tmpl.md overrides the template for that single entry. Other
// *.tmpl.md files are ignored with a warning.
func (r *Renderer) Refresh() error {
	r.mu.Lock()
	defer r.mu.Unlock()

	defaultTmpl := DefaultTemplate
	overrides := make(map[string]string)

	pattern := filepath.Join(r.templateDir, "*.tmpl.md")
	matches, err := filepath.Glob(pattern)
	if err != nil {
		return fmt.Errorf("failed to glob template files: %w", err)
	}

	for _, path := range matches {
		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read template file %s: %w", path, err)
		}
		name := filepath.Base(path)
		switch {
		case name == "default.tmpl.md":
			defaultTmpl = string(content)
		case strings.HasPrefix(name, "problem-"):
			id := strings.TrimSuffix(strings.TrimPrefix(name, "problem-"), ".tmpl.md")
			overrides[id] = string(content)
		default:
			r.logger.Warn("Ignoring unrecognized template file", "file", name)
		}
	}

	r.defaultTmpl = defaultTmpl
	r.overrides = overrides
	r.logger.Info("Loaded template files", "overrides", len(overrides))
	return nil
}

// TemplateFor returns the template text used for the given problem id.
func (r *Renderer) TemplateFor(id string) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if tmpl, ok := r.overrides[id]; ok {
		return tmpl
	}
	return r.defaultTmpl
}

// RenderEntry renders the document for one catalog entry using its
// override template if present, the default otherwise.
func (r *Renderer) RenderEntry(e catalog.Entry) string {
	return Render(r.TemplateFor(e.ID), e)
}

// TemplateNames returns the names of the loaded override templates in
// sorted order. The built-in default is not listed since it is always
// present.
func (r *Renderer) TemplateNames() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.overrides))
	for id := range r.overrides {
		names = append(names, "problem-"+id+".tmpl.md")
	}
	sort.Strings(names)
	return names
}

// TemplateDir returns the directory the Renderer loads overrides from.
// This mainly exists for concurrency-safety reasons.
func (r *Renderer) TemplateDir() string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.templateDir
}
