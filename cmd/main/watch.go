package main

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/CTAG07/Curricula/pkg/render"
)

// templateDebounce is how long the watcher waits after the last template
// file event before refreshing, so a burst of writes produces one reload.
const templateDebounce = 500 * time.Millisecond

// watchTemplates refreshes the renderer whenever a template file in its
// directory changes. The watcher runs until ctx is cancelled.
func watchTemplates(ctx context.Context, renderer *render.Renderer, logger *slog.Logger) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create template watcher: %w", err)
	}
	if err = watcher.Add(renderer.TemplateDir()); err != nil {
		_ = watcher.Close()
		return fmt.Errorf("failed to watch template dir: %w", err)
	}

	logger.Info("Watching template directory for changes", "dir", renderer.TemplateDir())

	go func() {
		defer func(watcher *fsnotify.Watcher) {
			_ = watcher.Close()
		}(watcher)

		var pending *time.Timer
		for {
			select {
			case <-ctx.Done():
				if pending != nil {
					pending.Stop()
				}
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !strings.HasSuffix(ev.Name, ".tmpl.md") {
					continue
				}
				if !ev.Has(fsnotify.Create) && !ev.Has(fsnotify.Write) &&
					!ev.Has(fsnotify.Remove) && !ev.Has(fsnotify.Rename) {
					continue
				}
				if pending != nil {
					pending.Stop()
				}
				trigger := ev.Name
				pending = time.AfterFunc(templateDebounce, func() {
					if err := renderer.Refresh(); err != nil {
						logger.Error("Template refresh after file change failed", "error", err)
						return
					}
					logger.Info("Templates reloaded after file change", "trigger", trigger)
				})
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				logger.Error("Template watcher error", "error", err)
			}
		}
	}()

	return nil
}
