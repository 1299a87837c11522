package app

import (
	"context"
	"declscan/internal/core/watcher"
	"log/slog"
	"os"
)

// StartWatcher watches paths (or the configured paths) and calls onResults
// with the analysis of every debounced batch of changed files. It returns
// once the watcher is running; Close stops it.
func (a *App) StartWatcher(ctx context.Context, paths []string, onResults func([]FileResult)) error {
	if len(paths) == 0 {
		paths = a.Config.Paths
	}
	roots := uniqueScanRoots(paths)

	w, err := watcher.NewWatcher(
		a.Config.Watch.Debounce,
		a.Config.Exclude.Dirs,
		a.Config.Exclude.Files,
		func(changed []string) {
			results := a.HandleChanges(ctx, changed)
			if len(results) > 0 && onResults != nil {
				onResults(results)
			}
		},
	)
	if err != nil {
		return err
	}
	w.SetExtensions(a.parser.SupportedExtensions())

	if err := w.Watch(roots); err != nil {
		_ = w.Close()
		return err
	}

	a.watchMu.Lock()
	previous := a.activeWatcher
	a.activeWatcher = w
	a.watchMu.Unlock()
	if previous != nil {
		_ = previous.Close()
	}
	slog.Info("watching for changes", "roots", roots, "debounce", a.Config.Watch.Debounce)
	return nil
}

// HandleChanges re-analyses changed files. Paths that no longer exist are
// skipped.
func (a *App) HandleChanges(ctx context.Context, paths []string) []FileResult {
	results := make([]FileResult, 0, len(paths))
	for _, path := range paths {
		if ctx.Err() != nil {
			break
		}
		if _, err := os.Stat(path); os.IsNotExist(err) {
			slog.Debug("changed file removed", "path", path)
			continue
		}
		fr, err := a.AnalyzeFile(ctx, path)
		if err != nil {
			slog.Debug("analysis failed after change", "path", path, "error", err)
		}
		results = append(results, fr)
	}
	return results
}
