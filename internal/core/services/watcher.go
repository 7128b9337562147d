package services

import (
	"context"
	"io/fs"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/eabdelmoneim/autodoc/internal/core/domain"
	"github.com/eabdelmoneim/autodoc/internal/core/ports/driving"
	"github.com/eabdelmoneim/autodoc/internal/logger"
)

// DefaultDebounce batches bursts of filesystem events into one rerun.
const DefaultDebounce = 2 * time.Second

// Watcher re-runs the pipeline when repository files change. Events are
// debounced so editor save bursts trigger a single rerun; the
// fingerprint-based skip keeps reruns cheap for unchanged nodes.
type Watcher struct {
	root     string
	ignore   *domain.IgnoreMatcher
	pipeline driving.Pipeline
	debounce time.Duration
}

// NewWatcher creates a watcher over a local repository root.
func NewWatcher(root string, ignore *domain.IgnoreMatcher, pipeline driving.Pipeline) *Watcher {
	return &Watcher{
		root:     root,
		ignore:   ignore,
		pipeline: pipeline,
		debounce: DefaultDebounce,
	}
}

// Watch blocks, re-running the pipeline after each debounced batch of
// changes, until the context is cancelled. Pipeline failures are logged
// and watching continues.
func (w *Watcher) Watch(ctx context.Context) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := w.addRecursive(watcher, w.root); err != nil {
		return err
	}

	var timer *time.Timer
	fire := make(chan struct{}, 1)

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()

		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			rel, err := filepath.Rel(w.root, event.Name)
			if err != nil || w.ignore.Matches(filepath.ToSlash(rel)) {
				continue
			}
			// Newly created directories need their own watch.
			if event.Op.Has(fsnotify.Create) {
				if err := w.addRecursive(watcher, event.Name); err != nil {
					logger.Debug("Watch %s: %v", event.Name, err)
				}
			}
			logger.Debug("Change detected: %s", rel)
			if timer == nil {
				timer = time.AfterFunc(w.debounce, func() {
					select {
					case fire <- struct{}{}:
					default:
					}
				})
			} else {
				timer.Reset(w.debounce)
			}

		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			logger.Warn("Watcher error: %v", err)

		case <-fire:
			timer = nil
			logger.Info("Re-running pipeline")
			if err := w.pipeline.Run(ctx); err != nil {
				logger.Warn("Pipeline run failed: %v", err)
			}
		}
	}
}

// addRecursive watches path and every non-ignored directory below it.
func (w *Watcher) addRecursive(watcher *fsnotify.Watcher, path string) error {
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil || !d.IsDir() {
			return nil //nolint:nilerr // unreadable entries are skipped, not fatal
		}
		rel, relErr := filepath.Rel(w.root, p)
		if relErr == nil && rel != "." && w.ignore.Matches(filepath.ToSlash(rel)) {
			return filepath.SkipDir
		}
		return watcher.Add(p)
	})
}
