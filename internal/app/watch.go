package app

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/specialistvlad/texgraph/internal/ctxlog"
	"github.com/specialistvlad/texgraph/internal/fsutil"
	"github.com/specialistvlad/texgraph/internal/hcl_adapter"
	"github.com/specialistvlad/texgraph/internal/scheduler"
	"golang.org/x/sync/errgroup"
)

// DebounceWindow collects bursts of file events into one reload.
const DebounceWindow = 100 * time.Millisecond

// watch runs the health server, the document watcher and the scheduler
// driver until ctx is done or one of them fails.
func (a *App) watch(ctx context.Context) error {
	logger := ctxlog.FromContext(ctx)

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create file watcher: %w", err)
	}
	defer w.Close()
	for _, p := range a.config.Paths {
		if err := addWatchPath(w, p); err != nil {
			return err
		}
	}

	tasks := make(chan scheduler.Task)
	g, gctx := errgroup.WithContext(ctx)
	if a.config.HealthcheckPort > 0 {
		g.Go(func() error { return a.serveHealth(gctx) })
	} else {
		logger.Warn("Health check server not started: disabled")
	}
	g.Go(func() error { return a.watchFiles(gctx, w, tasks) })
	g.Go(func() error { return a.scheduler.Run(gctx, tasks) })

	logger.Info("👀 Watching documents for changes.", "paths", a.config.Paths)
	err = g.Wait()
	logger.Info("Watch mode stopped.")
	return err
}

// addWatchPath watches every directory under a directory path, or the
// parent directory of a file path so that editors replacing the file are
// seen.
func addWatchPath(w *fsnotify.Watcher, path string) error {
	info, err := os.Stat(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("error accessing path %s: %w", path, err)
	}
	if !info.IsDir() {
		return w.Add(filepath.Dir(path))
	}
	return filepath.WalkDir(path, func(p string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return w.Add(p)
		}
		return nil
	})
}

// watchFiles turns file events into reload tasks. Events are debounced and
// every task reloads the set of documents that changed.
func (a *App) watchFiles(ctx context.Context, w *fsnotify.Watcher, tasks chan<- scheduler.Task) error {
	logger := ctxlog.FromContext(ctx)
	pending := make(map[string]struct{})
	var timer *time.Timer
	var fire <-chan time.Time

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-w.Events:
			if !ok {
				return nil
			}
			if event.Has(fsnotify.Create) {
				if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
					if err := addWatchPath(w, event.Name); err != nil {
						logger.Warn("Failed to watch new directory.", "path", event.Name, "error", err)
					}
					continue
				}
			}
			if !a.watched(event.Name) || event.Op == fsnotify.Chmod {
				continue
			}
			logger.Debug("Document event.", "path", event.Name, "op", event.Op.String())
			pending[event.Name] = struct{}{}
			if timer == nil {
				timer = time.NewTimer(DebounceWindow)
			} else {
				timer.Reset(DebounceWindow)
			}
			fire = timer.C

		case <-fire:
			fire = nil
			files := make([]string, 0, len(pending))
			for p := range pending {
				files = append(files, p)
			}
			sort.Strings(files)
			clear(pending)
			select {
			case tasks <- a.reloadTask(files):
			case <-ctx.Done():
				return nil
			}

		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Warn("File watcher error.", "error", err)
		}
	}
}

// watched reports whether path is a document covered by the configured
// paths.
func (a *App) watched(path string) bool {
	if !fsutil.HasExtension(path, hcl_adapter.ExtHCL, hcl_adapter.ExtJSON) {
		return false
	}
	clean := filepath.Clean(path)
	for _, p := range a.config.Paths {
		root := filepath.Clean(p)
		if root == "." && !filepath.IsAbs(clean) && !strings.HasPrefix(clean, "..") {
			return true
		}
		if clean == root || strings.HasPrefix(clean, root+string(filepath.Separator)) {
			return true
		}
	}
	return false
}

// reloadTask reloads files on the scheduler driver.
func (a *App) reloadTask(files []string) scheduler.Task {
	return func(ctx context.Context) error {
		logger := ctxlog.FromContext(ctx)
		var errs []error
		for _, file := range files {
			logger.Info("Reloading document.", "file", file)
			if err := a.loadFile(ctx, file); err != nil {
				errs = append(errs, err)
			}
		}
		return errors.Join(errs...)
	}
}
