package workspace

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"marginalia/pkg/logger"
)

// watchDebounce coalesces bursts of filesystem events into one rebuild.
const watchDebounce = 200 * time.Millisecond

// Watch rebuilds the tree when the workspace directory changes, until ctx
// is cancelled. onChange, if non-nil, runs after each successful rebuild.
func (t *Tree) Watch(ctx context.Context, onChange func()) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	if err := t.addDirs(w); err != nil {
		_ = w.Close()
		return err
	}

	go func() {
		defer w.Close()
		var timer *time.Timer
		fire := make(chan struct{}, 1)
		for {
			select {
			case <-ctx.Done():
				logger.Info("workspace_watch_stopping")
				return
			case ev, ok := <-w.Events:
				if !ok {
					return
				}
				if skipEvent(ev) {
					continue
				}
				// new directories need watches before their children settle
				if ev.Has(fsnotify.Create) {
					if fi, err := os.Stat(ev.Name); err == nil && fi.IsDir() {
						_ = w.Add(ev.Name)
					}
				}
				if timer == nil {
					timer = time.AfterFunc(watchDebounce, func() {
						select {
						case fire <- struct{}{}:
						default:
						}
					})
				} else {
					timer.Reset(watchDebounce)
				}
			case err, ok := <-w.Errors:
				if !ok {
					return
				}
				logger.Warn("workspace_watch_error", "error", err)
			case <-fire:
				timer = nil
				if err := t.Rebuild(); err != nil {
					logger.Error("workspace_rebuild_failed", "error", err)
					continue
				}
				_ = t.addDirs(w)
				if onChange != nil {
					onChange()
				}
			}
		}
	}()
	logger.Info("workspace_watch_started", "root", t.root)
	return nil
}

// addDirs registers the root and every folder node with the watcher.
func (t *Tree) addDirs(w *fsnotify.Watcher) error {
	if err := w.Add(t.root); err != nil {
		return err
	}
	t.mu.RLock()
	defer t.mu.RUnlock()
	for id, n := range t.nodes {
		if n.IsFolder {
			_ = w.Add(filepath.Join(t.root, filepath.FromSlash(id)))
		}
	}
	return nil
}

// skipEvent drops events for dotfiles and editor temp files so note-document
// saves do not trigger rebuild loops.
func skipEvent(ev fsnotify.Event) bool {
	base := filepath.Base(ev.Name)
	return strings.HasPrefix(base, ".")
}
