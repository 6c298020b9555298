package store

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/fsnotify/fsnotify"
)

// Watch invalidates cached demo configs when their directories change on
// disk, so external edits (or a concurrent process) are picked up without a
// restart. fsnotify only reports direct children of a watched directory, so
// each demo directory is watched individually: existing ones at startup,
// new ones as their create event arrives. It blocks until ctx is cancelled.
// When caching is disabled it returns immediately.
func (s *Store) Watch(ctx context.Context) error {
	if s.cache == nil {
		return nil
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("create store watcher: %w", err)
	}
	defer watcher.Close()

	if err := watcher.Add(s.DemosDir()); err != nil {
		return fmt.Errorf("watch demos directory: %w", err)
	}

	entries, err := os.ReadDir(s.DemosDir())
	if err != nil {
		return fmt.Errorf("scan demos directory: %w", err)
	}
	for _, entry := range entries {
		if !entry.IsDir() || !ValidID(entry.Name()) {
			continue
		}
		if err := watcher.Add(filepath.Join(s.DemosDir(), entry.Name())); err != nil {
			s.logger.Warn("watch demo directory", "id", entry.Name(), "error", err)
		}
	}

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			s.handleWatchEvent(watcher, event)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			s.logger.Warn("store watcher error, purging cache", "error", err)
			s.cache.Purge()
		}
	}
}

// handleWatchEvent invalidates the demo an event belongs to. A create event
// for a demo directory itself also starts a watch inside it, so later edits
// to its config.json keep emitting events.
func (s *Store) handleWatchEvent(watcher *fsnotify.Watcher, event fsnotify.Event) {
	rel, err := filepath.Rel(s.DemosDir(), event.Name)
	if err != nil {
		return
	}
	id, _, nested := strings.Cut(filepath.ToSlash(rel), "/")
	if !ValidID(id) {
		return
	}

	s.invalidate(id)
	s.logger.Debug("invalidated cached demo", "id", id, "op", event.Op.String())

	if !nested && event.Op.Has(fsnotify.Create) {
		if info, err := os.Stat(event.Name); err == nil && info.IsDir() {
			if err := watcher.Add(event.Name); err != nil {
				s.logger.Warn("watch demo directory", "id", id, "error", err)
			}
		}
	}
}
