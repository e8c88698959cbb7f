package geo

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads m whenever one of its database files is written or replaced.
// It watches the parent directories so atomic renames are seen. Watch returns
// once the watcher is running; it stops when ctx is done.
func Watch(ctx context.Context, m *MMDB) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create watcher: %w", err)
	}

	files := map[string]bool{filepath.Clean(m.cityPath): true}
	if m.asnPath != "" {
		files[filepath.Clean(m.asnPath)] = true
	}

	dirs := make(map[string]bool)
	for f := range files {
		dirs[filepath.Dir(f)] = true
	}
	for d := range dirs {
		if err := watcher.Add(d); err != nil {
			watcher.Close()
			return fmt.Errorf("failed to watch %s: %w", d, err)
		}
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case ev, ok := <-watcher.Events:
				if !ok {
					return
				}
				if !files[filepath.Clean(ev.Name)] || !(ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create)) {
					continue
				}
				if err := m.Reload(); err != nil {
					slog.Error("MMDB reload failed", "file", ev.Name, "error", err)
					continue
				}
				slog.Info("MMDB reloaded", "file", ev.Name)
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("MMDB watcher error", "error", err)
			}
		}
	}()

	return nil
}
