package config

import (
	"context"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch follows a config file and invokes apply with each successfully
// reloaded File. Reload errors are logged and skipped; the previous
// configuration stays in effect. Watching stops when the context is
// cancelled.
//
// The file's directory is watched rather than the file itself, which
// survives the rename-and-replace writes most editors and config
// management tools perform.
func Watch(ctx context.Context, path string, apply func(*File)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}

	dir := filepath.Dir(path)
	if err := watcher.Add(dir); err != nil {
		watcher.Close()
		return err
	}

	go func() {
		defer watcher.Close()
		baseName := filepath.Base(path)

		for {
			select {
			case <-ctx.Done():
				return

			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Base(event.Name) != baseName {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}

				f, err := Load(path)
				if err != nil {
					slog.Warn("config reload failed, keeping previous config",
						slog.String("path", path),
						slog.Any("error", err))
					continue
				}
				slog.Info("config reloaded", slog.String("path", path))
				apply(f)

			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("config watcher error", slog.Any("error", err))
			}
		}
	}()

	return nil
}
