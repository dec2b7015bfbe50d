package config

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/fsnotify/fsnotify"

	"go-newspulse/internal/model"
)

// Watch reloads the config file whenever it changes and hands the new source list to
// onChange. The directory is watched so editors that replace the file are picked up.
func Watch(ctx context.Context, configPath string, onChange func([]model.Source)) error {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("creating watcher: %w", err)
	}

	abs, err := filepath.Abs(configPath)
	if err != nil {
		watcher.Close()
		return err
	}
	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		watcher.Close()
		return fmt.Errorf("watching %s: %w", filepath.Dir(abs), err)
	}

	go func() {
		defer watcher.Close()
		for {
			select {
			case <-ctx.Done():
				return
			case event, ok := <-watcher.Events:
				if !ok {
					return
				}
				if filepath.Clean(event.Name) != abs {
					continue
				}
				if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
					continue
				}
				cfg, err := Load(configPath)
				if err != nil {
					slog.Warn("config reload failed, keeping previous sources", "path", configPath, "error", err)
					continue
				}
				slog.Info("config reloaded", "path", configPath, "sources", len(cfg.Sources))
				onChange(cfg.EnabledSources())
			case err, ok := <-watcher.Errors:
				if !ok {
					return
				}
				slog.Warn("config watcher error", "error", err)
			}
		}
	}()

	return nil
}
