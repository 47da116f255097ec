package config

import (
	"context"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog"
)

// settle collapses the burst of events editors produce for a single save.
const settle = 200 * time.Millisecond

// Watch reloads path whenever it changes and calls fn with the new config.
// Invalid files are logged and skipped. It returns when ctx is done.
//
// The parent directory is watched rather than the file so that editors that
// save by renaming a temp file over the original keep being picked up. The
// directory is created if it does not exist yet, so a config written after
// startup is still seen.
func Watch(ctx context.Context, path string, log zerolog.Logger, fn func(*Config)) error {
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()

	path = filepath.Clean(path)
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}
	if err := w.Add(dir); err != nil {
		return err
	}

	timer := time.NewTimer(settle)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != path {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) || ev.Has(fsnotify.Rename) {
				timer.Reset(settle)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			log.Warn().Err(err).Msg("Config watcher error")
		case <-timer.C:
			cfg, err := LoadFile(path)
			if err != nil {
				log.Error().Err(err).Str("path", path).Msg("Failed to reload config")
				continue
			}
			log.Info().Str("path", path).Int("bindings", len(cfg.Bindings)).Msg("Config reloaded")
			fn(cfg)
		}
	}
}
