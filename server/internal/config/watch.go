package config

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"github.com/fsnotify/fsnotify"
)

// DefaultReloadDebounce is how long the file must stay quiet before a reload.
const DefaultReloadDebounce = 250 * time.Millisecond

// Watcher reloads a config file when it changes on disk and hands each
// effective change to OnChange.
//
// Editors save in bursts (truncate then write, or write a temp file and
// rename it over the original), so events are coalesced until the file has
// been quiet for Debounce. A reload that fails validation or leaves the
// config unchanged does not reach OnChange.
type Watcher struct {
	path     string
	current  *Config
	onChange func(prev, next *Config)

	// Debounce overrides DefaultReloadDebounce. Set it before Run.
	Debounce time.Duration

	ready chan struct{}
}

// NewWatcher returns a Watcher for path. current is the config the process
// is running with and serves as the baseline for the first change.
func NewWatcher(path string, current *Config, onChange func(prev, next *Config)) *Watcher {
	return &Watcher{
		path:     filepath.Clean(path),
		current:  current,
		onChange: onChange,
		Debounce: DefaultReloadDebounce,
		ready:    make(chan struct{}),
	}
}

// Ready is closed once Run is receiving file events.
func (w *Watcher) Ready() <-chan struct{} {
	return w.ready
}

// Run blocks until ctx is cancelled. It returns an error only if watching
// cannot start.
//
// The parent directory is watched rather than the file itself so a save
// that replaces the file keeps being observed.
func (w *Watcher) Run(ctx context.Context) error {
	if _, err := os.Stat(w.path); err != nil {
		return err
	}

	fw, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer fw.Close()

	if err := fw.Add(filepath.Dir(w.path)); err != nil {
		return err
	}
	slog.Info("config: watching for changes", "path", w.path, "debounce", w.Debounce)
	close(w.ready)

	timer := time.NewTimer(w.Debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case event, ok := <-fw.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(event.Name) != w.path {
				continue
			}
			if !event.Has(fsnotify.Write) && !event.Has(fsnotify.Create) {
				continue
			}
			timer.Reset(w.Debounce)

		case <-timer.C:
			w.reload()

		case err, ok := <-fw.Errors:
			if !ok {
				return nil
			}
			slog.Error("config: watcher error", "err", err)
		}
	}
}

func (w *Watcher) reload() {
	next, err := Load(w.path)
	if err != nil {
		slog.Error("config: reload rejected, keeping current config", "path", w.path, "err", err)
		return
	}
	if *next == *w.current {
		slog.Debug("config: file changed but config did not", "path", w.path)
		return
	}

	prev := w.current
	w.current = next
	slog.Info("config: reloaded", "path", w.path)
	if RestartRequired(prev, next) {
		slog.Warn("config: some changes only take effect after a restart", "path", w.path)
	}
	w.onChange(prev, next)
}
