package config

import (
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"
)

type change struct{ prev, next *Config }

// startWatcher loads p as the running config, watches it with the given
// debounce and returns the stream of delivered changes.
func startWatcher(t *testing.T, p string, debounce time.Duration) <-chan change {
	t.Helper()

	current, err := Load(p)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}

	changes := make(chan change, 16)
	w := NewWatcher(p, current, func(prev, next *Config) {
		changes <- change{prev, next}
	})
	w.Debounce = debounce

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()
	t.Cleanup(func() {
		cancel()
		if err := <-done; err != nil {
			t.Errorf("Run: %v", err)
		}
	})

	select {
	case <-w.Ready():
	case err := <-done:
		t.Fatalf("Run returned early: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher never became ready")
	}
	return changes
}

func rewrite(t *testing.T, p, content string) {
	t.Helper()
	if err := os.WriteFile(p, []byte(content), 0o600); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
}

func nextChange(t *testing.T, changes <-chan change) change {
	t.Helper()
	select {
	case c := <-changes:
		return c
	case <-time.After(3 * time.Second):
		t.Fatal("timed out waiting for reload")
		return change{}
	}
}

func noChange(t *testing.T, changes <-chan change, within time.Duration) {
	t.Helper()
	select {
	case c := <-changes:
		t.Errorf("unexpected reload: %+v -> %+v", c.prev.Server, c.next.Server)
	case <-time.After(within):
	}
}

func TestWatcher_ReloadsOnWrite(t *testing.T) {
	p := writeConfig(t, "server:\n  log_level: info\n")
	changes := startWatcher(t, p, 20*time.Millisecond)

	rewrite(t, p, "server:\n  log_level: debug\n")

	c := nextChange(t, changes)
	if c.prev.Server.LogLevel != "info" || c.next.Server.LogLevel != "debug" {
		t.Errorf("log_level: got %q -> %q, want info -> debug", c.prev.Server.LogLevel, c.next.Server.LogLevel)
	}
}

func TestWatcher_CoalescesBurst(t *testing.T) {
	p := writeConfig(t, "server:\n  pagination:\n    default_limit: 10\n")
	changes := startWatcher(t, p, 200*time.Millisecond)

	for _, limit := range []string{"11", "12", "13", "14", "25"} {
		rewrite(t, p, "server:\n  pagination:\n    default_limit: "+limit+"\n")
		time.Sleep(10 * time.Millisecond)
	}

	c := nextChange(t, changes)
	if got := c.next.Server.Pagination.DefaultLimit; got != 25 {
		t.Errorf("default_limit: got %d, want 25 (the last write)", got)
	}
	if got := c.prev.Server.Pagination.DefaultLimit; got != 10 {
		t.Errorf("previous default_limit: got %d, want 10", got)
	}
	noChange(t, changes, 500*time.Millisecond)
}

func TestWatcher_UnchangedContentIgnored(t *testing.T) {
	content := "server:\n  log_level: warn\n"
	p := writeConfig(t, content)
	changes := startWatcher(t, p, 100*time.Millisecond)

	// Same values, different bytes.
	rewrite(t, p, "# touched\n"+content)
	noChange(t, changes, 400*time.Millisecond)
}

func TestWatcher_InvalidReloadKeepsCurrent(t *testing.T) {
	p := writeConfig(t, "server:\n  pagination:\n    max_limit: 50\n")
	changes := startWatcher(t, p, 100*time.Millisecond)

	rewrite(t, p, "server:\n  pagination:\n    max_limit: -1\n")
	noChange(t, changes, 400*time.Millisecond)

	rewrite(t, p, "server:\n  pagination:\n    max_limit: 80\n")
	c := nextChange(t, changes)
	if c.prev.Server.Pagination.MaxLimit != 50 {
		t.Errorf("previous max_limit: got %d, want 50 (the rejected file is skipped)", c.prev.Server.Pagination.MaxLimit)
	}
	if c.next.Server.Pagination.MaxLimit != 80 {
		t.Errorf("max_limit: got %d, want 80", c.next.Server.Pagination.MaxLimit)
	}
}

func TestWatcher_FileReplacedByRename(t *testing.T) {
	p := writeConfig(t, "server:\n  log_level: info\n")
	changes := startWatcher(t, p, 100*time.Millisecond)

	tmp := filepath.Join(filepath.Dir(p), ".config.yaml.swp")
	rewrite(t, tmp, "server:\n  log_level: error\n")
	if err := os.Rename(tmp, p); err != nil {
		t.Fatalf("rename: %v", err)
	}

	c := nextChange(t, changes)
	if c.next.Server.LogLevel != "error" {
		t.Errorf("log_level: got %q, want error", c.next.Server.LogLevel)
	}

	// The replacement is still watched.
	rewrite(t, p, "server:\n  log_level: warn\n")
	c = nextChange(t, changes)
	if c.next.Server.LogLevel != "warn" {
		t.Errorf("log_level after second save: got %q, want warn", c.next.Server.LogLevel)
	}
}

func TestWatcher_SiblingFilesIgnored(t *testing.T) {
	p := writeConfig(t, "server:\n  log_level: info\n")
	changes := startWatcher(t, p, 20*time.Millisecond)

	rewrite(t, filepath.Join(filepath.Dir(p), "other.yaml"), "server:\n  log_level: debug\n")
	noChange(t, changes, 300*time.Millisecond)
}

func TestWatcher_MissingFile(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "absent.yaml"), defaults(), func(prev, next *Config) {})
	if err := w.Run(context.Background()); err == nil {
		t.Fatal("expected error watching a missing file, got nil")
	}
}

func TestRestartRequired(t *testing.T) {
	base := defaults()

	tests := []struct {
		name   string
		mutate func(*ServerConfig)
		want   bool
	}{
		{"identical", func(*ServerConfig) {}, false},
		{"log level", func(s *ServerConfig) { s.LogLevel = "debug" }, false},
		{"pagination", func(s *ServerConfig) { s.Pagination = PaginationConfig{DefaultLimit: 5, MaxLimit: 20} }, false},
		{"http port", func(s *ServerConfig) { s.HTTPPort = 8080 }, true},
		{"grpc", func(s *ServerConfig) { s.GRPC.Enabled = true }, true},
		{"stream interval", func(s *ServerConfig) { s.Stream.Interval = time.Minute }, true},
		{"tracing", func(s *ServerConfig) { s.Tracing.Endpoint = "localhost:4318" }, true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			next := *base
			tc.mutate(&next.Server)
			if got := RestartRequired(base, &next); got != tc.want {
				t.Errorf("RestartRequired: got %v, want %v", got, tc.want)
			}
		})
	}
}

func TestLivePagination(t *testing.T) {
	l := NewLivePagination(PaginationConfig{DefaultLimit: 10})
	if got := l.Load(); got != (PaginationConfig{DefaultLimit: 10}) {
		t.Errorf("Load: got %+v", got)
	}

	l.Store(PaginationConfig{DefaultLimit: 3, MaxLimit: 5})
	got := l.Load()
	if got.DefaultLimit != 3 || got.MaxLimit != 5 {
		t.Errorf("Load after Store: got %+v, want 3/5", got)
	}
	if c := got.Clamp(50); c != 5 {
		t.Errorf("Clamp(50): got %d, want 5", c)
	}
	if c := (PaginationConfig{}).Clamp(50); c != 50 {
		t.Errorf("Clamp unbounded: got %d, want 50", c)
	}
}
