package main

import (
	"log/slog"
	"testing"

	"github.com/obsidianstack/pokedex/server/internal/config"
)

func TestApplyReload(t *testing.T) {
	prev, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var level slog.LevelVar
	level.Set(prev.Server.Level())
	pages := config.NewLivePagination(prev.Server.Pagination)

	next := *prev
	next.Server.LogLevel = "debug"
	next.Server.Pagination = config.PaginationConfig{DefaultLimit: 4, MaxLimit: 8}
	applyReload(&level, pages, prev, &next)

	if level.Level() != slog.LevelDebug {
		t.Errorf("level: got %v, want debug", level.Level())
	}
	if got := pages.Load(); got != next.Server.Pagination {
		t.Errorf("pagination: got %+v, want %+v", got, next.Server.Pagination)
	}
}

func TestApplyReload_UnrelatedChangeKeepsLivePolicy(t *testing.T) {
	prev, err := config.Load("")
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	var level slog.LevelVar
	level.Set(prev.Server.Level())
	pages := config.NewLivePagination(prev.Server.Pagination)

	next := *prev
	next.Server.HTTPPort = 8080
	applyReload(&level, pages, prev, &next)

	if level.Level() != slog.LevelInfo {
		t.Errorf("level: got %v, want info", level.Level())
	}
	if got := pages.Load(); got != prev.Server.Pagination {
		t.Errorf("pagination: got %+v, want %+v", got, prev.Server.Pagination)
	}
}
