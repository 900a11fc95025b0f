package main

import (
	"path/filepath"
	"testing"

	"rovercam/internal/config"
	"rovercam/internal/logging"
)

func TestResolveSocketPath(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")

	if got := resolveSocketPath(&cfg, ""); got != cfg.SocketPath() {
		t.Fatalf("default socket path = %q, want %q", got, cfg.SocketPath())
	}
	if got := resolveSocketPath(&cfg, "  /tmp/custom.sock  "); got != "/tmp/custom.sock" {
		t.Fatalf("override socket path = %q", got)
	}
}

func TestOpenHistoryDisabled(t *testing.T) {
	cfg := config.Default()
	cfg.History.Enabled = false

	store, err := openHistory(&cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	if store != nil {
		t.Fatal("expected nil store when history is disabled")
	}
}

func TestOpenHistoryEnabled(t *testing.T) {
	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	cfg.History.Enabled = true
	cfg.History.MaxEntries = 10

	store, err := openHistory(&cfg, logging.NewNop())
	if err != nil {
		t.Fatalf("open history: %v", err)
	}
	if store == nil {
		t.Fatal("expected a store when history is enabled")
	}
	defer store.Close()
	if store.Path() != cfg.HistoryDBPath() {
		t.Fatalf("store path = %q, want %q", store.Path(), cfg.HistoryDBPath())
	}
}
