// Package testsupport provides shared fixtures for package tests.
package testsupport

import (
	"path/filepath"
	"testing"

	"rovercam/internal/config"
)

// ConfigOption allows callers to customize the generated test
// configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with a unique temp log dir per
// test, pointing the relay and camera at harmless defaults.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	cfg := config.Default()
	cfg.Paths.LogDir = filepath.Join(t.TempDir(), "logs")
	// Port 0 lets the HTTP listener grab an ephemeral port.
	cfg.Server.Bind = "127.0.0.1"
	cfg.Server.Port = 0
	cfg.Camera.Device = "/dev/video-test-absent"
	cfg.Camera.WarmupSeconds = 0
	cfg.Relay.SendTimeoutMS = 200
	cfg.Relay.ProbeTimeoutMS = 100
	cfg.Tunnel.Enabled = false
	cfg.Notifications.NtfyTopic = ""

	for _, opt := range opts {
		opt(&cfg)
	}

	if err := cfg.EnsureDirectories(); err != nil {
		t.Fatalf("ensure directories: %v", err)
	}
	return &cfg
}
