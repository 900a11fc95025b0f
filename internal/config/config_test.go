package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestDefaultValidates(t *testing.T) {
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize default config: %v", err)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("validate default config: %v", err)
	}
}

func TestLoadMissingFileUsesDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg, resolved, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if exists {
		t.Fatal("expected missing file to report exists=false")
	}
	if resolved != path {
		t.Fatalf("resolved path = %q, want %q", resolved, path)
	}
	if cfg.Server.Port != defaultServerPort {
		t.Fatalf("port = %d, want default %d", cfg.Server.Port, defaultServerPort)
	}
	if cfg.Camera.Device != defaultCameraDevice {
		t.Fatalf("device = %q, want default %q", cfg.Camera.Device, defaultCameraDevice)
	}
}

func TestLoadParsesAndNormalizes(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.toml")
	content := `
[paths]
log_dir = "` + filepath.Join(dir, "logs") + `"

[server]
port = 8080

[camera]
device = "  /dev/video2  "
framerate = 15

[relay]
host = "rover.local"
port = 9100
`
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	cfg, _, exists, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if !exists {
		t.Fatal("expected file to be reported as existing")
	}
	if cfg.Server.Port != 8080 {
		t.Fatalf("port = %d, want 8080", cfg.Server.Port)
	}
	if cfg.Camera.Device != "/dev/video2" {
		t.Fatalf("device = %q, want trimmed /dev/video2", cfg.Camera.Device)
	}
	if cfg.Camera.Framerate != 15 {
		t.Fatalf("framerate = %d, want 15", cfg.Camera.Framerate)
	}
	if got := cfg.RelayTarget(); got != "rover.local:9100" {
		t.Fatalf("relay target = %q", got)
	}
	if got := cfg.ListenAddress(); got != "0.0.0.0:8080" {
		t.Fatalf("listen address = %q", got)
	}
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	tests := []struct {
		name    string
		content string
		wantSub string
	}{
		{
			name:    "bad port",
			content: "[server]\nport = 0\n",
			wantSub: "server.port",
		},
		{
			name:    "bad quality",
			content: "[camera]\njpeg_quality = 150\n",
			wantSub: "camera.jpeg_quality",
		},
		{
			name:    "bad stream fps",
			content: "[stream]\nmax_fps = 0\n",
			wantSub: "stream.max_fps",
		},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			path := filepath.Join(t.TempDir(), "config.toml")
			if err := os.WriteFile(path, []byte(tc.content), 0o644); err != nil {
				t.Fatalf("write config: %v", err)
			}
			_, _, _, err := Load(path)
			if err == nil {
				t.Fatal("expected validation error")
			}
			if !strings.Contains(err.Error(), tc.wantSub) {
				t.Fatalf("error %q does not mention %q", err, tc.wantSub)
			}
		})
	}
}

func TestNtfyTopicFromEnvironment(t *testing.T) {
	t.Setenv("ROVERCAM_NTFY_TOPIC", "https://ntfy.sh/rover-test")
	cfg := Default()
	if err := cfg.normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	if cfg.Notifications.NtfyTopic != "https://ntfy.sh/rover-test" {
		t.Fatalf("ntfy topic = %q", cfg.Notifications.NtfyTopic)
	}
}

func TestExpandPathTilde(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skipf("no home dir: %v", err)
	}
	got, err := ExpandPath("~/rover")
	if err != nil {
		t.Fatalf("expand: %v", err)
	}
	if got != filepath.Join(home, "rover") {
		t.Fatalf("expanded = %q", got)
	}
}

func TestSocketAndHistoryPathsLiveInLogDir(t *testing.T) {
	cfg := Default()
	cfg.Paths.LogDir = "/var/lib/rovercam"
	if got := cfg.SocketPath(); got != "/var/lib/rovercam/rovercam.sock" {
		t.Fatalf("socket path = %q", got)
	}
	if got := cfg.HistoryDBPath(); got != "/var/lib/rovercam/history.db" {
		t.Fatalf("history db path = %q", got)
	}
}
