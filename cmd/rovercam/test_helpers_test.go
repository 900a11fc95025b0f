package main

import (
	"bytes"
	"context"
	"net"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/pelletier/go-toml/v2"

	"rovercam/internal/config"
	"rovercam/internal/daemon"
	"rovercam/internal/history"
	"rovercam/internal/ipc"
	"rovercam/internal/logging"
	"rovercam/internal/testsupport"
)

type cliTestEnv struct {
	cfg        *config.Config
	daemon     *daemon.Daemon
	server     *ipc.Server
	socketPath string
	configPath string
	controller *fakeController
	cancel     context.CancelFunc
}

// fakeController accepts rover command bytes like the real motor
// controller would.
type fakeController struct {
	listener net.Listener
	received chan byte
}

func newFakeController(t *testing.T) *fakeController {
	t.Helper()
	listener, err := net.Listen("tcp", "127.0.0.1:0")
	if err != nil {
		t.Fatalf("listen: %v", err)
	}
	fc := &fakeController{listener: listener, received: make(chan byte, 16)}
	go func() {
		for {
			conn, err := listener.Accept()
			if err != nil {
				return
			}
			go func(c net.Conn) {
				defer c.Close()
				buf := make([]byte, 1)
				if n, err := c.Read(buf); err == nil && n == 1 {
					fc.received <- buf[0]
				}
			}(conn)
		}
	}()
	t.Cleanup(func() { listener.Close() })
	return fc
}

func (f *fakeController) addr() (host string, port int) {
	tcpAddr := f.listener.Addr().(*net.TCPAddr)
	return tcpAddr.IP.String(), tcpAddr.Port
}

func setupCLITestEnv(t *testing.T) *cliTestEnv {
	t.Helper()

	controller := newFakeController(t)
	cfg := testsupport.NewConfig(t, func(c *config.Config) {
		c.Relay.Host, c.Relay.Port = controller.addr()
		c.History.Enabled = true
	})

	configPath := filepath.Join(t.TempDir(), "config.toml")
	writeTestConfig(t, configPath, cfg)

	store, err := history.Open(cfg.HistoryDBPath(), cfg.History.MaxEntries)
	if err != nil {
		t.Fatalf("open history: %v", err)
	}

	hub := logging.NewHub(128)
	logger, err := logging.New(logging.Options{
		Level:       "info",
		Format:      "console",
		OutputPaths: []string{os.DevNull},
		Hub:         hub,
	})
	if err != nil {
		t.Fatalf("init logger: %v", err)
	}

	d, err := daemon.New(cfg, store, logger, hub)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}

	ctx, cancel := context.WithCancel(context.Background())
	socketPath := filepath.Join(cfg.Paths.LogDir, "cli.sock")
	srv, err := ipc.NewServer(ctx, socketPath, d, logger)
	if err != nil {
		t.Fatalf("ipc.NewServer: %v", err)
	}
	srv.Serve()

	env := &cliTestEnv{
		cfg:        cfg,
		daemon:     d,
		server:     srv,
		socketPath: socketPath,
		configPath: configPath,
		controller: controller,
		cancel:     cancel,
	}

	t.Cleanup(func() {
		cancel()
		srv.Close()
		d.Close()
		store.Close()
	})

	return env
}

func runCLI(t *testing.T, args []string, socket, configPath string) (string, string, error) {
	t.Helper()
	cmd := newRootCommand()
	var stdout, stderr bytes.Buffer
	cmd.SetOut(&stdout)
	cmd.SetErr(&stderr)
	flags := []string{"--socket", socket}
	if configPath != "" {
		flags = append(flags, "--config", configPath)
	}
	cmd.SetArgs(append(flags, args...))
	err := cmd.Execute()
	return stdout.String(), stderr.String(), err
}

func writeTestConfig(t *testing.T, path string, cfg *config.Config) {
	t.Helper()
	encoded, err := toml.Marshal(cfg)
	if err != nil {
		t.Fatalf("encode config: %v", err)
	}
	if err := os.WriteFile(path, encoded, 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}
}

func requireContains(t *testing.T, output, substr string) {
	t.Helper()
	if !strings.Contains(output, substr) {
		t.Fatalf("expected %q to contain %q", output, substr)
	}
}
