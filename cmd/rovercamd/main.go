// Command rovercamd runs the rover control daemon: camera capture, the
// MJPEG/control HTTP server, and the Unix-socket IPC surface for the
// rovercam CLI.
package main

import (
	"context"
	"flag"
	"log"
	"log/slog"
	"os/signal"
	"strings"
	"syscall"

	"rovercam/internal/config"
	"rovercam/internal/daemon"
	"rovercam/internal/history"
	"rovercam/internal/ipc"
	"rovercam/internal/logging"
)

func main() {
	configPath := flag.String("config", "", "path to the configuration file")
	socketPath := flag.String("socket", "", "override the IPC socket path")
	flag.Parse()

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	cfg, _, _, err := config.Load(*configPath)
	if err != nil {
		log.Fatalf("load config: %v", err)
	}
	if err := cfg.EnsureDirectories(); err != nil {
		log.Fatalf("prepare directories: %v", err)
	}

	hub := logging.NewHub(logging.DefaultHubCapacity)
	logger, err := logging.NewFromConfig(cfg, hub)
	if err != nil {
		log.Fatalf("init logger: %v", err)
	}

	store, err := openHistory(cfg, logger)
	if err != nil {
		logger.Error("open history store", logging.Error(err))
		return
	}
	if store != nil {
		defer store.Close()
	}

	d, err := daemon.New(cfg, store, logger, hub)
	if err != nil {
		logger.Error("create daemon", logging.Error(err))
		return
	}
	defer d.Close()

	ipcServer, err := ipc.NewServer(ctx, resolveSocketPath(cfg, *socketPath), d, logger)
	if err != nil {
		logger.Error("start IPC server", logging.Error(err))
		return
	}
	defer ipcServer.Close()
	ipcServer.Serve()

	if err := d.Start(ctx); err != nil {
		logger.Warn("daemon start", logging.Error(err))
	}

	<-ctx.Done()
	logger.Info("rovercamd shutting down")
}

// openHistory opens the command history store when enabled. A nil store
// disables recording without disabling the daemon.
func openHistory(cfg *config.Config, logger *slog.Logger) (*history.Store, error) {
	if cfg == nil || !cfg.History.Enabled {
		logger.Info("command history disabled")
		return nil, nil
	}
	return history.Open(cfg.HistoryDBPath(), cfg.History.MaxEntries)
}

func resolveSocketPath(cfg *config.Config, override string) string {
	if trimmed := strings.TrimSpace(override); trimmed != "" {
		return trimmed
	}
	return cfg.SocketPath()
}
