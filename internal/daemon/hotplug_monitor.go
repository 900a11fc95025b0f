package daemon

import (
	"context"
	"log/slog"
	"strings"
	"sync"

	"github.com/pilebones/go-udev/netlink"

	"rovercam/internal/camera"
	"rovercam/internal/config"
	"rovercam/internal/logging"
)

// hotplugMonitor listens for udev netlink events on the video4linux
// subsystem so the daemon notices the camera being unplugged or
// reattached without polling the device node.
type hotplugMonitor struct {
	logger  *slog.Logger
	handler func(ctx context.Context, action string)
	node    string

	mu      sync.Mutex
	conn    *netlink.UEventConn
	quit    chan struct{}
	running bool
}

func newHotplugMonitor(cfg *config.Config, logger *slog.Logger, handler func(ctx context.Context, action string)) *hotplugMonitor {
	return &hotplugMonitor{
		logger:  logging.NewComponentLogger(logger, "hotplug-monitor"),
		handler: handler,
		node:    camera.DeviceNode(cfg.Camera.Device),
	}
}

// Start begins listening for udev netlink events. A connect failure is
// non-fatal: the daemon still works, it just will not notice hotplug.
func (m *hotplugMonitor) Start(ctx context.Context) error {
	if m == nil || m.node == "" {
		return nil
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.running {
		return nil
	}

	conn := new(netlink.UEventConn)
	if err := conn.Connect(netlink.UdevEvent); err != nil {
		m.logger.Warn("failed to connect to netlink socket, camera hotplug detection disabled",
			logging.Error(err))
		return nil
	}

	m.conn = conn
	m.quit = make(chan struct{})
	m.running = true

	quit := m.quit
	go m.monitorLoop(ctx, quit)

	m.logger.Info("camera hotplug monitor started", logging.String(logging.FieldDevice, m.node))
	return nil
}

// Stop shuts down the monitor. Safe to call when never started.
func (m *hotplugMonitor) Stop() {
	if m == nil {
		return
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.running {
		return
	}

	if m.quit != nil {
		close(m.quit)
		m.quit = nil
	}
	if m.conn != nil {
		_ = m.conn.Close()
		m.conn = nil
	}
	m.running = false

	m.logger.Info("camera hotplug monitor stopped")
}

// Running reports whether the monitor is active.
func (m *hotplugMonitor) Running() bool {
	if m == nil {
		return false
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

func (m *hotplugMonitor) monitorLoop(ctx context.Context, quit <-chan struct{}) {
	events := make(chan netlink.UEvent)
	errs := make(chan error)

	m.mu.Lock()
	conn := m.conn
	m.mu.Unlock()
	if conn == nil {
		return
	}

	monitorQuit := conn.Monitor(events, errs, m.buildMatcher())

	for {
		select {
		case <-ctx.Done():
			close(monitorQuit)
			return
		case <-quit:
			close(monitorQuit)
			return
		case uevent := <-events:
			m.handleEvent(ctx, uevent)
		case err := <-errs:
			m.logger.Warn("netlink monitor error", logging.Error(err))
		}
	}
}

// buildMatcher matches add/remove events on the video4linux subsystem.
func (m *hotplugMonitor) buildMatcher() netlink.Matcher {
	action := "add|remove"
	rules := &netlink.RuleDefinitions{}
	rules.AddRule(netlink.RuleDefinition{
		Action: &action,
		Env: map[string]string{
			"SUBSYSTEM": "video4linux",
		},
	})
	return rules
}

func (m *hotplugMonitor) handleEvent(ctx context.Context, uevent netlink.UEvent) {
	devname := m.extractDeviceName(uevent)
	if devname == "" {
		return
	}
	if devname != m.node {
		m.logger.Debug("ignoring event for other device",
			logging.String(logging.FieldDevice, devname),
			logging.String("configured_device", m.node))
		return
	}

	action := string(uevent.Action)
	m.logger.Info("camera hotplug event",
		logging.String(logging.FieldDevice, devname),
		logging.String("action", action))

	if m.handler != nil {
		m.handler(ctx, action)
	}
}

func (m *hotplugMonitor) extractDeviceName(uevent netlink.UEvent) string {
	if devname := uevent.Env["DEVNAME"]; devname != "" {
		if !strings.HasPrefix(devname, "/") {
			devname = "/dev/" + devname
		}
		return devname
	}
	devpath := uevent.Env["DEVPATH"]
	if devpath == "" {
		return ""
	}
	parts := strings.Split(devpath, "/")
	if len(parts) == 0 {
		return ""
	}
	return "/dev/" + parts[len(parts)-1]
}
