package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"rovercam/internal/api"
	"rovercam/internal/camera"
	"rovercam/internal/config"
	"rovercam/internal/deps"
	"rovercam/internal/history"
	"rovercam/internal/logging"
	"rovercam/internal/notifications"
	"rovercam/internal/relay"
	"rovercam/internal/stream"
	"rovercam/internal/tunnel"
)

// Daemon coordinates the camera, stream, relay, and tunnel services and
// enforces single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	hub      *logging.Hub
	store    *history.Store
	notifier notifications.Service
	relay    *relay.Client
	tunnel   *tunnel.Manager
	slot     *camera.Slot
	producer *camera.Producer
	streamer *stream.Streamer
	httpSrv  *httpServer
	hotplug  *hotplugMonitor

	lockPath string
	lock     *flock.Flock

	providerMu sync.Mutex
	provider   camera.Provider

	placeholderMu    sync.Mutex
	placeholderCache map[string][]byte

	// lifecycleMu serializes Start/Stop so concurrent IPC callers
	// cannot race on ctx/cancel.
	lifecycleMu sync.Mutex
	startedAt   time.Time
	running     atomic.Bool
	ctx         context.Context
	cancel      context.CancelFunc
}

// dynamicProvider lets the producer always open through the daemon's
// current provider, which hotplug events can swap out.
type dynamicProvider struct {
	d *Daemon
}

func (p dynamicProvider) Available() bool { return p.d.currentProvider().Available() }

func (p dynamicProvider) Reason() string { return p.d.currentProvider().Reason() }

func (p dynamicProvider) Open(settings camera.Settings) (camera.Device, error) {
	return p.d.currentProvider().Open(settings)
}

// New constructs a daemon with initialized collaborators. store may be
// nil when history is disabled.
func New(cfg *config.Config, store *history.Store, logger *slog.Logger, hub *logging.Hub) (*Daemon, error) {
	if cfg == nil {
		return nil, errors.New("daemon requires config")
	}
	if logger == nil {
		logger = logging.NewNop()
	}

	d := &Daemon{
		cfg:              cfg,
		logger:           logger,
		hub:              hub,
		store:            store,
		notifier:         notifications.NewService(cfg),
		slot:             camera.NewSlot(),
		lockPath:         cfg.LockPath(),
		placeholderCache: make(map[string][]byte),
	}
	d.lock = flock.New(d.lockPath)
	d.provider = camera.Detect(cfg.Camera.Device)

	d.producer = camera.NewProducer(
		dynamicProvider{d},
		d.slot,
		camera.Settings{
			Device:      cfg.Camera.Device,
			Width:       cfg.Camera.Width,
			Height:      cfg.Camera.Height,
			Framerate:   cfg.Camera.Framerate,
			JPEGQuality: cfg.Camera.JPEGQuality,
		},
		time.Duration(cfg.Camera.WarmupSeconds)*time.Second,
		logger,
	)
	d.producer.OnFault(func(reason string) {
		if err := d.notifier.NotifyCameraFault(context.Background(), reason); err != nil {
			d.logger.Debug("camera fault notification failed", logging.Error(err))
		}
	})
	d.streamer = stream.New(d.slot, d.placeholderImage, stream.Options{
		MaxFPS:          cfg.Stream.MaxFPS,
		Freshness:       time.Duration(cfg.Stream.FreshnessMS) * time.Millisecond,
		OfflineInterval: time.Duration(cfg.Stream.OfflineIntervalMS) * time.Millisecond,
	}, logger)
	d.relay = relay.NewClient(
		cfg.RelayTarget(),
		time.Duration(cfg.Relay.SendTimeoutMS)*time.Millisecond,
		time.Duration(cfg.Relay.ProbeTimeoutMS)*time.Millisecond,
		logger,
	)
	if cfg.Tunnel.Enabled {
		d.tunnel = tunnel.NewManager(
			cfg.Tunnel.Binary,
			"http://"+cfg.ListenAddress(),
			time.Duration(cfg.Tunnel.URLWaitSeconds)*time.Second,
			logger,
		)
	}
	d.hotplug = newHotplugMonitor(cfg, logger, d.handleCameraEvent)
	d.httpSrv = newHTTPServer(cfg, d, logger)
	return d, nil
}

// Start acquires the single-instance lock and brings services up in
// order: camera, hotplug monitor, HTTP server, tunnel, notifications.
func (d *Daemon) Start(ctx context.Context) error {
	d.lifecycleMu.Lock()
	defer d.lifecycleMu.Unlock()

	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another rovercam daemon instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.startedAt = time.Now()

	if d.currentProvider().Available() {
		if err := d.producer.Start(d.ctx); err != nil {
			// The stream falls back to placeholders; a dead camera is
			// not fatal to the control panel.
			d.logger.Warn("camera start failed, serving placeholders", logging.Error(err))
		}
	} else {
		d.logger.Warn("camera unavailable, serving placeholders",
			logging.String("reason", d.currentProvider().Reason()))
	}

	if err := d.hotplug.Start(d.ctx); err != nil {
		d.logger.Warn("camera hotplug monitor unavailable", logging.Error(err))
	}

	if err := d.httpSrv.start(d.ctx); err != nil {
		d.hotplug.Stop()
		_ = d.producer.Stop()
		_ = d.lock.Unlock()
		d.cancel()
		d.ctx = nil
		d.cancel = nil
		return fmt.Errorf("start http server: %w", err)
	}

	d.running.Store(true)
	d.logger.Info("rovercam daemon started",
		logging.String("address", d.LocalURL()),
		logging.String("lock", d.lockPath))

	go d.announce(d.ctx)
	return nil
}

// announce establishes the tunnel (when enabled) and sends the ready
// notification. Runs off the startup path so a slow cloudflared or
// ntfy outage cannot delay serving.
func (d *Daemon) announce(ctx context.Context) {
	tunnelURL := ""
	if d.tunnel != nil {
		url, err := d.tunnel.Start(ctx)
		if err != nil {
			d.logger.Warn("tunnel start failed", logging.Error(err))
			if nerr := d.notifier.NotifyError(ctx, err, "tunnel"); nerr != nil {
				d.logger.Debug("error notification failed", logging.Error(nerr))
			}
		} else {
			tunnelURL = url
		}
	}
	if !probeInternet(internetProbeTimeout) {
		d.logger.Warn("no internet connectivity detected, skipping ready notification")
		return
	}
	if err := d.notifier.NotifyServerReady(ctx, d.LocalURL(), tunnelURL); err != nil {
		d.logger.Warn("ready notification failed", logging.Error(err))
	}
}

// Stop tears services down in reverse order and releases the lock.
// Safe to call repeatedly.
func (d *Daemon) Stop() {
	d.lifecycleMu.Lock()
	defer d.lifecycleMu.Unlock()

	if !d.running.Load() {
		return
	}

	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	if d.tunnel != nil {
		if err := d.tunnel.Stop(); err != nil {
			d.logger.Warn("failed to stop tunnel", logging.Error(err))
		}
	}
	d.httpSrv.stop()
	d.hotplug.Stop()
	if err := d.producer.Stop(); err != nil {
		d.logger.Warn("failed to stop camera", logging.Error(err))
	}
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.logger.Info("rovercam daemon stopped")
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Running reports whether services are up.
func (d *Daemon) Running() bool {
	return d.running.Load()
}

// LocalURL returns the LAN URL of the control panel.
func (d *Daemon) LocalURL() string {
	host := d.cfg.Server.Bind
	if host == "0.0.0.0" || host == "" || host == "::" {
		host = localIP()
	}
	return fmt.Sprintf("http://%s:%d", host, d.cfg.Server.Port)
}

func (d *Daemon) currentProvider() camera.Provider {
	d.providerMu.Lock()
	defer d.providerMu.Unlock()
	return d.provider
}

func (d *Daemon) setProvider(provider camera.Provider) {
	d.providerMu.Lock()
	d.provider = provider
	d.providerMu.Unlock()
}

// placeholderImage renders (and caches) the placeholder matching the
// current camera condition.
func (d *Daemon) placeholderImage() ([]byte, error) {
	message := camera.PlaceholderOffline
	if !d.currentProvider().Available() {
		message = camera.PlaceholderUnavailable
	}
	d.placeholderMu.Lock()
	defer d.placeholderMu.Unlock()
	if cached, ok := d.placeholderCache[message]; ok {
		return cached, nil
	}
	data, err := camera.PlaceholderJPEG(d.cfg.Camera.Width, d.cfg.Camera.Height, message, d.cfg.Camera.JPEGQuality)
	if err != nil {
		return nil, err
	}
	d.placeholderCache[message] = data
	return data, nil
}

// handleCameraEvent reacts to udev add/remove events for the
// configured capture device.
func (d *Daemon) handleCameraEvent(ctx context.Context, action string) {
	switch action {
	case "add":
		d.setProvider(camera.Detect(d.cfg.Camera.Device))
		if !d.running.Load() || !d.currentProvider().Available() {
			return
		}
		if err := d.producer.Start(ctx); err != nil {
			d.logger.Warn("camera restart after hotplug failed", logging.Error(err))
			return
		}
		if err := d.notifier.NotifyCameraRecovered(ctx, d.cfg.Camera.Device); err != nil {
			d.logger.Debug("camera recovery notification failed", logging.Error(err))
		}
	case "remove":
		if err := d.producer.Stop(); err != nil {
			d.logger.Warn("camera stop after unplug failed", logging.Error(err))
		}
		d.setProvider(camera.Unavailable("device node " + camera.DeviceNode(d.cfg.Camera.Device) + " was removed"))
		if err := d.notifier.NotifyCameraFault(ctx, "device unplugged"); err != nil {
			d.logger.Debug("camera fault notification failed", logging.Error(err))
		}
	}
}

// Control relays one movement command and records the outcome.
func (d *Daemon) Control(ctx context.Context, directionValue string) (api.ControlResponse, error) {
	direction, err := relay.ParseDirection(directionValue)
	if err != nil {
		return api.ControlResponse{}, err
	}
	command, _ := direction.Command()

	resp := api.ControlResponse{
		Direction: string(direction),
		Command:   string(command),
		OK:        true,
	}
	if sendErr := d.relay.Send(direction); sendErr != nil {
		resp.OK = false
		resp.Message = sendErr.Error()
		d.logger.Warn("relay send failed",
			logging.String(logging.FieldDirection, string(direction)),
			logging.Error(sendErr))
	}
	if d.store != nil {
		if recErr := d.store.Record(ctx, resp.Direction, resp.Command, resp.OK, resp.Message); recErr != nil {
			d.logger.Warn("history record failed", logging.Error(recErr))
		}
	}
	return resp, nil
}

// History returns recent relayed commands, newest first.
func (d *Daemon) History(ctx context.Context, limit int) ([]api.HistoryEntry, error) {
	if d.store == nil {
		return nil, nil
	}
	return d.store.List(ctx, limit)
}

// TailLogs fetches buffered log events past since.
func (d *Daemon) TailLogs(ctx context.Context, since uint64, limit int, wait bool) ([]api.LogEvent, uint64, error) {
	if d.hub == nil {
		return nil, since, nil
	}
	events, next, err := d.hub.Fetch(ctx, since, limit, wait)
	return api.FromLogEvents(events), next, err
}

// TestNotification triggers a test notification using the current
// configuration.
func (d *Daemon) TestNotification(ctx context.Context) (bool, string, error) {
	if strings.TrimSpace(d.cfg.Notifications.NtfyTopic) == "" {
		return false, "ntfy topic not configured", nil
	}
	if err := d.notifier.TestNotification(ctx); err != nil {
		return false, "failed to send notification", err
	}
	return true, "test notification sent", nil
}

// Status returns the current daemon status.
func (d *Daemon) Status(ctx context.Context) api.StatusResponse {
	provider := d.currentProvider()
	_, fresh := d.slot.FreshFrame(time.Now(), time.Duration(d.cfg.Stream.FreshnessMS)*time.Millisecond)

	historyCount := 0
	if d.store != nil {
		if count, err := d.store.Count(ctx); err == nil {
			historyCount = count
		}
	}

	status := api.StatusResponse{
		Running:   d.running.Load(),
		PID:       os.Getpid(),
		StartedAt: d.startedAt,
		LocalURL:  d.LocalURL(),
		Camera: api.CameraStatus{
			Available:  provider.Available(),
			Reason:     provider.Reason(),
			State:      string(d.producer.State()),
			Device:     d.cfg.Camera.Device,
			Width:      d.cfg.Camera.Width,
			Height:     d.cfg.Camera.Height,
			Framerate:  d.cfg.Camera.Framerate,
			FrameFresh: fresh,
		},
		Relay: api.RelayStatus{
			Target:    d.relay.Target(),
			Reachable: d.relay.Probe(),
		},
		Tunnel: api.TunnelStatus{
			Enabled: d.cfg.Tunnel.Enabled,
		},
		Internet:     probeInternet(internetProbeTimeout),
		Sessions:     d.streamer.ActiveSessions(),
		HistoryCount: historyCount,
		LockPath:     d.lockPath,
		Dependencies: deps.Check(d.cfg),
	}
	if d.tunnel != nil {
		status.Tunnel.Running = d.tunnel.Running()
		status.Tunnel.URL = d.tunnel.URL()
	}
	return status
}
