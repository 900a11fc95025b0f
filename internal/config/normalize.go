package config

import (
	"fmt"
	"os"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	c.normalizeCamera()
	c.normalizeRelay()
	c.normalizeTunnel()
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = defaultLogDir
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	c.Server.Bind = strings.TrimSpace(c.Server.Bind)
	if c.Server.Bind == "" {
		c.Server.Bind = defaultServerBind
	}
	return nil
}

func (c *Config) normalizeCamera() {
	c.Camera.Device = strings.TrimSpace(c.Camera.Device)
	if c.Camera.Device == "" {
		c.Camera.Device = defaultCameraDevice
	}
	if c.Camera.WarmupSeconds < 0 {
		c.Camera.WarmupSeconds = 0
	}
}

func (c *Config) normalizeRelay() {
	c.Relay.Host = strings.TrimSpace(c.Relay.Host)
	if c.Relay.Host == "" {
		c.Relay.Host = defaultRelayHost
	}
	if c.Relay.SendTimeoutMS <= 0 {
		c.Relay.SendTimeoutMS = defaultRelaySendTimeoutMS
	}
	if c.Relay.ProbeTimeoutMS <= 0 {
		c.Relay.ProbeTimeoutMS = defaultRelayProbeTimeoutMS
	}
}

func (c *Config) normalizeTunnel() {
	c.Tunnel.Binary = strings.TrimSpace(c.Tunnel.Binary)
	if c.Tunnel.Binary == "" {
		c.Tunnel.Binary = defaultTunnelBinary
	}
	if c.Tunnel.URLWaitSeconds <= 0 {
		c.Tunnel.URLWaitSeconds = defaultTunnelURLWaitSeconds
	}
}

func (c *Config) normalizeNotifications() {
	if c.Notifications.NtfyTopic == "" {
		if value, ok := os.LookupEnv("ROVERCAM_NTFY_TOPIC"); ok {
			c.Notifications.NtfyTopic = value
		}
	}
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNtfyRequestTimeout
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
