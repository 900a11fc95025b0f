package config

import (
	"errors"
	"fmt"
)

// Validate ensures the configuration is usable.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateCamera(); err != nil {
		return err
	}
	if err := c.validateStream(); err != nil {
		return err
	}
	if err := c.validateRelay(); err != nil {
		return err
	}
	if err := c.validateHistory(); err != nil {
		return err
	}
	return nil
}

func (c *Config) validateServer() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}
	return nil
}

func (c *Config) validateCamera() error {
	if c.Camera.Width <= 0 || c.Camera.Height <= 0 {
		return errors.New("camera.width and camera.height must be positive")
	}
	if c.Camera.Framerate < 1 {
		return errors.New("camera.framerate must be at least 1")
	}
	if c.Camera.JPEGQuality < 1 || c.Camera.JPEGQuality > 100 {
		return fmt.Errorf("camera.jpeg_quality must be between 1 and 100, got %d", c.Camera.JPEGQuality)
	}
	return nil
}

func (c *Config) validateStream() error {
	if c.Stream.MaxFPS < 1 {
		return errors.New("stream.max_fps must be at least 1")
	}
	if c.Stream.FreshnessMS < 1 {
		return errors.New("stream.freshness_ms must be at least 1")
	}
	if c.Stream.OfflineIntervalMS < 1 {
		return errors.New("stream.offline_interval_ms must be at least 1")
	}
	return nil
}

func (c *Config) validateRelay() error {
	if c.Relay.Port < 1 || c.Relay.Port > 65535 {
		return fmt.Errorf("relay.port must be between 1 and 65535, got %d", c.Relay.Port)
	}
	return nil
}

func (c *Config) validateHistory() error {
	if c.History.Enabled && c.History.MaxEntries < 1 {
		return errors.New("history.max_entries must be at least 1 when history is enabled")
	}
	return nil
}
