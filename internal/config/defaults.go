package config

const (
	defaultLogDir = "~/.local/share/rovercam/logs"

	defaultServerBind = "0.0.0.0"
	defaultServerPort = 5000

	defaultCameraDevice        = "/dev/video0"
	defaultCameraWidth         = 640
	defaultCameraHeight        = 480
	defaultCameraFramerate     = 20
	defaultCameraJPEGQuality   = 85
	defaultCameraWarmupSeconds = 2

	defaultStreamMaxFPS            = 30
	defaultStreamFreshnessMS       = 1000
	defaultStreamOfflineIntervalMS = 1000

	defaultRelayHost           = "localhost"
	defaultRelayPort           = 9000
	defaultRelaySendTimeoutMS  = 1000
	defaultRelayProbeTimeoutMS = 500

	defaultTunnelBinary         = "cloudflared"
	defaultTunnelURLWaitSeconds = 30

	defaultNtfyRequestTimeout = 10

	defaultHistoryMaxEntries = 1000

	defaultLogFormat = "console"
	defaultLogLevel  = "info"
)

// Default returns a Config populated with repository defaults.
func Default() Config {
	return Config{
		Paths: Paths{
			LogDir: defaultLogDir,
		},
		Server: Server{
			Bind: defaultServerBind,
			Port: defaultServerPort,
		},
		Camera: Camera{
			Device:        defaultCameraDevice,
			Width:         defaultCameraWidth,
			Height:        defaultCameraHeight,
			Framerate:     defaultCameraFramerate,
			JPEGQuality:   defaultCameraJPEGQuality,
			WarmupSeconds: defaultCameraWarmupSeconds,
		},
		Stream: Stream{
			MaxFPS:            defaultStreamMaxFPS,
			FreshnessMS:       defaultStreamFreshnessMS,
			OfflineIntervalMS: defaultStreamOfflineIntervalMS,
		},
		Relay: Relay{
			Host:           defaultRelayHost,
			Port:           defaultRelayPort,
			SendTimeoutMS:  defaultRelaySendTimeoutMS,
			ProbeTimeoutMS: defaultRelayProbeTimeoutMS,
		},
		Tunnel: Tunnel{
			Enabled:        false,
			Binary:         defaultTunnelBinary,
			URLWaitSeconds: defaultTunnelURLWaitSeconds,
		},
		Notifications: Notifications{
			RequestTimeout: defaultNtfyRequestTimeout,
		},
		History: History{
			Enabled:    true,
			MaxEntries: defaultHistoryMaxEntries,
		},
		Logging: Logging{
			Format: defaultLogFormat,
			Level:  defaultLogLevel,
		},
	}
}
