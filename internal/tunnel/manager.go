package tunnel

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os/exec"
	"regexp"
	"sync"
	"syscall"
	"time"

	"rovercam/internal/logging"
)

var commandContext = exec.CommandContext

// Quick tunnels get a random hostname under trycloudflare.com; the URL
// only appears in the process output.
var urlPattern = regexp.MustCompile(`https://[a-zA-Z0-9-]+\.trycloudflare\.com`)

const terminateGrace = 5 * time.Second

// ErrNoTunnelURL reports that cloudflared never printed a public URL
// within the configured wait.
var ErrNoTunnelURL = errors.New("tunnel URL did not appear in cloudflared output")

// Manager runs one cloudflared quick tunnel for the local HTTP server.
type Manager struct {
	binary  string
	target  string
	urlWait time.Duration
	logger  *slog.Logger

	mu   sync.Mutex
	cmd  *exec.Cmd
	url  string
	done chan struct{}
}

// NewManager builds a manager that exposes target (a local http://
// URL) through binary.
func NewManager(binary, target string, urlWait time.Duration, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		binary:  binary,
		target:  target,
		urlWait: urlWait,
		logger:  logging.NewComponentLogger(logger, "tunnel"),
	}
}

// URL returns the public URL, or "" when no tunnel is up.
func (m *Manager) URL() string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.url
}

// Running reports whether the cloudflared process is alive.
func (m *Manager) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.cmd == nil {
		return false
	}
	select {
	case <-m.done:
		return false
	default:
		return true
	}
}

// Start launches cloudflared and blocks until the public URL shows up
// in its output, the wait expires, or ctx is cancelled. On success the
// URL is returned and the process keeps running until Stop.
func (m *Manager) Start(ctx context.Context) (string, error) {
	m.mu.Lock()
	if m.cmd != nil {
		url := m.url
		m.mu.Unlock()
		return url, nil
	}
	m.mu.Unlock()

	cmd := commandContext(context.Background(), m.binary, "tunnel", "--url", m.target, "--no-autoupdate") //nolint:gosec
	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return "", fmt.Errorf("stdout pipe: %w", err)
	}
	// cloudflared logs the URL on stderr.
	cmd.Stderr = cmd.Stdout
	if err := cmd.Start(); err != nil {
		return "", fmt.Errorf("start %s: %w", m.binary, err)
	}

	done := make(chan struct{})
	urlCh := make(chan string, 1)
	go func() {
		defer close(done)
		scanner := bufio.NewScanner(stdout)
		for scanner.Scan() {
			line := scanner.Text()
			m.logger.Debug("cloudflared output", logging.String("line", line))
			if match := urlPattern.FindString(line); match != "" {
				select {
				case urlCh <- match:
				default:
				}
			}
		}
		if err := cmd.Wait(); err != nil {
			m.logger.Debug("cloudflared exited", logging.Error(err))
		}
	}()

	m.mu.Lock()
	m.cmd = cmd
	m.done = done
	m.mu.Unlock()

	select {
	case url := <-urlCh:
		m.mu.Lock()
		m.url = url
		m.mu.Unlock()
		m.logger.Info("tunnel established", logging.String("url", url))
		return url, nil
	case <-done:
		m.reset()
		return "", fmt.Errorf("%s exited before printing a URL", m.binary)
	case <-time.After(m.urlWait):
		m.Stop()
		return "", fmt.Errorf("%w after %s", ErrNoTunnelURL, m.urlWait)
	case <-ctx.Done():
		m.Stop()
		return "", ctx.Err()
	}
}

// Stop terminates cloudflared, escalating to SIGKILL if it ignores
// SIGTERM. Safe to call when no tunnel is running.
func (m *Manager) Stop() error {
	m.mu.Lock()
	cmd, done := m.cmd, m.done
	m.cmd = nil
	m.url = ""
	m.done = nil
	m.mu.Unlock()

	if cmd == nil || cmd.Process == nil {
		return nil
	}
	if err := cmd.Process.Signal(syscall.SIGTERM); err != nil {
		// Already gone.
		return nil
	}
	select {
	case <-done:
	case <-time.After(terminateGrace):
		m.logger.Warn("cloudflared ignored SIGTERM, killing")
		cmd.Process.Kill()
		<-done
	}
	m.logger.Info("tunnel stopped")
	return nil
}

func (m *Manager) reset() {
	m.mu.Lock()
	m.cmd = nil
	m.url = ""
	m.done = nil
	m.mu.Unlock()
}
