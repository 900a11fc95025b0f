package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"rovercam/internal/config"
)

const userAgent = "Rovercam/0.1.0"

// Service is the notification surface exposed to the daemon.
type Service interface {
	NotifyServerReady(ctx context.Context, localURL, tunnelURL string) error
	NotifyCameraFault(ctx context.Context, reason string) error
	NotifyCameraRecovered(ctx context.Context, device string) error
	NotifyError(ctx context.Context, err error, context string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when a topic
// is configured, and a noop implementation otherwise.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
}

func (n *ntfyService) NotifyServerReady(ctx context.Context, localURL, tunnelURL string) error {
	message := fmt.Sprintf("Rover control panel is up: %s", strings.TrimSpace(localURL))
	if tunnelURL = strings.TrimSpace(tunnelURL); tunnelURL != "" {
		message = fmt.Sprintf("%s\nPublic: %s", message, tunnelURL)
	}
	data := payload{
		title:   "Rovercam - Ready",
		message: message,
		tags:    []string{"rovercam", "ready"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyCameraFault(ctx context.Context, reason string) error {
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "unknown"
	}
	data := payload{
		title:    "Rovercam - Camera Fault",
		message:  fmt.Sprintf("Camera stopped: %s", reason),
		tags:     []string{"rovercam", "camera", "fault"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyCameraRecovered(ctx context.Context, device string) error {
	device = strings.TrimSpace(device)
	data := payload{
		title:   "Rovercam - Camera Back",
		message: fmt.Sprintf("Camera available again: %s", device),
		tags:    []string{"rovercam", "camera", "recovered"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	var builder strings.Builder
	builder.WriteString("Error")
	if contextLabel = strings.TrimSpace(contextLabel); contextLabel != "" {
		builder.WriteString(" with ")
		builder.WriteString(contextLabel)
	}
	builder.WriteString(": ")
	if err != nil {
		builder.WriteString(strings.TrimSpace(err.Error()))
	} else {
		builder.WriteString("unknown")
	}

	data := payload{
		title:    "Rovercam - Error",
		message:  builder.String(),
		tags:     []string{"rovercam", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Rovercam - Test",
		message:  "Notification system test",
		tags:     []string{"rovercam", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, n.endpoint, strings.NewReader(data.message))
	if err != nil {
		return fmt.Errorf("build ntfy request: %w", err)
	}
	req.Header.Set("User-Agent", userAgent)
	req.Header.Set("Content-Type", "text/plain; charset=utf-8")
	if data.title != "" {
		req.Header.Set("Title", data.title)
	}
	if len(data.tags) > 0 {
		req.Header.Set("Tags", strings.Join(data.tags, ","))
	}
	if data.priority != "" && data.priority != "default" {
		req.Header.Set("Priority", data.priority)
	}

	resp, err := n.client.Do(req)
	if err != nil {
		return fmt.Errorf("send ntfy notification: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 2048))
		return fmt.Errorf("ntfy returned %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	_, _ = io.Copy(io.Discard, resp.Body)
	return nil
}

type noopService struct{}

func (noopService) NotifyServerReady(context.Context, string, string) error { return nil }
func (noopService) NotifyCameraFault(context.Context, string) error         { return nil }
func (noopService) NotifyCameraRecovered(context.Context, string) error     { return nil }
func (noopService) NotifyError(context.Context, error, string) error        { return nil }
func (noopService) TestNotification(context.Context) error                  { return nil }
