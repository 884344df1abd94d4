package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"postpilot/internal/config"
)

const userAgent = "Postpilot/0.1.0"

// Service defines the notification surface exposed to scheduler and
// dispatcher components.
type Service interface {
	NotifyPostScheduled(ctx context.Context, platformName, content string, at time.Time) error
	NotifyPostDelivered(ctx context.Context, platformName, content string) error
	NotifyPostFailed(ctx context.Context, platformName, content, reason string) error
	NotifyRetryScheduled(ctx context.Context, platformName string, attempt int, nextAt time.Time) error
	NotifyDaemonStarted(ctx context.Context) error
	NotifyDaemonStopped(ctx context.Context) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
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
		enabled:  cfg.Notifications,
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
	enabled  config.Notifications
}

func (n *ntfyService) NotifyPostScheduled(ctx context.Context, platformName, content string, at time.Time) error {
	if !n.enabled.Scheduled {
		return nil
	}
	data := payload{
		title:   "Postpilot - Scheduled",
		message: fmt.Sprintf("📅 Scheduled for %s at %s: %s", platformName, at.Format("2006-01-02 15:04"), snippet(content)),
		tags:    []string{"postpilot", "post", "scheduled"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPostDelivered(ctx context.Context, platformName, content string) error {
	if !n.enabled.Delivered {
		return nil
	}
	data := payload{
		title:   "Postpilot - Delivered",
		message: fmt.Sprintf("✅ Delivered to %s: %s", platformName, snippet(content)),
		tags:    []string{"postpilot", "post", "delivered"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyPostFailed(ctx context.Context, platformName, content, reason string) error {
	if !n.enabled.Failed {
		return nil
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = "unknown"
	}
	data := payload{
		title:    "Postpilot - Failed",
		message:  fmt.Sprintf("❌ Failed on %s: %s\nReason: %s", platformName, snippet(content), reason),
		tags:     []string{"postpilot", "post", "failed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyRetryScheduled(ctx context.Context, platformName string, attempt int, nextAt time.Time) error {
	if !n.enabled.Retries {
		return nil
	}
	data := payload{
		title:   "Postpilot - Retry",
		message: fmt.Sprintf("🔁 Retry %d for %s at %s", attempt, platformName, nextAt.Format("15:04:05")),
		tags:    []string{"postpilot", "post", "retry"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyDaemonStarted(ctx context.Context) error {
	if !n.enabled.Daemon {
		return nil
	}
	data := payload{
		title:   "Postpilot - Started",
		message: "Delivery daemon started",
		tags:    []string{"postpilot", "daemon", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyDaemonStopped(ctx context.Context) error {
	if !n.enabled.Daemon {
		return nil
	}
	data := payload{
		title:   "Postpilot - Stopped",
		message: "Delivery daemon stopped",
		tags:    []string{"postpilot", "daemon", "stopped"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Postpilot - Test",
		message:  "🧪 Notification system test",
		tags:     []string{"postpilot", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

// snippet trims content to a notification-friendly length.
func snippet(content string) string {
	content = strings.TrimSpace(content)
	const max = 80
	runes := []rune(content)
	if len(runes) <= max {
		return content
	}
	return string(runes[:max-1]) + "…"
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

func (noopService) NotifyPostScheduled(context.Context, string, string, time.Time) error { return nil }
func (noopService) NotifyPostDelivered(context.Context, string, string) error            { return nil }
func (noopService) NotifyPostFailed(context.Context, string, string, string) error       { return nil }
func (noopService) NotifyRetryScheduled(context.Context, string, int, time.Time) error   { return nil }
func (noopService) NotifyDaemonStarted(context.Context) error                            { return nil }
func (noopService) NotifyDaemonStopped(context.Context) error                            { return nil }
func (noopService) TestNotification(context.Context) error                               { return nil }

// Noop returns the disabled notification service for tests and tooling.
func Noop() Service { return noopService{} }
