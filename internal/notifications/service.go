package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"storyreel/internal/config"
)

const userAgent = "Storyreel-Go/0.1.0"

// Service defines the notification surface exposed to the compositor and CLI.
type Service interface {
	CompositionStarted(ctx context.Context, title string, sceneCount int) error
	CompositionCompleted(ctx context.Context, title, outputPath string) error
	CompositionFailed(ctx context.Context, title, reason string) error
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
		endpoint:     topic,
		client:       &http.Client{Timeout: timeout},
		compositions: cfg.Notifications.Compositions,
		errors:       cfg.Notifications.Errors,
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
}

type ntfyService struct {
	endpoint     string
	client       *http.Client
	compositions bool
	errors       bool
}

func (n *ntfyService) CompositionStarted(ctx context.Context, title string, sceneCount int) error {
	if !n.compositions {
		return nil
	}
	data := payload{
		title:   "Storyreel - Composition Started",
		message: fmt.Sprintf("Composing %s (%d scenes)", strings.TrimSpace(title), sceneCount),
		tags:    []string{"storyreel", "compose", "started"},
	}
	return n.send(ctx, data)
}

func (n *ntfyService) CompositionCompleted(ctx context.Context, title, outputPath string) error {
	if !n.compositions {
		return nil
	}
	title = strings.TrimSpace(title)
	message := fmt.Sprintf("Ready to watch: %s", title)
	if outputPath = strings.TrimSpace(outputPath); outputPath != "" {
		message = fmt.Sprintf("%s\nFile: %s", message, outputPath)
	}
	data := payload{
		title:    "Storyreel - Complete",
		message:  message,
		tags:     []string{"storyreel", "compose", "completed"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) CompositionFailed(ctx context.Context, title, reason string) error {
	if !n.errors {
		return nil
	}
	var builder strings.Builder
	builder.WriteString("Composition failed")
	if title = strings.TrimSpace(title); title != "" {
		builder.WriteString(": ")
		builder.WriteString(title)
	}
	if reason = strings.TrimSpace(reason); reason != "" {
		builder.WriteString("\n")
		builder.WriteString(reason)
	}
	data := payload{
		title:    "Storyreel - Error",
		message:  builder.String(),
		tags:     []string{"storyreel", "error", "alert"},
		priority: "high",
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Storyreel - Test",
		message:  "Notification system test",
		tags:     []string{"storyreel", "test"},
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

func (noopService) CompositionStarted(context.Context, string, int) error      { return nil }
func (noopService) CompositionCompleted(context.Context, string, string) error { return nil }
func (noopService) CompositionFailed(context.Context, string, string) error    { return nil }
func (noopService) TestNotification(context.Context) error                     { return nil }
