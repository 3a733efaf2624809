package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"renderrob/internal/config"
	"renderrob/internal/render"
)

const userAgent = "RenderRob/0.1.0"

// Service defines the notification surface used by render sessions.
type Service interface {
	NotifySessionStarted(ctx context.Context, jobFile string, active int) error
	NotifyJobFailed(ctx context.Context, o render.Outcome) error
	NotifySessionFinished(ctx context.Context, s render.Summary) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when configured.
// When no ntfy topic is configured, a noop implementation is returned.
func NewService(cfg *config.Config) Service {
	if cfg == nil {
		return noopService{}
	}
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

func (n *ntfyService) NotifySessionStarted(ctx context.Context, jobFile string, active int) error {
	name := strings.TrimSpace(jobFile)
	if name == "" {
		name = "job list"
	}
	return n.send(ctx, payload{
		title:    "RenderRob - Session Started",
		message:  fmt.Sprintf("Rendering %d active jobs from %s", active, name),
		tags:     []string{"renderrob", "session", "started"},
		priority: "low",
	})
}

func (n *ntfyService) NotifyJobFailed(ctx context.Context, o render.Outcome) error {
	var b strings.Builder
	fmt.Fprintf(&b, "Job %d failed: %s", o.Index+1, o.Job.Label())
	if o.Exited {
		fmt.Fprintf(&b, " (exit %d)", o.ExitCode)
	}
	if o.Err != nil {
		b.WriteString("\n")
		b.WriteString(strings.TrimSpace(o.Err.Error()))
	}
	return n.send(ctx, payload{
		title:   "RenderRob - Job Failed",
		message: b.String(),
		tags:    []string{"renderrob", "job", "failed"},
	})
}

func (n *ntfyService) NotifySessionFinished(ctx context.Context, s render.Summary) error {
	counts := s.Counts()
	elapsed := s.Finished.Sub(s.Started).Round(time.Second)
	if elapsed < 0 {
		elapsed = 0
	}
	tally := fmt.Sprintf("%d green, %d yellow, %d red", counts[render.StatusGreen], counts[render.StatusYellow], counts[render.StatusRed])

	data := payload{tags: []string{"renderrob", "session"}}
	switch {
	case s.Cancelled:
		data.title = "RenderRob - Session Cancelled"
		data.message = fmt.Sprintf("Session cancelled after %s: %s", elapsed, tally)
		data.tags = append(data.tags, "cancelled")
	case s.Err != nil:
		data.title = "RenderRob - Session Halted"
		data.message = fmt.Sprintf("Session halted after %s: %s\n%s", elapsed, tally, strings.TrimSpace(s.Err.Error()))
		if left := len(s.Remaining); left > 0 {
			data.message += fmt.Sprintf("\n%d jobs not run", left)
		}
		data.tags = append(data.tags, "error", "alert")
		data.priority = "high"
	case counts[render.StatusRed] > 0:
		data.title = "RenderRob - Session Complete (with errors)"
		data.message = fmt.Sprintf("Session complete in %s: %s", elapsed, tally)
		data.tags = append(data.tags, "completed", "warning")
	default:
		data.title = "RenderRob - Session Complete"
		data.message = fmt.Sprintf("Session complete in %s: %s", elapsed, tally)
		data.tags = append(data.tags, "completed")
		data.priority = "high"
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	return n.send(ctx, payload{
		title:    "RenderRob - Test",
		message:  "Notification system test",
		tags:     []string{"renderrob", "test"},
		priority: "low",
	})
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

func (noopService) NotifySessionStarted(context.Context, string, int) error { return nil }
func (noopService) NotifyJobFailed(context.Context, render.Outcome) error { return nil }
func (noopService) NotifySessionFinished(context.Context, render.Summary) error { return nil }
func (noopService) TestNotification(context.Context) error { return nil }

// Enabled reports whether svc actually delivers notifications.
func Enabled(svc Service) bool {
	_, noop := svc.(noopService)
	return svc != nil && !noop
}
