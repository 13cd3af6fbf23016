package notifications

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"maestro/internal/config"
	"maestro/internal/stage"
)

const userAgent = "Maestro-Go/0.1.0"

// Service defines the notification surface exposed to the CLI and the
// watcher daemon.
type Service interface {
	NotifyJobQueued(ctx context.Context, kind, jobID string) error
	NotifyJobProgress(ctx context.Context, jobID string, progress int, message string) error
	NotifyJobCompleted(ctx context.Context, kind, jobID string) error
	NotifyJobFailed(ctx context.Context, kind, jobID, detail string) error
	NotifyStageAdvanced(ctx context.Context, from, to stage.Stage) error
	NotifyApprovalSubmitted(ctx context.Context, contentType string) error
	NotifyVideoReady(ctx context.Context, videoURL string) error
	NotifyError(ctx context.Context, err error, contextLabel string) error
	TestNotification(ctx context.Context) error
}

// NewService builds a notification service backed by ntfy when a topic
// is configured, a noop implementation otherwise.
func NewService(cfg *config.Config) Service {
	topic := strings.TrimSpace(cfg.Notifications.NtfyTopic)
	if topic == "" {
		return noopService{}
	}

	timeout := time.Duration(cfg.Notifications.RequestTimeout) * time.Second
	if timeout <= 0 {
		timeout = 10 * time.Second
	}
	dedup := time.Duration(cfg.Notifications.DedupWindowSeconds) * time.Second

	return &ntfyService{
		endpoint: topic,
		client:   &http.Client{Timeout: timeout},
		cfg:      cfg.Notifications,
		dedup:    dedup,
		now:      time.Now,
		sent:     make(map[string]time.Time),
	}
}

type payload struct {
	title    string
	message  string
	tags     []string
	priority string
	dedupKey string
}

type ntfyService struct {
	endpoint string
	client   *http.Client
	cfg      config.Notifications
	dedup    time.Duration
	now      func() time.Time

	mu   sync.Mutex
	sent map[string]time.Time
}

func (n *ntfyService) NotifyJobQueued(ctx context.Context, kind, jobID string) error {
	if !n.cfg.Jobs {
		return nil
	}
	data := payload{
		title:    "Maestro - Job Queued",
		message:  fmt.Sprintf("Queued %s job %s", kind, jobID),
		tags:     []string{"maestro", "job", "queued"},
		dedupKey: "queued:" + jobID,
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyJobProgress(ctx context.Context, jobID string, progress int, message string) error {
	if !n.cfg.Jobs {
		return nil
	}
	text := fmt.Sprintf("Job %s: %d%%", jobID, progress)
	if message = strings.TrimSpace(message); message != "" {
		text = fmt.Sprintf("%s - %s", text, message)
	}
	data := payload{
		title:    "Maestro - Working",
		message:  text,
		tags:     []string{"maestro", "job", "progress"},
		priority: "low",
		dedupKey: fmt.Sprintf("progress:%s:%d", jobID, progress),
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyJobCompleted(ctx context.Context, kind, jobID string) error {
	if !n.cfg.Jobs {
		return nil
	}
	data := payload{
		title:    "Maestro - Job Complete",
		message:  fmt.Sprintf("%s finished: %s", kind, jobID),
		tags:     []string{"maestro", "job", "completed"},
		dedupKey: "completed:" + jobID,
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyJobFailed(ctx context.Context, kind, jobID, detail string) error {
	if !n.cfg.Jobs {
		return nil
	}
	message := fmt.Sprintf("%s failed: %s", kind, jobID)
	if detail = strings.TrimSpace(detail); detail != "" {
		message = fmt.Sprintf("%s\n%s", message, detail)
	}
	data := payload{
		title:    "Maestro - Job Failed",
		message:  message,
		tags:     []string{"maestro", "job", "failed"},
		priority: "high",
		dedupKey: "failed:" + jobID,
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyStageAdvanced(ctx context.Context, from, to stage.Stage) error {
	if !n.cfg.Stages {
		return nil
	}
	data := payload{
		title:    "Maestro - Stage Advanced",
		message:  fmt.Sprintf("Moved from %s to %s", from.Label(), to.Label()),
		tags:     []string{"maestro", "stage", "advanced"},
		dedupKey: fmt.Sprintf("stage:%s:%s", from, to),
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyApprovalSubmitted(ctx context.Context, contentType string) error {
	if !n.cfg.Approvals {
		return nil
	}
	data := payload{
		title:    "Maestro - Submitted for Review",
		message:  fmt.Sprintf("Your %s was sent to the admin for review", strings.ReplaceAll(contentType, "_", " ")),
		tags:     []string{"maestro", "approval", "submitted"},
		dedupKey: "approval:" + contentType,
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyVideoReady(ctx context.Context, videoURL string) error {
	if !n.cfg.Jobs {
		return nil
	}
	message := "Your webinar video is ready"
	if videoURL = strings.TrimSpace(videoURL); videoURL != "" {
		message = fmt.Sprintf("%s\n%s", message, videoURL)
	}
	data := payload{
		title:    "Maestro - Video Ready",
		message:  message,
		tags:     []string{"maestro", "video", "completed"},
		priority: "high",
		dedupKey: "video:" + videoURL,
	}
	return n.send(ctx, data)
}

func (n *ntfyService) NotifyError(ctx context.Context, err error, contextLabel string) error {
	if !n.cfg.Errors {
		return nil
	}
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
		title:    "Maestro - Error",
		message:  builder.String(),
		tags:     []string{"maestro", "error", "alert"},
		priority: "high",
		dedupKey: "error:" + contextLabel,
	}
	return n.send(ctx, data)
}

func (n *ntfyService) TestNotification(ctx context.Context) error {
	data := payload{
		title:    "Maestro - Test",
		message:  "Notification system test",
		tags:     []string{"maestro", "test"},
		priority: "low",
	}
	return n.send(ctx, data)
}

// suppressed reports whether an identical notification went out inside
// the dedup window. The daemon polls on a short cadence, so repeated
// observations of the same state must not repeat on the phone.
func (n *ntfyService) suppressed(key string) bool {
	if key == "" || n.dedup <= 0 {
		return false
	}
	now := n.now()
	n.mu.Lock()
	defer n.mu.Unlock()
	if last, ok := n.sent[key]; ok && now.Sub(last) < n.dedup {
		return true
	}
	n.sent[key] = now
	for k, at := range n.sent {
		if now.Sub(at) >= n.dedup {
			delete(n.sent, k)
		}
	}
	return false
}

func (n *ntfyService) send(ctx context.Context, data payload) error {
	if n == nil || n.client == nil {
		return nil
	}
	if n.suppressed(data.dedupKey) {
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

func (noopService) NotifyJobQueued(context.Context, string, string) error          { return nil }
func (noopService) NotifyJobProgress(context.Context, string, int, string) error   { return nil }
func (noopService) NotifyJobCompleted(context.Context, string, string) error       { return nil }
func (noopService) NotifyJobFailed(context.Context, string, string, string) error  { return nil }
func (noopService) NotifyStageAdvanced(context.Context, stage.Stage, stage.Stage) error {
	return nil
}
func (noopService) NotifyApprovalSubmitted(context.Context, string) error { return nil }
func (noopService) NotifyVideoReady(context.Context, string) error        { return nil }
func (noopService) NotifyError(context.Context, error, string) error      { return nil }
func (noopService) TestNotification(context.Context) error                { return nil }

// NewNop returns the disabled notification service, for tests.
func NewNop() Service {
	return noopService{}
}
