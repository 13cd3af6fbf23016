package jobs

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"maestro/internal/config"
	"maestro/internal/logging"
	"maestro/internal/services"
	"maestro/internal/services/portal"
)

// StatusClient fetches job snapshots from the backend.
type StatusClient interface {
	JobStatus(ctx context.Context, jobID string) (*portal.Job, error)
}

// Update is one observed poll of a running job.
type Update struct {
	Attempt int
	Job     *portal.Job
}

// Hooks receive watcher events. All callbacks are optional and run on
// the watcher goroutine; OnTerminal fires at most once.
type Hooks struct {
	OnProgress func(Update)
	OnTerminal func(*portal.Job)
}

// Options tune the polling cadence.
type Options struct {
	Interval      time.Duration
	InitialDelay  time.Duration
	MaxAttempts   int
	ProgressEvery int
}

// OptionsFromConfig derives polling options from the loaded config.
func OptionsFromConfig(cfg *config.Config) Options {
	return Options{
		Interval:      cfg.PollInterval(),
		InitialDelay:  cfg.PollInitialDelay(),
		MaxAttempts:   cfg.Jobs.MaxAttempts,
		ProgressEvery: cfg.Jobs.ProgressEvery,
	}
}

func (o *Options) normalize() {
	if o.Interval <= 0 {
		o.Interval = 5 * time.Second
	}
	if o.InitialDelay < 0 {
		o.InitialDelay = 0
	}
	if o.MaxAttempts <= 0 {
		o.MaxAttempts = 60
	}
	if o.ProgressEvery <= 0 {
		o.ProgressEvery = 3
	}
}

// Watch is a handle to one running watcher.
type Watch struct {
	jobID  string
	cancel context.CancelFunc
	done   chan struct{}

	mu  sync.Mutex
	job *portal.Job
	err error
}

// JobID returns the watched job's id.
func (w *Watch) JobID() string {
	return w.jobID
}

// Done is closed once the watcher settles.
func (w *Watch) Done() <-chan struct{} {
	return w.done
}

// Cancel stops the watcher. The watch settles with the context error.
func (w *Watch) Cancel() {
	w.cancel()
}

// Result returns the terminal job and error once the watch is done.
// Calling it earlier returns the zero state.
func (w *Watch) Result() (*portal.Job, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.job, w.err
}

// Wait blocks until the watcher settles or ctx is cancelled.
func (w *Watch) Wait(ctx context.Context) (*portal.Job, error) {
	select {
	case <-ctx.Done():
		w.cancel()
		return nil, ctx.Err()
	case <-w.done:
		return w.Result()
	}
}

func (w *Watch) settle(job *portal.Job, err error) {
	w.mu.Lock()
	w.job = job
	w.err = err
	w.mu.Unlock()
	close(w.done)
}

// Manager tracks active watchers and enforces one per job id.
type Manager struct {
	client StatusClient
	opts   Options
	logger *slog.Logger

	mu     sync.Mutex
	active map[string]*Watch
}

// NewManager creates a watcher manager.
func NewManager(client StatusClient, opts Options, logger *slog.Logger) *Manager {
	opts.normalize()
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{
		client: client,
		opts:   opts,
		logger: logger.With(logging.String(logging.FieldComponent, "jobs")),
		active: make(map[string]*Watch),
	}
}

// Watch starts following a job. If the job is already being watched the
// existing handle is returned and the new hooks are ignored.
func (m *Manager) Watch(ctx context.Context, jobID string, hooks Hooks) (*Watch, error) {
	if jobID == "" {
		return nil, services.Wrap(services.ErrValidation, "jobs", "watch", "job id required", nil)
	}

	m.mu.Lock()
	if existing, ok := m.active[jobID]; ok {
		m.mu.Unlock()
		return existing, nil
	}
	watchCtx, cancel := context.WithCancel(ctx)
	watch := &Watch{jobID: jobID, cancel: cancel, done: make(chan struct{})}
	m.active[jobID] = watch
	m.mu.Unlock()

	go m.run(watchCtx, watch, hooks)
	return watch, nil
}

// Active reports whether a watcher is currently following jobID.
func (m *Manager) Active(jobID string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.active[jobID]
	return ok
}

func (m *Manager) run(ctx context.Context, watch *Watch, hooks Hooks) {
	defer func() {
		m.mu.Lock()
		delete(m.active, watch.jobID)
		m.mu.Unlock()
		watch.cancel()
	}()

	logger := m.logger.With(logging.String(logging.FieldJobID, watch.jobID))
	logger.Debug("watch started",
		logging.Duration("interval", m.opts.Interval),
		logging.Int("max_attempts", m.opts.MaxAttempts))

	if m.opts.InitialDelay > 0 {
		if !sleep(ctx, m.opts.InitialDelay) {
			watch.settle(nil, ctx.Err())
			return
		}
	}

	var lastJob *portal.Job
	for attempt := 1; attempt <= m.opts.MaxAttempts; attempt++ {
		job, err := m.client.JobStatus(ctx, watch.jobID)
		switch {
		case err == nil:
			lastJob = job
			if job.Status.Terminal() {
				logger.Info("job finished",
					logging.String("status", string(job.Status)),
					logging.Int("attempts", attempt))
				if hooks.OnTerminal != nil {
					hooks.OnTerminal(job)
				}
				watch.settle(job, terminalError(job))
				return
			}
			if attempt%m.opts.ProgressEvery == 0 && hooks.OnProgress != nil {
				hooks.OnProgress(Update{Attempt: attempt, Job: job})
			}
		case !services.Retryable(err), ctx.Err() != nil:
			logger.Warn("watch aborted", logging.Error(err))
			watch.settle(lastJob, err)
			return
		default:
			// Transient failure: the attempt is spent, the watch goes on.
			logger.Debug("poll failed", logging.Int("attempt", attempt), logging.Error(err))
		}

		if attempt < m.opts.MaxAttempts && !sleep(ctx, m.opts.Interval) {
			watch.settle(lastJob, ctx.Err())
			return
		}
	}

	err := services.Wrap(services.ErrTimeout, "jobs", "watch",
		fmt.Sprintf("job %s still running after %d polls", watch.jobID, m.opts.MaxAttempts), nil)
	logger.Warn("watch timed out", logging.Int("max_attempts", m.opts.MaxAttempts))
	watch.settle(lastJob, err)
}

// terminalError maps a failed terminal job to a typed error; completed
// jobs settle with a nil error.
func terminalError(job *portal.Job) error {
	if job.Status != portal.JobFailed {
		return nil
	}
	message := job.Error
	if message == "" {
		message = job.Message
	}
	if message == "" {
		message = "job failed without detail"
	}
	return services.Wrap(services.ErrJobFailed, "jobs", "watch", message, nil)
}

func sleep(ctx context.Context, d time.Duration) bool {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return false
	case <-timer.C:
		return true
	}
}
