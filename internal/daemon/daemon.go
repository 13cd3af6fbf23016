package daemon

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"sync"
	"sync/atomic"
	"time"

	"github.com/gofrs/flock"

	"maestro/internal/assetcache"
	"maestro/internal/config"
	"maestro/internal/jobs"
	"maestro/internal/logging"
	"maestro/internal/notifications"
	"maestro/internal/services/portal"
	"maestro/internal/session"
)

// PortalClient is the backend surface the daemon depends on.
type PortalClient interface {
	JobStatus(ctx context.Context, jobID string) (*portal.Job, error)
	Profile(ctx context.Context, userID string) (*portal.Profile, error)
	AdvanceStage(ctx context.Context, userID, stage string) (*portal.Profile, error)
	VideoStatus(ctx context.Context, talkID string) (*portal.VideoJob, error)
}

// Daemon coordinates the background watchers and enforces
// single-instance execution.
type Daemon struct {
	cfg      *config.Config
	logger   *slog.Logger
	store    *session.Store
	portal   PortalClient
	cache    *assetcache.Cache
	watchers *jobs.Manager
	notifier notifications.Service

	lockPath string
	lock     *flock.Flock

	running   atomic.Bool
	startedAt time.Time
	ctx       context.Context
	cancel    context.CancelFunc
	wg        sync.WaitGroup
	done      chan struct{}
	doneOnce  sync.Once

	mu            sync.Mutex
	lastError     string
	videoNotified map[string]bool
}

// Status represents daemon runtime information.
type Status struct {
	Running        bool
	PID            int
	StartedAt      time.Time
	LockPath       string
	SessionDBPath  string
	LoggedIn       bool
	Email          string
	CurrentAssetID string
	CurrentJobID   string
	WatchingJob    bool
	LastError      string
}

// New constructs a daemon with initialized dependencies.
func New(cfg *config.Config, store *session.Store, client PortalClient, cache *assetcache.Cache, watchers *jobs.Manager, notifier notifications.Service, logger *slog.Logger) (*Daemon, error) {
	if cfg == nil || store == nil || client == nil || cache == nil || watchers == nil {
		return nil, errors.New("daemon requires config, session store, portal client, cache, and watcher manager")
	}
	if notifier == nil {
		notifier = notifications.NewNop()
	}
	if logger == nil {
		logger = logging.NewNop()
	}
	lockPath := cfg.LockPath()
	return &Daemon{
		cfg:           cfg,
		logger:        logger.With(logging.String(logging.FieldComponent, "daemon")),
		store:         store,
		portal:        client,
		cache:         cache,
		watchers:      watchers,
		notifier:      notifier,
		lockPath:      lockPath,
		lock:          flock.New(lockPath),
		done:          make(chan struct{}),
		videoNotified: make(map[string]bool),
	}, nil
}

// Start acquires the daemon lock and launches the watch loop.
func (d *Daemon) Start(ctx context.Context) error {
	if d.running.Load() {
		return errors.New("daemon already running")
	}

	ok, err := d.lock.TryLock()
	if err != nil {
		return fmt.Errorf("acquire lock: %w", err)
	}
	if !ok {
		return errors.New("another maestrod instance is already running")
	}

	d.ctx, d.cancel = context.WithCancel(ctx)
	d.startedAt = time.Now()
	d.running.Store(true)

	d.wg.Add(1)
	go d.loop(d.ctx)

	d.logger.Info("maestrod started", logging.String("lock", d.lockPath))
	return nil
}

// Stop stops the watch loop, releases the daemon lock,
// and closes the Done channel so the hosting process can exit.
func (d *Daemon) Stop() {
	if !d.running.Load() {
		d.doneOnce.Do(func() { close(d.done) })
		return
	}
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.wg.Wait()
	if err := d.lock.Unlock(); err != nil {
		d.logger.Warn("failed to release daemon lock", logging.Error(err))
	}
	d.ctx = nil
	d.running.Store(false)
	d.doneOnce.Do(func() { close(d.done) })
	d.logger.Info("maestrod stopped")
}

// Done is closed once Stop has completed. maestrod waits on it so a
// stop requested over IPC terminates the process, not just the loop.
func (d *Daemon) Done() <-chan struct{} {
	return d.done
}

// Close releases resources held by the daemon.
func (d *Daemon) Close() error {
	d.Stop()
	if d.store != nil {
		return d.store.Close()
	}
	return nil
}

// Status reports the daemon's runtime state.
func (d *Daemon) Status(ctx context.Context) Status {
	status := Status{
		Running:       d.running.Load(),
		PID:           os.Getpid(),
		StartedAt:     d.startedAt,
		LockPath:      d.lockPath,
		SessionDBPath: d.store.Path(),
	}
	d.mu.Lock()
	status.LastError = d.lastError
	d.mu.Unlock()

	sess, err := d.store.Current(ctx)
	if err != nil {
		return status
	}
	status.LoggedIn = sess.LoggedIn()
	status.Email = sess.Email
	status.CurrentAssetID = sess.CurrentAssetID
	status.CurrentJobID = sess.CurrentJobID
	if sess.CurrentJobID != "" {
		status.WatchingJob = d.watchers.Active(sess.CurrentJobID)
	}
	return status
}

// TestNotification pushes a test message through the notifier.
func (d *Daemon) TestNotification(ctx context.Context) error {
	return d.notifier.TestNotification(ctx)
}

func (d *Daemon) loop(ctx context.Context) {
	defer d.wg.Done()
	ticker := time.NewTicker(d.cfg.PollInterval())
	defer ticker.Stop()

	d.tick(ctx)
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			d.tick(ctx)
		}
	}
}

func (d *Daemon) tick(ctx context.Context) {
	sess, err := d.store.Current(ctx)
	if err != nil {
		d.recordError(err)
		return
	}
	if !sess.LoggedIn() {
		return
	}

	if sess.CurrentJobID != "" && !d.watchers.Active(sess.CurrentJobID) {
		d.followJob(ctx, sess.CurrentJobID, sess.UserID)
	}
	if sess.CurrentAssetID != "" {
		d.checkVideo(ctx, sess.CurrentAssetID)
	}
}

func (d *Daemon) recordError(err error) {
	d.mu.Lock()
	d.lastError = err.Error()
	d.mu.Unlock()
}
