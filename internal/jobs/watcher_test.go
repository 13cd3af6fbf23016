package jobs_test

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"maestro/internal/jobs"
	"maestro/internal/services"
	"maestro/internal/services/portal"
)

// scriptedClient returns canned snapshots in order, repeating the last
// one once the script is exhausted.
type scriptedClient struct {
	mu    sync.Mutex
	calls int
	jobs  []*portal.Job
	errs  []error
}

func (c *scriptedClient) JobStatus(ctx context.Context, jobID string) (*portal.Job, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	idx := c.calls
	c.calls++
	if idx >= len(c.jobs) {
		idx = len(c.jobs) - 1
	}
	if c.errs != nil && c.errs[idx] != nil {
		return nil, c.errs[idx]
	}
	return c.jobs[idx], nil
}

func (c *scriptedClient) callCount() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.calls
}

func processing(progress int) *portal.Job {
	return &portal.Job{JobID: "job-1", Status: portal.JobProcessing, Progress: progress}
}

func fastOptions(maxAttempts int) jobs.Options {
	return jobs.Options{
		Interval:      time.Millisecond,
		InitialDelay:  0,
		MaxAttempts:   maxAttempts,
		ProgressEvery: 3,
	}
}

func TestWatchSettlesOnCompletion(t *testing.T) {
	client := &scriptedClient{jobs: []*portal.Job{
		processing(30),
		{JobID: "job-1", Status: portal.JobCompleted, Progress: 100, AssetID: "asset-1"},
	}}
	manager := jobs.NewManager(client, fastOptions(60), nil)

	var terminalCalls int
	watch, err := manager.Watch(context.Background(), "job-1", jobs.Hooks{
		OnTerminal: func(job *portal.Job) { terminalCalls++ },
	})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}

	job, err := watch.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if job.Status != portal.JobCompleted || job.AssetID != "asset-1" {
		t.Fatalf("unexpected terminal job %+v", job)
	}
	if terminalCalls != 1 {
		t.Fatalf("terminal hook fired %d times, want 1", terminalCalls)
	}
	if got := client.callCount(); got != 2 {
		t.Fatalf("polled %d times, want 2", got)
	}
}

func TestWatchFailedJobYieldsJobError(t *testing.T) {
	client := &scriptedClient{jobs: []*portal.Job{
		{JobID: "job-1", Status: portal.JobFailed, Error: "analysis crashed"},
	}}
	manager := jobs.NewManager(client, fastOptions(60), nil)

	watch, _ := manager.Watch(context.Background(), "job-1", jobs.Hooks{})
	job, err := watch.Wait(context.Background())
	if !errors.Is(err, services.ErrJobFailed) {
		t.Fatalf("error = %v, want ErrJobFailed", err)
	}
	if job == nil || job.Status != portal.JobFailed {
		t.Fatalf("terminal job = %+v", job)
	}
}

func TestWatchTimesOutAfterMaxAttempts(t *testing.T) {
	client := &scriptedClient{jobs: []*portal.Job{processing(10)}}
	manager := jobs.NewManager(client, fastOptions(5), nil)

	watch, _ := manager.Watch(context.Background(), "job-1", jobs.Hooks{})
	_, err := watch.Wait(context.Background())
	if !errors.Is(err, services.ErrTimeout) {
		t.Fatalf("error = %v, want ErrTimeout", err)
	}
	if errors.Is(err, services.ErrJobFailed) {
		t.Fatal("timeout must stay distinct from job failure")
	}
	if got := client.callCount(); got != 5 {
		t.Fatalf("polled %d times, want exactly 5", got)
	}
}

func TestWatchSurfacesPeriodicProgress(t *testing.T) {
	script := make([]*portal.Job, 0, 10)
	for i := 0; i < 9; i++ {
		script = append(script, processing(i*10))
	}
	script = append(script, &portal.Job{JobID: "job-1", Status: portal.JobCompleted, Progress: 100})
	client := &scriptedClient{jobs: script}
	manager := jobs.NewManager(client, fastOptions(60), nil)

	var mu sync.Mutex
	var attempts []int
	watch, _ := manager.Watch(context.Background(), "job-1", jobs.Hooks{
		OnProgress: func(u jobs.Update) {
			mu.Lock()
			attempts = append(attempts, u.Attempt)
			mu.Unlock()
		},
	})
	if _, err := watch.Wait(context.Background()); err != nil {
		t.Fatalf("Wait: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	want := []int{3, 6, 9}
	if len(attempts) != len(want) {
		t.Fatalf("progress at attempts %v, want %v", attempts, want)
	}
	for i := range want {
		if attempts[i] != want[i] {
			t.Fatalf("progress at attempts %v, want %v", attempts, want)
		}
	}
}

func TestWatchDeduplicatesByJobID(t *testing.T) {
	client := &scriptedClient{jobs: []*portal.Job{processing(0)}}
	manager := jobs.NewManager(client, jobs.Options{
		Interval:      50 * time.Millisecond,
		MaxAttempts:   600,
		ProgressEvery: 3,
	}, nil)

	first, err := manager.Watch(context.Background(), "job-1", jobs.Hooks{})
	if err != nil {
		t.Fatalf("Watch: %v", err)
	}
	second, err := manager.Watch(context.Background(), "job-1", jobs.Hooks{})
	if err != nil {
		t.Fatalf("second Watch: %v", err)
	}
	if first != second {
		t.Fatal("expected the same handle for a duplicate watch")
	}
	if !manager.Active("job-1") {
		t.Fatal("job should be active")
	}
	first.Cancel()
	if _, err := first.Wait(context.Background()); !errors.Is(err, context.Canceled) {
		t.Fatalf("cancelled watch error = %v", err)
	}
}

func TestWatchAbortsOnAuthError(t *testing.T) {
	authErr := services.Wrap(services.ErrAuth, "portal", "job-status", "token expired", nil)
	client := &scriptedClient{
		jobs: []*portal.Job{nil},
		errs: []error{authErr},
	}
	manager := jobs.NewManager(client, fastOptions(60), nil)

	watch, _ := manager.Watch(context.Background(), "job-1", jobs.Hooks{})
	_, err := watch.Wait(context.Background())
	if !errors.Is(err, services.ErrAuth) {
		t.Fatalf("error = %v, want ErrAuth", err)
	}
	if got := client.callCount(); got != 1 {
		t.Fatalf("polled %d times after auth failure, want 1", got)
	}
}

func TestWatchToleratesTransientErrors(t *testing.T) {
	transient := services.Wrap(services.ErrTransient, "portal", "job-status", "backend returned 502", nil)
	client := &scriptedClient{
		jobs: []*portal.Job{nil, processing(50), {JobID: "job-1", Status: portal.JobCompleted, Progress: 100}},
		errs: []error{transient, nil, nil},
	}
	manager := jobs.NewManager(client, fastOptions(60), nil)

	watch, _ := manager.Watch(context.Background(), "job-1", jobs.Hooks{})
	job, err := watch.Wait(context.Background())
	if err != nil {
		t.Fatalf("Wait: %v", err)
	}
	if job.Status != portal.JobCompleted {
		t.Fatalf("terminal job = %+v", job)
	}
	if got := client.callCount(); got != 3 {
		t.Fatalf("polled %d times, want 3", got)
	}
}
