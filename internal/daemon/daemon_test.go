package daemon_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"maestro/internal/assetcache"
	"maestro/internal/daemon"
	"maestro/internal/jobs"
	"maestro/internal/notifications"
	"maestro/internal/services/portal"
	"maestro/internal/session"
	"maestro/internal/testsupport"
)

type fakePortal struct {
	mu           sync.Mutex
	jobScript    []*portal.Job
	jobCalls     int
	profile      *portal.Profile
	advancedTo   string
	videoStatus  *portal.VideoJob
	assetsServed int
	asset        *portal.Asset
}

func (f *fakePortal) JobStatus(ctx context.Context, jobID string) (*portal.Job, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	idx := f.jobCalls
	f.jobCalls++
	if idx >= len(f.jobScript) {
		idx = len(f.jobScript) - 1
	}
	return f.jobScript[idx], nil
}

func (f *fakePortal) Profile(ctx context.Context, userID string) (*portal.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.profile, nil
}

func (f *fakePortal) AdvanceStage(ctx context.Context, userID, stage string) (*portal.Profile, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.advancedTo = stage
	f.profile.CurrentStage = stage
	return f.profile, nil
}

func (f *fakePortal) VideoStatus(ctx context.Context, talkID string) (*portal.VideoJob, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.videoStatus, nil
}

func (f *fakePortal) Asset(ctx context.Context, assetID string) (*portal.Asset, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.assetsServed++
	return f.asset, nil
}

func TestDaemonLockExcludesSecondInstance(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.NewStore(t, cfg)

	client := &fakePortal{jobScript: []*portal.Job{{JobID: "job-1", Status: portal.JobProcessing}}}
	cache := assetcache.New(client, time.Minute, nil)
	watchers := jobs.NewManager(client, jobs.OptionsFromConfig(cfg), nil)

	first, err := daemon.New(cfg, store, client, cache, watchers, notifications.NewNop(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := first.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer first.Stop()

	second, err := daemon.New(cfg, store, client, cache, watchers, notifications.NewNop(), nil)
	if err != nil {
		t.Fatalf("New second: %v", err)
	}
	if err := second.Start(context.Background()); err == nil {
		second.Stop()
		t.Fatal("second instance must not acquire the lock")
	}
}

func TestDaemonFollowsJobToCompletion(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.NewStore(t, cfg)

	ctx := context.Background()
	if err := store.SaveLogin(ctx, "tok-1", "u-1", "kari@example.no", "Kari"); err != nil {
		t.Fatalf("SaveLogin: %v", err)
	}
	if err := store.RecordJob(ctx, session.JobRecord{JobID: "job-1", Kind: "upload-context", Status: "processing"}); err != nil {
		t.Fatalf("RecordJob: %v", err)
	}
	if err := store.SetCurrentJob(ctx, "job-1"); err != nil {
		t.Fatalf("SetCurrentJob: %v", err)
	}

	client := &fakePortal{
		jobScript: []*portal.Job{
			{JobID: "job-1", Status: portal.JobProcessing, Progress: 50},
			{JobID: "job-1", Status: portal.JobCompleted, Progress: 100, AssetID: "asset-9"},
		},
		profile: &portal.Profile{UserID: "u-1", CurrentStage: "onboarding"},
		asset:   &portal.Asset{ID: "asset-9", MentorID: "m-1"},
	}
	cache := assetcache.New(client, time.Minute, nil)
	watchers := jobs.NewManager(client, jobs.Options{
		Interval:      5 * time.Millisecond,
		MaxAttempts:   60,
		ProgressEvery: 3,
	}, nil)

	d, err := daemon.New(cfg, store, client, cache, watchers, notifications.NewNop(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := d.Start(ctx); err != nil {
		t.Fatalf("Start: %v", err)
	}
	defer d.Stop()

	deadline := time.After(3 * time.Second)
	for {
		sess, err := store.Current(ctx)
		if err != nil {
			t.Fatalf("Current: %v", err)
		}
		if sess.CurrentJobID == "" && sess.CurrentAssetID == "asset-9" {
			break
		}
		select {
		case <-deadline:
			t.Fatalf("daemon never settled the job; session %+v", sess)
		case <-time.After(10 * time.Millisecond):
		}
	}

	record, err := store.Job(ctx, "job-1")
	if err != nil {
		t.Fatalf("Job: %v", err)
	}
	if record.Status != "completed" || record.Progress != 100 {
		t.Fatalf("job history %+v", record)
	}

	client.mu.Lock()
	advanced := client.advancedTo
	client.mu.Unlock()
	if advanced != "concept_generation" {
		t.Fatalf("stage advanced to %q, want concept_generation", advanced)
	}
}

func TestDaemonStopClosesDone(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.NewStore(t, cfg)

	client := &fakePortal{jobScript: []*portal.Job{{JobID: "job-1", Status: portal.JobProcessing}}}
	cache := assetcache.New(client, time.Minute, nil)
	watchers := jobs.NewManager(client, jobs.OptionsFromConfig(cfg), nil)
	d, err := daemon.New(cfg, store, client, cache, watchers, notifications.NewNop(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}

	select {
	case <-d.Done():
		t.Fatal("Done closed before Stop")
	default:
	}

	d.Stop()
	select {
	case <-d.Done():
	case <-time.After(time.Second):
		t.Fatal("Done not closed after Stop")
	}

	// Repeat stops are safe.
	d.Stop()
}

func TestDaemonStatusReportsSession(t *testing.T) {
	cfg := testsupport.NewConfig(t)
	store := testsupport.NewStore(t, cfg)
	ctx := context.Background()
	if err := store.SaveLogin(ctx, "tok-1", "u-1", "kari@example.no", "Kari"); err != nil {
		t.Fatalf("SaveLogin: %v", err)
	}

	client := &fakePortal{jobScript: []*portal.Job{{JobID: "job-1", Status: portal.JobProcessing}}}
	cache := assetcache.New(client, time.Minute, nil)
	watchers := jobs.NewManager(client, jobs.OptionsFromConfig(cfg), nil)
	d, err := daemon.New(cfg, store, client, cache, watchers, notifications.NewNop(), nil)
	if err != nil {
		t.Fatalf("New: %v", err)
	}

	status := d.Status(ctx)
	if status.Running {
		t.Error("daemon not started yet")
	}
	if !status.LoggedIn || status.Email != "kari@example.no" {
		t.Fatalf("status %+v", status)
	}
}
