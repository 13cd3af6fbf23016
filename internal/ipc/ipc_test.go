package ipc_test

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"maestro/internal/assetcache"
	"maestro/internal/daemon"
	"maestro/internal/ipc"
	"maestro/internal/jobs"
	"maestro/internal/notifications"
	"maestro/internal/services/portal"
	"maestro/internal/testsupport"
)

type stubPortal struct{}

func (stubPortal) JobStatus(ctx context.Context, jobID string) (*portal.Job, error) {
	return &portal.Job{JobID: jobID, Status: portal.JobProcessing}, nil
}

func (stubPortal) Profile(ctx context.Context, userID string) (*portal.Profile, error) {
	return &portal.Profile{UserID: userID, CurrentStage: "onboarding"}, nil
}

func (stubPortal) AdvanceStage(ctx context.Context, userID, stage string) (*portal.Profile, error) {
	return &portal.Profile{UserID: userID, CurrentStage: stage}, nil
}

func (stubPortal) VideoStatus(ctx context.Context, talkID string) (*portal.VideoJob, error) {
	return &portal.VideoJob{TalkID: talkID, Status: "created"}, nil
}

func (stubPortal) Asset(ctx context.Context, assetID string) (*portal.Asset, error) {
	return &portal.Asset{ID: assetID}, nil
}

func newTestDaemon(t *testing.T) *daemon.Daemon {
	t.Helper()
	cfg := testsupport.NewConfig(t)
	store := testsupport.NewStore(t, cfg)

	client := stubPortal{}
	cache := assetcache.New(client, time.Minute, nil)
	watchers := jobs.NewManager(client, jobs.OptionsFromConfig(cfg), nil)
	d, err := daemon.New(cfg, store, client, cache, watchers, notifications.NewNop(), nil)
	if err != nil {
		t.Fatalf("daemon.New: %v", err)
	}
	return d
}

func TestStatusOverSocket(t *testing.T) {
	d := newTestDaemon(t)
	socket := filepath.Join(t.TempDir(), "maestrod.sock")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	server, err := ipc.NewServer(ctx, socket, d, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	server.Serve()
	defer server.Close()

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	status, err := client.Status()
	if err != nil {
		t.Fatalf("Status: %v", err)
	}
	if status.Running {
		t.Error("daemon not started, status should not report running")
	}
	if status.SessionDBPath == "" {
		t.Error("expected session db path in status")
	}
}

func TestStopOverSocket(t *testing.T) {
	d := newTestDaemon(t)
	if err := d.Start(context.Background()); err != nil {
		t.Fatalf("Start: %v", err)
	}
	socket := filepath.Join(t.TempDir(), "maestrod.sock")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	server, err := ipc.NewServer(ctx, socket, d, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	server.Serve()
	defer server.Close()

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	resp, err := client.Stop()
	if err != nil {
		t.Fatalf("Stop: %v", err)
	}
	if !resp.Stopped {
		t.Fatal("expected stopped response")
	}
	if status := d.Status(context.Background()); status.Running {
		t.Fatal("daemon still running after stop")
	}

	// The hosting process waits on Done; a stop over the socket must
	// release that wait so maestrod actually exits.
	select {
	case <-d.Done():
	case <-time.After(2 * time.Second):
		t.Fatal("Done not closed after stop over the socket")
	}
}

func TestNotificationOverSocket(t *testing.T) {
	d := newTestDaemon(t)
	socket := filepath.Join(t.TempDir(), "maestrod.sock")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	server, err := ipc.NewServer(ctx, socket, d, nil)
	if err != nil {
		t.Fatalf("NewServer: %v", err)
	}
	server.Serve()
	defer server.Close()

	client, err := ipc.Dial(socket)
	if err != nil {
		t.Fatalf("Dial: %v", err)
	}
	defer client.Close()

	resp, err := client.TestNotification()
	if err != nil {
		t.Fatalf("TestNotification: %v", err)
	}
	if !resp.Sent {
		t.Fatalf("test notification not sent: %s", resp.Message)
	}
}
