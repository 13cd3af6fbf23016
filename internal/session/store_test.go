package session_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"maestro/internal/session"
)

func newTestStore(t *testing.T) *session.Store {
	t.Helper()
	store, err := session.OpenPath(filepath.Join(t.TempDir(), "session.db"))
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	t.Cleanup(func() { store.Close() })
	return store
}

func TestFreshStoreIsLoggedOut(t *testing.T) {
	store := newTestStore(t)
	sess, err := store.Current(context.Background())
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if sess.LoggedIn() {
		t.Fatal("fresh session should be logged out")
	}
	if sess.CurrentAssetID != "" || sess.CurrentJobID != "" {
		t.Fatalf("fresh session has stale pointers: %+v", sess)
	}
}

func TestSaveLoginAndClear(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveLogin(ctx, "tok-1", "u-1", "kari@example.no", "Kari Nordmann"); err != nil {
		t.Fatalf("SaveLogin: %v", err)
	}
	sess, err := store.Current(ctx)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if !sess.LoggedIn() || sess.UserID != "u-1" || sess.Email != "kari@example.no" {
		t.Fatalf("unexpected session %+v", sess)
	}

	if err := store.Clear(ctx); err != nil {
		t.Fatalf("Clear: %v", err)
	}
	sess, err = store.Current(ctx)
	if err != nil {
		t.Fatalf("Current after clear: %v", err)
	}
	if sess.LoggedIn() || sess.CurrentAssetID != "" {
		t.Fatalf("session not cleared: %+v", sess)
	}
}

func TestReloginSameUserKeepsPointers(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	if err := store.SaveLogin(ctx, "tok-1", "u-1", "kari@example.no", "Kari"); err != nil {
		t.Fatalf("SaveLogin: %v", err)
	}
	if err := store.SetCurrentAsset(ctx, "asset-1"); err != nil {
		t.Fatalf("SetCurrentAsset: %v", err)
	}
	if err := store.SetCurrentJob(ctx, "job-1"); err != nil {
		t.Fatalf("SetCurrentJob: %v", err)
	}

	// Same user: pointers survive.
	if err := store.SaveLogin(ctx, "tok-2", "u-1", "kari@example.no", "Kari"); err != nil {
		t.Fatalf("SaveLogin again: %v", err)
	}
	sess, _ := store.Current(ctx)
	if sess.CurrentAssetID != "asset-1" || sess.CurrentJobID != "job-1" {
		t.Fatalf("pointers lost on same-user relogin: %+v", sess)
	}

	// Different user: pointers reset.
	if err := store.SaveLogin(ctx, "tok-3", "u-2", "ola@example.no", "Ola"); err != nil {
		t.Fatalf("SaveLogin new user: %v", err)
	}
	sess, _ = store.Current(ctx)
	if sess.CurrentAssetID != "" || sess.CurrentJobID != "" {
		t.Fatalf("pointers survived user switch: %+v", sess)
	}
}

func TestJobHistoryRoundTrip(t *testing.T) {
	store := newTestStore(t)
	ctx := context.Background()

	record := session.JobRecord{
		JobID:   "job-1",
		Kind:    "upload-context",
		AssetID: "asset-1",
		Status:  "processing",
		Message: "Analyzing onboarding material",
	}
	if err := store.RecordJob(ctx, record); err != nil {
		t.Fatalf("RecordJob: %v", err)
	}
	if err := store.UpdateJobStatus(ctx, "job-1", "completed", 100, "Done", ""); err != nil {
		t.Fatalf("UpdateJobStatus: %v", err)
	}

	got, err := store.Job(ctx, "job-1")
	if err != nil {
		t.Fatalf("Job: %v", err)
	}
	if got.Status != "completed" || got.Progress != 100 || got.Kind != "upload-context" {
		t.Fatalf("unexpected record %+v", got)
	}

	jobs, err := store.RecentJobs(ctx, 10)
	if err != nil {
		t.Fatalf("RecentJobs: %v", err)
	}
	if len(jobs) != 1 || jobs[0].JobID != "job-1" {
		t.Fatalf("unexpected history %+v", jobs)
	}
}

func TestUpdateUnknownJobFails(t *testing.T) {
	store := newTestStore(t)
	err := store.UpdateJobStatus(context.Background(), "missing", "failed", 0, "", "boom")
	if !errors.Is(err, session.ErrJobNotFound) {
		t.Fatalf("error = %v, want ErrJobNotFound", err)
	}
}

func TestReopenKeepsState(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "session.db")
	ctx := context.Background()

	store, err := session.OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath: %v", err)
	}
	if err := store.SaveLogin(ctx, "tok-1", "u-1", "kari@example.no", "Kari"); err != nil {
		t.Fatalf("SaveLogin: %v", err)
	}
	store.Close()

	reopened, err := session.OpenPath(path)
	if err != nil {
		t.Fatalf("OpenPath reopen: %v", err)
	}
	defer reopened.Close()
	sess, err := reopened.Current(ctx)
	if err != nil {
		t.Fatalf("Current: %v", err)
	}
	if !sess.LoggedIn() || sess.UserID != "u-1" {
		t.Fatalf("state lost on reopen: %+v", sess)
	}
}
