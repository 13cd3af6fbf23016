package logs

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func writeLog(t *testing.T, path string, lines ...string) {
	t.Helper()
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		t.Fatalf("open log: %v", err)
	}
	defer f.Close()
	for _, line := range lines {
		if _, err := f.WriteString(line + "\n"); err != nil {
			t.Fatalf("write log: %v", err)
		}
	}
}

func TestTailLastLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maestro.log")
	writeLog(t, path, "one", "two", "three", "four", "five")

	var got []string
	err := Tail(context.Background(), path, Options{Last: 3}, func(line string) {
		got = append(got, line)
	})
	if err != nil {
		t.Fatalf("Tail: %v", err)
	}
	want := []string{"three", "four", "five"}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Tail lines = %v, want %v", got, want)
	}
}

func TestTailFewerLinesThanLimit(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maestro.log")
	writeLog(t, path, "only")

	var got []string
	if err := Tail(context.Background(), path, Options{Last: 10}, func(line string) {
		got = append(got, line)
	}); err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if !reflect.DeepEqual(got, []string{"only"}) {
		t.Errorf("Tail lines = %v", got)
	}
}

func TestTailMissingFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "missing.log")
	called := false
	if err := Tail(context.Background(), path, Options{Last: 5}, func(string) { called = true }); err != nil {
		t.Fatalf("Tail: %v", err)
	}
	if called {
		t.Error("callback fired for a missing file")
	}
}

func TestTailFollowStreamsAppendedLines(t *testing.T) {
	path := filepath.Join(t.TempDir(), "maestro.log")
	writeLog(t, path, "existing")

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	lines := make(chan string, 10)
	done := make(chan error, 1)
	go func() {
		done <- Tail(ctx, path, Options{Last: 0, Follow: true, Poll: 10 * time.Millisecond}, func(line string) {
			lines <- line
		})
	}()

	// Give the tail a moment to record the starting offset.
	time.Sleep(50 * time.Millisecond)
	writeLog(t, path, "appended")

	select {
	case line := <-lines:
		if line != "appended" {
			t.Errorf("followed line = %q, want %q", line, "appended")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for followed line")
	}

	cancel()
	if err := <-done; err != nil {
		t.Errorf("Tail returned %v after cancel", err)
	}
}
