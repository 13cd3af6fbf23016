package logging_test

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"maestro/internal/logging"
	"maestro/internal/services"
)

func TestNewWritesConsoleLines(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "maestro.log")

	logger, err := logging.New(logging.Options{
		Level:            "debug",
		Format:           "console",
		OutputPaths:      []string{logPath},
		ErrorOutputPaths: []string{logPath},
	})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	component := logging.NewComponentLogger(logger, "jobs")
	component.Info("poll complete", logging.String(logging.FieldJobID, "job-1"), logging.Int("attempt", 3))

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, "INFO jobs: poll complete") {
		t.Fatalf("unexpected log line: %q", line)
	}
	if !strings.Contains(line, "job_id=job-1") || !strings.Contains(line, "attempt=3") {
		t.Fatalf("expected attrs in log line: %q", line)
	}
}

func TestNewRejectsUnknownFormat(t *testing.T) {
	if _, err := logging.New(logging.Options{Format: "yaml"}); err == nil {
		t.Fatal("expected error for unsupported format")
	}
}

func TestWithContextAddsStandardFields(t *testing.T) {
	dir := t.TempDir()
	logPath := filepath.Join(dir, "ctx.log")
	logger, err := logging.New(logging.Options{Format: "console", OutputPaths: []string{logPath}, ErrorOutputPaths: []string{logPath}})
	if err != nil {
		t.Fatalf("New failed: %v", err)
	}

	ctx := services.WithMentorID(context.Background(), "mentor-9")
	ctx = services.WithStage(ctx, "production")
	logging.WithContext(ctx, logger).Info("stage advanced")

	data, err := os.ReadFile(logPath)
	if err != nil {
		t.Fatalf("read log: %v", err)
	}
	line := string(data)
	if !strings.Contains(line, "mentor_id=mentor-9") || !strings.Contains(line, "stage=production") {
		t.Fatalf("expected context fields in line: %q", line)
	}
}

func TestNopLoggerDiscards(t *testing.T) {
	logger := logging.NewNop()
	logger.Error("should be dropped", logging.Error(nil))
}
