package services_test

import (
	"context"
	"testing"

	"maestro/internal/services"
)

func TestContextHelpers(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithMentorID(ctx, "mentor-42")
	ctx = services.WithStage(ctx, "concept_generation")
	ctx = services.WithJobID(ctx, "job-7")
	ctx = services.WithRequestID(ctx, "req-123")

	if id, ok := services.MentorIDFromContext(ctx); !ok || id != "mentor-42" {
		t.Fatalf("unexpected mentor id: %v %v", id, ok)
	}
	if stage, ok := services.StageFromContext(ctx); !ok || stage != "concept_generation" {
		t.Fatalf("unexpected stage: %v %v", stage, ok)
	}
	if job, ok := services.JobIDFromContext(ctx); !ok || job != "job-7" {
		t.Fatalf("unexpected job id: %v %v", job, ok)
	}
	if rid, ok := services.RequestIDFromContext(ctx); !ok || rid != "req-123" {
		t.Fatalf("unexpected request id: %v %v", rid, ok)
	}
}

func TestBlankValuesPreserveContext(t *testing.T) {
	ctx := context.Background()
	ctx = services.WithStage(ctx, "")
	ctx = services.WithJobID(ctx, "")
	if _, ok := services.StageFromContext(ctx); ok {
		t.Fatal("expected no stage value")
	}
	if _, ok := services.JobIDFromContext(ctx); ok {
		t.Fatal("expected no job id value")
	}
}
