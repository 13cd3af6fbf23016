package stage_test

import (
	"testing"

	"maestro/internal/stage"
)

func TestParseNormalizesUnknownToOnboarding(t *testing.T) {
	tests := []struct {
		input string
		want  stage.Stage
	}{
		{"onboarding", stage.Onboarding},
		{"Concept_Review", stage.ConceptReview},
		{"  production  ", stage.Production},
		{"", stage.Onboarding},
		{"shipping", stage.Onboarding},
	}
	for _, tc := range tests {
		if got := stage.Parse(tc.input); got != tc.want {
			t.Errorf("Parse(%q) = %q, want %q", tc.input, got, tc.want)
		}
	}
}

func TestOrderIsStable(t *testing.T) {
	all := stage.All()
	if len(all) != 8 {
		t.Fatalf("expected 8 stages, got %d", len(all))
	}
	for i, s := range all {
		if s.Index() != i {
			t.Errorf("stage %q index = %d, want %d", s, s.Index(), i)
		}
	}
	if all[0] != stage.Onboarding || all[len(all)-1] != stage.LaunchReady {
		t.Fatalf("workflow must run onboarding through launch_ready, got %v", all)
	}
}

func TestNextStopsAtLaunchReady(t *testing.T) {
	if got := stage.ConceptReview.Next(); got != stage.StructureDevelopment {
		t.Errorf("Next(concept_review) = %q", got)
	}
	if got := stage.LaunchReady.Next(); got != stage.LaunchReady {
		t.Errorf("Next(launch_ready) = %q, want launch_ready", got)
	}
	if !stage.LaunchReady.Terminal() || stage.Production.Terminal() {
		t.Error("only launch_ready is terminal")
	}
}

func TestClassify(t *testing.T) {
	current := stage.StructureDevelopment
	tests := []struct {
		target stage.Stage
		want   stage.Progress
	}{
		{stage.Onboarding, stage.Completed},
		{stage.ConceptReview, stage.Completed},
		{stage.StructureDevelopment, stage.Current},
		{stage.StructureReview, stage.Pending},
		{stage.LaunchReady, stage.Pending},
	}
	for _, tc := range tests {
		if got := stage.Classify(tc.target, current); got != tc.want {
			t.Errorf("Classify(%q, %q) = %q, want %q", tc.target, current, got, tc.want)
		}
	}
}

func TestLabel(t *testing.T) {
	if got := stage.StructureDevelopment.Label(); got != "Structure Development" {
		t.Errorf("Label = %q", got)
	}
	if got := stage.LaunchReady.Label(); got != "Launch Ready" {
		t.Errorf("Label = %q", got)
	}
}

func TestNextStepFallsBackToOnboarding(t *testing.T) {
	step := stage.NextStep(stage.Stage("bogus"))
	if step.Stage != stage.Onboarding {
		t.Fatalf("fallback step = %+v", step)
	}
	for _, s := range stage.All() {
		step := stage.NextStep(s)
		if step.Title == "" || step.Command == "" {
			t.Errorf("stage %q has incomplete step %+v", s, step)
		}
	}
}

func TestReconcileFlagsMissingArtifacts(t *testing.T) {
	// Profile says structure review, but no structure was ever produced.
	mismatches := stage.Reconcile(stage.StructureReview, stage.Evidence{
		HasAsset:     true,
		HasConcepts:  true,
		HasSelection: true,
	})
	if len(mismatches) != 1 {
		t.Fatalf("expected 1 mismatch, got %v", mismatches)
	}
}

func TestReconcileFlagsForwardDrift(t *testing.T) {
	// Asset already carries a structure while the profile is still in
	// concept review.
	mismatches := stage.Reconcile(stage.ConceptReview, stage.Evidence{
		HasAsset:     true,
		HasConcepts:  true,
		HasStructure: true,
	})
	if len(mismatches) != 1 {
		t.Fatalf("expected 1 mismatch, got %v", mismatches)
	}
}

func TestReconcileCleanProfile(t *testing.T) {
	mismatches := stage.Reconcile(stage.LaunchReady, stage.Evidence{
		HasAsset:          true,
		HasConcepts:       true,
		HasSelection:      true,
		HasStructure:      true,
		HasEmailPlan:      true,
		ConceptApproved:   true,
		StructureApproved: true,
		EmailsApproved:    true,
	})
	if len(mismatches) != 0 {
		t.Fatalf("expected clean reconcile, got %v", mismatches)
	}
}
