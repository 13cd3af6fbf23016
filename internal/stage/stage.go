package stage

import (
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

// Stage identifies one step of the webinar production workflow. Values
// match the backend's current_stage wire strings.
type Stage string

// Workflow stages in production order.
const (
	Onboarding           Stage = "onboarding"
	ConceptGeneration    Stage = "concept_generation"
	ConceptReview        Stage = "concept_review"
	StructureDevelopment Stage = "structure_development"
	StructureReview      Stage = "structure_review"
	EmailSequence        Stage = "email_sequence"
	Production           Stage = "production"
	LaunchReady          Stage = "launch_ready"
)

// All lists the stages in workflow order.
func All() []Stage {
	return []Stage{
		Onboarding,
		ConceptGeneration,
		ConceptReview,
		StructureDevelopment,
		StructureReview,
		EmailSequence,
		Production,
		LaunchReady,
	}
}

var order = map[Stage]int{
	Onboarding:           0,
	ConceptGeneration:    1,
	ConceptReview:        2,
	StructureDevelopment: 3,
	StructureReview:      4,
	EmailSequence:        5,
	Production:           6,
	LaunchReady:          7,
}

// Parse normalizes a wire string into a Stage. Unknown or empty values
// map to Onboarding, the workflow entry point.
func Parse(value string) Stage {
	s := Stage(strings.ToLower(strings.TrimSpace(value)))
	if _, ok := order[s]; ok {
		return s
	}
	return Onboarding
}

// Known reports whether value names a workflow stage.
func Known(value string) bool {
	_, ok := order[Stage(strings.ToLower(strings.TrimSpace(value)))]
	return ok
}

// Index returns the stage's position in the workflow. Unknown stages
// report position zero.
func (s Stage) Index() int {
	if idx, ok := order[s]; ok {
		return idx
	}
	return 0
}

// Next returns the following stage, or LaunchReady when the workflow is
// already at its end.
func (s Stage) Next() Stage {
	idx := s.Index()
	stages := All()
	if idx+1 >= len(stages) {
		return LaunchReady
	}
	return stages[idx+1]
}

// Terminal reports whether the workflow ends at this stage.
func (s Stage) Terminal() bool {
	return s == LaunchReady
}

var titleCaser = cases.Title(language.English)

// Label renders the stage as a human-readable heading.
func (s Stage) Label() string {
	return titleCaser.String(strings.ReplaceAll(string(s), "_", " "))
}

// Progress classifies a stage relative to the profile's current stage.
type Progress string

// Progress classifications.
const (
	Completed Progress = "completed"
	Current   Progress = "current"
	Pending   Progress = "pending"
)

// Classify reports where target sits relative to current: earlier
// stages are completed, the matching stage is current, later ones are
// pending.
func Classify(target, current Stage) Progress {
	switch {
	case target.Index() < current.Index():
		return Completed
	case target == current:
		return Current
	default:
		return Pending
	}
}
