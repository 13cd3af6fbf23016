package stage

import "fmt"

// Evidence summarizes what actually exists on the webinar asset. The
// profile stage is the source of truth for progress, but the asset can
// drift from it when a backend step fails midway.
type Evidence struct {
	HasAsset          bool
	HasConcepts       bool
	HasSelection      bool
	HasStructure      bool
	HasEmailPlan      bool
	HasVideo          bool
	ConceptApproved   bool
	StructureApproved bool
	EmailsApproved    bool
}

// Mismatch describes one inconsistency between the profile stage and
// the asset contents.
type Mismatch struct {
	Stage  Stage
	Detail string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("%s: %s", m.Stage.Label(), m.Detail)
}

// Reconcile checks the asset evidence against the profile stage and
// reports every inconsistency. It never proposes repairs; surfacing the
// drift is the caller's whole job.
func Reconcile(current Stage, ev Evidence) []Mismatch {
	var mismatches []Mismatch
	idx := current.Index()

	require := func(at Stage, ok bool, detail string) {
		if idx >= at.Index() && !ok {
			mismatches = append(mismatches, Mismatch{Stage: current, Detail: detail})
		}
	}

	require(ConceptGeneration, ev.HasAsset, "no webinar asset exists yet")
	require(ConceptReview, ev.HasConcepts, "no concepts have been generated")
	require(StructureDevelopment, ev.HasSelection, "no concept has been selected")
	require(StructureReview, ev.HasStructure, "no structure has been generated")
	require(Production, ev.HasEmailPlan, "no email plan has been generated")
	require(LaunchReady, ev.ConceptApproved && ev.StructureApproved && ev.EmailsApproved,
		"not all content has been approved")

	// Drift in the other direction: artifacts from stages the profile
	// has not reached yet.
	if idx < StructureDevelopment.Index() && ev.HasStructure {
		mismatches = append(mismatches, Mismatch{Stage: current,
			Detail: "a structure exists although the profile has not reached structure development"})
	}
	if idx < EmailSequence.Index() && ev.HasEmailPlan {
		mismatches = append(mismatches, Mismatch{Stage: current,
			Detail: "an email plan exists although the profile has not reached the email stage"})
	}
	return mismatches
}
