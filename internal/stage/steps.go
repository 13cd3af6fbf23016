package stage

// Step describes what a mentor should do next at a given stage,
// including the CLI command that performs it.
type Step struct {
	Stage       Stage
	Title       string
	Description string
	Command     string
}

var steps = map[Stage]Step{
	Onboarding: {
		Stage:       Onboarding,
		Title:       "Complete onboarding",
		Description: "Fill in your business profile and upload your onboarding material.",
		Command:     "maestro setup upload",
	},
	ConceptGeneration: {
		Stage:       ConceptGeneration,
		Title:       "Generate webinar concepts",
		Description: "Produce concept candidates from your onboarding material.",
		Command:     "maestro concepts generate",
	},
	ConceptReview: {
		Stage:       ConceptReview,
		Title:       "Review and select a concept",
		Description: "Compare the generated concepts, pick one, and submit it for approval.",
		Command:     "maestro concepts list",
	},
	StructureDevelopment: {
		Stage:       StructureDevelopment,
		Title:       "Develop the webinar structure",
		Description: "Generate the slide-by-slide outline from your selected concept.",
		Command:     "maestro structure generate",
	},
	StructureReview: {
		Stage:       StructureReview,
		Title:       "Review the structure",
		Description: "Inspect the outline and submit it for approval.",
		Command:     "maestro structure show",
	},
	EmailSequence: {
		Stage:       EmailSequence,
		Title:       "Build the launch emails",
		Description: "Generate the pre-webinar, post-webinar, sales and replay sequences.",
		Command:     "maestro emails generate",
	},
	Production: {
		Stage:       Production,
		Title:       "Produce marketing media",
		Description: "Generate promotional images, ad copy, and the avatar video.",
		Command:     "maestro media generate",
	},
	LaunchReady: {
		Stage:       LaunchReady,
		Title:       "Launch",
		Description: "All content is approved. Your webinar funnel is ready to publish.",
		Command:     "maestro status",
	},
}

// NextStep returns the action descriptor for a stage. Unknown stages
// fall back to the onboarding step so the caller always has a usable
// pointer.
func NextStep(s Stage) Step {
	if step, ok := steps[s]; ok {
		return step
	}
	return steps[Onboarding]
}
