// Package stage models the webinar production workflow: the ordered
// stages a mentor moves through from onboarding to launch, progress
// classification against the profile's current stage, and the next
// action each stage calls for.
package stage
