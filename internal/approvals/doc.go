// Package approvals derives per-item approval state for the produced
// webinar content and drives the submit-for-review workflow. State is
// never stored locally: it is recomputed from the asset's source
// signals (ready_to_publish, explicit status, submission and approval
// timestamps) on every read.
package approvals
