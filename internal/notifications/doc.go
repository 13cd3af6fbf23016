// Package notifications pushes production milestones to the mentor's
// phone via ntfy: job lifecycle updates, stage transitions, approval
// submissions, and errors. Without a configured topic every call is a
// no-op, so callers never guard their notification sites.
package notifications
