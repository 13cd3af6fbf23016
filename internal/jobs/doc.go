// Package jobs follows background jobs on the portal backend until
// they finish. A Manager owns at most one watcher per job id; each
// watcher polls the status endpoint on a fixed cadence, surfaces
// periodic progress, and settles exactly once with the terminal job
// snapshot, a timeout, or a cancellation.
package jobs
