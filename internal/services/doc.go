// Package services defines shared utilities consumed by the portal client and
// the pipeline coordination packages.
//
// Key responsibilities:
//   - Context helpers that stamp mentor IDs, stage names, job IDs, and
//     correlation identifiers for logging and tracing.
//   - Structured error markers plus the Wrap helper that translate failures
//     into consistent user-facing classifications (validation vs auth vs
//     transport vs job failure vs client-side timeout).
//
// Use these helpers when wiring new pipeline logic so operational behaviour
// (error handling, observability) stays uniform across commands and the
// daemon.
package services
