// Package session persists the CLI's login state and production
// pointers in a local SQLite database: the bearer token, the signed-in
// user, the active webinar asset, and a history of background jobs.
// Both maestro and maestrod read the same database, so a job started
// from the CLI is visible to the watcher daemon and vice versa.
package session
