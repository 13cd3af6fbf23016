// Package daemon implements maestrod, the background watcher. It
// follows the session's active background job to completion, keeps the
// local asset pointer and cache in sync with what the backend
// produced, advances the mentor's workflow stage when an upload
// finishes, polls video renders during production, and pushes
// notifications along the way. A file lock enforces a single instance
// per state directory.
package daemon
