// Package ipc exposes maestrod control over JSON-RPC on a Unix domain
// socket: runtime status, shutdown, and a notification test. The CLI
// is the only intended client.
package ipc
