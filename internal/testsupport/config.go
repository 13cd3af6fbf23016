// Package testsupport provides shared fixtures for package tests: a
// config rooted in per-test temp directories, an open session store,
// and a canned portal backend.
package testsupport

import (
	"path/filepath"
	"testing"

	"maestro/internal/config"
)

// ConfigOption allows callers to customize the generated test configuration.
type ConfigOption func(*config.Config)

// NewConfig produces a config seeded with unique temp directories per
// test and a fast polling cadence.
func NewConfig(t testing.TB, opts ...ConfigOption) *config.Config {
	t.Helper()

	base := t.TempDir()
	cfg := config.Default()
	cfg.Paths.StateDir = base
	cfg.Paths.LogDir = filepath.Join(base, "logs")
	cfg.AssetCache.SnapshotPath = filepath.Join(base, "asset_snapshot.json")
	cfg.Jobs.PollInterval = 1
	cfg.Jobs.InitialDelay = 0

	for _, opt := range opts {
		opt(&cfg)
	}
	return &cfg
}

// WithPortalURL points the config at a test backend.
func WithPortalURL(url string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Portal.BaseURL = url
	}
}

// WithNtfyTopic enables notifications against a test endpoint.
func WithNtfyTopic(topic string) ConfigOption {
	return func(cfg *config.Config) {
		cfg.Notifications.NtfyTopic = topic
		cfg.Notifications.Jobs = true
		cfg.Notifications.Stages = true
		cfg.Notifications.Approvals = true
		cfg.Notifications.Errors = true
	}
}
