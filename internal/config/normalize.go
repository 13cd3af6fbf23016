package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

func (c *Config) normalize() error {
	if err := c.normalizePaths(); err != nil {
		return err
	}
	if err := c.normalizePortal(); err != nil {
		return err
	}
	c.normalizeJobs()
	if err := c.normalizeAssetCache(); err != nil {
		return err
	}
	c.normalizeNotifications()
	c.normalizeLogging()
	return nil
}

func (c *Config) normalizePaths() error {
	var err error
	if strings.TrimSpace(c.Paths.StateDir) == "" {
		c.Paths.StateDir = defaultStateDir
	}
	if c.Paths.StateDir, err = expandPath(c.Paths.StateDir); err != nil {
		return fmt.Errorf("paths.state_dir: %w", err)
	}
	if strings.TrimSpace(c.Paths.LogDir) == "" {
		c.Paths.LogDir = filepath.Join(c.Paths.StateDir, "logs")
	}
	if c.Paths.LogDir, err = expandPath(c.Paths.LogDir); err != nil {
		return fmt.Errorf("paths.log_dir: %w", err)
	}
	return nil
}

func (c *Config) normalizePortal() error {
	if c.Portal.BaseURL == "" {
		if value, ok := os.LookupEnv("MAESTRO_PORTAL_URL"); ok {
			c.Portal.BaseURL = value
		}
	}
	c.Portal.BaseURL = strings.TrimRight(strings.TrimSpace(c.Portal.BaseURL), "/")
	if c.Portal.BaseURL == "" {
		c.Portal.BaseURL = defaultPortalBaseURL
	}
	if c.Portal.RequestTimeout <= 0 {
		c.Portal.RequestTimeout = defaultRequestTimeout
	}
	return nil
}

func (c *Config) normalizeJobs() {
	if c.Jobs.PollInterval <= 0 {
		c.Jobs.PollInterval = defaultPollInterval
	}
	if c.Jobs.InitialDelay < 0 {
		c.Jobs.InitialDelay = defaultPollInitialDelay
	}
	if c.Jobs.MaxAttempts <= 0 {
		c.Jobs.MaxAttempts = defaultPollMaxAttempts
	}
	if c.Jobs.ProgressEvery <= 0 {
		c.Jobs.ProgressEvery = defaultProgressEvery
	}
}

func (c *Config) normalizeAssetCache() error {
	if c.AssetCache.TTLSeconds <= 0 {
		c.AssetCache.TTLSeconds = defaultAssetTTLSeconds
	}
	if strings.TrimSpace(c.AssetCache.SnapshotPath) == "" {
		c.AssetCache.SnapshotPath = filepath.Join(c.Paths.StateDir, "asset_snapshot.json")
		return nil
	}
	expanded, err := expandPath(c.AssetCache.SnapshotPath)
	if err != nil {
		return fmt.Errorf("asset_cache.snapshot_path: %w", err)
	}
	c.AssetCache.SnapshotPath = expanded
	return nil
}

func (c *Config) normalizeNotifications() {
	c.Notifications.NtfyTopic = strings.TrimSpace(c.Notifications.NtfyTopic)
	if c.Notifications.RequestTimeout <= 0 {
		c.Notifications.RequestTimeout = defaultNotifyTimeout
	}
	if c.Notifications.DedupWindowSeconds < 0 {
		c.Notifications.DedupWindowSeconds = defaultNotifyDedupSeconds
	}
}

func (c *Config) normalizeLogging() {
	c.Logging.Format = strings.ToLower(strings.TrimSpace(c.Logging.Format))
	if c.Logging.Format == "" {
		c.Logging.Format = defaultLogFormat
	}
	c.Logging.Level = strings.ToLower(strings.TrimSpace(c.Logging.Level))
	if c.Logging.Level == "" {
		c.Logging.Level = defaultLogLevel
	}
}
