package assetcache

import (
	"encoding/json"
	"os"
	"path/filepath"
	"time"

	"maestro/internal/logging"
	"maestro/internal/services/portal"
)

type snapshotEntry struct {
	Asset     *portal.Asset `json:"asset"`
	FetchedAt time.Time     `json:"fetched_at"`
}

type snapshotFile struct {
	Assets map[string]snapshotEntry `json:"assets"`
}

// loadSnapshot warms the cache from disk. A missing or unreadable file
// is not an error; the cache simply starts cold.
func (c *Cache) loadSnapshot() {
	raw, err := os.ReadFile(c.snapshotPath)
	if err != nil {
		return
	}
	var file snapshotFile
	if err := json.Unmarshal(raw, &file); err != nil {
		c.logger.Warn("discarding corrupt asset snapshot",
			logging.String("path", c.snapshotPath),
			logging.Error(err))
		return
	}
	c.mu.Lock()
	for id, saved := range file.Assets {
		if saved.Asset == nil {
			continue
		}
		c.entries[id] = entry{asset: saved.Asset, fetchedAt: saved.FetchedAt}
	}
	c.mu.Unlock()
}

// persist writes the cache contents through a temp file and rename so
// a crash never leaves a torn snapshot behind.
func (c *Cache) persist() {
	if c.snapshotPath == "" {
		return
	}

	c.mu.Lock()
	file := snapshotFile{Assets: make(map[string]snapshotEntry, len(c.entries))}
	for id, cached := range c.entries {
		file.Assets[id] = snapshotEntry{Asset: cached.asset, FetchedAt: cached.fetchedAt}
	}
	c.mu.Unlock()

	encoded, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		c.logger.Warn("encode asset snapshot", logging.Error(err))
		return
	}
	dir := filepath.Dir(c.snapshotPath)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		c.logger.Warn("create snapshot dir", logging.Error(err))
		return
	}
	tmp, err := os.CreateTemp(dir, ".asset_snapshot-*")
	if err != nil {
		c.logger.Warn("create snapshot temp file", logging.Error(err))
		return
	}
	tmpName := tmp.Name()
	if _, err := tmp.Write(encoded); err != nil {
		tmp.Close()
		os.Remove(tmpName)
		c.logger.Warn("write asset snapshot", logging.Error(err))
		return
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpName)
		c.logger.Warn("close asset snapshot", logging.Error(err))
		return
	}
	if err := os.Rename(tmpName, c.snapshotPath); err != nil {
		os.Remove(tmpName)
		c.logger.Warn("replace asset snapshot", logging.Error(err))
	}
}
