package assetcache

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"maestro/internal/config"
	"maestro/internal/logging"
	"maestro/internal/services"
	"maestro/internal/services/portal"
)

// AssetClient fetches asset records from the backend.
type AssetClient interface {
	Asset(ctx context.Context, assetID string) (*portal.Asset, error)
}

type entry struct {
	asset     *portal.Asset
	fetchedAt time.Time
}

// Cache is a TTL-bounded asset cache with optional disk persistence.
type Cache struct {
	client       AssetClient
	ttl          time.Duration
	snapshotPath string
	logger       *slog.Logger
	now          func() time.Time

	mu      sync.Mutex
	entries map[string]entry
}

// Option configures a Cache.
type Option func(*Cache)

// WithClock overrides the time source, for tests.
func WithClock(now func() time.Time) Option {
	return func(c *Cache) {
		if now != nil {
			c.now = now
		}
	}
}

// WithSnapshotPath enables persistence of the cached assets to disk so
// a fresh process starts warm.
func WithSnapshotPath(path string) Option {
	return func(c *Cache) {
		c.snapshotPath = path
	}
}

// New creates an asset cache. A zero or negative ttl disables reuse and
// every Snapshot call refetches.
func New(client AssetClient, ttl time.Duration, logger *slog.Logger, opts ...Option) *Cache {
	if logger == nil {
		logger = logging.NewNop()
	}
	cache := &Cache{
		client:  client,
		ttl:     ttl,
		logger:  logger.With(logging.String(logging.FieldComponent, "assetcache")),
		now:     time.Now,
		entries: make(map[string]entry),
	}
	for _, opt := range opts {
		opt(cache)
	}
	if cache.snapshotPath != "" {
		cache.loadSnapshot()
	}
	return cache
}

// NewFromConfig builds the cache with the configured TTL and snapshot
// location.
func NewFromConfig(client AssetClient, cfg *config.Config, logger *slog.Logger) *Cache {
	return New(client, cfg.AssetTTL(), logger, WithSnapshotPath(cfg.AssetCache.SnapshotPath))
}

// Snapshot returns the asset, reusing the cached copy while it is
// fresh. Staleness only triggers a refetch here; nothing expires in the
// background.
func (c *Cache) Snapshot(ctx context.Context, assetID string) (*portal.Asset, error) {
	if assetID == "" {
		return nil, services.Wrap(services.ErrValidation, "assetcache", "snapshot", "asset id required", nil)
	}

	c.mu.Lock()
	cached, ok := c.entries[assetID]
	c.mu.Unlock()
	if ok && c.ttl > 0 && c.now().Sub(cached.fetchedAt) < c.ttl {
		return cached.asset, nil
	}

	return c.Refresh(ctx, assetID)
}

// Refresh fetches the asset unconditionally and stores the new copy.
// When the backend is unreachable and a stale copy exists, the stale
// copy is returned alongside the error so callers can degrade.
func (c *Cache) Refresh(ctx context.Context, assetID string) (*portal.Asset, error) {
	asset, err := c.client.Asset(ctx, assetID)
	if err != nil {
		c.mu.Lock()
		cached, ok := c.entries[assetID]
		c.mu.Unlock()
		if ok && services.Retryable(err) {
			c.logger.Warn("serving stale asset",
				logging.String(logging.FieldAssetID, assetID),
				logging.Error(err))
			return cached.asset, err
		}
		return nil, err
	}

	c.mu.Lock()
	c.entries[assetID] = entry{asset: asset, fetchedAt: c.now()}
	c.mu.Unlock()
	c.persist()
	return asset, nil
}

// Invalidate drops one asset from the cache. Mutating operations call
// this so the next read observes the backend's newest state.
func (c *Cache) Invalidate(assetID string) {
	c.mu.Lock()
	delete(c.entries, assetID)
	c.mu.Unlock()
	c.persist()
}

// Cached returns the cached asset without touching the backend, along
// with whether a copy exists at all (fresh or stale).
func (c *Cache) Cached(assetID string) (*portal.Asset, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	cached, ok := c.entries[assetID]
	if !ok {
		return nil, false
	}
	return cached.asset, true
}
