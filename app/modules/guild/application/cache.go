package guildservice

import (
	"context"
	"sync"
	"time"

	guilddomain "github.com/Black-And-White-Club/guild-bot/app/modules/guild/domain"
	guildmetrics "github.com/Black-And-White-Club/guild-bot/internal/observability/metrics/guild"
	"github.com/Black-And-White-Club/guild-bot/internal/sharedtypes"
)

type cacheEntry struct {
	config    *guilddomain.GuildConfig // nil records a guild known to be unconfigured
	expiresAt time.Time
}

// ConfigCache is a read-through cache of guild configurations.
//
// Every write to a configuration must call Invalidate after the write commits.
// Invalidate bumps the guild's generation, and Fill drops any value loaded
// under an older generation, so a read racing a write can never reinstate
// the pre-write value.
type ConfigCache struct {
	mu      sync.RWMutex
	ttl     time.Duration
	now     func() time.Time
	entries map[sharedtypes.GuildID]cacheEntry
	gens    map[sharedtypes.GuildID]uint64
	metrics guildmetrics.GuildMetrics
}

// NewConfigCache creates a cache whose entries expire after ttl.
func NewConfigCache(ttl time.Duration, metrics guildmetrics.GuildMetrics) *ConfigCache {
	if metrics == nil {
		metrics = guildmetrics.NoOpMetrics{}
	}
	return &ConfigCache{
		ttl:     ttl,
		now:     time.Now,
		entries: make(map[sharedtypes.GuildID]cacheEntry),
		gens:    make(map[sharedtypes.GuildID]uint64),
		metrics: metrics,
	}
}

// Lookup returns a copy of the cached config. hit is false on a miss or an
// expired entry, in which case gen must be passed to Fill.
func (c *ConfigCache) Lookup(ctx context.Context, guildID sharedtypes.GuildID) (cfg *guilddomain.GuildConfig, hit bool, gen uint64) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	e, ok := c.entries[guildID]
	if ok && c.now().Before(e.expiresAt) {
		c.metrics.RecordCacheHit(ctx)
		return e.config.Clone(), true, 0
	}
	c.metrics.RecordCacheMiss(ctx)
	return nil, false, c.gens[guildID]
}

// Fill stores cfg (nil for unconfigured) if no invalidation happened since gen was issued.
func (c *ConfigCache) Fill(guildID sharedtypes.GuildID, cfg *guilddomain.GuildConfig, gen uint64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.gens[guildID] != gen {
		return
	}
	c.entries[guildID] = cacheEntry{config: cfg.Clone(), expiresAt: c.now().Add(c.ttl)}
}

// Invalidate drops the guild's entry.
func (c *ConfigCache) Invalidate(ctx context.Context, guildID sharedtypes.GuildID) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.entries, guildID)
	c.gens[guildID]++
	c.metrics.RecordCacheInvalidation(ctx)
}
