package identity

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strconv"
	"time"

	"github.com/hashicorp/golang-lru/v2/expirable"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const (
	defaultCacheSize = 1000
	defaultCacheTTL  = 30 * time.Second
	redisKeyPrefix   = "storeadmin:identity:"
)

// SnapshotCache stores identity snapshots by admin id.
type SnapshotCache interface {
	Get(ctx context.Context, id int64) (Identity, bool, error)
	Set(ctx context.Context, id int64, ident Identity) error
}

// MemoryCache is a process-local LRU with per-entry expiry.
type MemoryCache struct {
	lru *expirable.LRU[int64, Identity]
}

// NewMemoryCache creates a MemoryCache holding at most size snapshots for ttl.
func NewMemoryCache(size int, ttl time.Duration) *MemoryCache {
	if size <= 0 {
		size = defaultCacheSize
	}
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &MemoryCache{lru: expirable.NewLRU[int64, Identity](size, nil, ttl)}
}

func (c *MemoryCache) Get(_ context.Context, id int64) (Identity, bool, error) {
	ident, ok := c.lru.Get(id)
	return ident, ok, nil
}

func (c *MemoryCache) Set(_ context.Context, id int64, ident Identity) error {
	c.lru.Add(id, ident)
	return nil
}

// RedisCache shares snapshots between instances as JSON documents.
type RedisCache struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisCache creates a RedisCache with the given entry ttl.
func NewRedisCache(client *redis.Client, ttl time.Duration) *RedisCache {
	if ttl <= 0 {
		ttl = defaultCacheTTL
	}
	return &RedisCache{client: client, ttl: ttl}
}

func redisKey(id int64) string {
	return redisKeyPrefix + strconv.FormatInt(id, 10)
}

func (c *RedisCache) Get(ctx context.Context, id int64) (Identity, bool, error) {
	data, err := c.client.Get(ctx, redisKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return Identity{}, false, nil
		}
		return Identity{}, false, fmt.Errorf("identity: redis get: %w", err)
	}
	var ident Identity
	if err := json.Unmarshal(data, &ident); err != nil {
		return Identity{}, false, fmt.Errorf("identity: decode snapshot: %w", err)
	}
	return ident, true, nil
}

func (c *RedisCache) Set(ctx context.Context, id int64, ident Identity) error {
	data, err := json.Marshal(ident)
	if err != nil {
		return fmt.Errorf("identity: encode snapshot: %w", err)
	}
	if err := c.client.Set(ctx, redisKey(id), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("identity: redis set: %w", err)
	}
	return nil
}

// CachedLoader serves snapshots from a cache and collapses concurrent misses
// for the same admin into one load. Cache errors fall through to the loader.
// Cached snapshots are served until they expire, so deactivating an admin or
// revoking a role takes effect only after the cache TTL.
type CachedLoader struct {
	next    Loader
	cache   SnapshotCache
	logger  *slog.Logger
	timeout time.Duration
	group   singleflight.Group
}

// NewCachedLoader wraps next with cache.
func NewCachedLoader(next Loader, cache SnapshotCache, logger *slog.Logger) *CachedLoader {
	if logger == nil {
		logger = slog.Default()
	}
	return &CachedLoader{next: next, cache: cache, logger: logger, timeout: DefaultTimeout}
}

// LoadIdentity implements Loader.
func (c *CachedLoader) LoadIdentity(ctx context.Context, id int64) (Identity, error) {
	ident, ok, err := c.cache.Get(ctx, id)
	if err != nil {
		c.logger.Warn("identity cache get", slog.Int64("admin_id", id), slog.Any("error", err))
	} else if ok {
		return ident, nil
	}

	resultChan := c.group.DoChan(strconv.FormatInt(id, 10), func() (interface{}, error) {
		// shared by every waiter, so one caller going away must not cancel it
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), c.timeout)
		defer cancel()
		loaded, err := c.next.LoadIdentity(loadCtx, id)
		if err != nil {
			return Identity{}, err
		}
		if err := c.cache.Set(loadCtx, id, loaded); err != nil {
			c.logger.Warn("identity cache set", slog.Int64("admin_id", id), slog.Any("error", err))
		}
		return loaded, nil
	})
	select {
	case <-ctx.Done():
		return Identity{}, ctx.Err()
	case res := <-resultChan:
		if res.Err != nil {
			return Identity{}, res.Err
		}
		return res.Val.(Identity), nil
	}
}

var _ Loader = (*CachedLoader)(nil)

// Cache backends selectable through configuration.
const (
	CacheNone   = "none"
	CacheMemory = "memory"
	CacheRedis  = "redis"
)

// CacheOptions select and size the snapshot cache.
type CacheOptions struct {
	Kind string
	TTL  time.Duration
	Size int
}

// WithCache wraps base according to opts. client is only required for the
// redis backend.
func WithCache(base Loader, opts CacheOptions, client *redis.Client, logger *slog.Logger) (Loader, error) {
	switch opts.Kind {
	case "", CacheNone:
		return base, nil
	case CacheMemory:
		return NewCachedLoader(base, NewMemoryCache(opts.Size, opts.TTL), logger), nil
	case CacheRedis:
		if client == nil {
			return nil, errors.New("identity: redis cache requires a redis client")
		}
		return NewCachedLoader(base, NewRedisCache(client, opts.TTL), logger), nil
	default:
		return nil, fmt.Errorf("identity: unknown cache backend %q", opts.Kind)
	}
}
