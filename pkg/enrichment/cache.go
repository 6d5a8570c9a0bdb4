package enrichment

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/eko/gocache/lib/v4/cache"
	"github.com/eko/gocache/lib/v4/store"
	redisstore "github.com/eko/gocache/store/redis/v4"
	"github.com/netzplan/netzplan/pkg/redis_client"
)

// CachedPosition is the value stored per planar coordinate pair. The
// same source coordinate always maps to the same geodetic position,
// so entries never go stale, only expire.
type CachedPosition struct {
	Latitude  float64  `json:"latitude"`
	Longitude float64  `json:"longitude"`
	Elevation *float64 `json:"elevation,omitempty"`
}

func (c *CachedPosition) MarshalBinary() ([]byte, error) {
	return json.Marshal(c)
}

func (c *CachedPosition) UnmarshalBinary(data []byte) error {
	return json.Unmarshal(data, c)
}

// CacheKey identifies a planar coordinate pair, in metres.
func CacheKey(easting float64, northing float64) string {
	return fmt.Sprintf("geocode:%.3f:%.3f", easting, northing)
}

// Cache stores geocoding results between runs so paid external calls
// are never repeated for a known coordinate.
type Cache interface {
	Get(ctx context.Context, key string) (*CachedPosition, bool, error)
	Set(ctx context.Context, key string, position *CachedPosition) error
}

// RedisCache persists positions in Redis via the shared client.
type RedisCache struct {
	cache *cache.Cache[*CachedPosition]
}

func NewRedisCache(expiration time.Duration) *RedisCache {
	redisStore := redisstore.NewRedis(redis_client.Client, store.WithExpiration(expiration))
	return &RedisCache{
		cache: cache.New[*CachedPosition](redisStore),
	}
}

func (c *RedisCache) Get(ctx context.Context, key string) (*CachedPosition, bool, error) {
	if ctx.Err() != nil {
		return nil, false, ctx.Err()
	}

	position, err := c.cache.Get(ctx, key)
	if err != nil {
		// A miss and a briefly unreachable Redis both fall back to
		// the external service.
		return nil, false, nil
	}
	return position, true, nil
}

func (c *RedisCache) Set(ctx context.Context, key string, position *CachedPosition) error {
	return c.cache.Set(ctx, key, position)
}

// MemoryCache is a process local Cache for tests and single shot runs
// without Redis.
type MemoryCache struct {
	mutex     sync.RWMutex
	positions map[string]*CachedPosition
}

func NewMemoryCache() *MemoryCache {
	return &MemoryCache{
		positions: map[string]*CachedPosition{},
	}
}

func (c *MemoryCache) Get(ctx context.Context, key string) (*CachedPosition, bool, error) {
	if ctx.Err() != nil {
		return nil, false, ctx.Err()
	}

	c.mutex.RLock()
	defer c.mutex.RUnlock()

	position, found := c.positions[key]
	return position, found, nil
}

func (c *MemoryCache) Set(ctx context.Context, key string, position *CachedPosition) error {
	c.mutex.Lock()
	defer c.mutex.Unlock()

	c.positions[key] = position
	return nil
}
