package cache

import (
	"context"
	"encoding/json"
	"net"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/choretab/choretab/config"
)

const defaultTTL = time.Minute

// Cache is a read-through JSON cache for derived data (stats, leaderboards).
// It is never a source of truth: a nil Cache or an unreachable Redis simply
// degrades every lookup to a miss.
type Cache struct {
	rdb *redis.Client
	log *zap.SugaredLogger
}

// NewRedis builds a Redis client from configuration. The caller owns the
// client's lifecycle; a failed ping is tolerated so the app can run without
// Redis.
func NewRedis(cfg config.AppConfig) *redis.Client {
	rdb := redis.NewClient(&redis.Options{
		Addr:         net.JoinHostPort(cfg.RedisHost, strconv.Itoa(cfg.RedisPort)),
		Password:     cfg.RedisPassword,
		DB:           cfg.RedisDB,
		DialTimeout:  3 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_ = rdb.Ping(ctx).Err()
	return rdb
}

// New wraps an existing Redis client. rdb may be nil.
func New(rdb *redis.Client, log *zap.SugaredLogger) *Cache {
	return &Cache{rdb: rdb, log: log}
}

// GetJSON unmarshals the cached value for key into v, reporting a hit.
func (c *Cache) GetJSON(key string, v interface{}) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	b, err := c.rdb.Get(ctx, key).Bytes()
	if err != nil {
		return false
	}
	if err := json.Unmarshal(b, v); err != nil {
		if c.log != nil {
			c.log.Warnw("cache decode failed", "key", key, "err", err)
		}
		return false
	}
	return true
}

// SetJSON marshals v and stores it under key with the given TTL.
func (c *Cache) SetJSON(key string, v interface{}, ttl time.Duration) {
	if c == nil || c.rdb == nil {
		return
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	b, err := json.Marshal(v)
	if err != nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := c.rdb.Set(ctx, key, b, ttl).Err(); err != nil && c.log != nil {
		c.log.Warnw("cache set failed", "key", key, "err", err)
	}
}

// InvalidateByPrefix deletes keys matching prefix* using SCAN.
func (c *Cache) InvalidateByPrefix(prefix string) {
	if c == nil || c.rdb == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 3*time.Second)
	defer cancel()
	var cursor uint64
	for i := 0; i < 10; i++ { // bound rounds to avoid long scans
		keys, cur, err := c.rdb.Scan(ctx, cursor, prefix+"*", 1000).Result()
		if err != nil {
			break
		}
		cursor = cur
		if len(keys) > 0 {
			pipe := c.rdb.Pipeline()
			for _, k := range keys {
				pipe.Del(ctx, k)
			}
			_, _ = pipe.Exec(ctx)
		}
		if cursor == 0 {
			break
		}
	}
}
