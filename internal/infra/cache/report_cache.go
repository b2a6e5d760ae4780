// Package cache keeps built commission reports. Redis is shared between
// instances; the in-process LRU serves when Redis is not configured or not
// reachable at startup.
package cache

import (
	"context"
	"encoding/json"
	"log"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
	lru "github.com/hashicorp/golang-lru/v2"

	"github.com/BruksfildServices01/barber-settlement/internal/domain/commission"
	"github.com/BruksfildServices01/barber-settlement/internal/usecase/report"
)

// ===============================
// Redis
// ===============================

type RedisReportCache struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisReportCache(client *redis.Client, ttl time.Duration) *RedisReportCache {
	return &RedisReportCache{client: client, ttl: ttl}
}

func (c *RedisReportCache) Get(ctx context.Context, key string) (*commission.Report, bool) {
	b, err := c.client.Get(ctx, key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Println("report cache get:", err)
		}
		return nil, false
	}

	var r commission.Report
	if err := json.Unmarshal(b, &r); err != nil {
		log.Println("report cache decode:", err)
		return nil, false
	}
	return &r, true
}

func (c *RedisReportCache) Set(ctx context.Context, key string, r *commission.Report) {
	b, err := json.Marshal(r)
	if err != nil {
		log.Println("report cache encode:", err)
		return
	}
	if err := c.client.Set(ctx, key, b, c.ttl).Err(); err != nil {
		log.Println("report cache set:", err)
	}
}

// ===============================
// LRU
// ===============================

// Entries hold their own copy of the report; Get hands out another one.
type reportEntry struct {
	report    *commission.Report
	expiresAt time.Time
}

type LRUReportCache struct {
	mu    sync.Mutex
	cache *lru.Cache[string, *reportEntry]
	ttl   time.Duration
	now   func() time.Time
}

func NewLRUReportCache(size int, ttl time.Duration) (*LRUReportCache, error) {
	c, err := lru.New[string, *reportEntry](size)
	if err != nil {
		return nil, err
	}
	return &LRUReportCache{cache: c, ttl: ttl, now: time.Now}, nil
}

func (c *LRUReportCache) Get(_ context.Context, key string) (*commission.Report, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()

	entry, ok := c.cache.Get(key)
	if !ok {
		return nil, false
	}
	if c.now().After(entry.expiresAt) {
		c.cache.Remove(key)
		return nil, false
	}
	return entry.report.Clone(), true
}

func (c *LRUReportCache) Set(_ context.Context, key string, r *commission.Report) {
	c.mu.Lock()
	defer c.mu.Unlock()

	c.cache.Add(key, &reportEntry{report: r.Clone(), expiresAt: c.now().Add(c.ttl)})
}

// ===============================
// Wiring
// ===============================

// NewRedisClient returns nil when Redis cannot be reached, so callers fall
// back to the LRU.
func NewRedisClient(ctx context.Context, addr, password string, db int) *redis.Client {
	if addr == "" {
		return nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Printf("redis unavailable (%v), using in-process report cache", err)
		_ = client.Close()
		return nil
	}
	return client
}

// New picks Redis when a client is given, the LRU otherwise.
func New(client *redis.Client, size int, ttl time.Duration) (report.Cache, error) {
	if client != nil {
		return NewRedisReportCache(client, ttl), nil
	}
	lru, err := NewLRUReportCache(size, ttl)
	if err != nil {
		return nil, err
	}
	return lru, nil
}
