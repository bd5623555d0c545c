package registration

import (
	"context"
	"sync"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

// CartStore holds the per-user pre-registration staging area. Entries expire
// as a whole: every write refreshes the cart's TTL, and an expired cart reads
// back empty.
type CartStore interface {
	Add(ctx context.Context, authID, eventID string) error
	Remove(ctx context.Context, authID, eventID string) error
	List(ctx context.Context, authID string) ([]string, error)
	Clear(ctx context.Context, authID string) error
}

const cartKeyPrefix = "cart:"

// RedisCart keeps carts in a Redis set per user with a rolling TTL.
type RedisCart struct {
	rdb *goredis.Client
	ttl time.Duration
}

func NewRedisCart(rdb *goredis.Client, ttl time.Duration) *RedisCart {
	return &RedisCart{rdb: rdb, ttl: ttl}
}

func (c *RedisCart) Add(ctx context.Context, authID, eventID string) error {
	key := cartKeyPrefix + authID
	pipe := c.rdb.TxPipeline()
	pipe.SAdd(ctx, key, eventID)
	pipe.Expire(ctx, key, c.ttl)
	_, err := pipe.Exec(ctx)
	return err
}

func (c *RedisCart) Remove(ctx context.Context, authID, eventID string) error {
	return c.rdb.SRem(ctx, cartKeyPrefix+authID, eventID).Err()
}

func (c *RedisCart) List(ctx context.Context, authID string) ([]string, error) {
	return c.rdb.SMembers(ctx, cartKeyPrefix+authID).Result()
}

func (c *RedisCart) Clear(ctx context.Context, authID string) error {
	return c.rdb.Del(ctx, cartKeyPrefix+authID).Err()
}

// MemoryCart is the fallback when Redis is not configured; expiry is checked
// lazily on access.
type MemoryCart struct {
	mu  sync.Mutex
	ttl time.Duration
	m   map[string]*memoryCartEntry
}

type memoryCartEntry struct {
	events    map[string]bool
	expiresAt time.Time
}

func NewMemoryCart(ttl time.Duration) *MemoryCart {
	return &MemoryCart{ttl: ttl, m: make(map[string]*memoryCartEntry)}
}

func (c *MemoryCart) Add(_ context.Context, authID, eventID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.live(authID)
	if e == nil {
		e = &memoryCartEntry{events: make(map[string]bool)}
		c.m[authID] = e
	}
	e.events[eventID] = true
	e.expiresAt = time.Now().Add(c.ttl)
	return nil
}

func (c *MemoryCart) Remove(_ context.Context, authID, eventID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if e := c.live(authID); e != nil {
		delete(e.events, eventID)
	}
	return nil
}

func (c *MemoryCart) List(_ context.Context, authID string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	e := c.live(authID)
	if e == nil {
		return nil, nil
	}
	out := make([]string, 0, len(e.events))
	for id := range e.events {
		out = append(out, id)
	}
	return out, nil
}

func (c *MemoryCart) Clear(_ context.Context, authID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.m, authID)
	return nil
}

func (c *MemoryCart) live(authID string) *memoryCartEntry {
	e := c.m[authID]
	if e == nil {
		return nil
	}
	if time.Now().After(e.expiresAt) {
		delete(c.m, authID)
		return nil
	}
	return e
}
