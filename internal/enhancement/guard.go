package enhancement

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// DefaultGuardTTL bounds how long a crashed run can block its field.
const DefaultGuardTTL = 2 * time.Minute

// Guard suppresses duplicate concurrent enhancement runs for one key.
type Guard interface {
	// Acquire reports whether the caller now owns key.
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string) error
}

// GuardKey builds the in-flight key for a field of a session.
func GuardKey(sessionID, field string) string {
	return fmt.Sprintf("enhance:%s:%s", sessionID, field)
}

// --- MemoryGuard ---

// MemoryGuard is an in-process Guard for single-instance deployments.
type MemoryGuard struct {
	mu       sync.Mutex
	inFlight map[string]time.Time
	ttl      time.Duration
	now      func() time.Time
}

func NewMemoryGuard(ttl time.Duration) *MemoryGuard {
	if ttl <= 0 {
		ttl = DefaultGuardTTL
	}
	return &MemoryGuard{inFlight: map[string]time.Time{}, ttl: ttl, now: time.Now}
}

func (g *MemoryGuard) Acquire(_ context.Context, key string) (bool, error) {
	g.mu.Lock()
	defer g.mu.Unlock()
	now := g.now()
	if expires, ok := g.inFlight[key]; ok && now.Before(expires) {
		return false, nil
	}
	g.inFlight[key] = now.Add(g.ttl)
	return true, nil
}

func (g *MemoryGuard) Release(_ context.Context, key string) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	delete(g.inFlight, key)
	return nil
}

// --- RedisGuard ---

// RedisGuard shares in-flight keys between instances with SETNX and a TTL.
type RedisGuard struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisGuard(client redis.Cmdable, ttl time.Duration) *RedisGuard {
	if ttl <= 0 {
		ttl = DefaultGuardTTL
	}
	return &RedisGuard{client: client, ttl: ttl}
}

func (g *RedisGuard) Acquire(ctx context.Context, key string) (bool, error) {
	ok, err := g.client.SetNX(ctx, key, 1, g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("redis setnx %q: %w", key, err)
	}
	return ok, nil
}

func (g *RedisGuard) Release(ctx context.Context, key string) error {
	if err := g.client.Del(ctx, key).Err(); err != nil {
		return fmt.Errorf("redis del %q: %w", key, err)
	}
	return nil
}
