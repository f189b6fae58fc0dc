// Package dedupe suppresses duplicate end-of-call reports. The voice
// provider may redeliver the same terminal webhook; without a seen-set the
// CRM update would run twice. Entries expire after a short TTL since only
// near-in-time redeliveries matter.
package dedupe

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

const keyPrefix = "revive_call_seen"

// DefaultTTL is how long a call id stays in the seen-set.
const DefaultTTL = 24 * time.Hour

// SeenSet records call ids as they are processed. Seen returns true when the
// id was already recorded, marking the current delivery as a duplicate.
// Forget releases an id recorded by Seen so a failed pipeline run does not
// swallow the provider's redelivery.
type SeenSet interface {
	Seen(ctx context.Context, callID string) (bool, error)
	Forget(ctx context.Context, callID string) error
}

// RedisSeenSet backs the seen-set with Redis so deduplication holds across
// replicas and restarts. SetNX makes check-and-record atomic.
type RedisSeenSet struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisSeenSet connects to Redis and returns the seen-set. The connection
// is verified up front so a misconfigured address fails at startup.
func NewRedisSeenSet(addr, password string, db int, ttl time.Duration) (*RedisSeenSet, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if _, err := client.Ping(ctx).Result(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &RedisSeenSet{client: client, ttl: ttl}, nil
}

// Seen records the call id and reports whether it was already present.
func (s *RedisSeenSet) Seen(ctx context.Context, callID string) (bool, error) {
	key := fmt.Sprintf("%s:%s", keyPrefix, callID)
	created, err := s.client.SetNX(ctx, key, "1", s.ttl).Result()
	if err != nil {
		return false, err
	}
	return !created, nil
}

// Forget deletes the call id so a later delivery is processed again.
func (s *RedisSeenSet) Forget(ctx context.Context, callID string) error {
	key := fmt.Sprintf("%s:%s", keyPrefix, callID)
	return s.client.Del(ctx, key).Err()
}

// MemorySeenSet is the single-process fallback used when Redis is not
// configured.
type MemorySeenSet struct {
	mu   sync.Mutex
	ttl  time.Duration
	seen map[string]time.Time
}

// NewMemorySeenSet creates an in-memory seen-set with the given TTL.
func NewMemorySeenSet(ttl time.Duration) *MemorySeenSet {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &MemorySeenSet{
		ttl:  ttl,
		seen: make(map[string]time.Time),
	}
}

// Seen records the call id and reports whether a live entry already existed.
// Expired entries are pruned on the way through.
func (s *MemorySeenSet) Seen(ctx context.Context, callID string) (bool, error) {
	now := time.Now()

	s.mu.Lock()
	defer s.mu.Unlock()

	for id, at := range s.seen {
		if now.Sub(at) > s.ttl {
			delete(s.seen, id)
		}
	}

	if at, ok := s.seen[callID]; ok && now.Sub(at) <= s.ttl {
		return true, nil
	}
	s.seen[callID] = now
	return false, nil
}

// Forget deletes the call id so a later delivery is processed again.
func (s *MemorySeenSet) Forget(ctx context.Context, callID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.seen, callID)
	return nil
}
