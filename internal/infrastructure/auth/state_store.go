package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// StateStore remembers which OAuth state ids were already redeemed, so a
// state can complete at most one code exchange
type StateStore interface {
	// MarkUsed records the id and reports whether this was its first use.
	// ttl should cover the remaining lifetime of the state.
	MarkUsed(ctx context.Context, id string, ttl time.Duration) (bool, error)
}

// RedisStateStore implements StateStore using Redis
type RedisStateStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisStateStore creates a state store with an existing Redis client
func NewRedisStateStore(client *redis.Client) *RedisStateStore {
	return &RedisStateStore{
		client:    client,
		keyPrefix: "nexus:oauth:state:",
	}
}

// MarkUsed stores the id with SET NX so concurrent exchanges race safely
func (s *RedisStateStore) MarkUsed(ctx context.Context, id string, ttl time.Duration) (bool, error) {
	if ttl <= 0 {
		ttl = time.Minute
	}
	ok, err := s.client.SetNX(ctx, s.keyPrefix+id, "1", ttl).Result()
	if err != nil {
		return false, fmt.Errorf("failed to record oauth state: %w", err)
	}
	return ok, nil
}

var _ StateStore = (*RedisStateStore)(nil)

// InMemoryStateStore is a single-instance StateStore
type InMemoryStateStore struct {
	mu   sync.Mutex
	used map[string]time.Time // id -> expiration time
}

// NewInMemoryStateStore creates a new in-memory state store
func NewInMemoryStateStore() *InMemoryStateStore {
	return &InMemoryStateStore{used: make(map[string]time.Time)}
}

// MarkUsed records the id, dropping expired entries as it goes
func (s *InMemoryStateStore) MarkUsed(_ context.Context, id string, ttl time.Duration) (bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for k, exp := range s.used {
		if now.After(exp) {
			delete(s.used, k)
		}
	}
	if _, exists := s.used[id]; exists {
		return false, nil
	}
	s.used[id] = now.Add(ttl)
	return true, nil
}

var _ StateStore = (*InMemoryStateStore)(nil)
