package cache

import (
	"context"
	"sync"
	"time"

	"github.com/madhugraj/transact-ai-nexus-sub002/internal/application/extraction"
)

type entry struct {
	value     []byte
	expiresAt time.Time // zero means no expiry
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && now.After(e.expiresAt)
}

// InMemoryExtractionCache implements ExtractionCache with a process-local map.
// It is used when Redis is unavailable and in tests.
type InMemoryExtractionCache struct {
	mu        sync.RWMutex
	entries   map[string]entry
	maxItems  int
	stopChan  chan struct{}
	wg        sync.WaitGroup
	closeOnce sync.Once
}

// NewInMemoryExtractionCache creates a cache holding at most maxItems entries
// (0 = unbounded) and starts a background sweep of expired entries
func NewInMemoryExtractionCache(maxItems int) *InMemoryExtractionCache {
	c := &InMemoryExtractionCache{
		entries:  make(map[string]entry),
		maxItems: maxItems,
		stopChan: make(chan struct{}),
	}
	c.wg.Add(1)
	go c.cleanupLoop()
	return c
}

// Get returns a copy of the cached payload for key
func (c *InMemoryExtractionCache) Get(_ context.Context, key string) ([]byte, bool, error) {
	c.mu.RLock()
	e, ok := c.entries[key]
	c.mu.RUnlock()
	if !ok || e.expired(time.Now()) {
		return nil, false, nil
	}
	out := make([]byte, len(e.value))
	copy(out, e.value)
	return out, true, nil
}

// Set stores a copy of value. When full, expired entries are dropped first,
// then an arbitrary entry.
func (c *InMemoryExtractionCache) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	buf := make([]byte, len(value))
	copy(buf, value)
	e := entry{value: buf}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if _, exists := c.entries[key]; !exists && c.maxItems > 0 && len(c.entries) >= c.maxItems {
		c.evictLocked()
	}
	c.entries[key] = e
	return nil
}

func (c *InMemoryExtractionCache) evictLocked() {
	now := time.Now()
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
		}
	}
	if len(c.entries) < c.maxItems {
		return
	}
	for k := range c.entries {
		delete(c.entries, k)
		return
	}
}

// Close stops the cleanup goroutine. Safe to call multiple times.
func (c *InMemoryExtractionCache) Close() error {
	c.closeOnce.Do(func() {
		close(c.stopChan)
		c.wg.Wait()
	})
	return nil
}

func (c *InMemoryExtractionCache) cleanupLoop() {
	defer c.wg.Done()

	ticker := time.NewTicker(5 * time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopChan:
			return
		case <-ticker.C:
			c.cleanup()
		}
	}
}

func (c *InMemoryExtractionCache) cleanup() {
	c.mu.Lock()
	defer c.mu.Unlock()

	now := time.Now()
	for k, e := range c.entries {
		if e.expired(now) {
			delete(c.entries, k)
		}
	}
}

// Size returns the number of entries, including expired ones not yet swept
func (c *InMemoryExtractionCache) Size() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.entries)
}

var _ extraction.ExtractionCache = (*InMemoryExtractionCache)(nil)
