package embeddings

import (
	"context"
	"errors"
	"sync"

	"github.com/interviewkit/interview-assistant/internal/health"
)

// Cache memoizes a provider by exact text. Entries never mutate after
// insertion; when the cache is full the oldest entry is evicted (FIFO).
// A hit never reaches the underlying provider.
type Cache struct {
	provider EmbeddingProvider
	capacity int

	mu      sync.Mutex
	entries map[string][]float32
	order   []string
}

// NewCache wraps provider with a memoizing cache of at most capacity texts.
func NewCache(provider EmbeddingProvider, capacity int) *Cache {
	if capacity < 1 {
		capacity = 1
	}
	return &Cache{
		provider: provider,
		capacity: capacity,
		entries:  make(map[string][]float32),
	}
}

// Embed returns the memoized vector for text, computing it once on a miss.
// Failed computations are not cached, so a later call may succeed.
func (c *Cache) Embed(ctx context.Context, text string) ([]float32, error) {
	c.mu.Lock()
	if vec, ok := c.entries[text]; ok {
		c.mu.Unlock()
		return vec, nil
	}
	c.mu.Unlock()

	vec, err := c.provider.Embed(ctx, text)
	if err != nil {
		return nil, err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	// A concurrent miss may have stored the same text already; keep the
	// first insertion so cached values never change.
	if cached, ok := c.entries[text]; ok {
		return cached, nil
	}
	if len(c.entries) >= c.capacity {
		oldest := c.order[0]
		c.order = c.order[1:]
		delete(c.entries, oldest)
	}
	c.entries[text] = vec
	c.order = append(c.order, text)
	return vec, nil
}

// Len reports the number of cached texts.
func (c *Cache) Len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

// HealthPing probes the wrapped provider directly, never the memo map.
// A probe through Embed would be memoized on first success and every later
// probe would hit the cache, leaving a provider outage undetected.
func (c *Cache) HealthPing(ctx context.Context) error {
	if p, ok := c.provider.(health.HealthPinger); ok {
		return p.HealthPing(ctx)
	}
	vec, err := c.provider.Embed(ctx, "health-check")
	if err != nil {
		return err
	}
	if len(vec) == 0 {
		return errors.New("embedding provider returned an empty vector")
	}
	return nil
}

var _ health.HealthPinger = (*Cache)(nil)
