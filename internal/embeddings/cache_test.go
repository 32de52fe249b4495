package embeddings

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingProvider struct {
	mu    sync.Mutex
	calls map[string]int
	fail  bool
}

func newCountingProvider() *countingProvider {
	return &countingProvider{calls: map[string]int{}}
}

func (p *countingProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.fail {
		return nil, errors.New("provider down")
	}
	p.calls[text]++
	return []float32{float32(len(text)), 1}, nil
}

func (p *countingProvider) callCount(text string) int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.calls[text]
}

func TestCacheMemoizesByExactText(t *testing.T) {
	p := newCountingProvider()
	c := NewCache(p, 8)
	ctx := context.Background()

	v1, err := c.Embed(ctx, "hello")
	require.NoError(t, err)
	v2, err := c.Embed(ctx, "hello")
	require.NoError(t, err)

	assert.Equal(t, v1, v2)
	assert.Equal(t, 1, p.callCount("hello"))

	// Different text is a different key.
	_, err = c.Embed(ctx, "hello ")
	require.NoError(t, err)
	assert.Equal(t, 1, p.callCount("hello "))
}

func TestCacheEvictsOldestWhenFull(t *testing.T) {
	p := newCountingProvider()
	c := NewCache(p, 2)
	ctx := context.Background()

	_, _ = c.Embed(ctx, "a")
	_, _ = c.Embed(ctx, "b")
	_, _ = c.Embed(ctx, "c") // evicts "a"
	assert.Equal(t, 2, c.Len())

	_, err := c.Embed(ctx, "a")
	require.NoError(t, err)
	assert.Equal(t, 2, p.callCount("a"))
}

func TestCacheDoesNotCacheFailures(t *testing.T) {
	p := newCountingProvider()
	c := NewCache(p, 4)
	ctx := context.Background()

	p.fail = true
	_, err := c.Embed(ctx, "x")
	require.Error(t, err)

	p.fail = false
	vec, err := c.Embed(ctx, "x")
	require.NoError(t, err)
	assert.NotEmpty(t, vec)
	assert.Equal(t, 1, p.callCount("x"))
}

func TestCacheConcurrentAccess(t *testing.T) {
	p := newCountingProvider()
	c := NewCache(p, 64)
	ctx := context.Background()

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			for j := 0; j < 8; j++ {
				_, err := c.Embed(ctx, fmt.Sprintf("text-%d", j))
				assert.NoError(t, err)
			}
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 8, c.Len())
}
