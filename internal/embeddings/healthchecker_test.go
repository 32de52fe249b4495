package embeddings

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// switchableProvider can be flipped into a permanent failure mid-test.
type switchableProvider struct {
	down atomic.Bool
}

func (p *switchableProvider) Embed(_ context.Context, _ string) ([]float32, error) {
	if p.down.Load() {
		return nil, errors.New("provider unreachable")
	}
	return []float32{1, 0}, nil
}

func TestCacheHealthPingBypassesMemoization(t *testing.T) {
	p := &switchableProvider{}
	c := NewCache(p, 8)
	ctx := context.Background()

	require.NoError(t, c.HealthPing(ctx))

	// Warm the memo map with the check text through the public path.
	_, err := c.Embed(ctx, "health-check")
	require.NoError(t, err)

	p.down.Store(true)
	assert.Error(t, c.HealthPing(ctx), "ping must reach the provider, not the memo map")

	// Regular lookups still serve memoized vectors during the outage.
	vec, err := c.Embed(ctx, "health-check")
	require.NoError(t, err)
	assert.NotEmpty(t, vec)
}

func TestProviderHealthCheckerSeesOutageBehindCache(t *testing.T) {
	p := &switchableProvider{}
	c := NewCache(p, 8)
	hc := NewProviderHealthChecker(c, zerolog.Nop(), time.Second)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	go hc.Start(ctx, 10*time.Millisecond)

	waitTrue(t, hc.IsHealthy)

	p.down.Store(true)
	waitTrue(t, func() bool { return !hc.IsHealthy() })
}

func waitTrue(t *testing.T, pred func() bool) {
	t.Helper()
	deadline := time.Now().Add(500 * time.Millisecond)
	for time.Now().Before(deadline) {
		if pred() {
			return
		}
		time.Sleep(5 * time.Millisecond)
	}
	t.Fatal("condition not met before deadline")
}
