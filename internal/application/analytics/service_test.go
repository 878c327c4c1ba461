package analytics

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/resto-bi/backend/internal/domain/analytics"
)

// countingRepo serves canned revenue results and counts how often the
// aggregation actually runs.
type countingRepo struct {
	analytics.Repository

	mu           sync.Mutex
	revenueCalls int
	revenueErr   error

	summaryCalls int
}

func (r *countingRepo) Revenue(f analytics.SaleFilter, groupBy analytics.Granularity) ([]analytics.RevenuePoint, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revenueCalls++
	if r.revenueErr != nil {
		return nil, r.revenueErr
	}
	return []analytics.RevenuePoint{
		{Period: "2024-01-01", Revenue: decimal.NewFromInt(100), SalesCount: 1, AvgTicket: decimal.NewFromInt(100)},
	}, nil
}

func (r *countingRepo) MetricsSummary(f analytics.SaleFilter) (*analytics.MetricsSummary, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.summaryCalls++
	return &analytics.MetricsSummary{
		TotalRevenue: decimal.NewFromInt(100),
		SalesCount:   1,
		AvgTicket:    decimal.NewFromInt(100),
	}, nil
}

func (r *countingRepo) calls() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.revenueCalls
}

// memoryCache is an in-process ResultCache with injectable failures.
type memoryCache struct {
	mu      sync.Mutex
	entries map[string][]byte

	getErr  error
	setErr  error
	pingErr error
}

func newMemoryCache() *memoryCache {
	return &memoryCache{entries: map[string][]byte{}}
}

func (c *memoryCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.getErr != nil {
		return nil, false, c.getErr
	}
	v, ok := c.entries[key]
	return v, ok, nil
}

func (c *memoryCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.setErr != nil {
		return c.setErr
	}
	c.entries[key] = value
	return nil
}

func (c *memoryCache) Keys(ctx context.Context, pattern string) ([]string, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	keys := make([]string, 0, len(c.entries))
	for k := range c.entries {
		keys = append(keys, k)
	}
	return keys, nil
}

func (c *memoryCache) Delete(ctx context.Context, keys ...string) (int64, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	var n int64
	for _, k := range keys {
		if _, ok := c.entries[k]; ok {
			delete(c.entries, k)
			n++
		}
	}
	return n, nil
}

func (c *memoryCache) FlushAll(ctx context.Context) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.entries = map[string][]byte{}
	return nil
}

func (c *memoryCache) Ping(ctx context.Context) error {
	return c.pingErr
}

func (c *memoryCache) len() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.entries)
}

func TestServiceCachesResults(t *testing.T) {
	repo := &countingRepo{}
	cache := newMemoryCache()
	svc := NewService(repo, cache, zap.NewNop())
	ctx := context.Background()

	first, err := svc.Revenue(ctx, analytics.SaleFilter{}, analytics.GranularityDay)
	require.NoError(t, err)
	require.Len(t, first, 1)
	assert.Equal(t, 1, repo.calls())

	second, err := svc.Revenue(ctx, analytics.SaleFilter{}, analytics.GranularityDay)
	require.NoError(t, err)
	assert.Equal(t, 1, repo.calls(), "second identical call must be served from cache")
	assert.Equal(t, first[0].Period, second[0].Period)
	assert.True(t, first[0].Revenue.Equal(second[0].Revenue))
}

func TestServiceDistinctParamsMissTheCache(t *testing.T) {
	repo := &countingRepo{}
	cache := newMemoryCache()
	svc := NewService(repo, cache, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Revenue(ctx, analytics.SaleFilter{}, analytics.GranularityDay)
	require.NoError(t, err)
	_, err = svc.Revenue(ctx, analytics.SaleFilter{}, analytics.GranularityMonth)
	require.NoError(t, err)
	storeID := int64(2)
	_, err = svc.Revenue(ctx, analytics.SaleFilter{StoreID: &storeID}, analytics.GranularityDay)
	require.NoError(t, err)

	assert.Equal(t, 3, repo.calls())
	assert.Equal(t, 3, cache.len())
}

func TestServiceWorksWithoutCache(t *testing.T) {
	repo := &countingRepo{}
	svc := NewService(repo, nil, zap.NewNop())
	ctx := context.Background()

	for i := 0; i < 3; i++ {
		_, err := svc.Revenue(ctx, analytics.SaleFilter{}, analytics.GranularityDay)
		require.NoError(t, err)
	}
	assert.Equal(t, 3, repo.calls())
}

func TestServiceDegradesOnCacheReadFailure(t *testing.T) {
	repo := &countingRepo{}
	cache := newMemoryCache()
	cache.getErr = errors.New("connection refused")
	svc := NewService(repo, cache, zap.NewNop())
	ctx := context.Background()

	out, err := svc.Revenue(ctx, analytics.SaleFilter{}, analytics.GranularityDay)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 1, repo.calls())
}

func TestServiceDegradesOnCacheWriteFailure(t *testing.T) {
	repo := &countingRepo{}
	cache := newMemoryCache()
	cache.setErr = errors.New("connection refused")
	svc := NewService(repo, cache, zap.NewNop())
	ctx := context.Background()

	out, err := svc.Revenue(ctx, analytics.SaleFilter{}, analytics.GranularityDay)
	require.NoError(t, err)
	require.Len(t, out, 1)

	// Nothing was stored, so the next call computes again.
	_, err = svc.Revenue(ctx, analytics.SaleFilter{}, analytics.GranularityDay)
	require.NoError(t, err)
	assert.Equal(t, 2, repo.calls())
}

func TestServiceRecomputesOnCorruptEntry(t *testing.T) {
	repo := &countingRepo{}
	cache := newMemoryCache()
	svc := NewService(repo, cache, zap.NewNop())
	ctx := context.Background()

	key := NewCacheKey("revenue").WithFilter(analytics.SaleFilter{}).WithString("group_by", "day").String()
	require.NoError(t, cache.Set(ctx, key, []byte("{not json"), 0))

	out, err := svc.Revenue(ctx, analytics.SaleFilter{}, analytics.GranularityDay)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, 1, repo.calls())
}

func TestServicePropagatesComputeErrors(t *testing.T) {
	repo := &countingRepo{revenueErr: analytics.ErrStoreUnavailable}
	cache := newMemoryCache()
	svc := NewService(repo, cache, zap.NewNop())

	_, err := svc.Revenue(context.Background(), analytics.SaleFilter{}, analytics.GranularityDay)
	assert.ErrorIs(t, err, analytics.ErrStoreUnavailable)
	assert.Equal(t, 0, cache.len(), "failed computations are never cached")
}

func TestServiceInvalidateAndFlush(t *testing.T) {
	repo := &countingRepo{}
	cache := newMemoryCache()
	svc := NewService(repo, cache, zap.NewNop())
	ctx := context.Background()

	_, err := svc.Revenue(ctx, analytics.SaleFilter{}, analytics.GranularityDay)
	require.NoError(t, err)
	_, err = svc.MetricsSummary(ctx, analytics.SaleFilter{})
	require.NoError(t, err)
	require.Equal(t, 2, cache.len())

	removed, err := svc.Invalidate(ctx, "*")
	require.NoError(t, err)
	assert.Equal(t, int64(2), removed)
	assert.Equal(t, 0, cache.len())

	_, err = svc.Revenue(ctx, analytics.SaleFilter{}, analytics.GranularityDay)
	require.NoError(t, err)
	require.NoError(t, svc.Flush(ctx))
	assert.Equal(t, 0, cache.len())

	// Without a cache both are no-ops.
	bare := NewService(repo, nil, zap.NewNop())
	removed, err = bare.Invalidate(ctx, "*")
	require.NoError(t, err)
	assert.Equal(t, int64(0), removed)
	require.NoError(t, bare.Flush(ctx))
}

func TestServiceStatus(t *testing.T) {
	repo := &countingRepo{}
	ctx := context.Background()

	t.Run("disconnected without a cache", func(t *testing.T) {
		svc := NewService(repo, nil, zap.NewNop())
		assert.Equal(t, CacheStatus{Status: "disconnected"}, svc.Status(ctx))
	})

	t.Run("connected with key count", func(t *testing.T) {
		cache := newMemoryCache()
		svc := NewService(repo, cache, zap.NewNop())
		_, err := svc.Revenue(ctx, analytics.SaleFilter{}, analytics.GranularityDay)
		require.NoError(t, err)

		status := svc.Status(ctx)
		assert.Equal(t, "connected", status.Status)
		assert.Equal(t, 1, status.KeysCount)
	})

	t.Run("error when unreachable", func(t *testing.T) {
		cache := newMemoryCache()
		cache.pingErr = errors.New("connection refused")
		svc := NewService(repo, cache, zap.NewNop())

		status := svc.Status(ctx)
		assert.Equal(t, "error", status.Status)
		assert.Contains(t, status.Error, "connection refused")
	})
}

func TestServiceWithTTL(t *testing.T) {
	repo := &countingRepo{}
	svc := NewService(repo, newMemoryCache(), zap.NewNop()).WithTTL(30 * time.Second)
	assert.Equal(t, 30*time.Second, svc.ttl)

	def := NewService(repo, nil, zap.NewNop())
	assert.Equal(t, DefaultTTL, def.ttl)
}
