package service

import (
	"context"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/mie-portal/portal-api/pkg/errors"
)

type fakeCacheRepo struct {
	entries         map[string][]byte
	deletedPatterns []string
}

func newFakeCacheRepo() *fakeCacheRepo {
	return &fakeCacheRepo{entries: map[string][]byte{}}
}

func (f *fakeCacheRepo) Get(ctx context.Context, key string, dest interface{}) error {
	raw, ok := f.entries[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (f *fakeCacheRepo) Set(ctx context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	f.entries[key] = raw
	return nil
}

func (f *fakeCacheRepo) DeleteByPattern(ctx context.Context, pattern string) error {
	f.deletedPatterns = append(f.deletedPatterns, pattern)
	prefix := strings.TrimSuffix(pattern, "*")
	for k := range f.entries {
		if strings.HasPrefix(k, prefix) {
			delete(f.entries, k)
		}
	}
	return nil
}

func newCacheServiceFixture() (*CacheService, *fakeCacheRepo, *MetricsService) {
	repo := newFakeCacheRepo()
	metrics := NewMetricsService()
	return NewCacheService(repo, metrics, time.Minute, nil, true), repo, metrics
}

func TestCacheServiceMissThenHit(t *testing.T) {
	cache, _, metrics := newCacheServiceFixture()
	ctx := context.Background()

	var out []string
	hit, err := cache.Get(ctx, "teachers:CCS", &out)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, cache.Set(ctx, "teachers:CCS", []string{"t1", "t2"}, 0))

	hit, err = cache.Get(ctx, "teachers:CCS", &out)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"t1", "t2"}, out)

	snapshot := metrics.Snapshot()
	assert.Equal(t, uint64(1), snapshot.CacheHits)
	assert.Equal(t, uint64(1), snapshot.CacheMisses)
	assert.InDelta(t, 0.5, snapshot.CacheHitRatio, 1e-9)
}

func TestCacheServiceDisabledNeverHits(t *testing.T) {
	repo := newFakeCacheRepo()
	cache := NewCacheService(repo, nil, time.Minute, nil, false)
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "teachers:all", "ignored", 0))

	var out string
	hit, err := cache.Get(ctx, "teachers:all", &out)
	require.NoError(t, err)
	assert.False(t, hit)
	assert.Empty(t, repo.entries)
}

func TestCacheServiceInvalidateClearsNamespace(t *testing.T) {
	cache, repo, _ := newCacheServiceFixture()
	ctx := context.Background()

	require.NoError(t, cache.Set(ctx, "subjects:CCS:1", "a", 0))
	require.NoError(t, cache.Set(ctx, "subjects:COE:2", "b", 0))
	require.NoError(t, cache.Set(ctx, "teachers:CCS", "c", 0))

	require.NoError(t, cache.Invalidate(ctx, "subjects:*"))

	assert.Len(t, repo.entries, 1)
	assert.Contains(t, repo.entries, "teachers:CCS")
}

func TestMakeCacheKeySkipsEmptyParts(t *testing.T) {
	assert.Equal(t, "teachers:CCS:2:20", makeCacheKey("teachers", "CCS", "", "2", "20"))
	assert.Equal(t, "accounts", makeCacheKey("accounts"))
	assert.Equal(t, "subjects:a|b", makeCacheKey("subjects", "a:b"))
}
