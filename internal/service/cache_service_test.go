package service

import (
	"context"
	"encoding/json"
	"path"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/1300Sarthak/CS157a/pkg/errors"
)

type memoryCacheRepo struct {
	items map[string][]byte
}

func newMemoryCacheRepo() *memoryCacheRepo {
	return &memoryCacheRepo{items: map[string][]byte{}}
}

func (m *memoryCacheRepo) Get(_ context.Context, key string, dest interface{}) error {
	raw, ok := m.items[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCacheRepo) Set(_ context.Context, key string, value interface{}, _ time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.items[key] = raw
	return nil
}

func (m *memoryCacheRepo) Delete(_ context.Context, keys ...string) error {
	for _, k := range keys {
		delete(m.items, k)
	}
	return nil
}

func (m *memoryCacheRepo) DeleteByPattern(_ context.Context, pattern string) error {
	for k := range m.items {
		if ok, _ := path.Match(pattern, k); ok {
			delete(m.items, k)
		}
	}
	return nil
}

func TestCacheServiceRoundTrip(t *testing.T) {
	repo := newMemoryCacheRepo()
	metrics := NewMetricsService()
	svc := NewCacheService(repo, metrics, time.Minute, nil, true)
	ctx := context.Background()

	var codes []string
	hit, err := svc.Get(ctx, cacheKeyCatalog, &codes)
	require.NoError(t, err)
	assert.False(t, hit)

	require.NoError(t, svc.Set(ctx, cacheKeyCatalog, []string{"CS157A"}, 0))
	hit, err = svc.Get(ctx, cacheKeyCatalog, &codes)
	require.NoError(t, err)
	assert.True(t, hit)
	assert.Equal(t, []string{"CS157A"}, codes)
	assert.Equal(t, 0.5, metrics.Snapshot().CacheHitRatio)
}

func TestCacheServiceInvalidateEnrollment(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, nil, time.Minute, nil, true)
	ctx := context.Background()

	require.NoError(t, svc.Set(ctx, cacheKeyRoster("CS157A", "Fall 2025"), []string{"a"}, 0))
	require.NoError(t, svc.Set(ctx, cacheKeyTranscript("ana@school.edu"), []string{"b"}, 0))
	require.NoError(t, svc.Set(ctx, cacheKeyTranscript("ben@school.edu"), []string{"c"}, 0))
	require.NoError(t, svc.Set(ctx, cacheKeyCatalog, []string{"d"}, 0))

	svc.InvalidateEnrollment(ctx, "ana@school.edu")

	assert.NotContains(t, repo.items, cacheKeyRoster("CS157A", "Fall 2025"))
	assert.NotContains(t, repo.items, cacheKeyTranscript("ana@school.edu"))
	assert.Contains(t, repo.items, cacheKeyTranscript("ben@school.edu"))
	assert.Contains(t, repo.items, cacheKeyCatalog)
}

func TestCacheServiceDisabled(t *testing.T) {
	repo := newMemoryCacheRepo()
	svc := NewCacheService(repo, nil, 0, nil, false)

	require.NoError(t, svc.Set(context.Background(), "k", 1, 0))
	assert.Empty(t, repo.items)

	var nilSvc *CacheService
	hit, err := nilSvc.Get(context.Background(), "k", new(int))
	require.NoError(t, err)
	assert.False(t, hit)
	nilSvc.InvalidateEnrollment(context.Background(), "ana@school.edu")
}
