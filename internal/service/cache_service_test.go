package service

import (
	"context"
	"encoding/json"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	appErrors "github.com/noah-isme/dance-studio-api/pkg/errors"
)

type memoryCache struct {
	data    map[string][]byte
	getErr  error
	deleted []string
	lastTTL time.Duration
}

func newMemoryCache() *memoryCache {
	return &memoryCache{data: map[string][]byte{}}
}

func (m *memoryCache) Get(_ context.Context, key string, dest interface{}) error {
	if m.getErr != nil {
		return m.getErr
	}
	raw, ok := m.data[key]
	if !ok {
		return appErrors.ErrCacheMiss
	}
	return json.Unmarshal(raw, dest)
}

func (m *memoryCache) Set(_ context.Context, key string, value interface{}, ttl time.Duration) error {
	raw, err := json.Marshal(value)
	if err != nil {
		return err
	}
	m.data[key] = raw
	m.lastTTL = ttl
	return nil
}

func (m *memoryCache) DeleteByPattern(_ context.Context, pattern string) error {
	m.deleted = append(m.deleted, pattern)
	for k := range m.data {
		delete(m.data, k)
	}
	return nil
}

func TestCacheServiceRoundTrip(t *testing.T) {
	store := newMemoryCache()
	svc := NewCacheService(store, NewMetricsService(), time.Minute, zap.NewNop(), true)

	var out []int
	assert.False(t, svc.Get(context.Background(), "halls:list", &out))

	svc.Set(context.Background(), "halls:list", []int{1, 2})
	assert.Equal(t, time.Minute, store.lastTTL)

	require.True(t, svc.Get(context.Background(), "halls:list", &out))
	assert.Equal(t, []int{1, 2}, out)

	svc.Invalidate(context.Background(), "halls:*")
	assert.Equal(t, []string{"halls:*"}, store.deleted)
}

func TestCacheServiceDisabled(t *testing.T) {
	store := newMemoryCache()
	svc := NewCacheService(store, nil, 0, nil, false)

	svc.Set(context.Background(), "k", 1)
	assert.Empty(t, store.data)
	var out int
	assert.False(t, svc.Get(context.Background(), "k", &out))
}

func TestCacheServiceNilRepoIsDisabled(t *testing.T) {
	svc := NewCacheService(nil, nil, 0, nil, true)
	assert.False(t, svc.Enabled())
}

func TestCacheServiceLogsBackendFailure(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	store := newMemoryCache()
	store.getErr = errors.New("connection refused")
	svc := NewCacheService(store, nil, 0, zap.New(core), true)

	var out int
	assert.False(t, svc.Get(context.Background(), "k", &out))
	require.Equal(t, 1, logs.Len())
	assert.Equal(t, "cache get failed", logs.All()[0].Message)
}

func TestReadThroughLoadsOnceThenServesCache(t *testing.T) {
	store := newMemoryCache()
	svc := NewCacheService(store, nil, 0, nil, true)
	loads := 0
	load := func(context.Context) ([]string, error) {
		loads++
		return []string{"Hall 1"}, nil
	}

	first, err := readThrough(context.Background(), svc, "halls:list", load)
	require.NoError(t, err)
	second, err := readThrough(context.Background(), svc, "halls:list", load)
	require.NoError(t, err)

	assert.Equal(t, []string{"Hall 1"}, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 1, loads)
}

func TestReadThroughDoesNotCacheErrors(t *testing.T) {
	store := newMemoryCache()
	svc := NewCacheService(store, nil, 0, nil, true)

	_, err := readThrough(context.Background(), svc, "halls:list", func(context.Context) ([]string, error) {
		return nil, errors.New("db down")
	})
	require.Error(t, err)
	assert.Empty(t, store.data)
}

func TestReadThroughWithoutBackend(t *testing.T) {
	var svc *CacheService
	out, err := readThrough(context.Background(), svc, "k", func(context.Context) (int, error) { return 7, nil })
	require.NoError(t, err)
	assert.Equal(t, 7, out)
}
