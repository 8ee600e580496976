package cachemanager

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type mockCache struct {
	mock.Mock
}

func (m *mockCache) Get(ctx context.Context, key string) ([]int, bool) {
	args := m.Called(ctx, key)
	v, _ := args.Get(0).([]int)
	return v, args.Bool(1)
}

func (m *mockCache) GetWithRefresh(ctx context.Context, key string, ttl time.Duration) ([]int, bool) {
	args := m.Called(ctx, key, ttl)
	v, _ := args.Get(0).([]int)
	return v, args.Bool(1)
}

func (m *mockCache) Set(ctx context.Context, key string, value []int, ttl time.Duration) {
	m.Called(ctx, key, value, ttl)
}

func (m *mockCache) Delete(ctx context.Context, keys ...string) error {
	return m.Called(ctx, keys).Error(0)
}

func (m *mockCache) Flush(ctx context.Context) error {
	return m.Called(ctx).Error(0)
}

func lengths(_ context.Context, words []string) ([]int, error) {
	out := make([]int, len(words))
	for i, w := range words {
		out[i] = len(w)
	}
	return out, nil
}

func TestReadThroughCache_SkipCacheCallsFn(t *testing.T) {
	cache := &mockCache{}
	rt := NewReadThroughCache[string, []int, []string](cache, lengths, true)

	got, err := rt.Get(context.Background(), "k", []string{"ab", "c"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, []int{2, 1}, got)
	cache.AssertNotCalled(t, "GetWithRefresh", mock.Anything, mock.Anything, mock.Anything)
}

func TestReadThroughCache_HitSkipsFn(t *testing.T) {
	cache := &mockCache{}
	cache.On("GetWithRefresh", mock.Anything, "k", time.Minute).Return([]int{9}, true)

	called := false
	rt := NewReadThroughCache[string, []int, []string](cache,
		func(ctx context.Context, in []string) ([]int, error) {
			called = true
			return lengths(ctx, in)
		}, false)

	got, err := rt.Get(context.Background(), "k", []string{"ignored"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, []int{9}, got)
	require.False(t, called)
	cache.AssertExpectations(t)
}

func TestReadThroughCache_MissStoresValue(t *testing.T) {
	cache := &mockCache{}
	cache.On("GetWithRefresh", mock.Anything, "k", time.Minute).Return(nil, false)
	cache.On("Set", mock.Anything, "k", []int{3}, time.Minute).Return()

	rt := NewReadThroughCache[string, []int, []string](cache, lengths, false)

	got, err := rt.Get(context.Background(), "k", []string{"abc"}, time.Minute)
	require.NoError(t, err)
	require.Equal(t, []int{3}, got)
	cache.AssertExpectations(t)
}

func TestReadThroughCache_ErrorNotStored(t *testing.T) {
	cache := &mockCache{}
	cache.On("GetWithRefresh", mock.Anything, "k", time.Minute).Return(nil, false)

	boom := errors.New("boom")
	rt := NewReadThroughCache[string, []int, []string](cache,
		func(context.Context, []string) ([]int, error) { return nil, boom }, false)

	_, err := rt.Get(context.Background(), "k", nil, time.Minute)
	require.ErrorIs(t, err, boom)
	cache.AssertNotCalled(t, "Set", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}
