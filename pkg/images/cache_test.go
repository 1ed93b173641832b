package images_test

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pressfeed-hq/pressfeed/internal/domain"
	"github.com/pressfeed-hq/pressfeed/pkg/images"
)

func openTestCache(t *testing.T) *images.Cache {
	t.Helper()
	cache, err := images.OpenCache(filepath.Join(t.TempDir(), "images.db"))
	require.NoError(t, err)
	t.Cleanup(func() { cache.Close() })
	return cache
}

func TestCache_PutGet(t *testing.T) {
	cache := openTestCache(t)

	require.NoError(t, cache.Put("https://example.com/news/a", "https://cdn.example.com/a.jpg"))

	img, ok := cache.Get("https://example.com/news/a")
	assert.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/a.jpg", img)

	_, ok = cache.Get("https://example.com/news/missing")
	assert.False(t, ok)
}

func TestCache_FirstWriteWins(t *testing.T) {
	cache := openTestCache(t)

	require.NoError(t, cache.Put("https://example.com/news/a", "https://cdn.example.com/first.jpg"))
	require.NoError(t, cache.Put("https://example.com/news/a", "https://cdn.example.com/second.jpg"))

	img, _ := cache.Get("https://example.com/news/a")
	assert.Equal(t, "https://cdn.example.com/first.jpg", img)
}

func TestCache_ActsAsStrategy(t *testing.T) {
	cache := openTestCache(t)
	require.NoError(t, cache.Put("https://example.com/news/a", "https://cdn.example.com/a.jpg"))

	img, err := cache.Resolve(context.Background(), domain.Candidate{URL: "https://example.com/news/a"})
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/a.jpg", img)
}

func TestCache_SurvivesReopen(t *testing.T) {
	path := filepath.Join(t.TempDir(), "images.db")

	cache, err := images.OpenCache(path)
	require.NoError(t, err)
	require.NoError(t, cache.Put("https://example.com/news/a", "https://cdn.example.com/a.jpg"))
	require.NoError(t, cache.Close())

	cache, err = images.OpenCache(path)
	require.NoError(t, err)
	defer cache.Close()

	img, ok := cache.Get("https://example.com/news/a")
	assert.True(t, ok)
	assert.Equal(t, "https://cdn.example.com/a.jpg", img)
}
