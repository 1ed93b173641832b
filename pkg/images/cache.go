package images

import (
	"context"
	"fmt"

	bolt "go.etcd.io/bbolt"

	"github.com/pressfeed-hq/pressfeed/internal/domain"
)

var cacheBucket = []byte("images")

// Cache persists resolved story-to-image mappings in a bbolt file so a
// rerun does not refetch article pages. First write for a story wins.
type Cache struct {
	db *bolt.DB
}

// OpenCache opens (or creates) the cache file at path.
func OpenCache(path string) (*Cache, error) {
	db, err := bolt.Open(path, 0o600, nil)
	if err != nil {
		return nil, fmt.Errorf("open image cache: %w", err)
	}

	err = db.Update(func(tx *bolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists(cacheBucket)
		return err
	})
	if err != nil {
		db.Close()
		return nil, fmt.Errorf("init image cache: %w", err)
	}

	return &Cache{db: db}, nil
}

// Get returns the cached image URL for a story, if any.
func (c *Cache) Get(storyURL string) (string, bool) {
	var img string
	_ = c.db.View(func(tx *bolt.Tx) error {
		if v := tx.Bucket(cacheBucket).Get([]byte(storyURL)); v != nil {
			img = string(v)
		}
		return nil
	})
	return img, img != ""
}

// Put stores the mapping unless the story already has one.
func (c *Cache) Put(storyURL, imageURL string) error {
	return c.db.Update(func(tx *bolt.Tx) error {
		b := tx.Bucket(cacheBucket)
		if b.Get([]byte(storyURL)) != nil {
			return nil
		}
		return b.Put([]byte(storyURL), []byte(imageURL))
	})
}

// Close releases the underlying file.
func (c *Cache) Close() error {
	return c.db.Close()
}

// Name makes the cache usable as a lookup strategy.
func (c *Cache) Name() string { return "resolved-cache" }

// Resolve answers from the cache, never erroring.
func (c *Cache) Resolve(_ context.Context, cand domain.Candidate) (string, error) {
	img, _ := c.Get(cand.URL)
	return img, nil
}
