package embed

import (
	"context"
	"crypto/sha256"
	"encoding/hex"

	lru "github.com/hashicorp/golang-lru/v2"
)

// CachedEncoder wraps an Encoder with an LRU cache so repeated queries
// skip the inference round trip.
type CachedEncoder struct {
	inner Encoder
	cache *lru.Cache[string, []float32]
}

var _ Encoder = (*CachedEncoder)(nil)

// NewCachedEncoder creates a cached encoder wrapping inner. Size is the
// number of unique query embeddings kept in memory.
func NewCachedEncoder(inner Encoder, size int) *CachedEncoder {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, _ := lru.New[string, []float32](size)
	return &CachedEncoder{inner: inner, cache: cache}
}

// cacheKey hashes text together with the model name so a model change
// never serves stale vectors.
func (c *CachedEncoder) cacheKey(text string) string {
	hash := sha256.Sum256([]byte(text + "\x00" + c.inner.ModelName()))
	return hex.EncodeToString(hash[:])
}

// Encode returns a cached vector when available, otherwise encodes and
// caches.
func (c *CachedEncoder) Encode(ctx context.Context, text string) ([]float32, error) {
	key := c.cacheKey(text)
	if vec, ok := c.cache.Get(key); ok {
		return vec, nil
	}

	vec, err := c.inner.Encode(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(key, vec)
	return vec, nil
}

// Dimensions returns the vector width of the inner encoder.
func (c *CachedEncoder) Dimensions() int { return c.inner.Dimensions() }

// ModelName identifies the inner model.
func (c *CachedEncoder) ModelName() string { return c.inner.ModelName() }
