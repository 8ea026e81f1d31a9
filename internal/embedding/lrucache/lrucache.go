// Package lrucache decorates an embedding.Provider with a bounded
// in-process cache, the in-memory analogue of a Redis-backed embedding
// cache appropriate here because the classification hot path has no
// external store by design.
package lrucache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/patternengine/internal/embedding"
)

// CachedProvider caches embeddings for previously seen texts.
type CachedProvider struct {
	inner embedding.Provider
	cache *lru.Cache[string, []float32]
	total *prometheus.CounterVec // label "result": "hit"/"miss"
}

// New wraps inner with an LRU cache holding up to size entries. total may
// be nil to disable metrics.
func New(inner embedding.Provider, size int, total *prometheus.CounterVec) (*CachedProvider, error) {
	if size <= 0 {
		size = 4096
	}
	cache, err := lru.New[string, []float32](size)
	if err != nil {
		return nil, fmt.Errorf("lrucache: new cache: %w", err)
	}
	return &CachedProvider{inner: inner, cache: cache, total: total}, nil
}

// Dimension delegates to the wrapped provider.
func (c *CachedProvider) Dimension() int { return c.inner.Dimension() }

// Descriptor delegates to the wrapped provider.
func (c *CachedProvider) Descriptor() string { return c.inner.Descriptor() }

// Embed returns a cached vector or computes and caches a fresh one.
func (c *CachedProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if vec, ok := c.cache.Get(text); ok {
		c.inc("hit")
		return vec, nil
	}
	c.inc("miss")

	vec, err := c.inner.Embed(ctx, text)
	if err != nil {
		return nil, err
	}
	c.cache.Add(text, vec)
	return vec, nil
}

func (c *CachedProvider) inc(result string) {
	if c.total != nil {
		c.total.WithLabelValues(result).Inc()
	}
}
