package embedding

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// Embedder is the subset of retrieval.Embedder wrapped by Cached.
type Embedder interface {
	Embed(ctx context.Context, texts []string) ([][]float32, error)
	Name() string
}

// Cached serves repeated texts from a cache and forwards only misses.
// Keys carry the embedder name and dimensions so replicas with different
// embedders can share one redis cache.
type Cached struct {
	next  Embedder
	cache Cache
	dims  int
}

// NewCached wraps next. dims is the expected vector length; 0 skips the length check on hits.
func NewCached(next Embedder, cache Cache, dims int) *Cached {
	return &Cached{next: next, cache: cache, dims: dims}
}

func (c *Cached) Name() string { return c.next.Name() }

func (c *Cached) Embed(ctx context.Context, texts []string) ([][]float32, error) {
	results := make([][]float32, len(texts))
	var missIdx []int
	var missTexts []string

	for i, text := range texts {
		if v, ok := c.cache.Get(ctx, c.cacheKey(text)); ok && (c.dims == 0 || len(v) == c.dims) {
			results[i] = v
			continue
		}
		missIdx = append(missIdx, i)
		missTexts = append(missTexts, text)
	}
	if len(missTexts) == 0 {
		return results, nil
	}

	fresh, err := c.next.Embed(ctx, missTexts)
	if err != nil {
		return nil, err
	}
	if len(fresh) != len(missTexts) {
		return nil, fmt.Errorf("%s embedder returned %d vectors for %d inputs", c.next.Name(), len(fresh), len(missTexts))
	}
	for i, idx := range missIdx {
		results[idx] = fresh[i]
		c.cache.Set(ctx, c.cacheKey(missTexts[i]), fresh[i])
	}
	return results, nil
}

func (c *Cached) cacheKey(text string) string {
	sum := sha256.Sum256([]byte(text))
	return fmt.Sprintf("%s:%d:%s", c.next.Name(), c.dims, hex.EncodeToString(sum[:]))
}
