package search

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"time"

	"github.com/codeGROOVE-dev/sfcache"
	"github.com/codeGROOVE-dev/sfcache/pkg/store/localfs"
	"github.com/codeGROOVE-dev/sfcache/pkg/store/null"
)

// Cacher is the cache surface providers depend on
type Cacher interface {
	GetSet(ctx context.Context, key string, fetch func(context.Context) ([]byte, error), ttl ...time.Duration) ([]byte, error)
	TTL() time.Duration
}

// Cache is a memory cache backed by an on-disk store
type Cache struct {
	*sfcache.TieredCache[string, []byte]

	ttl time.Duration
}

// NewCache creates a cache persisted under dir
func NewCache(ttl time.Duration, dir string) (*Cache, error) {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return nil, fmt.Errorf("failed to create cache directory: %w", err)
	}

	persist, err := localfs.New[string, []byte]("investorscout", dir)
	if err != nil {
		return nil, fmt.Errorf("failed to create cache store: %w", err)
	}

	tc, err := sfcache.NewTiered[string, []byte](persist, sfcache.TTL(ttl))
	if err != nil {
		return nil, fmt.Errorf("failed to create cache: %w", err)
	}

	return &Cache{TieredCache: tc, ttl: ttl}, nil
}

// NewNullCache creates a cache that never persists anything
func NewNullCache() *Cache {
	tc, err := sfcache.NewTiered[string, []byte](null.New[string, []byte]())
	if err != nil {
		panic("sfcache.NewTiered with null store: " + err.Error())
	}
	return &Cache{TieredCache: tc}
}

// TTL returns the default entry lifetime
func (c *Cache) TTL() time.Duration {
	return c.ttl
}

// Key hashes a provider query into a cache key
func Key(provider, query string, limit int) string {
	sum := sha256.Sum256([]byte(query + "|" + strconv.Itoa(limit)))
	return provider + ":" + hex.EncodeToString(sum[:])
}

type cached struct {
	Provider
	cache  Cacher
	logger *slog.Logger
}

// Cached wraps p so identical queries are answered from cache. Failed
// searches are not cached.
func Cached(p Provider, c Cacher, logger *slog.Logger) Provider {
	if c == nil {
		return p
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &cached{Provider: p, cache: c, logger: logger}
}

func (c *cached) Search(ctx context.Context, query string, limit int) ([]Hit, error) {
	if query == "" {
		return nil, ErrEmptyQuery
	}

	hit := true
	data, err := c.cache.GetSet(ctx, Key(c.Name(), query, limit), func(ctx context.Context) ([]byte, error) {
		hit = false
		hits, err := c.Provider.Search(ctx, query, limit)
		if err != nil {
			return nil, err
		}
		return json.Marshal(hits)
	}, c.cache.TTL())
	if err != nil {
		return nil, err
	}
	if hit {
		c.logger.DebugContext(ctx, "search cache hit", "provider", c.Name(), "query", query)
	}

	var hits []Hit
	if err := json.Unmarshal(data, &hits); err != nil {
		return nil, fmt.Errorf("failed to decode cached hits: %w", err)
	}
	return hits, nil
}
