package geo

import (
	"context"
	"strings"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

const (
	// DefaultCacheTTL bounds how long a fetched list is served from memory.
	DefaultCacheTTL        = 24 * time.Hour
	defaultCacheCleanupInt = time.Hour
)

// CachedProvider memoizes successful lookups of the wrapped provider.
type CachedProvider struct {
	next  Provider
	cache *gocache.Cache
}

func NewCachedProvider(next Provider) *CachedProvider {
	return &CachedProvider{
		next:  next,
		cache: gocache.New(DefaultCacheTTL, defaultCacheCleanupInt),
	}
}

func (c *CachedProvider) Countries(ctx context.Context) ([]Place, error) {
	return c.load("countries", func() ([]Place, error) {
		return c.next.Countries(ctx)
	})
}

func (c *CachedProvider) States(ctx context.Context, countryCode string) ([]Place, error) {
	return c.load("states|"+strings.ToUpper(countryCode), func() ([]Place, error) {
		return c.next.States(ctx, countryCode)
	})
}

func (c *CachedProvider) Cities(ctx context.Context, countryCode, stateCode string) ([]Place, error) {
	key := "cities|" + strings.ToUpper(countryCode) + "|" + strings.ToUpper(stateCode)
	return c.load(key, func() ([]Place, error) {
		return c.next.Cities(ctx, countryCode, stateCode)
	})
}

// load returns a copy of the cached list or fetches and stores it. Errors are
// not cached.
func (c *CachedProvider) load(key string, fetch func() ([]Place, error)) ([]Place, error) {
	if cached, ok := c.cache.Get(key); ok {
		return clonePlaces(cached.([]Place)), nil
	}

	places, err := fetch()
	if err != nil {
		return nil, err
	}
	c.cache.SetDefault(key, clonePlaces(places))
	return places, nil
}

func clonePlaces(in []Place) []Place {
	out := make([]Place, len(in))
	copy(out, in)
	return out
}
