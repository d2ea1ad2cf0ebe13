package upstream

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"despesas/internal/model"
)

// CachingFetcher remembers successful fetches for a short TTL so a reconcile
// count check and the backfill that follows it hit the upstream once.
// Failures are never cached.
type CachingFetcher struct {
	next  Fetcher
	cache *gocache.Cache
}

// Forgetter is implemented by fetchers that can drop a remembered period.
type Forgetter interface {
	Forget(p model.Period)
}

var (
	_ Fetcher   = (*CachingFetcher)(nil)
	_ Forgetter = (*CachingFetcher)(nil)
)

// NewCachingFetcher wraps next with an in-memory cache.
func NewCachingFetcher(next Fetcher, ttl time.Duration) *CachingFetcher {
	return &CachingFetcher{
		next:  next,
		cache: gocache.New(ttl, 2*ttl),
	}
}

func (f *CachingFetcher) URL(p model.Period) string { return f.next.URL(p) }

func (f *CachingFetcher) Fetch(ctx context.Context, p model.Period) (*Result, error) {
	key := f.next.URL(p)
	if v, found := f.cache.Get(key); found {
		return v.(*Result), nil
	}
	res, err := f.next.Fetch(ctx, p)
	if err != nil {
		return nil, err
	}
	f.cache.SetDefault(key, res)
	return res, nil
}

// Forget drops the cached entry for p.
func (f *CachingFetcher) Forget(p model.Period) {
	f.cache.Delete(f.next.URL(p))
}
