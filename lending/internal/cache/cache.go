package cache

import (
	"fmt"
	"time"

	"github.com/dgraph-io/ristretto/v2"
	"go.uber.org/zap"

	"github.com/bookhive/lending-service/lending/internal/model"
)

const defaultTTL = time.Minute

// CatalogCache memoizes catalog listings per filter tuple. Any mutation of
// the catalog invalidates the whole key space at once instead of guessing
// individual keys.
type CatalogCache struct {
	cache *ristretto.Cache[string, model.ListBooks]
	ttl   time.Duration
	log   *zap.Logger
}

func New(log *zap.Logger) (*CatalogCache, error) {
	c, err := ristretto.NewCache(&ristretto.Config[string, model.ListBooks]{
		NumCounters: 1e4,
		MaxCost:     1 << 20,
		BufferItems: 64,
	})
	if err != nil {
		return nil, err
	}
	return &CatalogCache{
		cache: c,
		ttl:   defaultTTL,
		log:   log.Named("cache"),
	}, nil
}

func Key(f model.BookFilter) string {
	return fmt.Sprintf("title=%s&author=%s&page=%d&limit=%d", f.Title, f.Author, f.Page, f.Limit)
}

func (c *CatalogCache) Get(f model.BookFilter) (model.ListBooks, bool) {
	return c.cache.Get(Key(f))
}

func (c *CatalogCache) Set(f model.BookFilter, list model.ListBooks) {
	c.cache.SetWithTTL(Key(f), list, 1, c.ttl)
	// make the write visible to the next request
	c.cache.Wait()
}

func (c *CatalogCache) Invalidate() {
	c.cache.Clear()
	c.log.Debug("catalog cache invalidated")
}

func (c *CatalogCache) Close() {
	c.cache.Close()
}
