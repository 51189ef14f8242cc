package articles

import (
	"context"
	"encoding/json"
	"time"

	"github.com/as-electrica/storefront-backend/pkg/db/models"
)

const cacheScope = "article"

type cacheStore interface {
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Get(ctx context.Context, key string) (string, error)
	CacheKey(scope, id string) string
}

type nilChecker func(error) bool

// Cache keeps rendered articles in Redis for the configured TTL. Misses and
// transport errors both fall through to the database.
type Cache struct {
	store cacheStore
	isNil nilChecker
	ttl   time.Duration
}

// NewCache constructs the article cache.
func NewCache(store cacheStore, isNil nilChecker, ttl time.Duration) *Cache {
	return &Cache{store: store, isNil: isNil, ttl: ttl}
}

// Get returns the cached article for slug, or nil on a miss.
func (c *Cache) Get(ctx context.Context, slug string) (*models.Article, error) {
	raw, err := c.store.Get(ctx, c.store.CacheKey(cacheScope, slug))
	if err != nil {
		if c.isNil(err) {
			return nil, nil
		}
		return nil, err
	}
	var article models.Article
	if err := json.Unmarshal([]byte(raw), &article); err != nil {
		return nil, err
	}
	return &article, nil
}

// Put stores the article under its slug for the cache TTL.
func (c *Cache) Put(ctx context.Context, article *models.Article) error {
	raw, err := json.Marshal(article)
	if err != nil {
		return err
	}
	return c.store.Set(ctx, c.store.CacheKey(cacheScope, article.Slug), string(raw), c.ttl)
}
