package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/pokemon-tcg/pkg/logger"
	"github.com/redis/go-redis/v9"
)

const cacheKeyPrefix = "catalog:card:"

// cacheClient is the part of *redis.Client the cache uses
type cacheClient interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
}

// CachedCatalog keeps card details in Redis so repeated detail views do not
// hit the upstream API. Search results are always fetched live. A Redis
// failure never fails the request; the upstream answer is used instead.
type CachedCatalog struct {
	next  Catalog
	redis cacheClient
	ttl   time.Duration
}

// NewCachedCatalog wraps next with a read-through detail cache
func NewCachedCatalog(next Catalog, redisClient cacheClient, ttl time.Duration) *CachedCatalog {
	return &CachedCatalog{
		next:  next,
		redis: redisClient,
		ttl:   ttl,
	}
}

// SearchByName implements Catalog
func (c *CachedCatalog) SearchByName(ctx context.Context, query string) (*CardIterator, error) {
	return c.next.SearchByName(ctx, query)
}

// FetchByID implements Catalog
func (c *CachedCatalog) FetchByID(ctx context.Context, id string) (*CardDetail, error) {
	if err := ValidateID(id); err != nil {
		return nil, err
	}

	key := cacheKeyPrefix + id

	data, err := c.redis.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var card CardDetail
		if jsonErr := json.Unmarshal(data, &card); jsonErr == nil {
			return &card, nil
		}
		logger.Warn("[CatalogCache] Dropping undecodable entry %s", key)
	case !errors.Is(err, redis.Nil):
		logger.Error("[CatalogCache] Failed to read %s: %v", key, err)
	}

	card, err := c.next.FetchByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if data, err := json.Marshal(card); err == nil {
		if err := c.redis.Set(ctx, key, data, c.ttl).Err(); err != nil {
			logger.Error("[CatalogCache] Failed to store %s: %v", key, err)
		}
	}

	return card, nil
}
