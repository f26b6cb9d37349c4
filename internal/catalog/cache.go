package catalog

import (
	"context"
	"encoding/json"
	"log"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/cart"
)

const productKeyPrefix = "catalog:product:"

// CachedCatalog is a read-through Redis cache in front of another catalog.
// Redis failures fall back to the underlying catalog.
type CachedCatalog struct {
	client redis.Cmdable
	next   cart.Catalog
	ttl    time.Duration
	logger *log.Logger
}

func NewCachedCatalog(client redis.Cmdable, next cart.Catalog, ttl time.Duration, logger *log.Logger) *CachedCatalog {
	return &CachedCatalog{client: client, next: next, ttl: ttl, logger: logger}
}

func (c *CachedCatalog) Products(ctx context.Context, ids []string) (map[string]cart.Product, error) {
	out := make(map[string]cart.Product, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	misses := c.fromCache(ctx, ids, out)
	if len(misses) == 0 {
		return out, nil
	}

	found, err := c.next.Products(ctx, misses)
	if err != nil {
		return nil, err
	}
	for id, p := range found {
		out[id] = p
	}
	c.store(ctx, found)
	return out, nil
}

// Invalidate drops cached snapshots, e.g. after a product edit.
func (c *CachedCatalog) Invalidate(ctx context.Context, ids ...string) error {
	if len(ids) == 0 {
		return nil
	}
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productKeyPrefix + id
	}
	return c.client.Del(ctx, keys...).Err()
}

func (c *CachedCatalog) fromCache(ctx context.Context, ids []string, out map[string]cart.Product) []string {
	keys := make([]string, len(ids))
	for i, id := range ids {
		keys[i] = productKeyPrefix + id
	}

	vals, err := c.client.MGet(ctx, keys...).Result()
	if err != nil {
		c.logger.Printf("catalog cache read: %v", err)
		return ids
	}

	var misses []string
	for i, v := range vals {
		s, ok := v.(string)
		if !ok {
			misses = append(misses, ids[i])
			continue
		}
		var p cart.Product
		if err := json.Unmarshal([]byte(s), &p); err != nil {
			misses = append(misses, ids[i])
			continue
		}
		out[ids[i]] = p
	}
	return misses
}

func (c *CachedCatalog) store(ctx context.Context, products map[string]cart.Product) {
	if len(products) == 0 {
		return
	}
	_, err := c.client.Pipelined(ctx, func(pipe redis.Pipeliner) error {
		for id, p := range products {
			raw, err := json.Marshal(p)
			if err != nil {
				return err
			}
			pipe.Set(ctx, productKeyPrefix+id, raw, c.ttl)
		}
		return nil
	})
	if err != nil {
		c.logger.Printf("catalog cache write: %v", err)
	}
}
