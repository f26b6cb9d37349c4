package catalog

import (
	"context"
	"io"
	"log"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/andreasstove999/ecommerce-system/marketplace-cart-go/internal/cart"
)

type countingCatalog struct {
	mu       sync.Mutex
	products map[string]cart.Product
	asked    [][]string
}

func (c *countingCatalog) Products(_ context.Context, ids []string) (map[string]cart.Product, error) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.asked = append(c.asked, append([]string(nil), ids...))
	out := map[string]cart.Product{}
	for _, id := range ids {
		if p, ok := c.products[id]; ok {
			out[id] = p
		}
	}
	return out, nil
}

func getRedisClient(t *testing.T) *redis.Client {
	addr := os.Getenv("REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}

	client := redis.NewClient(&redis.Options{Addr: addr})
	if err := client.Ping(context.Background()).Err(); err != nil {
		t.Skipf("Redis not available: %v", err)
	}
	return client
}

func TestCachedCatalog_ReadThrough(t *testing.T) {
	client := getRedisClient(t)
	defer client.Close()

	ctx := context.Background()
	client.Del(ctx, productKeyPrefix+"cache-p1", productKeyPrefix+"cache-p2")

	next := &countingCatalog{products: map[string]cart.Product{
		"cache-p1": {ID: "cache-p1", Name: "Shirt", Price: decimal.RequireFromString("19.99"), StoreName: "Acme"},
	}}
	c := NewCachedCatalog(client, next, time.Minute, log.New(io.Discard, "", 0))

	first, err := c.Products(ctx, []string{"cache-p1", "cache-p2"})
	require.NoError(t, err)
	assert.Len(t, first, 1)

	second, err := c.Products(ctx, []string{"cache-p1", "cache-p2"})
	require.NoError(t, err)
	require.Len(t, second, 1)
	assert.Equal(t, "19.99", second["cache-p1"].Price.String())

	assert.Equal(t, [][]string{{"cache-p1", "cache-p2"}, {"cache-p2"}}, next.asked)

	require.NoError(t, c.Invalidate(ctx, "cache-p1"))
	_, err = c.Products(ctx, []string{"cache-p1"})
	require.NoError(t, err)
	assert.Len(t, next.asked, 3)
}

func TestCachedCatalog_FallsBackWhenRedisDown(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1", MaxRetries: -1, DialTimeout: 200 * time.Millisecond})
	defer client.Close()

	next := &countingCatalog{products: map[string]cart.Product{"p1": {ID: "p1", StoreName: "Acme"}}}
	c := NewCachedCatalog(client, next, time.Minute, log.New(io.Discard, "", 0))

	got, err := c.Products(context.Background(), []string{"p1"})
	require.NoError(t, err)
	assert.Equal(t, "Acme", got["p1"].StoreName)
}
