// Package cache provides a Redis read-through cache in front of a catalog.
package cache

import (
	"context"
	"encoding/json"
	"strconv"
	"time"

	"github.com/go-faster/errors"
	"github.com/go-redis/redis/v8"

	"github.com/fairyhunter13/inventory-cart-service/internal/model"
	"github.com/fairyhunter13/inventory-cart-service/internal/obs"
	"github.com/fairyhunter13/inventory-cart-service/internal/store"
)

// Catalog caches single-product reads. Writes go to the wrapped catalog
// first and then drop the cached copy; Redis failures are logged and never
// fail the call.
type Catalog struct {
	store.Catalog
	rdb *redis.Client
	ttl time.Duration
}

// NewRedisClient connects to addr and verifies it with a bounded ping.
func NewRedisClient(ctx context.Context, addr string) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{Addr: addr})
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, errors.Wrap(err, "connect to redis")
	}
	obs.Logger.Info("redis_connected", "addr", addr)
	return rdb, nil
}

// New wraps next with a cache kept in rdb.
func New(next store.Catalog, rdb *redis.Client, ttl time.Duration) *Catalog {
	return &Catalog{Catalog: next, rdb: rdb, ttl: ttl}
}

func key(id int64) string { return "produto:" + strconv.FormatInt(id, 10) }

// genKey counts writes to a product. A read only fills the cache when the
// count is unchanged since before it went to the store.
func genKey(id int64) string { return key(id) + ":gen" }

var errStaleFill = errors.New("product written during read")

func (c *Catalog) Get(ctx context.Context, id int64) (model.Product, error) {
	raw, err := c.rdb.Get(ctx, key(id)).Bytes()
	switch {
	case err == nil:
		var p model.Product
		if jerr := json.Unmarshal(raw, &p); jerr == nil {
			return p, nil
		}
		obs.Logger.Warn("cache_decode_error", "product_id", id)
	case !errors.Is(err, redis.Nil):
		obs.Logger.Warn("cache_get_error", "product_id", id, "error", err)
	}

	gen, gerr := c.rdb.Get(ctx, genKey(id)).Int64()
	if gerr != nil && !errors.Is(gerr, redis.Nil) {
		obs.Logger.Warn("cache_get_error", "product_id", id, "error", gerr)
	}

	p, err := c.Catalog.Get(ctx, id)
	if err != nil {
		return p, err
	}
	if gerr == nil || errors.Is(gerr, redis.Nil) {
		c.fill(ctx, p, gen)
	}
	return p, nil
}

// fill stores p unless a write bumped the generation after gen was read.
func (c *Catalog) fill(ctx context.Context, p model.Product, gen int64) {
	b, err := json.Marshal(p)
	if err != nil {
		return
	}
	err = c.rdb.Watch(ctx, func(tx *redis.Tx) error {
		cur, err := tx.Get(ctx, genKey(p.ID)).Int64()
		if err != nil && !errors.Is(err, redis.Nil) {
			return err
		}
		if cur != gen {
			return errStaleFill
		}
		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Set(ctx, key(p.ID), b, c.ttl)
			return nil
		})
		return err
	}, genKey(p.ID))
	switch {
	case err == nil:
	case errors.Is(err, errStaleFill), errors.Is(err, redis.TxFailedErr):
		obs.Logger.Debug("cache_fill_skipped", "product_id", p.ID)
	default:
		obs.Logger.Warn("cache_set_error", "product_id", p.ID, "error", err)
	}
}

func (c *Catalog) Update(ctx context.Context, id int64, name string, price float64) (model.Product, error) {
	p, err := c.Catalog.Update(ctx, id, name, price)
	c.evict(ctx, id)
	return p, err
}

func (c *Catalog) Delete(ctx context.Context, id int64) error {
	err := c.Catalog.Delete(ctx, id)
	c.evict(ctx, id)
	return err
}

func (c *Catalog) AdjustQuantity(ctx context.Context, id int64, delta int64) (model.Product, error) {
	p, err := c.Catalog.AdjustQuantity(ctx, id, delta)
	c.evict(ctx, id)
	return p, err
}

// Ping checks the wrapped catalog only; Redis is optional.
func (c *Catalog) Ping(ctx context.Context) error {
	return c.Catalog.Ping(ctx)
}

// evict bumps the generation and drops the cached copy in one transaction.
func (c *Catalog) evict(ctx context.Context, id int64) {
	_, err := c.rdb.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Incr(ctx, genKey(id))
		pipe.Del(ctx, key(id))
		return nil
	})
	if err != nil {
		obs.Logger.Warn("cache_evict_error", "product_id", id, "error", err)
	}
}
