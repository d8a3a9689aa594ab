// Package cache provides a Redis read-through cache for issued invoices.
// Invoices never change after creation, so entries are only expired by TTL.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/DylanJC13/movil-2/internal/services"
	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

const DefaultTTL = 10 * time.Minute

// loadTimeout bounds a shared database load on a miss.
const loadTimeout = 10 * time.Second

// InvoiceCache decorates an invoice service; only GetInvoiceByID is cached.
type InvoiceCache struct {
	services.Invoices

	rdb   redis.Cmdable
	ttl   time.Duration
	group singleflight.Group
}

var _ services.Invoices = (*InvoiceCache)(nil)

func NewInvoiceCache(next services.Invoices, rdb redis.Cmdable, ttl time.Duration) *InvoiceCache {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &InvoiceCache{Invoices: next, rdb: rdb, ttl: ttl}
}

func Key(id uint) string {
	return fmt.Sprintf("invoice:%d", id)
}

// GetInvoiceByID serves from Redis and falls back to the wrapped service on
// a miss or on any cache failure. Concurrent misses share one load; a
// caller that gives up only abandons its own wait.
func (c *InvoiceCache) GetInvoiceByID(ctx context.Context, id uint) (*services.InvoiceView, error) {
	key := Key(id)

	raw, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		var v services.InvoiceView
		if err := json.Unmarshal(raw, &v); err == nil {
			return &v, nil
		}
		log.Printf("[CACHE] discarding unreadable entry %s", key)
	case !errors.Is(err, redis.Nil):
		log.Printf("[CACHE] get %s: %v", key, err)
	}

	ch := c.group.DoChan(key, func() (any, error) {
		// shared by every waiter and detached from the first caller
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		inv, err := c.Invoices.GetInvoiceByID(loadCtx, id)
		if err != nil {
			return nil, err
		}
		body, err := json.Marshal(inv)
		if err != nil {
			log.Printf("[CACHE] encode %s: %v", key, err)
			return inv, nil
		}
		if err := c.rdb.Set(loadCtx, key, body, c.ttl).Err(); err != nil {
			log.Printf("[CACHE] set %s: %v", key, err)
		}
		return inv, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*services.InvoiceView), nil
	}
}
