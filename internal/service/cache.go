package service

import (
	"context"
	"encoding/json"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
)

const (
	precioCachePrefix = "precio:"
	precioCacheTTL    = 4 * time.Hour

	reporteCachePrefix = "reportes:"
	reporteCacheTTL    = 30 * time.Second
)

// jsonCache is a best-effort Redis cache of JSON values. A nil client turns
// every call into a miss/no-op; Redis errors are logged and swallowed.
type jsonCache struct {
	rdb    *redis.Client
	prefix string
	ttl    time.Duration
}

func newJSONCache(rdb *redis.Client, prefix string, ttl time.Duration) *jsonCache {
	return &jsonCache{rdb: rdb, prefix: prefix, ttl: ttl}
}

func (c *jsonCache) get(ctx context.Context, key string, dst any) bool {
	if c == nil || c.rdb == nil {
		return false
	}
	raw, err := c.rdb.Get(ctx, c.prefix+key).Bytes()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("key", c.prefix+key).Msg("cache: get failed")
		}
		return false
	}
	return json.Unmarshal(raw, dst) == nil
}

func (c *jsonCache) set(ctx context.Context, key string, v any) {
	if c == nil || c.rdb == nil {
		return
	}
	data, err := json.Marshal(v)
	if err != nil {
		return
	}
	if err := c.rdb.Set(ctx, c.prefix+key, data, c.ttl).Err(); err != nil {
		log.Warn().Err(err).Str("key", c.prefix+key).Msg("cache: set failed")
	}
}

func (c *jsonCache) del(ctx context.Context, keys ...string) {
	if c == nil || c.rdb == nil || len(keys) == 0 {
		return
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			full = append(full, c.prefix+k)
		}
	}
	if len(full) == 0 {
		return
	}
	if err := c.rdb.Del(ctx, full...).Err(); err != nil {
		log.Warn().Err(err).Strs("keys", full).Msg("cache: invalidate failed")
	}
}

// ResumenCache holds the /reports summary counters. Services that move
// stock drop it after commit so the dashboard never trails a sale.
type ResumenCache struct{ c *jsonCache }

const resumenKey = "resumen"

func NewResumenCache(rdb *redis.Client) *ResumenCache {
	return &ResumenCache{c: newJSONCache(rdb, reporteCachePrefix, reporteCacheTTL)}
}

func (r *ResumenCache) get(ctx context.Context, dst any) bool {
	if r == nil {
		return false
	}
	return r.c.get(ctx, resumenKey, dst)
}

func (r *ResumenCache) set(ctx context.Context, v any) {
	if r != nil {
		r.c.set(ctx, resumenKey, v)
	}
}

// Invalidate drops the cached summary.
func (r *ResumenCache) Invalidate(ctx context.Context) {
	if r != nil {
		r.c.del(ctx, resumenKey)
	}
}

// PrecioCache caches barcode price lookups. Shared by the product, stock
// and sale services so every stock or price change invalidates it.
type PrecioCache struct{ c *jsonCache }

func NewPrecioCache(rdb *redis.Client) *PrecioCache {
	return &PrecioCache{c: newJSONCache(rdb, precioCachePrefix, precioCacheTTL)}
}

func (p *PrecioCache) get(ctx context.Context, barcode string, dst any) bool {
	if p == nil {
		return false
	}
	return p.c.get(ctx, barcode, dst)
}

func (p *PrecioCache) set(ctx context.Context, barcode string, v any) {
	if p != nil {
		p.c.set(ctx, barcode, v)
	}
}

// Invalidate drops the cached entries of the given barcodes; nil and empty
// barcodes are ignored.
func (p *PrecioCache) Invalidate(ctx context.Context, barcodes ...*string) {
	if p == nil {
		return
	}
	keys := make([]string, 0, len(barcodes))
	for _, b := range barcodes {
		if b != nil && *b != "" {
			keys = append(keys, *b)
		}
	}
	p.c.del(ctx, keys...)
}
