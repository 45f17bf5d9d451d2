package infra

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

const (
	priceCachePrefix = "price:current:"
	priceCacheTTL    = 60 * time.Second
	priceCacheNone   = "none" // part has no current price — cached negative
)

// PriceCache memoizes current-price lookups in Redis. Failures are logged
// and absorbed: the cache being down must never fail a price lookup.
type PriceCache struct {
	rdb *redis.Client
}

func NewPriceCache(rdb *redis.Client) *PriceCache {
	return &PriceCache{rdb: rdb}
}

// Get returns the cached price and whether the lookup was a hit. A hit with
// a nil price means "no current price" was cached.
func (c *PriceCache) Get(ctx context.Context, partID uuid.UUID) (*decimal.Decimal, bool) {
	val, err := c.rdb.Get(ctx, priceCachePrefix+partID.String()).Result()
	if err != nil {
		if err != redis.Nil {
			log.Warn().Err(err).Str("part", partID.String()).Msg("price_cache: get failed")
		}
		return nil, false
	}
	if val == priceCacheNone {
		return nil, true
	}
	price, err := decimal.NewFromString(val)
	if err != nil {
		log.Warn().Str("part", partID.String()).Str("value", val).Msg("price_cache: corrupt entry")
		return nil, false
	}
	return &price, true
}

// Set stores the resolved price (nil = no current price) with a short TTL.
func (c *PriceCache) Set(ctx context.Context, partID uuid.UUID, price *decimal.Decimal) {
	val := priceCacheNone
	if price != nil {
		val = price.String()
	}
	if err := c.rdb.Set(ctx, priceCachePrefix+partID.String(), val, priceCacheTTL).Err(); err != nil {
		log.Warn().Err(err).Str("part", partID.String()).Msg("price_cache: set failed")
	}
}

// Invalidate drops the cached price after any price history write.
func (c *PriceCache) Invalidate(ctx context.Context, partID uuid.UUID) {
	if err := c.rdb.Del(ctx, priceCachePrefix+partID.String()).Err(); err != nil {
		log.Warn().Err(err).Str("part", partID.String()).Msg("price_cache: invalidate failed")
	}
}
