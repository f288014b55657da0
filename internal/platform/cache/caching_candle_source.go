// Package cache provides caching decorators for candle sources.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Kaligetsagency/aifx/internal/feature/candles/domain/entity"
	"github.com/Kaligetsagency/aifx/internal/feature/candles/usecase"
)

// Lookup results reported to a LookupRecorder.
const (
	LookupHit     = "hit"
	LookupMiss    = "miss"
	LookupCorrupt = "corrupt"
	LookupError   = "error"
)

// LookupRecorder receives the outcome of every cache lookup.
type LookupRecorder interface {
	ObserveCacheLookup(result string)
}

type nopRecorder struct{}

func (nopRecorder) ObserveCacheLookup(string) {}

// CachingCandleSource decorates a CandleSource with Redis caching.
// A cached page lives until the next candle boundary of its granularity,
// so a repeated request within the same candle skips the upstream call.
type CachingCandleSource struct {
	inner     usecase.CandleSource
	rdb       *redis.Client
	namespace string
	recorder  LookupRecorder
	now       func() time.Time
}

var _ usecase.CandleSource = (*CachingCandleSource)(nil)

// NewCachingCandleSource decorates a CandleSource with Redis caching.
// If namespace is empty, it uses "candles". A nil recorder discards lookups.
func NewCachingCandleSource(rdb *redis.Client, inner usecase.CandleSource, namespace string, recorder LookupRecorder) *CachingCandleSource {
	if namespace == "" {
		namespace = "candles"
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	return &CachingCandleSource{
		inner:     inner,
		rdb:       rdb,
		namespace: namespace,
		recorder:  recorder,
		now:       time.Now,
	}
}

// FetchCandles retrieves candles, checking cache first then falling back to the inner source.
func (c *CachingCandleSource) FetchCandles(ctx context.Context, symbol string, granularity, count int) ([]entity.Candle, error) {
	// Bypass cache if Redis is not configured
	if c.rdb == nil {
		return c.inner.FetchCandles(ctx, symbol, granularity, count)
	}

	key := c.cacheKey(symbol, granularity, count)

	// 1) Check cache
	b, err := c.rdb.Get(ctx, key).Bytes()
	switch {
	case err == nil && len(b) > 0:
		var out []entity.Candle
		if err := json.Unmarshal(b, &out); err == nil && len(out) > 0 {
			c.recorder.ObserveCacheLookup(LookupHit)
			return out, nil
		}
		// Delete corrupted cache entry
		c.recorder.ObserveCacheLookup(LookupCorrupt)
		_ = c.rdb.Del(ctx, key).Err()
	case err != nil && !errors.Is(err, redis.Nil):
		c.recorder.ObserveCacheLookup(LookupError)
		slog.Warn("candle cache lookup failed", "key", key, "error", err)
	default:
		c.recorder.ObserveCacheLookup(LookupMiss)
	}

	// 2) Fallback to the upstream source
	out, err := c.inner.FetchCandles(ctx, symbol, granularity, count)
	if err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return out, nil
	}

	// 3) Store in cache (best effort)
	if b, err := json.Marshal(out); err == nil {
		if err := c.rdb.Set(ctx, key, b, candleTTL(c.now(), granularity)).Err(); err != nil {
			slog.Warn("candle cache store failed", "key", key, "error", err)
		}
	}

	return out, nil
}

// cacheKey generates a cache key for a specific query.
func (c *CachingCandleSource) cacheKey(symbol string, granularity, count int) string {
	return fmt.Sprintf("%s:%s:%d:%d",
		c.namespace,
		safe(symbol),
		granularity,
		count,
	)
}

// safe escapes characters that are problematic for Redis keys.
func safe(s string) string {
	s = strings.ReplaceAll(s, " ", "_")
	s = strings.ReplaceAll(s, ":", "_")
	return s
}
