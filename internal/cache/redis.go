package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"

	"github.com/aman-zulfiqar/solana-wallet-history/internal/constants"
	"github.com/aman-zulfiqar/solana-wallet-history/internal/history"
	"github.com/aman-zulfiqar/solana-wallet-history/internal/storage"
)

// RedisCache caches token prices and per-wallet recent events. Prices are
// written twice: a TTL'd fresh key and an un-expiring last-known-good key the
// annotator falls back to when the price API is down.
type RedisCache struct {
	client redis.Cmdable
	logger *logrus.Logger
}

// NewRedisCache creates a cache on an existing Redis client.
func NewRedisCache(client redis.Cmdable, logger *logrus.Logger) (*RedisCache, error) {
	if client == nil {
		return nil, fmt.Errorf("redis client is nil")
	}
	if logger == nil {
		logger = logrus.New()
	}
	return &RedisCache{client: client, logger: logger}, nil
}

// SetPrice stores a price under the fresh and last-known-good keys.
func (r *RedisCache) SetPrice(ctx context.Context, symbol string, price float64) error {
	val := strconv.FormatFloat(price, 'f', -1, 64)

	pipe := r.client.TxPipeline()
	pipe.Set(ctx, constants.RedisKeyPricePrefix+symbol, val, constants.PriceCacheTTL)
	pipe.Set(ctx, constants.RedisKeyPriceLastPrefix+symbol, val, 0)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("set price: %w", err)
	}
	return nil
}

// GetPrice returns the fresh price for a symbol, or storage.ErrPriceNotFound
// once the fresh entry has expired.
func (r *RedisCache) GetPrice(ctx context.Context, symbol string) (float64, error) {
	return r.price(ctx, constants.RedisKeyPricePrefix+symbol)
}

// LastPrice returns the last price ever stored for a symbol.
func (r *RedisCache) LastPrice(ctx context.Context, symbol string) (float64, error) {
	return r.price(ctx, constants.RedisKeyPriceLastPrefix+symbol)
}

func (r *RedisCache) price(ctx context.Context, key string) (float64, error) {
	val, err := r.client.Get(ctx, key).Result()
	if err == redis.Nil {
		return 0, storage.ErrPriceNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("get price: %w", err)
	}
	p, err := strconv.ParseFloat(val, 64)
	if err != nil {
		return 0, fmt.Errorf("parse cached price: %w", err)
	}
	return p, nil
}

// AddRecentEvents prepends events to the wallet's recent list, newest first,
// trimming the list to its cap.
func (r *RedisCache) AddRecentEvents(ctx context.Context, wallet string, events []history.Event) error {
	if len(events) == 0 {
		return nil
	}

	key := constants.RedisKeyRecentPrefix + wallet
	pipe := r.client.TxPipeline()
	// LPUSH in reverse so the newest event ends up at the head.
	for i := len(events) - 1; i >= 0; i-- {
		b, err := json.Marshal(events[i])
		if err != nil {
			return fmt.Errorf("marshal event: %w", err)
		}
		pipe.LPush(ctx, key, b)
	}
	pipe.LTrim(ctx, key, 0, constants.MaxRecentEvents-1)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("add recent events: %w", err)
	}
	return nil
}

// GetRecentEvents returns up to limit recent events for a wallet, newest
// first. Entries that fail to decode are skipped.
func (r *RedisCache) GetRecentEvents(ctx context.Context, wallet string, limit int64) ([]history.Event, error) {
	if limit <= 0 || limit > constants.MaxRecentEvents {
		limit = constants.MaxRecentEvents
	}

	vals, err := r.client.LRange(ctx, constants.RedisKeyRecentPrefix+wallet, 0, limit-1).Result()
	if err != nil {
		return nil, fmt.Errorf("get recent events: %w", err)
	}

	out := make([]history.Event, 0, len(vals))
	for _, v := range vals {
		var ev history.Event
		if err := json.Unmarshal([]byte(v), &ev); err != nil {
			r.logger.WithError(err).Debug("skipping undecodable cached event")
			continue
		}
		out = append(out, ev)
	}
	return out, nil
}

// Ping checks Redis connectivity.
func (r *RedisCache) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}
