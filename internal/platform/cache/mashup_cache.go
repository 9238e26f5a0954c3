package cache

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"cf_mashup/internal/domain/model"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"
)

var ErrCacheMiss = errors.New("cache miss")

// MashupCache is a read-through cache in front of the mashup store.
type MashupCache interface {
	Get(ctx context.Context, id int64) (*model.Mashup, error)
	Set(ctx context.Context, m *model.Mashup) error
}

// cachedMashup is the wire form of a mashup in Redis.
type cachedMashup struct {
	ID        int64               `json:"id"`
	Title     string              `json:"title"`
	Request   model.MashupRequest `json:"request"`
	Problems  []model.Problem     `json:"problems"`
	CreatedAt time.Time           `json:"created_at"`
}

type RedisMashupCache struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisMashupCache(rdb redis.Cmdable, ttl time.Duration) *RedisMashupCache {
	return &RedisMashupCache{rdb: rdb, ttl: ttl}
}

func mashupKey(id int64) string {
	return "mashup:" + strconv.FormatInt(id, 10)
}

func (c *RedisMashupCache) Get(ctx context.Context, id int64) (*model.Mashup, error) {
	data, err := c.rdb.Get(ctx, mashupKey(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrCacheMiss
		}
		return nil, fmt.Errorf("RedisMashupCache.Get: %w", err)
	}

	var cm cachedMashup
	if err := json.Unmarshal(data, &cm); err != nil {
		return nil, fmt.Errorf("RedisMashupCache.Get: decode: %w", err)
	}
	return &model.Mashup{
		ID:        cm.ID,
		Title:     cm.Title,
		Request:   cm.Request,
		Problems:  cm.Problems,
		CreatedAt: cm.CreatedAt,
	}, nil
}

func (c *RedisMashupCache) Set(ctx context.Context, m *model.Mashup) error {
	data, err := json.Marshal(cachedMashup{
		ID:        m.ID,
		Title:     m.Title,
		Request:   m.Request,
		Problems:  m.Problems,
		CreatedAt: m.CreatedAt,
	})
	if err != nil {
		return fmt.Errorf("RedisMashupCache.Set: encode: %w", err)
	}
	if err := c.rdb.Set(ctx, mashupKey(m.ID), data, c.ttl).Err(); err != nil {
		return fmt.Errorf("RedisMashupCache.Set: %w", err)
	}
	return nil
}

// NoopMashupCache is used when Redis is not configured. Every lookup misses.
type NoopMashupCache struct{}

func (NoopMashupCache) Get(context.Context, int64) (*model.Mashup, error) {
	return nil, ErrCacheMiss
}

func (NoopMashupCache) Set(context.Context, *model.Mashup) error {
	return nil
}
