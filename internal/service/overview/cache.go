package overview

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"projecttracker/internal/model"
	"projecttracker/pkg/circuitbreaker"
	"projecttracker/pkg/metrics"
)

const (
	treeCacheKey       = "projecttracker:overview"
	generationCacheKey = "projecttracker:overview:gen"
)

// TreeCache 缓存组装好的项目树
// 每次 Invalidate 递增代数；Set 只在代数与读取时一致时写入，
// 构建期间发生的失效会让这次写入被丢弃
type TreeCache interface {
	// Get 返回缓存的树（未命中为 nil）以及当前代数
	Get(ctx context.Context) (*model.Overview, int64, error)
	// Set 代数已变化时不写入，返回 (false, nil)
	Set(ctx context.Context, gen int64, o *model.Overview) (bool, error)
	Invalidate(ctx context.Context) error
}

// NoopCache 不缓存
type NoopCache struct{}

func (NoopCache) Get(context.Context) (*model.Overview, int64, error) { return nil, 0, nil }

func (NoopCache) Set(context.Context, int64, *model.Overview) (bool, error) { return true, nil }

func (NoopCache) Invalidate(context.Context) error { return nil }

// RedisCache 基于 Redis 单 key 的 JSON 缓存
// Get/Set 经过熔断器，Redis 连续失败后短时间内直接跳过缓存
type RedisCache struct {
	rdb     *redis.Client
	ttl     time.Duration
	breaker *circuitbreaker.Breaker
}

type RedisCacheOption func(*RedisCache)

// WithBreaker 替换默认熔断器
func WithBreaker(b *circuitbreaker.Breaker) RedisCacheOption {
	return func(c *RedisCache) {
		if b != nil {
			c.breaker = b
		}
	}
}

func NewRedisCache(rdb *redis.Client, ttl time.Duration, opts ...RedisCacheOption) *RedisCache {
	if ttl <= 0 {
		ttl = time.Minute
	}
	c := &RedisCache{rdb: rdb, ttl: ttl}
	for _, opt := range opts {
		opt(c)
	}
	if c.breaker == nil {
		c.breaker = NewCacheBreaker(nil)
	}
	return c
}

// NewCacheBreaker 缓存使用的熔断器，状态变化写入指标和日志
func NewCacheBreaker(logger *zap.Logger) *circuitbreaker.Breaker {
	if logger == nil {
		logger = zap.NewNop()
	}
	cfg := circuitbreaker.DefaultConfig()
	cfg.OnStateChange = func(from, to circuitbreaker.State) {
		metrics.SetCacheBreakerState(int(to))
		logger.Warn("Overview cache breaker state changed",
			zap.String("from", from.String()),
			zap.String("to", to.String()),
		)
	}
	return circuitbreaker.New(cfg)
}

func (c *RedisCache) Get(ctx context.Context) (*model.Overview, int64, error) {
	var vals []any
	err := c.breaker.Execute(ctx, func(ctx context.Context) error {
		var err error
		vals, err = c.rdb.MGet(ctx, treeCacheKey, generationCacheKey).Result()
		return err
	})
	if err != nil {
		return nil, 0, err
	}

	gen, err := parseGeneration(vals[1])
	if err != nil {
		return nil, 0, err
	}
	raw, ok := vals[0].(string)
	if !ok {
		return nil, gen, nil
	}

	var o model.Overview
	if err := json.Unmarshal([]byte(raw), &o); err != nil {
		return nil, gen, err
	}
	return &o, gen, nil
}

func parseGeneration(v any) (int64, error) {
	s, ok := v.(string)
	if !ok {
		return 0, nil
	}
	gen, err := strconv.ParseInt(s, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid cache generation %q: %w", s, err)
	}
	return gen, nil
}

// Set 用 WATCH 保证检查代数和写入之间没有失效插入
func (c *RedisCache) Set(ctx context.Context, gen int64, o *model.Overview) (bool, error) {
	raw, err := json.Marshal(o)
	if err != nil {
		return false, err
	}

	written := false
	err = c.breaker.Execute(ctx, func(ctx context.Context) error {
		err := c.rdb.Watch(ctx, func(tx *redis.Tx) error {
			cur, err := tx.Get(ctx, generationCacheKey).Int64()
			if err != nil && !errors.Is(err, redis.Nil) {
				return err
			}
			if cur != gen {
				return nil
			}
			_, err = tx.TxPipelined(ctx, func(p redis.Pipeliner) error {
				p.Set(ctx, treeCacheKey, raw, c.ttl)
				return nil
			})
			if err == nil {
				written = true
			}
			return err
		}, generationCacheKey)
		if errors.Is(err, redis.TxFailedErr) {
			return nil
		}
		return err
	})
	return written, err
}

// Invalidate 不经过熔断器，写操作之后总是尝试递增代数并删除
func (c *RedisCache) Invalidate(ctx context.Context) error {
	_, err := c.rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		p.Incr(ctx, generationCacheKey)
		p.Del(ctx, treeCacheKey)
		return nil
	})
	return err
}
