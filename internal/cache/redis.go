package cache

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "getlocalbuddy:"
	redisGenPrefix = redisKeyPrefix + "gen:"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// Redis is a Store shared across API instances. Failures degrade to misses.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
}

// DialRedis connects and pings; the caller falls back to New on error.
func DialRedis(ctx context.Context, cfg RedisConfig, ttl time.Duration) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, err
	}

	return NewRedis(rdb, ttl), nil
}

func NewRedis(rdb *redis.Client, ttl time.Duration) *Redis {
	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Redis{rdb: rdb, ttl: ttl}
}

func (r *Redis) Close() error {
	return r.rdb.Close()
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.rdb.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if !errors.Is(err, redis.Nil) {
			slog.WarnContext(ctx, "cache get failed", "key", key, "err", err)
		}
		return nil, false
	}

	return val, true
}

func (r *Redis) Set(ctx context.Context, key string, val []byte) {
	if err := r.rdb.Set(ctx, redisKeyPrefix+key, val, r.ttl).Err(); err != nil {
		slog.WarnContext(ctx, "cache set failed", "key", key, "err", err)
	}
}

// Generation reports false when redis cannot answer; callers then bypass the cache.
func (r *Redis) Generation(ctx context.Context, name string) (int64, bool) {
	gen, err := r.rdb.Get(ctx, redisGenPrefix+name).Int64()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return 0, true
		}
		slog.WarnContext(ctx, "cache generation read failed", "name", name, "err", err)
		return 0, false
	}

	return gen, true
}

func (r *Redis) Bump(ctx context.Context, name string) {
	if err := r.rdb.Incr(ctx, redisGenPrefix+name).Err(); err != nil {
		slog.WarnContext(ctx, "cache generation bump failed", "name", name, "err", err)
	}
}
