// Package cache provides Redis-backed caching for hot reads. The cache is
// best-effort: every helper tolerates a missing or unreachable Redis.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"campusfind/internal/middleware"
	"campusfind/internal/observability"

	"github.com/redis/go-redis/v9"
)

var client *redis.Client

// metricsHook counts failed commands per command name. redis.Nil is a cache
// miss, not a failure.
type metricsHook struct{}

func (metricsHook) DialHook(next redis.DialHook) redis.DialHook { return next }

func (metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		countRedisError(cmd.Name(), err)
		return err
	}
}

func (metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		countRedisError("pipeline", err)
		return err
	}
}

func countRedisError(name string, err error) {
	if err != nil && !errors.Is(err, redis.Nil) {
		observability.RedisErrors.WithLabelValues(name).Inc()
	}
}

// redisOptions accepts either a bare host:port or a full redis:// URL.
func redisOptions(addr string) (*redis.Options, error) {
	if strings.Contains(addr, "://") {
		return redis.ParseURL(addr)
	}
	return &redis.Options{Addr: addr}, nil
}

// InitRedis connects the package-level client. Connection problems are
// logged and leave the client nil; callers fall through to the database.
func InitRedis(addr string) {
	opts, err := redisOptions(addr)
	if err != nil {
		middleware.Logger.Warn("Invalid REDIS_URL, continuing without cache",
			slog.String("addr", addr),
			slog.String("error", err.Error()))
		client = nil
		return
	}

	c := redis.NewClient(opts)
	c.AddHook(metricsHook{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := c.Ping(ctx).Err(); err != nil {
		middleware.Logger.Warn("Redis unreachable, continuing without cache",
			slog.String("error", err.Error()))
		client = nil
		return
	}

	middleware.Logger.Info("Redis connected", slog.String("addr", opts.Addr))
	client = c
}

// GetClient returns the current Redis client instance.
func GetClient() *redis.Client { return client }

// SetClient replaces the Redis client. Intended for tests.
func SetClient(c *redis.Client) { client = c }
