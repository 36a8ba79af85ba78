// Package cache provides Redis caching utilities for the application.
package cache

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"tradepost/internal/middleware"

	"github.com/redis/go-redis/v9"
	"github.com/redis/go-redis/v9/maintnotifications"
)

var client *redis.Client

type metricsHook struct{}

func (h metricsHook) DialHook(next redis.DialHook) redis.DialHook {
	return next
}

func (h metricsHook) ProcessHook(next redis.ProcessHook) redis.ProcessHook {
	return func(ctx context.Context, cmd redis.Cmder) error {
		err := next(ctx, cmd)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues(cmd.Name()).Inc()
		}
		return err
	}
}

func (h metricsHook) ProcessPipelineHook(next redis.ProcessPipelineHook) redis.ProcessPipelineHook {
	return func(ctx context.Context, cmds []redis.Cmder) error {
		err := next(ctx, cmds)
		if err != nil && !errors.Is(err, redis.Nil) {
			middleware.RedisErrors.WithLabelValues("pipeline").Inc()
		}
		return err
	}
}

// InitRedis connects to addr (host:port or redis:// URL). An empty address or
// a failed ping leaves the client nil and the application runs without Redis.
func InitRedis(addr string) *redis.Client {
	client = nil
	if addr == "" {
		middleware.Logger.Info("REDIS_URL not set; running without cache, revocation and redis events")
		return nil
	}

	var opts *redis.Options
	if strings.Contains(addr, "://") {
		parsed, err := redis.ParseURL(addr)
		if err != nil {
			middleware.Logger.Warn("invalid REDIS_URL, continuing without cache", slog.String("error", err.Error()))
			return nil
		}
		opts = parsed
	} else {
		opts = &redis.Options{Addr: addr}
	}
	// Servers without CLIENT MAINT_NOTIFICATIONS reject the handshake.
	opts.MaintNotificationsConfig = &maintnotifications.Config{Mode: maintnotifications.ModeDisabled}

	rdb := redis.NewClient(opts)
	rdb.AddHook(metricsHook{})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := rdb.Ping(ctx).Err(); err != nil {
		middleware.Logger.Warn("Redis connection failed, continuing without cache", slog.String("error", err.Error()))
		_ = rdb.Close()
		return nil
	}

	middleware.Logger.Info("Redis connected successfully")
	client = rdb
	return client
}

// SetClient replaces the package client. Passing nil disables caching.
func SetClient(rdb *redis.Client) {
	client = rdb
}

// GetClient returns the current Redis client instance.
func GetClient() *redis.Client {
	return client
}
