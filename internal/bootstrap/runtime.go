// Package bootstrap assembles the runtime collaborators shared by the
// command-line entry points.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"log"

	"tradepost/internal/cache"
	"tradepost/internal/config"
	"tradepost/internal/database"
	"tradepost/internal/notifications"
	"tradepost/internal/observability"
	"tradepost/internal/seed"
	"tradepost/internal/server"
	"tradepost/internal/translation"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Options control runtime initialization behavior.
type Options struct {
	SeedDemo bool
}

// Runtime holds initialized dependencies and the functions that release them.
type Runtime struct {
	DB         *gorm.DB
	Redis      *redis.Client
	Translator *translation.Translator
	Events     notifications.Publisher

	closers []func(context.Context) error
}

// Deps returns the server dependencies backed by this runtime.
func (r *Runtime) Deps() server.Deps {
	return server.Deps{
		DB:         r.DB,
		Redis:      r.Redis,
		Translator: r.Translator,
		Events:     r.Events,
	}
}

func (r *Runtime) onClose(fn func(context.Context) error) {
	r.closers = append(r.closers, fn)
}

// Close releases resources in reverse order of acquisition.
func (r *Runtime) Close(ctx context.Context) error {
	var errs []error
	for i := len(r.closers) - 1; i >= 0; i-- {
		if err := r.closers[i](ctx); err != nil {
			errs = append(errs, err)
		}
	}
	r.closers = nil
	return errors.Join(errs...)
}

// InitRuntime connects to the database and Redis, migrates the schema and
// builds the translator and event publisher described by cfg.
func InitRuntime(ctx context.Context, cfg *config.Config, opts Options) (*Runtime, error) {
	rt := &Runtime{}

	shutdownTracing, err := observability.InitTracing(observability.TracingConfig{
		ServiceName:    "tradepost-api",
		ServiceVersion: "1.0.0",
		Environment:    cfg.Env,
		Enabled:        cfg.TracingEnabled,
		Exporter:       cfg.TracingExporter,
		OTLPEndpoint:   cfg.OTLPEndpoint,
		SamplerRatio:   cfg.TracingSampleRatio,
	})
	if err != nil {
		return nil, fmt.Errorf("tracing init failed: %w", err)
	}
	rt.onClose(shutdownTracing)

	db, err := database.Connect(cfg)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("database connection failed: %w", err)
	}
	rt.DB = db
	rt.onClose(func(context.Context) error {
		sqlDB, err := db.DB()
		if err != nil {
			return err
		}
		return sqlDB.Close()
	})

	if err := database.Migrate(db); err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}

	if opts.SeedDemo {
		if _, err := seed.Demo(db); err != nil {
			_ = rt.Close(ctx)
			return nil, fmt.Errorf("failed to seed demo data: %w", err)
		}
	}

	// Redis is optional; a nil client disables caching, rate limits and revocation.
	rt.Redis = cache.InitRedis(cfg.RedisURL)
	if rt.Redis != nil {
		rdb := rt.Redis
		rt.onClose(func(context.Context) error {
			cache.SetClient(nil)
			return rdb.Close()
		})
	}

	events, closeEvents, err := newPublisher(cfg, rt.Redis)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, err
	}
	rt.Events = events
	rt.onClose(func(context.Context) error { return closeEvents() })

	translator, closeTranslator, err := translation.FromConfig(ctx, cfg)
	if err != nil {
		_ = rt.Close(ctx)
		return nil, fmt.Errorf("translation init failed: %w", err)
	}
	rt.Translator = translator
	rt.onClose(func(context.Context) error { return closeTranslator() })

	return rt, nil
}

func newPublisher(cfg *config.Config, rdb *redis.Client) (notifications.Publisher, func() error, error) {
	noClose := func() error { return nil }
	switch cfg.EventsBackend {
	case config.EventsBackendRedis, "":
		if rdb == nil {
			log.Println("events: redis unavailable, events will not be published")
			return notifications.NoopPublisher{}, noClose, nil
		}
		return notifications.NewNotifier(rdb), noClose, nil
	case config.EventsBackendNATS:
		pub, err := notifications.ConnectNATS(cfg.NATSURL)
		if err != nil {
			return nil, nil, fmt.Errorf("nats connection failed: %w", err)
		}
		return pub, pub.Close, nil
	case config.EventsBackendNone:
		return notifications.NoopPublisher{}, noClose, nil
	default:
		return nil, nil, fmt.Errorf("unsupported EVENTS_BACKEND %q", cfg.EventsBackend)
	}
}
