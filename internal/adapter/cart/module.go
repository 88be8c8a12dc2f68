package cart

import (
	"context"
	"log/slog"

	"github.com/redis/go-redis/v9"
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/usecase"
)

// Module wires the Redis client and the cart store.
var Module = fx.Options(
	fx.Provide(newRedisClient),
	fx.Provide(newProvider),
	fx.Invoke(registerLifecycle),
)

type clientParams struct {
	fx.In

	Config *config.Config
}

func newRedisClient(p clientParams) *redis.Client {
	return redis.NewClient(&redis.Options{Addr: p.Config.RedisAddress})
}

type providerParams struct {
	fx.In

	Client *redis.Client
	Logger *slog.Logger
}

func newProvider(p providerParams) usecase.CartProvider {
	return NewRedisStore(p.Client, DefaultTTL, p.Logger)
}

type pinger interface {
	Ping(ctx context.Context) *redis.StatusCmd
	Close() error
}

type lifecycleParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Client    *redis.Client
	Logger    *slog.Logger
}

func registerLifecycle(p lifecycleParams) {
	appendHooks(p.Lifecycle, p.Client, p.Logger)
}

func appendHooks(lc fx.Lifecycle, client pinger, logger *slog.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			if err := client.Ping(ctx).Err(); err != nil {
				logger.Error("redis ping failed", slog.String("error", err.Error()))
				return err
			}
			return nil
		},
		OnStop: func(context.Context) error {
			return client.Close()
		},
	})
}
