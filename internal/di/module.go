package di

import (
	"log/slog"

	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"

	"github.com/polkiloo/storefront/internal/adapter/cart"
	"github.com/polkiloo/storefront/internal/adapter/catalog"
	"github.com/polkiloo/storefront/internal/adapter/notify"
	"github.com/polkiloo/storefront/internal/app"
	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/logger"
	"github.com/polkiloo/storefront/internal/pkg/auth"
	"github.com/polkiloo/storefront/internal/server/http/router"
	"github.com/polkiloo/storefront/internal/storage/postgres"
	"github.com/polkiloo/storefront/internal/usecase"
)

// Module assembles the storefront service. opts are appended last so tests
// can replace any provided value.
func Module(opts ...fx.Option) fx.Option {
	modules := []fx.Option{
		fx.WithLogger(newEventLogger),
		config.Module,
		logger.Module,
		auth.Module,
		postgres.Module,
		catalog.Module,
		cart.Module,
		notify.Module,
		usecase.Module,
		router.Module,
		app.Module,
	}
	modules = append(modules, opts...)
	return fx.Options(modules...)
}

func newEventLogger(l *slog.Logger) fxevent.Logger {
	return &fxevent.SlogLogger{Logger: l}
}
