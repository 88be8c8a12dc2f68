package di

import (
	"context"
	"io"
	"log/slog"
	"testing"
	"time"

	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/domain/model"
	"github.com/polkiloo/storefront/internal/domain/repository"
	"github.com/polkiloo/storefront/internal/server/http/handlers"
	"github.com/polkiloo/storefront/internal/storage/postgres"
	"github.com/polkiloo/storefront/internal/test"
	"github.com/polkiloo/storefront/internal/usecase"
	"github.com/polkiloo/storefront/internal/worker"
)

type publisherStub struct{}

func (publisherStub) Publish(context.Context, model.Notification) error { return nil }

func TestModuleComposesGraphWithReplacements(t *testing.T) {
	cfg := &config.Config{
		RunAddress:      ":0",
		DatabaseURI:     "postgres://stub",
		RedisAddress:    "localhost:6379",
		AMQPURL:         "amqp://stub",
		NotifyExchange:  "storefront.orders",
		CatalogAddress:  "http://localhost",
		AuthSecret:      "secret",
		NotifyWorkers:   1,
		NotifyQueueSize: 1,
		ShutdownTimeout: time.Millisecond,
		ReturnWindow:    time.Hour,
		Currency:        "USD",
		LogLevel:        "info",
	}
	logger := slog.New(slog.NewJSONHandler(io.Discard, nil))

	var (
		facade     handlers.StorefrontFacade
		dispatcher *worker.NotificationDispatcher
		notifier   usecase.Notifier
	)
	fxApp := fx.New(
		fx.Provide(func() context.Context { return context.Background() }),
		Module(
			fx.Replace(cfg),
			fx.Replace(logger),
			fx.Replace(&postgres.Storage{}),
			fx.Replace(repository.Transactor(test.NewMemoryStore())),
			fx.Replace(usecase.CatalogProvider(test.NewCatalogStub())),
			fx.Replace(usecase.CartProvider(test.NewCartStub())),
			fx.Replace(worker.Publisher(publisherStub{})),
		),
		fx.Populate(&facade, &dispatcher, &notifier),
	)

	if err := fxApp.Err(); err != nil {
		t.Fatalf("fx app returned error: %v", err)
	}
	if facade == nil {
		t.Fatal("expected storefront facade instance")
	}
	if notifier != usecase.Notifier(dispatcher) {
		t.Fatal("expected use cases to notify through the dispatcher")
	}
}
