package notify

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/streadway/amqp"
	"go.uber.org/fx"

	"github.com/polkiloo/storefront/internal/config"
	"github.com/polkiloo/storefront/internal/worker"
)

// Module wires the RabbitMQ publisher used by the notification dispatcher.
var Module = fx.Options(
	fx.Provide(newPublisher),
	fx.Provide(func(p *Publisher) worker.Publisher { return p }),
)

type connection interface {
	Channel() (*amqp.Channel, error)
	Close() error
}

var dial = func(url string) (connection, error) {
	return amqp.Dial(url)
}

type publisherParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *config.Config
	Logger    *slog.Logger
}

func newPublisher(p publisherParams) (*Publisher, error) {
	conn, err := dial(p.Config.AMQPURL)
	if err != nil {
		return nil, fmt.Errorf("connect to amqp: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open amqp channel: %w", err)
	}
	publisher, err := NewPublisher(ch, p.Config.NotifyExchange, p.Logger)
	if err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}

	p.Lifecycle.Append(closeHook(publisher, conn, p.Logger))
	return publisher, nil
}

func closeHook(publisher *Publisher, conn connection, logger *slog.Logger) fx.Hook {
	return fx.Hook{
		OnStop: func(context.Context) error {
			if err := publisher.Close(); err != nil {
				logger.Warn("close amqp channel", slog.String("error", err.Error()))
			}
			return conn.Close()
		},
	}
}
