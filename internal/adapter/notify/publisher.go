package notify

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/google/uuid"
	"github.com/streadway/amqp"

	"github.com/polkiloo/storefront/internal/domain/model"
)

type channel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

// Publisher sends order notifications to a RabbitMQ topic exchange. The
// routing key is the event name.
type Publisher struct {
	ch       channel
	exchange string
	logger   *slog.Logger
}

// NewPublisher declares exchange on ch and returns a publisher bound to it.
func NewPublisher(ch channel, exchange string, logger *slog.Logger) (*Publisher, error) {
	if err := ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return nil, fmt.Errorf("declare exchange %s: %w", exchange, err)
	}
	return &Publisher{ch: ch, exchange: exchange, logger: logger}, nil
}

// Publish sends note as a persistent JSON message.
func (p *Publisher) Publish(ctx context.Context, note model.Notification) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if note.ID == uuid.Nil {
		note.ID = uuid.New()
	}

	body, err := json.Marshal(note)
	if err != nil {
		return fmt.Errorf("encode notification: %w", err)
	}

	err = p.ch.Publish(p.exchange, string(note.Event), false, false, amqp.Publishing{
		ContentType:  "application/json",
		Body:         body,
		DeliveryMode: amqp.Persistent,
		MessageId:    note.ID.String(),
		Timestamp:    note.OccurredAt,
		Headers: amqp.Table{
			"order_id":     strconv.FormatInt(note.OrderID, 10),
			"order_number": note.OrderNumber,
			"event":        string(note.Event),
		},
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", note.Event, err)
	}

	p.logger.Debug("notification published",
		slog.String("event", string(note.Event)),
		slog.String("message_id", note.ID.String()),
	)
	return nil
}

// Close closes the underlying channel.
func (p *Publisher) Close() error {
	return p.ch.Close()
}
