package worker

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/polkiloo/storefront/internal/domain/model"
)

// Publisher delivers a notification to the outbound channel.
type Publisher interface {
	Publish(ctx context.Context, note model.Notification) error
}

// NotificationDispatcher queues notifications produced by committed order
// changes and publishes them from a pool of workers. A full queue drops the
// notification; order changes never wait for delivery.
type NotificationDispatcher struct {
	publisher      Publisher
	workers        int
	publishTimeout time.Duration
	logger         *slog.Logger

	queue  chan model.Notification
	wg     sync.WaitGroup
	cancel context.CancelFunc
	mu     sync.Mutex
}

// NewNotificationDispatcher constructs the dispatcher worker pool.
func NewNotificationDispatcher(publisher Publisher, queueSize, workers int, logger *slog.Logger) *NotificationDispatcher {
	if workers <= 0 {
		workers = 1
	}
	if queueSize <= 0 {
		queueSize = 1
	}
	return &NotificationDispatcher{
		publisher:      publisher,
		workers:        workers,
		publishTimeout: 5 * time.Second,
		logger:         logger,
		queue:          make(chan model.Notification, queueSize),
	}
}

// Enqueue schedules note for publication. It reports false when the queue is
// full and the notification was dropped.
func (d *NotificationDispatcher) Enqueue(note model.Notification) bool {
	select {
	case d.queue <- note:
		return true
	default:
		d.logger.Warn("notification queue full, dropping notification",
			slog.String("event", string(note.Event)),
			slog.Int64("order_id", note.OrderID),
		)
		return false
	}
}

// Start launches background publishing.
func (d *NotificationDispatcher) Start(ctx context.Context) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.cancel != nil {
		return
	}

	runCtx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	d.cancel = cancel

	for i := 0; i < d.workers; i++ {
		d.wg.Add(1)
		go d.worker(runCtx)
	}
}

// Stop halts the workers and publishes what is still queued until ctx is
// done. Notifications left after that are dropped.
func (d *NotificationDispatcher) Stop(ctx context.Context) {
	d.mu.Lock()
	if d.cancel != nil {
		d.cancel()
		d.cancel = nil
	}
	d.mu.Unlock()

	d.wg.Wait()
	d.drain(ctx)
}

func (d *NotificationDispatcher) drain(ctx context.Context) {
	for {
		select {
		case note := <-d.queue:
			if ctx.Err() != nil {
				d.logger.Warn("dropping notification on shutdown",
					slog.String("event", string(note.Event)),
					slog.Int64("order_id", note.OrderID),
				)
				continue
			}
			d.publish(ctx, note)
		default:
			return
		}
	}
}

func (d *NotificationDispatcher) worker(ctx context.Context) {
	defer d.wg.Done()
	for {
		select {
		case <-ctx.Done():
			return
		case note := <-d.queue:
			d.publish(ctx, note)
		}
	}
}

func (d *NotificationDispatcher) publish(ctx context.Context, note model.Notification) {
	publishCtx, cancel := context.WithTimeout(ctx, d.publishTimeout)
	defer cancel()

	if err := d.publisher.Publish(publishCtx, note); err != nil {
		d.logger.Error("publish notification failed",
			slog.String("event", string(note.Event)),
			slog.Int64("order_id", note.OrderID),
			slog.String("error", err.Error()),
		)
	}
}
