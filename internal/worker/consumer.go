// Package worker consumes notification events from RabbitMQ and delivers
// them as email. Delivery is fire-and-forget end to end: malformed payloads
// are NACKed without requeue, everything else is ACKed even when SMTP fails,
// so a broken mailbox can never wedge the queue.
package worker

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"sync"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/faenaapp/faena-backend/internal/notify"
	"github.com/faenaapp/faena-backend/shared/rabbitmq"
)

const defaultPrefetch = 10

// Consumer drains the notification queue with a fixed pool of deliverers.
type Consumer struct {
	rabbit      *rabbitmq.Client
	mailer      *notify.Mailer
	logger      *slog.Logger
	concurrency int
	tag         string
	wg          sync.WaitGroup
}

// NewConsumer creates a notification consumer with the given delivery
// concurrency.
func NewConsumer(rabbit *rabbitmq.Client, mailer *notify.Mailer, concurrency int, logger *slog.Logger) *Consumer {
	if concurrency <= 0 {
		concurrency = 1
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Consumer{
		rabbit:      rabbit,
		mailer:      mailer,
		logger:      logger,
		concurrency: concurrency,
		tag:         "notification-worker-" + uuid.New().String()[:8],
	}
}

// Start sets QoS, begins consuming and launches the deliverer pool. It
// returns once the pool is running; cancel ctx and call Wait to stop.
func (c *Consumer) Start(ctx context.Context) error {
	if err := c.rabbit.Qos(defaultPrefetch); err != nil {
		return fmt.Errorf("set qos: %w", err)
	}

	deliveries, err := c.rabbit.Consume(c.tag)
	if err != nil {
		return fmt.Errorf("start consuming: %w", err)
	}

	for i := 0; i < c.concurrency; i++ {
		c.wg.Add(1)
		go c.run(ctx, i, deliveries)
	}

	c.logger.Info("notification consumer started",
		slog.String("consumer_tag", c.tag),
		slog.Int("concurrency", c.concurrency),
	)
	return nil
}

// Wait blocks until every deliverer has drained and exited.
func (c *Consumer) Wait() {
	c.wg.Wait()
	c.logger.Info("notification consumer stopped")
}

func (c *Consumer) run(ctx context.Context, id int, deliveries <-chan amqp.Delivery) {
	defer c.wg.Done()

	for {
		select {
		case <-ctx.Done():
			c.logger.Info("deliverer stopped", slog.Int("deliverer", id))
			return

		case delivery, ok := <-deliveries:
			if !ok {
				c.logger.Warn("RabbitMQ delivery channel closed",
					slog.Int("deliverer", id),
				)
				return
			}
			c.handle(ctx, delivery)
		}
	}
}

func (c *Consumer) handle(ctx context.Context, delivery amqp.Delivery) {
	var ev notify.Event
	if err := json.Unmarshal(delivery.Body, &ev); err != nil {
		c.logger.Error("malformed notification payload",
			slog.String("error", err.Error()),
			slog.String("body", string(delivery.Body)),
		)
		// No requeue: a malformed message never becomes parseable.
		if nackErr := delivery.Nack(false, false); nackErr != nil {
			c.logger.Error("failed to NACK malformed message",
				slog.Any("error", nackErr),
			)
		}
		return
	}

	if err := c.mailer.Deliver(ctx, ev); err != nil {
		c.logger.Error("notification delivery failed",
			slog.String("type", ev.Type),
			slog.String("to", ev.To),
			slog.Any("error", err),
		)
	}

	// ACK regardless of delivery outcome: notifications are best-effort.
	if err := delivery.Ack(false); err != nil {
		c.logger.Error("failed to ACK message",
			slog.Any("error", err),
		)
	}
}
