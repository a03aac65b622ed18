// Package notify is the fire-and-forget notification pipeline. The API side
// publishes events to RabbitMQ and never blocks on delivery; the worker
// service consumes the queue and sends email.
package notify

import (
	"context"
	"encoding/json"
	"log/slog"

	"github.com/faenaapp/faena-backend/shared/rabbitmq"
)

// Event types carried on the notification queue.
const (
	EventAlert              = "ALERT"
	EventSignupConfirmation = "SIGNUP_CONFIRMATION"
)

// Event is the wire format for a queued notification.
type Event struct {
	Type    string            `json:"type"`
	To      string            `json:"to"`
	Subject string            `json:"subject,omitempty"`
	Text    string            `json:"text,omitempty"`
	Data    map[string]string `json:"data,omitempty"`
}

// Notifier delivers notifications without ever failing the calling flow.
type Notifier interface {
	SendAlert(ctx context.Context, to, subject, text string)
	SendSignupConfirmation(ctx context.Context, to, hash string)
}

// Publisher implements Notifier on top of the RabbitMQ client. Publish
// failures are logged and swallowed.
type Publisher struct {
	client *rabbitmq.Client
	logger *slog.Logger
}

// NewPublisher creates a queue-backed notifier.
func NewPublisher(client *rabbitmq.Client, logger *slog.Logger) *Publisher {
	return &Publisher{client: client, logger: logger}
}

// SendAlert queues a plain-text alert.
func (p *Publisher) SendAlert(ctx context.Context, to, subject, text string) {
	p.publish(ctx, Event{
		Type:    EventAlert,
		To:      to,
		Subject: subject,
		Text:    text,
	})
}

// SendSignupConfirmation queues a signup-confirmation message carrying the
// confirmation hash.
func (p *Publisher) SendSignupConfirmation(ctx context.Context, to, hash string) {
	p.publish(ctx, Event{
		Type: EventSignupConfirmation,
		To:   to,
		Data: map[string]string{"hash": hash},
	})
}

func (p *Publisher) publish(ctx context.Context, ev Event) {
	body, err := json.Marshal(ev)
	if err != nil {
		p.logger.Error("marshal notification event",
			slog.String("type", ev.Type),
			slog.Any("error", err),
		)
		return
	}

	if err := p.client.PublishWithRetry(ctx, body, "application/json"); err != nil {
		p.logger.Error("publish notification event",
			slog.String("type", ev.Type),
			slog.String("to", ev.To),
			slog.Any("error", err),
		)
	}
}
