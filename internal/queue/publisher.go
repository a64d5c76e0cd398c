package queue

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher sends notification events to a durable RabbitMQ queue.  It
// dials once per batch; batches are small and infrequent.
type Publisher struct {
	url    string
	queue  string
	logger *zap.Logger
}

// NewPublisher returns a Publisher for the given broker URL and queue.
func NewPublisher(url, queue string, logger *zap.Logger) *Publisher {
	return &Publisher{url: url, queue: queue, logger: logger}
}

// Publish sends events in order and returns how many the broker
// accepted.  Messages are persistent.  On error, events after the
// returned count were not sent.
func (p *Publisher) Publish(ctx context.Context, events []NotificationEvent) (int, error) {
	if len(events) == 0 {
		return 0, nil
	}
	conn, err := amqp.Dial(p.url)
	if err != nil {
		return 0, fmt.Errorf("rabbitmq dial: %w", err)
	}
	defer func() { _ = conn.Close() }()

	ch, err := conn.Channel()
	if err != nil {
		return 0, fmt.Errorf("rabbitmq channel: %w", err)
	}
	defer func() { _ = ch.Close() }()

	// Idempotent; durable so messages survive broker restarts.
	if _, err := ch.QueueDeclare(p.queue, true, false, false, false, nil); err != nil {
		return 0, fmt.Errorf("rabbitmq queue declare: %w", err)
	}

	for i, ev := range events {
		body, err := json.Marshal(ev)
		if err != nil {
			return i, fmt.Errorf("marshal event %s: %w", ev.NotificationID, err)
		}
		pub := amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			MessageId:    ev.NotificationID,
			Type:         ev.Type,
			Timestamp:    time.Now().UTC(),
			Body:         body,
		}
		// default exchange, routing key = queue name
		if err := ch.PublishWithContext(ctx, "", p.queue, false, false, pub); err != nil {
			return i, fmt.Errorf("rabbitmq publish: %w", err)
		}
	}
	p.logger.Debug("published notifications", zap.Int("count", len(events)), zap.String("queue", p.queue))
	return len(events), nil
}
