package queue

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/live-show-lineup/internal/repository"
)

// EventPublisher is the broker side of the relay.
type EventPublisher interface {
	Publish(ctx context.Context, events []NotificationEvent) (int, error)
}

// Relay drains the notification outbox: rows written by lineup units of
// work are published after commit and stamped as dispatched.  A crash
// between publish and stamp re-publishes the row, so delivery is at
// least once.
type Relay struct {
	outbox    repository.NotificationOutbox
	publisher EventPublisher
	batchSize int
	logger    *zap.Logger
	now       func() time.Time
}

// NewRelay wires an outbox to a publisher.
func NewRelay(outbox repository.NotificationOutbox, publisher EventPublisher, batchSize int, logger *zap.Logger) *Relay {
	if batchSize <= 0 {
		batchSize = 100
	}
	return &Relay{
		outbox:    outbox,
		publisher: publisher,
		batchSize: batchSize,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// RunOnce publishes one batch of pending notifications and returns how
// many were dispatched.
func (r *Relay) RunOnce(ctx context.Context) (int, error) {
	pending, err := r.outbox.ListPendingNotifications(ctx, r.batchSize)
	if err != nil {
		return 0, fmt.Errorf("list pending notifications: %w", err)
	}
	if len(pending) == 0 {
		return 0, nil
	}
	events := make([]NotificationEvent, len(pending))
	for i, n := range pending {
		events[i] = EventFromNotification(n)
	}

	sent, pubErr := r.publisher.Publish(ctx, events)
	at := r.now()
	for _, n := range pending[:sent] {
		if err := r.outbox.MarkNotificationDispatched(ctx, n.ID, at); err != nil {
			return 0, fmt.Errorf("mark notification %s dispatched: %w", n.ID, err)
		}
	}
	if pubErr != nil {
		return sent, pubErr
	}
	return sent, nil
}

// Run calls RunOnce every interval until ctx is cancelled.  Failures are
// logged and retried on the next tick.
func (r *Relay) Run(ctx context.Context, interval time.Duration) error {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
			n, err := r.RunOnce(ctx)
			if err != nil {
				r.logger.Warn("notification relay failed", zap.Int("dispatched", n), zap.Error(err))
				continue
			}
			if n > 0 {
				r.logger.Info("notifications dispatched", zap.Int("count", n))
			}
		}
	}
}
