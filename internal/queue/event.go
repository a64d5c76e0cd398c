// Package queue moves lineup notifications through the message broker:
// the relay publishes pending notification rows and the consumer hands
// them to the delivery log.
package queue

import (
	"time"

	"github.com/iliyamo/live-show-lineup/internal/model"
)

// NotificationEvent is the payload published for every queued
// notification.  It carries everything a delivery service needs without
// querying the lineup database.
type NotificationEvent struct {
	NotificationID string         `json:"notification_id"`
	ShowID         string         `json:"show_id"`
	RecipientID    string         `json:"recipient_id"`
	Type           string         `json:"type"`
	Subject        string         `json:"subject"`
	Message        string         `json:"message"`
	ActionURL      string         `json:"action_url,omitempty"`
	Metadata       map[string]any `json:"metadata,omitempty"`
	CreatedAt      string         `json:"created_at"`
}

// EventFromNotification builds the broker payload for n.
func EventFromNotification(n model.Notification) NotificationEvent {
	return NotificationEvent{
		NotificationID: n.ID,
		ShowID:         n.LiveShowID,
		RecipientID:    n.RecipientID,
		Type:           string(n.Type),
		Subject:        n.Subject,
		Message:        n.Message,
		ActionURL:      n.ActionURL,
		Metadata:       n.Metadata,
		CreatedAt:      n.CreatedAt.UTC().Format(time.RFC3339),
	}
}
