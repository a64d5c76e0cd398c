package model

import "time"

// NotificationType identifies the template a delivery service uses.
type NotificationType string

const (
	NotificationFinalistConfirmation NotificationType = "finalist_confirmation"
	NotificationAlternateStandby     NotificationType = "alternate_standby"
	NotificationLineupUpdate         NotificationType = "lineup_update"
	NotificationPromotion            NotificationType = "promotion"
	NotificationCancellation         NotificationType = "cancellation"
	NotificationFinalReminder        NotificationType = "final_reminder"
	NotificationPenaltyWarning       NotificationType = "penalty_warning"
)

// Notification is a message queued for an external delivery service.
// Rows are written once; DispatchedAt is stamped by the relay after the
// message has been handed to the broker.
type Notification struct {
	ID           string           `json:"id"`
	LiveShowID   string           `json:"liveShowId"`
	RecipientID  string           `json:"recipientId"`
	Type         NotificationType `json:"type"`
	Subject      string           `json:"subject"`
	Message      string           `json:"message"`
	ActionURL    string           `json:"actionUrl,omitempty"`
	Metadata     map[string]any   `json:"metadata,omitempty"`
	DispatchedAt *time.Time       `json:"dispatchedAt,omitempty"`
	CreatedAt    time.Time        `json:"createdAt"`
}
