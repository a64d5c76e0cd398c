package repository

import (
	"context"
	"time"

	"github.com/iliyamo/live-show-lineup/internal/model"
)

// Reader groups lock-free queries.  Lineup snapshots served to clients
// and the scheduled sweeps read through it without entering a unit of
// work.
type Reader interface {
	GetShow(ctx context.Context, id string) (*model.LiveShow, error)
	ListShows(ctx context.Context) ([]model.LiveShow, error)
	ListUnlockedShows(ctx context.Context) ([]model.LiveShow, error)
	GetFinalist(ctx context.Context, id string) (*model.Finalist, error)
	ListFinalistsByShow(ctx context.Context, showID string) ([]model.Finalist, error)
	ListAuditByShow(ctx context.Context, showID string) ([]model.AuditEntry, error)
	ListPenaltiesByUser(ctx context.Context, userID string) ([]model.Penalty, error)
}

// NotificationOutbox is the side of the store used by the notification
// relay: pending rows are read in creation order and stamped once the
// broker has accepted them.
type NotificationOutbox interface {
	ListPendingNotifications(ctx context.Context, limit int) ([]model.Notification, error)
	MarkNotificationDispatched(ctx context.Context, id string, at time.Time) error
}

// ShowWriter is the LiveShow method set of a unit of work.
type ShowWriter interface {
	GetShow(ctx context.Context, id string) (*model.LiveShow, error)
	InsertShow(ctx context.Context, s *model.LiveShow) error
	UpdateShow(ctx context.Context, s *model.LiveShow) error
}

// FinalistWriter is the Finalist method set of a unit of work.
// ListFinalistsByShow orders rows by rank with released ranks last.
type FinalistWriter interface {
	GetFinalist(ctx context.Context, id string) (*model.Finalist, error)
	ListFinalistsByShow(ctx context.Context, showID string) ([]model.Finalist, error)
	InsertFinalist(ctx context.Context, f *model.Finalist) error
	UpdateFinalist(ctx context.Context, f *model.Finalist) error
}

// NotificationWriter enqueues notifications.
type NotificationWriter interface {
	InsertNotification(ctx context.Context, n *model.Notification) error
}

// PenaltyWriter records penalties.
type PenaltyWriter interface {
	InsertPenalty(ctx context.Context, p *model.Penalty) error
}

// AuditWriter appends to the audit journal.
type AuditWriter interface {
	InsertAudit(ctx context.Context, e *model.AuditEntry) error
}

// Tx is a unit of work.  Every write made through it is committed
// together or not at all.
type Tx interface {
	ShowWriter
	FinalistWriter
	NotificationWriter
	PenaltyWriter
	AuditWriter
}

// Store is the persistence port consumed by the lineup service.
type Store interface {
	Reader
	NotificationOutbox

	// WithinShow runs fn in a unit of work that holds an exclusive lock
	// on the show, so that units of work on the same show execute one
	// after the other.  It returns ErrNotFound when the show does not
	// exist.  When fn returns an error every write is discarded.
	WithinShow(ctx context.Context, showID string, fn func(tx Tx) error) error

	// Within runs fn in a unit of work that is not scoped to a show.
	Within(ctx context.Context, fn func(tx Tx) error) error
}
