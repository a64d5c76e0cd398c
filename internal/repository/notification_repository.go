package repository

import (
	"context"
	"database/sql"
	"time"

	"github.com/iliyamo/live-show-lineup/internal/model"
)

// NotificationRepo stores the outbox of messages addressed to
// performers.  Rows are written inside lineup transactions and later
// published to the broker by the relay, which stamps dispatched_at.
type NotificationRepo struct {
	db *sql.DB
}

// NewNotificationRepo returns a NotificationRepo bound to db.
func NewNotificationRepo(db *sql.DB) *NotificationRepo { return &NotificationRepo{db: db} }

// CreateTx inserts a notification within the caller's transaction.
func (r *NotificationRepo) CreateTx(ctx context.Context, tx *sql.Tx, n *model.Notification) error {
	meta, err := encodeMetadata(n.Metadata)
	if err != nil {
		return err
	}
	const q = `INSERT INTO live_show_notifications
	           (id, live_show_id, recipient_id, notification_type, subject, message, action_url, metadata, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, q,
		n.ID, n.LiveShowID, n.RecipientID, string(n.Type), n.Subject, n.Message,
		sql.NullString{String: n.ActionURL, Valid: n.ActionURL != ""}, meta, n.CreatedAt.UTC(),
	)
	return err
}

// ListPending returns up to limit notifications that have not been
// handed to the broker yet, oldest first.
func (r *NotificationRepo) ListPending(ctx context.Context, limit int) ([]model.Notification, error) {
	const q = `SELECT id, live_show_id, recipient_id, notification_type, subject, message, action_url, metadata, created_at
	           FROM live_show_notifications
	           WHERE dispatched_at IS NULL
	           ORDER BY seq
	           LIMIT ?`
	rows, err := r.db.QueryContext(ctx, q, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Notification, 0)
	for rows.Next() {
		var (
			n         model.Notification
			typ       string
			actionURL sql.NullString
			meta      []byte
		)
		if err := rows.Scan(&n.ID, &n.LiveShowID, &n.RecipientID, &typ, &n.Subject, &n.Message, &actionURL, &meta, &n.CreatedAt); err != nil {
			return nil, err
		}
		n.Type = model.NotificationType(typ)
		n.ActionURL = actionURL.String
		if n.Metadata, err = decodeMetadata(meta); err != nil {
			return nil, err
		}
		out = append(out, n)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// MarkDispatched stamps dispatched_at.  Already dispatched rows are left
// untouched so a relay run that overlaps another one stays harmless.
func (r *NotificationRepo) MarkDispatched(ctx context.Context, id string, at time.Time) error {
	const q = `UPDATE live_show_notifications SET dispatched_at = ? WHERE id = ? AND dispatched_at IS NULL`
	_, err := r.db.ExecContext(ctx, q, at.UTC(), id)
	return err
}
