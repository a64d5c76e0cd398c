package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/live-show-lineup/internal/model"
)

// AuditRepo appends to live_show_audit.  There is no update or delete:
// the journal is append-only and ordered by its auto-increment seq.
type AuditRepo struct {
	db *sql.DB
}

// NewAuditRepo returns an AuditRepo bound to db.
func NewAuditRepo(db *sql.DB) *AuditRepo { return &AuditRepo{db: db} }

// CreateTx appends an entry within the caller's transaction.
func (r *AuditRepo) CreateTx(ctx context.Context, tx *sql.Tx, e *model.AuditEntry) error {
	meta, err := encodeMetadata(e.Metadata)
	if err != nil {
		return err
	}
	const q = `INSERT INTO live_show_audit
	           (id, live_show_id, action_type, performed_by, performed_by_type, target_user_id, description, metadata, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err = tx.ExecContext(ctx, q,
		e.ID, toNullString(e.LiveShowID), string(e.ActionType), e.PerformedBy, string(e.PerformedByType),
		toNullString(e.TargetUserID), e.Description, meta, e.CreatedAt.UTC(),
	)
	return err
}

// ListByShow returns a show's journal in insertion order.
func (r *AuditRepo) ListByShow(ctx context.Context, showID string) ([]model.AuditEntry, error) {
	const q = `SELECT id, live_show_id, action_type, performed_by, performed_by_type, target_user_id, description, metadata, created_at
	           FROM live_show_audit
	           WHERE live_show_id = ?
	           ORDER BY seq`
	rows, err := r.db.QueryContext(ctx, q, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.AuditEntry, 0)
	for rows.Next() {
		var (
			e              model.AuditEntry
			liveShowID     sql.NullString
			action, byType string
			target         sql.NullString
			meta           []byte
		)
		if err := rows.Scan(&e.ID, &liveShowID, &action, &e.PerformedBy, &byType, &target, &e.Description, &meta, &e.CreatedAt); err != nil {
			return nil, err
		}
		e.LiveShowID = fromNullString(liveShowID)
		e.ActionType = model.AuditAction(action)
		e.PerformedByType = model.ActorType(byType)
		e.TargetUserID = fromNullString(target)
		if e.Metadata, err = decodeMetadata(meta); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
