package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/live-show-lineup/internal/model"
)

// PenaltyRepo persists penalties.  Rows are insert-only.
type PenaltyRepo struct {
	db *sql.DB
}

// NewPenaltyRepo returns a PenaltyRepo bound to db.
func NewPenaltyRepo(db *sql.DB) *PenaltyRepo { return &PenaltyRepo{db: db} }

// CreateTx inserts a penalty within the caller's transaction.
func (r *PenaltyRepo) CreateTx(ctx context.Context, tx *sql.Tx, p *model.Penalty) error {
	var editions sql.NullInt64
	if p.EditionsAffected != nil {
		editions = sql.NullInt64{Int64: int64(*p.EditionsAffected), Valid: true}
	}
	const q = `INSERT INTO live_show_penalties
	           (id, user_id, live_show_id, penalty_type, severity, description, editions_affected, expires_at, is_active, created_at)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q,
		p.ID, p.UserID, toNullString(p.LiveShowID), string(p.PenaltyType), string(p.Severity), p.Description,
		editions, toNullTime(p.ExpiresAt), p.IsActive, p.CreatedAt.UTC(),
	)
	return err
}

// ListByUser returns a performer's penalties, newest first.
func (r *PenaltyRepo) ListByUser(ctx context.Context, userID string) ([]model.Penalty, error) {
	const q = `SELECT id, user_id, live_show_id, penalty_type, severity, description, editions_affected, expires_at, is_active, created_at
	           FROM live_show_penalties
	           WHERE user_id = ?
	           ORDER BY created_at DESC, id`
	rows, err := r.db.QueryContext(ctx, q, userID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Penalty, 0)
	for rows.Next() {
		var (
			p         model.Penalty
			showID    sql.NullString
			typ, sev  string
			editions  sql.NullInt64
			expiresAt sql.NullTime
		)
		if err := rows.Scan(&p.ID, &p.UserID, &showID, &typ, &sev, &p.Description, &editions, &expiresAt, &p.IsActive, &p.CreatedAt); err != nil {
			return nil, err
		}
		p.LiveShowID = fromNullString(showID)
		p.PenaltyType = model.PenaltyType(typ)
		p.Severity = model.PenaltySeverity(sev)
		if editions.Valid {
			n := int(editions.Int64)
			p.EditionsAffected = &n
		}
		p.ExpiresAt = fromNullTime(expiresAt)
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}
