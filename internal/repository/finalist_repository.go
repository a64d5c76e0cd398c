package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/live-show-lineup/internal/model"
)

const finalistColumns = `id, live_show_id, user_id, artist_name, lineup_rank, role, status,
	availability_confirmed, confirmation_requested_at, confirmed_at, cancelled_at,
	cancellation_reason, promoted_at, promoted_from, created_at, updated_at`

// FinalistRepo provides access to the live_show_finalists table.  A row
// is one lineup member; lineup_rank is NULL once a cancelled finalist's
// slot has been handed to a promoted alternate.  The unique index
// uq_finalists_show_rank keeps at most one occupant per rank and show.
type FinalistRepo struct {
	db *sql.DB
}

// NewFinalistRepo returns a new FinalistRepo bound to the given database.
func NewFinalistRepo(db *sql.DB) *FinalistRepo { return &FinalistRepo{db: db} }

func scanFinalist(row rowScanner) (*model.Finalist, error) {
	var (
		f            model.Finalist
		rank         sql.NullInt64
		role, status string
		requestedAt  sql.NullTime
		confirmedAt  sql.NullTime
		cancelledAt  sql.NullTime
		reason       sql.NullString
		promotedAt   sql.NullTime
		promotedFrom sql.NullString
	)
	err := row.Scan(
		&f.ID, &f.LiveShowID, &f.UserID, &f.ArtistName, &rank, &role, &status,
		&f.AvailabilityConfirmed, &requestedAt, &confirmedAt, &cancelledAt,
		&reason, &promotedAt, &promotedFrom, &f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	if rank.Valid {
		s := model.Slot(rank.Int64)
		f.Rank = &s
	}
	f.Role = model.Role(role)
	f.Status = model.FinalistStatus(status)
	f.ConfirmationRequestedAt = fromNullTime(requestedAt)
	f.ConfirmedAt = fromNullTime(confirmedAt)
	f.CancelledAt = fromNullTime(cancelledAt)
	f.CancellationReason = fromNullString(reason)
	f.PromotedAt = fromNullTime(promotedAt)
	f.PromotedFrom = fromNullString(promotedFrom)
	return &f, nil
}

func rankArg(s *model.Slot) sql.NullInt64 {
	if s == nil {
		return sql.NullInt64{}
	}
	return sql.NullInt64{Int64: int64(*s), Valid: true}
}

func (r *FinalistRepo) get(ctx context.Context, q queryer, id string) (*model.Finalist, error) {
	f, err := scanFinalist(q.QueryRowContext(ctx, `SELECT `+finalistColumns+` FROM live_show_finalists WHERE id = ?`, id))
	if err != nil {
		return nil, notFound(err)
	}
	return f, nil
}

func (r *FinalistRepo) listByShow(ctx context.Context, q queryer, showID string) ([]model.Finalist, error) {
	// Released ranks sort last; ties keep designation order.
	const query = `SELECT ` + finalistColumns + `
	               FROM live_show_finalists
	               WHERE live_show_id = ?
	               ORDER BY lineup_rank IS NULL, lineup_rank, created_at, id`
	rows, err := q.QueryContext(ctx, query, showID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	out := make([]model.Finalist, 0, 4)
	for rows.Next() {
		f, err := scanFinalist(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, *f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// GetByID returns a finalist or ErrNotFound.
func (r *FinalistRepo) GetByID(ctx context.Context, id string) (*model.Finalist, error) {
	return r.get(ctx, r.db, id)
}

// GetByIDTx returns a finalist inside the caller's transaction.
func (r *FinalistRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id string) (*model.Finalist, error) {
	return r.get(ctx, tx, id)
}

// ListByShow returns every lineup member of a show ordered by rank.
func (r *FinalistRepo) ListByShow(ctx context.Context, showID string) ([]model.Finalist, error) {
	return r.listByShow(ctx, r.db, showID)
}

// ListByShowTx is ListByShow inside the caller's transaction.
func (r *FinalistRepo) ListByShowTx(ctx context.Context, tx *sql.Tx, showID string) ([]model.Finalist, error) {
	return r.listByShow(ctx, tx, showID)
}

// CreateTx inserts a lineup member.  A rank collision is reported as
// ErrRankTaken and a repeated performer as ErrDuplicateMember.
func (r *FinalistRepo) CreateTx(ctx context.Context, tx *sql.Tx, f *model.Finalist) error {
	const q = `INSERT INTO live_show_finalists (` + finalistColumns + `)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q,
		f.ID, f.LiveShowID, f.UserID, f.ArtistName, rankArg(f.Rank), string(f.Role), string(f.Status),
		f.AvailabilityConfirmed, toNullTime(f.ConfirmationRequestedAt), toNullTime(f.ConfirmedAt), toNullTime(f.CancelledAt),
		toNullString(f.CancellationReason), toNullTime(f.PromotedAt), toNullString(f.PromotedFrom),
		f.CreatedAt.UTC(), f.UpdatedAt.UTC(),
	)
	return translateWriteError(err)
}

// UpdateTx rewrites every mutable column of a lineup member.  Callers
// that move a row into an occupied rank must first release the other
// row's rank in the same transaction.
func (r *FinalistRepo) UpdateTx(ctx context.Context, tx *sql.Tx, f *model.Finalist) error {
	const q = `UPDATE live_show_finalists
	           SET lineup_rank = ?, role = ?, status = ?, availability_confirmed = ?,
	               confirmation_requested_at = ?, confirmed_at = ?, cancelled_at = ?,
	               cancellation_reason = ?, promoted_at = ?, promoted_from = ?, updated_at = ?
	           WHERE id = ?`
	res, err := tx.ExecContext(ctx, q,
		rankArg(f.Rank), string(f.Role), string(f.Status), f.AvailabilityConfirmed,
		toNullTime(f.ConfirmationRequestedAt), toNullTime(f.ConfirmedAt), toNullTime(f.CancelledAt),
		toNullString(f.CancellationReason), toNullTime(f.PromotedAt), toNullString(f.PromotedFrom),
		f.UpdatedAt.UTC(), f.ID,
	)
	if err != nil {
		return translateWriteError(err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if _, err := r.get(ctx, tx, f.ID); err != nil {
			return err
		}
	}
	return nil
}
