// This file holds the MySQL queries for the live_shows table.  A live
// show is the weekly broadcast whose lineup the service manages.  All
// timestamps are stored in UTC (the DSN sets loc=UTC and parseTime).

package repository

import (
	"context"
	"database/sql"

	"github.com/iliyamo/live-show-lineup/internal/model"
)

const showColumns = `id, week_number, title, description, scheduled_start, scheduled_end,
	lineup_locked, lineup_locked_at, fallback_mode, fallback_reason, penalties_enabled,
	created_at, updated_at`

// ShowRepo manages persistence for live shows.
type ShowRepo struct {
	db *sql.DB
}

// NewShowRepo constructs a ShowRepo with the given DB handle.
func NewShowRepo(db *sql.DB) *ShowRepo {
	return &ShowRepo{db: db}
}

func scanShow(row rowScanner) (*model.LiveShow, error) {
	var (
		s        model.LiveShow
		desc     sql.NullString
		reason   sql.NullString
		lockedAt sql.NullTime
		mode     string
	)
	err := row.Scan(
		&s.ID, &s.WeekNumber, &s.Title, &desc, &s.ScheduledStart, &s.ScheduledEnd,
		&s.LineupLocked, &lockedAt, &mode, &reason, &s.PenaltiesEnabled,
		&s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	s.Description = fromNullString(desc)
	s.FallbackReason = fromNullString(reason)
	s.LineupLockedAt = fromNullTime(lockedAt)
	s.FallbackMode = model.FallbackMode(mode)
	s.ScheduledStart = s.ScheduledStart.UTC()
	s.ScheduledEnd = s.ScheduledEnd.UTC()
	return &s, nil
}

func (r *ShowRepo) get(ctx context.Context, q queryer, id string, forUpdate bool) (*model.LiveShow, error) {
	query := `SELECT ` + showColumns + ` FROM live_shows WHERE id = ?`
	if forUpdate {
		query += ` FOR UPDATE`
	}
	s, err := scanShow(q.QueryRowContext(ctx, query, id))
	if err != nil {
		return nil, notFound(err)
	}
	return s, nil
}

// GetByID retrieves a show by its ID.  It returns ErrNotFound if there
// is no matching row.
func (r *ShowRepo) GetByID(ctx context.Context, id string) (*model.LiveShow, error) {
	return r.get(ctx, r.db, id, false)
}

// GetByIDTx reads a show inside an existing transaction.
func (r *ShowRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id string) (*model.LiveShow, error) {
	return r.get(ctx, tx, id, false)
}

// LockTx reads the show with SELECT ... FOR UPDATE.  Every unit of work
// on a show starts here, which serializes concurrent cancellations and
// locks of the same lineup.
func (r *ShowRepo) LockTx(ctx context.Context, tx *sql.Tx, id string) (*model.LiveShow, error) {
	return r.get(ctx, tx, id, true)
}

// CreateTx inserts a new show using the provided transaction.  The
// caller must commit or roll back the transaction.
func (r *ShowRepo) CreateTx(ctx context.Context, tx *sql.Tx, s *model.LiveShow) error {
	const q = `INSERT INTO live_shows (` + showColumns + `)
	           VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := tx.ExecContext(ctx, q,
		s.ID, s.WeekNumber, s.Title, toNullString(s.Description), s.ScheduledStart.UTC(), s.ScheduledEnd.UTC(),
		s.LineupLocked, toNullTime(s.LineupLockedAt), string(s.FallbackMode), toNullString(s.FallbackReason),
		s.PenaltiesEnabled, s.CreatedAt.UTC(), s.UpdatedAt.UTC(),
	)
	return err
}

// UpdateTx writes the mutable columns of a show (lock flag and fallback
// mode).  It returns ErrNotFound when no row matches the ID.
func (r *ShowRepo) UpdateTx(ctx context.Context, tx *sql.Tx, s *model.LiveShow) error {
	const q = `UPDATE live_shows
	           SET lineup_locked = ?, lineup_locked_at = ?, fallback_mode = ?, fallback_reason = ?, updated_at = ?
	           WHERE id = ?`
	res, err := tx.ExecContext(ctx, q,
		s.LineupLocked, toNullTime(s.LineupLockedAt), string(s.FallbackMode), toNullString(s.FallbackReason),
		s.UpdatedAt.UTC(), s.ID,
	)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		// MySQL reports 0 affected rows when nothing changed, so confirm
		// that the row exists before failing.
		if _, err := r.get(ctx, tx, s.ID, false); err != nil {
			return err
		}
	}
	return nil
}

func (r *ShowRepo) list(ctx context.Context, where string) ([]model.LiveShow, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+showColumns+` FROM live_shows `+where+` ORDER BY week_number DESC, scheduled_start DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	shows := make([]model.LiveShow, 0)
	for rows.Next() {
		s, err := scanShow(rows)
		if err != nil {
			return nil, err
		}
		shows = append(shows, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return shows, nil
}

// List returns every show, newest week first.
func (r *ShowRepo) List(ctx context.Context) ([]model.LiveShow, error) {
	return r.list(ctx, "")
}

// ListUnlocked returns the shows whose lineup can still change.  The
// deadline sweeper iterates over them.
func (r *ShowRepo) ListUnlocked(ctx context.Context) ([]model.LiveShow, error) {
	return r.list(ctx, "WHERE lineup_locked = 0")
}
