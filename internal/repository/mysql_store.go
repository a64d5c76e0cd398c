package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/iliyamo/live-show-lineup/internal/model"
)

// MySQLStore implements Store on top of the table repositories.  Units
// of work are database transactions; WithinShow additionally takes the
// show row lock with SELECT ... FOR UPDATE.
type MySQLStore struct {
	db            *sql.DB
	shows         *ShowRepo
	finalists     *FinalistRepo
	notifications *NotificationRepo
	penalties     *PenaltyRepo
	audit         *AuditRepo
}

var _ Store = (*MySQLStore)(nil)

// NewMySQLStore wires the table repositories around db.
func NewMySQLStore(db *sql.DB) *MySQLStore {
	return &MySQLStore{
		db:            db,
		shows:         NewShowRepo(db),
		finalists:     NewFinalistRepo(db),
		notifications: NewNotificationRepo(db),
		penalties:     NewPenaltyRepo(db),
		audit:         NewAuditRepo(db),
	}
}

func (s *MySQLStore) GetShow(ctx context.Context, id string) (*model.LiveShow, error) {
	return s.shows.GetByID(ctx, id)
}

func (s *MySQLStore) ListShows(ctx context.Context) ([]model.LiveShow, error) {
	return s.shows.List(ctx)
}

func (s *MySQLStore) ListUnlockedShows(ctx context.Context) ([]model.LiveShow, error) {
	return s.shows.ListUnlocked(ctx)
}

func (s *MySQLStore) GetFinalist(ctx context.Context, id string) (*model.Finalist, error) {
	return s.finalists.GetByID(ctx, id)
}

func (s *MySQLStore) ListFinalistsByShow(ctx context.Context, showID string) ([]model.Finalist, error) {
	return s.finalists.ListByShow(ctx, showID)
}

func (s *MySQLStore) ListAuditByShow(ctx context.Context, showID string) ([]model.AuditEntry, error) {
	return s.audit.ListByShow(ctx, showID)
}

func (s *MySQLStore) ListPenaltiesByUser(ctx context.Context, userID string) ([]model.Penalty, error) {
	return s.penalties.ListByUser(ctx, userID)
}

func (s *MySQLStore) ListPendingNotifications(ctx context.Context, limit int) ([]model.Notification, error) {
	return s.notifications.ListPending(ctx, limit)
}

func (s *MySQLStore) MarkNotificationDispatched(ctx context.Context, id string, at time.Time) error {
	return s.notifications.MarkDispatched(ctx, id, at)
}

// WithinShow locks the show row and runs fn in the same transaction.
func (s *MySQLStore) WithinShow(ctx context.Context, showID string, fn func(tx Tx) error) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		if _, err := s.shows.LockTx(ctx, tx, showID); err != nil {
			return err
		}
		return fn(&mysqlTx{store: s, tx: tx})
	})
}

// Within runs fn in a plain transaction.
func (s *MySQLStore) Within(ctx context.Context, fn func(tx Tx) error) error {
	return s.inTx(ctx, func(tx *sql.Tx) error {
		return fn(&mysqlTx{store: s, tx: tx})
	})
}

func (s *MySQLStore) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin transaction: %w", err)
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()
	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit transaction: %w", err)
	}
	committed = true
	return nil
}

// mysqlTx adapts the table repositories' Tx methods to the Tx port.
type mysqlTx struct {
	store *MySQLStore
	tx    *sql.Tx
}

func (t *mysqlTx) GetShow(ctx context.Context, id string) (*model.LiveShow, error) {
	return t.store.shows.GetByIDTx(ctx, t.tx, id)
}

func (t *mysqlTx) InsertShow(ctx context.Context, sh *model.LiveShow) error {
	return t.store.shows.CreateTx(ctx, t.tx, sh)
}

func (t *mysqlTx) UpdateShow(ctx context.Context, sh *model.LiveShow) error {
	return t.store.shows.UpdateTx(ctx, t.tx, sh)
}

func (t *mysqlTx) GetFinalist(ctx context.Context, id string) (*model.Finalist, error) {
	return t.store.finalists.GetByIDTx(ctx, t.tx, id)
}

func (t *mysqlTx) ListFinalistsByShow(ctx context.Context, showID string) ([]model.Finalist, error) {
	return t.store.finalists.ListByShowTx(ctx, t.tx, showID)
}

func (t *mysqlTx) InsertFinalist(ctx context.Context, f *model.Finalist) error {
	return t.store.finalists.CreateTx(ctx, t.tx, f)
}

func (t *mysqlTx) UpdateFinalist(ctx context.Context, f *model.Finalist) error {
	return t.store.finalists.UpdateTx(ctx, t.tx, f)
}

func (t *mysqlTx) InsertNotification(ctx context.Context, n *model.Notification) error {
	return t.store.notifications.CreateTx(ctx, t.tx, n)
}

func (t *mysqlTx) InsertPenalty(ctx context.Context, p *model.Penalty) error {
	return t.store.penalties.CreateTx(ctx, t.tx, p)
}

func (t *mysqlTx) InsertAudit(ctx context.Context, e *model.AuditEntry) error {
	return t.store.audit.CreateTx(ctx, t.tx, e)
}
