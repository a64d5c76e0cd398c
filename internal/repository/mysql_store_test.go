package repository

import (
	"context"
	"database/sql"
	"database/sql/driver"
	"errors"
	"regexp"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/go-sql-driver/mysql"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/live-show-lineup/internal/model"
)

var ts = time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)

func newMockStore(t *testing.T) (*MySQLStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })
	return NewMySQLStore(db), mock
}

// columnNames splits a column list constant so mocked rows carry the
// exact names and order the scanners read.
func columnNames(list string) []string {
	parts := strings.Split(list, ",")
	for i := range parts {
		parts[i] = strings.TrimSpace(parts[i])
	}
	return parts
}

func finalistRows(rows ...[]driver.Value) *sqlmock.Rows {
	r := sqlmock.NewRows(columnNames(finalistColumns))
	for _, v := range rows {
		r.AddRow(v...)
	}
	return r
}

func plainFinalist(id, userID string, rank any, status model.FinalistStatus) []driver.Value {
	return []driver.Value{
		id, "show-1", userID, "Artist " + userID, rank, "finalist", string(status),
		false, nil, nil, nil, nil, nil, nil, ts, ts,
	}
}

func showRow(id string, locked bool) *sqlmock.Rows {
	return sqlmock.NewRows(columnNames(showColumns)).AddRow(
		id, int64(42), "Week 42", nil, ts.Add(48*time.Hour), ts.Add(50*time.Hour),
		locked, nil, "battle", nil, true, ts, ts,
	)
}

func lit(s string) string { return regexp.QuoteMeta(s) }

func TestFinalistColumnsScanInOrder(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(lit("FROM live_show_finalists WHERE id = ?")).
		WithArgs("f-1").
		WillReturnRows(finalistRows([]driver.Value{
			"f-1", "show-1", "user-1", "Nova", int64(2), "alternate", "promoted",
			true, ts.Add(1 * time.Hour), ts.Add(2 * time.Hour), ts.Add(3 * time.Hour),
			"sick", ts.Add(4 * time.Hour), "A1", ts, ts.Add(5 * time.Hour),
		}))

	f, err := s.GetFinalist(context.Background(), "f-1")
	require.NoError(t, err)
	assert.Equal(t, "f-1", f.ID)
	assert.Equal(t, "show-1", f.LiveShowID)
	assert.Equal(t, "user-1", f.UserID)
	assert.Equal(t, "Nova", f.ArtistName)
	require.NotNil(t, f.Rank)
	assert.Equal(t, model.SlotF2, *f.Rank)
	assert.Equal(t, model.RoleAlternate, f.Role)
	assert.Equal(t, model.StatusPromoted, f.Status)
	assert.True(t, f.AvailabilityConfirmed)
	assert.Equal(t, ts.Add(1*time.Hour), *f.ConfirmationRequestedAt)
	assert.Equal(t, ts.Add(2*time.Hour), *f.ConfirmedAt)
	assert.Equal(t, ts.Add(3*time.Hour), *f.CancelledAt)
	assert.Equal(t, "sick", *f.CancellationReason)
	assert.Equal(t, ts.Add(4*time.Hour), *f.PromotedAt)
	assert.Equal(t, "A1", *f.PromotedFrom)
	assert.Equal(t, ts, f.CreatedAt)
	assert.Equal(t, ts.Add(5*time.Hour), f.UpdatedAt)

	require.NoError(t, mock.ExpectationsWereMet())
}

func TestFinalistNullColumnsScanAsNil(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(lit("FROM live_show_finalists WHERE id = ?")).
		WithArgs("f-1").
		WillReturnRows(finalistRows(plainFinalist("f-1", "user-1", nil, model.StatusCancelled)))

	f, err := s.GetFinalist(context.Background(), "f-1")
	require.NoError(t, err)
	assert.Nil(t, f.Rank)
	assert.Nil(t, f.ConfirmationRequestedAt)
	assert.Nil(t, f.ConfirmedAt)
	assert.Nil(t, f.CancelledAt)
	assert.Nil(t, f.CancellationReason)
	assert.Nil(t, f.PromotedAt)
	assert.Nil(t, f.PromotedFrom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestGetFinalistNotFound(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectQuery(lit("FROM live_show_finalists WHERE id = ?")).
		WithArgs("missing").
		WillReturnRows(finalistRows())

	_, err := s.GetFinalist(context.Background(), "missing")
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestListFinalistsByShowPutsReleasedRanksLast(t *testing.T) {
	s, mock := newMockStore(t)

	mock.ExpectQuery(lit("WHERE live_show_id = ? ORDER BY lineup_rank IS NULL, lineup_rank, created_at, id")).
		WithArgs("show-1").
		WillReturnRows(finalistRows(
			plainFinalist("f-1", "user-1", int64(1), model.StatusConfirmed),
			plainFinalist("a-1", "user-3", int64(2), model.StatusPromoted),
			plainFinalist("f-2", "user-2", nil, model.StatusCancelled),
		))

	got, err := s.ListFinalistsByShow(context.Background(), "show-1")
	require.NoError(t, err)
	require.Len(t, got, 3)
	assert.Equal(t, []string{"f-1", "a-1", "f-2"}, []string{got[0].ID, got[1].ID, got[2].ID})
	assert.Nil(t, got[2].Rank)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestInsertFinalistTranslatesDuplicateEntry(t *testing.T) {
	cases := []struct {
		name string
		key  string
		want error
	}{
		{"rank", "live_show_finalists.uq_finalists_show_rank", ErrRankTaken},
		{"member", "live_show_finalists.uq_finalists_show_user", ErrDuplicateMember},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			s, mock := newMockStore(t)
			dup := &mysql.MySQLError{Number: mysqlDuplicateEntry, Message: "Duplicate entry 'show-1-2' for key '" + tc.key + "'"}

			mock.ExpectBegin()
			mock.ExpectExec(lit("INSERT INTO live_show_finalists")).WillReturnError(dup)
			mock.ExpectRollback()

			rank := model.SlotF2
			err := s.Within(context.Background(), func(tx Tx) error {
				return tx.InsertFinalist(context.Background(), &model.Finalist{
					ID: "f-9", LiveShowID: "show-1", UserID: "user-9", Rank: &rank,
					Role: model.RoleFinalist, Status: model.StatusSelected, CreatedAt: ts, UpdatedAt: ts,
				})
			})
			assert.ErrorIs(t, err, tc.want)
			require.NoError(t, mock.ExpectationsWereMet())
		})
	}

	t.Run("other errors pass through", func(t *testing.T) {
		other := &mysql.MySQLError{Number: mysqlDuplicateEntry, Message: "Duplicate entry 'x' for key 'PRIMARY'"}
		assert.Same(t, other, translateWriteError(other))
		plain := errors.New("connection reset")
		assert.Same(t, plain, translateWriteError(plain))
		assert.NoError(t, translateWriteError(nil))
	})
}

func TestUpdateFinalistWithNoAffectedRows(t *testing.T) {
	f := &model.Finalist{ID: "f-1", Role: model.RoleFinalist, Status: model.StatusConfirmed, UpdatedAt: ts}

	t.Run("row missing", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec(lit("UPDATE live_show_finalists")).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(lit("FROM live_show_finalists WHERE id = ?")).WithArgs("f-1").WillReturnRows(finalistRows())
		mock.ExpectRollback()

		err := s.Within(context.Background(), func(tx Tx) error { return tx.UpdateFinalist(context.Background(), f) })
		assert.ErrorIs(t, err, ErrNotFound)
		require.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("row unchanged", func(t *testing.T) {
		s, mock := newMockStore(t)
		mock.ExpectBegin()
		mock.ExpectExec(lit("UPDATE live_show_finalists")).WillReturnResult(sqlmock.NewResult(0, 0))
		mock.ExpectQuery(lit("FROM live_show_finalists WHERE id = ?")).
			WithArgs("f-1").
			WillReturnRows(finalistRows(plainFinalist("f-1", "user-1", int64(1), model.StatusConfirmed)))
		mock.ExpectCommit()

		err := s.Within(context.Background(), func(tx Tx) error { return tx.UpdateFinalist(context.Background(), f) })
		assert.NoError(t, err)
		require.NoError(t, mock.ExpectationsWereMet())
	})
}

func TestUpdateShowWithNoAffectedRows(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectExec(lit("UPDATE live_shows")).WillReturnResult(sqlmock.NewResult(0, 0))
	mock.ExpectQuery(lit("FROM live_shows WHERE id = ?")).WithArgs("show-x").WillReturnRows(sqlmock.NewRows(columnNames(showColumns)))
	mock.ExpectRollback()

	err := s.Within(context.Background(), func(tx Tx) error {
		return tx.UpdateShow(context.Background(), &model.LiveShow{ID: "show-x", FallbackMode: model.FallbackBattle, UpdatedAt: ts})
	})
	assert.ErrorIs(t, err, ErrNotFound)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinShowLocksShowRowFirst(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery(lit("FROM live_shows WHERE id = ? FOR UPDATE")).WithArgs("show-1").WillReturnRows(showRow("show-1", false))
	mock.ExpectQuery(lit("FROM live_shows WHERE id = ?")).WithArgs("show-1").WillReturnRows(showRow("show-1", false))
	mock.ExpectCommit()

	var got *model.LiveShow
	err := s.WithinShow(context.Background(), "show-1", func(tx Tx) error {
		var err error
		got, err = tx.GetShow(context.Background(), "show-1")
		return err
	})
	require.NoError(t, err)
	assert.Equal(t, 42, got.WeekNumber)
	assert.Equal(t, ts.Add(48*time.Hour), got.ScheduledStart)
	assert.Equal(t, ts.Add(50*time.Hour), got.ScheduledEnd)
	assert.Equal(t, model.FallbackBattle, got.FallbackMode)
	assert.True(t, got.PenaltiesEnabled)
	assert.Nil(t, got.Description)
	assert.Nil(t, got.LineupLockedAt)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinShowUnknownShowSkipsWork(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectQuery(lit("FOR UPDATE")).WithArgs("missing").WillReturnRows(sqlmock.NewRows(columnNames(showColumns)))
	mock.ExpectRollback()

	called := false
	err := s.WithinShow(context.Background(), "missing", func(Tx) error {
		called = true
		return nil
	})
	assert.ErrorIs(t, err, ErrNotFound)
	assert.False(t, called)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestWithinRollsBackOnError(t *testing.T) {
	s, mock := newMockStore(t)
	mock.ExpectBegin()
	mock.ExpectRollback()

	boom := errors.New("boom")
	err := s.Within(context.Background(), func(Tx) error { return boom })
	assert.ErrorIs(t, err, boom)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestPromotionReleasesRankBeforeTakingIt(t *testing.T) {
	s, mock := newMockStore(t)
	slot := model.SlotF2
	released := &model.Finalist{ID: "f-2", Role: model.RoleFinalist, Status: model.StatusCancelled,
		CancelledAt: &ts, CancellationReason: strPtr("travel"), UpdatedAt: ts}
	promoted := &model.Finalist{ID: "a-1", Rank: &slot, Role: model.RoleFinalist, Status: model.StatusPromoted,
		PromotedAt: &ts, PromotedFrom: strPtr("A1"), UpdatedAt: ts}

	mock.ExpectBegin()
	mock.ExpectQuery(lit("FOR UPDATE")).WithArgs("show-1").WillReturnRows(showRow("show-1", false))
	mock.ExpectExec(lit("UPDATE live_show_finalists")).
		WithArgs(nil, "finalist", "cancelled", false, nil, nil, ts, "travel", nil, nil, ts, "f-2").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec(lit("UPDATE live_show_finalists")).
		WithArgs(int64(2), "finalist", "promoted", false, nil, nil, nil, nil, ts, "A1", ts, "a-1").
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()

	err := s.WithinShow(context.Background(), "show-1", func(tx Tx) error {
		if err := tx.UpdateFinalist(context.Background(), released); err != nil {
			return err
		}
		return tx.UpdateFinalist(context.Background(), promoted)
	})
	require.NoError(t, err)
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestNotificationMetadataRoundTrip(t *testing.T) {
	s, mock := newMockStore(t)
	cols := []string{"id", "live_show_id", "recipient_id", "notification_type", "subject", "message", "action_url", "metadata", "created_at"}

	mock.ExpectBegin()
	mock.ExpectExec(lit("INSERT INTO live_show_notifications")).
		WithArgs("n-1", "show-1", "user-1", "promotion", "subj", "msg", nil, nil, ts).
		WillReturnResult(sqlmock.NewResult(1, 1))
	mock.ExpectCommit()
	mock.ExpectQuery(lit("WHERE dispatched_at IS NULL ORDER BY seq LIMIT ?")).
		WithArgs(10).
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("n-1", "show-1", "user-1", "promotion", "subj", "msg", nil, nil, ts).
			AddRow("n-2", "show-1", "user-2", "promotion", "subj", "msg", "/live-show/show-1", []byte(`{"slot":"F2"}`), ts))
	mock.ExpectExec(lit("SET dispatched_at = ? WHERE id = ? AND dispatched_at IS NULL")).
		WithArgs(ts, "n-1").
		WillReturnResult(sqlmock.NewResult(0, 1))

	ctx := context.Background()
	err := s.Within(ctx, func(tx Tx) error {
		return tx.InsertNotification(ctx, &model.Notification{
			ID: "n-1", LiveShowID: "show-1", RecipientID: "user-1", Type: model.NotificationPromotion,
			Subject: "subj", Message: "msg", Metadata: map[string]any{}, CreatedAt: ts,
		})
	})
	require.NoError(t, err)

	pending, err := s.ListPendingNotifications(ctx, 10)
	require.NoError(t, err)
	require.Len(t, pending, 2)
	assert.Nil(t, pending[0].Metadata)
	assert.Empty(t, pending[0].ActionURL)
	assert.Equal(t, map[string]any{"slot": "F2"}, pending[1].Metadata)
	assert.Equal(t, "/live-show/show-1", pending[1].ActionURL)

	require.NoError(t, s.MarkNotificationDispatched(ctx, "n-1", ts))
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestAuditNullableColumns(t *testing.T) {
	s, mock := newMockStore(t)
	cols := []string{"id", "live_show_id", "action_type", "performed_by", "performed_by_type", "target_user_id", "description", "metadata", "created_at"}

	mock.ExpectQuery(lit("FROM live_show_audit WHERE live_show_id = ? ORDER BY seq")).
		WithArgs("show-1").
		WillReturnRows(sqlmock.NewRows(cols).
			AddRow("e-1", "show-1", "lineup_locked", "admin-1", "admin", nil, "locked", nil, ts).
			AddRow("e-2", "show-1", "alternate_promoted", "system", "system", "user-3", "promoted", []byte(`{"to":"F2"}`), ts))

	got, err := s.ListAuditByShow(context.Background(), "show-1")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Nil(t, got[0].TargetUserID)
	assert.Nil(t, got[0].Metadata)
	require.NotNil(t, got[1].TargetUserID)
	assert.Equal(t, "user-3", *got[1].TargetUserID)
	assert.Equal(t, "F2", got[1].Metadata["to"])
	require.NoError(t, mock.ExpectationsWereMet())
}

func TestMetadataHelpers(t *testing.T) {
	v, err := encodeMetadata(nil)
	require.NoError(t, err)
	assert.Nil(t, v)

	m, err := decodeMetadata(nil)
	require.NoError(t, err)
	assert.Nil(t, m)

	_, err = decodeMetadata([]byte("{"))
	assert.Error(t, err)

	assert.Nil(t, fromNullTime(sql.NullTime{}))
	assert.Equal(t, sql.NullString{}, toNullString(nil))
}

func strPtr(s string) *string { return &s }
