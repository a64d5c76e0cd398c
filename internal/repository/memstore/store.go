// Package memstore is an in-memory implementation of repository.Store.
// It backs the lineup tests and the "memory" store driver used for local
// development.  Units of work stage their writes and apply them on
// success only; WithinShow serializes units of work per show with a
// dedicated mutex, the same guarantee the MySQL store gets from
// SELECT ... FOR UPDATE.
package memstore

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/iliyamo/live-show-lineup/internal/model"
	"github.com/iliyamo/live-show-lineup/internal/repository"
)

// Store keeps every table in maps and slices guarded by mu.
type Store struct {
	mu            sync.RWMutex
	shows         map[string]model.LiveShow
	finalists     map[string]model.Finalist
	order         map[string]int64 // finalist id -> designation sequence
	notifications []model.Notification
	penalties     []model.Penalty
	audit         []model.AuditEntry
	seq           int64

	locksMu   sync.Mutex
	showLocks map[string]*sync.Mutex
}

var _ repository.Store = (*Store)(nil)

// New returns an empty store.
func New() *Store {
	return &Store{
		shows:     make(map[string]model.LiveShow),
		finalists: make(map[string]model.Finalist),
		order:     make(map[string]int64),
		showLocks: make(map[string]*sync.Mutex),
	}
}

func (s *Store) showLock(id string) *sync.Mutex {
	s.locksMu.Lock()
	defer s.locksMu.Unlock()
	l, ok := s.showLocks[id]
	if !ok {
		l = &sync.Mutex{}
		s.showLocks[id] = l
	}
	return l
}

func (s *Store) nextSeq() int64 {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.seq++
	return s.seq
}

// GetShow returns a copy of the show or repository.ErrNotFound.
func (s *Store) GetShow(_ context.Context, id string) (*model.LiveShow, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	sh, ok := s.shows[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := cloneShow(sh)
	return &c, nil
}

// ListShows returns every show, newest week first.
func (s *Store) ListShows(_ context.Context) ([]model.LiveShow, error) {
	return s.listShows(func(model.LiveShow) bool { return true }), nil
}

// ListUnlockedShows returns the shows whose lineup is not locked.
func (s *Store) ListUnlockedShows(_ context.Context) ([]model.LiveShow, error) {
	return s.listShows(func(sh model.LiveShow) bool { return !sh.LineupLocked }), nil
}

func (s *Store) listShows(keep func(model.LiveShow) bool) []model.LiveShow {
	s.mu.RLock()
	out := make([]model.LiveShow, 0, len(s.shows))
	for _, sh := range s.shows {
		if keep(sh) {
			out = append(out, cloneShow(sh))
		}
	}
	s.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool {
		if out[i].WeekNumber != out[j].WeekNumber {
			return out[i].WeekNumber > out[j].WeekNumber
		}
		return out[i].ScheduledStart.After(out[j].ScheduledStart)
	})
	return out
}

// GetFinalist returns a copy of the finalist or repository.ErrNotFound.
func (s *Store) GetFinalist(_ context.Context, id string) (*model.Finalist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	f, ok := s.finalists[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	c := cloneFinalist(f)
	return &c, nil
}

// ListFinalistsByShow returns the show's lineup members ordered by rank.
func (s *Store) ListFinalistsByShow(_ context.Context, showID string) ([]model.Finalist, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Finalist, 0, 4)
	order := make(map[string]int64)
	for id, f := range s.finalists {
		if f.LiveShowID == showID {
			out = append(out, cloneFinalist(f))
			order[id] = s.order[id]
		}
	}
	sortFinalists(out, order)
	return out, nil
}

// ListAuditByShow returns the show's journal in insertion order.
func (s *Store) ListAuditByShow(_ context.Context, showID string) ([]model.AuditEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.AuditEntry, 0)
	for _, e := range s.audit {
		if e.LiveShowID != nil && *e.LiveShowID == showID {
			out = append(out, e)
		}
	}
	return out, nil
}

// ListPenaltiesByUser returns a performer's penalties, newest first.
func (s *Store) ListPenaltiesByUser(_ context.Context, userID string) ([]model.Penalty, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Penalty, 0)
	for i := len(s.penalties) - 1; i >= 0; i-- {
		if s.penalties[i].UserID == userID {
			out = append(out, s.penalties[i])
		}
	}
	return out, nil
}

// ListPendingNotifications returns undispatched notifications, oldest first.
func (s *Store) ListPendingNotifications(_ context.Context, limit int) ([]model.Notification, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Notification, 0)
	for _, n := range s.notifications {
		if limit > 0 && len(out) >= limit {
			break
		}
		if n.DispatchedAt == nil {
			out = append(out, n)
		}
	}
	return out, nil
}

// MarkNotificationDispatched stamps a notification once.
func (s *Store) MarkNotificationDispatched(_ context.Context, id string, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i := range s.notifications {
		if s.notifications[i].ID == id {
			if s.notifications[i].DispatchedAt == nil {
				t := at.UTC()
				s.notifications[i].DispatchedAt = &t
			}
			return nil
		}
	}
	return repository.ErrNotFound
}

// Notifications returns every queued notification in insertion order.
func (s *Store) Notifications() []model.Notification {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]model.Notification, len(s.notifications))
	copy(out, s.notifications)
	return out
}

// WithinShow serializes fn with every other unit of work on the show.
func (s *Store) WithinShow(ctx context.Context, showID string, fn func(tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if _, err := s.GetShow(ctx, showID); err != nil {
		return err
	}
	l := s.showLock(showID)
	l.Lock()
	defer l.Unlock()
	return s.run(fn)
}

// Within runs fn without a show lock.
func (s *Store) Within(ctx context.Context, fn func(tx repository.Tx) error) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	return s.run(fn)
}

func (s *Store) run(fn func(tx repository.Tx) error) error {
	t := newTx(s)
	if err := fn(t); err != nil {
		return err
	}
	t.commit()
	return nil
}

func sortFinalists(fs []model.Finalist, order map[string]int64) {
	sort.SliceStable(fs, func(i, j int) bool {
		ri, rj := fs[i].Rank, fs[j].Rank
		switch {
		case ri != nil && rj != nil && *ri != *rj:
			return *ri < *rj
		case ri != nil && rj == nil:
			return true
		case ri == nil && rj != nil:
			return false
		}
		return order[fs[i].ID] < order[fs[j].ID]
	})
}

func cloneShow(sh model.LiveShow) model.LiveShow {
	sh.Description = cloneString(sh.Description)
	sh.FallbackReason = cloneString(sh.FallbackReason)
	sh.LineupLockedAt = cloneTime(sh.LineupLockedAt)
	return sh
}

func cloneFinalist(f model.Finalist) model.Finalist {
	if f.Rank != nil {
		r := *f.Rank
		f.Rank = &r
	}
	f.ConfirmationRequestedAt = cloneTime(f.ConfirmationRequestedAt)
	f.ConfirmedAt = cloneTime(f.ConfirmedAt)
	f.CancelledAt = cloneTime(f.CancelledAt)
	f.CancellationReason = cloneString(f.CancellationReason)
	f.PromotedAt = cloneTime(f.PromotedAt)
	f.PromotedFrom = cloneString(f.PromotedFrom)
	return f
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	c := *s
	return &c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	c := *t
	return &c
}
