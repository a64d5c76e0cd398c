// Package lineup implements the Live Show lineup state machine: roster
// designation, the confirmation workflow, replacement scenarios, the
// lineup lock, penalties and the audit journal.
//
// Every mutation runs inside one unit of work scoped to its show (see
// repository.Store.WithinShow).  Preconditions are checked against the
// locked snapshot, so a rejected operation leaves no trace, and
// concurrent operations on one show observe each other's effects.
package lineup

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/iliyamo/live-show-lineup/internal/model"
	"github.com/iliyamo/live-show-lineup/internal/repository"
)

// SnapshotCache stores rendered lineups between reads.  Implementations
// must tolerate being unavailable; a miss simply falls through to the
// store.
//
// Each show has a generation that Invalidate advances after every
// committed change.  A miss reports the generation current at the time
// of the lookup, and Set stores the snapshot only if the generation is
// still the same, so a snapshot read before a commit can never replace
// the invalidation that followed it.
type SnapshotCache interface {
	Get(ctx context.Context, showID string) (l *Lineup, gen int64, hit bool)
	Set(ctx context.Context, showID string, gen int64, l *Lineup)
	Invalidate(ctx context.Context, showID string)
}

type noopCache struct{}

func (noopCache) Get(context.Context, string) (*Lineup, int64, bool) { return nil, 0, false }
func (noopCache) Set(context.Context, string, int64, *Lineup)        {}
func (noopCache) Invalidate(context.Context, string)                 {}

// Service is the lineup orchestrator.
type Service struct {
	store  repository.Store
	cache  SnapshotCache
	logger *zap.Logger
	now    func() time.Time
	newID  func() string
}

// Option customizes a Service.
type Option func(*Service)

// WithClock overrides the time source.
func WithClock(now func() time.Time) Option {
	return func(s *Service) { s.now = now }
}

// WithCache installs a lineup snapshot cache.
func WithCache(c SnapshotCache) Option {
	return func(s *Service) {
		if c != nil {
			s.cache = c
		}
	}
}

// WithIDGenerator overrides uuid generation.
func WithIDGenerator(fn func() string) Option {
	return func(s *Service) { s.newID = fn }
}

// NewService returns a Service backed by store.
func NewService(store repository.Store, logger *zap.Logger, opts ...Option) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Service{
		store:  store,
		cache:  noopCache{},
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
		newID:  uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// actor is who an audit entry is attributed to.
type actor struct {
	id   string
	kind model.ActorType
}

var systemActor = actor{id: "system", kind: model.ActorSystem}

// inShow runs fn in a unit of work holding the show lock.  A missing
// show becomes ErrNotFound, infrastructure failures are logged, and the
// cached snapshot is dropped after a successful commit.
func (s *Service) inShow(ctx context.Context, op, showID string, fn func(tx repository.Tx) error) error {
	started := time.Now()
	err := s.store.WithinShow(ctx, showID, fn)
	if err != nil && CodeOf(err) == "" && errors.Is(err, repository.ErrNotFound) {
		err = newError(CodeNotFound, "live show %s not found", showID)
	}
	observe(op, started, err)
	if err != nil {
		if CodeOf(err) == "" {
			s.logger.Error("lineup operation failed",
				zap.String("operation", op), zap.String("show_id", showID), zap.Error(err))
		}
		return err
	}
	s.cache.Invalidate(ctx, showID)
	return nil
}

// withFinalist resolves the finalist's show, then runs fn under that
// show's lock with a fresh copy of the finalist.
func (s *Service) withFinalist(ctx context.Context, op, finalistID string, fn func(tx repository.Tx, f *model.Finalist) error) error {
	f, err := s.store.GetFinalist(ctx, finalistID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			err = newError(CodeNotFound, "finalist %s not found", finalistID)
			observe(op, time.Now(), err)
			return err
		}
		return fmt.Errorf("get finalist: %w", err)
	}
	return s.inShow(ctx, op, f.LiveShowID, func(tx repository.Tx) error {
		cur, err := tx.GetFinalist(ctx, finalistID)
		if err != nil {
			return fmt.Errorf("reload finalist: %w", err)
		}
		return fn(tx, cur)
	})
}

// lockedShow loads the show inside tx and refuses when its lineup is
// frozen.
func lockedShow(ctx context.Context, tx repository.Tx, showID string) (*model.LiveShow, error) {
	show, err := tx.GetShow(ctx, showID)
	if err != nil {
		return nil, fmt.Errorf("load show: %w", err)
	}
	if show.LineupLocked {
		return nil, newError(CodeLineupLocked, "lineup of show %s is locked", showID)
	}
	return show, nil
}

func (s *Service) audit(ctx context.Context, tx repository.Tx, showID *string, action model.AuditAction,
	by actor, target *string, description string, meta map[string]any) error {
	e := &model.AuditEntry{
		ID:              s.newID(),
		LiveShowID:      showID,
		ActionType:      action,
		PerformedBy:     by.id,
		PerformedByType: by.kind,
		TargetUserID:    target,
		Description:     description,
		Metadata:        meta,
		CreatedAt:       s.now(),
	}
	if err := tx.InsertAudit(ctx, e); err != nil {
		return fmt.Errorf("audit %s: %w", action, err)
	}
	return nil
}

func (s *Service) notify(ctx context.Context, tx repository.Tx, n *model.Notification) error {
	n.ID = s.newID()
	n.CreatedAt = s.now()
	if err := tx.InsertNotification(ctx, n); err != nil {
		return fmt.Errorf("enqueue %s notification: %w", n.Type, err)
	}
	return nil
}

func strPtr(s string) *string { return &s }

func timePtr(t time.Time) *time.Time { return &t }
