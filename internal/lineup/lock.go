package lineup

import (
	"context"
	"fmt"

	"github.com/iliyamo/live-show-lineup/internal/model"
	"github.com/iliyamo/live-show-lineup/internal/repository"
)

// ready reports whether f may take the stage.
func ready(f *model.Finalist) bool {
	return f != nil && (f.Status == model.StatusConfirmed || f.Status == model.StatusPromoted)
}

// LockLineup freezes the roster.  In battle mode both finalist slots
// must hold a confirmed or promoted performer; other fallback modes can
// be locked as they are.
func (s *Service) LockLineup(ctx context.Context, showID, adminID string) (*model.LiveShow, error) {
	var locked model.LiveShow
	err := s.inShow(ctx, "lock", showID, func(tx repository.Tx) error {
		show, err := lockedShow(ctx, tx, showID)
		if err != nil {
			return err
		}
		l, err := loadLineup(ctx, tx, show)
		if err != nil {
			return err
		}
		n := 0
		for _, f := range []*model.Finalist{l.F1, l.F2} {
			if ready(f) {
				n++
			}
		}
		if show.FallbackMode == model.FallbackBattle && n < 2 {
			return newError(CodeInsufficientLineup,
				"battle mode needs 2 confirmed finalists, have %d", n)
		}

		now := s.now()
		show.LineupLocked = true
		show.LineupLockedAt = timePtr(now)
		show.UpdatedAt = now
		if err := tx.UpdateShow(ctx, show); err != nil {
			return fmt.Errorf("lock show: %w", err)
		}
		if err := s.audit(ctx, tx, &showID, model.AuditLineupLocked,
			actor{id: adminID, kind: model.ActorAdmin}, nil, "Lineup locked by admin",
			map[string]any{"fallbackMode": string(show.FallbackMode), "readyFinalists": n},
		); err != nil {
			return err
		}
		locked = *show
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &locked, nil
}
