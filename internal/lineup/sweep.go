package lineup

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/live-show-lineup/internal/model"
	"github.com/iliyamo/live-show-lineup/internal/repository"
)

const noShowReason = "no_show"

// SweepReport summarizes one deadline sweep.
type SweepReport struct {
	ShowsSwept  int          `json:"showsSwept"`
	Cancelled   int          `json:"cancelled"`
	Penalized   int          `json:"penalized"`
	Resolutions []Resolution `json:"resolutions,omitempty"`
}

// SweepConfirmationDeadlines cancels, as the system, every finalist of
// an open lineup who is still unconfirmed after the show's confirmation
// deadline.  Shows with penalties enabled also record a no_show warning
// per cancellation.  A second sweep finds nothing left to do.
func (s *Service) SweepConfirmationDeadlines(ctx context.Context) (SweepReport, error) {
	var report SweepReport
	shows, err := s.store.ListUnlockedShows(ctx)
	if err != nil {
		return report, fmt.Errorf("list unlocked shows: %w", err)
	}
	now := s.now()
	var errs []error
	for _, show := range shows {
		if now.Before(ConfirmationDeadline(show.ScheduledStart)) {
			continue
		}
		if err := ctx.Err(); err != nil {
			return report, err
		}
		if err := s.sweepShow(ctx, show.ID, &report); err != nil {
			s.logger.Warn("deadline sweep failed", zap.String("show_id", show.ID), zap.Error(err))
			errs = append(errs, fmt.Errorf("show %s: %w", show.ID, err))
		}
	}
	return report, errors.Join(errs...)
}

func (s *Service) sweepShow(ctx context.Context, showID string, report *SweepReport) error {
	var (
		cancelled, penalized int
		resolutions          []Resolution
	)
	err := s.inShow(ctx, "sweep", showID, func(tx repository.Tx) error {
		cancelled, penalized, resolutions = 0, 0, nil
		show, err := tx.GetShow(ctx, showID)
		if err != nil {
			return fmt.Errorf("load show: %w", err)
		}
		if show.LineupLocked {
			return nil
		}
		finalists, err := tx.ListFinalistsByShow(ctx, showID)
		if err != nil {
			return fmt.Errorf("list finalists: %w", err)
		}
		for _, snapshot := range finalists {
			if snapshot.Role != model.RoleFinalist || snapshot.Status != model.StatusSelected {
				continue
			}
			// Earlier cancellations in this loop may have promoted or
			// released rows; act on the current version.
			f, err := tx.GetFinalist(ctx, snapshot.ID)
			if err != nil {
				return fmt.Errorf("reload finalist: %w", err)
			}
			if f.Status != model.StatusSelected {
				continue
			}
			res, err := s.cancelInTx(ctx, tx, f, systemActor, noShowReason)
			if err != nil {
				return err
			}
			cancelled++
			if res != nil {
				resolutions = append(resolutions, *res)
			}
			if show.PenaltiesEnabled {
				if _, err := s.penaltyInTx(ctx, tx, PenaltyInput{
					UserID:   f.UserID,
					ShowID:   &showID,
					Type:     model.PenaltyNoShow,
					Severity: model.SeverityWarning,
				}); err != nil {
					return err
				}
				penalized++
			}
		}
		return nil
	})
	if err != nil {
		return err
	}
	if cancelled > 0 {
		report.ShowsSwept++
		report.Cancelled += cancelled
		report.Penalized += penalized
		report.Resolutions = append(report.Resolutions, resolutions...)
		s.logger.Info("confirmation deadline passed",
			zap.String("show_id", showID), zap.Int("cancelled", cancelled), zap.Int("penalized", penalized))
	}
	return nil
}
