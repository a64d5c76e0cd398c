package lineup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/live-show-lineup/internal/model"
	"github.com/iliyamo/live-show-lineup/internal/repository"
)

const defaultCancellationReason = "unspecified"

// ConfirmationDeadline is 18:00 UTC two days before the show starts.
func ConfirmationDeadline(start time.Time) time.Time {
	d := start.UTC().AddDate(0, 0, -2)
	return time.Date(d.Year(), d.Month(), d.Day(), 18, 0, 0, 0, time.UTC)
}

func slotLabel(f *model.Finalist) string {
	if f.Rank == nil {
		return "-"
	}
	return f.Rank.String()
}

// RequestConfirmations asks every finalist still in status selected to
// confirm.  It returns how many requests were sent.  Calling it again
// re-sends the requests and refreshes confirmationRequestedAt.
func (s *Service) RequestConfirmations(ctx context.Context, showID string) (int, error) {
	sent := 0
	err := s.inShow(ctx, "request_confirmations", showID, func(tx repository.Tx) error {
		sent = 0
		show, err := lockedShow(ctx, tx, showID)
		if err != nil {
			return err
		}
		finalists, err := tx.ListFinalistsByShow(ctx, showID)
		if err != nil {
			return fmt.Errorf("list finalists: %w", err)
		}
		deadline := ConfirmationDeadline(show.ScheduledStart)
		now := s.now()
		for i := range finalists {
			f := finalists[i]
			if f.Role != model.RoleFinalist || f.Status != model.StatusSelected {
				continue
			}
			if err := s.notify(ctx, tx, &model.Notification{
				LiveShowID:  showID,
				RecipientID: f.UserID,
				Type:        model.NotificationFinalistConfirmation,
				Subject:     "Participation confirmation - Live Show",
				Message: fmt.Sprintf("Congratulations! You are finalist %s. Please confirm your participation before %s.",
					slotLabel(&f), deadline.Format("Mon 2 Jan 15:04 MST")),
				ActionURL: "/live-show/confirm/" + f.ID,
				Metadata:  map[string]any{"deadline": deadline.Format(time.RFC3339)},
			}); err != nil {
				return err
			}
			f.ConfirmationRequestedAt = timePtr(now)
			f.UpdatedAt = now
			if err := tx.UpdateFinalist(ctx, &f); err != nil {
				return fmt.Errorf("stamp confirmation request: %w", err)
			}
			if err := s.audit(ctx, tx, &showID, model.AuditConfirmationRequested, systemActor, &f.UserID,
				fmt.Sprintf("Confirmation request sent to %s", f.ArtistName),
				map[string]any{"deadline": deadline.Format(time.RFC3339)},
			); err != nil {
				return err
			}
			sent++
		}
		return nil
	})
	if err != nil {
		return 0, err
	}
	return sent, nil
}

// ConfirmParticipation records that userID will perform.  Checks run in
// order: the finalist exists, belongs to userID, is still selected, and
// the lineup is open.
func (s *Service) ConfirmParticipation(ctx context.Context, finalistID, userID string) (*model.Finalist, error) {
	var confirmed model.Finalist
	err := s.withFinalist(ctx, "confirm", finalistID, func(tx repository.Tx, f *model.Finalist) error {
		if f.UserID != userID {
			return newError(CodeUnauthorized, "finalist %s does not belong to the caller", finalistID)
		}
		if f.Status != model.StatusSelected {
			return newError(CodeInvalidState, "cannot confirm a finalist in status %s", f.Status)
		}
		if _, err := lockedShow(ctx, tx, f.LiveShowID); err != nil {
			return err
		}
		now := s.now()
		f.Status = model.StatusConfirmed
		f.ConfirmedAt = timePtr(now)
		f.AvailabilityConfirmed = true
		f.UpdatedAt = now
		if err := tx.UpdateFinalist(ctx, f); err != nil {
			return fmt.Errorf("confirm finalist: %w", err)
		}
		if err := s.audit(ctx, tx, &f.LiveShowID, model.AuditFinalistConfirmed,
			actor{id: userID, kind: model.ActorUser}, &f.UserID,
			fmt.Sprintf("%s confirmed participation", f.ArtistName), nil,
		); err != nil {
			return err
		}
		confirmed = *f
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &confirmed, nil
}

// CancelParticipation withdraws a performer.  The replacement resolver
// and executor run in the same unit of work; the applied resolution, if
// any, is returned.  Checks run in order: the finalist exists, belongs to
// userID, is not already cancelled, and the lineup is open.
func (s *Service) CancelParticipation(ctx context.Context, finalistID, userID, reason string) (*Resolution, error) {
	var res *Resolution
	err := s.withFinalist(ctx, "cancel", finalistID, func(tx repository.Tx, f *model.Finalist) error {
		if f.UserID != userID {
			return newError(CodeUnauthorized, "finalist %s does not belong to the caller", finalistID)
		}
		if f.Status == model.StatusCancelled {
			return newError(CodeInvalidState, "finalist %s is already cancelled", finalistID)
		}
		var err error
		res, err = s.cancelInTx(ctx, tx, f, actor{id: userID, kind: model.ActorUser}, reason)
		return err
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// cancelInTx marks f cancelled and runs the replacement resolver against
// the resulting lineup.
func (s *Service) cancelInTx(ctx context.Context, tx repository.Tx, f *model.Finalist, by actor, reason string) (*Resolution, error) {
	show, err := lockedShow(ctx, tx, f.LiveShowID)
	if err != nil {
		return nil, err
	}
	reason = strings.TrimSpace(reason)
	if reason == "" {
		reason = defaultCancellationReason
	}
	now := s.now()
	f.Status = model.StatusCancelled
	f.CancelledAt = timePtr(now)
	f.CancellationReason = strPtr(reason)
	f.UpdatedAt = now
	if err := tx.UpdateFinalist(ctx, f); err != nil {
		return nil, fmt.Errorf("cancel finalist: %w", err)
	}
	if err := s.audit(ctx, tx, &f.LiveShowID, model.AuditFinalistCancelled, by, &f.UserID,
		fmt.Sprintf("%s withdrew: %s", f.ArtistName, reason),
		map[string]any{"reason": reason, "slot": slotLabel(f)},
	); err != nil {
		return nil, err
	}

	l, err := loadLineup(ctx, tx, show)
	if err != nil {
		return nil, err
	}
	res := DetermineReplacementScenario(l)
	if res == nil {
		s.logger.Info("finalist cancelled, no replacement",
			zap.String("show_id", show.ID), zap.String("finalist_id", f.ID))
		return nil, nil
	}
	if err := s.executeInTx(ctx, tx, show, &l, *res); err != nil {
		return nil, err
	}
	return res, nil
}
