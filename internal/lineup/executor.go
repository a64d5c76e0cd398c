package lineup

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/iliyamo/live-show-lineup/internal/model"
	"github.com/iliyamo/live-show-lineup/internal/repository"
)

const showcaseReason = "Only one finalist available - special showcase activated"

// ExecuteReplacementScenario applies res to the show in its own unit of
// work.  CancelParticipation already runs the resolver and executor; this
// entry point exists for operators replaying a scenario by hand.
func (s *Service) ExecuteReplacementScenario(ctx context.Context, showID string, res Resolution) error {
	return s.inShow(ctx, "execute_scenario", showID, func(tx repository.Tx) error {
		show, err := lockedShow(ctx, tx, showID)
		if err != nil {
			return err
		}
		l, err := loadLineup(ctx, tx, show)
		if err != nil {
			return err
		}
		return s.executeInTx(ctx, tx, show, &l, res)
	})
}

func (s *Service) executeInTx(ctx context.Context, tx repository.Tx, show *model.LiveShow, l *Lineup, res Resolution) error {
	needTarget := func() (model.Slot, error) {
		if res.TargetSlot == nil || !res.TargetSlot.IsFinalist() {
			return 0, newError(CodeInvalidState, "scenario %s requires a finalist target slot", res.Scenario)
		}
		return *res.TargetSlot, nil
	}

	switch res.Scenario {
	case ScenarioS1:
		target, err := needTarget()
		if err != nil {
			return err
		}
		if !available(l.A1) {
			return newError(CodeInvalidState, "scenario S1 requires an available A1")
		}
		if err := s.promoteAlternate(ctx, tx, show, l, l.A1, target); err != nil {
			return err
		}
	case ScenarioS2:
		target, err := needTarget()
		if err != nil {
			return err
		}
		if !available(l.A2) {
			return newError(CodeInvalidState, "scenario S2 requires an available A2")
		}
		if err := s.promoteAlternate(ctx, tx, show, l, l.A2, target); err != nil {
			return err
		}
	case ScenarioS3:
		alt := l.A1
		if !available(alt) {
			alt = l.A2
		}
		if !available(alt) {
			return newError(CodeInvalidState, "scenario S3 requires an available alternate")
		}
		if err := s.activateShowcaseMode(ctx, tx, show, l, alt); err != nil {
			return err
		}
	case ScenarioS4:
		if !available(l.A1) || !available(l.A2) {
			return newError(CodeInvalidState, "scenario S4 requires both alternates")
		}
		a2 := l.A2
		if err := s.promoteAlternate(ctx, tx, show, l, l.A1, model.SlotF1); err != nil {
			return err
		}
		if err := s.promoteAlternate(ctx, tx, show, l, a2, model.SlotF2); err != nil {
			return err
		}
	default:
		return fmt.Errorf("unknown replacement scenario %q", res.Scenario)
	}

	meta := map[string]any{"scenario": string(res.Scenario)}
	desc := fmt.Sprintf("Scenario %s executed", res.Scenario)
	if res.TargetSlot != nil {
		meta["targetSlot"] = res.TargetSlot.String()
		desc += " into " + res.TargetSlot.String()
	}
	if err := s.audit(ctx, tx, &show.ID, model.AuditReplacementScenarioExecuted, systemActor, nil, desc, meta); err != nil {
		return err
	}
	scenariosTotal.WithLabelValues(string(res.Scenario)).Inc()
	s.logger.Info("replacement scenario executed",
		zap.String("show_id", show.ID), zap.String("scenario", res.String()))
	return nil
}

// promoteAlternate moves alt into target.  A cancelled finalist still
// holding target gives its rank up in the same unit of work so that rank
// stays unique per show.
func (s *Service) promoteAlternate(ctx context.Context, tx repository.Tx, show *model.LiveShow, l *Lineup, alt *model.Finalist, target model.Slot) error {
	now := s.now()

	if displaced := l.At(target); displaced != nil && displaced.ID != alt.ID {
		if displaced.Status != model.StatusCancelled {
			return newError(CodeInvalidState, "slot %s is held by an active performer", target)
		}
		released := *displaced
		released.Rank = nil
		released.UpdatedAt = now
		if err := tx.UpdateFinalist(ctx, &released); err != nil {
			return fmt.Errorf("release slot %s: %w", target, err)
		}
	}

	from := "?"
	if alt.Rank != nil {
		from = alt.Rank.String()
	}
	promoted := *alt
	promoted.Status = model.StatusPromoted
	promoted.Role = model.RoleFinalist
	promoted.Rank = &target
	promoted.PromotedAt = timePtr(now)
	promoted.PromotedFrom = strPtr(from)
	promoted.UpdatedAt = now
	if err := tx.UpdateFinalist(ctx, &promoted); err != nil {
		return fmt.Errorf("promote %s: %w", from, err)
	}

	if err := s.notify(ctx, tx, &model.Notification{
		LiveShowID:  show.ID,
		RecipientID: promoted.UserID,
		Type:        model.NotificationPromotion,
		Subject:     "Promoted to finalist - Live Show",
		Message:     fmt.Sprintf("You have been promoted to finalist %s! Get ready for the show.", target),
		ActionURL:   "/live-show/" + show.ID,
		Metadata:    map[string]any{"slot": target.String(), "promotedFrom": from},
	}); err != nil {
		return err
	}
	if err := s.audit(ctx, tx, &show.ID, model.AuditAlternatePromoted, systemActor, &promoted.UserID,
		fmt.Sprintf("%s promoted to %s", promoted.ArtistName, target),
		map[string]any{"from": from, "to": target.String(), "finalistId": promoted.ID},
	); err != nil {
		return err
	}

	if prev, ok := model.ParseSlot(from); ok {
		l.set(prev, nil)
	}
	l.set(target, &promoted)
	return nil
}

// activateShowcaseMode turns the battle into a solo showcase built around
// alt, who takes the F1 slot.
func (s *Service) activateShowcaseMode(ctx context.Context, tx repository.Tx, show *model.LiveShow, l *Lineup, alt *model.Finalist) error {
	show.FallbackMode = model.FallbackShowcase
	show.FallbackReason = strPtr(showcaseReason)
	show.UpdatedAt = s.now()
	if err := tx.UpdateShow(ctx, show); err != nil {
		return fmt.Errorf("activate showcase: %w", err)
	}
	l.FallbackMode = model.FallbackShowcase

	if err := s.promoteAlternate(ctx, tx, show, l, alt, model.SlotF1); err != nil {
		return err
	}
	return s.audit(ctx, tx, &show.ID, model.AuditShowcaseActivated, systemActor, nil,
		fmt.Sprintf("Special showcase activated with %s", alt.ArtistName),
		map[string]any{"finalistId": alt.ID},
	)
}
