package lineup

import (
	"context"
	"fmt"
	"strings"

	"github.com/iliyamo/live-show-lineup/internal/model"
	"github.com/iliyamo/live-show-lineup/internal/repository"
)

// SetFallbackMode lets an admin override how the show airs, typically
// when both finalists withdrew and no alternate is left.
func (s *Service) SetFallbackMode(ctx context.Context, showID, adminID string, mode model.FallbackMode, reason string) (*model.LiveShow, error) {
	if !mode.Valid() {
		return nil, newError(CodeValidation, "unknown fallback mode %q", mode)
	}
	var updated model.LiveShow
	err := s.inShow(ctx, "set_fallback", showID, func(tx repository.Tx) error {
		show, err := lockedShow(ctx, tx, showID)
		if err != nil {
			return err
		}
		from := show.FallbackMode
		show.FallbackMode = mode
		show.FallbackReason = nil
		if r := strings.TrimSpace(reason); r != "" {
			show.FallbackReason = strPtr(r)
		}
		show.UpdatedAt = s.now()
		if err := tx.UpdateShow(ctx, show); err != nil {
			return fmt.Errorf("update fallback mode: %w", err)
		}
		if err := s.audit(ctx, tx, &showID, model.AuditFallbackModeChanged,
			actor{id: adminID, kind: model.ActorAdmin}, nil,
			fmt.Sprintf("Fallback mode changed from %s to %s", from, mode),
			map[string]any{"from": string(from), "to": string(mode), "reason": strings.TrimSpace(reason)},
		); err != nil {
			return err
		}
		updated = *show
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &updated, nil
}
