package lineup

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/live-show-lineup/internal/model"
	"github.com/iliyamo/live-show-lineup/internal/repository"
)

// Designation places one performer on the roster.
type Designation struct {
	UserID     string
	ArtistName string
	Rank       model.Slot
	Role       model.Role
}

func (d Designation) validate(i int) error {
	switch {
	case strings.TrimSpace(d.UserID) == "":
		return newError(CodeValidation, "designation %d: userId is required", i)
	case strings.TrimSpace(d.ArtistName) == "":
		return newError(CodeValidation, "designation %d: artistName is required", i)
	case !d.Rank.Valid():
		return newError(CodeValidation, "designation %d: rank must be 1..4", i)
	case !d.Role.Valid():
		return newError(CodeValidation, "designation %d: unknown role %q", i, d.Role)
	}
	return nil
}

// DesignateFinalists adds performers to the show's roster with status
// selected.  The batch is all-or-nothing; a rank or performer already on
// the roster rejects it with INVALID_STATE.  Matching roles to ranks is
// left to the caller.
func (s *Service) DesignateFinalists(ctx context.Context, showID string, batch []Designation) ([]model.Finalist, error) {
	if len(batch) == 0 {
		err := newError(CodeValidation, "at least one designation is required")
		observe("designate", time.Now(), err)
		return nil, err
	}
	for i, d := range batch {
		if err := d.validate(i); err != nil {
			observe("designate", time.Now(), err)
			return nil, err
		}
	}

	var out []model.Finalist
	err := s.inShow(ctx, "designate", showID, func(tx repository.Tx) error {
		out = out[:0]
		if _, err := lockedShow(ctx, tx, showID); err != nil {
			return err
		}
		now := s.now()
		for _, d := range batch {
			rank := d.Rank
			f := model.Finalist{
				ID:         s.newID(),
				LiveShowID: showID,
				UserID:     d.UserID,
				ArtistName: strings.TrimSpace(d.ArtistName),
				Rank:       &rank,
				Role:       d.Role,
				Status:     model.StatusSelected,
				CreatedAt:  now,
				UpdatedAt:  now,
			}
			if err := tx.InsertFinalist(ctx, &f); err != nil {
				switch {
				case errors.Is(err, repository.ErrRankTaken):
					return newError(CodeInvalidState, "rank %s is already taken", rank)
				case errors.Is(err, repository.ErrDuplicateMember):
					return newError(CodeInvalidState, "performer %s is already on the roster", d.UserID)
				}
				return fmt.Errorf("insert finalist: %w", err)
			}
			label := "Finalist"
			if d.Role == model.RoleAlternate {
				label = "Alternate"
			}
			if err := s.audit(ctx, tx, &showID, model.AuditFinalistDesignated, systemActor, &f.UserID,
				fmt.Sprintf("%s designated: %s (rank %s)", label, f.ArtistName, rank),
				map[string]any{"rank": rank.String(), "role": string(d.Role), "finalistId": f.ID},
			); err != nil {
				return err
			}
			out = append(out, f)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}
