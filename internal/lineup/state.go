package lineup

import (
	"context"
	"errors"
	"fmt"

	"github.com/iliyamo/live-show-lineup/internal/model"
	"github.com/iliyamo/live-show-lineup/internal/repository"
)

// Lineup is the slot view of a show: the current occupant of each rank,
// whatever its status, plus the show-level flags the resolver needs.
type Lineup struct {
	ShowID       string             `json:"showId"`
	F1           *model.Finalist    `json:"F1,omitempty"`
	F2           *model.Finalist    `json:"F2,omitempty"`
	A1           *model.Finalist    `json:"A1,omitempty"`
	A2           *model.Finalist    `json:"A2,omitempty"`
	Locked       bool               `json:"locked"`
	FallbackMode model.FallbackMode `json:"fallbackMode"`
}

// BuildLineup places each ranked finalist into its slot.  Rows whose
// rank was released are not part of the lineup.
func BuildLineup(show *model.LiveShow, finalists []model.Finalist) Lineup {
	l := Lineup{
		ShowID:       show.ID,
		Locked:       show.LineupLocked,
		FallbackMode: show.FallbackMode,
	}
	if l.FallbackMode == "" {
		l.FallbackMode = model.FallbackBattle
	}
	for i := range finalists {
		f := finalists[i]
		if f.Rank == nil || !f.Rank.Valid() {
			continue
		}
		l.set(*f.Rank, &f)
	}
	return l
}

// At returns the occupant of s, or nil.
func (l *Lineup) At(s model.Slot) *model.Finalist {
	switch s {
	case model.SlotF1:
		return l.F1
	case model.SlotF2:
		return l.F2
	case model.SlotA1:
		return l.A1
	case model.SlotA2:
		return l.A2
	}
	return nil
}

func (l *Lineup) set(s model.Slot, f *model.Finalist) {
	switch s {
	case model.SlotF1:
		l.F1 = f
	case model.SlotF2:
		l.F2 = f
	case model.SlotA1:
		l.A1 = f
	case model.SlotA2:
		l.A2 = f
	}
}

// GetLineupState returns the show's lineup, served from the snapshot
// cache when possible.  Reads take no show lock; a snapshot loaded
// while a change commits is returned to this caller but not cached.
// An empty slot in the result means the rank has no occupant at all; a
// slot whose occupant is cancelled is still reported with that occupant.
func (s *Service) GetLineupState(ctx context.Context, showID string) (*Lineup, error) {
	l, gen, hit := s.cache.Get(ctx, showID)
	if hit {
		return l, nil
	}
	show, err := s.store.GetShow(ctx, showID)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(CodeNotFound, "live show %s not found", showID)
		}
		return nil, fmt.Errorf("get show: %w", err)
	}
	finalists, err := s.store.ListFinalistsByShow(ctx, showID)
	if err != nil {
		return nil, fmt.Errorf("list finalists: %w", err)
	}
	fresh := BuildLineup(show, finalists)
	s.cache.Set(ctx, showID, gen, &fresh)
	return &fresh, nil
}

func loadLineup(ctx context.Context, tx repository.Tx, show *model.LiveShow) (Lineup, error) {
	finalists, err := tx.ListFinalistsByShow(ctx, show.ID)
	if err != nil {
		return Lineup{}, fmt.Errorf("list finalists: %w", err)
	}
	return BuildLineup(show, finalists), nil
}
