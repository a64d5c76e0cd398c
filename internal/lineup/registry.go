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

// ShowInput is the data needed to schedule a show.
type ShowInput struct {
	WeekNumber       int
	Title            string
	Description      *string
	ScheduledStart   time.Time
	ScheduledEnd     time.Time
	PenaltiesEnabled bool
}

func (in ShowInput) validate() error {
	switch {
	case strings.TrimSpace(in.Title) == "":
		return newError(CodeValidation, "title is required")
	case in.ScheduledStart.IsZero() || in.ScheduledEnd.IsZero():
		return newError(CodeValidation, "scheduledStart and scheduledEnd are required")
	case in.ScheduledEnd.Before(in.ScheduledStart):
		return newError(CodeValidation, "scheduledEnd is before scheduledStart")
	}
	return nil
}

// CreateLiveShow schedules a show in battle mode with an open lineup.
// Duplicate week numbers are accepted.
func (s *Service) CreateLiveShow(ctx context.Context, in ShowInput) (*model.LiveShow, error) {
	started := time.Now()
	if err := in.validate(); err != nil {
		observe("create_show", started, err)
		return nil, err
	}
	now := s.now()
	show := &model.LiveShow{
		ID:               s.newID(),
		WeekNumber:       in.WeekNumber,
		Title:            strings.TrimSpace(in.Title),
		Description:      in.Description,
		ScheduledStart:   in.ScheduledStart.UTC(),
		ScheduledEnd:     in.ScheduledEnd.UTC(),
		FallbackMode:     model.FallbackBattle,
		PenaltiesEnabled: in.PenaltiesEnabled,
		CreatedAt:        now,
		UpdatedAt:        now,
	}
	err := s.store.Within(ctx, func(tx repository.Tx) error {
		if err := tx.InsertShow(ctx, show); err != nil {
			return fmt.Errorf("insert show: %w", err)
		}
		return s.audit(ctx, tx, &show.ID, model.AuditShowCreated, systemActor, nil,
			fmt.Sprintf("Live show created for week %d", in.WeekNumber),
			map[string]any{"weekNumber": in.WeekNumber},
		)
	})
	observe("create_show", started, err)
	if err != nil {
		return nil, err
	}
	return show, nil
}

// GetLiveShow returns one show.
func (s *Service) GetLiveShow(ctx context.Context, id string) (*model.LiveShow, error) {
	show, err := s.store.GetShow(ctx, id)
	if err != nil {
		if errors.Is(err, repository.ErrNotFound) {
			return nil, newError(CodeNotFound, "live show %s not found", id)
		}
		return nil, fmt.Errorf("get show: %w", err)
	}
	return show, nil
}

// ListLiveShows returns every show, most recent week first.
func (s *Service) ListLiveShows(ctx context.Context) ([]model.LiveShow, error) {
	shows, err := s.store.ListShows(ctx)
	if err != nil {
		return nil, fmt.Errorf("list shows: %w", err)
	}
	return shows, nil
}

// ListAudit returns the show's journal in the order entries were written.
func (s *Service) ListAudit(ctx context.Context, showID string) ([]model.AuditEntry, error) {
	if _, err := s.GetLiveShow(ctx, showID); err != nil {
		return nil, err
	}
	entries, err := s.store.ListAuditByShow(ctx, showID)
	if err != nil {
		return nil, fmt.Errorf("list audit: %w", err)
	}
	return entries, nil
}
