package lineup

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/iliyamo/live-show-lineup/internal/model"
	"github.com/iliyamo/live-show-lineup/internal/repository"
)

// editionLength is how long one show edition lasts for ban expiry.
const editionLength = 7 * 24 * time.Hour

// PenaltyInput describes a sanction.  Severity is the caller's choice.
type PenaltyInput struct {
	UserID           string
	ShowID           *string
	Type             model.PenaltyType
	Severity         model.PenaltySeverity
	EditionsAffected *int
}

func (in PenaltyInput) validate() error {
	switch {
	case strings.TrimSpace(in.UserID) == "":
		return newError(CodeValidation, "userId is required")
	case !in.Type.Valid():
		return newError(CodeValidation, "unknown penalty type %q", in.Type)
	case !in.Severity.Valid():
		return newError(CodeValidation, "unknown severity %q", in.Severity)
	case in.EditionsAffected != nil && *in.EditionsAffected <= 0:
		return newError(CodeValidation, "editionsAffected must be positive")
	}
	return nil
}

// PenaltyDescription returns the human-readable text stored with a
// penalty.
func PenaltyDescription(t model.PenaltyType, sev model.PenaltySeverity, editions *int) string {
	suspension := func(cause string) string {
		if editions == nil {
			return "Suspension for " + cause
		}
		return fmt.Sprintf("Suspended for %d editions for %s", *editions, cause)
	}
	switch {
	case t == model.PenaltyLateCancellation && sev == model.SeverityWarning:
		return "Warning for late cancellation"
	case t == model.PenaltyLateCancellation && sev == model.SeverityTemporaryBan:
		return suspension("late cancellation")
	case t == model.PenaltyLateCancellation && sev == model.SeverityPermanentBan:
		return "Permanent exclusion for repeated late cancellations"
	case t == model.PenaltyNoShow && sev == model.SeverityWarning:
		return "Warning for missing the show"
	case t == model.PenaltyNoShow && sev == model.SeverityTemporaryBan:
		return suspension("missing the show")
	case t == model.PenaltyNoShow && sev == model.SeverityPermanentBan:
		return "Permanent exclusion for repeated no-shows"
	}
	return "Penalty applied"
}

// ApplyPenalty records a penalty.  When the penalty is tied to a show it
// is journaled there and the performer gets a penalty_warning
// notification; the show must exist.
func (s *Service) ApplyPenalty(ctx context.Context, in PenaltyInput) (*model.Penalty, error) {
	if err := in.validate(); err != nil {
		observe("apply_penalty", time.Now(), err)
		return nil, err
	}
	var p *model.Penalty
	run := func(tx repository.Tx) error {
		var err error
		p, err = s.penaltyInTx(ctx, tx, in)
		return err
	}
	var err error
	if in.ShowID != nil {
		err = s.inShow(ctx, "apply_penalty", *in.ShowID, run)
	} else {
		started := time.Now()
		err = s.store.Within(ctx, run)
		observe("apply_penalty", started, err)
	}
	if err != nil {
		return nil, err
	}
	return p, nil
}

func (s *Service) penaltyInTx(ctx context.Context, tx repository.Tx, in PenaltyInput) (*model.Penalty, error) {
	now := s.now()
	p := &model.Penalty{
		ID:               s.newID(),
		UserID:           in.UserID,
		LiveShowID:       in.ShowID,
		PenaltyType:      in.Type,
		Severity:         in.Severity,
		Description:      PenaltyDescription(in.Type, in.Severity, in.EditionsAffected),
		EditionsAffected: in.EditionsAffected,
		IsActive:         true,
		CreatedAt:        now,
	}
	if in.EditionsAffected != nil {
		p.ExpiresAt = timePtr(now.Add(time.Duration(*in.EditionsAffected) * editionLength))
	}
	if err := tx.InsertPenalty(ctx, p); err != nil {
		return nil, fmt.Errorf("insert penalty: %w", err)
	}
	if in.ShowID == nil {
		return p, nil
	}

	if err := s.notify(ctx, tx, &model.Notification{
		LiveShowID:  *in.ShowID,
		RecipientID: in.UserID,
		Type:        model.NotificationPenaltyWarning,
		Subject:     "Penalty notice - Live Show",
		Message:     p.Description,
		Metadata:    map[string]any{"penaltyId": p.ID, "severity": string(p.Severity)},
	}); err != nil {
		return nil, err
	}
	if err := s.audit(ctx, tx, in.ShowID, model.AuditPenaltyApplied, systemActor, &p.UserID,
		fmt.Sprintf("Penalty %s applied: %s", p.Severity, p.PenaltyType),
		map[string]any{"penaltyId": p.ID},
	); err != nil {
		return nil, err
	}
	return p, nil
}

// ListPenalties returns every penalty recorded against userID.
func (s *Service) ListPenalties(ctx context.Context, userID string) ([]model.Penalty, error) {
	ps, err := s.store.ListPenaltiesByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list penalties: %w", err)
	}
	return ps, nil
}

// ActivePenalties returns the penalties in force now.
func (s *Service) ActivePenalties(ctx context.Context, userID string) ([]model.Penalty, error) {
	ps, err := s.ListPenalties(ctx, userID)
	if err != nil {
		return nil, err
	}
	now := s.now()
	out := make([]model.Penalty, 0, len(ps))
	for _, p := range ps {
		if p.ActiveAt(now) {
			out = append(out, p)
		}
	}
	return out, nil
}
