package lineup

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/live-show-lineup/internal/model"
)

func TestApplyPenalty(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	show := fx.createShow(t, 7, true)
	editions := 2

	p, err := fx.svc.ApplyPenalty(ctx, PenaltyInput{
		UserID:           "user-F1",
		ShowID:           &show.ID,
		Type:             model.PenaltyLateCancellation,
		Severity:         model.SeverityTemporaryBan,
		EditionsAffected: &editions,
	})
	require.NoError(t, err)
	assert.True(t, p.IsActive)
	assert.Equal(t, "Suspended for 2 editions for late cancellation", p.Description)
	require.NotNil(t, p.ExpiresAt)
	assert.Equal(t, fx.clock.Now().Add(14*24*time.Hour), *p.ExpiresAt)

	actions := fx.auditActions(t, show.ID)
	assert.Equal(t, model.AuditPenaltyApplied, actions[len(actions)-1])
	warnings := fx.notificationsOf(model.NotificationPenaltyWarning)
	require.Len(t, warnings, 1)
	assert.Equal(t, "user-F1", warnings[0].RecipientID)

	_, err = fx.svc.ApplyPenalty(ctx, PenaltyInput{
		UserID: "user-F1", Type: model.PenaltyNoShow, Severity: model.SeverityWarning,
	})
	require.NoError(t, err)
	assert.Len(t, fx.auditActions(t, show.ID), len(actions), "penalty without a show is not journaled on any show")

	all, err := fx.svc.ListPenalties(ctx, "user-F1")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	fx.clock.Advance(15 * 24 * time.Hour)
	active, err := fx.svc.ActivePenalties(ctx, "user-F1")
	require.NoError(t, err)
	require.Len(t, active, 1)
	assert.Nil(t, active[0].ExpiresAt)
}

func TestApplyPenaltyRejections(t *testing.T) {
	fx := newFixture(t)
	ctx := context.Background()
	zero := 0
	missing := "missing"

	cases := []struct {
		name string
		in   PenaltyInput
		want error
	}{
		{"missing user", PenaltyInput{Type: model.PenaltyNoShow, Severity: model.SeverityWarning}, ErrValidation},
		{"bad type", PenaltyInput{UserID: "u", Type: "spam", Severity: model.SeverityWarning}, ErrValidation},
		{"bad severity", PenaltyInput{UserID: "u", Type: model.PenaltyNoShow, Severity: "fine"}, ErrValidation},
		{"zero editions", PenaltyInput{UserID: "u", Type: model.PenaltyNoShow, Severity: model.SeverityTemporaryBan, EditionsAffected: &zero}, ErrValidation},
		{"unknown show", PenaltyInput{UserID: "u", ShowID: &missing, Type: model.PenaltyNoShow, Severity: model.SeverityWarning}, ErrNotFound},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := fx.svc.ApplyPenalty(ctx, tc.in)
			assert.ErrorIs(t, err, tc.want)
		})
	}
	ps, err := fx.svc.ListPenalties(ctx, "u")
	require.NoError(t, err)
	assert.Empty(t, ps)
}

func TestPenaltyDescription(t *testing.T) {
	three := 3
	assert.Equal(t, "Warning for missing the show", PenaltyDescription(model.PenaltyNoShow, model.SeverityWarning, nil))
	assert.Equal(t, "Suspended for 3 editions for missing the show", PenaltyDescription(model.PenaltyNoShow, model.SeverityTemporaryBan, &three))
	assert.Equal(t, "Suspension for late cancellation", PenaltyDescription(model.PenaltyLateCancellation, model.SeverityTemporaryBan, nil))
	assert.Equal(t, "Permanent exclusion for repeated no-shows", PenaltyDescription(model.PenaltyNoShow, model.SeverityPermanentBan, nil))
	assert.Equal(t, "Penalty applied", PenaltyDescription("other", model.SeverityWarning, nil))
}
