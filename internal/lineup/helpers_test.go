package lineup

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/iliyamo/live-show-lineup/internal/model"
	"github.com/iliyamo/live-show-lineup/internal/repository/memstore"
)

type testClock struct {
	mu sync.Mutex
	t  time.Time
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.t
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	c.t = c.t.Add(d)
	c.mu.Unlock()
}

type fixture struct {
	svc   *Service
	store *memstore.Store
	clock *testClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	clock := &testClock{t: time.Date(2026, 10, 15, 12, 0, 0, 0, time.UTC)}
	store := memstore.New()
	return &fixture{
		svc:   NewService(store, zap.NewNop(), WithClock(clock.Now)),
		store: store,
		clock: clock,
	}
}

// createShow schedules a show starting in the given number of days.
func (fx *fixture) createShow(t *testing.T, inDays int, penalties bool) *model.LiveShow {
	t.Helper()
	start := fx.clock.Now().AddDate(0, 0, inDays).Truncate(24 * time.Hour).Add(20 * time.Hour)
	show, err := fx.svc.CreateLiveShow(context.Background(), ShowInput{
		WeekNumber:       42,
		Title:            "Week 42",
		ScheduledStart:   start,
		ScheduledEnd:     start.Add(2 * time.Hour),
		PenaltiesEnabled: penalties,
	})
	require.NoError(t, err)
	return show
}

// designate puts one performer per given slot on the roster; user ids
// and artist names are derived from the slot label.
func (fx *fixture) designate(t *testing.T, showID string, slots ...model.Slot) map[model.Slot]model.Finalist {
	t.Helper()
	batch := make([]Designation, 0, len(slots))
	for _, s := range slots {
		role := model.RoleFinalist
		if !s.IsFinalist() {
			role = model.RoleAlternate
		}
		batch = append(batch, Designation{
			UserID:     "user-" + s.String(),
			ArtistName: "Artist " + s.String(),
			Rank:       s,
			Role:       role,
		})
	}
	out, err := fx.svc.DesignateFinalists(context.Background(), showID, batch)
	require.NoError(t, err)
	bySlot := make(map[model.Slot]model.Finalist, len(out))
	for _, f := range out {
		bySlot[*f.Rank] = f
	}
	return bySlot
}

func (fx *fixture) auditActions(t *testing.T, showID string) []model.AuditAction {
	t.Helper()
	entries, err := fx.svc.ListAudit(context.Background(), showID)
	require.NoError(t, err)
	out := make([]model.AuditAction, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.ActionType)
	}
	return out
}

func (fx *fixture) lineup(t *testing.T, showID string) *Lineup {
	t.Helper()
	l, err := fx.svc.GetLineupState(context.Background(), showID)
	require.NoError(t, err)
	return l
}

func (fx *fixture) notificationsOf(typ model.NotificationType) []model.Notification {
	var out []model.Notification
	for _, n := range fx.store.Notifications() {
		if n.Type == typ {
			out = append(out, n)
		}
	}
	return out
}

func all4() []model.Slot {
	return []model.Slot{model.SlotF1, model.SlotF2, model.SlotA1, model.SlotA2}
}
