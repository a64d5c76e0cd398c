package memstore

import (
	"context"

	"github.com/iliyamo/live-show-lineup/internal/model"
	"github.com/iliyamo/live-show-lineup/internal/repository"
)

// tx stages writes on top of the committed state.  Reads see the staged
// rows first, so a unit of work observes its own writes.
type tx struct {
	s             *Store
	shows         map[string]model.LiveShow
	finalists     map[string]model.Finalist
	order         map[string]int64
	notifications []model.Notification
	penalties     []model.Penalty
	audit         []model.AuditEntry
}

func newTx(s *Store) *tx {
	return &tx{
		s:         s,
		shows:     make(map[string]model.LiveShow),
		finalists: make(map[string]model.Finalist),
		order:     make(map[string]int64),
	}
}

func (t *tx) commit() {
	t.s.mu.Lock()
	defer t.s.mu.Unlock()
	for id, sh := range t.shows {
		t.s.shows[id] = sh
	}
	for id, f := range t.finalists {
		t.s.finalists[id] = f
	}
	for id, seq := range t.order {
		t.s.order[id] = seq
	}
	t.s.notifications = append(t.s.notifications, t.notifications...)
	t.s.penalties = append(t.s.penalties, t.penalties...)
	t.s.audit = append(t.s.audit, t.audit...)
}

func (t *tx) GetShow(ctx context.Context, id string) (*model.LiveShow, error) {
	if sh, ok := t.shows[id]; ok {
		c := cloneShow(sh)
		return &c, nil
	}
	return t.s.GetShow(ctx, id)
}

func (t *tx) InsertShow(_ context.Context, sh *model.LiveShow) error {
	t.shows[sh.ID] = cloneShow(*sh)
	return nil
}

func (t *tx) UpdateShow(ctx context.Context, sh *model.LiveShow) error {
	if _, err := t.GetShow(ctx, sh.ID); err != nil {
		return err
	}
	t.shows[sh.ID] = cloneShow(*sh)
	return nil
}

func (t *tx) GetFinalist(ctx context.Context, id string) (*model.Finalist, error) {
	if f, ok := t.finalists[id]; ok {
		c := cloneFinalist(f)
		return &c, nil
	}
	return t.s.GetFinalist(ctx, id)
}

func (t *tx) ListFinalistsByShow(ctx context.Context, showID string) ([]model.Finalist, error) {
	committed, err := t.s.ListFinalistsByShow(ctx, showID)
	if err != nil {
		return nil, err
	}
	t.s.mu.RLock()
	order := make(map[string]int64, len(committed))
	for _, f := range committed {
		order[f.ID] = t.s.order[f.ID]
	}
	t.s.mu.RUnlock()

	out := make([]model.Finalist, 0, len(committed)+len(t.finalists))
	for _, f := range committed {
		if staged, ok := t.finalists[f.ID]; ok {
			f = cloneFinalist(staged)
		}
		out = append(out, f)
	}
	for id, f := range t.finalists {
		if _, ok := order[id]; ok || f.LiveShowID != showID {
			continue
		}
		out = append(out, cloneFinalist(f))
		order[id] = t.order[id]
	}
	sortFinalists(out, order)
	return out, nil
}

// checkSlot enforces the per-show rank and performer uniqueness that the
// MySQL schema expresses with unique indexes.
func (t *tx) checkSlot(ctx context.Context, f *model.Finalist) error {
	lineup, err := t.ListFinalistsByShow(ctx, f.LiveShowID)
	if err != nil {
		return err
	}
	for _, other := range lineup {
		if other.ID == f.ID {
			continue
		}
		if f.Rank != nil && other.Rank != nil && *f.Rank == *other.Rank {
			return repository.ErrRankTaken
		}
		if other.UserID == f.UserID {
			return repository.ErrDuplicateMember
		}
	}
	return nil
}

func (t *tx) InsertFinalist(ctx context.Context, f *model.Finalist) error {
	if err := t.checkSlot(ctx, f); err != nil {
		return err
	}
	t.order[f.ID] = t.s.nextSeq()
	t.finalists[f.ID] = cloneFinalist(*f)
	return nil
}

func (t *tx) UpdateFinalist(ctx context.Context, f *model.Finalist) error {
	if _, err := t.GetFinalist(ctx, f.ID); err != nil {
		return err
	}
	if err := t.checkSlot(ctx, f); err != nil {
		return err
	}
	t.finalists[f.ID] = cloneFinalist(*f)
	return nil
}

func (t *tx) InsertNotification(_ context.Context, n *model.Notification) error {
	t.notifications = append(t.notifications, *n)
	return nil
}

func (t *tx) InsertPenalty(_ context.Context, p *model.Penalty) error {
	t.penalties = append(t.penalties, *p)
	return nil
}

func (t *tx) InsertAudit(_ context.Context, e *model.AuditEntry) error {
	t.audit = append(t.audit, *e)
	return nil
}
