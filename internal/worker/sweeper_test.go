package worker

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"

	"github.com/iliyamo/live-show-lineup/internal/lineup"
)

type countingSweeper struct {
	calls atomic.Int32
	err   error
}

func (c *countingSweeper) SweepConfirmationDeadlines(context.Context) (lineup.SweepReport, error) {
	c.calls.Add(1)
	return lineup.SweepReport{ShowsSwept: 1, Cancelled: 1}, c.err
}

func TestSweeperRunsImmediatelyAndOnTicks(t *testing.T) {
	fake := &countingSweeper{err: errors.New("db down")}
	s := NewSweeper(fake, 10*time.Millisecond, zap.NewNop())

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- s.Run(ctx) }()

	assert.Eventually(t, func() bool { return fake.calls.Load() >= 3 }, time.Second, 5*time.Millisecond)
	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(time.Second):
		t.Fatal("sweeper did not stop")
	}
}

func TestNewSweeperDefaultsInterval(t *testing.T) {
	s := NewSweeper(&countingSweeper{}, 0, zap.NewNop())
	assert.Equal(t, 5*time.Minute, s.interval)
}
