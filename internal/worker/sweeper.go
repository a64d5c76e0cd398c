// Package worker runs the periodic jobs of the server process.
package worker

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/iliyamo/live-show-lineup/internal/lineup"
)

// DeadlineSweeper is implemented by *lineup.Service.
type DeadlineSweeper interface {
	SweepConfirmationDeadlines(ctx context.Context) (lineup.SweepReport, error)
}

// Sweeper cancels finalists that let their confirmation deadline pass.
type Sweeper struct {
	svc      DeadlineSweeper
	interval time.Duration
	logger   *zap.Logger
}

func NewSweeper(svc DeadlineSweeper, interval time.Duration, logger *zap.Logger) *Sweeper {
	if interval <= 0 {
		interval = 5 * time.Minute
	}
	return &Sweeper{svc: svc, interval: interval, logger: logger}
}

// Run sweeps once immediately and then every interval until ctx is
// cancelled.  Errors are logged; the next tick retries.
func (s *Sweeper) Run(ctx context.Context) error {
	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()
	for {
		s.sweep(ctx)
		select {
		case <-ctx.Done():
			return nil
		case <-ticker.C:
		}
	}
}

func (s *Sweeper) sweep(ctx context.Context) {
	report, err := s.svc.SweepConfirmationDeadlines(ctx)
	if err != nil {
		s.logger.Error("deadline sweep failed", zap.Error(err))
	}
	if report.Cancelled > 0 {
		s.logger.Info("deadline sweep cancelled finalists",
			zap.Int("shows", report.ShowsSwept),
			zap.Int("cancelled", report.Cancelled),
			zap.Int("penalized", report.Penalized))
	}
}
