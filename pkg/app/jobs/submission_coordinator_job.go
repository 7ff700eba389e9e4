package jobs

import (
	"context"
	"log/slog"
	"time"

	pool_services "github.com/ore-pool-go/operator/pkg/domain/pool/services"
)

// SubmissionCoordinatorJob drives the operator's one timing-sensitive
// loop (§4.6, Open Question #1): on every tick of a fixed interval, land
// the current winner and rotate to the next challenge. The ticks are not
// aligned with the challenge's computed cutoff (last_hash_at plus the
// tick length minus the operator buffer); nothing in this loop reads it.
// Ticking, not event-driven — submission never happens on contribution
// arrival.
type SubmissionCoordinatorJob struct {
	coordinator *pool_services.SubmissionCoordinator
	poolAddress string
	ticker      *time.Ticker
	interval    time.Duration
}

func NewSubmissionCoordinatorJob(coordinator *pool_services.SubmissionCoordinator, poolAddress string, interval time.Duration) *SubmissionCoordinatorJob {
	return &SubmissionCoordinatorJob{
		coordinator: coordinator,
		poolAddress: poolAddress,
		ticker:      time.NewTicker(interval),
		interval:    interval,
	}
}

func (j *SubmissionCoordinatorJob) Run(ctx context.Context) {
	slog.InfoContext(ctx, "submission coordinator job started", "interval", j.interval)
	defer j.ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "submission coordinator job stopped")
			return
		case <-j.ticker.C:
			j.runCutoff(ctx)
		}
	}
}

func (j *SubmissionCoordinatorJob) runCutoff(ctx context.Context) {
	if err := j.coordinator.RunCutoff(ctx, j.poolAddress); err != nil {
		slog.ErrorContext(ctx, "submission coordinator: cutoff failed", "error", err)
	}
}
