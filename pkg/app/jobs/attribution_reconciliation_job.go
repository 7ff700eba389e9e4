package jobs

import (
	"context"
	"log/slog"
	"time"

	pool_services "github.com/ore-pool-go/operator/pkg/domain/pool/services"
)

// AttributionReconciliationJob is C7's on-chain half: a slower ticker
// that drains members with is_synced=false in bounded batches, separate
// from the Split() path that runs inline off the webhook (§4.7).
type AttributionReconciliationJob struct {
	engine    *pool_services.AttributionEngine
	batchSize int
	ticker    *time.Ticker
	interval  time.Duration
}

func NewAttributionReconciliationJob(engine *pool_services.AttributionEngine, batchSize int, interval time.Duration) *AttributionReconciliationJob {
	return &AttributionReconciliationJob{
		engine:    engine,
		batchSize: batchSize,
		ticker:    time.NewTicker(interval),
		interval:  interval,
	}
}

func (j *AttributionReconciliationJob) Run(ctx context.Context) {
	slog.InfoContext(ctx, "attribution reconciliation job started", "interval", j.interval)
	defer j.ticker.Stop()

	j.reconcile(ctx)

	for {
		select {
		case <-ctx.Done():
			slog.InfoContext(ctx, "attribution reconciliation job stopped")
			return
		case <-j.ticker.C:
			j.reconcile(ctx)
		}
	}
}

func (j *AttributionReconciliationJob) reconcile(ctx context.Context) {
	synced, err := j.engine.ReconcileOnce(ctx, j.batchSize)
	if err != nil {
		slog.ErrorContext(ctx, "attribution reconciliation: batch failed", "error", err)
		return
	}
	if synced > 0 {
		slog.InfoContext(ctx, "attribution reconciliation: batch synced", "count", synced)
	}
}
