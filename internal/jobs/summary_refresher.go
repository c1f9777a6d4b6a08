package jobs

import (
	"context"
	"time"

	"go.uber.org/zap"

	"github.com/superapp/marketplace-approvals/internal/metrics"
	"github.com/superapp/marketplace-approvals/pkg/model"
)

// PendingCounter is the store subset the refresher needs.
type PendingCounter interface {
	CountPending(ctx context.Context) (map[model.EntityType]int, error)
	SetJSON(ctx context.Context, key string, value any, ttl time.Duration) error
}

// EventPublisher emits internal summary events.
type EventPublisher interface {
	Publish(ctx context.Context, subject string, payload any) error
}

// SummaryRefresher periodically recounts entities awaiting review, refreshes
// the cached dashboard summary and the pending gauges, and emits a NATS event
// so downstream dashboards can re-pull.
type SummaryRefresher struct {
	logger    *zap.Logger
	counter   PendingCounter
	publisher EventPublisher
	interval  time.Duration
	stopCh    chan struct{}
}

// NewSummaryRefresher constructs a background job that runs periodically.
// publisher may be nil.
func NewSummaryRefresher(logger *zap.Logger, counter PendingCounter, pub EventPublisher, interval time.Duration) *SummaryRefresher {
	return &SummaryRefresher{
		logger:    logger,
		counter:   counter,
		publisher: pub,
		interval:  interval,
		stopCh:    make(chan struct{}),
	}
}

// Start runs the refresh loop.
func (r *SummaryRefresher) Start(ctx context.Context) {
	ticker := time.NewTicker(r.interval)
	defer ticker.Stop()

	r.logger.Info("summary_refresher.started", zap.Duration("interval", r.interval))
	r.runOnce(ctx)

	for {
		select {
		case <-ticker.C:
			r.runOnce(ctx)
		case <-r.stopCh:
			r.logger.Info("summary_refresher.stopped (manual stop)")
			return
		case <-ctx.Done():
			r.logger.Info("summary_refresher.stopped (context canceled)")
			return
		}
	}
}

// Stop gracefully halts the refresher.
func (r *SummaryRefresher) Stop() {
	close(r.stopCh)
}

// runOnce executes one refresh cycle.
func (r *SummaryRefresher) runOnce(ctx context.Context) {
	start := time.Now()

	counts, err := r.counter.CountPending(ctx)
	if err != nil {
		r.logger.Error("summary_refresher.count_failed", zap.Error(err))
		metrics.IncError("summary_refresher", "count_failed")
		return
	}

	for entity, count := range counts {
		metrics.SetPendingEntities(string(entity), count)
	}

	// Cache for the dashboard's pending endpoint; two intervals of TTL so a
	// single missed cycle does not blank the summary.
	if err := r.counter.SetJSON(ctx, "pending:summary", counts, 2*r.interval); err != nil {
		r.logger.Warn("summary_refresher.cache_failed", zap.Error(err))
	}

	if r.publisher != nil {
		event := map[string]any{
			"event":       "evt.approval.pending_summary.v1",
			"pending":     counts,
			"timestamp":   time.Now().UTC(),
			"duration_ms": time.Since(start).Milliseconds(),
		}
		if err := r.publisher.Publish(ctx, "evt.approval.pending_summary.v1", event); err != nil {
			r.logger.Warn("summary_refresher.nats_publish_failed", zap.Error(err))
		}
	}

	r.logger.Info("summary_refresher.success",
		zap.Duration("duration", time.Since(start)))
}
