package application

import (
	"context"
	"log/slog"
	"time"

	"mystic/contexts/trading/marketplace-engine/ports"
)

const relayBatchSize = 100

// Relay drains staged order events to the bus. It runs in the worker
// process, not the request path, so a slow or failing consumer never blocks
// an execution.
type Relay struct {
	Outbox    ports.Outbox
	Publisher ports.EventPublisher
	Clock     ports.Clock
	Logger    *slog.Logger
	Interval  time.Duration
}

// Run polls until ctx is cancelled.
func (r Relay) Run(ctx context.Context) error {
	interval := r.Interval
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := r.DrainOnce(ctx); err != nil {
				ResolveLogger(r.Logger).Error("outbox drain failed",
					"event", "outbox_drain_failed",
					"module", "trading/marketplace-engine",
					"layer", "application",
					"error", err.Error(),
				)
			}
		}
	}
}

// DrainOnce publishes one batch of pending events. An event is marked sent
// only after the publish succeeded; a crash in between re-delivers, so
// consumers must tolerate duplicates.
func (r Relay) DrainOnce(ctx context.Context) error {
	pending, err := r.Outbox.Pending(ctx, relayBatchSize)
	if err != nil {
		return err
	}
	for _, event := range pending {
		if err := r.Publisher.Publish(ctx, event.Envelope); err != nil {
			return err
		}
		if err := r.Outbox.MarkSent(ctx, event.ID, r.nowUTC()); err != nil {
			return err
		}
	}
	return nil
}

func (r Relay) nowUTC() time.Time {
	if r.Clock == nil {
		return time.Now().UTC()
	}
	return r.Clock.Now().UTC()
}
