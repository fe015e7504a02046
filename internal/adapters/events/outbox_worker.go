package events

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/scribeworks/notes-service/internal/ports"
)

// OutboxWorker drains the content outbox into the event publisher. Each
// iteration claims a batch under a fresh token; rows whose claim expires
// without an outcome become claimable again, so a crashed replica never
// strands events.
type OutboxWorker struct {
	logger     *slog.Logger
	outbox     ports.OutboxRepository
	publisher  ports.EventPublisher
	interval   time.Duration
	batchSize  int
	maxRetries int
}

func NewOutboxWorker(logger *slog.Logger, outbox ports.OutboxRepository, publisher ports.EventPublisher, interval time.Duration, batchSize, maxRetries int) *OutboxWorker {
	if interval <= 0 {
		interval = 2 * time.Second
	}
	if batchSize <= 0 {
		batchSize = 100
	}
	if maxRetries <= 0 {
		maxRetries = 10
	}
	return &OutboxWorker{
		logger:     logger,
		outbox:     outbox,
		publisher:  publisher,
		interval:   interval,
		batchSize:  batchSize,
		maxRetries: maxRetries,
	}
}

func (w *OutboxWorker) Run(ctx context.Context) error {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()
	for {
		if err := w.processOnce(ctx); err != nil && !errors.Is(err, context.Canceled) {
			w.logger.ErrorContext(ctx, "outbox iteration failed",
				"module", "events.outbox_worker",
				"layer", "adapter",
				"operation", "process_once",
				"outcome", "failure",
				"error", err,
			)
		}
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}
}

func (w *OutboxWorker) processOnce(ctx context.Context) error {
	claimToken := uuid.NewString()
	claimUntil := time.Now().UTC().Add(5 * w.interval)
	records, err := w.outbox.ClaimUnpublished(ctx, w.batchSize, claimToken, claimUntil)
	if err != nil {
		return err
	}
	for _, rec := range records {
		now := time.Now().UTC()
		if err := w.publisher.Publish(ctx, rec.EventType, rec.Payload, rec.PartitionKey); err != nil {
			if rec.RetryCount+1 >= w.maxRetries {
				_ = w.outbox.MarkDeadLettered(ctx, rec.OutboxID, claimToken, err.Error(), now)
				w.logger.ErrorContext(ctx, "event dead-lettered",
					"module", "events.outbox_worker",
					"layer", "adapter",
					"operation", "publish",
					"outcome", "failure",
					"event_type", rec.EventType,
					"outbox_id", rec.OutboxID,
					"retry_count", rec.RetryCount+1,
					"error", err,
				)
				continue
			}
			_ = w.outbox.MarkFailed(ctx, rec.OutboxID, claimToken, err.Error(), now)
			continue
		}
		_ = w.outbox.MarkPublished(ctx, rec.OutboxID, claimToken, now)
	}
	return nil
}
