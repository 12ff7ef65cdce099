package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/iyhunko/product-catalog/internal/metrics"
	"github.com/iyhunko/product-catalog/internal/model"
	"github.com/iyhunko/product-catalog/internal/repository"
)

const outboxBatchSize = 100

// OutboxWorker polls the events table and republishes events whose first publish failed.
type OutboxWorker struct {
	events    repository.EventRepository
	publisher EventPublisher
	interval  time.Duration
	// bounds each store and broker call
	callTimeout time.Duration
	stopChan    chan struct{}
}

// NewOutboxWorker creates a new OutboxWorker
func NewOutboxWorker(events repository.EventRepository, publisher EventPublisher, interval, callTimeout time.Duration) *OutboxWorker {
	return &OutboxWorker{
		events:      events,
		publisher:   publisher,
		interval:    interval,
		callTimeout: callTimeout,
		stopChan:    make(chan struct{}),
	}
}

func (w *OutboxWorker) callContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if w.callTimeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, w.callTimeout)
}

// Start begins processing events from the outbox
func (w *OutboxWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	slog.Info("Outbox worker started", slog.Duration("interval", w.interval))

	for {
		select {
		case <-ctx.Done():
			slog.Info("Outbox worker stopped by context")
			return
		case <-w.stopChan:
			slog.Info("Outbox worker stopped")
			return
		case <-ticker.C:
			w.ProcessPending(ctx)
		}
	}
}

// Stop stops the outbox worker
func (w *OutboxWorker) Stop() {
	close(w.stopChan)
}

// ProcessPending republishes one batch of pending events in creation order.
// Undecodable events are marked failed. A publish error stops the batch and leaves
// the remaining events pending for the next tick.
func (w *OutboxWorker) ProcessPending(ctx context.Context) {
	listCtx, cancel := w.callContext(ctx)
	events, err := w.events.ListPending(listCtx, outboxBatchSize)
	cancel()
	if err != nil {
		slog.Error("Failed to retrieve pending events", slog.Any("err", err))
		return
	}

	if len(events) == 0 {
		return
	}

	slog.Info("Processing pending events", slog.Int("count", len(events)))

	for _, event := range events {
		lifecycle, err := event.LifecycleEvent()
		if err != nil {
			slog.Error("Failed to decode outbox event",
				slog.String("event_id", event.ID.String()),
				slog.String("event_type", event.EventType),
				slog.Any("err", err))
			w.updateStatus(ctx, event, model.EventStatusFailed)
			continue
		}

		publishCtx, cancel := w.callContext(ctx)
		err = w.publisher.PublishEvent(publishCtx, event.Topic, lifecycle)
		cancel()
		if err != nil {
			slog.Error("Failed to republish event",
				slog.String("event_id", event.ID.String()),
				slog.String("event_type", event.EventType),
				slog.Any("err", err))
			return
		}

		if w.updateStatus(ctx, event, model.EventStatusProcessed) {
			metrics.OutboxRepublished.Inc()
			slog.Info("Event processed successfully",
				slog.String("event_id", event.ID.String()),
				slog.String("event_type", event.EventType))
		}
	}
}

func (w *OutboxWorker) updateStatus(ctx context.Context, event *model.Event, status model.EventStatus) bool {
	ctx, cancel := w.callContext(ctx)
	defer cancel()

	if err := w.events.UpdateStatus(ctx, event.ID, status); err != nil {
		slog.Error("Failed to update event status",
			slog.String("event_id", event.ID.String()),
			slog.String("status", string(status)),
			slog.Any("err", err))
		return false
	}
	return true
}
