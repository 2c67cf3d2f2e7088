package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"budgetvs/internal/amqp"
	"budgetvs/internal/cache"
	"budgetvs/internal/core"
	"budgetvs/internal/sheets"
)

// Consumer is the part of the AMQP client the worker drives.
type Consumer interface {
	ConsumeExpenseLogged(ctx context.Context, handler func(context.Context, *amqp.ExpenseLoggedMessage) error) error
}

// MirrorWorker copies ExpenseLogged events into a spreadsheet mirror.
// Deliveries are at-least-once, so message IDs already written are
// remembered for a while and skipped.
type MirrorWorker struct {
	mirror sheets.ExpenseMirror
	seen   *cache.LRUCache[string]
	logger *slog.Logger

	retryDelay time.Duration
}

func NewMirrorWorker(mirror sheets.ExpenseMirror, logger *slog.Logger) *MirrorWorker {
	if logger == nil {
		logger = slog.Default()
	}
	return &MirrorWorker{
		mirror:     mirror,
		seen:       cache.NewLRUCache[string](10000, time.Hour),
		logger:     logger,
		retryDelay: 5 * time.Second,
	}
}

// Seen exposes the dedupe cache so it can be registered for cleanup.
func (w *MirrorWorker) Seen() cache.Cleaner {
	return w.seen
}

// HandleExpenseLogged writes one message to the mirror.
func (w *MirrorWorker) HandleExpenseLogged(ctx context.Context, msg *amqp.ExpenseLoggedMessage) error {
	if ref, ok := w.seen.Get(msg.ID); ok {
		w.logger.DebugContext(ctx, "Skipping duplicate expense message", "id", msg.ID, "row_ref", ref)
		return nil
	}

	rec, err := msg.Record()
	if err != nil {
		// A bad payload never becomes valid; requeueing would loop forever.
		w.logger.ErrorContext(ctx, "Dropping invalid expense message", "id", msg.ID, "error", err)
		return nil
	}

	ref, err := w.mirror.AppendExpense(ctx, msg.SessionID, rec)
	if err != nil {
		return fmt.Errorf("append expense to mirror: %w", err)
	}
	w.seen.Set(msg.ID, ref)

	w.logger.InfoContext(ctx, "Mirrored expense",
		"id", msg.ID,
		"session_id", msg.SessionID,
		"category", rec.Category,
		"amount", core.FormatAmount(rec.Amount),
		"row_ref", ref)
	return nil
}

// Run consumes until ctx is cancelled, restarting the consumer after
// transient failures.
func (w *MirrorWorker) Run(ctx context.Context, consumer Consumer) error {
	for {
		err := consumer.ConsumeExpenseLogged(ctx, w.HandleExpenseLogged)
		if ctx.Err() != nil {
			return nil
		}
		if err == nil || errors.Is(err, context.Canceled) {
			return err
		}
		w.logger.WarnContext(ctx, "Consumer stopped, retrying", "error", err, "delay", w.retryDelay)
		select {
		case <-ctx.Done():
			return nil
		case <-time.After(w.retryDelay):
		}
	}
}
