package services

import (
	"context"
	"log/slog"

	"incometracker/internal/amqp"
	"incometracker/internal/metrics"
)

// EventPublisher is satisfied by *amqp.Client.
type EventPublisher interface {
	PublishLedgerEvent(ctx context.Context, ev *amqp.LedgerEvent) error
}

// publish sends a ledger event without failing the caller: the database write
// has already committed, and the worker can be backfilled.
func publish(ctx context.Context, p EventPublisher, t amqp.EventType, userID, transactionID int64) {
	if p == nil {
		return
	}
	err := p.PublishLedgerEvent(ctx, amqp.NewLedgerEvent(t, userID, transactionID))
	metrics.ObservePublish(string(t), err)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to publish ledger event",
			"type", t,
			"transaction_id", transactionID,
			"error", err)
	}
}
