// Package worker applies ledger events to the spreadsheet mirror.
package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"incometracker/internal/amqp"
	"incometracker/internal/core"
	"incometracker/internal/metrics"
	"incometracker/internal/period"
	"incometracker/internal/sheets"
)

type TransactionReader interface {
	Transaction(ctx context.Context, userID, id int64) (core.Transaction, error)
	TransactionsBetween(ctx context.Context, userID int64, iv period.Interval) ([]core.Transaction, error)
}

// MirrorWorker keeps a LedgerMirror in step with the database. Events only
// carry ids, so every upsert writes the row as it is now.
type MirrorWorker struct {
	reader TransactionReader
	mirror sheets.LedgerMirror
}

func NewMirrorWorker(reader TransactionReader, mirror sheets.LedgerMirror) *MirrorWorker {
	return &MirrorWorker{reader: reader, mirror: mirror}
}

// HandleEvent is the amqp consumer callback. Returning an error requeues the
// event.
func (w *MirrorWorker) HandleEvent(ctx context.Context, ev *amqp.LedgerEvent) error {
	err := w.handle(ctx, ev)
	metrics.ObserveLedgerEvent(string(ev.Type), err)
	return err
}

func (w *MirrorWorker) handle(ctx context.Context, ev *amqp.LedgerEvent) error {
	slog.DebugContext(ctx, "Processing ledger event",
		"type", ev.Type,
		"transaction_id", ev.TransactionID,
		"user_id", ev.UserID)

	if ev.Type == amqp.TransactionDeleted {
		if err := w.mirror.DeleteRow(ctx, ev.TransactionID); err != nil {
			return fmt.Errorf("delete mirror row %d: %w", ev.TransactionID, err)
		}
		return nil
	}

	tx, err := w.reader.Transaction(ctx, ev.UserID, ev.TransactionID)
	if errors.Is(err, core.ErrNotFound) {
		// deleted before we got here; the delete event may still be queued
		slog.InfoContext(ctx, "Transaction gone, removing mirror row", "transaction_id", ev.TransactionID)
		return w.mirror.DeleteRow(ctx, ev.TransactionID)
	}
	if err != nil {
		return fmt.Errorf("load transaction %d: %w", ev.TransactionID, err)
	}

	if err := w.mirror.UpsertRow(ctx, sheets.RowFromTransaction(tx)); err != nil {
		return fmt.Errorf("upsert mirror row %d: %w", ev.TransactionID, err)
	}
	return nil
}

// Backfill mirrors every transaction of the user inside iv. It recovers rows
// for events lost while the worker was down.
func (w *MirrorWorker) Backfill(ctx context.Context, userID int64, iv period.Interval) (int, error) {
	txs, err := w.reader.TransactionsBetween(ctx, userID, iv)
	if err != nil {
		return 0, fmt.Errorf("list transactions for backfill: %w", err)
	}

	synced := 0
	for _, tx := range txs {
		if err := w.mirror.UpsertRow(ctx, sheets.RowFromTransaction(tx)); err != nil {
			slog.ErrorContext(ctx, "Failed to backfill transaction", "transaction_id", tx.ID, "error", err)
			continue
		}
		synced++
	}

	slog.InfoContext(ctx, "Backfill finished",
		"user_id", userID,
		"start", iv.Start.String(),
		"end", iv.End.String(),
		"synced", synced,
		"failed", len(txs)-synced)
	return synced, nil
}
