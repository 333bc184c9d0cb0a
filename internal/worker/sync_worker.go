package worker

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"strconv"

	"aracgider/internal/amqp"
	"aracgider/internal/core"
	"aracgider/internal/storage"
	"aracgider/internal/store"
)

// RowAppender appends one ledger row to the export target.
type RowAppender interface {
	AppendRow(ctx context.Context, row []any) (string, error)
}

// SyncWorker pushes recorded expenses from SQLite to the export sheet.
// Each synced row carries the full four-account breakdown so the sheet
// mirrors what the CSV export shows.
type SyncWorker struct {
	storage   *storage.Repository
	appender  RowAppender
	batchSize int
}

func NewSyncWorker(storage *storage.Repository, appender RowAppender, batchSize int) *SyncWorker {
	return &SyncWorker{
		storage:   storage,
		appender:  appender,
		batchSize: batchSize,
	}
}

// HandleSyncMessage processes a single expense sync message from AMQP
func (w *SyncWorker) HandleSyncMessage(ctx context.Context, msg *amqp.ExpenseSyncMessage) error {
	slog.InfoContext(ctx, "Processing sync message",
		"id", msg.ID,
		"version", msg.Version)

	return w.syncExpense(ctx, msg.ID)
}

func (w *SyncWorker) syncExpense(ctx context.Context, id int64) error {
	ref := strconv.FormatInt(id, 10)

	expense, err := w.storage.GetExpense(ctx, ref)
	if errors.Is(err, store.ErrNotFound) {
		// Removed before the worker got to it. Settle the queue entry.
		slog.InfoContext(ctx, "Expense no longer present, settling", "id", id)
		if err := w.storage.MarkSynced(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to settle removed expense", "id", id, "error", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("get expense from storage: %w", err)
	}

	vehicle, err := w.storage.GetVehicle(ctx, expense.VehicleID)
	if errors.Is(err, store.ErrNotFound) {
		// Vehicle was deleted, the postings cannot be derived anymore.
		slog.WarnContext(ctx, "Vehicle missing for expense, marking sync error",
			"id", id, "vehicle_id", expense.VehicleID)
		if err := w.storage.MarkSyncError(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", err)
		}
		return nil
	}
	if err != nil {
		return fmt.Errorf("get vehicle from storage: %w", err)
	}

	row, err := ledgerRow(expense, vehicle)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to derive ledger row, marking sync error",
			"id", id, "error", err)
		if err := w.storage.MarkSyncError(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to mark sync error", "id", id, "error", err)
		}
		return nil
	}

	sheetRef, err := w.appender.AppendRow(ctx, row)
	if err != nil {
		return fmt.Errorf("append row: %w", err)
	}

	if err := w.storage.MarkSynced(ctx, id); err != nil {
		return fmt.Errorf("mark synced: %w", err)
	}

	slog.InfoContext(ctx, "Expense synced to sheet",
		"id", id,
		"sheets_ref", sheetRef)

	return nil
}

// ProcessPendingExpenses processes any expenses that haven't been synced yet.
// This is a backup mechanism in case AMQP messages are lost.
func (w *SyncWorker) ProcessPendingExpenses(ctx context.Context) error {
	pending, err := w.storage.GetPendingExpenses(ctx, w.batchSize)
	if err != nil {
		return fmt.Errorf("get pending expenses: %w", err)
	}

	if len(pending) == 0 {
		return nil
	}

	slog.InfoContext(ctx, "Processing pending expenses", "count", len(pending))

	for _, id := range pending {
		if err := w.syncExpense(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to sync expense", "id", id, "error", err)
		}
	}

	return nil
}

// StartupSyncCheck drains a larger pending batch at worker startup to recover
// from missed AMQP messages or worker downtime.
func (w *SyncWorker) StartupSyncCheck(ctx context.Context) error {
	pending, err := w.storage.GetPendingExpenses(ctx, w.batchSize*5)
	if err != nil {
		return fmt.Errorf("get pending expenses for startup check: %w", err)
	}

	if len(pending) == 0 {
		slog.InfoContext(ctx, "No pending expenses found on startup")
		return nil
	}

	slog.InfoContext(ctx, "Found pending expenses on startup, processing...",
		"count", len(pending))

	successCount := 0
	errorCount := 0

	for _, id := range pending {
		if err := w.syncExpense(ctx, id); err != nil {
			slog.ErrorContext(ctx, "Failed to sync expense during startup",
				"id", id, "error", err)
			errorCount++
			continue
		}
		successCount++
	}

	slog.InfoContext(ctx, "Startup sync completed",
		"total", len(pending),
		"synced", successCount,
		"errors", errorCount)

	return nil
}

// ledgerRow derives the sheet row for one expense. Column order matches the
// CSV export: date, plate, class, category, gross, rate, base, then the four
// account amounts and the note.
func ledgerRow(e core.Expense, v core.Vehicle) ([]any, error) {
	p, err := core.ComputePosting(e, v)
	if err != nil {
		return nil, err
	}
	base, err := e.Base()
	if err != nil {
		return nil, err
	}

	return []any{
		e.Date.Format("2006-01-02"),
		v.Plate,
		string(v.Class),
		string(e.Category),
		round2(e.Gross.Amount()),
		e.VATRate,
		round2(base),
		round2(p.GeneralExpense),
		round2(p.DeductibleVAT),
		round2(p.NonDeductibleExpense),
		round2(p.Payable),
		e.Note,
	}, nil
}

func round2(f float64) float64 {
	return math.Round(f*100) / 100
}
