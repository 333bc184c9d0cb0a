package worker

import (
	"context"
	"path/filepath"
	"strconv"
	"testing"
	"time"

	"aracgider/internal/amqp"
	"aracgider/internal/core"
	"aracgider/internal/storage"
)

type fakeAppender struct {
	rows [][]any
	err  error
}

func (f *fakeAppender) AppendRow(ctx context.Context, row []any) (string, error) {
	if f.err != nil {
		return "", f.err
	}
	f.rows = append(f.rows, row)
	return "Giderler!A2:L2", nil
}

func newTestWorker(t *testing.T) (*SyncWorker, *storage.Repository, *fakeAppender) {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "aracgider.db"))
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	appender := &fakeAppender{}
	return NewSyncWorker(repo, appender, 10), repo, appender
}

func addExpense(t *testing.T, repo *storage.Repository, vid string) string {
	t.Helper()
	ref, err := repo.AddExpense(context.Background(), core.Expense{
		VehicleID: vid,
		Category:  core.CategoryFuel,
		Gross:     core.Money{Cents: 120000},
		Date:      time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		VATRate:   20,
	})
	if err != nil {
		t.Fatalf("add expense: %v", err)
	}
	return ref
}

func TestHandleSyncMessageAppendsLedgerRow(t *testing.T) {
	ctx := context.Background()
	w, repo, appender := newTestWorker(t)

	vid, _ := repo.AddVehicle(ctx, core.Vehicle{Plate: "34ABC123", Class: core.ClassPassenger})
	ref := addExpense(t, repo, vid)
	id, _ := strconv.ParseInt(ref, 10, 64)

	if err := w.HandleSyncMessage(ctx, amqp.NewExpenseSyncMessage(id, 1)); err != nil {
		t.Fatalf("handle sync message: %v", err)
	}

	if len(appender.rows) != 1 {
		t.Fatalf("expected 1 appended row, got %d", len(appender.rows))
	}
	row := appender.rows[0]
	if len(row) != 12 {
		t.Fatalf("expected 12 columns, got %d", len(row))
	}
	if row[0] != "2025-03-10" || row[1] != "34ABC123" || row[2] != "binek" {
		t.Fatalf("unexpected row prefix: %v", row[:3])
	}
	if row[7] != 700.0 || row[8] != 140.0 || row[9] != 360.0 || row[10] != 1200.0 {
		t.Fatalf("unexpected account amounts: %v", row[7:11])
	}

	pending, _ := repo.GetPendingExpenses(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("expected queue drained, got %d pending", len(pending))
	}
}

func TestHandleSyncMessageSettlesRemovedExpense(t *testing.T) {
	ctx := context.Background()
	w, repo, appender := newTestWorker(t)

	vid, _ := repo.AddVehicle(ctx, core.Vehicle{Plate: "34ABC123", Class: core.ClassPassenger})
	ref := addExpense(t, repo, vid)
	id, _ := strconv.ParseInt(ref, 10, 64)

	if err := repo.DeleteExpense(ctx, ref); err != nil {
		t.Fatalf("delete expense: %v", err)
	}

	if err := w.HandleSyncMessage(ctx, amqp.NewExpenseSyncMessage(id, 2)); err != nil {
		t.Fatalf("handle sync message: %v", err)
	}

	if len(appender.rows) != 0 {
		t.Fatalf("removed expense must not be appended, got %d rows", len(appender.rows))
	}
	pending, _ := repo.GetPendingExpenses(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("expected queue settled, got %d pending", len(pending))
	}
}

func TestHandleSyncMessageMarksErrorForDanglingVehicle(t *testing.T) {
	ctx := context.Background()
	w, repo, appender := newTestWorker(t)

	vid, _ := repo.AddVehicle(ctx, core.Vehicle{Plate: "34ABC123", Class: core.ClassPassenger})
	ref := addExpense(t, repo, vid)
	id, _ := strconv.ParseInt(ref, 10, 64)

	if err := repo.DeleteVehicle(ctx, vid); err != nil {
		t.Fatalf("delete vehicle: %v", err)
	}

	if err := w.HandleSyncMessage(ctx, amqp.NewExpenseSyncMessage(id, 1)); err != nil {
		t.Fatalf("handle sync message: %v", err)
	}

	if len(appender.rows) != 0 {
		t.Fatalf("dangling expense must not be appended, got %d rows", len(appender.rows))
	}
	pending, _ := repo.GetPendingExpenses(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("sync error rows must leave the pending queue, got %d", len(pending))
	}
}

func TestProcessPendingExpenses(t *testing.T) {
	ctx := context.Background()
	w, repo, appender := newTestWorker(t)

	vid, _ := repo.AddVehicle(ctx, core.Vehicle{Plate: "06TIC042", Class: core.ClassCommercial})
	addExpense(t, repo, vid)
	addExpense(t, repo, vid)

	if err := w.ProcessPendingExpenses(ctx); err != nil {
		t.Fatalf("process pending: %v", err)
	}

	if len(appender.rows) != 2 {
		t.Fatalf("expected 2 appended rows, got %d", len(appender.rows))
	}
	pending, _ := repo.GetPendingExpenses(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("expected queue drained, got %d pending", len(pending))
	}
}
