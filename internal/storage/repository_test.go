package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"aracgider/internal/core"
	"aracgider/internal/store"
)

func newTestRepo(t *testing.T) *Repository {
	t.Helper()
	repo, err := NewRepository(filepath.Join(t.TempDir(), "aracgider.db"))
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	t.Cleanup(func() { repo.Close() })
	return repo
}

func TestVehicleRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	id, err := repo.AddVehicle(ctx, core.Vehicle{Plate: "34ABC123", Class: core.ClassPassenger})
	if err != nil {
		t.Fatalf("add vehicle: %v", err)
	}

	v, err := repo.GetVehicle(ctx, id)
	if err != nil {
		t.Fatalf("get vehicle: %v", err)
	}
	if v.Plate != "34ABC123" || v.Class != core.ClassPassenger || v.ID != id {
		t.Fatalf("round trip mismatch: %+v", v)
	}

	if err := repo.DeleteVehicle(ctx, id); err != nil {
		t.Fatalf("delete vehicle: %v", err)
	}
	if _, err := repo.GetVehicle(ctx, id); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after delete, got %v", err)
	}
}

func TestExpenseRoundTrip(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	vid, err := repo.AddVehicle(ctx, core.Vehicle{Plate: "06TIC042", Class: core.ClassCommercial})
	if err != nil {
		t.Fatalf("add vehicle: %v", err)
	}

	spent := time.Date(2025, 3, 10, 14, 30, 0, 0, time.UTC)
	eid, err := repo.AddExpense(ctx, core.Expense{
		VehicleID: vid,
		Category:  core.CategoryFuel,
		Gross:     core.Money{Cents: 120000},
		Date:      spent,
		VATRate:   20,
		Note:      "uzun yol",
	})
	if err != nil {
		t.Fatalf("add expense: %v", err)
	}

	e, err := repo.GetExpense(ctx, eid)
	if err != nil {
		t.Fatalf("get expense: %v", err)
	}
	if e.VehicleID != vid || e.Category != core.CategoryFuel ||
		e.Gross.Cents != 120000 || e.VATRate != 20 || e.Note != "uzun yol" {
		t.Fatalf("round trip mismatch: %+v", e)
	}
	if !e.Date.Equal(spent) {
		t.Fatalf("date mismatch: got %v, want %v", e.Date, spent)
	}
}

func TestAddExpenseRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	_, err := repo.AddExpense(ctx, core.Expense{
		VehicleID: "1",
		Category:  core.CategoryFuel,
		Gross:     core.Money{Cents: 0},
		Date:      time.Now(),
		VATRate:   20,
	})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}

	_, err = repo.AddExpense(ctx, core.Expense{
		VehicleID: "1",
		Category:  core.CategoryFuel,
		Gross:     core.Money{Cents: 100},
		Date:      time.Now(),
		VATRate:   120,
	})
	if !errors.Is(err, core.ErrInvalidRate) {
		t.Fatalf("expected ErrInvalidRate, got %v", err)
	}
}

func TestListExpensesNewestFirst(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	vid, _ := repo.AddVehicle(ctx, core.Vehicle{Plate: "34ABC123", Class: core.ClassCommercial})
	for d := 1; d <= 3; d++ {
		_, err := repo.AddExpense(ctx, core.Expense{
			VehicleID: vid,
			Category:  core.CategoryFuel,
			Gross:     core.Money{Cents: int64(d) * 1000},
			Date:      time.Date(2025, 2, d, 0, 0, 0, 0, time.UTC),
			VATRate:   20,
		})
		if err != nil {
			t.Fatalf("add expense %d: %v", d, err)
		}
	}

	list, err := repo.ListExpenses(ctx)
	if err != nil {
		t.Fatalf("list expenses: %v", err)
	}
	if len(list) != 3 {
		t.Fatalf("expected 3 expenses, got %d", len(list))
	}
	for i := 1; i < len(list); i++ {
		if list[i].Date.After(list[i-1].Date) {
			t.Fatalf("expenses not in descending date order: %v after %v", list[i].Date, list[i-1].Date)
		}
	}
}

func TestSoftDeleteAndSyncQueue(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	vid, _ := repo.AddVehicle(ctx, core.Vehicle{Plate: "34ABC123", Class: core.ClassPassenger})
	eid, err := repo.AddExpense(ctx, core.Expense{
		VehicleID: vid,
		Category:  core.CategoryRepair,
		Gross:     core.Money{Cents: 50000},
		Date:      time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		VATRate:   20,
	})
	if err != nil {
		t.Fatalf("add expense: %v", err)
	}

	pending, err := repo.GetPendingExpenses(ctx, 10)
	if err != nil {
		t.Fatalf("pending: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected 1 pending expense, got %d", len(pending))
	}

	if err := repo.MarkSynced(ctx, pending[0]); err != nil {
		t.Fatalf("mark synced: %v", err)
	}
	pending, _ = repo.GetPendingExpenses(ctx, 10)
	if len(pending) != 0 {
		t.Fatalf("expected empty queue after sync, got %d", len(pending))
	}

	if err := repo.DeleteExpense(ctx, eid); err != nil {
		t.Fatalf("delete expense: %v", err)
	}
	if _, err := repo.GetExpense(ctx, eid); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after soft delete, got %v", err)
	}
	list, _ := repo.ListExpenses(ctx)
	if len(list) != 0 {
		t.Fatalf("soft deleted expense still listed")
	}
}

func TestDanglingReferenceSurvivesVehicleDelete(t *testing.T) {
	ctx := context.Background()
	repo := newTestRepo(t)

	vid, _ := repo.AddVehicle(ctx, core.Vehicle{Plate: "34ABC123", Class: core.ClassPassenger})
	if _, err := repo.AddExpense(ctx, core.Expense{
		VehicleID: vid,
		Category:  core.CategoryFuel,
		Gross:     core.Money{Cents: 10000},
		Date:      time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		VATRate:   20,
	}); err != nil {
		t.Fatalf("add expense: %v", err)
	}

	if err := repo.DeleteVehicle(ctx, vid); err != nil {
		t.Fatalf("delete vehicle: %v", err)
	}

	list, err := repo.ListExpenses(ctx)
	if err != nil || len(list) != 1 {
		t.Fatalf("expected dangling expense to survive, got %d (%v)", len(list), err)
	}
	if list[0].VehicleID != vid {
		t.Fatalf("dangling reference changed: %q", list[0].VehicleID)
	}
}
