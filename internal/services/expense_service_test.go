package services

import (
	"context"
	"errors"
	"path/filepath"
	"testing"
	"time"

	"aracgider/internal/core"
	"aracgider/internal/storage"
	"aracgider/internal/store"
)

func newTestService(t *testing.T) (*ExpenseService, *storage.Repository) {
	t.Helper()
	repo, err := storage.NewRepository(filepath.Join(t.TempDir(), "aracgider.db"))
	if err != nil {
		t.Fatalf("new repository: %v", err)
	}
	svc := NewExpenseService(repo, nil)
	t.Cleanup(func() { svc.Close() })
	return svc, repo
}

func TestRecordExpenseWithoutAMQP(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	vid, err := repo.AddVehicle(ctx, core.Vehicle{Plate: "34ABC123", Class: core.ClassPassenger})
	if err != nil {
		t.Fatalf("add vehicle: %v", err)
	}

	ref, err := svc.RecordExpense(ctx, core.Expense{
		VehicleID: vid,
		Category:  core.CategoryFuel,
		Gross:     core.Money{Cents: 120000},
		Date:      time.Date(2025, 3, 10, 0, 0, 0, 0, time.UTC),
		VATRate:   20,
	})
	if err != nil {
		t.Fatalf("record expense: %v", err)
	}

	e, err := repo.GetExpense(ctx, ref)
	if err != nil {
		t.Fatalf("get expense: %v", err)
	}
	if e.Gross.Cents != 120000 {
		t.Fatalf("stored gross = %d, want 120000", e.Gross.Cents)
	}
}

func TestRecordExpenseRejectsInvalid(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.RecordExpense(ctx, core.Expense{
		VehicleID: "1",
		Category:  core.CategoryFuel,
		Gross:     core.Money{Cents: -5},
		Date:      time.Now(),
		VATRate:   20,
	})
	if !errors.Is(err, core.ErrInvalidAmount) {
		t.Fatalf("expected ErrInvalidAmount, got %v", err)
	}
}

func TestRemoveExpense(t *testing.T) {
	ctx := context.Background()
	svc, repo := newTestService(t)

	vid, _ := repo.AddVehicle(ctx, core.Vehicle{Plate: "06TIC042", Class: core.ClassCommercial})
	ref, err := svc.RecordExpense(ctx, core.Expense{
		VehicleID: vid,
		Category:  core.CategoryRepair,
		Gross:     core.Money{Cents: 50000},
		Date:      time.Date(2025, 2, 1, 0, 0, 0, 0, time.UTC),
		VATRate:   20,
	})
	if err != nil {
		t.Fatalf("record expense: %v", err)
	}

	if err := svc.RemoveExpense(ctx, ref); err != nil {
		t.Fatalf("remove expense: %v", err)
	}
	if _, err := repo.GetExpense(ctx, ref); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound after remove, got %v", err)
	}

	if err := svc.RemoveExpense(ctx, "99999"); !errors.Is(err, store.ErrNotFound) {
		t.Fatalf("expected ErrNotFound for unknown ref, got %v", err)
	}
}
