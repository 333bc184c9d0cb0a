package adapters

import (
	"context"

	"aracgider/internal/core"
	"aracgider/internal/services"
	"aracgider/internal/storage"
	"aracgider/internal/store"
)

var _ store.Store = (*SQLiteAdapter)(nil)

// SQLiteAdapter combines the repository and the expense service behind the
// store.Store interface. Expense writes go through the service so the export
// worker hears about them, everything else hits storage directly.
type SQLiteAdapter struct {
	storage *storage.Repository
	service *services.ExpenseService
}

func NewSQLiteAdapter(storage *storage.Repository, service *services.ExpenseService) *SQLiteAdapter {
	return &SQLiteAdapter{
		storage: storage,
		service: service,
	}
}

func (a *SQLiteAdapter) AddVehicle(ctx context.Context, v core.Vehicle) (string, error) {
	return a.storage.AddVehicle(ctx, v)
}

func (a *SQLiteAdapter) GetVehicle(ctx context.Context, id string) (core.Vehicle, error) {
	return a.storage.GetVehicle(ctx, id)
}

func (a *SQLiteAdapter) ListVehicles(ctx context.Context) ([]core.Vehicle, error) {
	return a.storage.ListVehicles(ctx)
}

func (a *SQLiteAdapter) DeleteVehicle(ctx context.Context, id string) error {
	return a.storage.DeleteVehicle(ctx, id)
}

func (a *SQLiteAdapter) AddExpense(ctx context.Context, e core.Expense) (string, error) {
	return a.service.RecordExpense(ctx, e)
}

func (a *SQLiteAdapter) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	return a.storage.GetExpense(ctx, id)
}

func (a *SQLiteAdapter) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	return a.storage.ListExpenses(ctx)
}

func (a *SQLiteAdapter) DeleteExpense(ctx context.Context, id string) error {
	return a.service.RemoveExpense(ctx, id)
}
