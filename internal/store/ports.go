// Package store defines the ports between the application layer and the
// collections it owns. The engine itself never touches a store: handlers
// load whole collections and hand them to the pure functions in core.
package store

import (
	"context"
	"errors"

	"aracgider/internal/core"
)

// ErrNotFound is returned when an id does not resolve to a record.
var ErrNotFound = errors.New("record not found")

type (
	VehicleStore interface {
		// AddVehicle persists the vehicle and returns its assigned id.
		AddVehicle(ctx context.Context, v core.Vehicle) (string, error)
		GetVehicle(ctx context.Context, id string) (core.Vehicle, error)
		ListVehicles(ctx context.Context) ([]core.Vehicle, error)
		// DeleteVehicle removes only the vehicle. Expenses keep their
		// reference and become dangling; reports exclude them.
		DeleteVehicle(ctx context.Context, id string) error
	}

	ExpenseStore interface {
		// AddExpense persists the expense and returns its assigned id.
		AddExpense(ctx context.Context, e core.Expense) (string, error)
		GetExpense(ctx context.Context, id string) (core.Expense, error)
		ListExpenses(ctx context.Context) ([]core.Expense, error)
		DeleteExpense(ctx context.Context, id string) error
	}

	// Store is the combined backend handed to the HTTP server.
	Store interface {
		VehicleStore
		ExpenseStore
	}
)
