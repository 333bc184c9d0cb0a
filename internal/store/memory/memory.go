// Package memory is the default in-process backend: a mutex-guarded value
// store with synthetic ids. It backs tests and single-binary deployments
// where durability is not required.
package memory

import (
	"context"
	"fmt"
	"sync"

	"aracgider/internal/core"
	"aracgider/internal/store"
)

type Store struct {
	mu       sync.Mutex
	nextID   int64
	vehicles []core.Vehicle
	expenses []core.Expense
}

func New() *Store {
	return &Store{}
}

func (s *Store) AddVehicle(_ context.Context, v core.Vehicle) (string, error) {
	if err := v.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	v.ID = fmt.Sprintf("mem:%d", s.nextID)
	s.vehicles = append(s.vehicles, v)
	return v.ID, nil
}

func (s *Store) GetVehicle(_ context.Context, id string) (core.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, v := range s.vehicles {
		if v.ID == id {
			return v, nil
		}
	}
	return core.Vehicle{}, store.ErrNotFound
}

func (s *Store) ListVehicles(_ context.Context) ([]core.Vehicle, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Vehicle, len(s.vehicles))
	copy(out, s.vehicles)
	return out, nil
}

// DeleteVehicle removes the vehicle only. Its expenses keep the dangling
// reference on purpose; aggregation and exports exclude them.
func (s *Store) DeleteVehicle(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, v := range s.vehicles {
		if v.ID == id {
			s.vehicles = append(s.vehicles[:i], s.vehicles[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

func (s *Store) AddExpense(_ context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.nextID++
	e.ID = fmt.Sprintf("mem:%d", s.nextID)
	s.expenses = append(s.expenses, e)
	return e.ID, nil
}

func (s *Store) GetExpense(_ context.Context, id string) (core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.expenses {
		if e.ID == id {
			return e, nil
		}
	}
	return core.Expense{}, store.ErrNotFound
}

func (s *Store) ListExpenses(_ context.Context) ([]core.Expense, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]core.Expense, len(s.expenses))
	copy(out, s.expenses)
	return out, nil
}

func (s *Store) DeleteExpense(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for i, e := range s.expenses {
		if e.ID == id {
			s.expenses = append(s.expenses[:i], s.expenses[i+1:]...)
			return nil
		}
	}
	return store.ErrNotFound
}

var _ store.Store = (*Store)(nil)
