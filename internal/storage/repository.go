// Package storage is the durable sqlite backend. It owns the vehicle and
// expense tables plus the sync-status queue the export worker drains.
package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"aracgider/internal/core"
	"aracgider/internal/store"

	_ "modernc.org/sqlite"
)

type Repository struct {
	db *sql.DB
}

func NewRepository(dbPath string) (*Repository, error) {
	if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
		return nil, fmt.Errorf("create db directory: %w", err)
	}

	db, err := sql.Open("sqlite", dbPath)
	if err != nil {
		return nil, fmt.Errorf("open sqlite database: %w", err)
	}

	if err := db.Ping(); err != nil {
		db.Close()
		return nil, fmt.Errorf("ping database: %w", err)
	}

	if err := RunMigrations(dbPath); err != nil {
		db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}

	return &Repository{db: db}, nil
}

func (r *Repository) Close() error {
	if r.db != nil {
		return r.db.Close()
	}
	return nil
}

func (r *Repository) AddVehicle(ctx context.Context, v core.Vehicle) (string, error) {
	if err := v.Validate(); err != nil {
		return "", err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO vehicles (plate, class) VALUES (?, ?)`,
		v.Plate, string(v.Class))
	if err != nil {
		return "", fmt.Errorf("insert vehicle: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("vehicle insert id: %w", err)
	}

	slog.InfoContext(ctx, "Vehicle saved",
		"id", id, "plate", v.Plate, "class", v.Class)

	return strconv.FormatInt(id, 10), nil
}

func (r *Repository) GetVehicle(ctx context.Context, id string) (core.Vehicle, error) {
	numID, err := parseID(id)
	if err != nil {
		return core.Vehicle{}, err
	}
	var v core.Vehicle
	var class string
	err = r.db.QueryRowContext(ctx,
		`SELECT id, plate, class FROM vehicles WHERE id = ?`, numID).
		Scan(&numID, &v.Plate, &class)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Vehicle{}, store.ErrNotFound
	}
	if err != nil {
		return core.Vehicle{}, fmt.Errorf("get vehicle: %w", err)
	}
	v.ID = strconv.FormatInt(numID, 10)
	v.Class = core.VehicleClass(class)
	return v, nil
}

func (r *Repository) ListVehicles(ctx context.Context) ([]core.Vehicle, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, plate, class FROM vehicles ORDER BY id`)
	if err != nil {
		return nil, fmt.Errorf("list vehicles: %w", err)
	}
	defer rows.Close()

	var out []core.Vehicle
	for rows.Next() {
		var id int64
		var v core.Vehicle
		var class string
		if err := rows.Scan(&id, &v.Plate, &class); err != nil {
			return nil, fmt.Errorf("scan vehicle: %w", err)
		}
		v.ID = strconv.FormatInt(id, 10)
		v.Class = core.VehicleClass(class)
		out = append(out, v)
	}
	return out, rows.Err()
}

// DeleteVehicle removes the vehicle row only. Expenses keep the now
// dangling vehicle_id; reports exclude them instead of failing.
func (r *Repository) DeleteVehicle(ctx context.Context, id string) error {
	numID, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx, `DELETE FROM vehicles WHERE id = ?`, numID)
	if err != nil {
		return fmt.Errorf("delete vehicle: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("delete vehicle rows: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}

	slog.InfoContext(ctx, "Vehicle deleted", "id", id)
	return nil
}

func (r *Repository) AddExpense(ctx context.Context, e core.Expense) (string, error) {
	if err := e.Validate(); err != nil {
		return "", err
	}
	vehicleID, err := parseID(e.VehicleID)
	if err != nil {
		return "", err
	}
	res, err := r.db.ExecContext(ctx,
		`INSERT INTO expenses (vehicle_id, category, gross_cents, vat_rate, spent_at, note)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		vehicleID, string(e.Category), e.Gross.Cents, e.VATRate,
		e.Date.UTC().Format(time.RFC3339), e.Note)
	if err != nil {
		return "", fmt.Errorf("insert expense: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return "", fmt.Errorf("expense insert id: %w", err)
	}

	slog.InfoContext(ctx, "Expense saved",
		"id", id,
		"vehicle_id", e.VehicleID,
		"category", e.Category,
		"gross_cents", e.Gross.Cents,
		"vat_rate", e.VATRate)

	return strconv.FormatInt(id, 10), nil
}

func (r *Repository) GetExpense(ctx context.Context, id string) (core.Expense, error) {
	numID, err := parseID(id)
	if err != nil {
		return core.Expense{}, err
	}
	return r.scanExpense(r.db.QueryRowContext(ctx,
		`SELECT id, vehicle_id, category, gross_cents, vat_rate, spent_at, note
		 FROM expenses WHERE id = ? AND deleted_at IS NULL`, numID))
}

func (r *Repository) ListExpenses(ctx context.Context) ([]core.Expense, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, vehicle_id, category, gross_cents, vat_rate, spent_at, note
		 FROM expenses WHERE deleted_at IS NULL ORDER BY spent_at DESC, id DESC`)
	if err != nil {
		return nil, fmt.Errorf("list expenses: %w", err)
	}
	defer rows.Close()

	var out []core.Expense
	for rows.Next() {
		e, err := r.scanExpense(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// DeleteExpense soft deletes so the export worker can still see the row
// and remove it from the sheet.
func (r *Repository) DeleteExpense(ctx context.Context, id string) error {
	numID, err := parseID(id)
	if err != nil {
		return err
	}
	res, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET deleted_at = CURRENT_TIMESTAMP WHERE id = ? AND deleted_at IS NULL`, numID)
	if err != nil {
		return fmt.Errorf("soft delete expense: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("soft delete rows: %w", err)
	}
	if n == 0 {
		return store.ErrNotFound
	}

	slog.InfoContext(ctx, "Expense soft deleted", "id", id)
	return nil
}

// GetPendingExpenses returns ids of rows that have not reached the export
// sheet yet, oldest first.
func (r *Repository) GetPendingExpenses(ctx context.Context, limit int) ([]int64, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id FROM expenses
		 WHERE sync_status = 'pending' AND deleted_at IS NULL
		 ORDER BY id LIMIT ?`, limit)
	if err != nil {
		return nil, fmt.Errorf("get pending expenses: %w", err)
	}
	defer rows.Close()

	var out []int64
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("scan pending expense: %w", err)
		}
		out = append(out, id)
	}
	return out, rows.Err()
}

func (r *Repository) MarkSynced(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET sync_status = 'synced' WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark expense synced: %w", err)
	}
	slog.InfoContext(ctx, "Expense marked as synced", "id", id)
	return nil
}

func (r *Repository) MarkSyncError(ctx context.Context, id int64) error {
	if _, err := r.db.ExecContext(ctx,
		`UPDATE expenses SET sync_status = 'error' WHERE id = ?`, id); err != nil {
		return fmt.Errorf("mark expense sync error: %w", err)
	}
	slog.WarnContext(ctx, "Expense marked with sync error", "id", id)
	return nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func (r *Repository) scanExpense(row rowScanner) (core.Expense, error) {
	var (
		id, vehicleID int64
		category      string
		spentAt       string
		e             core.Expense
	)
	err := row.Scan(&id, &vehicleID, &category, &e.Gross.Cents, &e.VATRate, &spentAt, &e.Note)
	if errors.Is(err, sql.ErrNoRows) {
		return core.Expense{}, store.ErrNotFound
	}
	if err != nil {
		return core.Expense{}, fmt.Errorf("scan expense: %w", err)
	}
	e.ID = strconv.FormatInt(id, 10)
	e.VehicleID = strconv.FormatInt(vehicleID, 10)
	e.Category = core.Category(category)
	e.Date, err = time.Parse(time.RFC3339, spentAt)
	if err != nil {
		return core.Expense{}, fmt.Errorf("parse expense date %q: %w", spentAt, err)
	}
	return e, nil
}

func parseID(id string) (int64, error) {
	n, err := strconv.ParseInt(id, 10, 64)
	if err != nil {
		return 0, store.ErrNotFound
	}
	return n, nil
}

var _ store.Store = (*Repository)(nil)
