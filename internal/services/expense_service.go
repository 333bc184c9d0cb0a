package services

import (
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"aracgider/internal/amqp"
	"aracgider/internal/core"
	"aracgider/internal/storage"
)

// ExpenseService orchestrates expense writes across SQLite and AMQP.
// Storage is authoritative, the AMQP publish only nudges the export worker
// and must never fail the request.
type ExpenseService struct {
	storage    *storage.Repository
	amqpClient *amqp.Client
}

func NewExpenseService(storage *storage.Repository, amqpClient *amqp.Client) *ExpenseService {
	return &ExpenseService{
		storage:    storage,
		amqpClient: amqpClient,
	}
}

// RecordExpense saves an expense locally and publishes a sync message
func (s *ExpenseService) RecordExpense(ctx context.Context, e core.Expense) (string, error) {
	ref, err := s.storage.AddExpense(ctx, e)
	if err != nil {
		return "", fmt.Errorf("save expense: %w", err)
	}

	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to parse expense ID", "ref", ref, "error", err)
		return ref, nil
	}

	if err := s.publishSyncMessage(ctx, id, 1); err != nil {
		slog.ErrorContext(ctx, "Failed to publish sync message",
			"id", id, "error", err)
	}

	return ref, nil
}

// RemoveExpense soft deletes an expense locally and notifies the worker so it
// can settle the queue entry for the removed row.
func (s *ExpenseService) RemoveExpense(ctx context.Context, ref string) error {
	if err := s.storage.DeleteExpense(ctx, ref); err != nil {
		return fmt.Errorf("delete expense: %w", err)
	}

	id, err := strconv.ParseInt(ref, 10, 64)
	if err != nil {
		slog.ErrorContext(ctx, "Failed to parse expense ID", "ref", ref, "error", err)
		return nil
	}

	if err := s.publishSyncMessage(ctx, id, 2); err != nil {
		slog.ErrorContext(ctx, "Failed to publish delete notification",
			"id", id, "error", err)
	}

	return nil
}

func (s *ExpenseService) publishSyncMessage(ctx context.Context, id, version int64) error {
	if s.amqpClient == nil {
		slog.WarnContext(ctx, "AMQP client not available, skipping sync message")
		return nil
	}

	return s.amqpClient.PublishExpenseSync(ctx, id, version)
}

// Close closes both storage and AMQP connections
func (s *ExpenseService) Close() error {
	var errs []error

	if s.storage != nil {
		if err := s.storage.Close(); err != nil {
			errs = append(errs, fmt.Errorf("storage: %w", err))
		}
	}

	if s.amqpClient != nil {
		if err := s.amqpClient.Close(); err != nil {
			errs = append(errs, fmt.Errorf("amqp: %w", err))
		}
	}

	if len(errs) > 0 {
		return fmt.Errorf("close expense service: %v", errs)
	}

	return nil
}
