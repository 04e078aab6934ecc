package service

import (
	"context"
	"fmt"

	"cardroom/events"
	"cardroom/models"

	log "github.com/sirupsen/logrus"
)

type queueService struct {
	uowFactory UnitOfWorkFactory
}

// NewQueueService creates a new queue service
func NewQueueService(uowFactory UnitOfWorkFactory) QueueService {
	return &queueService{
		uowFactory: uowFactory,
	}
}

// JoinQueue appends a user to a table's wait queue. A table with
// MaxQueueSize 0 has queueing disabled and rejects every join as full.
func (s *queueService) JoinQueue(ctx context.Context, userID, tableID int64) (*models.QueueEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// The row lock serializes concurrent queue mutations per table, so the
	// capacity check and the tail-position assignment see a stable queue.
	table, err := uow.TableRepository().GetByIDForUpdate(ctx, tableID)
	if err != nil {
		return nil, fmt.Errorf("failed to get table: %w", err)
	}
	if table == nil {
		return nil, models.ErrTableNotFound
	}

	existing, err := uow.QueueRepository().GetEntry(ctx, tableID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check queue entry: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: position %d", models.ErrAlreadyQueued, existing.Position)
	}

	count, err := uow.QueueRepository().Count(ctx, tableID)
	if err != nil {
		return nil, fmt.Errorf("failed to count queue: %w", err)
	}
	if count >= table.MaxQueueSize {
		return nil, fmt.Errorf("%w: %d of %d", models.ErrQueueFull, count, table.MaxQueueSize)
	}

	seat, err := uow.SeatRepository().GetByUser(ctx, tableID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check seat: %w", err)
	}
	if seat != nil {
		return nil, fmt.Errorf("%w: seat %d", models.ErrAlreadySeated, seat.SeatNumber)
	}

	entry, err := uow.QueueRepository().Append(ctx, tableID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to append to queue: %w", err)
	}

	uow.EventBus().Publish(events.PlayerQueuedEvent{
		TableID:  tableID,
		UserID:   userID,
		Position: entry.Position,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"tableId":  tableID,
		"userId":   userID,
		"position": entry.Position,
	}).Info("User joined table wait queue")

	return entry, nil
}

// LeaveQueue removes a user from a table's wait queue. Entries behind the
// removed one shift forward so positions stay dense.
func (s *queueService) LeaveQueue(ctx context.Context, userID, tableID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// Locked so the shift-down cannot interleave with a concurrent append.
	table, err := uow.TableRepository().GetByIDForUpdate(ctx, tableID)
	if err != nil {
		return fmt.Errorf("failed to get table: %w", err)
	}
	if table == nil {
		return models.ErrTableNotFound
	}

	removed, err := uow.QueueRepository().Remove(ctx, tableID, userID)
	if err != nil {
		return fmt.Errorf("failed to remove queue entry: %w", err)
	}
	if !removed {
		return models.ErrNotQueued
	}

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"tableId": tableID,
		"userId":  userID,
	}).Info("User left table wait queue")

	return nil
}

// GetQueue returns the table's wait queue ordered by position.
func (s *queueService) GetQueue(ctx context.Context, tableID int64) ([]*models.QueueEntry, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	table, err := uow.TableRepository().GetByID(ctx, tableID)
	if err != nil {
		return nil, fmt.Errorf("failed to get table: %w", err)
	}
	if table == nil {
		return nil, models.ErrTableNotFound
	}

	return uow.QueueRepository().ListByTable(ctx, tableID)
}
