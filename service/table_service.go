package service

import (
	"context"
	"fmt"

	"cardroom/events"
	"cardroom/models"

	log "github.com/sirupsen/logrus"
)

type tableService struct {
	uowFactory          UnitOfWorkFactory
	defaultMaxQueueSize int
}

// NewTableService creates a new table service
func NewTableService(uowFactory UnitOfWorkFactory, defaultMaxQueueSize int) TableService {
	return &tableService{
		uowFactory:          uowFactory,
		defaultMaxQueueSize: defaultMaxQueueSize,
	}
}

// CreateTable creates a table and pre-allocates its seat rows 1..MaxSeats
// in the same transaction.
func (s *tableService) CreateTable(ctx context.Context, params models.TableParams) (*models.Table, error) {
	if params.MaxSeats < 2 {
		return nil, fmt.Errorf("table needs at least 2 seats, got %d", params.MaxSeats)
	}
	if params.MinBuyIn <= 0 {
		return nil, fmt.Errorf("minimum buy-in must be positive, got %d", params.MinBuyIn)
	}
	if params.MaxQueueSize < 0 {
		params.MaxQueueSize = s.defaultMaxQueueSize
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	table := &models.Table{
		CommunityID:  params.CommunityID,
		Name:         params.Name,
		MaxSeats:     params.MaxSeats,
		MinBuyIn:     params.MinBuyIn,
		MaxQueueSize: params.MaxQueueSize,
		Permanent:    params.Permanent,
		CreatedBy:    params.CreatedBy,
	}

	if err := uow.TableRepository().Create(ctx, table); err != nil {
		return nil, fmt.Errorf("failed to create table: %w", err)
	}

	if err := uow.SeatRepository().CreateForTable(ctx, table.ID, table.MaxSeats); err != nil {
		return nil, fmt.Errorf("failed to create seats: %w", err)
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"tableId":     table.ID,
		"communityId": table.CommunityID,
		"name":        table.Name,
		"maxSeats":    table.MaxSeats,
		"minBuyIn":    table.MinBuyIn,
	}).Info("Created table")

	return table, nil
}

// DeleteTable removes a table. Rejected while any seat is occupied; queued
// players are dropped with the table.
func (s *tableService) DeleteTable(ctx context.Context, tableID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	table, err := uow.TableRepository().GetByID(ctx, tableID)
	if err != nil {
		return fmt.Errorf("failed to get table: %w", err)
	}
	if table == nil {
		return models.ErrTableNotFound
	}

	occupied, err := uow.SeatRepository().CountOccupied(ctx, tableID)
	if err != nil {
		return fmt.Errorf("failed to count occupied seats: %w", err)
	}
	if occupied > 0 {
		return fmt.Errorf("%w: %d seated", models.ErrTableNotEmpty, occupied)
	}

	if err := uow.TableRepository().Delete(ctx, tableID); err != nil {
		return fmt.Errorf("failed to delete table: %w", err)
	}

	uow.EventBus().Publish(events.TableDeletedEvent{
		TableID:     table.ID,
		CommunityID: table.CommunityID,
		Name:        table.Name,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"tableId": tableID,
		"name":    table.Name,
	}).Info("Deleted table")

	return nil
}

// CheckCleanup deletes a non-permanent table once every seat is vacant and
// nobody is waiting. Permanent tables are never cleaned up.
func (s *tableService) CheckCleanup(ctx context.Context, tableID int64) (bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	table, err := uow.TableRepository().GetByID(ctx, tableID)
	if err != nil {
		return false, fmt.Errorf("failed to get table: %w", err)
	}
	if table == nil {
		// Already gone, nothing to do
		return false, nil
	}
	if table.Permanent {
		return false, nil
	}

	occupied, err := uow.SeatRepository().CountOccupied(ctx, tableID)
	if err != nil {
		return false, fmt.Errorf("failed to count occupied seats: %w", err)
	}
	if occupied > 0 {
		return false, nil
	}

	queued, err := uow.QueueRepository().Count(ctx, tableID)
	if err != nil {
		return false, fmt.Errorf("failed to count queue: %w", err)
	}
	if queued > 0 {
		return false, nil
	}

	if err := uow.TableRepository().Delete(ctx, tableID); err != nil {
		return false, fmt.Errorf("failed to delete table: %w", err)
	}

	uow.EventBus().Publish(events.TableDeletedEvent{
		TableID:     table.ID,
		CommunityID: table.CommunityID,
		Name:        table.Name,
	})

	if err := uow.Commit(); err != nil {
		return false, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"tableId": tableID,
		"name":    table.Name,
	}).Info("Cleaned up empty table")

	return true, nil
}

// GetTable retrieves a table by ID.
func (s *tableService) GetTable(ctx context.Context, tableID int64) (*models.Table, error) {
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
	return table, nil
}

// GetSeats returns a table's seats ordered by seat number.
func (s *tableService) GetSeats(ctx context.Context, tableID int64) ([]*models.Seat, error) {
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

	return uow.SeatRepository().ListByTable(ctx, tableID)
}
