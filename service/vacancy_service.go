package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"cardroom/events"
	"cardroom/models"

	log "github.com/sirupsen/logrus"
)

type vacancyService struct {
	uowFactory    UnitOfWorkFactory
	engine        GameEngine
	engineTimeout time.Duration
	buyIn         BuyInService
	tables        TableService
}

// NewVacancyService creates a new vacancy service
func NewVacancyService(uowFactory UnitOfWorkFactory, engine GameEngine, engineTimeout time.Duration, buyIn BuyInService, tables TableService) VacancyService {
	return &vacancyService{
		uowFactory:    uowFactory,
		engine:        engine,
		engineTimeout: engineTimeout,
		buyIn:         buyIn,
		tables:        tables,
	}
}

// HandlePlayerLeft frees the player's seat and credits their remaining stack
// back to the wallet in one transaction, then tries to promote the head of
// the wait queue into the freed seat.
//
// The seat check runs before the credit, so a redelivered player-left event
// finds no seat and returns ErrNotSeated without touching the wallet.
func (s *vacancyService) HandlePlayerLeft(ctx context.Context, tableID, userID, remainingStack int64) error {
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

	seatNumber, wasSeated, err := uow.SeatRepository().ReleaseByUser(ctx, tableID, userID)
	if err != nil {
		return fmt.Errorf("failed to release seat: %w", err)
	}
	if !wasSeated {
		return models.ErrNotSeated
	}

	if remainingStack > 0 {
		wallet, err := uow.WalletRepository().GetByUser(ctx, userID, table.CommunityID)
		if err != nil {
			return fmt.Errorf("failed to get wallet: %w", err)
		}
		if wallet == nil {
			return models.ErrWalletNotFound
		}

		newBalance, err := uow.WalletRepository().Credit(ctx, wallet.ID, remainingStack)
		if err != nil {
			return fmt.Errorf("failed to credit remaining stack: %w", err)
		}

		credited := *wallet
		credited.Balance = newBalance - remainingStack
		if err := RecordWalletChange(ctx, uow, &credited, remainingStack, models.EntryTypeCashOut, nil, map[string]any{
			"table_id":    tableID,
			"seat_number": seatNumber,
		}); err != nil {
			return err
		}
	}

	uow.EventBus().Publish(events.SeatFreedEvent{
		TableID:    tableID,
		SeatNumber: seatNumber,
		UserID:     userID,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"tableId":        tableID,
		"userId":         userID,
		"seatNumber":     seatNumber,
		"remainingStack": remainingStack,
	}).Info("Player left table, seat released and stack cashed out")

	promoted, err := s.promoteQueueHead(ctx, table, seatNumber)
	if err != nil {
		// The departure itself succeeded; the freed seat just stays open.
		log.WithFields(log.Fields{
			"tableId":    tableID,
			"seatNumber": seatNumber,
			"error":      err,
		}).Warn("Queue promotion after vacancy failed")
	}

	if !promoted && !table.Permanent {
		if _, err := s.tables.CheckCleanup(ctx, tableID); err != nil {
			log.WithFields(log.Fields{
				"tableId": tableID,
				"error":   err,
			}).Warn("Table cleanup check failed")
		}
	}

	return nil
}

// LeaveTable handles a user-initiated departure: the player is removed from
// the game engine first, which returns their remaining stack synchronously,
// and the usual vacancy flow runs with that amount.
func (s *vacancyService) LeaveTable(ctx context.Context, tableID, userID int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	seat, err := uow.SeatRepository().GetByUser(ctx, tableID, userID)
	uow.Rollback()
	if err != nil {
		return fmt.Errorf("failed to check seat: %w", err)
	}
	if seat == nil {
		return models.ErrNotSeated
	}

	engineCtx, cancel := context.WithTimeout(ctx, s.engineTimeout)
	defer cancel()

	remainingStack, err := s.engine.RemovePlayer(engineCtx, tableID, userID)
	if err != nil {
		// Nothing local changed yet; the caller can simply retry.
		return fmt.Errorf("%w: %v", models.ErrEngineUnavailable, err)
	}

	return s.HandlePlayerLeft(ctx, tableID, userID, remainingStack)
}

// promoteQueueHead seats the head of the wait queue into the freed seat at
// the table minimum buy-in. An underfunded head is skipped and left in
// place; they keep their position until funds arrive and the next vacancy
// picks them up. Reports whether a player was seated.
func (s *vacancyService) promoteQueueHead(ctx context.Context, table *models.Table, seatNumber int) (bool, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return false, fmt.Errorf("failed to begin transaction: %w", err)
	}

	head, err := uow.QueueRepository().PeekHead(ctx, table.ID)
	if err != nil {
		uow.Rollback()
		return false, fmt.Errorf("failed to peek queue: %w", err)
	}
	if head == nil {
		uow.Rollback()
		return false, nil
	}

	wallet, err := uow.WalletRepository().GetByUser(ctx, head.UserID, table.CommunityID)
	uow.Rollback()
	if err != nil {
		return false, fmt.Errorf("failed to get wallet: %w", err)
	}

	if wallet == nil || wallet.Balance < table.MinBuyIn {
		log.WithFields(log.Fields{
			"tableId":  table.ID,
			"userId":   head.UserID,
			"minBuyIn": table.MinBuyIn,
		}).Info("Queue head cannot afford the minimum buy-in, leaving seat open")
		return false, nil
	}

	result, err := s.buyIn.JoinTable(ctx, head.UserID, table.ID, seatNumber, table.MinBuyIn)
	if err != nil {
		// A funds race between the check above and the saga is treated the
		// same as the pre-check failing: skip and keep the entry queued.
		if errors.Is(err, models.ErrInsufficientFunds) {
			return false, nil
		}
		return false, err
	}

	if err := s.dequeuePromoted(ctx, table.ID, head.UserID, result); err != nil {
		// The player is seated; only the stale queue entry lingers. The
		// already-seated check keeps it from double-seating them later.
		log.WithFields(log.Fields{
			"tableId": table.ID,
			"userId":  head.UserID,
			"error":   err,
		}).Error("Failed to remove promoted player from queue")
	}

	return true, nil
}

func (s *vacancyService) dequeuePromoted(ctx context.Context, tableID, userID int64, result *models.BuyInResult) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	// Same lock every queue mutation takes, so the shift-down cannot
	// interleave with a concurrent append.
	if _, err := uow.TableRepository().GetByIDForUpdate(ctx, tableID); err != nil {
		return fmt.Errorf("failed to lock table: %w", err)
	}

	if _, err := uow.QueueRepository().Remove(ctx, tableID, userID); err != nil {
		return fmt.Errorf("failed to remove queue entry: %w", err)
	}

	uow.EventBus().Publish(events.PlayerAutoSeatedEvent{
		TableID:    tableID,
		SeatNumber: result.SeatNumber,
		UserID:     userID,
		BuyIn:      result.BuyIn,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"tableId":    tableID,
		"userId":     userID,
		"seatNumber": result.SeatNumber,
		"buyIn":      result.BuyIn,
	}).Info("Promoted queue head into freed seat")

	return nil
}
