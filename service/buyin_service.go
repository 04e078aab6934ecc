package service

import (
	"context"
	"fmt"
	"time"

	"cardroom/events"
	"cardroom/models"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

type buyInService struct {
	uowFactory    UnitOfWorkFactory
	engine        GameEngine
	engineTimeout time.Duration
}

// NewBuyInService creates a new buy-in service
func NewBuyInService(uowFactory UnitOfWorkFactory, engine GameEngine, engineTimeout time.Duration) BuyInService {
	return &buyInService{
		uowFactory:    uowFactory,
		engine:        engine,
		engineTimeout: engineTimeout,
	}
}

// JoinTable runs the buy-in saga.
//
// The seat reservation and the wallet debit commit in a single database
// transaction, so a rejected debit (or a crash) rolls both back together.
// The engine provisioning call happens after that commit; if it fails, the
// already-committed local effects are reversed by an explicit compensation
// in strict reverse order: credit the wallet back, then release the seat.
func (s *buyInService) JoinTable(ctx context.Context, userID, tableID int64, seatNumber int, buyIn int64) (*models.BuyInResult, error) {
	sagaID := uuid.NewString()

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback() // No-op if already committed

	table, err := uow.TableRepository().GetByID(ctx, tableID)
	if err != nil {
		return nil, fmt.Errorf("failed to get table: %w", err)
	}
	if table == nil {
		return nil, models.ErrTableNotFound
	}

	if seatNumber < 1 || seatNumber > table.MaxSeats {
		return nil, models.ErrSeatOutOfRange
	}
	if buyIn < table.MinBuyIn {
		return nil, fmt.Errorf("%w: minimum is %d, got %d", models.ErrBuyInTooSmall, table.MinBuyIn, buyIn)
	}

	// A retried request is blocked here by its own earlier reservation.
	existing, err := uow.SeatRepository().GetByUser(ctx, tableID, userID)
	if err != nil {
		return nil, fmt.Errorf("failed to check existing seat: %w", err)
	}
	if existing != nil {
		return nil, fmt.Errorf("%w: seat %d", models.ErrAlreadySeated, existing.SeatNumber)
	}

	wallet, err := uow.WalletRepository().GetByUser(ctx, userID, table.CommunityID)
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return nil, models.ErrWalletNotFound
	}

	// Forward step: reserve the seat.
	if err := uow.SeatRepository().Reserve(ctx, tableID, seatNumber, userID); err != nil {
		return nil, err
	}

	// Forward step: debit the wallet. A failure here rolls the whole
	// transaction back, which also undoes the seat reservation.
	newBalance, err := uow.WalletRepository().Debit(ctx, wallet.ID, buyIn)
	if err != nil {
		return nil, err
	}

	// Ledger the balance as of the debit itself; the earlier read may be
	// stale if a concurrent credit committed in between.
	debited := *wallet
	debited.Balance = newBalance + buyIn
	if err := RecordWalletChange(ctx, uow, &debited, -buyIn, models.EntryTypeBuyIn, &sagaID, map[string]any{
		"table_id":    tableID,
		"seat_number": seatNumber,
	}); err != nil {
		return nil, err
	}

	uow.EventBus().Publish(events.SeatTakenEvent{
		TableID:    tableID,
		SeatNumber: seatNumber,
		UserID:     userID,
		BuyIn:      buyIn,
	})

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"sagaId":     sagaID,
		"userId":     userID,
		"tableId":    tableID,
		"seatNumber": seatNumber,
		"buyIn":      buyIn,
		"newBalance": newBalance,
	}).Info("Seat reserved and wallet debited, provisioning player in engine")

	// Forward step: provision the player remotely, bounded by a hard
	// timeout. The call is treated as non-idempotent: one attempt per run.
	engineCtx, cancel := context.WithTimeout(ctx, s.engineTimeout)
	defer cancel()

	if engineErr := s.engine.ProvisionPlayer(engineCtx, ProvisionRequest{
		TableID:    tableID,
		SeatNumber: seatNumber,
		UserID:     userID,
		Stack:      buyIn,
	}); engineErr != nil {
		log.WithFields(log.Fields{
			"sagaId":     sagaID,
			"userId":     userID,
			"tableId":    tableID,
			"seatNumber": seatNumber,
			"error":      engineErr,
		}).Error("Engine provisioning failed, compensating buy-in")

		if compErr := s.compensate(ctx, sagaID, wallet.ID, userID, tableID, seatNumber, buyIn); compErr != nil {
			// The wallet or seat may be out of step with reality here;
			// never report this as a plain engine failure.
			log.WithFields(log.Fields{
				"sagaId": sagaID,
				"error":  compErr,
			}).Error("Buy-in compensation failed, manual reconciliation required")
			return nil, fmt.Errorf("buy-in compensation failed after engine error (%v): %w", engineErr, compErr)
		}

		return nil, fmt.Errorf("%w: %v", models.ErrEngineUnavailable, engineErr)
	}

	return &models.BuyInResult{
		TableID:    tableID,
		SeatNumber: seatNumber,
		UserID:     userID,
		BuyIn:      buyIn,
		NewBalance: newBalance,
	}, nil
}

// compensate reverses the committed local effects of a buy-in: credit the
// wallet back the full amount, then release the seat. Both run in one
// transaction so the rollback is itself all-or-nothing.
func (s *buyInService) compensate(ctx context.Context, sagaID string, walletID, userID, tableID int64, seatNumber int, buyIn int64) error {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return fmt.Errorf("failed to begin compensation transaction: %w", err)
	}
	defer uow.Rollback()

	wallet, err := uow.WalletRepository().GetByID(ctx, walletID)
	if err != nil {
		return fmt.Errorf("failed to get wallet for compensation: %w", err)
	}
	if wallet == nil {
		return models.ErrWalletNotFound
	}

	newBalance, err := uow.WalletRepository().Credit(ctx, walletID, buyIn)
	if err != nil {
		return fmt.Errorf("failed to credit wallet back: %w", err)
	}

	credited := *wallet
	credited.Balance = newBalance - buyIn
	if err := RecordWalletChange(ctx, uow, &credited, buyIn, models.EntryTypeBuyInRefund, &sagaID, map[string]any{
		"table_id":    tableID,
		"seat_number": seatNumber,
	}); err != nil {
		return err
	}

	if _, err := uow.SeatRepository().Release(ctx, tableID, seatNumber); err != nil {
		return fmt.Errorf("failed to release seat: %w", err)
	}

	uow.EventBus().Publish(events.SeatFreedEvent{
		TableID:    tableID,
		SeatNumber: seatNumber,
		UserID:     userID,
	})

	if err := uow.Commit(); err != nil {
		return fmt.Errorf("failed to commit compensation: %w", err)
	}

	log.WithFields(log.Fields{
		"sagaId":     sagaID,
		"userId":     userID,
		"tableId":    tableID,
		"seatNumber": seatNumber,
		"refund":     buyIn,
	}).Info("Buy-in compensated: wallet credited back and seat released")

	return nil
}
