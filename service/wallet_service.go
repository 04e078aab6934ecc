package service

import (
	"context"
	"fmt"

	"cardroom/models"

	log "github.com/sirupsen/logrus"
)

type walletService struct {
	uowFactory      UnitOfWorkFactory
	startingBalance int64
}

// NewWalletService creates a new wallet service
func NewWalletService(uowFactory UnitOfWorkFactory, startingBalance int64) WalletService {
	return &walletService{
		uowFactory:      uowFactory,
		startingBalance: startingBalance,
	}
}

// CreateWallet creates a wallet with the configured starting balance and
// records the opening ledger entry. Returns the existing wallet when the
// user already has one in the community.
func (s *walletService) CreateWallet(ctx context.Context, userID, communityID int64) (*models.Wallet, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	existing, err := uow.WalletRepository().GetByUser(ctx, userID, communityID)
	if err != nil {
		return nil, fmt.Errorf("failed to check wallet: %w", err)
	}
	if existing != nil {
		return existing, nil
	}

	wallet, err := uow.WalletRepository().Create(ctx, userID, communityID, s.startingBalance)
	if err != nil {
		return nil, fmt.Errorf("failed to create wallet: %w", err)
	}

	// Record against a zero pre-change balance so the opening grant shows
	// in the ledger like any other change.
	opening := *wallet
	opening.Balance = 0
	if err := RecordWalletChange(ctx, uow, &opening, s.startingBalance, models.EntryTypeInitial, nil, nil); err != nil {
		return nil, err
	}

	if err := uow.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit transaction: %w", err)
	}

	log.WithFields(log.Fields{
		"userId":      userID,
		"communityId": communityID,
		"balance":     wallet.Balance,
	}).Info("Created wallet")

	return wallet, nil
}

// Credit adds chips to a user's wallet and records a ledger entry.
// Returns the new balance.
func (s *walletService) Credit(ctx context.Context, userID, communityID, amount int64, entryType models.EntryType, metadata map[string]any) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("credit amount must be positive, got %d", amount)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	wallet, err := uow.WalletRepository().GetByUser(ctx, userID, communityID)
	if err != nil {
		return 0, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return 0, models.ErrWalletNotFound
	}

	newBalance, err := uow.WalletRepository().Credit(ctx, wallet.ID, amount)
	if err != nil {
		return 0, fmt.Errorf("failed to credit wallet: %w", err)
	}

	credited := *wallet
	credited.Balance = newBalance - amount
	if err := RecordWalletChange(ctx, uow, &credited, amount, entryType, nil, metadata); err != nil {
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return newBalance, nil
}

// Debit removes chips from a user's wallet and records a ledger entry.
// Fails with ErrInsufficientFunds when the balance cannot cover the amount.
// Returns the new balance.
func (s *walletService) Debit(ctx context.Context, userID, communityID, amount int64, entryType models.EntryType, metadata map[string]any) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("debit amount must be positive, got %d", amount)
	}

	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	wallet, err := uow.WalletRepository().GetByUser(ctx, userID, communityID)
	if err != nil {
		return 0, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return 0, models.ErrWalletNotFound
	}

	newBalance, err := uow.WalletRepository().Debit(ctx, wallet.ID, amount)
	if err != nil {
		return 0, err
	}

	debited := *wallet
	debited.Balance = newBalance + amount
	if err := RecordWalletChange(ctx, uow, &debited, -amount, entryType, nil, metadata); err != nil {
		return 0, err
	}

	if err := uow.Commit(); err != nil {
		return 0, fmt.Errorf("failed to commit transaction: %w", err)
	}

	return newBalance, nil
}

// GetBalance returns the user's current balance in a community.
func (s *walletService) GetBalance(ctx context.Context, userID, communityID int64) (int64, error) {
	uow := s.uowFactory.Create()
	if err := uow.Begin(ctx); err != nil {
		return 0, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer uow.Rollback()

	wallet, err := uow.WalletRepository().GetByUser(ctx, userID, communityID)
	if err != nil {
		return 0, fmt.Errorf("failed to get wallet: %w", err)
	}
	if wallet == nil {
		return 0, models.ErrWalletNotFound
	}

	return wallet.Balance, nil
}
