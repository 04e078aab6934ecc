package service

import (
	"context"
	"fmt"

	"cardroom/events"
	"cardroom/models"
)

// RecordWalletChange records a ledger entry and emits the matching event.
// This is the single entry point for all balance changes in the system; the
// wallet argument carries the pre-change balance.
func RecordWalletChange(ctx context.Context, uow UnitOfWork, wallet *models.Wallet, change int64, entryType models.EntryType, sagaID *string, metadata map[string]any) error {
	entry := &models.LedgerEntry{
		WalletID:      wallet.ID,
		BalanceBefore: wallet.Balance,
		BalanceAfter:  wallet.Balance + change,
		ChangeAmount:  change,
		EntryType:     entryType,
		SagaID:        sagaID,
		Metadata:      metadata,
	}

	if err := uow.LedgerRepository().Record(ctx, entry); err != nil {
		return fmt.Errorf("failed to record ledger entry: %w", err)
	}

	// Emitted after the surrounding transaction commits
	uow.EventBus().Publish(events.WalletChangedEvent{
		UserID:       wallet.UserID,
		CommunityID:  wallet.CommunityID,
		OldBalance:   entry.BalanceBefore,
		NewBalance:   entry.BalanceAfter,
		EntryType:    entryType,
		ChangeAmount: change,
	})

	return nil
}
