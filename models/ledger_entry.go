package models

import (
	"time"
)

// EntryType classifies a ledger entry.
type EntryType string

const (
	EntryTypeInitial     EntryType = "initial"
	EntryTypeBuyIn       EntryType = "buy_in"
	EntryTypeBuyInRefund EntryType = "buy_in_refund"
	EntryTypeCashOut     EntryType = "cash_out"
	EntryTypeAdjustment  EntryType = "adjustment"
)

// LedgerEntry records a single wallet balance change. Compensations write
// their own entries (buy_in_refund) so a rolled-back saga leaves an audit
// trail even though the net effect on the balance is zero.
type LedgerEntry struct {
	ID            int64          `db:"id"`
	WalletID      int64          `db:"wallet_id"`
	BalanceBefore int64          `db:"balance_before"`
	BalanceAfter  int64          `db:"balance_after"`
	ChangeAmount  int64          `db:"change_amount"`
	EntryType     EntryType      `db:"entry_type"`
	SagaID        *string        `db:"saga_id"` // uuid of the buy-in run, when applicable
	Metadata      map[string]any `db:"metadata"`
	CreatedAt     time.Time      `db:"created_at"`
}
