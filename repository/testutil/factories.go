package testutil

import (
	"cardroom/models"
)

// CreateTestTableParams returns table parameters with sensible defaults
func CreateTestTableParams(communityID int64) models.TableParams {
	return models.TableParams{
		CommunityID:  communityID,
		Name:         "test table",
		MaxSeats:     6,
		MinBuyIn:     100,
		MaxQueueSize: 10,
		CreatedBy:    1,
	}
}

// CreateTestTable builds an unsaved table with default values
func CreateTestTable(communityID int64) *models.Table {
	return &models.Table{
		CommunityID:  communityID,
		Name:         "test table",
		MaxSeats:     6,
		MinBuyIn:     100,
		MaxQueueSize: 10,
		CreatedBy:    1,
	}
}

// CreateTestLedgerEntry builds an unsaved ledger entry for a wallet
func CreateTestLedgerEntry(walletID int64, entryType models.EntryType) *models.LedgerEntry {
	return &models.LedgerEntry{
		WalletID:      walletID,
		BalanceBefore: 1000,
		BalanceAfter:  800,
		ChangeAmount:  -200,
		EntryType:     entryType,
		Metadata: map[string]any{
			"test": true,
		},
	}
}
