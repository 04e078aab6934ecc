package repository

import (
	"context"
	"fmt"

	"cardroom/database"
	"cardroom/models"
)

// LedgerRepository implements the service.LedgerRepository interface
type LedgerRepository struct {
	q queryable
}

// NewLedgerRepository creates a new ledger repository
func NewLedgerRepository(db *database.DB) *LedgerRepository {
	return &LedgerRepository{q: db.Pool}
}

// newLedgerRepositoryWithTx creates a new ledger repository with a transaction
func newLedgerRepositoryWithTx(tx queryable) *LedgerRepository {
	return &LedgerRepository{q: tx}
}

// Record creates a new ledger entry
func (r *LedgerRepository) Record(ctx context.Context, entry *models.LedgerEntry) error {
	query := `
		INSERT INTO wallet_ledger (wallet_id, balance_before, balance_after, change_amount, entry_type, saga_id, metadata)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		entry.WalletID,
		entry.BalanceBefore,
		entry.BalanceAfter,
		entry.ChangeAmount,
		entry.EntryType,
		entry.SagaID,
		entry.Metadata,
	).Scan(&entry.ID, &entry.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to record ledger entry for wallet %d: %w", entry.WalletID, err)
	}

	return nil
}

// GetByWallet returns the most recent ledger entries for a wallet
func (r *LedgerRepository) GetByWallet(ctx context.Context, walletID int64, limit int) ([]*models.LedgerEntry, error) {
	query := `
		SELECT id, wallet_id, balance_before, balance_after, change_amount, entry_type, saga_id, metadata, created_at
		FROM wallet_ledger
		WHERE wallet_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`

	rows, err := r.q.Query(ctx, query, walletID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entries for wallet %d: %w", walletID, err)
	}
	defer rows.Close()

	var entries []*models.LedgerEntry
	for rows.Next() {
		var entry models.LedgerEntry
		err := rows.Scan(
			&entry.ID,
			&entry.WalletID,
			&entry.BalanceBefore,
			&entry.BalanceAfter,
			&entry.ChangeAmount,
			&entry.EntryType,
			&entry.SagaID,
			&entry.Metadata,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}

	return entries, nil
}

// GetBySaga returns all ledger entries written by one buy-in saga run,
// forward debit and any compensating refund alike, in write order.
func (r *LedgerRepository) GetBySaga(ctx context.Context, sagaID string) ([]*models.LedgerEntry, error) {
	query := `
		SELECT id, wallet_id, balance_before, balance_after, change_amount, entry_type, saga_id, metadata, created_at
		FROM wallet_ledger
		WHERE saga_id = $1
		ORDER BY created_at
	`

	rows, err := r.q.Query(ctx, query, sagaID)
	if err != nil {
		return nil, fmt.Errorf("failed to get ledger entries for saga %s: %w", sagaID, err)
	}
	defer rows.Close()

	var entries []*models.LedgerEntry
	for rows.Next() {
		var entry models.LedgerEntry
		err := rows.Scan(
			&entry.ID,
			&entry.WalletID,
			&entry.BalanceBefore,
			&entry.BalanceAfter,
			&entry.ChangeAmount,
			&entry.EntryType,
			&entry.SagaID,
			&entry.Metadata,
			&entry.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan ledger entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate ledger entries: %w", err)
	}

	return entries, nil
}
