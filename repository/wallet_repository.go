package repository

import (
	"context"
	"fmt"

	"cardroom/database"
	"cardroom/models"
	"github.com/jackc/pgx/v5"
)

// WalletRepository implements the service.WalletRepository interface
type WalletRepository struct {
	q queryable
}

// NewWalletRepository creates a new wallet repository
func NewWalletRepository(db *database.DB) *WalletRepository {
	return &WalletRepository{q: db.Pool}
}

// newWalletRepositoryWithTx creates a new wallet repository with a transaction
func newWalletRepositoryWithTx(tx queryable) *WalletRepository {
	return &WalletRepository{q: tx}
}

// GetByUser retrieves the wallet for a user within a community
func (r *WalletRepository) GetByUser(ctx context.Context, userID, communityID int64) (*models.Wallet, error) {
	query := `
		SELECT id, user_id, community_id, balance, created_at, updated_at
		FROM wallets
		WHERE user_id = $1 AND community_id = $2
	`

	var wallet models.Wallet
	err := r.q.QueryRow(ctx, query, userID, communityID).Scan(
		&wallet.ID,
		&wallet.UserID,
		&wallet.CommunityID,
		&wallet.Balance,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet for user %d in community %d: %w", userID, communityID, err)
	}

	return &wallet, nil
}

// GetByID retrieves a wallet by its primary key
func (r *WalletRepository) GetByID(ctx context.Context, walletID int64) (*models.Wallet, error) {
	query := `
		SELECT id, user_id, community_id, balance, created_at, updated_at
		FROM wallets
		WHERE id = $1
	`

	var wallet models.Wallet
	err := r.q.QueryRow(ctx, query, walletID).Scan(
		&wallet.ID,
		&wallet.UserID,
		&wallet.CommunityID,
		&wallet.Balance,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get wallet %d: %w", walletID, err)
	}

	return &wallet, nil
}

// Create creates a new wallet with the initial balance
func (r *WalletRepository) Create(ctx context.Context, userID, communityID, initialBalance int64) (*models.Wallet, error) {
	query := `
		INSERT INTO wallets (user_id, community_id, balance)
		VALUES ($1, $2, $3)
		RETURNING id, user_id, community_id, balance, created_at, updated_at
	`

	var wallet models.Wallet
	err := r.q.QueryRow(ctx, query, userID, communityID, initialBalance).Scan(
		&wallet.ID,
		&wallet.UserID,
		&wallet.CommunityID,
		&wallet.Balance,
		&wallet.CreatedAt,
		&wallet.UpdatedAt,
	)

	if err != nil {
		return nil, fmt.Errorf("failed to create wallet for user %d in community %d: %w", userID, communityID, err)
	}

	return &wallet, nil
}

// Debit deducts from a wallet atomically, failing if funds are insufficient.
// The balance check and the update are a single conditional statement, so
// two concurrent debits against the same wallet serialize on the row and
// the balance can never go negative. Returns the balance as of the update.
func (r *WalletRepository) Debit(ctx context.Context, walletID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("debit amount must be positive")
	}

	query := `
		UPDATE wallets
		SET balance = balance - $1, updated_at = NOW()
		WHERE id = $2 AND balance >= $1
		RETURNING balance
	`

	var balance int64
	err := r.q.QueryRow(ctx, query, amount, walletID).Scan(&balance)
	if err == pgx.ErrNoRows {
		wallet, err := r.GetByID(ctx, walletID)
		if err != nil {
			return 0, fmt.Errorf("failed to check wallet: %w", err)
		}
		if wallet == nil {
			return 0, models.ErrWalletNotFound
		}
		return 0, fmt.Errorf("%w: have %d, need %d", models.ErrInsufficientFunds, wallet.Balance, amount)
	}
	if err != nil {
		return 0, fmt.Errorf("failed to debit wallet %d: %w", walletID, err)
	}

	return balance, nil
}

// Credit adds to a wallet atomically. Returns the balance as of the update.
func (r *WalletRepository) Credit(ctx context.Context, walletID, amount int64) (int64, error) {
	if amount <= 0 {
		return 0, fmt.Errorf("credit amount must be positive")
	}

	query := `
		UPDATE wallets
		SET balance = balance + $1, updated_at = NOW()
		WHERE id = $2
		RETURNING balance
	`

	var balance int64
	err := r.q.QueryRow(ctx, query, amount, walletID).Scan(&balance)
	if err == pgx.ErrNoRows {
		return 0, models.ErrWalletNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to credit wallet %d: %w", walletID, err)
	}

	return balance, nil
}

// GetBalance returns the current balance of a wallet
func (r *WalletRepository) GetBalance(ctx context.Context, walletID int64) (int64, error) {
	var balance int64
	err := r.q.QueryRow(ctx, `SELECT balance FROM wallets WHERE id = $1`, walletID).Scan(&balance)
	if err == pgx.ErrNoRows {
		return 0, models.ErrWalletNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("failed to get balance of wallet %d: %w", walletID, err)
	}
	return balance, nil
}
