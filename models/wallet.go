package models

import (
	"time"
)

// Wallet is a user's chip balance within a single community. Balances are
// whole chips and never go negative; all mutations happen through
// WalletRepository debit/credit.
type Wallet struct {
	ID          int64     `db:"id" json:"id"`
	UserID      int64     `db:"user_id" json:"user_id"`
	CommunityID int64     `db:"community_id" json:"community_id"`
	Balance     int64     `db:"balance" json:"balance"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
	UpdatedAt   time.Time `db:"updated_at" json:"updated_at"`
}
