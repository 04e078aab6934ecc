package models

import (
	"time"
)

// QueueEntry is one user's place in a table's wait queue. Positions are
// 1-based and dense: for a table with n queued users the positions are
// exactly {1..n}. Removal shifts every higher position down by one.
type QueueEntry struct {
	ID       int64     `db:"id" json:"id"`
	TableID  int64     `db:"table_id" json:"table_id"`
	UserID   int64     `db:"user_id" json:"user_id"`
	Position int       `db:"position" json:"position"`
	JoinedAt time.Time `db:"joined_at" json:"joined_at"`
}
