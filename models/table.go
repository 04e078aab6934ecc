package models

import (
	"time"
)

// Table is a poker table. Seats are pre-allocated 1..MaxSeats when the
// table is created and live exactly as long as the table does.
type Table struct {
	ID           int64     `db:"id" json:"id"`
	CommunityID  int64     `db:"community_id" json:"community_id"`
	Name         string    `db:"name" json:"name"`
	MaxSeats     int       `db:"max_seats" json:"max_seats"`
	MinBuyIn     int64     `db:"min_buy_in" json:"min_buy_in"`
	MaxQueueSize int       `db:"max_queue_size" json:"max_queue_size"` // 0 disables queueing
	Permanent    bool      `db:"is_permanent" json:"permanent"`        // permanent tables survive going empty
	CreatedBy    int64     `db:"created_by_user_id" json:"created_by"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
}

// TableParams carries the caller-supplied configuration for a new table.
type TableParams struct {
	CommunityID  int64
	Name         string
	MaxSeats     int
	MinBuyIn     int64
	MaxQueueSize int
	Permanent    bool
	CreatedBy    int64
}
