package models

import (
	"time"
)

// Seat is one numbered occupancy slot at a table. UserID is nil while the
// seat is vacant. At most one occupant per seat and at most one seat per
// user per table, both enforced at the database level.
type Seat struct {
	ID         int64      `db:"id" json:"id"`
	TableID    int64      `db:"table_id" json:"table_id"`
	SeatNumber int        `db:"seat_number" json:"seat_number"`
	UserID     *int64     `db:"user_id" json:"user_id"`
	OccupiedAt *time.Time `db:"occupied_at" json:"occupied_at,omitempty"`
}

// Occupied reports whether the seat currently has an occupant.
func (s *Seat) Occupied() bool {
	return s.UserID != nil
}

// BuyInResult is returned to the caller after a successful buy-in saga.
type BuyInResult struct {
	TableID    int64 `json:"table_id"`
	SeatNumber int   `json:"seat_number"`
	UserID     int64 `json:"user_id"`
	BuyIn      int64 `json:"buy_in"`
	NewBalance int64 `json:"new_balance"`
}
