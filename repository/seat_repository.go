package repository

import (
	"context"
	"errors"
	"fmt"

	"cardroom/database"
	"cardroom/models"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// SeatRepository implements the service.SeatRepository interface
type SeatRepository struct {
	q queryable
}

// NewSeatRepository creates a new seat repository
func NewSeatRepository(db *database.DB) *SeatRepository {
	return &SeatRepository{q: db.Pool}
}

// newSeatRepositoryWithTx creates a new seat repository with a transaction
func newSeatRepositoryWithTx(tx queryable) *SeatRepository {
	return &SeatRepository{q: tx}
}

// CreateForTable pre-allocates seats 1..maxSeats for a freshly created table
func (r *SeatRepository) CreateForTable(ctx context.Context, tableID int64, maxSeats int) error {
	query := `
		INSERT INTO table_seats (table_id, seat_number)
		SELECT $1, generate_series(1, $2)
	`

	_, err := r.q.Exec(ctx, query, tableID, maxSeats)
	if err != nil {
		return fmt.Errorf("failed to create seats for table %d: %w", tableID, err)
	}

	return nil
}

// Get retrieves a single seat by table and seat number
func (r *SeatRepository) Get(ctx context.Context, tableID int64, seatNumber int) (*models.Seat, error) {
	query := `
		SELECT id, table_id, seat_number, user_id, occupied_at
		FROM table_seats
		WHERE table_id = $1 AND seat_number = $2
	`

	var seat models.Seat
	err := r.q.QueryRow(ctx, query, tableID, seatNumber).Scan(
		&seat.ID,
		&seat.TableID,
		&seat.SeatNumber,
		&seat.UserID,
		&seat.OccupiedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get seat %d at table %d: %w", seatNumber, tableID, err)
	}

	return &seat, nil
}

// GetByUser retrieves the seat a user occupies at a table, or nil
func (r *SeatRepository) GetByUser(ctx context.Context, tableID, userID int64) (*models.Seat, error) {
	query := `
		SELECT id, table_id, seat_number, user_id, occupied_at
		FROM table_seats
		WHERE table_id = $1 AND user_id = $2
	`

	var seat models.Seat
	err := r.q.QueryRow(ctx, query, tableID, userID).Scan(
		&seat.ID,
		&seat.TableID,
		&seat.SeatNumber,
		&seat.UserID,
		&seat.OccupiedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get seat of user %d at table %d: %w", userID, tableID, err)
	}

	return &seat, nil
}

// Reserve occupies a vacant seat for a user. The vacancy check and the
// write are one conditional UPDATE, so of two concurrent reservations for
// the same seat exactly one succeeds and the other observes ErrSeatOccupied.
func (r *SeatRepository) Reserve(ctx context.Context, tableID int64, seatNumber int, userID int64) error {
	query := `
		UPDATE table_seats
		SET user_id = $3, occupied_at = NOW()
		WHERE table_id = $1 AND seat_number = $2 AND user_id IS NULL
	`

	result, err := r.q.Exec(ctx, query, tableID, seatNumber, userID)
	if err != nil {
		// The one-seat-per-user index fires when the user already holds
		// another seat at this table and both reservations raced past the
		// service-level pre-check.
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" && pgErr.ConstraintName == "idx_table_seats_one_seat_per_user" {
			return models.ErrAlreadySeated
		}
		return fmt.Errorf("failed to reserve seat %d at table %d: %w", seatNumber, tableID, err)
	}

	if result.RowsAffected() == 0 {
		seat, err := r.Get(ctx, tableID, seatNumber)
		if err != nil {
			return fmt.Errorf("failed to check seat: %w", err)
		}
		if seat == nil {
			return models.ErrSeatOutOfRange
		}
		return models.ErrSeatOccupied
	}

	return nil
}

// Release vacates a seat regardless of its current state and returns the
// previous occupant, or nil if the seat was already vacant. Idempotent.
func (r *SeatRepository) Release(ctx context.Context, tableID int64, seatNumber int) (*int64, error) {
	seat, err := r.Get(ctx, tableID, seatNumber)
	if err != nil {
		return nil, err
	}
	if seat == nil {
		return nil, models.ErrSeatOutOfRange
	}

	query := `
		UPDATE table_seats
		SET user_id = NULL, occupied_at = NULL
		WHERE table_id = $1 AND seat_number = $2
	`

	if _, err := r.q.Exec(ctx, query, tableID, seatNumber); err != nil {
		return nil, fmt.Errorf("failed to release seat %d at table %d: %w", seatNumber, tableID, err)
	}

	return seat.UserID, nil
}

// ReleaseByUser vacates whichever seat the user occupies at the table and
// returns the freed seat number. Reports false if the user was not seated.
func (r *SeatRepository) ReleaseByUser(ctx context.Context, tableID, userID int64) (int, bool, error) {
	query := `
		UPDATE table_seats
		SET user_id = NULL, occupied_at = NULL
		WHERE table_id = $1 AND user_id = $2
		RETURNING seat_number
	`

	var seatNumber int
	err := r.q.QueryRow(ctx, query, tableID, userID).Scan(&seatNumber)
	if err == pgx.ErrNoRows {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, fmt.Errorf("failed to release seat of user %d at table %d: %w", userID, tableID, err)
	}

	return seatNumber, true, nil
}

// ListByTable returns all seats of a table ordered by seat number
func (r *SeatRepository) ListByTable(ctx context.Context, tableID int64) ([]*models.Seat, error) {
	query := `
		SELECT id, table_id, seat_number, user_id, occupied_at
		FROM table_seats
		WHERE table_id = $1
		ORDER BY seat_number
	`

	rows, err := r.q.Query(ctx, query, tableID)
	if err != nil {
		return nil, fmt.Errorf("failed to list seats for table %d: %w", tableID, err)
	}
	defer rows.Close()

	var seats []*models.Seat
	for rows.Next() {
		var seat models.Seat
		err := rows.Scan(
			&seat.ID,
			&seat.TableID,
			&seat.SeatNumber,
			&seat.UserID,
			&seat.OccupiedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan seat: %w", err)
		}
		seats = append(seats, &seat)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate seats: %w", err)
	}

	return seats, nil
}

// CountOccupied returns the number of occupied seats at a table
func (r *SeatRepository) CountOccupied(ctx context.Context, tableID int64) (int, error) {
	var count int
	err := r.q.QueryRow(ctx,
		`SELECT COUNT(*) FROM table_seats WHERE table_id = $1 AND user_id IS NOT NULL`,
		tableID,
	).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count occupied seats for table %d: %w", tableID, err)
	}
	return count, nil
}
