package repository

import (
	"context"
	"fmt"

	"cardroom/database"
	"cardroom/models"
	"github.com/jackc/pgx/v5"
)

// QueueRepository implements the service.QueueRepository interface
type QueueRepository struct {
	q queryable
}

// NewQueueRepository creates a new queue repository
func NewQueueRepository(db *database.DB) *QueueRepository {
	return &QueueRepository{q: db.Pool}
}

// newQueueRepositoryWithTx creates a new queue repository with a transaction
func newQueueRepositoryWithTx(tx queryable) *QueueRepository {
	return &QueueRepository{q: tx}
}

// GetEntry retrieves a user's queue entry at a table, or nil
func (r *QueueRepository) GetEntry(ctx context.Context, tableID, userID int64) (*models.QueueEntry, error) {
	query := `
		SELECT id, table_id, user_id, position, joined_at
		FROM table_queue
		WHERE table_id = $1 AND user_id = $2
	`

	var entry models.QueueEntry
	err := r.q.QueryRow(ctx, query, tableID, userID).Scan(
		&entry.ID,
		&entry.TableID,
		&entry.UserID,
		&entry.Position,
		&entry.JoinedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get queue entry for user %d at table %d: %w", userID, tableID, err)
	}

	return &entry, nil
}

// Count returns the current queue length for a table
func (r *QueueRepository) Count(ctx context.Context, tableID int64) (int, error) {
	var count int
	err := r.q.QueryRow(ctx, `SELECT COUNT(*) FROM table_queue WHERE table_id = $1`, tableID).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count queue for table %d: %w", tableID, err)
	}
	return count, nil
}

// Append adds a user at the tail of a table's queue. Positions stay dense,
// so the next position is max(position)+1 computed inside the same
// statement; the (table_id, user_id) unique constraint rejects duplicates.
func (r *QueueRepository) Append(ctx context.Context, tableID, userID int64) (*models.QueueEntry, error) {
	query := `
		INSERT INTO table_queue (table_id, user_id, position)
		SELECT $1, $2, COALESCE(MAX(position), 0) + 1
		FROM table_queue
		WHERE table_id = $1
		RETURNING id, table_id, user_id, position, joined_at
	`

	var entry models.QueueEntry
	err := r.q.QueryRow(ctx, query, tableID, userID).Scan(
		&entry.ID,
		&entry.TableID,
		&entry.UserID,
		&entry.Position,
		&entry.JoinedAt,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to append user %d to queue of table %d: %w", userID, tableID, err)
	}

	return &entry, nil
}

// Remove deletes a user's queue entry and shifts every higher position down
// by one, preserving the dense 1..n numbering. Reports false when the user
// had no entry.
func (r *QueueRepository) Remove(ctx context.Context, tableID, userID int64) (bool, error) {
	var removedPosition int
	err := r.q.QueryRow(ctx,
		`DELETE FROM table_queue WHERE table_id = $1 AND user_id = $2 RETURNING position`,
		tableID, userID,
	).Scan(&removedPosition)

	if err == pgx.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("failed to remove user %d from queue of table %d: %w", userID, tableID, err)
	}

	_, err = r.q.Exec(ctx,
		`UPDATE table_queue SET position = position - 1 WHERE table_id = $1 AND position > $2`,
		tableID, removedPosition,
	)
	if err != nil {
		return false, fmt.Errorf("failed to shift queue positions for table %d: %w", tableID, err)
	}

	return true, nil
}

// PeekHead returns the position-1 entry, or nil when the queue is empty
func (r *QueueRepository) PeekHead(ctx context.Context, tableID int64) (*models.QueueEntry, error) {
	query := `
		SELECT id, table_id, user_id, position, joined_at
		FROM table_queue
		WHERE table_id = $1
		ORDER BY position
		LIMIT 1
	`

	var entry models.QueueEntry
	err := r.q.QueryRow(ctx, query, tableID).Scan(
		&entry.ID,
		&entry.TableID,
		&entry.UserID,
		&entry.Position,
		&entry.JoinedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to peek queue head for table %d: %w", tableID, err)
	}

	return &entry, nil
}

// ListByTable returns a table's queue ordered by position
func (r *QueueRepository) ListByTable(ctx context.Context, tableID int64) ([]*models.QueueEntry, error) {
	query := `
		SELECT id, table_id, user_id, position, joined_at
		FROM table_queue
		WHERE table_id = $1
		ORDER BY position
	`

	rows, err := r.q.Query(ctx, query, tableID)
	if err != nil {
		return nil, fmt.Errorf("failed to list queue for table %d: %w", tableID, err)
	}
	defer rows.Close()

	var entries []*models.QueueEntry
	for rows.Next() {
		var entry models.QueueEntry
		err := rows.Scan(
			&entry.ID,
			&entry.TableID,
			&entry.UserID,
			&entry.Position,
			&entry.JoinedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan queue entry: %w", err)
		}
		entries = append(entries, &entry)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate queue entries: %w", err)
	}

	return entries, nil
}
