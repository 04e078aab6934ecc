package repository

import (
	"context"
	"fmt"

	"cardroom/database"
	"cardroom/models"
	"github.com/jackc/pgx/v5"
)

// TableRepository implements the service.TableRepository interface
type TableRepository struct {
	q queryable
}

// NewTableRepository creates a new table repository
func NewTableRepository(db *database.DB) *TableRepository {
	return &TableRepository{q: db.Pool}
}

// newTableRepositoryWithTx creates a new table repository with a transaction
func newTableRepositoryWithTx(tx queryable) *TableRepository {
	return &TableRepository{q: tx}
}

// Create persists a new table and fills in its generated fields
func (r *TableRepository) Create(ctx context.Context, table *models.Table) error {
	query := `
		INSERT INTO tables (community_id, name, max_seats, min_buy_in, max_queue_size, is_permanent, created_by_user_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at
	`

	err := r.q.QueryRow(ctx, query,
		table.CommunityID,
		table.Name,
		table.MaxSeats,
		table.MinBuyIn,
		table.MaxQueueSize,
		table.Permanent,
		table.CreatedBy,
	).Scan(&table.ID, &table.CreatedAt)

	if err != nil {
		return fmt.Errorf("failed to create table %q: %w", table.Name, err)
	}

	return nil
}

// GetByID retrieves a table by its ID
func (r *TableRepository) GetByID(ctx context.Context, tableID int64) (*models.Table, error) {
	query := `
		SELECT id, community_id, name, max_seats, min_buy_in, max_queue_size, is_permanent, created_by_user_id, created_at
		FROM tables
		WHERE id = $1
	`

	var table models.Table
	err := r.q.QueryRow(ctx, query, tableID).Scan(
		&table.ID,
		&table.CommunityID,
		&table.Name,
		&table.MaxSeats,
		&table.MinBuyIn,
		&table.MaxQueueSize,
		&table.Permanent,
		&table.CreatedBy,
		&table.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get table %d: %w", tableID, err)
	}

	return &table, nil
}

// GetByIDForUpdate retrieves a table and locks its row until the surrounding
// transaction ends. Queue mutations take this lock so the capacity check and
// position assignment serialize per table.
func (r *TableRepository) GetByIDForUpdate(ctx context.Context, tableID int64) (*models.Table, error) {
	query := `
		SELECT id, community_id, name, max_seats, min_buy_in, max_queue_size, is_permanent, created_by_user_id, created_at
		FROM tables
		WHERE id = $1
		FOR UPDATE
	`

	var table models.Table
	err := r.q.QueryRow(ctx, query, tableID).Scan(
		&table.ID,
		&table.CommunityID,
		&table.Name,
		&table.MaxSeats,
		&table.MinBuyIn,
		&table.MaxQueueSize,
		&table.Permanent,
		&table.CreatedBy,
		&table.CreatedAt,
	)

	if err == pgx.ErrNoRows {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to lock table %d: %w", tableID, err)
	}

	return &table, nil
}

// Delete removes a table; seats and queue entries cascade at the schema level
func (r *TableRepository) Delete(ctx context.Context, tableID int64) error {
	result, err := r.q.Exec(ctx, `DELETE FROM tables WHERE id = $1`, tableID)
	if err != nil {
		return fmt.Errorf("failed to delete table %d: %w", tableID, err)
	}

	if result.RowsAffected() == 0 {
		return models.ErrTableNotFound
	}

	return nil
}

// ListByCommunity returns all tables in a community ordered by creation time
func (r *TableRepository) ListByCommunity(ctx context.Context, communityID int64) ([]*models.Table, error) {
	query := `
		SELECT id, community_id, name, max_seats, min_buy_in, max_queue_size, is_permanent, created_by_user_id, created_at
		FROM tables
		WHERE community_id = $1
		ORDER BY created_at
	`

	rows, err := r.q.Query(ctx, query, communityID)
	if err != nil {
		return nil, fmt.Errorf("failed to list tables for community %d: %w", communityID, err)
	}
	defer rows.Close()

	var tables []*models.Table
	for rows.Next() {
		var table models.Table
		err := rows.Scan(
			&table.ID,
			&table.CommunityID,
			&table.Name,
			&table.MaxSeats,
			&table.MinBuyIn,
			&table.MaxQueueSize,
			&table.Permanent,
			&table.CreatedBy,
			&table.CreatedAt,
		)
		if err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		tables = append(tables, &table)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate tables: %w", err)
	}

	return tables, nil
}
