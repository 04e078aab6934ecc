package service

import (
	"context"

	"cardroom/events"
	"cardroom/models"
)

// WalletRepository defines the interface for wallet data access
type WalletRepository interface {
	// GetByUser retrieves the wallet for a user within a community, or nil
	GetByUser(ctx context.Context, userID, communityID int64) (*models.Wallet, error)

	// GetByID retrieves a wallet by its primary key, or nil
	GetByID(ctx context.Context, walletID int64) (*models.Wallet, error)

	// Create creates a new wallet with the initial balance
	Create(ctx context.Context, userID, communityID, initialBalance int64) (*models.Wallet, error)

	// Debit deducts from a wallet atomically, failing if funds are
	// insufficient. Returns the post-debit balance.
	Debit(ctx context.Context, walletID, amount int64) (int64, error)

	// Credit adds to a wallet atomically. Returns the post-credit balance.
	Credit(ctx context.Context, walletID, amount int64) (int64, error)

	// GetBalance returns the current balance of a wallet
	GetBalance(ctx context.Context, walletID int64) (int64, error)
}

// TableRepository defines the interface for table data access
type TableRepository interface {
	// Create persists a new table and fills in its generated fields
	Create(ctx context.Context, table *models.Table) error

	// GetByID retrieves a table by its ID, or nil
	GetByID(ctx context.Context, tableID int64) (*models.Table, error)

	// GetByIDForUpdate retrieves a table and locks its row until the
	// surrounding transaction ends. Queue mutations take this lock so the
	// capacity check and position assignment serialize per table.
	GetByIDForUpdate(ctx context.Context, tableID int64) (*models.Table, error)

	// Delete removes a table together with its seats and queue
	Delete(ctx context.Context, tableID int64) error

	// ListByCommunity returns all tables in a community
	ListByCommunity(ctx context.Context, communityID int64) ([]*models.Table, error)
}

// SeatRepository defines the interface for seat data access
type SeatRepository interface {
	// CreateForTable pre-allocates seats 1..maxSeats for a new table
	CreateForTable(ctx context.Context, tableID int64, maxSeats int) error

	// Get retrieves a single seat by table and seat number, or nil
	Get(ctx context.Context, tableID int64, seatNumber int) (*models.Seat, error)

	// GetByUser retrieves the seat a user occupies at a table, or nil
	GetByUser(ctx context.Context, tableID, userID int64) (*models.Seat, error)

	// Reserve atomically occupies a vacant seat for a user
	Reserve(ctx context.Context, tableID int64, seatNumber int, userID int64) error

	// Release vacates a seat and returns the previous occupant; idempotent
	Release(ctx context.Context, tableID int64, seatNumber int) (*int64, error)

	// ReleaseByUser vacates the user's seat and returns the freed seat number
	ReleaseByUser(ctx context.Context, tableID, userID int64) (int, bool, error)

	// ListByTable returns all seats ordered by seat number
	ListByTable(ctx context.Context, tableID int64) ([]*models.Seat, error)

	// CountOccupied returns the number of occupied seats at a table
	CountOccupied(ctx context.Context, tableID int64) (int, error)
}

// QueueRepository defines the interface for wait queue data access
type QueueRepository interface {
	// GetEntry retrieves a user's queue entry at a table, or nil
	GetEntry(ctx context.Context, tableID, userID int64) (*models.QueueEntry, error)

	// Count returns the current queue length for a table
	Count(ctx context.Context, tableID int64) (int, error)

	// Append adds a user at the tail of the queue
	Append(ctx context.Context, tableID, userID int64) (*models.QueueEntry, error)

	// Remove deletes a user's entry and shifts higher positions down by one
	Remove(ctx context.Context, tableID, userID int64) (bool, error)

	// PeekHead returns the position-1 entry, or nil when the queue is empty
	PeekHead(ctx context.Context, tableID int64) (*models.QueueEntry, error)

	// ListByTable returns the queue ordered by position
	ListByTable(ctx context.Context, tableID int64) ([]*models.QueueEntry, error)
}

// LedgerRepository defines the interface for wallet ledger data access
type LedgerRepository interface {
	// Record creates a new ledger entry
	Record(ctx context.Context, entry *models.LedgerEntry) error

	// GetByWallet returns the most recent ledger entries for a wallet
	GetByWallet(ctx context.Context, walletID int64, limit int) ([]*models.LedgerEntry, error)

	// GetBySaga returns all ledger entries written by one buy-in saga run
	GetBySaga(ctx context.Context, sagaID string) ([]*models.LedgerEntry, error)
}

// ProvisionRequest carries the parameters of the remote seat-player call
type ProvisionRequest struct {
	TableID    int64
	SeatNumber int
	UserID     int64
	Stack      int64
}

// GameEngine is the narrow contract to the remote game engine. Both calls
// must be invoked with a context that carries a hard timeout; an expired
// context is treated as engine failure.
type GameEngine interface {
	// ProvisionPlayer seats a player with the given stack in the engine
	ProvisionPlayer(ctx context.Context, req ProvisionRequest) error

	// RemovePlayer unseats a player and returns their remaining stack
	RemovePlayer(ctx context.Context, tableID, userID int64) (int64, error)
}

// BuyInService runs the buy-in saga
type BuyInService interface {
	// JoinTable seats a user at a table: it reserves the seat and debits the
	// wallet in one transaction, then provisions the player in the game
	// engine, compensating both local steps if the engine call fails.
	JoinTable(ctx context.Context, userID, tableID int64, seatNumber int, buyIn int64) (*models.BuyInResult, error)
}

// VacancyService reacts to seats becoming free
type VacancyService interface {
	// HandlePlayerLeft frees the player's seat, credits any remaining stack,
	// and promotes the queue head into the freed seat when funded.
	HandlePlayerLeft(ctx context.Context, tableID, userID, remainingStack int64) error

	// LeaveTable is the user-initiated variant: it unseats the player in the
	// game engine first, then runs the same vacancy flow.
	LeaveTable(ctx context.Context, tableID, userID int64) error
}

// QueueService manages table wait queues
type QueueService interface {
	// JoinQueue appends a user to a table's wait queue
	JoinQueue(ctx context.Context, userID, tableID int64) (*models.QueueEntry, error)

	// LeaveQueue removes a user from a table's wait queue
	LeaveQueue(ctx context.Context, userID, tableID int64) error

	// GetQueue returns the queue ordered by position
	GetQueue(ctx context.Context, tableID int64) ([]*models.QueueEntry, error)
}

// TableService manages table lifecycle
type TableService interface {
	// CreateTable creates a table with its seats pre-allocated
	CreateTable(ctx context.Context, params models.TableParams) (*models.Table, error)

	// DeleteTable removes a table; rejected while any seat is occupied
	DeleteTable(ctx context.Context, tableID int64) error

	// CheckCleanup deletes a non-permanent table once it is fully vacated.
	// Reports whether the table was deleted.
	CheckCleanup(ctx context.Context, tableID int64) (bool, error)

	// GetTable retrieves a table
	GetTable(ctx context.Context, tableID int64) (*models.Table, error)

	// GetSeats returns a table's seats ordered by seat number
	GetSeats(ctx context.Context, tableID int64) ([]*models.Seat, error)
}

// WalletService exposes wallet operations for the engine's out-of-band
// settlements and for operator tooling
type WalletService interface {
	// CreateWallet creates a wallet with the configured starting balance
	CreateWallet(ctx context.Context, userID, communityID int64) (*models.Wallet, error)

	// Credit adds chips to a user's wallet and records a ledger entry
	Credit(ctx context.Context, userID, communityID, amount int64, entryType models.EntryType, metadata map[string]any) (int64, error)

	// Debit removes chips from a user's wallet and records a ledger entry
	Debit(ctx context.Context, userID, communityID, amount int64, entryType models.EntryType, metadata map[string]any) (int64, error)

	// GetBalance returns the user's current balance in a community
	GetBalance(ctx context.Context, userID, communityID int64) (int64, error)
}

// EventPublisher defines the interface for publishing events
type EventPublisher interface {
	Publish(event events.Event)
}

// UnitOfWork defines the interface for transactional repository operations
type UnitOfWork interface {
	// Begin starts a new transaction
	Begin(ctx context.Context) error

	// Commit commits the transaction
	Commit() error

	// Rollback rolls back the transaction
	Rollback() error

	// Repository getters
	WalletRepository() WalletRepository
	TableRepository() TableRepository
	SeatRepository() SeatRepository
	QueueRepository() QueueRepository
	LedgerRepository() LedgerRepository
	EventBus() EventPublisher
}

// UnitOfWorkFactory defines the interface for creating UnitOfWork instances
type UnitOfWorkFactory interface {
	Create() UnitOfWork
}
