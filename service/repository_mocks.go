package service

import (
	"context"

	"cardroom/events"
	"cardroom/models"

	"github.com/stretchr/testify/mock"
)

// MockWalletRepository is a mock implementation of WalletRepository
type MockWalletRepository struct {
	mock.Mock
}

func (m *MockWalletRepository) GetByUser(ctx context.Context, userID, communityID int64) (*models.Wallet, error) {
	args := m.Called(ctx, userID, communityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletRepository) GetByID(ctx context.Context, walletID int64) (*models.Wallet, error) {
	args := m.Called(ctx, walletID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletRepository) Create(ctx context.Context, userID, communityID, initialBalance int64) (*models.Wallet, error) {
	args := m.Called(ctx, userID, communityID, initialBalance)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletRepository) Debit(ctx context.Context, walletID, amount int64) (int64, error) {
	args := m.Called(ctx, walletID, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWalletRepository) Credit(ctx context.Context, walletID, amount int64) (int64, error) {
	args := m.Called(ctx, walletID, amount)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWalletRepository) GetBalance(ctx context.Context, walletID int64) (int64, error) {
	args := m.Called(ctx, walletID)
	return args.Get(0).(int64), args.Error(1)
}

// MockTableRepository is a mock implementation of TableRepository
type MockTableRepository struct {
	mock.Mock
}

func (m *MockTableRepository) Create(ctx context.Context, table *models.Table) error {
	args := m.Called(ctx, table)
	return args.Error(0)
}

func (m *MockTableRepository) GetByID(ctx context.Context, tableID int64) (*models.Table, error) {
	args := m.Called(ctx, tableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Table), args.Error(1)
}

func (m *MockTableRepository) GetByIDForUpdate(ctx context.Context, tableID int64) (*models.Table, error) {
	args := m.Called(ctx, tableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Table), args.Error(1)
}

func (m *MockTableRepository) Delete(ctx context.Context, tableID int64) error {
	args := m.Called(ctx, tableID)
	return args.Error(0)
}

func (m *MockTableRepository) ListByCommunity(ctx context.Context, communityID int64) ([]*models.Table, error) {
	args := m.Called(ctx, communityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Table), args.Error(1)
}

// MockSeatRepository is a mock implementation of SeatRepository
type MockSeatRepository struct {
	mock.Mock
}

func (m *MockSeatRepository) CreateForTable(ctx context.Context, tableID int64, maxSeats int) error {
	args := m.Called(ctx, tableID, maxSeats)
	return args.Error(0)
}

func (m *MockSeatRepository) Get(ctx context.Context, tableID int64, seatNumber int) (*models.Seat, error) {
	args := m.Called(ctx, tableID, seatNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Seat), args.Error(1)
}

func (m *MockSeatRepository) GetByUser(ctx context.Context, tableID, userID int64) (*models.Seat, error) {
	args := m.Called(ctx, tableID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Seat), args.Error(1)
}

func (m *MockSeatRepository) Reserve(ctx context.Context, tableID int64, seatNumber int, userID int64) error {
	args := m.Called(ctx, tableID, seatNumber, userID)
	return args.Error(0)
}

func (m *MockSeatRepository) Release(ctx context.Context, tableID int64, seatNumber int) (*int64, error) {
	args := m.Called(ctx, tableID, seatNumber)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*int64), args.Error(1)
}

func (m *MockSeatRepository) ReleaseByUser(ctx context.Context, tableID, userID int64) (int, bool, error) {
	args := m.Called(ctx, tableID, userID)
	return args.Int(0), args.Bool(1), args.Error(2)
}

func (m *MockSeatRepository) ListByTable(ctx context.Context, tableID int64) ([]*models.Seat, error) {
	args := m.Called(ctx, tableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Seat), args.Error(1)
}

func (m *MockSeatRepository) CountOccupied(ctx context.Context, tableID int64) (int, error) {
	args := m.Called(ctx, tableID)
	return args.Int(0), args.Error(1)
}

// MockQueueRepository is a mock implementation of QueueRepository
type MockQueueRepository struct {
	mock.Mock
}

func (m *MockQueueRepository) GetEntry(ctx context.Context, tableID, userID int64) (*models.QueueEntry, error) {
	args := m.Called(ctx, tableID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QueueEntry), args.Error(1)
}

func (m *MockQueueRepository) Count(ctx context.Context, tableID int64) (int, error) {
	args := m.Called(ctx, tableID)
	return args.Int(0), args.Error(1)
}

func (m *MockQueueRepository) Append(ctx context.Context, tableID, userID int64) (*models.QueueEntry, error) {
	args := m.Called(ctx, tableID, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QueueEntry), args.Error(1)
}

func (m *MockQueueRepository) Remove(ctx context.Context, tableID, userID int64) (bool, error) {
	args := m.Called(ctx, tableID, userID)
	return args.Bool(0), args.Error(1)
}

func (m *MockQueueRepository) PeekHead(ctx context.Context, tableID int64) (*models.QueueEntry, error) {
	args := m.Called(ctx, tableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QueueEntry), args.Error(1)
}

func (m *MockQueueRepository) ListByTable(ctx context.Context, tableID int64) ([]*models.QueueEntry, error) {
	args := m.Called(ctx, tableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.QueueEntry), args.Error(1)
}

// MockLedgerRepository is a mock implementation of LedgerRepository
type MockLedgerRepository struct {
	mock.Mock
}

func (m *MockLedgerRepository) Record(ctx context.Context, entry *models.LedgerEntry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockLedgerRepository) GetByWallet(ctx context.Context, walletID int64, limit int) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, walletID, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerEntry), args.Error(1)
}

func (m *MockLedgerRepository) GetBySaga(ctx context.Context, sagaID string) ([]*models.LedgerEntry, error) {
	args := m.Called(ctx, sagaID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.LedgerEntry), args.Error(1)
}

// MockEventPublisher is a mock implementation of EventPublisher for testing
type MockEventPublisher struct {
	mock.Mock
}

func (m *MockEventPublisher) Publish(event events.Event) {
	m.Called(event)
}

// nopPublisher drops events; used when a test has no event expectations
type nopPublisher struct{}

func (nopPublisher) Publish(events.Event) {}

// MockUnitOfWork is a mock implementation of UnitOfWork. Repository getters
// return the instances set via SetRepositories rather than going through
// the expectation machinery.
type MockUnitOfWork struct {
	mock.Mock
	walletRepo WalletRepository
	tableRepo  TableRepository
	seatRepo   SeatRepository
	queueRepo  QueueRepository
	ledgerRepo LedgerRepository
	eventBus   EventPublisher
}

// SetRepositories configures the repositories returned by the getters
func (m *MockUnitOfWork) SetRepositories(wallet WalletRepository, table TableRepository, seat SeatRepository, queue QueueRepository, ledger LedgerRepository) {
	m.walletRepo = wallet
	m.tableRepo = table
	m.seatRepo = seat
	m.queueRepo = queue
	m.ledgerRepo = ledger
}

// SetEventBus configures the publisher returned by EventBus
func (m *MockUnitOfWork) SetEventBus(bus EventPublisher) {
	m.eventBus = bus
}

func (m *MockUnitOfWork) Begin(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockUnitOfWork) Commit() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) Rollback() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockUnitOfWork) WalletRepository() WalletRepository {
	return m.walletRepo
}

func (m *MockUnitOfWork) TableRepository() TableRepository {
	return m.tableRepo
}

func (m *MockUnitOfWork) SeatRepository() SeatRepository {
	return m.seatRepo
}

func (m *MockUnitOfWork) QueueRepository() QueueRepository {
	return m.queueRepo
}

func (m *MockUnitOfWork) LedgerRepository() LedgerRepository {
	return m.ledgerRepo
}

func (m *MockUnitOfWork) EventBus() EventPublisher {
	if m.eventBus == nil {
		return nopPublisher{}
	}
	return m.eventBus
}

// MockUnitOfWorkFactory is a mock implementation of UnitOfWorkFactory
type MockUnitOfWorkFactory struct {
	mock.Mock
}

func (m *MockUnitOfWorkFactory) Create() UnitOfWork {
	args := m.Called()
	return args.Get(0).(UnitOfWork)
}

// MockGameEngine is a mock implementation of GameEngine
type MockGameEngine struct {
	mock.Mock
}

func (m *MockGameEngine) ProvisionPlayer(ctx context.Context, req ProvisionRequest) error {
	args := m.Called(ctx, req)
	return args.Error(0)
}

func (m *MockGameEngine) RemovePlayer(ctx context.Context, tableID, userID int64) (int64, error) {
	args := m.Called(ctx, tableID, userID)
	return args.Get(0).(int64), args.Error(1)
}

// MockBuyInService is a mock implementation of BuyInService
type MockBuyInService struct {
	mock.Mock
}

func (m *MockBuyInService) JoinTable(ctx context.Context, userID, tableID int64, seatNumber int, buyIn int64) (*models.BuyInResult, error) {
	args := m.Called(ctx, userID, tableID, seatNumber, buyIn)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.BuyInResult), args.Error(1)
}

// MockVacancyService is a mock implementation of VacancyService
type MockVacancyService struct {
	mock.Mock
}

func (m *MockVacancyService) HandlePlayerLeft(ctx context.Context, tableID, userID, remainingStack int64) error {
	args := m.Called(ctx, tableID, userID, remainingStack)
	return args.Error(0)
}

func (m *MockVacancyService) LeaveTable(ctx context.Context, tableID, userID int64) error {
	args := m.Called(ctx, tableID, userID)
	return args.Error(0)
}

// MockQueueService is a mock implementation of QueueService
type MockQueueService struct {
	mock.Mock
}

func (m *MockQueueService) JoinQueue(ctx context.Context, userID, tableID int64) (*models.QueueEntry, error) {
	args := m.Called(ctx, userID, tableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.QueueEntry), args.Error(1)
}

func (m *MockQueueService) LeaveQueue(ctx context.Context, userID, tableID int64) error {
	args := m.Called(ctx, userID, tableID)
	return args.Error(0)
}

func (m *MockQueueService) GetQueue(ctx context.Context, tableID int64) ([]*models.QueueEntry, error) {
	args := m.Called(ctx, tableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.QueueEntry), args.Error(1)
}

// MockWalletService is a mock implementation of WalletService
type MockWalletService struct {
	mock.Mock
}

func (m *MockWalletService) CreateWallet(ctx context.Context, userID, communityID int64) (*models.Wallet, error) {
	args := m.Called(ctx, userID, communityID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Wallet), args.Error(1)
}

func (m *MockWalletService) Credit(ctx context.Context, userID, communityID, amount int64, entryType models.EntryType, metadata map[string]any) (int64, error) {
	args := m.Called(ctx, userID, communityID, amount, entryType, metadata)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWalletService) Debit(ctx context.Context, userID, communityID, amount int64, entryType models.EntryType, metadata map[string]any) (int64, error) {
	args := m.Called(ctx, userID, communityID, amount, entryType, metadata)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MockWalletService) GetBalance(ctx context.Context, userID, communityID int64) (int64, error) {
	args := m.Called(ctx, userID, communityID)
	return args.Get(0).(int64), args.Error(1)
}

// MockTableService is a mock implementation of TableService
type MockTableService struct {
	mock.Mock
}

func (m *MockTableService) CreateTable(ctx context.Context, params models.TableParams) (*models.Table, error) {
	args := m.Called(ctx, params)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Table), args.Error(1)
}

func (m *MockTableService) DeleteTable(ctx context.Context, tableID int64) error {
	args := m.Called(ctx, tableID)
	return args.Error(0)
}

func (m *MockTableService) CheckCleanup(ctx context.Context, tableID int64) (bool, error) {
	args := m.Called(ctx, tableID)
	return args.Bool(0), args.Error(1)
}

func (m *MockTableService) GetTable(ctx context.Context, tableID int64) (*models.Table, error) {
	args := m.Called(ctx, tableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.Table), args.Error(1)
}

func (m *MockTableService) GetSeats(ctx context.Context, tableID int64) ([]*models.Seat, error) {
	args := m.Called(ctx, tableID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*models.Seat), args.Error(1)
}
