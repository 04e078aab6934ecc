package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"cardroom/events"
	"cardroom/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

func testTable() *models.Table {
	return &models.Table{
		ID:           1,
		CommunityID:  77,
		Name:         "High Stakes",
		MaxSeats:     6,
		MinBuyIn:     100,
		MaxQueueSize: 10,
	}
}

func TestBuyInService_JoinTable_Success(t *testing.T) {
	ctx := context.Background()

	// Setup mocks
	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockWalletRepo := new(MockWalletRepository)
	mockTableRepo := new(MockTableRepository)
	mockSeatRepo := new(MockSeatRepository)
	mockQueueRepo := new(MockQueueRepository)
	mockLedgerRepo := new(MockLedgerRepository)
	mockEngine := new(MockGameEngine)
	mockBus := new(MockEventPublisher)

	mockUoW.SetRepositories(mockWalletRepo, mockTableRepo, mockSeatRepo, mockQueueRepo, mockLedgerRepo)
	mockUoW.SetEventBus(mockBus)

	service := NewBuyInService(mockFactory, mockEngine, 5*time.Second)

	wallet := &models.Wallet{ID: 9, UserID: 123456, CommunityID: 77, Balance: 1000}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockTableRepo.On("GetByID", ctx, int64(1)).Return(testTable(), nil)
	mockSeatRepo.On("GetByUser", ctx, int64(1), int64(123456)).Return(nil, nil)
	mockWalletRepo.On("GetByUser", ctx, int64(123456), int64(77)).Return(wallet, nil)
	mockSeatRepo.On("Reserve", ctx, int64(1), 3, int64(123456)).Return(nil)
	mockWalletRepo.On("Debit", ctx, int64(9), int64(200)).Return(int64(800), nil)

	mockLedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
		return e.WalletID == 9 &&
			e.BalanceBefore == 1000 &&
			e.BalanceAfter == 800 &&
			e.ChangeAmount == -200 &&
			e.EntryType == models.EntryTypeBuyIn &&
			e.SagaID != nil
	})).Return(nil)

	mockBus.On("Publish", mock.AnythingOfType("events.WalletChangedEvent")).Return()
	mockBus.On("Publish", mock.MatchedBy(func(e events.Event) bool {
		st, ok := e.(events.SeatTakenEvent)
		return ok && st.TableID == 1 && st.SeatNumber == 3 && st.UserID == 123456 && st.BuyIn == 200
	})).Return()

	mockEngine.On("ProvisionPlayer", mock.Anything, ProvisionRequest{
		TableID:    1,
		SeatNumber: 3,
		UserID:     123456,
		Stack:      200,
	}).Return(nil)

	result, err := service.JoinTable(ctx, 123456, 1, 3, 200)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, int64(1), result.TableID)
	assert.Equal(t, 3, result.SeatNumber)
	assert.Equal(t, int64(200), result.BuyIn)
	assert.Equal(t, int64(800), result.NewBalance)

	mockFactory.AssertExpectations(t)
	mockUoW.AssertExpectations(t)
	mockSeatRepo.AssertExpectations(t)
	mockWalletRepo.AssertExpectations(t)
	mockLedgerRepo.AssertExpectations(t)
	mockEngine.AssertExpectations(t)
}

func TestBuyInService_JoinTable_TableNotFound(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockTableRepo := new(MockTableRepository)
	mockEngine := new(MockGameEngine)

	mockUoW.SetRepositories(new(MockWalletRepository), mockTableRepo, new(MockSeatRepository), new(MockQueueRepository), new(MockLedgerRepository))

	service := NewBuyInService(mockFactory, mockEngine, 5*time.Second)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockTableRepo.On("GetByID", ctx, int64(404)).Return(nil, nil)

	result, err := service.JoinTable(ctx, 123456, 404, 1, 200)

	assert.ErrorIs(t, err, models.ErrTableNotFound)
	assert.Nil(t, result)
	mockUoW.AssertNotCalled(t, "Commit")
	mockEngine.AssertNotCalled(t, "ProvisionPlayer", mock.Anything, mock.Anything)
}

func TestBuyInService_JoinTable_SeatOutOfRange(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockTableRepo := new(MockTableRepository)

	mockUoW.SetRepositories(new(MockWalletRepository), mockTableRepo, new(MockSeatRepository), new(MockQueueRepository), new(MockLedgerRepository))

	service := NewBuyInService(mockFactory, new(MockGameEngine), 5*time.Second)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockTableRepo.On("GetByID", ctx, int64(1)).Return(testTable(), nil)

	// Seats run 1..6 on the test table
	for _, seat := range []int{0, 7, -1} {
		result, err := service.JoinTable(ctx, 123456, 1, seat, 200)
		assert.ErrorIs(t, err, models.ErrSeatOutOfRange)
		assert.Nil(t, result)
	}
}

func TestBuyInService_JoinTable_BuyInBelowMinimum(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockTableRepo := new(MockTableRepository)

	mockUoW.SetRepositories(new(MockWalletRepository), mockTableRepo, new(MockSeatRepository), new(MockQueueRepository), new(MockLedgerRepository))

	service := NewBuyInService(mockFactory, new(MockGameEngine), 5*time.Second)

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockTableRepo.On("GetByID", ctx, int64(1)).Return(testTable(), nil)

	result, err := service.JoinTable(ctx, 123456, 1, 3, 99)

	assert.ErrorIs(t, err, models.ErrBuyInTooSmall)
	assert.Nil(t, result)
}

func TestBuyInService_JoinTable_AlreadySeated(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockTableRepo := new(MockTableRepository)
	mockSeatRepo := new(MockSeatRepository)

	mockUoW.SetRepositories(new(MockWalletRepository), mockTableRepo, mockSeatRepo, new(MockQueueRepository), new(MockLedgerRepository))

	service := NewBuyInService(mockFactory, new(MockGameEngine), 5*time.Second)

	occupant := int64(123456)
	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockTableRepo.On("GetByID", ctx, int64(1)).Return(testTable(), nil)
	mockSeatRepo.On("GetByUser", ctx, int64(1), int64(123456)).Return(&models.Seat{
		TableID:    1,
		SeatNumber: 5,
		UserID:     &occupant,
	}, nil)

	result, err := service.JoinTable(ctx, 123456, 1, 3, 200)

	assert.ErrorIs(t, err, models.ErrAlreadySeated)
	assert.Nil(t, result)
	mockSeatRepo.AssertNotCalled(t, "Reserve", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestBuyInService_JoinTable_SeatOccupied(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockTableRepo := new(MockTableRepository)
	mockSeatRepo := new(MockSeatRepository)
	mockWalletRepo := new(MockWalletRepository)

	mockUoW.SetRepositories(mockWalletRepo, mockTableRepo, mockSeatRepo, new(MockQueueRepository), new(MockLedgerRepository))

	service := NewBuyInService(mockFactory, new(MockGameEngine), 5*time.Second)

	wallet := &models.Wallet{ID: 9, UserID: 123456, CommunityID: 77, Balance: 1000}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockTableRepo.On("GetByID", ctx, int64(1)).Return(testTable(), nil)
	mockSeatRepo.On("GetByUser", ctx, int64(1), int64(123456)).Return(nil, nil)
	mockWalletRepo.On("GetByUser", ctx, int64(123456), int64(77)).Return(wallet, nil)
	mockSeatRepo.On("Reserve", ctx, int64(1), 3, int64(123456)).Return(models.ErrSeatOccupied)

	result, err := service.JoinTable(ctx, 123456, 1, 3, 200)

	assert.ErrorIs(t, err, models.ErrSeatOccupied)
	assert.Nil(t, result)
	mockWalletRepo.AssertNotCalled(t, "Debit", mock.Anything, mock.Anything, mock.Anything)
	mockUoW.AssertNotCalled(t, "Commit")
}

func TestBuyInService_JoinTable_InsufficientFunds(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockTableRepo := new(MockTableRepository)
	mockSeatRepo := new(MockSeatRepository)
	mockWalletRepo := new(MockWalletRepository)
	mockEngine := new(MockGameEngine)

	mockUoW.SetRepositories(mockWalletRepo, mockTableRepo, mockSeatRepo, new(MockQueueRepository), new(MockLedgerRepository))

	service := NewBuyInService(mockFactory, mockEngine, 5*time.Second)

	wallet := &models.Wallet{ID: 9, UserID: 123456, CommunityID: 77, Balance: 150}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Rollback").Return(nil)
	mockTableRepo.On("GetByID", ctx, int64(1)).Return(testTable(), nil)
	mockSeatRepo.On("GetByUser", ctx, int64(1), int64(123456)).Return(nil, nil)
	mockWalletRepo.On("GetByUser", ctx, int64(123456), int64(77)).Return(wallet, nil)
	mockSeatRepo.On("Reserve", ctx, int64(1), 3, int64(123456)).Return(nil)
	mockWalletRepo.On("Debit", ctx, int64(9), int64(200)).Return(int64(0), models.ErrInsufficientFunds)

	result, err := service.JoinTable(ctx, 123456, 1, 3, 200)

	// The rollback undoes the seat reservation together with the debit
	assert.ErrorIs(t, err, models.ErrInsufficientFunds)
	assert.Nil(t, result)
	mockUoW.AssertNotCalled(t, "Commit")
	mockEngine.AssertNotCalled(t, "ProvisionPlayer", mock.Anything, mock.Anything)
}

func TestBuyInService_JoinTable_EngineFailureCompensates(t *testing.T) {
	ctx := context.Background()

	// Forward transaction
	mockUoW := new(MockUnitOfWork)
	mockTableRepo := new(MockTableRepository)
	mockSeatRepo := new(MockSeatRepository)
	mockWalletRepo := new(MockWalletRepository)
	mockLedgerRepo := new(MockLedgerRepository)
	mockUoW.SetRepositories(mockWalletRepo, mockTableRepo, mockSeatRepo, new(MockQueueRepository), mockLedgerRepo)

	// Compensation transaction
	compUoW := new(MockUnitOfWork)
	compSeatRepo := new(MockSeatRepository)
	compWalletRepo := new(MockWalletRepository)
	compLedgerRepo := new(MockLedgerRepository)
	compUoW.SetRepositories(compWalletRepo, new(MockTableRepository), compSeatRepo, new(MockQueueRepository), compLedgerRepo)

	mockFactory := new(MockUnitOfWorkFactory)
	mockEngine := new(MockGameEngine)

	service := NewBuyInService(mockFactory, mockEngine, 5*time.Second)

	wallet := &models.Wallet{ID: 9, UserID: 123456, CommunityID: 77, Balance: 1000}
	debited := &models.Wallet{ID: 9, UserID: 123456, CommunityID: 77, Balance: 800}

	mockFactory.On("Create").Return(mockUoW).Once()
	mockFactory.On("Create").Return(compUoW).Once()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockTableRepo.On("GetByID", ctx, int64(1)).Return(testTable(), nil)
	mockSeatRepo.On("GetByUser", ctx, int64(1), int64(123456)).Return(nil, nil)
	mockWalletRepo.On("GetByUser", ctx, int64(123456), int64(77)).Return(wallet, nil)
	mockSeatRepo.On("Reserve", ctx, int64(1), 3, int64(123456)).Return(nil)
	mockWalletRepo.On("Debit", ctx, int64(9), int64(200)).Return(int64(800), nil)
	mockLedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
		return e.EntryType == models.EntryTypeBuyIn && e.ChangeAmount == -200
	})).Return(nil)

	mockEngine.On("ProvisionPlayer", mock.Anything, mock.AnythingOfType("service.ProvisionRequest")).
		Return(errors.New("connection refused"))

	compUoW.On("Begin", ctx).Return(nil)
	compUoW.On("Commit").Return(nil)
	compUoW.On("Rollback").Return(nil)

	compWalletRepo.On("GetByID", ctx, int64(9)).Return(debited, nil)
	compWalletRepo.On("Credit", ctx, int64(9), int64(200)).Return(int64(1000), nil)
	compLedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
		return e.EntryType == models.EntryTypeBuyInRefund &&
			e.ChangeAmount == 200 &&
			e.BalanceBefore == 800 &&
			e.BalanceAfter == 1000 &&
			e.SagaID != nil
	})).Return(nil)
	prevOccupant := int64(123456)
	compSeatRepo.On("Release", ctx, int64(1), 3).Return(&prevOccupant, nil)

	result, err := service.JoinTable(ctx, 123456, 1, 3, 200)

	assert.ErrorIs(t, err, models.ErrEngineUnavailable)
	assert.Nil(t, result)

	mockFactory.AssertExpectations(t)
	compWalletRepo.AssertExpectations(t)
	compSeatRepo.AssertExpectations(t)
	compLedgerRepo.AssertExpectations(t)
	compUoW.AssertExpectations(t)
}

func TestBuyInService_JoinTable_CompensationFailureEscalates(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockTableRepo := new(MockTableRepository)
	mockSeatRepo := new(MockSeatRepository)
	mockWalletRepo := new(MockWalletRepository)
	mockLedgerRepo := new(MockLedgerRepository)
	mockUoW.SetRepositories(mockWalletRepo, mockTableRepo, mockSeatRepo, new(MockQueueRepository), mockLedgerRepo)

	compUoW := new(MockUnitOfWork)
	compWalletRepo := new(MockWalletRepository)
	compUoW.SetRepositories(compWalletRepo, new(MockTableRepository), new(MockSeatRepository), new(MockQueueRepository), new(MockLedgerRepository))

	mockFactory := new(MockUnitOfWorkFactory)
	mockEngine := new(MockGameEngine)

	service := NewBuyInService(mockFactory, mockEngine, 5*time.Second)

	wallet := &models.Wallet{ID: 9, UserID: 123456, CommunityID: 77, Balance: 1000}

	mockFactory.On("Create").Return(mockUoW).Once()
	mockFactory.On("Create").Return(compUoW).Once()

	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockTableRepo.On("GetByID", ctx, int64(1)).Return(testTable(), nil)
	mockSeatRepo.On("GetByUser", ctx, int64(1), int64(123456)).Return(nil, nil)
	mockWalletRepo.On("GetByUser", ctx, int64(123456), int64(77)).Return(wallet, nil)
	mockSeatRepo.On("Reserve", ctx, int64(1), 3, int64(123456)).Return(nil)
	mockWalletRepo.On("Debit", ctx, int64(9), int64(200)).Return(int64(800), nil)
	mockLedgerRepo.On("Record", ctx, mock.Anything).Return(nil)

	mockEngine.On("ProvisionPlayer", mock.Anything, mock.AnythingOfType("service.ProvisionRequest")).
		Return(errors.New("engine timeout"))

	compUoW.On("Begin", ctx).Return(nil)
	compUoW.On("Rollback").Return(nil)
	compWalletRepo.On("GetByID", ctx, int64(9)).Return(nil, errors.New("database down"))

	result, err := service.JoinTable(ctx, 123456, 1, 3, 200)

	assert.Error(t, err)
	assert.Nil(t, result)
	// A failed compensation must not masquerade as a plain retryable
	// engine failure
	assert.NotErrorIs(t, err, models.ErrEngineUnavailable)
	compUoW.AssertNotCalled(t, "Commit")
}

func TestBuyInService_JoinTable_ReportsPostDebitBalance(t *testing.T) {
	ctx := context.Background()

	mockUoW := new(MockUnitOfWork)
	mockFactory := new(MockUnitOfWorkFactory)
	mockWalletRepo := new(MockWalletRepository)
	mockTableRepo := new(MockTableRepository)
	mockSeatRepo := new(MockSeatRepository)
	mockLedgerRepo := new(MockLedgerRepository)
	mockEngine := new(MockGameEngine)

	mockUoW.SetRepositories(mockWalletRepo, mockTableRepo, mockSeatRepo, new(MockQueueRepository), mockLedgerRepo)

	service := NewBuyInService(mockFactory, mockEngine, 5*time.Second)

	// The read shows 1000, but a concurrent credit of 50 lands before the
	// debit executes. The debit reports the balance it actually produced.
	wallet := &models.Wallet{ID: 9, UserID: 123456, CommunityID: 77, Balance: 1000}

	mockFactory.On("Create").Return(mockUoW)
	mockUoW.On("Begin", ctx).Return(nil)
	mockUoW.On("Commit").Return(nil)
	mockUoW.On("Rollback").Return(nil)

	mockTableRepo.On("GetByID", ctx, int64(1)).Return(testTable(), nil)
	mockSeatRepo.On("GetByUser", ctx, int64(1), int64(123456)).Return(nil, nil)
	mockWalletRepo.On("GetByUser", ctx, int64(123456), int64(77)).Return(wallet, nil)
	mockSeatRepo.On("Reserve", ctx, int64(1), 3, int64(123456)).Return(nil)
	mockWalletRepo.On("Debit", ctx, int64(9), int64(200)).Return(int64(850), nil)

	mockLedgerRepo.On("Record", ctx, mock.MatchedBy(func(e *models.LedgerEntry) bool {
		return e.BalanceBefore == 1050 &&
			e.BalanceAfter == 850 &&
			e.ChangeAmount == -200
	})).Return(nil)

	mockEngine.On("ProvisionPlayer", mock.Anything, mock.AnythingOfType("service.ProvisionRequest")).Return(nil)

	result, err := service.JoinTable(ctx, 123456, 1, 3, 200)

	assert.NoError(t, err)
	assert.NotNil(t, result)
	assert.Equal(t, int64(850), result.NewBalance)
	mockLedgerRepo.AssertExpectations(t)
}
