package api

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"cardroom/models"
	"cardroom/service"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
)

type serverFixture struct {
	server  *Server
	buyIn   *service.MockBuyInService
	vacancy *service.MockVacancyService
	queue   *service.MockQueueService
	tables  *service.MockTableService
	wallets *service.MockWalletService
}

func newServerFixture() *serverFixture {
	f := &serverFixture{
		buyIn:   new(service.MockBuyInService),
		vacancy: new(service.MockVacancyService),
		queue:   new(service.MockQueueService),
		tables:  new(service.MockTableService),
		wallets: new(service.MockWalletService),
	}
	f.server = NewServer(f.buyIn, f.vacancy, f.queue, f.tables, f.wallets)
	return f
}

func (f *serverFixture) do(method, path, body string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, path, strings.NewReader(body))
		req.Header.Set(echoContentType, echoJSONType)
	} else {
		req = httptest.NewRequest(method, path, nil)
	}
	rec := httptest.NewRecorder()
	f.server.echo.ServeHTTP(rec, req)
	return rec
}

const (
	echoContentType = "Content-Type"
	echoJSONType    = "application/json"
)

func TestJoinTable_Success(t *testing.T) {
	f := newServerFixture()

	f.buyIn.On("JoinTable", mock.Anything, int64(123456), int64(1), 3, int64(200)).Return(&models.BuyInResult{
		TableID:    1,
		SeatNumber: 3,
		UserID:     123456,
		BuyIn:      200,
		NewBalance: 800,
	}, nil)

	rec := f.do(http.MethodPost, "/v1/tables/1/join", `{"user_id":123456,"seat_number":3,"buy_in":200}`)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"new_balance":800`)
	f.buyIn.AssertExpectations(t)
}

func TestJoinTable_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
	}{
		{"table not found", models.ErrTableNotFound, http.StatusNotFound},
		{"seat out of range", models.ErrSeatOutOfRange, http.StatusBadRequest},
		{"seat occupied", models.ErrSeatOccupied, http.StatusConflict},
		{"already seated", models.ErrAlreadySeated, http.StatusConflict},
		{"insufficient funds", models.ErrInsufficientFunds, http.StatusConflict},
		{"engine unavailable", models.ErrEngineUnavailable, http.StatusServiceUnavailable},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := newServerFixture()
			f.buyIn.On("JoinTable", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything).
				Return(nil, tc.err)

			rec := f.do(http.MethodPost, "/v1/tables/1/join", `{"user_id":123456,"seat_number":3,"buy_in":200}`)
			assert.Equal(t, tc.status, rec.Code)
		})
	}
}

func TestJoinTable_BadRequest(t *testing.T) {
	f := newServerFixture()

	rec := f.do(http.MethodPost, "/v1/tables/abc/join", `{"user_id":123456}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = f.do(http.MethodPost, "/v1/tables/1/join", `{"seat_number":3,"buy_in":200}`)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	f.buyIn.AssertNotCalled(t, "JoinTable", mock.Anything, mock.Anything, mock.Anything, mock.Anything, mock.Anything)
}

func TestLeaveTable(t *testing.T) {
	f := newServerFixture()

	f.vacancy.On("LeaveTable", mock.Anything, int64(1), int64(123456)).Return(nil)

	rec := f.do(http.MethodPost, "/v1/tables/1/leave", `{"user_id":123456}`)

	assert.Equal(t, http.StatusNoContent, rec.Code)
	f.vacancy.AssertExpectations(t)
}

func TestQueueEndpoints(t *testing.T) {
	f := newServerFixture()

	f.queue.On("JoinQueue", mock.Anything, int64(123456), int64(1)).Return(&models.QueueEntry{
		TableID: 1, UserID: 123456, Position: 2,
	}, nil)
	f.queue.On("GetQueue", mock.Anything, int64(1)).Return([]*models.QueueEntry{
		{TableID: 1, UserID: 111, Position: 1},
		{TableID: 1, UserID: 123456, Position: 2},
	}, nil)
	f.queue.On("LeaveQueue", mock.Anything, int64(123456), int64(1)).Return(nil)

	rec := f.do(http.MethodPost, "/v1/tables/1/queue", `{"user_id":123456}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"position":2`)

	rec = f.do(http.MethodGet, "/v1/tables/1/queue", "")
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = f.do(http.MethodDelete, "/v1/tables/1/queue", `{"user_id":123456}`)
	assert.Equal(t, http.StatusNoContent, rec.Code)

	f.queue.AssertExpectations(t)
}

func TestQueueFullConflict(t *testing.T) {
	f := newServerFixture()

	f.queue.On("JoinQueue", mock.Anything, int64(123456), int64(1)).Return(nil, models.ErrQueueFull)

	rec := f.do(http.MethodPost, "/v1/tables/1/queue", `{"user_id":123456}`)
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestCreateAndDeleteTable(t *testing.T) {
	f := newServerFixture()

	f.tables.On("CreateTable", mock.Anything, mock.MatchedBy(func(p models.TableParams) bool {
		return p.CommunityID == 77 && p.MaxSeats == 6 && p.MinBuyIn == 100 && p.MaxQueueSize == -1
	})).Return(&models.Table{ID: 42, CommunityID: 77, MaxSeats: 6, MinBuyIn: 100}, nil)
	f.tables.On("DeleteTable", mock.Anything, int64(42)).Return(models.ErrTableNotEmpty)

	rec := f.do(http.MethodPost, "/v1/tables", `{"community_id":77,"name":"t","max_seats":6,"min_buy_in":100,"created_by":1}`)
	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Contains(t, rec.Body.String(), `"id":42`)

	rec = f.do(http.MethodDelete, "/v1/tables/42", "")
	assert.Equal(t, http.StatusConflict, rec.Code)
}

func TestWalletEndpoints(t *testing.T) {
	f := newServerFixture()

	f.wallets.On("CreateWallet", mock.Anything, int64(123456), int64(77)).Return(&models.Wallet{
		ID: 9, UserID: 123456, CommunityID: 77, Balance: 1000,
	}, nil)
	f.wallets.On("GetBalance", mock.Anything, int64(123456), int64(77)).Return(int64(1000), nil)

	rec := f.do(http.MethodPost, "/v1/wallets", `{"user_id":123456,"community_id":77}`)
	assert.Equal(t, http.StatusCreated, rec.Code)

	rec = f.do(http.MethodGet, "/v1/wallets/balance?user_id=123456&community_id=77", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `"balance":1000`)
}
