package api

import (
	"net/http"
	"strconv"

	"cardroom/models"

	"github.com/labstack/echo/v4"
)

func tableIDParam(c echo.Context) (int64, error) {
	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil || id <= 0 {
		return 0, echo.NewHTTPError(http.StatusBadRequest, "invalid table id")
	}
	return id, nil
}

type createTableRequest struct {
	CommunityID  int64  `json:"community_id"`
	Name         string `json:"name"`
	MaxSeats     int    `json:"max_seats"`
	MinBuyIn     int64  `json:"min_buy_in"`
	MaxQueueSize *int   `json:"max_queue_size"`
	Permanent    bool   `json:"permanent"`
	CreatedBy    int64  `json:"created_by"`
}

func (s *Server) createTable(c echo.Context) error {
	var req createTableRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}

	params := models.TableParams{
		CommunityID:  req.CommunityID,
		Name:         req.Name,
		MaxSeats:     req.MaxSeats,
		MinBuyIn:     req.MinBuyIn,
		MaxQueueSize: -1, // service default unless given explicitly
		Permanent:    req.Permanent,
		CreatedBy:    req.CreatedBy,
	}
	if req.MaxQueueSize != nil {
		params.MaxQueueSize = *req.MaxQueueSize
	}

	table, err := s.tableService.CreateTable(c.Request().Context(), params)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusCreated, table)
}

func (s *Server) getTable(c echo.Context) error {
	tableID, err := tableIDParam(c)
	if err != nil {
		return err
	}

	table, err := s.tableService.GetTable(c.Request().Context(), tableID)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, table)
}

func (s *Server) deleteTable(c echo.Context) error {
	tableID, err := tableIDParam(c)
	if err != nil {
		return err
	}

	if err := s.tableService.DeleteTable(c.Request().Context(), tableID); err != nil {
		return errorJSON(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) getSeats(c echo.Context) error {
	tableID, err := tableIDParam(c)
	if err != nil {
		return err
	}

	seats, err := s.tableService.GetSeats(c.Request().Context(), tableID)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, seats)
}

type joinTableRequest struct {
	UserID     int64 `json:"user_id"`
	SeatNumber int   `json:"seat_number"`
	BuyIn      int64 `json:"buy_in"`
}

func (s *Server) joinTable(c echo.Context) error {
	tableID, err := tableIDParam(c)
	if err != nil {
		return err
	}

	var req joinTableRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.UserID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id is required"})
	}

	result, err := s.buyInService.JoinTable(c.Request().Context(), req.UserID, tableID, req.SeatNumber, req.BuyIn)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, result)
}

type leaveTableRequest struct {
	UserID int64 `json:"user_id"`
}

func (s *Server) leaveTable(c echo.Context) error {
	tableID, err := tableIDParam(c)
	if err != nil {
		return err
	}

	var req leaveTableRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.UserID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id is required"})
	}

	if err := s.vacancyService.LeaveTable(c.Request().Context(), tableID, req.UserID); err != nil {
		return errorJSON(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func (s *Server) getQueue(c echo.Context) error {
	tableID, err := tableIDParam(c)
	if err != nil {
		return err
	}

	queue, err := s.queueService.GetQueue(c.Request().Context(), tableID)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, queue)
}

type queueRequest struct {
	UserID int64 `json:"user_id"`
}

func (s *Server) joinQueue(c echo.Context) error {
	tableID, err := tableIDParam(c)
	if err != nil {
		return err
	}

	var req queueRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.UserID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id is required"})
	}

	entry, err := s.queueService.JoinQueue(c.Request().Context(), req.UserID, tableID)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusCreated, entry)
}

func (s *Server) leaveQueue(c echo.Context) error {
	tableID, err := tableIDParam(c)
	if err != nil {
		return err
	}

	var req queueRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.UserID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id is required"})
	}

	if err := s.queueService.LeaveQueue(c.Request().Context(), req.UserID, tableID); err != nil {
		return errorJSON(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

type createWalletRequest struct {
	UserID      int64 `json:"user_id"`
	CommunityID int64 `json:"community_id"`
}

func (s *Server) createWallet(c echo.Context) error {
	var req createWalletRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.UserID <= 0 || req.CommunityID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id and community_id are required"})
	}

	wallet, err := s.walletService.CreateWallet(c.Request().Context(), req.UserID, req.CommunityID)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusCreated, wallet)
}

func (s *Server) getBalance(c echo.Context) error {
	userID, err := strconv.ParseInt(c.QueryParam("user_id"), 10, 64)
	if err != nil || userID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "user_id is required"})
	}
	communityID, err := strconv.ParseInt(c.QueryParam("community_id"), 10, 64)
	if err != nil || communityID <= 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "community_id is required"})
	}

	balance, err := s.walletService.GetBalance(c.Request().Context(), userID, communityID)
	if err != nil {
		return errorJSON(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{
		"user_id":      userID,
		"community_id": communityID,
		"balance":      balance,
	})
}
