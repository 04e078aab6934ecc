package api

import (
	"context"
	"errors"
	"net/http"

	"cardroom/models"
	"cardroom/service"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	log "github.com/sirupsen/logrus"
)

// Server exposes the cardroom operations over HTTP
type Server struct {
	echo           *echo.Echo
	buyInService   service.BuyInService
	vacancyService service.VacancyService
	queueService   service.QueueService
	tableService   service.TableService
	walletService  service.WalletService
}

// NewServer creates the HTTP server and registers all routes
func NewServer(
	buyInService service.BuyInService,
	vacancyService service.VacancyService,
	queueService service.QueueService,
	tableService service.TableService,
	walletService service.WalletService,
) *Server {
	e := echo.New()
	e.HideBanner = true
	e.Use(middleware.Recover())

	s := &Server{
		echo:           e,
		buyInService:   buyInService,
		vacancyService: vacancyService,
		queueService:   queueService,
		tableService:   tableService,
		walletService:  walletService,
	}
	s.registerRoutes()
	return s
}

func (s *Server) registerRoutes() {
	v1 := s.echo.Group("/v1")

	v1.GET("/health", s.health)

	v1.POST("/tables", s.createTable)
	v1.GET("/tables/:id", s.getTable)
	v1.DELETE("/tables/:id", s.deleteTable)
	v1.GET("/tables/:id/seats", s.getSeats)

	v1.POST("/tables/:id/join", s.joinTable)
	v1.POST("/tables/:id/leave", s.leaveTable)

	v1.GET("/tables/:id/queue", s.getQueue)
	v1.POST("/tables/:id/queue", s.joinQueue)
	v1.DELETE("/tables/:id/queue", s.leaveQueue)

	v1.POST("/wallets", s.createWallet)
	v1.GET("/wallets/balance", s.getBalance)
}

// Start begins serving on the given address, blocking until shutdown
func (s *Server) Start(addr string) error {
	log.WithField("addr", addr).Info("Starting HTTP server")
	err := s.echo.Start(addr)
	if errors.Is(err, http.ErrServerClosed) {
		return nil
	}
	return err
}

// Shutdown stops the server gracefully
func (s *Server) Shutdown(ctx context.Context) error {
	return s.echo.Shutdown(ctx)
}

// statusFor maps domain errors to HTTP status codes
func statusFor(err error) int {
	switch {
	case errors.Is(err, models.ErrTableNotFound),
		errors.Is(err, models.ErrWalletNotFound):
		return http.StatusNotFound
	case errors.Is(err, models.ErrSeatOutOfRange),
		errors.Is(err, models.ErrBuyInTooSmall):
		return http.StatusBadRequest
	case errors.Is(err, models.ErrSeatOccupied),
		errors.Is(err, models.ErrAlreadySeated),
		errors.Is(err, models.ErrNotSeated),
		errors.Is(err, models.ErrQueueFull),
		errors.Is(err, models.ErrAlreadyQueued),
		errors.Is(err, models.ErrNotQueued),
		errors.Is(err, models.ErrInsufficientFunds),
		errors.Is(err, models.ErrTableNotEmpty):
		return http.StatusConflict
	case errors.Is(err, models.ErrEngineUnavailable):
		return http.StatusServiceUnavailable
	default:
		return http.StatusInternalServerError
	}
}

func errorJSON(c echo.Context, err error) error {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		log.WithError(err).Error("Request failed")
		return c.JSON(status, echo.Map{"error": "internal error"})
	}
	return c.JSON(status, echo.Map{"error": err.Error()})
}

func (s *Server) health(c echo.Context) error {
	return c.JSON(http.StatusOK, echo.Map{"status": "ok"})
}
