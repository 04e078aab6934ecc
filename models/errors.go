package models

import "errors"

// Domain errors surfaced verbatim to callers. Resource-conflict and
// validation errors carry no local recovery; ErrEngineUnavailable is the
// one retryable case and always follows a completed compensation.
var (
	ErrTableNotFound     = errors.New("table not found")
	ErrWalletNotFound    = errors.New("wallet not found")
	ErrSeatOutOfRange    = errors.New("seat number out of range")
	ErrSeatOccupied      = errors.New("seat is already occupied")
	ErrAlreadySeated     = errors.New("user is already seated at this table")
	ErrNotSeated         = errors.New("user is not seated at this table")
	ErrInsufficientFunds = errors.New("insufficient funds")
	ErrQueueFull         = errors.New("queue is full")
	ErrAlreadyQueued     = errors.New("user is already in the queue")
	ErrNotQueued         = errors.New("user is not in the queue")
	ErrBuyInTooSmall     = errors.New("buy-in amount is below the table minimum")
	ErrEngineUnavailable = errors.New("game engine unavailable")
	ErrTableNotEmpty     = errors.New("table still has seated players")
)
