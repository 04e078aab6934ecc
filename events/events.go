package events

import (
	"context"
	"sync"

	"cardroom/models"
	log "github.com/sirupsen/logrus"
)

// EventType represents different types of events in the system
type EventType string

const (
	EventTypeWalletChanged    EventType = "wallet_changed"
	EventTypeSeatTaken        EventType = "seat_taken"
	EventTypeSeatFreed        EventType = "seat_freed"
	EventTypePlayerQueued     EventType = "player_queued"
	EventTypePlayerAutoSeated EventType = "player_auto_seated"
	EventTypeTableDeleted     EventType = "table_deleted"
)

// Event is the base interface for all events
type Event interface {
	Type() EventType
}

// WalletChangedEvent represents a wallet balance change that occurred
type WalletChangedEvent struct {
	UserID       int64
	CommunityID  int64
	OldBalance   int64
	NewBalance   int64
	EntryType    models.EntryType
	ChangeAmount int64
}

func (e WalletChangedEvent) Type() EventType {
	return EventTypeWalletChanged
}

// SeatTakenEvent represents a seat becoming occupied
type SeatTakenEvent struct {
	TableID    int64
	SeatNumber int
	UserID     int64
	BuyIn      int64
}

func (e SeatTakenEvent) Type() EventType {
	return EventTypeSeatTaken
}

// SeatFreedEvent represents a seat becoming vacant
type SeatFreedEvent struct {
	TableID    int64
	SeatNumber int
	UserID     int64
}

func (e SeatFreedEvent) Type() EventType {
	return EventTypeSeatFreed
}

// PlayerQueuedEvent represents a user joining a table's wait queue
type PlayerQueuedEvent struct {
	TableID  int64
	UserID   int64
	Position int
}

func (e PlayerQueuedEvent) Type() EventType {
	return EventTypePlayerQueued
}

// PlayerAutoSeatedEvent represents a queued user promoted into a freed seat
type PlayerAutoSeatedEvent struct {
	TableID    int64
	SeatNumber int
	UserID     int64
	BuyIn      int64
}

func (e PlayerAutoSeatedEvent) Type() EventType {
	return EventTypePlayerAutoSeated
}

// TableDeletedEvent represents a table removed by the cleanup check
type TableDeletedEvent struct {
	TableID     int64
	CommunityID int64
	Name        string
}

func (e TableDeletedEvent) Type() EventType {
	return EventTypeTableDeleted
}

// Handler is a function that handles events
type Handler func(ctx context.Context, event Event)

// Bus manages event subscriptions and dispatching
type Bus struct {
	mu       sync.RWMutex
	handlers map[EventType][]Handler
}

// NewBus creates a new event bus
func NewBus() *Bus {
	return &Bus{
		handlers: make(map[EventType][]Handler),
	}
}

// Subscribe adds a handler for a specific event type
func (b *Bus) Subscribe(eventType EventType, handler Handler) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.handlers[eventType] = append(b.handlers[eventType], handler)

	log.WithFields(log.Fields{
		"eventType":    eventType,
		"handlerCount": len(b.handlers[eventType]),
	}).Debug("Subscribed handler to event type")
}

// Emit publishes an event to all registered handlers
func (b *Bus) Emit(ctx context.Context, event Event) {
	b.mu.RLock()
	handlers := make([]Handler, len(b.handlers[event.Type()]))
	copy(handlers, b.handlers[event.Type()])
	b.mu.RUnlock()

	// Call handlers asynchronously to avoid blocking
	for i, handler := range handlers {
		go func(h Handler, handlerIndex int) {
			defer func() {
				if r := recover(); r != nil {
					log.WithFields(log.Fields{
						"eventType":    event.Type(),
						"handlerIndex": handlerIndex,
						"panic":        r,
					}).Error("Event handler panicked")
				}
			}()
			h(ctx, event)
		}(handler, i)
	}
}

// TransactionalBus stashes events published during a unit of work and only
// forwards them to the real bus after the transaction commits.
type TransactionalBus struct {
	real    *Bus
	pending []Event
}

func NewTransactionalBus(real *Bus) *TransactionalBus {
	return &TransactionalBus{real: real}
}

func (b *TransactionalBus) Publish(e Event) {
	b.pending = append(b.pending, e)
}

// Flush is called after a successful DB commit.
func (b *TransactionalBus) Flush(ctx context.Context) error {
	// Events outlive the transaction context that produced them.
	eventCtx := context.Background()

	for _, ev := range b.pending {
		b.real.Emit(eventCtx, ev)
	}
	b.pending = nil
	return nil
}

// Discard drops pending events after a rollback.
func (b *TransactionalBus) Discard() {
	b.pending = nil
}
