package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"cardroom/models"

	"github.com/stretchr/testify/assert"
)

func TestTransactionalBusFlush(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	eventReceived := make(chan WalletChangedEvent, 1)
	var wg sync.WaitGroup
	wg.Add(1)

	mainBus.Subscribe(EventTypeWalletChanged, func(ctx context.Context, event Event) {
		defer wg.Done()
		if walletEvent, ok := event.(WalletChangedEvent); ok {
			select {
			case eventReceived <- walletEvent:
			case <-time.After(1 * time.Second):
				t.Error("Timeout sending event to channel")
			}
		} else {
			t.Errorf("Expected WalletChangedEvent, got %T", event)
		}
	})

	testEvent := WalletChangedEvent{
		UserID:       42,
		CommunityID:  7,
		OldBalance:   1000,
		NewBalance:   500,
		EntryType:    models.EntryTypeBuyIn,
		ChangeAmount: -500,
	}

	transactionalBus.Publish(testEvent)

	err := transactionalBus.Flush(context.Background())
	assert.NoError(t, err)

	wg.Wait()

	select {
	case receivedEvent := <-eventReceived:
		assert.Equal(t, testEvent, receivedEvent)
	case <-time.After(2 * time.Second):
		t.Fatal("Event was not received within timeout")
	}
}

func TestTransactionalBusDiscard(t *testing.T) {
	mainBus := NewBus()
	transactionalBus := NewTransactionalBus(mainBus)

	delivered := make(chan Event, 1)
	mainBus.Subscribe(EventTypeSeatTaken, func(ctx context.Context, event Event) {
		delivered <- event
	})

	transactionalBus.Publish(SeatTakenEvent{TableID: 1, SeatNumber: 3, UserID: 42, BuyIn: 500})
	transactionalBus.Discard()

	err := transactionalBus.Flush(context.Background())
	assert.NoError(t, err)

	select {
	case <-delivered:
		t.Fatal("Discarded event must not be delivered")
	case <-time.After(200 * time.Millisecond):
	}
}

func TestBusDeliversToAllHandlers(t *testing.T) {
	bus := NewBus()

	var wg sync.WaitGroup
	wg.Add(2)
	var mu sync.Mutex
	calls := 0

	for i := 0; i < 2; i++ {
		bus.Subscribe(EventTypeSeatFreed, func(ctx context.Context, event Event) {
			defer wg.Done()
			mu.Lock()
			calls++
			mu.Unlock()
		})
	}

	bus.Emit(context.Background(), SeatFreedEvent{TableID: 1, SeatNumber: 2, UserID: 9})
	wg.Wait()

	mu.Lock()
	defer mu.Unlock()
	assert.Equal(t, 2, calls)
}
