package infrastructure

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"cardroom/events"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
)

// subjectForEvent maps a domain event type to its NATS subject.
var subjectForEvent = map[events.EventType]string{
	events.EventTypeWalletChanged:    "cardroom.wallet.changed",
	events.EventTypeSeatTaken:        "cardroom.seat.taken",
	events.EventTypeSeatFreed:        "cardroom.seat.freed",
	events.EventTypePlayerQueued:     "cardroom.queue.joined",
	events.EventTypePlayerAutoSeated: "cardroom.queue.promoted",
	events.EventTypeTableDeleted:     "cardroom.table.deleted",
}

// EventEnvelope wraps a domain event payload for the wire
type EventEnvelope struct {
	EventID       string          `json:"event_id"`
	EventType     string          `json:"event_type"`
	Timestamp     time.Time       `json:"timestamp"`
	SourceService string          `json:"source_service"`
	Payload       json.RawMessage `json:"payload"`
}

// NATSEventForwarder bridges the in-process event bus to NATS: it
// subscribes to every domain event type and republishes each event as a
// JSON envelope on the matching cardroom.> subject.
type NATSEventForwarder struct {
	natsClient *NATSClient
}

// NewNATSEventForwarder creates a new forwarder
func NewNATSEventForwarder(natsClient *NATSClient) *NATSEventForwarder {
	return &NATSEventForwarder{natsClient: natsClient}
}

// Start ensures the outbound stream exists and attaches the forwarder to
// the bus
func (f *NATSEventForwarder) Start(bus *events.Bus) error {
	subjects := make([]string, 0, len(subjectForEvent))
	for _, subject := range subjectForEvent {
		subjects = append(subjects, subject)
	}
	if err := f.natsClient.EnsureStream("cardroom_events", subjects, "Cardroom domain events"); err != nil {
		return err
	}

	for eventType := range subjectForEvent {
		bus.Subscribe(eventType, f.forward)
	}
	return nil
}

func (f *NATSEventForwarder) forward(ctx context.Context, event events.Event) {
	if err := f.publish(ctx, event); err != nil {
		log.WithFields(log.Fields{
			"eventType": event.Type(),
			"error":     err,
		}).Error("Failed to forward event to NATS")
	}
}

func (f *NATSEventForwarder) publish(ctx context.Context, event events.Event) error {
	subject, ok := subjectForEvent[event.Type()]
	if !ok {
		return fmt.Errorf("no subject mapped for event type %s", event.Type())
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event payload: %w", err)
	}

	envelope := &EventEnvelope{
		EventID:       uuid.New().String(),
		EventType:     string(event.Type()),
		Timestamp:     time.Now().UTC(),
		SourceService: "cardroom",
		Payload:       payload,
	}

	envelopeData, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to marshal event envelope: %w", err)
	}

	if err := f.natsClient.Publish(ctx, subject, envelopeData); err != nil {
		return fmt.Errorf("failed to publish event to NATS: %w", err)
	}

	log.WithFields(log.Fields{
		"eventType": event.Type(),
		"eventId":   envelope.EventID,
		"subject":   subject,
	}).Debug("Forwarded event to NATS")

	return nil
}
