package infrastructure

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"cardroom/models"
	"cardroom/service"

	log "github.com/sirupsen/logrus"
)

// NATS subjects the game engine publishes on.
const (
	SubjectPlayerLeft = "engine.player.left"
	SubjectTableEmpty = "engine.table.empty"
)

// PlayerLeftMessage is the engine's notification that a player was removed
// from a table, carrying whatever stack they had left.
type PlayerLeftMessage struct {
	TableID        int64 `json:"table_id"`
	UserID         int64 `json:"user_id"`
	RemainingStack int64 `json:"remaining_stack"`
}

// TableEmptyMessage is the engine's notification that a table has no
// players left.
type TableEmptyMessage struct {
	TableID int64 `json:"table_id"`
}

// EngineListener consumes game engine notifications from NATS and routes
// them to the vacancy and table services.
type EngineListener struct {
	vacancyService service.VacancyService
	tableService   service.TableService
}

// NewEngineListener creates a new engine event listener
func NewEngineListener(vacancyService service.VacancyService, tableService service.TableService) *EngineListener {
	return &EngineListener{
		vacancyService: vacancyService,
		tableService:   tableService,
	}
}

// Start subscribes the listener to the engine subjects
func (l *EngineListener) Start(client *NATSClient) error {
	if err := client.EnsureStream("engine_events", []string{"engine.>"}, "Game engine notifications"); err != nil {
		return err
	}

	if err := client.Subscribe(SubjectPlayerLeft, l.HandlePlayerLeft); err != nil {
		return err
	}
	return client.Subscribe(SubjectTableEmpty, l.HandleTableEmpty)
}

// HandlePlayerLeft processes a player departure published by the engine.
// Redeliveries are ACKed: a seat that is already free means the first
// delivery did the work.
func (l *EngineListener) HandlePlayerLeft(data []byte) error {
	msg := &PlayerLeftMessage{}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("failed to unmarshal player left message: %w", err)
	}

	log.WithFields(log.Fields{
		"tableId":        msg.TableID,
		"userId":         msg.UserID,
		"remainingStack": msg.RemainingStack,
	}).Debug("Processing player left notification")

	err := l.vacancyService.HandlePlayerLeft(context.Background(), msg.TableID, msg.UserID, msg.RemainingStack)
	if errors.Is(err, models.ErrNotSeated) || errors.Is(err, models.ErrTableNotFound) {
		log.WithFields(log.Fields{
			"tableId": msg.TableID,
			"userId":  msg.UserID,
		}).Debug("Player left notification had no seat to free, dropping")
		return nil
	}
	return err
}

// HandleTableEmpty runs the cleanup check for a table the engine reports
// as empty.
func (l *EngineListener) HandleTableEmpty(data []byte) error {
	msg := &TableEmptyMessage{}
	if err := json.Unmarshal(data, msg); err != nil {
		return fmt.Errorf("failed to unmarshal table empty message: %w", err)
	}

	deleted, err := l.tableService.CheckCleanup(context.Background(), msg.TableID)
	if err != nil {
		return err
	}

	if deleted {
		log.WithField("tableId", msg.TableID).Info("Removed empty table after engine notification")
	}
	return nil
}
