package cmd

import (
	"context"
	"fmt"
	"time"

	"cardroom/api"
	"cardroom/config"
	"cardroom/database"
	"cardroom/engine"
	"cardroom/events"
	"cardroom/infrastructure"
	"cardroom/repository"
	"cardroom/service"

	log "github.com/sirupsen/logrus"
)

// Run initializes and starts the application
func Run(ctx context.Context) error {
	log.Info("Starting cardroom service...")

	cfg := config.Get()

	log.Info("Connecting to database...")
	db, err := database.NewConnection(ctx, cfg.DatabaseURL)
	if err != nil {
		return fmt.Errorf("failed to connect to database: %w", err)
	}
	defer db.Close()

	eventBus := events.NewBus()
	uowFactory := repository.NewUnitOfWorkFactory(db, eventBus)

	engineClient := engine.NewClient(cfg.EngineURL, cfg.EngineTimeout)

	walletService := service.NewWalletService(uowFactory, cfg.StartingBalance)
	tableService := service.NewTableService(uowFactory, cfg.DefaultMaxQueueSize)
	buyInService := service.NewBuyInService(uowFactory, engineClient, cfg.EngineTimeout)
	queueService := service.NewQueueService(uowFactory)
	vacancyService := service.NewVacancyService(uowFactory, engineClient, cfg.EngineTimeout, buyInService, tableService)

	log.Info("Connecting to NATS...")
	natsClient := infrastructure.NewNATSClient(cfg.NATSServers)
	if err := natsClient.Connect(ctx); err != nil {
		return fmt.Errorf("failed to connect to NATS: %w", err)
	}
	defer natsClient.Close()

	forwarder := infrastructure.NewNATSEventForwarder(natsClient)
	if err := forwarder.Start(eventBus); err != nil {
		return fmt.Errorf("failed to start event forwarder: %w", err)
	}

	listener := infrastructure.NewEngineListener(vacancyService, tableService)
	if err := listener.Start(natsClient); err != nil {
		return fmt.Errorf("failed to start engine listener: %w", err)
	}

	server := api.NewServer(buyInService, vacancyService, queueService, tableService, walletService)
	serverErr := make(chan error, 1)
	go func() {
		serverErr <- server.Start(cfg.HTTPAddr)
	}()

	log.WithFields(log.Fields{
		"environment": cfg.Environment,
		"addr":        cfg.HTTPAddr,
	}).Info("Cardroom service is running")

	select {
	case err := <-serverErr:
		if err != nil {
			return fmt.Errorf("HTTP server failed: %w", err)
		}
	case <-ctx.Done():
	}

	log.Info("Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.WithError(err).Error("Error shutting down HTTP server")
	}

	log.Info("Shutdown completed")
	return nil
}
