package config

import (
	"fmt"
	"os"
	"strconv"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// HTTP server configuration
	HTTPAddr string

	// Database configuration
	DatabaseURL string

	// NATS configuration
	NATSServers string

	// Game engine configuration
	EngineURL     string
	EngineTimeout time.Duration // hard timeout on the provision-player call

	// Wallet configuration
	StartingBalance int64 // balance granted when a wallet is first created

	// Table configuration defaults
	DefaultMaxQueueSize int

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
)

// Get returns the global configuration instance
func Get() *Config {
	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			panic(fmt.Sprintf("failed to load config: %v", err))
		}
	})
	return instance
}

// load loads configuration from environment variables
func load() (*Config, error) {
	// Missing .env is fine, the environment may carry everything already
	_ = godotenv.Load()

	config := &Config{
		HTTPAddr:    os.Getenv("HTTP_ADDR"),
		DatabaseURL: os.Getenv("DATABASE_URL"),
		NATSServers: os.Getenv("NATS_URL"),
		EngineURL:   os.Getenv("GAME_ENGINE_URL"),

		// Defaults
		EngineTimeout:       10 * time.Second,
		StartingBalance:     1000,
		DefaultMaxQueueSize: 10,

		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if timeout := os.Getenv("GAME_ENGINE_TIMEOUT_SECONDS"); timeout != "" {
		if parsed, err := strconv.Atoi(timeout); err == nil && parsed > 0 {
			config.EngineTimeout = time.Duration(parsed) * time.Second
		}
	}
	if balance := os.Getenv("STARTING_BALANCE"); balance != "" {
		if parsedBalance, err := strconv.ParseInt(balance, 10, 64); err == nil {
			config.StartingBalance = parsedBalance
		}
	}
	if queueSize := os.Getenv("DEFAULT_MAX_QUEUE_SIZE"); queueSize != "" {
		if parsed, err := strconv.Atoi(queueSize); err == nil && parsed >= 0 {
			config.DefaultMaxQueueSize = parsed
		}
	}

	if config.HTTPAddr == "" {
		config.HTTPAddr = ":8080"
	}
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		// Validate required configuration
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
		if config.EngineURL == "" {
			return nil, fmt.Errorf("GAME_ENGINE_URL is required")
		}
	}

	return config, nil
}
