// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"log"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds every knob the binaries read from the environment.
type Config struct {
	HTTPPort string `env:"HTTP_PORT" envDefault:"8080"`

	// Mode selects the backing services: "dynamodb" for AWS, "memory" for a
	// self-contained local run with an in-process store and websocket hub.
	Mode string `env:"STORAGE_MODE" envDefault:"dynamodb"`

	ParticipantsTable  string `env:"DYNAMODB_PARTICIPANTS_TABLE_NAME"`
	ReferralCodesTable string `env:"DYNAMODB_REFERRAL_CODES_TABLE_NAME"`
	PurchasesTable     string `env:"DYNAMODB_PURCHASES_TABLE_NAME"`
	LedgerTable        string `env:"DYNAMODB_LEDGER_TABLE_NAME"`
	ConnectionsTable   string `env:"DYNAMODB_CONNECTIONS_TABLE_NAME"`

	EarningEventsQueueURL string `env:"SQS_EARNING_EVENTS_QUEUE_URL"`
	WebsocketAPIEndpoint  string `env:"WEBSOCKET_API_ENDPOINT"`
}

// Load reads the optional .env file and parses the environment into a Config.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	return cfg, nil
}

// RequireDynamoDB validates the table names needed by the DynamoDB mode.
func (c *Config) RequireDynamoDB() error {
	if c.ParticipantsTable == "" || c.ReferralCodesTable == "" ||
		c.PurchasesTable == "" || c.LedgerTable == "" {
		return fmt.Errorf("one or more DynamoDB table name environment variables are not set")
	}
	return nil
}
