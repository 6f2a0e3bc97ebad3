package config

import (
	"errors"
	"fmt"

	"github.com/caarlos0/env/v11"
)

// EventsConfig configures campaign event delivery. It is shared by the API,
// which publishes, and the eventlog command, which consumes.
type EventsConfig struct {
	RabbitMQURL string `env:"RABBITMQ_URL"` // events are not published when empty
	LogDir      string `env:"EVENT_LOG_DIR" envDefault:"logs"`
	BufferSize  int    `env:"EVENT_BUFFER_SIZE" envDefault:"1024"` // events queued before new ones are dropped
}

func (c *EventsConfig) normalize() {
	if c.BufferSize < 1 {
		c.BufferSize = 1
	}
}

// ConsumerConfig is what the eventlog command needs. It does not require
// the API's secrets.
type ConsumerConfig struct {
	Env    string `env:"APP_ENV" envDefault:"dev"`
	Events EventsConfig
}

// LoadConsumer reads an optional .env file and then the consumer settings.
func LoadConsumer() (ConsumerConfig, error) {
	if err := loadDotEnv(); err != nil {
		return ConsumerConfig{}, err
	}
	var cfg ConsumerConfig
	if err := env.Parse(&cfg); err != nil {
		return ConsumerConfig{}, fmt.Errorf("parse env: %w", err)
	}
	if cfg.Events.RabbitMQURL == "" {
		return ConsumerConfig{}, errors.New("RABBITMQ_URL is required")
	}
	cfg.Events.normalize()
	return cfg, nil
}
