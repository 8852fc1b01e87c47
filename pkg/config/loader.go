package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load parses environment variables into cfg, which must be a pointer to a
// struct with `env` tags. Defaults come from `envDefault`, list values split
// on `envSeparator`.
//
// Example:
//
//	type Config struct {
//	    HTTPPort     int      `env:"HTTP_PORT" envDefault:"8080"`
//	    KafkaBrokers []string `env:"KAFKA_BROKERS" envSeparator:","`
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse config: %w", err)
	}
	return nil
}
