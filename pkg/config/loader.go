package config

import (
	"fmt"

	"github.com/caarlos0/env/v10"
)

// Load parses environment variables into the provided struct. Nested
// structs are walked too, which the search service relies on to group
// the Elasticsearch, Kafka and Redis settings.
//
// Example:
//
//	type Config struct {
//	    HTTPPort int    `env:"HTTP_PORT" envDefault:"8086"`
//	    Engine   string `env:"SEARCH_ENGINE" envDefault:"elasticsearch"`
//	    Kafka    KafkaConfig
//	}
func Load(cfg any) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse environment: %w", err)
	}
	return nil
}
