// Package config loads service configuration from the environment.
package config

import (
	"fmt"
	"time"

	"github.com/LuuGiaPhu/tech-haven-ecommerce-sub000/pkg/config"
)

// Engine backends.
const (
	EngineElasticsearch = "elasticsearch"
	EngineMemory        = "memory"
)

// Config is the full runtime configuration of the search service.
type Config struct {
	ServiceName string `env:"SERVICE_NAME" envDefault:"search"`
	HTTPPort    int    `env:"HTTP_PORT" envDefault:"8086"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`

	// Engine selects the search backend. The memory engine exists for
	// local development without an Elasticsearch cluster.
	Engine string `env:"SEARCH_ENGINE" envDefault:"elasticsearch"`

	Elasticsearch ElasticsearchConfig
	Catalog       CatalogConfig
	Kafka         KafkaConfig
	Redis         RedisConfig
	CORS          CORSConfig

	// SyncChunkSize is how many documents go into one bulk request
	// during a full resync.
	SyncChunkSize int `env:"SYNC_CHUNK_SIZE" envDefault:"500"`

	ShutdownTimeout time.Duration `env:"SHUTDOWN_TIMEOUT" envDefault:"15s"`
}

// ElasticsearchConfig configures the Elasticsearch backend. Either
// Addresses with optional basic auth, or CloudID with an API key.
type ElasticsearchConfig struct {
	Addresses     []string `env:"ELASTICSEARCH_URL" envSeparator:"," envDefault:"http://localhost:9200"`
	Username      string   `env:"ELASTICSEARCH_USERNAME"`
	Password      string   `env:"ELASTICSEARCH_PASSWORD"`
	CloudID       string   `env:"ELASTIC_CLOUD_ID"`
	APIKey        string   `env:"ELASTIC_API_KEY"`
	DiscoverNodes bool     `env:"ELASTICSEARCH_DISCOVER_NODES" envDefault:"false"`
	IndexName     string   `env:"SEARCH_INDEX_NAME" envDefault:"products"`

	// BulkRefresh forces an index refresh after bulk writes so a resync
	// is immediately searchable. Disable for very large catalogs where
	// the per-request refresh cost matters.
	BulkRefresh bool `env:"SEARCH_BULK_REFRESH" envDefault:"true"`
}

// CatalogConfig configures the primary product store.
type CatalogConfig struct {
	ProjectID  string `env:"FIRESTORE_PROJECT_ID"`
	Collection string `env:"FIRESTORE_COLLECTION" envDefault:"products"`

	// Watch enables the change feed subscription that mirrors catalog
	// writes into the index in near real time.
	Watch bool `env:"CATALOG_WATCH" envDefault:"true"`
}

// Enabled reports whether a catalog connection is configured.
func (c CatalogConfig) Enabled() bool { return c.ProjectID != "" }

// KafkaConfig configures the product event consumers. Empty brokers
// disable the event ingest path.
type KafkaConfig struct {
	Brokers []string `env:"KAFKA_BROKERS" envSeparator:","`
	GroupID string   `env:"KAFKA_GROUP_ID" envDefault:"search-service"`
}

// Enabled reports whether event consumption is configured.
func (c KafkaConfig) Enabled() bool { return len(c.Brokers) > 0 }

// RedisConfig configures the optional result cache.
type RedisConfig struct {
	Addr     string        `env:"REDIS_ADDR"`
	Password string        `env:"REDIS_PASSWORD"`
	DB       int           `env:"REDIS_DB" envDefault:"0"`
	TTL      time.Duration `env:"REDIS_TTL" envDefault:"5m"`
}

// Enabled reports whether caching is configured.
func (c RedisConfig) Enabled() bool { return c.Addr != "" }

// CORSConfig configures cross-origin access for storefront clients.
type CORSConfig struct {
	AllowedOrigins []string `env:"CORS_ALLOWED_ORIGINS" envSeparator:"," envDefault:"*"`
}

// Load reads configuration from the environment and validates it.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := config.Load(cfg); err != nil {
		return nil, fmt.Errorf("parse environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.HTTPPort <= 0 || c.HTTPPort > 65535 {
		return fmt.Errorf("HTTP_PORT must be between 1 and 65535, got %d", c.HTTPPort)
	}
	if c.Engine != EngineElasticsearch && c.Engine != EngineMemory {
		return fmt.Errorf("SEARCH_ENGINE must be %q or %q, got %q", EngineElasticsearch, EngineMemory, c.Engine)
	}
	if c.SyncChunkSize <= 0 {
		return fmt.Errorf("SYNC_CHUNK_SIZE must be positive, got %d", c.SyncChunkSize)
	}
	if c.Engine == EngineElasticsearch {
		if len(c.Elasticsearch.Addresses) == 0 && c.Elasticsearch.CloudID == "" {
			return fmt.Errorf("ELASTICSEARCH_URL or ELASTIC_CLOUD_ID is required")
		}
		if c.Elasticsearch.CloudID != "" && c.Elasticsearch.APIKey == "" {
			return fmt.Errorf("ELASTIC_API_KEY is required with ELASTIC_CLOUD_ID")
		}
	}
	return nil
}
