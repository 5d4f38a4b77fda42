package config

import (
	"time"

	"github.com/kelseyhightower/envconfig"
)

// Config holds all configuration for the application
type Config struct {
	// Log-search API configuration
	ScanAPI ScanAPIConfig

	// Database configuration
	Database DatabaseConfig

	// Redis configuration
	Redis RedisConfig

	// API server configuration
	API APIConfig

	// Indexer configuration
	Indexer IndexerConfig

	// Logging configuration
	Log LogConfig
}

// ScanAPIConfig holds log-search API connection settings
type ScanAPIConfig struct {
	BaseURL        string        `envconfig:"SCAN_API_URL" default:"https://api.basescan.org/api"`
	APIKey         string        `envconfig:"SCAN_API_KEY" default:""`
	RequestTimeout time.Duration `envconfig:"SCAN_API_REQUEST_TIMEOUT" default:"30s"`
	MaxRetries     int           `envconfig:"SCAN_API_MAX_RETRIES" default:"3"`
	RetryDelay     time.Duration `envconfig:"SCAN_API_RETRY_DELAY" default:"1s"`
}

// DatabaseConfig holds PostgreSQL connection settings
type DatabaseConfig struct {
	Host            string        `envconfig:"DB_HOST" default:"localhost"`
	Port            int           `envconfig:"DB_PORT" default:"5432"`
	User            string        `envconfig:"DB_USER" default:"indexer"`
	Password        string        `envconfig:"DB_PASSWORD" default:"indexer"`
	Name            string        `envconfig:"DB_NAME" default:"launch_indexer"`
	SSLMode         string        `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxOpenConns    int           `envconfig:"DB_MAX_OPEN_CONNS" default:"25"`
	MaxIdleConns    int           `envconfig:"DB_MAX_IDLE_CONNS" default:"5"`
	ConnMaxLifetime time.Duration `envconfig:"DB_CONN_MAX_LIFETIME" default:"5m"`
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string `envconfig:"REDIS_HOST" default:"localhost"`
	Port     int    `envconfig:"REDIS_PORT" default:"6379"`
	Password string `envconfig:"REDIS_PASSWORD" default:""`
	DB       int    `envconfig:"REDIS_DB" default:"0"`
}

// APIConfig holds API server settings
type APIConfig struct {
	Host            string        `envconfig:"API_HOST" default:"0.0.0.0"`
	Port            int           `envconfig:"API_PORT" default:"8081"`
	ReadTimeout     time.Duration `envconfig:"API_READ_TIMEOUT" default:"10s"`
	WriteTimeout    time.Duration `envconfig:"API_WRITE_TIMEOUT" default:"10s"`
	ShutdownTimeout time.Duration `envconfig:"API_SHUTDOWN_TIMEOUT" default:"30s"`
	RateLimitRPS    int           `envconfig:"API_RATE_LIMIT_RPS" default:"100"`
	SyncLimitRPM    int           `envconfig:"API_SYNC_LIMIT_RPM" default:"6"`
	CacheTTL        time.Duration `envconfig:"API_CACHE_TTL" default:"30s"`
}

// IndexerConfig holds sync-pipeline settings
type IndexerConfig struct {
	ChainID          int64         `envconfig:"INDEXER_CHAIN_ID" default:"8453"`
	MetricsPort      int           `envconfig:"INDEXER_METRICS_PORT" default:"8080"`
	CycleInterval    time.Duration `envconfig:"INDEXER_CYCLE_INTERVAL" default:"10s"`
	CycleTimeout     time.Duration `envconfig:"INDEXER_CYCLE_TIMEOUT" default:"2m"`
	StartBlock       int64         `envconfig:"INDEXER_START_BLOCK" default:"0"`
	StepSize         int64         `envconfig:"INDEXER_STEP_SIZE" default:"5000"`
	Confirmations    int64         `envconfig:"INDEXER_CONFIRMATIONS" default:"20"`
	DrainBatchSize   int           `envconfig:"INDEXER_DRAIN_BATCH_SIZE" default:"500"`
	FetchConcurrency int           `envconfig:"INDEXER_FETCH_CONCURRENCY" default:"5"`

	// Factory contract emitting the watched events (optional filter)
	ContractAddress string `envconfig:"INDEXER_CONTRACT_ADDRESS" default:""`
}

// LogConfig holds logging settings
type LogConfig struct {
	Level  string `envconfig:"LOG_LEVEL" default:"info"`
	Format string `envconfig:"LOG_FORMAT" default:"json"`
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
