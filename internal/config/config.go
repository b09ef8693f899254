// Package config provides configuration structures and validation for the
// banking portal engine. It covers the HTTP server, the PostgreSQL money store,
// the MongoDB activity-log store, event publishing, the verification-code gate,
// and the retention sweeper.
package config

import (
	"errors"
	"strings"
	"time"
)

// Config holds the complete application configuration. Each field represents a
// major subsystem and is validated during startup.
type Config struct {
	Application  ApplicationConfig
	Logging      LoggingConfig
	Server       ServerConfig
	Postgres     PostgresConfig
	MongoDB      MongoDBConfig
	Kafka        KafkaConfig
	Verification VerificationConfig
	Sweeper      SweeperConfig
	ActivityLog  ActivityLogConfig
}

// ApplicationConfig contains general application configuration
type ApplicationConfig struct {
	Env  string
	Name string
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level string
}

// ServerConfig contains HTTP server configuration settings
type ServerConfig struct {
	Port            int           // Port to listen on
	ShutdownTimeout time.Duration // Grace period for server shutdown
	ReadTimeout     time.Duration // Maximum duration for reading entire request
	WriteTimeout    time.Duration // Maximum duration for writing response
	IdleTimeout     time.Duration // Maximum duration to wait for next request
}

// PostgresConfig contains PostgreSQL configuration
type PostgresConfig struct {
	URL             string        // Database connection string
	MaxConns        int32         // Maximum number of open connections
	MinConns        int32         // Minimum number of idle connections
	ConnMaxLifetime time.Duration // Maximum lifetime of a connection
	ConnMaxIdleTime time.Duration // Maximum idle time of a connection
	MigrationsPath  string        // Path to migration files
}

// MongoDBConfig contains MongoDB configuration for the activity-log store
type MongoDBConfig struct {
	URI             string
	Database        string
	Timeout         time.Duration
	MaxPoolSize     uint64
	MinPoolSize     uint64
	MaxConnIdleTime time.Duration
}

// KafkaConfig contains configuration for the operation-event publisher
type KafkaConfig struct {
	Brokers           string
	OperationTopic    string
	NumPartitions     int
	ReplicationFactor int
	WriteTimeout      time.Duration
}

// VerificationConfig contains settings for the one-time verification-code gate
// that guards destructive bulk operations.
type VerificationConfig struct {
	CodeTTL     time.Duration // How long an issued code stays valid
	MaxAttempts int           // Failed attempts allowed before a code is voided
}

// SweeperConfig contains retention sweeper settings
type SweeperConfig struct {
	Interval          time.Duration // How often the sweeper runs
	AccountRetention  time.Duration // How long closed accounts are kept before purge
	ActivityRetention time.Duration // How long activity-log entries are kept
}

// ActivityLogConfig contains settings for the background activity-log writer
type ActivityLogConfig struct {
	PoolSize     int           // Worker pool size for best-effort log writes
	WriteTimeout time.Duration // Per-write timeout for the background writer
}

// validate performs validation of all configuration values, ensuring they meet
// minimum requirements and logical constraints
func (c *Config) validate() error {
	var validationErrors []string

	if c.Server.Port <= 0 {
		validationErrors = append(validationErrors, "SERVER_PORT must be greater than 0")
	}
	if c.Server.ShutdownTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_SHUTDOWN_TIMEOUT must be greater than 0")
	}
	if c.Server.ReadTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_READ_TIMEOUT must be greater than 0")
	}
	if c.Server.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_WRITE_TIMEOUT must be greater than 0")
	}
	if c.Server.IdleTimeout <= 0 {
		validationErrors = append(validationErrors, "SERVER_IDLE_TIMEOUT must be greater than 0")
	}

	if c.Postgres.URL == "" {
		validationErrors = append(validationErrors, "POSTGRES_URL is required")
	}
	if c.Postgres.MaxConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONNS must be greater than 0")
	}
	if c.Postgres.MinConns <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MIN_CONNS must be greater than 0")
	}
	if c.Postgres.ConnMaxLifetime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_LIFETIME must be greater than 0")
	}
	if c.Postgres.ConnMaxIdleTime <= 0 {
		validationErrors = append(validationErrors, "POSTGRES_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	if c.MongoDB.URI == "" {
		validationErrors = append(validationErrors, "MONGO_URI is required")
	}
	if c.MongoDB.Database == "" {
		validationErrors = append(validationErrors, "MONGO_DATABASE is required")
	}
	if c.MongoDB.Timeout <= 0 {
		validationErrors = append(validationErrors, "MONGO_TIMEOUT must be greater than 0")
	}
	if c.MongoDB.MaxPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MinPoolSize <= 0 {
		validationErrors = append(validationErrors, "MONGO_MIN_POOL_SIZE must be greater than 0")
	}
	if c.MongoDB.MaxConnIdleTime <= 0 {
		validationErrors = append(validationErrors, "MONGO_MAX_CONN_IDLE_TIME must be greater than 0")
	}

	if len(c.Kafka.Brokers) == 0 {
		validationErrors = append(validationErrors, "KAFKA_BROKERS is required")
	}
	if c.Kafka.OperationTopic == "" {
		validationErrors = append(validationErrors, "KAFKA_OPERATION_TOPIC is required")
	}
	if c.Kafka.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "KAFKA_WRITE_TIMEOUT must be greater than 0")
	}

	if c.Verification.CodeTTL <= 0 {
		validationErrors = append(validationErrors, "VERIFICATION_CODE_TTL must be greater than 0")
	}
	if c.Verification.MaxAttempts <= 0 {
		validationErrors = append(validationErrors, "VERIFICATION_MAX_ATTEMPTS must be greater than 0")
	}

	if c.Sweeper.Interval <= 0 {
		validationErrors = append(validationErrors, "SWEEPER_INTERVAL must be greater than 0")
	}
	if c.Sweeper.AccountRetention <= 0 {
		validationErrors = append(validationErrors, "SWEEPER_ACCOUNT_RETENTION must be greater than 0")
	}
	if c.Sweeper.ActivityRetention <= 0 {
		validationErrors = append(validationErrors, "SWEEPER_ACTIVITY_RETENTION must be greater than 0")
	}

	if c.ActivityLog.PoolSize <= 0 {
		validationErrors = append(validationErrors, "ACTIVITY_LOG_POOL_SIZE must be greater than 0")
	}
	if c.ActivityLog.WriteTimeout <= 0 {
		validationErrors = append(validationErrors, "ACTIVITY_LOG_WRITE_TIMEOUT must be greater than 0")
	}

	if len(validationErrors) > 0 {
		return errors.New(strings.Join(validationErrors, ", "))
	}

	return nil
}
