// Package config provides configuration management for the storefront service.
package config

import (
	"errors"
	"fmt"
	"time"
)

// Store drivers and cache backends understood by the service.
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"

	BackendMemory = "memory"
	BackendRedis  = "redis"
)

// Config holds all configuration for the storefront service.
type Config struct {
	Server      ServerConfig      `mapstructure:"server" yaml:"server"`
	Store       StoreConfig       `mapstructure:"store" yaml:"store"`
	Database    DatabaseConfig    `mapstructure:"database" yaml:"database"`
	Cache       CacheConfig       `mapstructure:"cache" yaml:"cache"`
	Redis       RedisConfig       `mapstructure:"redis" yaml:"redis"`
	Catalog     CatalogConfig     `mapstructure:"catalog" yaml:"catalog"`
	Workers     WorkersConfig     `mapstructure:"workers" yaml:"workers"`
	Breaker     BreakerConfig     `mapstructure:"breaker" yaml:"breaker"`
	RateLimiter RateLimiterConfig `mapstructure:"rate_limiter" yaml:"rate_limiter"`
	Metrics     MetricsConfig     `mapstructure:"metrics" yaml:"metrics"`
	Logging     LoggingConfig     `mapstructure:"logging" yaml:"logging"`
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int           `mapstructure:"port" yaml:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout" yaml:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout" yaml:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout" yaml:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	RequestTimeout  time.Duration `mapstructure:"request_timeout" yaml:"request_timeout"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
}

// StoreConfig selects the document store.
type StoreConfig struct {
	Driver string `mapstructure:"driver" yaml:"driver"`
}

// DatabaseConfig holds PostgreSQL connection settings, used by the postgres driver.
type DatabaseConfig struct {
	Host           string `mapstructure:"host" yaml:"host"`
	Port           int    `mapstructure:"port" yaml:"port"`
	Database       string `mapstructure:"database" yaml:"database"`
	User           string `mapstructure:"user" yaml:"user"`
	Password       string `mapstructure:"password" yaml:"-"`
	MaxConnections int    `mapstructure:"max_connections" yaml:"max_connections"`
	MinConnections int    `mapstructure:"min_connections" yaml:"min_connections"`
}

// CacheConfig selects the derived-data cache backend.
type CacheConfig struct {
	Backend string `mapstructure:"backend" yaml:"backend"`
	// MaxEntries bounds the in-memory backend. Zero means unbounded.
	MaxEntries int `mapstructure:"max_entries" yaml:"max_entries"`
}

// RedisConfig holds Redis connection settings, used by the redis backend.
type RedisConfig struct {
	Host     string `mapstructure:"host" yaml:"host"`
	Port     int    `mapstructure:"port" yaml:"port"`
	Password string `mapstructure:"password" yaml:"-"`
	DB       int    `mapstructure:"db" yaml:"db"`
	Prefix   string `mapstructure:"prefix" yaml:"prefix"`
}

// CatalogConfig tunes product listings.
type CatalogConfig struct {
	PerPage     int `mapstructure:"per_page" yaml:"per_page"`
	LatestLimit int `mapstructure:"latest_limit" yaml:"latest_limit"`
}

// WorkersConfig sizes the background task pool.
type WorkersConfig struct {
	MaxWorkers   int           `mapstructure:"max_workers" yaml:"max_workers"`
	QueueSize    int           `mapstructure:"queue_size" yaml:"queue_size"`
	DrainTimeout time.Duration `mapstructure:"drain_timeout" yaml:"drain_timeout"`
}

// BreakerConfig tunes the circuit breaker in front of the database.
type BreakerConfig struct {
	MaxRequests      uint32        `mapstructure:"max_requests" yaml:"max_requests"`
	Interval         time.Duration `mapstructure:"interval" yaml:"interval"`
	Timeout          time.Duration `mapstructure:"timeout" yaml:"timeout"`
	FailureThreshold float64       `mapstructure:"failure_threshold" yaml:"failure_threshold"`
	MinRequests      uint32        `mapstructure:"min_requests" yaml:"min_requests"`
}

// RateLimiterConfig holds rate limiter configuration.
type RateLimiterConfig struct {
	Enabled           bool    `mapstructure:"enabled" yaml:"enabled"`
	RequestsPerSecond float64 `mapstructure:"requests_per_second" yaml:"requests_per_second"`
	BurstSize         int     `mapstructure:"burst_size" yaml:"burst_size"`
}

// MetricsConfig holds Prometheus metrics configuration.
type MetricsConfig struct {
	Enabled  bool          `mapstructure:"enabled" yaml:"enabled"`
	Port     int           `mapstructure:"port" yaml:"port"`
	Path     string        `mapstructure:"path" yaml:"path"`
	Interval time.Duration `mapstructure:"interval" yaml:"interval"`
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string `mapstructure:"level" yaml:"level"`
	Format string `mapstructure:"format" yaml:"format"`
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	switch c.Store.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Database.Host == "" {
			return errors.New("database.host is required")
		}
		if c.Database.Database == "" {
			return errors.New("database.database is required")
		}
		if c.Database.User == "" {
			return errors.New("database.user is required")
		}
	default:
		return fmt.Errorf("store.driver must be one of: memory, postgres (got %q)", c.Store.Driver)
	}

	switch c.Cache.Backend {
	case BackendMemory:
		if c.Cache.MaxEntries < 0 {
			return errors.New("cache.max_entries must not be negative")
		}
	case BackendRedis:
		if c.Redis.Host == "" {
			return errors.New("redis.host is required")
		}
	default:
		return fmt.Errorf("cache.backend must be one of: memory, redis (got %q)", c.Cache.Backend)
	}

	if c.Catalog.PerPage <= 0 {
		return errors.New("catalog.per_page must be positive")
	}
	if c.Catalog.LatestLimit <= 0 {
		return errors.New("catalog.latest_limit must be positive")
	}

	if c.Workers.MaxWorkers <= 0 || c.Workers.QueueSize <= 0 {
		return errors.New("workers.max_workers and workers.queue_size must be positive")
	}

	if c.RateLimiter.Enabled {
		if c.RateLimiter.RequestsPerSecond <= 0 {
			return errors.New("rate limiter requests per second must be positive")
		}
		if c.RateLimiter.BurstSize <= 0 {
			return errors.New("rate limiter burst size must be positive")
		}
	}

	if c.Metrics.Enabled {
		if c.Metrics.Port <= 0 || c.Metrics.Port > 65535 {
			return fmt.Errorf("invalid metrics port: %d", c.Metrics.Port)
		}
		if c.Metrics.Port == c.Server.Port {
			return errors.New("metrics.port must differ from server.port")
		}
	}

	return nil
}
