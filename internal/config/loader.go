package config

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

// EnvPrefix namespaces the environment overrides, e.g. STOREFRONT_SERVER_PORT.
const EnvPrefix = "STOREFRONT"

// legacyEnv maps config keys to the bare environment variables older
// deployments set. The prefixed variable wins when both are present.
var legacyEnv = map[string]string{
	"server.port":      "PORT",
	"catalog.per_page": "PRODUCTS_PER_PAGE",
}

// Load reads configuration from file and environment variables. An empty
// configPath searches for config.yaml in the working directory and
// /etc/storefront; not finding one is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("/etc/storefront/")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for key, legacy := range legacyEnv {
		prefixed := EnvPrefix + "_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, prefixed, legacy); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", legacy, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}

// setDefaults sets default configuration values.
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", 4000)
	v.SetDefault("server.read_timeout", "15s")
	v.SetDefault("server.write_timeout", "30s")
	v.SetDefault("server.idle_timeout", "120s")
	v.SetDefault("server.shutdown_timeout", "30s")
	v.SetDefault("server.request_timeout", "10s")
	v.SetDefault("server.allowed_origins", []string{"*"})

	v.SetDefault("store.driver", DriverMemory)

	// Database defaults
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.database", "storefront")
	v.SetDefault("database.user", "storefront")
	v.SetDefault("database.password", "")
	v.SetDefault("database.max_connections", 20)
	v.SetDefault("database.min_connections", 2)

	// Cache defaults
	v.SetDefault("cache.backend", BackendMemory)
	v.SetDefault("cache.max_entries", 10000)

	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("redis.prefix", "storefront:")

	v.SetDefault("catalog.per_page", 2)
	v.SetDefault("catalog.latest_limit", 5)

	v.SetDefault("workers.max_workers", 4)
	v.SetDefault("workers.queue_size", 256)
	v.SetDefault("workers.drain_timeout", "10s")

	v.SetDefault("breaker.max_requests", 5)
	v.SetDefault("breaker.interval", "60s")
	v.SetDefault("breaker.timeout", "30s")
	v.SetDefault("breaker.failure_threshold", 0.6)
	v.SetDefault("breaker.min_requests", 10)

	// Rate limiter defaults
	v.SetDefault("rate_limiter.enabled", true)
	v.SetDefault("rate_limiter.requests_per_second", 100.0)
	v.SetDefault("rate_limiter.burst_size", 50)

	// Metrics defaults
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("metrics.port", 9090)
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("metrics.interval", "15s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// Write dumps the effective configuration as YAML. Passwords are omitted.
func (c *Config) Write(w io.Writer) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(c); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return enc.Close()
}
