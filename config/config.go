package config

import (
	"fmt"
	"os"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the ingestion service, the one-shot
// CLI and the cloud sync job. It is loaded once in main and passed down;
// nothing in the pipeline reads the environment directly.
type Config struct {
	Service  ServiceConfig   `yaml:"service"`
	Postgres PostgresConfig  `yaml:"postgres"`
	Cloud    *PostgresConfig `yaml:"cloud,omitempty"`
	Ingest   IngestConfig    `yaml:"ingest"`
}

type ServiceConfig struct {
	Name                string `yaml:"name"`
	Port                int    `yaml:"port"`
	ReadTimeoutSeconds  int    `yaml:"read_timeout_seconds"`
	WriteTimeoutSeconds int    `yaml:"write_timeout_seconds"`
	LogLevel            string `yaml:"log_level"`
}

type PostgresConfig struct {
	Host           string `yaml:"host"`
	Port           int    `yaml:"port"`
	Database       string `yaml:"database"`
	User           string `yaml:"user"`
	Password       string `yaml:"password"`
	SSLMode        string `yaml:"sslmode"`
	Schema         string `yaml:"schema"`
	MaxConnections int    `yaml:"max_connections"`
}

type IngestConfig struct {
	// BatchSize is the number of rows flushed per COPY batch during load
	// and sync. All batches of one table still share a single transaction.
	BatchSize     int `yaml:"batch_size"`
	MaxUploadKB   int `yaml:"max_upload_kb"`
	DefaultLimit  int `yaml:"default_limit"`
	MaxQueryLimit int `yaml:"max_query_limit"`
}

// Load reads the YAML config file, applies environment overrides for
// secrets and validates the result.
func Load(path string) (*Config, error) {
	cfg := defaults()

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	applyEnv(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func defaults() *Config {
	return &Config{
		Service: ServiceConfig{
			Name:                "supply-ingester",
			Port:                8080,
			ReadTimeoutSeconds:  30,
			WriteTimeoutSeconds: 60,
			LogLevel:            "info",
		},
		Postgres: PostgresConfig{
			Host:           "localhost",
			Port:           5432,
			Database:       "siciap_local",
			User:           "postgres",
			SSLMode:        "disable",
			Schema:         "siciap",
			MaxConnections: 10,
		},
		Ingest: IngestConfig{
			BatchSize:     1000,
			MaxUploadKB:   20 * 1024,
			DefaultLimit:  1000,
			MaxQueryLimit: 50000,
		},
	}
}

func applyEnv(cfg *Config) {
	if v := os.Getenv("DB_HOST"); v != "" {
		cfg.Postgres.Host = v
	}
	if v := os.Getenv("DB_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Postgres.Port = p
		}
	}
	if v := os.Getenv("DB_NAME"); v != "" {
		cfg.Postgres.Database = v
	}
	if v := os.Getenv("DB_USER"); v != "" {
		cfg.Postgres.User = v
	}
	if v := os.Getenv("DB_PASSWORD"); v != "" {
		cfg.Postgres.Password = v
	}
	if cfg.Cloud != nil {
		if v := os.Getenv("CLOUD_DB_HOST"); v != "" {
			cfg.Cloud.Host = v
		}
		if v := os.Getenv("CLOUD_DB_PASSWORD"); v != "" {
			cfg.Cloud.Password = v
		}
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Service.LogLevel = v
	}
}

func (c *Config) validate() error {
	if c.Postgres.Password == "" {
		return fmt.Errorf("postgres password is required (set DB_PASSWORD or postgres.password)")
	}
	if c.Postgres.Schema == "" {
		return fmt.Errorf("postgres schema is required")
	}
	if c.Cloud != nil {
		if c.Cloud.Schema == "" {
			// Hosted databases keep the tables in public.
			c.Cloud.Schema = "public"
		}
		if c.Cloud.Host == "" || c.Cloud.Password == "" {
			return fmt.Errorf("cloud database config is incomplete")
		}
	}
	if c.Ingest.BatchSize <= 0 {
		c.Ingest.BatchSize = 1000
	}
	return nil
}

// DSN builds a lib/pq connection string.
func (p PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}
