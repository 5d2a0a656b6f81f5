package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tair/stock-reservations/pkg/database"
)

// Config holds everything the reservation service reads at startup.
type Config struct {
	ServiceName string `yaml:"service_name"`
	Environment string `yaml:"environment"`
	LogLevel    string `yaml:"log_level"`

	HTTPPort       string        `yaml:"http_port"`
	GRPCPort       string        `yaml:"grpc_port"`
	RequestTimeout time.Duration `yaml:"request_timeout"`

	Database database.Config `yaml:"database"`

	RedisAddr     string `yaml:"redis_addr"`
	RedisPassword string `yaml:"redis_password"`

	KafkaBrokers []string `yaml:"kafka_brokers"`
	KafkaGroupID string   `yaml:"kafka_group_id"`

	JaegerEndpoint string `yaml:"jaeger_endpoint"`

	Reservation ReservationConfig `yaml:"reservation"`
}

// ReservationConfig holds the hold/expiry policy knobs.
type ReservationConfig struct {
	DefaultTTL     time.Duration `yaml:"default_ttl"`
	MaxTTL         time.Duration `yaml:"max_ttl"`
	SweepInterval  time.Duration `yaml:"sweep_interval"`
	SweepBatchSize int           `yaml:"sweep_batch_size"`
	SweepTimeout   time.Duration `yaml:"sweep_timeout"`
	SweepLeaseTTL  time.Duration `yaml:"sweep_lease_ttl"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		ServiceName:    "reservation-service",
		Environment:    "development",
		LogLevel:       "info",
		HTTPPort:       "8084",
		GRPCPort:       "9094",
		RequestTimeout: 10 * time.Second,
		Database: database.Config{
			Host:    "localhost",
			Port:    "5432",
			User:    "postgres",
			DBName:  "reservationdb",
			SSLMode: "disable",
		},
		KafkaGroupID: "reservation-service",
		Reservation: ReservationConfig{
			DefaultTTL:     15 * time.Minute,
			MaxTTL:         2 * time.Hour,
			SweepInterval:  30 * time.Second,
			SweepBatchSize: 500,
			SweepTimeout:   20 * time.Second,
			SweepLeaseTTL:  25 * time.Second,
		},
	}
}

// Load builds the configuration: defaults, then the YAML file named by
// CONFIG_FILE (if any), then environment variables.
func Load() (Config, error) {
	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		raw, err := os.ReadFile(path)
		if err != nil {
			return Config{}, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(raw, &cfg); err != nil {
			return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// IsDevelopment reports whether human-friendly logging should be used.
func (c Config) IsDevelopment() bool {
	return c.Environment == "development"
}

// Validate rejects settings the engine cannot run with.
func (c Config) Validate() error {
	r := c.Reservation
	switch {
	case r.DefaultTTL <= 0:
		return fmt.Errorf("reservation default ttl must be positive")
	case r.MaxTTL < r.DefaultTTL:
		return fmt.Errorf("reservation max ttl %s is below default ttl %s", r.MaxTTL, r.DefaultTTL)
	case r.SweepInterval <= 0:
		return fmt.Errorf("sweep interval must be positive")
	case r.SweepBatchSize <= 0:
		return fmt.Errorf("sweep batch size must be positive")
	}
	return nil
}

func applyEnv(cfg *Config) error {
	cfg.ServiceName = getEnv("OTEL_SERVICE_NAME", cfg.ServiceName)
	cfg.Environment = getEnv("ENVIRONMENT", cfg.Environment)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)
	cfg.HTTPPort = getEnv("HTTP_PORT", cfg.HTTPPort)
	cfg.GRPCPort = getEnv("GRPC_PORT", cfg.GRPCPort)

	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.Port = getEnv("DB_PORT", cfg.Database.Port)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.DBName = getEnv("DB_NAME", cfg.Database.DBName)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", cfg.Database.SSLMode)

	cfg.RedisAddr = getEnv("REDIS_ADDR", cfg.RedisAddr)
	cfg.RedisPassword = getEnv("REDIS_PASSWORD", cfg.RedisPassword)

	if brokers := os.Getenv("KAFKA_BROKERS"); brokers != "" {
		cfg.KafkaBrokers = splitList(brokers)
	}
	cfg.KafkaGroupID = getEnv("KAFKA_GROUP_ID", cfg.KafkaGroupID)
	cfg.JaegerEndpoint = getEnv("JAEGER_ENDPOINT", cfg.JaegerEndpoint)

	durations := []struct {
		key string
		dst *time.Duration
	}{
		{"REQUEST_TIMEOUT", &cfg.RequestTimeout},
		{"RESERVATION_DEFAULT_TTL", &cfg.Reservation.DefaultTTL},
		{"RESERVATION_MAX_TTL", &cfg.Reservation.MaxTTL},
		{"SWEEP_INTERVAL", &cfg.Reservation.SweepInterval},
		{"SWEEP_TIMEOUT", &cfg.Reservation.SweepTimeout},
		{"SWEEP_LEASE_TTL", &cfg.Reservation.SweepLeaseTTL},
	}
	for _, d := range durations {
		raw := os.Getenv(d.key)
		if raw == "" {
			continue
		}
		v, err := time.ParseDuration(raw)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", d.key, err)
		}
		*d.dst = v
	}

	if raw := os.Getenv("SWEEP_BATCH_SIZE"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			return fmt.Errorf("invalid SWEEP_BATCH_SIZE: %w", err)
		}
		cfg.Reservation.SweepBatchSize = n
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
