package config

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

type Config struct {
	HTTP          HTTPConfig          `yaml:"http"`
	Database      DatabaseConfig      `yaml:"database"`
	Redis         RedisConfig         `yaml:"redis"`
	Kafka         KafkaConfig         `yaml:"kafka"`
	Booking       BookingConfig       `yaml:"booking"`
	FlightService FlightServiceConfig `yaml:"flight_service"`
	Breaker       BreakerConfig       `yaml:"breaker"`
}

type HTTPConfig struct {
	Address string `yaml:"address"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"ssl_mode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s", d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

type RedisConfig struct {
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

type KafkaConfig struct {
	Brokers               []string `yaml:"brokers"`
	BookingCreatedTopic   string   `yaml:"booking_created_topic"`
	BookingCancelledTopic string   `yaml:"booking_cancelled_topic"`
	GroupID               string   `yaml:"group_id"`
}

type BookingConfig struct {
	CancellationWindowHours int `yaml:"cancellation_window_hours"`
	SearchCacheTTLSeconds   int `yaml:"search_cache_ttl_seconds"`
}

// FlightServiceConfig points the booking side at the flight inventory. An
// empty base URL keeps both services in one process.
type FlightServiceConfig struct {
	BaseURL        string `yaml:"base_url"`
	TimeoutSeconds int    `yaml:"timeout_seconds"`
}

type BreakerConfig struct {
	FailureRatio    float64 `yaml:"failure_ratio"`
	MinRequests     uint32  `yaml:"min_requests"`
	WindowSeconds   int     `yaml:"window_seconds"`
	CooldownSeconds int     `yaml:"cooldown_seconds"`
}

func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if cfg.Booking.CancellationWindowHours == 0 {
		cfg.Booking.CancellationWindowHours = 24
	}
	if cfg.Booking.SearchCacheTTLSeconds == 0 {
		cfg.Booking.SearchCacheTTLSeconds = 60
	}
	if cfg.FlightService.TimeoutSeconds == 0 {
		cfg.FlightService.TimeoutSeconds = 5
	}

	return &cfg, nil
}
