package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// Config represents the application configuration
type Config struct {
	DatabaseURL string `yaml:"databaseURL" validate:"required"`

	RedisAddr     string `yaml:"redisAddr" validate:"required"`
	RedisPassword string `yaml:"redisPassword,omitempty"`
	RedisDB       int    `yaml:"redisDB,omitempty" validate:"min=0"`

	// OfferWindowMinutes is how long a caregiver has to respond to an offer
	OfferWindowMinutes int `yaml:"offerWindowMinutes,omitempty" validate:"omitempty,min=1"`

	// SweepIntervalSeconds is how often the sweeper daemon scans for expired offers
	SweepIntervalSeconds int `yaml:"sweepIntervalSeconds,omitempty" validate:"omitempty,min=1"`

	// MinShiftDurationMinutes is the creation-time floor on shift length
	MinShiftDurationMinutes int `yaml:"minShiftDurationMinutes,omitempty" validate:"omitempty,min=1"`

	// MetricsAddr enables the Prometheus endpoint when set (e.g. ":9090")
	MetricsAddr string `yaml:"metricsAddr,omitempty"`

	// Timezone is the canonical time reference for date-boundary math
	Timezone string `yaml:"timezone,omitempty"`
}

const (
	defaultOfferWindowMinutes      = 30
	defaultSweepIntervalSeconds    = 60
	defaultMinShiftDurationMinutes = 120
	defaultTimezone                = "UTC"
)

var validate *validator.Validate

func init() {
	validate = validator.New()
}

// Load loads and validates the configuration from scheduler_config.yaml
// It looks for the config file in the current directory first, then in the user's home directory
func Load() (*Config, error) {
	configPath, err := findConfigFile()
	if err != nil {
		return nil, fmt.Errorf("failed to find config file: %w", err)
	}

	return LoadFromPath(configPath)
}

// LoadFromPath loads and validates the configuration from a specific path
func LoadFromPath(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyDefaults()

	if err := Validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate validates the configuration struct and checks the timezone name
func Validate(cfg *Config) error {
	if err := validate.Struct(cfg); err != nil {
		return fmt.Errorf("config validation failed: %w", err)
	}

	if _, err := time.LoadLocation(cfg.Timezone); err != nil {
		return fmt.Errorf("invalid timezone %q: %w", cfg.Timezone, err)
	}

	return nil
}

// OfferWindow returns the configured offer window as a duration
func (c *Config) OfferWindow() time.Duration {
	return time.Duration(c.OfferWindowMinutes) * time.Minute
}

// SweepInterval returns the configured sweep interval as a duration
func (c *Config) SweepInterval() time.Duration {
	return time.Duration(c.SweepIntervalSeconds) * time.Second
}

// MinShiftDuration returns the configured minimum shift length as a duration
func (c *Config) MinShiftDuration() time.Duration {
	return time.Duration(c.MinShiftDurationMinutes) * time.Minute
}

// Location resolves the configured timezone
func (c *Config) Location() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

func (c *Config) applyDefaults() {
	if c.OfferWindowMinutes == 0 {
		c.OfferWindowMinutes = defaultOfferWindowMinutes
	}
	if c.SweepIntervalSeconds == 0 {
		c.SweepIntervalSeconds = defaultSweepIntervalSeconds
	}
	if c.MinShiftDurationMinutes == 0 {
		c.MinShiftDurationMinutes = defaultMinShiftDurationMinutes
	}
	if c.Timezone == "" {
		c.Timezone = defaultTimezone
	}
}

// findConfigFile searches for scheduler_config.yaml in current directory and home directory
func findConfigFile() (string, error) {
	configFileName := "scheduler_config.yaml"

	// Check current directory
	if _, err := os.Stat(configFileName); err == nil {
		return configFileName, nil
	}

	// Check home directory
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("failed to get home directory: %w", err)
	}

	homeConfigPath := filepath.Join(homeDir, configFileName)
	if _, err := os.Stat(homeConfigPath); err == nil {
		return homeConfigPath, nil
	}

	return "", fmt.Errorf("config file not found in current directory or home directory")
}
