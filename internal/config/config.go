package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	NodeEnv   string
	Port      string
	Database  DatabaseConfig
	Log       LogConfig
	Inventory InventoryConfig
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	Host     string
	Port     string
	Username string
	Password string
	Database string
	Alter    bool
}

// LogConfig holds logger configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
}

// InventoryConfig holds the box lifecycle constraints
type InventoryConfig struct {
	MinExpYear     int
	MaxExpYear     int
	DefaultBoxType string
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if it exists
	_ = godotenv.Load()

	inv, err := loadInventory(time.Now().Year())
	if err != nil {
		return nil, err
	}

	return &Config{
		NodeEnv: getEnv("NODE_ENV", "development"),
		Port:    getEnv("PORT", "3210"),
		Database: DatabaseConfig{
			Host:     getEnv("PG_HOST", "localhost"),
			Port:     getEnv("PG_PORT", "5432"),
			Username: getEnv("PG_USERNAME", "postgres"),
			Password: os.Getenv("PG_PASSWORD"),
			Database: getEnv("PG_DATABASE", "pantry"),
			Alter:    getEnv("DB_ALTER", "false") == "true",
		},
		Log: LogConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Inventory: inv,
	}, nil
}

// loadInventory reads the expiration window; the defaults follow the current year
func loadInventory(year int) (InventoryConfig, error) {
	minYear, err := getEnvInt("EXP_YEAR_MIN", year-2)
	if err != nil {
		return InventoryConfig{}, err
	}
	maxYear, err := getEnvInt("EXP_YEAR_MAX", year+10)
	if err != nil {
		return InventoryConfig{}, err
	}
	if minYear > maxYear {
		return InventoryConfig{}, fmt.Errorf("EXP_YEAR_MIN (%d) must not exceed EXP_YEAR_MAX (%d)", minYear, maxYear)
	}
	return InventoryConfig{
		MinExpYear:     minYear,
		MaxExpYear:     maxYear,
		DefaultBoxType: getEnv("DEFAULT_BOX_TYPE", "Evans"),
	}, nil
}

// getEnv gets environment variable with default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}
	n, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer: %w", key, err)
	}
	return n, nil
}
