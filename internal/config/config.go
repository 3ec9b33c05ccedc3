// internal/config/config.go
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"

	"storefront/pkg/db"
)

// Backend names accepted by STORAGE_BACKEND.
const (
	BackendLocal    = "local"
	BackendPostgres = "postgres"
)

// AppConfig holds all application-wide configurations.
type AppConfig struct {
	ServerPort string
	LogLevel   string

	// Backend selects the storage implementation once at startup.
	Backend     string
	LocalDBPath string
	DB          db.Config
	Redis       RedisConfig
	CatalogTTL  time.Duration
	CatalogSeed string
	Store       StoreSettings
}

// RedisConfig configures the optional catalog cache. An empty Addr disables it.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// StoreSettings are the commerce rules shared by both backends.
type StoreSettings struct {
	StartingBalance decimal.Decimal
	PointsPerUnit   int64
}

// LoadConfig loads configuration from environment variables.
// A .env file in the working directory is read first when present; variables
// already set in the environment win over it.
func LoadConfig() (*AppConfig, error) {
	_ = godotenv.Load()

	dbPort, err := strconv.Atoi(getEnvOrDefault("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	redisDB, err := strconv.Atoi(getEnvOrDefault("REDIS_DB", "0"))
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	catalogTTL, err := time.ParseDuration(getEnvOrDefault("CATALOG_CACHE_TTL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CATALOG_CACHE_TTL: %w", err)
	}
	startingBalance, err := decimal.NewFromString(getEnvOrDefault("STARTING_BALANCE", "999999"))
	if err != nil {
		return nil, fmt.Errorf("invalid STARTING_BALANCE: %w", err)
	}
	if startingBalance.IsNegative() {
		return nil, fmt.Errorf("invalid STARTING_BALANCE: must not be negative")
	}
	pointsPerUnit, err := strconv.ParseInt(getEnvOrDefault("POINTS_PER_UNIT", "1"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid POINTS_PER_UNIT: %w", err)
	}
	if pointsPerUnit < 0 {
		return nil, fmt.Errorf("invalid POINTS_PER_UNIT: must not be negative")
	}

	backend := strings.ToLower(getEnvOrDefault("STORAGE_BACKEND", BackendPostgres))
	if backend != BackendLocal && backend != BackendPostgres {
		return nil, fmt.Errorf("invalid STORAGE_BACKEND %q: must be %q or %q", backend, BackendLocal, BackendPostgres)
	}

	return &AppConfig{
		ServerPort:  getEnvOrDefault("SERVER_PORT", "8080"),
		LogLevel:    getEnvOrDefault("LOG_LEVEL", "info"),
		Backend:     backend,
		LocalDBPath: getEnvOrDefault("LOCAL_DB_PATH", "storefront.db"),
		DB: db.Config{
			Host:     getEnvOrDefault("DB_HOST", "localhost"),
			Port:     dbPort,
			User:     getEnvOrDefault("DB_USER", "user"),
			Password: getEnvOrDefault("DB_PASSWORD", "password"),
			DBName:   getEnvOrDefault("DB_NAME", "gamestore"),
			SSLMode:  getEnvOrDefault("DB_SSLMODE", "disable"),
		},
		Redis: RedisConfig{
			Addr:     os.Getenv("REDIS_ADDR"),
			Password: os.Getenv("REDIS_PASSWORD"),
			DB:       redisDB,
		},
		CatalogTTL:  catalogTTL,
		CatalogSeed: os.Getenv("CATALOG_SEED_FILE"),
		Store: StoreSettings{
			StartingBalance: startingBalance,
			PointsPerUnit:   pointsPerUnit,
		},
	}, nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
