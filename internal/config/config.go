package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aman-zulfiqar/solana-wallet-history/internal/constants"
)

type Config struct {
	// RPC settings
	RPCUrl               string
	RPCRequestsPerSecond float64
	HTTPTimeout          time.Duration
	MaxRetries           int
	RetryBackoff         time.Duration

	// History settings
	PageSize int

	// Watcher settings
	PollInterval   time.Duration
	WatchAddresses []string

	// Redis settings
	RedisAddr string

	// ClickHouse settings
	ClickHouseAddr     string
	ClickHouseDatabase string
	ClickHouseUsername string
	ClickHousePassword string

	// Price API settings
	PriceAPIURL string
	PriceAPIKey string

	// API server settings
	APIAddr string
	APIKey  string
	DevMode bool
}

func Load() *Config {
	return &Config{
		// RPC
		RPCUrl:               getEnv("SOLANA_RPC_URL", "https://api.mainnet-beta.solana.com"),
		RPCRequestsPerSecond: getFloatEnv("RPC_REQUESTS_PER_SECOND", 8),
		HTTPTimeout:          getDurationEnv("HTTP_TIMEOUT", 30*time.Second),
		MaxRetries:           getIntEnv("MAX_RETRIES", 5),
		RetryBackoff:         getDurationEnv("RETRY_BACKOFF", 2*time.Second),

		// History
		PageSize: getIntEnv("PAGE_SIZE", constants.DefaultPageSize),

		// Watcher
		PollInterval:   getDurationEnv("POLL_INTERVAL", 30*time.Second),
		WatchAddresses: getListEnv("WATCH_ADDRESSES"),

		// Redis
		RedisAddr: getEnv("REDIS_ADDR", "localhost:6379"),

		// ClickHouse
		ClickHouseAddr:     getEnv("CLICKHOUSE_ADDR", "localhost:9000"),
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "solana"),
		ClickHouseUsername: getEnv("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),

		// Price API
		PriceAPIURL: getEnv("PRICE_API_URL", ""),
		PriceAPIKey: getEnv("PRICE_API_KEY", ""),

		// API server
		APIAddr: getEnv("API_ADDR", ":8090"),
		APIKey:  getEnv("API_KEY", ""),
		DevMode: getBoolEnv("DEV_MODE", false),
	}
}

func (c *Config) Validate() error {
	if c.RPCUrl == "" {
		return fmt.Errorf("SOLANA_RPC_URL is required")
	}
	if c.PageSize < 1 || c.PageSize > constants.MaxPageSize {
		return fmt.Errorf("PAGE_SIZE must be between 1 and %d", constants.MaxPageSize)
	}
	if c.PollInterval < time.Second {
		return fmt.Errorf("POLL_INTERVAL must be at least 1s")
	}
	return nil
}

func getEnv(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

func getIntEnv(key string, defaultVal int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return defaultVal
}

func getFloatEnv(key string, defaultVal float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return defaultVal
}

func getBoolEnv(key string, defaultVal bool) bool {
	if val := os.Getenv(key); val != "" {
		if b, err := strconv.ParseBool(val); err == nil {
			return b
		}
	}
	return defaultVal
}

func getDurationEnv(key string, defaultVal time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return defaultVal
}

func getListEnv(key string) []string {
	val := os.Getenv(key)
	if val == "" {
		return nil
	}
	var out []string
	for _, item := range strings.Split(val, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
