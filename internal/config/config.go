package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

type Config struct {
	// Jupiter API settings
	APIVersion     string
	JupiterBaseURL string
	JupiterAPIKey  string

	// HTTP client settings
	HTTPTimeout time.Duration
	RateLimit   float64 // requests per second, 0 disables pacing
	RateBurst   int

	// Gateway server settings
	APIAddr string
	APIKey  string
	DevMode bool

	// Redis settings (operation flags, optional)
	RedisAddr string

	// ClickHouse settings (call audit, optional)
	ClickHouseAddr     string
	ClickHouseDatabase string
	ClickHouseUsername string
	ClickHousePassword string

	LogLevel string
}

func Load() *Config {
	return &Config{
		// Jupiter
		APIVersion:     getEnv("JUPITER_API_VERSION", "v1"),
		JupiterBaseURL: getEnv("JUPITER_BASE_URL", ""),
		JupiterAPIKey:  getEnv("JUPITER_API_KEY", ""),

		// HTTP
		HTTPTimeout: getDurationEnv("HTTP_TIMEOUT", 12*time.Second),
		RateLimit:   getFloatEnv("JUPITER_RATE_LIMIT", 0),
		RateBurst:   getIntEnv("JUPITER_RATE_BURST", 1),

		// Gateway
		APIAddr: getEnv("API_ADDR", ":8090"),
		APIKey:  getEnv("API_KEY", ""),
		DevMode: getBoolEnv("DEV_MODE", false),

		// Redis
		RedisAddr: getEnv("REDIS_ADDR", ""),

		// ClickHouse
		ClickHouseAddr:     getEnv("CLICKHOUSE_ADDR", ""),
		ClickHouseDatabase: getEnv("CLICKHOUSE_DATABASE", "jupiter"),
		ClickHouseUsername: getEnv("CLICKHOUSE_USERNAME", "default"),
		ClickHousePassword: getEnv("CLICKHOUSE_PASSWORD", ""),

		LogLevel: getEnv("LOG_LEVEL", "info"),
	}
}

// Validate reports every invalid setting at once.
func (c *Config) Validate() error {
	var problems []string
	switch strings.ToLower(strings.TrimSpace(c.APIVersion)) {
	case "v1", "v2", "v3", "1", "2", "3":
	default:
		problems = append(problems, fmt.Sprintf("JUPITER_API_VERSION %q must be v1, v2 or v3", c.APIVersion))
	}
	if c.HTTPTimeout <= 0 {
		problems = append(problems, "HTTP_TIMEOUT must be > 0")
	}
	if c.RateLimit < 0 {
		problems = append(problems, "JUPITER_RATE_LIMIT must be >= 0")
	}
	if c.RateLimit > 0 && c.RateBurst < 1 {
		problems = append(problems, "JUPITER_RATE_BURST must be >= 1 when rate limiting is enabled")
	}
	if strings.TrimSpace(c.APIAddr) == "" {
		problems = append(problems, "API_ADDR is required")
	}
	if _, err := logrus.ParseLevel(c.LogLevel); err != nil {
		problems = append(problems, fmt.Sprintf("LOG_LEVEL: %v", err))
	}
	if len(problems) > 0 {
		return fmt.Errorf("invalid config: %s", strings.Join(problems, "; "))
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
