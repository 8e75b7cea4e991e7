package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config содержит конфигурацию сервера
type Config struct {
	Port            int
	MaxPrincipal    float64
	MaxMonths       int
	MaxRate         float64
	MaxFee          float64
	Currency        string
	Locale          string
	RedisAddr       string
	SessionTTL      time.Duration
	OTELEndpoint    string
	OTELServiceName string
	LogLevel        string
	LogFormat       string
}

// LoadConfig загружает конфигурацию из переменных окружения
func LoadConfig() (*Config, error) {
	// .env необязателен
	_ = godotenv.Load()

	cfg := &Config{
		Port:            getEnvInt("PORT", 8000),
		MaxPrincipal:    getEnvFloat("MAX_PRINCIPAL", 1e9),
		MaxMonths:       getEnvInt("MAX_MONTHS", 480),
		MaxRate:         getEnvFloat("MAX_RATE", 100),
		MaxFee:          getEnvFloat("MAX_FEE", 1e8),
		Currency:        strings.ToUpper(getEnvString("CURRENCY", "INR")),
		Locale:          getEnvString("LOCALE", "en-IN"),
		RedisAddr:       getEnvString("REDIS_ADDR", ""),
		SessionTTL:      getEnvDuration("SESSION_TTL", 24*time.Hour),
		OTELEndpoint:    getEnvString("OTEL_ENDPOINT", ""),
		OTELServiceName: getEnvString("OTEL_SERVICE_NAME", "mcp-emi-server"),
		LogLevel:        getEnvString("LOG_LEVEL", "INFO"),
		LogFormat:       getEnvString("LOG_FORMAT", "json"),
	}

	return cfg, nil
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

// Addr возвращает адрес для HTTP сервера
func (c *Config) Addr() string {
	return ":" + strconv.Itoa(c.Port)
}
