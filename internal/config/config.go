package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	OpenAIKey    string
	DatabaseURL  string
	RedisURL     string
	MetricsPort  string
	BaseURL      string
	ExchangeRate float64 // 0 means fetch at runtime

	RequestDelay   time.Duration
	OracleDelay    time.Duration
	RequestTimeout time.Duration
	OracleTimeout  time.Duration

	EnrichBatchSize int
	VerifyBatchSize int
}

func Load() *Config {
	// .env at the project root, then the current directory
	_ = godotenv.Load("../../.env")
	_ = godotenv.Load()
	return &Config{
		OpenAIKey:    os.Getenv("OPENAI_API_KEY"),
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		RedisURL:     os.Getenv("REDIS_URL"),
		MetricsPort:  getEnv("METRICS_PORT", "9090"),
		BaseURL:      getEnv("SCRAPER_BASE_URL", "https://www.ivory.co.il/"),
		ExchangeRate: getEnvFloat("EXCHANGE_RATE", 0),

		RequestDelay:   time.Second,
		OracleDelay:    500 * time.Millisecond,
		RequestTimeout: 30 * time.Second,
		OracleTimeout:  90 * time.Second,

		EnrichBatchSize: 5,
		VerifyBatchSize: 10,
	}
}

func getEnv(k, d string) string {
	if v := os.Getenv(k); v != "" {
		return v
	}
	return d
}

func getEnvFloat(k string, d float64) float64 {
	if v := os.Getenv(k); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			return f
		}
	}
	return d
}
