package config

import (
	"os"
	"strconv"

	"github.com/joho/godotenv"
)

type (
	Postgres struct {
		User   string
		Pass   string
		Host   string
		Port   string
		DBName string
	}

	Redis struct {
		Addr string
		DB   int
	}

	Upstream struct {
		BaseURL    string
		APIKey     string
		TimeoutSec int
	}

	Chart struct {
		BusyTTLSec    int
		RelatedTTLSec int
		RelatedTopN   int
	}

	ServerConfig struct {
		Port   string
		Host   string
		LogLvl string
	}

	Config struct {
		Postgres Postgres
		Redis    Redis
		Upstream Upstream
		Chart    Chart
		Server   ServerConfig
	}
)

func LoadConfig() *Config {
	// Missing .env is fine; env vars win either way.
	_ = godotenv.Load()

	cfg := &Config{}

	cfg.Postgres.User = getEnv("DB_USER", "postgres")
	cfg.Postgres.Pass = getEnv("DB_PASS", "postgres")
	cfg.Postgres.Host = getEnv("DB_HOST", "localhost")
	cfg.Postgres.Port = getEnv("DB_PORT", "5432")
	cfg.Postgres.DBName = getEnv("DB_NAME", "chartflow")

	cfg.Redis.Addr = getEnv("REDIS_ADDR", "localhost:6379")
	cfg.Redis.DB = getEnvInt("REDIS_DB", 0)

	cfg.Upstream.BaseURL = getEnv("UPSTREAM_BASE_URL", "https://pro-api.coinmarketcap.com")
	cfg.Upstream.APIKey = getEnv("UPSTREAM_API_KEY", "")
	cfg.Upstream.TimeoutSec = getEnvInt("UPSTREAM_TIMEOUT_SEC", 10)

	cfg.Chart.BusyTTLSec = getEnvInt("CHART_BUSY_TTL_SEC", 30)
	cfg.Chart.RelatedTTLSec = getEnvInt("RELATED_TTL_SEC", 3600)
	cfg.Chart.RelatedTopN = getEnvInt("RELATED_TOP_N", 10)

	cfg.Server.LogLvl = getEnv("LOG_LVL", "dev")
	cfg.Server.Port = getEnv("PORT", "8080")
	cfg.Server.Host = getEnv("HOST", "0.0.0.0")

	return cfg
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists && value != "" {
		return value
	}

	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	value, err := strconv.Atoi(getEnv(key, strconv.Itoa(defaultValue)))
	if err != nil {
		return defaultValue
	}
	return value
}
