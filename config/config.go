package config

import (
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cast"
)

type Config struct {
	ServiceName string
	LoggerLevel string

	AppPort int

	PostgresHost     string
	PostgresPort     string
	PostgresUser     string
	PostgresPassword string
	PostgresDB       string

	RedisHost     string
	RedisPort     string
	RedisPassword string

	TelegramBotToken string
	WebAppURL        string

	UploadDir      string
	UploadMaxBytes int64

	CurrencySymbol string
	DefaultBidStep string
	SessionTTLDays int
}

func Load() Config {
	_ = godotenv.Load(".env")

	cfg := Config{}

	cfg.ServiceName = cast.ToString(getOrReturnDefault("SERVICE_NAME", "marketbot"))
	cfg.LoggerLevel = cast.ToString(getOrReturnDefault("LOGGER_LEVEL", "debug"))
	cfg.AppPort = cast.ToInt(getOrReturnDefault("APP_PORT", 8080))

	cfg.PostgresHost = cast.ToString(getOrReturnDefault("POSTGRES_HOST", "localhost"))
	cfg.PostgresPort = cast.ToString(getOrReturnDefault("POSTGRES_PORT", "5432"))
	cfg.PostgresUser = cast.ToString(getOrReturnDefault("POSTGRES_USER", "postgres"))
	cfg.PostgresPassword = cast.ToString(getOrReturnDefault("POSTGRES_PASSWORD", "1234"))
	cfg.PostgresDB = cast.ToString(getOrReturnDefault("POSTGRES_DB", "marketbot"))

	cfg.RedisHost = cast.ToString(getOrReturnDefault("REDIS_HOST", "localhost"))
	cfg.RedisPort = cast.ToString(getOrReturnDefault("REDIS_PORT", "6379"))
	cfg.RedisPassword = cast.ToString(getOrReturnDefault("REDIS_PASSWORD", ""))

	cfg.TelegramBotToken = cast.ToString(getOrReturnDefault("TG_BOT_TOKEN", ""))
	cfg.WebAppURL = cast.ToString(getOrReturnDefault("WEBAPP_URL", "https://localhost:8080"))

	cfg.UploadDir = cast.ToString(getOrReturnDefault("UPLOAD_DIR", "uploads"))
	cfg.UploadMaxBytes = cast.ToInt64(getOrReturnDefault("UPLOAD_MAX_BYTES", 10<<20))

	cfg.CurrencySymbol = cast.ToString(getOrReturnDefault("CURRENCY_SYMBOL", "₪"))
	cfg.DefaultBidStep = cast.ToString(getOrReturnDefault("DEFAULT_BID_STEP", "1.00"))
	cfg.SessionTTLDays = cast.ToInt(getOrReturnDefault("SESSION_TTL_DAYS", 30))

	return cfg
}

func getOrReturnDefault(key string, defaultValue interface{}) interface{} {
	value := os.Getenv(key)
	if value != "" {
		return value
	}
	return defaultValue
}
