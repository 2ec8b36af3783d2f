package config

import (
	"context"
	"fmt"
	"time"

	"github.com/sethvargo/go-envconfig"
)

type Config struct {
	Port      string `env:"PORT,      default=8080"`
	Env       string `env:"ENV,       default=development"`
	JWTSecret string `env:"JWT_SECRET"`
	LogLevel  string `env:"LOG_LEVEL, default=info"`

	Mongo    MongoConfig
	Redis    RedisConfig
	Ledger   LedgerConfig
	Notifier NotifierConfig
}

type MongoConfig struct {
	URI      string `env:"MONGO_URI, default=mongodb://localhost:27017"`
	Database string `env:"MONGO_DB,  default=produce_chain"`
}

type RedisConfig struct {
	Addr string `env:"REDIS_ADDR, default=localhost:6379"`
	DB   int    `env:"REDIS_DB,   default=0"`
}

type LedgerConfig struct {
	// Mode selects the ledger backend: "http" for the remote ledger service,
	// "memory" for the in-process ledger used in local development.
	Mode    string        `env:"LEDGER_MODE,    default=http"`
	BaseURL string        `env:"LEDGER_URL,     default=http://localhost:8000"`
	Timeout time.Duration `env:"LEDGER_TIMEOUT, default=10s"`
}

type NotifierConfig struct {
	// Mode selects the notifier backend: "sms" for the gateway, "log" to
	// write messages to the logger.
	Mode    string        `env:"NOTIFIER_MODE,    default=log"`
	BaseURL string        `env:"SMS_GATEWAY_URL"`
	APIKey  string        `env:"SMS_API_KEY"`
	Timeout time.Duration `env:"NOTIFIER_TIMEOUT, default=5s"`
	Workers int           `env:"NOTIFIER_WORKERS, default=4"`
}

// Load reads configuration from environment variables using go-envconfig.
func Load() *Config {
	var cfg Config
	if err := envconfig.Process(context.Background(), &cfg); err != nil {
		panic(fmt.Sprintf("config: failed to load configuration: %v", err))
	}
	return &cfg
}
