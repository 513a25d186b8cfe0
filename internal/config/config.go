// Package config loads all process configuration from the environment once,
// at startup. Handlers and services receive values from here; nothing else
// reads os.Getenv.
package config

import (
	"fmt"
	"time"

	"github.com/caarlos0/env/v11"
)

type Config struct {
	HTTPPort       string        `env:"HTTP_PORT" envDefault:"8080"`
	RequestTimeout time.Duration `env:"REQUEST_TIMEOUT" envDefault:"30s"`

	// orders database (postgres)
	DBHost     string `env:"DB_HOST" envDefault:"localhost"`
	DBPort     int    `env:"DB_PORT" envDefault:"5432"`
	DBUser     string `env:"DB_USER" envDefault:"postgres"`
	DBPassword string `env:"DB_PASSWORD" envDefault:"postgres"`
	DBName     string `env:"DB_NAME" envDefault:"storefront"`

	// catalog database (sqlite)
	CatalogDBPath string `env:"CATALOG_DB_PATH" envDefault:"./catalog.db"`

	MigrationsPath        string `env:"MIGRATIONS_PATH" envDefault:"./internal/order/migrations"`
	CatalogMigrationsPath string `env:"CATALOG_MIGRATIONS_PATH" envDefault:"./internal/catalog/migrations"`

	RedisAddr string `env:"REDIS_ADDR" envDefault:"localhost:6379"`

	KafkaBroker string `env:"KAFKA_BROKER" envDefault:"localhost:9092"`

	// payment gateway
	GatewayURL        string        `env:"GATEWAY_URL,required"`
	GatewayPrivateKey string        `env:"GATEWAY_PRIVATE_KEY,required"`
	GatewaySecret     string        `env:"GATEWAY_INTEGRITY_SECRET,required"`
	GatewayTimeout    time.Duration `env:"GATEWAY_TIMEOUT" envDefault:"10s"`

	Currency string `env:"CURRENCY" envDefault:"COP"`

	OutboxEventInterval    time.Duration `env:"OUTBOX_EVENT_INTERVAL" envDefault:"5s"`
	OutboxRecoveryInterval time.Duration `env:"OUTBOX_RECOVERY_INTERVAL" envDefault:"1m"`
}

func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return cfg, nil
}
