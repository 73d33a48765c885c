package config

import (
	"fmt"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/joho/godotenv"
)

type Config struct {
	Env            string        `env:"ENV" env-default:"local"`
	HTTPAddr       string        `env:"HTTP_ADDR" env-default:"0.0.0.0:8080"`
	PollDuration   time.Duration `env:"POLL_DURATION" env-default:"60s"`
	PersistTimeout time.Duration `env:"PERSIST_TIMEOUT" env-default:"5s"`
	PersistRetries uint64        `env:"PERSIST_RETRIES" env-default:"3"`
	AllowedOrigins []string      `env:"ALLOWED_ORIGINS" env-default:"*" env-separator:","`
	Postgres       PostgresConfig
}

type PostgresConfig struct {
	Host     string `env:"POSTGRES_HOST"`
	Port     string `env:"POSTGRES_PORT" env-default:"5432"`
	User     string `env:"POSTGRES_USER"`
	Password string `env:"POSTGRES_PASSWORD"`
	DB       string `env:"POSTGRES_DB"`
}

// Enabled reports whether results should be archived in postgres.
func (c PostgresConfig) Enabled() bool {
	return c.Host != ""
}

func (c PostgresConfig) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%s/%s?sslmode=disable", c.User, c.Password, c.Host, c.Port, c.DB)
}

// Load reads a .env file when present and then the process environment.
func Load() (*Config, error) {
	_ = godotenv.Load()

	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("cannot read config: %w", err)
	}
	if cfg.PollDuration <= 0 {
		return nil, fmt.Errorf("POLL_DURATION must be positive, got %s", cfg.PollDuration)
	}
	return &cfg, nil
}
