package config

import (
	"fmt"
	"os"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

// Config is read from the environment. When CONFIG_FILE names a YAML file it
// is read first and environment variables override it.
type Config struct {
	Env         string `yaml:"env" env:"APP_ENV" env-default:"development"`
	ListenAddr  string `yaml:"listen_addr" env:"LISTEN_ADDR" env-default:":8080"`
	LogLevel    string `yaml:"log_level" env:"LOG_LEVEL" env-default:"info"`
	Timezone    string `yaml:"timezone" env:"TIMEZONE" env-default:"Local"`
	AutoMigrate bool   `yaml:"auto_migrate" env:"AUTO_MIGRATE" env-default:"true"`

	// Empty selects the in-memory store, which is only allowed in development.
	DatabaseURL  string        `yaml:"-" env:"DATABASE_URL"`
	DBMaxConns   int32         `yaml:"db_max_conns" env:"DB_MAX_CONNS" env-default:"10"`
	QueryTimeout time.Duration `yaml:"query_timeout" env:"QUERY_TIMEOUT" env-default:"5s"`

	ReminderWorkers      int           `yaml:"reminder_workers" env:"REMINDER_WORKERS" env-default:"0"`
	ReminderPollInterval time.Duration `yaml:"reminder_poll_interval" env:"REMINDER_POLL_INTERVAL" env-default:"15s"`

	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" env:"SHUTDOWN_TIMEOUT" env-default:"10s"`

	location *time.Location
}

func Load() (*Config, error) {
	cfg := &Config{}
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := cleanenv.ReadConfig(path, cfg); err != nil {
			return nil, fmt.Errorf("failed to read %s: %w", path, err)
		}
	} else if err := cleanenv.ReadEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) validate() error {
	if c.DatabaseURL == "" && !c.IsDevelopment() {
		return fmt.Errorf("DATABASE_URL is required when APP_ENV=%s", c.Env)
	}
	loc, err := time.LoadLocation(c.Timezone)
	if err != nil {
		return fmt.Errorf("invalid TIMEZONE %q: %w", c.Timezone, err)
	}
	c.location = loc
	if c.ReminderWorkers < 0 {
		return fmt.Errorf("REMINDER_WORKERS must not be negative")
	}
	return nil
}

func (c *Config) IsDevelopment() bool { return c.Env == "development" }

// InMemory reports whether the process runs without Postgres.
func (c *Config) InMemory() bool { return c.DatabaseURL == "" }

// Location is the zone that defines calendar days for filters and the dashboard.
func (c *Config) Location() *time.Location {
	if c.location == nil {
		return time.Local
	}
	return c.location
}
