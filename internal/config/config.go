package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/subosito/gotenv"
)

const (
	DriverPostgres = "postgres"
	DriverMemory   = "memory"
)

type Config struct {
	App struct {
		Env      string
		Timezone string
	} `mapstructure:"app"`

	HTTP struct {
		Addr string
	} `mapstructure:"http"`

	Storage struct {
		Driver string
	} `mapstructure:"storage"`

	Postgres struct {
		DSN      string
		MaxConns int32 `mapstructure:"max_conns"`
	} `mapstructure:"postgres"`

	Kafka struct {
		Enabled bool
		Brokers []string
		Topic   string
		GroupID string `mapstructure:"group_id"`
	} `mapstructure:"kafka"`

	Metrics struct {
		Enabled bool
	} `mapstructure:"metrics"`

	Web struct {
		Dir string
	} `mapstructure:"web"`
}

// Location resolves App.Timezone; Load has already validated it
func (c Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.App.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// Load reads the YAML file at path and overlays APP_* environment variables.
// A .env file in the working directory is applied first when present.
func Load(path string) (Config, error) {
	var c Config

	if err := gotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return c, fmt.Errorf("load .env: %w", err)
	}

	v := viper.New()
	setDefaults(v)
	v.SetConfigFile(path)
	v.SetEnvPrefix("APP")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return c, fmt.Errorf("read config %s: %w", path, err)
	}
	if err := v.Unmarshal(&c); err != nil {
		return c, fmt.Errorf("decode config: %w", err)
	}
	if err := c.validate(); err != nil {
		return c, err
	}
	return c, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("app.env", "prod")
	v.SetDefault("app.timezone", "UTC")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("storage.driver", DriverPostgres)
	v.SetDefault("postgres.dsn", "")
	v.SetDefault("postgres.max_conns", 25)
	v.SetDefault("kafka.enabled", false)
	v.SetDefault("kafka.brokers", []string{"localhost:9092"})
	v.SetDefault("kafka.topic", "stock-events")
	v.SetDefault("kafka.group_id", "ledger-tail")
	v.SetDefault("metrics.enabled", true)
	v.SetDefault("web.dir", "")
}

func (c Config) validate() error {
	if _, err := time.LoadLocation(c.App.Timezone); err != nil {
		return fmt.Errorf("app.timezone: %w", err)
	}
	switch c.Storage.Driver {
	case DriverPostgres:
		if c.Postgres.DSN == "" {
			return errors.New("postgres.dsn is required for the postgres storage driver")
		}
	case DriverMemory:
	default:
		return fmt.Errorf("storage.driver: unknown driver %q", c.Storage.Driver)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka.brokers is required when kafka is enabled")
	}
	return nil
}
