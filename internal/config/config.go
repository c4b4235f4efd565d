package config

import (
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/pelletier/go-toml/v2"
	"github.com/pkg/errors"
)

const (
	EnvPlatformURL = "RS_PLATFORM_URL"
	EnvAPIKey      = "RS_API_KEY"
	EnvClientID    = "RS_CLIENT_ID"
)

// use a single instance of Validate, it caches struct info
var validate = validator.New()

// Duration reads "5m"-style strings from TOML
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(b []byte) error {
	v, err := time.ParseDuration(string(b))
	if err != nil {
		return errors.Wrapf(err, "invalid duration %q", string(b))
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

type Config struct {
	PlatformURL   string   `toml:"platform_url" validate:"required,url"`
	APIKey        string   `toml:"api_key" validate:"required"`
	ClientID      uint64   `toml:"client_id" validate:"required"`
	ConnectorName string   `toml:"connector_name"`
	Subject       string   `toml:"subject" validate:"oneof=hostFinding applicationFinding"`
	LogLevel      string   `toml:"log_level" validate:"oneof=trace debug info warn warning error"`
	Retries       int      `toml:"retries" validate:"gte=0,lte=10"`
	RetryDelay    int      `toml:"retry_delay" validate:"gte=0"`
	Timeout       Duration `toml:"timeout"`

	Dashboard DashboardConfig `toml:"dashboard"`
}

type DashboardConfig struct {
	Listen   string   `toml:"listen" validate:"required"`
	Interval Duration `toml:"interval"`
	Widgets  []string `toml:"widgets"`
}

func Default() *Config {
	return &Config{
		Subject:    "hostFinding",
		LogLevel:   "info",
		Retries:    3,
		RetryDelay: 2,
		Timeout:    Duration{60 * time.Second},
		Dashboard: DashboardConfig{
			Listen:   ":9100",
			Interval: Duration{5 * time.Minute},
		},
	}
}

// Load reads the TOML file at path (skipped when path is empty), applies RS_* overrides from
// the environment and an optional .env file, and validates the result.
func Load(path string) (*Config, error) {
	cfg := Default()

	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, errors.Wrapf(err, "unable to read config file %s", path)
		}
		if err := toml.Unmarshal(data, cfg); err != nil {
			return nil, errors.Wrapf(err, "unable to parse config file %s", path)
		}
	}

	if err := loadDotEnv(".env"); err != nil {
		return nil, err
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func loadDotEnv(path string) error {
	if _, err := os.Stat(path); os.IsNotExist(err) {
		return nil
	}
	if err := godotenv.Load(path); err != nil {
		return errors.Wrapf(err, "error loading %s", path)
	}
	return nil
}

func (c *Config) applyEnv() error {
	if v := os.Getenv(EnvPlatformURL); v != "" {
		c.PlatformURL = v
	}
	if v := os.Getenv(EnvAPIKey); v != "" {
		c.APIKey = v
	}
	if v := os.Getenv(EnvClientID); v != "" {
		id, err := strconv.ParseUint(v, 10, 64)
		if err != nil {
			return errors.Wrapf(err, "invalid %s %q", EnvClientID, v)
		}
		c.ClientID = id
	}
	return nil
}

func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return errors.Wrap(err, "invalid configuration")
	}
	if c.Dashboard.Interval.Duration < time.Minute {
		return errors.Errorf("dashboard interval %v is below the one minute minimum", c.Dashboard.Interval.Duration)
	}
	return nil
}
