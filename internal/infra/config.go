package infra

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"stock_ledger/internal/domain"
	"stock_ledger/internal/ledger"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultConfigPath is where the CLI looks for the configuration file.
	DefaultConfigPath = "configs/config.yaml"

	// EnvPrefix prefixes every environment override (e.g. STOCKS_WINDOW).
	EnvPrefix = "STOCKS"
)

// Config holds every application setting.
// LoadConfig reads the YAML file, then applies environment overrides.
type Config struct {
	App struct {
		Name string `yaml:"name" validate:"required"`
	} `yaml:"app"`

	Market struct {
		Window     time.Duration            `yaml:"window" validate:"gt=0"`
		Currency   string                   `yaml:"currency" validate:"required,len=3,uppercase"`
		Securities []domain.SecurityListing `yaml:"securities"`
	} `yaml:"market"`

	Catalog struct {
		// Path of the SQLite catalog. Empty keeps the catalog in memory.
		Path string `yaml:"path"`
	} `yaml:"catalog"`

	Logging struct {
		Level string `yaml:"level" validate:"omitempty,oneof=debug info warn error"`
		Dir   string `yaml:"dir"`
	} `yaml:"logging"`

	Metrics struct {
		// Addr serves Prometheus metrics when set (e.g. "localhost:9100").
		Addr string `yaml:"addr" validate:"omitempty,hostname_port"`
	} `yaml:"metrics"`
}

// envOverrides lists the settings that may come from the environment.
type envOverrides struct {
	LogLevel    string        `envconfig:"LOG_LEVEL"`
	Window      time.Duration `envconfig:"WINDOW"`
	Currency    string        `envconfig:"CURRENCY"`
	CatalogPath string        `envconfig:"CATALOG_PATH"`
	MetricsAddr string        `envconfig:"METRICS_ADDR"`
}

// DefaultConfig returns the built-in configuration.
func DefaultConfig() *Config {
	var cfg Config
	cfg.App.Name = "stock-ledger"
	cfg.Market.Window = ledger.DefaultWindow
	cfg.Market.Currency = "GBP"
	cfg.Logging.Level = "info"
	cfg.Logging.Dir = "logs"
	return &cfg
}

// LoadConfig reads and validates the configuration. A missing file at
// DefaultConfigPath is not an error: the defaults are used. Any other missing
// path is.
func LoadConfig(path string) (*Config, error) {
	cfg := DefaultConfig()

	data, err := os.ReadFile(path)
	switch {
	case errors.Is(err, fs.ErrNotExist) && path == DefaultConfigPath:
		// defaults only
	case err != nil:
		return nil, err
	default:
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse %s: %w", path, err)
		}
	}

	// .env is optional
	_ = godotenv.Load()

	if err := overrideWithEnv(cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

var validate = validator.New()

// Validate checks configuration validity
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			return &domain.ConfigError{Field: verrs[0].Namespace(), Err: verrs[0]}
		}
		return err
	}

	seen := make(map[string]bool, len(c.Market.Securities))
	for i, listing := range c.Market.Securities {
		field := fmt.Sprintf("market.securities[%d]", i)
		if _, err := listing.Security(); err != nil {
			return &domain.ConfigError{Field: field, Err: err}
		}
		if seen[listing.Symbol] {
			return &domain.ConfigError{Field: field, Err: fmt.Errorf("duplicate symbol %s", listing.Symbol)}
		}
		seen[listing.Symbol] = true
	}

	return nil
}

// overrideWithEnv replaces settings with STOCKS_* environment variables when present.
func overrideWithEnv(cfg *Config) error {
	var env envOverrides
	if err := envconfig.Process(EnvPrefix, &env); err != nil {
		return &domain.ConfigError{Field: "env", Err: err}
	}

	if env.LogLevel != "" {
		cfg.Logging.Level = env.LogLevel
	}
	if env.Window != 0 {
		cfg.Market.Window = env.Window
	}
	if env.Currency != "" {
		cfg.Market.Currency = env.Currency
	}
	if env.CatalogPath != "" {
		cfg.Catalog.Path = env.CatalogPath
	}
	if env.MetricsAddr != "" {
		cfg.Metrics.Addr = env.MetricsAddr
	}
	return nil
}
