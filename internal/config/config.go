package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"auction-settlement/utils"

	"github.com/joho/godotenv"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
)

// Store drivers
const (
	DriverMemory   = "memory"
	DriverPostgres = "postgres"
)

// StoreConfig selects and configures the persistence backend
type StoreConfig struct {
	Driver      string `yaml:"driver"`
	DatabaseURL string `yaml:"database_url"`
	Migrate     bool   `yaml:"migrate"`
}

// JobsConfig controls the settlement schedule
type JobsConfig struct {
	AuctionInterval    time.Duration `yaml:"auction_interval"`
	CommissionInterval time.Duration `yaml:"commission_interval"`
	Lease              bool          `yaml:"lease"`
}

// NotifyConfig controls winner and settlement notices
type NotifyConfig struct {
	WebhookURL string        `yaml:"webhook_url"`
	Attempts   int           `yaml:"attempts"`
	Backoff    time.Duration `yaml:"backoff"`
	Timeout    time.Duration `yaml:"timeout"`
}

// Config is the process configuration
type Config struct {
	Port           string       `yaml:"port"`
	LogLevel       string       `yaml:"log_level"`
	LogFormat      string       `yaml:"log_format"`
	CronSecret     string       `yaml:"cron_secret"`
	CommissionRate string       `yaml:"commission_rate"`
	Store          StoreConfig  `yaml:"store"`
	Jobs           JobsConfig   `yaml:"jobs"`
	Notify         NotifyConfig `yaml:"notify"`
}

// Default returns the configuration used when nothing is overridden
func Default() Config {
	return Config{
		Port:           "8080",
		LogLevel:       "info",
		LogFormat:      "json",
		CommissionRate: "0.05",
		Store:          StoreConfig{Driver: DriverMemory},
		Jobs: JobsConfig{
			AuctionInterval:    time.Minute,
			CommissionInterval: time.Minute,
		},
		Notify: NotifyConfig{
			Attempts: 3,
			Backoff:  500 * time.Millisecond,
			Timeout:  10 * time.Second,
		},
	}
}

// Load reads defaults, then the YAML file named by SETTLEMENT_CONFIG, then
// .env and process environment overrides
func Load() (Config, error) {
	if err := godotenv.Load(); err != nil {
		if !errors.Is(err, fs.ErrNotExist) {
			return Config{}, fmt.Errorf("config: load .env: %w", err)
		}
		utils.Debug("no .env file found, relying on environment variables", nil)
	}
	return load(os.LookupEnv)
}

func load(lookup func(string) (string, bool)) (Config, error) {
	cfg := Default()

	if path, ok := lookup("SETTLEMENT_CONFIG"); ok && path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("config: read %s: %w", path, err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("config: parse %s: %w", path, err)
		}
	}

	if err := applyEnv(&cfg, lookup); err != nil {
		return cfg, err
	}
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	return cfg, nil
}

func applyEnv(cfg *Config, lookup func(string) (string, bool)) error {
	setString(lookup, "PORT", &cfg.Port)
	setString(lookup, "LOG_LEVEL", &cfg.LogLevel)
	setString(lookup, "LOG_FORMAT", &cfg.LogFormat)
	setString(lookup, "CRON_SECRET", &cfg.CronSecret)
	setString(lookup, "COMMISSION_RATE", &cfg.CommissionRate)
	setString(lookup, "STORE_DRIVER", &cfg.Store.Driver)
	setString(lookup, "DATABASE_URL", &cfg.Store.DatabaseURL)
	setString(lookup, "NOTIFY_WEBHOOK_URL", &cfg.Notify.WebhookURL)

	var errs []error
	errs = append(errs,
		setBool(lookup, "DB_MIGRATE", &cfg.Store.Migrate),
		setBool(lookup, "SCHEDULER_LEASE", &cfg.Jobs.Lease),
		setDuration(lookup, "AUCTION_JOB_INTERVAL", &cfg.Jobs.AuctionInterval),
		setDuration(lookup, "COMMISSION_JOB_INTERVAL", &cfg.Jobs.CommissionInterval),
		setInt(lookup, "NOTIFY_ATTEMPTS", &cfg.Notify.Attempts),
	)
	return errors.Join(errs...)
}

// Validate rejects configurations the process cannot start with
func (c Config) Validate() error {
	var errs []error

	switch c.Store.Driver {
	case DriverMemory:
	case DriverPostgres:
		if c.Store.DatabaseURL == "" {
			errs = append(errs, errors.New("config: DATABASE_URL is required for the postgres store"))
		}
	default:
		errs = append(errs, fmt.Errorf("config: unknown store driver %q", c.Store.Driver))
	}

	if c.Jobs.AuctionInterval <= 0 {
		errs = append(errs, fmt.Errorf("config: auction job interval must be positive, got %s", c.Jobs.AuctionInterval))
	}
	if c.Jobs.CommissionInterval <= 0 {
		errs = append(errs, fmt.Errorf("config: commission job interval must be positive, got %s", c.Jobs.CommissionInterval))
	}
	if c.Jobs.Lease && c.Store.Driver != DriverPostgres {
		errs = append(errs, errors.New("config: scheduler lease requires the postgres store"))
	}

	if _, err := c.Rate(); err != nil {
		errs = append(errs, err)
	}
	if c.Notify.Attempts < 1 {
		errs = append(errs, fmt.Errorf("config: notify attempts must be at least 1, got %d", c.Notify.Attempts))
	}
	if c.Port == "" {
		errs = append(errs, errors.New("config: port is required"))
	}

	return errors.Join(errs...)
}

// Rate parses the commission rate
func (c Config) Rate() (decimal.Decimal, error) {
	rate, err := decimal.NewFromString(strings.TrimSpace(c.CommissionRate))
	if err != nil {
		return decimal.Zero, fmt.Errorf("config: invalid commission rate %q: %w", c.CommissionRate, err)
	}
	if rate.IsNegative() || rate.GreaterThan(decimal.NewFromInt(1)) {
		return decimal.Zero, fmt.Errorf("config: commission rate %s outside [0, 1]", rate)
	}
	return rate, nil
}

// Addr returns the listen address for the HTTP server
func (c Config) Addr() string {
	if strings.HasPrefix(c.Port, ":") {
		return c.Port
	}
	return ":" + c.Port
}

func setString(lookup func(string) (string, bool), key string, dst *string) {
	if value, ok := lookup(key); ok && value != "" {
		*dst = value
	}
}

func setBool(lookup func(string) (string, bool), key string, dst *bool) error {
	value, ok := lookup(key)
	if !ok || value == "" {
		return nil
	}
	parsed, err := strconv.ParseBool(value)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = parsed
	return nil
}

func setDuration(lookup func(string) (string, bool), key string, dst *time.Duration) error {
	value, ok := lookup(key)
	if !ok || value == "" {
		return nil
	}
	parsed, err := time.ParseDuration(value)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = parsed
	return nil
}

func setInt(lookup func(string) (string, bool), key string, dst *int) error {
	value, ok := lookup(key)
	if !ok || value == "" {
		return nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return fmt.Errorf("config: %s: %w", key, err)
	}
	*dst = parsed
	return nil
}
