// Package config provides configuration management for the application.
//
// Values are layered: built-in defaults, then config.yaml (with ${VAR} and
// ${VAR:-default} expansion), then environment variables. A .env file in the
// working directory is loaded first and never overrides the real environment.
package config

import (
	"errors"
	"fmt"
	"os"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"clicker/internal/keys"
)

const (
	// DefaultBodySizeLimit is the default max request body size (1MB)
	DefaultBodySizeLimit int64 = 1 << 20

	minBodySizeLimit int64 = 1 << 10
	maxBodySizeLimit int64 = 100 << 20
)

// configPaths are tried in order when CLICKER_CONFIG is unset.
var configPaths = []string{"config.yaml", "config/config.yaml"}

var validate = validator.New(validator.WithRequiredStructEnabled())

// Config holds the application configuration
type Config struct {
	Network NetworkConfig `yaml:"network"`
	Wallets WalletsConfig `yaml:"wallets"`
	Refs    RefsConfig    `yaml:"refs"`
	Server  ServerConfig  `yaml:"server"`
	Metrics MetricsConfig `yaml:"metrics"`
	Log     LogConfig     `yaml:"log"`
	Journal JournalConfig `yaml:"journal"`

	// Identities overrides the TEST1_/TEST2_/BOMBAY_ environment identities
	// when non-empty.
	Identities map[string]keys.Source `yaml:"identities"`
}

// NetworkConfig describes the chain the client talks to
type NetworkConfig struct {
	Name             string        `yaml:"name" env:"CLICKER_NETWORK" validate:"required"`
	LCDURL           string        `yaml:"lcd_url" env:"CLICKER_LCD_URL" validate:"required,url"`
	ChainID          string        `yaml:"chain_id" env:"CLICKER_CHAIN_ID" validate:"required"`
	Bech32Prefix     string        `yaml:"bech32_prefix" env:"CLICKER_BECH32_PREFIX" validate:"required,lowercase"`
	CoinType         uint32        `yaml:"coin_type" env:"CLICKER_COIN_TYPE"`
	GasPrice         string        `yaml:"gas_price" env:"CLICKER_GAS_PRICE" validate:"required"`
	GasLimit         uint64        `yaml:"gas_limit" env:"CLICKER_GAS_LIMIT"`
	GasAdjustment    float64       `yaml:"gas_adjustment" env:"CLICKER_GAS_ADJUSTMENT" validate:"gt=0"`
	BroadcastTimeout time.Duration `yaml:"broadcast_timeout" env:"CLICKER_BROADCAST_TIMEOUT" validate:"gte=0"`
}

// WalletsConfig selects which identity signs by default
type WalletsConfig struct {
	DefaultSigner string `yaml:"default_signer" env:"CLICKER_DEFAULT_SIGNER"`
}

// RefsConfig locates the contract address book
type RefsConfig struct {
	Path     string `yaml:"path" env:"CLICKER_REFS_PATH"`
	RedisURL string `yaml:"redis_url" env:"CLICKER_REFS_REDIS_URL" validate:"omitempty,url"`
	RedisKey string `yaml:"redis_key" env:"CLICKER_REFS_REDIS_KEY"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Port      string `yaml:"port" env:"PORT" validate:"required,numeric"`
	MasterKey string `yaml:"master_key" env:"CLICKER_MASTER_KEY"`
	// BodySizeLimit accepts sizes like "512K" or "1MB"; empty means 1MB.
	BodySizeLimit string `yaml:"body_size_limit" env:"CLICKER_BODY_SIZE_LIMIT"`
	// SwaggerEnabled serves the API docs at /swagger/index.html.
	SwaggerEnabled bool `yaml:"swagger_enabled" env:"SWAGGER_ENABLED"`
}

// MetricsConfig holds Prometheus configuration
type MetricsConfig struct {
	Enabled  bool   `yaml:"enabled" env:"METRICS_ENABLED"`
	Endpoint string `yaml:"endpoint" env:"METRICS_ENDPOINT"`
}

// LogConfig holds process logging configuration
type LogConfig struct {
	Format string `yaml:"format" env:"LOG_FORMAT" validate:"oneof=auto pretty json"`
	Level  string `yaml:"level" env:"LOG_LEVEL" validate:"oneof=debug info warn error"`
}

// JournalConfig controls the record of executed transactions
type JournalConfig struct {
	Enabled bool `yaml:"enabled" env:"JOURNAL_ENABLED"`
	// RetentionDays purges older entries; 0 keeps everything.
	RetentionDays int           `yaml:"retention_days" env:"JOURNAL_RETENTION_DAYS" validate:"gte=0"`
	Storage       StorageConfig `yaml:"storage"`
}

// StorageConfig selects the journal database
type StorageConfig struct {
	Type             string `yaml:"type" env:"STORAGE_TYPE" validate:"oneof=sqlite postgresql mongodb"`
	SQLitePath       string `yaml:"sqlite_path" env:"SQLITE_PATH"`
	PostgresURL      string `yaml:"postgres_url" env:"POSTGRES_URL" validate:"required_if=Type postgresql"`
	PostgresMaxConns int    `yaml:"postgres_max_conns" env:"POSTGRES_MAX_CONNS" validate:"gte=0"`
	MongoURL         string `yaml:"mongodb_url" env:"MONGODB_URL" validate:"required_if=Type mongodb"`
	MongoDatabase    string `yaml:"mongodb_database" env:"MONGODB_DATABASE"`
}

// LoadResult is the outcome of Load.
type LoadResult struct {
	Config     *Config
	Identities keys.Set
}

// Load reads configuration from .env, config.yaml and the environment, then
// resolves the signing identities.
func Load() (*LoadResult, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	cfg := buildDefaultConfig()

	if err := applyYAML(cfg); err != nil {
		return nil, err
	}
	if err := applyEnvOverrides(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	var (
		identities keys.Set
		err        error
	)
	if len(cfg.Identities) > 0 {
		identities, err = keys.FromSources(cfg.Identities)
	} else {
		identities, err = keys.FromEnv()
	}
	if err != nil {
		return nil, fmt.Errorf("identities: %w", err)
	}

	return &LoadResult{Config: cfg, Identities: identities}, nil
}

func buildDefaultConfig() *Config {
	return &Config{
		Network: NetworkConfig{
			Name:             "localterra",
			LCDURL:           "http://localhost:1317",
			ChainID:          "localterra",
			Bech32Prefix:     "terra",
			CoinType:         330,
			GasPrice:         "0.15uluna",
			GasLimit:         0,
			GasAdjustment:    1.4,
			BroadcastTimeout: 30 * time.Second,
		},
		Wallets: WalletsConfig{
			DefaultSigner: keys.CustomTester1,
		},
		Refs: RefsConfig{
			Path: "refs.terrain.json",
		},
		Server: ServerConfig{
			Port: "8080",
		},
		Metrics: MetricsConfig{
			Endpoint: "/metrics",
		},
		Log: LogConfig{
			Format: "auto",
			Level:  "info",
		},
		Journal: JournalConfig{
			RetentionDays: 30,
			Storage: StorageConfig{
				Type:             "sqlite",
				SQLitePath:       "data/clicker.db",
				PostgresMaxConns: 10,
				MongoDatabase:    "clicker",
			},
		},
	}
}

// applyYAML merges the first config file found over cfg. A missing file is
// not an error.
func applyYAML(cfg *Config) error {
	paths := configPaths
	if p := os.Getenv("CLICKER_CONFIG"); p != "" {
		paths = []string{p}
	}

	for _, p := range paths {
		data, err := os.ReadFile(p)
		if err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return fmt.Errorf("read %s: %w", p, err)
		}
		if err := yaml.Unmarshal([]byte(expandString(string(data))), cfg); err != nil {
			return fmt.Errorf("parse %s: %w", p, err)
		}
		return nil
	}
	return nil
}

func applyEnvOverrides(cfg *Config) error {
	if err := env.Parse(cfg); err != nil {
		return fmt.Errorf("parse env: %w", err)
	}
	return nil
}

// Validate checks field constraints and the body size format.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	if err := ValidateBodySizeLimit(c.Server.BodySizeLimit); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

var placeholder = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(:-([^}]*))?\}`)

// expandString replaces ${VAR} and ${VAR:-default}. A ${VAR} whose variable
// is unset or empty is left as written.
func expandString(s string) string {
	return placeholder.ReplaceAllStringFunc(s, func(m string) string {
		parts := placeholder.FindStringSubmatch(m)
		name, hasDefault, def := parts[1], parts[2] != "", parts[3]
		if v := os.Getenv(name); v != "" {
			return v
		}
		if hasDefault {
			return def
		}
		return m
	})
}

// ParseBodySizeLimit converts "10M", "100KB" or a plain byte count into
// bytes. Empty returns DefaultBodySizeLimit.
func ParseBodySizeLimit(s string) (int64, error) {
	s = strings.ToUpper(strings.TrimSpace(s))
	if s == "" {
		return DefaultBodySizeLimit, nil
	}

	multiplier := int64(1)
	number := s
	for _, unit := range []struct {
		suffix string
		mult   int64
	}{
		{"KB", 1 << 10}, {"MB", 1 << 20}, {"GB", 1 << 30},
		{"K", 1 << 10}, {"M", 1 << 20}, {"G", 1 << 30},
	} {
		if strings.HasSuffix(s, unit.suffix) {
			multiplier = unit.mult
			number = strings.TrimSuffix(s, unit.suffix)
			break
		}
	}

	n, err := strconv.ParseInt(number, 10, 64)
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid body size limit %q", s)
	}
	size := n * multiplier
	if size < minBodySizeLimit || size > maxBodySizeLimit {
		return 0, fmt.Errorf("body size limit %q outside 1K..100M", s)
	}
	return size, nil
}

// ValidateBodySizeLimit reports whether s is an acceptable body size limit.
func ValidateBodySizeLimit(s string) error {
	_, err := ParseBodySizeLimit(s)
	return err
}
