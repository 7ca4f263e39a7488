package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"clicker/internal/keys"
)

const testMnemonic = "abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon abandon about"

// setIdentityEnv provides the three environment identities Load expects.
func setIdentityEnv(t *testing.T) {
	t.Helper()
	t.Setenv("TEST1_SEED_PHRASE", testMnemonic)
	t.Setenv("TEST2_PRIVATE_KEY", strings.Repeat("ab", 32))
	t.Setenv("BOMBAY_SEED_PHRASE", testMnemonic)
}

func writeFile(t *testing.T, name, content string) {
	t.Helper()
	if err := os.WriteFile(name, []byte(content), 0o644); err != nil {
		t.Fatalf("Failed to write %s: %v", name, err)
	}
}

func TestLoad_Defaults(t *testing.T) {
	t.Chdir(t.TempDir())
	setIdentityEnv(t)

	result, err := Load()
	require.NoError(t, err)

	cfg := result.Config
	assert.Equal(t, "localterra", cfg.Network.Name)
	assert.Equal(t, "http://localhost:1317", cfg.Network.LCDURL)
	assert.Equal(t, "terra", cfg.Network.Bech32Prefix)
	assert.Equal(t, uint32(330), cfg.Network.CoinType)
	assert.Equal(t, "0.15uluna", cfg.Network.GasPrice)
	assert.Zero(t, cfg.Network.GasLimit)
	assert.Equal(t, 1.4, cfg.Network.GasAdjustment)
	assert.Equal(t, 30*time.Second, cfg.Network.BroadcastTimeout)
	assert.Equal(t, keys.CustomTester1, cfg.Wallets.DefaultSigner)
	assert.Equal(t, "refs.terrain.json", cfg.Refs.Path)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.False(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.Server.SwaggerEnabled)
	assert.Equal(t, "auto", cfg.Log.Format)
	assert.False(t, cfg.Journal.Enabled)
	assert.Equal(t, 30, cfg.Journal.RetentionDays)
	assert.Equal(t, "sqlite", cfg.Journal.Storage.Type)
	assert.Equal(t, "data/clicker.db", cfg.Journal.Storage.SQLitePath)

	assert.Equal(t, []string{keys.Bombay, keys.CustomTester1, keys.CustomTester2}, result.Identities.Names())
	cred, _ := result.Identities.Get(keys.CustomTester2)
	assert.Equal(t, keys.KindPrivateKey, cred.Kind())
}

func TestLoad_MissingIdentityFails(t *testing.T) {
	t.Chdir(t.TempDir())
	setIdentityEnv(t)
	t.Setenv("BOMBAY_SEED_PHRASE", "")

	_, err := Load()
	require.Error(t, err)
	assert.Contains(t, err.Error(), keys.Bombay)
}

func TestLoad_WrongKindEnvFails(t *testing.T) {
	t.Chdir(t.TempDir())
	setIdentityEnv(t)
	t.Setenv("TEST2_PRIVATE_KEY", "")
	t.Setenv("TEST2_SEED_PHRASE", testMnemonic)

	_, err := Load()
	require.Error(t, err)
	assert.ErrorIs(t, err, keys.ErrInvalidCredential)
	assert.Contains(t, err.Error(), keys.CustomTester2)
}

func TestLoad_YAMLWithPlaceholders(t *testing.T) {
	t.Chdir(t.TempDir())
	setIdentityEnv(t)
	t.Setenv("TEST_LCD_HOST", "lcd.example.com")

	writeFile(t, "config.yaml", `
network:
  name: testnet
  lcd_url: "https://${TEST_LCD_HOST}"
  chain_id: "${TEST_CHAIN_ID:-pisco-1}"
  gas_limit: 250000
  broadcast_timeout: 1m
server:
  port: "${TEST_PORT_DEFAULTS:-9999}"
`)

	result, err := Load()
	require.NoError(t, err)

	cfg := result.Config
	assert.Equal(t, "testnet", cfg.Network.Name)
	assert.Equal(t, "https://lcd.example.com", cfg.Network.LCDURL)
	assert.Equal(t, "pisco-1", cfg.Network.ChainID)
	assert.Equal(t, uint64(250000), cfg.Network.GasLimit)
	assert.Equal(t, time.Minute, cfg.Network.BroadcastTimeout)
	assert.Equal(t, "9999", cfg.Server.Port)
	// untouched keys keep their defaults
	assert.Equal(t, "0.15uluna", cfg.Network.GasPrice)
}

func TestLoad_EnvOverridesYAML(t *testing.T) {
	t.Chdir(t.TempDir())
	setIdentityEnv(t)
	t.Setenv("CLICKER_NETWORK", "mainnet")
	t.Setenv("PORT", "1111")

	writeFile(t, "config.yaml", `
network:
  name: testnet
server:
  port: "9999"
`)

	result, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "mainnet", result.Config.Network.Name)
	assert.Equal(t, "1111", result.Config.Server.Port)
}

func TestLoad_ConfigPathFromEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	setIdentityEnv(t)

	path := filepath.Join(dir, "custom.yaml")
	writeFile(t, path, "wallets:\n  default_signer: bombay\n")
	t.Setenv("CLICKER_CONFIG", path)

	result, err := Load()
	require.NoError(t, err)
	assert.Equal(t, keys.Bombay, result.Config.Wallets.DefaultSigner)
}

func TestLoad_YAMLIdentities(t *testing.T) {
	t.Chdir(t.TempDir())
	// no TEST1_/TEST2_/BOMBAY_ variables: the YAML section replaces them
	t.Setenv("TEST1_SEED_PHRASE", "")
	t.Setenv("TEST2_PRIVATE_KEY", "")
	t.Setenv("BOMBAY_SEED_PHRASE", "")
	t.Setenv("OPERATOR_KEY", strings.Repeat("cd", 32))

	writeFile(t, "config.yaml", `
wallets:
  default_signer: operator
identities:
  operator:
    private_key: "${OPERATOR_KEY}"
`)

	result, err := Load()
	require.NoError(t, err)
	assert.Equal(t, []string{"operator"}, result.Identities.Names())
	key, ok := result.Identities["operator"].PrivateKey()
	assert.True(t, ok)
	assert.Equal(t, strings.Repeat("cd", 32), key)
}

func TestLoad_DotEnvFile(t *testing.T) {
	t.Chdir(t.TempDir())
	setIdentityEnv(t)
	// Registered so t.Setenv restores the variable after godotenv sets it.
	t.Setenv("CLICKER_CHAIN_ID", "")
	require.NoError(t, os.Unsetenv("CLICKER_CHAIN_ID"))
	t.Setenv("PORT", "9999")

	writeFile(t, ".env", "CLICKER_CHAIN_ID=from-dotenv\nPORT=7070\n")

	result, err := Load()
	require.NoError(t, err)
	assert.Equal(t, "from-dotenv", result.Config.Network.ChainID)
	assert.Equal(t, "9999", result.Config.Server.Port, "real environment wins over .env")
}

func TestLoad_InvalidValues(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{"bad lcd url", map[string]string{"CLICKER_LCD_URL": "not a url"}},
		{"bad log format", map[string]string{"LOG_FORMAT": "xml"}},
		{"bad log level", map[string]string{"LOG_LEVEL": "loud"}},
		{"zero gas adjustment", map[string]string{"CLICKER_GAS_ADJUSTMENT": "0"}},
		{"non-numeric port", map[string]string{"PORT": "http"}},
		{"bad body size", map[string]string{"CLICKER_BODY_SIZE_LIMIT": "1G"}},
		{"unparseable duration", map[string]string{"CLICKER_BROADCAST_TIMEOUT": "soon"}},
		{"unknown storage type", map[string]string{"STORAGE_TYPE": "cassandra"}},
		{"postgres without url", map[string]string{"STORAGE_TYPE": "postgresql"}},
		{"negative retention", map[string]string{"JOURNAL_RETENTION_DAYS": "-1"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Chdir(t.TempDir())
			setIdentityEnv(t)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := Load()
			assert.Error(t, err)
		})
	}
}

// TestApplyEnvOverrides tests the applyEnvOverrides function
func TestApplyEnvOverrides(t *testing.T) {
	tests := []struct {
		name    string
		envVars map[string]string
		check   func(t *testing.T, cfg *Config)
	}{
		{
			name:    "PORT override",
			envVars: map[string]string{"PORT": "3000"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Server.Port != "3000" {
					t.Errorf("Server.Port = %q, want %q", cfg.Server.Port, "3000")
				}
			},
		},
		{
			name:    "CLICKER_MASTER_KEY override",
			envVars: map[string]string{"CLICKER_MASTER_KEY": "my-secret"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Server.MasterKey != "my-secret" {
					t.Errorf("Server.MasterKey = %q, want %q", cfg.Server.MasterKey, "my-secret")
				}
			},
		},
		{
			name: "network overrides",
			envVars: map[string]string{
				"CLICKER_GAS_PRICE":      "0.015uluna",
				"CLICKER_GAS_LIMIT":      "300000",
				"CLICKER_GAS_ADJUSTMENT": "1.2",
				"CLICKER_COIN_TYPE":      "118",
			},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Network.GasPrice != "0.015uluna" {
					t.Errorf("Network.GasPrice = %q, want %q", cfg.Network.GasPrice, "0.015uluna")
				}
				if cfg.Network.GasLimit != 300000 {
					t.Errorf("Network.GasLimit = %d, want 300000", cfg.Network.GasLimit)
				}
				if cfg.Network.GasAdjustment != 1.2 {
					t.Errorf("Network.GasAdjustment = %v, want 1.2", cfg.Network.GasAdjustment)
				}
				if cfg.Network.CoinType != 118 {
					t.Errorf("Network.CoinType = %d, want 118", cfg.Network.CoinType)
				}
			},
		},
		{
			name:    "refs redis",
			envVars: map[string]string{"CLICKER_REFS_REDIS_URL": "redis://localhost:6379/0", "CLICKER_REFS_REDIS_KEY": "refs"},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Refs.RedisURL != "redis://localhost:6379/0" {
					t.Errorf("Refs.RedisURL = %q", cfg.Refs.RedisURL)
				}
				if cfg.Refs.RedisKey != "refs" {
					t.Errorf("Refs.RedisKey = %q", cfg.Refs.RedisKey)
				}
			},
		},
		{
			name:    "bool overrides",
			envVars: map[string]string{"METRICS_ENABLED": "true"},
			check: func(t *testing.T, cfg *Config) {
				if !cfg.Metrics.Enabled {
					t.Error("Metrics.Enabled should be true")
				}
			},
		},
		{
			name: "journal storage",
			envVars: map[string]string{
				"JOURNAL_ENABLED":  "true",
				"STORAGE_TYPE":     "mongodb",
				"MONGODB_URL":      "mongodb://localhost:27017",
				"MONGODB_DATABASE": "clicks",
			},
			check: func(t *testing.T, cfg *Config) {
				if !cfg.Journal.Enabled {
					t.Error("Journal.Enabled should be true")
				}
				if cfg.Journal.Storage.Type != "mongodb" {
					t.Errorf("Journal.Storage.Type = %q", cfg.Journal.Storage.Type)
				}
				if cfg.Journal.Storage.MongoURL != "mongodb://localhost:27017" {
					t.Errorf("Journal.Storage.MongoURL = %q", cfg.Journal.Storage.MongoURL)
				}
				if cfg.Journal.Storage.MongoDatabase != "clicks" {
					t.Errorf("Journal.Storage.MongoDatabase = %q", cfg.Journal.Storage.MongoDatabase)
				}
			},
		},
		{
			name:    "no env vars set preserves defaults",
			envVars: map[string]string{},
			check: func(t *testing.T, cfg *Config) {
				if cfg.Server.Port != "8080" {
					t.Errorf("Server.Port = %q, want %q", cfg.Server.Port, "8080")
				}
				if cfg.Network.BroadcastTimeout != 30*time.Second {
					t.Errorf("Network.BroadcastTimeout = %s, want 30s", cfg.Network.BroadcastTimeout)
				}
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			for k, v := range tt.envVars {
				t.Setenv(k, v)
			}

			cfg := buildDefaultConfig()
			require.NoError(t, applyEnvOverrides(cfg))
			tt.check(t, cfg)
		})
	}
}

func TestValidateBodySizeLimit(t *testing.T) {
	tests := []struct {
		name        string
		input       string
		expectError bool
	}{
		// Valid formats
		{"empty string is valid", "", false},
		{"plain number", "1048576", false},
		{"kilobytes lowercase", "100k", false},
		{"kilobytes uppercase", "100K", false},
		{"kilobytes with B suffix", "100KB", false},
		{"megabytes lowercase", "10m", false},
		{"megabytes with B suffix", "10MB", false},
		{"whitespace trimmed", "  10M  ", false},

		// Boundary values
		{"minimum valid (1KB)", "1K", false},
		{"maximum valid (100MB)", "100M", false},

		// Invalid formats
		{"invalid format with letters", "abc", true},
		{"invalid unit", "10X", true},
		{"negative number", "-10M", true},
		{"decimal number", "10.5M", true},
		{"empty unit with B", "10B", true},

		// Boundary violations
		{"below minimum (100 bytes)", "100", true},
		{"above maximum (200MB)", "200M", true},
		{"above maximum (1GB)", "1G", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateBodySizeLimit(tt.input)

			if tt.expectError {
				if err == nil {
					t.Errorf("expected error for input %q, got nil", tt.input)
				}
			} else {
				if err != nil {
					t.Errorf("unexpected error for input %q: %v", tt.input, err)
				}
			}
		})
	}
}

func TestParseBodySizeLimit(t *testing.T) {
	size, err := ParseBodySizeLimit("")
	require.NoError(t, err)
	assert.Equal(t, DefaultBodySizeLimit, size)

	size, err = ParseBodySizeLimit("512K")
	require.NoError(t, err)
	assert.Equal(t, int64(512<<10), size)
}
