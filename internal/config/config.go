package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/tinoosan/bookkeeping/internal/ledger"
)

// Config is the service configuration: file values first, environment on top.
type Config struct {
	HTTPAddr    string        `yaml:"http_addr"`
	DatabaseURL string        `yaml:"database_url"`
	Redis       RedisConfig   `yaml:"redis"`
	Log         LogConfig     `yaml:"log"`
	DevSeed     bool          `yaml:"dev_seed"`
	// Labels overrides display labels of account types, keyed by type (e.g. BANK: "Cash at Bank").
	Labels map[string]string `yaml:"labels,omitempty"`
}

// RedisConfig enables the report cache when Addr is set.
type RedisConfig struct {
	Addr     string        `yaml:"addr"`
	Password string        `yaml:"password"`
	TTL      time.Duration `yaml:"ttl"`
}

// LogConfig selects the slog handler and level.
type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json|text
}

// Default returns the configuration used when nothing else is provided.
func Default() *Config {
	return &Config{
		HTTPAddr: ":8080",
		Redis:    RedisConfig{TTL: 30 * time.Second},
		Log:      LogConfig{Level: "info", Format: "json"},
	}
}

// Load builds the configuration from defaults, the YAML file at path (skipped when
// path is empty), a .env file in the working directory if present, and the environment.
func Load(path string) (*Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parsing config: %w", err)
		}
	}
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}
	if err := cfg.applyEnv(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() error {
	c.HTTPAddr = getEnv("HTTP_ADDR", c.HTTPAddr)
	c.DatabaseURL = getEnv("DATABASE_URL", c.DatabaseURL)
	c.Redis.Addr = getEnv("REDIS_ADDR", c.Redis.Addr)
	c.Redis.Password = getEnv("REDIS_PASSWORD", c.Redis.Password)
	if v := getEnv("REPORT_CACHE_TTL", ""); v != "" {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("REPORT_CACHE_TTL: %w", err)
		}
		c.Redis.TTL = d
	}
	c.Log.Level = getEnv("LOG_LEVEL", c.Log.Level)
	c.Log.Format = getEnv("LOG_FORMAT", c.Log.Format)
	if v := strings.ToLower(getEnv("DEV_SEED", "")); v != "" {
		c.DevSeed = v == "1" || v == "true" || v == "yes"
	}
	return nil
}

// LabelOverrides returns the configured labels keyed by account type. Unknown types are reported.
func (c *Config) LabelOverrides() (map[ledger.AccountType]string, error) {
	out := make(map[ledger.AccountType]string, len(c.Labels))
	for k, v := range c.Labels {
		t, ok := ledger.ParseAccountType(k)
		if !ok {
			return nil, fmt.Errorf("labels: unknown account type %q", k)
		}
		out[t] = v
	}
	return out, nil
}

func getEnv(key, fallback string) string {
	if v := strings.TrimSpace(os.Getenv(key)); v != "" {
		return v
	}
	return fallback
}
