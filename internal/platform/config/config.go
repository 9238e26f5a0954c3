package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/providers/structs"
	"github.com/knadh/koanf/v2"
)

const (
	StorageDriverPostgres = "postgres"
	StorageDriverMemory   = "memory"

	// ConfigPathEnvVar points at an optional YAML file layered between defaults and env.
	ConfigPathEnvVar = "CONFIG_PATH"
)

var DefaultConfigPaths = []string{"config.yaml", "config.yml"}

type Config struct {
	API        APIConfig        `koanf:"api"`
	Log        LogConfig        `koanf:"log"`
	Storage    StorageConfig    `koanf:"storage"`
	Database   DatabaseConfig   `koanf:"database"`
	Redis      RedisConfig      `koanf:"redis"`
	Codeforces CodeforcesConfig `koanf:"codeforces"`
	Selector   SelectorConfig   `koanf:"selector"`
}

type APIConfig struct {
	Port              string        `koanf:"port"`
	RequestTimeout    time.Duration `koanf:"request_timeout"`
	RateLimitRequests int           `koanf:"rate_limit_requests"`
	RateLimitWindow   time.Duration `koanf:"rate_limit_window"`
	CORSOrigins       []string      `koanf:"cors_origins"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

type StorageConfig struct {
	Driver string `koanf:"driver"`
}

type DatabaseConfig struct {
	Host         string `koanf:"host"`
	Port         string `koanf:"port"`
	User         string `koanf:"user"`
	Password     string `koanf:"password"`
	Name         string `koanf:"name"`
	SSLMode      string `koanf:"sslmode"`
	MaxOpenConns int    `koanf:"max_open_conns"`
}

// ConnString builds a libpq-style DSN understood by the pgx stdlib driver.
func (c DatabaseConfig) ConnString() string {
	return "host=" + c.Host +
		" port=" + c.Port +
		" user=" + c.User +
		" password=" + c.Password +
		" dbname=" + c.Name +
		" sslmode=" + c.SSLMode
}

type RedisConfig struct {
	Addr     string        `koanf:"addr"` // empty disables the mashup cache
	Password string        `koanf:"password"`
	DB       int           `koanf:"db"`
	CacheTTL time.Duration `koanf:"cache_ttl"`
}

func (c RedisConfig) Enabled() bool {
	return c.Addr != ""
}

type CodeforcesConfig struct {
	BaseURL        string        `koanf:"base_url"`
	Timeout        time.Duration `koanf:"timeout"`
	BreakerEnabled bool          `koanf:"breaker_enabled"`
	BreakerTimeout time.Duration `koanf:"breaker_timeout"`
}

type SelectorConfig struct {
	Seed int64 `koanf:"seed"` // 0 means seed from the clock
}

func defaultConfig() *Config {
	return &Config{
		API: APIConfig{
			Port:              "8080",
			RequestTimeout:    60 * time.Second,
			RateLimitRequests: 60,
			RateLimitWindow:   time.Minute,
			CORSOrigins:       []string{"*"},
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Storage: StorageConfig{
			Driver: StorageDriverPostgres,
		},
		Database: DatabaseConfig{
			Host:         "localhost",
			Port:         "5432",
			User:         "user",
			Password:     "password",
			Name:         "cf_mashup_db",
			SSLMode:      "disable",
			MaxOpenConns: 25,
		},
		Redis: RedisConfig{
			CacheTTL: time.Hour,
		},
		Codeforces: CodeforcesConfig{
			BaseURL:        "https://codeforces.com/api",
			Timeout:        10 * time.Second,
			BreakerEnabled: true,
			BreakerTimeout: time.Minute,
		},
	}
}

// Load reads configuration in order of precedence: env > YAML file > defaults.
// A .env file, when present, is loaded into the process environment first.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env file: %w", err)
	}

	k := koanf.New(".")

	if err := k.Load(structs.Provider(defaultConfig(), "koanf"), nil); err != nil {
		return nil, fmt.Errorf("failed to load defaults: %w", err)
	}

	if path := findConfigFile(); path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, fmt.Errorf("failed to load config file %s: %w", path, err)
		}
	}

	if err := k.Load(env.Provider("", ".", envTransformFunc), nil); err != nil {
		return nil, fmt.Errorf("failed to load environment variables: %w", err)
	}

	if err := splitCommaList(k, "api.cors_origins"); err != nil {
		return nil, err
	}

	cfg := &Config{}
	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal configuration: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}
	return cfg, nil
}

func (c *Config) Validate() error {
	switch c.Storage.Driver {
	case StorageDriverPostgres, StorageDriverMemory:
	default:
		return fmt.Errorf("unknown storage driver %q", c.Storage.Driver)
	}
	if c.API.Port == "" {
		return errors.New("api port must be set")
	}
	if c.API.RequestTimeout <= 0 {
		return errors.New("request timeout must be positive")
	}
	if c.Codeforces.Timeout <= 0 {
		return errors.New("codeforces timeout must be positive")
	}
	// A generation makes two sequential upstream calls; the request deadline must outlast both.
	if c.API.RequestTimeout <= 2*c.Codeforces.Timeout {
		return fmt.Errorf("request timeout (%s) must exceed twice the codeforces timeout (%s)",
			c.API.RequestTimeout, c.Codeforces.Timeout)
	}
	if c.Codeforces.BaseURL == "" {
		return errors.New("codeforces base url must be set")
	}
	if c.API.RateLimitRequests < 0 {
		return errors.New("rate limit requests must not be negative")
	}
	return nil
}

func findConfigFile() string {
	if path := os.Getenv(ConfigPathEnvVar); path != "" {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	for _, path := range DefaultConfigPaths {
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}

var envMappings = map[string]string{
	"api_port":            "api.port",
	"request_timeout":     "api.request_timeout",
	"rate_limit_requests": "api.rate_limit_requests",
	"rate_limit_window":   "api.rate_limit_window",
	"cors_origins":        "api.cors_origins",

	"log_level":  "log.level",
	"log_format": "log.format",

	"storage_driver": "storage.driver",

	"db_host":           "database.host",
	"db_port":           "database.port",
	"db_user":           "database.user",
	"db_password":       "database.password",
	"db_name":           "database.name",
	"db_sslmode":        "database.sslmode",
	"db_max_open_conns": "database.max_open_conns",

	"redis_addr":       "redis.addr",
	"redis_password":   "redis.password",
	"redis_db":         "redis.db",
	"mashup_cache_ttl": "redis.cache_ttl",

	"cf_api_base_url":    "codeforces.base_url",
	"cf_api_timeout":     "codeforces.timeout",
	"cf_breaker_enabled": "codeforces.breaker_enabled",
	"cf_breaker_timeout": "codeforces.breaker_timeout",

	"selector_seed": "selector.seed",
}

// envTransformFunc maps known environment variables to koanf paths and drops the rest.
func envTransformFunc(key string) string {
	return envMappings[strings.ToLower(key)]
}

func splitCommaList(k *koanf.Koanf, path string) error {
	raw, ok := k.Get(path).(string)
	if !ok {
		return nil
	}
	var items []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			items = append(items, part)
		}
	}
	if err := k.Set(path, items); err != nil {
		return fmt.Errorf("failed to set %s: %w", path, err)
	}
	return nil
}
