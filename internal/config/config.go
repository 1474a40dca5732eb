// Package config loads the per-environment YAML configuration.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"
	"runtime"
	"strings"
	"time"
	_ "time/tzdata" // quota.timezone must resolve without system zoneinfo

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds the lectio API configuration.
type Config struct {
	HTTP     HTTPConfig     `yaml:"http"`
	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	Auth     AuthConfig     `yaml:"auth"`
	Bible    BibleConfig    `yaml:"bible"`
	Quota    QuotaConfig    `yaml:"quota"`
	AI       AIConfig       `yaml:"ai"`
	Logging  LoggingConfig  `yaml:"logging"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level string `yaml:"level"` // debug, info, warn, error (default: determined by env)
}

// AuthConfig holds API authentication settings.
// With neither api_keys nor jwt_secret set, authentication is disabled.
type AuthConfig struct {
	APIKeys   []string `yaml:"api_keys"`
	JWTSecret string   `yaml:"jwt_secret"`
	JWTIssuer string   `yaml:"jwt_issuer"`
}

// Enabled reports whether any credential is configured.
func (a AuthConfig) Enabled() bool {
	return len(a.APIKeys) > 0 || a.JWTSecret != ""
}

// HTTPConfig holds HTTP server settings.
type HTTPConfig struct {
	Port            int      `yaml:"port"`
	ReadTimeoutSec  int      `yaml:"read_timeout_sec"`
	WriteTimeoutSec int      `yaml:"write_timeout_sec"`
	ShutdownSec     int      `yaml:"shutdown_timeout_sec"`
	CORSOrigins     []string `yaml:"cors_origins"`
}

// RedisConfig holds key-value store connection settings.
type RedisConfig struct {
	Addrs            []string `yaml:"addrs"`
	Username         string   `yaml:"username"`
	Password         string   `yaml:"password"`
	DB               int      `yaml:"db"`
	ReadinessTimeout int      `yaml:"readiness_timeout_sec"`
}

// PostgresConfig holds relational store settings.
type PostgresConfig struct {
	DSN              string `yaml:"dsn"`
	MaxConns         int32  `yaml:"max_conns"`
	Migrate          bool   `yaml:"migrate"`
	ReadinessTimeout int    `yaml:"readiness_timeout_sec"`
}

// BibleConfig holds translation and search settings.
type BibleConfig struct {
	DefaultTranslation string   `yaml:"default_translation"`
	Translations       []string `yaml:"translations"`
	MaxSearchLimit     int      `yaml:"max_search_limit"`
}

// Quota counter stores.
const (
	QuotaStoreRedis    = "redis"
	QuotaStorePostgres = "postgres"
)

// QuotaConfig holds the daily AI request limit settings.
type QuotaConfig struct {
	DailyLimit      *int    `yaml:"daily_limit"` // nil = default 3; 0 disables AI
	AdminUsers      []int64 `yaml:"admin_users"`
	AdminDailyLimit int     `yaml:"admin_daily_limit"`
	Timezone        string  `yaml:"timezone"`
	Store           string  `yaml:"store"` // redis (default) | postgres
	CounterTTLHours int     `yaml:"counter_ttl_hours"`
}

// Limit returns the configured daily limit.
func (q QuotaConfig) Limit() int {
	if q.DailyLimit == nil {
		return defaultDailyLimit
	}
	return *q.DailyLimit
}

// Location resolves Timezone. Call after Validate.
func (q QuotaConfig) Location() *time.Location {
	loc, err := time.LoadLocation(q.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}

// AIConfig holds the completion provider settings.
type AIConfig struct {
	APIKey      string  `yaml:"api_key"`
	BaseURL     string  `yaml:"base_url"`
	Model       string  `yaml:"model"`
	Provider    string  `yaml:"provider"`
	MaxTokens   int     `yaml:"max_tokens"`
	Temperature float32 `yaml:"temperature"`
	TimeoutSec  int     `yaml:"timeout_sec"`
	CacheTTLSec int     `yaml:"cache_ttl_sec"` // 0 disables the explanation cache
}

// Enabled reports whether an API key is configured.
func (a AIConfig) Enabled() bool { return a.APIKey != "" }

const (
	defaultDailyLimit      = 3
	defaultAdminDailyLimit = 1000
)

// Load reads configuration from a YAML file by environment name (local, dev, prod).
// A .env file in the working directory is loaded first when present.
func Load(env string) (Config, error) {
	if err := loadDotEnv(".env"); err != nil {
		return Config{}, err
	}

	configPath := findConfigPath(env)

	data, err := os.ReadFile(filepath.Clean(configPath))
	if err != nil {
		return Config{}, fmt.Errorf("failed to read config %s: %w", configPath, err)
	}

	return Parse(data)
}

// Parse expands env variables in data, decodes it, applies defaults and validates.
func Parse(data []byte) (Config, error) {
	data = expandEnvVars(data)

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("failed to parse config: %w", err)
	}

	cfg.ApplyDefaults()

	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}

	return cfg, nil
}

// MustLoad loads configuration or panics.
func MustLoad(env string) Config {
	cfg, err := Load(env)
	if err != nil {
		panic(err)
	}
	return cfg
}

// GetEnv returns the current environment from the ENV variable, defaulting to "local".
func GetEnv() string {
	if env := os.Getenv("ENV"); env != "" {
		return env
	}
	return "local"
}

// ApplyDefaults fills empty fields with default values.
func (c *Config) ApplyDefaults() {
	// Unset ${VAR} entries expand to empty strings.
	c.Auth.APIKeys = compact(c.Auth.APIKeys)
	c.HTTP.CORSOrigins = compact(c.HTTP.CORSOrigins)

	if c.HTTP.ReadTimeoutSec <= 0 {
		c.HTTP.ReadTimeoutSec = 10
	}
	if c.HTTP.WriteTimeoutSec <= 0 {
		c.HTTP.WriteTimeoutSec = 60
	}
	if c.HTTP.ShutdownSec <= 0 {
		c.HTTP.ShutdownSec = 10
	}
	if c.Redis.ReadinessTimeout <= 0 {
		c.Redis.ReadinessTimeout = 10
	}
	if c.Postgres.ReadinessTimeout <= 0 {
		c.Postgres.ReadinessTimeout = 10
	}
	if c.Bible.DefaultTranslation == "" {
		c.Bible.DefaultTranslation = "rst"
	}
	if len(c.Bible.Translations) == 0 {
		c.Bible.Translations = []string{"rst", "nrt", "cars"}
	}
	if c.Bible.MaxSearchLimit <= 0 {
		c.Bible.MaxSearchLimit = 50
	}
	if c.Quota.AdminDailyLimit <= 0 {
		c.Quota.AdminDailyLimit = defaultAdminDailyLimit
	}
	if c.Quota.Timezone == "" {
		c.Quota.Timezone = "UTC"
	}
	if c.Quota.Store == "" {
		c.Quota.Store = QuotaStoreRedis
	}
	if c.Quota.CounterTTLHours <= 0 {
		c.Quota.CounterTTLHours = 48
	}
	if c.AI.BaseURL == "" {
		c.AI.BaseURL = "https://openrouter.ai/api/v1/"
	}
	if c.AI.Model == "" {
		c.AI.Model = "openai/gpt-3.5-turbo"
	}
	if c.AI.Provider == "" {
		c.AI.Provider = "openrouter"
	}
	if c.AI.MaxTokens <= 0 {
		c.AI.MaxTokens = 1000
	}
	if c.AI.TimeoutSec <= 0 {
		c.AI.TimeoutSec = 45
	}
}

// Validate checks the configuration for correctness.
func (c *Config) Validate() error {
	if c.HTTP.Port <= 0 || c.HTTP.Port > 65535 {
		return fmt.Errorf("http.port must be between 1 and 65535, got %d", c.HTTP.Port)
	}
	if len(c.Redis.Addrs) == 0 {
		return fmt.Errorf("redis.addrs is required")
	}
	if !contains(c.Bible.Translations, c.Bible.DefaultTranslation) {
		return fmt.Errorf("bible.default_translation %q is not in bible.translations", c.Bible.DefaultTranslation)
	}
	if c.Quota.DailyLimit != nil && *c.Quota.DailyLimit < 0 {
		return fmt.Errorf("quota.daily_limit must not be negative, got %d", *c.Quota.DailyLimit)
	}
	if _, err := time.LoadLocation(c.Quota.Timezone); err != nil {
		return fmt.Errorf("quota.timezone %q: %w", c.Quota.Timezone, err)
	}
	switch c.Quota.Store {
	case QuotaStoreRedis:
	case QuotaStorePostgres:
		if c.Postgres.DSN == "" {
			return fmt.Errorf("quota.store \"postgres\" requires postgres.dsn")
		}
	default:
		return fmt.Errorf("quota.store must be \"redis\" or \"postgres\", got %q", c.Quota.Store)
	}
	if c.AI.CacheTTLSec < 0 {
		return fmt.Errorf("ai.cache_ttl_sec must not be negative, got %d", c.AI.CacheTTLSec)
	}
	if c.AI.Temperature < 0 || c.AI.Temperature > 2 {
		return fmt.Errorf("ai.temperature must be between 0 and 2, got %g", c.AI.Temperature)
	}
	return nil
}

func compact(list []string) []string {
	out := list[:0]
	for _, v := range list {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}

// loadDotEnv loads path into the process environment without overriding set variables.
func loadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil
		}
		return fmt.Errorf("failed to load %s: %w", path, err)
	}
	return nil
}

// findConfigPath locates the config file.
func findConfigPath(env string) string {
	filename := fmt.Sprintf("%s.yaml", env)

	// 1. Check ./config/
	if path := filepath.Join("config", filename); fileExists(path) {
		return path
	}

	// 2. Check relative to the source file
	_, b, _, _ := runtime.Caller(0)
	projectRoot := filepath.Dir(filepath.Dir(filepath.Dir(b))) // internal/config -> project root
	if path := filepath.Join(projectRoot, "config", filename); fileExists(path) {
		return path
	}

	// 3. Fallback to ./config/
	return filepath.Join("config", filename)
}

func fileExists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

// expandEnvVars replaces ${VAR} and ${VAR:-default} with environment variable values.
var envVarRegex = regexp.MustCompile(`\$\{([^}]+)\}`)

func expandEnvVars(data []byte) []byte {
	return envVarRegex.ReplaceAllFunc(data, func(match []byte) []byte {
		expr := string(match[2 : len(match)-1]) // strip ${ and }
		varName, defaultVal, hasDefault := strings.Cut(expr, ":-")
		val := os.Getenv(varName)
		if val == "" && hasDefault {
			val = defaultVal
		}
		return []byte(val)
	})
}
