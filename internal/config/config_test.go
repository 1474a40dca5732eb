package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func validConfig() Config {
	cfg := Config{
		HTTP:  HTTPConfig{Port: 8080},
		Redis: RedisConfig{Addrs: []string{"localhost:6379"}},
	}
	cfg.ApplyDefaults()
	return cfg
}

func intp(n int) *int { return &n }

func TestApplyDefaults(t *testing.T) {
	cfg := validConfig()

	if cfg.Quota.Limit() != 3 || cfg.Quota.AdminDailyLimit != 1000 {
		t.Errorf("unexpected quota defaults: limit=%d admin=%d", cfg.Quota.Limit(), cfg.Quota.AdminDailyLimit)
	}
	if cfg.Quota.Store != QuotaStoreRedis || cfg.Quota.Timezone != "UTC" {
		t.Errorf("unexpected quota store/timezone: %q %q", cfg.Quota.Store, cfg.Quota.Timezone)
	}
	if cfg.Bible.DefaultTranslation != "rst" || len(cfg.Bible.Translations) != 3 || cfg.Bible.MaxSearchLimit != 50 {
		t.Errorf("unexpected bible defaults: %+v", cfg.Bible)
	}
	if cfg.AI.BaseURL != "https://openrouter.ai/api/v1/" || cfg.AI.Model != "openai/gpt-3.5-turbo" {
		t.Errorf("unexpected ai defaults: %+v", cfg.AI)
	}
	if err := cfg.Validate(); err != nil {
		t.Fatalf("defaults must validate: %v", err)
	}
}

func TestQuotaLimit_ZeroIsExplicit(t *testing.T) {
	q := QuotaConfig{DailyLimit: intp(0)}
	if q.Limit() != 0 {
		t.Errorf("explicit 0 must not fall back to the default, got %d", q.Limit())
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"invalid port", func(c *Config) { c.HTTP.Port = 0 }, "http.port"},
		{"missing redis", func(c *Config) { c.Redis.Addrs = nil }, "redis.addrs"},
		{"negative limit", func(c *Config) { c.Quota.DailyLimit = intp(-1) }, "quota.daily_limit"},
		{"bad timezone", func(c *Config) { c.Quota.Timezone = "Mars/Olympus" }, "quota.timezone"},
		{"unknown store", func(c *Config) { c.Quota.Store = "sqlite" }, "quota.store"},
		{"postgres store without dsn", func(c *Config) { c.Quota.Store = QuotaStorePostgres }, "postgres.dsn"},
		{"default translation not listed", func(c *Config) { c.Bible.DefaultTranslation = "kjv" }, "bible.default_translation"},
		{"negative cache ttl", func(c *Config) { c.AI.CacheTTLSec = -5 }, "ai.cache_ttl_sec"},
		{"temperature too high", func(c *Config) { c.AI.Temperature = 3 }, "ai.temperature"},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			cfg := validConfig()
			tc.mutate(&cfg)

			err := cfg.Validate()
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tc.wantErr) {
				t.Errorf("expected error mentioning %q, got %q", tc.wantErr, err.Error())
			}
		})
	}
}

func TestValidate_PostgresStoreWithDSN(t *testing.T) {
	cfg := validConfig()
	cfg.Quota.Store = QuotaStorePostgres
	cfg.Postgres.DSN = "postgres://lectio@localhost/lectio"

	if err := cfg.Validate(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
}

func TestQuotaLocation(t *testing.T) {
	q := QuotaConfig{Timezone: "Europe/Moscow"}
	if q.Location().String() != "Europe/Moscow" {
		t.Errorf("unexpected location: %s", q.Location())
	}
}

func TestAuthEnabled(t *testing.T) {
	if (AuthConfig{}).Enabled() {
		t.Error("empty auth must be disabled")
	}
	if !(AuthConfig{JWTSecret: "s"}).Enabled() {
		t.Error("jwt secret enables auth")
	}
	if !(AuthConfig{APIKeys: []string{"k"}}).Enabled() {
		t.Error("api keys enable auth")
	}
}

func TestExpandEnvVars(t *testing.T) {
	t.Setenv("LECTIO_TEST_PORT", "9090")

	tests := []struct {
		in, want string
	}{
		{"port: ${LECTIO_TEST_PORT}", "port: 9090"},
		{"port: ${LECTIO_TEST_PORT:-8080}", "port: 9090"},
		{"model: ${LECTIO_TEST_UNSET:-openai/gpt-4o}", "model: openai/gpt-4o"},
		{"key: ${LECTIO_TEST_UNSET}", "key: "},
	}
	for _, tc := range tests {
		if got := string(expandEnvVars([]byte(tc.in))); got != tc.want {
			t.Errorf("expandEnvVars(%q) = %q, want %q", tc.in, got, tc.want)
		}
	}
}

func TestParse(t *testing.T) {
	t.Setenv("LECTIO_TEST_AI_KEY", "sk-or-test")

	cfg, err := Parse([]byte(`
http:
  port: 8080
redis:
  addrs: ["localhost:6379"]
quota:
  daily_limit: 5
  admin_users: [1, 2]
  timezone: Europe/Moscow
ai:
  api_key: ${LECTIO_TEST_AI_KEY}
  cache_ttl_sec: 86400
`))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Quota.Limit() != 5 || len(cfg.Quota.AdminUsers) != 2 {
		t.Errorf("unexpected quota: %+v", cfg.Quota)
	}
	if !cfg.AI.Enabled() || cfg.AI.CacheTTLSec != 86400 {
		t.Errorf("unexpected ai: %+v", cfg.AI)
	}
}

func TestParse_Invalid(t *testing.T) {
	if _, err := Parse([]byte("http: [")); err == nil {
		t.Fatal("expected yaml error")
	}
	if _, err := Parse([]byte("http:\n  port: 8080\n")); err == nil {
		t.Fatal("expected validation error")
	}
}

func TestLoadDotEnv(t *testing.T) {
	if err := loadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("missing .env must be ignored: %v", err)
	}

	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("LECTIO_TEST_DOTENV=from-file\n"), 0o600); err != nil {
		t.Fatal(err)
	}
	t.Setenv("LECTIO_TEST_DOTENV", "")
	os.Unsetenv("LECTIO_TEST_DOTENV")

	if err := loadDotEnv(path); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got := os.Getenv("LECTIO_TEST_DOTENV"); got != "from-file" {
		t.Errorf("expected value from .env, got %q", got)
	}
}

func TestLoad_RepoConfigs(t *testing.T) {
	t.Setenv("REDIS_ADDR", "localhost:6379")
	for _, env := range []string{"local", "prod"} {
		if _, err := Load(env); err != nil {
			t.Errorf("config/%s.yaml: %v", env, err)
		}
	}
}

func TestApplyDefaults_DropsEmptyKeys(t *testing.T) {
	cfg := Config{Auth: AuthConfig{APIKeys: []string{"", " key ", ""}}}
	cfg.ApplyDefaults()

	if len(cfg.Auth.APIKeys) != 1 || cfg.Auth.APIKeys[0] != "key" {
		t.Errorf("unexpected api keys: %q", cfg.Auth.APIKeys)
	}
	if !cfg.Auth.Enabled() {
		t.Error("expected auth enabled")
	}
}
