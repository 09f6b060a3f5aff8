// Package config loads application configuration from a YAML file with
// environment-variable overrides, so secrets can live in .env locally and in
// real env vars in deployment.
package config

import (
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Auth     AuthConfig     `yaml:"auth"`
	Import   ImportConfig   `yaml:"import"`
	Dedup    DedupConfig    `yaml:"dedup"`
	Notify   NotifyConfig   `yaml:"notify"`
	Archive  ArchiveConfig  `yaml:"archive"`
	Cache    CacheConfig    `yaml:"cache"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Host           string   `yaml:"host"`
	Port           int      `yaml:"port"`
	AllowedOrigins []string `yaml:"allowed_origins"`
}

// DatabaseConfig holds PostgreSQL connection settings.
type DatabaseConfig struct {
	URL             string `yaml:"url"`
	MaxOpenConns    int    `yaml:"max_open_conns"`
	MaxIdleConns    int    `yaml:"max_idle_conns"`
	ConnMaxLifetime int    `yaml:"conn_max_lifetime_minutes"`
}

// RedisConfig holds Redis settings for the tenant lock and metrics cache.
// Redis is optional: when disabled the lock falls back to PG advisory locks
// and the metrics cache is skipped.
type RedisConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Addr     string `yaml:"addr"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
}

// AuthConfig holds authentication settings. ServiceTokens maps bearer tokens
// to internal roles ("super_admin", "service"); ImportSecret is the shared
// secret the import webhook may present instead of a token.
type AuthConfig struct {
	GoogleClientID     string            `yaml:"google_client_id"`
	GoogleClientSecret string            `yaml:"google_client_secret"`
	AllowedDomain      string            `yaml:"allowed_domain"`
	SessionSecret      string            `yaml:"session_secret"`
	CookieName         string            `yaml:"cookie_name"`
	CookieMaxAge       int               `yaml:"cookie_max_age"`
	ServiceTokens      map[string]string `yaml:"service_tokens"`
	ImportSecret       string            `yaml:"import_secret"`
}

// ImportConfig holds lead-import batching and feed settings.
type ImportConfig struct {
	BatchSize    int            `yaml:"batch_size"`
	BatchDelayMS int            `yaml:"batch_delay_ms"`
	Airtable     AirtableConfig `yaml:"airtable"`
}

// BatchDelay returns the inter-batch delay as a duration.
func (c ImportConfig) BatchDelay() time.Duration {
	return time.Duration(c.BatchDelayMS) * time.Millisecond
}

// AirtableConfig holds the external lead-feed credentials for pull imports.
type AirtableConfig struct {
	APIKey  string `yaml:"api_key"`
	BaseID  string `yaml:"base_id"`
	Table   string `yaml:"table"`
	BaseURL string `yaml:"base_url"`
}

// DedupConfig holds dedup run settings.
type DedupConfig struct {
	LockTTLMinutes int `yaml:"lock_ttl_minutes"`
}

// NotifyConfig holds the email-notification worker settings.
type NotifyConfig struct {
	Enabled         bool      `yaml:"enabled"`
	IntervalSeconds int       `yaml:"interval_seconds"`
	BatchSize       int       `yaml:"batch_size"`
	FromEmail       string    `yaml:"from_email"`
	FromName        string    `yaml:"from_name"`
	SES             SESConfig `yaml:"ses"`
}

// SESConfig holds AWS SES v2 credentials for notification delivery.
type SESConfig struct {
	Region    string `yaml:"region"`
	AccessKey string `yaml:"access_key"`
	SecretKey string `yaml:"secret_key"`
}

// ArchiveConfig holds S3 settings for raw import-payload archival.
type ArchiveConfig struct {
	Enabled  bool   `yaml:"enabled"`
	S3Bucket string `yaml:"s3_bucket"`
	S3Region string `yaml:"s3_region"`
}

// CacheConfig holds the dashboard metrics cache settings.
type CacheConfig struct {
	TTLSeconds int `yaml:"ttl_seconds"`
}

// TTL returns the cache TTL as a duration.
func (c CacheConfig) TTL() time.Duration {
	return time.Duration(c.TTLSeconds) * time.Second
}

// Load reads and parses the configuration file.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	// Set defaults
	if cfg.Server.Port == 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.Host == "" {
		cfg.Server.Host = "localhost"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 5
	}
	if cfg.Redis.Addr == "" {
		cfg.Redis.Addr = "localhost:6379"
	}
	if cfg.Auth.CookieName == "" {
		cfg.Auth.CookieName = "clinichq_session"
	}
	if cfg.Auth.CookieMaxAge == 0 {
		cfg.Auth.CookieMaxAge = 86400
	}
	if cfg.Import.BatchSize == 0 {
		cfg.Import.BatchSize = 25
	}
	if cfg.Import.BatchDelayMS == 0 {
		cfg.Import.BatchDelayMS = 200
	}
	if cfg.Import.Airtable.BaseURL == "" {
		cfg.Import.Airtable.BaseURL = "https://api.airtable.com/v0"
	}
	if cfg.Dedup.LockTTLMinutes == 0 {
		cfg.Dedup.LockTTLMinutes = 10
	}
	if cfg.Notify.IntervalSeconds == 0 {
		cfg.Notify.IntervalSeconds = 60
	}
	if cfg.Notify.BatchSize == 0 {
		cfg.Notify.BatchSize = 20
	}
	if cfg.Notify.SES.Region == "" {
		cfg.Notify.SES.Region = "us-west-2"
	}
	if cfg.Archive.S3Region == "" {
		cfg.Archive.S3Region = "us-west-2"
	}
	if cfg.Cache.TTLSeconds == 0 {
		cfg.Cache.TTLSeconds = 60
	}

	return &cfg, nil
}

// LoadFromEnv loads configuration with environment variable overrides.
// It automatically loads a .env file (if present) before reading env vars.
func LoadFromEnv(path string) (*Config, error) {
	// Load .env file if it exists (no error if missing)
	_ = godotenv.Load()

	cfg, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("SERVER_HOST"); v != "" {
		cfg.Server.Host = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		if p, err := strconv.Atoi(v); err == nil {
			cfg.Server.Port = p
		}
	}
	if v := os.Getenv("DATABASE_URL"); v != "" {
		cfg.Database.URL = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		cfg.Redis.Addr = v
		cfg.Redis.Enabled = true
	}
	if v := os.Getenv("GOOGLE_CLIENT_ID"); v != "" {
		cfg.Auth.GoogleClientID = v
	}
	if v := os.Getenv("GOOGLE_CLIENT_SECRET"); v != "" {
		cfg.Auth.GoogleClientSecret = v
	}
	if v := os.Getenv("SESSION_SECRET"); v != "" {
		cfg.Auth.SessionSecret = v
	}
	if v := os.Getenv("AUTH_ALLOWED_DOMAIN"); v != "" {
		cfg.Auth.AllowedDomain = v
	}
	if v := os.Getenv("IMPORT_WEBHOOK_SECRET"); v != "" {
		cfg.Auth.ImportSecret = v
	}
	if v := os.Getenv("AIRTABLE_API_KEY"); v != "" {
		cfg.Import.Airtable.APIKey = v
	}
	if v := os.Getenv("AIRTABLE_BASE_ID"); v != "" {
		cfg.Import.Airtable.BaseID = v
	}
	if v := os.Getenv("AWS_SES_ACCESS_KEY"); v != "" {
		cfg.Notify.SES.AccessKey = v
	}
	if v := os.Getenv("AWS_SES_SECRET_KEY"); v != "" {
		cfg.Notify.SES.SecretKey = v
	}
	if v := os.Getenv("AWS_SES_REGION"); v != "" {
		cfg.Notify.SES.Region = v
	}
	if v := os.Getenv("ARCHIVE_S3_BUCKET"); v != "" {
		cfg.Archive.S3Bucket = v
		cfg.Archive.Enabled = true
	}

	return cfg, nil
}
