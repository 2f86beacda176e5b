package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

const envPrefix = "OFFICE_PANEL_"

type Config struct {
	Server      ServerConfig      `yaml:"server"`
	Database    DatabaseConfig    `yaml:"database"`
	JWT         JWTConfig         `yaml:"jwt"`
	Security    SecurityConfig    `yaml:"security"`
	DefaultUser DefaultUserConfig `yaml:"default_user"`
	Media       MediaConfig       `yaml:"media"`
	Webhook     WebhookConfig     `yaml:"webhook"`
	Cache       CacheConfig       `yaml:"cache"`
	Notices     NoticesConfig     `yaml:"notices"`
	Logging     LoggingConfig     `yaml:"logging"`
}

type ServerConfig struct {
	Host            string `yaml:"host"`
	Port            int    `yaml:"port"`
	Mode            string `yaml:"mode"`
	ShutdownTimeout string `yaml:"shutdown_timeout"`
}

type DatabaseConfig struct {
	Type     string         `yaml:"type"`
	SQLite   SQLiteConfig   `yaml:"sqlite"`
	MySQL    MySQLConfig    `yaml:"mysql"`
	Postgres PostgresConfig `yaml:"postgres"`
	// SlowThreshold is the gorm slow query threshold, e.g. "200ms".
	SlowThreshold string `yaml:"slow_threshold"`
}

type SQLiteConfig struct {
	Path string `yaml:"path"`
}

type MySQLConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	Charset  string `yaml:"charset"`
}

type PostgresConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Database string `yaml:"database"`
	SSLMode  string `yaml:"sslmode"`
}

type JWTConfig struct {
	Secret    string `yaml:"secret"`
	ExpiresIn string `yaml:"expires_in"`
	Issuer    string `yaml:"issuer"`
}

type SecurityConfig struct {
	BcryptCost  int             `yaml:"bcrypt_cost"`
	RateLimit   RateLimitConfig `yaml:"rate_limit"`
	CORSOrigins []string        `yaml:"cors_origins"`
}

type RateLimitConfig struct {
	Enabled           bool `yaml:"enabled"`
	RequestsPerMinute int  `yaml:"requests_per_minute"`
}

type DefaultUserConfig struct {
	Username string `yaml:"username"`
	Password string `yaml:"password"`
	Role     string `yaml:"role"`
}

type MediaConfig struct {
	Root        string `yaml:"root"`
	MaxUploadMB int    `yaml:"max_upload_mb"`
}

// WebhookConfig configures the outbound notice_published notification.
// An empty URL disables it.
type WebhookConfig struct {
	URL     string `yaml:"url"`
	Timeout string `yaml:"timeout"`
}

type CacheConfig struct {
	Backend  string `yaml:"backend"` // memory or redis
	Size     int    `yaml:"size"`
	TTL      string `yaml:"ttl"`
	RedisURL string `yaml:"redis_url"`
}

type NoticesConfig struct {
	ExpirySweepInterval string `yaml:"expiry_sweep_interval"`
}

type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json or text
}

// Load reads the configuration file and environment variables
func Load(configPath string) (*Config, error) {
	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnv()
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	// Ensure data directory exists for SQLite
	if cfg.Database.Type == "sqlite" {
		dataDir := filepath.Dir(cfg.Database.SQLite.Path)
		if err := os.MkdirAll(dataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
	}

	if err := os.MkdirAll(cfg.Media.Root, 0755); err != nil {
		return nil, fmt.Errorf("failed to create media directory: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyEnv() {
	overrides := map[string]*string{
		"JWT_SECRET":        &c.JWT.Secret,
		"DB_TYPE":           &c.Database.Type,
		"DB_PATH":           &c.Database.SQLite.Path,
		"MYSQL_HOST":        &c.Database.MySQL.Host,
		"MYSQL_USER":        &c.Database.MySQL.Username,
		"MYSQL_PASSWORD":    &c.Database.MySQL.Password,
		"MYSQL_DATABASE":    &c.Database.MySQL.Database,
		"POSTGRES_HOST":     &c.Database.Postgres.Host,
		"POSTGRES_USER":     &c.Database.Postgres.Username,
		"POSTGRES_PASSWORD": &c.Database.Postgres.Password,
		"POSTGRES_DATABASE": &c.Database.Postgres.Database,
		"WEBHOOK_URL":       &c.Webhook.URL,
		"CACHE_BACKEND":     &c.Cache.Backend,
		"REDIS_URL":         &c.Cache.RedisURL,
		"LOG_LEVEL":         &c.Logging.Level,
		"MEDIA_ROOT":        &c.Media.Root,
	}
	for key, target := range overrides {
		if v := os.Getenv(envPrefix + key); v != "" {
			*target = v
		}
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ShutdownTimeout == "" {
		c.Server.ShutdownTimeout = "10s"
	}
	if c.Database.Type == "" {
		c.Database.Type = "sqlite"
	}
	if c.Database.SQLite.Path == "" {
		c.Database.SQLite.Path = "data/office-panel.db"
	}
	if c.Database.SlowThreshold == "" {
		c.Database.SlowThreshold = "200ms"
	}
	if c.JWT.ExpiresIn == "" {
		c.JWT.ExpiresIn = "24h"
	}
	if c.Security.BcryptCost == 0 {
		c.Security.BcryptCost = 10
	}
	if c.Security.RateLimit.RequestsPerMinute == 0 {
		c.Security.RateLimit.RequestsPerMinute = 20
	}
	if c.Media.Root == "" {
		c.Media.Root = "media"
	}
	if c.Media.MaxUploadMB == 0 {
		c.Media.MaxUploadMB = 50
	}
	if c.Webhook.Timeout == "" {
		c.Webhook.Timeout = "2s"
	}
	if c.Cache.Backend == "" {
		c.Cache.Backend = "memory"
	}
	if c.Cache.Size == 0 {
		c.Cache.Size = 128
	}
	if c.Cache.TTL == "" {
		c.Cache.TTL = "30s"
	}
	if c.Notices.ExpirySweepInterval == "" {
		c.Notices.ExpirySweepInterval = "10m"
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "json"
	}
}

// Validate checks cross-field constraints that yaml cannot express.
func (c *Config) Validate() error {
	switch c.Database.Type {
	case "sqlite":
	case "mysql":
		if c.Database.MySQL.Username == "" {
			return fmt.Errorf("MySQL username is required")
		}
		if c.Database.MySQL.Database == "" {
			return fmt.Errorf("MySQL database name is required")
		}
	case "postgres":
		if c.Database.Postgres.Username == "" {
			return fmt.Errorf("Postgres username is required")
		}
		if c.Database.Postgres.Database == "" {
			return fmt.Errorf("Postgres database name is required")
		}
	default:
		return fmt.Errorf("unsupported database type: %s", c.Database.Type)
	}

	switch c.Cache.Backend {
	case "memory":
	case "redis":
		if c.Cache.RedisURL == "" {
			return fmt.Errorf("redis_url is required for the redis cache backend")
		}
	default:
		return fmt.Errorf("unsupported cache backend: %s", c.Cache.Backend)
	}

	durations := map[string]string{
		"server.shutdown_timeout":       c.Server.ShutdownTimeout,
		"database.slow_threshold":       c.Database.SlowThreshold,
		"jwt.expires_in":                c.JWT.ExpiresIn,
		"webhook.timeout":               c.Webhook.Timeout,
		"cache.ttl":                     c.Cache.TTL,
		"notices.expiry_sweep_interval": c.Notices.ExpirySweepInterval,
	}
	for name, value := range durations {
		if _, err := time.ParseDuration(value); err != nil {
			return fmt.Errorf("invalid duration for %s: %w", name, err)
		}
	}

	switch strings.ToLower(c.Server.Mode) {
	case "", "debug", "release", "test":
	default:
		return fmt.Errorf("unsupported server mode: %s", c.Server.Mode)
	}

	return nil
}

// Duration parses a duration option validated by Load, falling back to def.
func Duration(value string, def time.Duration) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return def
	}
	return d
}
