package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server    ServerConfig    `yaml:"server"`
	Database  DatabaseConfig  `yaml:"database"`
	JWT       JWTConfig       `yaml:"jwt"`
	Remote    RemoteConfig    `yaml:"remote"`
	Log       LogConfig       `yaml:"log"`
	Audit     AuditConfig     `yaml:"audit"`
	RateLimit RateLimitConfig `yaml:"rate_limit"`
}

type ServerConfig struct {
	Host string `yaml:"host"`
	Port string `yaml:"port"`
	Mode string `yaml:"mode"` // debug, release, test
	// CORSOrigins lists browser origins allowed to call the API; empty allows any.
	CORSOrigins []string `yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Driver string `yaml:"driver"` // sqlite, mysql, postgres
	DSN    string `yaml:"dsn"`
}

type JWTConfig struct {
	Secret     string `yaml:"secret"`
	ExpireHour int    `yaml:"expire_hour"`
}

const (
	MergeScopeClient = "client"
	MergeScopePair   = "pair"
)

// RemoteConfig points at the portal that owns client-consultant assignments.
// An empty AssignmentsURL disables reconciliation.
type RemoteConfig struct {
	AssignmentsURL string        `yaml:"assignments_url"`
	Token          string        `yaml:"token"`
	Timeout        time.Duration `yaml:"timeout"`
	// MergeScope decides which local edges a remote list overrides:
	// "client" (every edge of a client the remote mentions) or "pair".
	MergeScope string `yaml:"merge_scope"`
}

type LogConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"` // json, console
}

type AuditConfig struct {
	Enabled       bool   `yaml:"enabled"`
	RetentionDays int    `yaml:"retention_days"`
	CleanupSpec   string `yaml:"cleanup_spec"` // cron expression
}

type RateLimitConfig struct {
	SyncRPS   float64 `yaml:"sync_rps"`
	SyncBurst int     `yaml:"sync_burst"`
}

var GlobalConfig *Config

// Load reads configPath (default config.yaml) if present, falls back to
// defaults otherwise, then applies environment overrides.
func Load(configPath string) (*Config, error) {
	if configPath == "" {
		configPath = "config.yaml"
	}

	cfg := DefaultConfig()

	if _, err := os.Stat(configPath); err == nil {
		data, err := os.ReadFile(configPath)
		if err != nil {
			return nil, fmt.Errorf("read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return nil, fmt.Errorf("stat config file: %w", err)
	}

	if err := cfg.overrideFromEnv(); err != nil {
		return nil, err
	}
	if err := cfg.validate(); err != nil {
		return nil, err
	}
	GlobalConfig = cfg
	return cfg, nil
}

func DefaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host: "0.0.0.0",
			Port: "8080",
			Mode: "debug",
		},
		Database: DatabaseConfig{
			Driver: "sqlite",
			DSN:    "estatedesk.db",
		},
		JWT: JWTConfig{
			Secret:     "estatedesk-secret-key-change-in-production",
			ExpireHour: 24,
		},
		Remote: RemoteConfig{
			Timeout:    10 * time.Second,
			MergeScope: MergeScopeClient,
		},
		Log: LogConfig{
			Level:  "info",
			Format: "json",
		},
		Audit: AuditConfig{
			Enabled:       true,
			RetentionDays: 90,
			CleanupSpec:   "0 3 * * *",
		},
		RateLimit: RateLimitConfig{
			SyncRPS:   0.2,
			SyncBurst: 2,
		},
	}
}

func (c *Config) overrideFromEnv() error {
	if host := os.Getenv("SERVER_HOST"); host != "" {
		c.Server.Host = host
	}
	if port := os.Getenv("SERVER_PORT"); port != "" {
		c.Server.Port = port
	}
	if mode := os.Getenv("SERVER_MODE"); mode != "" {
		c.Server.Mode = mode
	}
	if driver := os.Getenv("DB_DRIVER"); driver != "" {
		c.Database.Driver = driver
	}
	if dsn := os.Getenv("DB_DSN"); dsn != "" {
		c.Database.DSN = dsn
	}
	if secret := os.Getenv("JWT_SECRET"); secret != "" {
		c.JWT.Secret = secret
	}
	if u := os.Getenv("REMOTE_ASSIGNMENTS_URL"); u != "" {
		c.Remote.AssignmentsURL = u
	}
	if token := os.Getenv("REMOTE_TOKEN"); token != "" {
		c.Remote.Token = token
	}
	if timeout := os.Getenv("REMOTE_TIMEOUT"); timeout != "" {
		d, err := time.ParseDuration(timeout)
		if err != nil {
			return fmt.Errorf("invalid REMOTE_TIMEOUT: %w", err)
		}
		c.Remote.Timeout = d
	}
	if scope := os.Getenv("REMOTE_MERGE_SCOPE"); scope != "" {
		c.Remote.MergeScope = scope
	}
	if level := os.Getenv("LOG_LEVEL"); level != "" {
		c.Log.Level = level
	}
	if format := os.Getenv("LOG_FORMAT"); format != "" {
		c.Log.Format = format
	}
	if days := os.Getenv("AUDIT_RETENTION_DAYS"); days != "" {
		n, err := strconv.Atoi(days)
		if err != nil {
			return fmt.Errorf("invalid AUDIT_RETENTION_DAYS: %w", err)
		}
		c.Audit.RetentionDays = n
	}
	if c.Remote.Timeout <= 0 {
		c.Remote.Timeout = 10 * time.Second
	}
	return nil
}

func (c *Config) validate() error {
	switch c.Remote.MergeScope {
	case MergeScopeClient, MergeScopePair:
	default:
		return fmt.Errorf("invalid remote.merge_scope %q: want %q or %q",
			c.Remote.MergeScope, MergeScopeClient, MergeScopePair)
	}
	return nil
}

// Addr returns host:port for the HTTP listener.
func (c *Config) Addr() string {
	return c.Server.Host + ":" + c.Server.Port
}

func (c *Config) Save(configPath string) error {
	if configPath == "" {
		configPath = "config.yaml"
	}

	dir := filepath.Dir(configPath)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return err
	}

	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}

	return os.WriteFile(configPath, data, 0644)
}
