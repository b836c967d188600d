package config

import (
	"log"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Auth     AuthConfig     `yaml:"auth"`
}

// ServerConfig holds the server-related configuration.
type ServerConfig struct {
	Port            int     `yaml:"port"`
	RequestIPHeader string  `yaml:"request_ip_header"`
	RateLimitPerSec float64 `yaml:"rate_limit_per_sec"`
	RateBurst       int     `yaml:"rate_burst"`
	CacheTTLSeconds int     `yaml:"cache_ttl_seconds"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// AuthConfig holds session-token and password-hashing settings, plus the
// admin account seeded on first startup.
type AuthConfig struct {
	TokenSecret     string        `yaml:"token_secret"`
	TokenIssuer     string        `yaml:"token_issuer"`
	SessionTTLHours int           `yaml:"session_ttl_hours"`
	SessionTTL      time.Duration `yaml:"-"` // Ignored by YAML parser
	BcryptCost      int           `yaml:"bcrypt_cost"`
	SeedAdminUser   string        `yaml:"seed_admin_user"`
	SeedAdminPass   string        `yaml:"seed_admin_pass"`
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8080
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateBurst <= 0 {
		cfg.Server.RateBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 30
	}

	if cfg.Auth.SessionTTLHours <= 0 {
		cfg.Auth.SessionTTLHours = 24
	}
	cfg.Auth.SessionTTL = time.Duration(cfg.Auth.SessionTTLHours) * time.Hour

	if cfg.Auth.TokenIssuer == "" {
		cfg.Auth.TokenIssuer = "pharma-elog"
	}
	if cfg.Auth.SeedAdminUser == "" {
		cfg.Auth.SeedAdminUser = "admin"
	}
	if cfg.Auth.SeedAdminPass == "" {
		log.Printf("auth.seed_admin_pass is not set; defaulting to %q, change it after first login", "admin")
		cfg.Auth.SeedAdminPass = "admin"
	}

	return &cfg, nil
}
