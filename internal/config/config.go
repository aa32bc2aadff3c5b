package config

import (
	"fmt"
	"os"
	"strconv"

	"github.com/joho/godotenv"
	"gopkg.in/ini.v1"
)

// Provider identifiers accepted by DOMAIN_PROVIDER
const (
	ProviderCloudflare = "cloudflare"
	ProviderVercel     = "vercel"
)

// Config holds all configuration
type Config struct {
	MySQL        MySQLConfig
	Redis        RedisConfig
	JWT          JWTConfig
	Migrate      bool
	HTTPAddr     string
	Domain       DomainConfig
	Cloudflare   CloudflareConfig
	Vercel       VercelConfig
	VerifyWorker VerifyWorkerConfig
}

// MySQLConfig holds MySQL configuration
type MySQLConfig struct {
	DSN string
}

// RedisConfig holds Redis configuration
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// JWTConfig holds JWT configuration
type JWTConfig struct {
	Secret        string
	ExpireMinutes int
	Issuer        string
}

// DomainConfig selects the edge provider and the platform base domain.
// One provider is bound per process; there is no per-tenant routing.
type DomainConfig struct {
	Provider   string // cloudflare or vercel
	BaseDomain string // e.g. i-ep.app
}

// CloudflareConfig holds Cloudflare credentials and zone scoping
type CloudflareConfig struct {
	APIToken    string
	ZoneID      string
	EdgeIP      string
	CNAMETarget string
}

// VercelConfig holds Vercel credentials and project scoping
type VercelConfig struct {
	Token     string
	ProjectID string
	TeamID    string
}

// VerifyWorkerConfig holds verification worker configuration
type VerifyWorkerConfig struct {
	Enabled     bool
	IntervalSec int
	BatchSize   int
}

// Load loads configuration from environment variables
func Load() (*Config, error) {
	// Load .env file if exists (ignore error if not found)
	_ = godotenv.Load()

	cfg := &Config{
		MySQL: MySQLConfig{
			DSN: getEnv("MYSQL_DSN", ""),
		},
		Redis: RedisConfig{
			Addr:     getEnv("REDIS_ADDR", "localhost:6379"),
			Password: getEnv("REDIS_PASS", ""),
			DB:       getEnvInt("REDIS_DB", 0),
		},
		JWT: JWTConfig{
			Secret:        os.Getenv("JWT_SECRET"),
			ExpireMinutes: getEnvInt("JWT_EXPIRE_MINUTES", 1440),
			Issuer:        getEnv("JWT_ISSUER", "go_domains"),
		},
		Migrate:  getEnv("MIGRATE", "0") == "1",
		HTTPAddr: getEnv("HTTP_ADDR", ":8080"),
		Domain: DomainConfig{
			Provider:   getEnv("DOMAIN_PROVIDER", ProviderCloudflare),
			BaseDomain: getEnv("BASE_DOMAIN", ""),
		},
		Cloudflare: CloudflareConfig{
			APIToken:    getEnv("CLOUDFLARE_API_TOKEN", ""),
			ZoneID:      getEnv("CLOUDFLARE_ZONE_ID", ""),
			EdgeIP:      getEnv("CLOUDFLARE_EDGE_IP", ""),
			CNAMETarget: getEnv("CLOUDFLARE_CNAME_TARGET", ""),
		},
		Vercel: VercelConfig{
			Token:     getEnv("VERCEL_TOKEN", ""),
			ProjectID: getEnv("VERCEL_PROJECT_ID", ""),
			TeamID:    getEnv("VERCEL_TEAM_ID", ""),
		},
		VerifyWorker: VerifyWorkerConfig{
			Enabled:     getEnv("VERIFY_WORKER_ENABLED", "1") == "1",
			IntervalSec: getEnvInt("VERIFY_WORKER_INTERVAL_SEC", 60),
			BatchSize:   getEnvInt("VERIFY_WORKER_BATCH_SIZE", 20),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadFromINI loads configuration from an INI file with environment variable
// override (priority: ENV > INI > default)
func LoadFromINI(iniPath string) (*Config, error) {
	cfgFile, err := ini.Load(iniPath)
	if err != nil {
		return nil, fmt.Errorf("failed to load INI file: %w", err)
	}

	getValue := func(envKey, iniSection, iniKey, defaultValue string) string {
		if value := os.Getenv(envKey); value != "" {
			return value
		}
		if value := cfgFile.Section(iniSection).Key(iniKey).String(); value != "" {
			return value
		}
		return defaultValue
	}

	getValueInt := func(envKey, iniSection, iniKey string, defaultValue int) int {
		if value := os.Getenv(envKey); value != "" {
			if intValue, err := strconv.Atoi(value); err == nil {
				return intValue
			}
		}
		if cfgFile.Section(iniSection).HasKey(iniKey) {
			if value, err := cfgFile.Section(iniSection).Key(iniKey).Int(); err == nil {
				return value
			}
		}
		return defaultValue
	}

	getValueBool := func(envKey, iniSection, iniKey string, defaultValue bool) bool {
		if value := os.Getenv(envKey); value != "" {
			return value == "1" || value == "true"
		}
		if value, err := cfgFile.Section(iniSection).Key(iniKey).Bool(); err == nil {
			return value
		}
		return defaultValue
	}

	cfg := &Config{
		MySQL: MySQLConfig{
			DSN: getValue("MYSQL_DSN", "mysql", "dsn", ""),
		},
		Redis: RedisConfig{
			Addr:     getValue("REDIS_ADDR", "redis", "addr", "localhost:6379"),
			Password: getValue("REDIS_PASS", "redis", "pass", ""),
			DB:       getValueInt("REDIS_DB", "redis", "db", 0),
		},
		JWT: JWTConfig{
			Secret:        getValue("JWT_SECRET", "jwt", "secret", ""),
			ExpireMinutes: getValueInt("JWT_EXPIRE_MINUTES", "jwt", "expire_minutes", 1440),
			Issuer:        getValue("JWT_ISSUER", "jwt", "issuer", "go_domains"),
		},
		Migrate:  getValueBool("MIGRATE", "app", "migrate", false),
		HTTPAddr: getValue("HTTP_ADDR", "http", "addr", ":8080"),
		Domain: DomainConfig{
			Provider:   getValue("DOMAIN_PROVIDER", "domain", "provider", ProviderCloudflare),
			BaseDomain: getValue("BASE_DOMAIN", "domain", "base_domain", ""),
		},
		Cloudflare: CloudflareConfig{
			APIToken:    getValue("CLOUDFLARE_API_TOKEN", "cloudflare", "api_token", ""),
			ZoneID:      getValue("CLOUDFLARE_ZONE_ID", "cloudflare", "zone_id", ""),
			EdgeIP:      getValue("CLOUDFLARE_EDGE_IP", "cloudflare", "edge_ip", ""),
			CNAMETarget: getValue("CLOUDFLARE_CNAME_TARGET", "cloudflare", "cname_target", ""),
		},
		Vercel: VercelConfig{
			Token:     getValue("VERCEL_TOKEN", "vercel", "token", ""),
			ProjectID: getValue("VERCEL_PROJECT_ID", "vercel", "project_id", ""),
			TeamID:    getValue("VERCEL_TEAM_ID", "vercel", "team_id", ""),
		},
		VerifyWorker: VerifyWorkerConfig{
			Enabled:     getValueBool("VERIFY_WORKER_ENABLED", "verify_worker", "enabled", true),
			IntervalSec: getValueInt("VERIFY_WORKER_INTERVAL_SEC", "verify_worker", "interval_sec", 60),
			BatchSize:   getValueInt("VERIFY_WORKER_BATCH_SIZE", "verify_worker", "batch_size", 20),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// validate checks required fields, including the credentials of whichever
// provider is selected
func (c *Config) validate() error {
	if c.MySQL.DSN == "" {
		return fmt.Errorf("MYSQL_DSN is required")
	}
	if c.JWT.Secret == "" {
		return fmt.Errorf("JWT_SECRET is required")
	}
	if c.Domain.BaseDomain == "" {
		return fmt.Errorf("BASE_DOMAIN is required")
	}

	switch c.Domain.Provider {
	case ProviderCloudflare:
		if c.Cloudflare.APIToken == "" || c.Cloudflare.ZoneID == "" {
			return fmt.Errorf("CLOUDFLARE_API_TOKEN and CLOUDFLARE_ZONE_ID are required for provider %q", ProviderCloudflare)
		}
		if c.Cloudflare.EdgeIP == "" {
			return fmt.Errorf("CLOUDFLARE_EDGE_IP is required for provider %q", ProviderCloudflare)
		}
	case ProviderVercel:
		if c.Vercel.Token == "" || c.Vercel.ProjectID == "" {
			return fmt.Errorf("VERCEL_TOKEN and VERCEL_PROJECT_ID are required for provider %q", ProviderVercel)
		}
	default:
		return fmt.Errorf("unknown DOMAIN_PROVIDER: %s", c.Domain.Provider)
	}

	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}
