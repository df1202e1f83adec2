// Package config loads the adscout service configuration from YAML with
// environment variable overrides.
package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	defaultServerPort      = 8070
	defaultServerTimeout   = 30
	defaultDatabasePort    = 5432
	defaultMaxOpenConns    = 25
	defaultMaxIdleConns    = 5
	defaultConnMaxLifetime = 5
	defaultRedisAddress    = "localhost:6379"

	defaultPlannerModel      = "claude-sonnet-4-5"
	defaultPlannerMaxQueries = 3

	defaultBrowserbotURL     = "http://localhost:8900"
	defaultBrowserbotTimeout = 120 * time.Second
	defaultMaxProducts       = 3

	defaultSearchHost   = "webservices.amazon.com"
	defaultSearchRegion = "us-east-1"
)

type Config struct {
	Debug         bool                `env:"APP_DEBUG"  yaml:"debug"`
	Server        ServerConfig        `yaml:"server"`
	Database      DatabaseConfig      `yaml:"database"`
	Planner       PlannerConfig       `yaml:"planner"`
	Browserbot    BrowserbotConfig    `yaml:"browserbot"`
	ProductSearch ProductSearchConfig `yaml:"product_search"`
	Redis         RedisConfig         `yaml:"redis"`
}

type ServerConfig struct {
	Host         string        `env:"SERVER_HOST" yaml:"host"`
	Port         int           `env:"SERVER_PORT" yaml:"port"`
	ReadTimeout  time.Duration `yaml:"read_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	CORSOrigins  []string      `env:"CORS_ORIGINS" yaml:"cors_origins"`
}

type DatabaseConfig struct {
	Host            string        `env:"DB_HOST"     yaml:"host"`
	Port            int           `env:"DB_PORT"     yaml:"port"`
	User            string        `env:"DB_USER"     yaml:"user"`
	Password        string        `env:"DB_PASSWORD" yaml:"password"`
	DBName          string        `env:"DB_NAME"     yaml:"dbname"`
	SSLMode         string        `env:"DB_SSLMODE"  yaml:"sslmode"`
	MaxOpenConns    int           `yaml:"max_open_conns"`
	MaxIdleConns    int           `yaml:"max_idle_conns"`
	ConnMaxLifetime time.Duration `yaml:"conn_max_lifetime"`
}

// PlannerConfig configures the language-model planner. An empty APIKey puts
// the planner in offline mode: every call answers with the deterministic
// default plan.
type PlannerConfig struct {
	APIKey     string `env:"ANTHROPIC_API_KEY" yaml:"api_key"`
	Model      string `env:"PLANNER_MODEL"     yaml:"model"`
	MaxQueries int    `yaml:"max_queries"`
}

// BrowserbotConfig configures the browser-automation collaborator.
type BrowserbotConfig struct {
	URL         string        `env:"BROWSERBOT_URL" yaml:"url"`
	Timeout     time.Duration `yaml:"timeout"`
	MaxProducts int           `yaml:"max_products"`
}

// ProductSearchConfig configures the Product Advertising API fallback.
// Missing credentials switch the client to its built-in demo result set.
type ProductSearchConfig struct {
	AccessKey  string `env:"PAAPI_ACCESS_KEY"  yaml:"access_key"`
	SecretKey  string `env:"PAAPI_SECRET_KEY"  yaml:"secret_key"`
	PartnerTag string `env:"PAAPI_PARTNER_TAG" yaml:"partner_tag"`
	Host       string `env:"PAAPI_HOST"        yaml:"host"`
	Region     string `env:"PAAPI_REGION"      yaml:"region"`
}

// RedisConfig holds Redis connection configuration for run event publishing.
type RedisConfig struct {
	Address  string `env:"REDIS_ADDRESS"        yaml:"address"`
	Password string `env:"REDIS_PASSWORD"       yaml:"password"`
	DB       int    `env:"REDIS_DB"             yaml:"db"`
	Enabled  bool   `env:"REDIS_EVENTS_ENABLED" yaml:"enabled"` // Feature flag for event publishing
}

func (c *Config) Validate() error {
	if c.Server.Host == "" {
		return errors.New("server.host is required")
	}
	if c.Server.Port <= 0 {
		return errors.New("server.port is required and must be positive")
	}
	if c.Database.Host == "" {
		return errors.New("database.host is required")
	}
	if c.Database.Port <= 0 {
		return errors.New("database.port is required and must be positive")
	}
	if c.Database.User == "" {
		return errors.New("database.user is required")
	}
	if c.Database.DBName == "" {
		return errors.New("database.dbname is required")
	}
	if c.Browserbot.URL == "" {
		return errors.New("browserbot.url is required")
	}
	return nil
}

func Load(path string) (*Config, error) {
	var cfg Config
	if err := loadFile(path, &cfg); err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}

	setDefaults(&cfg)

	// Env always wins, including over defaults.
	applyEnvOverrides(&cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(cfg *Config) {
	if cfg.Server.Host == "" {
		cfg.Server.Host = "0.0.0.0"
	}
	if cfg.Server.Port == 0 {
		cfg.Server.Port = defaultServerPort
	}
	if cfg.Server.ReadTimeout == 0 {
		cfg.Server.ReadTimeout = defaultServerTimeout * time.Second
	}
	if cfg.Server.WriteTimeout == 0 {
		cfg.Server.WriteTimeout = defaultServerTimeout * time.Second
	}
	if len(cfg.Server.CORSOrigins) == 0 {
		cfg.Server.CORSOrigins = []string{
			"http://localhost:3000", // Campaign dashboard frontend
		}
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = defaultDatabasePort
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = defaultMaxOpenConns
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = defaultMaxIdleConns
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = defaultConnMaxLifetime * time.Minute
	}
	if cfg.Planner.Model == "" {
		cfg.Planner.Model = defaultPlannerModel
	}
	if cfg.Planner.MaxQueries == 0 {
		cfg.Planner.MaxQueries = defaultPlannerMaxQueries
	}
	if cfg.Browserbot.URL == "" {
		cfg.Browserbot.URL = defaultBrowserbotURL
	}
	if cfg.Browserbot.Timeout == 0 {
		cfg.Browserbot.Timeout = defaultBrowserbotTimeout
	}
	if cfg.Browserbot.MaxProducts == 0 {
		cfg.Browserbot.MaxProducts = defaultMaxProducts
	}
	if cfg.ProductSearch.Host == "" {
		cfg.ProductSearch.Host = defaultSearchHost
	}
	if cfg.ProductSearch.Region == "" {
		cfg.ProductSearch.Region = defaultSearchRegion
	}
	if cfg.Redis.Address == "" {
		cfg.Redis.Address = defaultRedisAddress
	}
	// Note: cfg.Redis.Enabled defaults to false (feature flag)
}
