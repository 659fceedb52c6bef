package config

import (
	"fmt"
	"log"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Addr           string        `yaml:"addr"`
	DBDriver       string        `yaml:"db_driver"`
	DatabaseURL    string        `yaml:"database_url"`
	LogLevel       string        `yaml:"log_level"`
	LogFormat      string        `yaml:"log_format"`
	ListPerPage    int           `yaml:"list_per_page"`
	AdminCSS       string        `yaml:"admin_css"`
	MetricsEnabled bool          `yaml:"metrics_enabled"`
	ReadTimeout    time.Duration `yaml:"read_timeout"`
	WriteTimeout   time.Duration `yaml:"write_timeout"`
}

// Defaults returns the configuration used when nothing is set.
func Defaults() Config {
	return Config{
		Addr:           ":8080",
		DBDriver:       "sqlite3",
		DatabaseURL:    "file:tourneydesk.db",
		LogLevel:       "INFO",
		LogFormat:      "console",
		ListPerPage:    100,
		AdminCSS:       "/static/css/additional_admin.css",
		MetricsEnabled: true,
		ReadTimeout:    15 * time.Second,
		WriteTimeout:   30 * time.Second,
	}
}

// Load reads configuration from an optional YAML file named by CONFIG_FILE,
// then a .env file (if present), then environment variables. Later sources win.
func Load() (Config, error) {
	// Ignore error so the app still starts when .env is absent in production.
	_ = godotenv.Load()

	cfg := Defaults()
	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return cfg, err
		}
	}

	cfg.Addr = envOr("ADDR", cfg.Addr)
	cfg.DBDriver = envOr("DB_DRIVER", cfg.DBDriver)
	cfg.DatabaseURL = envOr("DATABASE_URL", cfg.DatabaseURL)
	cfg.LogLevel = envOr("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = envOr("LOG_FORMAT", cfg.LogFormat)
	cfg.ListPerPage = envIntOr("LIST_PER_PAGE", cfg.ListPerPage)
	cfg.AdminCSS = envOr("ADMIN_CSS", cfg.AdminCSS)
	cfg.MetricsEnabled = envBoolOr("METRICS_ENABLED", cfg.MetricsEnabled)
	cfg.ReadTimeout = envDurationOr("READ_TIMEOUT", cfg.ReadTimeout)
	cfg.WriteTimeout = envDurationOr("WRITE_TIMEOUT", cfg.WriteTimeout)

	return cfg, nil
}

func loadFile(path string, cfg *Config) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Addr) == "" {
		return fmt.Errorf("ADDR cannot be empty")
	}
	switch c.DBDriver {
	case "sqlite3", "postgres":
	default:
		return fmt.Errorf("DB_DRIVER must be sqlite3 or postgres, got %q", c.DBDriver)
	}
	if strings.TrimSpace(c.DatabaseURL) == "" {
		return fmt.Errorf("DATABASE_URL cannot be empty")
	}
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be console or json, got %q", c.LogFormat)
	}
	if c.ListPerPage < 1 || c.ListPerPage > 1000 {
		return fmt.Errorf("LIST_PER_PAGE must be between 1 and 1000, got %d", c.ListPerPage)
	}
	if c.ReadTimeout <= 0 {
		return fmt.Errorf("READ_TIMEOUT must be positive")
	}
	if c.WriteTimeout <= 0 {
		return fmt.Errorf("WRITE_TIMEOUT must be positive")
	}
	return nil
}

func envOr(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func envIntOr(key string, def int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
		log.Printf("invalid value for %s=%q, using default %d", key, v, def)
	}
	return def
}

func envBoolOr(key string, def bool) bool {
	if v := os.Getenv(key); v != "" {
		if b, err := strconv.ParseBool(v); err == nil {
			return b
		}
		log.Printf("invalid value for %s=%q, using default %t", key, v, def)
	}
	return def
}

func envDurationOr(key string, def time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
		log.Printf("invalid value for %s=%q, using default %s", key, v, def)
	}
	return def
}
