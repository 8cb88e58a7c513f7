package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Server   ServerConfig   `yaml:"server"`
	Dataset  DatasetConfig  `yaml:"dataset"`
	Database DatabaseConfig `yaml:"database"`
	Redis    RedisConfig    `yaml:"redis"`
	Session  SessionConfig  `yaml:"session"`
	CORS     CORSConfig     `yaml:"cors"`
	LogLevel string         `yaml:"log_level"`
}

type ServerConfig struct {
	Port          int    `yaml:"port"`
	GinMode       string `yaml:"gin_mode"`
	RepositoryURL string `yaml:"repository_url"`
}

// DatasetConfig selects where the dashboard reads customer records from.
// Source is either "file" (CSV at Path) or "postgres" (Table via Database).
type DatasetConfig struct {
	Source string `yaml:"source"`
	Path   string `yaml:"path"`
	Table  string `yaml:"table"`
	Cache  bool   `yaml:"cache"`
}

type DatabaseConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	User     string `yaml:"user"`
	Password string `yaml:"password"`
	Name     string `yaml:"name"`
	SSLMode  string `yaml:"sslmode"`
}

type RedisConfig struct {
	Host     string `yaml:"host"`
	Port     int    `yaml:"port"`
	Password string `yaml:"password"`
	DB       int    `yaml:"db"`
	// ConnectAttempts bounds the startup ping loop before falling back to
	// the in-process history store.
	ConnectAttempts int `yaml:"connect_attempts"`
}

type SessionConfig struct {
	Secret       string `yaml:"secret"`
	TTLHours     int    `yaml:"ttl_hours"`
	CookieName   string `yaml:"cookie_name"`
	SecureCookie bool   `yaml:"secure_cookie"`
}

type CORSConfig struct {
	AllowedOrigins string `yaml:"allowed_origins"`
}

const (
	SourceFile     = "file"
	SourcePostgres = "postgres"
)

func (d DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode,
	)
}

func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

func defaults() *Config {
	return &Config{
		Server: ServerConfig{
			Port:          8080,
			GinMode:       "release",
			RepositoryURL: "https://github.com/your-repo-link",
		},
		Dataset: DatasetConfig{
			Source: SourceFile,
			Path:   "main_df.csv",
			Table:  "customers",
		},
		Database: DatabaseConfig{
			Host:    "localhost",
			Port:    5432,
			User:    "churn",
			Name:    "churn",
			SSLMode: "disable",
		},
		Redis: RedisConfig{
			Host:            "localhost",
			Port:            6379,
			ConnectAttempts: 3,
		},
		Session: SessionConfig{
			Secret:     "churn-dashboard-dev-secret",
			TTLHours:   24,
			CookieName: "churn_session",
		},
		CORS: CORSConfig{
			AllowedOrigins: "*",
		},
		LogLevel: "info",
	}
}

// LoadConfig builds the configuration from defaults, an optional YAML file
// (CONFIG_FILE, default config.yaml) and finally environment variables.
func LoadConfig() (*Config, error) {
	cfg := defaults()

	path := getEnv("CONFIG_FILE", "config.yaml")
	if data, err := os.ReadFile(path); err == nil {
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("parse %s: %w", path, err)
		}
	} else if !errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var err error
	if cfg.Server.Port, err = getIntEnv("SERVER_PORT", cfg.Server.Port); err != nil {
		return nil, fmt.Errorf("invalid SERVER_PORT: %w", err)
	}
	if cfg.Database.Port, err = getIntEnv("DB_PORT", cfg.Database.Port); err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}
	if cfg.Redis.Port, err = getIntEnv("REDIS_PORT", cfg.Redis.Port); err != nil {
		return nil, fmt.Errorf("invalid REDIS_PORT: %w", err)
	}
	if cfg.Redis.DB, err = getIntEnv("REDIS_DB", cfg.Redis.DB); err != nil {
		return nil, fmt.Errorf("invalid REDIS_DB: %w", err)
	}
	if cfg.Session.TTLHours, err = getIntEnv("SESSION_TTL_HOURS", cfg.Session.TTLHours); err != nil {
		return nil, fmt.Errorf("invalid SESSION_TTL_HOURS: %w", err)
	}
	if cfg.Redis.ConnectAttempts, err = getIntEnv("REDIS_CONNECT_ATTEMPTS", cfg.Redis.ConnectAttempts); err != nil {
		return nil, fmt.Errorf("invalid REDIS_CONNECT_ATTEMPTS: %w", err)
	}
	if cfg.Dataset.Cache, err = getBoolEnv("DATASET_CACHE", cfg.Dataset.Cache); err != nil {
		return nil, fmt.Errorf("invalid DATASET_CACHE: %w", err)
	}
	if cfg.Session.SecureCookie, err = getBoolEnv("SESSION_SECURE_COOKIE", cfg.Session.SecureCookie); err != nil {
		return nil, fmt.Errorf("invalid SESSION_SECURE_COOKIE: %w", err)
	}

	cfg.Server.GinMode = getEnv("GIN_MODE", cfg.Server.GinMode)
	cfg.Server.RepositoryURL = getEnv("REPOSITORY_URL", cfg.Server.RepositoryURL)
	cfg.Dataset.Source = strings.ToLower(getEnv("DATASET_SOURCE", cfg.Dataset.Source))
	cfg.Dataset.Path = getEnv("DATASET_PATH", cfg.Dataset.Path)
	cfg.Dataset.Table = getEnv("DATASET_TABLE", cfg.Dataset.Table)
	cfg.Database.Host = getEnv("DB_HOST", cfg.Database.Host)
	cfg.Database.User = getEnv("DB_USER", cfg.Database.User)
	cfg.Database.Password = getEnv("DB_PASSWORD", cfg.Database.Password)
	cfg.Database.Name = getEnv("DB_NAME", cfg.Database.Name)
	cfg.Database.SSLMode = getEnv("DB_SSLMODE", cfg.Database.SSLMode)
	cfg.Redis.Host = getEnv("REDIS_HOST", cfg.Redis.Host)
	cfg.Redis.Password = getEnv("REDIS_PASSWORD", cfg.Redis.Password)
	cfg.Session.Secret = getEnv("SESSION_SECRET", cfg.Session.Secret)
	cfg.Session.CookieName = getEnv("SESSION_COOKIE", cfg.Session.CookieName)
	cfg.CORS.AllowedOrigins = getEnv("CORS_ALLOWED_ORIGINS", cfg.CORS.AllowedOrigins)
	cfg.LogLevel = getEnv("LOG_LEVEL", cfg.LogLevel)

	switch cfg.Dataset.Source {
	case SourceFile, SourcePostgres:
	default:
		return nil, fmt.Errorf("invalid DATASET_SOURCE %q", cfg.Dataset.Source)
	}
	if cfg.Session.TTLHours <= 0 {
		return nil, fmt.Errorf("invalid SESSION_TTL_HOURS: must be positive")
	}
	if cfg.Redis.ConnectAttempts < 1 {
		cfg.Redis.ConnectAttempts = 1
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	value := os.Getenv(key)
	if value == "" {
		return fallback
	}
	return value
}

func getIntEnv(key string, fallback int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, err
	}
	return parsed, nil
}

func getBoolEnv(key string, fallback bool) (bool, error) {
	value := os.Getenv(key)
	if value == "" {
		return fallback, nil
	}
	return strconv.ParseBool(value)
}
