// Package config loads studio settings from the environment and an optional
// studio.yaml file.
package config

import (
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/mitchellh/go-homedir"
	"github.com/spf13/viper"

	"product-image-studio/utils"
)

// Config holds every setting the studio reads at startup.
type Config struct {
	Env  string
	Port string

	DBDriver    string
	DatabaseURL string
	DBHost      string
	DBPort      string
	DBUser      string
	DBPassword  string
	DBName      string
	DBSSLMode   string
	SQLitePath  string

	CredentialsPath string
	CredentialsJSON string
	AWSRegion       string

	CacheDir         string
	TemplateColumns  []string
	DefaultCategory  string
	PageSize         int
	SilentThreshold  int
	FetchConcurrency int
	FetchTimeout     time.Duration

	ChromePath string
	BaseURL    string
	LogLevel   string
}

// Load reads configuration. configFile may point to an explicit config file; when
// empty a studio.yaml in the working directory is used if present.
func Load(configFile string) (*Config, error) {
	v := viper.New()
	v.SetDefault("ENV", "development")
	v.SetDefault("PORT", "8080")
	v.SetDefault("DB_DRIVER", "pgx")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SSLMODE", "disable")
	v.SetDefault("SQLITE_PATH", "~/.product-image-studio/studio.db")
	v.SetDefault("CACHE_DIR", "~/.product-image-studio/cache")
	v.SetDefault("TEMPLATE_COLUMNS", "main,side,back,detail")
	v.SetDefault("DEFAULT_CATEGORY", "main")
	v.SetDefault("PAGE_SIZE", 12)
	v.SetDefault("SILENT_THRESHOLD", 2)
	v.SetDefault("FETCH_CONCURRENCY", 6)
	v.SetDefault("FETCH_TIMEOUT", "20s")
	v.SetDefault("BASE_URL", "http://localhost:8080")
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("AWS_REGION", "us-east-1")
	v.AutomaticEnv()

	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("studio")
		v.AddConfigPath(".")
		if override := os.Getenv("STUDIO_CONFIG_PATH"); override != "" {
			v.AddConfigPath(override)
		}
	}
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if configFile != "" || !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	cacheDir, err := homedir.Expand(v.GetString("CACHE_DIR"))
	if err != nil {
		return nil, fmt.Errorf("failed to expand CACHE_DIR: %w", err)
	}
	sqlitePath, err := homedir.Expand(v.GetString("SQLITE_PATH"))
	if err != nil {
		return nil, fmt.Errorf("failed to expand SQLITE_PATH: %w", err)
	}

	cfg := &Config{
		Env:              v.GetString("ENV"),
		Port:             v.GetString("PORT"),
		DBDriver:         v.GetString("DB_DRIVER"),
		DatabaseURL:      v.GetString("DATABASE_URL"),
		DBHost:           v.GetString("DB_HOST"),
		DBPort:           v.GetString("DB_PORT"),
		DBUser:           v.GetString("DB_USER"),
		DBPassword:       v.GetString("DB_PASSWORD"),
		DBName:           v.GetString("DB_NAME"),
		DBSSLMode:        v.GetString("DB_SSLMODE"),
		SQLitePath:       sqlitePath,
		CredentialsPath:  v.GetString("GOOGLE_APPLICATION_CREDENTIALS"),
		CredentialsJSON:  v.GetString("GOOGLE_APPLICATION_CREDENTIALS_JSON"),
		AWSRegion:        v.GetString("AWS_REGION"),
		CacheDir:         cacheDir,
		TemplateColumns:  utils.ParseColumns(v.GetString("TEMPLATE_COLUMNS")),
		DefaultCategory:  utils.NormalizeCategory(v.GetString("DEFAULT_CATEGORY")),
		PageSize:         v.GetInt("PAGE_SIZE"),
		SilentThreshold:  v.GetInt("SILENT_THRESHOLD"),
		FetchConcurrency: v.GetInt("FETCH_CONCURRENCY"),
		FetchTimeout:     v.GetDuration("FETCH_TIMEOUT"),
		ChromePath:       v.GetString("CHROME_PATH"),
		BaseURL:          v.GetString("BASE_URL"),
		LogLevel:         v.GetString("LOG_LEVEL"),
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the studio cannot start with.
func (c *Config) Validate() error {
	switch c.DBDriver {
	case "pgx", "sqlite":
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q: expected pgx or sqlite", c.DBDriver)
	}
	if c.PageSize <= 0 {
		return fmt.Errorf("PAGE_SIZE must be positive, got %d", c.PageSize)
	}
	if c.FetchConcurrency <= 0 {
		return fmt.Errorf("FETCH_CONCURRENCY must be positive, got %d", c.FetchConcurrency)
	}
	if c.DefaultCategory == "" {
		c.DefaultCategory = "main"
	}
	return nil
}

// Production reports whether the studio runs with ENV=production.
func (c *Config) Production() bool {
	return c.Env == "production"
}
