// Package config reads server settings from the environment.
//
// A .env file in the working directory is loaded first when present;
// variables already set in the process environment win over it.
// cmd/server lets command-line flags override the result.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/warp/retail-insights/insight"
	"github.com/warp/retail-insights/promo"
)

// Config holds all configuration for the application.
type Config struct {
	Server   ServerConfig
	Data     DataConfig
	Analysis AnalysisConfig
	LogLevel slog.Level
}

// ServerConfig holds HTTP settings.
type ServerConfig struct {
	Port           int
	AllowedOrigins []string
}

// DataConfig selects where the snapshot comes from.
type DataConfig struct {
	// DBPath is the SQLite database. ":memory:" keeps nothing on disk.
	DBPath string
	// CSVPath, when set, is read instead of the database.
	CSVPath string
	// Scenario seeds an empty database on startup.
	Scenario        string
	RefreshInterval time.Duration
}

// AnalysisConfig points at the engine thresholds.
type AnalysisConfig struct {
	ProfilePath string
	// PromoMode, when set, overrides the profile's mode.
	PromoMode string
	Currency  string
}

// Load loads configuration from environment variables, after reading the
// given .env files (".env" when none are named). Missing files are fine.
func Load(envFiles ...string) (*Config, error) {
	if len(envFiles) == 0 {
		envFiles = []string{".env"}
	}
	for _, f := range envFiles {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to read %s: %w", f, err)
		}
	}

	port, err := strconv.Atoi(getEnv("PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid PORT: %w", err)
	}
	refresh, err := time.ParseDuration(getEnv("REFRESH_INTERVAL", "0s"))
	if err != nil {
		return nil, fmt.Errorf("invalid REFRESH_INTERVAL: %w", err)
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(getEnv("LOG_LEVEL", "info"))); err != nil {
		return nil, fmt.Errorf("invalid LOG_LEVEL: %w", err)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           port,
			AllowedOrigins: splitList(getEnv("ALLOWED_ORIGINS", "http://localhost:5173,http://localhost:8080")),
		},
		Data: DataConfig{
			DBPath:          getEnv("DB_PATH", "retail.db"),
			CSVPath:         getEnv("CSV_PATH", ""),
			Scenario:        getEnv("SCENARIO", "bidco-promo"),
			RefreshInterval: refresh,
		},
		Analysis: AnalysisConfig{
			ProfilePath: getEnv("PROFILE_PATH", ""),
			PromoMode:   getEnv("PROMO_MODE", ""),
			Currency:    getEnv("CURRENCY", ""),
		},
		LogLevel: level,
	}
	return cfg, nil
}

// Apply layers the environment overrides onto profile options and
// revalidates them.
func (c *Config) Apply(opts insight.Options) (insight.Options, error) {
	if c.Analysis.PromoMode != "" {
		mode, err := promo.ParseMode(c.Analysis.PromoMode)
		if err != nil {
			return opts, err
		}
		opts.Promo.Mode = mode
	}
	if c.Analysis.Currency != "" {
		opts.Currency = c.Analysis.Currency
	}
	return opts, opts.Validate()
}

// getEnv gets an environment variable with a fallback value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return fallback
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
