package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// Config holds user and server preferences
type Config struct {
	// Server
	ListenAddr string `yaml:"listen_addr" json:"listen_addr"` // Address the API server binds to

	// Database
	DatabaseDriver string `yaml:"database_driver" json:"database_driver"` // "sqlite" or "postgres"
	DatabaseDSN    string `yaml:"database_dsn" json:"database_dsn"`       // Path (sqlite) or connection URL (postgres)

	// Reporting defaults
	Timezone  string `yaml:"timezone" json:"timezone"`     // IANA zone used when the caller provides none
	WeekStart string `yaml:"week_start" json:"week_start"` // Weekday the week bucket starts on

	// CLI acting context, set by `hourglass org`
	Organization string `yaml:"organization" json:"organization"` // Organization id CLI commands act on
	Email        string `yaml:"email" json:"email"`               // Acting user's email

	// Logging configuration
	LogLevel   string `yaml:"log_level" json:"log_level"`     // Log level: DEBUG, INFO, WARN, ERROR
	LogFile    string `yaml:"log_file" json:"log_file"`       // Path to log file
	LogConsole bool   `yaml:"log_console" json:"log_console"` // Enable console logging
}

// DefaultConfig returns default settings
func DefaultConfig() *Config {
	home, _ := os.UserHomeDir()
	logPath := ""
	dbPath := "hourglass.db"
	if home != "" {
		logPath = filepath.Join(home, ".hourglass", "logs", "hourglass.log")
		dbPath = filepath.Join(home, ".hourglass", "hourglass.db")
	}

	return &Config{
		ListenAddr:     getEnv("HOURGLASS_LISTEN_ADDR", ":8080"),
		DatabaseDriver: getEnv("HOURGLASS_DB_DRIVER", "sqlite"),
		DatabaseDSN:    getEnv("HOURGLASS_DB_DSN", dbPath),
		Timezone:       getEnv("HOURGLASS_TIMEZONE", "UTC"),
		WeekStart:      getEnv("HOURGLASS_WEEK_START", "monday"),
		LogLevel:       getEnv("HOURGLASS_LOG_LEVEL", "INFO"),
		LogFile:        getEnv("HOURGLASS_LOG_FILE", logPath),
		LogConsole:     getEnv("HOURGLASS_LOG_CONSOLE", "false") == "true",
	}
}

// getEnv gets an environment variable or returns a default value
func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// Load loads config from ~/.hourglass/config.yaml
func Load() (*Config, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return nil, err
	}

	configPath := filepath.Join(home, ".hourglass", "config.yaml")

	// Return defaults if no config file exists yet
	if _, err := os.Stat(configPath); os.IsNotExist(err) {
		return DefaultConfig(), nil
	}

	data, err := os.ReadFile(configPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	return cfg, nil
}

// Save saves config to ~/.hourglass/config.yaml
func (c *Config) Save() error {
	home, err := os.UserHomeDir()
	if err != nil {
		return err
	}

	configDir := filepath.Join(home, ".hourglass")
	if err := os.MkdirAll(configDir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	configPath := filepath.Join(configDir, "config.yaml")
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}

	if err := os.WriteFile(configPath, data, 0644); err != nil {
		return fmt.Errorf("failed to write config: %w", err)
	}

	return nil
}
