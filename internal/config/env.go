package config

import (
	"log"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

const envPrefix = "TITLEMIRROR_"

// LoadFromEnv loads configuration from environment variables
// Environment variables override default values; malformed values are ignored
func LoadFromEnv(cfg *Config) {
	// Monitor configuration
	if className := os.Getenv(envPrefix + "CLASS_NAME"); className != "" {
		cfg.Monitor.ClassName = className
	}

	if outputFile := os.Getenv(envPrefix + "OUTPUT_FILE"); outputFile != "" {
		cfg.Monitor.OutputFile = outputFile
	}

	if pollInterval := os.Getenv(envPrefix + "POLL_INTERVAL"); pollInterval != "" {
		if interval, ok := parseDuration(pollInterval); ok {
			if interval >= cfg.Monitor.MinPollInterval && interval <= cfg.Monitor.MaxPollInterval {
				cfg.Monitor.PollInterval = interval
			}
		}
	}

	if queryTimeout := os.Getenv(envPrefix + "QUERY_TIMEOUT"); queryTimeout != "" {
		if timeout, ok := parseDuration(queryTimeout); ok {
			cfg.Monitor.QueryTimeout = timeout
		}
	}

	if backend := os.Getenv(envPrefix + "BACKEND"); backend != "" {
		cfg.Monitor.Backend = backend
	}

	// Daemon configuration
	if pidFile := os.Getenv(envPrefix + "PID_FILE"); pidFile != "" {
		cfg.Daemon.PIDFile = pidFile
	}

	if logFile := os.Getenv(envPrefix + "LOG_FILE"); logFile != "" {
		cfg.Daemon.LogFile = logFile
	}

	// Database configuration
	if dbPath := os.Getenv(envPrefix + "DB_PATH"); dbPath != "" {
		cfg.Database.Path = dbPath
	}

	if errorLog := os.Getenv(envPrefix + "ERROR_LOG"); errorLog != "" {
		if val, err := strconv.ParseBool(errorLog); err == nil {
			cfg.Database.Enabled = val
		}
	}

	// Metrics configuration
	if metricsFile := os.Getenv(envPrefix + "METRICS_FILE"); metricsFile != "" {
		cfg.Metrics.TextfilePath = metricsFile
	}
}

// parseDuration accepts a Go duration ("500ms", "2s") or a whole number of seconds
func parseDuration(value string) (time.Duration, bool) {
	if seconds, err := strconv.Atoi(value); err == nil {
		if seconds <= 0 {
			return 0, false
		}
		return time.Duration(seconds) * time.Second, true
	}

	d, err := time.ParseDuration(value)
	if err != nil || d <= 0 {
		return 0, false
	}
	return d, true
}

// LoadDotEnv loads variables from the given .env files (default ".env") without
// overriding variables already set in the environment. Missing files are not an error.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}

	var existing []string
	for _, f := range files {
		if _, err := os.Stat(f); err == nil {
			existing = append(existing, f)
		}
	}
	if len(existing) == 0 {
		return nil
	}
	return godotenv.Load(existing...)
}

// New creates a new Config with default values, then applies .env and environment overrides
func New() *Config {
	cfg := Default()
	if err := LoadDotEnv(); err != nil {
		log.Printf("Failed to load .env: %v", err)
	}
	LoadFromEnv(cfg)
	return cfg
}
