package config

import (
	"fmt"
	"os"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds all application configuration
type Config struct {
	// Monitor configuration
	Monitor MonitorConfig `yaml:"monitor"`

	// Daemon configuration
	Daemon DaemonConfig `yaml:"daemon"`

	// Database configuration
	Database DatabaseConfig `yaml:"database"`

	// Metrics configuration
	Metrics MetricsConfig `yaml:"metrics"`
}

// MonitorConfig holds polling behavior configuration
type MonitorConfig struct {
	ClassName       string        `yaml:"class_name"`        // WM_CLASS instance name of the watched window
	OutputFile      string        `yaml:"output_file"`       // File that mirrors the current title
	PollInterval    time.Duration `yaml:"poll_interval"`     // Delay between ticks
	MinPollInterval time.Duration `yaml:"min_poll_interval"` // Minimum allowed poll interval
	MaxPollInterval time.Duration `yaml:"max_poll_interval"` // Maximum allowed poll interval
	QueryTimeout    time.Duration `yaml:"query_timeout"`     // Bound on each external query
	Backend         string        `yaml:"backend"`           // xprop or xgb
}

// DaemonConfig holds daemon process configuration
type DaemonConfig struct {
	PIDFile string `yaml:"pid_file"` // Path to PID file for daemon management
	LogFile string `yaml:"log_file"` // Log file used when running detached
}

// DatabaseConfig holds the diagnostic error log configuration
type DatabaseConfig struct {
	Path    string `yaml:"path"`    // Path to SQLite database file
	Enabled bool   `yaml:"enabled"` // Whether diagnostics are persisted
}

// MetricsConfig holds metrics export configuration
type MetricsConfig struct {
	TextfilePath string `yaml:"textfile_path"` // Empty disables the export
}

// Default returns a Config with the compiled-in values
func Default() *Config {
	return &Config{
		Monitor: MonitorConfig{
			ClassName:       "cloudmusic.exe",
			OutputFile:      "title.txt",
			PollInterval:    1 * time.Second,
			MinPollInterval: 100 * time.Millisecond,
			MaxPollInterval: 60 * time.Second,
			QueryTimeout:    5 * time.Second,
			Backend:         "xprop",
		},
		Daemon: DaemonConfig{
			PIDFile: fmt.Sprintf("/tmp/titlemirror-%d.pid", os.Getuid()),
			LogFile: fmt.Sprintf("/tmp/titlemirror-%d.log", os.Getuid()),
		},
		Database: DatabaseConfig{
			Path:    "", // Empty means use default ~/.config/titlemirror/titlemirror.db
			Enabled: false,
		},
	}
}

// Validate checks if the configuration is valid
func (c *Config) Validate() error {
	if c.Monitor.ClassName == "" {
		return fmt.Errorf("window class name cannot be empty")
	}

	if c.Monitor.OutputFile == "" {
		return fmt.Errorf("output file path cannot be empty")
	}

	if c.Monitor.PollInterval < c.Monitor.MinPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be less than minimum (%v)",
			c.Monitor.PollInterval, c.Monitor.MinPollInterval)
	}

	if c.Monitor.PollInterval > c.Monitor.MaxPollInterval {
		return fmt.Errorf("poll interval (%v) cannot be greater than maximum (%v)",
			c.Monitor.PollInterval, c.Monitor.MaxPollInterval)
	}

	if c.Monitor.QueryTimeout < 0 {
		return fmt.Errorf("query timeout cannot be negative")
	}

	switch c.Monitor.Backend {
	case "xprop", "xgb":
	default:
		return fmt.Errorf("backend must be xprop or xgb, got %q", c.Monitor.Backend)
	}

	if c.Daemon.PIDFile == "" {
		return fmt.Errorf("PID file path cannot be empty")
	}

	return nil
}

// SetPollInterval sets the poll interval with validation
func (c *Config) SetPollInterval(interval time.Duration) error {
	if interval < c.Monitor.MinPollInterval {
		return fmt.Errorf("poll interval cannot be less than %v", c.Monitor.MinPollInterval)
	}
	if interval > c.Monitor.MaxPollInterval {
		return fmt.Errorf("poll interval cannot be greater than %v", c.Monitor.MaxPollInterval)
	}
	c.Monitor.PollInterval = interval
	return nil
}

// String returns a string representation of the config
func (c *Config) String() string {
	return fmt.Sprintf(`Configuration:
  Monitor:
    Class Name: %s
    Output File: %s
    Poll Interval: %v
    Query Timeout: %v
    Backend: %s
  Daemon:
    PID File: %s
    Log File: %s
  Database:
    Enabled: %v
    Path: %s
  Metrics:
    Textfile: %s`,
		c.Monitor.ClassName,
		c.Monitor.OutputFile,
		c.Monitor.PollInterval,
		c.Monitor.QueryTimeout,
		c.Monitor.Backend,
		c.Daemon.PIDFile,
		c.Daemon.LogFile,
		c.Database.Enabled,
		c.Database.Path,
		c.Metrics.TextfilePath,
	)
}

// YAML renders the configuration as a YAML document
func (c *Config) YAML() (string, error) {
	out, err := yaml.Marshal(c)
	if err != nil {
		return "", fmt.Errorf("failed to marshal config: %w", err)
	}
	return string(out), nil
}
