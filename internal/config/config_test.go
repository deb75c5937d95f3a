package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"gopkg.in/yaml.v3"
)

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("Default().Validate() error: %v", err)
	}
	if cfg.Database.Enabled {
		t.Error("Database.Enabled = true, want false by default")
	}
	if cfg.Metrics.TextfilePath != "" {
		t.Errorf("Metrics.TextfilePath = %q, want empty", cfg.Metrics.TextfilePath)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Config)
		wantErr string
	}{
		{
			name:    "Empty class name",
			modify:  func(c *Config) { c.Monitor.ClassName = "" },
			wantErr: "class name",
		},
		{
			name:    "Empty output file",
			modify:  func(c *Config) { c.Monitor.OutputFile = "" },
			wantErr: "output file",
		},
		{
			name:    "Interval below minimum",
			modify:  func(c *Config) { c.Monitor.PollInterval = time.Millisecond },
			wantErr: "less than minimum",
		},
		{
			name:    "Interval above maximum",
			modify:  func(c *Config) { c.Monitor.PollInterval = time.Hour },
			wantErr: "greater than maximum",
		},
		{
			name:    "Negative timeout",
			modify:  func(c *Config) { c.Monitor.QueryTimeout = -time.Second },
			wantErr: "negative",
		},
		{
			name:    "Unknown backend",
			modify:  func(c *Config) { c.Monitor.Backend = "wmctrl" },
			wantErr: "backend",
		},
		{
			name:    "Empty PID file",
			modify:  func(c *Config) { c.Daemon.PIDFile = "" },
			wantErr: "PID file",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.modify(cfg)
			err := cfg.Validate()
			if err == nil {
				t.Fatal("Validate() error = nil, want error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("Validate() error = %q, want it to contain %q", err, tt.wantErr)
			}
		})
	}
}

func TestLoadFromEnv(t *testing.T) {
	t.Setenv("TITLEMIRROR_CLASS_NAME", "spotify")
	t.Setenv("TITLEMIRROR_OUTPUT_FILE", "/tmp/now-playing.txt")
	t.Setenv("TITLEMIRROR_POLL_INTERVAL", "250ms")
	t.Setenv("TITLEMIRROR_QUERY_TIMEOUT", "2")
	t.Setenv("TITLEMIRROR_BACKEND", "xgb")
	t.Setenv("TITLEMIRROR_PID_FILE", "/tmp/tm.pid")
	t.Setenv("TITLEMIRROR_LOG_FILE", "/tmp/tm.log")
	t.Setenv("TITLEMIRROR_DB_PATH", "/tmp/tm.db")
	t.Setenv("TITLEMIRROR_ERROR_LOG", "true")
	t.Setenv("TITLEMIRROR_METRICS_FILE", "/tmp/tm.prom")

	cfg := Default()
	LoadFromEnv(cfg)

	if cfg.Monitor.ClassName != "spotify" {
		t.Errorf("ClassName = %s, want spotify", cfg.Monitor.ClassName)
	}
	if cfg.Monitor.OutputFile != "/tmp/now-playing.txt" {
		t.Errorf("OutputFile = %s, want /tmp/now-playing.txt", cfg.Monitor.OutputFile)
	}
	if cfg.Monitor.PollInterval != 250*time.Millisecond {
		t.Errorf("PollInterval = %v, want 250ms", cfg.Monitor.PollInterval)
	}
	if cfg.Monitor.QueryTimeout != 2*time.Second {
		t.Errorf("QueryTimeout = %v, want 2s", cfg.Monitor.QueryTimeout)
	}
	if cfg.Monitor.Backend != "xgb" {
		t.Errorf("Backend = %s, want xgb", cfg.Monitor.Backend)
	}
	if cfg.Daemon.PIDFile != "/tmp/tm.pid" {
		t.Errorf("PIDFile = %s, want /tmp/tm.pid", cfg.Daemon.PIDFile)
	}
	if cfg.Daemon.LogFile != "/tmp/tm.log" {
		t.Errorf("LogFile = %s, want /tmp/tm.log", cfg.Daemon.LogFile)
	}
	if cfg.Database.Path != "/tmp/tm.db" {
		t.Errorf("Database.Path = %s, want /tmp/tm.db", cfg.Database.Path)
	}
	if !cfg.Database.Enabled {
		t.Error("Database.Enabled = false, want true")
	}
	if cfg.Metrics.TextfilePath != "/tmp/tm.prom" {
		t.Errorf("Metrics.TextfilePath = %s, want /tmp/tm.prom", cfg.Metrics.TextfilePath)
	}
}

func TestLoadFromEnvIgnoresInvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"Interval not a duration", "TITLEMIRROR_POLL_INTERVAL", "fast"},
		{"Interval below minimum", "TITLEMIRROR_POLL_INTERVAL", "1ms"},
		{"Interval above maximum", "TITLEMIRROR_POLL_INTERVAL", "3600"},
		{"Zero seconds", "TITLEMIRROR_POLL_INTERVAL", "0"},
		{"Timeout negative", "TITLEMIRROR_QUERY_TIMEOUT", "-5s"},
		{"Error log not a bool", "TITLEMIRROR_ERROR_LOG", "maybe"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)

			cfg := Default()
			LoadFromEnv(cfg)

			want := Default()
			if cfg.Monitor.PollInterval != want.Monitor.PollInterval {
				t.Errorf("PollInterval = %v, want %v", cfg.Monitor.PollInterval, want.Monitor.PollInterval)
			}
			if cfg.Monitor.QueryTimeout != want.Monitor.QueryTimeout {
				t.Errorf("QueryTimeout = %v, want %v", cfg.Monitor.QueryTimeout, want.Monitor.QueryTimeout)
			}
			if cfg.Database.Enabled != want.Database.Enabled {
				t.Errorf("Database.Enabled = %v, want %v", cfg.Database.Enabled, want.Database.Enabled)
			}
		})
	}
}

func TestLoadDotEnv(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	content := "TITLEMIRROR_CLASS_NAME=from-dotenv\nTITLEMIRROR_OUTPUT_FILE=dotenv.txt\n"
	if err := os.WriteFile(envFile, []byte(content), 0644); err != nil {
		t.Fatalf("failed to write .env: %v", err)
	}

	// t.Setenv registers cleanup for variables godotenv sets
	t.Setenv("TITLEMIRROR_CLASS_NAME", "")
	os.Unsetenv("TITLEMIRROR_CLASS_NAME")
	t.Setenv("TITLEMIRROR_OUTPUT_FILE", "already-set.txt")

	if err := LoadDotEnv(envFile); err != nil {
		t.Fatalf("LoadDotEnv() error: %v", err)
	}

	cfg := Default()
	LoadFromEnv(cfg)

	if cfg.Monitor.ClassName != "from-dotenv" {
		t.Errorf("ClassName = %s, want from-dotenv", cfg.Monitor.ClassName)
	}
	if cfg.Monitor.OutputFile != "already-set.txt" {
		t.Errorf("OutputFile = %s, want already-set.txt (environment wins)", cfg.Monitor.OutputFile)
	}
}

func TestLoadDotEnvMissingFile(t *testing.T) {
	if err := LoadDotEnv(filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Errorf("LoadDotEnv() error = %v, want nil for a missing file", err)
	}
}

func TestYAML(t *testing.T) {
	cfg := Default()
	out, err := cfg.YAML()
	if err != nil {
		t.Fatalf("YAML() error: %v", err)
	}

	var decoded Config
	if err := yaml.Unmarshal([]byte(out), &decoded); err != nil {
		t.Fatalf("YAML() output does not parse: %v", err)
	}
	if decoded.Monitor.ClassName != cfg.Monitor.ClassName {
		t.Errorf("class_name = %s, want %s", decoded.Monitor.ClassName, cfg.Monitor.ClassName)
	}
	if !strings.Contains(out, "poll_interval: 1s") {
		t.Errorf("YAML() output missing poll_interval:\n%s", out)
	}
}

func TestString(t *testing.T) {
	s := Default().String()
	for _, want := range []string{"cloudmusic.exe", "title.txt", "xprop"} {
		if !strings.Contains(s, want) {
			t.Errorf("String() missing %q:\n%s", want, s)
		}
	}
}
