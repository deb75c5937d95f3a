package utils

import (
	"testing"
	"time"
)

func TestFormatRoundedUnit(t *testing.T) {
	tests := []struct {
		seconds int64
		want    string
	}{
		{0, "0s"},
		{59, "59s"},
		{60, "1m"},
		{3599, "59m"},
		{3600, "1h"},
		{7300, "2h"},
		{86400, "1d"},
		{-90, "1m"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			if got := FormatRoundedUnit(tt.seconds); got != tt.want {
				t.Errorf("FormatRoundedUnit(%d) = %s, want %s", tt.seconds, got, tt.want)
			}
		})
	}
}

func TestFormatAgo(t *testing.T) {
	now := time.Date(2026, 1, 2, 12, 0, 0, 0, time.UTC)
	if got := FormatAgo(now.Add(-5*time.Minute), now); got != "5m ago" {
		t.Errorf("FormatAgo() = %s, want 5m ago", got)
	}
}

func TestTruncate(t *testing.T) {
	tests := []struct {
		name  string
		input string
		n     int
		want  string
	}{
		{"Short", "boom", 10, "boom"},
		{"Exact", "boom", 4, "boom"},
		{"Cut", "command failed: xprop", 10, "command..."},
		{"Runes", "晴天晴天晴天", 5, "晴天..."},
		{"Tiny limit", "boom", 2, "bo"},
		{"No limit", "boom", 0, "boom"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Truncate(tt.input, tt.n); got != tt.want {
				t.Errorf("Truncate(%q, %d) = %q, want %q", tt.input, tt.n, got, tt.want)
			}
		})
	}
}
