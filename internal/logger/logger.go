package logger

import (
	"fmt"
	"io"
	"log"

	lj "gopkg.in/natefinch/lumberjack.v2"
)

// Default rotation settings
const (
	DefaultMaxSizeMB  = 10 // MB
	DefaultMaxBackups = 3  // number of backup files
	DefaultMaxAgeDays = 7  // days
)

// Config describes the rotating log file used when running detached.
// Rotation parameters follow lumberjack semantics.
type Config struct {
	Path       string // log file path
	MaxSizeMB  int    // megabytes before rotation (default 10)
	MaxBackups int    // number of backups to keep (default 3)
	MaxAgeDays int    // days to keep (default 7)
	Compress   bool   // gzip rotated files
}

// Writer returns a rotating writer for the configured path
func (c Config) Writer() (io.WriteCloser, error) {
	if c.Path == "" {
		return nil, fmt.Errorf("log file path cannot be empty")
	}
	return &lj.Logger{
		Filename:   c.Path,
		MaxSize:    valOr(c.MaxSizeMB, DefaultMaxSizeMB),
		MaxBackups: valOr(c.MaxBackups, DefaultMaxBackups),
		MaxAge:     valOr(c.MaxAgeDays, DefaultMaxAgeDays),
		Compress:   c.Compress,
	}, nil
}

// Redirect points the standard logger at the rotating file and returns the writer so
// the caller can close it on exit
func (c Config) Redirect() (io.WriteCloser, error) {
	w, err := c.Writer()
	if err != nil {
		return nil, err
	}
	log.SetOutput(w)
	return w, nil
}

func valOr(v int, def int) int {
	if v <= 0 {
		return def
	}
	return v
}
